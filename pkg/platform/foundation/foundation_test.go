/*
Copyright 2022 The KubeVela Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package foundation

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"

	"github.com/emicklei/go-restful/v3"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
	"sigs.k8s.io/controller-runtime/pkg/client/fake"

	"github.com/kubevela/platform/pkg/platform/api"
	"github.com/kubevela/platform/pkg/platform/app"
	"github.com/kubevela/platform/pkg/platform/config"
	"github.com/kubevela/platform/pkg/platform/datastore"
	"github.com/kubevela/platform/pkg/platform/datastore/kubeapi"
	"github.com/kubevela/platform/pkg/platform/model"
	"github.com/kubevela/platform/pkg/platform/publish"
	"github.com/kubevela/platform/pkg/platform/resources"
	"github.com/kubevela/platform/pkg/platform/route"
	"github.com/kubevela/platform/pkg/platform/screen/fields"
)

var _ = Describe("Test the foundation provider", func() {
	var a *app.Application
	var base string

	BeforeEach(func() {
		var err error
		base, err = os.MkdirTemp("", "platform-foundation")
		Expect(err).Should(BeNil())
		cfg := config.NewConfig()
		cfg.BasePath = base
		cfg.AppKey = "foundation-test"
		a, err = app.New(cfg)
		Expect(err).Should(BeNil())
		Expect(a.Register(New())).Should(BeNil())
		Expect(a.Boot(context.Background())).Should(BeNil())
	})

	AfterEach(func() {
		Expect(os.RemoveAll(base)).Should(BeNil())
	})

	It("boots the sub providers in order", func() {
		Expect(a.Providers()).Should(Equal([]string{
			"platform", "platform-search", "platform-active", "platform-route", "platform-event", "platform-dashboard",
		}))
		Expect(a.Register(New())).Should(BeNil())
		Expect(a.Boot(context.Background())).Should(BeNil())
		Expect(a.Providers()).Should(HaveLen(6))
	})

	It("registers the commands and the presets", func() {
		var names []string
		for _, c := range a.Commands() {
			names = append(names, c.Name())
		}
		Expect(names).Should(ConsistOf(
			"install", "link", "admin", "publish", "preset", "migrate", "serve",
			"make:filter", "make:rows", "make:screen", "make:table", "make:chart", "make:metrics", "make:selection",
		))
		Expect(a.Presets()).Should(Equal([]string{"platform", "platform-source"}))
	})

	It("binds one dashboard", func() {
		d := a.Dashboard()
		Expect(d).ShouldNot(BeNil())
		Expect(New().Register(a)).Should(BeNil())
		Expect(a.Dashboard()).Should(BeIdenticalTo(d))
		Expect(d.Menu("Main")).Should(HaveLen(1))
		Expect(d.PermissionSlugs()).Should(ContainElements(PermissionIndex, PermissionUsers, PermissionRoles))
		Expect(d.Searchable()).Should(HaveLen(2))
	})

	It("keeps the first screen macro", func() {
		Expect(a.Router().RegisterMacro(ScreenMacro, func(r *route.Router, path string, handler restful.RouteFunction, name string) error {
			return nil
		})).Should(BeFalse())
		Expect(a.Router().Macros()).Should(Equal([]string{ScreenMacro}))
	})

	It("merges the bundled config", func() {
		Expect(a.Config().Search).Should(Equal([]string{"platform_user", "platform_role"}))
		Expect(a.Config().Prefix).Should(Equal("dashboard"))
	})

	It("publishes the platform files", func() {
		Expect(a.Publisher().Tags(Name)).Should(Equal([]string{TagStubs, TagAssets, TagMigrations, TagConfig, TagViews}))

		a.Publisher().Publishes(Name, TagConfig, resources.FS, publish.Path{Src: resources.ConfigFile, Dst: a.Config().ConfigPath()})
		groups := a.Publisher().Groups(Name, TagConfig)
		Expect(groups).Should(HaveLen(1))
		Expect(groups[0].Items).Should(HaveLen(1))

		results, err := a.Publisher().Publish(publish.Options{Provider: Name, Tags: []string{TagStubs, TagConfig, TagMigrations}})
		Expect(err).Should(BeNil())
		Expect(results).ShouldNot(BeEmpty())
		Expect(filepath.Join(base, "routes", "platform.go")).Should(BeAnExistingFile())
		Expect(filepath.Join(base, "app", "platform", "screens", "example_screen.go")).Should(BeAnExistingFile())
		Expect(filepath.Join(base, "config", "platform.yaml")).Should(BeAnExistingFile())
		Expect(filepath.Join(base, "database", "migrations", "0001_create_platform_records.up.sql")).Should(BeAnExistingFile())

		Expect(a.Migrator().Sources()).Should(HaveLen(1))
		Expect(a.Translator().Locales()).Should(ContainElements("en", "zh", "ru"))
	})

	It("prefers the published views", func() {
		cfg := a.Config()
		override := cfg.ResourcePath("views", "vendor", Name, "partials", "fields")
		Expect(os.MkdirAll(override, 0750)).Should(BeNil())
		Expect(os.WriteFile(filepath.Join(override, "input.html"), []byte(`<b>custom {{ .Name }}</b>`), 0600)).Should(BeNil())

		b, err := app.New(cfg)
		Expect(err).Should(BeNil())
		Expect(b.Register(New())).Should(BeNil())
		Expect(b.Boot(context.Background())).Should(BeNil())
		html, err := b.Views().Render("platform::partials.fields.input", map[string]interface{}{"Name": "email"})
		Expect(err).Should(BeNil())
		Expect(string(html)).Should(Equal("<b>custom email</b>"))
	})

	Context("serving the routes", func() {
		var c *restful.Container
		var store datastore.DataStore

		BeforeEach(func() {
			var err error
			store, err = kubeapi.New(context.Background(), datastore.Config{Database: "foundation-test"}, fake.NewClientBuilder().Build())
			Expect(err).Should(BeNil())
			Expect(store.Add(context.Background(), &model.User{Name: "alice", Email: "alice@example.com"})).Should(BeNil())
			Expect(store.Add(context.Background(), &model.Role{Slug: "editor", Name: "Editor"})).Should(BeNil())
			Expect(a.SetStore(store)).Should(BeNil())
			Expect(a.Populate()).Should(BeNil())
			c = restful.NewContainer()
			c.Add(a.Router().WebService())
		})

		serve := func(method, target, body string) *httptest.ResponseRecorder {
			req := httptest.NewRequest(method, target, strings.NewReader(body))
			req.Header.Set("Content-Type", restful.MIME_JSON)
			req.Header.Set("Accept", "text/html, application/json")
			rec := httptest.NewRecorder()
			c.ServeHTTP(rec, req)
			return rec
		}

		It("renders the main screen", func() {
			rec := serve(http.MethodGet, "/dashboard/main", "")
			Expect(rec.Code).Should(Equal(http.StatusOK))
			body := rec.Body.String()
			Expect(body).Should(ContainSubstring("Get Started"))
			Expect(body).Should(ContainSubstring("alice@example.com"))
			Expect(body).Should(ContainSubstring(`class="nav-item active"`))

			rec = serve(http.MethodGet, "/dashboard", "")
			Expect(rec.Code).Should(Equal(http.StatusFound))
			Expect(rec.Header().Get("Location")).Should(Equal("/dashboard/main"))
		})

		It("answers the relation and search requests", func() {
			rc := a.RenderContext()
			field := fields.NewRelation("role").FromModel(nil, &model.Role{}, "name").Value("editor")
			html, err := field.Render(context.Background(), &rc)
			Expect(err).Should(BeNil())
			Expect(string(html)).Should(ContainSubstring("Editor"))

			scope, err := json.Marshal(field.Source().Scope())
			Expect(err).Should(BeNil())
			sealed, err := a.Sealer().Seal(string(scope))
			Expect(err).Should(BeNil())
			body, err := json.Marshal(api.RelationRequest{Scope: sealed, Search: "edi"})
			Expect(err).Should(BeNil())
			rec := serve(http.MethodPost, "/dashboard/api/v1/relation", string(body))
			Expect(rec.Code).Should(Equal(http.StatusOK))
			Expect(rec.Body.String()).Should(MatchJSON(`[{"id":"editor","text":"Editor"}]`))

			rec = serve(http.MethodGet, "/dashboard/api/v1/search?query=alice", "")
			Expect(rec.Code).Should(Equal(http.StatusOK))
			var resp api.SearchResponse
			Expect(json.Unmarshal(rec.Body.Bytes(), &resp)).Should(BeNil())
			Expect(resp.Results).Should(HaveLen(1))
			Expect(resp.Results[0].Key).Should(Equal("alice"))
		})
	})
})
