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

package screen

import (
	"context"
	"errors"
	"html/template"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	restful "github.com/emicklei/go-restful/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kubevela/platform/pkg/platform/dashboard"
	"github.com/kubevela/platform/pkg/platform/datastore"
	"github.com/kubevela/platform/pkg/platform/resources"
	"github.com/kubevela/platform/pkg/platform/route"
	"github.com/kubevela/platform/pkg/platform/view"
)

type textField string

func (f textField) Render(ctx context.Context, rc *RenderContext) (template.HTML, error) {
	return template.HTML("<input name=\"" + template.HTMLEscapeString(string(f)) + "\">"), nil
}

type usersTable struct{}

func (usersTable) Target() string { return "users" }
func (usersTable) Columns() []Column {
	return []Column{
		{Name: "name", Title: "Name"},
		{Name: "email", Title: "Email", Render: func(item interface{}) string {
			return strings.ToUpper(item.(map[string]interface{})["email"].(string))
		}},
	}
}

type usersMetrics struct{}

func (usersMetrics) Title() string { return "Overview" }
func (usersMetrics) Metrics() []Metric {
	return []Metric{{Label: "Total", Key: "stats.total"}, {Label: "Missing", Key: "stats.none"}}
}

type nameFilter struct{}

func (nameFilter) Name() string         { return "name" }
func (nameFilter) Parameters() []string { return []string{"name"} }
func (nameFilter) Apply(options *datastore.ListOptions, params url.Values) {
	options.Queries = append(options.Queries, datastore.FuzzyQueryOption{Key: "name", Query: params.Get("name")})
}
func (nameFilter) Display() []Field { return []Field{textField("name")} }

type usersSelection struct{}

func (usersSelection) Filters() []Filter { return []Filter{nameFilter{}} }

type usersScreen struct {
	saved []string
}

func (s *usersScreen) Name() string        { return "Users" }
func (s *usersScreen) Description() string { return "All registered users" }
func (s *usersScreen) Query(ctx context.Context, req *Request) (Repository, error) {
	if req.Params.Get("fail") != "" {
		return nil, errors.New("query failure")
	}
	return Repository{
		"users": []interface{}{
			map[string]interface{}{"name": "alice", "email": "alice@example.com"},
			map[string]interface{}{"name": "bob", "email": "bob@example.com"},
		},
		"stats": map[string]interface{}{"total": 2},
	}, nil
}
func (s *usersScreen) Layout() []Layout {
	return []Layout{Selection(usersSelection{}), Metrics(usersMetrics{}), Table(usersTable{})}
}
func (s *usersScreen) Commands() map[string]Command {
	return map[string]Command{
		"save": func(ctx context.Context, req *Request) (interface{}, error) {
			s.saved = append(s.saved, req.Params.Get("name"))
			return map[string]string{"saved": req.Params.Get("name")}, nil
		},
		"remove": func(ctx context.Context, req *Request) (interface{}, error) {
			return nil, nil
		},
	}
}

func newRenderContext() RenderContext {
	views := view.NewFactory()
	views.Funcs(template.FuncMap{"__": func(key string) string { return key }, "active": route.Active})
	views.AddNamespace("platform", resources.FS, resources.ViewsDir)
	d := dashboard.New()
	d.AddMenu(dashboard.MenuMain, dashboard.MenuItem{Slug: "users", Label: "Users", Path: "/dashboard/users"})
	d.RegisterResource(dashboard.ResourceScripts, "/js/extra.js")
	return RenderContext{Views: views, Dashboard: d, Prefix: "/dashboard", Locale: "en"}
}

func TestRepositoryGet(t *testing.T) {
	repo := Repository{
		"user":  map[string]interface{}{"name": "alice", "roles": []string{"admin"}},
		"stats": Repository{"total": 3},
	}
	assert.Equal(t, "alice", repo.Get("user.name"))
	assert.Equal(t, []string{"admin"}, repo.Get("user.roles"))
	assert.Equal(t, 3, repo.Get("stats.total"))
	assert.Nil(t, repo.Get("user.name.first"))
	assert.Nil(t, repo.Get("missing"))
}

func TestApplyFilters(t *testing.T) {
	options := &datastore.ListOptions{}
	ApplyFilters([]Filter{nameFilter{}}, url.Values{}, options)
	assert.Empty(t, options.Queries)

	ApplyFilters([]Filter{nameFilter{}}, url.Values{"name": {"ali"}}, options)
	assert.Equal(t, []datastore.FuzzyQueryOption{{Key: "name", Query: "ali"}}, options.Queries)
}

func TestLayouts(t *testing.T) {
	base := newRenderContext()
	rc := &base
	s := &usersScreen{}
	repo, err := s.Query(context.Background(), &Request{Params: url.Values{}})
	require.NoError(t, err)

	html, err := Table(usersTable{}).Build(context.Background(), rc, repo)
	require.NoError(t, err)
	assert.Contains(t, string(html), "<td>alice</td>")
	assert.Contains(t, string(html), "<td>BOB@EXAMPLE.COM</td>")

	html, err = Table(usersTable{}).Build(context.Background(), rc, Repository{})
	require.NoError(t, err)
	assert.Contains(t, string(html), "Nothing found")

	html, err = Metrics(usersMetrics{}).Build(context.Background(), rc, repo)
	require.NoError(t, err)
	assert.Contains(t, string(html), "<dd>2</dd>")
	assert.Contains(t, string(html), "<dd>-</dd>")

	html, err = Rows(rowsOf{textField("email")}).Build(context.Background(), rc, repo)
	require.NoError(t, err)
	assert.Contains(t, string(html), `<input name="email">`)
}

type rowsOf []Field

func (r rowsOf) Fields(repo Repository) []Field { return r }

func serve(t *testing.T, s Screen, method, target string) *httptest.ResponseRecorder {
	r := route.New("dashboard")
	r.RegisterMacro("screen", route.ScreenMacro)
	require.NoError(t, r.Call("screen", "/users", Handler(s, StaticContext(newRenderContext())), "platform.users"))
	c := restful.NewContainer()
	c.Add(r.WebService())
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(method, target, nil)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", restful.MIME_JSON+", text/html")
	c.ServeHTTP(rec, req)
	return rec
}

func TestHandlerRendersScreen(t *testing.T) {
	rec := serve(t, &usersScreen{}, http.MethodGet, "/dashboard/users?name=ali")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "<h1>Users</h1>")
	assert.Contains(t, body, "<td>alice</td>")
	assert.Contains(t, body, `class="nav-item active"`)
	assert.Contains(t, body, `/js/extra.js`)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
}

func TestHandlerCommands(t *testing.T) {
	s := &usersScreen{}
	rec := serve(t, s, http.MethodPost, "/dashboard/users/save?name=carol")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"saved":"carol"}`, rec.Body.String())
	assert.Equal(t, []string{"carol"}, s.saved)

	rec = serve(t, s, http.MethodDelete, "/dashboard/users/remove/7")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = serve(t, s, http.MethodPost, "/dashboard/users/missing")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = serve(t, s, http.MethodPost, "/dashboard/users")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = serve(t, s, http.MethodGet, "/dashboard/users?fail=1")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
