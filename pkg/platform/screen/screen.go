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
	"html/template"
	"net/http"
	"net/url"
	"strings"

	"github.com/kubevela/platform/pkg/platform/dashboard"
	"github.com/kubevela/platform/pkg/platform/datastore"
	"github.com/kubevela/platform/pkg/platform/utils/crypt"
)

// Renderer renders namespaced views
type Renderer interface {
	Render(name string, data interface{}, locals ...template.FuncMap) (template.HTML, error)
}

// Translator translates a key to a locale
type Translator interface {
	Get(locale, key string) string
}

// RenderContext carries the shared services needed to render fields and layouts
type RenderContext struct {
	Views      Renderer
	Translator Translator
	Sealer     *crypt.Sealer
	Dashboard  *dashboard.Dashboard
	Store      datastore.DataStore
	// url prefix of the dashboard routes
	Prefix string
	Locale string
	// path of the current request
	Path string
}

// ForRequest returns a copy bound to the locale and path of the request
func (rc RenderContext) ForRequest(r *http.Request) *RenderContext {
	if accept := r.Header.Get("Accept-Language"); accept != "" {
		rc.Locale = accept
	}
	rc.Path = r.URL.Path
	return &rc
}

// Trans translates the key to the locale of the context
func (rc *RenderContext) Trans(key string) string {
	if rc.Translator == nil {
		return key
	}
	return rc.Translator.Get(rc.Locale, key)
}

// Render renders a view with the translation function bound to the locale
func (rc *RenderContext) Render(name string, data interface{}) (template.HTML, error) {
	return rc.Views.Render(name, data, template.FuncMap{"__": rc.Trans})
}

// URL returns the path below the dashboard prefix
func (rc *RenderContext) URL(path string) string {
	return rc.Prefix + "/" + strings.TrimLeft(path, "/")
}

// Repository the data queried by a screen
type Repository map[string]interface{}

// Get returns the value at the dotted path
func (r Repository) Get(key string) interface{} {
	var current interface{} = map[string]interface{}(r)
	for _, part := range strings.Split(key, ".") {
		m, ok := current.(map[string]interface{})
		if !ok {
			if repo, isRepo := current.(Repository); isRepo {
				m = repo
			} else {
				return nil
			}
		}
		if current, ok = m[part]; !ok {
			return nil
		}
	}
	return current
}

// Request the screen method call of a http request
type Request struct {
	// Method is the screen method segment of the url, empty for the screen itself
	Method   string
	Argument string
	Params   url.Values
	HTTP     *http.Request
}

// Screen a dashboard page built from layouts
type Screen interface {
	Name() string
	Description() string
	Query(ctx context.Context, req *Request) (Repository, error)
	Layout() []Layout
}

// Command a screen method reachable through the method url segment
type Command func(ctx context.Context, req *Request) (interface{}, error)

// Commander is implemented by screens exposing methods
type Commander interface {
	Commands() map[string]Command
}

// Field a form control
type Field interface {
	Render(ctx context.Context, rc *RenderContext) (template.HTML, error)
}

// Layout a part of a screen rendered with the repository
type Layout interface {
	Build(ctx context.Context, rc *RenderContext, repo Repository) (template.HTML, error)
}
