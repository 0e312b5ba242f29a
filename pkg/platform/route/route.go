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

package route

import (
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"

	"github.com/emicklei/go-restful/v3"
)

// AnyMethods the methods matched by Any
var AnyMethods = []string{
	http.MethodGet, http.MethodHead, http.MethodPost, http.MethodPut,
	http.MethodPatch, http.MethodDelete, http.MethodOptions,
}

// Macro a named route helper, the first definition of a name is kept
type Macro func(r *Router, path string, handler restful.RouteFunction, name string) error

// Router registers the dashboard routes on a go-restful web service
type Router struct {
	mu     sync.RWMutex
	ws     *restful.WebService
	macros map[string]Macro
	names  map[string]string
}

// New creates a router rooted at the prefix
func New(prefix string) *Router {
	ws := new(restful.WebService)
	ws.Path("/"+strings.Trim(prefix, "/")).
		Consumes(restful.MIME_JSON, "application/x-www-form-urlencoded", "multipart/form-data").
		Produces(restful.MIME_JSON, "text/html").
		Doc("platform dashboard")
	return &Router{
		ws:     ws,
		macros: make(map[string]Macro),
		names:  make(map[string]string),
	}
}

// WebService returns the web service holding the routes
func (r *Router) WebService() *restful.WebService {
	return r.ws
}

// Prefix returns the root path of the routes
func (r *Router) Prefix() string {
	if r.ws.RootPath() == "/" {
		return ""
	}
	return r.ws.RootPath()
}

func join(prefix, path string) string {
	path = "/" + strings.Trim(path, "/")
	if path == "/" {
		if prefix == "" {
			return "/"
		}
		return prefix
	}
	return prefix + path
}

// Handle adds a route, a non empty name can be resolved with URL
func (r *Router) Handle(method, path string, handler restful.RouteFunction, name string) *restful.RouteBuilder {
	builder := r.ws.Method(method).Path(path).To(handler)
	if name != "" {
		builder = builder.Operation(operation(name, method))
	}
	return builder
}

// Add registers the route built by Handle
func (r *Router) Add(builder *restful.RouteBuilder, name, path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ws.Route(builder)
	if name != "" {
		if _, exist := r.names[name]; !exist {
			r.names[name] = join(r.Prefix(), path)
		}
	}
}

// Any registers the handler for every method of AnyMethods
func (r *Router) Any(path string, handler restful.RouteFunction, name string) {
	for _, method := range AnyMethods {
		r.Add(r.Handle(method, path, handler, name), name, path)
	}
}

func operation(name, method string) string {
	return strings.ReplaceAll(name, ".", "_") + "_" + strings.ToLower(method)
}

// RegisterMacro adds a macro, it reports false and keeps the existing one when the name is known
func (r *Router) RegisterMacro(name string, macro Macro) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exist := r.macros[name]; exist {
		return false
	}
	r.macros[name] = macro
	return true
}

// HasMacro reports whether the macro is registered
func (r *Router) HasMacro(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, exist := r.macros[name]
	return exist
}

// Macros returns the registered macro names
func (r *Router) Macros() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.macros))
	for name := range r.macros {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Call runs the macro
func (r *Router) Call(macro, path string, handler restful.RouteFunction, name string) error {
	r.mu.RLock()
	m, exist := r.macros[macro]
	r.mu.RUnlock()
	if !exist {
		return fmt.Errorf("route macro %s is not registered", macro)
	}
	return m(r, path, handler, name)
}

// URL resolves a named route, the path parameters are replaced by the given values
// and parameters without value are removed.
func (r *Router) URL(name string, params map[string]string) (string, error) {
	r.mu.RLock()
	path, exist := r.names[name]
	r.mu.RUnlock()
	if !exist {
		return "", fmt.Errorf("route %s is not defined", name)
	}
	segments := strings.Split(path, "/")
	out := segments[:0]
	for _, seg := range segments {
		if strings.HasPrefix(seg, "{") && strings.HasSuffix(seg, "}") {
			key := strings.TrimSuffix(strings.TrimPrefix(seg, "{"), "}")
			if v, ok := params[key]; ok && v != "" {
				out = append(out, v)
			}
			continue
		}
		out = append(out, seg)
	}
	url := strings.Join(out, "/")
	if url == "" {
		url = "/"
	}
	return url, nil
}

// Routes returns the registered routes
func (r *Router) Routes() []restful.Route {
	return r.ws.Routes()
}

// ScreenMacro registers the handler for the url and the optional method and argument
// segments, for every method of AnyMethods.
func ScreenMacro(r *Router, path string, handler restful.RouteFunction, name string) error {
	base := strings.TrimSuffix(path, "/")
	r.Any(base, handler, "")
	r.Any(base+"/{method}", handler, "")
	r.Any(base+"/{method}/{argument}", handler, name)
	return nil
}
