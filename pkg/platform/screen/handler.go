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
	"strings"

	restful "github.com/emicklei/go-restful/v3"

	"github.com/kubevela/platform/pkg/platform/dashboard"
	"github.com/kubevela/platform/pkg/platform/utils/bcode"
	"github.com/kubevela/platform/pkg/platform/utils/log"
)

// DashboardView the layout wrapping every screen
const DashboardView = "platform::layouts.dashboard"

// ContextProvider builds the render context shared by the requests
type ContextProvider interface {
	RenderContext() RenderContext
}

// StaticContext provides a fixed render context
type StaticContext RenderContext

// RenderContext returns the fixed context
func (c StaticContext) RenderContext() RenderContext {
	return RenderContext(c)
}

// Handler serves a screen. A request without method segment renders the screen
// for GET and HEAD, a method segment calls the screen command of that name.
func Handler(s Screen, contexts ContextProvider) restful.RouteFunction {
	return func(req *restful.Request, res *restful.Response) {
		if err := req.Request.ParseForm(); err != nil {
			bcode.ReturnError(req, res, restful.NewError(http.StatusBadRequest, err.Error()))
			return
		}
		sr := &Request{
			Method:   req.PathParameter("method"),
			Argument: req.PathParameter("argument"),
			Params:   req.Request.Form,
			HTTP:     req.Request,
		}
		ctx := req.Request.Context()
		if sr.Method == "" && (req.Request.Method == http.MethodGet || req.Request.Method == http.MethodHead) {
			html, err := Build(ctx, s, contexts.RenderContext().ForRequest(req.Request), sr)
			if err != nil {
				bcode.ReturnError(req, res, err)
				return
			}
			res.Header().Set("Content-Type", "text/html; charset=utf-8")
			res.WriteHeader(http.StatusOK)
			if _, err := res.Write([]byte(html)); err != nil {
				log.Logger.Errorf("write screen %s failure %s", s.Name(), err.Error())
			}
			return
		}
		command, err := lookup(s, sr.Method)
		if err != nil {
			bcode.ReturnError(req, res, err)
			return
		}
		result, err := command(ctx, sr)
		if err != nil {
			bcode.ReturnError(req, res, err)
			return
		}
		if result == nil {
			res.WriteHeader(http.StatusNoContent)
			return
		}
		if err := res.WriteEntity(result); err != nil {
			log.Logger.Errorf("write entity failure %s", err.Error())
		}
	}
}

func lookup(s Screen, method string) (Command, error) {
	commander, ok := s.(Commander)
	if !ok {
		return nil, bcode.ErrScreenMethodNotFound
	}
	if method == "" {
		method = "handle"
	}
	command, ok := commander.Commands()[method]
	if !ok {
		return nil, bcode.ErrScreenMethodNotFound
	}
	return command, nil
}

// Build queries the screen and renders its layouts inside the dashboard layout
func Build(ctx context.Context, s Screen, rc *RenderContext, req *Request) (template.HTML, error) {
	repo, err := s.Query(ctx, req)
	if err != nil {
		return "", err
	}
	var content strings.Builder
	for _, layout := range s.Layout() {
		html, err := layout.Build(ctx, rc, repo)
		if err != nil {
			return "", err
		}
		content.WriteString(string(html))
	}
	data := map[string]interface{}{
		"Title":       rc.Trans(s.Name()),
		"Description": rc.Trans(s.Description()),
		"Content":     template.HTML(content.String()),
		"Prefix":      rc.Prefix,
		"Locale":      rc.Locale,
		"Path":        rc.Path,
	}
	if rc.Dashboard != nil {
		data["Menu"] = rc.Dashboard.Menu(dashboard.MenuMain)
		data["Scripts"] = rc.Dashboard.Resources(dashboard.ResourceScripts)
		data["Stylesheets"] = rc.Dashboard.Resources(dashboard.ResourceStylesheets)
	}
	return rc.Render(DashboardView, data)
}
