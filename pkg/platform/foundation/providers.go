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
	"fmt"
	"html/template"
	"net/http"

	"github.com/emicklei/go-restful/v3"

	"github.com/kubevela/platform/pkg/platform/api"
	"github.com/kubevela/platform/pkg/platform/app"
	"github.com/kubevela/platform/pkg/platform/dashboard"
	"github.com/kubevela/platform/pkg/platform/event"
	"github.com/kubevela/platform/pkg/platform/model"
	"github.com/kubevela/platform/pkg/platform/route"
	"github.com/kubevela/platform/pkg/platform/screen"
	"github.com/kubevela/platform/pkg/platform/utils/log"
)

// provider is the base of the providers without registration step
type provider struct {
	name string
}

func (p provider) Name() string                      { return p.name }
func (p provider) Register(a *app.Application) error { return nil }

// SearchProvider exposes the configured tables through the global search
type SearchProvider struct{ provider }

// NewSearchProvider creates the search provider
func NewSearchProvider() *SearchProvider {
	return &SearchProvider{provider{name: "platform-search"}}
}

// Boot registers the searchable models
func (p *SearchProvider) Boot(ctx context.Context, a *app.Application) error {
	d := a.Dashboard()
	for _, table := range a.Config().Search {
		m, ok := model.LookupModel(table)
		if !ok {
			log.Logger.Warnf("the searchable table %s is not a registered model", table)
			continue
		}
		presenter, ok := m.(model.Presenter)
		if !ok {
			log.Logger.Warnf("the model of %s can not be presented in the search results", table)
			continue
		}
		d.RegisterSearch(dashboard.Searchable{
			Label:   presenter.SearchLabel(),
			Entity:  m,
			Fields:  presenter.SearchFields(),
			Display: presenter.SearchTitle(),
		})
	}
	return nil
}

// ActiveProvider adds the active menu helper to the views
type ActiveProvider struct{ provider }

// NewActiveProvider creates the active provider
func NewActiveProvider() *ActiveProvider {
	return &ActiveProvider{provider{name: "platform-active"}}
}

// Boot registers the active template function
func (p *ActiveProvider) Boot(ctx context.Context, a *app.Application) error {
	a.Views().Funcs(template.FuncMap{"active": route.Active})
	return nil
}

// RouteProvider registers the dashboard routes
type RouteProvider struct{ provider }

// NewRouteProvider creates the route provider
func NewRouteProvider() *RouteProvider {
	return &RouteProvider{provider{name: "platform-route"}}
}

// Boot registers the main screen and the api routes, the api beans are populated by the server
func (p *RouteProvider) Boot(ctx context.Context, a *app.Application) error {
	r := a.Router()
	if err := r.Call(ScreenMacro, "/main", screen.Handler(NewMainScreen(a), a), "platform.main"); err != nil {
		return err
	}
	r.Add(r.Handle(http.MethodGet, "/", func(req *restful.Request, res *restful.Response) {
		http.Redirect(res.ResponseWriter, req.Request, r.Prefix()+"/main", http.StatusFound)
	}, "platform.index"), "platform.index", "/")
	for _, bean := range api.InitAPIBean() {
		if err := a.Container().Provides(bean); err != nil {
			return fmt.Errorf("fail to provides the api bean to the container: %w", err)
		}
		bean.(api.Interface).RegisterRoutes(r)
	}
	return nil
}

// EventProvider registers the platform event listeners
type EventProvider struct{ provider }

// NewEventProvider creates the event provider
func NewEventProvider() *EventProvider {
	return &EventProvider{provider{name: "platform-event"}}
}

// Boot listens to the user and role events
func (p *EventProvider) Boot(ctx context.Context, a *app.Application) error {
	a.Events().Listen(event.UserCreated, func(ctx context.Context, e event.Event) error {
		if user, ok := e.Payload.(*model.User); ok {
			log.Logger.Infof("the user %s is created with the roles %v", user.Name, user.Roles)
		}
		return nil
	})
	a.Events().Listen(event.RoleCreated, func(ctx context.Context, e event.Event) error {
		if role, ok := e.Payload.(*model.Role); ok {
			log.Logger.Infof("the role %s is created with %d permissions", role.Slug, len(role.Permissions))
		}
		return nil
	})
	return nil
}

// PlatformProvider registers the platform menu and permissions
type PlatformProvider struct{ provider }

// NewPlatformProvider creates the platform provider
func NewPlatformProvider() *PlatformProvider {
	return &PlatformProvider{provider{name: "platform-dashboard"}}
}

// Permissions of the platform screens
const (
	PermissionIndex = "platform.index"
	PermissionUsers = "platform.systems.users"
	PermissionRoles = "platform.systems.roles"
)

// Boot adds the main menu entry and the permission groups
func (p *PlatformProvider) Boot(ctx context.Context, a *app.Application) error {
	d := a.Dashboard()
	d.AddMenu(dashboard.MenuMain, dashboard.MenuItem{
		Slug:       "main",
		Label:      "Main",
		Icon:       "house",
		Path:       a.Router().Prefix() + "/main",
		Permission: PermissionIndex,
	})
	d.RegisterPermissions(
		dashboard.PermissionGroup{Group: "Main", Items: []dashboard.Permission{
			{Slug: PermissionIndex, Description: "Main"},
		}},
		dashboard.PermissionGroup{Group: "Systems", Items: []dashboard.Permission{
			{Slug: PermissionRoles, Description: "Roles"},
			{Slug: PermissionUsers, Description: "Users"},
		}},
	)
	return nil
}
