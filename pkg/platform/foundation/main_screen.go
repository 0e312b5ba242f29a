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
	"time"

	"github.com/kubevela/platform/pkg/platform/app"
	"github.com/kubevela/platform/pkg/platform/datastore"
	"github.com/kubevela/platform/pkg/platform/model"
	"github.com/kubevela/platform/pkg/platform/screen"
)

// MainScreen the landing page of the dashboard
type MainScreen struct {
	app *app.Application
}

var _ screen.Screen = &MainScreen{}

// NewMainScreen creates the landing page
func NewMainScreen(a *app.Application) *MainScreen {
	return &MainScreen{app: a}
}

// Name the title of the screen
func (s *MainScreen) Name() string {
	return "Get Started"
}

// Description the subtitle of the screen
func (s *MainScreen) Description() string {
	return "Welcome to your platform dashboard"
}

// Query counts the users and roles and lists the latest users
func (s *MainScreen) Query(ctx context.Context, req *screen.Request) (screen.Repository, error) {
	store := s.app.Store()
	if store == nil {
		return screen.Repository{}, nil
	}
	users, err := store.Count(ctx, &model.User{}, nil)
	if err != nil {
		return nil, err
	}
	roles, err := store.Count(ctx, &model.Role{}, nil)
	if err != nil {
		return nil, err
	}
	latest, err := store.List(ctx, &model.User{}, &datastore.ListOptions{
		SortBy:   []datastore.SortOption{{Key: "createTime", Order: datastore.SortOrderDescending}},
		Page:     1,
		PageSize: 10,
	})
	if err != nil {
		return nil, err
	}
	return screen.Repository{
		"metrics": map[string]interface{}{"users": users, "roles": roles},
		"users":   latest,
	}, nil
}

// Layout shows the counters and the latest users
func (s *MainScreen) Layout() []screen.Layout {
	return []screen.Layout{
		screen.Metrics(mainMetrics{}),
		screen.Table(latestUsers{}),
	}
}

type mainMetrics struct{}

func (mainMetrics) Title() string { return "Overview" }

func (mainMetrics) Metrics() []screen.Metric {
	return []screen.Metric{
		{Label: "Users", Key: "metrics.users"},
		{Label: "Roles", Key: "metrics.roles"},
	}
}

type latestUsers struct{}

func (latestUsers) Target() string { return "users" }

func (latestUsers) Columns() []screen.Column {
	return []screen.Column{
		{Name: "name", Title: "Name"},
		{Name: "email", Title: "Email"},
		{Name: "lastLoginTime", Title: "Last login", Render: func(item interface{}) string {
			if user, ok := item.(*model.User); ok && !user.LastLoginTime.IsZero() {
				return user.LastLoginTime.Format(time.RFC3339)
			}
			return "-"
		}},
	}
}
