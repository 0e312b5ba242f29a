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

package dashboard

import (
	"sort"
	"sync"

	"github.com/kubevela/platform/pkg/platform/datastore"
)

const (
	// ResourceScripts scripts loaded by every dashboard page
	ResourceScripts = "scripts"
	// ResourceStylesheets stylesheets loaded by every dashboard page
	ResourceStylesheets = "stylesheets"
)

const (
	// MenuMain the main navigation of the dashboard
	MenuMain = "Main"
	// MenuSystems the navigation of the system settings
	MenuSystems = "Systems"
)

// MenuItem a navigation entry
type MenuItem struct {
	Slug       string `json:"slug"`
	Label      string `json:"label"`
	Icon       string `json:"icon,omitempty"`
	Path       string `json:"path"`
	Permission string `json:"permission,omitempty"`
	Sort       int    `json:"sort"`
}

// Permission a single access right
type Permission struct {
	Slug        string `json:"slug"`
	Description string `json:"description"`
}

// PermissionGroup access rights shown together
type PermissionGroup struct {
	Group string       `json:"group"`
	Items []Permission `json:"items"`
}

// Searchable a table exposed through the global search
type Searchable struct {
	Label  string
	Entity datastore.Entity
	// json paths the query is matched against
	Fields []string
	// json path of the text shown for a result
	Display string
}

// Dashboard keeps the assets, navigation, permissions and searchable models of the platform.
// It is created once per application and shared by the http handlers.
type Dashboard struct {
	mu          sync.RWMutex
	resources   map[string][]string
	menu        map[string][]MenuItem
	permissions []PermissionGroup
	searchable  []Searchable
}

// New create an empty dashboard
func New() *Dashboard {
	return &Dashboard{
		resources: make(map[string][]string),
		menu:      make(map[string][]MenuItem),
	}
}

// RegisterResource adds scripts or stylesheets, a path registered twice is kept once
func (d *Dashboard) RegisterResource(kind string, paths ...string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, path := range paths {
		if !contains(d.resources[kind], path) {
			d.resources[kind] = append(d.resources[kind], path)
		}
	}
}

// Resources returns the registered resources of the kind in registration order
func (d *Dashboard) Resources(kind string) []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]string(nil), d.resources[kind]...)
}

// AddMenu adds navigation entries to a place, an entry with a known slug replaces the old one
func (d *Dashboard) AddMenu(place string, items ...MenuItem) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, item := range items {
		replaced := false
		for i, exist := range d.menu[place] {
			if exist.Slug == item.Slug {
				d.menu[place][i] = item
				replaced = true
				break
			}
		}
		if !replaced {
			d.menu[place] = append(d.menu[place], item)
		}
	}
}

// Menu returns the entries of a place ordered by sort
func (d *Dashboard) Menu(place string) []MenuItem {
	d.mu.RLock()
	items := append([]MenuItem(nil), d.menu[place]...)
	d.mu.RUnlock()
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Sort < items[j].Sort
	})
	return items
}

// RegisterPermissions adds access rights, permissions of a known group are appended to it
func (d *Dashboard) RegisterPermissions(groups ...PermissionGroup) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, group := range groups {
		idx := -1
		for i, exist := range d.permissions {
			if exist.Group == group.Group {
				idx = i
				break
			}
		}
		if idx < 0 {
			d.permissions = append(d.permissions, PermissionGroup{Group: group.Group})
			idx = len(d.permissions) - 1
		}
		for _, item := range group.Items {
			if !hasPermission(d.permissions[idx].Items, item.Slug) {
				d.permissions[idx].Items = append(d.permissions[idx].Items, item)
			}
		}
	}
}

// Permissions returns the registered permission groups
func (d *Dashboard) Permissions() []PermissionGroup {
	d.mu.RLock()
	defer d.mu.RUnlock()
	groups := make([]PermissionGroup, 0, len(d.permissions))
	for _, group := range d.permissions {
		groups = append(groups, PermissionGroup{Group: group.Group, Items: append([]Permission(nil), group.Items...)})
	}
	return groups
}

// PermissionSlugs returns every registered permission slug
func (d *Dashboard) PermissionSlugs() []string {
	var slugs []string
	for _, group := range d.Permissions() {
		for _, item := range group.Items {
			slugs = append(slugs, item.Slug)
		}
	}
	return slugs
}

// RegisterSearch exposes a table through the global search
func (d *Dashboard) RegisterSearch(searchable Searchable) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i, exist := range d.searchable {
		if exist.Entity.TableName() == searchable.Entity.TableName() {
			d.searchable[i] = searchable
			return
		}
	}
	d.searchable = append(d.searchable, searchable)
}

// Searchable returns the searchable tables
func (d *Dashboard) Searchable() []Searchable {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]Searchable(nil), d.searchable...)
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

func hasPermission(list []Permission, slug string) bool {
	for _, item := range list {
		if item.Slug == slug {
			return true
		}
	}
	return false
}
