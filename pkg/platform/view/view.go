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

package view

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"path"
	"strings"
	"sync"

	"github.com/Masterminds/sprig/v3"
	"github.com/bluele/gcache"
)

// Separator splits the namespace from the view name, as in "platform::partials.fields.relation"
const Separator = "::"

// ErrViewNotFound no location of the namespace holds the view
var ErrViewNotFound = errors.New("view not found")

type location struct {
	fsys fs.FS
	dir  string
}

// Factory finds, parses and renders the html views of the registered namespaces
type Factory struct {
	mu         sync.RWMutex
	namespaces map[string][]location
	funcs      template.FuncMap
	cache      gcache.Cache
}

// NewFactory creates a view factory, the sprig functions are always available
func NewFactory() *Factory {
	return &Factory{
		namespaces: make(map[string][]location),
		funcs:      sprig.HtmlFuncMap(),
		cache:      gcache.New(256).LRU().Build(),
	}
}

// AddNamespace adds a location of the namespace, locations added first are searched first.
func (f *Factory) AddNamespace(namespace string, fsys fs.FS, dir string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.namespaces[namespace] = append(f.namespaces[namespace], location{fsys: fsys, dir: dir})
	f.cache.Purge()
}

// Namespaces returns the registered namespace names
func (f *Factory) Namespaces() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	var names []string
	for name := range f.namespaces {
		names = append(names, name)
	}
	return names
}

// Funcs adds template functions shared by every view
func (f *Factory) Funcs(funcs template.FuncMap) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for k, v := range funcs {
		f.funcs[k] = v
	}
	f.cache.Purge()
}

func split(name string) (string, string, error) {
	parts := strings.SplitN(name, Separator, 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("view name %q has no namespace", name)
	}
	return parts[0], strings.ReplaceAll(parts[1], ".", "/") + ".html", nil
}

func (f *Factory) find(name string) (*template.Template, error) {
	namespace, file, err := split(name)
	if err != nil {
		return nil, err
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	for _, loc := range f.namespaces[namespace] {
		data, err := fs.ReadFile(loc.fsys, path.Join(loc.dir, file))
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, err
		}
		tpl, err := template.New(name).Funcs(f.funcs).Parse(string(data))
		if err != nil {
			return nil, fmt.Errorf("parse view %s failure %w", name, err)
		}
		return tpl, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrViewNotFound, name)
}

func (f *Factory) template(name string) (*template.Template, error) {
	cached, err := f.cache.Get(name)
	if err == nil {
		return cached.(*template.Template), nil
	}
	tpl, err := f.find(name)
	if err != nil {
		return nil, err
	}
	if err := f.cache.Set(name, tpl); err != nil {
		return nil, err
	}
	return tpl, nil
}

// Exists reports whether the view can be found
func (f *Factory) Exists(name string) bool {
	_, err := f.template(name)
	return err == nil
}

// Render executes a copy of the view with the data, locals override the shared functions for this render only.
func (f *Factory) Render(name string, data interface{}, locals ...template.FuncMap) (template.HTML, error) {
	tpl, err := f.template(name)
	if err != nil {
		return "", err
	}
	// the cached template is never executed, it could not be cloned afterwards
	if tpl, err = tpl.Clone(); err != nil {
		return "", err
	}
	for _, funcs := range locals {
		tpl = tpl.Funcs(funcs)
	}
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render view %s failure %w", name, err)
	}
	// #nosec G203 the output is produced by html/template
	return template.HTML(buf.String()), nil
}
