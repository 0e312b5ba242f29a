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

package app

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/spf13/cobra"

	"github.com/kubevela/platform/pkg/platform/config"
	"github.com/kubevela/platform/pkg/platform/dashboard"
	"github.com/kubevela/platform/pkg/platform/datastore"
	"github.com/kubevela/platform/pkg/platform/event"
	"github.com/kubevela/platform/pkg/platform/migrations"
	"github.com/kubevela/platform/pkg/platform/publish"
	"github.com/kubevela/platform/pkg/platform/route"
	"github.com/kubevela/platform/pkg/platform/screen"
	"github.com/kubevela/platform/pkg/platform/screen/fields"
	"github.com/kubevela/platform/pkg/platform/translation"
	"github.com/kubevela/platform/pkg/platform/utils/container"
	"github.com/kubevela/platform/pkg/platform/utils/crypt"
	"github.com/kubevela/platform/pkg/platform/utils/log"
	"github.com/kubevela/platform/pkg/platform/view"
)

const (
	// DashboardBean the name of the shared dashboard registry in the container
	DashboardBean = "dashboard"
	// DatastoreBean the name of the datastore in the container
	DatastoreBean = "datastore"
	// RemotesBean the name of the relation remotes in the container
	RemotesBean = "remotes"
	// SealerBean the name of the sealer in the container
	SealerBean = "sealer"
	// AppKeyEnv is read when the config has no application key
	AppKeyEnv = "PLATFORM_APP_KEY"
)

// ServiceProvider registers services into the application and boots them
type ServiceProvider interface {
	Name() string
	Register(app *Application) error
	Boot(ctx context.Context, app *Application) error
}

// Preset installs front-end scaffolding into the host application
type Preset func(ctx context.Context, app *Application) error

// Application holds the services shared by the providers, the commands and the server
type Application struct {
	mu         sync.Mutex
	cfg        *config.Config
	beans      *container.Container
	router     *route.Router
	views      *view.Factory
	translator *translation.Translator
	publisher  *publish.Publisher
	migrator   *migrations.Migrator
	remotes    *fields.Remotes
	events     *event.Dispatcher
	sealer     *crypt.Sealer
	store      datastore.DataStore

	commands  []*cobra.Command
	presets   map[string]Preset
	providers []ServiceProvider
	booted    map[string]bool
}

// New creates an application for the config
func New(cfg *config.Config) (*Application, error) {
	key := cfg.AppKey
	if key == "" {
		key = os.Getenv(AppKeyEnv)
	}
	if key == "" {
		key = randomKey()
		log.Logger.Warnf("no application key is configured, the relation fields use a key valid for this process only")
	}
	sealer, err := crypt.NewSealer(key)
	if err != nil {
		return nil, err
	}
	a := &Application{
		cfg:        cfg,
		beans:      container.NewContainer(),
		router:     route.New(cfg.URLPrefix()),
		views:      view.NewFactory(),
		translator: translation.New(cfg.Locale),
		publisher:  publish.NewPublisher(),
		migrator:   migrations.NewMigrator(),
		remotes:    fields.NewRemotes(),
		events:     event.NewDispatcher(),
		sealer:     sealer,
		presets:    make(map[string]Preset),
		booted:     make(map[string]bool),
	}
	if err := a.beans.ProvideWithName(RemotesBean, a.remotes); err != nil {
		return nil, fmt.Errorf("fail to provides the remotes bean to the container: %w", err)
	}
	if err := a.beans.ProvideWithName(SealerBean, a.sealer); err != nil {
		return nil, fmt.Errorf("fail to provides the sealer bean to the container: %w", err)
	}
	return a, nil
}

func randomKey() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return hex.EncodeToString(b)
}

// Config returns the application config
func (a *Application) Config() *config.Config { return a.cfg }

// Container returns the bean container
func (a *Application) Container() *container.Container { return a.beans }

// Router returns the dashboard router
func (a *Application) Router() *route.Router { return a.router }

// Views returns the view factory
func (a *Application) Views() *view.Factory { return a.views }

// Translator returns the translations
func (a *Application) Translator() *translation.Translator { return a.translator }

// Publisher returns the publishable groups
func (a *Application) Publisher() *publish.Publisher { return a.publisher }

// Migrator returns the loaded migration sources
func (a *Application) Migrator() *migrations.Migrator { return a.migrator }

// Remotes returns the remotes of the relation fields
func (a *Application) Remotes() *fields.Remotes { return a.remotes }

// Events returns the event dispatcher
func (a *Application) Events() *event.Dispatcher { return a.events }

// Sealer returns the sealer of the relation parameters
func (a *Application) Sealer() *crypt.Sealer { return a.sealer }

// Dashboard returns the dashboard registry bound in the container
func (a *Application) Dashboard() *dashboard.Dashboard {
	bean, ok := a.beans.Get(DashboardBean)
	if !ok {
		return nil
	}
	d, _ := bean.(*dashboard.Dashboard)
	return d
}

// SetStore binds the datastore, it can be bound once
func (a *Application) SetStore(store datastore.DataStore) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.beans.ProvideWithName(DatastoreBean, store); err != nil {
		return fmt.Errorf("fail to provides the datastore bean to the container: %w", err)
	}
	a.store = store
	return nil
}

// Store returns the bound datastore, nil before SetStore
func (a *Application) Store() datastore.DataStore {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.store
}

// AddCommands adds CLI commands, a command whose name is known is ignored
func (a *Application) AddCommands(commands ...*cobra.Command) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, c := range commands {
		exist := false
		for _, known := range a.commands {
			if known.Name() == c.Name() {
				exist = true
				break
			}
		}
		if !exist {
			a.commands = append(a.commands, c)
		}
	}
}

// Commands returns the registered CLI commands in registration order
func (a *Application) Commands() []*cobra.Command {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]*cobra.Command(nil), a.commands...)
}

// RegisterPreset adds a preset, it reports false and keeps the existing one when the name is known
func (a *Application) RegisterPreset(name string, preset Preset) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, exist := a.presets[name]; exist {
		return false
	}
	a.presets[name] = preset
	return true
}

// Preset returns the preset registered under the name
func (a *Application) Preset(name string) (Preset, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	p, ok := a.presets[name]
	return p, ok
}

// Presets returns the sorted preset names
func (a *Application) Presets() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	var names []string
	for name := range a.presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Register registers the providers, a provider whose name is known is ignored.
// Providers registered while the application boots are booted after the current ones.
func (a *Application) Register(providers ...ServiceProvider) error {
	for _, p := range providers {
		if a.registered(p.Name()) {
			continue
		}
		if err := p.Register(a); err != nil {
			return fmt.Errorf("register provider %s failure %w", p.Name(), err)
		}
		a.mu.Lock()
		a.providers = append(a.providers, p)
		a.mu.Unlock()
	}
	return nil
}

func (a *Application) registered(name string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, p := range a.providers {
		if p.Name() == name {
			return true
		}
	}
	return false
}

// Providers returns the names of the registered providers in registration order
func (a *Application) Providers() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	var names []string
	for _, p := range a.providers {
		names = append(names, p.Name())
	}
	return names
}

// Boot boots every registered provider once, in registration order
func (a *Application) Boot(ctx context.Context) error {
	for i := 0; ; i++ {
		a.mu.Lock()
		if i >= len(a.providers) {
			a.mu.Unlock()
			return nil
		}
		p := a.providers[i]
		if a.booted[p.Name()] {
			a.mu.Unlock()
			continue
		}
		a.booted[p.Name()] = true
		a.mu.Unlock()
		if err := p.Boot(ctx, a); err != nil {
			return fmt.Errorf("boot provider %s failure %w", p.Name(), err)
		}
		log.Logger.Debugf("provider %s booted", p.Name())
	}
}

// Populate fills the dependencies of the beans, call it once every bean is provided
func (a *Application) Populate() error {
	if a.beans.Populated() {
		return nil
	}
	if err := a.beans.Populate(); err != nil {
		return fmt.Errorf("fail to populate the bean container: %w", err)
	}
	return nil
}

// RenderContext returns the render context of the dashboard pages
func (a *Application) RenderContext() screen.RenderContext {
	return screen.RenderContext{
		Views:      a.views,
		Translator: a.translator,
		Sealer:     a.sealer,
		Dashboard:  a.Dashboard(),
		Store:      a.Store(),
		Prefix:     a.router.Prefix(),
		Locale:     a.cfg.Locale,
	}
}
