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
	"html/template"
	"os"
	"path"

	"github.com/pkg/errors"

	"github.com/kubevela/platform/pkg/platform/app"
	"github.com/kubevela/platform/pkg/platform/commands"
	"github.com/kubevela/platform/pkg/platform/config"
	"github.com/kubevela/platform/pkg/platform/dashboard"
	"github.com/kubevela/platform/pkg/platform/presets"
	"github.com/kubevela/platform/pkg/platform/publish"
	"github.com/kubevela/platform/pkg/platform/resources"
	"github.com/kubevela/platform/pkg/platform/route"
)

const (
	// Name the name of the foundation provider and of its publish groups
	Name = "platform"
	// ViewNamespace the namespace of the bundled views
	ViewNamespace = "platform"
	// ScreenMacro the route macro registering a screen
	ScreenMacro = "screen"
)

// Publish tags of the foundation provider
const (
	TagStubs      = "platform-stubs"
	TagAssets     = "platform-assets"
	TagMigrations = "migrations"
	TagConfig     = "config"
	TagViews      = "views"
)

// Foundation registers the platform services and boots the platform providers
type Foundation struct{}

var _ app.ServiceProvider = &Foundation{}

// New returns the foundation provider
func New() *Foundation {
	return &Foundation{}
}

// Name of the provider
func (f *Foundation) Name() string {
	return Name
}

// Register adds the commands, the dashboard, the screen macro, the bundled config and the presets
func (f *Foundation) Register(a *app.Application) error {
	a.AddCommands(commands.All(a)...)
	if _, err := a.Container().Singleton(app.DashboardBean, func() interface{} { return dashboard.New() }); err != nil {
		return errors.Wrap(err, "bind the dashboard")
	}
	a.Router().RegisterMacro(ScreenMacro, route.ScreenMacro)
	if err := mergeConfig(a.Config()); err != nil {
		return err
	}
	a.RegisterPreset(presets.SourcePreset, presets.Source)
	a.RegisterPreset(presets.PlatformPreset, presets.Platform)
	return nil
}

// mergeConfig fills the values missing from the application config with the bundled ones
func mergeConfig(cfg *config.Config) error {
	data, err := resources.FS.ReadFile(resources.ConfigFile)
	if err != nil {
		return err
	}
	bundled, err := config.Parse(data)
	if err != nil {
		return err
	}
	return cfg.MergeFrom(bundled)
}

// Boot publishes the platform files, loads the translations and the views, then registers
// the Search, Active, Route, Event and Platform providers.
func (f *Foundation) Boot(ctx context.Context, a *app.Application) error {
	cfg := a.Config()
	p := a.Publisher()

	p.Publishes(Name, TagStubs, resources.FS,
		publish.Path{Src: path.Join(resources.InstallStubsDir, "routes"), Dst: cfg.Path("routes")},
		publish.Path{Src: path.Join(resources.InstallStubsDir, "platform"), Dst: cfg.AppPath("platform")})

	p.Publishes(Name, TagAssets, resources.FS,
		publish.Path{Src: resources.JSDir, Dst: cfg.ResourcePath("js", "platform")},
		publish.Path{Src: resources.SassDir, Dst: cfg.ResourcePath("sass", "platform")})

	p.Publishes(Name, TagMigrations, resources.FS,
		publish.Path{Src: resources.MigrationsDir, Dst: cfg.DatabasePath("migrations")})
	a.Migrator().LoadFrom(Name, resources.FS, resources.MigrationsDir)

	p.Publishes(Name, TagConfig, resources.FS,
		publish.Path{Src: resources.ConfigFile, Dst: cfg.ConfigPath()})

	if err := f.loadTranslations(a); err != nil {
		return err
	}
	f.loadViews(a)

	d := a.Dashboard()
	d.RegisterResource(dashboard.ResourceScripts, cfg.Resource.Scripts...)
	d.RegisterResource(dashboard.ResourceStylesheets, cfg.Resource.Stylesheets...)

	return a.Register(
		NewSearchProvider(),
		NewActiveProvider(),
		NewRouteProvider(),
		NewEventProvider(),
		NewPlatformProvider(),
	)
}

// loadTranslations loads the published translations before the bundled ones, so they win
func (f *Foundation) loadTranslations(a *app.Application) error {
	override := a.Config().ResourcePath("lang", "vendor", Name)
	if isDir(override) {
		if err := a.Translator().LoadJSON(os.DirFS(override), "."); err != nil {
			return err
		}
	}
	return a.Translator().LoadJSON(resources.FS, resources.LangDir)
}

// loadViews searches the published views before the bundled ones
func (f *Foundation) loadViews(a *app.Application) {
	cfg := a.Config()
	override := cfg.ResourcePath("views", "vendor", Name)
	views := a.Views()
	views.Funcs(template.FuncMap{
		"__": func(key string) string { return a.Translator().Get(cfg.Locale, key) },
	})
	if isDir(override) {
		views.AddNamespace(ViewNamespace, os.DirFS(override), ".")
	}
	views.AddNamespace(ViewNamespace, resources.FS, resources.ViewsDir)
	a.Publisher().Publishes(Name, TagViews, resources.FS,
		publish.Path{Src: resources.ViewsDir, Dst: override})
}

func isDir(p string) bool {
	info, err := os.Stat(p)
	return err == nil && info.IsDir()
}
