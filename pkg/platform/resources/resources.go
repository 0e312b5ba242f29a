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

package resources

import "embed"

// FS holds the bundled views, translations, assets, stubs and migrations
//
//go:embed views lang js sass config migrations install-stubs stubs presets public
var FS embed.FS

const (
	// ViewsDir contains the html templates of the platform view namespace
	ViewsDir = "views"
	// LangDir contains one json translation file per locale
	LangDir = "lang"
	// JSDir contains the dashboard scripts sources
	JSDir = "js"
	// SassDir contains the dashboard stylesheet sources
	SassDir = "sass"
	// ConfigFile is the bundled default configuration
	ConfigFile = "config/platform.yaml"
	// MigrationsDir contains the sql migrations of the platform tables
	MigrationsDir = "migrations"
	// InstallStubsDir contains the example screens and routes published on install
	InstallStubsDir = "install-stubs"
	// StubsDir contains the templates of the make commands
	StubsDir = "stubs"
	// PresetsDir contains the front-end scaffolding of the presets
	PresetsDir = "presets"
	// PublicDir contains the compiled assets linked into the host public directory
	PublicDir = "public"
)
