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

package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"github.com/imdario/mergo"
	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"golang.org/x/text/language"
	"sigs.k8s.io/yaml"

	"github.com/kubevela/platform/pkg/platform/datastore"
)

// Resource the extra assets loaded by every dashboard page
type Resource struct {
	Scripts     []string `json:"scripts"`
	Stylesheets []string `json:"stylesheets"`
}

// Config config for the platform
type Config struct {
	// server bind address
	BindAddr string `json:"bindAddr" validate:"required,hostname_port"`

	// root of the host application, every published file is placed below it
	BasePath string `json:"basePath"`

	// url prefix of the dashboard routes
	Prefix string `json:"prefix" validate:"required"`

	// default locale of the dashboard
	Locale string `json:"locale" validate:"required"`

	// key sealing the relation field parameters
	AppKey string `json:"appKey"`

	LogLevel string `json:"logLevel" validate:"omitempty,oneof=debug info warn error"`

	// Datastore config
	Datastore datastore.Config `json:"datastore"`

	Resource Resource `json:"resource"`

	// tables exposed through the global search
	Search []string `json:"search"`

	// kube config path, used by the kubeapi datastore
	KubeConfig string `json:"kubeConfig"`
}

// NewConfig returns a Config with the default values
func NewConfig() *Config {
	return &Config{
		BindAddr: "0.0.0.0:8000",
		BasePath: ".",
		Prefix:   "dashboard",
		Locale:   "en",
		LogLevel: "info",
		Datastore: datastore.Config{
			Type:     "kubeapi",
			Database: "platform-store",
		},
	}
}

// Validate validate generic server run options
func (s *Config) Validate() []error {
	var errs []error
	if err := validator.New().Struct(s); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, verr := range verrs {
				errs = append(errs, fmt.Errorf("invalid config field %s: %s", verr.Namespace(), verr.Tag()))
			}
		} else {
			errs = append(errs, err)
		}
	}
	if s.Locale != "" {
		if _, err := language.Parse(s.Locale); err != nil {
			errs = append(errs, fmt.Errorf("invalid locale %s: %w", s.Locale, err))
		}
	}
	if s.Datastore.Type != "kubeapi" && s.Datastore.URL == "" {
		errs = append(errs, fmt.Errorf("the datastore url is required for the %s datastore", s.Datastore.Type))
	}
	return errs
}

// AddFlags adds flags to the specified FlagSet
func (s *Config) AddFlags(fs *pflag.FlagSet, c *Config) {
	fs.StringVar(&s.BindAddr, "bind-addr", c.BindAddr, "The bind address used to serve the http APIs.")
	fs.StringVar(&s.BasePath, "base-path", c.BasePath, "The root of the host application, published files are placed below it.")
	fs.StringVar(&s.Prefix, "prefix", c.Prefix, "The url prefix of the dashboard routes.")
	fs.StringVar(&s.Locale, "locale", c.Locale, "The default locale of the dashboard.")
	fs.StringVar(&s.AppKey, "app-key", c.AppKey, "The key sealing the relation field parameters, read from PLATFORM_APP_KEY when empty.")
	fs.StringVar(&s.LogLevel, "log-level", c.LogLevel, "The level of the platform logger, one of debug, info, warn, error.")
	fs.StringVar(&s.Datastore.Type, "datastore-type", c.Datastore.Type, "Metadata storage driver type, support kubeapi, mongodb and postgres")
	fs.StringVar(&s.Datastore.Database, "datastore-database", c.Datastore.Database, "Metadata storage database name, takes effect when the storage driver is mongodb or kubeapi.")
	fs.StringVar(&s.Datastore.URL, "datastore-url", c.Datastore.URL, "Metadata storage database url,takes effect when the storage driver is mongodb or postgres.")
	fs.StringVar(&s.KubeConfig, "kubeconfig", c.KubeConfig, "The kube config path used by the kubeapi datastore.")
	fs.StringSliceVar(&s.Resource.Scripts, "script", c.Resource.Scripts, "Extra scripts loaded by every dashboard page.")
	fs.StringSliceVar(&s.Resource.Stylesheets, "stylesheet", c.Resource.Stylesheets, "Extra stylesheets loaded by every dashboard page.")
}

// Parse reads a yaml config document
func Parse(data []byte) (*Config, error) {
	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, errors.Wrap(err, "parse platform config")
	}
	return &c, nil
}

// LoadFile reads the yaml config file
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, errors.Wrapf(err, "read config file %s", path)
	}
	return Parse(data)
}

// MergeFrom fills the fields that are still empty with the values of the defaults
func (s *Config) MergeFrom(defaults *Config) error {
	if defaults == nil {
		return nil
	}
	return mergo.Merge(s, *defaults)
}

// Path returns the path below the host application root
func (s *Config) Path(elem ...string) string {
	return filepath.Join(append([]string{s.BasePath}, elem...)...)
}

// ConfigPath the published platform config file
func (s *Config) ConfigPath() string {
	return s.Path("config", "platform.yaml")
}

// ResourcePath returns the path below the host resources directory
func (s *Config) ResourcePath(elem ...string) string {
	return s.Path(append([]string{"resources"}, elem...)...)
}

// DatabasePath returns the path below the host database directory
func (s *Config) DatabasePath(elem ...string) string {
	return s.Path(append([]string{"database"}, elem...)...)
}

// AppPath returns the path below the host app directory
func (s *Config) AppPath(elem ...string) string {
	return s.Path(append([]string{"app"}, elem...)...)
}

// PublicPath returns the path below the host public directory
func (s *Config) PublicPath(elem ...string) string {
	return s.Path(append([]string{"public"}, elem...)...)
}

// URLPrefix returns the prefix as an absolute url path
func (s *Config) URLPrefix() string {
	if s.Prefix == "" || s.Prefix == "/" {
		return ""
	}
	if s.Prefix[0] == '/' {
		return s.Prefix
	}
	return "/" + s.Prefix
}
