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

package options

import (
	"flag"
	"io"
	"os"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	cliflag "k8s.io/component-base/cli/flag"
	"k8s.io/klog/v2"

	"github.com/kubevela/platform/pkg/platform/config"
)

// DefaultConfigFile the config read when it exists and no other file is given
const DefaultConfigFile = "config/platform.yaml"

// PlatformOptions contains everything necessary to create the platform application
type PlatformOptions struct {
	ConfigFile string
	EnvFile    string

	GenericOptions *config.Config
}

// NewPlatformOptions creates a new PlatformOptions object with default parameters
func NewPlatformOptions() *PlatformOptions {
	return &PlatformOptions{
		ConfigFile:     DefaultConfigFile,
		EnvFile:        ".env",
		GenericOptions: config.NewConfig(),
	}
}

// Flags returns the complete NamedFlagSets
func (s *PlatformOptions) Flags() (fss cliflag.NamedFlagSets) {
	bootstrap := fss.FlagSet("bootstrap")
	bootstrap.StringVar(&s.ConfigFile, "config", s.ConfigFile, "The platform config file, the flags take precedence over its values.")
	bootstrap.StringVar(&s.EnvFile, "env-file", s.EnvFile, "The dotenv file loaded before the config, existing variables are kept.")

	fs := fss.FlagSet("generic")
	s.GenericOptions.AddFlags(fs, s.GenericOptions)

	local := flag.NewFlagSet("klog", flag.ExitOnError)
	klog.InitFlags(local)
	fss.FlagSet("klog").AddGoFlagSet(local)
	return fss
}

// Complete loads the env file and the config file named by the arguments, then applies the
// arguments over the loaded values. Unknown flags are left to the commands.
func (s *PlatformOptions) Complete(args []string) error {
	pre := pflag.NewFlagSet("bootstrap", pflag.ContinueOnError)
	pre.ParseErrorsWhitelist.UnknownFlags = true
	pre.Usage = func() {}
	pre.SetOutput(io.Discard)
	pre.StringVar(&s.ConfigFile, "config", s.ConfigFile, "")
	pre.StringVar(&s.EnvFile, "env-file", s.EnvFile, "")
	if err := pre.Parse(args); err != nil && !errors.Is(err, pflag.ErrHelp) {
		return err
	}

	if err := godotenv.Load(s.EnvFile); err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, "load env file %s", s.EnvFile)
	}
	if _, err := os.Stat(s.ConfigFile); err == nil {
		loaded, err := config.LoadFile(s.ConfigFile)
		if err != nil {
			return err
		}
		if err := loaded.MergeFrom(s.GenericOptions); err != nil {
			return err
		}
		s.GenericOptions = loaded
	} else if s.ConfigFile != DefaultConfigFile {
		return errors.Wrapf(err, "read config file %s", s.ConfigFile)
	}

	all := pflag.NewFlagSet("platform", pflag.ContinueOnError)
	all.ParseErrorsWhitelist.UnknownFlags = true
	all.Usage = func() {}
	all.SetOutput(io.Discard)
	for _, f := range s.Flags().FlagSets {
		all.AddFlagSet(f)
	}
	if err := all.Parse(args); err != nil && !errors.Is(err, pflag.ErrHelp) {
		return err
	}
	return nil
}

// Validate checks the generic options
func (s *PlatformOptions) Validate() []error {
	return s.GenericOptions.Validate()
}
