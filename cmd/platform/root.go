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

package main

import (
	"github.com/spf13/cobra"
	utilerrors "k8s.io/apimachinery/pkg/util/errors"

	"github.com/kubevela/platform/cmd/platform/app/options"
	"github.com/kubevela/platform/pkg/platform/app"
	"github.com/kubevela/platform/pkg/platform/commands"
	"github.com/kubevela/platform/pkg/platform/foundation"
	"github.com/kubevela/platform/pkg/platform/utils/log"
	"github.com/kubevela/platform/pkg/platform/version"
)

// NewPlatformCommand builds the application from the arguments and returns the root command
// holding the commands of the registered providers.
func NewPlatformCommand(args []string) (*cobra.Command, error) {
	s := options.NewPlatformOptions()
	if err := s.Complete(args); err != nil {
		return nil, err
	}
	a, err := app.New(s.GenericOptions)
	if err != nil {
		return nil, err
	}
	if err := a.Register(foundation.New()); err != nil {
		return nil, err
	}

	cmd := &cobra.Command{
		Use:          "platform",
		Short:        "The platform dashboard toolkit.",
		Long:         "Install, scaffold and serve the platform dashboard.",
		Version:      version.Info(),
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if errs := s.Validate(); len(errs) != 0 {
				return utilerrors.NewAggregate(errs)
			}
			if err := log.SetLevel(s.GenericOptions.LogLevel); err != nil {
				return err
			}
			return a.Boot(cmd.Context())
		},
	}
	cmd.SetArgs(args)
	for _, f := range s.Flags().FlagSets {
		cmd.PersistentFlags().AddFlagSet(f)
	}
	cmd.AddGroup(
		&cobra.Group{ID: commands.GroupInstall, Title: "Install Commands:"},
		&cobra.Group{ID: commands.GroupMake, Title: "Generator Commands:"},
		&cobra.Group{ID: commands.GroupServe, Title: "Server Commands:"},
	)
	for _, c := range a.Commands() {
		c.GroupID = c.Annotations["group"]
		cmd.AddCommand(c)
	}
	return cmd, nil
}
