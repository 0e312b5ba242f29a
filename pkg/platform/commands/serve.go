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

package commands

import (
	"github.com/spf13/cobra"
	"sigs.k8s.io/controller-runtime/pkg/manager/signals"

	"github.com/kubevela/platform/pkg/platform/app"
	"github.com/kubevela/platform/pkg/platform/server"
)

// NewServeCommand runs the dashboard server
func NewServeCommand(a *app.Application) *cobra.Command {
	cmd := &cobra.Command{
		Use:         "serve",
		Short:       "Start running the dashboard server.",
		Annotations: group(GroupServe),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := signals.SetupSignalHandler()
			if _, err := a.OpenStore(ctx); err != nil {
				return err
			}
			s, err := server.New(a)
			if err != nil {
				return err
			}
			return s.Run(ctx)
		},
	}
	return cmd
}
