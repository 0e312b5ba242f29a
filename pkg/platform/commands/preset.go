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
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kubevela/platform/pkg/platform/app"
)

// NewPresetCommand installs a front-end preset
func NewPresetCommand(a *app.Application) *cobra.Command {
	cmd := &cobra.Command{
		Use:         "preset [name]",
		Short:       "Install a front-end preset.",
		Example:     "platform preset platform-source",
		Args:        cobra.MaximumNArgs(1),
		Annotations: group(GroupInstall),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := "platform"
			if len(args) > 0 {
				name = args[0]
			}
			preset, ok := a.Preset(name)
			if !ok {
				return fmt.Errorf("preset %s does not exist, the available presets are: %s", name, strings.Join(a.Presets(), ", "))
			}
			if err := preset(cmd.Context(), a); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s preset %s installed\n", emojiSucceed, white.Sprint(name))
			return nil
		},
	}
	return cmd
}
