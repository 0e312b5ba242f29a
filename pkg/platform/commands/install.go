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
	"runtime"
	"strings"

	"github.com/hashicorp/go-version"
	"github.com/spf13/cobra"

	"github.com/kubevela/platform/pkg/platform/app"
	"github.com/kubevela/platform/pkg/platform/publish"
)

// MinGoVersion the oldest go release able to build the published stubs
const MinGoVersion = "1.22"

// InstallTags the publish groups written by install
var InstallTags = []string{"platform-stubs", "platform-assets", "migrations", "config"}

// NewInstallCommand publishes every platform file into the application
func NewInstallCommand(a *app.Application) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:         "install",
		Short:       "Install all of the platform resources.",
		Annotations: group(GroupInstall),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if err := CheckGoVersion(runtime.Version()); err != nil {
				fmt.Fprintf(out, "%s %s\n", emojiLightBulb, yellow.Sprint(err.Error()))
			}
			s := newTrackingSpinner("Publishing the platform resources ...")
			s.Writer = out
			s.Start()
			results, err := a.Publisher().Publish(publish.Options{Tags: InstallTags, Force: force})
			s.Stop()
			printPublished(out, a.Config().BasePath, results)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%s the platform is installed\n", emojiSucceed)
			fmt.Fprintf(out, "%s run %s to create the first administrator\n", emojiLightBulb, white.Sprint("platform admin"))
			return nil
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite the files that already exist.")
	return cmd
}

// CheckGoVersion reports an error when the go release is older than MinGoVersion
func CheckGoVersion(goVersion string) error {
	raw := strings.TrimPrefix(goVersion, "go")
	if i := strings.IndexAny(raw, " -"); i >= 0 {
		raw = raw[:i]
	}
	current, err := version.NewVersion(raw)
	if err != nil {
		return fmt.Errorf("unknown go version %s", goVersion)
	}
	if current.LessThan(version.Must(version.NewVersion(MinGoVersion))) {
		return fmt.Errorf("go %s is required to build the published files, found %s", MinGoVersion, current)
	}
	return nil
}
