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
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/kubevela/platform/pkg/platform/app"
	"github.com/kubevela/platform/pkg/platform/resources"
)

// NewLinkCommand makes the dashboard assets reachable from the public directory of the application
func NewLinkCommand(a *app.Application) *cobra.Command {
	var source string
	cmd := &cobra.Command{
		Use:         "link",
		Short:       "Create the link to the platform public assets.",
		Long:        "Link a directory of compiled assets, or extract the bundled ones, to public/vendor/platform.",
		Annotations: group(GroupInstall),
		RunE: func(cmd *cobra.Command, args []string) error {
			target := a.Config().PublicPath("vendor", "platform")
			if err := Link(source, target); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s the platform assets are available in %s\n", emojiSucceed, target)
			return nil
		},
	}
	cmd.Flags().StringVar(&source, "source", "", "A directory of compiled assets to link instead of the bundled ones.")
	return cmd
}

// Link replaces the target by a symlink to the source, or by a copy of the bundled assets when the source is empty.
func Link(source, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0750); err != nil {
		return err
	}
	if info, err := os.Lstat(target); err == nil {
		if info.Mode()&os.ModeSymlink == 0 && source != "" {
			return fmt.Errorf("%s exists and is not a link", target)
		}
		if err := os.RemoveAll(target); err != nil {
			return err
		}
	}
	if source != "" {
		abs, err := filepath.Abs(source)
		if err != nil {
			return err
		}
		return os.Symlink(abs, target)
	}
	return fs.WalkDir(resources.FS, resources.PublicDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(resources.PublicDir, filepath.FromSlash(p))
		if err != nil {
			return err
		}
		dst := filepath.Join(target, rel)
		if d.IsDir() {
			return os.MkdirAll(dst, 0750)
		}
		data, err := fs.ReadFile(resources.FS, path.Clean(p))
		if err != nil {
			return err
		}
		return os.WriteFile(dst, data, 0600)
	})
}
