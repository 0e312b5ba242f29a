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
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/kubevela/platform/pkg/platform/app"
	"github.com/kubevela/platform/pkg/platform/publish"
)

// NewPublishCommand publishes the files of the providers into the host application
func NewPublishCommand(a *app.Application) *cobra.Command {
	opts := publish.Options{}
	cmd := &cobra.Command{
		Use:         "publish",
		Short:       "Publish the platform files into the application.",
		Long:        "Publish the views, assets, migrations, config and stubs of the providers into the application.",
		Example:     "platform publish --tag views --force",
		Annotations: group(GroupInstall),
		RunE: func(cmd *cobra.Command, args []string) error {
			results, err := a.Publisher().Publish(opts)
			printPublished(cmd.OutOrStdout(), a.Config().BasePath, results)
			return err
		},
	}
	cmd.Flags().StringVar(&opts.Provider, "provider", "", "Publish the groups of the provider only.")
	cmd.Flags().StringSliceVarP(&opts.Tags, "tag", "t", nil, "Publish the groups with the tags only.")
	cmd.Flags().BoolVarP(&opts.Force, "force", "f", false, "Overwrite the files that already exist.")
	return cmd
}

func printPublished(out io.Writer, base string, results []publish.Result) {
	if len(results) == 0 {
		return
	}
	table := newUITable()
	table.AddRow("TAG", "FILE", "STATUS")
	copied := 0
	for _, r := range results {
		to := r.To
		if rel, err := filepath.Rel(base, r.To); err == nil {
			to = rel
		}
		status := yellow.Sprint(r.Status)
		if r.Status == publish.StatusCopied {
			status = green.Sprint(r.Status)
			copied++
		}
		table.AddRow(r.Tag, to, status)
	}
	fmt.Fprintln(out, table.String())
	fmt.Fprintf(out, "%s %d of %d files published\n", emojiSucceed, copied, len(results))
}
