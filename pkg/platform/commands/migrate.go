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
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"

	"github.com/kubevela/platform/pkg/platform/app"
	"github.com/kubevela/platform/pkg/platform/migrations"
)

// NewMigrateCommand applies the migrations of every loaded source
func NewMigrateCommand(a *app.Application) *cobra.Command {
	var list bool
	cmd := &cobra.Command{
		Use:         "migrate",
		Short:       "Apply the database migrations.",
		Long:        "Apply the migrations of the platform and of the application to the postgres datastore.",
		Annotations: group(GroupInstall),
		RunE: func(cmd *cobra.Command, args []string) error {
			if list {
				return listMigrations(cmd, a)
			}
			cfg := a.Config().Datastore
			if cfg.Type != "postgres" {
				fmt.Fprintf(cmd.OutOrStdout(), "%s the %s datastore has no migrations to apply\n", emojiLightBulb, cfg.Type)
				return nil
			}
			db, err := sqlx.Open("postgres", cfg.URL)
			if err != nil {
				return fmt.Errorf("open database failure %w", err)
			}
			defer func() { _ = db.Close() }()
			if err := a.Migrator().Up(cmd.Context(), db.DB); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s migrations applied\n", emojiSucceed)
			return nil
		},
	}
	cmd.Flags().BoolVar(&list, "list", false, "List the loaded migration sources and their versions.")
	return cmd
}

func listMigrations(cmd *cobra.Command, a *app.Application) error {
	table := newUITable()
	table.AddRow("SOURCE", "VERSIONS")
	for _, s := range a.Migrator().Sources() {
		versions, err := migrationsVersions(s)
		if err != nil {
			return err
		}
		table.AddRow(s.Name, versions)
	}
	fmt.Fprintln(cmd.OutOrStdout(), table.String())
	return nil
}

func migrationsVersions(s migrations.Source) (string, error) {
	versions, err := migrations.Versions(s)
	if err != nil {
		return "", err
	}
	var out []string
	for _, v := range versions {
		out = append(out, strconv.FormatUint(uint64(v), 10))
	}
	return strings.Join(out, ", "), nil
}
