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

package migrations

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"sync"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/kubevela/platform/pkg/platform/utils/log"
)

// Source is a named directory of migration files
type Source struct {
	Name string
	FS   fs.FS
	Dir  string
}

// Migrator keeps the migration sources loaded by the service providers
type Migrator struct {
	mu      sync.Mutex
	sources []Source
}

// NewMigrator creates an empty migrator
func NewMigrator() *Migrator {
	return &Migrator{}
}

// LoadFrom registers a migration source, loading the same name twice keeps the first one.
func (m *Migrator) LoadFrom(name string, fsys fs.FS, dir string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.sources {
		if s.Name == name {
			return
		}
	}
	m.sources = append(m.sources, Source{Name: name, FS: fsys, Dir: dir})
}

// Sources returns the loaded sources in load order
func (m *Migrator) Sources() []Source {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Source(nil), m.sources...)
}

// Versions lists the migration versions of a source in ascending order
func Versions(s Source) ([]uint, error) {
	driver, err := open(s)
	if err != nil {
		return nil, err
	}
	defer func() { _ = driver.Close() }()
	var versions []uint
	version, err := driver.First()
	for err == nil {
		versions = append(versions, version)
		version, err = driver.Next(version)
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	return versions, nil
}

func open(s Source) (source.Driver, error) {
	driver, err := iofs.New(s.FS, s.Dir)
	if err != nil {
		return nil, fmt.Errorf("open migration source %s failure %w", s.Name, err)
	}
	return driver, nil
}

// Up applies every loaded source in load order, each source tracks its version in its own table.
func (m *Migrator) Up(ctx context.Context, db *sql.DB) error {
	for _, s := range m.Sources() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := up(db, s); err != nil {
			return err
		}
	}
	return nil
}

func up(db *sql.DB, s Source) error {
	src, err := open(s)
	if err != nil {
		return err
	}
	driver, err := postgres.WithInstance(db, &postgres.Config{MigrationsTable: "schema_migrations_" + s.Name})
	if err != nil {
		return fmt.Errorf("create migration driver failure %w", err)
	}
	mig, err := migrate.NewWithInstance("iofs", src, "postgres", driver)
	if err != nil {
		return fmt.Errorf("create migrator for %s failure %w", s.Name, err)
	}
	if err := mig.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			log.Logger.Infof("migrations of %s are up to date", s.Name)
			return nil
		}
		return fmt.Errorf("apply migrations of %s failure %w", s.Name, err)
	}
	log.Logger.Infof("migrations of %s applied", s.Name)
	return nil
}
