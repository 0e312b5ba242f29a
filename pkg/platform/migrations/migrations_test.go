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
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kubevela/platform/pkg/platform/resources"
)

func TestVersions(t *testing.T) {
	versions, err := Versions(Source{Name: "platform", FS: resources.FS, Dir: resources.MigrationsDir})
	require.NoError(t, err)
	assert.Equal(t, []uint{1}, versions)

	fsys := fstest.MapFS{
		"db/0003_c.up.sql":   {Data: []byte("SELECT 3;")},
		"db/0001_a.up.sql":   {Data: []byte("SELECT 1;")},
		"db/0001_a.down.sql": {Data: []byte("SELECT 1;")},
		"db/0002_b.up.sql":   {Data: []byte("SELECT 2;")},
	}
	versions, err = Versions(Source{Name: "host", FS: fsys, Dir: "db"})
	require.NoError(t, err)
	assert.Equal(t, []uint{1, 2, 3}, versions)

	_, err = Versions(Source{Name: "missing", FS: fsys, Dir: "none"})
	assert.Error(t, err)
}

func TestLoadFrom(t *testing.T) {
	m := NewMigrator()
	m.LoadFrom("platform", resources.FS, resources.MigrationsDir)
	m.LoadFrom("host", fstest.MapFS{}, "db")
	m.LoadFrom("platform", fstest.MapFS{}, "other")

	sources := m.Sources()
	require.Len(t, sources, 2)
	assert.Equal(t, "platform", sources[0].Name)
	assert.Equal(t, resources.MigrationsDir, sources[0].Dir)
	assert.Equal(t, "host", sources[1].Name)
}

func TestUpCanceled(t *testing.T) {
	m := NewMigrator()
	m.LoadFrom("platform", resources.FS, resources.MigrationsDir)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, m.Up(ctx, nil), context.Canceled)
}
