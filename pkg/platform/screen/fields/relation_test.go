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

package fields

import (
	"context"
	"fmt"
	"html/template"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"sigs.k8s.io/controller-runtime/pkg/client/fake"

	"github.com/kubevela/platform/pkg/platform/dashboard"
	"github.com/kubevela/platform/pkg/platform/datastore"
	"github.com/kubevela/platform/pkg/platform/datastore/kubeapi"
	"github.com/kubevela/platform/pkg/platform/model"
	"github.com/kubevela/platform/pkg/platform/resources"
	"github.com/kubevela/platform/pkg/platform/screen"
	"github.com/kubevela/platform/pkg/platform/translation"
	"github.com/kubevela/platform/pkg/platform/utils/crypt"
	"github.com/kubevela/platform/pkg/platform/view"
)

// ajaxRecord answers every numeric id with a record named after it
type ajaxRecord struct{}

func (ajaxRecord) Find(ctx context.Context, id string) (Record, error) {
	if _, err := strconv.Atoi(id); err != nil {
		return nil, ErrRecordNotFound
	}
	return Record{"id": id, "text": "Record " + id}, nil
}

func newStore(t *testing.T) (datastore.DataStore, []*model.Role) {
	ctx := context.Background()
	store, err := kubeapi.New(ctx, datastore.Config{Database: "relation-test"}, fake.NewClientBuilder().Build())
	require.NoError(t, err)
	var roles []*model.Role
	for i := 0; i < 10; i++ {
		role := &model.Role{Slug: fmt.Sprintf("role-%d", i), Name: fmt.Sprintf("Role name %d", i)}
		require.NoError(t, store.Add(ctx, role))
		roles = append(roles, role)
	}
	return store, roles
}

func newRenderContext(t *testing.T, store datastore.DataStore) *screen.RenderContext {
	views := view.NewFactory()
	views.Funcs(template.FuncMap{"__": func(key string) string { return key }})
	views.AddNamespace("platform", resources.FS, resources.ViewsDir)
	tr := translation.New("en")
	require.NoError(t, tr.LoadJSON(resources.FS, resources.LangDir))
	sealer, err := crypt.NewSealer("test-key")
	require.NoError(t, err)
	return &screen.RenderContext{
		Views:      views,
		Translator: tr,
		Sealer:     sealer,
		Dashboard:  dashboard.New(),
		Store:      store,
		Prefix:     "/dashboard",
		Locale:     "en",
	}
}

func labels(options []Option) []string {
	var out []string
	for _, o := range options {
		out = append(out, o.Label)
	}
	return out
}

func TestRelationSingleEntity(t *testing.T) {
	store, roles := newStore(t)
	rc := newRenderContext(t, store)
	current := roles[3]

	field := NewRelation("role").
		Title("Select role").
		FromModel(store, &model.Role{}, "name").
		Value(current)

	options, err := field.Options(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []Option{{Key: "role-3", Label: "Role name 3"}}, options)
	assert.False(t, field.Multiple())

	html, err := field.Render(context.Background(), rc)
	require.NoError(t, err)
	assert.Contains(t, string(html), current.Name)
	assert.Contains(t, string(html), "Select role")
	assert.Contains(t, string(html), `name="role"`)
}

func TestRelationSingleKey(t *testing.T) {
	store, roles := newStore(t)
	rc := newRenderContext(t, store)
	current := roles[5]

	field := NewRelation("role").
		Title("Select roles").
		FromModel(store, &model.Role{}, "name").
		Value(current.Slug)

	options, err := field.Options(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []Option{{Key: "role-5", Label: "Role name 5"}}, options)

	html, err := field.Render(context.Background(), rc)
	require.NoError(t, err)
	assert.Contains(t, string(html), current.Name)
	assert.Contains(t, string(html), "Select roles")
}

func TestRelationMultipleEntities(t *testing.T) {
	store, roles := newStore(t)
	rc := newRenderContext(t, store)

	field := NewRelation("role.").
		FromModel(store, &model.Role{}, "name").
		Value([]*model.Role{roles[7], roles[2], roles[7]})

	assert.True(t, field.Multiple())
	assert.Equal(t, "role[]", field.Name())
	options, err := field.Options(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Role name 7", "Role name 2"}, labels(options))

	html, err := field.Render(context.Background(), rc)
	require.NoError(t, err)
	assert.Contains(t, string(html), roles[7].Name)
	assert.Contains(t, string(html), roles[2].Name)
	assert.Contains(t, string(html), `name="role[]"`)
	assert.Contains(t, string(html), " multiple")
}

func TestRelationMultipleKeys(t *testing.T) {
	store, roles := newStore(t)
	rc := newRenderContext(t, store)
	ctx := context.Background()

	field := NewRelation("role.").
		FromModel(store, &model.Role{}, "name").
		Value([]string{roles[8].Slug, roles[1].Slug, "role-missing", roles[1].Slug})

	options, err := field.Options(ctx)
	require.NoError(t, err)

	var independent []Option
	for _, key := range []string{roles[8].Slug, roles[1].Slug} {
		single, err := NewRelation("role").FromModel(store, &model.Role{}, "name").Value(key).Options(ctx)
		require.NoError(t, err)
		require.Len(t, single, 1)
		independent = append(independent, single...)
	}
	assert.Len(t, options, 2)
	assert.ElementsMatch(t, independent, options)
	// the store returns the records in primary key order
	assert.Equal(t, []string{"Role name 1", "Role name 8"}, labels(options))

	html, err := field.Render(ctx, rc)
	require.NoError(t, err)
	assert.Contains(t, string(html), roles[8].Name)
	assert.Contains(t, string(html), roles[1].Name)
}

func TestRelationMissingKey(t *testing.T) {
	store, _ := newStore(t)
	options, err := NewRelation("role").FromModel(store, &model.Role{}, "name").Value("role-404").Options(context.Background())
	require.NoError(t, err)
	assert.Empty(t, options)

	options, err = NewRelation("role").FromModel(store, &model.Role{}, "name").Options(context.Background())
	require.NoError(t, err)
	assert.Empty(t, options)

	_, err = NewRelation("role").Value("1").Options(context.Background())
	assert.Error(t, err)
}

func TestRelationRemote(t *testing.T) {
	rc := newRenderContext(t, nil)

	field := NewRelation("role.").
		FromClass("ajax-record", ajaxRecord{}, "text").
		Value(1)

	options, err := field.Options(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []Option{{Key: "1", Label: "Record 1"}}, options)

	html, err := field.Render(context.Background(), rc)
	require.NoError(t, err)
	assert.Contains(t, string(html), "Record 1")

	options, err = NewRelation("role.").FromClass("ajax-record", ajaxRecord{}, "text").Value([]interface{}{3, "x", 2}).Options(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Record 3", "Record 2"}, labels(options))
}

func TestRelationScopeIsSealed(t *testing.T) {
	store, _ := newStore(t)
	rc := newRenderContext(t, store)
	field := NewRelation("role").FromModel(nil, &model.Role{}, "name").Value("role-1")

	html, err := field.Render(context.Background(), rc)
	require.NoError(t, err)
	assert.Contains(t, string(html), "Role name 1")
	assert.NotContains(t, string(html), "platform_role")
	assert.Contains(t, string(html), `data-fields--relation-route="/dashboard/api/v1/relation"`)
}

func TestModelSourceSearch(t *testing.T) {
	store, _ := newStore(t)
	source := &ModelSource{Store: store, Prototype: &model.Role{}, Attribute: "name"}
	options, err := source.Search(context.Background(), "name 4", 10)
	require.NoError(t, err)
	assert.Equal(t, []Option{{Key: "role-4", Label: "Role name 4"}}, options)

	options, err = source.Search(context.Background(), "", 3)
	require.NoError(t, err)
	assert.Len(t, options, 3)
	assert.Equal(t, Scope{Kind: ScopeModel, Name: "platform_role", Attribute: "name"}, source.Scope())
}

func TestHTMLName(t *testing.T) {
	assert.Equal(t, "role", htmlName("role"))
	assert.Equal(t, "role[]", htmlName("role."))
	assert.Equal(t, "user[roles][]", htmlName("user.roles."))
	assert.Equal(t, "field-user-roles", fieldID("user.roles."))
}

func TestRelationKeysOutsideTheStore(t *testing.T) {
	store, roles := newStore(t)
	ctx := context.Background()

	options, err := NewRelation("role.").FromModel(store, &model.Role{}, "name").
		Value([]string{roles[1].Slug, "no such role"}).Options(ctx)
	require.NoError(t, err)
	assert.Equal(t, []Option{{Key: "role-1", Label: "Role name 1"}}, options)

	options, err = NewRelation("role").FromModel(store, &model.Role{}, "name").Value("Role/1").Options(ctx)
	require.NoError(t, err)
	assert.Empty(t, options)
}

func TestRelationNilEntities(t *testing.T) {
	store, roles := newStore(t)
	rc := newRenderContext(t, store)
	ctx := context.Background()

	field := NewRelation("role").Title("Role").FromModel(store, &model.Role{}, "name").Value((*model.Role)(nil))
	options, err := field.Options(ctx)
	require.NoError(t, err)
	assert.Empty(t, options)
	_, err = field.Render(ctx, rc)
	require.NoError(t, err)

	options, err = NewRelation("role.").FromModel(store, &model.Role{}, "name").
		Value([]*model.Role{nil, roles[2], nil}).Options(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Role name 2"}, labels(options))

	options, err = NewRelation("role.").FromModel(store, &model.Role{}, "name").
		Value([]string(nil)).Options(ctx)
	require.NoError(t, err)
	assert.Empty(t, options)
}

func TestRelationRenderUsesTheRequestStore(t *testing.T) {
	first, _ := newStore(t)
	second, err := kubeapi.New(context.Background(), datastore.Config{Database: "relation-other"}, fake.NewClientBuilder().Build())
	require.NoError(t, err)
	require.NoError(t, second.Add(context.Background(), &model.Role{Slug: "role-1", Name: "Other role 1"}))

	field := NewRelation("role").FromModel(nil, &model.Role{}, "name").Value("role-1")

	html, err := field.Render(context.Background(), newRenderContext(t, first))
	require.NoError(t, err)
	assert.Contains(t, string(html), "Role name 1")

	html, err = field.Render(context.Background(), newRenderContext(t, second))
	require.NoError(t, err)
	assert.Contains(t, string(html), "Other role 1")
	assert.NotContains(t, string(html), "Role name 1")

	source, ok := field.Source().(*ModelSource)
	require.True(t, ok)
	assert.Nil(t, source.Store)
}
