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

package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/emicklei/go-restful/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"sigs.k8s.io/controller-runtime/pkg/client/fake"

	"github.com/kubevela/platform/pkg/platform/dashboard"
	"github.com/kubevela/platform/pkg/platform/datastore"
	"github.com/kubevela/platform/pkg/platform/datastore/kubeapi"
	"github.com/kubevela/platform/pkg/platform/model"
	"github.com/kubevela/platform/pkg/platform/route"
	"github.com/kubevela/platform/pkg/platform/screen/fields"
	"github.com/kubevela/platform/pkg/platform/utils/crypt"
)

type staticRemote struct{}

func (staticRemote) Find(ctx context.Context, id string) (fields.Record, error) {
	return fields.Record{"id": id, "text": "Record " + id}, nil
}

type searchableRemote struct{ staticRemote }

func (searchableRemote) Search(ctx context.Context, query string, limit int) ([]fields.Record, error) {
	return []fields.Record{{"id": "1", "text": "Record 1 " + query}}, nil
}

type testServer struct {
	container *restful.Container
	sealer    *crypt.Sealer
}

func newTestServer(t *testing.T) *testServer {
	ctx := context.Background()
	store, err := kubeapi.New(ctx, datastore.Config{Database: "api-test"}, fake.NewClientBuilder().Build())
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		require.NoError(t, store.Add(ctx, &model.Role{Slug: fmt.Sprintf("role-%d", i), Name: fmt.Sprintf("Role name %d", i)}))
	}
	sealer, err := crypt.NewSealer("api-test")
	require.NoError(t, err)
	remotes := fields.NewRemotes()
	remotes.Register("static", staticRemote{})
	remotes.Register("searchable", searchableRemote{})
	d := dashboard.New()
	d.RegisterSearch(dashboard.Searchable{Label: "Roles", Entity: &model.Role{}, Fields: []string{"name", "slug"}, Display: "name"})

	r := route.New("dashboard")
	(&relationAPIInterface{Store: store, Remotes: remotes, Sealer: sealer}).RegisterRoutes(r)
	(&searchAPIInterface{Store: store, Dashboard: d}).RegisterRoutes(r)
	NewAssetsAPIInterface().RegisterRoutes(r)
	c := restful.NewContainer()
	c.Add(r.WebService())
	return &testServer{container: c, sealer: sealer}
}

func (s *testServer) seal(t *testing.T, scope fields.Scope) string {
	data, err := json.Marshal(scope)
	require.NoError(t, err)
	sealed, err := s.sealer.Seal(string(data))
	require.NoError(t, err)
	return sealed
}

func (s *testServer) do(method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", restful.MIME_JSON)
	req.Header.Set("Accept", restful.MIME_JSON)
	rec := httptest.NewRecorder()
	s.container.ServeHTTP(rec, req)
	return rec
}

func relationBody(t *testing.T, scope, search string) string {
	data, err := json.Marshal(RelationRequest{Scope: scope, Search: search})
	require.NoError(t, err)
	return string(data)
}

func TestRelationModel(t *testing.T) {
	s := newTestServer(t)
	scope := s.seal(t, fields.Scope{Kind: fields.ScopeModel, Name: "platform_role", Attribute: "name"})

	rec := s.do(http.MethodPost, "/dashboard/api/v1/relation", relationBody(t, scope, "NAME 3"))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var options []fields.Option
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &options))
	assert.Equal(t, []fields.Option{{Key: "role-3", Label: "Role name 3"}}, options)

	rec = s.do(http.MethodPost, "/dashboard/api/v1/relation", relationBody(t, scope, ""))
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &options))
	assert.Len(t, options, 5)
}

func TestRelationRemote(t *testing.T) {
	s := newTestServer(t)
	scope := s.seal(t, fields.Scope{Kind: fields.ScopeRemote, Name: "searchable", Attribute: "text"})
	rec := s.do(http.MethodPost, "/dashboard/api/v1/relation", relationBody(t, scope, "abc"))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[{"id":"1","text":"Record 1 abc"}]`, rec.Body.String())

	scope = s.seal(t, fields.Scope{Kind: fields.ScopeRemote, Name: "static", Attribute: "text"})
	rec = s.do(http.MethodPost, "/dashboard/api/v1/relation", relationBody(t, scope, "abc"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRelationInvalidScope(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(http.MethodPost, "/dashboard/api/v1/relation", relationBody(t, "not-sealed", ""))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodPost, "/dashboard/api/v1/relation", relationBody(t, "", ""))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	scope := s.seal(t, fields.Scope{Kind: fields.ScopeModel, Name: "platform_unknown", Attribute: "name"})
	rec = s.do(http.MethodPost, "/dashboard/api/v1/relation", relationBody(t, scope, ""))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSearch(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(http.MethodGet, "/dashboard/api/v1/search?query=role-2", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var resp SearchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, []SearchResult{{Type: "platform_role", Label: "Roles", Key: "role-2", Title: "Role name 2"}}, resp.Results)

	rec = s.do(http.MethodGet, "/dashboard/api/v1/search?query=role&limit=2&type=platform_role", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Results, 2)

	rec = s.do(http.MethodGet, "/dashboard/api/v1/search", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Empty(t, resp.Results)

	rec = s.do(http.MethodGet, "/dashboard/api/v1/search?query=x&type=platform_unknown", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAssets(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/dashboard/css/dashboard.css", nil)
	rec := httptest.NewRecorder()
	s.container.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/css")

	req = httptest.NewRequest(http.MethodGet, "/dashboard/js/missing.js", nil)
	rec = httptest.NewRecorder()
	s.container.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
