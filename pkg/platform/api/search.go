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
	"strconv"

	restfulspec "github.com/emicklei/go-restful-openapi/v2"
	"github.com/emicklei/go-restful/v3"

	"github.com/kubevela/platform/pkg/platform/dashboard"
	"github.com/kubevela/platform/pkg/platform/datastore"
	"github.com/kubevela/platform/pkg/platform/route"
	"github.com/kubevela/platform/pkg/platform/screen/fields"
	"github.com/kubevela/platform/pkg/platform/utils/bcode"
)

const defaultSearchLimit = 5

type searchAPIInterface struct {
	Store     datastore.DataStore  `inject:"datastore"`
	Dashboard *dashboard.Dashboard `inject:"dashboard"`
}

// NewSearchAPIInterface returns the API of the global search
func NewSearchAPIInterface() Interface {
	return &searchAPIInterface{}
}

func (s *searchAPIInterface) RegisterRoutes(router *route.Router) {
	tags := []string{"search"}
	path := versionPrefix + "/search"
	router.Add(router.Handle("GET", path, s.search, "platform.search").
		Doc("search the records of the searchable tables").
		Metadata(restfulspec.KeyOpenAPITags, tags).
		Param(restful.QueryParameter("query", "the text matched against the searchable fields").DataType("string")).
		Param(restful.QueryParameter("type", "limit the search to the table").DataType("string")).
		Param(restful.QueryParameter("limit", "the maximum results per table").DataType("integer")).
		Returns(200, "OK", SearchResponse{}).
		Returns(404, "Not Found", bcode.Bcode{}).
		Writes(SearchResponse{}), "platform.search", path)
}

func (s *searchAPIInterface) search(req *restful.Request, res *restful.Response) {
	query := req.QueryParameter("query")
	kind := req.QueryParameter("type")
	limit, err := strconv.Atoi(req.QueryParameter("limit"))
	if err != nil || limit <= 0 {
		limit = defaultSearchLimit
	}
	var targets []dashboard.Searchable
	for _, searchable := range s.Dashboard.Searchable() {
		if kind == "" || searchable.Entity.TableName() == kind {
			targets = append(targets, searchable)
		}
	}
	if kind != "" && len(targets) == 0 {
		bcode.ReturnError(req, res, bcode.ErrSearchTypeNotFound)
		return
	}
	resp := SearchResponse{Query: query, Results: []SearchResult{}}
	if query != "" {
		for _, target := range targets {
			results, err := s.searchTable(req, target, query, limit)
			if err != nil {
				bcode.ReturnError(req, res, err)
				return
			}
			resp.Results = append(resp.Results, results...)
		}
	}
	if err := res.WriteEntity(resp); err != nil {
		bcode.ReturnError(req, res, err)
		return
	}
}

// searchTable matches every field on its own, a record found twice is kept once
func (s *searchAPIInterface) searchTable(req *restful.Request, target dashboard.Searchable, query string, limit int) ([]SearchResult, error) {
	var results []SearchResult
	seen := make(map[string]bool)
	for _, field := range target.Fields {
		entity, err := datastore.NewEntity(target.Entity)
		if err != nil {
			return nil, err
		}
		entities, err := s.Store.List(req.Request.Context(), entity, &datastore.ListOptions{
			FilterOptions: datastore.FilterOptions{
				Queries: []datastore.FuzzyQueryOption{{Key: field, Query: query}},
			},
			Page:     1,
			PageSize: limit,
		})
		if err != nil {
			return nil, err
		}
		for _, e := range entities {
			if seen[e.PrimaryKey()] || len(results) >= limit {
				continue
			}
			seen[e.PrimaryKey()] = true
			results = append(results, SearchResult{
				Type:  e.TableName(),
				Label: target.Label,
				Key:   e.PrimaryKey(),
				Title: fields.Attribute(e, target.Display),
			})
		}
	}
	return results, nil
}
