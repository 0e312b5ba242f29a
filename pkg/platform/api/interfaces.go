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
	"github.com/go-playground/validator/v10"

	"github.com/kubevela/platform/pkg/platform/route"
)

// versionPrefix API version prefix.
var versionPrefix = "/api/v1"

var validate = validator.New()

// Interface the API registers its routes on the dashboard router
type Interface interface {
	RegisterRoutes(r *route.Router)
}

// InitAPIBean creates every API, the dependencies are filled by the bean container
func InitAPIBean() []interface{} {
	return []interface{}{NewRelationAPIInterface(), NewSearchAPIInterface(), NewAssetsAPIInterface()}
}

// RelationRequest asks the options of a relation field
type RelationRequest struct {
	// Scope is the sealed source of the field
	Scope  string `json:"scope" validate:"required"`
	Search string `json:"search"`
	Limit  int    `json:"limit" validate:"min=0,max=100"`
}

// SearchResult a record found by the global search
type SearchResult struct {
	Type  string `json:"type"`
	Label string `json:"label"`
	Key   string `json:"key"`
	Title string `json:"title"`
}

// SearchResponse the records found by the global search
type SearchResponse struct {
	Query   string         `json:"query"`
	Results []SearchResult `json:"results"`
}
