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
	"encoding/json"

	restfulspec "github.com/emicklei/go-restful-openapi/v2"
	"github.com/emicklei/go-restful/v3"

	"github.com/kubevela/platform/pkg/platform/datastore"
	"github.com/kubevela/platform/pkg/platform/model"
	"github.com/kubevela/platform/pkg/platform/route"
	"github.com/kubevela/platform/pkg/platform/screen/fields"
	"github.com/kubevela/platform/pkg/platform/utils/bcode"
	"github.com/kubevela/platform/pkg/platform/utils/crypt"
)

const defaultRelationLimit = 10

type relationAPIInterface struct {
	Store   datastore.DataStore `inject:"datastore"`
	Remotes *fields.Remotes     `inject:"remotes"`
	Sealer  *crypt.Sealer       `inject:"sealer"`
}

// NewRelationAPIInterface returns the API answering the searches of the relation fields
func NewRelationAPIInterface() Interface {
	return &relationAPIInterface{}
}

func (r *relationAPIInterface) RegisterRoutes(router *route.Router) {
	tags := []string{"relation"}
	path := versionPrefix + "/relation"
	router.Add(router.Handle("POST", path, r.searchRelation, "platform.relation").
		Doc("search the options of a relation field").
		Metadata(restfulspec.KeyOpenAPITags, tags).
		Reads(RelationRequest{}).
		Returns(200, "OK", []fields.Option{}).
		Returns(400, "Bad Request", bcode.Bcode{}).
		Writes([]fields.Option{}), "platform.relation", path)
}

func (r *relationAPIInterface) searchRelation(req *restful.Request, res *restful.Response) {
	var relationReq RelationRequest
	if err := req.ReadEntity(&relationReq); err != nil {
		bcode.ReturnError(req, res, err)
		return
	}
	if err := validate.Struct(&relationReq); err != nil {
		bcode.ReturnError(req, res, err)
		return
	}
	source, err := r.source(relationReq.Scope)
	if err != nil {
		bcode.ReturnError(req, res, err)
		return
	}
	limit := relationReq.Limit
	if limit == 0 {
		limit = defaultRelationLimit
	}
	options, err := source.Search(req.Request.Context(), relationReq.Search, limit)
	if err != nil {
		bcode.ReturnError(req, res, err)
		return
	}
	if options == nil {
		options = []fields.Option{}
	}
	if err := res.WriteEntity(options); err != nil {
		bcode.ReturnError(req, res, err)
		return
	}
}

// source opens the sealed scope and builds the source it names
func (r *relationAPIInterface) source(sealed string) (fields.Source, error) {
	plain, err := r.Sealer.Open(sealed)
	if err != nil {
		return nil, bcode.ErrRelationParamInvalid
	}
	var scope fields.Scope
	if err := json.Unmarshal([]byte(plain), &scope); err != nil {
		return nil, bcode.ErrRelationParamInvalid
	}
	switch scope.Kind {
	case fields.ScopeModel:
		prototype, ok := model.LookupModel(scope.Name)
		if !ok {
			return nil, bcode.ErrRelationModelNotFound
		}
		return &fields.ModelSource{Store: r.Store, Prototype: prototype, Attribute: scope.Attribute}, nil
	case fields.ScopeRemote:
		remote, ok := r.Remotes.Get(scope.Name)
		if !ok {
			return nil, bcode.ErrRelationModelNotFound
		}
		if _, searchable := remote.(fields.Searcher); !searchable {
			return nil, bcode.ErrRelationNotSearchable
		}
		return &fields.RemoteSource{Name: scope.Name, Remote: remote, Attribute: scope.Attribute}, nil
	default:
		return nil, bcode.ErrRelationParamInvalid
	}
}
