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
	"io/fs"
	"mime"
	"net/http"
	"path"

	"github.com/emicklei/go-restful/v3"

	"github.com/kubevela/platform/pkg/platform/resources"
	"github.com/kubevela/platform/pkg/platform/route"
	"github.com/kubevela/platform/pkg/platform/utils/log"
)

type assetsAPIInterface struct{}

// NewAssetsAPIInterface returns the API serving the bundled css and js files
func NewAssetsAPIInterface() Interface {
	return &assetsAPIInterface{}
}

func (a *assetsAPIInterface) RegisterRoutes(router *route.Router) {
	for _, kind := range []string{"css", "js"} {
		p := "/" + kind + "/{file}"
		router.Add(router.Handle("GET", p, a.asset(kind), "").
			Doc("serve a bundled "+kind+" file").
			Produces("text/css", "application/javascript"), "", p)
	}
}

func (a *assetsAPIInterface) asset(kind string) restful.RouteFunction {
	return func(req *restful.Request, res *restful.Response) {
		name := path.Base(req.PathParameter("file"))
		data, err := fs.ReadFile(resources.FS, path.Join(resources.PublicDir, kind, name))
		if err != nil {
			res.WriteHeader(http.StatusNotFound)
			return
		}
		contentType := mime.TypeByExtension(path.Ext(name))
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		res.Header().Set("Content-Type", contentType)
		res.Header().Set("Cache-Control", "public, max-age=3600")
		res.WriteHeader(http.StatusOK)
		if _, err := res.Write(data); err != nil {
			log.Logger.Errorf("write asset %s failure %s", name, err.Error())
		}
	}
}
