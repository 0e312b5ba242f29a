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

package app

import (
	"context"
	"fmt"

	"github.com/kubevela/platform/pkg/platform/clients"
	"github.com/kubevela/platform/pkg/platform/datastore"
	"github.com/kubevela/platform/pkg/platform/datastore/kubeapi"
	"github.com/kubevela/platform/pkg/platform/datastore/mongodb"
	"github.com/kubevela/platform/pkg/platform/datastore/sqlstore"
)

// OpenStore creates the datastore selected by the config and binds it
func (a *Application) OpenStore(ctx context.Context) (datastore.DataStore, error) {
	if store := a.Store(); store != nil {
		return store, nil
	}
	cfg := a.cfg.Datastore
	var ds datastore.DataStore
	var err error
	switch cfg.Type {
	case "mongodb":
		ds, err = mongodb.New(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("create mongodb datastore instance failure %w", err)
		}
	case "kubeapi":
		kubeClient, err := clients.GetKubeClient(a.cfg.KubeConfig)
		if err != nil {
			return nil, fmt.Errorf("create kube client failure %w", err)
		}
		ds, err = kubeapi.New(ctx, cfg, kubeClient)
		if err != nil {
			return nil, fmt.Errorf("create kubeapi datastore instance failure %w", err)
		}
	case "postgres":
		ds, err = sqlstore.New(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("create postgres datastore instance failure %w", err)
		}
	default:
		return nil, fmt.Errorf("not support datastore type %s", cfg.Type)
	}
	if err := a.SetStore(ds); err != nil {
		return nil, err
	}
	return ds, nil
}
