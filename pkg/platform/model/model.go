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

package model

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/kubevela/platform/pkg/platform/datastore"
)

var tableNamePrefix = "platform_"

var (
	registeredModels = map[string]datastore.Entity{}
	registerLock     sync.RWMutex
)

// RegisterModel register model
func RegisterModel(models ...datastore.Entity) {
	registerLock.Lock()
	defer registerLock.Unlock()
	for _, model := range models {
		if _, exist := registeredModels[model.TableName()]; exist {
			panic(fmt.Errorf("model table name %s conflict", model.TableName()))
		}
		registeredModels[model.TableName()] = model
	}
}

// LookupModel returns the registered model of the table
func LookupModel(tableName string) (datastore.Entity, bool) {
	registerLock.RLock()
	defer registerLock.RUnlock()
	model, ok := registeredModels[tableName]
	return model, ok
}

// GetRegisterModels returns the table names of the registered models
func GetRegisterModels() []string {
	registerLock.RLock()
	defer registerLock.RUnlock()
	var tables []string
	for table := range registeredModels {
		tables = append(tables, table)
	}
	sort.Strings(tables)
	return tables
}

// BaseModel common model
type BaseModel struct {
	CreateTime time.Time `json:"createTime"`
	UpdateTime time.Time `json:"updateTime"`
}

// SetCreateTime set create time
func (m *BaseModel) SetCreateTime(time time.Time) {
	m.CreateTime = time
}

// SetUpdateTime set update time
func (m *BaseModel) SetUpdateTime(time time.Time) {
	m.UpdateTime = time
}

// Presenter is implemented by the models exposed through the global search
type Presenter interface {
	// SearchLabel names the group of results
	SearchLabel() string
	// SearchFields are the json paths matched against the query
	SearchFields() []string
	// SearchTitle is the json path of the text shown for a result
	SearchTitle() string
}
