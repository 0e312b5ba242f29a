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
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/kubevela/platform/pkg/platform/datastore"
	"github.com/kubevela/platform/pkg/platform/utils/log"
)

// Option a selectable value of a relation
type Option struct {
	Key   string `json:"id"`
	Label string `json:"text"`
}

// Scope identifies a source for the relation search endpoint
type Scope struct {
	// Kind is ScopeModel or ScopeRemote
	Kind string `json:"kind"`
	// Name is the table name of a model or the registered name of a remote
	Name      string `json:"name"`
	Attribute string `json:"attribute"`
}

const (
	// ScopeModel the source is a datastore table
	ScopeModel = "model"
	// ScopeRemote the source is a registered remote
	ScopeRemote = "remote"
)

// Source resolves relation values into options
type Source interface {
	// Resolve looks up the keys, keys missing from the source are dropped
	Resolve(ctx context.Context, keys []string) ([]Option, error)
	// Option builds the option of an already loaded entity
	Option(entity datastore.Entity) Option
	// Search returns the options whose display attribute matches the query
	Search(ctx context.Context, query string, limit int) ([]Option, error)
	Scope() Scope
}

// Attribute extracts the value at the json path of the encoded object
func Attribute(object interface{}, path string) string {
	data, err := json.Marshal(object)
	if err != nil {
		return ""
	}
	return gjson.GetBytes(data, path).String()
}

// ModelSource resolves keys against a datastore table
type ModelSource struct {
	Store     datastore.DataStore
	Prototype datastore.Entity
	Attribute string
}

var _ Source = &ModelSource{}

// Resolve runs one batch lookup on the primary key, the options follow the store order
func (m *ModelSource) Resolve(ctx context.Context, keys []string) ([]Option, error) {
	if len(keys) == 0 {
		return nil, nil
	}
	if m.Store == nil {
		return nil, fmt.Errorf("relation on %s has no datastore", m.Prototype.TableName())
	}
	query, err := datastore.NewEntity(m.Prototype)
	if err != nil {
		return nil, err
	}
	entities, err := m.Store.List(ctx, query, &datastore.ListOptions{
		FilterOptions: datastore.FilterOptions{
			In: []datastore.InQueryOption{{Key: datastore.PrimaryKeyIndex, Values: keys}},
		},
	})
	if err != nil {
		return nil, err
	}
	if len(entities) < len(keys) {
		log.Logger.Debugf("%d of %d keys of %s not found", len(keys)-len(entities), len(keys), m.Prototype.TableName())
	}
	options := make([]Option, 0, len(entities))
	for _, e := range entities {
		options = append(options, m.Option(e))
	}
	return options, nil
}

// Option uses the primary key and the display attribute of the entity
func (m *ModelSource) Option(entity datastore.Entity) Option {
	return Option{Key: entity.PrimaryKey(), Label: Attribute(entity, m.Attribute)}
}

// Search matches the display attribute
func (m *ModelSource) Search(ctx context.Context, query string, limit int) ([]Option, error) {
	if m.Store == nil {
		return nil, fmt.Errorf("relation on %s has no datastore", m.Prototype.TableName())
	}
	proto, err := datastore.NewEntity(m.Prototype)
	if err != nil {
		return nil, err
	}
	options := &datastore.ListOptions{
		SortBy: []datastore.SortOption{{Key: m.Attribute, Order: datastore.SortOrderAscending}},
	}
	if query != "" {
		options.Queries = []datastore.FuzzyQueryOption{{Key: m.Attribute, Query: query}}
	}
	if limit > 0 {
		options.Page, options.PageSize = 1, limit
	}
	entities, err := m.Store.List(ctx, proto, options)
	if err != nil {
		return nil, err
	}
	result := make([]Option, 0, len(entities))
	for _, e := range entities {
		result = append(result, m.Option(e))
	}
	return result, nil
}

// Scope names the table of the prototype
func (m *ModelSource) Scope() Scope {
	return Scope{Kind: ScopeModel, Name: m.Prototype.TableName(), Attribute: m.Attribute}
}

// Record a remote record, the display attribute is read from its json encoding
type Record map[string]interface{}

// ErrRecordNotFound is returned by remotes for unknown ids
var ErrRecordNotFound = errors.New("record not found")

// Remote finds a record by id
type Remote interface {
	Find(ctx context.Context, id string) (Record, error)
}

// Searcher is implemented by remotes supporting the relation search
type Searcher interface {
	Search(ctx context.Context, query string, limit int) ([]Record, error)
}

// RemoteKey the record attribute holding the id of search results
const RemoteKey = "id"

// RemoteSource resolves keys one by one against a remote
type RemoteSource struct {
	Name      string
	Remote    Remote
	Attribute string
}

var _ Source = &RemoteSource{}

// Resolve finds every key in input order
func (r *RemoteSource) Resolve(ctx context.Context, keys []string) ([]Option, error) {
	options := make([]Option, 0, len(keys))
	for _, key := range keys {
		record, err := r.Remote.Find(ctx, key)
		if errors.Is(err, ErrRecordNotFound) || (err == nil && record == nil) {
			log.Logger.Debugf("record %s of remote %s not found", key, r.Name)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("find record %s of remote %s failure %w", key, r.Name, err)
		}
		options = append(options, Option{Key: key, Label: Attribute(record, r.Attribute)})
	}
	return options, nil
}

// Option uses the primary key and the display attribute of the entity
func (r *RemoteSource) Option(entity datastore.Entity) Option {
	return Option{Key: entity.PrimaryKey(), Label: Attribute(entity, r.Attribute)}
}

// Search delegates to the remote when it implements Searcher
func (r *RemoteSource) Search(ctx context.Context, query string, limit int) ([]Option, error) {
	searcher, ok := r.Remote.(Searcher)
	if !ok {
		return nil, fmt.Errorf("remote %s does not support search", r.Name)
	}
	records, err := searcher.Search(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	options := make([]Option, 0, len(records))
	for _, record := range records {
		options = append(options, Option{Key: Attribute(record, RemoteKey), Label: Attribute(record, r.Attribute)})
	}
	return options, nil
}

// Scope names the remote
func (r *RemoteSource) Scope() Scope {
	return Scope{Kind: ScopeRemote, Name: r.Name, Attribute: r.Attribute}
}
