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
	"fmt"
	"html/template"
	"reflect"
	"strings"

	"github.com/kubevela/platform/pkg/platform/datastore"
	"github.com/kubevela/platform/pkg/platform/screen"
)

// RelationRoute the search endpoint used by the rendered select
const RelationRoute = "api/v1/relation"

// Relation a select whose options come from a model or a remote
type Relation struct {
	base
	source Source
	value  interface{}
}

var _ screen.Field = &Relation{}

// NewRelation creates a relation field, a name ending with "." holds a list of values
func NewRelation(name string) *Relation {
	return &Relation{base: base{name: name}}
}

// Title sets the label
func (r *Relation) Title(title string) *Relation { r.title = title; return r }

// Help sets the hint shown below the select
func (r *Relation) Help(help string) *Relation { r.help = help; return r }

// Required marks the select as required
func (r *Relation) Required() *Relation { r.required = true; return r }

// Value sets the current value: an entity, a key, a list of entities or a list of keys
func (r *Relation) Value(value interface{}) *Relation { r.value = value; return r }

// FromModel reads the options from the table of the prototype, the label is the attribute json path
func (r *Relation) FromModel(store datastore.DataStore, prototype datastore.Entity, attribute string) *Relation {
	r.source = &ModelSource{Store: store, Prototype: prototype, Attribute: attribute}
	return r
}

// FromClass reads the options from a remote registered under the name
func (r *Relation) FromClass(name string, remote Remote, attribute string) *Relation {
	r.source = &RemoteSource{Name: name, Remote: remote, Attribute: attribute}
	return r
}

// Source returns the selected source
func (r *Relation) Source() Source {
	return r.source
}

// Multiple reports whether the field holds a list of values
func (r *Relation) Multiple() bool {
	return strings.HasSuffix(r.name, MultipleSuffix)
}

// Name returns the html name of the select
func (r *Relation) Name() string {
	return htmlName(r.name)
}

// Options resolves the value into options.
// Entities are used as they are, keys are looked up in one batch and the
// options follow the source order. Unknown keys are dropped.
func (r *Relation) Options(ctx context.Context) ([]Option, error) {
	if r.source == nil {
		return nil, fmt.Errorf("relation %s has no source", r.name)
	}
	entities, keys := normalize(r.value)
	if len(entities) > 0 {
		options := make([]Option, 0, len(entities))
		seen := make(map[string]bool, len(entities))
		for _, e := range entities {
			if seen[e.PrimaryKey()] {
				continue
			}
			seen[e.PrimaryKey()] = true
			options = append(options, r.source.Option(e))
		}
		return options, nil
	}
	return r.source.Resolve(ctx, keys)
}

// normalize splits the value into entities or distinct keys
func normalize(value interface{}) ([]datastore.Entity, []string) {
	if isNil(value) {
		return nil, nil
	}
	if e, ok := value.(datastore.Entity); ok {
		return []datastore.Entity{e}, nil
	}
	v := reflect.ValueOf(value)
	if v.Kind() != reflect.Slice && v.Kind() != reflect.Array {
		key := scalar(value)
		if key == "" {
			return nil, nil
		}
		return nil, []string{key}
	}
	var entities []datastore.Entity
	var keys []string
	seen := make(map[string]bool)
	for i := 0; i < v.Len(); i++ {
		item := v.Index(i).Interface()
		if isNil(item) {
			continue
		}
		if e, ok := item.(datastore.Entity); ok {
			entities = append(entities, e)
			continue
		}
		key := scalar(item)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		keys = append(keys, key)
	}
	if len(entities) > 0 {
		return entities, nil
	}
	return nil, keys
}

// isNil reports a nil value, including nil pointers, maps and slices held by an interface
func isNil(value interface{}) bool {
	if value == nil {
		return true
	}
	v := reflect.ValueOf(value)
	switch v.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return v.IsNil()
	}
	return false
}

func scalar(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case json.Number:
		return v.String()
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

// Render renders the select with the resolved options
func (r *Relation) Render(ctx context.Context, rc *screen.RenderContext) (template.HTML, error) {
	field := *r
	if model, ok := r.source.(*ModelSource); ok && model.Store == nil && rc.Store != nil {
		bound := *model
		bound.Store = rc.Store
		field.source = &bound
	}
	options, err := field.Options(ctx)
	if err != nil {
		return "", err
	}
	var scope string
	if rc.Sealer != nil {
		data, err := json.Marshal(field.source.Scope())
		if err != nil {
			return "", err
		}
		if scope, err = rc.Sealer.Seal(string(data)); err != nil {
			return "", err
		}
	}
	return rc.Render("platform::partials.fields.relation", map[string]interface{}{
		"ID":       fieldID(r.name),
		"Name":     r.Name(),
		"Title":    rc.Trans(r.title),
		"Help":     r.help,
		"Required": r.required,
		"Multiple": r.Multiple(),
		"Options":  options,
		"Route":    rc.URL(RelationRoute),
		"Scope":    scope,
	})
}
