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

package screen

import (
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"net/url"

	"github.com/tidwall/gjson"

	"github.com/kubevela/platform/pkg/platform/datastore"
)

// RowsLayout describes a form
type RowsLayout interface {
	Fields(repo Repository) []Field
}

// Column a table column, Name is the json path of the cell value
type Column struct {
	Name  string
	Title string
	// Render overrides the cell text
	Render func(item interface{}) string
}

// TableLayout describes a table of the repository list at Target
type TableLayout interface {
	Target() string
	Columns() []Column
}

// ChartLayout describes a chart of the repository data at Target
type ChartLayout interface {
	Title() string
	Type() string
	Target() string
}

// Metric a value of the repository shown with its label
type Metric struct {
	Label string
	Key   string
}

// MetricsLayout describes a metrics panel
type MetricsLayout interface {
	Title() string
	Metrics() []Metric
}

// Filter narrows a listing by the request parameters
type Filter interface {
	Name() string
	Parameters() []string
	Apply(options *datastore.ListOptions, params url.Values)
	Display() []Field
}

// SelectionLayout describes the filters of a listing
type SelectionLayout interface {
	Filters() []Filter
}

// Rows builds a form layout
func Rows(l RowsLayout) Layout {
	return rows{l}
}

type rows struct{ RowsLayout }

func (l rows) Build(ctx context.Context, rc *RenderContext, repo Repository) (template.HTML, error) {
	fields, err := renderFields(ctx, rc, l.Fields(repo))
	if err != nil {
		return "", err
	}
	return rc.Render("platform::partials.layouts.rows", map[string]interface{}{"Fields": fields})
}

func renderFields(ctx context.Context, rc *RenderContext, fields []Field) ([]template.HTML, error) {
	out := make([]template.HTML, 0, len(fields))
	for _, field := range fields {
		html, err := field.Render(ctx, rc)
		if err != nil {
			return nil, err
		}
		out = append(out, html)
	}
	return out, nil
}

// Table builds a table layout
func Table(l TableLayout) Layout {
	return table{l}
}

type table struct{ TableLayout }

func (l table) Build(ctx context.Context, rc *RenderContext, repo Repository) (template.HTML, error) {
	columns := l.Columns()
	var titles []string
	for _, c := range columns {
		titles = append(titles, rc.Trans(c.Title))
	}
	var cells [][]string
	for _, item := range items(repo.Get(l.Target())) {
		data, err := json.Marshal(item)
		if err != nil {
			return "", err
		}
		row := make([]string, 0, len(columns))
		for _, c := range columns {
			if c.Render != nil {
				row = append(row, c.Render(item))
				continue
			}
			row = append(row, gjson.GetBytes(data, c.Name).String())
		}
		cells = append(cells, row)
	}
	return rc.Render("platform::partials.layouts.table", map[string]interface{}{
		"Titles": titles,
		"Rows":   cells,
		"Empty":  rc.Trans("Nothing found"),
	})
}

func items(v interface{}) []interface{} {
	switch list := v.(type) {
	case nil:
		return nil
	case []interface{}:
		return list
	case []datastore.Entity:
		out := make([]interface{}, 0, len(list))
		for _, e := range list {
			out = append(out, e)
		}
		return out
	case []map[string]interface{}:
		out := make([]interface{}, 0, len(list))
		for _, e := range list {
			out = append(out, e)
		}
		return out
	default:
		return []interface{}{v}
	}
}

// Chart builds a chart layout
func Chart(l ChartLayout) Layout {
	return chart{l}
}

type chart struct{ ChartLayout }

func (l chart) Build(ctx context.Context, rc *RenderContext, repo Repository) (template.HTML, error) {
	data, err := json.Marshal(repo.Get(l.Target()))
	if err != nil {
		return "", fmt.Errorf("encode chart data failure %w", err)
	}
	return rc.Render("platform::partials.layouts.chart", map[string]interface{}{
		"Title": rc.Trans(l.Title()),
		"Type":  l.Type(),
		"Data":  string(data),
	})
}

// Metrics builds a metrics layout
func Metrics(l MetricsLayout) Layout {
	return metrics{l}
}

type metrics struct{ MetricsLayout }

func (l metrics) Build(ctx context.Context, rc *RenderContext, repo Repository) (template.HTML, error) {
	type value struct {
		Label string
		Value string
	}
	var values []value
	for _, m := range l.Metrics() {
		v := repo.Get(m.Key)
		if v == nil {
			v = "-"
		}
		values = append(values, value{Label: rc.Trans(m.Label), Value: fmt.Sprint(v)})
	}
	return rc.Render("platform::partials.layouts.metrics", map[string]interface{}{
		"Title":   rc.Trans(l.Title()),
		"Metrics": values,
	})
}

// Selection builds the filter form of a listing
func Selection(l SelectionLayout) Layout {
	return selection{l}
}

type selection struct{ SelectionLayout }

func (l selection) Build(ctx context.Context, rc *RenderContext, repo Repository) (template.HTML, error) {
	var fields []Field
	for _, f := range l.Filters() {
		fields = append(fields, f.Display()...)
	}
	rendered, err := renderFields(ctx, rc, fields)
	if err != nil {
		return "", err
	}
	return rc.Render("platform::partials.layouts.selection", map[string]interface{}{
		"Fields": rendered,
		"Action": rc.Path,
	})
}

// ApplyFilters applies the filters whose parameters are present in the request
func ApplyFilters(filters []Filter, params url.Values, options *datastore.ListOptions) {
	for _, f := range filters {
		for _, p := range f.Parameters() {
			if params.Get(p) != "" {
				f.Apply(options, params)
				break
			}
		}
	}
}
