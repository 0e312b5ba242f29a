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
	"fmt"
	"html/template"

	"github.com/kubevela/platform/pkg/platform/screen"
)

// Input a text like form control
type Input struct {
	base
	typ         string
	value       interface{}
	placeholder string
}

// NewInput creates a text input
func NewInput(name string) *Input {
	return &Input{base: base{name: name}, typ: "text"}
}

// Title sets the label
func (i *Input) Title(title string) *Input { i.title = title; return i }

// Help sets the hint shown below the control
func (i *Input) Help(help string) *Input { i.help = help; return i }

// Required marks the control as required
func (i *Input) Required() *Input { i.required = true; return i }

// Type sets the html input type
func (i *Input) Type(typ string) *Input { i.typ = typ; return i }

// Placeholder sets the placeholder
func (i *Input) Placeholder(placeholder string) *Input { i.placeholder = placeholder; return i }

// Value sets the current value
func (i *Input) Value(value interface{}) *Input { i.value = value; return i }

// Render renders the control
func (i *Input) Render(ctx context.Context, rc *screen.RenderContext) (template.HTML, error) {
	value := ""
	if i.value != nil {
		value = fmt.Sprint(i.value)
	}
	return rc.Render("platform::partials.fields.input", map[string]interface{}{
		"ID":          fieldID(i.name),
		"Name":        htmlName(i.name),
		"Type":        i.typ,
		"Title":       rc.Trans(i.title),
		"Help":        i.help,
		"Required":    i.required,
		"Placeholder": i.placeholder,
		"Value":       value,
	})
}
