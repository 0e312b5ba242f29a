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

package commands

import (
	"bytes"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"text/template"
	"unicode"

	"github.com/Masterminds/sprig/v3"
	"github.com/fatih/camelcase"
	"github.com/gertd/go-pluralize"
	"github.com/spf13/cobra"

	"github.com/kubevela/platform/pkg/platform/app"
	"github.com/kubevela/platform/pkg/platform/resources"
)

// Kind a generated source file
type Kind struct {
	// Name is the stub name and the command suffix
	Name string
	// Dir is the package directory below app/platform
	Dir string
	// Suffix is appended to the type name when missing
	Suffix string
}

var kinds = []Kind{
	{Name: "filter", Dir: "filters", Suffix: "Filter"},
	{Name: "rows", Dir: "layouts", Suffix: "Rows"},
	{Name: "screen", Dir: "screens", Suffix: "Screen"},
	{Name: "table", Dir: "layouts", Suffix: "Table"},
	{Name: "chart", Dir: "layouts", Suffix: "Chart"},
	{Name: "metrics", Dir: "layouts", Suffix: "Metrics"},
	{Name: "selection", Dir: "layouts", Suffix: "Selection"},
}

// Kinds returns the generated kinds in command order
func Kinds() []Kind {
	return append([]Kind(nil), kinds...)
}

// LookupKind returns the kind of the name
func LookupKind(name string) (Kind, bool) {
	for _, k := range kinds {
		if k.Name == name {
			return k, true
		}
	}
	return Kind{}, false
}

// StubData the values of a stub template
type StubData struct {
	Package string
	// Name is the exported type name
	Name string
	// Slug is the snake case name without the kind suffix
	Slug   string
	Title  string
	Plural string
}

var plural = pluralize.NewClient()

// NewStubData derives the names of a generated type from the user input,
// "user list", "user_list" and "UserList" all give the type UserListTable for a table.
func NewStubData(kind Kind, input string) (StubData, error) {
	words := splitWords(input)
	if len(words) == 0 {
		return StubData{}, fmt.Errorf("the name %q does not contain any letter", input)
	}
	if strings.EqualFold(words[len(words)-1], kind.Suffix) && len(words) > 1 {
		words = words[:len(words)-1]
	}
	var name strings.Builder
	lower := make([]string, 0, len(words))
	for _, w := range words {
		name.WriteString(strings.ToUpper(w[:1]) + strings.ToLower(w[1:]))
		lower = append(lower, strings.ToLower(w))
	}
	title := strings.Join(lower, " ")
	slug := strings.Join(lower, "_")
	return StubData{
		Package: path.Base(kind.Dir),
		Name:    name.String() + kind.Suffix,
		Slug:    slug,
		Title:   strings.ToUpper(title[:1]) + title[1:],
		Plural:  plural.Plural(title),
	}, nil
}

func splitWords(input string) []string {
	var words []string
	for _, part := range strings.FieldsFunc(input, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		words = append(words, camelcase.Split(part)...)
	}
	return words
}

// Render renders the stub of the kind
func Render(kind Kind, data StubData) ([]byte, error) {
	stub, err := resources.FS.ReadFile(path.Join(resources.StubsDir, kind.Name+".tmpl"))
	if err != nil {
		return nil, err
	}
	funcs := sprig.TxtFuncMap()
	funcs["plural"] = plural.Plural
	tpl, err := template.New(kind.Name).Funcs(funcs).Parse(string(stub))
	if err != nil {
		return nil, fmt.Errorf("parse stub %s failure %w", kind.Name, err)
	}
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("render stub %s failure %w", kind.Name, err)
	}
	return buf.Bytes(), nil
}

// Generate writes the source file of the kind into the application, an existing file is kept unless forced.
func Generate(a *app.Application, kind Kind, input string, force bool) (string, error) {
	data, err := NewStubData(kind, input)
	if err != nil {
		return "", err
	}
	target := a.Config().AppPath("platform", kind.Dir, data.Slug+"_"+strings.ToLower(kind.Suffix)+".go")
	if _, err := os.Stat(target); err == nil && !force {
		return target, fmt.Errorf("%s already exists", target)
	}
	content, err := Render(kind, data)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(target), 0750); err != nil {
		return "", err
	}
	return target, os.WriteFile(target, content, 0600)
}

// NewMakeCommand generates a source file of the kind
func NewMakeCommand(a *app.Application, kind Kind) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:         "make:" + kind.Name + " <name>",
		Short:       fmt.Sprintf("Create a new %s class.", kind.Name),
		Example:     fmt.Sprintf("platform make:%s user", kind.Name),
		Args:        cobra.ExactArgs(1),
		Annotations: group(GroupMake),
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := Generate(a, kind, args[0], force)
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s %s\n", emojiFail, red.Sprint(err.Error()))
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s created: %s\n", emojiSucceed, kind.Name, target)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite the file when it already exists.")
	return cmd
}
