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
	"regexp"
	"strings"
)

// MultipleSuffix ends the name of a field holding a list of values
const MultipleSuffix = "."

// base the attributes shared by every field
type base struct {
	name     string
	title    string
	help     string
	required bool
}

// htmlName converts a dotted field name to the bracket notation of html forms,
// "user.roles." becomes "user[roles][]".
func htmlName(name string) string {
	parts := strings.Split(name, ".")
	var b strings.Builder
	b.WriteString(parts[0])
	for _, part := range parts[1:] {
		b.WriteString("[" + part + "]")
	}
	return b.String()
}

var idCleaner = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

func fieldID(name string) string {
	return "field-" + strings.Trim(idCleaner.ReplaceAllString(name, "-"), "-")
}
