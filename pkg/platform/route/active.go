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

package route

import (
	"path"
	"strings"
)

// ActiveClass the class returned for an active menu entry
const ActiveClass = "active"

// Active returns the active class when the current path matches one of the patterns,
// a pattern may use path.Match wildcards and a trailing "*" matches every sub path.
func Active(current string, patterns ...string) string {
	current = "/" + strings.Trim(current, "/")
	for _, pattern := range patterns {
		pattern = "/" + strings.Trim(pattern, "/")
		if strings.HasSuffix(pattern, "*") && strings.HasPrefix(current, strings.TrimSuffix(pattern, "*")) {
			return ActiveClass
		}
		if ok, _ := path.Match(pattern, current); ok {
			return ActiveClass
		}
	}
	return ""
}
