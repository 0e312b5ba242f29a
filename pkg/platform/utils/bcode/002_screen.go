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

package bcode

var (
	// ErrScreenMethodNotFound means the screen does not expose the requested method
	ErrScreenMethodNotFound = NewBcode(404, 11001, "the screen method does not exist")

	// ErrSearchTypeNotFound means no searchable model is registered with the type
	ErrSearchTypeNotFound = NewBcode(404, 11002, "the search type does not exist")
)
