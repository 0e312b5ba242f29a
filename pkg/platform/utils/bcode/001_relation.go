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
	// ErrRelationParamInvalid means the sealed relation parameters can not be opened
	ErrRelationParamInvalid = NewBcode(400, 10001, "the relation parameters are invalid")

	// ErrRelationModelNotFound means the relation model is not registered
	ErrRelationModelNotFound = NewBcode(404, 10002, "the relation model is not registered")

	// ErrRelationNotSearchable means the remote source of the relation does not support searching
	ErrRelationNotSearchable = NewBcode(400, 10003, "the relation source does not support searching")
)
