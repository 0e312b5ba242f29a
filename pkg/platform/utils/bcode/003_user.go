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
	// ErrUserInvalidPassword means the password is empty or too short
	ErrUserInvalidPassword = NewBcode(400, 12001, "the password must contain at least 8 characters")

	// ErrUserAlreadyExist means the user name is taken
	ErrUserAlreadyExist = NewBcode(400, 12002, "the user already exists")
)
