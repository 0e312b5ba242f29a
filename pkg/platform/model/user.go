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

package model

import "time"

func init() {
	RegisterModel(&User{})
	RegisterModel(&Role{})
}

// DefaultAdminRole the slug of the role holding every permission
const DefaultAdminRole = "admin"

// User is the model of a dashboard user
type User struct {
	BaseModel
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	Alias         string    `json:"alias,omitempty"`
	Password      string    `json:"password,omitempty"`
	Permissions   []string  `json:"permissions"`
	Roles         []string  `json:"roles"`
	LastLoginTime time.Time `json:"lastLoginTime,omitempty"`
}

// TableName return custom table name
func (u *User) TableName() string {
	return tableNamePrefix + "user"
}

// ShortTableName return custom table name
func (u *User) ShortTableName() string {
	return "usr"
}

// PrimaryKey return custom primary key
func (u *User) PrimaryKey() string {
	return u.Name
}

// Index return custom index
func (u *User) Index() map[string]string {
	index := make(map[string]string)
	if u.Name != "" {
		index["name"] = u.Name
	}
	return index
}

// HasAccess reports whether the user owns the permission
func (u *User) HasAccess(permission string) bool {
	for _, p := range u.Permissions {
		if p == permission {
			return true
		}
	}
	return false
}

// Role is the model of a group of permissions
type Role struct {
	BaseModel
	Slug        string   `json:"slug"`
	Name        string   `json:"name"`
	Permissions []string `json:"permissions"`
}

// TableName return custom table name
func (r *Role) TableName() string {
	return tableNamePrefix + "role"
}

// ShortTableName return custom table name
func (r *Role) ShortTableName() string {
	return "role"
}

// PrimaryKey return custom primary key
func (r *Role) PrimaryKey() string {
	return r.Slug
}

// Index return custom index
func (r *Role) Index() map[string]string {
	index := make(map[string]string)
	if r.Slug != "" {
		index["slug"] = r.Slug
	}
	return index
}

// SearchLabel the label of the user results
func (u *User) SearchLabel() string { return "Users" }

// SearchFields the fields matched by the global search
func (u *User) SearchFields() []string { return []string{"name", "email", "alias"} }

// SearchTitle the field shown for a user
func (u *User) SearchTitle() string { return "name" }

// SearchLabel the label of the role results
func (r *Role) SearchLabel() string { return "Roles" }

// SearchFields the fields matched by the global search
func (r *Role) SearchFields() []string { return []string{"slug", "name"} }

// SearchTitle the field shown for a role
func (r *Role) SearchTitle() string { return "name" }
