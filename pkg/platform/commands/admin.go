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
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/AlecAivazis/survey/v2"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"github.com/kubevela/platform/pkg/platform/app"
	"github.com/kubevela/platform/pkg/platform/dashboard"
	"github.com/kubevela/platform/pkg/platform/datastore"
	"github.com/kubevela/platform/pkg/platform/event"
	"github.com/kubevela/platform/pkg/platform/model"
	"github.com/kubevela/platform/pkg/platform/utils/bcode"
)

// MinPasswordLength the shortest accepted password
const MinPasswordLength = 8

// AdminRequest the administrator to create
type AdminRequest struct {
	Name     string
	Email    string
	Password string
}

// NewAdminCommand creates an administrator owning every registered permission
func NewAdminCommand(a *app.Application) *cobra.Command {
	var req AdminRequest
	var random bool
	cmd := &cobra.Command{
		Use:         "admin [name] [email]",
		Short:       "Create an administrator.",
		Example:     "platform admin admin admin@example.com --random-password",
		Args:        cobra.MaximumNArgs(2),
		Annotations: group(GroupInstall),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				req.Name = args[0]
			}
			if len(args) > 1 {
				req.Email = args[1]
			}
			if random {
				req.Password = uuid.NewString()
			}
			if err := askAdmin(&req); err != nil {
				return err
			}
			store, err := a.OpenStore(cmd.Context())
			if err != nil {
				return err
			}
			user, err := CreateAdmin(cmd.Context(), store, a.Dashboard(), a.Events(), req)
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s %s\n", emojiFail, red.Sprint(err.Error()))
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s administrator %s created\n", emojiSucceed, white.Sprint(user.Name))
			if random {
				fmt.Fprintf(cmd.OutOrStdout(), "%s password: %s\n", emojiLightBulb, req.Password)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&req.Password, "password", "", "The password of the administrator.")
	cmd.Flags().BoolVar(&random, "random-password", false, "Generate the password and print it.")
	return cmd
}

func askAdmin(req *AdminRequest) error {
	var qs []*survey.Question
	if req.Name == "" {
		qs = append(qs, &survey.Question{Name: "Name", Prompt: &survey.Input{Message: "Name:"}, Validate: survey.Required})
	}
	if req.Email == "" {
		qs = append(qs, &survey.Question{Name: "Email", Prompt: &survey.Input{Message: "Email:"}, Validate: survey.Required})
	}
	if req.Password == "" {
		qs = append(qs, &survey.Question{
			Name:     "Password",
			Prompt:   &survey.Password{Message: "Password:"},
			Validate: survey.ComposeValidators(survey.Required, survey.MinLength(MinPasswordLength)),
		})
	}
	if len(qs) == 0 {
		return nil
	}
	return survey.Ask(qs, req)
}

// CreateAdmin stores the user with the admin role, the role is created or granted every permission.
func CreateAdmin(ctx context.Context, store datastore.DataStore, d *dashboard.Dashboard, events *event.Dispatcher, req AdminRequest) (*model.User, error) {
	if len(req.Password) < MinPasswordLength {
		return nil, bcode.ErrUserInvalidPassword
	}
	var permissions []string
	if d != nil {
		permissions = d.PermissionSlugs()
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	user := &model.User{
		Name:          req.Name,
		Email:         req.Email,
		Alias:         req.Name,
		Password:      string(hash),
		Permissions:   permissions,
		Roles:         []string{model.DefaultAdminRole},
		LastLoginTime: time.Now(),
	}
	if err := store.Add(ctx, user); err != nil {
		if errors.Is(err, datastore.ErrRecordExist) {
			return nil, bcode.ErrUserAlreadyExist
		}
		return nil, err
	}
	role := &model.Role{Slug: model.DefaultAdminRole, Name: "Administrator", Permissions: permissions}
	if err := store.Add(ctx, role); err != nil {
		if !errors.Is(err, datastore.ErrRecordExist) {
			return nil, err
		}
		if err := store.Put(ctx, role); err != nil {
			return nil, err
		}
	} else if events != nil {
		events.Queue(&event.Event{Name: event.RoleCreated, Payload: role})
	}
	if events != nil {
		if err := events.Dispatch(ctx, event.Event{Name: event.UserCreated, Payload: user}); err != nil {
			return nil, err
		}
	}
	return user, nil
}

// CheckPassword reports whether the password matches the stored hash
func CheckPassword(user *model.User, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) == nil
}
