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
	"github.com/spf13/cobra"

	"github.com/kubevela/platform/pkg/platform/app"
)

const (
	// GroupInstall the commands preparing the host application
	GroupInstall = "install"
	// GroupMake the code generators
	GroupMake = "make"
	// GroupServe the commands running the dashboard
	GroupServe = "serve"
)

// All returns the platform command set bound to the application
func All(a *app.Application) []*cobra.Command {
	commands := []*cobra.Command{
		NewInstallCommand(a),
		NewLinkCommand(a),
		NewAdminCommand(a),
		NewPublishCommand(a),
		NewPresetCommand(a),
		NewMigrateCommand(a),
		NewServeCommand(a),
	}
	for _, kind := range Kinds() {
		commands = append(commands, NewMakeCommand(a, kind))
	}
	return commands
}

func group(name string) map[string]string {
	return map[string]string{"group": name}
}
