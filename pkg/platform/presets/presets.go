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

package presets

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/imdario/mergo"
	"github.com/pkg/errors"

	"github.com/kubevela/platform/pkg/platform/app"
	"github.com/kubevela/platform/pkg/platform/publish"
	"github.com/kubevela/platform/pkg/platform/resources"
	"github.com/kubevela/platform/pkg/platform/utils/log"
)

const (
	// PlatformPreset installs the dashboard scripts building against the published assets
	PlatformPreset = "platform"
	// SourcePreset publishes the dashboard sources with their build files
	SourcePreset = "platform-source"

	packageFile = "package.json"
	mixFile     = "webpack.mix.js"
)

// Platform merges the dashboard dependencies into package.json and writes the build files
func Platform(ctx context.Context, a *app.Application) error {
	cfg := a.Config()
	src := path.Join(resources.PresetsDir, "platform")
	if err := updatePackage(cfg.Path(packageFile), path.Join(src, packageFile)); err != nil {
		return err
	}
	if err := writeFile(path.Join(src, mixFile), cfg.Path(mixFile)); err != nil {
		return err
	}
	if err := writeFile(path.Join(src, "dashboard.js"), cfg.ResourcePath("js", "dashboard.js")); err != nil {
		return err
	}
	log.Logger.Infof("the platform preset is installed, run \"npm install && npm run dev\" to compile the assets")
	return nil
}

// Source publishes the dashboard sources, replacing the published ones, and their build files
func Source(ctx context.Context, a *app.Application) error {
	if _, err := a.Publisher().Publish(publish.Options{Tags: []string{"platform-assets"}, Force: true}); err != nil {
		return err
	}
	cfg := a.Config()
	src := path.Join(resources.PresetsDir, "source")
	if err := updatePackage(cfg.Path(packageFile), path.Join(src, packageFile)); err != nil {
		return err
	}
	if err := writeFile(path.Join(src, mixFile), cfg.Path(mixFile)); err != nil {
		return err
	}
	log.Logger.Infof("the platform sources are published, run \"npm install && npm run production\" to build them")
	return nil
}

// updatePackage adds the preset entries to package.json, the preset dependency versions win
func updatePackage(dst, src string) error {
	data, err := fs.ReadFile(resources.FS, src)
	if err != nil {
		return err
	}
	var preset map[string]interface{}
	if err := json.Unmarshal(data, &preset); err != nil {
		return errors.Wrapf(err, "parse preset %s", src)
	}
	current := map[string]interface{}{}
	existing, err := os.ReadFile(filepath.Clean(dst))
	switch {
	case err == nil:
		if err := json.Unmarshal(existing, &current); err != nil {
			return errors.Wrapf(err, "parse %s", dst)
		}
	case !os.IsNotExist(err):
		return err
	default:
		log.Logger.Warnf("%s does not exist, it is created", dst)
	}
	for _, key := range []string{"dependencies", "devDependencies"} {
		presetDeps, ok := preset[key].(map[string]interface{})
		if !ok {
			continue
		}
		deps, _ := current[key].(map[string]interface{})
		if deps == nil {
			deps = map[string]interface{}{}
		}
		if err := mergo.Merge(&deps, presetDeps, mergo.WithOverride); err != nil {
			return err
		}
		current[key] = deps
		delete(preset, key)
	}
	if err := mergo.Merge(&current, preset); err != nil {
		return err
	}
	out, err := json.MarshalIndent(current, "", "    ")
	if err != nil {
		return err
	}
	return os.WriteFile(dst, append(out, '\n'), 0600)
}

func writeFile(src, dst string) error {
	data, err := fs.ReadFile(resources.FS, src)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0750); err != nil {
		return fmt.Errorf("create directory of %s failure %w", dst, err)
	}
	return os.WriteFile(dst, data, 0600)
}
