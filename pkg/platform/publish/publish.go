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

package publish

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
)

// StubSuffix is removed from the file names when a directory is published
const StubSuffix = ".stub"

// Status result of publishing a single file
type Status string

const (
	// StatusCopied the file was written
	StatusCopied Status = "copied"
	// StatusSkipped the destination already existed
	StatusSkipped Status = "skipped"
)

// Path maps a file or directory of the source file system to a destination on disk
type Path struct {
	Src string
	Dst string
}

// Item a path read from its source file system
type Item struct {
	FS fs.FS
	Path
}

// Group the publishable paths of a provider under a tag
type Group struct {
	Provider string
	Tag      string
	Items    []Item
}

// Result a published file
type Result struct {
	Provider string
	Tag      string
	From     string
	To       string
	Status   Status
}

// Options selects the groups to publish, empty fields select everything
type Options struct {
	Provider string
	Tags     []string
	Force    bool
}

// Publisher keeps the publishable groups of every provider
type Publisher struct {
	mu     sync.RWMutex
	groups []*Group
}

// NewPublisher creates an empty publisher
func NewPublisher() *Publisher {
	return &Publisher{}
}

// Publishes registers paths of a provider under the tag, a path registered twice is kept once.
func (p *Publisher) Publishes(provider, tag string, fsys fs.FS, paths ...Path) {
	p.mu.Lock()
	defer p.mu.Unlock()
	var group *Group
	for _, g := range p.groups {
		if g.Provider == provider && g.Tag == tag {
			group = g
			break
		}
	}
	if group == nil {
		group = &Group{Provider: provider, Tag: tag}
		p.groups = append(p.groups, group)
	}
	for _, np := range paths {
		exist := false
		for _, item := range group.Items {
			if item.Src == np.Src && item.Dst == np.Dst {
				exist = true
				break
			}
		}
		if !exist {
			group.Items = append(group.Items, Item{FS: fsys, Path: np})
		}
	}
}

// Groups returns the groups matching the provider and tags
func (p *Publisher) Groups(provider string, tags ...string) []Group {
	p.mu.RLock()
	defer p.mu.RUnlock()
	var groups []Group
	for _, g := range p.groups {
		if provider != "" && g.Provider != provider {
			continue
		}
		if len(tags) > 0 && !contains(tags, g.Tag) {
			continue
		}
		groups = append(groups, Group{Provider: g.Provider, Tag: g.Tag, Items: append([]Item(nil), g.Items...)})
	}
	return groups
}

// Tags returns the tags of a provider, or of every provider when empty
func (p *Publisher) Tags(provider string) []string {
	var tags []string
	for _, g := range p.Groups(provider) {
		if !contains(tags, g.Tag) {
			tags = append(tags, g.Tag)
		}
	}
	return tags
}

// Publish copies the selected groups to disk, existing files are kept unless forced
func (p *Publisher) Publish(opts Options) ([]Result, error) {
	groups := p.Groups(opts.Provider, opts.Tags...)
	if len(groups) == 0 {
		return nil, fmt.Errorf("nothing to publish for provider %q and tags %v", opts.Provider, opts.Tags)
	}
	var results []Result
	for _, g := range groups {
		for _, item := range g.Items {
			res, err := publishItem(g, item, opts.Force)
			if err != nil {
				return results, err
			}
			results = append(results, res...)
		}
	}
	return results, nil
}

func publishItem(g Group, item Item, force bool) ([]Result, error) {
	info, err := fs.Stat(item.FS, item.Src)
	if err != nil {
		return nil, fmt.Errorf("can't locate path %s of the %s group: %w", item.Src, g.Tag, err)
	}
	if !info.IsDir() {
		res, err := copyFile(g, item.FS, item.Src, item.Dst, force)
		if err != nil {
			return nil, err
		}
		return []Result{res}, nil
	}
	var results []Result
	err = fs.WalkDir(item.FS, item.Src, func(name string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel := strings.TrimPrefix(strings.TrimPrefix(name, item.Src), "/")
		if item.Src == "." {
			rel = name
		}
		rel = strings.TrimSuffix(rel, StubSuffix)
		res, err := copyFile(g, item.FS, name, filepath.Join(item.Dst, filepath.FromSlash(rel)), force)
		if err != nil {
			return err
		}
		results = append(results, res)
		return nil
	})
	return results, err
}

func copyFile(g Group, fsys fs.FS, src, dst string, force bool) (Result, error) {
	res := Result{Provider: g.Provider, Tag: g.Tag, From: path.Clean(src), To: dst, Status: StatusCopied}
	if _, err := os.Stat(dst); err == nil && !force {
		res.Status = StatusSkipped
		return res, nil
	} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return res, err
	}
	data, err := fs.ReadFile(fsys, src)
	if err != nil {
		return res, err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0750); err != nil {
		return res, err
	}
	if err := os.WriteFile(dst, data, 0600); err != nil {
		return res, err
	}
	return res, nil
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
