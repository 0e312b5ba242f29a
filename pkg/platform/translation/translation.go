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

package translation

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"path"
	"strings"
	"sync"

	"golang.org/x/text/language"

	"github.com/kubevela/platform/pkg/platform/utils/log"
)

// Translator resolves json translations, one file per locale
type Translator struct {
	mu       sync.RWMutex
	fallback language.Tag
	tags     []language.Tag
	catalogs map[language.Tag]map[string]string
	matcher  language.Matcher
}

// New creates a translator falling back to the given locale
func New(fallback string) *Translator {
	tag, err := language.Parse(fallback)
	if err != nil {
		tag = language.English
	}
	return &Translator{
		fallback: tag,
		catalogs: make(map[language.Tag]map[string]string),
	}
}

// LoadJSON reads every <locale>.json file of the directory.
// Keys loaded earlier win, so host translations are loaded before the bundled ones.
func (t *Translator) LoadJSON(fsys fs.FS, dir string) error {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return fmt.Errorf("read translations %s failure %w", dir, err)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, entry := range entries {
		if entry.IsDir() || path.Ext(entry.Name()) != ".json" {
			continue
		}
		locale := strings.TrimSuffix(entry.Name(), ".json")
		tag, err := language.Parse(locale)
		if err != nil {
			log.Logger.Warnf("skip translation file %s: %s", entry.Name(), err.Error())
			continue
		}
		data, err := fs.ReadFile(fsys, path.Join(dir, entry.Name()))
		if err != nil {
			return err
		}
		var lines map[string]string
		if err := json.Unmarshal(data, &lines); err != nil {
			return fmt.Errorf("parse translation file %s failure %w", entry.Name(), err)
		}
		catalog, ok := t.catalogs[tag]
		if !ok {
			catalog = make(map[string]string, len(lines))
			t.catalogs[tag] = catalog
			if !hasTag(t.tags, tag) {
				t.tags = append(t.tags, tag)
			}
		}
		for k, v := range lines {
			if _, exist := catalog[k]; !exist {
				catalog[k] = v
			}
		}
	}
	t.matcher = nil
	return nil
}

func (t *Translator) match(locale string) language.Tag {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.matcher == nil {
		tags := []language.Tag{t.fallback}
		for _, tag := range t.tags {
			if tag != t.fallback {
				tags = append(tags, tag)
			}
		}
		t.matcher = language.NewMatcher(tags)
		t.tags = tags
	}
	desired, _, err := language.ParseAcceptLanguage(locale)
	if err != nil || len(desired) == 0 {
		return t.fallback
	}
	_, idx, confidence := t.matcher.Match(desired...)
	if confidence == language.No {
		return t.fallback
	}
	return t.tags[idx]
}

// Get translates the key to the locale, falling back to the default locale and then to the key itself.
// The locale may be an Accept-Language header value.
func (t *Translator) Get(locale, key string) string {
	tag := t.match(locale)
	t.mu.RLock()
	defer t.mu.RUnlock()
	if v, ok := t.catalogs[tag][key]; ok {
		return v
	}
	if v, ok := t.catalogs[t.fallback][key]; ok {
		return v
	}
	return key
}

// Locales returns the loaded locales
func (t *Translator) Locales() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	var locales []string
	for _, tag := range t.tags {
		if _, ok := t.catalogs[tag]; ok {
			locales = append(locales, tag.String())
		}
	}
	return locales
}

func hasTag(tags []language.Tag, tag language.Tag) bool {
	for _, t := range tags {
		if t == tag {
			return true
		}
	}
	return false
}
