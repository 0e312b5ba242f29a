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
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kubevela/platform/pkg/platform/resources"
)

func TestBundledTranslations(t *testing.T) {
	tr := New("en")
	require.NoError(t, tr.LoadJSON(resources.FS, resources.LangDir))

	assert.Equal(t, "Search", tr.Get("en", "Search"))
	assert.Equal(t, "搜索", tr.Get("zh-CN", "Search"))
	assert.Equal(t, "Поиск", tr.Get("ru-RU,ru;q=0.9,en;q=0.8", "Search"))
	assert.Equal(t, "Search", tr.Get("fr", "Search"))
	assert.Equal(t, "Unknown line", tr.Get("zh", "Unknown line"))
	assert.ElementsMatch(t, []string{"en", "ru", "zh"}, tr.Locales())
}

func TestHostTranslationsWin(t *testing.T) {
	host := fstest.MapFS{
		"lang/en.json":   {Data: []byte(`{"Search":"Find"}`)},
		"lang/README.md": {Data: []byte("translations")},
		"lang/bad!.json": {Data: []byte(`{}`)},
	}
	tr := New("en")
	require.NoError(t, tr.LoadJSON(host, "lang"))
	require.NoError(t, tr.LoadJSON(resources.FS, resources.LangDir))

	assert.Equal(t, "Find", tr.Get("en", "Search"))
	assert.Equal(t, "Roles", tr.Get("", "Roles"))
}

func TestInvalidTranslationFile(t *testing.T) {
	tr := New("en")
	err := tr.LoadJSON(fstest.MapFS{"lang/en.json": {Data: []byte(`[1]`)}}, "lang")
	assert.Error(t, err)
	assert.Error(t, tr.LoadJSON(fstest.MapFS{}, "lang"))
}
