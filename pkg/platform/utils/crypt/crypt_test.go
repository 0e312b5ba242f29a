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

package crypt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSealAndOpen(t *testing.T) {
	sealer, err := NewSealer("base64:secret")
	require.NoError(t, err)

	token, err := sealer.Seal("platform_role")
	require.NoError(t, err)
	assert.NotContains(t, token, "platform_role")

	plain, err := sealer.Open(token)
	require.NoError(t, err)
	assert.Equal(t, "platform_role", plain)

	other, err := NewSealer("another")
	require.NoError(t, err)
	_, err = other.Open(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = sealer.Open("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = NewSealer("")
	assert.Error(t, err)
}
