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

package event

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatch(t *testing.T) {
	d := NewDispatcher()
	var calls []string
	d.Listen(UserCreated, func(ctx context.Context, e Event) error {
		calls = append(calls, "first:"+e.Payload.(string))
		return nil
	})
	d.Listen(UserCreated, func(ctx context.Context, e Event) error {
		calls = append(calls, "second:"+e.Payload.(string))
		return errors.New("stop")
	})
	d.Listen(UserCreated, func(ctx context.Context, e Event) error {
		calls = append(calls, "third")
		return nil
	})
	assert.True(t, d.HasListeners(UserCreated))
	assert.False(t, d.HasListeners(RoleCreated))

	err := d.Dispatch(context.Background(), Event{Name: UserCreated, Payload: "admin"})
	assert.EqualError(t, err, "stop")
	assert.Equal(t, []string{"first:admin", "second:admin"}, calls)

	assert.NoError(t, d.Dispatch(context.Background(), Event{Name: RoleCreated}))
}

func TestQueue(t *testing.T) {
	d := NewDispatcher()
	var mu sync.Mutex
	var received []string
	done := make(chan struct{}, 2)
	d.Listen(RoleCreated, func(ctx context.Context, e Event) error {
		mu.Lock()
		received = append(received, e.Payload.(string))
		mu.Unlock()
		done <- struct{}{}
		return nil
	})
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		d.Start(ctx, make(chan error))
		close(stopped)
	}()
	d.Queue(&Event{Name: RoleCreated, Payload: "editor"})
	d.Queue(&Event{Name: RoleCreated, Payload: "viewer"})
	for i := 0; i < 2; i++ {
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			t.Fatal("event was not delivered")
		}
	}
	cancel()
	select {
	case <-stopped:
	case <-time.After(5 * time.Second):
		t.Fatal("worker did not stop")
	}
	mu.Lock()
	defer mu.Unlock()
	require.Len(t, received, 2)
	assert.Equal(t, []string{"editor", "viewer"}, received)
}
