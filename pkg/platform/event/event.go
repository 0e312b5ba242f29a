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
	"sync"

	"k8s.io/client-go/util/workqueue"

	"github.com/kubevela/platform/pkg/platform/utils/log"
)

const (
	// UserCreated is fired after a dashboard user was stored
	UserCreated = "platform.user.created"
	// RoleCreated is fired after a role was stored
	RoleCreated = "platform.role.created"
)

// Event a named occurrence carrying its payload
type Event struct {
	Name    string
	Payload interface{}
}

// Listener handles the events it listens to
type Listener func(ctx context.Context, e Event) error

// Dispatcher delivers events to their listeners. Dispatch calls the listeners at once,
// Queue hands the event to the worker started by Start.
type Dispatcher struct {
	mu        sync.RWMutex
	listeners map[string][]Listener
	queue     workqueue.Interface
}

// NewDispatcher creates a dispatcher without listeners
func NewDispatcher() *Dispatcher {
	return &Dispatcher{
		listeners: make(map[string][]Listener),
		queue:     workqueue.New(),
	}
}

// Listen adds a listener of the event
func (d *Dispatcher) Listen(name string, listener Listener) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.listeners[name] = append(d.listeners[name], listener)
}

// HasListeners reports whether the event has listeners
func (d *Dispatcher) HasListeners(name string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.listeners[name]) > 0
}

// Dispatch calls every listener of the event in listen order, the first error stops the delivery.
func (d *Dispatcher) Dispatch(ctx context.Context, e Event) error {
	d.mu.RLock()
	listeners := append([]Listener(nil), d.listeners[e.Name]...)
	d.mu.RUnlock()
	for _, listener := range listeners {
		if err := listener(ctx, e); err != nil {
			return err
		}
	}
	return nil
}

// Queue adds the event to the asynchronous queue
func (d *Dispatcher) Queue(e *Event) {
	d.queue.Add(e)
}

// Start delivers the queued events until the context is done
func (d *Dispatcher) Start(ctx context.Context, errChan chan error) {
	go func() {
		<-ctx.Done()
		d.queue.ShutDown()
	}()
	for {
		item, shutdown := d.queue.Get()
		if shutdown {
			return
		}
		e := item.(*Event)
		if err := d.Dispatch(ctx, *e); err != nil {
			log.Logger.Errorf("handle event %s failure %s", e.Name, err.Error())
		}
		d.queue.Done(item)
	}
}
