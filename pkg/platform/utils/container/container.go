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

package container

import (
	"fmt"
	"sync"
	"time"

	"github.com/barnettZQG/inject"

	"github.com/kubevela/platform/pkg/platform/utils/log"
)

// NewContainer new a IoC container
func NewContainer() *Container {
	return &Container{
		graph: inject.Graph{},
		named: make(map[string]interface{}),
	}
}

// Container the IoC container
type Container struct {
	mu        sync.RWMutex
	graph     inject.Graph
	named     map[string]interface{}
	populated bool
}

// Provides provide some beans with default name
func (c *Container) Provides(beans ...interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, bean := range beans {
		if err := c.graph.Provide(&inject.Object{Value: bean}); err != nil {
			return err
		}
	}
	return nil
}

// ProvideWithName provide the bean with name
func (c *Container) ProvideWithName(name string, bean interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exist := c.named[name]; exist {
		return fmt.Errorf("the bean %s is already provided", name)
	}
	return c.provideWithName(name, bean)
}

func (c *Container) provideWithName(name string, bean interface{}) error {
	if err := c.graph.Provide(&inject.Object{Name: name, Value: bean}); err != nil {
		return err
	}
	c.named[name] = bean
	return nil
}

// Singleton provides the bean built by the factory under the name, the factory only runs
// when no bean with this name exists. It reports whether the factory ran.
func (c *Container) Singleton(name string, factory func() interface{}) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exist := c.named[name]; exist {
		return false, nil
	}
	if err := c.provideWithName(name, factory()); err != nil {
		return false, err
	}
	return true, nil
}

// Has reports whether a bean with the name is provided
func (c *Container) Has(name string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, exist := c.named[name]
	return exist
}

// Get returns the bean provided with the name
func (c *Container) Get(name string) (interface{}, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	bean, exist := c.named[name]
	return bean, exist
}

// Populate populate dependency fields for all beans.
// this function must be called after providing all beans
func (c *Container) Populate() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	start := time.Now()
	defer func() {
		log.Logger.Infof("populate the bean container take time %s", time.Since(start))
	}()
	if err := c.graph.Populate(); err != nil {
		return err
	}
	c.populated = true
	return nil
}

// Populated reports whether Populate succeeded
func (c *Container) Populated() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.populated
}
