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

package fields

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
)

// Remotes the remotes reachable through the relation search endpoint
type Remotes struct {
	mu      sync.RWMutex
	remotes map[string]Remote
}

// NewRemotes creates an empty remote registry
func NewRemotes() *Remotes {
	return &Remotes{remotes: make(map[string]Remote)}
}

// Register adds a remote, it reports false and keeps the existing one when the name is known
func (r *Remotes) Register(name string, remote Remote) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exist := r.remotes[name]; exist {
		return false
	}
	r.remotes[name] = remote
	return true
}

// Get returns the remote registered under the name
func (r *Remotes) Get(name string) (Remote, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	remote, ok := r.remotes[name]
	return remote, ok
}

// HTTPRemote reads records from a json api, a record is served at <base>/<id>
// and the search at <base>?query=<query>&limit=<limit>.
type HTTPRemote struct {
	client *resty.Client
}

var _ Remote = &HTTPRemote{}
var _ Searcher = &HTTPRemote{}

// NewHTTPRemote creates a remote for the api base url
func NewHTTPRemote(baseURL string, timeout time.Duration) *HTTPRemote {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json").
		SetRetryCount(1)
	return &HTTPRemote{client: client}
}

// Find fetches the record of the id
func (h *HTTPRemote) Find(ctx context.Context, id string) (Record, error) {
	var record Record
	resp, err := h.client.R().
		SetContext(ctx).
		SetPathParam("id", id).
		SetResult(&record).
		Get("/{id}")
	if err != nil {
		return nil, err
	}
	if resp.StatusCode() == http.StatusNotFound {
		return nil, ErrRecordNotFound
	}
	if resp.IsError() {
		return nil, fmt.Errorf("remote responded %s", resp.Status())
	}
	return record, nil
}

// Search fetches the records matching the query
func (h *HTTPRemote) Search(ctx context.Context, query string, limit int) ([]Record, error) {
	var records []Record
	resp, err := h.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{"query": query, "limit": strconv.Itoa(limit)}).
		SetResult(&records).
		Get("")
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("remote responded %s", resp.Status())
	}
	return records, nil
}
