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

package kubeapi

import (
	"context"
	"strings"
	"time"

	"github.com/google/go-cmp/cmp"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
	"sigs.k8s.io/controller-runtime/pkg/client/fake"

	"github.com/kubevela/platform/pkg/platform/datastore"
)

type testRole struct {
	CreateTime  time.Time `json:"createTime"`
	UpdateTime  time.Time `json:"updateTime"`
	Slug        string    `json:"slug"`
	Name        string    `json:"name"`
	Group       string    `json:"group,omitempty"`
	Description string    `json:"description,omitempty"`
	Weight      int       `json:"weight"`
}

func (r *testRole) SetCreateTime(t time.Time) { r.CreateTime = t }
func (r *testRole) SetUpdateTime(t time.Time) { r.UpdateTime = t }
func (r *testRole) PrimaryKey() string        { return r.Slug }
func (r *testRole) TableName() string         { return "platform_test_role" }
func (r *testRole) ShortTableName() string    { return "ts-role" }
func (r *testRole) Index() map[string]string {
	index := make(map[string]string)
	if r.Group != "" {
		index["group"] = r.Group
	}
	return index
}

func names(list []datastore.Entity) []string {
	var res []string
	for _, e := range list {
		res = append(res, e.(*testRole).Name)
	}
	return res
}

var _ = Describe("Test kubeapi datastore driver", func() {
	var kubeStore datastore.DataStore
	ctx := context.Background()

	BeforeEach(func() {
		var err error
		kubeStore, err = New(ctx, datastore.Config{Database: "test"}, fake.NewClientBuilder().Build())
		Expect(err).Should(BeNil())
		Expect(kubeStore.BatchAdd(ctx, []datastore.Entity{
			&testRole{Slug: "admin", Name: "Admin", Group: "system", Weight: 3},
			&testRole{Slug: "editor", Name: "Editor", Group: "content", Weight: 1},
			&testRole{Slug: "viewer", Name: "Viewer", Group: "content", Weight: 2},
		})).Should(BeNil())
	})

	It("Test new without client", func() {
		_, err := New(ctx, datastore.Config{}, nil)
		Expect(err).ShouldNot(BeNil())
	})

	It("Test add and get function", func() {
		role := &testRole{Slug: "admin"}
		Expect(kubeStore.Get(ctx, role)).Should(BeNil())
		Expect(cmp.Diff(role.Name, "Admin")).Should(BeEmpty())
		Expect(role.CreateTime.IsZero()).Should(BeFalse())

		err := kubeStore.Add(ctx, &testRole{Slug: "admin", Name: "Other"})
		Expect(err).Should(Equal(datastore.ErrRecordExist))

		err = kubeStore.Get(ctx, &testRole{Slug: "nobody"})
		Expect(err).Should(Equal(datastore.ErrRecordNotExist))

		err = kubeStore.Add(ctx, &testRole{Name: "empty"})
		Expect(err).Should(Equal(datastore.ErrPrimaryEmpty))
	})

	It("Test put function", func() {
		Expect(kubeStore.Put(ctx, &testRole{Slug: "editor", Name: "Writer", Group: "system"})).Should(BeNil())
		role := &testRole{Slug: "editor"}
		Expect(kubeStore.Get(ctx, role)).Should(BeNil())
		Expect(role.Name).Should(Equal("Writer"))

		list, err := kubeStore.List(ctx, &testRole{Group: "system"}, nil)
		Expect(err).Should(BeNil())
		Expect(names(list)).Should(Equal([]string{"Admin", "Writer"}))

		err = kubeStore.Put(ctx, &testRole{Slug: "nobody"})
		Expect(err).Should(Equal(datastore.ErrRecordNotExist))
	})

	It("Test list function", func() {
		list, err := kubeStore.List(ctx, &testRole{}, nil)
		Expect(err).Should(BeNil())
		Expect(names(list)).Should(Equal([]string{"Admin", "Editor", "Viewer"}))

		list, err = kubeStore.List(ctx, &testRole{}, &datastore.ListOptions{Page: 2, PageSize: 2})
		Expect(err).Should(BeNil())
		Expect(names(list)).Should(Equal([]string{"Viewer"}))

		list, err = kubeStore.List(ctx, &testRole{Group: "content"}, nil)
		Expect(err).Should(BeNil())
		Expect(names(list)).Should(Equal([]string{"Editor", "Viewer"}))

		list, err = kubeStore.List(ctx, &testRole{}, &datastore.ListOptions{
			SortBy: []datastore.SortOption{{Key: "weight", Order: datastore.SortOrderDescending}},
		})
		Expect(err).Should(BeNil())
		Expect(names(list)).Should(Equal([]string{"Admin", "Viewer", "Editor"}))
	})

	It("Test list by primary keys", func() {
		list, err := kubeStore.List(ctx, &testRole{}, &datastore.ListOptions{
			FilterOptions: datastore.FilterOptions{
				In: []datastore.InQueryOption{{Key: datastore.PrimaryKeyIndex, Values: []string{"viewer", "admin", "missing"}}},
			},
		})
		Expect(err).Should(BeNil())
		Expect(names(list)).Should(Equal([]string{"Admin", "Viewer"}))

		list, err = kubeStore.List(ctx, &testRole{}, &datastore.ListOptions{
			FilterOptions: datastore.FilterOptions{
				In: []datastore.InQueryOption{{Key: datastore.PrimaryKeyIndex}},
			},
		})
		Expect(err).Should(BeNil())
		Expect(list).Should(BeEmpty())
	})

	It("Test list by keys that can not be label values", func() {
		list, err := kubeStore.List(ctx, &testRole{}, &datastore.ListOptions{
			FilterOptions: datastore.FilterOptions{
				In: []datastore.InQueryOption{{Key: datastore.PrimaryKeyIndex, Values: []string{
					"no such role", "admin", "Role/1", strings.Repeat("a", 64),
				}}},
			},
		})
		Expect(err).Should(BeNil())
		Expect(names(list)).Should(Equal([]string{"Admin"}))

		list, err = kubeStore.List(ctx, &testRole{}, &datastore.ListOptions{
			FilterOptions: datastore.FilterOptions{
				In: []datastore.InQueryOption{{Key: datastore.PrimaryKeyIndex, Values: []string{"Role/1"}}},
			},
		})
		Expect(err).Should(BeNil())
		Expect(list).Should(BeEmpty())
	})

	It("Test fuzzy query and count", func() {
		list, err := kubeStore.List(ctx, &testRole{}, &datastore.ListOptions{
			FilterOptions: datastore.FilterOptions{
				Queries: []datastore.FuzzyQueryOption{{Key: "name", Query: "IT"}},
			},
		})
		Expect(err).Should(BeNil())
		Expect(names(list)).Should(Equal([]string{"Editor"}))

		count, err := kubeStore.Count(ctx, &testRole{}, nil)
		Expect(err).Should(BeNil())
		Expect(count).Should(BeEquivalentTo(3))

		count, err = kubeStore.Count(ctx, &testRole{}, &datastore.FilterOptions{
			IsNotExist: []datastore.IsNotExistQueryOption{{Key: "group"}},
		})
		Expect(err).Should(BeNil())
		Expect(count).Should(BeEquivalentTo(0))
	})

	It("Test delete and exist function", func() {
		exist, err := kubeStore.IsExist(ctx, &testRole{Slug: "viewer"})
		Expect(err).Should(BeNil())
		Expect(exist).Should(BeTrue())

		Expect(kubeStore.Delete(ctx, &testRole{Slug: "viewer"})).Should(BeNil())
		exist, err = kubeStore.IsExist(ctx, &testRole{Slug: "viewer"})
		Expect(err).Should(BeNil())
		Expect(exist).Should(BeFalse())

		err = kubeStore.Delete(ctx, &testRole{Slug: "viewer"})
		Expect(err).Should(Equal(datastore.ErrRecordNotExist))
	})

	It("Test batch add rollback", func() {
		err := kubeStore.BatchAdd(ctx, []datastore.Entity{
			&testRole{Slug: "guest", Name: "Guest"},
			&testRole{Slug: "admin", Name: "Admin"},
		})
		Expect(err).ShouldNot(BeNil())
		exist, err := kubeStore.IsExist(ctx, &testRole{Slug: "guest"})
		Expect(err).Should(BeNil())
		Expect(exist).Should(BeFalse())
	})
})
