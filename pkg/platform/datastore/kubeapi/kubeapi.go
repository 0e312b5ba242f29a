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
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/labels"
	"k8s.io/apimachinery/pkg/selection"
	"k8s.io/apimachinery/pkg/types"
	"k8s.io/apimachinery/pkg/util/validation"
	"sigs.k8s.io/controller-runtime/pkg/client"

	"github.com/kubevela/platform/pkg/platform/datastore"
	"github.com/kubevela/platform/pkg/platform/utils/log"
)

// DefaultNamespace is the namespace records are stored in when no database is configured
const DefaultNamespace = "platform-store"

type kubeapi struct {
	kubeClient client.Client
	namespace  string
}

// New new kubeapi datastore instance
// Data is stored using ConfigMap.
func New(ctx context.Context, cfg datastore.Config, kubeClient client.Client) (datastore.DataStore, error) {
	if kubeClient == nil {
		return nil, fmt.Errorf("kube client is required for the kubeapi datastore")
	}
	if cfg.Database == "" {
		cfg.Database = DefaultNamespace
	}
	var namespace corev1.Namespace
	if err := kubeClient.Get(ctx, types.NamespacedName{Name: cfg.Database}, &namespace); apierrors.IsNotFound(err) {
		if err := kubeClient.Create(ctx, &corev1.Namespace{
			ObjectMeta: metav1.ObjectMeta{
				Name:        cfg.Database,
				Annotations: map[string]string{"description": "For platform dashboard metadata storage."},
			}}); err != nil {
			return nil, fmt.Errorf("create namespace failure %w", err)
		}
	}
	return &kubeapi{
		kubeClient: kubeClient,
		namespace:  cfg.Database,
	}, nil
}

func generateName(entity datastore.Entity) string {
	name := fmt.Sprintf("%s-%s", entity.ShortTableName(), entity.PrimaryKey())
	return strings.ToLower(strings.ReplaceAll(name, "_", "-"))
}

func (m *kubeapi) generateConfigMap(entity datastore.Entity) *corev1.ConfigMap {
	data, _ := json.Marshal(entity)
	var configMap = corev1.ConfigMap{
		ObjectMeta: metav1.ObjectMeta{
			Name:      generateName(entity),
			Namespace: m.namespace,
			Labels:    datastore.Labels(entity),
		},
		BinaryData: map[string][]byte{
			"data": data,
		},
	}
	return &configMap
}

func checkEntity(entity datastore.Entity) error {
	if entity == nil {
		return datastore.ErrNilEntity
	}
	if entity.PrimaryKey() == "" {
		return datastore.ErrPrimaryEmpty
	}
	if entity.TableName() == "" {
		return datastore.ErrTableNameEmpty
	}
	return nil
}

// Add add data model
func (m *kubeapi) Add(ctx context.Context, entity datastore.Entity) error {
	if err := checkEntity(entity); err != nil {
		return err
	}
	entity.SetCreateTime(time.Now())
	entity.SetUpdateTime(time.Now())
	configMap := m.generateConfigMap(entity)
	if err := m.kubeClient.Create(ctx, configMap); err != nil {
		if apierrors.IsAlreadyExists(err) {
			return datastore.ErrRecordExist
		}
		return datastore.NewDBError(err)
	}
	return nil
}

// BatchAdd batch add entity, this operation has some atomicity.
func (m *kubeapi) BatchAdd(ctx context.Context, entities []datastore.Entity) error {
	notRollback := make(map[string]int)
	for i, saveEntity := range entities {
		if err := m.Add(ctx, saveEntity); err != nil {
			if errors.Is(err, datastore.ErrRecordExist) {
				notRollback[saveEntity.PrimaryKey()] = 1
			}
			for _, deleteEntity := range entities[:i] {
				if _, exit := notRollback[deleteEntity.PrimaryKey()]; !exit {
					if err := m.Delete(ctx, deleteEntity); err != nil {
						if !errors.Is(err, datastore.ErrRecordNotExist) {
							log.Logger.Errorf("rollback delete entity failure %s", err.Error())
						}
					}
				}
			}
			return datastore.NewDBError(fmt.Errorf("save entities occur error, %w", err))
		}
	}
	return nil
}

// Get get data model
func (m *kubeapi) Get(ctx context.Context, entity datastore.Entity) error {
	if err := checkEntity(entity); err != nil {
		return err
	}
	var configMap corev1.ConfigMap
	if err := m.kubeClient.Get(ctx, types.NamespacedName{Namespace: m.namespace, Name: generateName(entity)}, &configMap); err != nil {
		if apierrors.IsNotFound(err) {
			return datastore.ErrRecordNotExist
		}
		return datastore.NewDBError(err)
	}
	if err := json.Unmarshal(configMap.BinaryData["data"], entity); err != nil {
		return datastore.NewDBError(err)
	}
	return nil
}

// Put update data model
func (m *kubeapi) Put(ctx context.Context, entity datastore.Entity) error {
	if err := checkEntity(entity); err != nil {
		return err
	}
	entity.SetUpdateTime(time.Now())
	var configMap corev1.ConfigMap
	if err := m.kubeClient.Get(ctx, types.NamespacedName{Namespace: m.namespace, Name: generateName(entity)}, &configMap); err != nil {
		if apierrors.IsNotFound(err) {
			return datastore.ErrRecordNotExist
		}
		return datastore.NewDBError(err)
	}
	data, err := json.Marshal(entity)
	if err != nil {
		return datastore.NewDBError(err)
	}
	if configMap.BinaryData == nil {
		configMap.BinaryData = map[string][]byte{}
	}
	configMap.BinaryData["data"] = data
	configMap.Labels = datastore.Labels(entity)
	if err := m.kubeClient.Update(ctx, &configMap); err != nil {
		return datastore.NewDBError(err)
	}
	return nil
}

// IsExist determine whether data exists.
func (m *kubeapi) IsExist(ctx context.Context, entity datastore.Entity) (bool, error) {
	if err := checkEntity(entity); err != nil {
		return false, err
	}
	var configMap corev1.ConfigMap
	if err := m.kubeClient.Get(ctx, types.NamespacedName{Namespace: m.namespace, Name: generateName(entity)}, &configMap); err != nil {
		if apierrors.IsNotFound(err) {
			return false, nil
		}
		return false, datastore.NewDBError(err)
	}
	return true, nil
}

// Delete delete data
func (m *kubeapi) Delete(ctx context.Context, entity datastore.Entity) error {
	if err := checkEntity(entity); err != nil {
		return err
	}
	if err := m.kubeClient.Delete(ctx, m.generateConfigMap(entity)); err != nil {
		if apierrors.IsNotFound(err) {
			return datastore.ErrRecordNotExist
		}
		return datastore.NewDBError(err)
	}
	return nil
}

type bySortOptionConfigMap struct {
	items   []corev1.ConfigMap
	objects []map[string]interface{}
	sortBy  []datastore.SortOption
}

func newBySortOptionConfigMap(items []corev1.ConfigMap, sortBy []datastore.SortOption) bySortOptionConfigMap {
	s := bySortOptionConfigMap{
		items:   items,
		objects: make([]map[string]interface{}, len(items)),
		sortBy:  sortBy,
	}
	for i, item := range items {
		m := map[string]interface{}{}
		data := item.BinaryData["data"]
		for _, op := range sortBy {
			res := gjson.GetBytes(data, op.Key)
			switch res.Type {
			case gjson.Number:
				m[op.Key] = res.Num
			case gjson.String:
				if !res.Time().IsZero() {
					m[op.Key] = res.Time()
				} else {
					m[op.Key] = res.Str
				}
			default:
				m[op.Key] = res.Raw
			}
		}
		s.objects[i] = m
	}
	return s
}

func (b bySortOptionConfigMap) Len() int {
	return len(b.items)
}

func (b bySortOptionConfigMap) Swap(i, j int) {
	b.items[i], b.items[j] = b.items[j], b.items[i]
	b.objects[i], b.objects[j] = b.objects[j], b.objects[i]
}

func (b bySortOptionConfigMap) Less(i, j int) bool {
	for _, op := range b.sortBy {
		x := b.objects[i][op.Key]
		y := b.objects[j][op.Key]
		cmp := compare(x, y)
		if cmp == 0 {
			continue
		}
		if op.Order == datastore.SortOrderDescending {
			return cmp > 0
		}
		return cmp < 0
	}
	return false
}

func compare(x, y interface{}) int {
	switch _x := x.(type) {
	case time.Time:
		if _y, ok := y.(time.Time); ok {
			switch {
			case _x.Before(_y):
				return -1
			case _x.After(_y):
				return 1
			}
		}
	case float64:
		if _y, ok := y.(float64); ok {
			switch {
			case _x < _y:
				return -1
			case _x > _y:
				return 1
			}
		}
	case string:
		if _y, ok := y.(string); ok {
			return strings.Compare(_x, _y)
		}
	}
	return 0
}

func _sortConfigMapBySortOptions(items []corev1.ConfigMap, sortOptions []datastore.SortOption) []corev1.ConfigMap {
	so := newBySortOptionConfigMap(items, sortOptions)
	sort.Stable(so)
	return so.items
}

func _filterConfigMapByFuzzyQueryOptions(items []corev1.ConfigMap, queries []datastore.FuzzyQueryOption) []corev1.ConfigMap {
	var _items []corev1.ConfigMap
	for _, item := range items {
		data := item.BinaryData["data"]
		valid := true
		for _, query := range queries {
			res := gjson.GetBytes(data, query.Key)
			if res.Type != gjson.String || !strings.Contains(strings.ToLower(res.Str), strings.ToLower(query.Query)) {
				valid = false
				break
			}
		}
		if valid {
			_items = append(_items, item)
		}
	}
	return _items
}

func (m *kubeapi) selector(entity datastore.Entity, filter *datastore.FilterOptions) (labels.Selector, error) {
	selector, err := labels.Parse(fmt.Sprintf("%s=%s", datastore.TableIndex, entity.TableName()))
	if err != nil {
		return nil, datastore.NewDBError(err)
	}
	for k, v := range entity.Index() {
		rq, err := labels.NewRequirement(k, selection.Equals, []string{v})
		if err != nil {
			return nil, datastore.ErrIndexInvalid
		}
		selector = selector.Add(*rq)
	}
	if filter == nil {
		return selector, nil
	}
	for _, inFilter := range filter.In {
		rq, err := labels.NewRequirement(inFilter.Key, selection.In, inFilter.Values)
		if err != nil {
			log.Logger.Errorf("new list requirement failure %s", err.Error())
			return nil, datastore.ErrIndexInvalid
		}
		selector = selector.Add(*rq)
	}
	for _, notFilter := range filter.IsNotExist {
		rq, err := labels.NewRequirement(notFilter.Key, selection.DoesNotExist, []string{})
		if err != nil {
			log.Logger.Errorf("new list requirement failure %s", err.Error())
			return nil, datastore.ErrIndexInvalid
		}
		selector = selector.Add(*rq)
	}
	return selector, nil
}

func (m *kubeapi) list(ctx context.Context, entity datastore.Entity, filter *datastore.FilterOptions) ([]corev1.ConfigMap, error) {
	if entity.TableName() == "" {
		return nil, datastore.ErrTableNameEmpty
	}
	filter = validInValues(filter)
	for _, in := range filterIn(filter) {
		// an empty set matches nothing, the label selector rejects it
		if len(in.Values) == 0 {
			return nil, nil
		}
	}
	selector, err := m.selector(entity, filter)
	if err != nil {
		return nil, err
	}
	var configMaps corev1.ConfigMapList
	if err := m.kubeClient.List(ctx, &configMaps, &client.ListOptions{
		LabelSelector: selector,
		Namespace:     m.namespace,
	}); err != nil {
		if apierrors.IsNotFound(err) {
			return nil, nil
		}
		return nil, datastore.NewDBError(err)
	}
	items := configMaps.Items
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Name < items[j].Name
	})
	if filter != nil && len(filter.Queries) > 0 {
		items = _filterConfigMapByFuzzyQueryOptions(items, filter.Queries)
	}
	return items, nil
}

// validInValues drops the In values that can not be label values, no record is labeled with them
func validInValues(filter *datastore.FilterOptions) *datastore.FilterOptions {
	if filter == nil || len(filter.In) == 0 {
		return filter
	}
	copied := *filter
	copied.In = make([]datastore.InQueryOption, 0, len(filter.In))
	for _, in := range filter.In {
		values := make([]string, 0, len(in.Values))
		for _, v := range in.Values {
			if len(validation.IsValidLabelValue(v)) == 0 {
				values = append(values, v)
			}
		}
		copied.In = append(copied.In, datastore.InQueryOption{Key: in.Key, Values: values})
	}
	return &copied
}

func filterIn(filter *datastore.FilterOptions) []datastore.InQueryOption {
	if filter == nil {
		return nil
	}
	return filter.In
}

// List will list all database records by select labels according to table name.
// Records are returned in name order unless sort options are given.
func (m *kubeapi) List(ctx context.Context, entity datastore.Entity, op *datastore.ListOptions) ([]datastore.Entity, error) {
	var filter *datastore.FilterOptions
	if op != nil {
		filter = &op.FilterOptions
	}
	items, err := m.list(ctx, entity, filter)
	if err != nil {
		return nil, err
	}
	if op != nil && len(op.SortBy) > 0 {
		items = _sortConfigMapBySortOptions(items, op.SortBy)
	}
	if op != nil && op.PageSize > 0 && op.Page > 0 {
		skip := op.PageSize * (op.Page - 1)
		limit := op.PageSize
		if skip >= len(items) {
			items = []corev1.ConfigMap{}
		} else {
			items = items[skip:]
		}
		if limit >= len(items) {
			limit = len(items)
		}
		items = items[:limit]
	}
	var list []datastore.Entity
	for _, item := range items {
		ent, err := datastore.NewEntity(entity)
		if err != nil {
			return nil, datastore.NewDBError(err)
		}
		if err := json.Unmarshal(item.BinaryData["data"], ent); err != nil {
			return nil, datastore.NewDBError(err)
		}
		list = append(list, ent)
	}
	return list, nil
}

// Count counts entities
func (m *kubeapi) Count(ctx context.Context, entity datastore.Entity, filterOptions *datastore.FilterOptions) (int64, error) {
	items, err := m.list(ctx, entity, filterOptions)
	if err != nil {
		return 0, err
	}
	return int64(len(items)), nil
}
