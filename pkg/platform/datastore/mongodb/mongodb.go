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

package mongodb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/kubevela/platform/pkg/platform/datastore"
	"github.com/kubevela/platform/pkg/platform/utils/log"
)

const (
	idKey    = "_id"
	indexKey = "_index"
)

type mongodb struct {
	client   *mongo.Client
	database string
}

// New new mongodb datastore instance
func New(ctx context.Context, cfg datastore.Config) (datastore.DataStore, error) {
	if !strings.HasPrefix(cfg.URL, "mongodb://") && !strings.HasPrefix(cfg.URL, "mongodb+srv://") {
		cfg.URL = fmt.Sprintf("mongodb://%s", cfg.URL)
	}
	if cfg.Database == "" {
		cfg.Database = "platform"
	}
	clientOpts := options.Client().ApplyURI(cfg.URL)
	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, err
	}
	return &mongodb{
		client:   client,
		database: cfg.Database,
	}, nil
}

func (m *mongodb) collection(entity datastore.Entity) *mongo.Collection {
	return m.client.Database(m.database).Collection(entity.TableName())
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
func (m *mongodb) Add(ctx context.Context, entity datastore.Entity) error {
	if err := checkEntity(entity); err != nil {
		return err
	}
	entity.SetCreateTime(time.Now())
	entity.SetUpdateTime(time.Now())
	doc, err := toDocument(entity)
	if err != nil {
		return datastore.NewDBError(err)
	}
	if _, err := m.collection(entity).InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return datastore.ErrRecordExist
		}
		return datastore.NewDBError(err)
	}
	return nil
}

// BatchAdd batch add entity, this operation has some atomicity.
func (m *mongodb) BatchAdd(ctx context.Context, entities []datastore.Entity) error {
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
func (m *mongodb) Get(ctx context.Context, entity datastore.Entity) error {
	if err := checkEntity(entity); err != nil {
		return err
	}
	raw, err := m.collection(entity).FindOne(ctx, makePrimaryKeyFilter(entity.PrimaryKey())).DecodeBytes()
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return datastore.ErrRecordNotExist
		}
		return datastore.NewDBError(err)
	}
	if err := fromDocument(raw, entity); err != nil {
		return datastore.NewDBError(err)
	}
	return nil
}

// Put update data model
func (m *mongodb) Put(ctx context.Context, entity datastore.Entity) error {
	if err := checkEntity(entity); err != nil {
		return err
	}
	entity.SetUpdateTime(time.Now())
	doc, err := toDocument(entity)
	if err != nil {
		return datastore.NewDBError(err)
	}
	res, err := m.collection(entity).ReplaceOne(ctx, makePrimaryKeyFilter(entity.PrimaryKey()), doc)
	if err != nil {
		return datastore.NewDBError(err)
	}
	if res.MatchedCount == 0 {
		return datastore.ErrRecordNotExist
	}
	return nil
}

// IsExist determine whether data exists.
func (m *mongodb) IsExist(ctx context.Context, entity datastore.Entity) (bool, error) {
	if err := checkEntity(entity); err != nil {
		return false, err
	}
	err := m.collection(entity).FindOne(ctx, makePrimaryKeyFilter(entity.PrimaryKey())).Err()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	} else if err != nil {
		return false, datastore.NewDBError(err)
	}
	return true, nil
}

// Delete delete data
func (m *mongodb) Delete(ctx context.Context, entity datastore.Entity) error {
	if err := checkEntity(entity); err != nil {
		return err
	}
	res, err := m.collection(entity).DeleteOne(ctx, makePrimaryKeyFilter(entity.PrimaryKey()))
	if err != nil {
		log.Logger.Errorf("delete document failure %s", err.Error())
		return datastore.NewDBError(err)
	}
	if res.DeletedCount == 0 {
		return datastore.ErrRecordNotExist
	}
	return nil
}

// List list entity function
func (m *mongodb) List(ctx context.Context, entity datastore.Entity, op *datastore.ListOptions) ([]datastore.Entity, error) {
	if entity.TableName() == "" {
		return nil, datastore.ErrTableNameEmpty
	}
	var filterOptions *datastore.FilterOptions
	if op != nil {
		filterOptions = &op.FilterOptions
	}
	cur, err := m.collection(entity).Find(ctx, makeFilter(entity, filterOptions), makeFindOptions(op))
	if err != nil {
		return nil, datastore.NewDBError(err)
	}
	defer func() {
		if err := cur.Close(ctx); err != nil {
			log.Logger.Warnf("close mongodb cursor failure %s", err.Error())
		}
	}()
	var list []datastore.Entity
	for cur.Next(ctx) {
		item, err := datastore.NewEntity(entity)
		if err != nil {
			return nil, datastore.NewDBError(err)
		}
		if err := fromDocument(cur.Current, item); err != nil {
			return nil, datastore.NewDBError(fmt.Errorf("decode entity failure %w", err))
		}
		list = append(list, item)
	}
	if err := cur.Err(); err != nil {
		return nil, datastore.NewDBError(err)
	}
	return list, nil
}

// Count counts entities
func (m *mongodb) Count(ctx context.Context, entity datastore.Entity, filterOptions *datastore.FilterOptions) (int64, error) {
	if entity.TableName() == "" {
		return 0, datastore.ErrTableNameEmpty
	}
	count, err := m.collection(entity).CountDocuments(ctx, makeFilter(entity, filterOptions))
	if err != nil {
		return 0, datastore.NewDBError(err)
	}
	return count, nil
}

// toDocument converts the JSON encoding of the entity to a document keyed by
// the primary key, with the index labels kept in a sub document.
func toDocument(entity datastore.Entity) (bson.D, error) {
	data, err := json.Marshal(entity)
	if err != nil {
		return nil, err
	}
	var fields bson.D
	if err := bson.UnmarshalExtJSON(data, false, &fields); err != nil {
		return nil, err
	}
	doc := bson.D{{Key: idKey, Value: entity.PrimaryKey()}}
	for _, field := range fields {
		if field.Key == idKey || field.Key == indexKey {
			continue
		}
		doc = append(doc, field)
	}
	index := bson.D{}
	for k, v := range datastore.Labels(entity) {
		index = append(index, bson.E{Key: k, Value: v})
	}
	return append(doc, bson.E{Key: indexKey, Value: index}), nil
}

func fromDocument(raw bson.Raw, entity datastore.Entity) error {
	data, err := bson.MarshalExtJSON(raw, false, false)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, entity)
}

func indexField(key string) string {
	if key == datastore.PrimaryKeyIndex {
		return idKey
	}
	return indexKey + "." + key
}

func makeFilter(entity datastore.Entity, filterOptions *datastore.FilterOptions) bson.D {
	// bson.D{} specifies 'all documents'
	filter := bson.D{}
	for k, v := range entity.Index() {
		filter = append(filter, bson.E{Key: indexField(k), Value: v})
	}
	if filterOptions == nil {
		return filter
	}
	for _, queryOp := range filterOptions.Queries {
		filter = append(filter, bson.E{Key: queryOp.Key, Value: primitive.Regex{Pattern: regexp.QuoteMeta(queryOp.Query), Options: "i"}})
	}
	for _, inOp := range filterOptions.In {
		filter = append(filter, bson.E{Key: indexField(inOp.Key), Value: bson.M{"$in": inOp.Values}})
	}
	for _, notOp := range filterOptions.IsNotExist {
		filter = append(filter, bson.E{Key: indexField(notOp.Key), Value: bson.M{"$exists": false}})
	}
	return filter
}

func makeFindOptions(op *datastore.ListOptions) *options.FindOptions {
	findOptions := options.Find()
	if op == nil {
		return findOptions.SetSort(bson.D{{Key: idKey, Value: 1}})
	}
	if op.PageSize > 0 && op.Page > 0 {
		findOptions.SetSkip(int64(op.PageSize * (op.Page - 1)))
		findOptions.SetLimit(int64(op.PageSize))
	}
	sort := bson.D{}
	for _, sortOp := range op.SortBy {
		sort = append(sort, bson.E{Key: sortOp.Key, Value: int(sortOp.Order)})
	}
	findOptions.SetSort(append(sort, bson.E{Key: idKey, Value: 1}))
	return findOptions
}

func makePrimaryKeyFilter(primaryKey string) bson.D {
	return bson.D{{Key: idKey, Value: primaryKey}}
}
