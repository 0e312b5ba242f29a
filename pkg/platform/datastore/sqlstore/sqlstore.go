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

package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	// register the postgres driver
	_ "github.com/lib/pq"

	"github.com/kubevela/platform/pkg/platform/datastore"
	"github.com/kubevela/platform/pkg/platform/utils/log"
)

// RecordsTable is the table every entity is stored in, created by the platform migrations
const RecordsTable = "platform_records"

var keyPattern = regexp.MustCompile(`^[A-Za-z0-9_\-.]+$`)

type sqlstore struct {
	db *sqlx.DB
}

// New new postgres datastore instance
func New(ctx context.Context, cfg datastore.Config) (datastore.DataStore, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("connect postgres failure %w", err)
	}
	return NewWithDB(db), nil
}

// NewWithDB wraps an opened database handle
func NewWithDB(db *sqlx.DB) datastore.DataStore {
	return &sqlstore{db: db}
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

func encode(entity datastore.Entity) (labels []byte, data []byte, err error) {
	if labels, err = json.Marshal(datastore.Labels(entity)); err != nil {
		return nil, nil, err
	}
	if data, err = json.Marshal(entity); err != nil {
		return nil, nil, err
	}
	return labels, data, nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

func insert(ctx context.Context, db execer, entity datastore.Entity) error {
	if err := checkEntity(entity); err != nil {
		return err
	}
	now := time.Now()
	entity.SetCreateTime(now)
	entity.SetUpdateTime(now)
	labels, data, err := encode(entity)
	if err != nil {
		return datastore.NewDBError(err)
	}
	res, err := db.ExecContext(ctx, `INSERT INTO `+RecordsTable+` (table_name, primary_key, labels, data, create_time, update_time)
		VALUES ($1, $2, $3, $4, $5, $6) ON CONFLICT (table_name, primary_key) DO NOTHING`,
		entity.TableName(), entity.PrimaryKey(), labels, data, now, now)
	if err != nil {
		return datastore.NewDBError(err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return datastore.ErrRecordExist
	}
	return nil
}

// Add add data model
func (s *sqlstore) Add(ctx context.Context, entity datastore.Entity) error {
	return insert(ctx, s.db, entity)
}

// BatchAdd adds all entities in one transaction.
func (s *sqlstore) BatchAdd(ctx context.Context, entities []datastore.Entity) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return datastore.NewDBError(err)
	}
	for _, entity := range entities {
		if err := insert(ctx, tx, entity); err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				log.Logger.Errorf("rollback batch add failure %s", rerr.Error())
			}
			return datastore.NewDBError(fmt.Errorf("save entities occur error, %w", err))
		}
	}
	if err := tx.Commit(); err != nil {
		return datastore.NewDBError(err)
	}
	return nil
}

// Get get data model
func (s *sqlstore) Get(ctx context.Context, entity datastore.Entity) error {
	if err := checkEntity(entity); err != nil {
		return err
	}
	var data []byte
	err := s.db.GetContext(ctx, &data, `SELECT data FROM `+RecordsTable+` WHERE table_name = $1 AND primary_key = $2`,
		entity.TableName(), entity.PrimaryKey())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return datastore.ErrRecordNotExist
		}
		return datastore.NewDBError(err)
	}
	if err := json.Unmarshal(data, entity); err != nil {
		return datastore.NewDBError(err)
	}
	return nil
}

// Put update data model
func (s *sqlstore) Put(ctx context.Context, entity datastore.Entity) error {
	if err := checkEntity(entity); err != nil {
		return err
	}
	now := time.Now()
	entity.SetUpdateTime(now)
	labels, data, err := encode(entity)
	if err != nil {
		return datastore.NewDBError(err)
	}
	res, err := s.db.ExecContext(ctx, `UPDATE `+RecordsTable+` SET labels = $3, data = $4, update_time = $5
		WHERE table_name = $1 AND primary_key = $2`,
		entity.TableName(), entity.PrimaryKey(), labels, data, now)
	if err != nil {
		return datastore.NewDBError(err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return datastore.ErrRecordNotExist
	}
	return nil
}

// IsExist determine whether data exists.
func (s *sqlstore) IsExist(ctx context.Context, entity datastore.Entity) (bool, error) {
	if err := checkEntity(entity); err != nil {
		return false, err
	}
	var exist bool
	err := s.db.GetContext(ctx, &exist, `SELECT EXISTS (SELECT 1 FROM `+RecordsTable+` WHERE table_name = $1 AND primary_key = $2)`,
		entity.TableName(), entity.PrimaryKey())
	if err != nil {
		return false, datastore.NewDBError(err)
	}
	return exist, nil
}

// Delete delete data
func (s *sqlstore) Delete(ctx context.Context, entity datastore.Entity) error {
	if err := checkEntity(entity); err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM `+RecordsTable+` WHERE table_name = $1 AND primary_key = $2`,
		entity.TableName(), entity.PrimaryKey())
	if err != nil {
		return datastore.NewDBError(err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return datastore.ErrRecordNotExist
	}
	return nil
}

func labelExpr(key string) (string, error) {
	if key == datastore.PrimaryKeyIndex {
		return "primary_key", nil
	}
	if !keyPattern.MatchString(key) {
		return "", datastore.ErrIndexInvalid
	}
	return fmt.Sprintf("labels->>'%s'", key), nil
}

func dataExpr(key string, text bool) (string, error) {
	if !keyPattern.MatchString(key) {
		return "", datastore.ErrIndexInvalid
	}
	op := "#>"
	if text {
		op = "#>>"
	}
	return fmt.Sprintf("data %s '{%s}'", op, strings.ReplaceAll(key, ".", ",")), nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// where builds the condition with bindvar placeholders, In values are expanded by sqlx.In
func where(entity datastore.Entity, filter *datastore.FilterOptions) (string, []interface{}, error) {
	conds := []string{"table_name = ?"}
	args := []interface{}{entity.TableName()}
	index := entity.Index()
	keys := make([]string, 0, len(index))
	for k := range index {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		expr, err := labelExpr(k)
		if err != nil {
			return "", nil, err
		}
		conds = append(conds, expr+" = ?")
		args = append(args, index[k])
	}
	if filter != nil {
		for _, query := range filter.Queries {
			expr, err := dataExpr(query.Key, true)
			if err != nil {
				return "", nil, err
			}
			conds = append(conds, expr+" ILIKE ?")
			args = append(args, "%"+likeEscaper.Replace(query.Query)+"%")
		}
		for _, in := range filter.In {
			if len(in.Values) == 0 {
				conds = append(conds, "FALSE")
				continue
			}
			expr, err := labelExpr(in.Key)
			if err != nil {
				return "", nil, err
			}
			conds = append(conds, expr+" IN (?)")
			args = append(args, in.Values)
		}
		for _, notExist := range filter.IsNotExist {
			expr, err := labelExpr(notExist.Key)
			if err != nil {
				return "", nil, err
			}
			conds = append(conds, expr+" IS NULL")
		}
	}
	query, args, err := sqlx.In(strings.Join(conds, " AND "), args...)
	if err != nil {
		return "", nil, datastore.NewDBError(err)
	}
	return query, args, nil
}

func orderBy(sortBy []datastore.SortOption) (string, error) {
	var orders []string
	for _, op := range sortBy {
		expr, err := dataExpr(op.Key, false)
		if err != nil {
			return "", err
		}
		if op.Order == datastore.SortOrderDescending {
			expr += " DESC"
		} else {
			expr += " ASC"
		}
		orders = append(orders, expr)
	}
	return strings.Join(append(orders, "primary_key ASC"), ", "), nil
}

// List list entity function, records are ordered by primary key unless sort options are given.
func (s *sqlstore) List(ctx context.Context, entity datastore.Entity, op *datastore.ListOptions) ([]datastore.Entity, error) {
	if entity.TableName() == "" {
		return nil, datastore.ErrTableNameEmpty
	}
	var filter *datastore.FilterOptions
	var sortBy []datastore.SortOption
	if op != nil {
		filter = &op.FilterOptions
		sortBy = op.SortBy
	}
	cond, args, err := where(entity, filter)
	if err != nil {
		return nil, err
	}
	order, err := orderBy(sortBy)
	if err != nil {
		return nil, err
	}
	query := "SELECT data FROM " + RecordsTable + " WHERE " + cond + " ORDER BY " + order
	if op != nil && op.PageSize > 0 && op.Page > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, op.PageSize, op.PageSize*(op.Page-1))
	}
	var rows [][]byte
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(query), args...); err != nil {
		return nil, datastore.NewDBError(err)
	}
	var list []datastore.Entity
	for _, data := range rows {
		item, err := datastore.NewEntity(entity)
		if err != nil {
			return nil, datastore.NewDBError(err)
		}
		if err := json.Unmarshal(data, item); err != nil {
			return nil, datastore.NewDBError(err)
		}
		list = append(list, item)
	}
	return list, nil
}

// Count counts entities
func (s *sqlstore) Count(ctx context.Context, entity datastore.Entity, filterOptions *datastore.FilterOptions) (int64, error) {
	if entity.TableName() == "" {
		return 0, datastore.ErrTableNameEmpty
	}
	cond, args, err := where(entity, filterOptions)
	if err != nil {
		return 0, err
	}
	var count int64
	if err := s.db.GetContext(ctx, &count, s.db.Rebind("SELECT COUNT(*) FROM "+RecordsTable+" WHERE "+cond), args...); err != nil {
		return 0, datastore.NewDBError(err)
	}
	return count, nil
}
