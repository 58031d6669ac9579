// Copyright (C) 2023 The Eventival Authors.
//
// This file is part of Eventival.
//
// Eventival is free software: you can redistribute it and/or modify it under
// the terms of the GNU Affero General Public License as published by the Free
// Software Foundation, either version 3 of the License, or (at your option)
// any later version.
//
// Eventival is distributed in the hope that it will be useful, but WITHOUT
// ANY WARRANTY; without even the implied warranty of MERCHANTABILITY or
// FITNESS FOR A PARTICULAR PURPOSE.  See the GNU Affero General Public
// License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with Eventival.  If not, see <https://www.gnu.org/licenses/>.

package festival

import (
	"database/sql"
	"errors"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Row maps column names to values. A nil value is stored as NULL.
type Row map[string]interface{}

func (r Row) columns() []string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Sink receives the rows produced by the projectors. Writes are grouped in a
// transaction that ends with Commit or Rollback.
type Sink interface {
	// Upsert inserts row, or when a row with the same keys exists,
	// overwrites its other columns.
	Upsert(table string, keys []string, row Row) error
	InsertIgnore(table string, row Row) error
	DeleteWhere(table string, where Row) error
	// Lookup returns the id of the first row where column equals value.
	Lookup(table, column string, value interface{}) (int64, bool, error)
	Values(table, column string, where Row) ([]string, error)
	// Updated returns the updated timestamp of row id, false when the row
	// doesn't exist or was never updated.
	Updated(table string, id interface{}) (time.Time, bool, error)
	Commit() error
	Rollback() error
}

type gormSink struct {
	db *gorm.DB
	tx *gorm.DB
}

func NewSink(db *gorm.DB) Sink {
	return &gormSink{db: db}
}

func (s *gormSink) session() *gorm.DB {
	if s.tx == nil {
		s.tx = s.db.Begin()
	}
	return s.tx
}

func (s *gormSink) Upsert(table string, keys []string, row Row) error {
	isKey := make(map[string]bool, len(keys))
	var cols []clause.Column
	for _, k := range keys {
		isKey[k] = true
		cols = append(cols, clause.Column{Name: k})
	}
	var update []string
	for _, c := range row.columns() {
		if !isKey[c] {
			update = append(update, c)
		}
	}
	if len(update) == 0 {
		return s.InsertIgnore(table, row)
	}
	return s.session().Table(table).Clauses(clause.OnConflict{
		Columns:   cols,
		DoUpdates: clause.AssignmentColumns(update),
	}).Create(map[string]interface{}(row)).Error
}

func (s *gormSink) InsertIgnore(table string, row Row) error {
	tx := s.session().Table(table)
	if s.db.Dialector.Name() == "mysql" {
		tx = tx.Clauses(clause.Insert{Modifier: "IGNORE"})
	} else {
		tx = tx.Clauses(clause.OnConflict{DoNothing: true})
	}
	return tx.Create(map[string]interface{}(row)).Error
}

func (s *gormSink) DeleteWhere(table string, where Row) error {
	var sb strings.Builder
	vars := []interface{}{clause.Table{Name: table}}
	sb.WriteString("DELETE FROM ?")
	for i, c := range where.columns() {
		if i == 0 {
			sb.WriteString(" WHERE ")
		} else {
			sb.WriteString(" AND ")
		}
		sb.WriteString("? = ?")
		vars = append(vars, clause.Column{Name: c}, where[c])
	}
	return s.session().Exec(sb.String(), vars...).Error
}

func (s *gormSink) Lookup(table, column string, value interface{}) (int64, bool, error) {
	var id int64
	err := s.session().Table(table).Select("id").
		Where(clause.Eq{Column: clause.Column{Name: column}, Value: value}).
		Order("id").Limit(1).Row().Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	} else if err != nil {
		return 0, false, err
	}
	return id, true, nil
}

func (s *gormSink) Values(table, column string, where Row) ([]string, error) {
	tx := s.session().Table(table).Select(column)
	for _, c := range where.columns() {
		tx = tx.Where(clause.Eq{Column: clause.Column{Name: c}, Value: where[c]})
	}
	rows, err := tx.Order(column).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var values []string
	for rows.Next() {
		var v sql.NullString
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		if v.Valid {
			values = append(values, v.String)
		}
	}
	return values, rows.Err()
}

func (s *gormSink) Updated(table string, id interface{}) (time.Time, bool, error) {
	var t sql.NullTime
	err := s.session().Table(table).Select("updated").
		Where(clause.Eq{Column: clause.Column{Name: "id"}, Value: id}).
		Limit(1).Row().Scan(&t)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, false, nil
	} else if err != nil {
		return time.Time{}, false, err
	}
	return t.Time, t.Valid, nil
}

func (s *gormSink) Commit() error {
	if s.tx == nil {
		return nil
	}
	err := s.tx.Commit().Error
	s.tx = nil
	return err
}

func (s *gormSink) Rollback() error {
	if s.tx == nil {
		return nil
	}
	err := s.tx.Rollback().Error
	s.tx = nil
	return err
}
