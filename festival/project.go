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
	"strings"

	"github.com/filmfest/eventival/lib/doc"
	"github.com/filmfest/eventival/lib/str"
	"github.com/filmfest/eventival/lib/text"
)

// Column describes how one output column is read from a document. The first
// path with text wins.
type Column struct {
	Name  string
	Paths []string
	Conv  func(string) interface{}
}

func col(name string, conv func(string) interface{}, paths ...string) Column {
	return Column{Name: name, Paths: paths, Conv: conv}
}

func plain(s string) interface{} {
	return str.Nil(text.PlainText(s))
}

func paragraphs(s string) interface{} {
	return str.Nil(text.Paragraphs(s))
}

func raw(s string) interface{} {
	return str.Nil(strings.TrimSpace(s))
}

func integer(s string) interface{} {
	return str.Int(s)
}

// columns builds a row from node, with nil for any column whose paths are
// all missing.
func columns(node interface{}, cols []Column) Row {
	row := make(Row, len(cols))
	for _, c := range cols {
		row[c.Name] = c.Conv(doc.First(node, c.Paths...))
	}
	return row
}

func intID(node interface{}) (int, bool) {
	id, ok := integer(doc.First(node, "id", "@id")).(int)
	return id, ok
}

// label is the text of a vocabulary item, either the element text or its
// name child.
func label(node interface{}) string {
	return text.PlainText(doc.First(node, doc.TextKey, "name"))
}

// code is the text of a language or country item.
func code(node interface{}) string {
	return strings.TrimSpace(doc.First(node, "code", "@code", doc.TextKey))
}

// replace swaps the rows owned by owner for rows.
func (r *Run) replace(table string, owner Row, rows []Row) error {
	if err := r.sink.DeleteWhere(table, owner); err != nil {
		return err
	}
	for _, row := range rows {
		for k, v := range owner {
			row[k] = v
		}
		if err := r.sink.InsertIgnore(table, row); err != nil {
			return err
		}
	}
	return nil
}

// codes collects the distinct codes of the items at path, in order.
func codes(node interface{}, path string) []string {
	var result []string
	seen := make(map[string]bool)
	for _, item := range doc.ListAt(node, path) {
		c := code(item)
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		result = append(result, c)
	}
	return result
}

func codeRows(column string, values []string) []Row {
	rows := make([]Row, 0, len(values))
	for _, v := range values {
		rows = append(rows, Row{column: v})
	}
	return rows
}

// vocabulary returns the id of label in table, inserting it first when
// it's new.
func (r *Run) vocabulary(table, label string) (int64, error) {
	id, ok, err := r.sink.Lookup(table, "est", label)
	if err != nil || ok {
		return id, err
	}
	if err := r.sink.InsertIgnore(table, Row{"est": label}); err != nil {
		return 0, err
	}
	id, _, err = r.sink.Lookup(table, "est", label)
	return id, err
}
