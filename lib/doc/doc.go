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

// Package doc turns Eventival XML into generic trees of maps, lists and
// strings and provides tolerant lookups over them.
//
// A node is one of Map, List, string or nil. Attributes are stored under
// keys prefixed with "@" and the text of an element that also has
// attributes or children is stored under "#text".
package doc

import (
	"strings"
)

type Map = map[string]interface{}
type List = []interface{}

const (
	AttrPrefix = "@"
	TextKey    = "#text"
)

// AsList returns v as a list. Lists are returned as is, nil becomes an empty
// list and anything else is wrapped in a one element list.
func AsList(v interface{}) List {
	switch t := v.(type) {
	case nil:
		return List{}
	case List:
		return t
	}
	return List{v}
}

// Get follows a dotted path through nested maps. Any missing segment, or a
// segment applied to something other than a map, yields nil.
func Get(node interface{}, path string) interface{} {
	if path == "" {
		return node
	}
	for _, key := range strings.Split(path, ".") {
		m, ok := node.(Map)
		if !ok {
			if s, ok := node.(string); ok && key == TextKey {
				// text-only elements collapse to their string
				node = s
				continue
			}
			return nil
		}
		node, ok = m[key]
		if !ok {
			return nil
		}
	}
	return node
}

// Has reports whether path resolves to a non-nil node.
func Has(node interface{}, path string) bool {
	return Get(node, path) != nil
}

// Text returns the text at path: a string node itself, or the #text of a
// map node. Missing or non-text nodes give "".
func Text(node interface{}, path string) string {
	switch t := Get(node, path).(type) {
	case string:
		return t
	case Map:
		if s, ok := t[TextKey].(string); ok {
			return s
		}
	}
	return ""
}

// First returns the text of the first path that has one.
func First(node interface{}, paths ...string) string {
	for _, p := range paths {
		if s := Text(node, p); s != "" {
			return s
		}
	}
	return ""
}

// ListAt is shorthand for AsList(Get(node, path)).
func ListAt(node interface{}, path string) List {
	return AsList(Get(node, path))
}
