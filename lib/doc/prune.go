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

package doc

// Prune returns a copy of node without nil values, empty strings, empty maps
// and empty lists, applied bottom up. Map keys named in noise are removed at
// every depth. A node that prunes away entirely becomes nil.
func Prune(node interface{}, noise ...string) interface{} {
	skip := make(map[string]bool, len(noise))
	for _, k := range noise {
		skip[k] = true
	}
	return prune(node, skip)
}

func prune(node interface{}, skip map[string]bool) interface{} {
	switch t := node.(type) {
	case Map:
		m := make(Map, len(t))
		for k, v := range t {
			if skip[k] {
				continue
			}
			if v = prune(v, skip); !empty(v) {
				m[k] = v
			}
		}
		if len(m) == 0 {
			return nil
		}
		return m
	case List:
		l := make(List, 0, len(t))
		for _, v := range t {
			if v = prune(v, skip); !empty(v) {
				l = append(l, v)
			}
		}
		if len(l) == 0 {
			return nil
		}
		return l
	case string:
		if t == "" {
			return nil
		}
	}
	return node
}

func empty(v interface{}) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case Map:
		return len(t) == 0
	case List:
		return len(t) == 0
	}
	return false
}
