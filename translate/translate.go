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

// Package translate looks up labels in per language yaml trees, stored in
// files named translate.<lang>.yaml.
package translate

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

var ErrNotScalar = errors.New("translation is not a scalar")

// Node is either a leaf holding Text or an inner node with Children.
type Node struct {
	Text     string
	Children map[string]*Node
}

func (n *Node) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		n.Text = value.Value
	case yaml.MappingNode:
		n.Children = make(map[string]*Node, len(value.Content)/2)
		for i := 0; i+1 < len(value.Content); i += 2 {
			var child Node
			if err := value.Content[i+1].Decode(&child); err != nil {
				return err
			}
			n.Children[value.Content[i].Value] = &child
		}
	case yaml.AliasNode:
		return n.UnmarshalYAML(value.Alias)
	default:
		return fmt.Errorf("%w: line %d", ErrNotScalar, value.Line)
	}
	return nil
}

func (n *Node) leaf() bool {
	return n.Children == nil
}

type Table struct {
	langs map[string]*Node
}

func NewTable() *Table {
	return &Table{langs: make(map[string]*Node)}
}

// Load reads translate.<lang>.yaml from dir for each language.
func Load(dir string, langs []string) (*Table, error) {
	t := NewTable()
	for _, lang := range langs {
		path := filepath.Join(dir, fmt.Sprintf("translate.%s.yaml", lang))
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := t.Add(lang, data); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}
	return t, nil
}

// Add parses a yaml document as the tree for lang.
func (t *Table) Add(lang string, data []byte) error {
	var root Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return err
	}
	t.langs[lang] = &root
	return nil
}

// Lookup follows path from the root of lang and returns the text found at a
// leaf.
func (t *Table) Lookup(lang string, path ...string) (string, bool) {
	n, ok := t.langs[lang]
	if !ok {
		return "", false
	}
	for _, k := range path {
		if n.leaf() {
			return "", false
		}
		n, ok = n.Children[k]
		if !ok {
			return "", false
		}
	}
	if !n.leaf() {
		return "", false
	}
	return n.Text, true
}

// String looks up a dotted key like "venue.city", giving "[key]" when
// missing.
func (t *Table) String(key, lang string) string {
	if s, ok := t.Lookup(lang, strings.Split(key, ".")...); ok {
		return s
	}
	return "[" + key + "]"
}
