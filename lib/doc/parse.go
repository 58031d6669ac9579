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

import (
	"errors"
	"fmt"
	"strings"

	"github.com/beevik/etree"
)

var ErrMalformedDocument = errors.New("malformed document")

// Parse reads XML into a node tree rooted at a map holding the document
// element, e.g. <venues><venue/></venues> becomes {"venues": {"venue": nil}}.
func Parse(data []byte) (interface{}, error) {
	d := etree.NewDocument()
	d.ReadSettings.Permissive = false
	if err := d.ReadFromBytes(data); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrMalformedDocument, err)
	}
	if n := len(d.ChildElements()); n != 1 {
		return nil, fmt.Errorf("%w: %d root elements", ErrMalformedDocument, n)
	}
	for _, t := range d.Child {
		if cd, ok := t.(*etree.CharData); ok && strings.TrimSpace(cd.Data) != "" {
			return nil, fmt.Errorf("%w: text outside the root element", ErrMalformedDocument)
		}
	}
	root := d.Root()
	return Map{root.FullTag(): element(root)}, nil
}

// Normalize parses data and prunes the result, dropping noise keys. The
// document element must be named root unless root is empty.
func Normalize(data []byte, root string, noise ...string) (interface{}, error) {
	node, err := Parse(data)
	if err != nil {
		return nil, err
	}
	if root != "" {
		if _, ok := node.(Map)[root]; !ok {
			return nil, fmt.Errorf("%w: expected %s document", ErrMalformedDocument, root)
		}
	}
	return Prune(node, noise...), nil
}

func element(e *etree.Element) interface{} {
	children := e.ChildElements()
	text := strings.TrimSpace(textOf(e))

	if len(e.Attr) == 0 && len(children) == 0 {
		if text == "" {
			return nil
		}
		return text
	}

	m := make(Map)
	for _, a := range e.Attr {
		m[AttrPrefix+a.FullKey()] = a.Value
	}
	for _, c := range children {
		key := c.FullTag()
		v := element(c)
		if prev, ok := m[key]; ok {
			if l, ok := prev.(List); ok {
				m[key] = append(l, v)
			} else {
				m[key] = List{prev, v}
			}
		} else {
			m[key] = v
		}
	}
	if text != "" {
		m[TextKey] = text
	}
	return m
}

// textOf joins the character data directly under e, including CDATA.
func textOf(e *etree.Element) string {
	var b strings.Builder
	for _, t := range e.Child {
		if cd, ok := t.(*etree.CharData); ok {
			b.WriteString(cd.Data)
		}
	}
	return b.String()
}
