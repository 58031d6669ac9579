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

// Package text reduces the HTML fragments found in Eventival text fields to
// plain text or to a normalized sequence of <p> paragraphs.
package text

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"golang.org/x/text/unicode/norm"
)

var (
	breakRegexp = regexp.MustCompile(`(?i)<\s*/\s*p\s*>|<\s*/?\s*br\b[^>]*>`)
	spaceRegexp = regexp.MustCompile(`\s+`)
	escaper     = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
)

// PlainText strips markup from s, decodes entities, applies NFC and
// collapses whitespace.
func PlainText(s string) string {
	if strings.TrimSpace(s) == "" {
		return ""
	}
	if strings.ContainsAny(s, "<&") {
		s = textContent(s)
	}
	s = norm.NFC.String(s)
	s = spaceRegexp.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

func textContent(s string) string {
	nodes, err := html.ParseFragment(strings.NewReader(s), &html.Node{
		Type:     html.ElementNode,
		Data:     "body",
		DataAtom: atom.Body,
	})
	if err != nil {
		return s
	}
	var b strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			b.WriteString(n.Data)
		case html.ElementNode:
			if n.Data == "script" || n.Data == "style" {
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if n.Type == html.ElementNode && blockElement[n.Data] {
			b.WriteString(" ")
		}
	}
	for _, n := range nodes {
		walk(n)
	}
	return b.String()
}

var blockElement = map[string]bool{
	"p": true, "div": true, "br": true, "li": true,
	"h1": true, "h2": true, "h3": true, "h4": true,
}

// Paragraphs splits s on paragraph ends and line breaks and returns the
// non-empty parts as <p> elements, one per line. Straight double quotes are
// turned into typographic ones. Paragraphs(Paragraphs(s)) == Paragraphs(s).
func Paragraphs(s string) string {
	var out []string
	for _, part := range breakRegexp.Split(s, -1) {
		p := PlainText(part)
		if p == "" {
			continue
		}
		p = Quotes(p)
		out = append(out, "<p>"+escaper.Replace(p)+"</p>")
	}
	return strings.Join(out, "\n")
}

// Quotes replaces straight double quotes with “ when opening a word and ”
// otherwise.
func Quotes(s string) string {
	if !strings.Contains(s, `"`) {
		return s
	}
	var b strings.Builder
	prev := ' '
	for _, r := range s {
		if r == '"' {
			if unicode.IsSpace(prev) || strings.ContainsRune("([{„“«-–", prev) {
				r = '“'
			} else {
				r = '”'
			}
		}
		b.WriteRune(r)
		prev = r
	}
	return b.String()
}
