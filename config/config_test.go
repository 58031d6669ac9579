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

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, text string) string {
	dir := t.TempDir()
	err := os.WriteFile(filepath.Join(dir, "eventival.yaml"), []byte(text), 0644)
	if err != nil {
		t.Fatal(err)
	}
	return dir
}

func TestLoadConfig(t *testing.T) {
	dir := writeConfig(t, `
Festival:
  BaseURL: https://eventival.example/poff/23/en/ws/key/
DB:
  Driver: sqlite3
  Source: films.db
Store:
  Dir: raw
`)
	config, err := LoadConfig(dir)
	if err != nil {
		t.Fatalf("LoadConfig %s\n", err)
	}
	if config.Festival.BaseURL != "https://eventival.example/poff/23/en/ws/key" {
		t.Errorf("base url not trimmed: %s\n", config.Festival.BaseURL)
	}
	if len(config.Festival.Subfests) != 2 || config.Festival.Subfests[0].Code != 10 {
		t.Errorf("wrong default subfests %+v\n", config.Festival.Subfests)
	}
	if config.Festival.Staleness != 900*time.Second {
		t.Errorf("wrong staleness %s\n", config.Festival.Staleness)
	}
	if !config.Festival.StalenessCheck {
		t.Errorf("staleness check should default on\n")
	}
	if config.Client.Attempts != 5 || config.Client.Backoff != 1.2 {
		t.Errorf("wrong retry defaults %+v\n", config.Client)
	}
	if config.DB.Source != filepath.Join(dir, "films.db") {
		t.Errorf("sqlite source not relative to config: %s\n", config.DB.Source)
	}
	if config.Store.Dir != filepath.Join(dir, "raw") {
		t.Errorf("store dir not relative to config: %s\n", config.Store.Dir)
	}
	url, err := config.Festival.PublicationsURL.Execute(map[string]interface{}{
		"BaseURL": config.Festival.BaseURL,
		"Subfest": 9,
	})
	if err != nil || !strings.HasSuffix(url, "/films/categories/9/publications-locked.xml") {
		t.Errorf("wrong publications url %s\n", url)
	}
}

func TestInvalidConfig(t *testing.T) {
	dir := writeConfig(t, `
Festival:
  BaseURL: https://eventival.example/ws
DB:
  Driver: oracle
`)
	_, err := LoadConfig(dir)
	if err == nil {
		t.Errorf("expected validation error for driver\n")
	}
}

func TestInvalidURLTemplate(t *testing.T) {
	dir := writeConfig(t, `
Festival:
  BaseURL: https://eventival.example/ws
  FilmURL:
    Text: "{{.BaseURL}/films/{{.ID}}.xml"
`)
	_, err := LoadConfig(dir)
	if err == nil {
		t.Errorf("expected error for malformed film url template\n")
	}

	tmpl := Template{Text: "{{.BaseURL}}/{{.Subfest}}"}
	if _, err := tmpl.Execute(map[string]interface{}{"BaseURL": "x"}); err == nil {
		t.Errorf("expected error for missing template value\n")
	}
}

func TestMissingBaseURL(t *testing.T) {
	t.Setenv("EVENTIVAL_URL", "")
	dir := writeConfig(t, `
DB:
  Driver: sqlite3
`)
	_, err := LoadConfig(dir)
	if err == nil {
		t.Errorf("expected validation error for base url\n")
	}
}

func TestMySQLDSN(t *testing.T) {
	dc := DatabaseConfig{
		Driver:   DriverMySQL,
		Host:     "db.local",
		Port:     "3306",
		User:     "poff",
		Password: "secret",
		Name:     "films",
	}
	dsn := dc.DSN()
	if !strings.HasPrefix(dsn, "poff:secret@tcp(db.local:3306)/films?") {
		t.Errorf("wrong dsn %s\n", dsn)
	}
	if !strings.Contains(dsn, "parseTime=true") {
		t.Errorf("dsn missing parseTime %s\n", dsn)
	}

	dc = DatabaseConfig{Driver: DriverSQLite, Source: "films.db"}
	if dc.DSN() != "films.db" {
		t.Errorf("sqlite source should pass through: %s\n", dc.DSN())
	}
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("FILMS_DB_HOST", "envhost")
	t.Setenv("FILMS_DB_NAME", "envdb")
	dir := writeConfig(t, `
Festival:
  BaseURL: https://eventival.example/ws
`)
	config, err := LoadConfig(dir)
	if err != nil {
		t.Fatalf("LoadConfig %s\n", err)
	}
	if config.DB.Host != "envhost" || config.DB.Name != "envdb" {
		t.Errorf("env not applied %+v\n", config.DB)
	}
}
