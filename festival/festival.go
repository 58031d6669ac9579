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

// Package festival projects the Eventival catalog of a festival into
// relational tables.
package festival

import (
	"github.com/filmfest/eventival/config"
	"github.com/filmfest/eventival/lib/client"
	g "github.com/filmfest/eventival/lib/gorm"
	"github.com/filmfest/eventival/lib/search"
	"github.com/filmfest/eventival/lib/store"
	"github.com/filmfest/eventival/log"
	"gorm.io/gorm"
)

type Festival struct {
	config  *config.Config
	db      *gorm.DB
	fetcher Fetcher
	docs    *store.Documents
	search  *search.Search
}

func NewFestival(config *config.Config) *Festival {
	return &Festival{
		config:  config,
		fetcher: client.NewClient(&config.Client),
	}
}

// WithFetcher replaces the http client.
func (f *Festival) WithFetcher(fetcher Fetcher) *Festival {
	f.fetcher = fetcher
	return f
}

func (f *Festival) Open() (err error) {
	err = f.openDB()
	if err != nil {
		return
	}
	f.docs, err = store.New(f.config.Store)
	if err != nil {
		return
	}
	if f.newSearch().Enabled() {
		err = f.OpenSearch()
	}
	return
}

// OpenSearch opens only the film index, for queries that need no database.
func (f *Festival) OpenSearch() error {
	s := f.newSearch()
	if !s.Enabled() {
		return search.ErrNotOpen
	}
	f.search = s
	return f.search.Open("films")
}

func (f *Festival) Close() {
	if f.search != nil {
		f.search.Close()
	}
	if f.db != nil {
		g.Close(f.db)
	}
}

func (f *Festival) newSearch() *search.Search {
	s := search.NewSearch(f.config.Search)
	s.Keywords = []string{
		FieldCountry,
		FieldGenre,
		FieldKeyword,
		FieldLanguage,
	}
	return s
}

func (f *Festival) openDB() (err error) {
	f.db, err = g.Open(f.config.DB)
	if err != nil {
		return
	}
	err = f.db.AutoMigrate(models()...)
	if err != nil {
		return
	}
	return f.seedRelations()
}

// seedRelations makes sure every configured relation name has a row.
func (f *Festival) seedRelations() error {
	sink := NewSink(f.db)
	for _, name := range f.config.Festival.Relations {
		if err := sink.InsertIgnore("relations", Row{"name": name}); err != nil {
			sink.Rollback()
			return err
		}
	}
	return sink.Commit()
}

func (f *Festival) NewRun() *Run {
	return NewRun(&f.config.Festival, NewSink(f.db), f.fetcher, f.docs, f.search)
}

// Sync runs one full sync and logs the reports.
func (f *Festival) Sync() (*Run, error) {
	run := f.NewRun()
	log.Infow("sync", "run", run.ID, "url", f.config.Festival.BaseURL)
	err := run.Sync()
	for _, report := range run.Reports {
		log.Printf("%s\n", report)
	}
	return run, err
}

// Search returns the ids of the films matching the query.
func (f *Festival) Search(q string, limit int) ([]string, error) {
	if f.search == nil {
		return nil, search.ErrNotOpen
	}
	return f.search.Search(q, limit)
}
