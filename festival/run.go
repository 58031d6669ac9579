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
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/filmfest/eventival/config"
	"github.com/filmfest/eventival/lib/doc"
	"github.com/filmfest/eventival/lib/search"
	"github.com/filmfest/eventival/lib/store"
	"github.com/filmfest/eventival/log"
	"github.com/google/uuid"
)

type Task string

const (
	TaskVenues       Task = "venues"
	TaskPublications Task = "publications"
	TaskScreenings   Task = "screenings"

	// film detail documents, stored but not a task of their own
	TaskFilms Task = "films"
)

// Tasks in the order they run for each subfestival.
var Tasks = []Task{TaskVenues, TaskPublications, TaskScreenings}

// Projector writes the rows for the items of one task document.
type Projector func(*Run, interface{}) (Report, error)

var projectors = map[Task]Projector{
	TaskVenues:       projectVenues,
	TaskPublications: projectPublications,
	TaskScreenings:   projectScreenings,
}

var rootPaths = map[Task]string{
	TaskVenues:       "venues.venue",
	TaskPublications: "films.item",
	TaskScreenings:   "screenings.screening",
}

// Fetcher gets a document by url.
type Fetcher interface {
	Get(url string) ([]byte, error)
}

type Report struct {
	Task      Task
	Subfest   int
	Processed int
	Skipped   int
	Missing   int
	Misses    int
	Fetched   int
	Fresh     int
	Failed    int
	Err       error
}

func (r Report) String() string {
	return fmt.Sprintf("%s/%d: %d processed, %d skipped, %d missing, %d misses, %d fetched, %d fresh, %d failed",
		r.Task, r.Subfest, r.Processed, r.Skipped, r.Missing, r.Misses, r.Fetched, r.Fresh, r.Failed)
}

// Run carries everything a projector needs for one sync.
type Run struct {
	ID      string
	Subfest config.Subfest
	Reports []Report

	config  *config.FestivalConfig
	sink    Sink
	fetcher Fetcher
	docs    *store.Documents
	index   *search.Search
	now     func() time.Time
}

func NewRun(config *config.FestivalConfig, sink Sink, fetcher Fetcher,
	docs *store.Documents, index *search.Search) *Run {
	return &Run{
		ID:      uuid.New().String(),
		config:  config,
		sink:    sink,
		fetcher: fetcher,
		docs:    docs,
		index:   index,
		now:     time.Now,
	}
}

type urlVars struct {
	BaseURL string
	Subfest int
	ID      interface{}
}

func (r *Run) url(t *config.Template, id interface{}) (string, error) {
	return t.Execute(urlVars{
		BaseURL: r.config.BaseURL,
		Subfest: r.Subfest.Code,
		ID:      id,
	})
}

func (r *Run) taskURL(task Task) (string, error) {
	switch task {
	case TaskVenues:
		return r.url(&r.config.VenuesURL, nil)
	case TaskPublications:
		return r.url(&r.config.PublicationsURL, nil)
	case TaskScreenings:
		return r.url(&r.config.ScreeningsURL, nil)
	}
	return "", fmt.Errorf("no url for task %q", task)
}

// fetch gets and normalizes the document at url, which must have the
// document element root.
func (r *Run) fetch(url, root string) (interface{}, error) {
	data, err := r.fetcher.Get(url)
	if err != nil {
		return nil, err
	}
	return doc.Normalize(data, root, r.config.NoiseKeys...)
}

func (r *Run) store(task Task, id string, node interface{}) {
	if r.docs == nil {
		return
	}
	if _, err := r.docs.Put(string(task), id, node); err != nil {
		log.Warnf("store %s %s: %s\n", task, id, err)
	}
}

// Task fetches, stores and projects one task for the current subfestival.
func (r *Run) Task(task Task) (report Report, err error) {
	project, ok := projectors[task]
	if !ok {
		return report, fmt.Errorf("unknown task %q", task)
	}
	defer func() {
		report.Task = task
		report.Subfest = r.Subfest.Code
		report.Err = err
		r.Reports = append(r.Reports, report)
	}()

	url, err := r.taskURL(task)
	if err != nil {
		return report, err
	}
	log.Infow("fetch", "run", r.ID, "task", task, "subfest", r.Subfest.Code, "url", url)
	path := rootPaths[task]
	node, err := r.fetch(url, strings.SplitN(path, ".", 2)[0])
	if err != nil {
		return report, err
	}
	items := doc.Get(node, path)
	r.store(task, strconv.Itoa(r.Subfest.Code), items)

	report, err = project(r, items)
	if err != nil {
		r.sink.Rollback()
	}
	return report, err
}

// Sync runs all tasks for all configured subfestivals. A failed task is
// logged and the remaining tasks still run; the returned error reports the
// number of failed tasks.
func (r *Run) Sync() error {
	failed := 0
	for _, sf := range r.config.Subfests {
		r.Subfest = sf
		log.Printf("subfest %d %s\n", sf.Code, sf.Name)
		for _, task := range Tasks {
			report, err := r.Task(task)
			if err != nil {
				failed++
				log.Warnw("task failed", "run", r.ID, "task", task,
					"subfest", sf.Code, "error", err)
				continue
			}
			log.Infow("task done", "run", r.ID, "report", report.String())
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d tasks failed", failed, len(r.config.Subfests)*len(Tasks))
	}
	return nil
}

// each projects the items one at a time, committing after each item. Items
// without an id are skipped.
func (r *Run) each(report *Report, items interface{},
	fn func(id int, item interface{}) error) error {
	for _, item := range doc.AsList(items) {
		id, ok := intID(item)
		if !ok {
			report.Skipped++
			log.Debugf("%s: item without id\n", report.Task)
			continue
		}
		if err := fn(id, item); err != nil {
			r.sink.Rollback()
			return fmt.Errorf("%s %d: %w", report.Task, id, err)
		}
		if err := r.sink.Commit(); err != nil {
			return err
		}
		report.Processed++
	}
	return nil
}

func (r *Run) missing(report *Report, id int, what string) {
	report.Missing++
	log.Debugf("%s %d: no %s\n", report.Task, id, what)
}

func (r *Run) failed(report *Report, id int, err error) {
	report.Failed++
	log.Warnw("item failed", "run", r.ID, "task", report.Task, "id", id, "error", err)
}
