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
	"github.com/filmfest/eventival/lib/doc"
)

var publicationColumns = []Column{
	col("id", integer, "id"),
	col("title_eng", plain, "title_english"),
	col("title_original", plain, "title_original"),
}

func projectPublications(r *Run, items interface{}) (Report, error) {
	report := Report{Task: TaskPublications}
	err := r.each(&report, items, func(id int, item interface{}) error {
		err := r.sink.Upsert("films", []string{"id"}, columns(item, publicationColumns))
		if err != nil {
			return err
		}
		if err = r.categories(&report, id, item); err != nil {
			return err
		}
		if err = r.sections(&report, id, item); err != nil {
			return err
		}
		// the stub and its categories are kept even when the detail fails
		if err = r.sink.Commit(); err != nil {
			return err
		}
		return r.filmDetail(&report, id)
	})
	return report, err
}

// categories replaces the festival categories of film id.
func (r *Run) categories(report *Report, id int, item interface{}) error {
	path := "eventival_categorization.categories.category"
	if !doc.Has(item, path) {
		r.missing(report, id, "categories")
		return nil
	}
	var rows []Row
	for _, c := range doc.ListAt(item, path) {
		cid := integer(doc.Text(c, "@id"))
		if cid == nil {
			r.missing(report, id, "category id")
			continue
		}
		err := r.sink.Upsert("c_festival", []string{"id"}, Row{
			"id":  cid,
			"est": plain(doc.Text(c, doc.TextKey)),
		})
		if err != nil {
			return err
		}
		rows = append(rows, Row{"festival_id": cid})
	}
	return r.replace("film_festivals", Row{"film_id": id}, rows)
}

// sections replaces the program memberships of film id.
func (r *Run) sections(report *Report, id int, item interface{}) error {
	path := "eventival_categorization.sections.section"
	if !doc.Has(item, path) {
		r.missing(report, id, "sections")
		return nil
	}
	var rows []Row
	for _, s := range doc.ListAt(item, path) {
		sid := integer(doc.First(s, "id", "@id"))
		if sid == nil {
			r.missing(report, id, "section id")
			continue
		}
		err := r.sink.Upsert("c_program", []string{"id"}, Row{
			"id":  sid,
			"est": plain(doc.Text(s, "name")),
		})
		if err != nil {
			return err
		}
		rows = append(rows, Row{"program_id": sid})
	}
	return r.replace("film_programs", Row{"film_id": id}, rows)
}
