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
	"github.com/filmfest/eventival/lib/date"
	"github.com/filmfest/eventival/lib/doc"
	"github.com/filmfest/eventival/lib/str"
	"github.com/filmfest/eventival/lib/text"
)

var screeningColumns = []Column{
	col("id", integer, "id"),
	col("screening_code", raw, "code"),
	col("film_id", integer, "film.id"),
	col("cinema_hall_id", integer, "cinema_hall_id"),
	col("venue_id", integer, "venue_id"),
	col("screening_duration_minutes", integer, "duration_screening_only_minutes"),
	col("presentation_duration_minutes", integer, "presentation.duration"),
	col("qa_duration_minutes", integer, "qa.duration"),
	col("ticketing_url", raw, "ticketing_url"),
	col("screening_info_est", paragraphs, "additional_info.et"),
	col("screening_info_eng", paragraphs, "additional_info.en"),
	col("screening_info_rus", paragraphs, "additional_info.ru", "additional_info.en"),
}

type personGroup struct {
	part, role, path string
}

var personGroups = []personGroup{
	{"presentation", "presenter", "presentation.presenters"},
	{"presentation", "guest", "presentation.guests"},
	{"qa", "presenter", "qa.presenters"},
	{"qa", "guest", "qa.guests"},
}

func projectScreenings(r *Run, items interface{}) (Report, error) {
	report := Report{Task: TaskScreenings}
	err := r.each(&report, items, func(id int, item interface{}) error {
		return r.projectScreening(&report, id, item)
	})
	return report, err
}

func (r *Run) projectScreening(report *Report, id int, item interface{}) error {
	row := columns(item, screeningColumns)
	day, clock := date.SplitStart(doc.Text(item, "start"))
	row["start_date"] = str.Nil(day)
	row["start_time"] = str.Nil(clock)
	if row["film_id"] == nil {
		r.missing(report, id, "film")
	}

	kind := text.PlainText(doc.Text(item, "type_of_screening"))
	if kind == "" {
		kind = r.config.ScreeningType
	}
	row["type_of_screening"] = kind
	err := r.sink.InsertIgnore("c_screening_type", Row{"code": kind, "est": kind})
	if err != nil {
		return err
	}
	if err = r.sink.Upsert("screenings", []string{"id"}, row); err != nil {
		return err
	}

	owner := Row{"screening_id": id}
	languages := codes(item, "languages.language")
	if err = r.replace("screening_languages", owner, codeRows("language_code", languages)); err != nil {
		return err
	}

	subtitles := codes(item, "subtitles.language")
	if len(subtitles) == 0 && row["film_id"] != nil {
		subtitles, err = r.sink.Values("film_subtitles", "language_code", Row{"film_id": row["film_id"]})
		if err != nil {
			return err
		}
	}
	if err = r.replace("screening_subtitles", owner, codeRows("language_code", subtitles)); err != nil {
		return err
	}

	return r.persons(report, id, item)
}

// persons replaces the presenters and guests of screening id.
func (r *Run) persons(report *Report, id int, item interface{}) error {
	owner := Row{"screening_id": id}
	if err := r.sink.DeleteWhere("screening_persons", owner); err != nil {
		return err
	}
	for _, g := range personGroups {
		group := doc.Get(item, g.path)
		if group == nil {
			continue
		}
		for _, p := range doc.ListAt(group, "person") {
			pid := integer(doc.First(p, "@id", "id"))
			if pid == nil {
				r.missing(report, id, "person id")
				continue
			}
			err := r.sink.Upsert("persons", []string{"id"}, Row{
				"id":   pid,
				"name": plain(doc.Text(p, "name")),
			})
			if err != nil {
				return err
			}
			relations := doc.ListAt(p, "relations.relation")
			if len(relations) == 0 {
				relations = doc.List{""}
			}
			for _, rel := range relations {
				name := text.PlainText(doc.Text(rel, ""))
				rid, ok, err := r.sink.Lookup("relations", "name", name)
				if err != nil {
					return err
				}
				if !ok {
					report.Misses++
					continue
				}
				err = r.sink.InsertIgnore("screening_persons", Row{
					"screening_id": id,
					"person_id":    pid,
					"relation_id":  rid,
					"part":         g.part,
					"role":         g.role,
				})
				if err != nil {
					return err
				}
			}
		}
	}
	return nil
}
