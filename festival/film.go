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

	"github.com/filmfest/eventival/lib/doc"
	"github.com/filmfest/eventival/lib/search"
	"github.com/filmfest/eventival/lib/text"
	"github.com/filmfest/eventival/log"
)

type FilmState int

const (
	Stale FilmState = iota
	Fresh
)

func (s FilmState) String() string {
	if s == Fresh {
		return "fresh"
	}
	return "stale"
}

const (
	FieldCountry  = "country"
	FieldDirector = "director"
	FieldGenre    = "genre"
	FieldKeyword  = "keyword"
	FieldLanguage = "language"
	FieldRuntime  = "runtime"
	FieldSynopsis = "synopsis"
	FieldTitle    = "title"
	FieldYear     = "year"
)

// crew type names in publications.en.crew.contact
var crewTypes = map[string]string{
	"dop":          "Op/DoP",
	"editors":      "Mont/Ed",
	"music":        "Muusika/Music",
	"production":   "Tootja/Production",
	"distributors": "Levitaja/Distributor",
}

var filmColumns = []Column{
	col("title_original", plain, "titles.title_original"),
	col("title_est", plain, "titles.title_local"),
	col("title_eng", plain, "titles.title_english"),
	col("title_rus", plain, "titles.title_custom", "titles.title_english"),
	col("runtime", integer, "film_info.runtime.seconds"),
	col("year", integer, "film_info.completion_date.year"),
	col("premiere_type", plain, "film_info.premiere_type"),
	col("trailer_url", raw, "film_info.online_trailer_url"),

	col("synopsis_est", paragraphs, "publications.et.synopsis_long"),
	col("synopsis_eng", paragraphs, "publications.en.synopsis_long"),
	col("synopsis_rus", paragraphs, "publications.ru.synopsis_long", "publications.en.synopsis_long"),
	col("festivals_est", paragraphs, "publications.et.synopsis_short"),
	col("festivals_eng", paragraphs, "publications.en.synopsis_short"),
	col("festivals_rus", paragraphs, "publications.ru.synopsis_short", "publications.ru.festivals",
		"publications.en.synopsis_short"),
	col("directors_bio_est", paragraphs, "publications.et.directors_bio"),
	col("directors_bio_eng", paragraphs, "publications.en.directors_bio"),
	col("directors_bio_rus", paragraphs, "publications.ru.directors_bio", "publications.en.directors_bio"),
	col("directors_filmography_est", paragraphs, "publications.et.directors_filmography"),
	col("directors_filmography_eng", paragraphs, "publications.en.directors_filmography"),
	col("directors_filmography_rus", paragraphs, "publications.ru.directors_filmography",
		"publications.en.directors_filmography"),

	col("directors", plain, "publications.en.directors"),
	col("producers", plain, "publications.en.producers"),
	col("writers", plain, "publications.en.writers"),
	col("cast", plain, "publications.en.cast"),
}

// filmState tells whether the stored detail of film id is recent enough to
// skip fetching it again.
func (r *Run) filmState(id int) (FilmState, error) {
	if !r.config.StalenessCheck {
		return Stale, nil
	}
	updated, ok, err := r.sink.Updated("films", id)
	if err != nil || !ok {
		return Stale, err
	}
	if r.now().Sub(updated) < r.config.Staleness {
		return Fresh, nil
	}
	return Stale, nil
}

// filmDetail fetches and projects the detail document of film id unless
// it's fresh. A detail that can't be fetched is counted as failed and the
// film keeps its stub.
func (r *Run) filmDetail(report *Report, id int) error {
	state, err := r.filmState(id)
	if err != nil {
		return err
	}
	if state == Fresh {
		report.Fresh++
		log.Debugf("film %d is fresh\n", id)
		return nil
	}

	url, err := r.url(&r.config.FilmURL, id)
	if err != nil {
		return err
	}
	node, err := r.fetch(url, "film")
	if err != nil {
		r.failed(report, id, err)
		return nil
	}
	film := doc.Get(node, "film")
	if film == nil {
		r.failed(report, id, fmt.Errorf("%w: empty film", doc.ErrMalformedDocument))
		return nil
	}
	if sid := doc.Text(film, "ids.system_id"); sid != "" && sid != strconv.Itoa(id) {
		log.Warnf("film %d detail has system id %s\n", id, sid)
	}
	r.store(TaskFilms, strconv.Itoa(id), film)

	fields, err := r.projectFilm(report, id, film)
	if err != nil {
		return err
	}
	if err = r.sink.Commit(); err != nil {
		return err
	}
	report.Fetched++

	if r.index != nil {
		err = r.index.Index(search.IndexMap{strconv.Itoa(id): fields})
		if err != nil {
			log.Warnf("index film %d: %s\n", id, err)
		}
	}
	return nil
}

// projectFilm writes the film row and replaces all its child sets.
func (r *Run) projectFilm(report *Report, id int, film interface{}) (search.FieldMap, error) {
	fields := make(search.FieldMap)

	row := columns(film, filmColumns)
	for column, name := range crewTypes {
		row[column] = crew(film, name)
	}
	row["id"] = id
	row["updated"] = r.now()
	if err := r.sink.Upsert("films", []string{"id"}, row); err != nil {
		return fields, err
	}

	for _, c := range []string{"title_eng", "title_original", "title_est"} {
		search.AddField(fields, FieldTitle, row[c])
	}
	search.AddField(fields, FieldDirector, row["directors"])
	search.AddField(fields, FieldSynopsis, text.PlainText(doc.First(film, "publications.en.synopsis_long")))
	search.AddField(fields, FieldRuntime, row["runtime"])
	search.AddField(fields, FieldYear, row["year"])

	owner := Row{"film_id": id}

	// countries keep their source order
	if !doc.Has(film, "film_info.countries") {
		r.missing(report, id, "countries")
	}
	var countries []Row
	for i, c := range codes(film, "film_info.countries.country") {
		countries = append(countries, Row{"country_code": c, "ordinal": i + 1})
		search.AddField(fields, FieldCountry, c)
	}
	if err := r.replace("film_countries", owner, countries); err != nil {
		return fields, err
	}

	languages := codes(film, "film_info.languages.language")
	for _, c := range languages {
		search.AddField(fields, FieldLanguage, c)
	}
	if err := r.replace("film_languages", owner, codeRows("language_code", languages)); err != nil {
		return fields, err
	}

	subtitles := codes(film, "film_info.subtitle_languages.language")
	if err := r.replace("film_subtitles", owner, codeRows("language_code", subtitles)); err != nil {
		return fields, err
	}

	genres, err := r.labels(film, "film_info.types.type", "c_genre", "genre_id", fields, FieldGenre)
	if err != nil {
		return fields, err
	}
	if err := r.replace("film_genres", owner, genres); err != nil {
		return fields, err
	}

	keywords, err := r.labels(film, "film_info.keywords.keyword", "c_keyword", "keyword_id", fields, FieldKeyword)
	if err != nil {
		return fields, err
	}
	if err := r.replace("film_keywords", owner, keywords); err != nil {
		return fields, err
	}

	var cassettes []Row
	for _, c := range doc.ListAt(film, "film_info.cassettes.cassette") {
		if cid := integer(doc.First(c, "@id", "id", doc.TextKey)); cid != nil && cid != id {
			cassettes = append(cassettes, Row{"cassette_id": cid})
		}
	}
	if err := r.replace("film_cassettes", owner, cassettes); err != nil {
		return fields, err
	}

	return fields, nil
}

// labels resolves the vocabulary ids of the labels at path, matching labels
// verbatim.
func (r *Run) labels(film interface{}, path, table, column string,
	fields search.FieldMap, field string) ([]Row, error) {
	var rows []Row
	seen := make(map[int64]bool)
	for _, item := range doc.ListAt(film, path) {
		l := label(item)
		if l == "" {
			continue
		}
		vid, err := r.vocabulary(table, l)
		if err != nil {
			return nil, err
		}
		if seen[vid] {
			continue
		}
		seen[vid] = true
		rows = append(rows, Row{column: vid})
		search.AddField(fields, field, l)
	}
	return rows, nil
}

// crew joins the text of all english crew contacts of the given type.
func crew(film interface{}, name string) interface{} {
	var names []string
	for _, c := range doc.ListAt(film, "publications.en.crew.contact") {
		if doc.Text(c, "type.name") != name {
			continue
		}
		if t := text.PlainText(doc.Text(c, "text")); t != "" {
			names = append(names, t)
		}
	}
	if len(names) == 0 {
		return nil
	}
	return strings.Join(names, ", ")
}
