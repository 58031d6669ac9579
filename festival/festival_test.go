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
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/filmfest/eventival/config"
	"github.com/filmfest/eventival/lib/doc"
	"github.com/filmfest/eventival/lib/search"
)

const venuesXML = `<?xml version="1.0" encoding="UTF-8"?>
<venues>
  <venue>
    <id>1</id>
    <name>Coca-Cola Plaza</name>
    <company>Forum Cinemas</company>
    <company_id>77</company_id>
    <company_contact><address><city>Tallinn</city></address></company_contact>
  </venue>
  <venue>
    <id>2</id>
    <name>Artis</name>
  </venue>
</venues>`

const publicationsXML = `<?xml version="1.0" encoding="UTF-8"?>
<films>
  <item>
    <id>100</id>
    <title_english>Spring</title_english>
    <title_original>Kevade</title_original>
    <eventival_categorization>
      <categories><category id="5">Official Selection</category></categories>
      <sections>
        <section><id>31</id><name>Estonian Classics</name></section>
        <section><id>32</id><name>Restored</name></section>
      </sections>
    </eventival_categorization>
  </item>
  <item>
    <id>101</id>
    <title_english>Autumn</title_english>
    <title_original>Sügis</title_original>
  </item>
  <item>
    <title_english>No id</title_english>
  </item>
</films>`

const film100XML = `<?xml version="1.0" encoding="UTF-8"?>
<film>
  <ids><system_id type="eventival">100</system_id></ids>
  <titles>
    <title_original>Kevade</title_original>
    <title_local lang="et">Kevade</title_local>
    <title_english>Spring</title_english>
    <title_custom lang="ru">Весна</title_custom>
  </titles>
  <film_info>
    <runtime><seconds>5400</seconds></runtime>
    <completion_date><year>1969</year></completion_date>
    <premiere_type id="2">International premiere</premiere_type>
    <online_trailer_url>https://example.com/kevade</online_trailer_url>
    <countries>
      <country><code>EE</code></country>
      <country><code>US</code></country>
    </countries>
    <languages><language><code>et</code></language></languages>
    <subtitle_languages>
      <language><code>en</code></language>
      <language><code>ru</code></language>
    </subtitle_languages>
    <types><type>Drama</type><type>Comedy</type></types>
    <keywords><keyword>village</keyword></keywords>
    <cassettes><cassette id="101"/></cassettes>
  </film_info>
  <publications>
    <et>
      <synopsis_long>&lt;p&gt;Külaelu "Paunvere" moodi&lt;/p&gt;</synopsis_long>
      <directors_filmography>Filmid</directors_filmography>
    </et>
    <en>
      <synopsis_long>Village life.&lt;br&gt;Second line.</synopsis_long>
      <synopsis_short>Best film</synopsis_short>
      <directors>&lt;b&gt;Arvo  Kruusement&lt;/b&gt;</directors>
      <crew>
        <contact><type><name>Op/DoP</name></type><text>Harry Rehe</text></contact>
        <contact><type><name>Mont/Ed</name></type><text>Virve Laev</text></contact>
      </crew>
    </en>
  </publications>
</film>`

const film101XML = `<?xml version="1.0" encoding="UTF-8"?>
<film>
  <ids><system_id>101</system_id></ids>
  <titles>
    <title_original>Sügis</title_original>
    <title_english>Autumn</title_english>
  </titles>
  <film_info>
    <countries><country><code>SE</code></country></countries>
    <types><type>Drama</type></types>
  </film_info>
  <publications>
    <en><synopsis_long>Autumn text</synopsis_long></en>
  </publications>
</film>`

const screeningsXML = `<?xml version="1.0" encoding="UTF-8"?>
<screenings>
  <screening>
    <id>500</id>
    <code>PO1</code>
    <film><id>100</id></film>
    <cinema_hall_id>3</cinema_hall_id>
    <venue_id>1</venue_id>
    <start>2023-11-10 19:30:00</start>
    <duration_screening_only_minutes>90</duration_screening_only_minutes>
    <presentation>
      <duration>10</duration>
      <presenters>
        <person id="900">
          <name>Arvo Kruusement</name>
          <relations><relation>Director</relation></relations>
        </person>
      </presenters>
      <guests>
        <person id="901"><name>Guest One</name></person>
        <person id="902">
          <name>Guest Two</name>
          <relations><relation>Stuntman</relation></relations>
        </person>
      </guests>
    </presentation>
    <qa><duration>20</duration></qa>
    <languages><language><code>et</code></language></languages>
  </screening>
  <screening>
    <id>501</id>
    <code>PO2</code>
    <film><id>101</id></film>
    <venue_id>2</venue_id>
    <start>2023-11-11 12:00:00</start>
    <type_of_screening>premiere</type_of_screening>
    <subtitles><language><code>et</code></language></subtitles>
    <qa>
      <presenters>
        <person id="900">
          <name>A. Kruusement</name>
          <relations><relation>Director</relation><relation>Moderator</relation></relations>
        </person>
      </presenters>
    </qa>
  </screening>
</screenings>`

type stub struct {
	sync.Mutex
	docs map[string]string
	hits map[string]int
}

func newStub() *stub {
	return &stub{
		docs: map[string]string{
			"/venues.xml": venuesXML,
			"/films/categories/10/publications-locked.xml": publicationsXML,
			"/films/categories/10/screenings.xml":          screeningsXML,
			"/films/100.xml":                               film100XML,
			"/films/101.xml":                               film101XML,
		},
		hits: make(map[string]int),
	}
}

func (s *stub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Lock()
	defer s.Unlock()
	s.hits[r.URL.Path]++
	d, ok := s.docs[r.URL.Path]
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/xml")
	w.Write([]byte(d))
}

func (s *stub) set(path, body string) {
	s.Lock()
	defer s.Unlock()
	s.docs[path] = body
}

func (s *stub) hit(path string) int {
	s.Lock()
	defer s.Unlock()
	return s.hits[path]
}

func testFestival(t *testing.T) (*Festival, *stub) {
	s := newStub()
	srv := httptest.NewServer(s)
	t.Cleanup(srv.Close)

	dir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.DB.Driver = config.DriverSQLite
	cfg.DB.Source = filepath.Join(dir, "films.db")
	cfg.Store.Backend = config.StoreDisk
	cfg.Store.Dir = filepath.Join(dir, "data")
	cfg.Search.BleveDir = filepath.Join(dir, "bleve")
	cfg.Client.Attempts = 1
	cfg.Festival.BaseURL = srv.URL
	cfg.Festival.Subfests = []config.Subfest{{Code: 10, Name: "PÖFF"}}

	f := NewFestival(cfg)
	if err := f.Open(); err != nil {
		t.Fatalf("Open %s\n", err)
	}
	t.Cleanup(f.Close)
	return f, s
}

func count(f *Festival, table string, query string, args ...interface{}) int64 {
	var n int64
	f.db.Table(table).Where(query, args...).Count(&n)
	return n
}

func TestSync(t *testing.T) {
	f, s := testFestival(t)
	run, err := f.Sync()
	if err != nil {
		t.Fatalf("Sync %s\n", err)
	}
	if len(run.Reports) != 3 {
		t.Fatalf("expected 3 reports, got %d\n", len(run.Reports))
	}

	// venues
	var venues []Venue
	f.db.Order("id").Find(&venues)
	if len(venues) != 2 {
		t.Fatalf("expected 2 venues, got %d\n", len(venues))
	}
	if venues[0].City == nil || *venues[0].City != "Tallinn" {
		t.Errorf("wrong city %v\n", venues[0].City)
	}
	if venues[0].CompanyID == nil || *venues[0].CompanyID != 77 {
		t.Errorf("wrong company id %v\n", venues[0].CompanyID)
	}
	if venues[1].City != nil {
		t.Errorf("missing city should be null\n")
	}

	// publications
	pubs := run.Reports[1]
	if pubs.Processed != 2 || pubs.Skipped != 1 || pubs.Fetched != 2 {
		t.Errorf("wrong publications report %s\n", pubs)
	}
	var film Film
	if err := f.db.First(&film, 100).Error; err != nil {
		t.Fatal(err)
	}
	if film.Updated == nil {
		t.Errorf("updated not set\n")
	}
	if *film.TitleEng != "Spring" || *film.TitleRus != "Весна" || *film.Runtime != 5400 || *film.Year != 1969 {
		t.Errorf("wrong film %+v\n", film)
	}
	if *film.SynopsisEst != "<p>Külaelu “Paunvere” moodi</p>" {
		t.Errorf("wrong synopsis %q\n", *film.SynopsisEst)
	}
	if *film.SynopsisEng != "<p>Village life.</p>\n<p>Second line.</p>" {
		t.Errorf("wrong synopsis %q\n", *film.SynopsisEng)
	}
	if *film.SynopsisRus != *film.SynopsisEng {
		t.Errorf("russian synopsis should fall back to english\n")
	}
	if *film.DirectorsFilmographyEst != "<p>Filmid</p>" {
		t.Errorf("wrong filmography %q\n", *film.DirectorsFilmographyEst)
	}
	if *film.Directors != "Arvo Kruusement" {
		t.Errorf("wrong directors %q\n", *film.Directors)
	}
	if film.Dop == nil || *film.Dop != "Harry Rehe" || *film.Editors != "Virve Laev" {
		t.Errorf("wrong crew %v %v\n", film.Dop, film.Editors)
	}
	if film.Music != nil {
		t.Errorf("music should be null\n")
	}

	var autumn Film
	f.db.First(&autumn, 101)
	if autumn.TitleRus == nil || *autumn.TitleRus != "Autumn" {
		t.Errorf("russian title should fall back to english %v\n", autumn.TitleRus)
	}

	var countries []FilmCountry
	f.db.Where("film_id = ?", 100).Order("ordinal").Find(&countries)
	if len(countries) != 2 ||
		countries[0].CountryCode != "EE" || countries[0].Ordinal != 1 ||
		countries[1].CountryCode != "US" || countries[1].Ordinal != 2 {
		t.Errorf("wrong countries %+v\n", countries)
	}
	if count(f, "film_countries", "film_id = ?", 101) != 1 {
		t.Errorf("single country not projected\n")
	}
	if count(f, "film_subtitles", "film_id = ?", 100) != 2 {
		t.Errorf("wrong subtitles\n")
	}
	if count(f, "film_genres", "film_id = ?", 100) != 2 {
		t.Errorf("wrong genres\n")
	}
	if count(f, "c_genre", "est = ?", "Drama") != 1 {
		t.Errorf("genre label should be inserted once\n")
	}
	if count(f, "film_keywords", "film_id = ?", 100) != 1 {
		t.Errorf("wrong keywords\n")
	}
	if count(f, "film_cassettes", "film_id = ? AND cassette_id = ?", 100, 101) != 1 {
		t.Errorf("wrong cassettes\n")
	}
	if count(f, "film_festivals", "film_id = ? AND festival_id = ?", 100, 5) != 1 {
		t.Errorf("wrong festivals\n")
	}
	if count(f, "film_programs", "film_id = ?", 100) != 2 {
		t.Errorf("wrong programs\n")
	}
	if count(f, "film_programs", "film_id = ?", 101) != 0 {
		t.Errorf("film without sections should have no programs\n")
	}

	// screenings
	var screening Screening
	if err := f.db.First(&screening, 500).Error; err != nil {
		t.Fatal(err)
	}
	if *screening.StartDate != "2023-11-10" || *screening.StartTime != "19:30:00" {
		t.Errorf("wrong start %s %s\n", *screening.StartDate, *screening.StartTime)
	}
	if *screening.TypeOfScreening != "regular" {
		t.Errorf("type should default to regular\n")
	}
	if *screening.PresentationDurationMinutes != 10 || *screening.QaDurationMinutes != 20 {
		t.Errorf("wrong durations\n")
	}
	if count(f, "c_screening_type", "code IN ?", []string{"regular", "premiere"}) != 2 {
		t.Errorf("screening types not inserted\n")
	}
	if count(f, "screening_subtitles", "screening_id = ?", 500) != 2 {
		t.Errorf("subtitles should fall back to the film\n")
	}
	if count(f, "screening_subtitles", "screening_id = ? AND language_code = ?", 501, "et") != 1 {
		t.Errorf("screening subtitles not used\n")
	}
	if count(f, "screening_languages", "screening_id = ?", 500) != 1 {
		t.Errorf("wrong screening languages\n")
	}
	// Director presenter, guest without relation; Stuntman has no match
	if count(f, "screening_persons", "screening_id = ?", 500) != 2 {
		t.Errorf("wrong persons for 500\n")
	}
	if count(f, "screening_persons", "screening_id = ? AND part = ? AND role = ?", 501, "qa", "presenter") != 2 {
		t.Errorf("wrong persons for 501\n")
	}
	if run.Reports[2].Misses != 1 {
		t.Errorf("expected 1 relation miss, got %d\n", run.Reports[2].Misses)
	}
	var person Person
	f.db.First(&person, 900)
	if person.Name == nil || *person.Name != "A. Kruusement" {
		t.Errorf("person name should be overwritten, got %v\n", person.Name)
	}

	// documents and search
	var stored interface{}
	if err := f.docs.Get(string(TaskFilms), "100", &stored); err != nil {
		t.Errorf("film document not stored %s\n", err)
	}
	keys, err := f.Search("country:EE", 10)
	if err != nil || len(keys) != 1 || keys[0] != "100" {
		t.Errorf("search failed %v %s\n", keys, err)
	}

	if s.hit("/films/100.xml") != 1 {
		t.Errorf("expected one detail fetch\n")
	}
}

func TestResyncIsIdempotent(t *testing.T) {
	f, s := testFestival(t)
	if _, err := f.Sync(); err != nil {
		t.Fatal(err)
	}
	tables := []string{
		"film_countries", "film_genres", "film_festivals", "film_programs",
		"screening_persons", "screening_languages", "screening_subtitles",
		"c_genre", "c_keyword", "persons",
	}
	before := make(map[string]int64)
	for _, table := range tables {
		before[table] = count(f, table, "1 = 1")
	}

	run, err := f.Sync()
	if err != nil {
		t.Fatal(err)
	}
	for _, table := range tables {
		if n := count(f, table, "1 = 1"); n != before[table] {
			t.Errorf("%s: %d rows after resync, expected %d\n", table, n, before[table])
		}
	}
	if run.Reports[1].Fresh != 2 || run.Reports[1].Fetched != 0 {
		t.Errorf("details should be fresh %s\n", run.Reports[1])
	}
	if s.hit("/films/100.xml") != 1 {
		t.Errorf("fresh film fetched again\n")
	}
}

func TestStaleRefetch(t *testing.T) {
	f, s := testFestival(t)
	if _, err := f.Sync(); err != nil {
		t.Fatal(err)
	}

	// the film loses a country upstream
	s.set("/films/100.xml", `<film><ids><system_id>100</system_id></ids>
<film_info><countries><country><code>US</code></country></countries></film_info></film>`)

	run := f.NewRun()
	later := time.Now().Add(time.Hour)
	run.now = func() time.Time { return later }
	if err := run.Sync(); err != nil {
		t.Fatal(err)
	}
	if s.hit("/films/100.xml") != 2 {
		t.Errorf("stale film not fetched again\n")
	}
	var countries []FilmCountry
	f.db.Where("film_id = ?", 100).Find(&countries)
	if len(countries) != 1 || countries[0].CountryCode != "US" || countries[0].Ordinal != 1 {
		t.Errorf("countries not replaced %+v\n", countries)
	}
	if count(f, "film_genres", "film_id = ?", 100) != 0 {
		t.Errorf("genres not replaced\n")
	}
}

func TestStalenessCheckOff(t *testing.T) {
	f, s := testFestival(t)
	f.config.Festival.StalenessCheck = false
	f.Sync()
	f.Sync()
	if s.hit("/films/100.xml") != 2 {
		t.Errorf("expected fetch on every run, got %d\n", s.hit("/films/100.xml"))
	}
}

func TestTaskFailureIsolated(t *testing.T) {
	f, s := testFestival(t)
	s.set("/venues.xml", `<venues><venue><id>1</venue>`)
	delete(s.docs, "/films/categories/10/screenings.xml")

	run, err := f.Sync()
	if err == nil {
		t.Fatalf("expected sync error\n")
	}
	if !errors.Is(run.Reports[0].Err, doc.ErrMalformedDocument) {
		t.Errorf("expected malformed venues, got %v\n", run.Reports[0].Err)
	}
	if run.Reports[1].Err != nil || run.Reports[1].Processed != 2 {
		t.Errorf("publications should still run %s\n", run.Reports[1])
	}
	if run.Reports[2].Err == nil {
		t.Errorf("expected screenings fetch error\n")
	}
	if count(f, "films", "1 = 1") != 2 {
		t.Errorf("films not projected\n")
	}
}

func TestUnexpectedRootFailsTask(t *testing.T) {
	f, s := testFestival(t)
	s.set("/venues.xml", `<error><message>access denied</message></error>`)

	run, err := f.Sync()
	if err == nil {
		t.Fatalf("expected sync error\n")
	}
	if !errors.Is(run.Reports[0].Err, doc.ErrMalformedDocument) {
		t.Errorf("expected malformed venues, got %v\n", run.Reports[0].Err)
	}
	if count(f, "venues", "1 = 1") != 0 {
		t.Errorf("no venues expected\n")
	}
	if run.Reports[2].Err != nil {
		t.Errorf("screenings should still run %s\n", run.Reports[2])
	}
}

func TestOpenSearchOnly(t *testing.T) {
	f, _ := testFestival(t)
	if _, err := f.Sync(); err != nil {
		t.Fatal(err)
	}
	f.Close()

	cfg := *f.config
	cfg.DB.Source = filepath.Join(t.TempDir(), "missing", "films.db")
	g := NewFestival(&cfg)
	if err := g.OpenSearch(); err != nil {
		t.Fatal(err)
	}
	defer g.Close()
	if g.db != nil {
		t.Errorf("database should not be opened\n")
	}
	keys, err := g.Search("country:EE", 10)
	if err != nil || len(keys) == 0 {
		t.Errorf("expected search results, got %v %v\n", keys, err)
	}

	cfg.Search.BleveDir = ""
	if err := NewFestival(&cfg).OpenSearch(); !errors.Is(err, search.ErrNotOpen) {
		t.Errorf("expected ErrNotOpen, got %v\n", err)
	}
}

func TestDetailFailureKeepsStub(t *testing.T) {
	f, s := testFestival(t)
	delete(s.docs, "/films/100.xml")
	run, err := f.Sync()
	if err != nil {
		t.Fatalf("Sync %s\n", err)
	}
	report := run.Reports[1]
	if report.Err != nil || report.Processed != 2 || report.Failed != 1 || report.Fetched != 1 {
		t.Errorf("expected one failed detail %s\n", report)
	}
	if count(f, "films", "id = ? AND title_eng = ? AND synopsis_eng IS NULL", 100, "Spring") != 1 {
		t.Errorf("film stub should be kept without detail\n")
	}
	if count(f, "film_programs", "film_id = ?", 100) != 2 {
		t.Errorf("sections should be kept\n")
	}
	if s.hit("/films/101.xml") != 1 {
		t.Errorf("next film detail should still be fetched\n")
	}
}

func TestSchedule(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Festival.SyncInterval = time.Hour
	scheduler, err := Schedule(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if scheduler.Len() != 1 {
		t.Errorf("expected one job, got %d\n", scheduler.Len())
	}
}
