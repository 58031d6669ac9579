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
	"time"
)

type Venue struct {
	ID        int64 `gorm:"primaryKey;autoIncrement:false"`
	Name      *string
	Company   *string
	CompanyID *int64
	City      *string
}

func (Venue) TableName() string { return "venues" }

type Film struct {
	ID                      int64 `gorm:"primaryKey;autoIncrement:false"`
	Updated                 *time.Time
	TitleEst                *string
	TitleEng                *string
	TitleRus                *string
	TitleOriginal           *string
	Runtime                 *int
	Year                    *int
	PremiereType            *string
	TrailerURL              *string `gorm:"column:trailer_url"`
	SynopsisEst             *string `gorm:"type:text"`
	SynopsisEng             *string `gorm:"type:text"`
	SynopsisRus             *string `gorm:"type:text"`
	DirectorsBioEst         *string `gorm:"type:text"`
	DirectorsBioEng         *string `gorm:"type:text"`
	DirectorsBioRus         *string `gorm:"type:text"`
	FestivalsEst            *string `gorm:"type:text"`
	FestivalsEng            *string `gorm:"type:text"`
	FestivalsRus            *string `gorm:"type:text"`
	DirectorsFilmographyEst *string `gorm:"type:text"`
	DirectorsFilmographyEng *string `gorm:"type:text"`
	DirectorsFilmographyRus *string `gorm:"type:text"`
	Directors               *string `gorm:"type:text"`
	Producers               *string `gorm:"type:text"`
	Writers                 *string `gorm:"type:text"`
	Cast                    *string `gorm:"type:text"`
	Dop                     *string `gorm:"column:dop;type:text"`
	Editors                 *string `gorm:"type:text"`
	Music                   *string `gorm:"type:text"`
	Production              *string `gorm:"type:text"`
	Distributors            *string `gorm:"type:text"`
}

func (Film) TableName() string { return "films" }

type FilmCountry struct {
	FilmID      int64  `gorm:"primaryKey;autoIncrement:false"`
	CountryCode string `gorm:"primaryKey;size:8"`
	Ordinal     int
}

func (FilmCountry) TableName() string { return "film_countries" }

type FilmLanguage struct {
	FilmID       int64  `gorm:"primaryKey;autoIncrement:false"`
	LanguageCode string `gorm:"primaryKey;size:8"`
}

func (FilmLanguage) TableName() string { return "film_languages" }

type FilmSubtitle struct {
	FilmID       int64  `gorm:"primaryKey;autoIncrement:false"`
	LanguageCode string `gorm:"primaryKey;size:8"`
}

func (FilmSubtitle) TableName() string { return "film_subtitles" }

type FilmGenre struct {
	FilmID  int64 `gorm:"primaryKey;autoIncrement:false"`
	GenreID int64 `gorm:"primaryKey;autoIncrement:false"`
}

func (FilmGenre) TableName() string { return "film_genres" }

type FilmKeyword struct {
	FilmID    int64 `gorm:"primaryKey;autoIncrement:false"`
	KeywordID int64 `gorm:"primaryKey;autoIncrement:false"`
}

func (FilmKeyword) TableName() string { return "film_keywords" }

// FilmCassette links a film to the films screened with it in one program.
type FilmCassette struct {
	FilmID     int64 `gorm:"primaryKey;autoIncrement:false"`
	CassetteID int64 `gorm:"primaryKey;autoIncrement:false"`
}

func (FilmCassette) TableName() string { return "film_cassettes" }

type FilmFestival struct {
	FilmID     int64 `gorm:"primaryKey;autoIncrement:false"`
	FestivalID int64 `gorm:"primaryKey;autoIncrement:false"`
}

func (FilmFestival) TableName() string { return "film_festivals" }

type FilmProgram struct {
	FilmID    int64 `gorm:"primaryKey;autoIncrement:false"`
	ProgramID int64 `gorm:"primaryKey;autoIncrement:false"`
}

func (FilmProgram) TableName() string { return "film_programs" }

// Genre and Keyword ids are assigned here, not by Eventival.
type Genre struct {
	ID  int64  `gorm:"primaryKey"`
	Est string `gorm:"uniqueIndex:idx_genre_est;size:255"`
}

func (Genre) TableName() string { return "c_genre" }

type Keyword struct {
	ID  int64  `gorm:"primaryKey"`
	Est string `gorm:"uniqueIndex:idx_keyword_est;size:255"`
}

func (Keyword) TableName() string { return "c_keyword" }

// Category is a festival category, such as a competition program.
type Category struct {
	ID  int64 `gorm:"primaryKey;autoIncrement:false"`
	Est *string
}

func (Category) TableName() string { return "c_festival" }

type Program struct {
	ID  int64 `gorm:"primaryKey;autoIncrement:false"`
	Est *string
}

func (Program) TableName() string { return "c_program" }

type ScreeningType struct {
	Code string `gorm:"primaryKey;size:64"`
	Est  *string
}

func (ScreeningType) TableName() string { return "c_screening_type" }

type Screening struct {
	ID                          int64 `gorm:"primaryKey;autoIncrement:false"`
	ScreeningCode               *string
	FilmID                      *int64 `gorm:"index"`
	CinemaHallID                *int64
	VenueID                     *int64
	StartDate                   *string `gorm:"size:10"`
	StartTime                   *string `gorm:"size:8"`
	ScreeningDurationMinutes    *int
	PresentationDurationMinutes *int
	QaDurationMinutes           *int `gorm:"column:qa_duration_minutes"`
	TicketingURL                *string `gorm:"column:ticketing_url"`
	TypeOfScreening             *string
	ScreeningInfoEst            *string `gorm:"type:text"`
	ScreeningInfoEng            *string `gorm:"type:text"`
	ScreeningInfoRus            *string `gorm:"type:text"`
}

func (Screening) TableName() string { return "screenings" }

type ScreeningLanguage struct {
	ScreeningID  int64  `gorm:"primaryKey;autoIncrement:false"`
	LanguageCode string `gorm:"primaryKey;size:8"`
}

func (ScreeningLanguage) TableName() string { return "screening_languages" }

type ScreeningSubtitle struct {
	ScreeningID  int64  `gorm:"primaryKey;autoIncrement:false"`
	LanguageCode string `gorm:"primaryKey;size:8"`
}

func (ScreeningSubtitle) TableName() string { return "screening_subtitles" }

type ScreeningPerson struct {
	ScreeningID int64  `gorm:"primaryKey;autoIncrement:false"`
	PersonID    int64  `gorm:"primaryKey;autoIncrement:false"`
	RelationID  int64  `gorm:"primaryKey;autoIncrement:false"`
	Part        string `gorm:"primaryKey;size:16"`
	Role        string `gorm:"primaryKey;size:16"`
}

func (ScreeningPerson) TableName() string { return "screening_persons" }

type Person struct {
	ID   int64 `gorm:"primaryKey;autoIncrement:false"`
	Name *string
}

func (Person) TableName() string { return "persons" }

type Relation struct {
	ID   int64  `gorm:"primaryKey"`
	Name string `gorm:"uniqueIndex:idx_relation_name;size:64"`
}

func (Relation) TableName() string { return "relations" }

func models() []interface{} {
	return []interface{}{
		&Venue{}, &Film{}, &FilmCountry{}, &FilmLanguage{}, &FilmSubtitle{},
		&FilmGenre{}, &FilmKeyword{}, &FilmCassette{}, &FilmFestival{},
		&FilmProgram{}, &Genre{}, &Keyword{}, &Category{}, &Program{},
		&ScreeningType{}, &Screening{}, &ScreeningLanguage{},
		&ScreeningSubtitle{}, &ScreeningPerson{}, &Person{}, &Relation{},
	}
}
