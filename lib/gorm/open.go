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

package gorm

import (
	"errors"

	"github.com/filmfest/eventival/config"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	g "gorm.io/gorm"
)

var ErrDriverNotSupported = errors.New("driver not supported")

// Open connects using the configured driver.
func Open(dc config.DatabaseConfig) (db *g.DB, err error) {
	cfg := dc.GormConfig()
	switch dc.Driver {
	case config.DriverSQLite:
		db, err = g.Open(sqlite.Open(dc.DSN()), cfg)
	case config.DriverMySQL:
		db, err = g.Open(mysql.Open(dc.DSN()), cfg)
	case config.DriverPostgres:
		db, err = g.Open(postgres.Open(dc.DSN()), cfg)
	default:
		err = ErrDriverNotSupported
	}
	return
}

func Close(db *g.DB) {
	conn, err := db.DB()
	if err != nil {
		return
	}
	conn.Close()
}
