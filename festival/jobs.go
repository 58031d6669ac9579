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

	"github.com/filmfest/eventival/config"
	"github.com/filmfest/eventival/log"
	"github.com/go-co-op/gocron"
)

// SyncOnce opens the festival database, runs one sync and closes it again.
func SyncOnce(config *config.Config) error {
	f := NewFestival(config)
	if err := f.Open(); err != nil {
		return err
	}
	defer f.Close()
	_, err := f.Sync()
	return err
}

// Schedule returns a scheduler running a sync every SyncInterval, starting
// right away. Runs never overlap.
func Schedule(config *config.Config) (*gocron.Scheduler, error) {
	scheduler := gocron.NewScheduler(time.UTC)
	_, err := scheduler.Every(config.Festival.SyncInterval).SingletonMode().Do(func() {
		if err := SyncOnce(config); err != nil {
			log.Println(err)
		}
	})
	return scheduler, err
}
