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

package main

import (
	"github.com/filmfest/eventival/festival"
	"github.com/spf13/cobra"
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "sync periodically",
	Long:  `Runs a sync every Festival.SyncInterval until interrupted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return schedule()
	},
}

func schedule() error {
	cfg, err := getConfig()
	if err != nil {
		return err
	}
	scheduler, err := festival.Schedule(cfg)
	if err != nil {
		return err
	}
	scheduler.StartBlocking()
	return nil
}

func init() {
	rootCmd.AddCommand(scheduleCmd)
}
