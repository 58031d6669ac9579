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
	"fmt"

	"github.com/filmfest/eventival/festival"
	"github.com/spf13/cobra"
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "search synced films",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return find(args[0])
	},
}

var searchLimit int

func find(q string) error {
	cfg, err := getConfig()
	if err != nil {
		return err
	}
	f := festival.NewFestival(cfg)
	if err := f.OpenSearch(); err != nil {
		return err
	}
	defer f.Close()
	ids, err := f.Search(q, searchLimit)
	if err != nil {
		return err
	}
	for _, id := range ids {
		fmt.Println(id)
	}
	return nil
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "l", 25, "max results")
	rootCmd.AddCommand(searchCmd)
}
