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

	"github.com/filmfest/eventival/translate"
	"github.com/spf13/cobra"
)

var translateCmd = &cobra.Command{
	Use:   "translate <lang> <key>",
	Short: "look up a translated label",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return lookup(args[0], args[1])
	},
}

func lookup(lang, key string) error {
	cfg, err := getConfig()
	if err != nil {
		return err
	}
	table, err := translate.Load(cfg.Translate.Dir, cfg.Translate.Languages)
	if err != nil {
		return err
	}
	fmt.Println(table.String(key, lang))
	return nil
}

func init() {
	rootCmd.AddCommand(translateCmd)
}
