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
	"os"

	"github.com/filmfest/eventival"
	"github.com/filmfest/eventival/config"
	"github.com/filmfest/eventival/festival"
	"github.com/filmfest/eventival/log"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   eventival.AppName,
	Short: "Eventival festival catalog sync",
	Long:  eventival.Contact,
	// no arguments, no flags needed: one full sync
	RunE: func(cmd *cobra.Command, args []string) error {
		return sync()
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

var configFile string
var configPath string
var configName string

func getConfig() (*config.Config, error) {
	// database credentials may come from a .env file
	_ = godotenv.Load()

	if configPath == "" {
		configPath = os.Getenv("EVENTIVAL_HOME")
	}
	if configName == "" {
		configName = os.Getenv("EVENTIVAL_CONFIG")
	}
	if configFile != "" {
		config.SetConfigFile(configFile)
	} else {
		if configPath == "" {
			configPath = "."
		}
		if configName == "" {
			configName = eventival.AppName
		}
		config.AddConfigPath(configPath)
		config.SetConfigName(configName)
	}
	cfg, err := config.GetConfig()
	if err != nil {
		return nil, err
	}
	log.SetLevel(cfg.Log.Level)
	return cfg, nil
}

func sync() error {
	cfg, err := getConfig()
	if err != nil {
		return err
	}
	return festival.SyncOnce(cfg)
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalln(err)
	}
}
