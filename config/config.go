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

package config

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"text/template"
	"time"

	"github.com/filmfest/eventival"
	"github.com/go-playground/validator/v10"
	"github.com/go-sql-driver/mysql"
	"github.com/spf13/viper"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	DriverSQLite   = "sqlite3"
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"

	StoreDisk = "disk"
	StoreS3   = "s3"
	StoreNone = "none"
)

type DatabaseConfig struct {
	Driver   string `validate:"oneof=sqlite3 mysql postgres"`
	Source   string
	LogMode  bool
	Host     string
	Port     string
	User     string
	Password string
	Name     string
}

// DSN returns Source, or for mysql without a Source, a DSN built from the
// host and credential fields.
func (dc DatabaseConfig) DSN() string {
	if dc.Source != "" || dc.Driver != DriverMySQL {
		return dc.Source
	}
	c := mysql.NewConfig()
	c.User = dc.User
	c.Passwd = dc.Password
	c.Net = "tcp"
	c.Addr = dc.Host
	if dc.Port != "" {
		c.Addr = dc.Host + ":" + dc.Port
	}
	c.DBName = dc.Name
	c.ParseTime = true
	c.Params = map[string]string{"charset": "utf8mb4"}
	return c.FormatDSN()
}

func (dc DatabaseConfig) GormConfig() *gorm.Config {
	var glog logger.Interface
	if dc.LogMode == false {
		glog = logger.Discard
	} else {
		glog = logger.Default
	}
	return &gorm.Config{
		Logger: glog,
	}
}

type Template struct {
	Text  string
	templ *template.Template
}

// Parse compiles Text the first time it's called.
func (t *Template) Parse() (err error) {
	if t.templ == nil {
		t.templ, err = template.New("url").Option("missingkey=error").Parse(t.Text)
	}
	return
}

func (t *Template) Execute(vars interface{}) (string, error) {
	if err := t.Parse(); err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := t.templ.Execute(&buf, vars); err != nil {
		return "", err
	}
	return buf.String(), nil
}

type ClientConfig struct {
	CacheDir  string
	MaxAge    time.Duration
	UseCache  bool
	UserAgent string
	Attempts  int     `validate:"min=1"`
	Delay     time.Duration
	Backoff   float64 `validate:"gte=1"`
	Throttle  time.Duration
}

type Subfest struct {
	Code int `validate:"required"`
	Name string
}

type FestivalConfig struct {
	BaseURL         string    `validate:"required"`
	Subfests        []Subfest `validate:"min=1,dive"`
	VenuesURL       Template
	PublicationsURL Template
	ScreeningsURL   Template
	FilmURL         Template
	Staleness       time.Duration
	StalenessCheck  bool
	Relations       []string
	ScreeningType   string `validate:"required"`
	NoiseKeys       []string
	SyncInterval    time.Duration
}

type BucketConfig struct {
	Endpoint        string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	ObjectPrefix    string
	UseSSL          bool
}

type StoreConfig struct {
	Backend string `validate:"oneof=disk s3 none"`
	Dir     string
	Bucket  BucketConfig
}

type SearchConfig struct {
	BleveDir string
}

type TranslateConfig struct {
	Dir       string
	Languages []string
}

type LogConfig struct {
	Level string
}

type Config struct {
	Client    ClientConfig
	DB        DatabaseConfig
	Festival  FestivalConfig
	Log       LogConfig
	Search    SearchConfig
	Store     StoreConfig
	Translate TranslateConfig
}

func configDefaults(v *viper.Viper) {
	v.SetDefault("Client.CacheDir", ".httpcache")
	v.SetDefault("Client.MaxAge", "10m")
	v.SetDefault("Client.UseCache", "false")
	v.SetDefault("Client.UserAgent", userAgent())
	v.SetDefault("Client.Attempts", "5")
	v.SetDefault("Client.Delay", "1s")
	v.SetDefault("Client.Backoff", "1.2")
	v.SetDefault("Client.Throttle", "0s")

	v.SetDefault("DB.Driver", DriverMySQL)
	v.SetDefault("DB.LogMode", "false")
	v.SetDefault("DB.Port", "3306")

	// same variables the previous job read its connection from
	v.BindEnv("DB.Host", "FILMS_DB_HOST")
	v.BindEnv("DB.User", "FILMS_DB_USER")
	v.BindEnv("DB.Password", "FILMS_DB_PASSWORD")
	v.BindEnv("DB.Name", "FILMS_DB_NAME")
	v.BindEnv("Festival.BaseURL", "EVENTIVAL_URL")

	v.SetDefault("Festival.Subfests", []Subfest{
		{Code: 10, Name: "PÖFF"},
		{Code: 9, Name: "Just Film"},
	})
	v.SetDefault("Festival.VenuesURL.Text", "{{.BaseURL}}/venues.xml")
	v.SetDefault("Festival.PublicationsURL.Text",
		"{{.BaseURL}}/films/categories/{{.Subfest}}/publications-locked.xml")
	v.SetDefault("Festival.ScreeningsURL.Text",
		"{{.BaseURL}}/films/categories/{{.Subfest}}/screenings.xml")
	v.SetDefault("Festival.FilmURL.Text", "{{.BaseURL}}/films/{{.ID}}.xml")
	v.SetDefault("Festival.Staleness", "900s")
	v.SetDefault("Festival.StalenessCheck", "true")
	v.SetDefault("Festival.Relations", []string{
		"", // persons listed without a relation
		"Director",
		"Producer",
		"Writer",
		"Actor",
		"Cinematographer",
		"Editor",
		"Composer",
		"Moderator",
		"Interpreter",
	})
	v.SetDefault("Festival.ScreeningType", "regular")
	v.SetDefault("Festival.NoiseKeys", []string{"@hash"})
	v.SetDefault("Festival.SyncInterval", "1h")

	v.SetDefault("Log.Level", "info")

	v.SetDefault("Search.BleveDir", "")

	v.SetDefault("Store.Backend", StoreDisk)
	v.SetDefault("Store.Dir", "data")

	v.SetDefault("Translate.Dir", ".")
	v.SetDefault("Translate.Languages", []string{"et", "en", "ru"})
}

func userAgent() string {
	return eventival.AppName + "/" + eventival.Version + " ( " + eventival.Contact + " ) "
}

var pathRegexp = regexp.MustCompile(`(cachedir|blevedir|store\.dir|translate\.dir)$`)

func readConfig(v *viper.Viper) (*Config, error) {
	var config Config
	err := v.ReadInConfig()
	if err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return &config, err
		}
		err = nil
	}
	if v.ConfigFileUsed() != "" {
		dir := filepath.Dir(v.ConfigFileUsed())
		for _, k := range v.AllKeys() {
			relative := pathRegexp.MatchString(k) ||
				(k == "db.source" && v.GetString("db.driver") == DriverSQLite)
			if !relative {
				continue
			}
			val, ok := v.Get(k).(string)
			if !ok || val == "" || filepath.IsAbs(val) {
				continue
			}
			v.Set(k, filepath.Join(dir, val))
		}
	}
	err = v.Unmarshal(&config)
	if err != nil {
		return &config, err
	}
	config.Festival.BaseURL = strings.TrimRight(config.Festival.BaseURL, "/")
	return &config, config.Validate()
}

var validate = validator.New()

func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	for _, t := range []*Template{
		&c.Festival.VenuesURL,
		&c.Festival.PublicationsURL,
		&c.Festival.ScreeningsURL,
		&c.Festival.FilmURL,
	} {
		if err := t.Parse(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}
	}
	return nil
}

var configFile, configPath, configName string

func SetConfigFile(path string) {
	configFile = path
}

func AddConfigPath(path string) {
	configPath = path
}

func SetConfigName(name string) {
	configName = name
}

func GetConfig() (*Config, error) {
	v := viper.New()
	if configFile != "" {
		v.SetConfigFile(configFile)
	}
	if configPath != "" {
		v.AddConfigPath(configPath)
	}
	if configName != "" {
		v.SetConfigName(configName)
	}
	configDefaults(v)
	return readConfig(v)
}

func LoadConfig(dir string) (*Config, error) {
	v := viper.New()
	v.AddConfigPath(dir)
	v.SetConfigName(eventival.AppName)
	configDefaults(v)
	return readConfig(v)
}

// DefaultConfig returns the defaults alone, without reading a file and
// without validation.
func DefaultConfig() *Config {
	var config Config
	v := viper.New()
	configDefaults(v)
	v.Unmarshal(&config)
	return &config
}
