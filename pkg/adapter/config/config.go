// Copyright (c) 2025 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package config is an adapter which accepts yaml formatted config
// files from its users and allows the registry to instantiate
// different components, from the adapter or use cases layers, using
// those loaded configuration settings.
package config

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/momeni/dpreg/pkg/adapter/db/postgres"
	adapter "github.com/momeni/dpreg/pkg/adapter/restful/gin"
	"github.com/momeni/dpreg/pkg/adapter/restful/gin/middleware"
	"github.com/momeni/dpreg/pkg/core/log"
	"github.com/momeni/dpreg/pkg/core/repo"
	"gopkg.in/yaml.v3"
)

// Config contains all configuration settings of the registry.
type Config struct {
	Database Database `yaml:"database"`
	Gin      Gin      `yaml:"gin"`
	HTTP     HTTP     `yaml:"http"`
}

// Database contains the database connection settings. Either the url
// is given directly (and the DATABASE_URL environment variable takes
// precedence over the config file), or it is composed from the other
// fields.
type Database struct {
	URL      string `yaml:"url"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port" validate:"omitempty,gte=1,lte=65535"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
}

// Gin contains the settings of the gin-gonic framework middlewares.
// Fields are defined as pointers, so missing items can be detected
// and replaced by their default values (both default to enabled).
type Gin struct {
	Logger   *bool `yaml:"logger"`
	Recovery *bool `yaml:"recovery"`
}

// HTTP contains the settings of the serving HTTP surface.
type HTTP struct {
	Addr        string   `yaml:"addr"`
	AuthEnabled bool     `yaml:"auth-enabled"`
	BearerToken string   `yaml:"bearer-token"`
	CORSOrigins []string `yaml:"cors-origins"`
	JSONLogs    bool     `yaml:"json-logs"`
	Verbose     bool     `yaml:"verbose"`
}

// Load unmarshals the data byte slice and loads a Config instance.
// Extra items in the data will be ignored and missing items will take
// their default values. Thereafter, loaded Config will be validated
// and normalized in order to ensure that provided settings are
// acceptable. Environment variable overrides are applied here too,
// since they are fixed for each execution.
func Load(data []byte) (*Config, error) {
	c := &Config{}
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("unmarshalling yaml: %w", err)
	}
	if err := c.ValidateAndNormalize(); err != nil {
		return nil, fmt.Errorf("validating configs: %w", err)
	}
	return c, nil
}

// LoadFile reads and loads a Config instance from the yaml file at
// the given path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %q: %w", path, err)
	}
	return Load(data)
}

// ValidateAndNormalize validates the configuration settings and
// returns an error if they were not acceptable. It can also modify
// settings in order to normalize them or replace some zero values
// with their expected default values (if any).
func (c *Config) ValidateAndNormalize() error {
	if u := os.Getenv("DATABASE_URL"); u != "" {
		c.Database.URL = u
	}
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("validating settings: %w", err)
	}
	if c.Database.URL == "" {
		u, err := c.Database.connectionURL()
		if err != nil {
			return fmt.Errorf("composing database url: %w", err)
		}
		c.Database.URL = u
	}
	nil2True(&c.Gin.Logger)
	nil2True(&c.Gin.Recovery)
	if c.HTTP.Addr == "" {
		c.HTTP.Addr = ":8080"
	}
	if c.HTTP.AuthEnabled && c.HTTP.BearerToken == "" {
		return fmt.Errorf("auth-enabled requires a bearer-token")
	}
	return nil
}

func (d Database) connectionURL() (string, error) {
	if d.Host == "" || d.Name == "" || d.User == "" {
		return "", fmt.Errorf(
			"host, name, and user settings are required",
		)
	}
	port := d.Port
	if port == 0 {
		port = 5432
	}
	u := &url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   d.Host + ":" + strconv.Itoa(port),
		Path:   "/" + d.Name,
	}
	return u.String(), nil
}

// ConnectionPool creates a database connection pool using the
// connection information which are kept in the c settings.
func (c *Config) ConnectionPool(ctx context.Context) (repo.Pool, error) {
	p, err := postgres.NewPool(ctx, c.Database.URL)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}
	return p, nil
}

// SetupLogger installs the process-wide logger based on the http
// section settings (json or text rendering, debug or info level).
func (c *Config) SetupLogger() {
	level := slog.LevelInfo
	if c.HTTP.Verbose {
		level = slog.LevelDebug
	}
	log.Setup(c.HTTP.JSONLogs, level)
}

// NewEngine creates a gin engine, configuring its middlewares based
// on the c settings: the optional logger and recovery middlewares,
// the CORS headers for the configured origins, and the bearer token
// authentication (if enabled).
func (c *Config) NewEngine() *adapter.Engine {
	middlewares := make([]adapter.HandlerFunc, 0, 4)
	if *c.Gin.Logger {
		middlewares = append(middlewares, adapter.Logger())
	}
	if *c.Gin.Recovery {
		middlewares = append(middlewares, adapter.Recovery())
	}
	if len(c.HTTP.CORSOrigins) > 0 {
		middlewares = append(
			middlewares, middleware.CORS(c.HTTP.CORSOrigins),
		)
	}
	if c.HTTP.AuthEnabled {
		middlewares = append(
			middlewares, middleware.BearerAuth(c.HTTP.BearerToken),
		)
	}
	return adapter.New(middlewares...)
}

func nil2True(b **bool) {
	if *b == nil {
		t := true
		*b = &t
	}
}
