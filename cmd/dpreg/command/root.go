// Copyright (c) 2025 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package command provides the root and sub-commands for the data
// product registry. Commands are organized using the cobra library.
// The root command starts the web server itself while the "db"
// sub-command can be used for the database management actions.
//
//	./dpreg [-c /path/of/main/config.yaml]           # start web server
//	./dpreg db init [-c /path/of/main/config.yaml]
package command

import (
	"context"
	"fmt"
	"os"

	"github.com/momeni/dpreg/pkg/adapter/config"
	"github.com/momeni/dpreg/pkg/adapter/restful/gin/routes"
	"github.com/spf13/cobra"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:   "dpreg",
	Short: "A registry of data products and their table schemas",
	Long: `A registry service recording data products, the table
schemas they expose, and the evolution of both over time. Every
accepted metadata or schema update derives a new immutable version
with a semantic version number, classified as a minor update (safe
for consumers) or a major update (may break consumers), while the
registered products stay addressable by stable external identifiers.`,
	RunE: startWebServer,
	Args: cobra.NoArgs,
}

func startWebServer(_ *cobra.Command, _ []string) error {
	ctx := context.Background()
	c, err := config.LoadFile(cfgPath)
	if err != nil {
		return fmt.Errorf("config.LoadFile(%q): %w", cfgPath, err)
	}
	c.SetupLogger()
	p, err := c.ConnectionPool(ctx)
	if err != nil {
		return fmt.Errorf("creating DB pool: %w", err)
	}
	defer p.Close()
	e := c.NewEngine()
	routes.Register(e, p)
	if err = e.Run(c.HTTP.Addr); err != nil {
		return fmt.Errorf("running Gin engine: %w", err)
	}
	return nil
}

// Execute runs the rootCmd which in turn parses CLI arguments and
// flags and runs the most specific cobra command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(fixConfigPath)
	rootCmd.PersistentFlags().StringVarP(
		&cfgPath, "config", "c", "", "config file path",
	)
}

// fixConfigPath ensures that cfgPath is set respectively by either
// the CLI args, the CONFIG_FILE environment variable, or its default
// value.
func fixConfigPath() {
	if cfgPath != "" {
		return
	}
	var found bool
	if cfgPath, found = os.LookupEnv("CONFIG_FILE"); !found {
		cfgPath = "configs/sample-config.yaml"
	}
}
