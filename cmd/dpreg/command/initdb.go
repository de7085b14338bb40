// Copyright (c) 2025 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package command

import (
	"context"
	"fmt"

	"github.com/momeni/dpreg/pkg/adapter/config"
	"github.com/momeni/dpreg/pkg/adapter/db/postgres/schemainit"
	"github.com/momeni/dpreg/pkg/core/repo"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the registry tables in an empty database",
	Long: `Create the registry tables in an empty database. The
database connection information are read from the config file. The
creation statements are idempotent, so running init against an
already initialized database is harmless.`,
	RunE: initDB,
	Args: cobra.NoArgs,
}

func initDB(_ *cobra.Command, _ []string) error {
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
	err = p.Conn(ctx, func(ctx context.Context, conn repo.Conn) error {
		return conn.Tx(ctx, func(ctx context.Context, tx repo.Tx) error {
			return schemainit.New(tx).InitSchema(ctx)
		})
	})
	if err != nil {
		return fmt.Errorf("initializing database schema: %w", err)
	}
	return nil
}

func init() {
	dbCmd.AddCommand(initCmd)
}
