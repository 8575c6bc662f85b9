// Copyright 2026 The VoteATX Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"database/sql"
	"fmt"
	"log"
	"path/filepath"

	_ "github.com/duckdb/duckdb-go/v2" // register duckdb driver
	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"

	"github.com/open-austin/voteatx/dataset"
	"github.com/open-austin/voteatx/resolver"
)

type serveOptions struct {
	DbPath     string
	ConfigPath string
	Addr       string
}

var serveOpts = &serveOptions{}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serves the voting-place query API",
	RunE: func(cmd *cobra.Command, _ []string) error {
		store, cfg, err := openStore(serveOpts.DbPath, serveOpts.ConfigPath)
		if err != nil {
			return err
		}

		log.Printf("serving %d voting places on %s", len(store.Places()), serveOpts.Addr)

		srv := resolver.NewServer(store, cfg, clockwork.NewRealClock())
		srv.ResolveMapsKey(cmd.Context())

		return srv.Run(serveOpts.Addr)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveOpts.DbPath, "db-path", "data", "directory holding the dataset database")
	serveCmd.Flags().StringVar(&serveOpts.ConfigPath, "config", "data/election.json", "election config file")
	serveCmd.Flags().StringVar(&serveOpts.Addr, "addr", "localhost:8080", "listen address")
	rootCmd.AddCommand(serveCmd)
}

// openStore loads the read-only dataset snapshot built by load.
func openStore(dbPath, configPath string) (*dataset.Store, resolver.Config, error) {
	electionCfg, err := dataset.LoadElectionConfig(configPath)
	if err != nil {
		return nil, resolver.Config{}, err
	}

	cfg, err := resolver.ConfigFromElection(electionCfg)
	if err != nil {
		return nil, resolver.Config{}, err
	}

	db, err := sql.Open("duckdb", filepath.Join(dbPath, "voteatx.duckdb"))
	if err != nil {
		return nil, resolver.Config{}, fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	store, err := dataset.NewSQLRepository(db).LoadStore(electionCfg)
	if err != nil {
		return nil, resolver.Config{}, fmt.Errorf("loading dataset: %w", err)
	}

	return store, cfg, nil
}
