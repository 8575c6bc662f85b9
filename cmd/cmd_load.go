// Copyright 2026 The VoteATX Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"

	_ "github.com/duckdb/duckdb-go/v2" // register duckdb driver
	"github.com/spf13/cobra"

	"github.com/open-austin/voteatx/dataset"
	"github.com/open-austin/voteatx/spatial"
)

type loadOptions struct {
	DbPath      string
	ConfigPath  string
	ElectionDay string
	EarlyFixed  string
	EarlyMobile string
	Regions     string
}

var loadOpts = &loadOptions{}

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Builds the voting-place dataset from CSV and GeoJSON sources",
	Long: `
load runs the offline, single-threaded ingestion pass: it deduplicates
locations, folds mobile-site rows into per-location schedules, attaches the
precinct boundary layer, and persists the finished dataset. The dataset is
then served read-only for the whole election cycle.
`,
	RunE: func(_ *cobra.Command, _ []string) error {
		return runLoad(loadOpts)
	},
}

func init() {
	loadCmd.Flags().StringVar(&loadOpts.DbPath, "db-path", "data", "directory for the dataset database")
	loadCmd.Flags().StringVar(&loadOpts.ConfigPath, "config", "data/election.json", "election config file")
	loadCmd.Flags().StringVar(&loadOpts.ElectionDay, "election-day", "data/election_day.csv", "election-day places CSV")
	loadCmd.Flags().StringVar(&loadOpts.EarlyFixed, "early-fixed", "data/early_fixed.csv", "fixed early-voting places CSV")
	loadCmd.Flags().StringVar(&loadOpts.EarlyMobile, "early-mobile", "data/early_mobile.csv", "mobile early-voting places CSV")
	loadCmd.Flags().StringVar(&loadOpts.Regions, "regions", "data/precincts.geojson", "precinct boundary GeoJSON")
	rootCmd.AddCommand(loadCmd)
}

func runLoad(opts *loadOptions) error {
	cfg, err := dataset.LoadElectionConfig(opts.ConfigPath)
	if err != nil {
		return err
	}

	registry, err := dataset.NewRegistry(cfg.Bounds, cfg.ZipPattern)
	if err != nil {
		return err
	}

	builder := dataset.NewBuilder(registry)
	loader := dataset.NewLoader(builder, cfg)

	n, err := loader.LoadElectionDayPlaces(opts.ElectionDay)
	if err != nil {
		return fmt.Errorf("loading election-day places: %w", err)
	}

	log.Printf("loaded %d election-day places", n)

	n, err = loader.LoadEarlyFixedPlaces(opts.EarlyFixed)
	if err != nil {
		return fmt.Errorf("loading fixed early-voting places: %w", err)
	}

	log.Printf("loaded %d fixed early-voting places", n)

	n, err = loader.LoadEarlyMobilePlaces(opts.EarlyMobile)
	if err != nil {
		return fmt.Errorf("loading mobile early-voting places: %w", err)
	}

	log.Printf("loaded %d mobile early-voting rows", n)

	regions, err := spatial.LoadRegions(opts.Regions)
	if err != nil {
		return fmt.Errorf("loading precinct boundaries: %w", err)
	}

	log.Printf("loaded %d precinct boundaries", len(regions.Regions()))
	builder.SetRegions(regions)

	store, err := builder.Build()
	if err != nil {
		return fmt.Errorf("building dataset: %w", err)
	}

	if err := os.MkdirAll(opts.DbPath, 0o750); err != nil {
		return fmt.Errorf("creating db directory: %w", err)
	}

	db, err := sql.Open("duckdb", filepath.Join(opts.DbPath, "voteatx.duckdb"))
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	repo := dataset.NewSQLRepository(db)
	if err := repo.CreateSchema(); err != nil {
		return err
	}

	if err := repo.SaveStore(store); err != nil {
		return fmt.Errorf("persisting dataset: %w", err)
	}

	log.Printf("dataset written: %d locations, %d places", len(store.Locations()), len(store.Places()))

	return nil
}
