// Copyright 2026 The VoteATX Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/open-austin/voteatx/resolver"
	"github.com/open-austin/voteatx/spatial"
)

var queryTime string

func newQueryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query <latitude> <longitude>",
		Short: "Resolves one point against the local dataset",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			lat, err := strconv.ParseFloat(args[0], 64)
			if err != nil {
				return fmt.Errorf("parsing latitude: %w", err)
			}

			lng, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return fmt.Errorf("parsing longitude: %w", err)
			}

			pt, err := spatial.NewCoord(lat, lng, spatial.Degrees)
			if err != nil {
				return err
			}

			store, cfg, err := openStore(serveOpts.DbPath, serveOpts.ConfigPath)
			if err != nil {
				return err
			}

			at := time.Now().In(cfg.TZ)

			if queryTime != "" {
				at, err = time.ParseInLocation("2006-01-02T15:04", queryTime, cfg.TZ)
				if err != nil {
					return fmt.Errorf("parsing time: %w", err)
				}
			}

			var places []*resolver.Result

			electionDay, err := resolver.NewElectionDayResolver(store, cfg).Resolve(pt, at)
			if err != nil {
				return err
			}

			if electionDay != nil {
				places = append(places, electionDay)
			}

			early, err := resolver.NewEarlyVotingResolver(store, cfg).Resolve(pt, at, 0, 0)
			if err != nil {
				return err
			}

			places = append(places, early...)

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")

			return enc.Encode(places)
		},
	}

	cmd.Flags().StringVar(&queryTime, "time", "", "query instant (2006-01-02T15:04, default now)")
	cmd.Flags().StringVar(&serveOpts.DbPath, "db-path", "data", "directory holding the dataset database")
	cmd.Flags().StringVar(&serveOpts.ConfigPath, "config", "data/election.json", "election config file")

	return cmd
}

func init() {
	rootCmd.AddCommand(newQueryCmd())
}
