// Copyright 2026 The VoteATX Authors
//
// SPDX-License-Identifier: Apache-2.0
package dataset

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/open-austin/voteatx/schedule"
)

// HourRange is an open/close pair in "15:04" wall-clock form.
type HourRange struct {
	Opens  string `json:"opens"`
	Closes string `json:"closes"`
}

// DayHours is one row of a per-election hour table.
type DayHours struct {
	Date   string `json:"date"`
	Opens  string `json:"opens,omitempty"`
	Closes string `json:"closes,omitempty"`
	Closed bool   `json:"closed,omitempty"`
}

// ElectionConfig is the per-election configuration file. It is loaded
// once and threaded explicitly into the builder and resolvers; nothing is
// memoized process-wide.
type ElectionConfig struct {
	Description string `json:"description"`
	InfoFooter  string `json:"info_footer,omitempty"`

	Timezone     string `json:"timezone"`
	ElectionDate string `json:"election_date"`

	ElectionDayHours HourRange  `json:"election_day_hours"`
	EarlyFixedHours  []DayHours `json:"early_fixed_hours"`

	Bounds     Bounds `json:"bounds"`
	ZipPattern string `json:"zip_pattern"`

	// MaxDistanceMiles bounds the fixed-site search; MaxPlaces caps the
	// total early-voting results; MobileFactor is the relevance cutoff for
	// mobile sites relative to the fixed-site distance. Tunable per
	// election, observed defaults below.
	MaxDistanceMiles float64 `json:"max_distance_miles"`
	MaxPlaces        int     `json:"max_places"`
	MobileFactor     float64 `json:"mobile_factor"`
}

// Defaults applied when the config file omits a tuning value.
const (
	DefaultMaxDistanceMiles = 12.0
	DefaultMaxPlaces        = 4
	DefaultMobileFactor     = 1.5
	DefaultZipPattern       = `^\d{5}$`
)

// LoadElectionConfig reads and validates an election config file.
func LoadElectionConfig(filepath string) (*ElectionConfig, error) {
	data, err := os.ReadFile(filepath) // #nosec G304 - filepath is provided by admin
	if err != nil {
		return nil, fmt.Errorf("reading election config: %w", err)
	}

	var cfg ElectionConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing election config: %w", err)
	}

	cfg.applyDefaults()

	if _, err := cfg.Location(); err != nil {
		return nil, err
	}

	if _, err := cfg.ElectionDaySchedule(); err != nil {
		return nil, err
	}

	if _, err := cfg.EarlyFixedSchedule(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *ElectionConfig) applyDefaults() {
	if c.MaxDistanceMiles == 0 {
		c.MaxDistanceMiles = DefaultMaxDistanceMiles
	}

	if c.MaxPlaces == 0 {
		c.MaxPlaces = DefaultMaxPlaces
	}

	if c.MobileFactor == 0 {
		c.MobileFactor = DefaultMobileFactor
	}

	if c.ZipPattern == "" {
		c.ZipPattern = DefaultZipPattern
	}

	if c.Timezone == "" {
		c.Timezone = "America/Chicago"
	}
}

// Location returns the election's time zone.
func (c *ElectionConfig) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("loading timezone %q: %w", c.Timezone, err)
	}

	return loc, nil
}

// ElectionDaySchedule builds the single-day schedule shared by every
// election-day place.
func (c *ElectionConfig) ElectionDaySchedule() ([]schedule.Day, error) {
	loc, err := c.Location()
	if err != nil {
		return nil, err
	}

	day, err := c.day(DayHours{Date: c.ElectionDate, Opens: c.ElectionDayHours.Opens, Closes: c.ElectionDayHours.Closes}, loc)
	if err != nil {
		return nil, fmt.Errorf("election day hours: %w", err)
	}

	return []schedule.Day{day}, nil
}

// EarlyFixedSchedule builds the hour-table schedule shared by every fixed
// early-voting place.
func (c *ElectionConfig) EarlyFixedSchedule() ([]schedule.Day, error) {
	loc, err := c.Location()
	if err != nil {
		return nil, err
	}

	days := make([]schedule.Day, 0, len(c.EarlyFixedHours))

	for i, row := range c.EarlyFixedHours {
		day, err := c.day(row, loc)
		if err != nil {
			return nil, fmt.Errorf("early fixed hours row %d: %w", i, err)
		}

		days = append(days, day)
	}

	return days, nil
}

func (c *ElectionConfig) day(row DayHours, loc *time.Location) (schedule.Day, error) {
	date, err := time.ParseInLocation("2006-01-02", row.Date, loc)
	if err != nil {
		return schedule.Day{}, fmt.Errorf("parsing date %q: %w", row.Date, err)
	}

	if row.Closed {
		return schedule.ClosedDay(date), nil
	}

	opens, err := wallClock(date, row.Opens)
	if err != nil {
		return schedule.Day{}, err
	}

	closes, err := wallClock(date, row.Closes)
	if err != nil {
		return schedule.Day{}, err
	}

	return schedule.OpenDay(opens, closes)
}

func wallClock(date time.Time, hhmm string) (time.Time, error) {
	t, err := time.Parse("15:04", hhmm)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing time %q: %w", hhmm, err)
	}

	return time.Date(date.Year(), date.Month(), date.Day(), t.Hour(), t.Minute(), 0, 0, date.Location()), nil
}
