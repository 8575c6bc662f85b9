// Copyright 2026 The VoteATX Authors
//
// SPDX-License-Identifier: Apache-2.0
package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"

	"github.com/open-austin/voteatx/schedule"
	"github.com/open-austin/voteatx/spatial"
)

// Loader runs the single-threaded ingestion pass that turns CSV source
// files into builder rows. Any malformed field aborts the load: source
// data defects must be fixed upstream, never papered over.
type Loader struct {
	builder *Builder
	cfg     *ElectionConfig
}

// NewLoader wires a loader to a builder and election config.
func NewLoader(builder *Builder, cfg *ElectionConfig) *Loader {
	return &Loader{builder: builder, cfg: cfg}
}

type csvRow struct {
	line   int
	fields map[string]string
}

func (r csvRow) get(name string) (string, error) {
	v, ok := r.fields[name]
	if !ok {
		return "", fmt.Errorf("line %d: missing column %q", r.line, name)
	}

	return v, nil
}

func (r csvRow) coord() (spatial.Coord, error) {
	latStr, err := r.get("latitude")
	if err != nil {
		return spatial.Coord{}, err
	}

	lngStr, err := r.get("longitude")
	if err != nil {
		return spatial.Coord{}, err
	}

	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return spatial.Coord{}, fmt.Errorf("line %d: parsing latitude %q: %w", r.line, latStr, err)
	}

	lng, err := strconv.ParseFloat(lngStr, 64)
	if err != nil {
		return spatial.Coord{}, fmt.Errorf("line %d: parsing longitude %q: %w", r.line, lngStr, err)
	}

	return spatial.NewCoord(lat, lng, spatial.Degrees)
}

func (r csvRow) attrs() (LocationAttrs, error) {
	var attrs LocationAttrs

	fields := []struct {
		name string
		dst  *string
	}{
		{"name", &attrs.Name},
		{"street", &attrs.Street},
		{"city", &attrs.City},
		{"state", &attrs.State},
		{"zip", &attrs.Zip},
	}

	for _, f := range fields {
		v, err := r.get(f.name)
		if err != nil {
			return LocationAttrs{}, err
		}

		*f.dst = v
	}

	return attrs, nil
}

func (r csvRow) optional(name string) string {
	return r.fields[name]
}

// readCSV parses a headered CSV file into rows keyed by column name.
func readCSV(filepath string) ([]csvRow, error) {
	f, err := os.Open(filepath) // #nosec G304 - filepath is provided by admin
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", filepath, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading header of %s: %w", filepath, err)
	}

	var rows []csvRow

	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}

		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", filepath, err)
		}

		fields := make(map[string]string, len(header))
		for i, name := range header {
			if i < len(record) {
				fields[name] = record[i]
			}
		}

		rows = append(rows, csvRow{line: line, fields: fields})
	}

	return rows, nil
}

func progress(description string, n int) *progressbar.ProgressBar {
	if !isatty.IsTerminal(os.Stderr.Fd()) {
		return nil
	}

	return progressbar.NewOptions(n,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
}

func step(bar *progressbar.ProgressBar) {
	if bar != nil {
		_ = bar.Add(1)
	}
}

// LoadElectionDayPlaces ingests the election-day CSV: one row per
// precinct with columns precinct, name, street, city, state, zip,
// longitude, latitude.
func (l *Loader) LoadElectionDayPlaces(filepath string) (int, error) {
	rows, err := readCSV(filepath)
	if err != nil {
		return 0, err
	}

	days, err := l.cfg.ElectionDaySchedule()
	if err != nil {
		return 0, err
	}

	bar := progress("Loading election day places", len(rows))

	for _, row := range rows {
		precinctStr, err := row.get("precinct")
		if err != nil {
			return 0, err
		}

		precinct, err := strconv.Atoi(precinctStr)
		if err != nil {
			return 0, fmt.Errorf("line %d: parsing precinct %q: %w", row.line, precinctStr, err)
		}

		coord, err := row.coord()
		if err != nil {
			return 0, err
		}

		attrs, err := row.attrs()
		if err != nil {
			return 0, err
		}

		if _, err := l.builder.AddElectionDayPlace(precinct, coord, attrs, days, row.optional("notes")); err != nil {
			return 0, fmt.Errorf("line %d: %w", row.line, err)
		}

		step(bar)
	}

	return len(rows), nil
}

// LoadEarlyFixedPlaces ingests the fixed early-voting CSV. Hours come
// from the election config's hour table, shared by every fixed site.
func (l *Loader) LoadEarlyFixedPlaces(filepath string) (int, error) {
	rows, err := readCSV(filepath)
	if err != nil {
		return 0, err
	}

	days, err := l.cfg.EarlyFixedSchedule()
	if err != nil {
		return 0, err
	}

	bar := progress("Loading early voting places", len(rows))

	for _, row := range rows {
		coord, err := row.coord()
		if err != nil {
			return 0, err
		}

		attrs, err := row.attrs()
		if err != nil {
			return 0, err
		}

		if _, err := l.builder.AddEarlyFixedPlace(coord, attrs, days, row.optional("notes")); err != nil {
			return 0, fmt.Errorf("line %d: %w", row.line, err)
		}

		step(bar)
	}

	return len(rows), nil
}

// LoadEarlyMobilePlaces ingests the mobile early-voting CSV: one row per
// open window with columns date, opens, closes in addition to the address
// columns. Rows at an already-seen location append to that place's
// schedule. A row with opens equal to closes records a closed day.
func (l *Loader) LoadEarlyMobilePlaces(filepath string) (int, error) {
	rows, err := readCSV(filepath)
	if err != nil {
		return 0, err
	}

	loc, err := l.cfg.Location()
	if err != nil {
		return 0, err
	}

	bar := progress("Loading mobile voting places", len(rows))

	for _, row := range rows {
		coord, err := row.coord()
		if err != nil {
			return 0, err
		}

		attrs, err := row.attrs()
		if err != nil {
			return 0, err
		}

		day, err := mobileDay(row, loc)
		if err != nil {
			return 0, err
		}

		if _, err := l.builder.AddEarlyMobileRow(coord, attrs, day, row.optional("notes")); err != nil {
			return 0, fmt.Errorf("line %d: %w", row.line, err)
		}

		step(bar)
	}

	return len(rows), nil
}

func mobileDay(row csvRow, loc *time.Location) (schedule.Day, error) {
	dateStr, err := row.get("date")
	if err != nil {
		return schedule.Day{}, err
	}

	date, err := time.ParseInLocation("2006-01-02", dateStr, loc)
	if err != nil {
		return schedule.Day{}, fmt.Errorf("line %d: parsing date %q: %w", row.line, dateStr, err)
	}

	opensStr, err := row.get("opens")
	if err != nil {
		return schedule.Day{}, err
	}

	closesStr, err := row.get("closes")
	if err != nil {
		return schedule.Day{}, err
	}

	if opensStr == closesStr {
		// Source data encodes a closed day as a zero-length window.
		return schedule.ClosedDay(date), nil
	}

	opens, err := wallClock(date, opensStr)
	if err != nil {
		return schedule.Day{}, fmt.Errorf("line %d: %w", row.line, err)
	}

	closes, err := wallClock(date, closesStr)
	if err != nil {
		return schedule.Day{}, fmt.Errorf("line %d: %w", row.line, err)
	}

	day, err := schedule.OpenDay(opens, closes)
	if err != nil {
		return schedule.Day{}, fmt.Errorf("line %d: %w", row.line, err)
	}

	return day, nil
}
