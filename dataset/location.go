// Copyright 2026 The VoteATX Authors
//
// SPDX-License-Identifier: Apache-2.0

// Package dataset holds the voting-place data model: physical locations,
// typed voting places, the build-time registry that assembles them from
// source rows, and the DuckDB persistence of the built snapshot.
package dataset

import (
	"fmt"
	"log"
	"regexp"

	"github.com/open-austin/voteatx/spatial"
	"github.com/open-austin/voteatx/utils/textutils"
)

// Location is a deduplicated physical address. Identity is the
// coordinate, not the name: two source rows with the exact same coordinate
// are the same Location even when their text differs. Immutable once
// created, never deleted.
type Location struct {
	ID     int64         `json:"id"`
	Name   string        `json:"name"`
	Street string        `json:"street"`
	City   string        `json:"city"`
	State  string        `json:"state"`
	Zip    string        `json:"zip"`
	Coord  spatial.Coord `json:"coord"`
}

// LocationAttrs carries the address text of a source row.
type LocationAttrs struct {
	Name   string
	Street string
	City   string
	State  string
	Zip    string
}

// Bounds is the service-area bounding range enforced at ingest.
type Bounds struct {
	MinLat float64 `json:"min_lat"`
	MaxLat float64 `json:"max_lat"`
	MinLng float64 `json:"min_lng"`
	MaxLng float64 `json:"max_lng"`
}

// coordKey requires bit-for-bit equality: dedup has no distance tolerance.
type coordKey struct {
	lat float64
	lng float64
}

// Registry deduplicates Locations by exact coordinate during dataset
// build. Not safe for concurrent use; the build is single-threaded.
type Registry struct {
	bounds Bounds
	zipRe  *regexp.Regexp
	warnf  func(format string, args ...any)

	byCoord map[coordKey]*Location
	ordered []*Location
	nextID  int64
}

// NewRegistry builds an empty registry validating against the given
// bounds and zip pattern. Warnings go to the standard logger unless
// overridden with SetWarnf.
func NewRegistry(bounds Bounds, zipPattern string) (*Registry, error) {
	zipRe, err := regexp.Compile(zipPattern)
	if err != nil {
		return nil, fmt.Errorf("compiling zip pattern: %w", err)
	}

	return &Registry{
		bounds:  bounds,
		zipRe:   zipRe,
		warnf:   log.Printf,
		byCoord: make(map[coordKey]*Location),
		nextID:  1,
	}, nil
}

// SetWarnf replaces the warning sink. Tests use this to capture drift
// warnings.
func (r *Registry) SetWarnf(warnf func(format string, args ...any)) {
	r.warnf = warnf
}

// Upsert returns the Location for the given coordinate, creating it on
// first sight. On a repeated coordinate the first-stored attributes win;
// each differing attribute raises a non-fatal warning. Out-of-bounds
// coordinates and malformed zips are fatal: bad source data must be fixed
// upstream.
func (r *Registry) Upsert(coord spatial.Coord, attrs LocationAttrs) (*Location, error) {
	key := coordKey{lat: coord.LatDeg, lng: coord.LngDeg}

	if existing, ok := r.byCoord[key]; ok {
		r.warnOnDrift(existing, attrs)

		return existing, nil
	}

	if err := r.validate(coord, attrs); err != nil {
		return nil, err
	}

	loc := &Location{
		ID:     r.nextID,
		Name:   attrs.Name,
		Street: attrs.Street,
		City:   attrs.City,
		State:  attrs.State,
		Zip:    attrs.Zip,
		Coord:  coord,
	}
	r.nextID++

	r.byCoord[key] = loc
	r.ordered = append(r.ordered, loc)

	return loc, nil
}

// Locations returns the registered locations in insertion order.
func (r *Registry) Locations() []*Location {
	return r.ordered
}

func (r *Registry) validate(coord spatial.Coord, attrs LocationAttrs) error {
	if coord.LatDeg < r.bounds.MinLat || coord.LatDeg > r.bounds.MaxLat {
		return fmt.Errorf("latitude %f outside bounds [%f, %f] for %q",
			coord.LatDeg, r.bounds.MinLat, r.bounds.MaxLat, attrs.Name)
	}

	if coord.LngDeg < r.bounds.MinLng || coord.LngDeg > r.bounds.MaxLng {
		return fmt.Errorf("longitude %f outside bounds [%f, %f] for %q",
			coord.LngDeg, r.bounds.MinLng, r.bounds.MaxLng, attrs.Name)
	}

	if !r.zipRe.MatchString(attrs.Zip) {
		return fmt.Errorf("zip %q does not match %q for %q", attrs.Zip, r.zipRe, attrs.Name)
	}

	return nil
}

func (r *Registry) warnOnDrift(existing *Location, attrs LocationAttrs) {
	fields := []struct {
		name   string
		stored string
		row    string
	}{
		{"name", existing.Name, attrs.Name},
		{"street", existing.Street, attrs.Street},
		{"city", existing.City, attrs.City},
		{"state", existing.State, attrs.State},
		{"zip", existing.Zip, attrs.Zip},
	}

	for _, f := range fields {
		if textutils.LowerASCIIFolding(f.stored) != textutils.LowerASCIIFolding(f.row) {
			r.warnf("location %d at %s: %s mismatch: keeping %q, ignoring %q",
				existing.ID, existing.Coord, f.name, f.stored, f.row)
		}
	}
}
