// Copyright 2026 The VoteATX Authors
//
// SPDX-License-Identifier: Apache-2.0
package spatial

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"math"
)

// earthRadiusMiles is the radius used by the flat-earth distance
// approximation. The value is part of the served output contract and must
// not change.
const earthRadiusMiles = 3963.0

// Unit tags the coordinate representation accepted by NewCoord.
type Unit int

const (
	// Degrees means latitude/longitude in decimal degrees.
	Degrees Unit = iota
	// Radians means latitude/longitude in radians.
	Radians
)

// ErrInvalidCoordinateUnit is returned when NewCoord receives an
// unrecognized unit tag.
var ErrInvalidCoordinateUnit = errors.New("spatial: invalid coordinate unit")

// Coord is a geographic point carrying both degree and radian forms.
// The two forms are always mutually consistent (rad = deg * π/180).
type Coord struct {
	LatDeg float64 `json:"lat"`
	LngDeg float64 `json:"lng"`
	LatRad float64 `json:"-"`
	LngRad float64 `json:"-"`
}

// NewCoord builds a Coord from a lat/lng pair expressed in the given unit.
func NewCoord(lat, lng float64, unit Unit) (Coord, error) {
	switch unit {
	case Degrees:
		return Coord{
			LatDeg: lat,
			LngDeg: lng,
			LatRad: lat * math.Pi / 180,
			LngRad: lng * math.Pi / 180,
		}, nil
	case Radians:
		return Coord{
			LatDeg: lat * 180 / math.Pi,
			LngDeg: lng * 180 / math.Pi,
			LatRad: lat,
			LngRad: lng,
		}, nil
	default:
		return Coord{}, fmt.Errorf("%w: %d", ErrInvalidCoordinateUnit, unit)
	}
}

// MustCoord is NewCoord for degree literals in tests and loaders that have
// already validated their input.
func MustCoord(latDeg, lngDeg float64) Coord {
	c, err := NewCoord(latDeg, lngDeg, Degrees)
	if err != nil {
		panic(err)
	}

	return c
}

// String returns a WKT representation of the coordinate.
func (c Coord) String() string {
	return fmt.Sprintf("POINT(%f %f)", c.LngDeg, c.LatDeg)
}

// Value implements the driver.Valuer interface for database serialization.
func (c Coord) Value() (driver.Value, error) {
	return c.String(), nil
}

// Scan implements the sql.Scanner interface for database deserialization.
func (c *Coord) Scan(value interface{}) error {
	if value == nil {
		*c = Coord{}

		return nil
	}

	switch v := value.(type) {
	case []byte:
		var lat, lng float64
		if _, err := fmt.Sscanf(string(v), "POINT (%f %f)", &lng, &lat); err != nil {
			return err
		}

		*c = MustCoord(lat, lng)

		return nil
	case string:
		var lat, lng float64
		if _, err := fmt.Sscanf(v, "POINT (%f %f)", &lng, &lat); err != nil {
			return err
		}

		*c = MustCoord(lat, lng)

		return nil
	default:
		return fmt.Errorf("spatial: unsupported type for Coord scan: %T", value)
	}
}

// Distance calculates the approximate distance between two points in miles
// using an equirectangular projection. The approximation is only valid over
// city-scale spans (under ~20 miles), which is the whole service area. It
// is deliberately not haversine: generated distances must match the
// published dataset.
func Distance(a, b Coord) float64 {
	dx := (b.LngRad - a.LngRad) * math.Cos((a.LatRad+b.LatRad)/2)
	dy := b.LatRad - a.LatRad

	return math.Sqrt(dx*dx+dy*dy) * earthRadiusMiles
}
