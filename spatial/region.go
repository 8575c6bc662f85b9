// Copyright 2026 The VoteATX Authors
//
// SPDX-License-Identifier: Apache-2.0
package spatial

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// ErrOverlappingRegions signals a region layer whose polygons do not
// partition space: more than one polygon claimed the queried point. The
// dataset is corrupt and must not be served.
var ErrOverlappingRegions = errors.New("spatial: overlapping region polygons")

// Ring is a closed loop of vertices following the GeoJSON convention.
type Ring []Coord

// Polygon is a set of rings: the first is the outer boundary, the rest are
// holes.
type Polygon struct {
	Rings []Ring
	// BBox is minLng, minLat, maxLng, maxLat, used as a containment
	// prefilter.
	BBox [4]float64
}

// Region is one precinct boundary from the region layer.
type Region struct {
	// Precinct is the electoral subdivision identifier.
	Precinct int
	// Polygons holds the precinct geometry (MultiPolygon aware).
	Polygons []Polygon
	// Geometry is the raw GeoJSON geometry, retained for map overlays.
	Geometry json.RawMessage
}

// RegionIndex answers point-in-polygon containment over the precinct
// layer. It is immutable after construction and safe for concurrent use.
type RegionIndex struct {
	regions []*Region
}

// NewRegionIndex builds an index over the given regions.
func NewRegionIndex(regions []*Region) *RegionIndex {
	return &RegionIndex{regions: regions}
}

// Regions returns all indexed regions.
func (idx *RegionIndex) Regions() []*Region {
	return idx.regions
}

// Containing returns the region whose geometry contains pt, or nil when
// the point is outside every region. More than one containing region is a
// data-integrity failure and returns ErrOverlappingRegions.
func (idx *RegionIndex) Containing(pt Coord) (*Region, error) {
	var found *Region

	for _, region := range idx.regions {
		if !region.contains(pt) {
			continue
		}

		if found != nil {
			return nil, fmt.Errorf("%w: precincts %d and %d both contain %s",
				ErrOverlappingRegions, found.Precinct, region.Precinct, pt)
		}

		found = region
	}

	return found, nil
}

func (r *Region) contains(pt Coord) bool {
	for i := range r.Polygons {
		if polygonContains(pt, &r.Polygons[i]) {
			return true
		}
	}

	return false
}

// polygonContains reports whether pt falls inside the outer ring and
// outside every hole.
func polygonContains(pt Coord, poly *Polygon) bool {
	if len(poly.Rings) == 0 {
		return false
	}

	if !inBBox(pt, poly.BBox) {
		return false
	}

	if !ringContains(pt, poly.Rings[0]) {
		return false
	}

	for i := 1; i < len(poly.Rings); i++ {
		if ringContains(pt, poly.Rings[i]) {
			return false
		}
	}

	return true
}

// ringContains is the even-odd ray casting test.
func ringContains(pt Coord, ring Ring) bool {
	n := len(ring)
	if n < 3 {
		return false
	}

	inside := false
	x, y := pt.LngDeg, pt.LatDeg

	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		xi, yi := ring[i].LngDeg, ring[i].LatDeg
		xj, yj := ring[j].LngDeg, ring[j].LatDeg

		if ((yi > y) != (yj > y)) && (x < (xj-xi)*(y-yi)/(yj-yi+1e-12)+xi) {
			inside = !inside
		}
	}

	return inside
}

func inBBox(pt Coord, b [4]float64) bool {
	return pt.LngDeg >= b[0] && pt.LatDeg >= b[1] && pt.LngDeg <= b[2] && pt.LatDeg <= b[3]
}

// LoadRegions loads the precinct boundary layer from a GeoJSON
// FeatureCollection file. Each feature must carry an integer precinct
// property and a Polygon or MultiPolygon geometry.
func LoadRegions(filepath string) (*RegionIndex, error) {
	data, err := os.ReadFile(filepath) // #nosec G304 - filepath is provided by admin
	if err != nil {
		return nil, fmt.Errorf("reading regions file: %w", err)
	}

	return ParseRegions(data)
}

// ParseRegions parses a GeoJSON FeatureCollection of precinct boundaries.
func ParseRegions(data []byte) (*RegionIndex, error) {
	var geoJSON struct {
		Features []struct {
			Geometry   json.RawMessage `json:"geometry"`
			Properties struct {
				Precinct int `json:"precinct"`
			} `json:"properties"`
		} `json:"features"`
	}

	if err := json.Unmarshal(data, &geoJSON); err != nil {
		return nil, fmt.Errorf("parsing regions JSON: %w", err)
	}

	regions := make([]*Region, 0, len(geoJSON.Features))

	for i, feature := range geoJSON.Features {
		polygons, err := ParseGeometry(feature.Geometry)
		if err != nil {
			return nil, fmt.Errorf("feature %d (precinct %d): %w", i, feature.Properties.Precinct, err)
		}

		regions = append(regions, &Region{
			Precinct: feature.Properties.Precinct,
			Polygons: polygons,
			Geometry: feature.Geometry,
		})
	}

	return NewRegionIndex(regions), nil
}

// ParseGeometry parses a GeoJSON Polygon or MultiPolygon geometry into
// containment-ready polygons.
func ParseGeometry(raw json.RawMessage) ([]Polygon, error) {
	var head struct {
		Type string `json:"type"`
	}

	if err := json.Unmarshal(raw, &head); err != nil {
		return nil, fmt.Errorf("parsing geometry: %w", err)
	}

	switch head.Type {
	case "Polygon":
		var g struct {
			Coordinates [][][]float64 `json:"coordinates"`
		}

		if err := json.Unmarshal(raw, &g); err != nil {
			return nil, fmt.Errorf("parsing Polygon coordinates: %w", err)
		}

		poly, err := buildPolygon(g.Coordinates)
		if err != nil {
			return nil, err
		}

		return []Polygon{poly}, nil
	case "MultiPolygon":
		var g struct {
			Coordinates [][][][]float64 `json:"coordinates"`
		}

		if err := json.Unmarshal(raw, &g); err != nil {
			return nil, fmt.Errorf("parsing MultiPolygon coordinates: %w", err)
		}

		polygons := make([]Polygon, 0, len(g.Coordinates))

		for _, rings := range g.Coordinates {
			poly, err := buildPolygon(rings)
			if err != nil {
				return nil, err
			}

			polygons = append(polygons, poly)
		}

		return polygons, nil
	default:
		return nil, fmt.Errorf("unsupported geometry type %q", head.Type)
	}
}

func buildPolygon(rings [][][]float64) (Polygon, error) {
	poly := Polygon{
		Rings: make([]Ring, 0, len(rings)),
		BBox:  [4]float64{180, 90, -180, -90},
	}

	for _, ring := range rings {
		r := make(Ring, 0, len(ring))

		for _, pos := range ring {
			if len(pos) < 2 {
				return Polygon{}, fmt.Errorf("position has %d coordinates, want 2", len(pos))
			}

			// GeoJSON positions are [lng, lat]
			r = append(r, MustCoord(pos[1], pos[0]))
		}

		poly.Rings = append(poly.Rings, r)
	}

	if len(poly.Rings) > 0 {
		for _, pt := range poly.Rings[0] {
			poly.BBox[0] = min(poly.BBox[0], pt.LngDeg)
			poly.BBox[1] = min(poly.BBox[1], pt.LatDeg)
			poly.BBox[2] = max(poly.BBox[2], pt.LngDeg)
			poly.BBox[3] = max(poly.BBox[3], pt.LatDeg)
		}
	}

	return poly, nil
}
