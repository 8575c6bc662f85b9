// Copyright 2026 The VoteATX Authors
//
// SPDX-License-Identifier: Apache-2.0
package spatial

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// square returns a GeoJSON Polygon geometry covering the given bounds.
func square(minLng, minLat, maxLng, maxLat float64) string {
	ring := [][]float64{
		{minLng, minLat}, {maxLng, minLat}, {maxLng, maxLat}, {minLng, maxLat}, {minLng, minLat},
	}

	b, _ := json.Marshal(map[string]any{"type": "Polygon", "coordinates": [][][]float64{ring}})

	return string(b)
}

func featureCollection(features ...string) []byte {
	out := `{"type":"FeatureCollection","features":[`

	for i, f := range features {
		if i > 0 {
			out += ","
		}

		out += f
	}

	return []byte(out + "]}")
}

func feature(precinct int, geometry string) string {
	b, _ := json.Marshal(precinct)

	return `{"type":"Feature","properties":{"precinct":` + string(b) + `},"geometry":` + geometry + `}`
}

func TestParseRegions(t *testing.T) {
	idx, err := ParseRegions(featureCollection(
		feature(245, square(-97.8, 30.2, -97.7, 30.3)),
		feature(101, square(-97.7, 30.2, -97.6, 30.3)),
	))
	require.NoError(t, err)
	require.Len(t, idx.Regions(), 2)
	assert.Equal(t, 245, idx.Regions()[0].Precinct)
}

func TestContaining(t *testing.T) {
	idx, err := ParseRegions(featureCollection(
		feature(245, square(-97.8, 30.2, -97.7, 30.3)),
		feature(101, square(-97.7, 30.2, -97.6, 30.3)),
	))
	require.NoError(t, err)

	region, err := idx.Containing(MustCoord(30.25, -97.75))
	require.NoError(t, err)
	require.NotNil(t, region)
	assert.Equal(t, 245, region.Precinct)

	region, err = idx.Containing(MustCoord(30.25, -97.65))
	require.NoError(t, err)
	require.NotNil(t, region)
	assert.Equal(t, 101, region.Precinct)
}

func TestContainingOutside(t *testing.T) {
	idx, err := ParseRegions(featureCollection(
		feature(245, square(-97.8, 30.2, -97.7, 30.3)),
	))
	require.NoError(t, err)

	region, err := idx.Containing(MustCoord(31.0, -97.75))
	require.NoError(t, err)
	assert.Nil(t, region)
}

func TestContainingOverlapIsFatal(t *testing.T) {
	idx, err := ParseRegions(featureCollection(
		feature(245, square(-97.8, 30.2, -97.7, 30.3)),
		feature(246, square(-97.8, 30.2, -97.7, 30.3)),
	))
	require.NoError(t, err)

	_, err = idx.Containing(MustCoord(30.25, -97.75))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrOverlappingRegions)
}

func TestContainingRespectsHoles(t *testing.T) {
	outer := [][]float64{{-97.8, 30.2}, {-97.7, 30.2}, {-97.7, 30.3}, {-97.8, 30.3}, {-97.8, 30.2}}
	hole := [][]float64{{-97.76, 30.24}, {-97.74, 30.24}, {-97.74, 30.26}, {-97.76, 30.26}, {-97.76, 30.24}}

	geom, _ := json.Marshal(map[string]any{
		"type":        "Polygon",
		"coordinates": [][][]float64{outer, hole},
	})

	idx, err := ParseRegions(featureCollection(feature(245, string(geom))))
	require.NoError(t, err)

	region, err := idx.Containing(MustCoord(30.25, -97.75))
	require.NoError(t, err)
	assert.Nil(t, region, "point in hole must not match")

	region, err = idx.Containing(MustCoord(30.21, -97.79))
	require.NoError(t, err)
	assert.NotNil(t, region)
}

func TestParseRegionsMultiPolygon(t *testing.T) {
	geom := `{"type":"MultiPolygon","coordinates":[` +
		`[[[-97.8,30.2],[-97.7,30.2],[-97.7,30.3],[-97.8,30.3],[-97.8,30.2]]],` +
		`[[[-97.6,30.2],[-97.5,30.2],[-97.5,30.3],[-97.6,30.3],[-97.6,30.2]]]]}`

	idx, err := ParseRegions(featureCollection(feature(245, geom)))
	require.NoError(t, err)

	for _, pt := range []Coord{MustCoord(30.25, -97.75), MustCoord(30.25, -97.55)} {
		region, err := idx.Containing(pt)
		require.NoError(t, err)
		require.NotNil(t, region)
		assert.Equal(t, 245, region.Precinct)
	}
}

func TestParseRegionsRejectsUnknownGeometry(t *testing.T) {
	_, err := ParseRegions(featureCollection(
		`{"type":"Feature","properties":{"precinct":1},"geometry":{"type":"Point","coordinates":[-97.7,30.2]}}`,
	))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported geometry type")
}
