// Copyright 2026 The VoteATX Authors
//
// SPDX-License-Identifier: Apache-2.0
package dataset

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/open-austin/voteatx/spatial"
)

var testBounds = Bounds{MinLat: 30.0, MaxLat: 30.6, MinLng: -98.2, MaxLng: -97.4}

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()

	r, err := NewRegistry(testBounds, `^\d{5}$`)
	require.NoError(t, err)

	return r
}

func TestRegistryDedupByExactCoordinate(t *testing.T) {
	r := newTestRegistry(t)

	var warnings []string
	r.SetWarnf(func(format string, args ...any) {
		warnings = append(warnings, fmt.Sprintf(format, args...))
	})

	coord := spatial.MustCoord(30.2849, -97.7341)

	first, err := r.Upsert(coord, LocationAttrs{
		Name: "Fiesta Mart", Street: "3909 North IH 35", City: "Austin", State: "TX", Zip: "78722",
	})
	require.NoError(t, err)

	second, err := r.Upsert(coord, LocationAttrs{
		Name: "Fiesta Mart", Street: "3909 North IH 35", City: "AUSTIN", State: "TX", Zip: "78722",
	})
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Len(t, r.Locations(), 1)
	assert.Empty(t, warnings, "case-only difference is not drift")
}

func TestRegistryWarnsOnAttributeDrift(t *testing.T) {
	r := newTestRegistry(t)

	var warnings []string
	r.SetWarnf(func(format string, args ...any) {
		warnings = append(warnings, fmt.Sprintf(format, args...))
	})

	coord := spatial.MustCoord(30.2849, -97.7341)

	first, err := r.Upsert(coord, LocationAttrs{
		Name: "Fiesta Mart", Street: "3909 North IH 35", City: "Austin", State: "TX", Zip: "78722",
	})
	require.NoError(t, err)

	second, err := r.Upsert(coord, LocationAttrs{
		Name: "Fiesta Mart Central", Street: "3909 North IH 35", City: "Austin", State: "TX", Zip: "78722",
	})
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, "Fiesta Mart", second.Name, "first-stored attributes win")
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "name mismatch")
}

func TestRegistryDistinctCoordinatesDistinctLocations(t *testing.T) {
	r := newTestRegistry(t)

	a, err := r.Upsert(spatial.MustCoord(30.2849, -97.7341), LocationAttrs{Name: "A", Zip: "78701"})
	require.NoError(t, err)

	// Nearly identical is still a different location: dedup is bit-exact.
	b, err := r.Upsert(spatial.MustCoord(30.28490000001, -97.7341), LocationAttrs{Name: "B", Zip: "78701"})
	require.NoError(t, err)

	assert.NotEqual(t, a.ID, b.ID)
	assert.Len(t, r.Locations(), 2)
}

func TestRegistryRejectsOutOfBounds(t *testing.T) {
	r := newTestRegistry(t)

	_, err := r.Upsert(spatial.MustCoord(31.5, -97.7341), LocationAttrs{Name: "Waco", Zip: "76701"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "latitude")

	_, err = r.Upsert(spatial.MustCoord(30.2849, -95.0), LocationAttrs{Name: "Houston-ish", Zip: "77001"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "longitude")
}

func TestRegistryRejectsMalformedZip(t *testing.T) {
	r := newTestRegistry(t)

	_, err := r.Upsert(spatial.MustCoord(30.2849, -97.7341), LocationAttrs{Name: "A", Zip: "787"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "zip")
}

func TestRegistryDedupSkipsValidation(t *testing.T) {
	r := newTestRegistry(t)
	r.SetWarnf(func(string, ...any) {})

	coord := spatial.MustCoord(30.2849, -97.7341)

	_, err := r.Upsert(coord, LocationAttrs{Name: "A", Zip: "78701"})
	require.NoError(t, err)

	// A repeated coordinate resolves before validation, so a bad zip on
	// the repeat row does not fail the build.
	loc, err := r.Upsert(coord, LocationAttrs{Name: "A", Zip: "bad"})
	require.NoError(t, err)
	assert.Equal(t, "78701", loc.Zip)
}
