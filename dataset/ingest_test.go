// Copyright 2026 The VoteATX Authors
//
// SPDX-License-Identifier: Apache-2.0
package dataset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCSV(t *testing.T, name, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	return path
}

func newTestLoader(t *testing.T) (*Loader, *Builder) {
	t.Helper()

	cfg, err := LoadElectionConfig(writeTestConfig(t, testConfigJSON))
	require.NoError(t, err)

	b := NewBuilder(newTestRegistry(t))

	return NewLoader(b, cfg), b
}

func TestLoadElectionDayPlaces(t *testing.T) {
	loader, b := newTestLoader(t)

	path := writeCSV(t, "eday.csv", `precinct,name,street,city,state,zip,longitude,latitude,notes
245,Fire Station 2,506 West MLK,Austin,TX,78705,-97.7341,30.2849,
101,Zilker Elementary,1900 Bluebonnet Ln,Austin,TX,78704,-97.7600,30.2500,Enter from rear
`)

	n, err := loader.LoadElectionDayPlaces(path)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	store, err := b.Build()
	require.NoError(t, err)

	place, err := store.PlaceByPrecinct(245)
	require.NoError(t, err)
	assert.Equal(t, "Precinct 245", place.Title)
	assert.Empty(t, place.Notes)

	place, err = store.PlaceByPrecinct(101)
	require.NoError(t, err)
	assert.Equal(t, "Enter from rear", place.Notes)

	sch, err := store.Schedule(place.ScheduleID)
	require.NoError(t, err)
	assert.Equal(t, "Tue, Nov 5: 7am - 7pm", sch.Formatted())
}

func TestLoadElectionDayPlacesBadRow(t *testing.T) {
	loader, _ := newTestLoader(t)

	path := writeCSV(t, "eday.csv", `precinct,name,street,city,state,zip,longitude,latitude
abc,Fire Station 2,506 West MLK,Austin,TX,78705,-97.7341,30.2849
`)

	_, err := loader.LoadElectionDayPlaces(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
}

func TestLoadElectionDayPlacesMissingColumn(t *testing.T) {
	loader, _ := newTestLoader(t)

	path := writeCSV(t, "eday.csv", `precinct,name,street,city,state,zip,longitude
245,Fire Station 2,506 West MLK,Austin,TX,78705,-97.7341
`)

	_, err := loader.LoadElectionDayPlaces(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `missing column "latitude"`)
}

func TestLoadEarlyFixedPlaces(t *testing.T) {
	loader, b := newTestLoader(t)

	path := writeCSV(t, "fixed.csv", `name,street,city,state,zip,longitude,latitude
City Hall,301 West 2nd St,Austin,TX,78701,-97.7470,30.2653
`)

	n, err := loader.LoadEarlyFixedPlaces(path)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	store, err := b.Build()
	require.NoError(t, err)
	require.Len(t, store.Places(), 1)

	for _, place := range store.Places() {
		assert.Equal(t, EarlyFixed, place.Type)

		sch, err := store.Schedule(place.ScheduleID)
		require.NoError(t, err)
		assert.Len(t, sch.Days(), 3, "hours come from the config table")
	}
}

func TestLoadEarlyMobilePlaces(t *testing.T) {
	loader, b := newTestLoader(t)

	path := writeCSV(t, "mobile.csv", `name,street,city,state,zip,longitude,latitude,date,opens,closes
Mobile Unit,2100 Barton Springs Rd,Austin,TX,78704,-97.7300,30.2800,2013-10-21,09:00,17:00
Mobile Unit,2100 Barton Springs Rd,Austin,TX,78704,-97.7300,30.2800,2013-10-22,09:00,09:00
Mobile Unit,2100 Barton Springs Rd,Austin,TX,78704,-97.7300,30.2800,2013-10-23,09:00,17:00
`)

	n, err := loader.LoadEarlyMobilePlaces(path)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	store, err := b.Build()
	require.NoError(t, err)
	require.Len(t, store.Places(), 1, "rows at one location fold into one place")

	for _, place := range store.Places() {
		assert.Equal(t, EarlyMobile, place.Type)

		sch, err := store.Schedule(place.ScheduleID)
		require.NoError(t, err)
		require.Len(t, sch.Days(), 3)
		assert.Nil(t, sch.Days()[1].Open, "zero-length window reads as a closed day")
		assert.Equal(t, "Mon, Oct 21: 9am - 5pm\nTue, Oct 22: closed\nWed, Oct 23: 9am - 5pm", sch.Formatted())
	}
}
