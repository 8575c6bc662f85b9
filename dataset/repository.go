// Copyright 2026 The VoteATX Authors
//
// SPDX-License-Identifier: Apache-2.0
package dataset

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/open-austin/voteatx/schedule"
	"github.com/open-austin/voteatx/spatial"
)

// Repository persists a built dataset and loads it back for serving.
type Repository interface {
	// CreateSchema creates the database schema.
	CreateSchema() error
	// SaveStore writes a freshly built dataset, replacing any previous one.
	SaveStore(store *Store) error
	// LoadStore reads the dataset back into an immutable snapshot.
	LoadStore(cfg *ElectionConfig) (*Store, error)
}

type sqlRepository struct {
	db *sql.DB
}

// NewSQLRepository wraps a DuckDB handle.
func NewSQLRepository(db *sql.DB) Repository {
	return &sqlRepository{db: db}
}

func (r *sqlRepository) CreateSchema() error {
	_, err := r.db.Exec(`
		CREATE TABLE IF NOT EXISTS locations (
			id BIGINT PRIMARY KEY,
			name VARCHAR NOT NULL,
			street VARCHAR NOT NULL,
			city VARCHAR NOT NULL,
			state VARCHAR NOT NULL,
			zip VARCHAR NOT NULL,
			lat DOUBLE NOT NULL,
			lng DOUBLE NOT NULL
		);
		CREATE TABLE IF NOT EXISTS schedule_days (
			schedule_id BIGINT NOT NULL,
			seq INTEGER NOT NULL,
			date VARCHAR NOT NULL,
			opens VARCHAR,
			closes VARCHAR,
			closed BOOLEAN NOT NULL,
			PRIMARY KEY (schedule_id, seq)
		);
		CREATE TABLE IF NOT EXISTS voting_places (
			id BIGINT PRIMARY KEY,
			type VARCHAR NOT NULL,
			title VARCHAR NOT NULL,
			precinct INTEGER,
			location_id BIGINT NOT NULL,
			schedule_id BIGINT NOT NULL,
			notes VARCHAR
		);
		CREATE TABLE IF NOT EXISTS regions (
			precinct INTEGER PRIMARY KEY,
			geometry VARCHAR NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}

	return nil
}

func (r *sqlRepository) SaveStore(store *Store) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	for _, table := range []string{"locations", "schedule_days", "voting_places", "regions"} {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			return fmt.Errorf("clearing %s: %w", table, err)
		}
	}

	if err := saveLocations(tx, store); err != nil {
		return err
	}

	if err := saveSchedules(tx, store); err != nil {
		return err
	}

	if err := savePlaces(tx, store); err != nil {
		return err
	}

	if err := saveRegions(tx, store); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing dataset: %w", err)
	}

	return nil
}

func saveLocations(tx *sql.Tx, store *Store) error {
	stmt, err := tx.Prepare(`
		INSERT INTO locations (id, name, street, city, state, zip, lat, lng)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing locations insert: %w", err)
	}
	defer stmt.Close()

	for _, loc := range sortedByKey(store.Locations()) {
		_, err := stmt.Exec(loc.ID, loc.Name, loc.Street, loc.City, loc.State, loc.Zip,
			loc.Coord.LatDeg, loc.Coord.LngDeg)
		if err != nil {
			return fmt.Errorf("inserting location %d: %w", loc.ID, err)
		}
	}

	return nil
}

func saveSchedules(tx *sql.Tx, store *Store) error {
	stmt, err := tx.Prepare(`
		INSERT INTO schedule_days (schedule_id, seq, date, opens, closes, closed)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing schedule insert: %w", err)
	}
	defer stmt.Close()

	for _, sch := range sortedByKey(store.Schedules()) {
		for seq, day := range sch.Days() {
			date := day.Date.Format("2006-01-02")

			var opens, closes any

			closed := day.Open == nil
			if !closed {
				opens = day.Open.Opens.Format("15:04")
				closes = day.Open.Closes.Format("15:04")
			}

			if _, err := stmt.Exec(sch.ID, seq, date, opens, closes, closed); err != nil {
				return fmt.Errorf("inserting schedule %d day %d: %w", sch.ID, seq, err)
			}
		}
	}

	return nil
}

func savePlaces(tx *sql.Tx, store *Store) error {
	stmt, err := tx.Prepare(`
		INSERT INTO voting_places (id, type, title, precinct, location_id, schedule_id, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing places insert: %w", err)
	}
	defer stmt.Close()

	for _, place := range sortedByKey(store.Places()) {
		var precinct any
		if place.Precinct != nil {
			precinct = *place.Precinct
		}

		_, err := stmt.Exec(place.ID, place.Type.String(), place.Title, precinct,
			place.LocationID, place.ScheduleID, place.Notes)
		if err != nil {
			return fmt.Errorf("inserting place %d: %w", place.ID, err)
		}
	}

	return nil
}

func saveRegions(tx *sql.Tx, store *Store) error {
	stmt, err := tx.Prepare(`INSERT INTO regions (precinct, geometry) VALUES (?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing regions insert: %w", err)
	}
	defer stmt.Close()

	for _, region := range store.Regions().Regions() {
		if _, err := stmt.Exec(region.Precinct, string(region.Geometry)); err != nil {
			return fmt.Errorf("inserting region %d: %w", region.Precinct, err)
		}
	}

	return nil
}

func (r *sqlRepository) LoadStore(cfg *ElectionConfig) (*Store, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	locations, err := r.loadLocations()
	if err != nil {
		return nil, err
	}

	schedules, err := r.loadSchedules(loc)
	if err != nil {
		return nil, err
	}

	places, err := r.loadPlaces()
	if err != nil {
		return nil, err
	}

	regions, err := r.loadRegions()
	if err != nil {
		return nil, err
	}

	return assembleStore(locations, schedules, places, regions)
}

func (r *sqlRepository) loadLocations() (map[int64]*Location, error) {
	rows, err := r.db.Query(`SELECT id, name, street, city, state, zip, lat, lng FROM locations`)
	if err != nil {
		return nil, fmt.Errorf("querying locations: %w", err)
	}
	defer rows.Close()

	locations := make(map[int64]*Location)

	for rows.Next() {
		var loc Location

		var lat, lng float64

		if err := rows.Scan(&loc.ID, &loc.Name, &loc.Street, &loc.City, &loc.State, &loc.Zip, &lat, &lng); err != nil {
			return nil, fmt.Errorf("scanning location: %w", err)
		}

		loc.Coord, err = spatial.NewCoord(lat, lng, spatial.Degrees)
		if err != nil {
			return nil, err
		}

		locations[loc.ID] = &loc
	}

	return locations, rows.Err()
}

func (r *sqlRepository) loadSchedules(loc *time.Location) (map[int64]*schedule.Schedule, error) {
	rows, err := r.db.Query(`
		SELECT schedule_id, date, opens, closes, closed
		FROM schedule_days
		ORDER BY schedule_id, seq
	`)
	if err != nil {
		return nil, fmt.Errorf("querying schedule days: %w", err)
	}
	defer rows.Close()

	schedules := make(map[int64]*schedule.Schedule)

	for rows.Next() {
		var (
			id            int64
			dateStr       string
			opens, closes sql.NullString
			closed        bool
		)

		if err := rows.Scan(&id, &dateStr, &opens, &closes, &closed); err != nil {
			return nil, fmt.Errorf("scanning schedule day: %w", err)
		}

		date, err := time.ParseInLocation("2006-01-02", dateStr, loc)
		if err != nil {
			return nil, fmt.Errorf("schedule %d: parsing date %q: %w", id, dateStr, err)
		}

		day := schedule.ClosedDay(date)

		if !closed {
			opensAt, err := wallClock(date, opens.String)
			if err != nil {
				return nil, fmt.Errorf("schedule %d: %w", id, err)
			}

			closesAt, err := wallClock(date, closes.String)
			if err != nil {
				return nil, fmt.Errorf("schedule %d: %w", id, err)
			}

			day, err = schedule.OpenDay(opensAt, closesAt)
			if err != nil {
				return nil, fmt.Errorf("schedule %d: %w", id, err)
			}
		}

		sch, ok := schedules[id]
		if !ok {
			sch = schedule.New(id, nil)
			schedules[id] = sch
		}

		sch.Append(day)
	}

	return schedules, rows.Err()
}

func (r *sqlRepository) loadPlaces() (map[int64]*VotingPlace, error) {
	rows, err := r.db.Query(`
		SELECT id, type, title, precinct, location_id, schedule_id, notes
		FROM voting_places
	`)
	if err != nil {
		return nil, fmt.Errorf("querying voting places: %w", err)
	}
	defer rows.Close()

	places := make(map[int64]*VotingPlace)

	for rows.Next() {
		var (
			place    VotingPlace
			typeName string
			precinct sql.NullInt32
			notes    sql.NullString
		)

		if err := rows.Scan(&place.ID, &typeName, &place.Title, &precinct,
			&place.LocationID, &place.ScheduleID, &notes); err != nil {
			return nil, fmt.Errorf("scanning voting place: %w", err)
		}

		place.Type, err = ParsePlaceType(typeName)
		if err != nil {
			return nil, fmt.Errorf("place %d: %w", place.ID, err)
		}

		if precinct.Valid {
			p := int(precinct.Int32)
			place.Precinct = &p
		}

		place.Notes = notes.String
		places[place.ID] = &place
	}

	return places, rows.Err()
}

func (r *sqlRepository) loadRegions() (*spatial.RegionIndex, error) {
	rows, err := r.db.Query(`SELECT precinct, geometry FROM regions`)
	if err != nil {
		return nil, fmt.Errorf("querying regions: %w", err)
	}
	defer rows.Close()

	var regions []*spatial.Region

	for rows.Next() {
		var (
			precinct int
			geometry string
		)

		if err := rows.Scan(&precinct, &geometry); err != nil {
			return nil, fmt.Errorf("scanning region: %w", err)
		}

		polygons, err := spatial.ParseGeometry(json.RawMessage(geometry))
		if err != nil {
			return nil, fmt.Errorf("region %d: %w", precinct, err)
		}

		regions = append(regions, &spatial.Region{
			Precinct: precinct,
			Polygons: polygons,
			Geometry: json.RawMessage(geometry),
		})
	}

	return spatial.NewRegionIndex(regions), rows.Err()
}

// sortedByKey returns map values ordered by their int64 key for
// deterministic writes.
func sortedByKey[V any](m map[int64]V) []V {
	keys := make([]int64, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}

	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	values := make([]V, 0, len(keys))
	for _, k := range keys {
		values = append(values, m[k])
	}

	return values
}
