// Copyright 2026 The VoteATX Authors
//
// SPDX-License-Identifier: Apache-2.0
package dataset

import (
	"errors"
	"fmt"
	"sort"

	"github.com/open-austin/voteatx/schedule"
	"github.com/open-austin/voteatx/spatial"
)

// ErrPrecinctUnmapped means the region layer names a precinct with no
// ELECTION_DAY place row. That is a data-loading defect, surfaced loudly
// instead of skipped.
var ErrPrecinctUnmapped = errors.New("dataset: precinct has no election-day place")

// Store is the canonical read side: the immutable dataset snapshot served
// for a whole election cycle. Safe for concurrent readers with no
// locking; replaced wholesale, never mutated, when a new cycle is loaded.
type Store struct {
	locations map[int64]*Location
	schedules map[int64]*schedule.Schedule
	places    map[int64]*VotingPlace

	byPrecinct map[int]*VotingPlace
	regions    *spatial.RegionIndex
	fixed      *spatial.SiteIndex
	mobile     *spatial.SiteIndex
}

// Location returns a location by id.
func (s *Store) Location(id int64) (*Location, error) {
	loc, ok := s.locations[id]
	if !ok {
		return nil, fmt.Errorf("dataset: no location %d", id)
	}

	return loc, nil
}

// Schedule returns a schedule by id.
func (s *Store) Schedule(id int64) (*schedule.Schedule, error) {
	sch, ok := s.schedules[id]
	if !ok {
		return nil, fmt.Errorf("dataset: no schedule %d", id)
	}

	return sch, nil
}

// Place returns a voting place by id.
func (s *Store) Place(id int64) (*VotingPlace, error) {
	place, ok := s.places[id]
	if !ok {
		return nil, fmt.Errorf("dataset: no voting place %d", id)
	}

	return place, nil
}

// Places returns every voting place, keyed by id.
func (s *Store) Places() map[int64]*VotingPlace {
	return s.places
}

// Locations returns every location, keyed by id.
func (s *Store) Locations() map[int64]*Location {
	return s.locations
}

// Schedules returns every schedule, keyed by id.
func (s *Store) Schedules() map[int64]*schedule.Schedule {
	return s.schedules
}

// PlaceByPrecinct returns the unique ELECTION_DAY place for a precinct.
// A missing mapping is fatal, not a no-result.
func (s *Store) PlaceByPrecinct(precinct int) (*VotingPlace, error) {
	place, ok := s.byPrecinct[precinct]
	if !ok {
		return nil, fmt.Errorf("%w: precinct %d", ErrPrecinctUnmapped, precinct)
	}

	return place, nil
}

// Regions returns the precinct boundary index.
func (s *Store) Regions() *spatial.RegionIndex {
	return s.regions
}

// FixedSites returns the nearest-site index over EARLY_VOTING_FIXED
// places; site ids are place ids.
func (s *Store) FixedSites() *spatial.SiteIndex {
	return s.fixed
}

// MobileSites returns the nearest-site index over EARLY_VOTING_MOBILE
// places; site ids are place ids.
func (s *Store) MobileSites() *spatial.SiteIndex {
	return s.mobile
}

// Builder assembles a Store from source rows during the single-threaded
// offline build.
type Builder struct {
	registry *Registry

	schedules      map[int64]*schedule.Schedule
	nextScheduleID int64

	places      []*VotingPlace
	nextPlaceID int64
	byPrecinct  map[int]*VotingPlace
	mobileByLoc map[int64]*VotingPlace
	regions     *spatial.RegionIndex
}

// NewBuilder wraps a location registry.
func NewBuilder(registry *Registry) *Builder {
	return &Builder{
		registry:       registry,
		schedules:      make(map[int64]*schedule.Schedule),
		nextScheduleID: 1,
		nextPlaceID:    1,
		byPrecinct:     make(map[int]*VotingPlace),
		mobileByLoc:    make(map[int64]*VotingPlace),
	}
}

// Registry exposes the underlying location registry.
func (b *Builder) Registry() *Registry {
	return b.registry
}

// SetRegions attaches the precinct boundary layer.
func (b *Builder) SetRegions(regions *spatial.RegionIndex) {
	b.regions = regions
}

func (b *Builder) newSchedule(days []schedule.Day) *schedule.Schedule {
	sch := schedule.New(b.nextScheduleID, days)
	b.schedules[sch.ID] = sch
	b.nextScheduleID++

	return sch
}

func (b *Builder) newPlace(t PlaceType, title string, precinct *int, locID, schID int64, notes string) *VotingPlace {
	place := &VotingPlace{
		ID:         b.nextPlaceID,
		Type:       t,
		Title:      title,
		Precinct:   precinct,
		LocationID: locID,
		ScheduleID: schID,
		Notes:      notes,
	}
	b.nextPlaceID++
	b.places = append(b.places, place)

	return place
}

// AddElectionDayPlace creates the one place row for a precinct.
func (b *Builder) AddElectionDayPlace(precinct int, coord spatial.Coord, attrs LocationAttrs, days []schedule.Day, notes string) (*VotingPlace, error) {
	if existing, ok := b.byPrecinct[precinct]; ok {
		return nil, fmt.Errorf("duplicate election-day row for precinct %d (place %d)", precinct, existing.ID)
	}

	loc, err := b.registry.Upsert(coord, attrs)
	if err != nil {
		return nil, err
	}

	sch := b.newSchedule(days)
	p := precinct
	place := b.newPlace(ElectionDay, fmt.Sprintf("Precinct %d", precinct), &p, loc.ID, sch.ID, notes)
	b.byPrecinct[precinct] = place

	return place, nil
}

// AddEarlyFixedPlace creates one fixed early-voting site.
func (b *Builder) AddEarlyFixedPlace(coord spatial.Coord, attrs LocationAttrs, days []schedule.Day, notes string) (*VotingPlace, error) {
	loc, err := b.registry.Upsert(coord, attrs)
	if err != nil {
		return nil, err
	}

	sch := b.newSchedule(days)

	return b.newPlace(EarlyFixed, "Early Voting Location", nil, loc.ID, sch.ID, notes), nil
}

// AddEarlyMobileRow folds one mobile source row into the dataset: the
// first row at a Location creates the place and its schedule, later rows
// at the same Location append one day to the existing schedule.
func (b *Builder) AddEarlyMobileRow(coord spatial.Coord, attrs LocationAttrs, day schedule.Day, notes string) (*VotingPlace, error) {
	loc, err := b.registry.Upsert(coord, attrs)
	if err != nil {
		return nil, err
	}

	if existing, ok := b.mobileByLoc[loc.ID]; ok {
		b.schedules[existing.ScheduleID].Append(day)

		return existing, nil
	}

	sch := b.newSchedule([]schedule.Day{day})
	place := b.newPlace(EarlyMobile, "Mobile Early Voting Location", nil, loc.ID, sch.ID, notes)
	b.mobileByLoc[loc.ID] = place

	return place, nil
}

// Build freezes the assembled data into an immutable Store.
func (b *Builder) Build() (*Store, error) {
	locations := make(map[int64]*Location)
	for _, loc := range b.registry.Locations() {
		locations[loc.ID] = loc
	}

	places := make(map[int64]*VotingPlace)
	for _, place := range b.places {
		places[place.ID] = place
	}

	return assembleStore(locations, b.schedules, places, b.regions)
}

// assembleStore derives the lookup structures and site indexes from the
// built (or reloaded) dataset tables.
func assembleStore(locations map[int64]*Location, schedules map[int64]*schedule.Schedule, places map[int64]*VotingPlace, regions *spatial.RegionIndex) (*Store, error) {
	store := &Store{
		locations:  locations,
		schedules:  schedules,
		places:     places,
		byPrecinct: make(map[int]*VotingPlace),
		regions:    regions,
	}

	if store.regions == nil {
		store.regions = spatial.NewRegionIndex(nil)
	}

	var fixedSites, mobileSites []spatial.Site

	ids := make([]int64, 0, len(places))
	for id := range places {
		ids = append(ids, id)
	}

	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		place := places[id]

		loc, ok := locations[place.LocationID]
		if !ok {
			return nil, fmt.Errorf("place %d references unknown location %d", place.ID, place.LocationID)
		}

		if _, ok := schedules[place.ScheduleID]; !ok {
			return nil, fmt.Errorf("place %d references unknown schedule %d", place.ID, place.ScheduleID)
		}

		site := spatial.Site{ID: place.ID, Coord: loc.Coord}

		switch place.Type {
		case ElectionDay:
			if place.Precinct == nil {
				return nil, fmt.Errorf("election-day place %d has no precinct", place.ID)
			}

			if other, ok := store.byPrecinct[*place.Precinct]; ok {
				return nil, fmt.Errorf("precinct %d mapped to places %d and %d", *place.Precinct, other.ID, place.ID)
			}

			store.byPrecinct[*place.Precinct] = place
		case EarlyFixed:
			fixedSites = append(fixedSites, site)
		case EarlyMobile:
			mobileSites = append(mobileSites, site)
		}
	}

	var err error

	store.fixed, err = spatial.NewSiteIndex(fixedSites)
	if err != nil {
		return nil, fmt.Errorf("indexing fixed sites: %w", err)
	}

	store.mobile, err = spatial.NewSiteIndex(mobileSites)
	if err != nil {
		return nil, fmt.Errorf("indexing mobile sites: %w", err)
	}

	return store, nil
}
