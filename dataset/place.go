// Copyright 2026 The VoteATX Authors
//
// SPDX-License-Identifier: Apache-2.0
package dataset

import (
	"encoding/json"
	"fmt"
)

// PlaceType is the tagged variant of a voting place. Behavior that varies
// per type (marker selection, result shape) is selected by lookup, not
// inheritance.
type PlaceType int

const (
	// ElectionDay is a precinct's election-day polling place.
	ElectionDay PlaceType = iota
	// EarlyFixed is an early-voting site open for the whole early period.
	EarlyFixed
	// EarlyMobile is an early-voting site open only for narrow windows.
	EarlyMobile
)

var placeTypeNames = map[PlaceType]string{
	ElectionDay: "ELECTION_DAY",
	EarlyFixed:  "EARLY_VOTING_FIXED",
	EarlyMobile: "EARLY_VOTING_MOBILE",
}

var placeTypesByName = map[string]PlaceType{
	"ELECTION_DAY":        ElectionDay,
	"EARLY_VOTING_FIXED":  EarlyFixed,
	"EARLY_VOTING_MOBILE": EarlyMobile,
}

func (t PlaceType) String() string {
	if name, ok := placeTypeNames[t]; ok {
		return name
	}

	return fmt.Sprintf("PlaceType(%d)", int(t))
}

// ParsePlaceType maps a wire/storage name back to a PlaceType.
func ParsePlaceType(name string) (PlaceType, error) {
	t, ok := placeTypesByName[name]
	if !ok {
		return 0, fmt.Errorf("unknown place type %q", name)
	}

	return t, nil
}

// MarshalJSON renders the wire name.
func (t PlaceType) MarshalJSON() ([]byte, error) {
	name, ok := placeTypeNames[t]
	if !ok {
		return nil, fmt.Errorf("unknown place type %d", int(t))
	}

	return json.Marshal(name)
}

// UnmarshalJSON parses the wire name.
func (t *PlaceType) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}

	parsed, err := ParsePlaceType(name)
	if err != nil {
		return err
	}

	*t = parsed

	return nil
}

// VotingPlace binds one Location and one Schedule under a place type.
// Precinct is set if and only if Type is ElectionDay, and is unique across
// the dataset.
type VotingPlace struct {
	ID         int64     `json:"id"`
	Type       PlaceType `json:"type"`
	Title      string    `json:"title"`
	Precinct   *int      `json:"precinct,omitempty"`
	LocationID int64     `json:"location_id"`
	ScheduleID int64     `json:"schedule_id"`
	Notes      string    `json:"notes,omitempty"`
}
