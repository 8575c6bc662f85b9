// Copyright 2026 The VoteATX Authors
//
// SPDX-License-Identifier: Apache-2.0

// Package resolver turns a point-in-time geographic query into a ranked,
// open/closed-annotated list of voting places, and serves it over HTTP.
package resolver

import (
	"encoding/json"
	"fmt"
	"html"
	"strings"

	"github.com/open-austin/voteatx/dataset"
	"github.com/open-austin/voteatx/schedule"
)

// LocationView is the address block of a result.
type LocationView struct {
	Name      string  `json:"name"`
	Address   string  `json:"address"`
	City      string  `json:"city"`
	State     string  `json:"state"`
	Zip       string  `json:"zip"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Icon is one map marker image.
type Icon struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// Marker is the icon/shadow pair shown for a result.
type Marker struct {
	Icon   Icon `json:"icon"`
	Shadow Icon `json:"shadow"`
}

// Result is one voting place answer for a query.
type Result struct {
	Type     dataset.PlaceType `json:"type"`
	Title    string            `json:"title"`
	Precinct *int              `json:"precinct"`
	Region   json.RawMessage   `json:"region"`
	Location LocationView      `json:"location"`
	Marker   Marker            `json:"marker"`
	IsOpen   bool              `json:"is_open"`
	Info     string            `json:"info"`
	// Distance in miles from the query point; zero for election-day
	// results, which are selected by containment rather than proximity.
	Distance float64 `json:"distance,omitempty"`
}

type markerKey struct {
	placeType dataset.PlaceType
	open      bool
}

var markerShadow = Icon{URL: "/mapicons/shadow.png", Width: 59, Height: 32}

// markers selects the icon purely from (place type, open flag); no state,
// no side effects.
var markers = map[markerKey]Marker{
	{dataset.ElectionDay, true}:  {Icon: Icon{URL: "/mapicons/icon_vote.png", Width: 32, Height: 32}, Shadow: markerShadow},
	{dataset.ElectionDay, false}: {Icon: Icon{URL: "/mapicons/icon_vote_closed.png", Width: 32, Height: 32}, Shadow: markerShadow},
	{dataset.EarlyFixed, true}:   {Icon: Icon{URL: "/mapicons/icon_early.png", Width: 32, Height: 32}, Shadow: markerShadow},
	{dataset.EarlyFixed, false}:  {Icon: Icon{URL: "/mapicons/icon_early_closed.png", Width: 32, Height: 32}, Shadow: markerShadow},
	{dataset.EarlyMobile, true}:  {Icon: Icon{URL: "/mapicons/icon_mobile.png", Width: 32, Height: 32}, Shadow: markerShadow},
	{dataset.EarlyMobile, false}: {Icon: Icon{URL: "/mapicons/icon_mobile_closed.png", Width: 32, Height: 32}, Shadow: markerShadow},
}

// MarkerFor returns the marker for a place type and open flag.
func MarkerFor(t dataset.PlaceType, open bool) Marker {
	return markers[markerKey{placeType: t, open: open}]
}

// locationView flattens a dataset location into the wire shape.
func locationView(loc *dataset.Location) LocationView {
	return LocationView{
		Name:      loc.Name,
		Address:   loc.Street,
		City:      loc.City,
		State:     loc.State,
		Zip:       loc.Zip,
		Latitude:  loc.Coord.LatDeg,
		Longitude: loc.Coord.LngDeg,
	}
}

// buildInfo assembles the info-window text: title, election description,
// address block, formatted schedule, optional notes and footer, each block
// separated by a blank line. Fields are HTML-escaped because the consumer
// renders the text as markup.
func buildInfo(cfg Config, place *dataset.VotingPlace, loc *dataset.Location, sch *schedule.Schedule) string {
	blocks := []string{
		"<b>" + html.EscapeString(place.Title) + "</b>",
	}

	if cfg.Description != "" {
		blocks = append(blocks, html.EscapeString(cfg.Description))
	}

	address := fmt.Sprintf("%s\n%s\n%s, %s %s", loc.Name, loc.Street, loc.City, loc.State, loc.Zip)
	blocks = append(blocks, html.EscapeString(address))

	if formatted := sch.Formatted(); formatted != "" {
		blocks = append(blocks, html.EscapeString("Hours of operation:\n"+formatted))
	}

	if place.Notes != "" {
		blocks = append(blocks, html.EscapeString(place.Notes))
	}

	if cfg.InfoFooter != "" {
		blocks = append(blocks, html.EscapeString(cfg.InfoFooter))
	}

	return strings.Join(blocks, "\n\n")
}

// newResult assembles the shared parts of a result.
func newResult(cfg Config, store *dataset.Store, place *dataset.VotingPlace, open bool) (*Result, error) {
	loc, err := store.Location(place.LocationID)
	if err != nil {
		return nil, err
	}

	sch, err := store.Schedule(place.ScheduleID)
	if err != nil {
		return nil, err
	}

	return &Result{
		Type:     place.Type,
		Title:    place.Title,
		Precinct: place.Precinct,
		Location: locationView(loc),
		Marker:   MarkerFor(place.Type, open),
		IsOpen:   open,
		Info:     buildInfo(cfg, place, loc, sch),
	}, nil
}

// scheduleOf is a lookup helper used by the resolvers.
func scheduleOf(store *dataset.Store, place *dataset.VotingPlace) (*schedule.Schedule, error) {
	return store.Schedule(place.ScheduleID)
}
