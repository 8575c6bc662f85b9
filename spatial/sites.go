// Copyright 2026 The VoteATX Authors
//
// SPDX-License-Identifier: Apache-2.0
package spatial

import (
	"fmt"
	"sort"

	"github.com/uber/h3-go/v4"
)

// siteCellResolution is the H3 resolution used to bucket sites. Res 7
// hexagons have an edge of roughly 0.76 miles, a reasonable granularity
// for a county-scale site set.
const siteCellResolution = 7

// cellEdgeMiles approximates the res-7 hexagon edge length, used to size
// the candidate grid disk for a query radius.
const cellEdgeMiles = 0.76

// Site is an indexed point of interest.
type Site struct {
	ID    int64
	Coord Coord
}

// SiteDistance is a site paired with its distance from a query point.
type SiteDistance struct {
	ID       int64
	Distance float64
}

// SiteIndex orders sites by distance from a query point. Sites are
// bucketed by H3 cell so a bounded query only computes distances for
// cells within reach. The index is immutable after construction.
type SiteIndex struct {
	sites  []Site
	byCell map[h3.Cell][]int
}

// NewSiteIndex builds an index over the given sites.
func NewSiteIndex(sites []Site) (*SiteIndex, error) {
	idx := &SiteIndex{
		sites:  sites,
		byCell: make(map[h3.Cell][]int),
	}

	for i, site := range sites {
		cell, err := h3.LatLngToCell(h3.NewLatLng(site.Coord.LatDeg, site.Coord.LngDeg), siteCellResolution)
		if err != nil {
			return nil, fmt.Errorf("indexing site %d: %w", site.ID, err)
		}

		idx.byCell[cell] = append(idx.byCell[cell], i)
	}

	return idx, nil
}

// Len returns the number of indexed sites.
func (idx *SiteIndex) Len() int {
	return len(idx.sites)
}

// Nearest returns every site within maxDistance miles of pt, ascending by
// distance. Sites at equal distance keep their insertion order.
func (idx *SiteIndex) Nearest(pt Coord, maxDistance float64) ([]SiteDistance, error) {
	candidates, err := idx.candidates(pt, maxDistance)
	if err != nil {
		return nil, err
	}

	results := make([]SiteDistance, 0, len(candidates))

	for _, i := range candidates {
		d := Distance(pt, idx.sites[i].Coord)
		if d <= maxDistance {
			results = append(results, SiteDistance{ID: idx.sites[i].ID, Distance: d})
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Distance < results[j].Distance
	})

	return results, nil
}

// candidates returns indexes of sites in cells within reach of pt, in
// insertion order. Falls back to a full scan when the disk would cover
// most of the index anyway.
func (idx *SiteIndex) candidates(pt Coord, maxDistance float64) ([]int, error) {
	k := int(maxDistance/cellEdgeMiles) + 2
	if 3*k*(k+1)+1 >= len(idx.byCell) {
		return idx.all(), nil
	}

	origin, err := h3.LatLngToCell(h3.NewLatLng(pt.LatDeg, pt.LngDeg), siteCellResolution)
	if err != nil {
		return nil, fmt.Errorf("locating query cell: %w", err)
	}

	disk, err := h3.GridDisk(origin, k)
	if err != nil {
		// Pentagon distortion; correctness over speed.
		return idx.all(), nil //nolint:nilerr
	}

	var candidates []int

	for _, cell := range disk {
		candidates = append(candidates, idx.byCell[cell]...)
	}

	sort.Ints(candidates)

	return candidates, nil
}

func (idx *SiteIndex) all() []int {
	all := make([]int, len(idx.sites))
	for i := range all {
		all[i] = i
	}

	return all
}
