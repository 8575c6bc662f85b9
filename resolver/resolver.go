// Copyright 2026 The VoteATX Authors
//
// SPDX-License-Identifier: Apache-2.0
package resolver

import (
	"sort"
	"time"

	"github.com/open-austin/voteatx/dataset"
	"github.com/open-austin/voteatx/spatial"
)

// Config carries the election-wide values the resolvers need. It is an
// explicit immutable value handed in at construction time; nothing is
// cached process-wide on first use.
type Config struct {
	// Description is the human-readable election name shown in results.
	Description string
	// InfoFooter is an optional trailing block for info text.
	InfoFooter string
	// MaxDistanceMiles bounds the fixed-site search when the request does
	// not override it.
	MaxDistanceMiles float64
	// MaxPlaces caps the total early-voting results (one fixed plus
	// MaxPlaces-1 mobile) when the request does not override it.
	MaxPlaces int
	// MobileFactor is the relevance cutoff: mobile sites farther than
	// MobileFactor times the fixed-site distance are dropped.
	MobileFactor float64
	// TZ is the election's time zone, used to interpret zoneless query
	// instants.
	TZ *time.Location
}

// ConfigFromElection extracts resolver configuration from the election
// config file.
func ConfigFromElection(cfg *dataset.ElectionConfig) (Config, error) {
	tz, err := cfg.Location()
	if err != nil {
		return Config{}, err
	}

	return Config{
		Description:      cfg.Description,
		InfoFooter:       cfg.InfoFooter,
		MaxDistanceMiles: cfg.MaxDistanceMiles,
		MaxPlaces:        cfg.MaxPlaces,
		MobileFactor:     cfg.MobileFactor,
		TZ:               tz,
	}, nil
}

// ElectionDayResolver answers the election-day question: which precinct
// contains the point, and where does that precinct vote. State-free; a
// resolution is purely a function of (point, instant, dataset snapshot).
type ElectionDayResolver struct {
	store *dataset.Store
	cfg   Config
}

// NewElectionDayResolver binds a resolver to a dataset snapshot.
func NewElectionDayResolver(store *dataset.Store, cfg Config) *ElectionDayResolver {
	return &ElectionDayResolver{store: store, cfg: cfg}
}

// Resolve returns the election-day result for the precinct containing pt,
// or nil when the point is outside the service area. A precinct with no
// place row and overlapping region polygons are data-integrity errors.
func (r *ElectionDayResolver) Resolve(pt spatial.Coord, at time.Time) (*Result, error) {
	region, err := r.store.Regions().Containing(pt)
	if err != nil {
		return nil, err
	}

	if region == nil {
		// Outside the service area: a legitimate no-result, not an error.
		return nil, nil
	}

	place, err := r.store.PlaceByPrecinct(region.Precinct)
	if err != nil {
		return nil, err
	}

	sch, err := scheduleOf(r.store, place)
	if err != nil {
		return nil, err
	}

	result, err := newResult(r.cfg, r.store, place, sch.IsOpen(at))
	if err != nil {
		return nil, err
	}

	result.Region = region.Geometry

	return result, nil
}

// EarlyVotingResolver answers the early-voting question: the nearest
// fixed site plus a bounded set of still-relevant mobile sites.
type EarlyVotingResolver struct {
	store *dataset.Store
	cfg   Config
}

// NewEarlyVotingResolver binds a resolver to a dataset snapshot.
func NewEarlyVotingResolver(store *dataset.Store, cfg Config) *EarlyVotingResolver {
	return &EarlyVotingResolver{store: store, cfg: cfg}
}

type mobileCandidate struct {
	place    *dataset.VotingPlace
	distance float64
	opens    time.Time
}

// Resolve returns the nearest fixed early-voting place within maxDistance
// miles of pt, followed by at most maxPlaces-1 mobile places that are
// both near (closer than MobileFactor times the fixed distance) and still
// relevant (their last window has not closed before at). An empty result
// means the point is outside the service area.
func (r *EarlyVotingResolver) Resolve(pt spatial.Coord, at time.Time, maxDistance float64, maxPlaces int) ([]*Result, error) {
	if maxDistance <= 0 {
		maxDistance = r.cfg.MaxDistanceMiles
	}

	if maxPlaces <= 0 {
		maxPlaces = r.cfg.MaxPlaces
	}

	fixed, err := r.store.FixedSites().Nearest(pt, maxDistance)
	if err != nil {
		return nil, err
	}

	if len(fixed) == 0 {
		return nil, nil
	}

	// Ties on distance are not expected given continuous values; the
	// index's stable ordering makes first-encountered win anyway.
	nearest := fixed[0]

	fixedPlace, err := r.store.Place(nearest.ID)
	if err != nil {
		return nil, err
	}

	fixedSch, err := scheduleOf(r.store, fixedPlace)
	if err != nil {
		return nil, err
	}

	fixedResult, err := newResult(r.cfg, r.store, fixedPlace, fixedSch.IsOpen(at))
	if err != nil {
		return nil, err
	}

	fixedResult.Distance = nearest.Distance

	results := []*Result{fixedResult}

	candidates, err := r.mobileCandidates(pt, at, nearest.Distance)
	if err != nil {
		return nil, err
	}

	for _, c := range candidates {
		if len(results) >= maxPlaces {
			break
		}

		// The open check is deliberately one-sided: the original service
		// never re-tested the closing instant for mobile sites. Kept as
		// observed for output compatibility.
		open := !at.Before(c.opens)

		result, err := newResult(r.cfg, r.store, c.place, open)
		if err != nil {
			return nil, err
		}

		result.Distance = c.distance
		results = append(results, result)
	}

	return results, nil
}

// mobileCandidates returns mobile places strictly closer than
// MobileFactor times the fixed distance whose schedule has not finally
// closed, ordered by (earliest opens ascending, distance ascending).
func (r *EarlyVotingResolver) mobileCandidates(pt spatial.Coord, at time.Time, fixedDistance float64) ([]mobileCandidate, error) {
	cutoff := r.cfg.MobileFactor * fixedDistance

	near, err := r.store.MobileSites().Nearest(pt, cutoff)
	if err != nil {
		return nil, err
	}

	candidates := make([]mobileCandidate, 0, len(near))

	for _, site := range near {
		if site.Distance >= cutoff {
			continue
		}

		place, err := r.store.Place(site.ID)
		if err != nil {
			return nil, err
		}

		sch, err := scheduleOf(r.store, place)
		if err != nil {
			return nil, err
		}

		if !sch.LastCloses().After(at) {
			// Finally closed for this election; no longer relevant.
			continue
		}

		candidates = append(candidates, mobileCandidate{
			place:    place,
			distance: site.Distance,
			opens:    sch.FirstOpens(),
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if !candidates[i].opens.Equal(candidates[j].opens) {
			return candidates[i].opens.Before(candidates[j].opens)
		}

		return candidates[i].distance < candidates[j].distance
	})

	return candidates, nil
}
