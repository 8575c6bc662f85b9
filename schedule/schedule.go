// Copyright 2026 The VoteATX Authors
//
// SPDX-License-Identifier: Apache-2.0

// Package schedule models the open hours of a voting place as an ordered
// list of per-day entries and maintains a compressed human-readable
// rendering of them.
package schedule

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidInterval is returned for an open interval that does not
// satisfy opens < closes on a single calendar day.
var ErrInvalidInterval = errors.New("schedule: invalid interval")

// Interval is a single open period. Invariant: Opens < Closes and both
// fall on the same calendar day (an interval never spans midnight).
type Interval struct {
	Opens  time.Time
	Closes time.Time
}

// Day is one calendar day of a schedule: either open for one interval or
// closed all day. A closed day never participates in open checks but is
// kept for display.
type Day struct {
	// Date is midnight of the calendar day in the schedule's zone.
	Date time.Time
	// Open is nil on a closed day.
	Open *Interval
}

// OpenDay builds an open Day from an interval.
func OpenDay(opens, closes time.Time) (Day, error) {
	if !opens.Before(closes) {
		return Day{}, fmt.Errorf("%w: opens %s not before closes %s", ErrInvalidInterval, opens, closes)
	}

	oy, om, od := opens.Date()
	cy, cm, cd := closes.Date()

	if oy != cy || om != cm || od != cd {
		return Day{}, fmt.Errorf("%w: interval %s - %s spans midnight", ErrInvalidInterval, opens, closes)
	}

	return Day{
		Date: time.Date(oy, om, od, 0, 0, 0, 0, opens.Location()),
		Open: &Interval{Opens: opens, Closes: closes},
	}, nil
}

// ClosedDay builds a closed Day for the given date.
func ClosedDay(date time.Time) Day {
	y, m, d := date.Date()

	return Day{Date: time.Date(y, m, d, 0, 0, 0, 0, date.Location())}
}

// hours renders the per-day hours string used by the compressed display.
func (d Day) hours() string {
	if d.Open == nil {
		return "closed"
	}

	return FormatTime(d.Open.Opens) + " - " + FormatTime(d.Open.Closes)
}

// line is one rendered display line covering a run of days with
// identical hours.
type line struct {
	first time.Time
	last  time.Time
	hours string
}

func (l line) String() string {
	if l.first.Equal(l.last) {
		return FormatDate(l.first) + ": " + l.hours
	}

	return FormatDate(l.first) + " - " + FormatDate(l.last) + ": " + l.hours
}

// Schedule is an ordered list of days with a run-length-compressed
// display. Mutated only through Append during dataset build; read-only
// once served.
type Schedule struct {
	ID    int64
	days  []Day
	lines []line
}

// New builds a schedule from days in calendar order.
func New(id int64, days []Day) *Schedule {
	s := &Schedule{ID: id}
	for _, d := range days {
		s.Append(d)
	}

	return s
}

// Append adds one day to the schedule. Only the trailing display line is
// touched: the day either extends it (consecutive date, identical hours)
// or starts a new one.
func (s *Schedule) Append(d Day) {
	s.days = append(s.days, d)

	hours := d.hours()

	if n := len(s.lines); n > 0 && s.lines[n-1].hours == hours && sameDate(s.lines[n-1].last.AddDate(0, 0, 1), d.Date) {
		s.lines[n-1].last = d.Date

		return
	}

	s.lines = append(s.lines, line{first: d.Date, last: d.Date, hours: hours})
}

// Days returns the schedule's days in order.
func (s *Schedule) Days() []Day {
	return s.days
}

// Formatted returns the compressed display: one line per run of
// consecutive days sharing identical hours.
func (s *Schedule) Formatted() string {
	parts := make([]string, len(s.lines))
	for i, l := range s.lines {
		parts[i] = l.String()
	}

	return strings.Join(parts, "\n")
}

// IsOpen reports whether at falls within [Opens, Closes) of any open day.
func (s *Schedule) IsOpen(at time.Time) bool {
	for _, d := range s.days {
		if d.Open == nil {
			continue
		}

		if !at.Before(d.Open.Opens) && at.Before(d.Open.Closes) {
			return true
		}
	}

	return false
}

// FirstOpens returns the opening instant of the earliest open day, or the
// zero time when the schedule has no open days.
func (s *Schedule) FirstOpens() time.Time {
	var first time.Time

	for _, d := range s.days {
		if d.Open == nil {
			continue
		}

		if first.IsZero() || d.Open.Opens.Before(first) {
			first = d.Open.Opens
		}
	}

	return first
}

// LastCloses returns the closing instant of the latest open day, or the
// zero time when the schedule has no open days.
func (s *Schedule) LastCloses() time.Time {
	var last time.Time

	for _, d := range s.days {
		if d.Open == nil {
			continue
		}

		if d.Open.Closes.After(last) {
			last = d.Open.Closes
		}
	}

	return last
}

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()

	return ay == by && am == bm && ad == bd
}
