// Copyright 2026 The VoteATX Authors
//
// SPDX-License-Identifier: Apache-2.0
package schedule

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var cst = time.FixedZone("CST", -6*3600)

func openDay(t *testing.T, year int, month time.Month, day, opensHour, closesHour int) Day {
	t.Helper()

	d, err := OpenDay(
		time.Date(year, month, day, opensHour, 0, 0, 0, cst),
		time.Date(year, month, day, closesHour, 0, 0, 0, cst),
	)
	require.NoError(t, err)

	return d
}

func TestOpenDayValidation(t *testing.T) {
	_, err := OpenDay(
		time.Date(2013, time.November, 5, 19, 0, 0, 0, cst),
		time.Date(2013, time.November, 5, 7, 0, 0, 0, cst),
	)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidInterval)

	_, err = OpenDay(
		time.Date(2013, time.November, 5, 22, 0, 0, 0, cst),
		time.Date(2013, time.November, 6, 2, 0, 0, 0, cst),
	)
	require.Error(t, err, "interval must not span midnight")
	assert.ErrorIs(t, err, ErrInvalidInterval)
}

func TestFormattedCompression(t *testing.T) {
	// Mon-Wed open 9-7, Thu closed, Fri open 9-6: three lines.
	s := New(1, []Day{
		openDay(t, 2013, time.October, 21, 9, 19),
		openDay(t, 2013, time.October, 22, 9, 19),
		openDay(t, 2013, time.October, 23, 9, 19),
		ClosedDay(time.Date(2013, time.October, 24, 0, 0, 0, 0, cst)),
		openDay(t, 2013, time.October, 25, 9, 18),
	})

	expected := "Mon, Oct 21 - Wed, Oct 23: 9am - 7pm\n" +
		"Thu, Oct 24: closed\n" +
		"Fri, Oct 25: 9am - 6pm"

	if diff := cmp.Diff(expected, s.Formatted()); diff != "" {
		t.Errorf("formatted mismatch (-want +got):\n%s", diff)
	}
}

func TestFormattedBreaksOnGapDays(t *testing.T) {
	// Identical hours but a missing calendar day in between must not
	// collapse into one range.
	s := New(1, []Day{
		openDay(t, 2013, time.October, 21, 9, 19),
		openDay(t, 2013, time.October, 23, 9, 19),
	})

	assert.Equal(t, "Mon, Oct 21: 9am - 7pm\nWed, Oct 23: 9am - 7pm", s.Formatted())
}

func TestAppendExtendsTrailingLine(t *testing.T) {
	s := New(1, []Day{openDay(t, 2013, time.October, 21, 9, 19)})
	require.Equal(t, "Mon, Oct 21: 9am - 7pm", s.Formatted())

	s.Append(openDay(t, 2013, time.October, 22, 9, 19))
	assert.Equal(t, "Mon, Oct 21 - Tue, Oct 22: 9am - 7pm", s.Formatted())

	s.Append(openDay(t, 2013, time.October, 23, 7, 19))
	assert.Equal(t, "Mon, Oct 21 - Tue, Oct 22: 9am - 7pm\nWed, Oct 23: 7am - 7pm", s.Formatted())
}

func TestIsOpenHalfOpenInterval(t *testing.T) {
	s := New(1, []Day{openDay(t, 2013, time.November, 5, 7, 19)})

	opens := time.Date(2013, time.November, 5, 7, 0, 0, 0, cst)
	closes := time.Date(2013, time.November, 5, 19, 0, 0, 0, cst)

	assert.True(t, s.IsOpen(opens), "open at the exact opens instant")
	assert.True(t, s.IsOpen(closes.Add(-time.Second)))
	assert.False(t, s.IsOpen(closes), "closed at the exact closes instant")
	assert.False(t, s.IsOpen(opens.Add(-time.Second)))
}

func TestIsOpenIgnoresClosedDays(t *testing.T) {
	s := New(1, []Day{
		ClosedDay(time.Date(2013, time.October, 24, 0, 0, 0, 0, cst)),
		openDay(t, 2013, time.October, 25, 9, 18),
	})

	assert.False(t, s.IsOpen(time.Date(2013, time.October, 24, 12, 0, 0, 0, cst)))
	assert.True(t, s.IsOpen(time.Date(2013, time.October, 25, 12, 0, 0, 0, cst)))
}

func TestFirstOpensLastCloses(t *testing.T) {
	s := New(1, []Day{
		ClosedDay(time.Date(2013, time.October, 20, 0, 0, 0, 0, cst)),
		openDay(t, 2013, time.October, 21, 9, 19),
		openDay(t, 2013, time.October, 22, 7, 18),
	})

	assert.Equal(t, time.Date(2013, time.October, 21, 9, 0, 0, 0, cst), s.FirstOpens())
	assert.Equal(t, time.Date(2013, time.October, 22, 18, 0, 0, 0, cst), s.LastCloses())
}

func TestFirstOpensNoOpenDays(t *testing.T) {
	s := New(1, []Day{ClosedDay(time.Date(2013, time.October, 20, 0, 0, 0, 0, cst))})

	assert.True(t, s.FirstOpens().IsZero())
	assert.True(t, s.LastCloses().IsZero())
}
