// Copyright 2026 The VoteATX Authors
//
// SPDX-License-Identifier: Apache-2.0
package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatTime(t *testing.T) {
	testCases := []struct {
		name     string
		hour     int
		minute   int
		expected string
	}{
		{name: "on the hour drops minutes", hour: 7, minute: 0, expected: "7am"},
		{name: "afternoon on the hour", hour: 19, minute: 0, expected: "7pm"},
		{name: "half hour kept", hour: 19, minute: 30, expected: "7:30pm"},
		{name: "morning minutes kept", hour: 9, minute: 15, expected: "9:15am"},
		{name: "noon", hour: 12, minute: 0, expected: "noon"},
		{name: "midnight", hour: 0, minute: 0, expected: "midnight"},
		{name: "just past noon", hour: 12, minute: 1, expected: "12:01pm"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			at := time.Date(2013, time.November, 5, tc.hour, tc.minute, 0, 0, cst)
			assert.Equal(t, tc.expected, FormatTime(at))
		})
	}
}

func TestFormatDate(t *testing.T) {
	assert.Equal(t, "Tue, Nov 5", FormatDate(time.Date(2013, time.November, 5, 0, 0, 0, 0, cst)))
	assert.Equal(t, "Mon, Oct 21", FormatDate(time.Date(2013, time.October, 21, 0, 0, 0, 0, cst)))
}
