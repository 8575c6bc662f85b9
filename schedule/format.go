// Copyright 2026 The VoteATX Authors
//
// SPDX-License-Identifier: Apache-2.0
package schedule

import (
	"strings"
	"time"
)

// FormatDate renders a date as "Tue, Nov 5".
func FormatDate(t time.Time) string {
	return t.Format("Mon, Jan 2")
}

// FormatTime renders a time of day as "7am", "7:30pm", "noon" or
// "midnight". The trailing ":00" is dropped. These exact transforms are a
// compatibility requirement for generated displays.
func FormatTime(t time.Time) string {
	if t.Hour() == 0 && t.Minute() == 0 {
		return "midnight"
	}

	if t.Hour() == 12 && t.Minute() == 0 {
		return "noon"
	}

	s := t.Format("3:04pm")

	return strings.Replace(s, ":00", "", 1)
}
