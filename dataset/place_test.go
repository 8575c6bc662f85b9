// Copyright 2026 The VoteATX Authors
//
// SPDX-License-Identifier: Apache-2.0
package dataset

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePlaceType(t *testing.T) {
	for _, pt := range []PlaceType{ElectionDay, EarlyFixed, EarlyMobile} {
		parsed, err := ParsePlaceType(pt.String())
		require.NoError(t, err)
		assert.Equal(t, pt, parsed)
	}

	_, err := ParsePlaceType("ABSENTEE")
	require.Error(t, err)
}

func TestPlaceTypeJSON(t *testing.T) {
	data, err := json.Marshal(EarlyMobile)
	require.NoError(t, err)
	assert.Equal(t, `"EARLY_VOTING_MOBILE"`, string(data))

	var pt PlaceType
	require.NoError(t, json.Unmarshal([]byte(`"ELECTION_DAY"`), &pt))
	assert.Equal(t, ElectionDay, pt)

	assert.Error(t, json.Unmarshal([]byte(`"VOTE_BY_MAIL"`), &pt))
}
