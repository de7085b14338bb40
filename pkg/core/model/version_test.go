// Copyright (c) 2025 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package model_test

import (
	"testing"

	"github.com/momeni/dpreg/pkg/core/cerr"
	"github.com/momeni/dpreg/pkg/core/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseVersion(t *testing.T) {
	for _, tc := range []struct {
		name  string
		input string
		want  model.Version
	}{
		{"initial", "v1.0", model.Version{Major: 1, Minor: 0}},
		{"minor", "v1.12", model.Version{Major: 1, Minor: 12}},
		{"major", "v40.3", model.Version{Major: 40, Minor: 3}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			v, err := model.ParseVersion(tc.input)
			require.NoError(t, err)
			assert.Equal(t, tc.want, v)
			assert.Equal(t, tc.input, v.String(), "round-trip")
		})
	}
}

func TestParseVersionMalformed(t *testing.T) {
	for _, input := range []string{
		"", "1.0", "v1", "v1.", "v.0", "va.0", "v1.b", "v-1.0", "v1.0.0",
		"v 1.0", "V1.0",
	} {
		t.Run(input, func(t *testing.T) {
			_, err := model.ParseVersion(input)
			var mve *cerr.MalformedVersionError
			require.ErrorAs(t, err, &mve, "input: %q", input)
			assert.Equal(t, input, mve.Value)
		})
	}
}

func TestVersionIncrement(t *testing.T) {
	v := model.Version{Major: 2, Minor: 7}
	assert.Equal(t, "v3.0", v.IncrementMajor().String())
	assert.Equal(t, "v2.8", v.IncrementMinor().String())
	assert.Equal(t, "v2.7", v.String(), "receiver must stay intact")
}

func TestVersionCompare(t *testing.T) {
	v21 := model.Version{Major: 2, Minor: 1}
	assert.Equal(t, 0, v21.Compare(v21))
	assert.Equal(t, -1, v21.Compare(model.Version{Major: 2, Minor: 2}))
	assert.Equal(t, -1, v21.Compare(model.Version{Major: 3, Minor: 0}))
	assert.Equal(t, 1, v21.Compare(model.Version{Major: 1, Minor: 9}))
}

func TestVersionTextMarshaling(t *testing.T) {
	b, err := model.Version{Major: 1, Minor: 3}.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "v1.3", string(b))

	var v model.Version
	require.NoError(t, v.UnmarshalText([]byte("v4.2")))
	assert.Equal(t, model.Version{Major: 4, Minor: 2}, v)

	v = model.Version{Major: 4, Minor: 2}
	require.Error(t, v.UnmarshalText([]byte("4.2")))
	assert.Equal(
		t, model.Version{Major: 4, Minor: 2}, v,
		"failed parse must leave the receiver unchanged",
	)
}

func TestVersionIsZero(t *testing.T) {
	assert.True(t, model.Version{}.IsZero())
	assert.False(t, model.Version{Major: 1}.IsZero())
}
