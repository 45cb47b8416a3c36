package valueobjects

import (
	"encoding/json"
	"math"
	"math/big"
	"strings"
	"testing"

	pkgerrors "casegraph/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNodeID_RoundTrip(t *testing.T) {
	id, err := NewNodeID("merchant", "Blue Bottle: Seongsu")
	require.NoError(t, err)

	assert.Equal(t, "merchant:Blue Bottle: Seongsu", id.String())

	parsed, err := ParseNodeID(id.String())
	require.NoError(t, err)
	assert.True(t, parsed.Equals(id))
	assert.Equal(t, "merchant", parsed.Kind())
	assert.Equal(t, "Blue Bottle: Seongsu", parsed.Key())
}

func TestNodeID_Validation(t *testing.T) {
	_, err := NewNodeID("", "x")
	assert.Error(t, err)

	_, err = NewNodeID("case", "  ")
	assert.Error(t, err)

	_, err = ParseNodeID("no-separator")
	assert.Error(t, err)

	assert.True(t, NodeID{}.IsZero())
	assert.Equal(t, "", NodeID{}.String())
}

func TestNodeID_JSON(t *testing.T) {
	id, _ := NewNodeID("case", "C-100")

	data, err := json.Marshal(id)
	require.NoError(t, err)
	assert.Equal(t, `"case:C-100"`, string(data))

	var decoded NodeID
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, decoded.Equals(id))
}

func TestNewCaseID(t *testing.T) {
	id, err := NewCaseID("  C-100 ")
	require.NoError(t, err)
	assert.Equal(t, "C-100", id.String())

	_, err = NewCaseID("")
	assert.True(t, pkgerrors.IsValidation(err))

	_, err = NewCaseID("a/b")
	assert.True(t, pkgerrors.IsValidation(err))

	_, err = NewCaseID(strings.Repeat("x", 129))
	assert.True(t, pkgerrors.IsValidation(err))
}

func TestToFloat(t *testing.T) {
	cases := []struct {
		name string
		in   any
		want float64
		ok   bool
	}{
		{"float64", 1.5, 1.5, true},
		{"int64", int64(1_200_000), 1_200_000, true},
		{"int", 7, 7, true},
		{"json number", json.Number("108000"), 108_000, true},
		{"numeric string", "1,150,000", 1_150_000, true},
		{"big int", big.NewInt(999_999), 999_999, true},
		{"big float", big.NewFloat(2.5), 2.5, true},
		{"nil", nil, 0, false},
		{"text", "abc", 0, false},
		{"nan", math.NaN(), 0, false},
		{"inf", math.Inf(1), 0, false},
		{"struct", struct{}{}, 0, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := ToFloat(tc.in)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestToFloatOrZero(t *testing.T) {
	assert.Equal(t, 0.0, ToFloatOrZero("n/a"))
	assert.Equal(t, 42.0, ToFloatOrZero(int32(42)))
}
