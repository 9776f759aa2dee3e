package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Price
	}{
		{"plain digits", "6000", 6000},
		{"formatted with symbol", "$6.000", 6000},
		{"thousands separators", "$1.234.567", 1234567},
		{"surrounding spaces", "  4.300 ", 4300},
		{"currency suffix", "5990 CLP", 5990},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAmount(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseAmount_NoDigits(t *testing.T) {
	_, err := ParseAmount("$ -")
	assert.ErrorIs(t, err, ErrNoAmount)

	_, err = ParseAmount("")
	assert.ErrorIs(t, err, ErrNoAmount)
}

func TestPrice_UnmarshalJSON_MixedForms(t *testing.T) {
	// upstream is inconsistent about numbers vs formatted strings; both
	// must normalize to the same amount
	var fromNumber, fromString struct {
		Price Price `json:"price"`
	}

	require.NoError(t, json.Unmarshal([]byte(`{"price": 6000}`), &fromNumber))
	require.NoError(t, json.Unmarshal([]byte(`{"price": "$6.000"}`), &fromString))

	assert.Equal(t, Price(6000), fromNumber.Price)
	assert.Equal(t, fromNumber.Price, fromString.Price)
}

func TestPrice_UnmarshalJSON_Invalid(t *testing.T) {
	var v struct {
		Price Price `json:"price"`
	}
	err := json.Unmarshal([]byte(`{"price": "sin precio"}`), &v)
	assert.Error(t, err)
}

func TestPrice_FormatRoundTrip(t *testing.T) {
	// whatever separators the locale applies, parsing the display form
	// must recover the original amount
	for _, amount := range []Price{0, 1, 999, 6000, 4300, 1234567} {
		got, err := ParseAmount(amount.Format())
		require.NoError(t, err)
		assert.Equal(t, amount, got)
	}
}
