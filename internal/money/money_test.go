package money

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"1.234,56", 1234.56},
		{"50", 50},
		{"", 0},
		{"  300,5 ", 300.5},
		{"1.000.000", 1000000},
		{"abc", 0},
		{"12abc", 12},
		{"-20,10", -20.1},
		// dot-decimal strings are read as thousands separators
		{"12.5", 125},
	}

	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			assert.InDelta(t, tc.want, Parse(tc.in), 1e-9)
		})
	}
}

func TestParseAny(t *testing.T) {
	assert.Equal(t, 0.0, ParseAny(nil))
	assert.Equal(t, 42.5, ParseAny(42.5))
	assert.Equal(t, 7.0, ParseAny(7))
	assert.InDelta(t, 1234.56, ParseAny("1.234,56"), 1e-9)
	assert.Equal(t, 0.0, ParseAny(true))
}

func TestAmountUnmarshal(t *testing.T) {
	var rec struct {
		Number Amount `json:"number"`
		Text   Amount `json:"text"`
		Null   Amount `json:"null"`
		Bool   Amount `json:"bool"`
	}

	err := json.Unmarshal([]byte(`{"number": 99.9, "text": "1.234,56", "null": null, "bool": true}`), &rec)
	require.NoError(t, err)

	assert.InDelta(t, 99.9, rec.Number.Float64(), 1e-9)
	assert.InDelta(t, 1234.56, rec.Text.Float64(), 1e-9)
	assert.Zero(t, rec.Null)
	assert.Zero(t, rec.Bool)

	out, err := json.Marshal(Amount(10.5))
	require.NoError(t, err)
	assert.Equal(t, "10.5", string(out))
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "R$ 1.234,56", Format(1234.56))
	assert.Equal(t, "R$ 0,00", Format(0))
	assert.Equal(t, "R$ 81.000,00", Format(81000))
	assert.Equal(t, "R$ 1.000.000,10", Format(1000000.1))
	assert.Equal(t, "-R$ 50,50", Format(-50.5))
}
