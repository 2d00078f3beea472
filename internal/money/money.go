// Package money decodes the monetary values found in stored records.
//
// Values written by older clients are sometimes strings in Brazilian locale
// ("1.234,56"). Parse assumes that locale unconditionally: a dot-decimal string
// such as "12.5" is read as 125.
package money

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Amount is a monetary value that accepts both JSON numbers and
// locale-formatted strings on decode and always encodes as a number.
type Amount float64

func (a Amount) Float64() float64 {
	return float64(a)
}

func (a *Amount) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)

	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*a = 0
		return nil
	}

	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*a = Amount(Parse(s))
		return nil
	}

	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		// booleans and objects carry no amount
		*a = 0
		return nil
	}

	*a = Amount(f)

	return nil
}

// Parse reads a pt-BR formatted amount: every '.' is a thousands separator
// and the first ',' is the decimal point. Text after the leading number is
// ignored; input without a leading number yields 0.
func Parse(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}

	s = strings.ReplaceAll(s, ".", "")
	s = strings.Replace(s, ",", ".", 1)

	f, err := strconv.ParseFloat(numericPrefix(s), 64)
	if err != nil {
		return 0
	}

	return f
}

// ParseAny applies Parse to strings and passes numbers through.
func ParseAny(v any) float64 {
	switch x := v.(type) {
	case nil:
		return 0
	case float64:
		return x
	case float32:
		return float64(x)
	case int:
		return float64(x)
	case int64:
		return float64(x)
	case Amount:
		return float64(x)
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return Parse(x.String())
		}
		return f
	case string:
		return Parse(x)
	default:
		return 0
	}
}

func numericPrefix(s string) string {
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}

	digits := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
		digits++
	}

	if end < len(s) && s[end] == '.' {
		frac := end + 1
		for frac < len(s) && s[frac] >= '0' && s[frac] <= '9' {
			frac++
			digits++
		}
		end = frac
	}

	if digits == 0 {
		return ""
	}

	return s[:end]
}

// Format renders v as Brazilian currency, e.g. "R$ 1.234,56".
func Format(v float64) string {
	fixed := decimal.NewFromFloat(v).Round(2).StringFixed(2)

	neg := strings.HasPrefix(fixed, "-")
	fixed = strings.TrimPrefix(fixed, "-")

	intPart, frac, _ := strings.Cut(fixed, ".")

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}

	out := "R$ " + b.String() + "," + frac
	if neg {
		out = "-" + out
	}

	return out
}
