package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// CLP has no minor units, so every amount in the system is a whole number
// of pesos.
var CLP = currency.MustParseISO("CLP")

var clpPrinter = message.NewPrinter(language.MustParse("es-CL"))

var ErrNoAmount = errors.New("no digits in amount")

// Price is a CLP amount in major units.
//
// Upstream price values arrive either as raw numbers or as formatted
// display strings ("$6.000"). Normalization happens here, at the unmarshal
// boundary, so the rest of the code only ever sees numeric amounts.
type Price int64

func (p *Price) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if len(s) > 0 && s[0] == '"' {
		var raw string
		if err := json.Unmarshal(b, &raw); err != nil {
			return err
		}
		v, err := ParseAmount(raw)
		if err != nil {
			return fmt.Errorf("invalid price %q: %w", raw, err)
		}
		*p = v
		return nil
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return fmt.Errorf("invalid price %q: %w", s, err)
	}
	*p = Price(d.IntPart())
	return nil
}

// ParseAmount extracts a CLP amount from a possibly formatted string.
// Currency symbols and thousands separators are dropped before parsing.
func ParseAmount(raw string) (Price, error) {
	var digits strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	if digits.Len() == 0 {
		return 0, ErrNoAmount
	}

	d, err := decimal.NewFromString(digits.String())
	if err != nil {
		return 0, err
	}
	return Price(d.IntPart()), nil
}

// Format renders the amount for display ("$6.000"). Internal state never
// holds formatted strings; this is for the presentation edge only.
func (p Price) Format() string {
	return clpPrinter.Sprintf("%v", currency.NarrowSymbol(CLP.Amount(int64(p))))
}
