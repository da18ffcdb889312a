package models

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/cockroachdb/apd/v3"
)

var moneyCtx = apd.BaseContext.WithPrecision(34)

// Money is a decimal amount of BRL. Values are immutable: every operation
// returns a fresh Money.
type Money struct {
	d apd.Decimal
}

// ParseMoney reads "50", "50.5" or "50,50". NaN and infinities are rejected.
func ParseMoney(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Money{}, fmt.Errorf("empty amount")
	}
	if strings.Count(s, ",") == 1 && !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}
	d, _, err := apd.NewFromString(s)
	if err != nil {
		return Money{}, fmt.Errorf("invalid amount %q", s)
	}
	if d.Form != apd.Finite {
		return Money{}, fmt.Errorf("invalid amount %q", s)
	}
	return Money{d: *d}, nil
}

// MustMoney is ParseMoney for literals in tests and tables.
func MustMoney(s string) Money {
	m, err := ParseMoney(s)
	if err != nil {
		panic(err)
	}
	return m
}

func MoneyFromInt(v int64) Money {
	var m Money
	m.d.SetInt64(v)
	return m
}

func (m Money) Add(o Money) Money {
	var out Money
	_, _ = moneyCtx.Add(&out.d, &m.d, &o.d)
	return out
}

func (m Money) Sub(o Money) Money {
	var out Money
	_, _ = moneyCtx.Sub(&out.d, &m.d, &o.d)
	return out
}

// Sign returns -1, 0 or +1.
func (m Money) Sign() int {
	return m.d.Sign()
}

func (m Money) Cmp(o Money) int {
	return m.d.Cmp(&o.d)
}

func (m Money) IsZero() bool {
	return m.d.IsZero()
}

// String renders the amount with two decimal places, e.g. "380.00".
func (m Money) String() string {
	var q apd.Decimal
	if _, err := moneyCtx.Quantize(&q, &m.d, -2); err != nil {
		return m.d.Text('f')
	}
	return q.Text('f')
}

func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalJSON accepts a JSON number, a numeric string or null (zero).
func (m *Money) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*m = Money{}
		return nil
	}
	s := string(bytes.Trim(b, `"`))
	if s == "" {
		*m = Money{}
		return nil
	}
	parsed, err := ParseMoney(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
