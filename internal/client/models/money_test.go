package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMoney(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"50", "50.00"},
		{"50.5", "50.50"},
		{"50,50", "50.50"},
		{" 0.5 ", "0.50"},
		{"-12", "-12.00"},
	}
	for _, tt := range tests {
		m, err := ParseMoney(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, m.String(), tt.in)
	}
}

func TestParseMoney_Invalid(t *testing.T) {
	for _, in := range []string{"", "abc", "NaN", "Infinity", "1,2,3"} {
		_, err := ParseMoney(in)
		assert.Error(t, err, in)
	}
}

func TestMoney_Arithmetic(t *testing.T) {
	in := MustMoney("500")
	out := MustMoney("120")

	assert.Equal(t, "380.00", in.Sub(out).String())
	assert.Equal(t, "620.00", in.Add(out).String())
	assert.Equal(t, -1, out.Sub(in).Sign())
	assert.Equal(t, 1, in.Cmp(out))
	assert.True(t, Money{}.IsZero())
	assert.Equal(t, "0.00", Money{}.String())

	// operands are left untouched
	assert.Equal(t, "500.00", in.String())
}

func TestMoney_JSON(t *testing.T) {
	var v struct {
		A Money `json:"a"`
		B Money `json:"b"`
		C Money `json:"c"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a":12.5,"b":"7","c":null}`), &v))
	assert.Equal(t, "12.50", v.A.String())
	assert.Equal(t, "7.00", v.B.String())
	assert.True(t, v.C.IsZero())

	out, err := json.Marshal(struct {
		Valor Money `json:"valor"`
	}{MustMoney("50")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"valor":50.00}`, string(out))
}
