package domain

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustMoney(t *testing.T, s string) *Money {
	t.Helper()
	m, err := ParseMoney(s)
	require.NoError(t, err)
	return m
}

func TestNewMoney(t *testing.T) {
	m, err := NewMoney(19999, 100)
	require.NoError(t, err)
	assert.Equal(t, "199.99", m.String())

	_, err = NewMoney(1, 0)
	assert.Error(t, err)
}

func TestParseMoney(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "199.99", want: "199.99"},
		{in: " 100 ", want: "100.00"},
		{in: "0.1", want: "0.10"},
		{in: "", wantErr: true},
		{in: "abc", wantErr: true},
		{in: "1/3", wantErr: true},
		{in: "1e3", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			m, err := ParseMoney(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, m.String())
		})
	}
}

func TestMoney_Round(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0.125", "0.13"},
		{"0.124", "0.12"},
		{"2.675", "2.68"},
		{"39.998", "40.00"},
		{"-0.125", "-0.13"},
		{"-0.124", "-0.12"},
		{"10", "10.00"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := mustMoney(t, tt.in).Round(2)
			assert.Zero(t, got.Rat().Cmp(mustMoney(t, tt.want).Rat()), "got %s", got)
		})
	}

	t.Run("one third", func(t *testing.T) {
		third, err := NewMoney(1, 3)
		require.NoError(t, err)
		assert.Zero(t, third.Round(2).Rat().Cmp(big.NewRat(33, 100)))
	})
}

func TestMoney_HasAtMostPlaces(t *testing.T) {
	assert.True(t, mustMoney(t, "199.99").HasAtMostPlaces(2))
	assert.True(t, mustMoney(t, "5").HasAtMostPlaces(2))
	assert.False(t, mustMoney(t, "0.001").HasAtMostPlaces(2))
	third, err := NewMoney(1, 3)
	require.NoError(t, err)
	assert.False(t, third.HasAtMostPlaces(2))
}

func TestMoney_Arithmetic(t *testing.T) {
	a := mustMoney(t, "10.10")
	b := mustMoney(t, "0.20")

	assert.Equal(t, "9.90", a.Subtract(b).String())
	assert.Equal(t, "30.30", a.MultiplyByInt(3).String())
	assert.Equal(t, "10.10", a.String(), "operands are not mutated")
}

func TestMoney_Storage(t *testing.T) {
	m := mustMoney(t, "199.99")
	assert.True(t, m.IsSafeForStorage())
	assert.Equal(t, int64(19999), m.Numerator())
	assert.Equal(t, int64(100), m.Denominator())

	huge := mustMoney(t, new(big.Int).Lsh(big.NewInt(1), 70).String())
	assert.False(t, huge.IsSafeForStorage())
}
