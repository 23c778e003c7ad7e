package generic_test

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/warp/leave-engine/generic"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// =============================================================================
// NORMALIZE
// =============================================================================

func TestNormalize_SnapsWithinOneHundredth(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"4.999", "5"},
		{"5.001", "5"},
		{"4.999999999", "5"},
		{"4.99", "5"},
		{"5.01", "5"},
		{"4.97", "4.97"},
		{"4.5", "4.5"},
		{"0.004", "0"},
		{"-2.999", "-3"},
		{"12", "12"},
		{"3.333333", "3.33"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := generic.Normalize(dec(tt.in))
			assert.True(t, got.Equal(dec(tt.want)), "Normalize(%s) = %s, want %s", tt.in, got, tt.want)
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []float64{0, 1, 4.999, 5.001, 4.97, 4.975, 0.125, 1.0 / 3.0, 2.0 / 3.0, 7.005, 123.456789, -1.995}

	for _, f := range inputs {
		once := generic.NormalizeFloat(f)
		twice := generic.Normalize(once)
		assert.True(t, once.Equal(twice), "normalize not idempotent for %v: %s vs %s", f, once, twice)
	}
}

func TestNormalizeFloat_HourArithmetic(t *testing.T) {
	// GIVEN: 09:00 to 13:30 expressed in milliseconds
	ms := float64(4*3600000 + 30*60000)

	// WHEN: Converted to hours the way a browser would
	got := generic.NormalizeFloat(ms / 3600000)

	// THEN: Exactly 4.5
	assert.True(t, got.Equal(dec("4.5")))
}

func TestNormalizeFloat_NonFiniteIsZero(t *testing.T) {
	assert.True(t, generic.NormalizeFloat(math.NaN()).IsZero())
	assert.True(t, generic.NormalizeFloat(math.Inf(1)).IsZero())
	assert.True(t, generic.NormalizeFloat(math.Inf(-1)).IsZero())
}

// =============================================================================
// FORMATTING
// =============================================================================

func TestFormatQuantity(t *testing.T) {
	assert.Equal(t, "5", generic.FormatQuantity(dec("4.999")))
	assert.Equal(t, "12", generic.FormatQuantity(dec("12")))
	assert.Equal(t, "4.50", generic.FormatQuantity(dec("4.5")))
	assert.Equal(t, "4.97", generic.FormatQuantity(dec("4.97")))
	assert.Equal(t, "0", generic.FormatQuantity(decimal.Zero))
}

func TestAmount_Display(t *testing.T) {
	assert.Equal(t, "4.50 Hour", generic.NewAmount(4.5, generic.UnitHour).Display())
	assert.Equal(t, "3 Day", generic.NewAmountFromInt(3, generic.UnitDay).Display())
	assert.Equal(t, "2", generic.Amount{Value: dec("2")}.Display())
}

func TestAmount_ClampZero(t *testing.T) {
	quota := generic.NewAmountFromInt(10, generic.UnitDay)
	used := generic.NewAmountFromInt(12, generic.UnitDay)

	remaining := quota.Sub(used).ClampZero()

	assert.True(t, remaining.IsZero())
	assert.Equal(t, generic.UnitDay, remaining.Unit)
	assert.True(t, used.GreaterThan(quota))
}

func TestParseUnit(t *testing.T) {
	tests := []struct {
		in   string
		want generic.Unit
		ok   bool
	}{
		{"Day", generic.UnitDay, true},
		{" days ", generic.UnitDay, true},
		{"HOUR", generic.UnitHour, true},
		{"hours", generic.UnitHour, true},
		{"week", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := generic.ParseUnit(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}
