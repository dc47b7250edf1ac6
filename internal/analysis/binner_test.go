package analysis

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRangeBinner_BinValue(t *testing.T) {
	tests := []struct {
		name  string
		width int
		value float64
		want  string
		lower float64
	}{
		{"negative deviation", 10, -14.29, "-20 to -10", -20},
		{"positive return", 5, 5.0, "5 to 10", 5},
		{"just below bound", 5, 4.999, "0 to 5", 0},
		{"zero", 10, 0, "0 to 10", 0},
		{"negative zero", 10, math.Copysign(0, -1), "0 to 10", 0},
		{"small negative", 10, -0.01, "-10 to 0", -10},
		{"exact negative bound", 10, -10, "-10 to 0", -10},
		{"large", 100, 12345.6, "12300 to 12400", 12300},
		{"width one", 1, 2.5, "2 to 3", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := NewRangeBinner(tt.width)
			require.NoError(t, err)

			label, ok := b.BinValue(tt.value)
			require.True(t, ok)
			assert.Equal(t, tt.want, label.String())
			assert.Equal(t, tt.lower, label.Lower)
			assert.Equal(t, tt.lower+float64(tt.width), label.Upper())
		})
	}
}

func TestRangeBinner_IdempotentOnLowerBound(t *testing.T) {
	for _, width := range []int{1, 3, 10, 25} {
		b, err := NewRangeBinner(width)
		require.NoError(t, err)

		for k := -20; k <= 20; k++ {
			lower := float64(k * width)
			want, ok := b.BinValue(lower)
			require.True(t, ok)
			assert.Equal(t, lower, want.Lower)

			for _, frac := range []float64{0.25, 0.5, 0.99} {
				got, _ := b.BinValue(lower + frac*float64(width))
				assert.Equal(t, want, got, "width=%d lower=%v frac=%v", width, lower, frac)
			}

			prev, _ := b.BinValue(lower - 1e-6)
			assert.Equal(t, lower-float64(width), prev.Lower)
		}
	}
}

func TestRangeBinner_Undefined(t *testing.T) {
	b, err := NewRangeBinner(10)
	require.NoError(t, err)

	assert.False(t, b.Bin(None[float64]()).IsSet())
	assert.False(t, b.Bin(Some(math.Inf(1))).IsSet())
	assert.False(t, b.Bin(Some(math.Inf(-1))).IsSet())
	assert.False(t, b.Bin(Some(math.NaN())).IsSet())
	assert.True(t, b.Bin(Some(3.0)).IsSet())

	all := b.BinAll([]Optional[float64]{Some(1.0), None[float64](), Some(-1.0)})
	require.Len(t, all, 3)
	assert.True(t, all[0].IsSet())
	assert.False(t, all[1].IsSet())
	assert.True(t, all[2].IsSet())
}

func TestNewRangeBinner_InvalidWidth(t *testing.T) {
	for _, width := range []int{0, -5} {
		b, err := NewRangeBinner(width)
		assert.Nil(t, b)
		assert.ErrorIs(t, err, ErrConfiguration)
	}
}

func TestParseLowerBound(t *testing.T) {
	tests := []struct {
		label string
		want  float64
		ok    bool
	}{
		{"-20 to -10", -20, true},
		{"0 to 5", 0, true},
		{"12300 to 12400", 12300, true},
		{" 5 to 10 ", 5, true},
		{"abc to 10", 0, false},
		{"", 0, false},
		{"NaN to 1", 0, false},
		{"inf to inf", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			got, ok := ParseLowerBound(tt.label)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseLowerBound_RoundTrip(t *testing.T) {
	b, err := NewRangeBinner(7)
	require.NoError(t, err)

	for _, v := range []float64{-123.4, -7, -0.5, 0, 6.9, 7, 1000} {
		label, _ := b.BinValue(v)
		lower, ok := ParseLowerBound(label.String())
		require.True(t, ok)
		assert.Equal(t, label.Lower, lower)
	}
}
