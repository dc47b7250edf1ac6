package analysis

import (
	"math"
	"strconv"
	"strings"
)

const labelSeparator = " to "

// BinLabel identifies the half-open interval [Lower, Lower+Width)
type BinLabel struct {
	Lower float64
	Width int
}

// Upper returns the exclusive upper bound
func (l BinLabel) Upper() float64 {
	return l.Lower + float64(l.Width)
}

// String renders the label as "<lower> to <upper>" with integral bounds
func (l BinLabel) String() string {
	return formatBound(l.Lower) + labelSeparator + formatBound(l.Upper())
}

func formatBound(v float64) string {
	if v == 0 {
		v = 0 // drop the sign of -0
	}
	return strconv.FormatFloat(v, 'f', 0, 64)
}

// RangeBinner assigns values to fixed-width bins anchored at zero
type RangeBinner struct {
	width int
}

// NewRangeBinner returns a binner for width, which must be positive
func NewRangeBinner(width int) (*RangeBinner, error) {
	if width <= 0 {
		return nil, nonPositive("width", width)
	}
	return &RangeBinner{width: width}, nil
}

// Width returns the bin width
func (b *RangeBinner) Width() int {
	return b.width
}

// BinValue places v in the bin whose lower bound is floor(v/width)*width.
// It reports false for NaN and infinities.
func (b *RangeBinner) BinValue(v float64) (BinLabel, bool) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return BinLabel{}, false
	}
	w := float64(b.width)
	return BinLabel{Lower: math.Floor(v/w) * w, Width: b.width}, true
}

// Bin labels an optional value; absent and non-finite values have no label
func (b *RangeBinner) Bin(v Optional[float64]) Optional[BinLabel] {
	value, ok := v.Get()
	if !ok {
		return None[BinLabel]()
	}
	label, ok := b.BinValue(value)
	if !ok {
		return None[BinLabel]()
	}
	return Some(label)
}

// BinAll labels every value of vs
func (b *RangeBinner) BinAll(vs []Optional[float64]) []Optional[BinLabel] {
	out := make([]Optional[BinLabel], len(vs))
	for i, v := range vs {
		out[i] = b.Bin(v)
	}
	return out
}

// ParseLowerBound reads the lower bound back from a rendered label.
// It reports false when the text before the separator is not a finite number.
func ParseLowerBound(label string) (float64, bool) {
	head, _, _ := strings.Cut(strings.TrimSpace(label), labelSeparator)
	v, err := strconv.ParseFloat(strings.TrimSpace(head), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
