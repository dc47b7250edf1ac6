package analysis

import (
	"fmt"
	"math"
	"sort"
)

// Axis is one row or column header of a FrequencyMatrix
type Axis struct {
	Label string  `json:"label"`
	Lower float64 `json:"-"`
}

// FrequencyMatrix is a crosstab of volume bins (rows) against price bins
// (columns). Counts[r][c] is the number of positions labelled Rows[r] and
// Columns[c]; combinations never observed are zero.
type FrequencyMatrix struct {
	Rows    []Axis  `json:"rows"`
	Columns []Axis  `json:"columns"`
	Counts  [][]int `json:"counts"`
}

// Count returns the count for a (row label, column label) pair, 0 if either is unknown
func (m *FrequencyMatrix) Count(row, col string) int {
	r := indexOf(m.Rows, row)
	c := indexOf(m.Columns, col)
	if r < 0 || c < 0 {
		return 0
	}
	return m.Counts[r][c]
}

// Total returns the sum of all cells
func (m *FrequencyMatrix) Total() int {
	total := 0
	for _, row := range m.Counts {
		for _, n := range row {
			total += n
		}
	}
	return total
}

// RowLabels returns the row headers in order
func (m *FrequencyMatrix) RowLabels() []string {
	return labels(m.Rows)
}

// ColumnLabels returns the column headers in order
func (m *FrequencyMatrix) ColumnLabels() []string {
	return labels(m.Columns)
}

func labels(axes []Axis) []string {
	out := make([]string, len(axes))
	for i, a := range axes {
		out[i] = a.Label
	}
	return out
}

func indexOf(axes []Axis, label string) int {
	for i, a := range axes {
		if a.Label == label {
			return i
		}
	}
	return -1
}

// Aggregate counts positions where both labels are present
func Aggregate(volume, price []Optional[BinLabel]) (*FrequencyMatrix, error) {
	if len(volume) != len(price) {
		return nil, fmt.Errorf("aggregate: %d volume labels for %d price labels", len(volume), len(price))
	}

	rows, cols := newAxisSet(), newAxisSet()
	var pairs [][2]string
	for p := range volume {
		v, okV := volume[p].Get()
		pr, okP := price[p].Get()
		if !okV || !okP {
			continue
		}
		vs, ps := v.String(), pr.String()
		rows.add(vs, v.Lower)
		cols.add(ps, pr.Lower)
		pairs = append(pairs, [2]string{vs, ps})
	}
	return build(rows, cols, pairs), nil
}

// AggregateText counts label pairs given as rendered text, for instance read
// back from an exported table. Empty strings are absent. A label whose lower
// bound cannot be parsed sorts last (key +Inf) and is reported once as a
// malformed_label warning.
func AggregateText(volume, price []string, obs Observer) (*FrequencyMatrix, []Warning, error) {
	if len(volume) != len(price) {
		return nil, nil, fmt.Errorf("aggregate: %d volume labels for %d price labels", len(volume), len(price))
	}

	diag := newDiagnostics(obs)
	reported := make(map[string]bool)
	key := func(label string) float64 {
		lower, ok := ParseLowerBound(label)
		if ok {
			return lower
		}
		if !reported[label] {
			reported[label] = true
			diag.add(Warning{
				Kind:    WarnMalformedLabel,
				Value:   label,
				Message: "label has no numeric lower bound; sorted last",
			})
		}
		return math.Inf(1)
	}

	rows, cols := newAxisSet(), newAxisSet()
	var pairs [][2]string
	for p := range volume {
		v, pr := volume[p], price[p]
		if v == "" || pr == "" {
			continue
		}
		if !rows.has(v) {
			rows.add(v, key(v))
		}
		if !cols.has(pr) {
			cols.add(pr, key(pr))
		}
		pairs = append(pairs, [2]string{v, pr})
	}
	return build(rows, cols, pairs), diag.Warnings, nil
}

type axisSet struct {
	axes  []Axis
	index map[string]int
}

func newAxisSet() *axisSet {
	return &axisSet{index: make(map[string]int)}
}

func (s *axisSet) has(label string) bool {
	_, ok := s.index[label]
	return ok
}

func (s *axisSet) add(label string, lower float64) {
	if s.has(label) {
		return
	}
	s.index[label] = len(s.axes)
	s.axes = append(s.axes, Axis{Label: label, Lower: lower})
}

// sorted orders axes by lower bound; equal keys (only possible for
// malformed labels) fall back to the label text.
func (s *axisSet) sorted() ([]Axis, map[string]int) {
	axes := make([]Axis, len(s.axes))
	copy(axes, s.axes)
	sort.SliceStable(axes, func(a, b int) bool {
		if axes[a].Lower != axes[b].Lower {
			return axes[a].Lower < axes[b].Lower
		}
		return axes[a].Label < axes[b].Label
	})
	index := make(map[string]int, len(axes))
	for i, a := range axes {
		index[a.Label] = i
	}
	return axes, index
}

func build(rows, cols *axisSet, pairs [][2]string) *FrequencyMatrix {
	rowAxes, rowIndex := rows.sorted()
	colAxes, colIndex := cols.sorted()

	counts := make([][]int, len(rowAxes))
	for r := range counts {
		counts[r] = make([]int, len(colAxes))
	}
	for _, p := range pairs {
		counts[rowIndex[p[0]]][colIndex[p[1]]]++
	}

	return &FrequencyMatrix{Rows: rowAxes, Columns: colAxes, Counts: counts}
}
