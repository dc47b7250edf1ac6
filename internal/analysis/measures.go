package analysis

import "fmt"

// RollingVolumeAverage returns, for each position p, the mean volume of the
// x observations before p. The current observation is not included, so the
// first x positions have no average.
func RollingVolumeAverage(s Series, x int) ([]Optional[float64], error) {
	if x <= 0 {
		return nil, nonPositive("x", x)
	}

	out := make([]Optional[float64], len(s))
	for p := x; p < len(s); p++ {
		out[p] = Some(windowMean(s[p-x : p]))
	}
	return out, nil
}

// windowMean sums the window directly, so the result is exactly the plain
// mean of its volumes and carries no error over from earlier windows.
func windowMean(w Series) float64 {
	sum := 0.0
	for _, obs := range w {
		sum += obs.Volume
	}
	return sum / float64(len(w))
}

// VolumeDeviation returns the percent deviation of each volume from its
// trailing average. A zero average yields a signed infinity (NaN for 0/0).
func VolumeDeviation(s Series, avgs []Optional[float64]) ([]Optional[float64], error) {
	if len(avgs) != len(s) {
		return nil, fmt.Errorf("volume deviation: %d averages for %d observations", len(avgs), len(s))
	}

	out := make([]Optional[float64], len(s))
	for p, a := range avgs {
		avg, ok := a.Get()
		if !ok {
			continue
		}
		out[p] = Some((s[p].Volume - avg) / avg * 100)
	}
	return out, nil
}

// ForwardReturn returns the percent price change from position p to p+y.
// The last y positions have no return. A zero starting price yields an
// infinite or NaN value.
func ForwardReturn(s Series, y int) ([]Optional[float64], error) {
	if y <= 0 {
		return nil, nonPositive("y", y)
	}

	out := make([]Optional[float64], len(s))
	for p := 0; p+y < len(s); p++ {
		base := s[p].Price
		out[p] = Some((s[p+y].Price - base) / base * 100)
	}
	return out, nil
}
