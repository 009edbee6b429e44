package indicators

import (
	"fmt"
	"math"
)

// SimpleMA is a streaming simple moving average over the last period
// values. With MinPeriods below period it becomes ready early and averages
// whatever it has seen, like a rolling mean with min_periods.
type SimpleMA struct {
	period     int
	minPeriods int
	window     []float64
}

// NewMA creates a moving average that needs a full window.
func NewMA(period int) *SimpleMA {
	return NewRollingMA(period, period)
}

// NewRollingMA creates a moving average that is ready after minPeriods
// values. minPeriods is clamped to [1, period].
func NewRollingMA(period, minPeriods int) *SimpleMA {
	if period < 1 {
		period = 1
	}
	if minPeriods < 1 {
		minPeriods = 1
	}
	if minPeriods > period {
		minPeriods = period
	}
	return &SimpleMA{
		period:     period,
		minPeriods: minPeriods,
		window:     make([]float64, 0, period),
	}
}

func (m *SimpleMA) Name() string {
	return fmt.Sprintf("MA(%d)", m.period)
}

func (m *SimpleMA) Warmup() int {
	return m.minPeriods
}

func (m *SimpleMA) Reset() {
	m.window = m.window[:0]
}

func (m *SimpleMA) Update(v float64) {
	if len(m.window) == m.period {
		m.window = m.window[1:]
	}
	m.window = append(m.window, v)
}

func (m *SimpleMA) Ready() bool {
	return len(m.window) >= m.minPeriods
}

func (m *SimpleMA) Value() float64 {
	if !m.Ready() {
		return 0
	}
	sum := 0.0
	for _, v := range m.window {
		sum += v
	}
	return sum / float64(len(m.window))
}

// RollingMean returns the trailing mean of xs over window values, with at
// least one value required. The first elements average what is available.
func RollingMean(xs []float64, window int) ([]float64, error) {
	if window <= 0 {
		return nil, fmt.Errorf("window must be positive, got %d", window)
	}
	ma := NewRollingMA(window, 1)
	out := make([]float64, len(xs))
	for i, x := range xs {
		if math.IsNaN(x) {
			return nil, fmt.Errorf("value %d is NaN", i)
		}
		ma.Update(x)
		out[i] = ma.Value()
	}
	return out, nil
}
