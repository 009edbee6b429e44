package indicators

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimpleMA(t *testing.T) {
	ma := NewMA(3)
	assert.Equal(t, "MA(3)", ma.Name())
	assert.Equal(t, 3, ma.Warmup())

	ma.Update(1)
	ma.Update(2)
	assert.False(t, ma.Ready())
	assert.Equal(t, 0.0, ma.Value())

	ma.Update(3)
	assert.True(t, ma.Ready())
	assert.InDelta(t, 2.0, ma.Value(), 1e-9)

	ma.Update(10)
	assert.InDelta(t, 5.0, ma.Value(), 1e-9)

	ma.Reset()
	assert.False(t, ma.Ready())
}

func TestRollingMAMinPeriods(t *testing.T) {
	ma := NewRollingMA(3, 1)
	assert.Equal(t, 1, ma.Warmup())

	ma.Update(4)
	assert.True(t, ma.Ready())
	assert.Equal(t, 4.0, ma.Value())

	clamped := NewRollingMA(2, 5)
	assert.Equal(t, 2, clamped.Warmup())
}

func TestRollingMean(t *testing.T) {
	tests := []struct {
		name   string
		xs     []float64
		window int
		want   []float64
	}{
		{"empty", nil, 3, []float64{}},
		{"window one", []float64{1, 2, 3}, 1, []float64{1, 2, 3}},
		{"partial start", []float64{10, 20, 30, 40}, 3, []float64{10, 15, 20, 30}},
		{"window longer than series", []float64{2, 4}, 5, []float64{2, 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := RollingMean(tt.xs, tt.window)
			require.NoError(t, err)
			assert.InDeltaSlice(t, tt.want, got, 1e-9)
		})
	}

	_, err := RollingMean([]float64{1}, 0)
	assert.Error(t, err)
	_, err = RollingMean([]float64{1, math.NaN()}, 2)
	assert.Error(t, err)
}
