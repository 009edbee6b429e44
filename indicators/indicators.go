// Package indicators provides rolling statistics over daily series.
package indicators

// Indicator computes a single streaming value from a series.
// It is deterministic; feeding the same values yields the same result.
type Indicator interface {
	// Name returns a stable identifier like "MA(3)".
	Name() string

	// Warmup returns how many updates are needed before Ready() can be true.
	Warmup() int

	// Reset clears all internal state.
	Reset()

	// Update consumes the next value.
	Update(v float64)

	// Ready reports whether Value() is meaningful.
	Ready() bool

	// Value returns the current value. If !Ready() it returns 0.
	Value() float64
}
