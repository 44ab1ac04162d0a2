// Process generators for inter-arrival and service durations.
// Each generator owns its random stream and exposes the distribution's
// analytic moments alongside sampling.

package dist

import (
	"errors"
	"fmt"
)

// ErrInvalidParameter is returned when a generator is constructed with
// parameters outside the distribution's domain.
var ErrInvalidParameter = errors.New("invalid parameter")

// Generator produces i.i.d. non-negative durations from a configured
// probability distribution. Mean and Variance are the analytic moments of
// the configured distribution, not sample statistics, and always agree
// with the parameters Generate draws from.
type Generator interface {
	// Generate returns the next sample. Samples are non-negative for
	// every supported distribution.
	Generate() float64
	// Mean returns the analytic expected value.
	Mean() float64
	// Variance returns the analytic variance.
	Variance() float64
	// Name returns a human-readable description of the distribution.
	Name() string
	// Clone returns a statistically independent copy: same parameters,
	// fresh stream. A clone never replays this instance's sequence.
	Clone() Generator
}

// Exponential draws from Exponential(rate): mean 1/rate, variance 1/rate².
type Exponential struct {
	rate   float64
	stream *Stream
}

// NewExponential creates an exponential generator with the given rate.
func NewExponential(rate float64, seed int64) (*Exponential, error) {
	if rate <= 0 {
		return nil, fmt.Errorf("%w: exponential rate must be positive, got %g", ErrInvalidParameter, rate)
	}
	return &Exponential{rate: rate, stream: NewStream(seed)}, nil
}

func (g *Exponential) Generate() float64 {
	return g.stream.ExpFloat64() / g.rate
}

func (g *Exponential) Mean() float64 {
	return 1.0 / g.rate
}

func (g *Exponential) Variance() float64 {
	return 1.0 / (g.rate * g.rate)
}

func (g *Exponential) Name() string {
	return fmt.Sprintf("Exponential(rate=%g)", g.rate)
}

func (g *Exponential) Clone() Generator {
	return &Exponential{rate: g.rate, stream: g.stream.Fork()}
}

// Uniform draws uniformly from [min, max): mean (min+max)/2,
// variance (max−min)²/12.
type Uniform struct {
	min, max float64
	stream   *Stream
}

// NewUniform creates a uniform generator over [min, max). Requires min < max.
func NewUniform(min, max float64, seed int64) (*Uniform, error) {
	if min >= max {
		return nil, fmt.Errorf("%w: uniform bounds require min < max, got [%g, %g]", ErrInvalidParameter, min, max)
	}
	return &Uniform{min: min, max: max, stream: NewStream(seed)}, nil
}

func (g *Uniform) Generate() float64 {
	return g.min + (g.max-g.min)*g.stream.Float64()
}

func (g *Uniform) Mean() float64 {
	return (g.min + g.max) / 2.0
}

func (g *Uniform) Variance() float64 {
	d := g.max - g.min
	return d * d / 12.0
}

func (g *Uniform) Name() string {
	return fmt.Sprintf("Uniform[%g,%g)", g.min, g.max)
}

func (g *Uniform) Clone() Generator {
	return &Uniform{min: g.min, max: g.max, stream: g.stream.Fork()}
}

// Deterministic always returns the same fixed value (zero variance).
type Deterministic struct {
	value float64
}

// NewDeterministic creates a generator that always returns value.
func NewDeterministic(value float64) (*Deterministic, error) {
	if value < 0 {
		return nil, fmt.Errorf("%w: deterministic value must be non-negative, got %g", ErrInvalidParameter, value)
	}
	return &Deterministic{value: value}, nil
}

func (g *Deterministic) Generate() float64 {
	return g.value
}

func (g *Deterministic) Mean() float64 {
	return g.value
}

func (g *Deterministic) Variance() float64 {
	return 0.0
}

func (g *Deterministic) Name() string {
	return fmt.Sprintf("Deterministic(%g)", g.value)
}

func (g *Deterministic) Clone() Generator {
	return &Deterministic{value: g.value}
}

// Erlang draws from Erlang(shape, rate), the sum of shape independent
// Exponential(rate) draws: mean shape/rate, variance shape/rate².
type Erlang struct {
	shape  int
	rate   float64
	stream *Stream
}

// NewErlang creates an Erlang generator of integer order shape with the
// given rate.
func NewErlang(shape int, rate float64, seed int64) (*Erlang, error) {
	if shape <= 0 {
		return nil, fmt.Errorf("%w: erlang shape must be positive, got %d", ErrInvalidParameter, shape)
	}
	if rate <= 0 {
		return nil, fmt.Errorf("%w: erlang rate must be positive, got %g", ErrInvalidParameter, rate)
	}
	return &Erlang{shape: shape, rate: rate, stream: NewStream(seed)}, nil
}

func (g *Erlang) Generate() float64 {
	sum := 0.0
	for i := 0; i < g.shape; i++ {
		sum += g.stream.ExpFloat64() / g.rate
	}
	return sum
}

func (g *Erlang) Mean() float64 {
	return float64(g.shape) / g.rate
}

func (g *Erlang) Variance() float64 {
	return float64(g.shape) / (g.rate * g.rate)
}

func (g *Erlang) Name() string {
	return fmt.Sprintf("Erlang(shape=%d, rate=%g)", g.shape, g.rate)
}

func (g *Erlang) Clone() Generator {
	return &Erlang{shape: g.shape, rate: g.rate, stream: g.stream.Fork()}
}
