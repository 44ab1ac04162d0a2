package dist

import "fmt"

// Kind enumerates the supported distribution families.
type Kind string

const (
	KindExponential   Kind = "exponential"
	KindUniform       Kind = "uniform"
	KindDeterministic Kind = "deterministic"
	KindErlang        Kind = "erlang"
)

// Spec is a declarative generator description, suitable for YAML scenario
// files. Only the fields relevant to Kind are read; construction goes
// through New, never by assembling generator structs directly.
type Spec struct {
	Kind  Kind    `yaml:"kind"`
	Rate  float64 `yaml:"rate,omitempty"`  // exponential, erlang
	Min   float64 `yaml:"min,omitempty"`   // uniform lower bound
	Max   float64 `yaml:"max,omitempty"`   // uniform upper bound
	Value float64 `yaml:"value,omitempty"` // deterministic
	Shape int     `yaml:"shape,omitempty"` // erlang order k
}

// New builds a Generator from a Spec. The seed feeds the generator's own
// stream; callers running several generators off one configured seed
// should pass DeriveSeed(master, label) with distinct labels.
func New(spec Spec, seed int64) (Generator, error) {
	switch spec.Kind {
	case KindExponential:
		return NewExponential(spec.Rate, seed)
	case KindUniform:
		return NewUniform(spec.Min, spec.Max, seed)
	case KindDeterministic:
		return NewDeterministic(spec.Value)
	case KindErlang:
		return NewErlang(spec.Shape, spec.Rate, seed)
	default:
		return nil, fmt.Errorf("%w: unknown distribution kind %q", ErrInvalidParameter, spec.Kind)
	}
}
