package search

const (
	DefaultMinPly   = 16
	DefaultMaxPly   = 26
	DefaultMaxDepth = 10
	DefaultMaxCP    = 5
	DefaultMaxPV    = 5
)

type bounds struct {
	name     string
	min, max int
}

var (
	minPlyBounds   = bounds{"min_ply", 1, 20}
	maxPlyBounds   = bounds{"max_ply", 21, 50}
	maxDepthBounds = bounds{"max_depth", 1, 30}
	maxCPBounds    = bounds{"max_cp", 1, 10}
	maxPVBounds    = bounds{"max_pv", 1, 10}
)

// Parameters configures a single search. Build it with NewParameters or
// DefaultParameters; the fields are read-only afterwards.
type Parameters struct {
	minPly   int
	maxPly   int
	maxDepth int
	maxCP    int
	maxPV    int
}

// NewParameters range-checks every field and fails on the first one out of
// bounds. Values are never clamped.
func NewParameters(minPly, maxPly, maxDepth, maxCP, maxPV int) (Parameters, error) {
	checks := []struct {
		b     bounds
		value int
	}{
		{minPlyBounds, minPly},
		{maxPlyBounds, maxPly},
		{maxDepthBounds, maxDepth},
		{maxCPBounds, maxCP},
		{maxPVBounds, maxPV},
	}
	for _, c := range checks {
		if c.value < c.b.min || c.value > c.b.max {
			return Parameters{}, &ValidationError{Field: c.b.name, Value: c.value, Min: c.b.min, Max: c.b.max}
		}
	}
	return Parameters{
		minPly:   minPly,
		maxPly:   maxPly,
		maxDepth: maxDepth,
		maxCP:    maxCP,
		maxPV:    maxPV,
	}, nil
}

// DefaultParameters is the parameter set used when a request names none.
func DefaultParameters() Parameters {
	return Parameters{
		minPly:   DefaultMinPly,
		maxPly:   DefaultMaxPly,
		maxDepth: DefaultMaxDepth,
		maxCP:    DefaultMaxCP,
		maxPV:    DefaultMaxPV,
	}
}

func (p Parameters) MinPly() int   { return p.minPly }
func (p Parameters) MaxPly() int   { return p.maxPly }
func (p Parameters) MaxDepth() int { return p.maxDepth }
func (p Parameters) MaxCP() int    { return p.maxCP }
func (p Parameters) MaxPV() int    { return p.maxPV }
