package sample

import (
	"fmt"
	"math/rand"

	"github.com/tordrt/fdnorm/internal/schema"
)

// FDGenerator produces random dependency sets over a fixed number of
// attributes, for fuzzing the normalization pipeline and for the CLI's
// random mode.
type FDGenerator struct {
	n   int
	rng *rand.Rand

	// Density, when positive, is the per-attribute probability of inclusion
	// on either side of a generated dependency. Zero selects uniformly
	// random non-empty sets.
	Density float64
}

// NewFDGenerator returns a generator over n attributes (1..MaxAttributes)
// seeded for reproducible output.
func NewFDGenerator(n int, seed int64) (*FDGenerator, error) {
	if n < 1 || n > schema.MaxAttributes {
		return nil, fmt.Errorf("%w: attribute count %d", schema.ErrMalformedInput, n)
	}
	return &FDGenerator{n: n, rng: rand.New(rand.NewSource(seed))}, nil
}

// FD generates one dependency with non-empty sides.
func (g *FDGenerator) FD() schema.FD {
	return schema.FD{Lhs: g.set(), Rhs: g.set()}
}

// FDs generates m distinct dependencies.
func (g *FDGenerator) FDs(m int) schema.FDSet {
	seen := make(map[schema.FD]bool, m)
	out := make(schema.FDSet, 0, m)
	for len(out) < m {
		f := g.FD()
		if seen[f] {
			continue
		}
		seen[f] = true
		out = append(out, f)
	}
	return out
}

func (g *FDGenerator) set() schema.AttrSet {
	for {
		var s schema.AttrSet
		if g.Density > 0 {
			for i := 0; i < g.n; i++ {
				if g.rng.Float64() < g.Density {
					s = s.With(i)
				}
			}
		} else {
			v := g.rng.Uint64()
			if g.n < schema.MaxAttributes {
				v %= uint64(1) << uint(g.n)
			}
			s = schema.AttrSet(v)
		}
		if !s.IsEmpty() {
			return s
		}
	}
}
