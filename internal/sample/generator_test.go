package sample

import (
	"errors"
	"testing"

	"github.com/tordrt/fdnorm/internal/schema"
)

func TestNewFDGeneratorBounds(t *testing.T) {
	for _, n := range []int{0, -1, schema.MaxAttributes + 1} {
		if _, err := NewFDGenerator(n, 1); !errors.Is(err, schema.ErrMalformedInput) {
			t.Errorf("n=%d: expected ErrMalformedInput, got %v", n, err)
		}
	}
	for _, n := range []int{1, 8, schema.MaxAttributes} {
		if _, err := NewFDGenerator(n, 1); err != nil {
			t.Errorf("n=%d: unexpected error: %v", n, err)
		}
	}
}

func TestFDGeneratorProducesValidSets(t *testing.T) {
	g, err := NewFDGenerator(6, 99)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	universe := schema.AttrSet(1)<<6 - 1
	fds := g.FDs(20)
	if len(fds) != 20 {
		t.Fatalf("got %d dependencies, want 20", len(fds))
	}
	seen := make(map[schema.FD]bool, len(fds))
	for _, f := range fds {
		if f.Lhs.IsEmpty() || f.Rhs.IsEmpty() {
			t.Errorf("dependency %v has an empty side", f)
		}
		if !f.Lhs.SubsetOf(universe) || !f.Rhs.SubsetOf(universe) {
			t.Errorf("dependency %v reaches outside %d attributes", f, 6)
		}
		if seen[f] {
			t.Errorf("dependency %v repeated", f)
		}
		seen[f] = true
	}
}

func TestFDGeneratorDensity(t *testing.T) {
	g, err := NewFDGenerator(10, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	g.Density = 0.2

	for _, f := range g.FDs(20) {
		if f.Lhs.IsEmpty() || f.Rhs.IsEmpty() {
			t.Errorf("dependency %v has an empty side", f)
		}
	}
}

func TestFDGeneratorReproducible(t *testing.T) {
	a, err := NewFDGenerator(8, 123)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := NewFDGenerator(8, 123)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	fa, fb := a.FDs(10), b.FDs(10)
	for i := range fa {
		if fa[i] != fb[i] {
			t.Errorf("dependency %d differs between identically seeded generators", i)
		}
	}
}

func TestFDGeneratorFullWidth(t *testing.T) {
	g, err := NewFDGenerator(schema.MaxAttributes, 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 0; i < 10; i++ {
		f := g.FD()
		if f.Lhs.IsEmpty() || f.Rhs.IsEmpty() {
			t.Errorf("dependency %v has an empty side", f)
		}
	}
}
