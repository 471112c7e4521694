package fd

import (
	"context"
	"errors"
	"testing"

	"github.com/tordrt/fdnorm/internal/schema"
)

func TestMinimalCoverChain(t *testing.T) {
	// A -> B, B -> C, C -> D admits no reduction.
	fds := schema.FDSet{
		{Lhs: schema.SetOf(0), Rhs: schema.SetOf(1)},
		{Lhs: schema.SetOf(1), Rhs: schema.SetOf(2)},
		{Lhs: schema.SetOf(2), Rhs: schema.SetOf(3)},
	}

	cover, err := MinimalCover(context.Background(), fds, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cover) != 3 {
		t.Fatalf("expected 3 dependencies, got %d", len(cover))
	}
	for i, f := range fds {
		if cover[i] != f {
			t.Errorf("dependency %d changed: got %v, want %v", i, cover[i], f)
		}
	}
}

func TestMinimalCoverReduces(t *testing.T) {
	// A -> BC, B -> C, A -> B, AB -> C reduces to A -> B, B -> C.
	fds := schema.FDSet{
		{Lhs: schema.SetOf(0), Rhs: schema.SetOf(1, 2)},
		{Lhs: schema.SetOf(1), Rhs: schema.SetOf(2)},
		{Lhs: schema.SetOf(0), Rhs: schema.SetOf(1)},
		{Lhs: schema.SetOf(0, 1), Rhs: schema.SetOf(2)},
	}

	cover, err := MinimalCover(context.Background(), fds, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cover) != 2 {
		t.Fatalf("expected 2 dependencies, got %d: %v", len(cover), cover)
	}
	for _, f := range cover {
		if f.Rhs.Count() != 1 {
			t.Errorf("dependent not a singleton: %v", f)
		}
	}
}

func TestMinimalCoverSingletonDependents(t *testing.T) {
	cover, err := MinimalCover(context.Background(), fixtureABCDE(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, f := range cover {
		if f.Rhs.Count() != 1 {
			t.Errorf("dependent not a singleton: %v", f)
		}
		if f.Trivial() {
			t.Errorf("trivial dependency in cover: %v", f)
		}
	}
}

func TestMinimalCoverSemanticEquivalence(t *testing.T) {
	// Covers are not unique, so equivalence is checked over every attribute
	// subset rather than by structural equality.
	inputs := []schema.FDSet{
		fixtureABCDE(),
		{
			{Lhs: schema.SetOf(0), Rhs: schema.SetOf(1, 2)},
			{Lhs: schema.SetOf(1), Rhs: schema.SetOf(2)},
			{Lhs: schema.SetOf(0, 1), Rhs: schema.SetOf(2, 3)},
		},
	}

	for _, fds := range inputs {
		cover, err := MinimalCover(context.Background(), fds, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for a := uint64(0); a < 1<<5; a++ {
			set := schema.AttrSet(a)
			if Closure(set, fds) != Closure(set, cover) {
				t.Fatalf("cover changed the closure of %b", a)
			}
		}
	}
}

func TestMinimalCoverDropsTrivial(t *testing.T) {
	fds := schema.FDSet{
		{Lhs: schema.SetOf(0, 1), Rhs: schema.SetOf(1)},
	}
	cover, err := MinimalCover(context.Background(), fds, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cover) != 0 {
		t.Errorf("trivial dependency should vanish, got %v", cover)
	}
}

func TestMinimalCoverBudgetExhausted(t *testing.T) {
	fds := schema.FDSet{
		{Lhs: schema.SetOf(0), Rhs: schema.SetOf(1)},
		{Lhs: schema.SetOf(1), Rhs: schema.SetOf(2)},
		{Lhs: schema.SetOf(2), Rhs: schema.SetOf(3)},
	}

	_, err := MinimalCover(context.Background(), fds, NewBudget(1))
	if !errors.Is(err, ErrBudgetExhausted) {
		t.Errorf("expected ErrBudgetExhausted, got %v", err)
	}
}

func TestMinimalCoverCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := MinimalCover(ctx, fixtureABCDE(), nil)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestEquivalent(t *testing.T) {
	a := schema.FDSet{
		{Lhs: schema.SetOf(0), Rhs: schema.SetOf(1, 2)},
	}
	b := schema.FDSet{
		{Lhs: schema.SetOf(0), Rhs: schema.SetOf(1)},
		{Lhs: schema.SetOf(0), Rhs: schema.SetOf(2)},
	}
	c := schema.FDSet{
		{Lhs: schema.SetOf(0), Rhs: schema.SetOf(1)},
	}

	universe := schema.SetOf(0, 1, 2)
	if !Equivalent(universe, a, b) {
		t.Error("split dependents should be equivalent")
	}
	if Equivalent(universe, a, c) {
		t.Error("dropping A -> C should not be equivalent")
	}
}
