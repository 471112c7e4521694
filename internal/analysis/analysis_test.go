package analysis

import (
	"context"
	"errors"
	"testing"

	"github.com/tordrt/fdnorm/internal/fd"
	"github.com/tordrt/fdnorm/internal/normal"
	"github.com/tordrt/fdnorm/internal/schema"
)

func mustSchema(t *testing.T, attrs, fds []string) *schema.Schema {
	t.Helper()
	s, err := schema.Parse("r", attrs, fds)
	if err != nil {
		t.Fatalf("parse schema: %v", err)
	}
	return s
}

func TestRunTransitiveChain(t *testing.T) {
	s := mustSchema(t, []string{"A", "B", "C", "D"},
		[]string{"A -> B", "B -> C", "C -> D"})

	r, err := Run(context.Background(), s, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(r.Cover) != 3 {
		t.Errorf("cover = %v, want 3 dependencies", r.Cover)
	}
	if len(r.Keys.Keys) != 1 || r.Keys.Keys[0] != schema.SetOf(0) {
		t.Errorf("keys = %v, want [{A}]", r.Keys.Keys)
	}
	if r.Normal.Level != normal.TwoNF {
		t.Errorf("level = %v, want 2NF", r.Normal.Level)
	}
	if r.BCNF == nil {
		t.Error("schema below BCNF should carry a BCNF decomposition")
	}
	if r.ThirdNF == nil {
		t.Error("schema below 3NF should carry a 3NF synthesis")
	}
}

func TestRunSkipsDecompositionAtBCNF(t *testing.T) {
	s := mustSchema(t, []string{"A", "B"}, []string{"A -> B", "B -> A"})

	r, err := Run(context.Background(), s, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Normal.Level != normal.BCNF {
		t.Fatalf("level = %v, want BCNF", r.Normal.Level)
	}
	if r.BCNF != nil || r.ThirdNF != nil {
		t.Error("BCNF schema should not be decomposed")
	}
}

func TestRunSkipsSynthesisAt3NF(t *testing.T) {
	s := mustSchema(t, []string{"A", "B", "C"}, []string{"A B -> C", "C -> B"})

	r, err := Run(context.Background(), s, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Normal.Level != normal.ThreeNF {
		t.Fatalf("level = %v, want 3NF", r.Normal.Level)
	}
	if r.BCNF == nil {
		t.Error("3NF schema should carry a BCNF decomposition")
	}
	if r.ThirdNF != nil {
		t.Error("3NF schema should not be re-synthesized")
	}
}

func TestRunBudgetExhausted(t *testing.T) {
	s := mustSchema(t, []string{"A", "B", "C", "D"},
		[]string{"A -> B", "B -> C", "C -> D"})

	r, err := Run(context.Background(), s, 1)
	if !errors.Is(err, fd.ErrBudgetExhausted) {
		t.Fatalf("expected ErrBudgetExhausted, got %v", err)
	}
	if r == nil || r.Schema != s {
		t.Error("partial report should still carry the schema")
	}
}

func TestRunCancellation(t *testing.T) {
	s := mustSchema(t, []string{"A", "B", "C"}, []string{"A -> B", "B -> C"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := Run(ctx, s, 0); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
