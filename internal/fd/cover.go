package fd

import (
	"context"
	"fmt"

	"github.com/tordrt/fdnorm/internal/schema"
)

// MinimalCover derives a canonical cover of fds: right-hand sides split to
// single attributes, extraneous determinant attributes removed, redundant
// dependencies removed. The result is semantically equivalent to the input
// (same closures for every attribute subset) but minimal covers are not
// unique; a different processing order may yield a different, equally
// minimal cover. Dependencies are processed in input order so the output is
// reproducible for a given input.
//
// Each closure probe consumes one budget step; on exhaustion the input is
// returned unchanged together with ErrBudgetExhausted.
func MinimalCover(ctx context.Context, fds schema.FDSet, budget *Budget) (schema.FDSet, error) {
	work := splitRight(fds)

	reduced, err := reduceLeft(ctx, work, budget)
	if err != nil {
		return fds, err
	}

	minimal, err := dropRedundant(ctx, reduced, budget)
	if err != nil {
		return fds, err
	}
	return minimal, nil
}

// splitRight rewrites every dependency to have a single dependent attribute,
// discarding trivial dependencies along the way.
func splitRight(fds schema.FDSet) schema.FDSet {
	out := make(schema.FDSet, 0, len(fds))
	for _, f := range fds {
		for _, i := range f.Rhs.Diff(f.Lhs).Positions() {
			out = append(out, schema.FD{Lhs: f.Lhs, Rhs: schema.SetOf(i)})
		}
	}
	return out.Dedupe()
}

// reduceLeft removes extraneous determinant attributes: an attribute is
// dropped when the remaining determinant still determines the dependent
// under the current working set. Repeats until no attribute is removable.
func reduceLeft(ctx context.Context, fds schema.FDSet, budget *Budget) (schema.FDSet, error) {
	work := append(schema.FDSet(nil), fds...)
	for changed := true; changed; {
		changed = false
		if err := checkCtx(ctx); err != nil {
			return nil, fmt.Errorf("left reduction: %w", err)
		}
		for i := range work {
			if work[i].Lhs.Count() == 1 {
				continue
			}
			for _, a := range work[i].Lhs.Positions() {
				trimmed := work[i].Lhs.Without(a)
				if !budget.spend() {
					return nil, ErrBudgetExhausted
				}
				if work[i].Rhs.SubsetOf(Closure(trimmed, work)) {
					work[i].Lhs = trimmed
					changed = true
				}
			}
		}
	}
	return work.Dedupe(), nil
}

// dropRedundant removes dependencies whose dependent is already implied by
// the rest of the set.
func dropRedundant(ctx context.Context, fds schema.FDSet, budget *Budget) (schema.FDSet, error) {
	work := append(schema.FDSet(nil), fds...)
	kept := make([]bool, len(work))
	for i := range kept {
		kept[i] = true
	}
	for i := range work {
		if err := checkCtx(ctx); err != nil {
			return nil, fmt.Errorf("redundancy elimination: %w", err)
		}
		if !budget.spend() {
			return nil, ErrBudgetExhausted
		}
		remaining := make(schema.FDSet, 0, len(work)-1)
		for j := range work {
			if j != i && kept[j] {
				remaining = append(remaining, work[j])
			}
		}
		if work[i].Rhs.SubsetOf(Closure(work[i].Lhs, remaining)) {
			kept[i] = false
		}
	}
	out := make(schema.FDSet, 0, len(work))
	for i, f := range work {
		if kept[i] {
			out = append(out, f)
		}
	}
	return out, nil
}
