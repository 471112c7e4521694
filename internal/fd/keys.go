package fd

import (
	"context"
	"fmt"
	"sort"

	"github.com/tordrt/fdnorm/internal/schema"
)

// KeySearch holds the outcome of a candidate-key enumeration. When Complete
// is false the search stopped early and Keys is a partial (still valid, but
// possibly non-exhaustive) set.
type KeySearch struct {
	Keys     []schema.AttrSet
	Complete bool
	Steps    int
}

// CandidateKeys enumerates every candidate key of the schema: the minimal
// attribute sets whose closure is the full universe.
//
// Attributes that never appear on a right-hand side are forced into every
// key; the search then walks subsets of the remaining determinant attributes
// in increasing size, skipping supersets of keys already found, so each
// reported key is minimal by construction. One budget step is spent per
// tested candidate; on exhaustion the keys found so far are returned with
// Complete=false alongside ErrBudgetExhausted. Keys are sorted by size, then
// by attribute order, for reproducible output.
func CandidateKeys(ctx context.Context, s *schema.Schema, budget *Budget) (KeySearch, error) {
	universe := s.Universe()
	fds := s.FDs.NonTrivial()
	if len(fds) == 0 {
		return KeySearch{Keys: []schema.AttrSet{universe}, Complete: true}, nil
	}

	var lhsUnion, rhsUnion schema.AttrSet
	for _, f := range fds {
		lhsUnion = lhsUnion.Union(f.Lhs)
		rhsUnion = rhsUnion.Union(f.Rhs.Diff(f.Lhs))
	}

	// Attributes no dependency can derive are part of every key.
	core := universe.Diff(rhsUnion)
	if Closure(core, fds) == universe {
		return KeySearch{Keys: []schema.AttrSet{core}, Complete: true, Steps: budget.Steps()}, nil
	}

	// Attributes appearing only as dependents can never shrink a key, and
	// anything the core already derives is redundant in a candidate.
	frontier := lhsUnion.Diff(Closure(core, fds)).Positions()

	var keys []schema.AttrSet
	for size := 1; size <= len(frontier); size++ {
		stop, err := forEachCombination(ctx, frontier, size, func(subset schema.AttrSet) (bool, error) {
			cand := core.Union(subset)
			for _, k := range keys {
				if k.SubsetOf(cand) {
					return false, nil
				}
			}
			if !budget.spend() {
				return true, ErrBudgetExhausted
			}
			if Closure(cand, fds) == universe {
				keys = append(keys, cand)
			}
			return false, nil
		})
		if err != nil {
			sortKeys(keys)
			return KeySearch{Keys: keys, Complete: false, Steps: budget.Steps()}, err
		}
		if stop {
			break
		}
	}

	sortKeys(keys)
	return KeySearch{Keys: keys, Complete: true, Steps: budget.Steps()}, nil
}

// forEachCombination feeds every size-k subset of the given positions to fn.
// fn returns (stop, err); a returned error aborts the walk. The outer stop
// return is unused by callers today but keeps the walk symmetric with fn.
func forEachCombination(ctx context.Context, positions []int, k int, fn func(schema.AttrSet) (bool, error)) (bool, error) {
	idx := make([]int, k)
	for i := range idx {
		idx[i] = i
	}
	for {
		if err := checkCtx(ctx); err != nil {
			return false, fmt.Errorf("key search: %w", err)
		}
		var subset schema.AttrSet
		for _, i := range idx {
			subset = subset.With(positions[i])
		}
		stop, err := fn(subset)
		if err != nil {
			return false, err
		}
		if stop {
			return true, nil
		}

		// Advance to the next combination in lexicographic order.
		i := k - 1
		for i >= 0 && idx[i] == len(positions)-k+i {
			i--
		}
		if i < 0 {
			return false, nil
		}
		idx[i]++
		for j := i + 1; j < k; j++ {
			idx[j] = idx[j-1] + 1
		}
	}
}

func sortKeys(keys []schema.AttrSet) {
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Count() != keys[j].Count() {
			return keys[i].Count() < keys[j].Count()
		}
		return keys[i] < keys[j]
	})
}

// PrimeAttributes returns the union of the given candidate keys.
func PrimeAttributes(keys []schema.AttrSet) schema.AttrSet {
	var prime schema.AttrSet
	for _, k := range keys {
		prime = prime.Union(k)
	}
	return prime
}
