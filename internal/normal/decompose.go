package normal

import (
	"context"
	"fmt"

	"github.com/tordrt/fdnorm/internal/fd"
	"github.com/tordrt/fdnorm/internal/schema"
)

// Relation is one sub-schema of a decomposition. Attrs and the projected
// dependencies are expressed in the base schema's attribute ordering.
type Relation struct {
	Attrs schema.AttrSet
	FDs   schema.FDSet
}

// Decomposition is an ordered sequence of sub-schemas of Base, with a flag
// for whether every original dependency is still enforceable locally.
type Decomposition struct {
	Base                  *schema.Schema
	Relations             []Relation
	PreservesDependencies bool
}

// DecomposeBCNF losslessly decomposes the schema into BCNF sub-schemas by
// repeatedly splitting on a violating dependency X → Y: the offending
// sub-schema R becomes closure(X) ∩ R and (R − closure(X)) ∪ X. The split
// shares X between both halves and X determines one of them, so every step
// preserves the lossless join. Dependency preservation can be lost and is
// reported on the result.
func DecomposeBCNF(ctx context.Context, s *schema.Schema, budget *fd.Budget) (*Decomposition, error) {
	cover, err := fd.MinimalCover(ctx, s.FDs, budget)
	if err != nil {
		return nil, err
	}

	var final []Relation
	work := []schema.AttrSet{s.Universe()}
	for len(work) > 0 {
		if err := checkCtx(ctx); err != nil {
			return nil, fmt.Errorf("bcnf decomposition: %w", err)
		}
		r := work[len(work)-1]
		work = work[:len(work)-1]

		proj := projectFDs(s, cover, r)
		viol, ok := findViolation(r, proj)
		if !ok {
			final = append(final, Relation{Attrs: r, FDs: proj})
			continue
		}

		r1 := fd.Closure(viol.Lhs, proj).Intersect(r)
		r2 := r.Diff(r1).Union(viol.Lhs)
		work = append(work, r2, r1)
	}

	return &Decomposition{
		Base:                  s,
		Relations:             final,
		PreservesDependencies: preservesDependencies(cover, final),
	}, nil
}

// Synthesize3NF builds a lossless, dependency-preserving 3NF decomposition
// from the minimal cover: one sub-schema per determinant group, plus a
// candidate-key sub-schema when no group contains one, with sub-schemas
// subsumed by another removed.
func Synthesize3NF(ctx context.Context, s *schema.Schema, budget *fd.Budget) (*Decomposition, error) {
	cover, err := fd.MinimalCover(ctx, s.FDs, budget)
	if err != nil {
		return nil, err
	}

	var relations []Relation
	for _, group := range cover.Compact() {
		relations = append(relations, Relation{
			Attrs: group.Lhs.Union(group.Rhs),
			FDs:   schema.FDSet{group},
		})
	}

	search, err := fd.CandidateKeys(ctx, s, budget)
	if err != nil {
		return nil, err
	}
	if !containsAnyKey(relations, search.Keys) && len(search.Keys) > 0 {
		key := search.Keys[0]
		relations = append(relations, Relation{Attrs: key, FDs: projectFDs(s, cover, key)})
	}

	relations = dropSubsumed(relations)
	return &Decomposition{
		Base:                  s,
		Relations:             relations,
		PreservesDependencies: preservesDependencies(cover, relations),
	}, nil
}

// projectFDs restricts the cover to the attributes in mask: a dependency
// survives when its determinant lies inside the sub-schema, with its
// dependent widened to everything the determinant reaches inside it.
func projectFDs(s *schema.Schema, cover schema.FDSet, mask schema.AttrSet) schema.FDSet {
	var out schema.FDSet
	for _, f := range cover {
		if !f.Lhs.SubsetOf(mask) {
			continue
		}
		rhs := fd.Closure(f.Lhs, s.FDs).Intersect(mask).Diff(f.Lhs)
		if rhs.IsEmpty() {
			continue
		}
		out = append(out, schema.FD{Lhs: f.Lhs, Rhs: rhs})
	}
	return out.Dedupe().Compact()
}

// findViolation returns a dependency of the sub-schema whose determinant is
// not a superkey of it.
func findViolation(r schema.AttrSet, proj schema.FDSet) (schema.FD, bool) {
	for _, f := range proj {
		if fd.Closure(f.Lhs, proj).Intersect(r) != r {
			return f, true
		}
	}
	return schema.FD{}, false
}

// preservesDependencies checks that the union of the projected dependency
// sets still implies the full cover.
func preservesDependencies(cover schema.FDSet, relations []Relation) bool {
	var union schema.FDSet
	for _, r := range relations {
		union = append(union, r.FDs...)
	}
	for _, f := range cover {
		if !f.Rhs.SubsetOf(fd.Closure(f.Lhs, union)) {
			return false
		}
	}
	return true
}

func containsAnyKey(relations []Relation, keys []schema.AttrSet) bool {
	for _, r := range relations {
		for _, k := range keys {
			if k.SubsetOf(r.Attrs) {
				return true
			}
		}
	}
	return false
}

// dropSubsumed removes relations whose attributes are contained in another
// relation, folding their dependencies into the subsuming relation so no
// projected dependency is lost. Of two equal relations the earlier survives.
func dropSubsumed(relations []Relation) []Relation {
	subsumer := make([]int, len(relations))
	for i := range subsumer {
		subsumer[i] = -1
	}
	for i, r := range relations {
		for j, other := range relations {
			if i == j {
				continue
			}
			if r.Attrs == other.Attrs && i > j || r.Attrs.ProperSubsetOf(other.Attrs) {
				subsumer[i] = j
				break
			}
		}
	}

	out := make([]Relation, 0, len(relations))
	kept := make(map[int]int, len(relations))
	for i, r := range relations {
		if subsumer[i] >= 0 {
			continue
		}
		kept[i] = len(out)
		out = append(out, r)
	}
	for i, r := range relations {
		j := subsumer[i]
		if j < 0 {
			continue
		}
		// Follow chains in case the subsumer was itself subsumed.
		for subsumer[j] >= 0 {
			j = subsumer[j]
		}
		k := kept[j]
		out[k].FDs = append(append(schema.FDSet(nil), out[k].FDs...), r.FDs...).Dedupe()
	}
	return out
}

func checkCtx(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}
