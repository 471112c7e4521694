// Package fd implements the functional-dependency engine: attribute-set
// closure, minimal covers, and candidate-key enumeration over bitset
// attribute sets.
package fd

import "github.com/tordrt/fdnorm/internal/schema"

// Closure computes the set of attributes functionally determined by attrs
// under fds: dependencies whose determinant is already contained in the
// accumulated set contribute their dependents, until a fixpoint. The result
// does not depend on the order of fds.
func Closure(attrs schema.AttrSet, fds schema.FDSet) schema.AttrSet {
	return closureSkipping(attrs, fds, -1)
}

// closureSkipping is Closure with the dependency at position skip excluded,
// which the cover reducer uses to probe redundancy. skip < 0 excludes
// nothing.
func closureSkipping(attrs schema.AttrSet, fds schema.FDSet, skip int) schema.AttrSet {
	closure := attrs
	for changed := true; changed; {
		changed = false
		for i, f := range fds {
			if i == skip {
				continue
			}
			if f.Lhs.SubsetOf(closure) && !f.Rhs.SubsetOf(closure) {
				closure = closure.Union(f.Rhs)
				changed = true
			}
		}
	}
	return closure
}

// IsSuperkey reports whether attrs determines every attribute of the schema.
func IsSuperkey(s *schema.Schema, attrs schema.AttrSet) bool {
	return Closure(attrs, s.FDs) == s.Universe()
}

// Equivalent reports whether two dependency sets imply the same closures
// over the given universe. It compares the closure of every determinant
// appearing in either set, which suffices because any divergence in closure
// semantics is witnessed by some determinant's closure.
func Equivalent(universe schema.AttrSet, a, b schema.FDSet) bool {
	for _, f := range a {
		if Closure(f.Lhs, a) != Closure(f.Lhs, b) {
			return false
		}
	}
	for _, f := range b {
		if Closure(f.Lhs, a) != Closure(f.Lhs, b) {
			return false
		}
	}
	return true
}
