package schema

import (
	"math/bits"
	"strings"
)

// MaxAttributes bounds the universe size so attribute sets fit in a single
// machine word.
const MaxAttributes = 64

// Attribute is an attribute (column) name.
type Attribute string

// AttrSet is a set of attributes encoded as a bitset over a Schema's fixed
// attribute ordering. The zero value is the empty set. AttrSet values are
// immutable; all operations return new sets.
type AttrSet uint64

// SetOf builds a set from attribute positions.
func SetOf(positions ...int) AttrSet {
	var s AttrSet
	for _, p := range positions {
		s |= 1 << uint(p)
	}
	return s
}

// Has reports whether the attribute at position i is in the set.
func (s AttrSet) Has(i int) bool {
	return s&(1<<uint(i)) != 0
}

// With returns the set with the attribute at position i added.
func (s AttrSet) With(i int) AttrSet {
	return s | 1<<uint(i)
}

// Without returns the set with the attribute at position i removed.
func (s AttrSet) Without(i int) AttrSet {
	return s &^ (1 << uint(i))
}

// Union returns the set union.
func (s AttrSet) Union(o AttrSet) AttrSet {
	return s | o
}

// Intersect returns the set intersection.
func (s AttrSet) Intersect(o AttrSet) AttrSet {
	return s & o
}

// Diff returns the attributes in s that are not in o.
func (s AttrSet) Diff(o AttrSet) AttrSet {
	return s &^ o
}

// SubsetOf reports whether every attribute of s is in o.
func (s AttrSet) SubsetOf(o AttrSet) bool {
	return s&o == s
}

// ProperSubsetOf reports whether s is a subset of o and s != o.
func (s AttrSet) ProperSubsetOf(o AttrSet) bool {
	return s&o == s && s != o
}

// Count returns the number of attributes in the set.
func (s AttrSet) Count() int {
	return bits.OnesCount64(uint64(s))
}

// IsEmpty reports whether the set has no attributes.
func (s AttrSet) IsEmpty() bool {
	return s == 0
}

// Positions returns the attribute positions in the set, ascending.
func (s AttrSet) Positions() []int {
	out := make([]int, 0, s.Count())
	for v := uint64(s); v != 0; v &= v - 1 {
		out = append(out, bits.TrailingZeros64(v))
	}
	return out
}

// FD is a functional dependency Lhs → Rhs between attribute sets of one
// schema. Both sides are non-empty for well-formed dependencies.
type FD struct {
	Lhs AttrSet
	Rhs AttrSet
}

// Trivial reports whether the dependency is implied by reflexivity
// (Rhs ⊆ Lhs).
func (f FD) Trivial() bool {
	return f.Rhs.SubsetOf(f.Lhs)
}

// FDSet is an ordered collection of functional dependencies. Order carries no
// semantics but is preserved so derived output is reproducible.
type FDSet []FD

// Dedupe returns the set with exact (Lhs, Rhs) duplicates collapsed,
// keeping first occurrences in order.
func (fds FDSet) Dedupe() FDSet {
	seen := make(map[FD]bool, len(fds))
	out := make(FDSet, 0, len(fds))
	for _, f := range fds {
		if seen[f] {
			continue
		}
		seen[f] = true
		out = append(out, f)
	}
	return out
}

// NonTrivial returns the dependencies that are not trivial, in order.
func (fds FDSet) NonTrivial() FDSet {
	out := make(FDSet, 0, len(fds))
	for _, f := range fds {
		if !f.Trivial() {
			out = append(out, f)
		}
	}
	return out
}

// Compact merges dependencies sharing a determinant by unioning their
// dependents, keeping the first occurrence order of each determinant.
func (fds FDSet) Compact() FDSet {
	index := make(map[AttrSet]int, len(fds))
	out := make(FDSet, 0, len(fds))
	for _, f := range fds {
		if i, ok := index[f.Lhs]; ok {
			out[i].Rhs = out[i].Rhs.Union(f.Rhs)
			continue
		}
		index[f.Lhs] = len(out)
		out = append(out, f)
	}
	return out
}

// Schema is an attribute universe with its declared functional dependencies.
// The attribute slice fixes the bit ordering for every AttrSet interpreted
// against this schema. Schemas are immutable once constructed.
type Schema struct {
	Name  string
	Attrs []Attribute
	FDs   FDSet
}

// Universe returns the set containing every attribute of the schema.
func (s *Schema) Universe() AttrSet {
	if len(s.Attrs) == MaxAttributes {
		return ^AttrSet(0)
	}
	return AttrSet(1)<<uint(len(s.Attrs)) - 1
}

// Index returns the position of the named attribute, or -1.
func (s *Schema) Index(a Attribute) int {
	for i, attr := range s.Attrs {
		if attr == a {
			return i
		}
	}
	return -1
}

// Names returns the attribute names in the given set, in schema order.
func (s *Schema) Names(set AttrSet) []string {
	out := make([]string, 0, set.Count())
	for _, i := range set.Positions() {
		out = append(out, string(s.Attrs[i]))
	}
	return out
}

// FormatSet renders an attribute set like "{A, B}".
func (s *Schema) FormatSet(set AttrSet) string {
	return "{" + strings.Join(s.Names(set), ", ") + "}"
}

// FormatFD renders a dependency like "A, B -> C".
func (s *Schema) FormatFD(f FD) string {
	return strings.Join(s.Names(f.Lhs), ", ") + " -> " + strings.Join(s.Names(f.Rhs), ", ")
}
