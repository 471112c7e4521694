// Package normal classifies schemas by normal form and decomposes them
// toward BCNF or 3NF.
package normal

import (
	"github.com/tordrt/fdnorm/internal/fd"
	"github.com/tordrt/fdnorm/internal/schema"
)

// Level is a normal-form level. 1NF is the baseline; atomicity is assumed,
// not re-derived.
type Level int

const (
	OneNF Level = iota + 1
	TwoNF
	ThreeNF
	BCNF
)

func (l Level) String() string {
	switch l {
	case OneNF:
		return "1NF"
	case TwoNF:
		return "2NF"
	case ThreeNF:
		return "3NF"
	case BCNF:
		return "BCNF"
	}
	return "unknown"
}

// Result is a classification: the highest level the schema satisfies and the
// dependencies violating the next level up (empty only at BCNF).
type Result struct {
	Level      Level
	Violations schema.FDSet
}

// Classify determines the highest normal form the schema satisfies given its
// candidate keys, checking top-down from BCNF. Violations are reported
// against the first unattained level, with dependents split to single
// attributes.
func Classify(s *schema.Schema, keys []schema.AttrSet) Result {
	prime := fd.PrimeAttributes(keys)
	split := splitDependents(s.FDs)

	if v := bcnfViolations(s, split); len(v) > 0 {
		if v3 := thirdNFViolations(s, split, prime); len(v3) > 0 {
			if v2 := secondNFViolations(split, keys, prime); len(v2) > 0 {
				return Result{Level: OneNF, Violations: v2}
			}
			return Result{Level: TwoNF, Violations: v3}
		}
		return Result{Level: ThreeNF, Violations: v}
	}
	return Result{Level: BCNF}
}

// splitDependents rewrites dependencies to single-attribute dependents,
// dropping trivial ones.
func splitDependents(fds schema.FDSet) schema.FDSet {
	out := make(schema.FDSet, 0, len(fds))
	for _, f := range fds {
		for _, i := range f.Rhs.Diff(f.Lhs).Positions() {
			out = append(out, schema.FD{Lhs: f.Lhs, Rhs: schema.SetOf(i)})
		}
	}
	return out.Dedupe()
}

// bcnfViolations returns the non-trivial dependencies whose determinant is
// not a superkey.
func bcnfViolations(s *schema.Schema, fds schema.FDSet) schema.FDSet {
	var out schema.FDSet
	for _, f := range fds {
		if !fd.IsSuperkey(s, f.Lhs) {
			out = append(out, f)
		}
	}
	return out
}

// thirdNFViolations returns transitive dependencies: determinant not a
// superkey and dependent attribute non-prime.
func thirdNFViolations(s *schema.Schema, fds schema.FDSet, prime schema.AttrSet) schema.FDSet {
	var out schema.FDSet
	for _, f := range fds {
		if !fd.IsSuperkey(s, f.Lhs) && f.Rhs.Intersect(prime).IsEmpty() {
			out = append(out, f)
		}
	}
	return out
}

// secondNFViolations returns partial dependencies: determinant a proper
// subset of some candidate key and dependent attribute non-prime.
func secondNFViolations(fds schema.FDSet, keys []schema.AttrSet, prime schema.AttrSet) schema.FDSet {
	var out schema.FDSet
	for _, f := range fds {
		if !f.Rhs.Intersect(prime).IsEmpty() {
			continue
		}
		for _, k := range keys {
			if f.Lhs.ProperSubsetOf(k) {
				out = append(out, f)
				break
			}
		}
	}
	return out
}
