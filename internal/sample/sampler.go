// Package sample generates relation instances that provably satisfy, or
// deliberately violate, a set of functional dependencies.
package sample

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"

	"github.com/go-faker/faker/v4"
	"github.com/google/uuid"

	"github.com/tordrt/fdnorm/internal/schema"
)

// ErrUnsatisfiable reports a sample request that cannot be met: more
// distinct rows than the domains can represent, a violation requested with
// fewer than two rows or a single-value domain, or no non-trivial dependency
// to violate.
var ErrUnsatisfiable = errors.New("unsatisfiable sample request")

// maxRowTries bounds how often a conflicting or duplicate row is redrawn
// before the request is declared unsatisfiable.
const maxRowTries = 32

// Options configures instance generation.
type Options struct {
	// Rows is the number of distinct tuples to generate.
	Rows int
	// DomainSize is the number of values each attribute's finite domain holds.
	DomainSize int
	// Satisfy selects whether the instance must satisfy every dependency or
	// must contain at least one reported violation.
	Satisfy bool
	// Seed makes row generation reproducible.
	Seed int64
}

// Violation identifies a witnessed dependency violation: two rows agreeing
// on the determinant of FD while disagreeing on its dependent.
type Violation struct {
	FD   schema.FD
	RowA int
	RowB int
}

// Instance is a generated relation instance. Rows are tuples indexed by the
// schema's attribute positions; Domains holds the finite per-attribute value
// pools the tuples draw from. Violation is set only for satisfy=false
// instances.
type Instance struct {
	Schema    *schema.Schema
	Domains   [][]string
	Rows      [][]string
	Violation *Violation
}

// Tuple returns row i as an attribute→value mapping.
func (inst *Instance) Tuple(i int) map[schema.Attribute]string {
	t := make(map[schema.Attribute]string, len(inst.Schema.Attrs))
	for j, a := range inst.Schema.Attrs {
		t[a] = inst.Rows[i][j]
	}
	return t
}

// Generate produces an instance of the schema whose rows are consistent
// with fds when opts.Satisfy is set; otherwise the instance contains at
// least one explicit violation, reported on the result. Satisfaction is
// enforced by memoizing the dependent values first observed for each
// distinct determinant tuple and reusing them on every repeat.
func Generate(s *schema.Schema, fds schema.FDSet, opts Options) (*Instance, error) {
	if err := validate(s, fds, opts); err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewSource(opts.Seed))
	inst := &Instance{
		Schema:  s,
		Domains: buildDomains(len(s.Attrs), opts.DomainSize),
	}

	nontrivial := fds.NonTrivial()
	if opts.Satisfy {
		if err := fillSatisfying(inst, nontrivial, opts.Rows, rng, true); err != nil {
			return nil, err
		}
		return inst, nil
	}

	// Violating instances stay consistent as far as the domains allow: a
	// best-effort consistent prefix, topped up with unconstrained distinct
	// rows when the dependency-respecting tuple space is smaller than the
	// request, and a guaranteed, reported violating pair.
	_ = fillSatisfying(inst, nontrivial, opts.Rows, rng, false)
	if err := fillUnconstrained(inst, opts.Rows, rng); err != nil {
		return nil, err
	}
	if v, ok := findViolationPair(inst, nontrivial); ok {
		inst.Violation = v
		return inst, nil
	}
	if err := injectViolation(inst, nontrivial); err != nil {
		return nil, err
	}
	return inst, nil
}

func validate(s *schema.Schema, fds schema.FDSet, opts Options) error {
	if opts.Rows <= 0 {
		return fmt.Errorf("%w: row count %d", schema.ErrMalformedInput, opts.Rows)
	}
	if opts.DomainSize <= 0 {
		return fmt.Errorf("%w: domain size %d", schema.ErrMalformedInput, opts.DomainSize)
	}
	universe := s.Universe()
	for _, f := range fds {
		if f.Lhs.IsEmpty() || f.Rhs.IsEmpty() {
			return fmt.Errorf("%w: dependency with empty side", schema.ErrMalformedInput)
		}
		if !f.Lhs.SubsetOf(universe) || !f.Rhs.SubsetOf(universe) {
			return fmt.Errorf("%w: dependency outside schema %q", schema.ErrMalformedInput, s.Name)
		}
	}

	// Distinct-tuple capacity of the domains, guarding against overflow.
	capacity := 1
	for range s.Attrs {
		if capacity >= opts.Rows {
			break
		}
		capacity *= opts.DomainSize
	}
	if opts.Rows > capacity {
		return fmt.Errorf("%w: %d rows exceed the %d distinct tuples representable with domain size %d",
			ErrUnsatisfiable, opts.Rows, capacity, opts.DomainSize)
	}

	if !opts.Satisfy {
		if opts.Rows < 2 {
			return fmt.Errorf("%w: a violation needs at least two rows", ErrUnsatisfiable)
		}
		if opts.DomainSize < 2 {
			return fmt.Errorf("%w: a violation needs at least two domain values", ErrUnsatisfiable)
		}
		if len(fds.NonTrivial()) == 0 {
			return fmt.Errorf("%w: no non-trivial dependency to violate", ErrUnsatisfiable)
		}
	}
	return nil
}

// buildDomains draws domainSize distinct values per attribute from faker,
// disambiguating collisions with a uuid fragment.
func buildDomains(attrs, domainSize int) [][]string {
	domains := make([][]string, attrs)
	for i := range domains {
		seen := make(map[string]bool, domainSize)
		vals := make([]string, 0, domainSize)
		for len(vals) < domainSize {
			v := faker.Word()
			for v == "" || seen[v] {
				v = fmt.Sprintf("%s-%s", v, uuid.NewString()[:8])
			}
			seen[v] = true
			vals = append(vals, v)
		}
		domains[i] = vals
	}
	return domains
}

// fillSatisfying appends rows until the requested count is reached. Each
// candidate row is drawn at random, rewritten to agree with the memoized
// dependent values for any determinant tuple seen before, and redrawn when
// it cannot be stabilized or duplicates an accepted row. When strict is
// false, running out of retries stops the fill instead of failing, leaving
// a shorter consistent prefix.
func fillSatisfying(inst *Instance, fds schema.FDSet, rows int, rng *rand.Rand, strict bool) error {
	memos := make([]map[string][]string, len(fds))
	for i := range memos {
		memos[i] = make(map[string][]string)
	}
	seen := make(map[string]bool, rows)

	for len(inst.Rows) < rows {
		accepted := false
		for try := 0; try < maxRowTries; try++ {
			row := randomRow(inst, rng)
			if !stabilize(row, fds, memos) {
				continue
			}
			key := strings.Join(row, "\x1f")
			if seen[key] {
				continue
			}
			record(row, fds, memos)
			seen[key] = true
			inst.Rows = append(inst.Rows, row)
			accepted = true
			break
		}
		if !accepted {
			if strict {
				return fmt.Errorf("%w: could not extend the instance to %d distinct consistent rows", ErrUnsatisfiable, rows)
			}
			return nil
		}
	}
	return nil
}

// fillUnconstrained tops the instance up to the requested count with
// distinct rows that ignore the dependencies.
func fillUnconstrained(inst *Instance, rows int, rng *rand.Rand) error {
	seen := make(map[string]bool, len(inst.Rows))
	for _, r := range inst.Rows {
		seen[strings.Join(r, "\x1f")] = true
	}
	for len(inst.Rows) < rows {
		accepted := false
		for try := 0; try < maxRowTries; try++ {
			row := randomRow(inst, rng)
			key := strings.Join(row, "\x1f")
			if seen[key] {
				continue
			}
			seen[key] = true
			inst.Rows = append(inst.Rows, row)
			accepted = true
			break
		}
		if !accepted {
			return fmt.Errorf("%w: could not generate %d distinct rows", ErrUnsatisfiable, rows)
		}
	}
	return nil
}

// findViolationPair scans for two rows already witnessing a violation.
func findViolationPair(inst *Instance, fds schema.FDSet) (*Violation, bool) {
	for _, f := range fds {
		first := make(map[string]int, len(inst.Rows))
		for i, row := range inst.Rows {
			key := project(row, f.Lhs)
			j, ok := first[key]
			if !ok {
				first[key] = i
				continue
			}
			if project(row, f.Rhs) != project(inst.Rows[j], f.Rhs) {
				return &Violation{FD: f, RowA: j, RowB: i}, true
			}
		}
	}
	return nil, false
}

func randomRow(inst *Instance, rng *rand.Rand) []string {
	row := make([]string, len(inst.Schema.Attrs))
	for i := range row {
		row[i] = inst.Domains[i][rng.Intn(len(inst.Domains[i]))]
	}
	return row
}

// stabilize rewrites the row's dependent values to match existing memo
// entries until a fixpoint. Dependencies can feed each other, so passes
// repeat; a row that keeps changing past the bound is caught in a memo
// cycle and is rejected.
func stabilize(row []string, fds schema.FDSet, memos []map[string][]string) bool {
	maxPasses := len(fds)*len(row) + 1
	for pass := 0; pass < maxPasses; pass++ {
		changed := false
		for i, f := range fds {
			want, ok := memos[i][project(row, f.Lhs)]
			if !ok {
				continue
			}
			for j, p := range f.Rhs.Positions() {
				if row[p] != want[j] {
					row[p] = want[j]
					changed = true
				}
			}
		}
		if !changed {
			return true
		}
	}
	return false
}

// record stores the row's dependent values for every determinant tuple not
// yet mapped. Called only on stabilized rows, so existing entries already
// agree with the row.
func record(row []string, fds schema.FDSet, memos []map[string][]string) {
	for i, f := range fds {
		key := project(row, f.Lhs)
		if _, ok := memos[i][key]; !ok {
			vals := make([]string, 0, f.Rhs.Count())
			for _, p := range f.Rhs.Positions() {
				vals = append(vals, row[p])
			}
			memos[i][key] = vals
		}
	}
}

func project(row []string, set schema.AttrSet) string {
	parts := make([]string, 0, set.Count())
	for _, p := range set.Positions() {
		parts = append(parts, row[p])
	}
	return strings.Join(parts, "\x1f")
}

// injectViolation replaces the second row with a copy of the first whose
// dependent value differs on the first non-trivial dependency, and reports
// the pair. Validation already guaranteed at least two rows, two domain
// values, and a dependency to break.
func injectViolation(inst *Instance, fds schema.FDSet) error {
	f := fds[0]
	base := inst.Rows[0]
	for _, p := range f.Rhs.Diff(f.Lhs).Positions() {
		for _, v := range inst.Domains[p] {
			if v == base[p] {
				continue
			}
			row := append([]string(nil), base...)
			row[p] = v
			if duplicatesExisting(inst, row, 1) {
				continue
			}
			inst.Rows[1] = row
			inst.Violation = &Violation{FD: f, RowA: 0, RowB: 1}
			return nil
		}
	}
	return fmt.Errorf("%w: could not construct a violating row pair", ErrUnsatisfiable)
}

func duplicatesExisting(inst *Instance, row []string, skip int) bool {
	key := strings.Join(row, "\x1f")
	for i, r := range inst.Rows {
		if i == skip {
			continue
		}
		if strings.Join(r, "\x1f") == key {
			return true
		}
	}
	return false
}
