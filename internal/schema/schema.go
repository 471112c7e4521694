package schema

import (
	"fmt"
	"strings"
)

// New validates and constructs a schema from an ordered attribute list and
// its functional dependencies. It fails with ErrMalformedInput when the
// universe is empty, exceeds MaxAttributes, repeats an attribute, or any
// dependency has an empty side or reaches outside the universe.
func New(name string, attrs []Attribute, fds FDSet) (*Schema, error) {
	if len(attrs) == 0 {
		return nil, fmt.Errorf("%w: schema %q has no attributes", ErrMalformedInput, name)
	}
	if len(attrs) > MaxAttributes {
		return nil, fmt.Errorf("%w: schema %q has %d attributes, limit is %d", ErrMalformedInput, name, len(attrs), MaxAttributes)
	}
	seen := make(map[Attribute]bool, len(attrs))
	for _, a := range attrs {
		if a == "" {
			return nil, fmt.Errorf("%w: empty attribute name in schema %q", ErrMalformedInput, name)
		}
		if seen[a] {
			return nil, fmt.Errorf("%w: duplicate attribute %q in schema %q", ErrMalformedInput, a, name)
		}
		seen[a] = true
	}

	s := &Schema{Name: name, Attrs: append([]Attribute(nil), attrs...)}
	universe := s.Universe()
	for _, f := range fds {
		if f.Lhs.IsEmpty() {
			return nil, fmt.Errorf("%w: dependency with empty determinant in schema %q", ErrMalformedInput, name)
		}
		if f.Rhs.IsEmpty() {
			return nil, fmt.Errorf("%w: dependency with empty dependent in schema %q", ErrMalformedInput, name)
		}
		if !f.Lhs.SubsetOf(universe) || !f.Rhs.SubsetOf(universe) {
			return nil, fmt.Errorf("%w: dependency references attributes outside schema %q", ErrMalformedInput, name)
		}
	}
	s.FDs = fds.Dedupe()
	return s, nil
}

// Parse builds a schema from attribute names and textual dependencies of the
// form "A, B -> C". Attribute separators may be commas or spaces.
func Parse(name string, attrNames []string, fdSpecs []string) (*Schema, error) {
	attrs := make([]Attribute, len(attrNames))
	for i, n := range attrNames {
		attrs[i] = Attribute(strings.TrimSpace(n))
	}
	s := &Schema{Name: name, Attrs: attrs}

	fds := make(FDSet, 0, len(fdSpecs))
	for _, spec := range fdSpecs {
		f, err := s.ParseFD(spec)
		if err != nil {
			return nil, err
		}
		fds = append(fds, f)
	}
	return New(name, attrs, fds)
}

// ParseFD parses a single dependency like "A, B -> C, D" against the
// schema's attribute ordering.
func (s *Schema) ParseFD(spec string) (FD, error) {
	parts := strings.SplitN(spec, "->", 2)
	if len(parts) != 2 {
		return FD{}, fmt.Errorf("%w: dependency %q is missing \"->\"", ErrMalformedInput, spec)
	}
	lhs, err := s.parseSide(parts[0], spec)
	if err != nil {
		return FD{}, err
	}
	rhs, err := s.parseSide(parts[1], spec)
	if err != nil {
		return FD{}, err
	}
	return FD{Lhs: lhs, Rhs: rhs}, nil
}

func (s *Schema) parseSide(side, spec string) (AttrSet, error) {
	var set AttrSet
	fields := strings.FieldsFunc(side, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})
	if len(fields) == 0 {
		return 0, fmt.Errorf("%w: dependency %q has an empty side", ErrMalformedInput, spec)
	}
	for _, f := range fields {
		i := s.Index(Attribute(f))
		if i < 0 {
			return 0, fmt.Errorf("%w: dependency %q references unknown attribute %q", ErrMalformedInput, spec, f)
		}
		set = set.With(i)
	}
	return set, nil
}

// FromTable builds a relation schema from a table's column list and its
// uniqueness constraints. Each constraint (primary key or unique index)
// becomes a dependency from its columns to the rest of the table.
func FromTable(name string, columns []string, determinants [][]string) (*Schema, error) {
	attrs := make([]Attribute, len(columns))
	for i, c := range columns {
		attrs[i] = Attribute(c)
	}
	s := &Schema{Name: name, Attrs: attrs}
	universe := s.Universe()

	var fds FDSet
	for _, det := range determinants {
		var lhs AttrSet
		for _, col := range det {
			i := s.Index(Attribute(col))
			if i < 0 {
				return nil, fmt.Errorf("%w: constraint on table %q references unknown column %q", ErrMalformedInput, name, col)
			}
			lhs = lhs.With(i)
		}
		rhs := universe.Diff(lhs)
		if lhs.IsEmpty() || rhs.IsEmpty() {
			continue
		}
		fds = append(fds, FD{Lhs: lhs, Rhs: rhs})
	}
	return New(name, attrs, fds)
}
