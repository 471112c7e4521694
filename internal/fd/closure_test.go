package fd

import (
	"testing"

	"github.com/tordrt/fdnorm/internal/schema"
)

// fixtureABCDE is R(A,B,C,D,E) with AB -> CDE, AC -> BDE, B -> C, C -> B,
// C -> D, B -> E, C -> E. Bit i is the i-th attribute.
func fixtureABCDE() schema.FDSet {
	return schema.FDSet{
		{Lhs: schema.SetOf(0, 1), Rhs: schema.SetOf(2, 3, 4)},
		{Lhs: schema.SetOf(0, 2), Rhs: schema.SetOf(1, 3, 4)},
		{Lhs: schema.SetOf(1), Rhs: schema.SetOf(2)},
		{Lhs: schema.SetOf(2), Rhs: schema.SetOf(1)},
		{Lhs: schema.SetOf(2), Rhs: schema.SetOf(3)},
		{Lhs: schema.SetOf(1), Rhs: schema.SetOf(4)},
		{Lhs: schema.SetOf(2), Rhs: schema.SetOf(4)},
	}
}

func TestClosure(t *testing.T) {
	fds := fixtureABCDE()
	universe := schema.SetOf(0, 1, 2, 3, 4)

	tests := []struct {
		name  string
		attrs schema.AttrSet
		want  schema.AttrSet
	}{
		{name: "AB reaches everything", attrs: schema.SetOf(0, 1), want: universe},
		{name: "AC reaches everything", attrs: schema.SetOf(0, 2), want: universe},
		{name: "B reaches BCDE", attrs: schema.SetOf(1), want: schema.SetOf(1, 2, 3, 4)},
		{name: "A alone is fixed", attrs: schema.SetOf(0), want: schema.SetOf(0)},
		{name: "AD stays AD", attrs: schema.SetOf(0, 3), want: schema.SetOf(0, 3)},
		{name: "empty stays empty", attrs: 0, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Closure(tt.attrs, fds); got != tt.want {
				t.Errorf("closure(%b) = %b, want %b", tt.attrs, got, tt.want)
			}
		})
	}
}

func TestClosureNoApplicableFDs(t *testing.T) {
	fds := schema.FDSet{{Lhs: schema.SetOf(3), Rhs: schema.SetOf(4)}}
	attrs := schema.SetOf(0, 1)
	if got := Closure(attrs, fds); got != attrs {
		t.Errorf("closure should return input unchanged, got %b", got)
	}
}

func TestClosureMonotonicity(t *testing.T) {
	fds := fixtureABCDE()
	universe := uint64(1<<5) - 1

	for a := uint64(0); a <= universe; a++ {
		for b := a; b <= universe; b++ {
			sa, sb := schema.AttrSet(a), schema.AttrSet(b)
			if !sa.SubsetOf(sb) {
				continue
			}
			if !Closure(sa, fds).SubsetOf(Closure(sb, fds)) {
				t.Fatalf("closure not monotone for %b ⊆ %b", a, b)
			}
		}
	}
}

func TestClosureIdempotence(t *testing.T) {
	fds := fixtureABCDE()
	for a := uint64(0); a < 1<<5; a++ {
		once := Closure(schema.AttrSet(a), fds)
		if twice := Closure(once, fds); twice != once {
			t.Fatalf("closure not idempotent for %b: %b then %b", a, once, twice)
		}
	}
}

func TestClosureOrderIndependence(t *testing.T) {
	fds := fixtureABCDE()
	reversed := make(schema.FDSet, len(fds))
	for i, f := range fds {
		reversed[len(fds)-1-i] = f
	}
	for a := uint64(0); a < 1<<5; a++ {
		if Closure(schema.AttrSet(a), fds) != Closure(schema.AttrSet(a), reversed) {
			t.Fatalf("closure depends on dependency order for %b", a)
		}
	}
}

func TestIsSuperkey(t *testing.T) {
	s, err := schema.New("r", []schema.Attribute{"A", "B", "C", "D", "E"}, fixtureABCDE())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !IsSuperkey(s, schema.SetOf(0, 1)) {
		t.Error("AB should be a superkey")
	}
	if IsSuperkey(s, schema.SetOf(0, 3)) {
		t.Error("AD should not be a superkey")
	}
}
