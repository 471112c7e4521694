//go:build integration
// +build integration

package integration

import (
	"testing"

	"github.com/tordrt/fdnorm/internal/schema"
)

// findRelation returns the extracted relation with the given name, or nil.
func findRelation(relations []*schema.Schema, name string) *schema.Schema {
	for _, r := range relations {
		if r.Name == name {
			return r
		}
	}
	return nil
}

// verifyRelationsExist checks that all expected relations were extracted.
func verifyRelationsExist(t *testing.T, relations []*schema.Schema, expected []string) {
	t.Helper()

	if len(relations) != len(expected) {
		t.Errorf("Expected %d relations, got %d", len(expected), len(relations))
	}
	for _, name := range expected {
		if findRelation(relations, name) == nil {
			t.Errorf("Expected relation %s not found", name)
		}
	}
}

// verifyAttributes checks that expected attributes exist in a relation.
func verifyAttributes(t *testing.T, rel *schema.Schema, expected []string) {
	t.Helper()

	seen := make(map[schema.Attribute]bool, len(rel.Attrs))
	for _, a := range rel.Attrs {
		seen[a] = true
	}
	for _, name := range expected {
		if !seen[schema.Attribute(name)] {
			t.Errorf("Expected attribute %s not found in relation %s", name, rel.Name)
		}
	}
}

// verifyDeterminant checks that some declared dependency of the relation has
// exactly the given determinant columns.
func verifyDeterminant(t *testing.T, rel *schema.Schema, determinant []string) {
	t.Helper()

	var want schema.AttrSet
	for _, name := range determinant {
		i := rel.Index(schema.Attribute(name))
		if i < 0 {
			t.Errorf("Determinant column %s not found in relation %s", name, rel.Name)
			return
		}
		want = want.With(i)
	}
	for _, f := range rel.FDs {
		if f.Lhs == want {
			return
		}
	}
	t.Errorf("No dependency with determinant %v declared on relation %s", determinant, rel.Name)
}
