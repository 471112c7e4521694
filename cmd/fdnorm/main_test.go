package main

import (
	"errors"
	"testing"

	"github.com/tordrt/fdnorm"
)

func TestSplitList(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{
			name: "single item",
			in:   "users",
			want: []string{"users"},
		},
		{
			name: "multiple items",
			in:   "users,posts,comments",
			want: []string{"users", "posts", "comments"},
		},
		{
			name: "items with spaces",
			in:   "users, posts, comments",
			want: []string{"users", "posts", "comments"},
		},
		{
			name: "empty string",
			in:   "",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := splitList(tt.in)
			if len(got) != len(tt.want) {
				t.Errorf("splitList() returned %d items, want %d", len(got), len(tt.want))
				return
			}
			for i, item := range got {
				if item != tt.want[i] {
					t.Errorf("splitList() item[%d] = %s, want %s", i, item, tt.want[i])
				}
			}
		})
	}
}

func TestInlineSchema(t *testing.T) {
	attrsFlag = "A, B, C"
	fdsFlag = "A -> B; B -> C"
	defer func() { attrsFlag, fdsFlag = "", "" }()

	s, err := inlineSchema()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(s.Attrs) != 3 {
		t.Errorf("got %d attributes, want 3", len(s.Attrs))
	}
	if len(s.FDs) != 2 {
		t.Errorf("got %d dependencies, want 2", len(s.FDs))
	}
}

func TestInlineSchemaRequiresAttrs(t *testing.T) {
	attrsFlag = ""
	if _, err := inlineSchema(); err == nil {
		t.Error("expected an error without --attrs")
	}
}

func TestInlineSchemaRejectsBadDependency(t *testing.T) {
	attrsFlag = "A, B"
	fdsFlag = "A -> Z"
	defer func() { attrsFlag, fdsFlag = "", "" }()

	if _, err := inlineSchema(); !errors.Is(err, fdnorm.ErrMalformedInput) {
		t.Errorf("expected ErrMalformedInput, got %v", err)
	}
}
