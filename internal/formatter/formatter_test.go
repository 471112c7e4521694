package formatter

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tordrt/fdnorm/internal/analysis"
	"github.com/tordrt/fdnorm/internal/schema"
)

func chainReport(t *testing.T) *analysis.Report {
	t.Helper()
	s, err := schema.Parse("orders", []string{"A", "B", "C", "D"},
		[]string{"A -> B", "B -> C", "C -> D"})
	if err != nil {
		t.Fatalf("parse schema: %v", err)
	}
	r, err := analysis.Run(context.Background(), s, 0)
	if err != nil {
		t.Fatalf("run analysis: %v", err)
	}
	return r
}

func TestTextFormatter(t *testing.T) {
	var buf bytes.Buffer
	if err := NewTextFormatter(&buf).Format([]*analysis.Report{chainReport(t)}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		"RELATION orders (A, B, C, D)",
		"DEPENDENCIES:",
		"A -> B",
		"MINIMAL COVER:",
		"CANDIDATE KEYS:",
		"{A}",
		"NORMAL FORM: 2NF",
		"VIOLATIONS (3NF):",
		"B -> C",
		"BCNF DECOMPOSITION",
		"3NF SYNTHESIS",
		"dependencies preserved",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestTextFormatterPartialKeys(t *testing.T) {
	r := chainReport(t)
	r.Keys.Complete = false

	var buf bytes.Buffer
	if err := NewTextFormatter(&buf).Format([]*analysis.Report{r}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(buf.String(), "partial: key search exhausted its budget") {
		t.Errorf("output missing partial-keys note:\n%s", buf.String())
	}
}

func TestMarkdownFormatter(t *testing.T) {
	var buf bytes.Buffer
	if err := NewMarkdownFormatter(&buf).Format([]*analysis.Report{chainReport(t)}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		"## orders",
		"Attributes: A, B, C, D",
		"### Dependencies",
		"- `A -> B`",
		"### Minimal cover",
		"### Candidate keys",
		"- `{A}`",
		"### Normal form: 2NF",
		"Violations of 3NF:",
		"### BCNF decomposition",
		"### 3NF synthesis",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestMultiFileFormatter(t *testing.T) {
	dir := t.TempDir()
	f := NewMultiFileFormatter(filepath.Join(dir, "out"), formatMarkdown)
	if err := f.Format([]*analysis.Report{chainReport(t)}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	overview, err := os.ReadFile(filepath.Join(dir, "out", "_overview.md"))
	if err != nil {
		t.Fatalf("read overview: %v", err)
	}
	if !strings.Contains(string(overview), "**orders**: 2NF, 1 candidate key(s)") {
		t.Errorf("overview = %s", overview)
	}

	report, err := os.ReadFile(filepath.Join(dir, "out", "orders.md"))
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	if !strings.Contains(string(report), "## orders") {
		t.Errorf("report = %s", report)
	}
}

func TestMultiFileFormatterText(t *testing.T) {
	dir := t.TempDir()
	f := NewMultiFileFormatter(dir, formatText)
	if err := f.Format([]*analysis.Report{chainReport(t)}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	overview, err := os.ReadFile(filepath.Join(dir, "_overview.txt"))
	if err != nil {
		t.Fatalf("read overview: %v", err)
	}
	if !strings.Contains(string(overview), "orders: 2NF") {
		t.Errorf("overview = %s", overview)
	}
	if _, err := os.Stat(filepath.Join(dir, "orders.txt")); err != nil {
		t.Errorf("per-relation file missing: %v", err)
	}
}
