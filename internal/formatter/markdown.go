package formatter

import (
	"fmt"
	"io"
	"strings"

	"github.com/tordrt/fdnorm/internal/analysis"
	"github.com/tordrt/fdnorm/internal/normal"
)

// MarkdownFormatter renders reports as markdown documents.
type MarkdownFormatter struct {
	writer io.Writer
}

// NewMarkdownFormatter creates a new markdown formatter.
func NewMarkdownFormatter(w io.Writer) *MarkdownFormatter {
	return &MarkdownFormatter{writer: w}
}

// Format writes every report as its own section.
func (f *MarkdownFormatter) Format(reports []*analysis.Report) error {
	for i, r := range reports {
		if i > 0 {
			_, _ = fmt.Fprintln(f.writer)
		}
		if err := f.formatReport(r); err != nil {
			return err
		}
	}
	return nil
}

func (f *MarkdownFormatter) formatReport(r *analysis.Report) error {
	s := r.Schema
	names := make([]string, len(s.Attrs))
	for i, a := range s.Attrs {
		names[i] = string(a)
	}
	_, _ = fmt.Fprintf(f.writer, "## %s\n\n", s.Name)
	_, _ = fmt.Fprintf(f.writer, "Attributes: %s\n\n", strings.Join(names, ", "))

	if len(s.FDs) > 0 {
		_, _ = fmt.Fprintln(f.writer, "### Dependencies")
		_, _ = fmt.Fprintln(f.writer)
		for _, fd := range s.FDs {
			_, _ = fmt.Fprintf(f.writer, "- `%s`\n", s.FormatFD(fd))
		}
		_, _ = fmt.Fprintln(f.writer)
	}

	if len(r.Cover) > 0 {
		_, _ = fmt.Fprintln(f.writer, "### Minimal cover")
		_, _ = fmt.Fprintln(f.writer)
		for _, fd := range r.Cover {
			_, _ = fmt.Fprintf(f.writer, "- `%s`\n", s.FormatFD(fd))
		}
		_, _ = fmt.Fprintln(f.writer)
	}

	_, _ = fmt.Fprintln(f.writer, "### Candidate keys")
	_, _ = fmt.Fprintln(f.writer)
	for _, k := range r.Keys.Keys {
		_, _ = fmt.Fprintf(f.writer, "- `%s`\n", s.FormatSet(k))
	}
	if !r.Keys.Complete {
		_, _ = fmt.Fprintln(f.writer, "- *(partial: key search exhausted its budget)*")
	}
	_, _ = fmt.Fprintln(f.writer)

	_, _ = fmt.Fprintf(f.writer, "### Normal form: %s\n\n", r.Normal.Level)
	if len(r.Normal.Violations) > 0 {
		_, _ = fmt.Fprintf(f.writer, "Violations of %s:\n\n", r.Normal.Level+1)
		for _, fd := range r.Normal.Violations {
			_, _ = fmt.Fprintf(f.writer, "- `%s`\n", s.FormatFD(fd))
		}
		_, _ = fmt.Fprintln(f.writer)
	}

	f.formatDecomposition("BCNF decomposition", r.BCNF)
	f.formatDecomposition("3NF synthesis", r.ThirdNF)
	return nil
}

func (f *MarkdownFormatter) formatDecomposition(label string, d *normal.Decomposition) {
	if d == nil {
		return
	}
	note := "dependencies preserved"
	if !d.PreservesDependencies {
		note = "dependencies **not** preserved"
	}
	_, _ = fmt.Fprintf(f.writer, "### %s (%s)\n\n", label, note)
	for _, rel := range d.Relations {
		fds := make([]string, 0, len(rel.FDs))
		for _, fd := range rel.FDs {
			fds = append(fds, d.Base.FormatFD(fd))
		}
		line := fmt.Sprintf("- `%s`", d.Base.FormatSet(rel.Attrs))
		if len(fds) > 0 {
			line += fmt.Sprintf(" with `%s`", strings.Join(fds, "; "))
		}
		_, _ = fmt.Fprintln(f.writer, line)
	}
	_, _ = fmt.Fprintln(f.writer)
}
