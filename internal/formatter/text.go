// Package formatter renders analysis reports as text or markdown, to one
// writer or to a directory with one file per relation.
package formatter

import (
	"fmt"
	"io"
	"strings"

	"github.com/tordrt/fdnorm/internal/analysis"
	"github.com/tordrt/fdnorm/internal/normal"
)

// TextFormatter renders reports as compact text.
type TextFormatter struct {
	writer io.Writer
}

// NewTextFormatter creates a new text formatter.
func NewTextFormatter(w io.Writer) *TextFormatter {
	return &TextFormatter{writer: w}
}

// Format writes every report, blank-line separated.
func (f *TextFormatter) Format(reports []*analysis.Report) error {
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

func (f *TextFormatter) formatReport(r *analysis.Report) error {
	s := r.Schema
	names := make([]string, len(s.Attrs))
	for i, a := range s.Attrs {
		names[i] = string(a)
	}
	_, _ = fmt.Fprintf(f.writer, "RELATION %s (%s)\n", s.Name, strings.Join(names, ", "))

	if len(s.FDs) > 0 {
		_, _ = fmt.Fprintln(f.writer, "  DEPENDENCIES:")
		for _, fd := range s.FDs {
			_, _ = fmt.Fprintf(f.writer, "    %s\n", s.FormatFD(fd))
		}
	}

	if len(r.Cover) > 0 {
		_, _ = fmt.Fprintln(f.writer, "  MINIMAL COVER:")
		for _, fd := range r.Cover {
			_, _ = fmt.Fprintf(f.writer, "    %s\n", s.FormatFD(fd))
		}
	}

	_, _ = fmt.Fprintln(f.writer, "  CANDIDATE KEYS:")
	for _, k := range r.Keys.Keys {
		_, _ = fmt.Fprintf(f.writer, "    %s\n", s.FormatSet(k))
	}
	if !r.Keys.Complete {
		_, _ = fmt.Fprintln(f.writer, "    (partial: key search exhausted its budget)")
	}

	_, _ = fmt.Fprintf(f.writer, "  NORMAL FORM: %s\n", r.Normal.Level)
	if len(r.Normal.Violations) > 0 {
		_, _ = fmt.Fprintf(f.writer, "  VIOLATIONS (%s):\n", r.Normal.Level+1)
		for _, fd := range r.Normal.Violations {
			_, _ = fmt.Fprintf(f.writer, "    %s\n", s.FormatFD(fd))
		}
	}

	f.formatDecomposition("BCNF DECOMPOSITION", r.BCNF)
	f.formatDecomposition("3NF SYNTHESIS", r.ThirdNF)
	return nil
}

func (f *TextFormatter) formatDecomposition(label string, d *normal.Decomposition) {
	if d == nil {
		return
	}
	note := "dependencies preserved"
	if !d.PreservesDependencies {
		note = "dependencies NOT preserved"
	}
	_, _ = fmt.Fprintf(f.writer, "  %s (%s):\n", label, note)
	for _, rel := range d.Relations {
		fds := make([]string, 0, len(rel.FDs))
		for _, fd := range rel.FDs {
			fds = append(fds, d.Base.FormatFD(fd))
		}
		line := d.Base.FormatSet(rel.Attrs)
		if len(fds) > 0 {
			line += "  [" + strings.Join(fds, "; ") + "]"
		}
		_, _ = fmt.Fprintf(f.writer, "    %s\n", line)
	}
}
