package formatter

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/tordrt/fdnorm/internal/analysis"
)

const (
	formatMarkdown = "markdown"
	formatText     = "text"
)

// MultiFileFormatter writes reports to a directory: an overview file plus
// one file per relation.
type MultiFileFormatter struct {
	OutputDir    string
	OutputFormat string // "text" or "markdown"
}

// NewMultiFileFormatter creates a new multi-file formatter.
func NewMultiFileFormatter(outputDir, format string) *MultiFileFormatter {
	return &MultiFileFormatter{
		OutputDir:    outputDir,
		OutputFormat: format,
	}
}

// Format writes the reports to the output directory.
func (f *MultiFileFormatter) Format(reports []*analysis.Report) error {
	if err := os.MkdirAll(f.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if err := f.writeOverview(reports); err != nil {
		return fmt.Errorf("failed to write overview: %w", err)
	}

	for _, r := range reports {
		if err := f.writeReportFile(r); err != nil {
			return fmt.Errorf("failed to write report for %s: %w", r.Schema.Name, err)
		}
	}
	return nil
}

// writeOverview writes one line per relation: name, normal form, key count.
func (f *MultiFileFormatter) writeOverview(reports []*analysis.Report) error {
	filename := filepath.Join(f.OutputDir, "_overview"+f.fileExtension())
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	if f.OutputFormat == formatMarkdown {
		_, _ = fmt.Fprintln(file, "# Normalization overview")
		_, _ = fmt.Fprintln(file)
		for _, r := range reports {
			_, _ = fmt.Fprintf(file, "- **%s**: %s, %d candidate key(s)\n",
				r.Schema.Name, r.Normal.Level, len(r.Keys.Keys))
		}
		return nil
	}

	for _, r := range reports {
		_, _ = fmt.Fprintf(file, "%s: %s, %d candidate key(s)\n",
			r.Schema.Name, r.Normal.Level, len(r.Keys.Keys))
	}
	return nil
}

func (f *MultiFileFormatter) writeReportFile(r *analysis.Report) error {
	filename := filepath.Join(f.OutputDir, r.Schema.Name+f.fileExtension())
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	reports := []*analysis.Report{r}
	if f.OutputFormat == formatMarkdown {
		return NewMarkdownFormatter(file).Format(reports)
	}
	return NewTextFormatter(file).Format(reports)
}

func (f *MultiFileFormatter) fileExtension() string {
	if f.OutputFormat == formatMarkdown {
		return ".md"
	}
	return ".txt"
}
