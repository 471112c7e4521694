package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tordrt/fdnorm"
	"github.com/tordrt/fdnorm/internal/analysis"
	"github.com/tordrt/fdnorm/internal/sample"
	"github.com/tordrt/fdnorm/internal/schema"
)

var (
	dbURL      string
	ddlFile    string
	attrsFlag  string
	fdsFlag    string
	tables     string
	schemaName string
	outputFile string
	outputDir  string
	format     string
	maxSteps   int

	sampleRows    int
	domainSize    int
	violate       bool
	seed          int64
	sqliteOutPath string
	tableName     string
	randomFDs     int
)

var rootCmd = &cobra.Command{
	Use:   "fdnorm",
	Short: "Analyze relational schemas under functional dependencies",
	Long: `fdnorm computes attribute closures, minimal covers, candidate keys,
normal-form classifications, and BCNF/3NF decompositions for schemas declared
inline, parsed from DDL scripts, or extracted from a live database.`,
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Classify schemas and decompose them toward BCNF/3NF",
	RunE:  runAnalyze,
}

var sampleCmd = &cobra.Command{
	Use:   "sample",
	Short: "Generate a relation instance satisfying or violating a dependency set",
	RunE:  runSample,
}

func init() {
	analyzeCmd.Flags().StringVar(&dbURL, "url", "", "Database URL (postgres://, mysql://, or sqlite://)")
	analyzeCmd.Flags().StringVar(&ddlFile, "ddl", "", "CREATE TABLE script to analyze instead of a live database")
	analyzeCmd.Flags().StringVar(&attrsFlag, "attrs", "", "Inline schema attributes (comma-separated)")
	analyzeCmd.Flags().StringVar(&fdsFlag, "fds", "", "Inline dependencies, semicolon-separated, e.g. \"A -> B; B -> C\"")
	analyzeCmd.Flags().StringVarP(&tables, "tables", "t", "", "Specific tables (comma-separated, optional)")
	analyzeCmd.Flags().StringVarP(&schemaName, "schema", "s", "", "Database schema name (default: public for PostgreSQL)")
	analyzeCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (default: stdout)")
	analyzeCmd.Flags().StringVarP(&outputDir, "output-dir", "d", "", "Output directory for multi-file output")
	analyzeCmd.Flags().StringVarP(&format, "format", "f", "text", "Output format: text or markdown")
	analyzeCmd.Flags().IntVar(&maxSteps, "budget", 0, "Search step budget per schema (0: unlimited)")

	sampleCmd.Flags().StringVar(&attrsFlag, "attrs", "", "Schema attributes (comma-separated)")
	sampleCmd.Flags().StringVar(&fdsFlag, "fds", "", "Dependencies, semicolon-separated")
	sampleCmd.Flags().IntVar(&randomFDs, "random-fds", 0, "Generate this many random dependencies instead of --fds")
	sampleCmd.Flags().IntVar(&sampleRows, "rows", 10, "Number of rows to generate")
	sampleCmd.Flags().IntVar(&domainSize, "domain-size", 8, "Values per attribute domain")
	sampleCmd.Flags().BoolVar(&violate, "violate", false, "Inject a reported dependency violation")
	sampleCmd.Flags().Int64Var(&seed, "seed", 1, "Random seed")
	sampleCmd.Flags().StringVar(&tableName, "table", "sample", "Table name for emitted SQL")
	sampleCmd.Flags().StringVar(&sqliteOutPath, "sqlite-out", "", "Write the instance into this SQLite file instead of printing SQL")

	rootCmd.AddCommand(analyzeCmd, sampleCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	sources := 0
	if dbURL != "" {
		sources++
	}
	if ddlFile != "" {
		sources++
	}
	if attrsFlag != "" {
		sources++
	}
	if sources == 0 {
		return fmt.Errorf("one of --url, --ddl, or --attrs must be specified")
	}
	if sources > 1 {
		return fmt.Errorf("only one of --url, --ddl, or --attrs can be specified")
	}

	opts := &fdnorm.Options{
		MaxSteps:   maxSteps,
		Tables:     splitList(tables),
		SchemaName: schemaName,
	}

	var reports []*analysis.Report
	switch {
	case dbURL != "":
		rs, err := fdnorm.AnalyzeURL(ctx, dbURL, opts)
		if err != nil {
			return err
		}
		reports = rs
	case ddlFile != "":
		script, err := os.ReadFile(ddlFile)
		if err != nil {
			return fmt.Errorf("failed to read DDL file: %w", err)
		}
		rs, err := fdnorm.AnalyzeScript(ctx, string(script), opts)
		if err != nil {
			return err
		}
		reports = rs
	default:
		s, err := inlineSchema()
		if err != nil {
			return err
		}
		r, err := fdnorm.Analyze(ctx, s, opts)
		if err != nil {
			return err
		}
		reports = []*analysis.Report{r}
	}

	outOpts := &fdnorm.OutputOptions{Format: format, OutputDir: outputDir}
	if outputFile != "" {
		file, err := os.Create(outputFile)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer file.Close()
		outOpts.Writer = file
	}
	return fdnorm.FormatReports(reports, outOpts)
}

func runSample(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	if randomFDs > 0 && fdsFlag != "" {
		return fmt.Errorf("only one of --fds and --random-fds can be specified")
	}

	s, err := inlineSchema()
	if err != nil {
		return err
	}
	if randomFDs > 0 {
		g, err := sample.NewFDGenerator(len(s.Attrs), seed)
		if err != nil {
			return err
		}
		s, err = schema.New(s.Name, s.Attrs, g.FDs(randomFDs))
		if err != nil {
			return err
		}
		for _, f := range s.FDs {
			fmt.Fprintf(os.Stderr, "generated: %s\n", s.FormatFD(f))
		}
	}

	inst, err := fdnorm.Sample(s, sample.Options{
		Rows:       sampleRows,
		DomainSize: domainSize,
		Satisfy:    !violate,
		Seed:       seed,
	})
	if err != nil {
		return err
	}

	if inst.Violation != nil {
		fmt.Fprintf(os.Stderr, "violation injected: %s between rows %d and %d\n",
			s.FormatFD(inst.Violation.FD), inst.Violation.RowA, inst.Violation.RowB)
	}

	if sqliteOutPath != "" {
		return sample.WriteSQLite(ctx, inst, tableName, sqliteOutPath)
	}

	query, queryArgs, err := sample.InsertSQL(inst, tableName)
	if err != nil {
		return err
	}
	fmt.Println(query)
	fmt.Println("-- args:", queryArgs)
	return nil
}

func inlineSchema() (*schema.Schema, error) {
	if attrsFlag == "" {
		return nil, fmt.Errorf("--attrs is required for an inline schema")
	}
	var fds []string
	if fdsFlag != "" {
		fds = strings.Split(fdsFlag, ";")
		for i := range fds {
			fds[i] = strings.TrimSpace(fds[i])
		}
	}
	return fdnorm.NewSchema("inline", splitList(attrsFlag), fds)
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
