// Package analysis runs the full normalization pipeline over one schema and
// aggregates the results for reporting.
package analysis

import (
	"context"

	"github.com/tordrt/fdnorm/internal/fd"
	"github.com/tordrt/fdnorm/internal/normal"
	"github.com/tordrt/fdnorm/internal/schema"
)

// Report is the complete analysis of one schema: its minimal cover,
// candidate keys, normal-form classification, and both decompositions.
type Report struct {
	Schema  *schema.Schema
	Cover   schema.FDSet
	Keys    fd.KeySearch
	Normal  normal.Result
	BCNF    *normal.Decomposition
	ThirdNF *normal.Decomposition
}

// Run executes the pipeline: minimal cover, candidate keys, classification,
// and, when the schema is below the respective form, a BCNF decomposition
// and a 3NF synthesis. maxSteps caps the key and cover searches; on
// exhaustion the partial report is returned with Keys.Complete false
// alongside fd.ErrBudgetExhausted.
func Run(ctx context.Context, s *schema.Schema, maxSteps int) (*Report, error) {
	report := &Report{Schema: s}

	budget := fd.NewBudget(maxSteps)
	cover, err := fd.MinimalCover(ctx, s.FDs, budget)
	if err != nil {
		return report, err
	}
	report.Cover = cover

	keys, err := fd.CandidateKeys(ctx, s, budget)
	report.Keys = keys
	if err != nil {
		return report, err
	}

	report.Normal = normal.Classify(s, keys.Keys)

	if report.Normal.Level < normal.BCNF {
		bcnf, err := normal.DecomposeBCNF(ctx, s, budget)
		if err != nil {
			return report, err
		}
		report.BCNF = bcnf
	}
	if report.Normal.Level < normal.ThreeNF {
		third, err := normal.Synthesize3NF(ctx, s, budget)
		if err != nil {
			return report, err
		}
		report.ThirdNF = third
	}
	return report, nil
}
