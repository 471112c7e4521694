package fd

import (
	"context"
	"errors"
)

// ErrBudgetExhausted reports that a search stopped before exploring its full
// space. Results returned alongside it are explicitly partial.
var ErrBudgetExhausted = errors.New("search exhausted budget")

// Budget caps the number of candidate probes a search may perform. A nil
// Budget is unlimited. Budgets are scoped to a single top-level call and
// must not be shared across calls.
type Budget struct {
	MaxSteps int
	used     int
}

// NewBudget returns a budget of maxSteps probes; maxSteps <= 0 means
// unlimited.
func NewBudget(maxSteps int) *Budget {
	return &Budget{MaxSteps: maxSteps}
}

// Steps returns the number of probes consumed so far.
func (b *Budget) Steps() int {
	if b == nil {
		return 0
	}
	return b.used
}

// spend consumes one probe, reporting false once the cap is hit.
func (b *Budget) spend() bool {
	if b == nil || b.MaxSteps <= 0 {
		return true
	}
	if b.used >= b.MaxSteps {
		return false
	}
	b.used++
	return true
}

// checkCtx converts context cancellation into a budget-style stop.
func checkCtx(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}
