package core

import "fmt"

// ToolRoundBudget bounds the number of tool-call rounds one turn may resolve.
// It is owned by a single turn and therefore not synchronized.
type ToolRoundBudget struct {
	max  int
	used int
}

// NewToolRoundBudget creates a budget allowing max rounds. Values below one
// are raised to one.
func NewToolRoundBudget(max int) *ToolRoundBudget {
	if max < 1 {
		max = 1
	}
	return &ToolRoundBudget{max: max}
}

// Consume records one resolved round and fails closed once the budget is spent.
func (b *ToolRoundBudget) Consume() error {
	if b.used >= b.max {
		return NewToolResolutionError(fmt.Sprintf("tool-call budget exhausted after %d round(s)", b.max))
	}
	b.used++
	return nil
}

// Used returns the number of rounds consumed.
func (b *ToolRoundBudget) Used() int { return b.used }

// Remaining returns how many rounds may still be resolved.
func (b *ToolRoundBudget) Remaining() int { return b.max - b.used }
