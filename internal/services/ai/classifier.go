package ai

import "context"

// TaskProposal is one classified task extracted from free text.
type TaskProposal struct {
	Title    string `json:"title"`
	Category string `json:"category"`
	Priority string `json:"priority"`
}

// Classifier turns free text into task proposals. Implementations are
// best-effort, non-deterministic oracles; callers must tolerate errors and
// apply their entry-point-specific fallback.
type Classifier interface {
	Classify(ctx context.Context, text string) ([]TaskProposal, error)
}
