package ai

import (
	"context"

	"github.com/spigell/fit-screener/internal/candidate"
)

// Assessment is the scoring oracle's verdict for one candidate against one
// job.
type Assessment struct {
	// Score is the fit score in [0,100].
	Score float64
	// Rationale is a human-readable explanation of the score.
	Rationale string
	// Raw is the unparsed provider response, kept for debugging.
	Raw string
}

// Scorer is the expensive external fit analyzer. Calls may fail; the scan
// orchestrator recovers per candidate with a heuristic fallback.
type Scorer interface {
	Evaluate(ctx context.Context, job *candidate.Job, profile *candidate.Profile) (*Assessment, error)
}
