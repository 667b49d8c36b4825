package ai

import (
	"context"

	"github.com/spigell/critique-matcher/internal/queue"
)

type FitAssessment struct {
	Fit    bool
	Score  float64
	Reason string
	Raw    string
}

// Reviewer gives a second opinion on a pairing proposed by the matcher.
type Reviewer interface {
	Review(ctx context.Context, match *queue.Match) (*FitAssessment, error)
}
