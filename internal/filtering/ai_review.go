package filtering

import (
	"context"
	"os"

	"go.uber.org/zap"

	"github.com/spigell/critique-matcher/internal/ai"
	"github.com/spigell/critique-matcher/internal/queue"
)

// ReviewMatches asks the reviewer about every proposed pair. Rejected pairs are
// dropped; pairs whose evaluation failed are kept with the error recorded.
func ReviewMatches(ctx context.Context, logger *zap.Logger, reviewer ai.Reviewer, matches queue.Matches) (queue.Matches, error) {
	if reviewer == nil {
		return matches, nil
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	initial := matches.Len()
	approved := make(queue.Matches, 0, initial)

	for _, match := range matches {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		assessment, err := reviewer.Review(ctx, match)
		if err != nil {
			logger.Warn("AI evaluation failed",
				zap.String("critique_id", match.Critique.ID),
				zap.String("critiquer_request_id", match.Request.ID),
				zap.Error(err),
			)
			match.AI = &queue.AIAssessment{Error: err.Error()}
			approved = append(approved, match)
			continue
		}

		if !assessment.Fit {
			logger.Info("pair rejected by AI provider",
				zap.String("critique_id", match.Critique.ID),
				zap.String("critiquer_request_id", match.Request.ID),
				zap.Float64("ai_score", assessment.Score),
				zap.String("reason", assessment.Reason),
			)
			continue
		}

		logger.Info("pair approved by AI",
			zap.String("critique_id", match.Critique.ID),
			zap.Float64("ai_score", assessment.Score),
		)

		match.AI = &queue.AIAssessment{
			Fit:    assessment.Fit,
			Score:  assessment.Score,
			Reason: assessment.Reason,
			Raw:    assessment.Raw,
		}
		approved = append(approved, match)
	}

	logger.Info("AI review completed",
		zap.Int("initial_matches", initial),
		zap.Int("approved_matches", approved.Len()),
	)

	return approved, nil
}

// AppendExcluded adds the critiques of the given matches to the exclude file,
// creating it when missing.
func AppendExcluded(path string, matches queue.Matches, reason string) error {
	excluded, err := queue.GetExcludedFromFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return err
		}
		excluded = &queue.Excluded{}
	}

	excluded.Append(matches.ToExcluded(reason))
	return excluded.ToFile(path)
}
