package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	_ "embed"

	"go.uber.org/zap"

	"github.com/spigell/critique-matcher/internal/ai"
	"github.com/spigell/critique-matcher/internal/queue"
	"github.com/spigell/critique-matcher/internal/utils"
)

type contentGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

type Reviewer struct {
	generator contentGenerator
	minScore  float64
	logger    *zap.Logger
	maxLogLen int
}

//go:embed prompt.md
var promptTemplate string

const defaultMaxLogLength = 200

func NewReviewer(generator contentGenerator, minScore float64, maxLogLength int, logger *zap.Logger) *Reviewer {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Reviewer{
		generator: generator,
		minScore:  minScore,
		logger:    logger,
		maxLogLen: maxLogLength,
	}
}

func (r *Reviewer) Review(ctx context.Context, match *queue.Match) (*ai.FitAssessment, error) {
	if match == nil || match.Critique == nil || match.Critique.Resume == nil {
		return nil, fmt.Errorf("critique with a resume is required")
	}
	if match.Request == nil {
		return nil, fmt.Errorf("critiquer request is required")
	}

	resumeJSON, err := json.MarshalIndent(map[string]any{
		"name":        match.Critique.Resume.Name,
		"industries":  match.Critique.Resume.Industries,
		"waiting_for": match.Critique.CreatedOn,
	}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal resume payload: %w", err)
	}

	critiquerJSON, err := json.MarshalIndent(map[string]any{
		"industries":  match.Request.Industries,
		"waiting_for": match.Request.CreatedOn,
	}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal critiquer payload: %w", err)
	}

	prompt := buildPrompt(string(resumeJSON), string(critiquerJSON))

	r.logger.Debug("gemini generate content request",
		zap.String("critique_id", match.Critique.ID),
		zap.String("critiquer_request_id", match.Request.ID),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, r.maxLogLen)),
	)

	raw, err := r.generator.GenerateContent(ctx, prompt)
	if err != nil {
		return nil, err
	}

	r.logger.Debug("gemini generate content response",
		zap.String("critique_id", match.Critique.ID),
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, r.maxLogLen)),
	)

	assessment, err := parseResponse(raw)
	if err != nil {
		return nil, err
	}

	if r.minScore > 0 && assessment.Score < r.minScore {
		r.logger.Debug("set fit to false by score threshold",
			zap.String("critique_id", match.Critique.ID),
			zap.Float64("score", assessment.Score),
			zap.Float64("threshold", r.minScore),
		)
		assessment.Fit = false
	}

	assessment.Raw = raw
	return assessment, nil
}

func buildPrompt(resumeJSON, critiquerJSON string) string {
	template := promptTemplate
	if strings.TrimSpace(template) == "" {
		template = "Resume:\n{{RESUME_JSON}}\n\nCritiquer:\n{{CRITIQUER_JSON}}\n\nJSON Response:"
	}
	prompt := strings.ReplaceAll(template, "{{RESUME_JSON}}", resumeJSON)
	prompt = strings.ReplaceAll(prompt, "{{CRITIQUER_JSON}}", critiquerJSON)
	return prompt
}

func parseResponse(raw string) (*ai.FitAssessment, error) {
	cleaned := extractJSON(raw)

	var data map[string]any
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		return nil, fmt.Errorf("parse gemini response: %w", err)
	}

	score := coerceFloat(data["score"])
	if math.IsNaN(score) {
		score = 0
	}

	return &ai.FitAssessment{
		Fit:    coerceBool(data["fit"]),
		Score:  score,
		Reason: coerceString(data["reason"]),
	}, nil
}

func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	return strings.TrimSpace(raw)
}

func coerceBool(v any) bool {
	switch val := v.(type) {
	case bool:
		return val
	case string:
		lower := strings.ToLower(strings.TrimSpace(val))
		return lower == "true" || lower == "yes"
	case float64:
		return val != 0
	default:
		return false
	}
}

func coerceFloat(v any) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return math.NaN()
		}
		return f
	default:
		return math.NaN()
	}
}

func coerceString(v any) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case nil:
		return ""
	default:
		bytes, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(bytes)
	}
}
