package evaluate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	_ "embed"

	"go.uber.org/zap"

	"github.com/talentops/shortlister/internal/ai"
	"github.com/talentops/shortlister/internal/applicant"
	"github.com/talentops/shortlister/internal/logger"
)

//go:embed prompt.md
var promptTemplate string

const parseFailureMarker = "Error: Failed to parse LLM response."

// Assessment is the structured profile evaluation returned by the LLM. The
// contract is strict: any deviation from this shape is a failure.
type Assessment struct {
	Summary   string `json:"summary"`
	Score     int    `json:"score"`
	Issues    string `json:"issues"`
	FollowUps string `json:"follow_ups"`
}

type directory interface {
	NeedingEvaluation(ctx context.Context) ([]applicant.Applicant, error)
	UpdateApplicant(ctx context.Context, recordID string, fields map[string]any) error
}

// Evaluator generates LLM profile assessments for applicants that have a
// compressed profile but no summary yet.
type Evaluator struct {
	dir        directory
	classifier ai.Classifier
	logger     *zap.Logger
	maxLogLen  int
}

func New(dir directory, classifier ai.Classifier, maxLogLen int, log *zap.Logger) *Evaluator {
	if maxLogLen <= 0 {
		maxLogLen = 200
	}
	return &Evaluator{dir: dir, classifier: classifier, logger: log, maxLogLen: maxLogLen}
}

// Run evaluates every applicant needing an assessment and writes the results
// back. Returns the number of applicants updated.
func (e *Evaluator) Run(ctx context.Context) (int, error) {
	applicants, err := e.dir.NeedingEvaluation(ctx)
	if err != nil {
		return 0, fmt.Errorf("list applicants to evaluate: %w", err)
	}

	e.logger.Info("found applicants to evaluate", zap.Int("count", len(applicants)))

	updated := 0
	for _, a := range applicants {
		if a.CompressedJSON == "" {
			e.logger.Debug("skipping applicant without profile", zap.String(logger.FieldApplicant, a.ID))
			continue
		}

		assessment, err := e.Assess(ctx, a.CompressedJSON)
		if err != nil {
			e.logger.Error("profile assessment failed",
				zap.String(logger.FieldApplicant, a.ID),
				zap.Error(err),
			)
			if ctx.Err() != nil {
				return updated, ctx.Err()
			}
			// The original automation leaves a marker so the row is not
			// picked up again on the next run.
			if err := e.dir.UpdateApplicant(ctx, a.RecordID, map[string]any{
				applicant.FieldSummary: parseFailureMarker,
			}); err != nil {
				e.logger.Error("writing failure marker failed",
					zap.String(logger.FieldApplicant, a.ID),
					zap.Error(err),
				)
			}
			continue
		}

		fields := map[string]any{
			applicant.FieldSummary:   assessment.Summary,
			applicant.FieldScore:     assessment.Score,
			applicant.FieldFollowUps: assessment.followUpsField(),
		}
		if err := e.dir.UpdateApplicant(ctx, a.RecordID, fields); err != nil {
			e.logger.Error("writing assessment failed",
				zap.String(logger.FieldApplicant, a.ID),
				zap.Error(err),
			)
			continue
		}

		updated++
	}

	e.logger.Info("evaluation completed", zap.Int("updated", updated))
	return updated, nil
}

// Assess asks the classifier for a structured assessment of one profile.
func (e *Evaluator) Assess(ctx context.Context, profileJSON string) (*Assessment, error) {
	prompt := strings.ReplaceAll(promptTemplate, "{{PROFILE_JSON}}", profileJSON)

	raw, err := e.classifier.Classify(ctx, prompt)
	if err != nil {
		return nil, err
	}

	e.logger.Debug("assessment response",
		zap.String("response_preview", logger.TruncateForLog(raw, e.maxLogLen)),
	)

	return parseAssessment(raw)
}

// parseAssessment validates the response against the structured contract.
// Unknown fields, missing fields, or an out-of-range score all fail rather
// than silently extracting partial matches.
func parseAssessment(raw string) (*Assessment, error) {
	cleaned := extractJSON(raw)

	decoder := json.NewDecoder(bytes.NewReader([]byte(cleaned)))
	decoder.DisallowUnknownFields()

	var assessment Assessment
	if err := decoder.Decode(&assessment); err != nil {
		return nil, fmt.Errorf("parse assessment response: %w", err)
	}

	if strings.TrimSpace(assessment.Summary) == "" {
		return nil, fmt.Errorf("assessment response has empty summary")
	}
	if assessment.Score < 1 || assessment.Score > 10 {
		return nil, fmt.Errorf("assessment score %d out of range", assessment.Score)
	}

	return &assessment, nil
}

func (a *Assessment) followUpsField() string {
	followUps := strings.TrimSpace(a.FollowUps)
	issues := strings.TrimSpace(a.Issues)
	if issues != "" && !strings.EqualFold(issues, "none") {
		followUps += fmt.Sprintf("\n(Issues: %s)", issues)
	}
	return followUps
}

// extractJSON strips markdown code fences some models wrap around JSON output.
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
	return strings.TrimSpace(raw)
}
