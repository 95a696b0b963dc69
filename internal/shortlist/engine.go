package shortlist

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/talentops/shortlister/internal/applicant"
	"github.com/talentops/shortlister/internal/utils"
)

// Shortlist statuses written onto the applicant record. Shortlisted and
// NotShortlisted are terminal; re-evaluation requires an external status
// reset back to empty or Pending.
const (
	StatusPending        = "Pending"
	StatusShortlisted    = "Shortlisted"
	StatusNotShortlisted = "Not Shortlisted"
)

// Store is the slice of the record store the engine needs.
type Store interface {
	Pending(ctx context.Context) ([]applicant.Applicant, error)
	SetStatus(ctx context.Context, recordID, status string) error
	AnnotateLead(ctx context.Context, applicantID, reason string) (bool, error)
}

// Verdict is the combined decision for one applicant.
type Verdict struct {
	Shortlisted bool
	Status      string
	Reason      string
	Results     []Result
}

// Summary reports what a batch run did.
type Summary struct {
	Reviewed    int
	Shortlisted int
	Failed      int
}

// Engine combines the criterion evaluators into a single admit/reject
// decision per applicant and writes the outcome back to the store.
type Engine struct {
	store       Store
	criteria    []Criterion
	settleDelay time.Duration
	logger      *zap.Logger

	wait func(ctx context.Context, d time.Duration) error
}

// NewEngine builds an engine. Criteria run in the given order; the order
// affects only the rationale ordering, not the verdict.
func NewEngine(store Store, criteria []Criterion, settleDelay time.Duration, logger *zap.Logger) *Engine {
	return &Engine{
		store:       store,
		criteria:    criteria,
		settleDelay: settleDelay,
		logger:      logger,
		wait:        utils.WaitFor,
	}
}

// Run evaluates every pending applicant sequentially. One applicant's
// failure is logged and does not halt the rest of the batch.
func (e *Engine) Run(ctx context.Context) (Summary, error) {
	applicants, err := e.store.Pending(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("list applicants to review: %w", err)
	}

	if len(applicants) == 0 {
		e.logger.Info("no new applicants to review")
		return Summary{}, nil
	}

	e.logger.Info("starting shortlisting batch", zap.Int("applicants", len(applicants)))

	var summary Summary
	for _, a := range applicants {
		summary.Reviewed++

		verdict, err := e.process(ctx, a)
		if err != nil {
			summary.Failed++
			e.logger.Error("applicant processing failed",
				zap.String("applicant_id", a.ID),
				zap.String("record_id", a.RecordID),
				zap.Error(err),
			)
			if ctx.Err() != nil {
				return summary, ctx.Err()
			}
			continue
		}

		if verdict.Shortlisted {
			summary.Shortlisted++
		}
	}

	e.logger.Info("shortlisting batch completed",
		zap.Int("reviewed", summary.Reviewed),
		zap.Int("shortlisted", summary.Shortlisted),
		zap.Int("failed", summary.Failed),
	)

	return summary, nil
}

// Evaluate runs all criteria for the applicant and combines the outputs. The
// verdict is the logical AND of the individual results.
func (e *Engine) Evaluate(ctx context.Context, applicantID string) (*Verdict, error) {
	results := make([]Result, 0, len(e.criteria))
	shortlisted := true

	for _, criterion := range e.criteria {
		result, err := criterion.Evaluate(ctx, applicantID)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", criterion.Name(), err)
		}

		e.logger.Debug("criterion evaluated",
			zap.String("applicant_id", applicantID),
			zap.String("criterion", criterion.Name()),
			zap.Bool("met", result.Met),
			zap.String("reason", result.Reason),
		)

		results = append(results, result)
		shortlisted = shortlisted && result.Met
	}

	status := StatusNotShortlisted
	if shortlisted {
		status = StatusShortlisted
	}

	return &Verdict{
		Shortlisted: shortlisted,
		Status:      status,
		Reason:      composeReason(applicantID, status, results),
		Results:     results,
	}, nil
}

func (e *Engine) process(ctx context.Context, a applicant.Applicant) (*Verdict, error) {
	verdict, err := e.Evaluate(ctx, a.ID)
	if err != nil {
		return nil, err
	}

	if err := e.store.SetStatus(ctx, a.RecordID, verdict.Status); err != nil {
		return nil, err
	}

	e.logger.Info("updated shortlist status",
		zap.String("applicant_id", a.ID),
		zap.String("status", verdict.Status),
	)

	if !verdict.Shortlisted {
		return verdict, nil
	}

	// The lead record is created by an external automation triggered by the
	// status write. Wait for it to settle before annotating the lead.
	if err := e.wait(ctx, e.settleDelay); err != nil {
		return nil, err
	}

	annotated, err := e.store.AnnotateLead(ctx, a.ID, verdict.Reason)
	if err != nil {
		return nil, err
	}
	if !annotated {
		e.logger.Warn("no lead record found to annotate",
			zap.String("applicant_id", a.ID),
		)
	}

	return verdict, nil
}

// composeReason renders the composite rationale: a banner with the verdict
// and applicant identity followed by the individual reasons verbatim.
func composeReason(applicantID, status string, results []Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Candidate %s %s for the following reasons:", applicantID, status)
	for _, result := range results {
		b.WriteString("\n- ")
		b.WriteString(result.Reason)
	}
	return b.String()
}
