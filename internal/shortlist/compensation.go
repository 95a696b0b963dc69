package shortlist

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/talentops/shortlister/internal/applicant"
	"github.com/talentops/shortlister/internal/currency"
)

const noSalaryReason = "No salary information available."

type salarySource interface {
	SalaryPreference(ctx context.Context, applicantID string) (*applicant.SalaryPreference, error)
}

// CompensationCriterion checks the applicant's preferred rate (converted to
// the snapshot's base currency) against the configured maximum and their
// weekly availability against the configured minimum.
type CompensationCriterion struct {
	source          salarySource
	rates           currency.Snapshot
	maxRate         float64
	minAvailability float64
	logger          *zap.Logger
}

func NewCompensation(source salarySource, rates currency.Snapshot, maxRate, minAvailability float64, logger *zap.Logger) *CompensationCriterion {
	return &CompensationCriterion{
		source:          source,
		rates:           rates,
		maxRate:         maxRate,
		minAvailability: minAvailability,
		logger:          logger,
	}
}

func (c *CompensationCriterion) Name() string { return "compensation" }

func (c *CompensationCriterion) Evaluate(ctx context.Context, applicantID string) (Result, error) {
	salary, err := c.source.SalaryPreference(ctx, applicantID)
	if err != nil {
		return Result{}, err
	}
	if salary == nil {
		return Result{Met: false, Reason: noSalaryReason}, nil
	}

	converted := salary.PreferredRate / c.rates.Rate(salary.Currency)

	c.logger.Debug("preferred rate converted",
		zap.String("applicant_id", applicantID),
		zap.String("currency", salary.Currency),
		zap.Float64("preferred_rate", salary.PreferredRate),
		zap.Float64("converted_rate", converted),
	)

	rateOK := converted <= c.maxRate
	availabilityOK := salary.Availability >= c.minAvailability

	if rateOK && availabilityOK {
		return Result{
			Met:    true,
			Reason: fmt.Sprintf("Compensation: $%s/hr, %s hrs/wk", formatNumber(salary.PreferredRate), formatNumber(salary.Availability)),
		}, nil
	}

	reason := ""
	if !rateOK {
		reason = fmt.Sprintf("Compensation: Rate $%s (>%s) ", formatNumber(salary.PreferredRate), formatNumber(c.maxRate))
	}
	if !availabilityOK {
		reason += fmt.Sprintf("Availability %shrs (<%s)", formatNumber(salary.Availability), formatNumber(c.minAvailability))
	}

	return Result{Met: false, Reason: strings.TrimSpace(reason)}, nil
}

// formatNumber renders a rate without trailing zeros, so 50 reads as "50"
// and 62.5 as "62.5".
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
