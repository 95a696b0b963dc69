package shortlist

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/talentops/shortlister/internal/ai"
	"github.com/talentops/shortlister/internal/applicant"
)

const dateLayout = "2006-01-02"

const tier1Prompt = "You are an expert in technology companies. Your task is to " +
	"determine if the given company is widely considered a top-tier " +
	"or 'FAANG-level' technology company in terms of prestige, " +
	"engineering talent, and compensation. " +
	"Answer only 'Yes' or 'No'. Do not make mistakes. " +
	"Example: If the company is 'Google', answer 'Yes'. " +
	"If the company is 'Infosys', answer 'No'. " +
	"Company: '%s'"

type historySource interface {
	WorkHistory(ctx context.Context, applicantID string) ([]applicant.WorkExperience, error)
}

// ExperienceCriterion checks total years of experience and tier-1 employment.
// Total experience is the sum of per-entry elapsed days across all entries,
// converted to years; the tier-1 flag is true when any entry with positive
// duration is classified as a tier-1 employer.
type ExperienceCriterion struct {
	source     historySource
	classifier ai.Classifier
	minYears   float64
	logger     *zap.Logger

	now func() time.Time
}

func NewExperience(source historySource, classifier ai.Classifier, minYears float64, logger *zap.Logger) *ExperienceCriterion {
	return &ExperienceCriterion{
		source:     source,
		classifier: classifier,
		minYears:   minYears,
		logger:     logger,
		now:        time.Now,
	}
}

func (c *ExperienceCriterion) Name() string { return "experience" }

func (c *ExperienceCriterion) Evaluate(ctx context.Context, applicantID string) (Result, error) {
	entries, err := c.source.WorkHistory(ctx, applicantID)
	if err != nil {
		return Result{}, err
	}

	var totalDays float64
	workedAtTier1 := false

	for _, entry := range entries {
		answer, err := c.classifier.Classify(ctx, fmt.Sprintf(tier1Prompt, strings.ToLower(entry.Company)))
		if err != nil {
			return Result{}, fmt.Errorf("classify employer %q: %w", entry.Company, err)
		}
		tier1 := answer == "Yes"

		c.logger.Debug("employer classified",
			zap.String("applicant_id", applicantID),
			zap.String("company", entry.Company),
			zap.Bool("tier_1", tier1),
		)

		days, ok := c.entryDuration(entry)
		if !ok {
			c.logger.Warn("could not parse dates for experience entry",
				zap.String("applicant_id", applicantID),
				zap.String("company", entry.Company),
				zap.String("start", entry.Start),
				zap.String("end", entry.End),
			)
			continue
		}

		if tier1 && days > 0 {
			workedAtTier1 = true
		}
		totalDays += days
	}

	totalYears := totalDays / 365.25

	if (totalYears >= c.minYears || workedAtTier1) && totalYears > 0 {
		return Result{
			Met:    true,
			Reason: fmt.Sprintf("Experience: %.1f years, Tier-1: %s", totalYears, yesNo(workedAtTier1)),
		}, nil
	}

	return Result{
		Met:    false,
		Reason: fmt.Sprintf("Experience: %.1f years (below min), Tier-1: No", totalYears),
	}, nil
}

// entryDuration returns the elapsed days for one entry. Entries with missing
// or unparseable dates contribute nothing but do not invalidate the rest.
func (c *ExperienceCriterion) entryDuration(entry applicant.WorkExperience) (float64, bool) {
	if entry.Start == "" || entry.End == "" {
		return 0, false
	}

	start, err := time.Parse(dateLayout, entry.Start)
	if err != nil {
		return 0, false
	}

	var end time.Time
	if strings.EqualFold(entry.End, "present") {
		end = c.now()
	} else {
		end, err = time.Parse(dateLayout, entry.End)
		if err != nil {
			return 0, false
		}
	}

	return end.Sub(start).Hours() / 24, true
}
