package shortlist

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/talentops/shortlister/internal/ai"
	"github.com/talentops/shortlister/internal/applicant"
	"github.com/talentops/shortlister/internal/geocode"
)

const locationPrompt = "You are a location expert. Your task is to determine if a " +
	"given place name refers to any location in the allowed " +
	"locations list, even if there are spelling mistakes or minor " +
	"variations. Use your knowledge to infer the intended location. " +
	"If the location matches (directly or by correcting a spelling " +
	"mistake), answer 'Yes'. Otherwise, answer 'No'. " +
	"Allowed locations: %s. " +
	"Place name: '%s'. " +
	"Respond only with 'Yes' or 'No'."

type personalSource interface {
	PersonalInfo(ctx context.Context, applicantID string) (*applicant.PersonalInfo, error)
}

type resolver interface {
	Resolve(ctx context.Context, query string) (*geocode.Place, error)
}

// LocationCriterion checks whether the applicant's free-text location is in
// an allow-listed country. Geocoding is the primary path; when the text does
// not resolve to any address the classifier is asked for a fuzzy match.
type LocationCriterion struct {
	source     personalSource
	geocoder   resolver
	classifier ai.Classifier
	allowed    []string
	logger     *zap.Logger
}

func NewLocation(source personalSource, geocoder resolver, classifier ai.Classifier, allowed []string, logger *zap.Logger) *LocationCriterion {
	return &LocationCriterion{
		source:     source,
		geocoder:   geocoder,
		classifier: classifier,
		allowed:    allowed,
		logger:     logger,
	}
}

func (c *LocationCriterion) Name() string { return "location" }

func (c *LocationCriterion) Evaluate(ctx context.Context, applicantID string) (Result, error) {
	info, err := c.source.PersonalInfo(ctx, applicantID)
	if err != nil {
		return Result{}, err
	}

	original := ""
	if info != nil {
		original = info.Location
	}
	location := strings.ToLower(strings.TrimSpace(original))

	if location == "" {
		return Result{Met: false, Reason: notAllowedReason(original)}, nil
	}

	place, err := c.geocoder.Resolve(ctx, location)
	if err != nil {
		// Network or service failure is a conservative non-match, not a retry.
		c.logger.Warn("geocoding failed",
			zap.String("applicant_id", applicantID),
			zap.String("location", location),
			zap.Error(err),
		)
		return Result{Met: false, Reason: notAllowedReason(original)}, nil
	}

	if place != nil {
		country := place.Country()
		c.logger.Debug("location resolved",
			zap.String("applicant_id", applicantID),
			zap.String("location", location),
			zap.String("country", country),
		)
		for _, allowed := range c.allowed {
			if country == allowed {
				return Result{Met: true, Reason: allowedReason(original)}, nil
			}
		}
		return Result{Met: false, Reason: notAllowedReason(original)}, nil
	}

	// No resolvable address: fall back to a fuzzy match by the classifier.
	c.logger.Info("could not determine country, asking classifier",
		zap.String("applicant_id", applicantID),
		zap.String("location", location),
	)

	answer, err := c.classifier.Classify(ctx, fmt.Sprintf(locationPrompt, strings.Join(c.allowed, ", "), location))
	if err != nil {
		return Result{}, fmt.Errorf("classify location %q: %w", location, err)
	}

	if answer == "Yes" {
		return Result{Met: true, Reason: allowedReason(original)}, nil
	}

	return Result{Met: false, Reason: notAllowedReason(original)}, nil
}

func allowedReason(location string) string {
	return fmt.Sprintf("Location: %s (Allowed)", location)
}

func notAllowedReason(location string) string {
	return fmt.Sprintf("Location: %s (Not in allowed list)", location)
}
