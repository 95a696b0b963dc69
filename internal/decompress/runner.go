package decompress

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/talentops/shortlister/internal/applicant"
)

type store interface {
	Pending(ctx context.Context) ([]applicant.Applicant, error)
	UpsertPersonal(ctx context.Context, applicantRecordID string, info applicant.PersonalInfo) error
	UpsertSalary(ctx context.Context, applicantRecordID string, salary applicant.SalaryPreference) error
	ReplaceWorkHistory(ctx context.Context, applicantRecordID string, entries []applicant.WorkExperience) error
}

// Runner expands compressed applicant profiles into the normalized tables.
type Runner struct {
	store  store
	logger *zap.Logger
}

func NewRunner(store store, logger *zap.Logger) *Runner {
	return &Runner{store: store, logger: logger}
}

// Run decompresses every pending applicant that carries a profile blob.
// Returns the number of applicants processed.
func (r *Runner) Run(ctx context.Context) (int, error) {
	applicants, err := r.store.Pending(ctx)
	if err != nil {
		return 0, fmt.Errorf("list applicants to decompress: %w", err)
	}

	processed := 0
	for _, a := range applicants {
		if a.CompressedJSON == "" {
			continue
		}

		if err := r.process(ctx, a); err != nil {
			r.logger.Error("decompression failed",
				zap.String("applicant_id", a.ID),
				zap.String("record_id", a.RecordID),
				zap.Error(err),
			)
			if ctx.Err() != nil {
				return processed, ctx.Err()
			}
			continue
		}

		processed++
	}

	r.logger.Info("decompression completed", zap.Int("processed", processed))
	return processed, nil
}

func (r *Runner) process(ctx context.Context, a applicant.Applicant) error {
	profile, err := ParseProfile(a.CompressedJSON)
	if err != nil {
		return err
	}

	if err := r.store.UpsertPersonal(ctx, a.RecordID, profile.PersonalInfo()); err != nil {
		return err
	}

	if err := r.store.UpsertSalary(ctx, a.RecordID, profile.SalaryPreference()); err != nil {
		return err
	}

	if err := r.store.ReplaceWorkHistory(ctx, a.RecordID, profile.WorkHistory()); err != nil {
		return err
	}

	r.logger.Debug("applicant profile decompressed",
		zap.String("applicant_id", a.ID),
		zap.Int("experience_entries", len(profile.Experience)),
	)

	return nil
}
