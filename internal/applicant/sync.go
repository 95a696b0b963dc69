package applicant

import (
	"context"
	"fmt"

	"github.com/talentops/shortlister/internal/airtable"
)

// The decompression flow writes normalized rows linked to the applicant via
// the Applicants link field, which holds Airtable record ids. Formulas cannot
// match on link record ids, so existing rows are matched client-side.

// UpsertPersonal creates or updates the applicant's personal-details row.
func (d *Directory) UpsertPersonal(ctx context.Context, applicantRecordID string, info PersonalInfo) error {
	fields := map[string]any{
		"Full Name":     info.FullName,
		"Email":         info.Email,
		"Location":      info.Location,
		FieldApplicants: []string{applicantRecordID},
	}
	return d.upsertLinked(ctx, d.tables.Personal, applicantRecordID, fields)
}

// UpsertSalary creates or updates the applicant's salary-preference row.
func (d *Directory) UpsertSalary(ctx context.Context, applicantRecordID string, salary SalaryPreference) error {
	fields := map[string]any{
		"Preferred Rate":        salary.PreferredRate,
		"Currency":              salary.Currency,
		"Minimum Rate":          salary.MinimumRate,
		"Availability (hrs/wk)": salary.Availability,
		FieldApplicants:         []string{applicantRecordID},
	}
	return d.upsertLinked(ctx, d.tables.Salary, applicantRecordID, fields)
}

// ReplaceWorkHistory deletes the applicant's existing work-experience rows
// and recreates them from the provided entries.
func (d *Directory) ReplaceWorkHistory(ctx context.Context, applicantRecordID string, entries []WorkExperience) error {
	records, err := d.api.List(ctx, d.tables.Experience, airtable.ListOptions{})
	if err != nil {
		return fmt.Errorf("list work experience: %w", err)
	}

	for _, record := range records {
		if !linkedTo(record, applicantRecordID) {
			continue
		}
		if err := d.api.Delete(ctx, d.tables.Experience, record.ID); err != nil {
			return fmt.Errorf("delete work experience: %w", err)
		}
	}

	for _, entry := range entries {
		fields := map[string]any{
			"Company":       entry.Company,
			"Title":         entry.Title,
			"Start":         entry.Start,
			"End":           entry.End,
			"Technologies":  entry.Technologies,
			FieldApplicants: []string{applicantRecordID},
		}
		if _, err := d.api.Create(ctx, d.tables.Experience, fields); err != nil {
			return fmt.Errorf("create work experience: %w", err)
		}
	}

	return nil
}

func (d *Directory) upsertLinked(ctx context.Context, table, applicantRecordID string, fields map[string]any) error {
	records, err := d.api.List(ctx, table, airtable.ListOptions{})
	if err != nil {
		return fmt.Errorf("list %s: %w", table, err)
	}

	for _, record := range records {
		if linkedTo(record, applicantRecordID) {
			if _, err := d.api.Update(ctx, table, record.ID, fields); err != nil {
				return fmt.Errorf("update %s: %w", table, err)
			}
			return nil
		}
	}

	if _, err := d.api.Create(ctx, table, fields); err != nil {
		return fmt.Errorf("create %s: %w", table, err)
	}

	return nil
}

// linkedTo reports whether the record's Applicants link field points at the
// given applicant record id.
func linkedTo(record airtable.Record, applicantRecordID string) bool {
	switch links := record.Fields[FieldApplicants].(type) {
	case []any:
		for _, link := range links {
			if id, ok := link.(string); ok && id == applicantRecordID {
				return true
			}
		}
	case []string:
		for _, id := range links {
			if id == applicantRecordID {
				return true
			}
		}
	}
	return false
}
