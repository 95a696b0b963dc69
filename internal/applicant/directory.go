package applicant

import (
	"context"
	"fmt"

	"github.com/go-viper/mapstructure/v2"
	"go.uber.org/zap"

	"github.com/talentops/shortlister/internal/airtable"
)

// recordAPI is the slice of the airtable client the directory needs.
type recordAPI interface {
	List(ctx context.Context, table string, opts airtable.ListOptions) ([]airtable.Record, error)
	Create(ctx context.Context, table string, fields map[string]any) (*airtable.Record, error)
	Update(ctx context.Context, table, recordID string, fields map[string]any) (*airtable.Record, error)
	Delete(ctx context.Context, table, recordID string) error
}

// Directory reads and writes applicant data slices keyed by applicant
// identity. It is the only component that knows which tables hold what.
type Directory struct {
	api    recordAPI
	tables Tables
	logger *zap.Logger
}

func NewDirectory(api recordAPI, tables Tables, logger *zap.Logger) *Directory {
	return &Directory{api: api, tables: tables, logger: logger}
}

const pendingFormula = "OR({Shortlist Status} = '', {Shortlist Status} = 'Pending')"

// Pending lists applicants whose shortlist status is empty or Pending.
func (d *Directory) Pending(ctx context.Context) ([]Applicant, error) {
	records, err := d.api.List(ctx, d.tables.Applicants, airtable.ListOptions{Formula: pendingFormula})
	if err != nil {
		return nil, fmt.Errorf("list pending applicants: %w", err)
	}

	return toApplicants(records), nil
}

// NeedingEvaluation lists applicants that carry a compressed profile but have
// no LLM summary yet.
func (d *Directory) NeedingEvaluation(ctx context.Context) ([]Applicant, error) {
	formula := "AND({Compressed JSON} != '', {LLM Summary} = '')"
	records, err := d.api.List(ctx, d.tables.Applicants, airtable.ListOptions{Formula: formula})
	if err != nil {
		return nil, fmt.Errorf("list applicants needing evaluation: %w", err)
	}

	return toApplicants(records), nil
}

// WorkHistory returns all work-experience entries linked to the applicant.
// Zero entries is a valid result.
func (d *Directory) WorkHistory(ctx context.Context, applicantID string) ([]WorkExperience, error) {
	records, err := d.api.List(ctx, d.tables.Experience, airtable.ListOptions{Formula: linkFormula(applicantID)})
	if err != nil {
		return nil, fmt.Errorf("fetch work history: %w", err)
	}

	entries := make([]WorkExperience, 0, len(records))
	for _, record := range records {
		var entry WorkExperience
		if err := decodeFields(record.Fields, &entry); err != nil {
			d.logger.Warn("skipping undecodable work experience record",
				zap.String(FieldApplicantID, applicantID),
				zap.String("record_id", record.ID),
				zap.Error(err),
			)
			continue
		}
		entries = append(entries, entry)
	}

	return entries, nil
}

// SalaryPreference returns the applicant's salary record, or nil when none
// exists. The first matching record wins if the table holds duplicates.
func (d *Directory) SalaryPreference(ctx context.Context, applicantID string) (*SalaryPreference, error) {
	records, err := d.api.List(ctx, d.tables.Salary, airtable.ListOptions{Formula: linkFormula(applicantID)})
	if err != nil {
		return nil, fmt.Errorf("fetch salary preference: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	var salary SalaryPreference
	if err := decodeFields(records[0].Fields, &salary); err != nil {
		return nil, fmt.Errorf("decode salary preference: %w", err)
	}

	return &salary, nil
}

// PersonalInfo returns the applicant's personal-details record, or nil when
// none exists. The first matching record wins if the table holds duplicates.
func (d *Directory) PersonalInfo(ctx context.Context, applicantID string) (*PersonalInfo, error) {
	records, err := d.api.List(ctx, d.tables.Personal, airtable.ListOptions{Formula: linkFormula(applicantID)})
	if err != nil {
		return nil, fmt.Errorf("fetch personal info: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	var info PersonalInfo
	if err := decodeFields(records[0].Fields, &info); err != nil {
		return nil, fmt.Errorf("decode personal info: %w", err)
	}

	return &info, nil
}

// SetStatus writes the shortlist status onto the applicant row.
func (d *Directory) SetStatus(ctx context.Context, recordID, status string) error {
	_, err := d.api.Update(ctx, d.tables.Applicants, recordID, map[string]any{FieldStatus: status})
	if err != nil {
		return fmt.Errorf("update shortlist status: %w", err)
	}
	return nil
}

// UpdateApplicant patches arbitrary fields on the applicant row.
func (d *Directory) UpdateApplicant(ctx context.Context, recordID string, fields map[string]any) error {
	_, err := d.api.Update(ctx, d.tables.Applicants, recordID, fields)
	if err != nil {
		return fmt.Errorf("update applicant record: %w", err)
	}
	return nil
}

// AnnotateLead writes the shortlist rationale onto an existing lead record
// matched by applicant identity. Lead creation is owned by an external
// automation: when no lead exists yet this is a no-op and returns false.
func (d *Directory) AnnotateLead(ctx context.Context, applicantID, reason string) (bool, error) {
	records, err := d.api.List(ctx, d.tables.Leads, airtable.ListOptions{Formula: linkFormula(applicantID)})
	if err != nil {
		return false, fmt.Errorf("fetch lead record: %w", err)
	}
	if len(records) == 0 {
		return false, nil
	}

	_, err = d.api.Update(ctx, d.tables.Leads, records[0].ID, map[string]any{FieldScoreReason: reason})
	if err != nil {
		return false, fmt.Errorf("update lead rationale: %w", err)
	}

	return true, nil
}

func linkFormula(applicantID string) string {
	return fmt.Sprintf("{Applicants} = '%s'", applicantID)
}

func toApplicants(records []airtable.Record) []Applicant {
	applicants := make([]Applicant, 0, len(records))
	for _, record := range records {
		applicants = append(applicants, Applicant{
			RecordID:       record.ID,
			ID:             stringField(record.Fields, FieldApplicantID),
			Status:         stringField(record.Fields, FieldStatus),
			CompressedJSON: stringField(record.Fields, FieldCompressedJSON),
		})
	}
	return applicants
}

func stringField(fields map[string]any, name string) string {
	switch v := fields[name].(type) {
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	default:
		return ""
	}
}

// decodeFields maps an Airtable field mapping onto a typed struct. Input is
// weakly typed because numeric columns arrive as json float64 regardless of
// the declared field type.
func decodeFields(fields map[string]any, target any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}
	return decoder.Decode(fields)
}
