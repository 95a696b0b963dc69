package applicant

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/talentops/shortlister/internal/airtable"
)

type call struct {
	method   string
	table    string
	recordID string
	formula  string
	fields   map[string]any
}

// fakeAPI serves canned records per table and records every call.
type fakeAPI struct {
	records map[string][]airtable.Record
	listErr error
	calls   []call
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{records: make(map[string][]airtable.Record)}
}

func (f *fakeAPI) List(_ context.Context, table string, opts airtable.ListOptions) ([]airtable.Record, error) {
	f.calls = append(f.calls, call{method: "list", table: table, formula: opts.Formula})
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.records[table], nil
}

func (f *fakeAPI) Create(_ context.Context, table string, fields map[string]any) (*airtable.Record, error) {
	f.calls = append(f.calls, call{method: "create", table: table, fields: fields})
	return &airtable.Record{ID: "recCreated", Fields: fields}, nil
}

func (f *fakeAPI) Update(_ context.Context, table, recordID string, fields map[string]any) (*airtable.Record, error) {
	f.calls = append(f.calls, call{method: "update", table: table, recordID: recordID, fields: fields})
	return &airtable.Record{ID: recordID, Fields: fields}, nil
}

func (f *fakeAPI) Delete(_ context.Context, table, recordID string) error {
	f.calls = append(f.calls, call{method: "delete", table: table, recordID: recordID})
	return nil
}

func (f *fakeAPI) callsTo(method, table string) []call {
	var out []call
	for _, c := range f.calls {
		if c.method == method && c.table == table {
			out = append(out, c)
		}
	}
	return out
}

func newTestDirectory(api *fakeAPI) *Directory {
	return NewDirectory(api, DefaultTables(), zap.NewNop())
}

func TestPendingUsesStatusFormula(t *testing.T) {
	api := newFakeAPI()
	api.records["Applicants"] = []airtable.Record{
		{ID: "rec1", Fields: map[string]any{FieldApplicantID: "APP1", FieldCompressedJSON: "{}"}},
		{ID: "rec2", Fields: map[string]any{FieldApplicantID: "APP2", FieldStatus: "Pending"}},
	}

	dir := newTestDirectory(api)

	applicants, err := dir.Pending(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if len(applicants) != 2 {
		t.Fatalf("expected 2 applicants, got %d", len(applicants))
	}
	if applicants[0].RecordID != "rec1" || applicants[0].ID != "APP1" || applicants[0].CompressedJSON != "{}" {
		t.Fatalf("unexpected applicant: %+v", applicants[0])
	}
	if applicants[1].Status != "Pending" {
		t.Fatalf("unexpected applicant: %+v", applicants[1])
	}

	lists := api.callsTo("list", "Applicants")
	if len(lists) != 1 {
		t.Fatalf("expected one list call, got %d", len(lists))
	}
	want := "OR({Shortlist Status} = '', {Shortlist Status} = 'Pending')"
	if lists[0].formula != want {
		t.Fatalf("unexpected formula: %q", lists[0].formula)
	}
}

func TestNeedingEvaluationFormula(t *testing.T) {
	api := newFakeAPI()
	dir := newTestDirectory(api)

	if _, err := dir.NeedingEvaluation(context.Background()); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	lists := api.callsTo("list", "Applicants")
	want := "AND({Compressed JSON} != '', {LLM Summary} = '')"
	if len(lists) != 1 || lists[0].formula != want {
		t.Fatalf("unexpected list calls: %+v", lists)
	}
}

func TestWorkHistoryDecodesWeaklyTypedFields(t *testing.T) {
	api := newFakeAPI()
	api.records["Work Experience"] = []airtable.Record{
		{ID: "recW1", Fields: map[string]any{
			"Company":      "Google",
			"Title":        "Engineer",
			"Start":        "2020-01-01",
			"End":          "2021-06-30",
			"Technologies": []any{"Go", "Python"},
		}},
	}

	dir := newTestDirectory(api)

	entries, err := dir.WorkHistory(context.Background(), "APP1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected one entry, got %d", len(entries))
	}
	if entries[0].Company != "Google" || len(entries[0].Technologies) != 2 {
		t.Fatalf("unexpected entry: %+v", entries[0])
	}

	lists := api.callsTo("list", "Work Experience")
	if len(lists) != 1 || lists[0].formula != "{Applicants} = 'APP1'" {
		t.Fatalf("unexpected list calls: %+v", lists)
	}
}

func TestSalaryPreferenceCoercesJSONNumbers(t *testing.T) {
	api := newFakeAPI()
	api.records["Salary Preferences"] = []airtable.Record{
		{ID: "recS1", Fields: map[string]any{
			"Preferred Rate":        float64(50),
			"Currency":              "USD",
			"Minimum Rate":          float64(40),
			"Availability (hrs/wk)": float64(25),
		}},
	}

	dir := newTestDirectory(api)

	salary, err := dir.SalaryPreference(context.Background(), "APP1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if salary == nil {
		t.Fatal("expected a salary record")
	}
	if salary.PreferredRate != 50 || salary.Currency != "USD" || salary.Availability != 25 {
		t.Fatalf("unexpected salary: %+v", salary)
	}
}

func TestSalaryPreferenceMissingIsNil(t *testing.T) {
	dir := newTestDirectory(newFakeAPI())

	salary, err := dir.SalaryPreference(context.Background(), "APP1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if salary != nil {
		t.Fatalf("expected nil for a missing record, got %+v", salary)
	}
}

func TestPersonalInfoFirstMatchWins(t *testing.T) {
	api := newFakeAPI()
	api.records["Personal Details"] = []airtable.Record{
		{ID: "recP1", Fields: map[string]any{"Full Name": "Ada", "Location": "Berlin"}},
		{ID: "recP2", Fields: map[string]any{"Full Name": "Duplicate", "Location": "Paris"}},
	}

	dir := newTestDirectory(api)

	info, err := dir.PersonalInfo(context.Background(), "APP1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if info == nil || info.FullName != "Ada" || info.Location != "Berlin" {
		t.Fatalf("unexpected info: %+v", info)
	}
}

func TestSetStatus(t *testing.T) {
	api := newFakeAPI()
	dir := newTestDirectory(api)

	if err := dir.SetStatus(context.Background(), "recA", "Shortlisted"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	updates := api.callsTo("update", "Applicants")
	if len(updates) != 1 || updates[0].recordID != "recA" {
		t.Fatalf("unexpected update calls: %+v", updates)
	}
	if updates[0].fields[FieldStatus] != "Shortlisted" {
		t.Fatalf("unexpected fields: %+v", updates[0].fields)
	}
}

func TestAnnotateLeadMissingLeadIsNoOp(t *testing.T) {
	api := newFakeAPI()
	dir := newTestDirectory(api)

	annotated, err := dir.AnnotateLead(context.Background(), "APP1", "because")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if annotated {
		t.Fatal("expected false when no lead record exists")
	}
	if updates := api.callsTo("update", "Shortlisted Leads"); len(updates) != 0 {
		t.Fatalf("expected no updates, got %+v", updates)
	}
}

func TestAnnotateLeadWritesReason(t *testing.T) {
	api := newFakeAPI()
	api.records["Shortlisted Leads"] = []airtable.Record{{ID: "recL1"}}

	dir := newTestDirectory(api)

	annotated, err := dir.AnnotateLead(context.Background(), "APP1", "because")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !annotated {
		t.Fatal("expected annotation to report success")
	}

	updates := api.callsTo("update", "Shortlisted Leads")
	if len(updates) != 1 || updates[0].recordID != "recL1" {
		t.Fatalf("unexpected update calls: %+v", updates)
	}
	if updates[0].fields[FieldScoreReason] != "because" {
		t.Fatalf("unexpected fields: %+v", updates[0].fields)
	}
}

func TestListFailurePropagates(t *testing.T) {
	api := newFakeAPI()
	api.listErr = errors.New("rate limited")

	dir := newTestDirectory(api)

	if _, err := dir.Pending(context.Background()); err == nil {
		t.Fatal("expected list failure to propagate")
	}
}
