package applicant

import (
	"context"
	"testing"

	"github.com/talentops/shortlister/internal/airtable"
)

func linkedRecord(id, applicantRecordID string) airtable.Record {
	return airtable.Record{
		ID:     id,
		Fields: map[string]any{FieldApplicants: []any{applicantRecordID}},
	}
}

func TestUpsertPersonalCreatesWhenMissing(t *testing.T) {
	api := newFakeAPI()
	dir := newTestDirectory(api)

	err := dir.UpsertPersonal(context.Background(), "recApp", PersonalInfo{
		FullName: "Ada",
		Email:    "ada@example.com",
		Location: "Berlin",
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	creates := api.callsTo("create", "Personal Details")
	if len(creates) != 1 {
		t.Fatalf("expected one create, got %+v", api.calls)
	}
	if creates[0].fields["Full Name"] != "Ada" {
		t.Fatalf("unexpected fields: %+v", creates[0].fields)
	}
	links, ok := creates[0].fields[FieldApplicants].([]string)
	if !ok || len(links) != 1 || links[0] != "recApp" {
		t.Fatalf("expected link to applicant record, got %+v", creates[0].fields[FieldApplicants])
	}
}

func TestUpsertPersonalUpdatesExistingLinkedRow(t *testing.T) {
	api := newFakeAPI()
	api.records["Personal Details"] = []airtable.Record{
		linkedRecord("recOther", "recSomeoneElse"),
		linkedRecord("recMine", "recApp"),
	}

	dir := newTestDirectory(api)

	err := dir.UpsertPersonal(context.Background(), "recApp", PersonalInfo{FullName: "Ada"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if creates := api.callsTo("create", "Personal Details"); len(creates) != 0 {
		t.Fatalf("expected no creates, got %+v", creates)
	}
	updates := api.callsTo("update", "Personal Details")
	if len(updates) != 1 || updates[0].recordID != "recMine" {
		t.Fatalf("unexpected updates: %+v", updates)
	}
}

func TestUpsertSalaryFieldMapping(t *testing.T) {
	api := newFakeAPI()
	dir := newTestDirectory(api)

	err := dir.UpsertSalary(context.Background(), "recApp", SalaryPreference{
		PreferredRate: 50,
		Currency:      "USD",
		MinimumRate:   40,
		Availability:  25,
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	creates := api.callsTo("create", "Salary Preferences")
	if len(creates) != 1 {
		t.Fatalf("expected one create, got %+v", api.calls)
	}
	fields := creates[0].fields
	if fields["Preferred Rate"] != 50.0 || fields["Currency"] != "USD" || fields["Availability (hrs/wk)"] != 25.0 {
		t.Fatalf("unexpected fields: %+v", fields)
	}
}

func TestReplaceWorkHistoryDeletesOnlyLinkedRows(t *testing.T) {
	api := newFakeAPI()
	api.records["Work Experience"] = []airtable.Record{
		linkedRecord("recOld1", "recApp"),
		linkedRecord("recOther", "recSomeoneElse"),
		linkedRecord("recOld2", "recApp"),
	}

	dir := newTestDirectory(api)

	entries := []WorkExperience{
		{Company: "Google", Title: "Engineer", Start: "2020-01-01", End: "2021-01-01"},
		{Company: "Acme", Title: "Engineer", Start: "2021-02-01", End: "present"},
	}
	if err := dir.ReplaceWorkHistory(context.Background(), "recApp", entries); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	deletes := api.callsTo("delete", "Work Experience")
	if len(deletes) != 2 {
		t.Fatalf("expected two deletes, got %+v", deletes)
	}
	for _, d := range deletes {
		if d.recordID == "recOther" {
			t.Fatal("deleted a row linked to another applicant")
		}
	}

	creates := api.callsTo("create", "Work Experience")
	if len(creates) != 2 {
		t.Fatalf("expected two creates, got %+v", creates)
	}
	if creates[0].fields["Company"] != "Google" || creates[1].fields["End"] != "present" {
		t.Fatalf("unexpected create fields: %+v", creates)
	}
}

func TestReplaceWorkHistoryEmptyEntriesClearsRows(t *testing.T) {
	api := newFakeAPI()
	api.records["Work Experience"] = []airtable.Record{linkedRecord("recOld", "recApp")}

	dir := newTestDirectory(api)

	if err := dir.ReplaceWorkHistory(context.Background(), "recApp", nil); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if deletes := api.callsTo("delete", "Work Experience"); len(deletes) != 1 {
		t.Fatalf("expected one delete, got %+v", deletes)
	}
	if creates := api.callsTo("create", "Work Experience"); len(creates) != 0 {
		t.Fatalf("expected no creates, got %+v", creates)
	}
}

func TestLinkedToHandlesStringSlices(t *testing.T) {
	record := airtable.Record{Fields: map[string]any{FieldApplicants: []string{"recApp"}}}
	if !linkedTo(record, "recApp") {
		t.Fatal("expected []string link match")
	}
	if linkedTo(record, "recOther") {
		t.Fatal("unexpected match for another record id")
	}
	if linkedTo(airtable.Record{}, "recApp") {
		t.Fatal("unexpected match for a record without links")
	}
}
