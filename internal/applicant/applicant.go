package applicant

// Field names used by the Airtable base. The engine reads and writes these
// verbatim; renaming a column in the base requires changing them here.
const (
	FieldApplicantID    = "Applicant ID"
	FieldApplicants     = "Applicants"
	FieldStatus         = "Shortlist Status"
	FieldCompressedJSON = "Compressed JSON"
	FieldScoreReason    = "Score Reason"
	FieldSummary        = "LLM Summary"
	FieldScore          = "LLM Score"
	FieldFollowUps      = "LLM Follow-Ups"
)

// Tables maps the logical record kinds onto table names in the base.
type Tables struct {
	Applicants string `mapstructure:"applicants"`
	Personal   string `mapstructure:"personal"`
	Salary     string `mapstructure:"salary"`
	Experience string `mapstructure:"experience"`
	Leads      string `mapstructure:"leads"`
}

// DefaultTables returns the table names the base ships with.
func DefaultTables() Tables {
	return Tables{
		Applicants: "Applicants",
		Personal:   "Personal Details",
		Salary:     "Salary Preferences",
		Experience: "Work Experience",
		Leads:      "Shortlisted Leads",
	}
}

// Applicant is a row of the applicants table. ID is the stable applicant
// identifier used to join the linked tables; RecordID is the Airtable row id
// used for status writes.
type Applicant struct {
	RecordID       string
	ID             string
	Status         string
	CompressedJSON string
}

// WorkExperience is one employment entry from the work-history table.
// Start and End are kept as raw strings; date parsing happens in the
// experience evaluator because a malformed date must not invalidate the
// rest of the entry.
type WorkExperience struct {
	Company      string   `mapstructure:"Company"`
	Title        string   `mapstructure:"Title"`
	Start        string   `mapstructure:"Start"`
	End          string   `mapstructure:"End"`
	Technologies []string `mapstructure:"Technologies"`
}

// SalaryPreference is the single compensation record expected per applicant.
type SalaryPreference struct {
	PreferredRate float64 `mapstructure:"Preferred Rate"`
	Currency      string  `mapstructure:"Currency"`
	MinimumRate   float64 `mapstructure:"Minimum Rate"`
	Availability  float64 `mapstructure:"Availability (hrs/wk)"`
}

// PersonalInfo is the single personal-details record expected per applicant.
type PersonalInfo struct {
	FullName string `mapstructure:"Full Name"`
	Email    string `mapstructure:"Email"`
	Location string `mapstructure:"Location"`
}
