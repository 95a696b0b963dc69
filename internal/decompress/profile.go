package decompress

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/talentops/shortlister/internal/applicant"
)

// Profile is the nested JSON blob stored in the Compressed JSON field of an
// applicant row.
type Profile struct {
	Personal struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Location string `json:"location"`
	} `json:"personal"`
	Salary struct {
		Rate         float64 `json:"rate"`
		Currency     string  `json:"currency"`
		MinRate      float64 `json:"min_rate"`
		Availability float64 `json:"availability"`
	} `json:"salary"`
	Experience []struct {
		Company      string   `json:"company"`
		Title        string   `json:"title"`
		Start        string   `json:"start"`
		End          string   `json:"end"`
		Technologies []string `json:"technologies"`
	} `json:"experience"`
}

// ParseProfile decodes a compressed profile blob. Airtable sometimes stores
// non-breaking spaces in pasted JSON; they are scrubbed before decoding.
func ParseProfile(raw string) (*Profile, error) {
	raw = strings.ReplaceAll(raw, "\u00a0", " ")

	var profile Profile
	if err := json.Unmarshal([]byte(raw), &profile); err != nil {
		return nil, fmt.Errorf("parse compressed profile: %w", err)
	}

	if profile.Personal.Name == "" {
		return nil, errors.New("compressed profile has no personal name")
	}

	return &profile, nil
}

// PersonalInfo converts the personal section into the normalized record type.
func (p *Profile) PersonalInfo() applicant.PersonalInfo {
	return applicant.PersonalInfo{
		FullName: p.Personal.Name,
		Email:    p.Personal.Email,
		Location: p.Personal.Location,
	}
}

// SalaryPreference converts the salary section into the normalized record type.
func (p *Profile) SalaryPreference() applicant.SalaryPreference {
	return applicant.SalaryPreference{
		PreferredRate: p.Salary.Rate,
		Currency:      p.Salary.Currency,
		MinimumRate:   p.Salary.MinRate,
		Availability:  p.Salary.Availability,
	}
}

// WorkHistory converts the experience section into normalized entries.
func (p *Profile) WorkHistory() []applicant.WorkExperience {
	entries := make([]applicant.WorkExperience, 0, len(p.Experience))
	for _, exp := range p.Experience {
		entries = append(entries, applicant.WorkExperience{
			Company:      exp.Company,
			Title:        exp.Title,
			Start:        exp.Start,
			End:          exp.End,
			Technologies: exp.Technologies,
		})
	}
	return entries
}
