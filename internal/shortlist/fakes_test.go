package shortlist

import (
	"context"
	"strings"

	"github.com/talentops/shortlister/internal/applicant"
	"github.com/talentops/shortlister/internal/geocode"
)

type fakeHistory struct {
	entries []applicant.WorkExperience
	err     error
}

func (f *fakeHistory) WorkHistory(_ context.Context, _ string) ([]applicant.WorkExperience, error) {
	return f.entries, f.err
}

type fakeSalary struct {
	salary *applicant.SalaryPreference
	err    error
}

func (f *fakeSalary) SalaryPreference(_ context.Context, _ string) (*applicant.SalaryPreference, error) {
	return f.salary, f.err
}

type fakePersonal struct {
	info *applicant.PersonalInfo
	err  error
}

func (f *fakePersonal) PersonalInfo(_ context.Context, _ string) (*applicant.PersonalInfo, error) {
	return f.info, f.err
}

// fakeClassifier answers prompts by substring match and records every call.
type fakeClassifier struct {
	answers map[string]string
	answer  string
	err     error
	calls   int
	prompts []string
}

func (f *fakeClassifier) Classify(_ context.Context, prompt string) (string, error) {
	f.calls++
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return "", f.err
	}
	for needle, answer := range f.answers {
		if strings.Contains(prompt, needle) {
			return answer, nil
		}
	}
	return f.answer, nil
}

type fakeResolver struct {
	place *geocode.Place
	err   error
	calls int
}

func (f *fakeResolver) Resolve(_ context.Context, _ string) (*geocode.Place, error) {
	f.calls++
	return f.place, f.err
}

func placeInCountry(country string) *geocode.Place {
	place := &geocode.Place{}
	place.Address.Country = country
	return place
}
