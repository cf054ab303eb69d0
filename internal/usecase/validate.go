package usecase

import (
	"fmt"
	"strings"

	"github.com/fairyhunter13/resume-matcher/internal/domain"
)

// StrictValidator evaluates candidate facts against job-requirement facts
// with a deterministic rule table, independent of similarity scoring. Its
// findings are data, not errors, and are always surfaced in the final report.
type StrictValidator struct{}

// Validate checks each requirement field present in jd against the candidate
// fields. Missing candidate fields and numeric shortfalls are CRITICAL;
// string mismatches are MISMATCH; satisfied requirements produce PASS
// warnings. No requirement fields at all yields an empty outcome.
func (StrictValidator) Validate(resume, jd domain.FieldSet) domain.ValidationOutcome {
	out := domain.ValidationOutcome{
		Violations: []domain.Violation{},
		Warnings:   []domain.Warning{},
	}

	if jd.Degree != nil {
		switch {
		case resume.Degree == nil:
			out.Violations = append(out.Violations, domain.Violation{
				Severity: domain.SeverityCritical,
				Field:    "Degree",
				Message:  fmt.Sprintf("MISSING: requirement asks for %q degree, but no degree found in resume.", *jd.Degree),
			})
		case !strings.Contains(strings.ToLower(*resume.Degree), strings.ToLower(*jd.Degree)):
			out.Violations = append(out.Violations, domain.Violation{
				Severity: domain.SeverityMismatch,
				Field:    "Degree",
				Message:  fmt.Sprintf("MISMATCH: requirement expects %q, but resume shows %q.", *jd.Degree, *resume.Degree),
			})
		default:
			out.Warnings = append(out.Warnings, domain.Warning{
				Severity: domain.SeverityPass,
				Field:    "Degree",
				Message:  fmt.Sprintf("Degree requirement met: %q.", *resume.Degree),
			})
		}
	}

	if jd.Branch != nil {
		switch {
		case resume.Branch == nil:
			out.Violations = append(out.Violations, domain.Violation{
				Severity: domain.SeverityCritical,
				Field:    "Branch/Stream",
				Message:  fmt.Sprintf("MISSING: requirement asks for %q branch, but no branch or stream found in resume.", *jd.Branch),
			})
		case !strings.Contains(strings.ToLower(*resume.Branch), strings.ToLower(*jd.Branch)):
			out.Violations = append(out.Violations, domain.Violation{
				Severity: domain.SeverityMismatch,
				Field:    "Branch/Stream",
				Message:  fmt.Sprintf("MISMATCH: requirement expects %q, but resume shows %q.", *jd.Branch, *resume.Branch),
			})
		default:
			out.Warnings = append(out.Warnings, domain.Warning{
				Severity: domain.SeverityPass,
				Field:    "Branch/Stream",
				Message:  fmt.Sprintf("Branch requirement met: %q.", *resume.Branch),
			})
		}
	}

	if jd.CGPA != nil {
		switch {
		case resume.CGPA == nil:
			out.Violations = append(out.Violations, domain.Violation{
				Severity: domain.SeverityCritical,
				Field:    "CGPA/GPA",
				Message:  fmt.Sprintf("MISSING: requirement asks for CGPA %.2f+, but no CGPA mentioned in resume.", *jd.CGPA),
			})
		case *resume.CGPA < *jd.CGPA:
			out.Violations = append(out.Violations, domain.Violation{
				Severity: domain.SeverityCritical,
				Field:    "CGPA/GPA",
				Message:  fmt.Sprintf("BELOW CUTOFF: requirement asks for %.2f, but resume shows %.2f.", *jd.CGPA, *resume.CGPA),
			})
		default:
			out.Warnings = append(out.Warnings, domain.Warning{
				Severity: domain.SeverityPass,
				Field:    "CGPA/GPA",
				Message:  fmt.Sprintf("CGPA requirement met: %.2f >= %.2f.", *resume.CGPA, *jd.CGPA),
			})
		}
	}

	if jd.ExperienceYears != nil {
		switch {
		case resume.ExperienceYears == nil:
			out.Violations = append(out.Violations, domain.Violation{
				Severity: domain.SeverityCritical,
				Field:    "Experience",
				Message:  fmt.Sprintf("MISSING: requirement asks for %d+ years of experience, but no experience info found.", *jd.ExperienceYears),
			})
		case *resume.ExperienceYears < *jd.ExperienceYears:
			out.Violations = append(out.Violations, domain.Violation{
				Severity: domain.SeverityCritical,
				Field:    "Experience",
				Message:  fmt.Sprintf("INSUFFICIENT: requirement asks for %d years, but resume shows only %d.", *jd.ExperienceYears, *resume.ExperienceYears),
			})
		default:
			out.Warnings = append(out.Warnings, domain.Warning{
				Severity: domain.SeverityPass,
				Field:    "Experience",
				Message:  fmt.Sprintf("Experience requirement met: %d >= %d years.", *resume.ExperienceYears, *jd.ExperienceYears),
			})
		}
	}

	for _, v := range out.Violations {
		if v.Severity == domain.SeverityCritical {
			out.HasCriticalIssues = true
			break
		}
	}
	return out
}
