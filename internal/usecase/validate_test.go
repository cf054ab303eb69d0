package usecase

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/resume-matcher/internal/domain"
)

func fieldSet(degree, branch string, cgpa float64, years int) domain.FieldSet {
	var fs domain.FieldSet
	if degree != "" {
		fs.Degree = &degree
	}
	if branch != "" {
		fs.Branch = &branch
	}
	if cgpa > 0 {
		fs.CGPA = &cgpa
	}
	if years > 0 {
		fs.ExperienceYears = &years
	}
	return fs
}

func TestStrictValidator_EmptyRequirements(t *testing.T) {
	t.Parallel()
	out := StrictValidator{}.Validate(fieldSet("btech", "computer science", 8.0, 3), domain.FieldSet{})
	assert.Empty(t, out.Violations)
	assert.Empty(t, out.Warnings)
	assert.False(t, out.HasCriticalIssues)
	// Slices are initialized, not nil, so JSON renders [] rather than null.
	assert.NotNil(t, out.Violations)
	assert.NotNil(t, out.Warnings)
}

func TestStrictValidator_CGPA(t *testing.T) {
	t.Parallel()
	jd := fieldSet("", "", 8.0, 0)

	t.Run("below cutoff is critical", func(t *testing.T) {
		t.Parallel()
		out := StrictValidator{}.Validate(fieldSet("", "", 7.5, 0), jd)
		require.Len(t, out.Violations, 1)
		assert.Equal(t, domain.SeverityCritical, out.Violations[0].Severity)
		assert.Equal(t, "CGPA/GPA", out.Violations[0].Field)
		assert.True(t, out.HasCriticalIssues)
	})

	t.Run("meeting cutoff is a pass warning", func(t *testing.T) {
		t.Parallel()
		out := StrictValidator{}.Validate(fieldSet("", "", 8.5, 0), jd)
		assert.Empty(t, out.Violations)
		require.Len(t, out.Warnings, 1)
		assert.Equal(t, domain.SeverityPass, out.Warnings[0].Severity)
		assert.False(t, out.HasCriticalIssues)
	})

	t.Run("missing cgpa is critical", func(t *testing.T) {
		t.Parallel()
		out := StrictValidator{}.Validate(domain.FieldSet{}, jd)
		require.Len(t, out.Violations, 1)
		assert.Equal(t, domain.SeverityCritical, out.Violations[0].Severity)
		assert.Contains(t, out.Violations[0].Message, "MISSING")
	})
}

func TestStrictValidator_StringFields(t *testing.T) {
	t.Parallel()

	t.Run("degree mismatch is soft", func(t *testing.T) {
		t.Parallel()
		out := StrictValidator{}.Validate(fieldSet("bachelor", "", 0, 0), fieldSet("mtech", "", 0, 0))
		require.Len(t, out.Violations, 1)
		assert.Equal(t, domain.SeverityMismatch, out.Violations[0].Severity)
		assert.False(t, out.HasCriticalIssues)
	})

	t.Run("degree containment passes", func(t *testing.T) {
		t.Parallel()
		out := StrictValidator{}.Validate(fieldSet("btech", "", 0, 0), fieldSet("btech", "", 0, 0))
		assert.Empty(t, out.Violations)
		require.Len(t, out.Warnings, 1)
		assert.Equal(t, "Degree", out.Warnings[0].Field)
	})

	t.Run("missing branch is critical", func(t *testing.T) {
		t.Parallel()
		out := StrictValidator{}.Validate(domain.FieldSet{}, fieldSet("", "computer science", 0, 0))
		require.Len(t, out.Violations, 1)
		assert.Equal(t, domain.SeverityCritical, out.Violations[0].Severity)
		assert.Equal(t, "Branch/Stream", out.Violations[0].Field)
	})
}

func TestStrictValidator_Experience(t *testing.T) {
	t.Parallel()
	jd := fieldSet("", "", 0, 5)

	out := StrictValidator{}.Validate(fieldSet("", "", 0, 3), jd)
	require.Len(t, out.Violations, 1)
	assert.Equal(t, domain.SeverityCritical, out.Violations[0].Severity)
	assert.Contains(t, out.Violations[0].Message, "INSUFFICIENT")

	out = StrictValidator{}.Validate(fieldSet("", "", 0, 6), jd)
	assert.Empty(t, out.Violations)
	require.Len(t, out.Warnings, 1)
}

func TestStrictValidator_AllFieldsMixed(t *testing.T) {
	t.Parallel()
	resume := fieldSet("btech", "mechanical", 9.1, 0)
	jd := fieldSet("btech", "computer science", 8.0, 2)

	out := StrictValidator{}.Validate(resume, jd)
	// Branch mismatch (soft), experience missing (critical), degree and CGPA pass.
	require.Len(t, out.Violations, 2)
	require.Len(t, out.Warnings, 2)
	assert.True(t, out.HasCriticalIssues)
}
