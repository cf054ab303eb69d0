package usecase

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/resume-matcher/internal/domain"
)

type scriptedNarrator struct {
	text   string
	reason string

	lastSystem string
	lastUser   string
	calls      int
}

func (n *scriptedNarrator) Narrate(_ context.Context, system, user string) domain.NarrativeResult {
	n.calls++
	n.lastSystem = system
	n.lastUser = user
	if n.text != "" {
		return domain.NarrativeResult{OK: true, Text: n.text}
	}
	return domain.NarrativeResult{Reason: n.reason}
}

func analysisFixture() domain.Analysis {
	cgpa := 7.0
	reqCGPA := 8.0
	return domain.Analysis{
		ResumeText:    strings.Repeat("word ", 250),
		JDText:        "python developer role",
		MatchedSkills: []string{"python"},
		MissingSkills: []string{"aws", "docker", "go", "kafka", "redis", "sql"},
		ResumeFields:  domain.FieldSet{CGPA: &cgpa},
		JDFields:      domain.FieldSet{CGPA: &reqCGPA},
		Scores:        domain.ScoreBundle{Skill: 50, Lexical: 60, Semantic: 70, Hybrid: 58},
		Evidence:      []domain.EvidenceChunk{{Chunk: domain.Chunk{Text: "built python services"}, Score: 0.9}},
		RAGEnabled:    true,
	}
}

func TestFeedbackService_GeneratedPath(t *testing.T) {
	t.Parallel()
	n := &scriptedNarrator{text: "1. Add cloud skills.\n2. Quantify results.\n3. Tighten summary."}
	svc := &FeedbackService{Narrator: n}

	report := svc.Generate(context.Background(), analysisFixture())

	assert.Equal(t, domain.FeedbackTypeGenerated, report.FeedbackType)
	assert.Equal(t, 1, n.calls)
	assert.Contains(t, n.lastUser, "python developer role")
	assert.Contains(t, n.lastUser, "built python services")
	assert.InDelta(t, 58.0, report.OverallScore, 1e-9)

	// The strict block is appended even on the generated path.
	joined := strings.Join(report.Feedback, "\n")
	assert.Contains(t, joined, "=== STRICT ELIGIBILITY CHECK ===")
	assert.Contains(t, joined, "BELOW CUTOFF")
	assert.True(t, report.HasCriticalIssues)
}

func TestFeedbackService_RuleBasedOnNarratorFailure(t *testing.T) {
	t.Parallel()
	n := &scriptedNarrator{reason: "provider down"}
	svc := &FeedbackService{Narrator: n}

	report := svc.Generate(context.Background(), analysisFixture())

	assert.Equal(t, domain.FeedbackTypeRuleBased, report.FeedbackType)
	assert.Equal(t, 1, n.calls)

	joined := strings.Join(report.Feedback, "\n")
	assert.Contains(t, joined, "skill relevance score is 50.00%")
	// Top five missing skills only.
	assert.Contains(t, joined, "aws, docker, go, kafka, redis")
	assert.NotContains(t, joined, "aws, docker, go, kafka, redis, sql")
	assert.Contains(t, joined, "=== STRICT ELIGIBILITY CHECK ===")
}

func TestFeedbackService_RuleBasedWhenNoEvidence(t *testing.T) {
	t.Parallel()
	n := &scriptedNarrator{text: "should not be called"}
	svc := &FeedbackService{Narrator: n}

	a := analysisFixture()
	a.RAGEnabled = false
	a.Evidence = nil
	report := svc.Generate(context.Background(), a)

	assert.Equal(t, domain.FeedbackTypeRuleBased, report.FeedbackType)
	assert.Zero(t, n.calls)
}

func TestFeedbackService_NilNarrator(t *testing.T) {
	t.Parallel()
	svc := &FeedbackService{}
	report := svc.Generate(context.Background(), analysisFixture())
	assert.Equal(t, domain.FeedbackTypeRuleBased, report.FeedbackType)
	assert.NotEmpty(t, report.Feedback)
}

func TestRuleBasedNarrative_Thresholds(t *testing.T) {
	t.Parallel()

	t.Run("concise resume note", func(t *testing.T) {
		t.Parallel()
		a := domain.Analysis{ResumeText: "short resume", Scores: domain.ScoreBundle{Hybrid: 30}}
		joined := strings.Join(ruleBasedNarrative(a), "\n")
		assert.Contains(t, joined, "quite concise")
		assert.Contains(t, joined, "low match")
	})

	t.Run("moderate verdict", func(t *testing.T) {
		t.Parallel()
		a := domain.Analysis{ResumeText: strings.Repeat("experience education ", 150), Scores: domain.ScoreBundle{Hybrid: 65}}
		joined := strings.Join(ruleBasedNarrative(a), "\n")
		assert.Contains(t, joined, "moderate alignment")
		assert.Contains(t, joined, "length appears sufficient")
	})

	t.Run("strong verdict", func(t *testing.T) {
		t.Parallel()
		a := domain.Analysis{ResumeText: strings.Repeat("experience education ", 150), Scores: domain.ScoreBundle{Hybrid: 85}}
		joined := strings.Join(ruleBasedNarrative(a), "\n")
		assert.Contains(t, joined, "strong match")
	})

	t.Run("missing sections nudge", func(t *testing.T) {
		t.Parallel()
		a := domain.Analysis{ResumeText: strings.Repeat("skills projects ", 150)}
		joined := strings.Join(ruleBasedNarrative(a), "\n")
		assert.Contains(t, joined, "'Experience' and 'Education'")
	})
}

func TestAppendStrictBlock_WarningsOnly(t *testing.T) {
	t.Parallel()
	validation := domain.ValidationOutcome{
		Violations: []domain.Violation{},
		Warnings:   []domain.Warning{{Severity: domain.SeverityPass, Field: "CGPA/GPA", Message: "CGPA requirement met: 9.00 >= 8.00."}},
	}
	lines := appendStrictBlock([]string{"narrative"}, validation)
	joined := strings.Join(lines, "\n")
	assert.NotContains(t, joined, "STRICT ELIGIBILITY CHECK")
	assert.Contains(t, joined, "=== REQUIREMENTS MET ===")
	assert.Contains(t, joined, "CGPA requirement met")
}

func TestAppendStrictBlock_NonCriticalClosing(t *testing.T) {
	t.Parallel()
	validation := domain.ValidationOutcome{
		Violations: []domain.Violation{{Severity: domain.SeverityMismatch, Field: "Degree", Message: "MISMATCH: degree differs."}},
	}
	lines := appendStrictBlock(nil, validation)
	joined := strings.Join(lines, "\n")
	assert.Contains(t, joined, "STRICT ELIGIBILITY CHECK")
	assert.Contains(t, joined, "not critical")
	require.NotContains(t, joined, "automatic rejection")
}
