package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/fairyhunter13/resume-matcher/internal/domain"
	"github.com/fairyhunter13/resume-matcher/internal/observability"
)

const feedbackSystemPrompt = "You are an expert recruiter providing resume feedback with deep industry insights. Be direct and actionable."

// Thresholds used by the rule-based narrative.
const (
	conciseResumeWords   = 200
	lowMatchThreshold    = 50
	strongMatchThreshold = 80
	missingSkillsShown   = 5
)

// FeedbackService composes the final report. It tries the generated-narrative
// path when evidence retrieval succeeded, falls back to the deterministic
// rule-based narrative otherwise, and unconditionally appends the strict
// validator output to whichever narrative was produced.
type FeedbackService struct {
	Narrator  domain.Narrator
	Validator StrictValidator
}

// Generate builds the feedback report for a completed analysis.
func (s *FeedbackService) Generate(ctx context.Context, a domain.Analysis) domain.FeedbackReport {
	validation := s.Validator.Validate(a.ResumeFields, a.JDFields)

	lines, feedbackType := s.narrative(ctx, a, validation)

	// The strict block is appended regardless of which narrative path ran.
	lines = appendStrictBlock(lines, validation)

	observability.FeedbackTotal.WithLabelValues(feedbackType).Inc()
	return domain.FeedbackReport{
		Feedback:          lines,
		OverallScore:      a.Scores.Hybrid,
		FeedbackType:      feedbackType,
		StrictValidation:  validation,
		HasCriticalIssues: validation.HasCriticalIssues,
	}
}

// narrative produces the report body. The external call is made at most once
// and any failure swaps immediately to the rule-based path.
func (s *FeedbackService) narrative(ctx context.Context, a domain.Analysis, validation domain.ValidationOutcome) ([]string, string) {
	if s.Narrator != nil && a.RAGEnabled && len(a.Evidence) > 0 {
		res := s.Narrator.Narrate(ctx, feedbackSystemPrompt, buildPrompt(a, validation))
		if res.OK {
			lines := splitLines(res.Text)
			if len(lines) > 0 {
				return lines, domain.FeedbackTypeGenerated
			}
		} else {
			slog.Warn("narrative generation failed; using rule-based feedback", slog.String("reason", res.Reason))
		}
	}
	return ruleBasedNarrative(a), domain.FeedbackTypeRuleBased
}

// buildPrompt assembles the structured generation prompt from the job text,
// retrieved evidence, matched skills, scores, and current violations.
func buildPrompt(a domain.Analysis, validation domain.ValidationOutcome) string {
	var b strings.Builder
	b.WriteString("Analyze this resume against the job description.\n\n")
	b.WriteString("## Job Description:\n")
	b.WriteString(a.JDText)
	b.WriteString("\n\n")

	if a.CompanyName != "" || a.CompanyContext != "" {
		b.WriteString("## Company Information:\n")
		if a.CompanyName != "" {
			b.WriteString(a.CompanyName + "\n")
		}
		if a.CompanyContext != "" {
			b.WriteString(truncate(a.CompanyContext, 500) + "\n")
		}
		b.WriteString("\n")
	}

	b.WriteString("## Relevant Resume Sections (retrieved):\n")
	for _, ev := range a.Evidence {
		b.WriteString(ev.Chunk.Text)
		b.WriteString("\n\n")
	}

	b.WriteString("## Matching Metrics:\n")
	matched := "None"
	if len(a.MatchedSkills) > 0 {
		matched = strings.Join(a.MatchedSkills, ", ")
	}
	fmt.Fprintf(&b, "- Matched Skills: %s\n", matched)
	fmt.Fprintf(&b, "- Lexical Score: %.2f%%\n", a.Scores.Lexical)
	fmt.Fprintf(&b, "- Semantic Score: %.2f%%\n", a.Scores.Semantic)
	fmt.Fprintf(&b, "- Overall Hybrid Score: %.2f%%\n", a.Scores.Hybrid)

	if len(validation.Violations) > 0 {
		b.WriteString("\n### CRITICAL ISSUES DETECTED:\n")
		for _, v := range validation.Violations {
			b.WriteString("- " + v.Message + "\n")
		}
	}

	b.WriteString(`
Provide detailed, actionable feedback in exactly 5 points:
1. Missing Critical Skills: what key skills from the job description are absent?
2. Project Enhancement: how to better phrase projects and achievements?
3. Action Verbs & Metrics: specific suggestions for quantifiable results.
4. Company Alignment: how well does the resume fit the company?
5. Overall Assessment: final verdict with improvement steps (mention any critical issues above).
Keep each point concise (2-3 sentences).`)
	return b.String()
}

// ruleBasedNarrative is the deterministic fallback: a fixed sequence of
// templated sentences driven by score thresholds.
func ruleBasedNarrative(a domain.Analysis) []string {
	var lines []string

	lines = append(lines, fmt.Sprintf(
		"Based on the resume analysis, the skill relevance score is %.2f%% and the overall compatibility (hybrid) score is %.2f%%. This reflects how well your resume aligns with the job description.",
		a.Scores.Skill, a.Scores.Hybrid))

	if len(a.MissingSkills) > 0 {
		top := a.MissingSkills
		if len(top) > missingSkillsShown {
			top = top[:missingSkillsShown]
		}
		lines = append(lines, fmt.Sprintf(
			"The following relevant skills were missing in your resume: %s. Consider adding them where applicable.",
			strings.Join(top, ", ")))
	}

	if len(strings.Fields(a.ResumeText)) < conciseResumeWords {
		lines = append(lines, "Your resume is quite concise. You might want to elaborate more on your experience, skills, or projects.")
	} else {
		lines = append(lines, "Resume length appears sufficient and provides good context.")
	}

	lower := strings.ToLower(a.ResumeText)
	if !strings.Contains(lower, "experience") || !strings.Contains(lower, "education") {
		lines = append(lines, "Ensure both 'Experience' and 'Education' sections are clearly present in your resume.")
	}

	switch {
	case a.Scores.Hybrid < lowMatchThreshold:
		lines = append(lines, "Overall, the resume shows a low match to the role. Improve skills alignment and address eligibility gaps.")
	case a.Scores.Hybrid < strongMatchThreshold:
		lines = append(lines, "The resume shows moderate alignment. Add more relevant experience and address skill or field mismatches.")
	default:
		lines = append(lines, "Your resume shows a strong match to the role. Make sure it's tailored for each job application.")
	}
	return lines
}

// appendStrictBlock attaches the validator findings to the narrative under
// visually distinct headers. This step must not be skipped by either path.
func appendStrictBlock(lines []string, validation domain.ValidationOutcome) []string {
	if len(validation.Violations) > 0 {
		lines = append(lines, "", "=== STRICT ELIGIBILITY CHECK ===", "")
		for _, v := range validation.Violations {
			lines = append(lines, v.Message)
		}
		lines = append(lines, "")
		if validation.HasCriticalIssues {
			lines = append(lines, "WARNING: your resume has critical mismatches that may result in automatic rejection by screening systems. Address these issues before applying.")
		} else {
			lines = append(lines, "Note: while these are not critical, addressing them will improve your chances.")
		}
	}
	if len(validation.Warnings) > 0 {
		lines = append(lines, "", "=== REQUIREMENTS MET ===")
		for _, w := range validation.Warnings {
			lines = append(lines, w.Message)
		}
	}
	return lines
}

func splitLines(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		if s := strings.TrimSpace(line); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
