package match

import (
	"fmt"
	"math"

	"github.com/fairyhunter13/resume-matcher/internal/domain"
)

// Weights are the fixed convex-combination coefficients of the hybrid score.
type Weights struct {
	Skill    float64
	Lexical  float64
	Semantic float64
}

// DefaultWeights returns the standard 0.5/0.2/0.3 blend.
func DefaultWeights() Weights { return Weights{Skill: 0.5, Lexical: 0.2, Semantic: 0.3} }

// Validate checks the weights are non-negative and sum to 1 within epsilon.
func (w Weights) Validate() error {
	if w.Skill < 0 || w.Lexical < 0 || w.Semantic < 0 {
		return fmt.Errorf("%w: negative weight", domain.ErrInvalidArgument)
	}
	if math.Abs(w.Skill+w.Lexical+w.Semantic-1.0) > 1e-6 {
		return fmt.Errorf("%w: weights must sum to 1", domain.ErrInvalidArgument)
	}
	return nil
}

// Hybrid blends the three scores into one ranking number, rounded to two
// decimals. Pure function; inputs and output are on the [0,100] scale.
func (w Weights) Hybrid(skill, lexical, semantic float64) float64 {
	return round2(w.Skill*skill + w.Lexical*lexical + w.Semantic*semantic)
}

// SkillOverlap scores the candidate skill coverage of the requirement skill
// set: |resume ∩ jd| / |jd| scaled to [0,100]. An empty requirement set
// yields 0.
func SkillOverlap(resumeSkills, jdSkills []string) float64 {
	if len(jdSkills) == 0 {
		return 0
	}
	set := make(map[string]struct{}, len(resumeSkills))
	for _, s := range resumeSkills {
		set[s] = struct{}{}
	}
	matched := 0
	for _, s := range dedupe(jdSkills) {
		if _, ok := set[s]; ok {
			matched++
		}
	}
	return float64(matched) / float64(len(dedupe(jdSkills))) * 100
}

func dedupe(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }

// Round2 exposes two-decimal rounding for score presentation.
func Round2(v float64) float64 { return round2(v) }
