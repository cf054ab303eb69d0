package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/fairyhunter13/resume-matcher/internal/domain"
)

// MatchPolicy selects the tie-break when several degree or branch phrases
// match the same text.
type MatchPolicy string

// Supported tie-break policies. FirstOccurrence keeps the phrase appearing
// earliest in the text; LongestPhrase keeps the longest matching phrase.
const (
	MatchFirstOccurrence MatchPolicy = "first"
	MatchLongestPhrase   MatchPolicy = "longest"
)

var (
	cgpaRe       = regexp.MustCompile(`(?:cgpa|gpa)[^0-9]{0,5}([0-9]\.[0-9]+)`)
	experienceRe = regexp.MustCompile(`(\d+)\+?\s*(?:years|yrs)\s+(?:of\s+)?experience`)
)

// FieldExtractor pulls degree, branch, CGPA, and experience facts out of raw
// text by pattern and phrase matching. Absent fields stay nil; extraction
// never fails.
type FieldExtractor struct {
	vocab  Vocabulary
	policy MatchPolicy
}

// NewFieldExtractor constructs a FieldExtractor over the given vocabulary.
// An unrecognized policy falls back to MatchFirstOccurrence.
func NewFieldExtractor(vocab Vocabulary, policy MatchPolicy) *FieldExtractor {
	if policy != MatchLongestPhrase {
		policy = MatchFirstOccurrence
	}
	return &FieldExtractor{vocab: vocab, policy: policy}
}

// Extract returns the structured facts found in text.
func (e *FieldExtractor) Extract(text string) domain.FieldSet {
	lower := strings.ToLower(text)
	var fs domain.FieldSet

	if m := cgpaRe.FindStringSubmatch(lower); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			fs.CGPA = &v
		}
	}
	if m := experienceRe.FindStringSubmatch(lower); m != nil {
		if v, err := strconv.Atoi(m[1]); err == nil {
			fs.ExperienceYears = &v
		}
	}
	if d := e.matchPhrase(lower, e.vocab.Degrees); d != "" {
		fs.Degree = &d
	}
	if b := e.matchPhrase(lower, e.vocab.Branches); b != "" {
		fs.Branch = &b
	}
	return fs
}

// matchPhrase returns the winning phrase from the set under the configured
// policy, or "" when nothing matches. Matching is case-insensitive substring
// containment; the text is already lowercased by the caller.
func (e *FieldExtractor) matchPhrase(lower string, phrases []string) string {
	best := ""
	bestPos := -1
	for _, p := range phrases {
		pos := strings.Index(lower, p)
		if pos < 0 {
			continue
		}
		switch e.policy {
		case MatchLongestPhrase:
			if len(p) > len(best) || (len(p) == len(best) && (bestPos < 0 || pos < bestPos)) {
				best, bestPos = p, pos
			}
		default:
			if bestPos < 0 || pos < bestPos || (pos == bestPos && len(p) > len(best)) {
				best, bestPos = p, pos
			}
		}
	}
	return best
}
