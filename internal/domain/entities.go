package domain

import (
	"context"
	"errors"
	"time"
)

// Error taxonomy (sentinels)
var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrUnavailable     = errors.New("dependency unavailable")
	ErrUpstreamFailure = errors.New("upstream failure")
	ErrInternal        = errors.New("internal error")
)

// Severity classifies strict-validation findings.
type Severity string

// Severities for violations and warnings. CRITICAL marks findings that are
// expected to disqualify a candidate, MISMATCH marks soft string mismatches,
// PASS marks positive confirmations.
const (
	SeverityCritical Severity = "CRITICAL"
	SeverityMismatch Severity = "MISMATCH"
	SeverityPass     Severity = "PASS"
)

// FieldSet holds structured facts extracted from free text. Absent fields are
// nil; absence is a normal outcome, never an error.
type FieldSet struct {
	Degree          *string  `json:"degree,omitempty"`
	Branch          *string  `json:"branch,omitempty"`
	CGPA            *float64 `json:"cgpa,omitempty"`
	ExperienceYears *int     `json:"experience,omitempty"`
}

// Document pairs raw text with its derived skills and fields. Two documents
// exist per analysis: the candidate resume and the job requirement.
type Document struct {
	Text   string
	Skills []string
	Fields FieldSet
}

// ChunkMeta carries provenance for a chunk (offline market variant fills
// Title/Skill/Company; the per-resume path only sets Source).
type ChunkMeta struct {
	Source  string `json:"source,omitempty"`
	Title   string `json:"title,omitempty"`
	Skill   string `json:"skill,omitempty"`
	Company string `json:"company,omitempty"`
}

// Chunk is a bounded contiguous slice of a document used as the unit of
// retrieval. Chunks are immutable once created and rebuilt fresh per request.
type Chunk struct {
	Ordinal   int       `json:"ordinal"`
	Text      string    `json:"text"`
	WordStart int       `json:"word_start"`
	WordEnd   int       `json:"word_end"`
	Meta      ChunkMeta `json:"meta"`
}

// EvidenceChunk is a retrieved chunk with its similarity score in (0,1].
type EvidenceChunk struct {
	Chunk Chunk   `json:"chunk"`
	Score float64 `json:"score"`
}

// ScoreBundle groups the similarity signals, each scaled to [0,100].
// Hybrid is a fixed convex combination of the other three.
type ScoreBundle struct {
	Skill    float64 `json:"skillScore"`
	Lexical  float64 `json:"lexicalScore"`
	Semantic float64 `json:"semanticScore"`
	Hybrid   float64 `json:"hybridScore"`
}

// Violation is a hard requirement unmet by the candidate. Violations are
// data, not errors: they are always returned successfully to the caller.
type Violation struct {
	Severity Severity `json:"severity"`
	Field    string   `json:"field"`
	Message  string   `json:"message"`
}

// Warning is a positive confirmation that a requirement was met.
type Warning struct {
	Severity Severity `json:"severity"`
	Field    string   `json:"field"`
	Message  string   `json:"message"`
}

// ValidationOutcome is the strict validator output. HasCriticalIssues is true
// iff at least one violation has severity CRITICAL.
type ValidationOutcome struct {
	Violations        []Violation `json:"violations"`
	Warnings          []Warning   `json:"warnings"`
	HasCriticalIssues bool        `json:"hasCriticalIssues"`
}

// Analysis is the full per-resume result shape returned to callers.
type Analysis struct {
	ResumeText     string          `json:"-"`
	ResumeSkills   []string        `json:"resumeSkills"`
	JDSkills       []string        `json:"jdSkills"`
	MatchedSkills  []string        `json:"matchedSkills"`
	MissingSkills  []string        `json:"missingSkills"`
	ResumeFields   FieldSet        `json:"resumeFields"`
	JDFields       FieldSet        `json:"jdFields"`
	Scores         ScoreBundle     `json:"scores"`
	Evidence       []EvidenceChunk `json:"retrievedEvidence"`
	RAGEnabled     bool            `json:"ragEnabled"`
	CompanyName    string          `json:"companyName,omitempty"`
	CompanyContext string          `json:"-"`
	JDText         string          `json:"-"`
}

// Feedback path identifiers.
const (
	FeedbackTypeGenerated = "generated"
	FeedbackTypeRuleBased = "rule-based"
)

// FeedbackReport is the composed feedback: narrative lines, the score bundle,
// and the strict validation outcome which is always attached regardless of
// which narrative path produced the lines.
type FeedbackReport struct {
	Feedback          []string          `json:"feedback"`
	OverallScore      float64           `json:"overallScore"`
	FeedbackType      string            `json:"feedbackType"`
	StrictValidation  ValidationOutcome `json:"strictValidation"`
	HasCriticalIssues bool              `json:"hasCriticalIssues"`
}

// Resume is a stored candidate reference (persistence is a collaborator
// concern; the core only consumes the URL and identity fields).
type Resume struct {
	ID        string
	Email     string
	FileURL   string
	DriveURL  string
	Filename  string
	MIME      string
	Size      int64
	CreatedAt time.Time
}

// RankedCandidate is one entry of the batch ranking output, deduplicated by
// email keeping the best-scoring resume per identity.
type RankedCandidate struct {
	ResumeID      string      `json:"resumeId"`
	Email         string      `json:"email"`
	FileURL       string      `json:"resumeUrl"`
	DriveURL      string      `json:"driveUrl,omitempty"`
	MatchedSkills []string    `json:"matchedSkills"`
	Scores        ScoreBundle `json:"scores"`
}

// NarrativeResult is the tagged outcome of the external text-generation call.
// Exactly one of Text/Reason is meaningful depending on OK.
type NarrativeResult struct {
	OK     bool
	Text   string
	Reason string
}

// Ports

// Embedder produces dense vectors for texts. All vectors compared against
// each other must come from the same implementation instance so dimensions
// and vector spaces match. Implementations must be safe for concurrent use.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// Narrator requests a short structured narrative from an external
// text-generation service. It is called at most once per report (fail-fast,
// zero retries); any failure is reported through NarrativeResult, not error.
type Narrator interface {
	Narrate(ctx context.Context, systemPrompt, userPrompt string) NarrativeResult
}

// ResumeRepository persists candidate references. Injected collaborator.
type ResumeRepository interface {
	Create(ctx context.Context, r Resume) (string, error)
	Get(ctx context.Context, id string) (Resume, error)
	List(ctx context.Context) ([]Resume, error)
}

// TextExtractor turns a stored resume reference into raw text.
type TextExtractor interface {
	ExtractURL(ctx context.Context, fileURL string) (string, error)
}

// JobPosting is one scraped market posting used by the offline index variant.
type JobPosting struct {
	Skill       string `json:"skill"`
	Title       string `json:"title"`
	Company     string `json:"company"`
	Description string `json:"description"`
}

// JobSearcher is the third-party search API used to collect market postings.
type JobSearcher interface {
	SearchJobs(ctx context.Context, skill string, limit int) ([]JobPosting, error)
}
