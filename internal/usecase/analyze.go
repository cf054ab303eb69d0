// Package usecase contains application business logic services.
package usecase

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/fairyhunter13/resume-matcher/internal/domain"
	"github.com/fairyhunter13/resume-matcher/internal/extract"
	"github.com/fairyhunter13/resume-matcher/internal/match"
	"github.com/fairyhunter13/resume-matcher/internal/observability"
	"github.com/fairyhunter13/resume-matcher/internal/rag"
	"github.com/fairyhunter13/resume-matcher/internal/service/mlpool"
)

// CompanyFetcher retrieves organization context text for a company page URL.
// Failures degrade to an empty string, never an error, at the adapter.
type CompanyFetcher interface {
	FetchCompanyInfo(ctx context.Context, companyURL string) string
}

// AnalyzeOptions carries per-request knobs and optional organization context.
type AnalyzeOptions struct {
	CompanyName string
	CompanyURL  string
}

// AnalyzeService runs the full scoring pipeline for one candidate document
// against one requirement document. All model resources it holds are
// read-only and shared; every invocation builds its own chunk index and
// discards it with the response.
type AnalyzeService struct {
	Fields    *extract.FieldExtractor
	Skills    *extract.SkillExtractor
	Embedder  domain.Embedder
	Extractor domain.TextExtractor
	Company   CompanyFetcher
	Pool      *mlpool.Pool

	Weights   match.Weights
	ChunkSize int
	Overlap   int
	MaxTokens int
	Metric    rag.Metric
	TopK      int
}

// AnalyzeText scores candidate text against requirement text. Empty inputs
// produce zero scores, and a missing embedder degrades semantic scoring and
// retrieval rather than failing; this method does not return errors.
func (s *AnalyzeService) AnalyzeText(ctx context.Context, resumeText, jdText string, opts AnalyzeOptions) domain.Analysis {
	tracer := otel.Tracer("usecase.analyze")
	ctx, span := tracer.Start(ctx, "analyze.Text")
	defer span.End()
	start := time.Now()

	a := emptyAnalysis(resumeText, jdText, opts.CompanyName)

	err := s.Pool.Do(ctx, func(ctx context.Context) error {
		a.ResumeSkills = s.Skills.Extract(resumeText)
		a.JDSkills = s.Skills.Extract(jdText)
		a.MatchedSkills = extract.Intersect(a.ResumeSkills, a.JDSkills)
		a.MissingSkills = extract.Difference(a.JDSkills, a.ResumeSkills)
		a.ResumeFields = s.Fields.Extract(resumeText)
		a.JDFields = s.Fields.Extract(jdText)

		a.Scores.Skill = match.Round2(match.SkillOverlap(a.ResumeSkills, a.JDSkills))
		a.Scores.Lexical = match.Round2(match.TFIDF(resumeText, jdText))
		a.Scores.Semantic = match.Round2(match.Semantic(ctx, s.Embedder, resumeText, jdText))
		a.Scores.Hybrid = s.Weights.Hybrid(a.Scores.Skill, a.Scores.Lexical, a.Scores.Semantic)

		chunker := rag.NewChunker(s.ChunkSize, s.Overlap, s.MaxTokens)
		chunks := chunker.ChunkWords(resumeText, domain.ChunkMeta{Source: "resume", Company: opts.CompanyName})
		store := rag.NewStore(s.Embedder, s.Metric)
		store.Build(ctx, chunks)
		if len(chunks) > 0 {
			a.Evidence, a.RAGEnabled = store.Retrieve(ctx, jdText, s.TopK)
		}
		return nil
	})
	if err != nil {
		// Pool admission failed (context cancelled); return the zeroed shape.
		slog.Warn("analysis aborted before scoring", slog.Any("error", err))
		observability.AnalysesTotal.WithLabelValues("failed").Inc()
		return emptyAnalysis(resumeText, jdText, opts.CompanyName)
	}

	if opts.CompanyURL != "" && s.Company != nil {
		a.CompanyContext = s.Company.FetchCompanyInfo(ctx, opts.CompanyURL)
	}

	span.SetAttributes(
		attribute.Float64("score.hybrid", a.Scores.Hybrid),
		attribute.Bool("rag.enabled", a.RAGEnabled),
	)
	outcome := "ok"
	if !a.RAGEnabled {
		outcome = "degraded"
	}
	observability.AnalysesTotal.WithLabelValues(outcome).Inc()
	observability.AnalysisDuration.Observe(time.Since(start).Seconds())
	observability.HybridScoreHistogram.Observe(a.Scores.Hybrid)
	return a
}

// AnalyzeStored fetches the stored resume text by URL and scores it against
// the requirement. A fetch or extraction failure returns the zeroed analysis
// shape together with the cause so batch callers can drop the candidate and
// interactive callers can render "could not analyze".
//
// Extraction is a remote download plus conversion round trip and holds a
// pool slot just like the scoring stages, so batch fan-out never opens more
// than pool-size concurrent extractions.
func (s *AnalyzeService) AnalyzeStored(ctx context.Context, fileURL, jdText string, opts AnalyzeOptions) (domain.Analysis, error) {
	var text string
	err := s.Pool.Do(ctx, func(ctx context.Context) error {
		extracted, err := s.Extractor.ExtractURL(ctx, fileURL)
		if err != nil {
			return err
		}
		text = extracted
		return nil
	})
	if err != nil {
		slog.Error("resume text extraction failed", slog.String("url", fileURL), slog.Any("error", err))
		observability.AnalysesTotal.WithLabelValues("failed").Inc()
		return emptyAnalysis("", jdText, opts.CompanyName), err
	}
	return s.AnalyzeText(ctx, text, jdText, opts), nil
}

// emptyAnalysis is the zeroed result shape. Every collection is present and
// empty so clients always receive arrays, never null.
func emptyAnalysis(resumeText, jdText, companyName string) domain.Analysis {
	return domain.Analysis{
		ResumeText:    resumeText,
		JDText:        jdText,
		CompanyName:   companyName,
		ResumeSkills:  []string{},
		JDSkills:      []string{},
		MatchedSkills: []string{},
		MissingSkills: []string{},
		Evidence:      []domain.EvidenceChunk{},
	}
}
