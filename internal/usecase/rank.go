package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/fairyhunter13/resume-matcher/internal/domain"
)

// RankService ranks all stored candidates against one requirement text.
// It fans out one independent analysis per resume; concurrency is bounded by
// the analyzer's worker pool, and one candidate failing never aborts the
// batch.
type RankService struct {
	Resumes  domain.ResumeRepository
	Analyzer *AnalyzeService
	Limit    int
}

// TopMatches analyzes every stored resume against jdText and returns the top
// limit distinct candidates, deduplicated by email keeping the best-scoring
// resume per identity, sorted descending by hybrid score. limit <= 0 uses
// the service default.
func (s *RankService) TopMatches(ctx context.Context, jdText string, limit int) ([]domain.RankedCandidate, error) {
	tracer := otel.Tracer("usecase.rank")
	ctx, span := tracer.Start(ctx, "rank.TopMatches")
	defer span.End()

	if limit <= 0 {
		limit = s.Limit
	}
	resumes, err := s.Resumes.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("op=rank.list: %w", err)
	}
	if len(resumes) == 0 {
		return nil, fmt.Errorf("%w: no resumes stored", domain.ErrNotFound)
	}
	slog.Info("ranking stored resumes", slog.Int("count", len(resumes)))

	results := make([]*domain.RankedCandidate, len(resumes))
	var wg sync.WaitGroup
	for i, r := range resumes {
		wg.Add(1)
		go func(i int, r domain.Resume) {
			defer wg.Done()
			a, err := s.Analyzer.AnalyzeStored(ctx, r.FileURL, jdText, AnalyzeOptions{})
			if err != nil {
				// Partial failure: drop this candidate, keep the batch.
				slog.Warn("resume analysis failed; dropping from ranking",
					slog.String("resume_id", r.ID), slog.Any("error", err))
				return
			}
			results[i] = &domain.RankedCandidate{
				ResumeID:      r.ID,
				Email:         r.Email,
				FileURL:       r.FileURL,
				DriveURL:      r.DriveURL,
				MatchedSkills: a.MatchedSkills,
				Scores:        a.Scores,
			}
		}(i, r)
	}
	wg.Wait()

	// Best resume per identity.
	best := make(map[string]*domain.RankedCandidate)
	for _, rc := range results {
		if rc == nil {
			continue
		}
		if cur, ok := best[rc.Email]; !ok || rc.Scores.Hybrid > cur.Scores.Hybrid {
			best[rc.Email] = rc
		}
	}

	ranked := make([]domain.RankedCandidate, 0, len(best))
	for _, rc := range best {
		ranked = append(ranked, *rc)
	}
	sort.SliceStable(ranked, func(a, b int) bool {
		if ranked[a].Scores.Hybrid != ranked[b].Scores.Hybrid {
			return ranked[a].Scores.Hybrid > ranked[b].Scores.Hybrid
		}
		return ranked[a].Email < ranked[b].Email
	})
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	span.SetAttributes(attribute.Int("rank.candidates", len(ranked)))
	return ranked, nil
}
