package usecase

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/resume-matcher/internal/domain"
)

type memResumeRepo struct {
	resumes []domain.Resume
}

func (r *memResumeRepo) Create(_ context.Context, res domain.Resume) (string, error) {
	r.resumes = append(r.resumes, res)
	return res.ID, nil
}

func (r *memResumeRepo) Get(_ context.Context, id string) (domain.Resume, error) {
	for _, res := range r.resumes {
		if res.ID == id {
			return res, nil
		}
	}
	return domain.Resume{}, domain.ErrNotFound
}

func (r *memResumeRepo) List(_ context.Context) ([]domain.Resume, error) {
	return r.resumes, nil
}

func TestRankService_TopMatches(t *testing.T) {
	t.Parallel()

	extractor := urlExtractor{
		"u://weak":   "I know python",
		"u://strong": "python go docker and aws expert",
		"u://other":  "python and go developer",
	}
	repo := &memResumeRepo{resumes: []domain.Resume{
		{ID: "r1", Email: "a@x.com", FileURL: "u://weak"},
		{ID: "r2", Email: "a@x.com", FileURL: "u://strong"},
		{ID: "r3", Email: "b@x.com", FileURL: "u://other"},
		{ID: "r4", Email: "c@x.com", FileURL: "u://broken"},
	}}
	svc := &RankService{Resumes: repo, Analyzer: newAnalyzer(nil, extractor), Limit: 10}

	ranked, err := svc.TopMatches(context.Background(), "needs python go docker aws", 0)
	require.NoError(t, err)

	// Duplicate identity deduped, failed extraction dropped.
	require.Len(t, ranked, 2)
	assert.Equal(t, "a@x.com", ranked[0].Email)
	assert.Equal(t, "r2", ranked[0].ResumeID)
	assert.Equal(t, "b@x.com", ranked[1].Email)
	assert.Greater(t, ranked[0].Scores.Hybrid, ranked[1].Scores.Hybrid)
}

func TestRankService_LimitCut(t *testing.T) {
	t.Parallel()
	extractor := urlExtractor{
		"u://1": "python go docker aws",
		"u://2": "python go docker",
		"u://3": "python go",
	}
	repo := &memResumeRepo{resumes: []domain.Resume{
		{ID: "r1", Email: "a@x.com", FileURL: "u://1"},
		{ID: "r2", Email: "b@x.com", FileURL: "u://2"},
		{ID: "r3", Email: "c@x.com", FileURL: "u://3"},
	}}
	svc := &RankService{Resumes: repo, Analyzer: newAnalyzer(nil, extractor), Limit: 10}

	ranked, err := svc.TopMatches(context.Background(), "python go docker aws", 2)
	require.NoError(t, err)
	require.Len(t, ranked, 2)
	assert.Equal(t, "a@x.com", ranked[0].Email)
	assert.Equal(t, "b@x.com", ranked[1].Email)
}

func TestRankService_NoResumes(t *testing.T) {
	t.Parallel()
	svc := &RankService{Resumes: &memResumeRepo{}, Analyzer: newAnalyzer(nil, urlExtractor{}), Limit: 10}
	_, err := svc.TopMatches(context.Background(), "anything", 0)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// gaugeExtractor tracks the peak number of concurrent extractions.
type gaugeExtractor struct {
	inFlight atomic.Int64
	peak     atomic.Int64
}

func (g *gaugeExtractor) ExtractURL(context.Context, string) (string, error) {
	cur := g.inFlight.Add(1)
	for {
		old := g.peak.Load()
		if cur <= old || g.peak.CompareAndSwap(old, cur) {
			break
		}
	}
	time.Sleep(5 * time.Millisecond)
	g.inFlight.Add(-1)
	return "python developer", nil
}

func TestRankService_ExtractionBoundedByPool(t *testing.T) {
	t.Parallel()

	extractor := &gaugeExtractor{}
	repo := &memResumeRepo{}
	for i := range 8 {
		repo.resumes = append(repo.resumes, domain.Resume{
			ID:      fmt.Sprintf("r%d", i),
			Email:   fmt.Sprintf("c%d@x.com", i),
			FileURL: fmt.Sprintf("u://%d", i),
		})
	}
	analyzer := newAnalyzer(nil, extractor)
	svc := &RankService{Resumes: repo, Analyzer: analyzer, Limit: 10}

	ranked, err := svc.TopMatches(context.Background(), "python role", 0)
	require.NoError(t, err)
	assert.Len(t, ranked, 8)
	assert.LessOrEqual(t, extractor.peak.Load(), int64(analyzer.Pool.Size()))
}

func TestRankService_AllCandidatesFail(t *testing.T) {
	t.Parallel()
	repo := &memResumeRepo{resumes: []domain.Resume{
		{ID: "r1", Email: "a@x.com", FileURL: "u://gone"},
	}}
	svc := &RankService{Resumes: repo, Analyzer: newAnalyzer(nil, urlExtractor{}), Limit: 10}

	ranked, err := svc.TopMatches(context.Background(), "python", 0)
	require.NoError(t, err)
	assert.Empty(t, ranked)
}
