// Command server starts the resume matcher HTTP server.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fairyhunter13/resume-matcher/internal/adapter/ai/groq"
	"github.com/fairyhunter13/resume-matcher/internal/adapter/ai/openaiembed"
	httpserver "github.com/fairyhunter13/resume-matcher/internal/adapter/httpserver"
	"github.com/fairyhunter13/resume-matcher/internal/adapter/repo/postgres"
	"github.com/fairyhunter13/resume-matcher/internal/adapter/scraper"
	tikaext "github.com/fairyhunter13/resume-matcher/internal/adapter/textextractor/tika"
	"github.com/fairyhunter13/resume-matcher/internal/app"
	"github.com/fairyhunter13/resume-matcher/internal/config"
	"github.com/fairyhunter13/resume-matcher/internal/domain"
	"github.com/fairyhunter13/resume-matcher/internal/extract"
	"github.com/fairyhunter13/resume-matcher/internal/match"
	"github.com/fairyhunter13/resume-matcher/internal/observability"
	"github.com/fairyhunter13/resume-matcher/internal/rag"
	"github.com/fairyhunter13/resume-matcher/internal/service/mlpool"
	"github.com/fairyhunter13/resume-matcher/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := observability.SetupLogger(cfg)
	slog.SetDefault(logger)
	observability.InitMetrics()

	shutdownTracer, err := observability.SetupTracing(cfg)
	if err != nil {
		slog.Error("failed to setup tracing", slog.Any("error", err))
	}
	defer func() {
		if shutdownTracer != nil {
			_ = shutdownTracer(context.Background())
		}
	}()

	weights := match.Weights{Skill: cfg.WeightSkill, Lexical: cfg.WeightLexical, Semantic: cfg.WeightSemantic}
	if err := weights.Validate(); err != nil {
		slog.Error("invalid scoring weights", slog.Any("error", err))
		os.Exit(1)
	}

	// Shared read-only model resources, loaded once.
	vocab, err := extract.LoadVocabulary(cfg.VocabFile)
	if err != nil {
		slog.Error("vocabulary load failed", slog.Any("error", err))
		os.Exit(1)
	}
	fields := extract.NewFieldExtractor(vocab, extract.MatchPolicy(cfg.FieldMatchPolicy))
	skills := extract.NewSkillExtractor(vocab)

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DBURL)
	if err != nil {
		slog.Error("db connect failed", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()
	resumes := postgres.NewResumeRepo(pool)

	var embedder domain.Embedder
	if c := openaiembed.New(cfg); c != nil {
		embedder = c
	}
	narrator := groq.New(cfg)
	serp := scraper.New(cfg.SerpAPIKey, cfg.SerpBaseURL)
	extractor := tikaext.New(cfg.TikaURL)
	workers := mlpool.New(cfg.MLPoolSize)

	analyzer := &usecase.AnalyzeService{
		Fields:    fields,
		Skills:    skills,
		Embedder:  embedder,
		Extractor: extractor,
		Company:   serp,
		Pool:      workers,
		Weights:   weights,
		ChunkSize: cfg.ChunkSizeWords,
		Overlap:   cfg.ChunkOverlapWords,
		MaxTokens: cfg.ChunkMaxTokens,
		Metric:    rag.ParseMetric(cfg.IndexMetric),
		TopK:      cfg.RetrievalTopK,
	}
	feedback := &usecase.FeedbackService{Narrator: narrator}
	ranker := &usecase.RankService{Resumes: resumes, Analyzer: analyzer, Limit: cfg.TopMatchesLimit}

	dbCheck := func(ctx context.Context) error { return pool.Ping(ctx) }
	srv := httpserver.NewServer(cfg, resumes, analyzer, feedback, ranker, dbCheck)
	handler := app.BuildRouter(cfg, srv)

	srvHTTP := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           handler,
		ReadTimeout:       cfg.HTTPReadTimeout,
		WriteTimeout:      cfg.HTTPWriteTimeout,
		IdleTimeout:       cfg.HTTPIdleTimeout,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http server starting", slog.Int("port", cfg.Port))
		errCh <- srvHTTP.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		slog.Info("shutdown signal received", slog.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", slog.Any("error", err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ServerShutdownTimeout)
	defer cancel()
	_ = srvHTTP.Shutdown(shutdownCtx)
}
