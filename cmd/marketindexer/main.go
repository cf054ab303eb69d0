// Command marketindexer runs the offline market index pipeline. It has three
// modes: -scrape collects postings from the search API and publishes them to
// the postings topic, -build drains the topic and persists a chunk index, and
// -query loads the persisted index and retrieves evidence for a query.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/fairyhunter13/resume-matcher/internal/adapter/ai/openaiembed"
	"github.com/fairyhunter13/resume-matcher/internal/adapter/queue/redpanda"
	"github.com/fairyhunter13/resume-matcher/internal/adapter/scraper"
	"github.com/fairyhunter13/resume-matcher/internal/config"
	"github.com/fairyhunter13/resume-matcher/internal/domain"
	"github.com/fairyhunter13/resume-matcher/internal/observability"
	"github.com/fairyhunter13/resume-matcher/internal/rag"
)

const postingsPerTopic = 10

func main() {
	scrape := flag.Bool("scrape", false, "collect postings from the search API and publish them")
	build := flag.Bool("build", false, "drain the postings topic and persist the chunk index")
	query := flag.String("query", "", "retrieve top-k evidence for a query from the persisted index")
	topK := flag.Int("k", 3, "number of chunks to retrieve in query mode")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	logger := observability.SetupLogger(cfg)
	slog.SetDefault(logger)
	observability.InitMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	switch {
	case *scrape:
		err = runScrape(ctx, cfg)
	case *build:
		err = runBuild(ctx, cfg)
	case *query != "":
		err = runQuery(ctx, cfg, *query, *topK)
	default:
		flag.Usage()
		os.Exit(2)
	}
	if err != nil {
		slog.Error("marketindexer failed", slog.Any("error", err))
		os.Exit(1)
	}
}

// runScrape searches each configured topic and publishes the postings.
func runScrape(ctx context.Context, cfg config.Config) error {
	serp := scraper.New(cfg.SerpAPIKey, cfg.SerpBaseURL)
	producer, err := redpanda.NewProducer(cfg.KafkaBrokers)
	if err != nil {
		return err
	}
	defer producer.Close()

	total := 0
	for _, topic := range cfg.MarketTopics {
		postings, err := serp.SearchJobs(ctx, topic, postingsPerTopic)
		if err != nil {
			// One failed topic does not abort the run.
			slog.Warn("topic scrape failed", slog.String("skill", topic), slog.Any("error", err))
			continue
		}
		if err := producer.Publish(ctx, postings); err != nil {
			return err
		}
		total += len(postings)
	}
	slog.Info("scrape complete", slog.Int("postings", total), slog.Int("topics", len(cfg.MarketTopics)))
	return nil
}

// runBuild drains the postings topic, chunks every description, embeds the
// chunks and saves the index pair to the configured directory.
func runBuild(ctx context.Context, cfg config.Config) error {
	embedder := openaiembed.New(cfg)
	if embedder == nil {
		return fmt.Errorf("%w: embeddings required to build the market index", domain.ErrUnavailable)
	}
	consumer, err := redpanda.NewConsumer(cfg.KafkaBrokers, "market-index-builder")
	if err != nil {
		return err
	}
	defer consumer.Close()

	postings, err := consumer.Drain(ctx, 0)
	if err != nil {
		return err
	}
	if len(postings) == 0 {
		return fmt.Errorf("%w: no postings to index", domain.ErrNotFound)
	}

	chunker := rag.NewChunker(cfg.ChunkSizeWords, cfg.ChunkOverlapWords, cfg.ChunkMaxTokens)
	var chunks []domain.Chunk
	for _, p := range postings {
		meta := domain.ChunkMeta{Source: "market", Title: p.Title, Skill: p.Skill, Company: p.Company}
		for _, c := range chunker.ChunkWords(p.Description, meta) {
			c.Ordinal = len(chunks)
			chunks = append(chunks, c)
		}
	}

	store := rag.NewStore(embedder, rag.ParseMetric(cfg.IndexMetric))
	store.Build(ctx, chunks)
	if !store.Indexed() {
		return fmt.Errorf("%w: embedding failed, refusing to persist a fallback-only index", domain.ErrUpstreamFailure)
	}
	if err := store.SaveTo(cfg.MarketIndexDir); err != nil {
		return err
	}
	slog.Info("market index built",
		slog.Int("postings", len(postings)),
		slog.Int("chunks", len(chunks)),
		slog.String("dir", cfg.MarketIndexDir))
	return nil
}

// runQuery loads the persisted pair and prints the top-k evidence.
func runQuery(ctx context.Context, cfg config.Config, query string, k int) error {
	embedder := openaiembed.New(cfg)
	if embedder == nil {
		return fmt.Errorf("%w: embeddings required to query the market index", domain.ErrUnavailable)
	}
	store, err := rag.LoadFrom(cfg.MarketIndexDir, embedder)
	if err != nil {
		return err
	}
	evidence, vectorBacked := store.Retrieve(ctx, query, k)
	if !vectorBacked {
		slog.Warn("retrieval degraded to document order")
	}
	for i, ev := range evidence {
		fmt.Printf("#%d score=%.4f skill=%s company=%s title=%s\n%s\n\n",
			i+1, ev.Score, ev.Chunk.Meta.Skill, ev.Chunk.Meta.Company, ev.Chunk.Meta.Title, ev.Chunk.Text)
	}
	return nil
}
