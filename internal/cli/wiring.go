package cli

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"wpsearch/config"
	"wpsearch/internal/adapter/analyzer"
	"wpsearch/internal/adapter/embedding"
	"wpsearch/internal/adapter/retriever"
	"wpsearch/internal/adapter/store"
	"wpsearch/internal/adapter/wp"
	"wpsearch/internal/port"
	"wpsearch/internal/usecase"
)

// app bundles the wired components a command needs.
type app struct {
	entries   *store.BoltStore
	hybrid    *retriever.HybridRetriever
	queryUC   *usecase.QueryUseCase
	reindexer *usecase.Reindexer
	logger    *slog.Logger
}

func (a *app) Close() error {
	return a.entries.Close()
}

// buildApp wires stores, embedder, retrievers, and use cases from config.
func buildApp(cfg *config.Config) (*app, error) {
	logger := slog.Default()

	embedder, err := buildEmbedder(cfg)
	if err != nil {
		return nil, err
	}

	entries, err := store.NewBoltStore(cfg.Store.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	vectors, err := buildVectorStore(cfg, entries, embedder.Dimension())
	if err != nil {
		entries.Close()
		return nil, err
	}

	tokenizer := analyzer.NewTokenizer(cfg.Sparse.Stemming)

	dense := retriever.NewDenseRetriever(vectors, embedder, entries)
	sparse := retriever.NewSparseRetriever(entries, tokenizer, cfg.Sparse.K1, cfg.Sparse.B)
	hybrid := retriever.NewHybridRetriever(dense, sparse)

	client := wp.NewClient(wp.ClientConfig{
		PerPage:      cfg.Ingest.PerPage,
		MaxPages:     cfg.Ingest.MaxPages,
		SitemapLimit: cfg.Ingest.SitemapLimit,
		FetchDelay:   time.Duration(cfg.Ingest.FetchDelayMS) * time.Millisecond,
		Timeout:      time.Duration(cfg.Ingest.TimeoutSecs) * time.Second,
		ExcludeURLs:  cfg.Ingest.ExcludeURLs,
	}, logger)

	builder := usecase.NewIndexBuilder(entries, vectors, embedder, tokenizer,
		cfg.Embedding.BatchSize, cfg.Embedding.ChunkSize, logger)

	return &app{
		entries:   entries,
		hybrid:    hybrid,
		queryUC:   usecase.NewQueryUseCase(hybrid),
		reindexer: usecase.NewReindexer(client, builder, logger),
		logger:    logger,
	}, nil
}

func buildEmbedder(cfg *config.Config) (port.Embedder, error) {
	opts := embedding.Options{
		APIKeyEnv:        cfg.Embedding.APIKeyEnv,
		Dimension:        cfg.Embedding.Dimension,
		QueryInstruction: cfg.Embedding.QueryInstruction,
	}

	switch cfg.Embedding.Provider {
	case "openai":
		return embedding.NewOpenAIEmbedder(cfg.Embedding.Model, cfg.Embedding.BaseURL, opts), nil
	case "langchain":
		return embedding.NewLangchainEmbedder(cfg.Embedding.Model, cfg.Embedding.BaseURL, opts)
	case "mock":
		return embedding.NewMockEmbedder(cfg.Embedding.Dimension), nil
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", cfg.Embedding.Provider)
	}
}

func buildVectorStore(cfg *config.Config, entries *store.BoltStore, dimension int) (port.VectorStore, error) {
	switch cfg.Store.Backend {
	case "qdrant":
		return store.NewQdrantStore(store.QdrantConfig{
			URL:        cfg.Store.Qdrant.URL,
			APIKey:     os.Getenv(cfg.Store.Qdrant.APIKeyEnv),
			Collection: cfg.Store.Qdrant.Collection,
			Timeout:    time.Duration(cfg.Store.Qdrant.TimeoutSecs) * time.Second,
		}, dimension)
	case "bolt", "":
		return store.NewBoltVectorStore(entries.DB(), dimension)
	default:
		return nil, fmt.Errorf("unsupported store backend: %s", cfg.Store.Backend)
	}
}
