package embedding

import (
	"context"
	"fmt"
	"os"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"
)

// LangchainEmbedder wraps a langchaingo embedder behind the Embedder port.
// Selected with provider "langchain"; useful when the embedding backend is
// an OpenAI-compatible service that langchaingo already knows how to talk
// to (batching, newline stripping).
type LangchainEmbedder struct {
	embedder         embeddings.Embedder
	model            string
	dimension        int
	queryInstruction string
}

// NewLangchainEmbedder creates a langchaingo-backed embedder.
func NewLangchainEmbedder(model, baseURL string, opts Options) (*LangchainEmbedder, error) {
	token := os.Getenv(opts.APIKeyEnv)
	if token == "" {
		// Local OpenAI-compatible services accept any token.
		token = "none"
	}

	client, err := openai.New(
		openai.WithBaseURL(baseURL),
		openai.WithToken(token),
		openai.WithEmbeddingModel(model),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedding client: %w", err)
	}

	embedder, err := embeddings.NewEmbedder(client, embeddings.WithStripNewLines(true))
	if err != nil {
		return nil, fmt.Errorf("failed to create embedder: %w", err)
	}

	dimension := opts.Dimension
	if dimension <= 0 {
		dimension = modelDimension(model)
	}

	return &LangchainEmbedder{
		embedder:         embedder,
		model:            model,
		dimension:        dimension,
		queryInstruction: opts.QueryInstruction,
	}, nil
}

func (e *LangchainEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	return e.embedder.EmbedDocuments(ctx, texts)
}

func (e *LangchainEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	if e.queryInstruction != "" {
		text = e.queryInstruction + text
	}
	return e.embedder.EmbedQuery(ctx, text)
}

func (e *LangchainEmbedder) Dimension() int {
	return e.dimension
}

func (e *LangchainEmbedder) ModelName() string {
	return e.model
}
