package llm

import (
	"context"
	"errors"
	"os"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"carenova/internal/config"
)

// Completer produces free text for an instruction prompt.  Callers must
// treat the output as untrusted: it may be truncated, empty or malformed.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Embedder converts free text into a vector for similarity search.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Client defines the methods required by the analysis pipeline.  Ready
// reports whether the upstream provider is configured at all; it performs
// no network call.
type Client interface {
	Completer
	Embedder
	Ready() bool
}

// ErrNotConfigured is returned when no API key was supplied.
var ErrNotConfigured = errors.New("llm: client not configured")

// OpenAIClient calls an OpenAI-compatible API for completions and
// embeddings.  A custom base URL allows OpenRouter or local inference
// servers that expose the same wire format.
type OpenAIClient struct {
	client         *openai.Client
	model          string
	embeddingModel string
	temperature    float32
	maxTokens      int
	timeout        time.Duration
	configured     bool
}

// NewOpenAIClient constructs a client from configuration.  The API key is
// read from the environment variable named in cfg; a missing key leaves the
// client in a degraded state where every call fails fast.
func NewOpenAIClient(cfg config.LLMConfig) *OpenAIClient {
	apiKey := os.Getenv(cfg.APIKeyEnv)
	oc := openai.DefaultConfig(apiKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = cfg.BaseURL
	}
	timeout := cfg.Timeout()
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &OpenAIClient{
		client:         openai.NewClientWithConfig(oc),
		model:          cfg.Model,
		embeddingModel: cfg.EmbeddingModel,
		temperature:    cfg.Temperature,
		maxTokens:      cfg.MaxTokens,
		timeout:        timeout,
		configured:     apiKey != "",
	}
}

// Ready reports whether an API key is configured.
func (c *OpenAIClient) Ready() bool { return c.configured }

// Complete sends the prompt as a single user message and returns the raw
// assistant text.  The call is bounded by the configured timeout.
func (c *OpenAIClient) Complete(ctx context.Context, prompt string) (string, error) {
	if !c.configured {
		return "", ErrNotConfigured
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    []openai.ChatCompletionMessage{{Role: openai.ChatMessageRoleUser, Content: prompt}},
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("llm: empty completion response")
	}
	return resp.Choices[0].Message.Content, nil
}

// Embed returns the embedding vector for the given text.
func (c *OpenAIClient) Embed(ctx context.Context, text string) ([]float32, error) {
	if !c.configured {
		return nil, ErrNotConfigured
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: []string{text},
		Model: openai.EmbeddingModel(c.embeddingModel),
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
		return nil, errors.New("llm: no embedding returned")
	}
	return resp.Data[0].Embedding, nil
}
