// Package gemini wraps the Google Generative Language API for single-turn
// prompts with inline media attachments.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// ErrMissingKey is returned by New when no API key is configured.
var ErrMissingKey = errors.New("gemini api key not configured")

const methodGenerateContent = "generateContent"

// Media is inline binary content sent alongside a prompt.
type Media struct {
	MIMEType string
	Data     []byte
}

// Options configures the client. Endpoint overrides the public API base URL.
type Options struct {
	APIKey   string
	Endpoint string
}

// ModelInfo describes one model exposed to the API key.
type ModelInfo struct {
	Name        string
	DisplayName string
	Methods     []string
}

// Generates reports whether the model supports content generation.
func (m ModelInfo) Generates() bool {
	return slices.Contains(m.Methods, methodGenerateContent)
}

// Client issues generateContent and models.list calls.
type Client struct {
	genai  *genai.Client
	logger *slog.Logger
}

func New(ctx context.Context, opts Options, logger *slog.Logger) (*Client, error) {
	if opts.APIKey == "" {
		return nil, ErrMissingKey
	}

	clientOpts := []option.ClientOption{option.WithAPIKey(opts.APIKey)}
	if opts.Endpoint != "" {
		clientOpts = append(clientOpts, option.WithEndpoint(opts.Endpoint))
	}

	client, err := genai.NewClient(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	return &Client{
		genai:  client,
		logger: logger.With("system", "gemini"),
	}, nil
}

// Close releases the underlying API connections.
func (c *Client) Close() error {
	return c.genai.Close()
}

// Generate sends prompt and media to model as one user turn and returns the
// concatenated text of the first candidate. A blocked prompt or a response
// with no candidates yields empty text rather than an error.
func (c *Client) Generate(ctx context.Context, model, prompt string, media ...Media) (string, error) {
	parts := []genai.Part{genai.Text(prompt)}
	for _, m := range media {
		parts = append(parts, genai.Blob{MIMEType: m.MIMEType, Data: m.Data})
	}

	resp, err := c.genai.GenerativeModel(model).GenerateContent(ctx, parts...)
	if err != nil {
		var blocked *genai.BlockedError
		if errors.As(err, &blocked) {
			c.logger.Warn("response blocked", "model", model, "reason", blocked.Error())
			return "", nil
		}
		return "", fmt.Errorf("generate content with %s: %w", model, err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		c.logger.Warn("response has no candidates", "model", model)
		return "", nil
	}

	var b strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		if text, ok := p.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	return b.String(), nil
}

// ListModels returns every model visible to the API key, across all pages.
func (c *Client) ListModels(ctx context.Context) ([]ModelInfo, error) {
	var models []ModelInfo

	it := c.genai.ListModels(ctx)
	for {
		m, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("list models: %w", err)
		}
		models = append(models, ModelInfo{
			Name:        strings.TrimPrefix(m.Name, "models/"),
			DisplayName: m.DisplayName,
			Methods:     m.SupportedGenerationMethods,
		})
	}
	return models, nil
}
