package gemini

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

const (
	defaultModel           = "gemini-2.5-flash"
	defaultMaxRetries      = 3
	defaultBackoffBase     = 2.0
	defaultMaxOutputTokens = 512
)

// sleep is stubbed in tests to avoid real backoff delays.
var sleep = time.Sleep

// contentCaller is the slice of the genai client the generator uses.
// *genai.Models satisfies it.
type contentCaller interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Config holds the Gemini provider settings.
type Config struct {
	APIKey          string
	Model           string
	MaxRetries      int
	BackoffBase     float64
	MaxOutputTokens int32
}

// Generator wraps the Google GenAI client behind the Classifier contract,
// retrying transient failures with exponential backoff.
type Generator struct {
	models      contentCaller
	model       string
	maxRetries  int
	backoffBase float64
	maxTokens   int32
	logger      *zap.Logger
}

// NewGenerator creates a Generator configured for the Gemini API backend.
func NewGenerator(ctx context.Context, cfg Config, logger *zap.Logger) (*Generator, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = defaultModel
	}

	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}

	backoffBase := cfg.BackoffBase
	if backoffBase <= 1 {
		backoffBase = defaultBackoffBase
	}

	maxTokens := cfg.MaxOutputTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxOutputTokens
	}

	return &Generator{
		models:      client.Models,
		model:       model,
		maxRetries:  maxRetries,
		backoffBase: backoffBase,
		maxTokens:   maxTokens,
		logger:      logger,
	}, nil
}

// Classify sends the prompt to Gemini and returns the textual response.
// Failed calls are retried up to the configured attempt count with
// exponentially increasing delay between attempts.
func (g *Generator) Classify(ctx context.Context, prompt string) (string, error) {
	if g == nil || g.models == nil {
		return "", errors.New("gemini generator is not initialized")
	}

	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", errors.New("prompt must not be empty")
	}

	config := &genai.GenerateContentConfig{
		MaxOutputTokens: g.maxTokens,
	}

	var lastErr error
	for attempt := 0; attempt < g.maxRetries; attempt++ {
		resp, err := g.models.GenerateContent(ctx, g.model, genai.Text(prompt), config)
		if err == nil {
			output := collectText(resp)
			if output == "" {
				return "", errors.New("gemini api returned empty response")
			}
			return output, nil
		}

		lastErr = err
		g.logger.Warn("gemini call failed",
			zap.Int("attempt", attempt+1),
			zap.Int("max_retries", g.maxRetries),
			zap.Error(err),
		)

		if ctx.Err() != nil {
			return "", ctx.Err()
		}

		if attempt < g.maxRetries-1 {
			delay := time.Duration(math.Pow(g.backoffBase, float64(attempt)) * float64(time.Second))
			g.logger.Debug("retrying gemini call", zap.Duration("delay", delay))
			sleep(delay)
		}
	}

	return "", fmt.Errorf("gemini retries exhausted after %d attempts: %w", g.maxRetries, lastErr)
}

func (g *Generator) Model() string {
	if g == nil {
		return ""
	}
	return g.model
}

func collectText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}

	var builder strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part == nil {
				continue
			}
			text := strings.TrimSpace(part.Text)
			if text == "" {
				continue
			}
			if builder.Len() > 0 {
				builder.WriteString("\n")
			}
			builder.WriteString(text)
		}
	}

	return strings.TrimSpace(builder.String())
}
