package story

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
	"google.golang.org/genai"

	"github.com/agentstation/datastory/pkg/constants"
	pkgerrors "github.com/agentstation/datastory/pkg/errors"
	"github.com/agentstation/datastory/pkg/logging"
)

// DefaultModel is the Gemini model used when none is configured.
const DefaultModel = "gemini-2.0-flash"

const systemPrompt = `You are a data journalist. Write a short, factual narrative (at most three short paragraphs, no headings, no bullet points) about the JSON facts you are given. Use only numbers present in the facts and round them sensibly. Sections are flights (US 2015 arrival delays), life (WHO life expectancy and human development index) and food (FAO food balance). Skip sections that are absent.`

// generateFunc sends one prompt and returns the model's text.
type generateFunc func(ctx context.Context, prompt string) (string, error)

// GeminiNarrator writes narratives with the Gemini API, retrying transient
// failures and optionally falling back to another narrator.
type GeminiNarrator struct {
	model    string
	generate generateFunc
	fallback Narrator
	logger   *zerolog.Logger
	retries  uint64
	backoff  func() backoff.BackOff
}

// GeminiOption configures a GeminiNarrator.
type GeminiOption func(*GeminiNarrator)

// WithFallback sets the narrator used when Gemini keeps failing.
func WithFallback(n Narrator) GeminiOption {
	return func(g *GeminiNarrator) {
		g.fallback = n
	}
}

// WithModel overrides DefaultModel.
func WithModel(model string) GeminiOption {
	return func(g *GeminiNarrator) {
		if model != "" {
			g.model = model
		}
	}
}

// WithNarratorLogger sets the logger.
func WithNarratorLogger(logger *zerolog.Logger) GeminiOption {
	return func(g *GeminiNarrator) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// NewGeminiNarrator creates a narrator backed by the Gemini developer API.
func NewGeminiNarrator(ctx context.Context, apiKey string, opts ...GeminiOption) (*GeminiNarrator, error) {
	if apiKey == "" {
		return nil, pkgerrors.NewAuthenticationError("gemini", "api_key", "GEMINI_API_KEY or GOOGLE_API_KEY is not set", pkgerrors.ErrAPIKeyRequired)
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		Backend: genai.BackendGeminiAPI,
		APIKey:  apiKey,
	})
	if err != nil {
		return nil, pkgerrors.NewConfigError("gemini", "failed to create client", err)
	}

	g := newGeminiNarrator(nil, opts...)
	g.generate = func(ctx context.Context, prompt string) (string, error) {
		resp, err := client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), &genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
			Temperature:       genai.Ptr[float32](0.4),
			MaxOutputTokens:   512,
		})
		if err != nil {
			return "", classify(err)
		}
		return resp.Text(), nil
	}
	return g, nil
}

func newGeminiNarrator(generate generateFunc, opts ...GeminiOption) *GeminiNarrator {
	g := &GeminiNarrator{
		model:    DefaultModel,
		generate: generate,
		logger:   logging.Default(),
		retries:  constants.MaxRetries - 1,
		backoff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = constants.RetryBackoff
			b.MaxInterval = constants.MaxRetryBackoff
			b.MaxElapsedTime = constants.NarrativeTimeout
			return b
		},
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Name implements Narrator.
func (g *GeminiNarrator) Name() string {
	return "gemini:" + g.model
}

// Narrate implements Narrator.
func (g *GeminiNarrator) Narrate(ctx context.Context, facts *Facts) (string, error) {
	payload, err := json.MarshalIndent(facts, "", "  ")
	if err != nil {
		return "", err
	}
	prompt := "Facts:\n" + string(payload)

	var text string
	op := func() error {
		out, err := g.generate(ctx, prompt)
		if err != nil {
			if !retryable(err) {
				return backoff.Permanent(err)
			}
			return err
		}
		text = strings.TrimSpace(out)
		if text == "" {
			return pkgerrors.NewAPIError("gemini", 0, "empty response")
		}
		return nil
	}
	notify := func(err error, wait time.Duration) {
		g.logger.Warn().Err(err).Dur("retry_in", wait).Str("model", g.model).Msg("Narrative generation failed, retrying")
	}

	b := backoff.WithContext(backoff.WithMaxRetries(g.backoff(), g.retries), ctx)
	if err := backoff.RetryNotify(op, b, notify); err != nil {
		if g.fallback == nil {
			return "", err
		}
		g.logger.Warn().Err(err).Str("fallback", g.fallback.Name()).Msg("Narrative generation failed, using fallback")
		return g.fallback.Narrate(ctx, facts)
	}
	return text, nil
}

// classify maps genai API errors onto the shared error types.
func classify(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return pkgerrors.WrapAPI("gemini", apiErr.Code, err)
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) {
		return pkgerrors.WrapAPI("gemini", apiErrPtr.Code, err)
	}
	return pkgerrors.WrapAPI("gemini", 0, err)
}

func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	return pkgerrors.IsRateLimited(err) || pkgerrors.IsServiceUnavailable(err)
}
