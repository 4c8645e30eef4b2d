package ai

import (
	"AtendeBot/entity"
	"AtendeBot/internal/config"
	"AtendeBot/internal/lib/sl"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sashabaranov/go-openai"
)

// Apology is returned by Complete when every configured backend failed.
// Generation failures must never surface as errors mid-conversation.
const Apology = "Desculpe, estou com dificuldades para processar sua pergunta agora. Pode tentar novamente?"

// emptyCompletion is used when a backend answers with no content.
const emptyCompletion = "Desculpe, não consegui gerar uma resposta."

// SettingSource reads runtime-mutable configuration. An admin-edited API key
// takes effect without a restart because keys are resolved per call.
type SettingSource interface {
	GetSetting(ctx context.Context, key string) (string, error)
}

type backend struct {
	baseURL string
	model   string
	envKey  string
	setting string
}

// Gateway is the boundary to the text-generation and embedding backends.
// The primary and fallback backends are both OpenAI-compatible endpoints.
type Gateway struct {
	primary  backend
	fallback backend
	embModel string
	settings SettingSource
	timeout  time.Duration
	log      *slog.Logger
}

// NewGateway builds the gateway from static config plus the runtime setting
// store. settings may be nil; env keys are then the only credential source.
func NewGateway(conf *config.Config, settings SettingSource, log *slog.Logger) *Gateway {
	timeout := time.Duration(conf.AI.TimeoutSec) * time.Second
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	return &Gateway{
		primary: backend{
			baseURL: conf.AI.GeminiBaseURL,
			model:   conf.AI.GeminiModel,
			envKey:  conf.AI.GeminiApiKey,
			setting: entity.SettingGeminiAPIKey,
		},
		fallback: backend{
			baseURL: conf.AI.GroqBaseURL,
			model:   conf.AI.GroqModel,
			envKey:  conf.AI.GroqApiKey,
			setting: entity.SettingGroqAPIKey,
		},
		embModel: conf.AI.EmbeddingModel,
		settings: settings,
		timeout:  timeout,
		log:      log.With(sl.Module("ai.gateway")),
	}
}

// resolveKey prefers the admin-edited setting over the environment value.
func (g *Gateway) resolveKey(ctx context.Context, b backend) string {
	if g.settings != nil {
		if key, err := g.settings.GetSetting(ctx, b.setting); err == nil && key != "" {
			return key
		}
	}
	return b.envKey
}

func (g *Gateway) client(key string, b backend) *openai.Client {
	cfg := openai.DefaultConfig(key)
	if b.baseURL != "" {
		cfg.BaseURL = b.baseURL
	}
	return openai.NewClientWithConfig(cfg)
}

// Complete sends the prompt to the primary backend, falls back to the
// secondary when configured, and degrades to the fixed apology string on
// exhaustion. It never returns an error to the caller.
func (g *Gateway) Complete(ctx context.Context, prompt string) string {
	if key := g.resolveKey(ctx, g.primary); key != "" {
		text, err := g.chat(ctx, key, g.primary, prompt)
		if err == nil {
			return text
		}
		g.log.Error("primary generation failed, attempting fallback", sl.Err(err))
	} else {
		g.log.Warn("primary generation key not configured")
	}

	if key := g.resolveKey(ctx, g.fallback); key != "" {
		text, err := g.chat(ctx, key, g.fallback, prompt)
		if err == nil {
			g.log.Info("response delivered via fallback backend")
			return text
		}
		g.log.Error("fallback generation failed", sl.Err(err))
	}

	return Apology
}

func (g *Gateway) chat(ctx context.Context, key string, b backend, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	resp, err := g.client(key, b).CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: b.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion (%s): %w", b.model, err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return emptyCompletion, nil
	}
	return resp.Choices[0].Message.Content, nil
}

// Embed returns the embedding vector for a text. An unset credential is a
// degraded-capability state, not an error: the result is (nil, nil) so that
// search can skip retrieval while ingestion detects the absence distinctly.
// A hard backend failure is propagated.
func (g *Gateway) Embed(ctx context.Context, text string) ([]float64, error) {
	key := g.resolveKey(ctx, g.primary)
	if key == "" {
		g.log.Warn("embedding key not configured, skipping embedding generation")
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	resp, err := g.client(key, g.primary).CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: []string{text},
		Model: openai.EmbeddingModel(g.embModel),
	})
	if err != nil {
		return nil, fmt.Errorf("creating embedding: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("no embedding returned")
	}

	vec := make([]float64, len(resp.Data[0].Embedding))
	for i, v := range resp.Data[0].Embedding {
		vec[i] = float64(v)
	}
	return vec, nil
}
