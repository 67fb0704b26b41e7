package ai

import (
	"context"
	"fmt"

	"github.com/example/psychly/internal/config"
	"github.com/example/psychly/internal/logger"
	"github.com/example/psychly/pkg/models"
)

// New builds the generator selected by cfg.GeneratorProvider. Model backed generators are
// wrapped so that failures fall back to the offline generator, and a provider that cannot be
// configured (missing API key) is replaced by the offline generator.
func New(ctx context.Context, cfg *config.Config, categories map[models.ContentType][]string, log *logger.Logger) (Generator, error) {
	fallback := NewFallback(categories)

	var completer Completer
	switch cfg.GeneratorProvider {
	case "gemini":
		gemini, err := NewGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, cfg.GeneratorTimeout)
		if err != nil {
			log.Warn("Gemini unavailable, using offline content generator", "error", err)
			return fallback, nil
		}
		completer = gemini
	case "openai":
		chatgpt, err := NewChatGPT(cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.GeneratorTimeout)
		if err != nil {
			log.Warn("OpenAI unavailable, using offline content generator", "error", err)
			return fallback, nil
		}
		completer = chatgpt
	case "fallback":
		log.Info("using offline content generator")
		return fallback, nil
	default:
		return nil, fmt.Errorf("unknown generator provider %q", cfg.GeneratorProvider)
	}

	log.Info("content generator ready", "provider", cfg.GeneratorProvider)
	return WithFallback(NewLLM(completer, categories), fallback, log), nil
}
