package ai

import (
	"github.com/bhardwajRahul/AutoHedge/internal/adapters/config"
	"github.com/bhardwajRahul/AutoHedge/pkg/errors"
)

// NewCapability builds the reasoning capability from configuration. Only
// OpenAI-compatible providers are supported; pointing BaseURL at a local
// or proxy endpoint covers the rest.
func NewCapability(cfg config.AIConfig) (Capability, error) {
	switch cfg.Provider {
	case "openai", "openai-compatible":
		var limiter RateLimiter = NewNoOpLimiter()
		if cfg.ReqPerMinute > 0 {
			limiter = NewTokenBucketLimiter(cfg.Provider, cfg.ReqPerMinute, 0)
		}
		return NewOpenAIClient(cfg.BaseURL, cfg.APIKey, cfg.Model, cfg.RequestTimeout, limiter), nil
	default:
		return nil, errors.Wrapf(errors.ErrInvalidInput, "unknown AI provider: %s", cfg.Provider)
	}
}
