// ABOUTME: Model selection and fallback chain for agent LLM calls
// ABOUTME: Resolves per-agent-type overrides and walks fallbacks with retry delay

package llm

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hmdre39/mission-control-dashboard/internal/config"
)

// AgentType selects which model override applies to a call.
type AgentType string

const (
	AgentCoding   AgentType = "coding"
	AgentStrategy AgentType = "strategy"
	AgentContent  AgentType = "content"
	AgentGeneral  AgentType = "general"
)

// Chain resolves models for agent calls. The primary model can be
// overridden per agent type; failed calls walk the fallback list in
// order with a fixed delay between attempts.
type Chain struct {
	cfg    config.LLMConfig
	logger *slog.Logger
}

// NewChain builds a Chain from the llm configuration section.
func NewChain(cfg config.LLMConfig, logger *slog.Logger) *Chain {
	return &Chain{
		cfg:    cfg,
		logger: logger.With("component", "llm"),
	}
}

// ModelFor returns the model for the given agent type: the override if
// one is configured, otherwise the primary.
func (c *Chain) ModelFor(agentType AgentType) string {
	if m, ok := c.cfg.AgentOverrides[string(agentType)]; ok && m != "" {
		return m
	}
	return c.cfg.Primary
}

// FallbackChain returns the full model chain for an agent type:
// the resolved model first, then every configured fallback that is
// not already that model.
func (c *Chain) FallbackChain(agentType AgentType) []string {
	primary := c.ModelFor(agentType)
	chain := []string{primary}
	for _, f := range c.cfg.Fallbacks {
		if f != primary {
			chain = append(chain, f)
		}
	}
	return chain
}

// NextFallback returns the model after currentModel in the chain for
// the given agent type, or "" when currentModel is last or unknown.
func (c *Chain) NextFallback(currentModel string, agentType AgentType) string {
	chain := c.FallbackChain(agentType)
	for i, m := range chain {
		if m == currentModel && i < len(chain)-1 {
			return chain[i+1]
		}
	}
	return ""
}

// CallFunc performs a single model invocation.
type CallFunc func(ctx context.Context, model string) error

// Call invokes fn with each model in the chain until one succeeds,
// waiting the configured retry delay between attempts. It returns the
// last error when every model fails, or the context error if the
// delay is interrupted.
func (c *Chain) Call(ctx context.Context, agentType AgentType, fn CallFunc) error {
	chain := c.FallbackChain(agentType)

	var lastErr error
	for i, model := range chain {
		if err := fn(ctx, model); err != nil {
			lastErr = err
			c.logger.Warn("model call failed",
				"model", model,
				"agent_type", string(agentType),
				"attempt", i+1,
				"error", err)
			if i < len(chain)-1 {
				select {
				case <-time.After(c.cfg.RetryDelay):
				case <-ctx.Done():
					return ctx.Err()
				}
			}
			continue
		}
		return nil
	}

	return fmt.Errorf("all %d models failed: %w", len(chain), lastErr)
}

// Snapshot is the read-only view of the chain configuration exposed
// over the API.
type Snapshot struct {
	Primary        string            `json:"primary"`
	Fallbacks      []string          `json:"fallbacks"`
	AgentOverrides map[string]string `json:"agentOverrides"`
	MaxRetries     int               `json:"maxRetries"`
	RetryDelayMs   int64             `json:"retryDelayMs"`
}

// Snapshot returns the current configuration for diagnostics.
func (c *Chain) Snapshot() Snapshot {
	overrides := make(map[string]string, len(c.cfg.AgentOverrides))
	for k, v := range c.cfg.AgentOverrides {
		overrides[k] = v
	}
	return Snapshot{
		Primary:        c.cfg.Primary,
		Fallbacks:      append([]string(nil), c.cfg.Fallbacks...),
		AgentOverrides: overrides,
		MaxRetries:     c.cfg.MaxRetries,
		RetryDelayMs:   c.cfg.RetryDelay.Milliseconds(),
	}
}
