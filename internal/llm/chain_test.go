// ABOUTME: Tests for model resolution and the fallback call loop
// ABOUTME: Covers overrides, chain ordering, dedup, and retry exhaustion

package llm

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hmdre39/mission-control-dashboard/internal/config"
)

func testChain(t *testing.T) *Chain {
	t.Helper()
	return NewChain(config.LLMConfig{
		Primary:   "claude-opus-4-1",
		Fallbacks: []string{"claude-sonnet-4-5", "claude-haiku-4-5"},
		AgentOverrides: map[string]string{
			"content": "claude-haiku-4-5",
		},
		MaxRetries: 2,
		RetryDelay: time.Millisecond,
	}, slog.Default())
}

func TestModelFor(t *testing.T) {
	c := testChain(t)

	assert.Equal(t, "claude-opus-4-1", c.ModelFor(AgentGeneral))
	assert.Equal(t, "claude-opus-4-1", c.ModelFor(AgentCoding))
	assert.Equal(t, "claude-haiku-4-5", c.ModelFor(AgentContent))
}

func TestFallbackChain_DeduplicatesPrimary(t *testing.T) {
	c := testChain(t)

	// The content override equals one of the fallbacks, so the chain
	// must not list it twice.
	chain := c.FallbackChain(AgentContent)
	assert.Equal(t, []string{"claude-haiku-4-5", "claude-sonnet-4-5"}, chain)

	chain = c.FallbackChain(AgentGeneral)
	assert.Equal(t, []string{"claude-opus-4-1", "claude-sonnet-4-5", "claude-haiku-4-5"}, chain)
}

func TestNextFallback(t *testing.T) {
	c := testChain(t)

	assert.Equal(t, "claude-sonnet-4-5", c.NextFallback("claude-opus-4-1", AgentGeneral))
	assert.Equal(t, "claude-haiku-4-5", c.NextFallback("claude-sonnet-4-5", AgentGeneral))
	assert.Equal(t, "", c.NextFallback("claude-haiku-4-5", AgentGeneral))
	assert.Equal(t, "", c.NextFallback("unknown-model", AgentGeneral))
}

func TestCall_SucceedsOnFallback(t *testing.T) {
	c := testChain(t)

	var attempts []string
	err := c.Call(context.Background(), AgentGeneral, func(_ context.Context, model string) error {
		attempts = append(attempts, model)
		if model == "claude-sonnet-4-5" {
			return nil
		}
		return errors.New("overloaded")
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"claude-opus-4-1", "claude-sonnet-4-5"}, attempts)
}

func TestCall_AllModelsFail(t *testing.T) {
	c := testChain(t)

	calls := 0
	err := c.Call(context.Background(), AgentGeneral, func(_ context.Context, _ string) error {
		calls++
		return errors.New("overloaded")
	})
	require.Error(t, err)
	assert.Equal(t, 3, calls)
	assert.Contains(t, err.Error(), "all 3 models failed")
}

func TestCall_ContextCancelledDuringDelay(t *testing.T) {
	c := NewChain(config.LLMConfig{
		Primary:    "claude-opus-4-1",
		Fallbacks:  []string{"claude-sonnet-4-5"},
		RetryDelay: time.Minute,
	}, slog.Default())

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	err := c.Call(ctx, AgentGeneral, func(_ context.Context, _ string) error {
		return errors.New("overloaded")
	})
	require.ErrorIs(t, err, context.Canceled)
}

func TestSnapshot(t *testing.T) {
	c := testChain(t)

	snap := c.Snapshot()
	assert.Equal(t, "claude-opus-4-1", snap.Primary)
	assert.Equal(t, []string{"claude-sonnet-4-5", "claude-haiku-4-5"}, snap.Fallbacks)
	assert.Equal(t, "claude-haiku-4-5", snap.AgentOverrides["content"])
	assert.Equal(t, 2, snap.MaxRetries)
	assert.Equal(t, int64(1), snap.RetryDelayMs)
}
