package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeed_Defaults(t *testing.T) {
	eachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()

		written, err := Seed(ctx, s, DefaultFixtures())
		require.NoError(t, err)
		assert.Greater(t, written, 0)

		statuses, err := s.ListSystemStatus(ctx)
		require.NoError(t, err)
		assert.Len(t, statuses, 3)

		agents, err := s.ListAgents(ctx)
		require.NoError(t, err)
		require.Len(t, agents, 2)

		prime, err := s.GetAgentByAgentID(ctx, "agent-001")
		require.NoError(t, err)
		require.NotNil(t, prime)
		assert.Equal(t, "Claude Prime", prime.Name)

		tasks, err := s.ListTasks(ctx, TaskFilter{})
		require.NoError(t, err)
		assert.Len(t, tasks, 2)

		clients, err := s.ListClients(ctx, nil)
		require.NoError(t, err)
		assert.Len(t, clients, 2)
	})
}

func TestSeed_Idempotent(t *testing.T) {
	eachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()

		_, err := Seed(ctx, s, DefaultFixtures())
		require.NoError(t, err)
		_, err = Seed(ctx, s, DefaultFixtures())
		require.NoError(t, err)

		// Reseeding must not duplicate anything.
		agents, err := s.ListAgents(ctx)
		require.NoError(t, err)
		assert.Len(t, agents, 2)

		statuses, err := s.ListSystemStatus(ctx)
		require.NoError(t, err)
		assert.Len(t, statuses, 3)

		tasks, err := s.ListTasks(ctx, TaskFilter{})
		require.NoError(t, err)
		assert.Len(t, tasks, 2)

		products, err := s.ListEcosystemProducts(ctx)
		require.NoError(t, err)
		assert.Len(t, products, 2)
	})
}

func TestLoadFixtures(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fixtures.toml")
	data := `
[[system_status]]
name = "Test Service"
status = "up"

[[tasks]]
title = "From a file"
category = "Ops"
status = "pending"
priority = "low"
effort = "1h"
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	f, err := LoadFixtures(path)
	require.NoError(t, err)
	require.Len(t, f.SystemStatus, 1)
	assert.Equal(t, "Test Service", f.SystemStatus[0].Name)
	require.Len(t, f.Tasks, 1)
	assert.Equal(t, "From a file", f.Tasks[0].Title)
	assert.Equal(t, PriorityLow, f.Tasks[0].Priority)

	_, err = LoadFixtures(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}
