package memstore_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SHXZ7/autofloww/internal/history"
	"github.com/SHXZ7/autofloww/internal/history/memstore"
)

func TestStore_SaveAndList(t *testing.T) {
	s := memstore.New()
	ctx := context.Background()

	require.NoError(t, s.SaveExecution(ctx, history.ExecutionRecord{RunID: "r1", UserID: "u1", Status: history.StatusSucceeded}))
	require.NoError(t, s.SaveExecution(ctx, history.ExecutionRecord{RunID: "r2", UserID: "u1", Status: history.StatusFailed}))

	records := s.Records()
	require.Len(t, records, 2)
	assert.Equal(t, "r1", records[0].RunID)
	assert.Equal(t, "r2", records[1].RunID)
}

func TestStore_IncrementExecutionCount(t *testing.T) {
	s := memstore.New()
	ctx := context.Background()

	require.NoError(t, s.IncrementExecutionCount(ctx, "u1"))
	require.NoError(t, s.IncrementExecutionCount(ctx, "u1"))
	require.NoError(t, s.IncrementExecutionCount(ctx, "u2"))

	assert.Equal(t, 2, s.ExecutionCount("u1"))
	assert.Equal(t, 1, s.ExecutionCount("u2"))
	assert.Equal(t, 0, s.ExecutionCount("ghost"))
}

func TestDeriveStatus(t *testing.T) {
	assert.Equal(t, history.StatusSucceeded, history.DeriveStatus(map[string]string{"a": "ok"}))
	assert.Equal(t, history.StatusFailed, history.DeriveStatus(map[string]string{"a": "ok", "b": "Error: boom"}))
	assert.Equal(t, history.StatusFailed, history.DeriveStatus(map[string]string{"a": "Failed: timeout"}))
}
