package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/common-creation/tokencounter/internal/models"
	"github.com/common-creation/tokencounter/internal/widget"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "state.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestLoadMissingSlot(t *testing.T) {
	s := openTemp(t)

	state, ok, err := s.Load(context.Background(), "nope")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, state)
}

func TestSaveAndLoad(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, "a", widget.FormState{Prompt: "p", Response: "r", Model: models.GPT4o}))
	require.NoError(t, s.Save(ctx, "a", widget.FormState{Prompt: "p2", Response: "", Model: models.GPT4oMini}))
	require.NoError(t, s.Save(ctx, "b", widget.FormState{Prompt: "other", Model: models.GPT4Dot1Mini}))

	state, ok, err := s.Load(ctx, "a")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "p2", *state.Prompt)
	assert.Equal(t, "", *state.Response)
	assert.Equal(t, models.GPT4oMini, *state.Model)

	state, ok, err = s.Load(ctx, "b")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "other", *state.Prompt)
}

func TestDelete(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, "a", widget.FormState{Prompt: "p", Model: models.GPT4o}))
	require.NoError(t, s.Delete(ctx, "a"))
	require.NoError(t, s.Delete(ctx, "a"))

	_, ok, err := s.Load(ctx, "a")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestReopenKeepsState(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")
	ctx := context.Background()

	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Save(ctx, "slot", widget.FormState{Prompt: "kept", Model: models.GPT4o}))
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()

	state, ok, err := s.Load(ctx, "slot")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "kept", *state.Prompt)
}

func TestInMemory(t *testing.T) {
	s, err := Open(":memory:")
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Save(context.Background(), "m", widget.FormState{Model: models.GPT4o}))
	_, ok, err := s.Load(context.Background(), "m")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestOpenRejectsCorruptSchemaVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")

	s, err := Open(path)
	require.NoError(t, err)
	_, err = s.db.Exec(`UPDATE settings SET value='garbage' WHERE key='schema_version'`)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	_, err = Open(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid schema version")
}
