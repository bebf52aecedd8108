package artifact

import (
	"testing"

	"github.com/a2aproject/a2a-go/a2a"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func textArtifact(id, text string) *a2a.Artifact {
	return &a2a.Artifact{
		ID:    a2a.ArtifactID(id),
		Parts: []a2a.Part{a2a.TextPart{Text: text}},
	}
}

func TestInMemoryStore_SaveAndList(t *testing.T) {
	store := NewInMemoryStore()
	require.NoError(t, store.Save("ctx-1", textArtifact("a", "first")))
	require.NoError(t, store.Save("ctx-1", textArtifact("b", "second"), textArtifact("c", "third")))

	got, err := store.List("ctx-1")
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, a2a.ArtifactID("a"), got[0].ID)
	assert.Equal(t, a2a.ArtifactID("b"), got[1].ID)
	assert.Equal(t, a2a.ArtifactID("c"), got[2].ID)
}

func TestInMemoryStore_ListUnknownContext(t *testing.T) {
	store := NewInMemoryStore()
	got, err := store.List("missing")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestInMemoryStore_Get(t *testing.T) {
	store := NewInMemoryStore()
	require.NoError(t, store.Save("ctx-1", textArtifact("a", "first")))

	got, err := store.Get("ctx-1", "a")
	require.NoError(t, err)
	assert.Equal(t, a2a.ArtifactID("a"), got.ID)

	_, err = store.Get("ctx-1", "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestInMemoryStore_Delete(t *testing.T) {
	store := NewInMemoryStore()
	require.NoError(t, store.Save("ctx-1", textArtifact("a", "first"), textArtifact("b", "second")))

	require.NoError(t, store.Delete("ctx-1", "a"))
	got, err := store.List("ctx-1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, a2a.ArtifactID("b"), got[0].ID)

	assert.ErrorIs(t, store.Delete("ctx-1", "a"), ErrNotFound)
}

func TestInMemoryStore_ListIsSnapshot(t *testing.T) {
	store := NewInMemoryStore()
	require.NoError(t, store.Save("ctx-1", textArtifact("a", "first"), textArtifact("b", "second")))

	got, err := store.List("ctx-1")
	require.NoError(t, err)
	got[0], got[1] = got[1], got[0]

	again, err := store.List("ctx-1")
	require.NoError(t, err)
	assert.Equal(t, a2a.ArtifactID("a"), again[0].ID)
}
