package session

import (
	"context"
	"testing"
	"time"

	"github.com/SAP-F-2025/screening-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	session := &models.ScreeningSession{
		ID:        "abc",
		StartedAt: time.Now().UTC(),
		Status:    models.SessionOpen,
	}
	session.RecordScore(models.SectionVocabulary, models.NewQuizScore(3, 5))

	require.NoError(t, store.Save(ctx, session))

	got, err := store.Get(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, "abc", got.ID)
	assert.InDelta(t, 0.6, got.Scores[models.SectionVocabulary].Value, 1e-9)

	// Reads return copies: mutating the result does not affect the store.
	got.Status = models.SessionTimeUp
	again, err := store.Get(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, models.SessionOpen, again.Status)

	require.NoError(t, store.Delete(ctx, "abc"))
	_, err = store.Get(ctx, "abc")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_GetMissing(t *testing.T) {
	store := NewMemoryStore()
	_, err := store.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}
