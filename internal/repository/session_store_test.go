package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Basel6/Private-Coach-Web-App/internal/models"
	appErrors "github.com/Basel6/Private-Coach-Web-App/pkg/errors"
)

func testSession(token string, expiresAt time.Time) *models.SuggestionSession {
	return &models.SuggestionSession{
		Token:           token,
		ClientID:        42,
		DaysFlexibility: 7,
		NumSessions:     2,
		Suggestions: []models.Suggestion{
			{SlotID: 1, CoachID: 1, DayOfWeek: 0, StartHour: 10},
		},
		SuggestedHistory: []int64{1},
		CreatedAt:        expiresAt.Add(-time.Hour),
		ExpiresAt:        expiresAt,
		Active:           true,
	}
}

func TestMemorySessionStoreLifecycle(t *testing.T) {
	store := NewMemorySessionStore()
	ctx := context.Background()

	session := testSession("tok-1", time.Now().Add(time.Hour))
	require.NoError(t, store.Create(ctx, session))

	loaded, err := store.Get(ctx, "tok-1")
	require.NoError(t, err)
	assert.Equal(t, int64(42), loaded.ClientID)
	assert.True(t, loaded.Active)

	loaded.SuggestedHistory = append(loaded.SuggestedHistory, 2)
	require.NoError(t, store.Update(ctx, loaded))

	reloaded, err := store.Get(ctx, "tok-1")
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, reloaded.SuggestedHistory)

	require.NoError(t, store.Deactivate(ctx, "tok-1"))
	final, err := store.Get(ctx, "tok-1")
	require.NoError(t, err)
	assert.False(t, final.Active)
}

func TestMemorySessionStoreUnknownToken(t *testing.T) {
	store := NewMemorySessionStore()
	ctx := context.Background()

	_, err := store.Get(ctx, "missing")
	assert.ErrorIs(t, err, appErrors.ErrSessionNotFound)

	assert.ErrorIs(t, store.Update(ctx, testSession("missing", time.Now().Add(time.Hour))), appErrors.ErrSessionNotFound)
	assert.ErrorIs(t, store.Deactivate(ctx, "missing"), appErrors.ErrSessionNotFound)
}

func TestMemorySessionStoreExpiry(t *testing.T) {
	store := NewMemorySessionStore()
	ctx := context.Background()

	session := testSession("tok-2", time.Now().Add(time.Hour))
	require.NoError(t, store.Create(ctx, session))

	store.now = func() time.Time { return time.Now().Add(2 * time.Hour) }

	_, err := store.Get(ctx, "tok-2")
	assert.ErrorIs(t, err, appErrors.ErrSessionExpired)

	// Expired entries are evicted on access.
	store.now = time.Now
	_, err = store.Get(ctx, "tok-2")
	assert.ErrorIs(t, err, appErrors.ErrSessionNotFound)
}

func TestMemorySessionStoreGetReturnsCopy(t *testing.T) {
	store := NewMemorySessionStore()
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, testSession("tok-3", time.Now().Add(time.Hour))))

	first, err := store.Get(ctx, "tok-3")
	require.NoError(t, err)
	first.Active = false

	second, err := store.Get(ctx, "tok-3")
	require.NoError(t, err)
	assert.True(t, second.Active)
}
