package services

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/restaurant-ordering/models"
)

func TestCreateSessionDefaults(t *testing.T) {
	w := newWorld(t)

	s, err := w.registry.CreateSession(ctx(), w.table.ID, w.user.ID, 0)
	require.NoError(t, err)

	assert.Equal(t, models.SessionStateActive, s.State)
	assert.Equal(t, models.DefaultSessionTTLMinutes, s.TTLMinutes)
	assert.Equal(t, w.table.ID, s.TableID)
	assert.Equal(t, w.user.ID, s.CreatorUserID)
	assert.Len(t, s.Token, 43)
	assert.True(t, s.StartedAt.Equal(w.clock.Now()))
	assert.Nil(t, s.EndedAt)
	assert.Len(t, w.bus.Events(EventSessionOpened), 1)
}

func TestCreateSessionIssuesDistinctTokens(t *testing.T) {
	w := newWorld(t)
	other := w.seed.Table(w.location.ID, "T002")

	a, err := w.registry.CreateSession(ctx(), w.table.ID, w.user.ID, 30)
	require.NoError(t, err)
	b, err := w.registry.CreateSession(ctx(), other.ID, w.user.ID, 30)
	require.NoError(t, err)

	assert.NotEqual(t, a.Token, b.Token)
	assert.Equal(t, 30, a.TTLMinutes)
}

func TestCreateSessionNotFound(t *testing.T) {
	w := newWorld(t)

	_, err := w.registry.CreateSession(ctx(), 9999, w.user.ID, 0)
	var nf *NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "table", nf.Entity)

	_, err = w.registry.CreateSession(ctx(), w.table.ID, 9999, 0)
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "user", nf.Entity)
}

func TestCreateSessionTTLValidation(t *testing.T) {
	w := newWorld(t)

	for _, ttl := range []int{-5, 24*60 + 1} {
		_, err := w.registry.CreateSession(ctx(), w.table.ID, w.user.ID, ttl)
		var ve *ValidationError
		assert.True(t, errors.As(err, &ve), "ttl %d", ttl)
	}

	s, err := w.registry.CreateSession(ctx(), w.table.ID, w.user.ID, 24*60)
	require.NoError(t, err)
	assert.Equal(t, 24*60, s.TTLMinutes)
}

func TestCreateSessionRejectsSecondActive(t *testing.T) {
	w := newWorld(t)
	first := w.openSession()

	_, err := w.registry.CreateSession(ctx(), w.table.ID, w.user.ID, 0)
	var se *StateError
	require.True(t, errors.As(err, &se))
	assert.True(t, errors.Is(err, ErrTableHasActiveSession))
	assert.Equal(t, first.ID, se.SessionID)

	active, err := w.registry.ListActive(ctx(), w.table.ID)
	require.NoError(t, err)
	assert.Len(t, active, 1)
}

func TestCreateSessionFinalizesStaleSession(t *testing.T) {
	w := newWorld(t)
	stale := w.seed.Session(w.table.ID, w.user.ID, models.SessionStateActive, w.clock.Now().Add(-3*time.Hour), 120)

	fresh, err := w.registry.CreateSession(ctx(), w.table.ID, w.user.ID, 0)
	require.NoError(t, err)
	assert.NotEqual(t, stale.ID, fresh.ID)

	var reloaded models.TableSession
	require.NoError(t, w.db.First(&reloaded, stale.ID).Error)
	assert.Equal(t, models.SessionStateFinalized, reloaded.State)
	require.NotNil(t, reloaded.ClosedReason)
	assert.Equal(t, models.CloseReasonExpired, *reloaded.ClosedReason)
	assert.Len(t, w.bus.Events(EventSessionsExpired), 1)
}

func TestOpenOrJoin(t *testing.T) {
	w := newWorld(t)

	first, joined, err := w.registry.OpenOrJoin(ctx(), w.table.ID, w.user.ID, 0)
	require.NoError(t, err)
	assert.False(t, joined)

	second, joined, err := w.registry.OpenOrJoin(ctx(), w.table.ID, w.user.ID, 0)
	require.NoError(t, err)
	assert.True(t, joined)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.Token, second.Token)
	assert.Len(t, w.bus.Events(EventSessionOpened), 1)
}

func TestOpenOrJoinAfterExpiryOpensNewSession(t *testing.T) {
	w := newWorld(t)
	first := w.openSession()

	w.clock.Advance(121 * time.Minute)
	second, joined, err := w.registry.OpenOrJoin(ctx(), w.table.ID, w.user.ID, 0)
	require.NoError(t, err)
	assert.False(t, joined)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestGetByToken(t *testing.T) {
	w := newWorld(t)
	s := w.openSession()

	got, err := w.registry.GetByToken(ctx(), s.Token)
	require.NoError(t, err)
	assert.Equal(t, s.ID, got.ID)

	for _, token := range []string{"", "does-not-exist"} {
		_, err = w.registry.GetByToken(ctx(), token)
		var nf *NotFoundError
		assert.True(t, errors.As(err, &nf), "token %q", token)
	}
}

func TestCloseByToken(t *testing.T) {
	w := newWorld(t)
	s := w.openSession()
	w.clock.Advance(10 * time.Minute)

	closed, err := w.registry.CloseByToken(ctx(), s.Token)
	require.NoError(t, err)
	assert.Equal(t, models.SessionStateFinalized, closed.State)
	require.NotNil(t, closed.EndedAt)
	assert.True(t, closed.EndedAt.Equal(w.clock.Now()))
	assert.Equal(t, models.CloseReasonClosed, *closed.ClosedReason)
	assert.Len(t, w.bus.Events(EventSessionClosed), 1)

	_, err = w.registry.CloseByToken(ctx(), s.Token)
	assert.True(t, errors.Is(err, ErrSessionAlreadyFinalized))

	_, err = w.registry.CloseByToken(ctx(), "nope")
	var nf *NotFoundError
	assert.True(t, errors.As(err, &nf))
}

func TestCloseThenReopenTable(t *testing.T) {
	w := newWorld(t)
	first := w.openSession()
	_, err := w.registry.CloseByToken(ctx(), first.Token)
	require.NoError(t, err)

	second := w.openSession()
	assert.NotEqual(t, first.ID, second.ID)
}

func TestValidateActive(t *testing.T) {
	w := newWorld(t)
	s := w.openSession()

	got, err := w.registry.ValidateActive(ctx(), s.Token)
	require.NoError(t, err)
	assert.Equal(t, s.ID, got.ID)

	// Past the TTL but not yet swept: rejected, row untouched.
	w.clock.Advance(121 * time.Minute)
	_, err = w.registry.ValidateActive(ctx(), s.Token)
	assert.True(t, errors.Is(err, ErrSessionNotActive))

	var reloaded models.TableSession
	require.NoError(t, w.db.First(&reloaded, s.ID).Error)
	assert.Equal(t, models.SessionStateActive, reloaded.State)
}

func TestValidateActiveRejectsFinalized(t *testing.T) {
	w := newWorld(t)
	s := w.openSession()
	_, err := w.registry.CloseByToken(ctx(), s.Token)
	require.NoError(t, err)

	_, err = w.registry.ValidateActive(ctx(), s.Token)
	var se *StateError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, models.SessionStateFinalized, se.State)
	assert.True(t, errors.Is(err, ErrSessionNotActive))
}
