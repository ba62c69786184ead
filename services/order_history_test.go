package services

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/restaurant-ordering/models"
)

func TestGetHistoryActiveSession(t *testing.T) {
	w := newWorld(t)
	s := w.openSession()

	first, err := w.submission.Submit(ctx(), w.burgerOrder(s.Token, 1, w.small.ID))
	require.NoError(t, err)
	w.clock.Advance(5 * time.Minute)
	second, err := w.submission.Submit(ctx(), w.burgerOrder(s.Token, 2, w.large.ID, w.ketchup.ID))
	require.NoError(t, err)

	h, err := w.history.GetHistory(ctx(), s.Token)
	require.NoError(t, err)
	assert.Equal(t, s.Token, h.Token)
	assert.Equal(t, w.table.ID, h.TableID)
	assert.Equal(t, models.SessionStateActive, h.SessionState)
	assert.Equal(t, 2, h.TotalOrders)
	require.Len(t, h.Orders, 2)
	assert.Equal(t, first.ID, h.Orders[0].ID)
	assert.Equal(t, second.ID, h.Orders[1].ID)
	require.Len(t, h.Orders[1].Lines, 1)
	assert.Len(t, h.Orders[1].Lines[0].Options, 2)
}

func TestGetHistoryFinalizedSessionIsEmpty(t *testing.T) {
	w := newWorld(t)
	s := w.openSession()
	_, err := w.submission.Submit(ctx(), w.burgerOrder(s.Token, 1, w.small.ID))
	require.NoError(t, err)
	_, err = w.registry.CloseByToken(ctx(), s.Token)
	require.NoError(t, err)

	h, err := w.history.GetHistory(ctx(), s.Token)
	require.NoError(t, err)
	assert.Equal(t, models.SessionStateFinalized, h.SessionState)
	assert.Equal(t, 0, h.TotalOrders)
	assert.NotNil(t, h.Orders)
	assert.Empty(t, h.Orders)
	assert.Equal(t, int64(1), w.countOrders())
}

func TestGetHistoryUnknownToken(t *testing.T) {
	w := newWorld(t)

	_, err := w.history.GetHistory(ctx(), "unknown")
	var nf *NotFoundError
	assert.True(t, errors.As(err, &nf))
}

func TestGetHistoryOtherSessionsHidden(t *testing.T) {
	w := newWorld(t)
	other := w.seed.Table(w.location.ID, "T002")
	mine := w.openSession()
	theirs, err := w.registry.CreateSession(ctx(), other.ID, w.user.ID, 0)
	require.NoError(t, err)

	_, err = w.submission.Submit(ctx(), w.burgerOrder(theirs.Token, 1, w.small.ID))
	require.NoError(t, err)

	h, err := w.history.GetHistory(ctx(), mine.Token)
	require.NoError(t, err)
	assert.Equal(t, 0, h.TotalOrders)
}
