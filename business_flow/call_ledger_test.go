package businessflow

import (
	"context"
	"testing"
	"time"

	"github.com/amirphl/sdr-power-queue/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeStats(t *testing.T) {
	t.Run("Empty", func(t *testing.T) {
		s := ComputeStats(nil)
		assert.Zero(t, s.Total)
		assert.Zero(t, s.ConversationRate)
		assert.Zero(t, s.ConversationRatePercent)
		require.Len(t, s.Breakdown, 4)
		for _, b := range s.Breakdown {
			assert.Zero(t, b.Percent)
		}
	})

	t.Run("Counts", func(t *testing.T) {
		outcomes := []models.CallOutcome{
			models.CallOutcomeConversation,
			models.CallOutcomeNoAnswer,
			models.CallOutcomeNoAnswer,
			models.CallOutcomeLeftVoicemail,
			models.CallOutcomeDoNotCall,
			models.CallOutcomeNoAnswer,
		}
		entries := make([]*models.CallLogEntry, 0, len(outcomes))
		for _, o := range outcomes {
			entries = append(entries, &models.CallLogEntry{Outcome: o})
		}

		s := ComputeStats(entries)
		assert.Equal(t, 6, s.Total)
		assert.Equal(t, 3, s.NoAnswer)
		assert.Equal(t, 1, s.LeftVoicemail)
		assert.Equal(t, 1, s.Conversation)
		assert.Equal(t, 1, s.DoNotCall)
		assert.InDelta(t, 1.0/6.0, s.ConversationRate, 1e-9)
		assert.Equal(t, 17, s.ConversationRatePercent)
		assert.Equal(t, models.CallOutcomeNoAnswer, s.Breakdown[0].Outcome)
		assert.Equal(t, 50.0, s.Breakdown[0].Percent)
		assert.Equal(t, 16.7, s.Breakdown[2].Percent)
	})
}

func TestCallLedgerLogOutcome(t *testing.T) {
	ctx := context.Background()

	t.Run("RecordsEntryWithClockTimestamp", func(t *testing.T) {
		s := newTestStack(t, false)
		c := s.seedContact(t, "op-1", "Ada", "Registrar", "America/New_York", 1024)

		res, err := s.ledger.LogOutcome(ctx, "op-1", c.ID, models.CallOutcomeConversation)
		require.NoError(t, err)
		assert.True(t, res.Entry.Timestamp.Equal(testNow))
		assert.Equal(t, c.ID, res.Entry.ContactID)
		assert.False(t, res.DNCFlagged)

		history, err := s.ledger.History(ctx, "op-1", c.ID)
		require.NoError(t, err)
		require.Len(t, history, 1)
	})

	t.Run("InvalidOutcomeWritesNothing", func(t *testing.T) {
		s := newTestStack(t, false)
		c := s.seedContact(t, "op-1", "Ada", "Registrar", "America/New_York", 1024)

		_, err := s.ledger.LogOutcome(ctx, "op-1", c.ID, models.CallOutcome("hung_up"))
		assert.ErrorIs(t, err, ErrInvalidOutcome)

		history, err := s.ledger.History(ctx, "op-1", c.ID)
		require.NoError(t, err)
		assert.Empty(t, history)
	})

	t.Run("UnknownContact", func(t *testing.T) {
		s := newTestStack(t, false)
		_, err := s.ledger.LogOutcome(ctx, "op-1", uuid.New(), models.CallOutcomeNoAnswer)
		assert.ErrorIs(t, err, ErrContactNotFound)
	})

	t.Run("DoNotCallFlagsContact", func(t *testing.T) {
		s := newTestStack(t, false)
		c := s.seedContact(t, "op-1", "Ada", "Registrar", "America/New_York", 1024)

		res, err := s.ledger.LogOutcome(ctx, "op-1", c.ID, models.CallOutcomeDoNotCall)
		require.NoError(t, err)
		assert.True(t, res.DNCFlagged)
		assert.NoError(t, res.FlagErr)

		got, err := s.contacts.ByID(ctx, "op-1", c.ID)
		require.NoError(t, err)
		assert.True(t, got.DoNotCall)
	})

	t.Run("FlagFailureKeepsEntry", func(t *testing.T) {
		s := newTestStack(t, false)
		c := s.seedContact(t, "op-1", "Ada", "Registrar", "America/New_York", 1024)
		s.contacts.updateErr = errStoreDown

		res, err := s.ledger.LogOutcome(ctx, "op-1", c.ID, models.CallOutcomeDoNotCall)
		require.NoError(t, err)
		assert.False(t, res.DNCFlagged)
		assert.ErrorIs(t, res.FlagErr, errStoreDown)

		history, err := s.ledger.History(ctx, "op-1", c.ID)
		require.NoError(t, err)
		assert.Len(t, history, 1)

		got, err := s.contacts.ByID(ctx, "op-1", c.ID)
		require.NoError(t, err)
		assert.False(t, got.DoNotCall)
	})

	t.Run("AppendFailure", func(t *testing.T) {
		s := newTestStack(t, false)
		c := s.seedContact(t, "op-1", "Ada", "Registrar", "America/New_York", 1024)
		s.logs.saveErr = errStoreDown

		_, err := s.ledger.LogOutcome(ctx, "op-1", c.ID, models.CallOutcomeDoNotCall)
		require.Error(t, err)
		var be *BusinessError
		require.ErrorAs(t, err, &be)
		assert.Equal(t, "LOG_OUTCOME_FAILED", be.Code)

		got, err := s.contacts.ByID(ctx, "op-1", c.ID)
		require.NoError(t, err)
		assert.False(t, got.DoNotCall)
	})
}

func TestCallLedgerStats(t *testing.T) {
	ctx := context.Background()
	s := newTestStack(t, false)
	c := s.seedContact(t, "op-1", "Ada", "Registrar", "America/New_York", 1024)
	other := s.seedContact(t, "op-2", "Bob", "Registrar", "America/New_York", 1024)

	for _, o := range []models.CallOutcome{models.CallOutcomeConversation, models.CallOutcomeNoAnswer} {
		_, err := s.ledger.LogOutcome(ctx, "op-1", c.ID, o)
		require.NoError(t, err)
		s.clock.Advance(time.Minute)
	}
	_, err := s.ledger.LogOutcome(ctx, "op-2", other.ID, models.CallOutcomeConversation)
	require.NoError(t, err)

	stats, err := s.ledger.Stats(ctx, "op-1")
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 50, stats.ConversationRatePercent)

	history, err := s.ledger.History(ctx, "op-1", c.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, models.CallOutcomeNoAnswer, history[0].Outcome, "newest first")
}

func TestCallLedgerDeleteContact(t *testing.T) {
	ctx := context.Background()
	s := newTestStack(t, false)
	c := s.seedContact(t, "op-1", "Ada", "Registrar", "America/New_York", 1024)
	keep := s.seedContact(t, "op-1", "Bea", "Registrar", "America/New_York", 2048)

	for i := 0; i < 3; i++ {
		_, err := s.ledger.LogOutcome(ctx, "op-1", c.ID, models.CallOutcomeNoAnswer)
		require.NoError(t, err)
	}
	_, err := s.ledger.LogOutcome(ctx, "op-1", keep.ID, models.CallOutcomeNoAnswer)
	require.NoError(t, err)

	removed, err := s.ledger.DeleteContact(ctx, "op-1", c.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, removed)

	got, err := s.contacts.ByID(ctx, "op-1", c.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	stats, err := s.ledger.Stats(ctx, "op-1")
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Total)

	t.Run("RetryIsNoOp", func(t *testing.T) {
		removed, err := s.ledger.DeleteContact(ctx, "op-1", c.ID)
		require.NoError(t, err)
		assert.Zero(t, removed)
	})
}
