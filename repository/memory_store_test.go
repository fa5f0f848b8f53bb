package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/amirphl/sdr-power-queue/models"
	"github.com/amirphl/sdr-power-queue/utils"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newContact(scope, name string, key float64) *models.Contact {
	return &models.Contact{
		UserID:       scope,
		Name:         name,
		Phone:        "+14155550100",
		Organization: "Acme",
		Title:        "CTO",
		Timezone:     "America/New_York",
		OrderKey:     key,
	}
}

func waitSnapshot[T any](t *testing.T, sub *Subscription[T], want func([]*T) bool) []*T {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case rows, ok := <-sub.C():
			require.True(t, ok, "subscription closed")
			if want(rows) {
				return rows
			}
		case <-deadline:
			t.Fatal("timed out waiting for snapshot")
			return nil
		}
	}
}

func TestMemoryContactRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("SaveAssignsIDAndScopesReads", func(t *testing.T) {
		repo := NewMemoryContactRepository(NewMemoryStore(nil))
		c := newContact("op-1", "Ada", 1024)
		require.NoError(t, repo.Save(ctx, c))
		assert.NotEqual(t, uuid.Nil, c.ID)

		got, err := repo.ByID(ctx, "op-1", c.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "Ada", got.Name)

		other, err := repo.ByID(ctx, "op-2", c.ID)
		require.NoError(t, err)
		assert.Nil(t, other)
	})

	t.Run("ByFilterOrdersByKeyThenCreation", func(t *testing.T) {
		repo := NewMemoryContactRepository(NewMemoryStore(nil))
		base := utils.UTCNow()
		a := newContact("op-1", "A", 2048)
		b := newContact("op-1", "B", 1024)
		b.CreatedAt = base.Add(time.Second)
		c := newContact("op-1", "C", 1024)
		c.CreatedAt = base
		for _, x := range []*models.Contact{a, b, c} {
			require.NoError(t, repo.Save(ctx, x))
		}

		scope := "op-1"
		rows, err := repo.ByFilter(ctx, models.ContactFilter{UserID: &scope}, "", 0, 0)
		require.NoError(t, err)
		require.Len(t, rows, 3)
		assert.Equal(t, []string{"C", "B", "A"}, []string{rows[0].Name, rows[1].Name, rows[2].Name})

		rows, err = repo.ByFilter(ctx, models.ContactFilter{UserID: &scope}, "name DESC", 2, 0)
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, "C", rows[0].Name)
		assert.Equal(t, "B", rows[1].Name)

		count, err := repo.Count(ctx, models.ContactFilter{UserID: &scope})
		require.NoError(t, err)
		assert.Equal(t, int64(3), count)
	})

	t.Run("UpdateMissingContact", func(t *testing.T) {
		repo := NewMemoryContactRepository(NewMemoryStore(nil))
		err := repo.Update(ctx, "op-1", uuid.New(), models.ContactPatch{Notes: utils.ToPtr("x")})
		assert.True(t, errors.Is(err, ErrNotFound))
	})

	t.Run("UpdateOtherScope", func(t *testing.T) {
		repo := NewMemoryContactRepository(NewMemoryStore(nil))
		c := newContact("op-1", "Ada", 1024)
		require.NoError(t, repo.Save(ctx, c))
		err := repo.Update(ctx, "op-2", c.ID, models.ContactPatch{Notes: utils.ToPtr("x")})
		assert.True(t, errors.Is(err, ErrNotFound))
	})

	t.Run("DeleteIsIdempotent", func(t *testing.T) {
		repo := NewMemoryContactRepository(NewMemoryStore(nil))
		c := newContact("op-1", "Ada", 1024)
		require.NoError(t, repo.Save(ctx, c))
		require.NoError(t, repo.Delete(ctx, "op-1", c.ID))
		require.NoError(t, repo.Delete(ctx, "op-1", c.ID))
		got, err := repo.ByID(ctx, "op-1", c.ID)
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("UpdateOrderKeys", func(t *testing.T) {
		repo := NewMemoryContactRepository(NewMemoryStore(nil))
		c := newContact("op-1", "Ada", 1024)
		require.NoError(t, repo.Save(ctx, c))
		require.NoError(t, repo.UpdateOrderKeys(ctx, "op-1", []models.OrderKeyUpdate{{ContactID: c.ID, OrderKey: 3.5}}))
		got, err := repo.ByID(ctx, "op-1", c.ID)
		require.NoError(t, err)
		assert.Equal(t, 3.5, got.OrderKey)
	})
}

func TestMemorySubscription(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(nil)
	contacts := NewMemoryContactRepository(store)

	sub, err := contacts.Subscribe(ctx, "op-1", models.ContactFilter{}, "")
	require.NoError(t, err)
	defer sub.Close()

	t.Run("InitialSnapshot", func(t *testing.T) {
		rows := waitSnapshot(t, sub, func(rows []*models.Contact) bool { return true })
		assert.Empty(t, rows)
	})

	t.Run("SnapshotAfterWrite", func(t *testing.T) {
		require.NoError(t, contacts.Save(ctx, newContact("op-1", "Ada", 1024)))
		rows := waitSnapshot(t, sub, func(rows []*models.Contact) bool { return len(rows) == 1 })
		assert.Equal(t, "Ada", rows[0].Name)
	})

	t.Run("OtherScopeInvisible", func(t *testing.T) {
		require.NoError(t, contacts.Save(ctx, newContact("op-2", "Bob", 1024)))
		require.NoError(t, contacts.Save(ctx, newContact("op-1", "Cy", 2048)))
		rows := waitSnapshot(t, sub, func(rows []*models.Contact) bool { return len(rows) == 2 })
		for _, r := range rows {
			assert.Equal(t, "op-1", r.UserID)
		}
	})

	t.Run("CloseEndsStream", func(t *testing.T) {
		sub.Close()
		select {
		case <-sub.Done():
		case <-time.After(time.Second):
			t.Fatal("subscription did not stop")
		}
	})
}

func TestMemoryCallLogRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryCallLogRepository(NewMemoryStore(nil))
	contactID := uuid.New()
	base := utils.UTCNow()

	for i, outcome := range []models.CallOutcome{models.CallOutcomeNoAnswer, models.CallOutcomeConversation} {
		require.NoError(t, repo.Save(ctx, &models.CallLogEntry{
			UserID:    "op-1",
			ContactID: contactID,
			Outcome:   outcome,
			Timestamp: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	t.Run("ByContactNewestFirst", func(t *testing.T) {
		rows, err := repo.ByContact(ctx, "op-1", contactID)
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, models.CallOutcomeConversation, rows[0].Outcome)
	})

	t.Run("ByContactOtherScope", func(t *testing.T) {
		rows, err := repo.ByContact(ctx, "op-2", contactID)
		require.NoError(t, err)
		assert.Empty(t, rows)
	})

	t.Run("Delete", func(t *testing.T) {
		rows, err := repo.ByContact(ctx, "op-1", contactID)
		require.NoError(t, err)
		for _, r := range rows {
			require.NoError(t, repo.Delete(ctx, "op-1", r.ID))
		}
		exists, err := repo.Exists(ctx, models.CallLogEntryFilter{ContactID: &contactID})
		require.NoError(t, err)
		assert.False(t, exists)
	})
}

func TestLocalChangeFeed(t *testing.T) {
	ctx := context.Background()
	feed := NewLocalChangeFeed()

	t.Run("SignalsCoalesce", func(t *testing.T) {
		ch, stop, err := feed.Listen(ctx, "op-1", TopicContacts)
		require.NoError(t, err)
		defer stop()

		for i := 0; i < 5; i++ {
			require.NoError(t, feed.Publish(ctx, "op-1", TopicContacts))
		}
		<-ch
		select {
		case <-ch:
			t.Fatal("signals should coalesce into one")
		default:
		}
	})

	t.Run("TopicsAndScopesAreSeparate", func(t *testing.T) {
		ch, stop, err := feed.Listen(ctx, "op-1", TopicCallLogs)
		require.NoError(t, err)
		defer stop()

		require.NoError(t, feed.Publish(ctx, "op-1", TopicContacts))
		require.NoError(t, feed.Publish(ctx, "op-2", TopicCallLogs))
		select {
		case <-ch:
			t.Fatal("unexpected signal")
		default:
		}
	})

	t.Run("StopClosesChannel", func(t *testing.T) {
		ch, stop, err := feed.Listen(ctx, "op-1", TopicContacts)
		require.NoError(t, err)
		stop()
		stop()
		_, ok := <-ch
		assert.False(t, ok)
	})
}
