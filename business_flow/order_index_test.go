package businessflow

import (
	"testing"
	"time"

	"github.com/amirphl/sdr-power-queue/models"
	"github.com/amirphl/sdr-power-queue/utils"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func orderedContacts(keys ...float64) []*models.Contact {
	out := make([]*models.Contact, 0, len(keys))
	for i, k := range keys {
		out = append(out, &models.Contact{
			ID:        uuid.New(),
			OrderKey:  k,
			CreatedAt: testNow.Add(time.Duration(i) * time.Second),
		})
	}
	return out
}

func TestKeyBetween(t *testing.T) {
	now := 1_700_000_000_000.0

	tests := []struct {
		name       string
		prev, next *float64
		want       float64
	}{
		{"both neighbours", utils.ToPtr(1024.0), utils.ToPtr(2048.0), 1536},
		{"only next", nil, utils.ToPtr(1024.0), 1023},
		{"only prev", utils.ToPtr(1024.0), nil, 1025},
		{"no neighbours", nil, nil, now},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := KeyBetween(tt.prev, tt.next, now)
			assert.Equal(t, tt.want, got)
			if tt.prev != nil {
				assert.Greater(t, got, *tt.prev)
			}
			if tt.next != nil {
				assert.Less(t, got, *tt.next)
			}
		})
	}
}

func TestNeedsRenumber(t *testing.T) {
	assert.False(t, NeedsRenumber(utils.ToPtr(1.0), utils.ToPtr(2.0)))
	assert.False(t, NeedsRenumber(nil, utils.ToPtr(2.0)))
	assert.False(t, NeedsRenumber(utils.ToPtr(1.0), nil))
	assert.True(t, NeedsRenumber(utils.ToPtr(5.0), utils.ToPtr(5.0)), "colliding keys")
	assert.True(t, NeedsRenumber(utils.ToPtr(1.0), utils.ToPtr(1.0+1e-9)), "gap below threshold")
	assert.True(t, NeedsRenumber(utils.ToPtr(3.0), utils.ToPtr(2.0)), "neighbours out of order")
}

func TestRepeatedMidpointsStayOrdered(t *testing.T) {
	prev, next := 0.0, 1.0
	for i := 0; i < 200; i++ {
		if NeedsRenumber(&prev, &next) {
			return
		}
		mid := KeyBetween(&prev, &next, 0)
		require.Greater(t, mid, prev)
		require.Less(t, mid, next)
		next = mid
	}
	t.Fatal("expected the gap to be exhausted within 200 halvings")
}

func TestSortManual(t *testing.T) {
	contacts := orderedContacts(2048, 1024, 1024)
	// the later-created of the two colliding keys
	later := contacts[2]
	earlier := contacts[1]
	contacts[1], contacts[2] = later, earlier

	SortManual(contacts)
	assert.Equal(t, earlier.ID, contacts[0].ID)
	assert.Equal(t, later.ID, contacts[1].ID)
	assert.Equal(t, 2048.0, contacts[2].OrderKey)
}

func TestRenumber(t *testing.T) {
	contacts := orderedContacts(10, 10, 10.0000001)
	updates := Renumber(contacts)

	require.Len(t, updates, 2)
	assert.Equal(t, []float64{10, 10 + utils.OrderKeyStep, 10 + 2*utils.OrderKeyStep},
		[]float64{contacts[0].OrderKey, contacts[1].OrderKey, contacts[2].OrderKey})
	assert.Equal(t, contacts[1].ID, updates[0].ContactID)
	assert.Nil(t, Renumber(nil))
}

func TestPlaceAt(t *testing.T) {
	now := 1_700_000_000_000.0

	t.Run("Between", func(t *testing.T) {
		p := PlaceAt(orderedContacts(1024, 2048), 1, now)
		assert.Equal(t, 1536.0, p.OrderKey)
		assert.False(t, p.Renumbered)
		assert.Empty(t, p.Updates)
	})

	t.Run("Top", func(t *testing.T) {
		p := PlaceAt(orderedContacts(1024, 2048), 0, now)
		assert.Equal(t, 1023.0, p.OrderKey)
	})

	t.Run("Bottom", func(t *testing.T) {
		p := PlaceAt(orderedContacts(1024, 2048), 2, now)
		assert.Equal(t, 2049.0, p.OrderKey)
	})

	t.Run("EmptyList", func(t *testing.T) {
		p := PlaceAt(nil, 0, now)
		assert.Equal(t, now, p.OrderKey)
	})

	t.Run("CollidingNeighboursRenumber", func(t *testing.T) {
		contacts := orderedContacts(7, 7, 7)
		p := PlaceAt(contacts, 1, now)
		assert.True(t, p.Renumbered)
		assert.Len(t, p.Updates, 2)
		assert.Greater(t, p.OrderKey, contacts[0].OrderKey)
		assert.Less(t, p.OrderKey, contacts[1].OrderKey)
	})
}

func TestInsertionIndex(t *testing.T) {
	contacts := orderedContacts(5, 5, 9)

	assert.Equal(t, 1, insertionIndex(contacts, utils.ToPtr(5.0), utils.ToPtr(5.0)))
	assert.Equal(t, 0, insertionIndex(contacts, nil, utils.ToPtr(5.0)))
	assert.Equal(t, 3, insertionIndex(contacts, utils.ToPtr(9.0), nil))
	assert.Equal(t, 2, insertionIndex(contacts, utils.ToPtr(6.0), utils.ToPtr(8.0)))
	assert.Equal(t, 3, insertionIndex(contacts, nil, nil))
}
