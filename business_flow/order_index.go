package businessflow

import (
	"sort"

	"github.com/amirphl/sdr-power-queue/models"
	"github.com/amirphl/sdr-power-queue/utils"
)

// KeyBetween returns an order key placing an item between prev and next.
// now (epoch milliseconds) is used when the list has no neighbours.
func KeyBetween(prev, next *float64, now float64) float64 {
	switch {
	case prev != nil && next != nil:
		return (*prev + *next) / 2
	case next != nil:
		return *next - 1
	case prev != nil:
		return *prev + 1
	default:
		return now
	}
}

// NeedsRenumber reports whether the midpoint of prev and next can no longer be
// represented strictly between them
func NeedsRenumber(prev, next *float64) bool {
	if prev == nil || next == nil {
		return false
	}
	mid := (*prev + *next) / 2
	if !(*prev < mid && mid < *next) {
		return true
	}
	return *next-*prev < utils.MinOrderKeyGap
}

// SortManual orders contacts by key, ties broken by creation time
func SortManual(contacts []*models.Contact) {
	sort.SliceStable(contacts, func(i, j int) bool {
		a, b := contacts[i], contacts[j]
		if a.OrderKey != b.OrderKey {
			return a.OrderKey < b.OrderKey
		}
		return a.CreatedAt.Before(b.CreatedAt)
	})
}

// Renumber spaces an ordered list evenly, starting at the key of its first element.
// It rewrites the keys in place and returns the changes.
func Renumber(ordered []*models.Contact) []models.OrderKeyUpdate {
	if len(ordered) == 0 {
		return nil
	}
	base := ordered[0].OrderKey
	updates := make([]models.OrderKeyUpdate, 0, len(ordered))
	for i, c := range ordered {
		key := base + float64(i)*utils.OrderKeyStep
		if c.OrderKey == key {
			continue
		}
		c.OrderKey = key
		updates = append(updates, models.OrderKeyUpdate{ContactID: c.ID, OrderKey: key})
	}
	return updates
}

// insertionIndex finds where an item dropped between prev and next lands in ordered
func insertionIndex(ordered []*models.Contact, prev, next *float64) int {
	if prev != nil {
		for i, c := range ordered {
			if c.OrderKey == *prev {
				return i + 1
			}
		}
		n := 0
		for _, c := range ordered {
			if c.OrderKey <= *prev {
				n++
			}
		}
		return n
	}
	if next != nil {
		for i, c := range ordered {
			if c.OrderKey == *next {
				return i
			}
		}
		n := 0
		for _, c := range ordered {
			if c.OrderKey < *next {
				n++
			}
		}
		return n
	}
	return len(ordered)
}

// neighbourKeys returns the keys around position idx of ordered
func neighbourKeys(ordered []*models.Contact, idx int) (prev, next *float64) {
	if idx > 0 && idx-1 < len(ordered) {
		k := ordered[idx-1].OrderKey
		prev = &k
	}
	if idx >= 0 && idx < len(ordered) {
		k := ordered[idx].OrderKey
		next = &k
	}
	return prev, next
}

// Placement is the outcome of a manual move
type Placement struct {
	OrderKey   float64
	Updates    []models.OrderKeyUpdate
	Renumbered bool
}

// PlaceAt computes the key for a contact dropped at position idx of ordered (which must not
// contain the contact). When the neighbours are too close the list is renumbered first and
// the renumbered keys are part of the updates.
func PlaceAt(ordered []*models.Contact, idx int, now float64) Placement {
	prev, next := neighbourKeys(ordered, idx)
	if !NeedsRenumber(prev, next) {
		return Placement{OrderKey: KeyBetween(prev, next, now)}
	}
	updates := Renumber(ordered)
	prev, next = neighbourKeys(ordered, idx)
	return Placement{
		OrderKey:   KeyBetween(prev, next, now),
		Updates:    updates,
		Renumbered: true,
	}
}
