// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"errors"

	"github.com/amirphl/sdr-power-queue/models"
	"github.com/google/uuid"
)

// RepositoryContext key for transaction in context
type contextKey string

const TxContextKey contextKey = "tx"

// Change feed topics
const (
	TopicContacts = "contacts"
	TopicCallLogs = "call_logs"
)

// ErrNotFound is returned by updates that matched no row in the scope
var ErrNotFound = errors.New("record not found")

type Repository[T any, F any] interface {
	ByFilter(ctx context.Context, filter F, orderBy string, limit, offset int) ([]*T, error)
	Save(ctx context.Context, entity *T) error
	SaveBatch(ctx context.Context, entities []*T) error
	Count(ctx context.Context, filter F) (int64, error)
	Exists(ctx context.Context, filter F) (bool, error)
}

// ContactRepository defines operations for contacts. Every call is confined to one operator scope.
type ContactRepository interface {
	Repository[models.Contact, models.ContactFilter]
	ByID(ctx context.Context, scope string, id uuid.UUID) (*models.Contact, error)
	Update(ctx context.Context, scope string, id uuid.UUID, patch models.ContactPatch) error
	UpdateOrderKeys(ctx context.Context, scope string, updates []models.OrderKeyUpdate) error
	// Delete removes the contact; deleting a missing contact is not an error
	Delete(ctx context.Context, scope string, id uuid.UUID) error
	// Subscribe delivers the full matching contact set now and after every committed change in the scope
	Subscribe(ctx context.Context, scope string, filter models.ContactFilter, orderBy string) (*Subscription[models.Contact], error)
}

// CallLogRepository defines operations for call log entries. Entries are immutable.
type CallLogRepository interface {
	Repository[models.CallLogEntry, models.CallLogEntryFilter]
	ByContact(ctx context.Context, scope string, contactID uuid.UUID) ([]*models.CallLogEntry, error)
	// Delete removes the entry; deleting a missing entry is not an error
	Delete(ctx context.Context, scope string, id uuid.UUID) error
	Subscribe(ctx context.Context, scope string, filter models.CallLogEntryFilter, orderBy string) (*Subscription[models.CallLogEntry], error)
}

// ChangeFeed carries "something changed" signals for a scope and topic between writers and subscribers
type ChangeFeed interface {
	Publish(ctx context.Context, scope, topic string) error
	// Listen returns a coalescing signal channel and a stop function
	Listen(ctx context.Context, scope, topic string) (<-chan struct{}, func(), error)
}

// IsNotFound reports whether err wraps ErrNotFound
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
