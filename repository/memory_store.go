package repository

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/amirphl/sdr-power-queue/models"
	"github.com/amirphl/sdr-power-queue/utils"
	"github.com/google/uuid"
)

// MemoryStore keeps contacts and call log entries in process memory. It backs the
// "memory" store provider and the flow tests.
type MemoryStore struct {
	mu       sync.RWMutex
	contacts map[uuid.UUID]models.Contact
	logs     map[uuid.UUID]models.CallLogEntry
	feed     ChangeFeed
}

// NewMemoryStore creates an empty store announcing writes on feed (an in-process feed when nil)
func NewMemoryStore(feed ChangeFeed) *MemoryStore {
	if feed == nil {
		feed = NewLocalChangeFeed()
	}
	return &MemoryStore{
		contacts: make(map[uuid.UUID]models.Contact),
		logs:     make(map[uuid.UUID]models.CallLogEntry),
		feed:     feed,
	}
}

func (s *MemoryStore) publish(scope, topic string) {
	if err := s.feed.Publish(context.Background(), scope, topic); err != nil {
		log.Printf("repository: publish %s change for scope %s failed: %v", topic, scope, err)
	}
}

// WithinTx runs fn directly; the memory store applies each write immediately
func (s *MemoryStore) WithinTx(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}

// orderTerm is one "column [ASC|DESC]" element of an order clause
type orderTerm struct {
	column string
	desc   bool
}

func parseOrderBy(orderBy string) []orderTerm {
	var terms []orderTerm
	for _, part := range strings.Split(orderBy, ",") {
		fields := strings.Fields(strings.TrimSpace(part))
		if len(fields) == 0 {
			continue
		}
		term := orderTerm{column: strings.ToLower(fields[0])}
		if len(fields) > 1 && strings.EqualFold(fields[1], "desc") {
			term.desc = true
		}
		terms = append(terms, term)
	}
	return terms
}

// compareValues returns -1, 0 or 1
func compareValues(a, b any) int {
	switch av := a.(type) {
	case float64:
		bv := b.(float64)
		switch {
		case av < bv:
			return -1
		case av > bv:
			return 1
		}
	case string:
		return strings.Compare(av, b.(string))
	case time.Time:
		bv := b.(time.Time)
		switch {
		case av.Before(bv):
			return -1
		case av.After(bv):
			return 1
		}
	case bool:
		bv := b.(bool)
		if av != bv {
			if !av {
				return -1
			}
			return 1
		}
	}
	return 0
}

func sortRows[T any](rows []*T, terms []orderTerm, column func(*T, string) any) {
	sort.SliceStable(rows, func(i, j int) bool {
		for _, t := range terms {
			a, b := column(rows[i], t.column), column(rows[j], t.column)
			if a == nil || b == nil {
				continue
			}
			c := compareValues(a, b)
			if c == 0 {
				continue
			}
			if t.desc {
				return c > 0
			}
			return c < 0
		}
		return false
	})
}

func page[T any](rows []*T, limit, offset int) []*T {
	if offset > 0 {
		if offset >= len(rows) {
			return []*T{}
		}
		rows = rows[offset:]
	}
	if limit > 0 && limit < len(rows) {
		rows = rows[:limit]
	}
	return rows
}

func contactColumn(c *models.Contact, column string) any {
	switch column {
	case "id":
		return c.ID.String()
	case "name":
		return c.Name
	case "organization":
		return c.Organization
	case "region":
		return c.Region
	case "order_key":
		return c.OrderKey
	case "do_not_call":
		return c.DoNotCall
	case "created_at":
		return c.CreatedAt
	case "updated_at":
		return c.UpdatedAt
	default:
		return nil
	}
}

func callLogColumn(e *models.CallLogEntry, column string) any {
	switch column {
	case "id":
		return e.ID.String()
	case "timestamp":
		return e.Timestamp
	case "outcome":
		return string(e.Outcome)
	default:
		return nil
	}
}

func matchContact(c models.Contact, f models.ContactFilter) bool {
	if f.ID != nil && c.ID != *f.ID {
		return false
	}
	if f.UserID != nil && c.UserID != *f.UserID {
		return false
	}
	if f.Region != nil && c.Region != *f.Region {
		return false
	}
	if f.DoNotCall != nil && c.DoNotCall != *f.DoNotCall {
		return false
	}
	if f.Organization != nil && c.Organization != *f.Organization {
		return false
	}
	if f.CreatedAfter != nil && !c.CreatedAt.After(*f.CreatedAfter) {
		return false
	}
	if f.CreatedBefore != nil && !c.CreatedAt.Before(*f.CreatedBefore) {
		return false
	}
	return true
}

func matchCallLog(e models.CallLogEntry, f models.CallLogEntryFilter) bool {
	if f.ID != nil && e.ID != *f.ID {
		return false
	}
	if f.UserID != nil && e.UserID != *f.UserID {
		return false
	}
	if f.ContactID != nil && e.ContactID != *f.ContactID {
		return false
	}
	if f.Outcome != nil && e.Outcome != *f.Outcome {
		return false
	}
	if f.After != nil && !e.Timestamp.After(*f.After) {
		return false
	}
	if f.Before != nil && !e.Timestamp.Before(*f.Before) {
		return false
	}
	return true
}

// MemoryContactRepository implements ContactRepository on a MemoryStore
type MemoryContactRepository struct {
	store *MemoryStore
}

// NewMemoryContactRepository creates a contact repository backed by store
func NewMemoryContactRepository(store *MemoryStore) ContactRepository {
	return &MemoryContactRepository{store: store}
}

func (r *MemoryContactRepository) ByID(_ context.Context, scope string, id uuid.UUID) (*models.Contact, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	c, ok := r.store.contacts[id]
	if !ok || c.UserID != scope {
		return nil, nil
	}
	return &c, nil
}

func (r *MemoryContactRepository) ByFilter(_ context.Context, filter models.ContactFilter, orderBy string, limit, offset int) ([]*models.Contact, error) {
	r.store.mu.RLock()
	rows := make([]*models.Contact, 0, len(r.store.contacts))
	for _, c := range r.store.contacts {
		if matchContact(c, filter) {
			c := c
			rows = append(rows, &c)
		}
	}
	r.store.mu.RUnlock()

	if orderBy == "" {
		orderBy = "order_key ASC, created_at ASC"
	}
	// map iteration is random; pin a total order before the requested one
	sortRows(rows, []orderTerm{{column: "id"}}, contactColumn)
	sortRows(rows, parseOrderBy(orderBy), contactColumn)
	return page(rows, limit, offset), nil
}

func (r *MemoryContactRepository) Save(_ context.Context, contact *models.Contact) error {
	if contact.ID == uuid.Nil {
		contact.ID = uuid.New()
	}
	now := utils.UTCNow()
	if contact.CreatedAt.IsZero() {
		contact.CreatedAt = now
	}
	if contact.UpdatedAt.IsZero() {
		contact.UpdatedAt = now
	}

	r.store.mu.Lock()
	if _, exists := r.store.contacts[contact.ID]; exists {
		r.store.mu.Unlock()
		return fmt.Errorf("failed to save entity: duplicate contact id %s", contact.ID)
	}
	r.store.contacts[contact.ID] = *contact
	r.store.mu.Unlock()

	r.store.publish(contact.UserID, TopicContacts)
	return nil
}

func (r *MemoryContactRepository) SaveBatch(ctx context.Context, contacts []*models.Contact) error {
	for _, c := range contacts {
		if err := r.Save(ctx, c); err != nil {
			return err
		}
	}
	return nil
}

func (r *MemoryContactRepository) Count(ctx context.Context, filter models.ContactFilter) (int64, error) {
	rows, err := r.ByFilter(ctx, filter, "", 0, 0)
	if err != nil {
		return 0, err
	}
	return int64(len(rows)), nil
}

func (r *MemoryContactRepository) Exists(ctx context.Context, filter models.ContactFilter) (bool, error) {
	n, err := r.Count(ctx, filter)
	return n > 0, err
}

func (r *MemoryContactRepository) Update(_ context.Context, scope string, id uuid.UUID, patch models.ContactPatch) error {
	r.store.mu.Lock()
	c, ok := r.store.contacts[id]
	if !ok || c.UserID != scope {
		r.store.mu.Unlock()
		return fmt.Errorf("contact %s: %w", id, ErrNotFound)
	}
	patch.Apply(&c)
	c.UpdatedAt = utils.UTCNow()
	r.store.contacts[id] = c
	r.store.mu.Unlock()

	r.store.publish(scope, TopicContacts)
	return nil
}

func (r *MemoryContactRepository) UpdateOrderKeys(_ context.Context, scope string, updates []models.OrderKeyUpdate) error {
	if len(updates) == 0 {
		return nil
	}
	now := utils.UTCNow()
	r.store.mu.Lock()
	for _, u := range updates {
		c, ok := r.store.contacts[u.ContactID]
		if !ok || c.UserID != scope {
			continue
		}
		c.OrderKey = u.OrderKey
		c.UpdatedAt = now
		r.store.contacts[u.ContactID] = c
	}
	r.store.mu.Unlock()

	r.store.publish(scope, TopicContacts)
	return nil
}

func (r *MemoryContactRepository) Delete(_ context.Context, scope string, id uuid.UUID) error {
	r.store.mu.Lock()
	c, ok := r.store.contacts[id]
	if ok && c.UserID == scope {
		delete(r.store.contacts, id)
	}
	r.store.mu.Unlock()

	if ok {
		r.store.publish(scope, TopicContacts)
	}
	return nil
}

func (r *MemoryContactRepository) Subscribe(ctx context.Context, scope string, filter models.ContactFilter, orderBy string) (*Subscription[models.Contact], error) {
	signals, stop, err := r.store.feed.Listen(ctx, scope, TopicContacts)
	if err != nil {
		return nil, err
	}
	filter.UserID = &scope
	load := func(ctx context.Context) ([]*models.Contact, error) {
		return r.ByFilter(ctx, filter, orderBy, 0, 0)
	}
	return newSubscription(ctx, load, signals, stop), nil
}

// MemoryCallLogRepository implements CallLogRepository on a MemoryStore
type MemoryCallLogRepository struct {
	store *MemoryStore
}

// NewMemoryCallLogRepository creates a call log repository backed by store
func NewMemoryCallLogRepository(store *MemoryStore) CallLogRepository {
	return &MemoryCallLogRepository{store: store}
}

func (r *MemoryCallLogRepository) ByFilter(_ context.Context, filter models.CallLogEntryFilter, orderBy string, limit, offset int) ([]*models.CallLogEntry, error) {
	r.store.mu.RLock()
	rows := make([]*models.CallLogEntry, 0, len(r.store.logs))
	for _, e := range r.store.logs {
		if matchCallLog(e, filter) {
			e := e
			rows = append(rows, &e)
		}
	}
	r.store.mu.RUnlock()

	if orderBy == "" {
		orderBy = "timestamp DESC"
	}
	sortRows(rows, []orderTerm{{column: "id"}}, callLogColumn)
	sortRows(rows, parseOrderBy(orderBy), callLogColumn)
	return page(rows, limit, offset), nil
}

func (r *MemoryCallLogRepository) ByContact(ctx context.Context, scope string, contactID uuid.UUID) ([]*models.CallLogEntry, error) {
	return r.ByFilter(ctx, models.CallLogEntryFilter{UserID: &scope, ContactID: &contactID}, "timestamp DESC", 0, 0)
}

func (r *MemoryCallLogRepository) Save(_ context.Context, entry *models.CallLogEntry) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	r.store.mu.Lock()
	if _, exists := r.store.logs[entry.ID]; exists {
		r.store.mu.Unlock()
		return fmt.Errorf("failed to save entity: duplicate call log id %s", entry.ID)
	}
	r.store.logs[entry.ID] = *entry
	r.store.mu.Unlock()

	r.store.publish(entry.UserID, TopicCallLogs)
	return nil
}

func (r *MemoryCallLogRepository) SaveBatch(ctx context.Context, entries []*models.CallLogEntry) error {
	for _, e := range entries {
		if err := r.Save(ctx, e); err != nil {
			return err
		}
	}
	return nil
}

func (r *MemoryCallLogRepository) Count(ctx context.Context, filter models.CallLogEntryFilter) (int64, error) {
	rows, err := r.ByFilter(ctx, filter, "", 0, 0)
	if err != nil {
		return 0, err
	}
	return int64(len(rows)), nil
}

func (r *MemoryCallLogRepository) Exists(ctx context.Context, filter models.CallLogEntryFilter) (bool, error) {
	n, err := r.Count(ctx, filter)
	return n > 0, err
}

func (r *MemoryCallLogRepository) Delete(_ context.Context, scope string, id uuid.UUID) error {
	r.store.mu.Lock()
	e, ok := r.store.logs[id]
	if ok && e.UserID == scope {
		delete(r.store.logs, id)
	}
	r.store.mu.Unlock()

	if ok {
		r.store.publish(scope, TopicCallLogs)
	}
	return nil
}

func (r *MemoryCallLogRepository) Subscribe(ctx context.Context, scope string, filter models.CallLogEntryFilter, orderBy string) (*Subscription[models.CallLogEntry], error) {
	signals, stop, err := r.store.feed.Listen(ctx, scope, TopicCallLogs)
	if err != nil {
		return nil, err
	}
	filter.UserID = &scope
	load := func(ctx context.Context) ([]*models.CallLogEntry, error) {
		return r.ByFilter(ctx, filter, orderBy, 0, 0)
	}
	return newSubscription(ctx, load, signals, stop), nil
}
