package businessflow

import (
	"context"
	"errors"
	"io"
	"log"
	"testing"
	"time"

	"github.com/amirphl/sdr-power-queue/app/services"
	"github.com/amirphl/sdr-power-queue/models"
	"github.com/amirphl/sdr-power-queue/repository"
	"github.com/amirphl/sdr-power-queue/utils"
	"github.com/google/uuid"
)

// 2024-01-15 17:00 UTC: 9 AM Los Angeles, 10 AM Denver, 11 AM Chicago, 12 PM New York
var testNow = time.Date(2024, time.January, 15, 17, 0, 0, 0, time.UTC)

var errStoreDown = errors.New("store unavailable")

func quietLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

// failingContacts wraps a contact repository and fails selected writes
type failingContacts struct {
	repository.ContactRepository
	saveErr        error
	updateErr      error
	orderUpdateErr error
	// subscribeGate, when set, runs before every Subscribe
	subscribeGate func(scope string)
}

func (f *failingContacts) Subscribe(ctx context.Context, scope string, filter models.ContactFilter, orderBy string) (*repository.Subscription[models.Contact], error) {
	if f.subscribeGate != nil {
		f.subscribeGate(scope)
	}
	return f.ContactRepository.Subscribe(ctx, scope, filter, orderBy)
}

func (f *failingContacts) Save(ctx context.Context, contact *models.Contact) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	return f.ContactRepository.Save(ctx, contact)
}

func (f *failingContacts) Update(ctx context.Context, scope string, id uuid.UUID, patch models.ContactPatch) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	return f.ContactRepository.Update(ctx, scope, id, patch)
}

func (f *failingContacts) UpdateOrderKeys(ctx context.Context, scope string, updates []models.OrderKeyUpdate) error {
	if f.orderUpdateErr != nil {
		return f.orderUpdateErr
	}
	return f.ContactRepository.UpdateOrderKeys(ctx, scope, updates)
}

// failingLogs wraps a call log repository and fails inserts
type failingLogs struct {
	repository.CallLogRepository
	saveErr error
}

func (f *failingLogs) Save(ctx context.Context, entry *models.CallLogEntry) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	return f.CallLogRepository.Save(ctx, entry)
}

type testStack struct {
	clock    *utils.FixedClock
	store    *repository.MemoryStore
	contacts *failingContacts
	logs     *failingLogs
	resolver *WindowResolver
	ledger   *CallLedger
	notifier services.NotificationService
	flow     DialerFlow
}

func newTestStack(t *testing.T, seedSamples bool) *testStack {
	t.Helper()
	clock := utils.NewFixedClock(testNow)
	store := repository.NewMemoryStore(nil)
	contacts := &failingContacts{ContactRepository: repository.NewMemoryContactRepository(store)}
	logs := &failingLogs{CallLogRepository: repository.NewMemoryCallLogRepository(store)}
	resolver := NewWindowResolver(clock, nil, nil, nil)
	ledger := NewCallLedger(contacts, logs, store, clock, quietLogger())
	notifier := services.NewNotificationService(nil)
	contactFlow := NewContactFlow(contacts, ledger, resolver, utils.DefaultTimezone, seedSamples, quietLogger())
	flow := NewDialerFlow(contactFlow, contacts, logs, ledger, resolver, NewCallBlockRegistry(clock), notifier, quietLogger())
	t.Cleanup(flow.Close)

	return &testStack{
		clock:    clock,
		store:    store,
		contacts: contacts,
		logs:     logs,
		resolver: resolver,
		ledger:   ledger,
		notifier: notifier,
		flow:     flow,
	}
}

// seedContact writes a contact directly to the store
func (s *testStack) seedContact(t *testing.T, scope, name, title, tz string, key float64) *models.Contact {
	t.Helper()
	c := &models.Contact{
		ID:           uuid.New(),
		UserID:       scope,
		Name:         name,
		Phone:        "+14155550100",
		Organization: name + " University",
		Title:        title,
		Timezone:     tz,
		OrderKey:     key,
		CreatedAt:    testNow,
		UpdatedAt:    testNow,
	}
	if err := s.contacts.Save(context.Background(), c); err != nil {
		t.Fatalf("seed contact: %v", err)
	}
	return c
}
