package testing

import (
	"fmt"
	"time"

	"github.com/amirphl/sdr-power-queue/models"
	"github.com/amirphl/sdr-power-queue/utils"
	"github.com/google/uuid"
)

// TestFixtures provides helper methods for creating test data
type TestFixtures struct {
	DB *TestDB
}

// NewTestFixtures creates a new test fixtures instance
func NewTestFixtures(db *TestDB) *TestFixtures {
	return &TestFixtures{DB: db}
}

// CreateTestContact inserts a callable contact for scope at the given order key
func (tf *TestFixtures) CreateTestContact(scope, name, organization string, orderKey float64) (*models.Contact, error) {
	now := utils.UTCNow()
	contact := &models.Contact{
		ID:           uuid.New(),
		UserID:       scope,
		Name:         name,
		Phone:        "+14155550100",
		Organization: organization,
		Title:        "VP Sales",
		Region:       "CA",
		Timezone:     "America/Los_Angeles",
		OrderKey:     orderKey,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := tf.DB.DB.Create(contact).Error; err != nil {
		return nil, fmt.Errorf("failed to create test contact %s: %w", name, err)
	}
	return contact, nil
}

// CreateTestCallLog records an outcome for contact at ts
func (tf *TestFixtures) CreateTestCallLog(contact *models.Contact, outcome models.CallOutcome, ts time.Time) (*models.CallLogEntry, error) {
	entry := &models.CallLogEntry{
		ID:        uuid.New(),
		UserID:    contact.UserID,
		ContactID: contact.ID,
		Outcome:   outcome,
		Timestamp: ts,
	}
	if err := tf.DB.DB.Create(entry).Error; err != nil {
		return nil, fmt.Errorf("failed to create test call log: %w", err)
	}
	return entry, nil
}
