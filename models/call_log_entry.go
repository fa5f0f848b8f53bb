package models

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CallOutcome is the result of a single call attempt
type CallOutcome string

const (
	CallOutcomeNoAnswer      CallOutcome = "no_answer"
	CallOutcomeLeftVoicemail CallOutcome = "left_voicemail"
	CallOutcomeConversation  CallOutcome = "conversation"
	CallOutcomeDoNotCall     CallOutcome = "dnc"
)

// CallOutcomes lists every outcome in display order
var CallOutcomes = []CallOutcome{
	CallOutcomeNoAnswer,
	CallOutcomeLeftVoicemail,
	CallOutcomeConversation,
	CallOutcomeDoNotCall,
}

// String returns the string representation of the outcome
func (o CallOutcome) String() string {
	return string(o)
}

// Label returns the operator-facing name
func (o CallOutcome) Label() string {
	switch o {
	case CallOutcomeNoAnswer:
		return "No answer"
	case CallOutcomeLeftVoicemail:
		return "Left VM"
	case CallOutcomeConversation:
		return "Conversation"
	case CallOutcomeDoNotCall:
		return "DNC"
	default:
		return string(o)
	}
}

// Valid checks if the outcome is one of the known values
func (o CallOutcome) Valid() bool {
	switch o {
	case CallOutcomeNoAnswer, CallOutcomeLeftVoicemail, CallOutcomeConversation, CallOutcomeDoNotCall:
		return true
	default:
		return false
	}
}

// ParseCallOutcome accepts wire values, display labels and keyboard shortcuts 1-4
func ParseCallOutcome(s string) (CallOutcome, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "no_answer", "no answer", "noanswer", "1":
		return CallOutcomeNoAnswer, nil
	case "left_voicemail", "left vm", "voicemail", "leftvoicemail", "2":
		return CallOutcomeLeftVoicemail, nil
	case "conversation", "3":
		return CallOutcomeConversation, nil
	case "dnc", "do_not_call", "do not call", "donotcall", "4":
		return CallOutcomeDoNotCall, nil
	default:
		return "", fmt.Errorf("unknown call outcome %q", s)
	}
}

// Scan implements the sql.Scanner interface for CallOutcome
func (o *CallOutcome) Scan(value any) error {
	if value == nil {
		*o = ""
		return nil
	}

	switch v := value.(type) {
	case string:
		*o = CallOutcome(v)
	case []byte:
		*o = CallOutcome(string(v))
	default:
		return fmt.Errorf("cannot scan %T into CallOutcome", value)
	}

	return nil
}

// Value implements the driver.Valuer interface for CallOutcome
func (o CallOutcome) Value() (driver.Value, error) {
	if !o.Valid() {
		return nil, fmt.Errorf("invalid CallOutcome: %s", o)
	}
	return string(o), nil
}

// CallLogEntry is one immutable call attempt against a contact
// Table: call_log_entries
// Rows are only removed by the contact cascade delete
type CallLogEntry struct {
	ID        uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    string      `gorm:"size:128;not null;index:idx_call_log_entries_user_id" json:"user_id"`
	ContactID uuid.UUID   `gorm:"type:uuid;not null;index:idx_call_log_entries_contact_id" json:"contact_id"`
	Outcome   CallOutcome `gorm:"size:32;not null;index:idx_call_log_entries_outcome" json:"outcome"`
	Timestamp time.Time   `gorm:"not null;index:idx_call_log_entries_timestamp" json:"timestamp"`
}

func (CallLogEntry) TableName() string { return "call_log_entries" }

// BeforeCreate ensures ID is set
func (e *CallLogEntry) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

// CallLogEntryFilter represents filter criteria for call log queries
type CallLogEntryFilter struct {
	ID        *uuid.UUID
	UserID    *string
	ContactID *uuid.UUID
	Outcome   *CallOutcome
	After     *time.Time
	Before    *time.Time
}

// ScopeID returns the operator scope owning the entry
func (e CallLogEntry) ScopeID() string { return e.UserID }
