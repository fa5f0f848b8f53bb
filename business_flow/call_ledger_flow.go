package businessflow

import (
	"context"
	"fmt"
	"log"
	"math"

	"github.com/amirphl/sdr-power-queue/models"
	"github.com/amirphl/sdr-power-queue/repository"
	"github.com/amirphl/sdr-power-queue/utils"
	"github.com/google/uuid"
)

// OutcomeResult is what LogOutcome recorded. FlagErr is set when the entry was
// written but the contact could not be flagged do-not-call.
type OutcomeResult struct {
	Entry      models.CallLogEntry
	DNCFlagged bool
	FlagErr    error
}

// OutcomeShare is one row of the stats breakdown
type OutcomeShare struct {
	Outcome models.CallOutcome
	Count   int
	Percent float64
}

// CallStats aggregates a call log
type CallStats struct {
	Total                   int
	NoAnswer                int
	LeftVoicemail           int
	Conversation            int
	DoNotCall               int
	ConversationRate        float64
	ConversationRatePercent int
	Breakdown               []OutcomeShare
}

// ComputeStats aggregates entries; an empty log has a zero conversation rate
func ComputeStats(entries []*models.CallLogEntry) CallStats {
	counts := make(map[models.CallOutcome]int, len(models.CallOutcomes))
	total := 0
	for _, e := range entries {
		if e == nil {
			continue
		}
		counts[e.Outcome]++
		total++
	}

	stats := CallStats{
		Total:         total,
		NoAnswer:      counts[models.CallOutcomeNoAnswer],
		LeftVoicemail: counts[models.CallOutcomeLeftVoicemail],
		Conversation:  counts[models.CallOutcomeConversation],
		DoNotCall:     counts[models.CallOutcomeDoNotCall],
		Breakdown:     make([]OutcomeShare, 0, len(models.CallOutcomes)),
	}
	if total > 0 {
		stats.ConversationRate = float64(stats.Conversation) / float64(total)
		stats.ConversationRatePercent = int(math.Round(stats.ConversationRate * 100))
	}
	for _, o := range models.CallOutcomes {
		share := OutcomeShare{Outcome: o, Count: counts[o]}
		if total > 0 {
			share.Percent = math.Round(float64(counts[o])/float64(total)*1000) / 10
		}
		stats.Breakdown = append(stats.Breakdown, share)
	}
	return stats
}

// CallLedger records call outcomes and their side effects
type CallLedger struct {
	contacts repository.ContactRepository
	logs     repository.CallLogRepository
	tx       repository.Transactor
	clock    utils.Clock
	logger   *log.Logger
}

// NewCallLedger creates a ledger over the store
func NewCallLedger(contacts repository.ContactRepository, logs repository.CallLogRepository, tx repository.Transactor, clock utils.Clock, logger *log.Logger) *CallLedger {
	if clock == nil {
		clock = utils.SystemClock{}
	}
	if logger == nil {
		logger = log.Default()
	}
	return &CallLedger{contacts: contacts, logs: logs, tx: tx, clock: clock, logger: logger}
}

// LogOutcome appends a call log entry, then flags the contact when the outcome is do-not-call.
// The entry is kept even when flagging fails.
func (l *CallLedger) LogOutcome(ctx context.Context, scope string, contactID uuid.UUID, outcome models.CallOutcome) (*OutcomeResult, error) {
	if !outcome.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidOutcome, outcome)
	}

	contact, err := l.contacts.ByID(ctx, scope, contactID)
	if err != nil {
		return nil, NewBusinessError("LOG_OUTCOME_FAILED", "Failed to load contact", err)
	}
	if contact == nil {
		return nil, ErrContactNotFound
	}

	entry := models.CallLogEntry{
		ID:        uuid.New(),
		UserID:    scope,
		ContactID: contactID,
		Outcome:   outcome,
		Timestamp: l.clock.Now().UTC(),
	}
	if err := l.logs.Save(ctx, &entry); err != nil {
		return nil, NewBusinessError("LOG_OUTCOME_FAILED", "Failed to record call outcome", err)
	}

	result := &OutcomeResult{Entry: entry}
	if outcome != models.CallOutcomeDoNotCall {
		return result, nil
	}

	if err := l.contacts.Update(ctx, scope, contactID, models.ContactPatch{DoNotCall: utils.ToPtr(true)}); err != nil {
		l.logger.Printf("call ledger: outcome %s recorded for %s but DNC flag failed: %v", entry.ID, contactID, err)
		result.FlagErr = NewBusinessError("FLAG_DNC_FAILED", "Call recorded but the contact could not be marked do-not-call", err)
		return result, nil
	}
	result.DNCFlagged = true
	return result, nil
}

// Stats aggregates the scope's call log
func (l *CallLedger) Stats(ctx context.Context, scope string) (*CallStats, error) {
	entries, err := l.logs.ByFilter(ctx, models.CallLogEntryFilter{UserID: &scope}, "", 0, 0)
	if err != nil {
		return nil, NewBusinessError("STATS_FAILED", "Failed to load call log", err)
	}
	stats := ComputeStats(entries)
	return &stats, nil
}

// History returns the contact's entries, newest first
func (l *CallLedger) History(ctx context.Context, scope string, contactID uuid.UUID) ([]*models.CallLogEntry, error) {
	entries, err := l.logs.ByContact(ctx, scope, contactID)
	if err != nil {
		return nil, NewBusinessError("HISTORY_FAILED", "Failed to load call history", err)
	}
	return entries, nil
}

// DeleteContact removes the contact's call log, then the contact. Missing rows are
// skipped so a retry after a partial failure completes the cascade.
func (l *CallLedger) DeleteContact(ctx context.Context, scope string, contactID uuid.UUID) (int, error) {
	removed := 0
	err := l.tx.WithinTx(ctx, func(ctx context.Context) error {
		entries, err := l.logs.ByContact(ctx, scope, contactID)
		if err != nil {
			return err
		}
		for _, e := range entries {
			if err := l.logs.Delete(ctx, scope, e.ID); err != nil {
				return err
			}
			removed++
		}
		return l.contacts.Delete(ctx, scope, contactID)
	})
	if err != nil {
		return removed, NewBusinessError("DELETE_CONTACT_FAILED", "Failed to delete contact", err)
	}
	return removed, nil
}
