package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/amirphl/sdr-power-queue/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CallLogRepositoryImpl implements CallLogRepository interface on postgres
type CallLogRepositoryImpl struct {
	*BaseRepository[models.CallLogEntry, models.CallLogEntryFilter]
}

// NewCallLogRepository creates a new call log repository
func NewCallLogRepository(db *gorm.DB, feed ChangeFeed) CallLogRepository {
	return &CallLogRepositoryImpl{
		BaseRepository: NewBaseRepository[models.CallLogEntry, models.CallLogEntryFilter](db, feed, TopicCallLogs),
	}
}

// applyFilter applies filter criteria to a GORM query
func (r *CallLogRepositoryImpl) applyFilter(query *gorm.DB, filter models.CallLogEntryFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.ContactID != nil {
		query = query.Where("contact_id = ?", *filter.ContactID)
	}
	if filter.Outcome != nil {
		query = query.Where("outcome = ?", *filter.Outcome)
	}
	if filter.After != nil {
		query = query.Where("timestamp > ?", *filter.After)
	}
	if filter.Before != nil {
		query = query.Where("timestamp < ?", *filter.Before)
	}
	return query
}

// ByFilter retrieves call log entries based on filter criteria
func (r *CallLogRepositoryImpl) ByFilter(ctx context.Context, filter models.CallLogEntryFilter, orderBy string, limit, offset int) ([]*models.CallLogEntry, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.CallLogEntry{}), filter)

	if orderBy == "" {
		orderBy = "timestamp DESC"
	}
	query = query.Order(orderBy)

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var rows []*models.CallLogEntry
	if err := query.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list call log entries: %w", err)
	}
	return rows, nil
}

// ByContact returns every entry of a contact, newest first
func (r *CallLogRepositoryImpl) ByContact(ctx context.Context, scope string, contactID uuid.UUID) ([]*models.CallLogEntry, error) {
	filter := models.CallLogEntryFilter{UserID: &scope, ContactID: &contactID}
	return r.ByFilter(ctx, filter, "timestamp DESC", 0, 0)
}

// Count returns the number of entries matching the filter
func (r *CallLogRepositoryImpl) Count(ctx context.Context, filter models.CallLogEntryFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.CallLogEntry{}), filter)

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count call log entries: %w", err)
	}
	return count, nil
}

// Exists checks if any entry matching the filter exists
func (r *CallLogRepositoryImpl) Exists(ctx context.Context, filter models.CallLogEntryFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Delete removes one entry. Missing rows are ignored.
func (r *CallLogRepositoryImpl) Delete(ctx context.Context, scope string, id uuid.UUID) (err error) {
	db, shouldCommit, err := r.getDBForWrite(ctx)
	if err != nil {
		return err
	}
	defer func() {
		err = r.finishWrite(ctx, db, shouldCommit, err, scope)
	}()

	if err = db.Where("id = ? AND user_id = ?", id, scope).Delete(&models.CallLogEntry{}).Error; err != nil {
		return fmt.Errorf("failed to delete call log entry: %w", err)
	}
	return nil
}

// Subscribe streams the scope's call log entries matching filter
func (r *CallLogRepositoryImpl) Subscribe(ctx context.Context, scope string, filter models.CallLogEntryFilter, orderBy string) (*Subscription[models.CallLogEntry], error) {
	if r.feed == nil {
		return nil, errors.New("change feed is not configured")
	}
	signals, stop, err := r.feed.Listen(ctx, scope, TopicCallLogs)
	if err != nil {
		return nil, err
	}

	filter.UserID = &scope
	load := func(ctx context.Context) ([]*models.CallLogEntry, error) {
		return r.ByFilter(ctx, filter, orderBy, 0, 0)
	}
	return newSubscription(ctx, load, signals, stop), nil
}
