package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/amirphl/sdr-power-queue/models"
	"github.com/amirphl/sdr-power-queue/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ContactRepositoryImpl implements ContactRepository interface on postgres
type ContactRepositoryImpl struct {
	*BaseRepository[models.Contact, models.ContactFilter]
}

// NewContactRepository creates a new contact repository
func NewContactRepository(db *gorm.DB, feed ChangeFeed) ContactRepository {
	return &ContactRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Contact, models.ContactFilter](db, feed, TopicContacts),
	}
}

// ByID retrieves a contact by its ID within a scope
func (r *ContactRepositoryImpl) ByID(ctx context.Context, scope string, id uuid.UUID) (*models.Contact, error) {
	db := r.getDB(ctx)

	var contact models.Contact
	err := db.Where("id = ? AND user_id = ?", id, scope).First(&contact).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find contact by ID %s: %w", id, err)
	}

	return &contact, nil
}

// applyFilter applies filter criteria to a GORM query
func (r *ContactRepositoryImpl) applyFilter(query *gorm.DB, filter models.ContactFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.Region != nil {
		query = query.Where("region = ?", *filter.Region)
	}
	if filter.DoNotCall != nil {
		query = query.Where("do_not_call = ?", *filter.DoNotCall)
	}
	if filter.Organization != nil {
		query = query.Where("organization = ?", *filter.Organization)
	}
	if filter.CreatedAfter != nil {
		query = query.Where("created_at > ?", *filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		query = query.Where("created_at < ?", *filter.CreatedBefore)
	}
	return query
}

// ByFilter retrieves contacts based on filter criteria
func (r *ContactRepositoryImpl) ByFilter(ctx context.Context, filter models.ContactFilter, orderBy string, limit, offset int) ([]*models.Contact, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.Contact{})

	query = r.applyFilter(query, filter)

	if orderBy == "" {
		orderBy = "order_key ASC, created_at ASC"
	}
	query = query.Order(orderBy)

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var rows []*models.Contact
	if err := query.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list contacts: %w", err)
	}
	return rows, nil
}

// Count returns the number of contacts matching the filter
func (r *ContactRepositoryImpl) Count(ctx context.Context, filter models.ContactFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.Contact{}), filter)

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count contacts: %w", err)
	}
	return count, nil
}

// Exists checks if any contact matching the filter exists
func (r *ContactRepositoryImpl) Exists(ctx context.Context, filter models.ContactFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Update applies a partial update to one contact
func (r *ContactRepositoryImpl) Update(ctx context.Context, scope string, id uuid.UUID, patch models.ContactPatch) (err error) {
	db, shouldCommit, err := r.getDBForWrite(ctx)
	if err != nil {
		return err
	}
	defer func() {
		err = r.finishWrite(ctx, db, shouldCommit, err, scope)
	}()

	updates := patch.Updates()
	updates["updated_at"] = utils.UTCNow()

	result := db.Model(&models.Contact{}).
		Where("id = ? AND user_id = ?", id, scope).
		Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to update contact: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("contact %s: %w", id, ErrNotFound)
	}
	return nil
}

// UpdateOrderKeys rewrites the order key of several contacts in one transaction
func (r *ContactRepositoryImpl) UpdateOrderKeys(ctx context.Context, scope string, updates []models.OrderKeyUpdate) (err error) {
	if len(updates) == 0 {
		return nil
	}

	db, shouldCommit, err := r.getDBForWrite(ctx)
	if err != nil {
		return err
	}
	defer func() {
		err = r.finishWrite(ctx, db, shouldCommit, err, scope)
	}()

	now := utils.UTCNow()
	for _, u := range updates {
		if err = db.Model(&models.Contact{}).
			Where("id = ? AND user_id = ?", u.ContactID, scope).
			Updates(map[string]any{"order_key": u.OrderKey, "updated_at": now}).Error; err != nil {
			return fmt.Errorf("failed to update order key of %s: %w", u.ContactID, err)
		}
	}
	return nil
}

// Delete removes a contact. Missing rows are ignored.
func (r *ContactRepositoryImpl) Delete(ctx context.Context, scope string, id uuid.UUID) (err error) {
	db, shouldCommit, err := r.getDBForWrite(ctx)
	if err != nil {
		return err
	}
	defer func() {
		err = r.finishWrite(ctx, db, shouldCommit, err, scope)
	}()

	if err = db.Where("id = ? AND user_id = ?", id, scope).Delete(&models.Contact{}).Error; err != nil {
		return fmt.Errorf("failed to delete contact: %w", err)
	}
	return nil
}

// Subscribe streams the scope's contacts matching filter
func (r *ContactRepositoryImpl) Subscribe(ctx context.Context, scope string, filter models.ContactFilter, orderBy string) (*Subscription[models.Contact], error) {
	if r.feed == nil {
		return nil, errors.New("change feed is not configured")
	}
	signals, stop, err := r.feed.Listen(ctx, scope, TopicContacts)
	if err != nil {
		return nil, err
	}

	filter.UserID = &scope
	load := func(ctx context.Context) ([]*models.Contact, error) {
		return r.ByFilter(ctx, filter, orderBy, 0, 0)
	}
	return newSubscription(ctx, load, signals, stop), nil
}
