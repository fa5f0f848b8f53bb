// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"gorm.io/gorm"
)

// Scoped is implemented by entities partitioned by operator scope
type Scoped interface {
	ScopeID() string
}

// BaseRepository provides common repository functionality with transaction support
type BaseRepository[T any, F any] struct {
	DB    *gorm.DB
	feed  ChangeFeed
	topic string
}

// NewBaseRepository creates a new base repository instance. Committed writes are announced on feed under topic.
func NewBaseRepository[T any, F any](db *gorm.DB, feed ChangeFeed, topic string) *BaseRepository[T, F] {
	return &BaseRepository[T, F]{
		DB:    db,
		feed:  feed,
		topic: topic,
	}
}

// getDB returns the appropriate database connection (with or without transaction)
func (r *BaseRepository[T, F]) getDB(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value(TxContextKey).(*gorm.DB); ok && tx != nil {
		return tx
	}
	return r.DB.WithContext(ctx)
}

// getDBForWrite returns database connection with transaction for write operations
func (r *BaseRepository[T, F]) getDBForWrite(ctx context.Context) (*gorm.DB, bool, error) {
	if tx, ok := ctx.Value(TxContextKey).(*gorm.DB); ok && tx != nil {
		return tx, false, nil // Transaction already exists, don't commit
	}

	tx := r.DB.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, false, fmt.Errorf("failed to begin transaction: %w", tx.Error)
	}

	return tx, true, nil // New transaction, should commit
}

// finishWrite commits or rolls back a transaction opened by getDBForWrite and announces the change
// once it is durable. Writes inside an enclosing transaction are announced when that one commits.
func (r *BaseRepository[T, F]) finishWrite(ctx context.Context, db *gorm.DB, shouldCommit bool, err error, scopes ...string) error {
	if !shouldCommit {
		if err == nil {
			afterCommit(ctx, func() { r.notify(scopes...) })
		}
		return err
	}

	if err != nil {
		db.Rollback()
		return err
	}
	if cerr := db.Commit().Error; cerr != nil {
		return fmt.Errorf("failed to commit transaction: %w", cerr)
	}
	r.notify(scopes...)
	return nil
}

func (r *BaseRepository[T, F]) notify(scopes ...string) {
	if r.feed == nil {
		return
	}
	seen := make(map[string]struct{}, len(scopes))
	for _, scope := range scopes {
		if _, ok := seen[scope]; ok {
			continue
		}
		seen[scope] = struct{}{}
		if err := r.feed.Publish(context.Background(), scope, r.topic); err != nil {
			log.Printf("repository: publish %s change for scope %s failed: %v", r.topic, scope, err)
		}
	}
}

// Save inserts a new entity
func (r *BaseRepository[T, F]) Save(ctx context.Context, entity *T) (err error) {
	db, shouldCommit, err := r.getDBForWrite(ctx)
	if err != nil {
		return err
	}
	defer func() {
		err = r.finishWrite(ctx, db, shouldCommit, err, scopeOf(entity))
	}()

	if err = db.Create(entity).Error; err != nil {
		return fmt.Errorf("failed to save entity: %w", err)
	}

	return nil
}

// SaveBatch inserts multiple entities in a single transaction
func (r *BaseRepository[T, F]) SaveBatch(ctx context.Context, entities []*T) (err error) {
	if len(entities) == 0 {
		return nil
	}

	db, shouldCommit, err := r.getDBForWrite(ctx)
	if err != nil {
		return err
	}
	scopes := make([]string, 0, len(entities))
	for _, e := range entities {
		scopes = append(scopes, scopeOf(e))
	}
	defer func() {
		err = r.finishWrite(ctx, db, shouldCommit, err, scopes...)
	}()

	if err = db.CreateInBatches(entities, 100).Error; err != nil { // Batch size of 100
		return fmt.Errorf("failed to save batch entities: %w", err)
	}

	return nil
}

func scopeOf(entity any) string {
	if s, ok := entity.(Scoped); ok {
		return s.ScopeID()
	}
	return ""
}

// pendingNotifications collects change announcements raised inside WithTransaction
type pendingNotifications struct {
	mu  sync.Mutex
	fns []func()
}

type pendingKey struct{}

func afterCommit(ctx context.Context, fn func()) {
	if p, ok := ctx.Value(pendingKey{}).(*pendingNotifications); ok && p != nil {
		p.mu.Lock()
		p.fns = append(p.fns, fn)
		p.mu.Unlock()
		return
	}
	fn()
}

func (p *pendingNotifications) flush() {
	p.mu.Lock()
	fns := p.fns
	p.fns = nil
	p.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

// WithTransaction executes a function within a database transaction
func WithTransaction(ctx context.Context, db *gorm.DB, fn func(context.Context) error) (err error) {
	if db == nil {
		return errors.New("database is not configured")
	}

	tx := db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return fmt.Errorf("failed to begin transaction: %w", tx.Error)
	}

	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			err = fmt.Errorf("panic in transaction: %v", r)
		}
	}()

	pending := &pendingNotifications{}
	ctx = context.WithValue(ctx, TxContextKey, tx)
	ctx = context.WithValue(ctx, pendingKey{}, pending)

	if err := fn(ctx); err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Commit().Error; err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	pending.flush()
	return nil
}

// Transactor runs a unit of work atomically where the backing store supports it
type Transactor interface {
	WithinTx(ctx context.Context, fn func(context.Context) error) error
}

// GormTransactor wraps WithTransaction
type GormTransactor struct {
	DB *gorm.DB
}

func NewGormTransactor(db *gorm.DB) Transactor {
	return &GormTransactor{DB: db}
}

func (t *GormTransactor) WithinTx(ctx context.Context, fn func(context.Context) error) error {
	return WithTransaction(ctx, t.DB, fn)
}
