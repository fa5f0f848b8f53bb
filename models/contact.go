// Package models contains domain entities for the dialer: contacts and their call log
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Contact is a person-organization pairing tracked for outbound calling
// Table: contacts
// Partitioned by user_id (operator scope); phone is stored normalized ("+" and digits)
// order_key drives manual ordering; ties are broken by created_at
type Contact struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID       string    `gorm:"size:128;not null;index:idx_contacts_user_id;index:idx_contacts_user_order,priority:1" json:"user_id"`
	Name         string    `gorm:"size:255;not null" json:"name"`
	Phone        string    `gorm:"size:32;not null" json:"phone"`
	Email        string    `gorm:"size:255" json:"email"`
	Organization string    `gorm:"size:255;not null;index:idx_contacts_organization" json:"organization"`
	Title        string    `gorm:"size:255;not null" json:"title"`
	Region       string    `gorm:"size:8;index:idx_contacts_region" json:"region"`
	Timezone     string    `gorm:"size:64;not null;default:'America/New_York'" json:"timezone"`
	DoNotCall    bool      `gorm:"not null;default:false;index:idx_contacts_do_not_call" json:"do_not_call"`
	Notes        string    `gorm:"type:text;not null;default:''" json:"notes"`
	OrderKey     float64   `gorm:"type:double precision;not null;index:idx_contacts_user_order,priority:2" json:"order_key"`
	CreatedAt    time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');not null;index:idx_contacts_created_at" json:"created_at"`
	UpdatedAt    time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');not null" json:"updated_at"`
}

func (Contact) TableName() string { return "contacts" }

// BeforeCreate ensures ID is set
func (c *Contact) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// ContactFilter represents filter criteria for contact queries
type ContactFilter struct {
	ID            *uuid.UUID
	UserID        *string
	Region        *string
	DoNotCall     *bool
	Organization  *string
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}

// ContactPatch holds the mutable fields of a contact; nil fields are left untouched
type ContactPatch struct {
	Name         *string
	Phone        *string
	Email        *string
	Organization *string
	Title        *string
	Region       *string
	Timezone     *string
	DoNotCall    *bool
	Notes        *string
	OrderKey     *float64
}

// IsEmpty reports whether the patch changes nothing
func (p ContactPatch) IsEmpty() bool {
	return p.Name == nil && p.Phone == nil && p.Email == nil && p.Organization == nil &&
		p.Title == nil && p.Region == nil && p.Timezone == nil && p.DoNotCall == nil &&
		p.Notes == nil && p.OrderKey == nil
}

// Apply copies the set fields of the patch onto c
func (p ContactPatch) Apply(c *Contact) {
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.Phone != nil {
		c.Phone = *p.Phone
	}
	if p.Email != nil {
		c.Email = *p.Email
	}
	if p.Organization != nil {
		c.Organization = *p.Organization
	}
	if p.Title != nil {
		c.Title = *p.Title
	}
	if p.Region != nil {
		c.Region = *p.Region
	}
	if p.Timezone != nil {
		c.Timezone = *p.Timezone
	}
	if p.DoNotCall != nil {
		c.DoNotCall = *p.DoNotCall
	}
	if p.Notes != nil {
		c.Notes = *p.Notes
	}
	if p.OrderKey != nil {
		c.OrderKey = *p.OrderKey
	}
}

// Updates converts the patch into a column map for gorm
func (p ContactPatch) Updates() map[string]any {
	updates := map[string]any{}
	if p.Name != nil {
		updates["name"] = *p.Name
	}
	if p.Phone != nil {
		updates["phone"] = *p.Phone
	}
	if p.Email != nil {
		updates["email"] = *p.Email
	}
	if p.Organization != nil {
		updates["organization"] = *p.Organization
	}
	if p.Title != nil {
		updates["title"] = *p.Title
	}
	if p.Region != nil {
		updates["region"] = *p.Region
	}
	if p.Timezone != nil {
		updates["timezone"] = *p.Timezone
	}
	if p.DoNotCall != nil {
		updates["do_not_call"] = *p.DoNotCall
	}
	if p.Notes != nil {
		updates["notes"] = *p.Notes
	}
	if p.OrderKey != nil {
		updates["order_key"] = *p.OrderKey
	}
	return updates
}

// OrderKeyUpdate assigns a new order key to one contact
type OrderKeyUpdate struct {
	ContactID uuid.UUID
	OrderKey  float64
}

// ScopeID returns the operator scope owning the contact
func (c Contact) ScopeID() string { return c.UserID }
