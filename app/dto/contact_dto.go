package dto

// ContactDTO is the wire form of a contact
type ContactDTO struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Phone        string  `json:"phone"`
	DisplayPhone string  `json:"display_phone"`
	Email        string  `json:"email,omitempty"`
	Organization string  `json:"organization"`
	Title        string  `json:"title"`
	Region       string  `json:"region,omitempty"`
	Timezone     string  `json:"timezone"`
	DoNotCall    bool    `json:"do_not_call"`
	Notes        string  `json:"notes"`
	OrderKey     float64 `json:"order_key"`
	CreatedAt    string  `json:"created_at"`
	UpdatedAt    string  `json:"updated_at"`
}

// CreateContactRequest carries the add-contact form
// Timezone is derived from Region when empty
type CreateContactRequest struct {
	Scope        string `json:"-"`
	Name         string `json:"name" validate:"required,max=255"`
	Phone        string `json:"phone" validate:"required,max=64"`
	Email        string `json:"email,omitempty" validate:"omitempty,email,max=255"`
	Organization string `json:"organization" validate:"required,max=255"`
	Title        string `json:"title" validate:"required,max=255"`
	Region       string `json:"region,omitempty" validate:"omitempty,len=2,alpha"`
	Timezone     string `json:"timezone,omitempty" validate:"omitempty,max=64"`
	Notes        string `json:"notes,omitempty" validate:"omitempty,max=10000"`
}

// UpdateContactRequest patches a contact; absent fields are left unchanged
type UpdateContactRequest struct {
	Scope        string  `json:"-"`
	ContactID    string  `json:"-"`
	Name         *string `json:"name,omitempty" validate:"omitempty,max=255"`
	Phone        *string `json:"phone,omitempty" validate:"omitempty,max=64"`
	Email        *string `json:"email,omitempty" validate:"omitempty,max=255"`
	Organization *string `json:"organization,omitempty" validate:"omitempty,max=255"`
	Title        *string `json:"title,omitempty" validate:"omitempty,max=255"`
	Region       *string `json:"region,omitempty" validate:"omitempty,max=2"`
	Timezone     *string `json:"timezone,omitempty" validate:"omitempty,max=64"`
	Notes        *string `json:"notes,omitempty" validate:"omitempty,max=10000"`
}

// UpdateNotesRequest replaces the notes of a contact
type UpdateNotesRequest struct {
	Notes string `json:"notes" validate:"max=10000"`
}

// ListContactsRequest filters the lead directory
type ListContactsRequest struct {
	Scope     string `json:"-"`
	Region    string `query:"region" json:"region,omitempty" validate:"omitempty,max=2"`
	DoNotCall *bool  `query:"dnc" json:"dnc,omitempty"`
	GroupBy   string `query:"group_by" json:"group_by,omitempty" validate:"omitempty,oneof=none organization timezone"`
}

// ContactGroupDTO is one group of the lead directory
type ContactGroupDTO struct {
	Label    string       `json:"label"`
	Contacts []ContactDTO `json:"contacts"`
}

// ListContactsResponse returns the lead directory, grouped when requested
type ListContactsResponse struct {
	Total    int               `json:"total"`
	GroupBy  string            `json:"group_by"`
	Contacts []ContactDTO      `json:"contacts"`
	Groups   []ContactGroupDTO `json:"groups,omitempty"`
}

// ContactDetailResponse is a contact with its call history, newest first
type ContactDetailResponse struct {
	Contact ContactDTO        `json:"contact"`
	History []CallLogEntryDTO `json:"history"`
}

// DialResponse carries the call intent for a contact
type DialResponse struct {
	ContactID    string `json:"contact_id"`
	Name         string `json:"name"`
	URI          string `json:"uri"`
	DisplayPhone string `json:"display_phone"`
}

// DeleteContactResponse reports what a cascade removed
type DeleteContactResponse struct {
	ContactID      string `json:"contact_id"`
	RemovedEntries int    `json:"removed_entries"`
}

// BackupResponse is a full export of one operator's data
type BackupResponse struct {
	ExportedAt string            `json:"exported_at"`
	Contacts   []ContactDTO      `json:"contacts"`
	CallLog    []CallLogEntryDTO `json:"call_log"`
}
