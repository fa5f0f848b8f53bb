package dto

// QueueRequest selects and orders the call queue
type QueueRequest struct {
	Scope        string `json:"-"`
	Search       string `query:"q" json:"q,omitempty" validate:"omitempty,max=255"`
	Region       string `query:"region" json:"region,omitempty" validate:"omitempty,max=2"`
	HideDNC      *bool  `query:"hide_dnc" json:"hide_dnc,omitempty"`
	InWindowOnly bool   `query:"in_window" json:"in_window,omitempty"`
	SortBy       string `query:"sort" json:"sort,omitempty" validate:"omitempty,oneof=score name lastCall manual"`
	GroupBy      string `query:"group_by" json:"group_by,omitempty" validate:"omitempty,oneof=none organization timezone"`
}

// QueueItemDTO is a contact with its derived call-window data
type QueueItemDTO struct {
	Contact     ContactDTO `json:"contact"`
	WindowStart int        `json:"window_start"`
	WindowEnd   int        `json:"window_end"`
	LocalHour   int        `json:"local_hour"`
	LocalTime   string     `json:"local_time"`
	InWindow    bool       `json:"in_window"`
	Score       float64    `json:"score"`
	Bucket      string     `json:"bucket"`
	LastCallAt  *string    `json:"last_call_at,omitempty"`
}

// QueueGroupDTO is one group of the queue
type QueueGroupDTO struct {
	Label string         `json:"label"`
	Items []QueueItemDTO `json:"items"`
}

// QueueResponse is the ordered queue; Items is flattened in group order
type QueueResponse struct {
	Total   int             `json:"total"`
	SortBy  string          `json:"sort"`
	GroupBy string          `json:"group_by"`
	Items   []QueueItemDTO  `json:"items"`
	Groups  []QueueGroupDTO `json:"groups,omitempty"`
}

// ReorderRequest places a contact between two neighbor keys of the manual order
// Either key may be omitted at the ends of the list
type ReorderRequest struct {
	Scope     string   `json:"-"`
	ContactID string   `json:"contact_id" validate:"required,uuid"`
	PrevKey   *float64 `json:"prev_key,omitempty"`
	NextKey   *float64 `json:"next_key,omitempty"`
	GroupBy   string   `json:"group_by,omitempty" validate:"omitempty,oneof=none organization timezone"`
}

// MoveRequest places a contact at a position of the manual order
type MoveRequest struct {
	Scope     string `json:"-"`
	ContactID string `json:"contact_id" validate:"required,uuid"`
	ToIndex   int    `json:"to_index" validate:"min=0"`
	GroupBy   string `json:"group_by,omitempty" validate:"omitempty,oneof=none organization timezone"`
}

// ReorderResponse returns the new key of the moved contact
type ReorderResponse struct {
	ContactID  string  `json:"contact_id"`
	OrderKey   float64 `json:"order_key"`
	Renumbered bool    `json:"renumbered"`
}
