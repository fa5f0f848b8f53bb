package businessflow

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/amirphl/sdr-power-queue/models"
	"github.com/amirphl/sdr-power-queue/repository"
	"github.com/amirphl/sdr-power-queue/utils"
	"github.com/google/uuid"
)

// SortBy selects the queue order
type SortBy string

const (
	SortByScore    SortBy = "score"
	SortByName     SortBy = "name"
	SortByLastCall SortBy = "lastCall"
	SortByManual   SortBy = "manual"
)

// ParseSortBy defaults to score
func ParseSortBy(s string) (SortBy, error) {
	switch SortBy(strings.TrimSpace(s)) {
	case "", SortByScore:
		return SortByScore, nil
	case SortByName:
		return SortByName, nil
	case SortByLastCall:
		return SortByLastCall, nil
	case SortByManual:
		return SortByManual, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidSort, s)
}

// GroupBy selects how the queue is partitioned
type GroupBy string

const (
	GroupByNone         GroupBy = "none"
	GroupByOrganization GroupBy = "organization"
	GroupByTimezone     GroupBy = "timezone"
)

// ParseGroupBy defaults to none
func ParseGroupBy(s string) (GroupBy, error) {
	switch GroupBy(strings.TrimSpace(s)) {
	case "", GroupByNone:
		return GroupByNone, nil
	case GroupByOrganization:
		return GroupByOrganization, nil
	case GroupByTimezone:
		return GroupByTimezone, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidGrouping, s)
}

// UnassignedGroup labels contacts without an organization
const UnassignedGroup = "Unassigned"

// QueueFilter selects and orders a queue view
type QueueFilter struct {
	Search       string
	Region       string
	HideDNC      bool
	InWindowOnly bool
	SortBy       SortBy
	GroupBy      GroupBy
}

// QueueItem is a contact with everything derived for the current instant
type QueueItem struct {
	Contact      models.Contact
	Resolution   WindowResolution
	Score        float64
	Bucket       string
	DisplayPhone string
	LastCallAt   *time.Time
}

// QueueGroup is one partition of a grouped view
type QueueGroup struct {
	Label string
	Items []QueueItem
}

// QueueView is an ordered queue. Items is flattened in group order; Groups is nil when ungrouped.
type QueueView struct {
	SortBy  SortBy
	GroupBy GroupBy
	Items   []QueueItem
	Groups  []QueueGroup
}

// QueueEngine keeps the latest contact and call log snapshots of one operator and builds
// queue views from them. Snapshots replace the previous state wholesale.
type QueueEngine struct {
	resolver *WindowResolver
	logger   *log.Logger

	mu             sync.RWMutex
	contacts       []models.Contact
	lastCall       map[uuid.UUID]time.Time
	contactsLoaded bool
	logsLoaded     bool

	ready     chan struct{}
	readyOnce sync.Once

	closers []func()
	wg      sync.WaitGroup
}

// NewQueueEngine creates an engine with empty snapshots
func NewQueueEngine(resolver *WindowResolver, logger *log.Logger) *QueueEngine {
	if logger == nil {
		logger = log.Default()
	}
	return &QueueEngine{
		resolver: resolver,
		logger:   logger,
		lastCall: make(map[uuid.UUID]time.Time),
		ready:    make(chan struct{}),
	}
}

func (e *QueueEngine) markReady() {
	if e.contactsLoaded && e.logsLoaded {
		e.readyOnce.Do(func() { close(e.ready) })
	}
}

// SetContacts replaces the contact snapshot
func (e *QueueEngine) SetContacts(rows []*models.Contact) {
	contacts := make([]models.Contact, 0, len(rows))
	for _, c := range rows {
		if c != nil {
			contacts = append(contacts, *c)
		}
	}
	ptrs := make([]*models.Contact, len(contacts))
	for i := range contacts {
		ptrs[i] = &contacts[i]
	}
	SortManual(ptrs)
	ordered := make([]models.Contact, len(ptrs))
	for i, p := range ptrs {
		ordered[i] = *p
	}

	e.mu.Lock()
	e.contacts = ordered
	e.contactsLoaded = true
	e.markReady()
	e.mu.Unlock()
}

// SetCallLogs replaces the call log snapshot; only the latest call per contact is kept
func (e *QueueEngine) SetCallLogs(rows []*models.CallLogEntry) {
	last := make(map[uuid.UUID]time.Time, len(rows))
	for _, entry := range rows {
		if entry == nil {
			continue
		}
		if t, ok := last[entry.ContactID]; !ok || entry.Timestamp.After(t) {
			last[entry.ContactID] = entry.Timestamp
		}
	}

	e.mu.Lock()
	e.lastCall = last
	e.logsLoaded = true
	e.markReady()
	e.mu.Unlock()
}

// Attach feeds the engine from store subscriptions until they end. logs may be nil.
func (e *QueueEngine) Attach(contacts *repository.Subscription[models.Contact], logs *repository.Subscription[models.CallLogEntry]) {
	if contacts != nil {
		e.closers = append(e.closers, contacts.Close)
		e.wg.Add(1)
		go func() {
			defer e.wg.Done()
			for rows := range contacts.C() {
				e.SetContacts(rows)
			}
		}()
	}
	if logs != nil {
		e.closers = append(e.closers, logs.Close)
		e.wg.Add(1)
		go func() {
			defer e.wg.Done()
			for rows := range logs.C() {
				e.SetCallLogs(rows)
			}
		}()
	} else {
		e.mu.Lock()
		e.logsLoaded = true
		e.markReady()
		e.mu.Unlock()
	}
}

// Close ends the attached subscriptions
func (e *QueueEngine) Close() {
	for _, c := range e.closers {
		c()
	}
	e.wg.Wait()
}

// WaitReady blocks until the first snapshots have arrived
func (e *QueueEngine) WaitReady(ctx context.Context) error {
	select {
	case <-e.ready:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("%w: %v", ErrStoreNotReady, ctx.Err())
	}
}

// Contact returns a copy of one contact from the snapshot
func (e *QueueEngine) Contact(id uuid.UUID) (*models.Contact, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	for i := range e.contacts {
		if e.contacts[i].ID == id {
			c := e.contacts[i]
			return &c, true
		}
	}
	return nil, false
}

// Manual returns copies of all contacts in manual order
func (e *QueueEngine) Manual() []*models.Contact {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]*models.Contact, len(e.contacts))
	for i := range e.contacts {
		c := e.contacts[i]
		out[i] = &c
	}
	return out
}

func matchesSearch(c *models.Contact, q string) bool {
	if q == "" {
		return true
	}
	lq := strings.ToLower(q)
	if strings.Contains(strings.ToLower(c.Name), lq) ||
		strings.Contains(strings.ToLower(c.Organization), lq) ||
		strings.Contains(strings.ToLower(c.Title), lq) ||
		strings.Contains(c.Phone, q) {
		return true
	}
	if utils.IsPhoneQuery(q) {
		return strings.Contains(utils.PhoneDigits(c.Phone), utils.PhoneDigits(q))
	}
	return false
}

// Build derives a queue view from the latest snapshots
func (e *QueueEngine) Build(filter QueueFilter) QueueView {
	if filter.SortBy == "" {
		filter.SortBy = SortByScore
	}
	if filter.GroupBy == "" {
		filter.GroupBy = GroupByNone
	}
	search := strings.TrimSpace(filter.Search)
	region := utils.NormalizeRegion(filter.Region)

	e.mu.RLock()
	items := make([]QueueItem, 0, len(e.contacts))
	for i := range e.contacts {
		c := e.contacts[i]
		if filter.HideDNC && c.DoNotCall {
			continue
		}
		if region != "" && c.Region != region {
			continue
		}
		if !matchesSearch(&c, search) {
			continue
		}

		res := e.resolver.Resolve(c.Title, c.Timezone)
		if filter.InWindowOnly && !res.InWindow {
			continue
		}

		item := QueueItem{
			Contact:      c,
			Resolution:   res,
			Score:        Score(res.LocalHour, res.Window),
			Bucket:       e.resolver.Bucket(c.Timezone),
			DisplayPhone: utils.FormatDisplayPhone(c.Phone),
		}
		if t, ok := e.lastCall[c.ID]; ok {
			item.LastCallAt = &t
		}
		items = append(items, item)
	}
	e.mu.RUnlock()

	sortItems(items, filter.SortBy)

	view := QueueView{SortBy: filter.SortBy, GroupBy: filter.GroupBy}
	if filter.GroupBy == GroupByNone {
		view.Items = items
		return view
	}

	index := map[string]int{}
	for _, item := range items {
		label := groupLabel(item, filter.GroupBy)
		i, ok := index[label]
		if !ok {
			i = len(view.Groups)
			index[label] = i
			view.Groups = append(view.Groups, QueueGroup{Label: label})
		}
		view.Groups[i].Items = append(view.Groups[i].Items, item)
	}
	view.Items = make([]QueueItem, 0, len(items))
	for _, g := range view.Groups {
		view.Items = append(view.Items, g.Items...)
	}
	return view
}

// Next returns the head of the queue
func (e *QueueEngine) Next(filter QueueFilter) (*QueueItem, error) {
	view := e.Build(filter)
	if len(view.Items) == 0 {
		return nil, ErrQueueEmpty
	}
	head := view.Items[0]
	return &head, nil
}

func groupLabel(item QueueItem, by GroupBy) string {
	switch by {
	case GroupByOrganization:
		if strings.TrimSpace(item.Contact.Organization) == "" {
			return UnassignedGroup
		}
		return item.Contact.Organization
	case GroupByTimezone:
		return item.Bucket
	}
	return ""
}

// sortItems orders items stably; input arrives in manual order so ties keep it
func sortItems(items []QueueItem, by SortBy) {
	switch by {
	case SortByManual:
		return
	case SortByName:
		sort.SliceStable(items, func(i, j int) bool {
			a, b := strings.ToLower(items[i].Contact.Name), strings.ToLower(items[j].Contact.Name)
			return a < b
		})
	case SortByLastCall:
		// never-called contacts come first, then the longest-untouched
		sort.SliceStable(items, func(i, j int) bool {
			a, b := items[i].LastCallAt, items[j].LastCallAt
			switch {
			case a == nil && b == nil:
				return false
			case a == nil:
				return true
			case b == nil:
				return false
			}
			return a.Before(*b)
		})
	default:
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].Score < items[j].Score
		})
	}
}
