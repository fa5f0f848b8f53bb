package businessflow

import (
	"context"
	"testing"
	"time"

	"github.com/amirphl/sdr-power-queue/models"
	"github.com/amirphl/sdr-power-queue/utils"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type engineFixture struct {
	engine *QueueEngine
	byName map[string]*models.Contact
}

// newEngineFixture loads the five sample roles. At testNow the scores are
// Wilson 3 (Denver), Smith 4 (LA), Johnson 1 (NY), Chen 2 (Chicago), Davis 1 (Chicago).
func newEngineFixture(t *testing.T) *engineFixture {
	t.Helper()
	resolver := NewWindowResolver(utils.NewFixedClock(testNow), nil, nil, nil)
	engine := NewQueueEngine(resolver, quietLogger())

	rows := []*models.Contact{
		{Name: "John Smith", Phone: "+14155550101", Organization: "UC Berkeley", Title: "Distance Ed Director", Region: "CA", Timezone: "America/Los_Angeles"},
		{Name: "Sarah Johnson", Phone: "+12125550102", Organization: "NYU", Title: "LMS Administrator", Region: "NY", Timezone: "America/New_York"},
		{Name: "Mike Chen", Phone: "+13125550103", Organization: "Northwestern", Title: "ADA Coordinator", Region: "IL", Timezone: "America/Chicago"},
		{Name: "Emily Davis", Phone: "+17135550104", Organization: "Rice University", Title: "Testing Manager", Region: "TX", Timezone: "America/Chicago"},
		{Name: "Robert Wilson", Phone: "+13035550105", Organization: "CU Boulder", Title: "Instructional Designer", Region: "CO", Timezone: "America/Denver"},
	}
	byName := map[string]*models.Contact{}
	for i, c := range rows {
		c.ID = uuid.New()
		c.UserID = "op-1"
		c.OrderKey = float64(i+1) * utils.OrderKeyStep
		c.CreatedAt = testNow
		byName[c.Name] = c
	}
	engine.SetContacts(rows)
	engine.SetCallLogs(nil)
	return &engineFixture{engine: engine, byName: byName}
}

func names(items []QueueItem) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.Contact.Name)
	}
	return out
}

func TestQueueEngineBuild(t *testing.T) {
	f := newEngineFixture(t)

	t.Run("ScoreOrderKeepsManualOrderOnTies", func(t *testing.T) {
		view := f.engine.Build(QueueFilter{})
		assert.Equal(t, []string{"Sarah Johnson", "Emily Davis", "Mike Chen", "Robert Wilson", "John Smith"}, names(view.Items))
		assert.Nil(t, view.Groups)
		assert.Equal(t, SortByScore, view.SortBy)
	})

	t.Run("ItemsCarryDerivedFields", func(t *testing.T) {
		view := f.engine.Build(QueueFilter{})
		head := view.Items[0]
		assert.Equal(t, CallWindow{10, 16}, head.Resolution.Window)
		assert.Equal(t, 12, head.Resolution.LocalHour)
		assert.Equal(t, "12:00 PM", head.Resolution.LocalTime)
		assert.True(t, head.Resolution.InWindow)
		assert.Equal(t, 1.0, head.Score)
		assert.Equal(t, "Eastern", head.Bucket)
		assert.Equal(t, "(212) 555 - 0102", head.DisplayPhone)
		assert.Nil(t, head.LastCallAt)
	})

	t.Run("InWindowOnly", func(t *testing.T) {
		view := f.engine.Build(QueueFilter{InWindowOnly: true})
		assert.NotContains(t, names(view.Items), "John Smith")
		assert.Len(t, view.Items, 4)
	})

	t.Run("SearchByText", func(t *testing.T) {
		view := f.engine.Build(QueueFilter{Search: "RICE"})
		assert.Equal(t, []string{"Emily Davis"}, names(view.Items))

		view = f.engine.Build(QueueFilter{Search: "coordinator"})
		assert.Equal(t, []string{"Mike Chen"}, names(view.Items))
	})

	t.Run("SearchByPhoneDigits", func(t *testing.T) {
		view := f.engine.Build(QueueFilter{Search: "(312) 555"})
		assert.Equal(t, []string{"Mike Chen"}, names(view.Items))
	})

	t.Run("TextWithDigitsIsNotAPhoneSearch", func(t *testing.T) {
		view := f.engine.Build(QueueFilter{Search: "Room 2"})
		assert.Empty(t, view.Items)

		view = f.engine.Build(QueueFilter{Search: "Boulder 303"})
		assert.Empty(t, view.Items)
	})

	t.Run("Region", func(t *testing.T) {
		view := f.engine.Build(QueueFilter{Region: "tx"})
		assert.Equal(t, []string{"Emily Davis"}, names(view.Items))
	})

	t.Run("SortByName", func(t *testing.T) {
		view := f.engine.Build(QueueFilter{SortBy: SortByName})
		assert.Equal(t, []string{"Emily Davis", "John Smith", "Mike Chen", "Robert Wilson", "Sarah Johnson"}, names(view.Items))
	})

	t.Run("SortManual", func(t *testing.T) {
		view := f.engine.Build(QueueFilter{SortBy: SortByManual})
		assert.Equal(t, []string{"John Smith", "Sarah Johnson", "Mike Chen", "Emily Davis", "Robert Wilson"}, names(view.Items))
	})

	t.Run("GroupByTimezone", func(t *testing.T) {
		view := f.engine.Build(QueueFilter{GroupBy: GroupByTimezone})
		require.Len(t, view.Groups, 4)
		assert.Equal(t, "Eastern", view.Groups[0].Label)
		assert.Equal(t, "Central", view.Groups[1].Label)
		assert.Equal(t, []string{"Emily Davis", "Mike Chen"}, names(view.Groups[1].Items))
		assert.Equal(t, "Mountain", view.Groups[2].Label)
		assert.Equal(t, "Pacific", view.Groups[3].Label)
		assert.Equal(t, []string{"Sarah Johnson", "Emily Davis", "Mike Chen", "Robert Wilson", "John Smith"}, names(view.Items))
	})

	t.Run("GroupByOrganization", func(t *testing.T) {
		view := f.engine.Build(QueueFilter{GroupBy: GroupByOrganization, SortBy: SortByName})
		require.Len(t, view.Groups, 5)
		assert.Equal(t, "Rice University", view.Groups[0].Label)
	})
}

func TestQueueEngineGroupOrderIgnoresBucketOrder(t *testing.T) {
	resolver := NewWindowResolver(utils.NewFixedClock(testNow), nil, nil, []TimezoneBucket{
		{Label: "East", Match: []string{"New_York"}},
		{Label: "West", Match: []string{"Los_Angeles"}},
	})
	engine := NewQueueEngine(resolver, quietLogger())
	engine.SetContacts([]*models.Contact{
		{ID: uuid.New(), Name: "West Lead", Title: "Registrar", Timezone: "America/Los_Angeles", OrderKey: 1},
		{ID: uuid.New(), Name: "East Lead", Title: "Registrar", Timezone: "America/New_York", OrderKey: 2},
	})
	engine.SetCallLogs(nil)

	view := engine.Build(QueueFilter{GroupBy: GroupByTimezone, SortBy: SortByManual})
	require.Len(t, view.Groups, 2)
	assert.Equal(t, "West", view.Groups[0].Label)
	assert.Equal(t, "East", view.Groups[1].Label)
}

func TestQueueEngineDoNotCall(t *testing.T) {
	f := newEngineFixture(t)
	rows := f.engine.Manual()
	for _, c := range rows {
		if c.Name == "Sarah Johnson" {
			c.DoNotCall = true
		}
	}
	f.engine.SetContacts(rows)

	hidden := f.engine.Build(QueueFilter{HideDNC: true})
	assert.NotContains(t, names(hidden.Items), "Sarah Johnson")

	shown := f.engine.Build(QueueFilter{HideDNC: false})
	assert.Contains(t, names(shown.Items), "Sarah Johnson")
}

func TestQueueEngineLastCallSort(t *testing.T) {
	f := newEngineFixture(t)
	johnson := f.byName["Sarah Johnson"]
	davis := f.byName["Emily Davis"]

	f.engine.SetCallLogs([]*models.CallLogEntry{
		{ID: uuid.New(), ContactID: davis.ID, Outcome: models.CallOutcomeNoAnswer, Timestamp: testNow.Add(-time.Hour)},
		{ID: uuid.New(), ContactID: johnson.ID, Outcome: models.CallOutcomeNoAnswer, Timestamp: testNow.Add(-3 * time.Hour)},
		{ID: uuid.New(), ContactID: davis.ID, Outcome: models.CallOutcomeNoAnswer, Timestamp: testNow.Add(-5 * time.Hour)},
	})

	view := f.engine.Build(QueueFilter{SortBy: SortByLastCall})
	assert.Equal(t, []string{"John Smith", "Mike Chen", "Robert Wilson", "Sarah Johnson", "Emily Davis"}, names(view.Items))
	require.NotNil(t, view.Items[4].LastCallAt)
	assert.True(t, view.Items[4].LastCallAt.Equal(testNow.Add(-time.Hour)))
}

func TestQueueEngineSnapshots(t *testing.T) {
	f := newEngineFixture(t)

	t.Run("Next", func(t *testing.T) {
		head, err := f.engine.Next(QueueFilter{})
		require.NoError(t, err)
		assert.Equal(t, "Sarah Johnson", head.Contact.Name)
	})

	t.Run("SnapshotReplaces", func(t *testing.T) {
		f.engine.SetContacts([]*models.Contact{f.byName["Mike Chen"]})
		assert.Equal(t, []string{"Mike Chen"}, names(f.engine.Build(QueueFilter{}).Items))
	})

	t.Run("EmptySnapshot", func(t *testing.T) {
		f.engine.SetContacts(nil)
		assert.Empty(t, f.engine.Build(QueueFilter{}).Items)
		_, err := f.engine.Next(QueueFilter{})
		assert.ErrorIs(t, err, ErrQueueEmpty)
	})

	t.Run("CallerCopiesDoNotLeak", func(t *testing.T) {
		f.engine.SetContacts([]*models.Contact{f.byName["Mike Chen"]})
		rows := f.engine.Manual()
		rows[0].Name = "changed"
		c, ok := f.engine.Contact(f.byName["Mike Chen"].ID)
		require.True(t, ok)
		assert.Equal(t, "Mike Chen", c.Name)
	})
}

func TestQueueEngineWaitReady(t *testing.T) {
	resolver := NewWindowResolver(utils.NewFixedClock(testNow), nil, nil, nil)
	engine := NewQueueEngine(resolver, quietLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, engine.WaitReady(ctx), ErrStoreNotReady)

	engine.SetContacts(nil)
	engine.SetCallLogs(nil)
	assert.NoError(t, engine.WaitReady(context.Background()))
}

func TestParseSortAndGroup(t *testing.T) {
	s, err := ParseSortBy("")
	require.NoError(t, err)
	assert.Equal(t, SortByScore, s)

	_, err = ParseSortBy("random")
	assert.ErrorIs(t, err, ErrInvalidSort)

	g, err := ParseGroupBy("timezone")
	require.NoError(t, err)
	assert.Equal(t, GroupByTimezone, g)

	_, err = ParseGroupBy("state")
	assert.ErrorIs(t, err, ErrInvalidGrouping)
}
