package businessflow

import (
	"strings"
	"sync"
	"time"

	"github.com/amirphl/sdr-power-queue/utils"
)

// CallWindow is an inclusive range of local hours in which a role is usually reachable
type CallWindow struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Midpoint is the most convenient hour of the window
func (w CallWindow) Midpoint() float64 {
	return float64(w.Start+w.End) / 2
}

// Contains reports whether hour lies in the window, both ends included
func (w CallWindow) Contains(hour int) bool {
	return hour >= w.Start && hour <= w.End
}

// WindowRule maps a title keyword to a call window
type WindowRule struct {
	Keyword string
	Window  CallWindow
}

// DefaultCallWindow applies to titles that match no rule
var DefaultCallWindow = CallWindow{Start: utils.DefaultWindowStart, End: utils.DefaultWindowEnd}

// DefaultWindowRules is evaluated in order; the first keyword found in the title wins
var DefaultWindowRules = []WindowRule{
	{Keyword: "distance ed", Window: CallWindow{Start: 10, End: 16}},
	{Keyword: "lms", Window: CallWindow{Start: 10, End: 16}},
	{Keyword: "ada", Window: CallWindow{Start: 11, End: 15}},
	{Keyword: "accessibility", Window: CallWindow{Start: 11, End: 15}},
	{Keyword: "testing", Window: CallWindow{Start: 9, End: 15}},
	{Keyword: "instructional", Window: CallWindow{Start: 10, End: 16}},
}

// TimezoneBucket groups zones whose name contains any of Match
type TimezoneBucket struct {
	Label string
	Match []string
}

// OtherBucket labels zones matching no bucket
const OtherBucket = "Other"

// DefaultTimezoneBuckets is evaluated in order
var DefaultTimezoneBuckets = []TimezoneBucket{
	{Label: "Pacific", Match: []string{"Los_Angeles"}},
	{Label: "Mountain", Match: []string{"Denver", "Phoenix"}},
	{Label: "Central", Match: []string{"Chicago"}},
	{Label: "Eastern", Match: []string{"New_York"}},
	{Label: "Atlantic", Match: []string{"Halifax"}},
}

// WindowResolution is everything derived from a title and a zone at one instant
type WindowResolution struct {
	Window    CallWindow
	LocalHour int
	LocalTime string
	InWindow  bool
}

// WindowResolver derives call windows and local times. Unknown zones fall back to the
// machine-local zone; resolution never fails.
type WindowResolver struct {
	clock         utils.Clock
	rules         []WindowRule
	defaultWindow CallWindow
	buckets       []TimezoneBucket

	mu        sync.RWMutex
	locations map[string]*time.Location
}

// NewWindowResolver creates a resolver. Nil or empty arguments select the defaults.
func NewWindowResolver(clock utils.Clock, rules []WindowRule, defaultWindow *CallWindow, buckets []TimezoneBucket) *WindowResolver {
	if clock == nil {
		clock = utils.SystemClock{}
	}
	if len(rules) == 0 {
		rules = DefaultWindowRules
	}
	def := DefaultCallWindow
	if defaultWindow != nil {
		def = *defaultWindow
	}
	if len(buckets) == 0 {
		buckets = DefaultTimezoneBuckets
	}

	normalized := make([]WindowRule, 0, len(rules))
	for _, r := range rules {
		kw := strings.ToLower(strings.TrimSpace(r.Keyword))
		if kw == "" {
			continue
		}
		normalized = append(normalized, WindowRule{Keyword: kw, Window: r.Window})
	}

	return &WindowResolver{
		clock:         clock,
		rules:         normalized,
		defaultWindow: def,
		buckets:       buckets,
		locations:     make(map[string]*time.Location),
	}
}

// Clock returns the resolver's time source
func (r *WindowResolver) Clock() utils.Clock {
	return r.clock
}

// WindowFor returns the window of the first rule whose keyword occurs in the lower-cased title
func (r *WindowResolver) WindowFor(title string) CallWindow {
	t := strings.ToLower(title)
	for _, rule := range r.rules {
		if strings.Contains(t, rule.Keyword) {
			return rule.Window
		}
	}
	return r.defaultWindow
}

// location loads and caches a zone; nil means the zone is unknown
func (r *WindowResolver) location(tz string) *time.Location {
	tz = strings.TrimSpace(tz)
	if tz == "" {
		return nil
	}

	r.mu.RLock()
	loc, ok := r.locations[tz]
	r.mu.RUnlock()
	if ok {
		return loc
	}

	loc, err := time.LoadLocation(tz)
	if err != nil {
		loc = nil
	}
	r.mu.Lock()
	r.locations[tz] = loc
	r.mu.Unlock()
	return loc
}

func (r *WindowResolver) localNow(tz string) time.Time {
	now := r.clock.Now()
	if loc := r.location(tz); loc != nil {
		return now.In(loc)
	}
	return now.In(time.Local)
}

// LocalHour returns the hour of day (0-23) in tz
func (r *WindowResolver) LocalHour(tz string) int {
	return r.localNow(tz).Hour()
}

// LocalTime returns the 12-hour clock time in tz, e.g. "3:04 PM"
func (r *WindowResolver) LocalTime(tz string) string {
	return r.localNow(tz).Format("3:04 PM")
}

// Resolve combines WindowFor and LocalHour for one contact
func (r *WindowResolver) Resolve(title, tz string) WindowResolution {
	now := r.localNow(tz)
	w := r.WindowFor(title)
	return WindowResolution{
		Window:    w,
		LocalHour: now.Hour(),
		LocalTime: now.Format("3:04 PM"),
		InWindow:  w.Contains(now.Hour()),
	}
}

// Bucket returns the label of the first bucket matching the zone name
func (r *WindowResolver) Bucket(tz string) string {
	for _, b := range r.buckets {
		for _, m := range b.Match {
			if m != "" && strings.Contains(tz, m) {
				return b.Label
			}
		}
	}
	return OtherBucket
}
