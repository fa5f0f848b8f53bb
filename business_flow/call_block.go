package businessflow

import (
	"math"
	"sync"
	"time"

	"github.com/amirphl/sdr-power-queue/utils"
)

// BlockStatus is a point-in-time view of a call block
type BlockStatus struct {
	Running      bool
	StartedAt    *time.Time
	CallsLogged  int
	ElapsedMs    int64
	Elapsed      string
	CallsPerHour int
}

// BlockSummary is reported when a block ends
type BlockSummary struct {
	CallsLogged  int
	ElapsedMs    int64
	Elapsed      string
	CallsPerHour int
}

// CallsPerHour rounds calls per elapsed hour; zero elapsed time yields 0
func CallsPerHour(calls int, elapsedMs int64) int {
	hours := float64(elapsedMs) / float64(time.Hour/time.Millisecond)
	if hours <= 0 {
		return 0
	}
	return int(math.Round(float64(calls) / hours))
}

// CallBlockSession is a timed calling sprint: Idle until started, Running until ended
type CallBlockSession struct {
	clock utils.Clock

	mu        sync.Mutex
	startedAt *time.Time
	calls     int
}

// NewCallBlockSession creates an idle session
func NewCallBlockSession(clock utils.Clock) *CallBlockSession {
	if clock == nil {
		clock = utils.SystemClock{}
	}
	return &CallBlockSession{clock: clock}
}

// Start begins a block; a running block is restarted with a zero counter
func (s *CallBlockSession) Start() BlockStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.clock.Now()
	s.startedAt = &now
	s.calls = 0
	return s.statusLocked()
}

// LogCall counts one call when running and returns the counter
func (s *CallBlockSession) LogCall() (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.startedAt == nil {
		return 0, false
	}
	s.calls++
	return s.calls, true
}

// End stops the block and reports its rate
func (s *CallBlockSession) End() (BlockSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.startedAt == nil {
		return BlockSummary{}, ErrBlockNotRunning
	}
	st := s.statusLocked()
	s.startedAt = nil
	s.calls = 0
	return BlockSummary{
		CallsLogged:  st.CallsLogged,
		ElapsedMs:    st.ElapsedMs,
		Elapsed:      st.Elapsed,
		CallsPerHour: st.CallsPerHour,
	}, nil
}

// Status reports the current state
func (s *CallBlockSession) Status() BlockStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.statusLocked()
}

func (s *CallBlockSession) statusLocked() BlockStatus {
	if s.startedAt == nil {
		return BlockStatus{Elapsed: utils.FormatElapsed(0)}
	}
	elapsed := s.clock.Now().Sub(*s.startedAt).Milliseconds()
	if elapsed < 0 {
		elapsed = 0
	}
	started := *s.startedAt
	return BlockStatus{
		Running:      true,
		StartedAt:    &started,
		CallsLogged:  s.calls,
		ElapsedMs:    elapsed,
		Elapsed:      utils.FormatElapsed(elapsed),
		CallsPerHour: CallsPerHour(s.calls, elapsed),
	}
}

// CallBlockRegistry holds one session per operator scope
type CallBlockRegistry struct {
	clock utils.Clock

	mu       sync.Mutex
	sessions map[string]*CallBlockSession
}

// NewCallBlockRegistry creates an empty registry
func NewCallBlockRegistry(clock utils.Clock) *CallBlockRegistry {
	return &CallBlockRegistry{clock: clock, sessions: make(map[string]*CallBlockSession)}
}

// Session returns the scope's session, creating an idle one on first use
func (r *CallBlockRegistry) Session(scope string) *CallBlockSession {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[scope]
	if !ok {
		s = NewCallBlockSession(r.clock)
		r.sessions[scope] = s
	}
	return s
}

// Running returns the status of every running block keyed by scope
func (r *CallBlockRegistry) Running() map[string]BlockStatus {
	r.mu.Lock()
	scopes := make([]string, 0, len(r.sessions))
	sessions := make([]*CallBlockSession, 0, len(r.sessions))
	for scope, s := range r.sessions {
		scopes = append(scopes, scope)
		sessions = append(sessions, s)
	}
	r.mu.Unlock()

	out := make(map[string]BlockStatus)
	for i, s := range sessions {
		if st := s.Status(); st.Running {
			out[scopes[i]] = st
		}
	}
	return out
}
