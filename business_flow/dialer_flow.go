package businessflow

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/amirphl/sdr-power-queue/app/dto"
	"github.com/amirphl/sdr-power-queue/app/services"
	"github.com/amirphl/sdr-power-queue/models"
	"github.com/amirphl/sdr-power-queue/repository"
	"github.com/amirphl/sdr-power-queue/utils"
	"github.com/google/uuid"
)

// readyTimeout bounds the wait for the first snapshot of a scope
const readyTimeout = 5 * time.Second

// DialerFlow is the operator-facing surface: queue, reorder, call outcomes, blocks and the directory
type DialerFlow interface {
	ContactFlow
	Queue(ctx context.Context, req *dto.QueueRequest) (*dto.QueueResponse, error)
	Next(ctx context.Context, req *dto.QueueRequest) (*dto.QueueItemDTO, error)
	Reorder(ctx context.Context, req *dto.ReorderRequest) (*dto.ReorderResponse, error)
	Move(ctx context.Context, req *dto.MoveRequest) (*dto.ReorderResponse, error)
	LogOutcome(ctx context.Context, req *dto.LogCallRequest) (*dto.LogCallResponse, error)
	LogNextOutcome(ctx context.Context, scope string, req *dto.LogNextCallRequest) (*dto.LogCallResponse, error)
	History(ctx context.Context, scope, contactID string) ([]dto.CallLogEntryDTO, error)
	DeleteContact(ctx context.Context, scope, contactID string) (*dto.DeleteContactResponse, error)
	Stats(ctx context.Context, scope string) (*dto.StatsResponse, error)
	StartBlock(ctx context.Context, scope string) (*dto.BlockStatusResponse, error)
	EndBlock(ctx context.Context, scope string) (*dto.BlockSummaryResponse, error)
	BlockStatus(ctx context.Context, scope string) (*dto.BlockStatusResponse, error)
	ActiveScopes() []string
	RunningBlocks() map[string]BlockStatus
	Close()
}

// DialerFlowImpl implements DialerFlow
type DialerFlowImpl struct {
	ContactFlow

	contactRepo repository.ContactRepository
	logRepo     repository.CallLogRepository
	ledger      *CallLedger
	resolver    *WindowResolver
	blocks      *CallBlockRegistry
	notifier    services.NotificationService
	logger      *log.Logger

	baseCtx context.Context
	cancel  context.CancelFunc

	mu       sync.Mutex
	engines  map[string]*QueueEngine
	building map[string]*engineBuild
}

// NewDialerFlow creates the dialer facade. Queue engines are created per scope on first use
// and fed by store subscriptions until Close.
func NewDialerFlow(
	contactFlow ContactFlow,
	contactRepo repository.ContactRepository,
	logRepo repository.CallLogRepository,
	ledger *CallLedger,
	resolver *WindowResolver,
	blocks *CallBlockRegistry,
	notifier services.NotificationService,
	logger *log.Logger,
) DialerFlow {
	if logger == nil {
		logger = log.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &DialerFlowImpl{
		ContactFlow: contactFlow,
		contactRepo: contactRepo,
		logRepo:     logRepo,
		ledger:      ledger,
		resolver:    resolver,
		blocks:      blocks,
		notifier:    notifier,
		logger:      logger,
		baseCtx:     ctx,
		cancel:      cancel,
		engines:     make(map[string]*QueueEngine),
		building:    make(map[string]*engineBuild),
	}
}

// engineBuild is a scope's engine under construction; done closes when engine or err is set
type engineBuild struct {
	done   chan struct{}
	engine *QueueEngine
	err    error
}

// engineFor returns the scope's engine once its first snapshots have arrived. Only one request
// per scope builds the engine; the store is never called with f.mu held.
func (f *DialerFlowImpl) engineFor(ctx context.Context, scope string) (*QueueEngine, error) {
	f.mu.Lock()
	engine, ok := f.engines[scope]
	if !ok {
		build, running := f.building[scope]
		if !running {
			build = &engineBuild{done: make(chan struct{})}
			f.building[scope] = build
			f.mu.Unlock()
			f.runBuild(ctx, scope, build)
		} else {
			f.mu.Unlock()
		}

		select {
		case <-build.done:
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %v", ErrStoreNotReady, ctx.Err())
		}
		if build.err != nil {
			return nil, build.err
		}
		engine = build.engine
	} else {
		f.mu.Unlock()
	}

	waitCtx, cancel := context.WithTimeout(ctx, readyTimeout)
	defer cancel()
	if err := engine.WaitReady(waitCtx); err != nil {
		return nil, err
	}
	return engine, nil
}

func (f *DialerFlowImpl) runBuild(ctx context.Context, scope string, build *engineBuild) {
	engine, err := f.buildEngine(ctx, scope)

	f.mu.Lock()
	delete(f.building, scope)
	if err == nil && f.baseCtx.Err() != nil {
		err = NewBusinessError("QUEUE_CLOSED", "Dialer is shutting down", f.baseCtx.Err())
	}
	if err == nil {
		f.engines[scope] = engine
	}
	f.mu.Unlock()

	if err != nil && engine != nil {
		engine.Close()
		engine = nil
	}
	build.engine, build.err = engine, err
	close(build.done)
}

func (f *DialerFlowImpl) buildEngine(ctx context.Context, scope string) (*QueueEngine, error) {
	if _, err := f.EnsureSamples(ctx, scope); err != nil {
		f.logger.Printf("dialer: sample seeding for %s failed: %v", scope, err)
	}

	contacts, err := f.contactRepo.Subscribe(f.baseCtx, scope, models.ContactFilter{}, "")
	if err != nil {
		return nil, NewBusinessError("QUEUE_SUBSCRIBE_FAILED", "Failed to subscribe to contacts", err)
	}
	logs, err := f.logRepo.Subscribe(f.baseCtx, scope, models.CallLogEntryFilter{}, "")
	if err != nil {
		contacts.Close()
		return nil, NewBusinessError("QUEUE_SUBSCRIBE_FAILED", "Failed to subscribe to call log", err)
	}

	engine := NewQueueEngine(f.resolver, f.logger)
	engine.Attach(contacts, logs)
	return engine, nil
}

func queueFilter(req *dto.QueueRequest) (QueueFilter, error) {
	sortBy, err := ParseSortBy(req.SortBy)
	if err != nil {
		return QueueFilter{}, err
	}
	groupBy, err := ParseGroupBy(req.GroupBy)
	if err != nil {
		return QueueFilter{}, err
	}
	hideDNC := true
	if req.HideDNC != nil {
		hideDNC = *req.HideDNC
	}
	return QueueFilter{
		Search:       req.Search,
		Region:       req.Region,
		HideDNC:      hideDNC,
		InWindowOnly: req.InWindowOnly,
		SortBy:       sortBy,
		GroupBy:      groupBy,
	}, nil
}

// reportFailure counts a failed write and tells the operator; the queue view is left as is
func (f *DialerFlowImpl) reportFailure(scope, action string, err error) {
	var be *BusinessError
	if !errors.As(err, &be) {
		return
	}
	writeFailuresTotal.WithLabelValues(action).Inc()
	f.logger.Printf("dialer: %s failed for scope %s: %v", action, scope, err)
	f.notify(scope, services.KindError, be.Message)
}

func (f *DialerFlowImpl) CreateContact(ctx context.Context, req *dto.CreateContactRequest) (*dto.ContactDTO, error) {
	out, err := f.ContactFlow.CreateContact(ctx, req)
	if err != nil {
		f.reportFailure(req.Scope, "create_contact", err)
	}
	return out, err
}

func (f *DialerFlowImpl) UpdateContact(ctx context.Context, req *dto.UpdateContactRequest) (*dto.ContactDTO, error) {
	out, err := f.ContactFlow.UpdateContact(ctx, req)
	if err != nil {
		f.reportFailure(req.Scope, "update_contact", err)
	}
	return out, err
}

func (f *DialerFlowImpl) UpdateNotes(ctx context.Context, scope, contactID string, req *dto.UpdateNotesRequest) (*dto.ContactDTO, error) {
	out, err := f.ContactFlow.UpdateNotes(ctx, scope, contactID, req)
	if err != nil {
		f.reportFailure(scope, "update_notes", err)
	}
	return out, err
}

func (f *DialerFlowImpl) ToggleDNC(ctx context.Context, scope, contactID string) (*dto.ContactDTO, error) {
	out, err := f.ContactFlow.ToggleDNC(ctx, scope, contactID)
	if err != nil {
		f.reportFailure(scope, "toggle_dnc", err)
	}
	return out, err
}

func (f *DialerFlowImpl) notify(scope, kind, message string) {
	if f.notifier == nil {
		return
	}
	f.notifier.Publish(scope, services.Notification{Event: services.EventToast, Kind: kind, Message: message})
}

func (f *DialerFlowImpl) Queue(ctx context.Context, req *dto.QueueRequest) (*dto.QueueResponse, error) {
	filter, err := queueFilter(req)
	if err != nil {
		return nil, err
	}
	engine, err := f.engineFor(ctx, req.Scope)
	if err != nil {
		return nil, err
	}
	return ToQueueResponse(engine.Build(filter)), nil
}

func (f *DialerFlowImpl) Next(ctx context.Context, req *dto.QueueRequest) (*dto.QueueItemDTO, error) {
	filter, err := queueFilter(req)
	if err != nil {
		return nil, err
	}
	engine, err := f.engineFor(ctx, req.Scope)
	if err != nil {
		return nil, err
	}
	head, err := engine.Next(filter)
	if err != nil {
		return nil, err
	}
	out := ToQueueItemDTO(*head)
	return &out, nil
}

// manualWithout returns the manual order minus the moving contact
func manualWithout(engine *QueueEngine, id uuid.UUID) []*models.Contact {
	all := engine.Manual()
	out := make([]*models.Contact, 0, len(all))
	for _, c := range all {
		if c.ID != id {
			out = append(out, c)
		}
	}
	return out
}

func (f *DialerFlowImpl) requireContact(ctx context.Context, scope string, id uuid.UUID) error {
	contact, err := f.contactRepo.ByID(ctx, scope, id)
	if err != nil {
		return NewBusinessError("REORDER_FAILED", "Failed to load contact", err)
	}
	if contact == nil {
		return ErrContactNotFound
	}
	return nil
}

func (f *DialerFlowImpl) applyPlacement(ctx context.Context, scope string, id uuid.UUID, p Placement) (*dto.ReorderResponse, error) {
	updates := append(p.Updates, models.OrderKeyUpdate{ContactID: id, OrderKey: p.OrderKey})
	if err := f.contactRepo.UpdateOrderKeys(ctx, scope, updates); err != nil {
		be := NewBusinessError("REORDER_FAILED", "Failed to save the new order", err)
		f.reportFailure(scope, "reorder", be)
		return nil, be
	}
	if p.Renumbered {
		reorderRenumbersTotal.Inc()
		f.logger.Printf("dialer: renumbered %d contacts for scope %s", len(p.Updates), scope)
	}
	return &dto.ReorderResponse{ContactID: id.String(), OrderKey: p.OrderKey, Renumbered: p.Renumbered}, nil
}

func (f *DialerFlowImpl) Reorder(ctx context.Context, req *dto.ReorderRequest) (*dto.ReorderResponse, error) {
	groupBy, err := ParseGroupBy(req.GroupBy)
	if err != nil {
		return nil, err
	}
	if groupBy != GroupByNone {
		return nil, ErrReorderWhileGrouped
	}
	id, err := parseContactID(req.ContactID)
	if err != nil {
		return nil, err
	}
	if err := f.requireContact(ctx, req.Scope, id); err != nil {
		return nil, err
	}

	now := utils.UnixMilli(f.resolver.Clock().Now())
	if !NeedsRenumber(req.PrevKey, req.NextKey) {
		return f.applyPlacement(ctx, req.Scope, id, Placement{OrderKey: KeyBetween(req.PrevKey, req.NextKey, now)})
	}

	engine, err := f.engineFor(ctx, req.Scope)
	if err != nil {
		return nil, err
	}
	ordered := manualWithout(engine, id)
	idx := insertionIndex(ordered, req.PrevKey, req.NextKey)
	return f.applyPlacement(ctx, req.Scope, id, PlaceAt(ordered, idx, now))
}

func (f *DialerFlowImpl) Move(ctx context.Context, req *dto.MoveRequest) (*dto.ReorderResponse, error) {
	groupBy, err := ParseGroupBy(req.GroupBy)
	if err != nil {
		return nil, err
	}
	if groupBy != GroupByNone {
		return nil, ErrReorderWhileGrouped
	}
	id, err := parseContactID(req.ContactID)
	if err != nil {
		return nil, err
	}
	if err := f.requireContact(ctx, req.Scope, id); err != nil {
		return nil, err
	}

	engine, err := f.engineFor(ctx, req.Scope)
	if err != nil {
		return nil, err
	}
	ordered := manualWithout(engine, id)
	if req.ToIndex < 0 || req.ToIndex > len(ordered) {
		return nil, fmt.Errorf("%w: %d not in [0, %d]", ErrInvalidMoveIndex, req.ToIndex, len(ordered))
	}
	now := utils.UnixMilli(f.resolver.Clock().Now())
	return f.applyPlacement(ctx, req.Scope, id, PlaceAt(ordered, req.ToIndex, now))
}

func (f *DialerFlowImpl) logOutcome(ctx context.Context, scope string, id uuid.UUID, rawOutcome string) (*dto.LogCallResponse, error) {
	outcome, err := models.ParseCallOutcome(rawOutcome)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidOutcome, err)
	}

	result, err := f.ledger.LogOutcome(ctx, scope, id, outcome)
	if err != nil {
		f.reportFailure(scope, "log_outcome", err)
		return nil, err
	}
	callsLoggedTotal.WithLabelValues(outcome.String()).Inc()

	calls, active := f.blocks.Session(scope).LogCall()
	resp := &dto.LogCallResponse{
		Entry:       ToCallLogEntryDTO(result.Entry),
		DNCFlagged:  result.DNCFlagged,
		BlockCalls:  calls,
		BlockActive: active,
	}
	if result.FlagErr != nil {
		dncFlagFailuresTotal.Inc()
		resp.FlagError = result.FlagErr.Error()
		f.reportFailure(scope, "flag_dnc", result.FlagErr)
	}
	return resp, nil
}

func (f *DialerFlowImpl) LogOutcome(ctx context.Context, req *dto.LogCallRequest) (*dto.LogCallResponse, error) {
	id, err := parseContactID(req.ContactID)
	if err != nil {
		return nil, err
	}
	return f.logOutcome(ctx, req.Scope, id, req.Outcome)
}

// LogNextOutcome records an outcome for the head of the queue
func (f *DialerFlowImpl) LogNextOutcome(ctx context.Context, scope string, req *dto.LogNextCallRequest) (*dto.LogCallResponse, error) {
	// validate before touching the queue
	if _, err := models.ParseCallOutcome(req.Outcome); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidOutcome, err)
	}
	q := req.Queue
	q.Scope = scope
	head, err := f.Next(ctx, &q)
	if err != nil {
		return nil, err
	}
	id, err := parseContactID(head.Contact.ID)
	if err != nil {
		return nil, err
	}
	return f.logOutcome(ctx, scope, id, req.Outcome)
}

func (f *DialerFlowImpl) History(ctx context.Context, scope, contactID string) ([]dto.CallLogEntryDTO, error) {
	id, err := parseContactID(contactID)
	if err != nil {
		return nil, err
	}
	entries, err := f.ledger.History(ctx, scope, id)
	if err != nil {
		return nil, err
	}
	out := make([]dto.CallLogEntryDTO, 0, len(entries))
	for _, e := range entries {
		out = append(out, ToCallLogEntryDTO(*e))
	}
	return out, nil
}

func (f *DialerFlowImpl) DeleteContact(ctx context.Context, scope, contactID string) (*dto.DeleteContactResponse, error) {
	id, err := parseContactID(contactID)
	if err != nil {
		return nil, err
	}
	removed, err := f.ledger.DeleteContact(ctx, scope, id)
	if err != nil {
		f.reportFailure(scope, "delete_contact", err)
		return nil, err
	}
	f.notify(scope, services.KindSuccess, "Contact deleted")
	return &dto.DeleteContactResponse{ContactID: id.String(), RemovedEntries: removed}, nil
}

func (f *DialerFlowImpl) Stats(ctx context.Context, scope string) (*dto.StatsResponse, error) {
	stats, err := f.ledger.Stats(ctx, scope)
	if err != nil {
		return nil, err
	}
	return ToStatsResponse(*stats), nil
}

func (f *DialerFlowImpl) StartBlock(ctx context.Context, scope string) (*dto.BlockStatusResponse, error) {
	st := f.blocks.Session(scope).Start()
	f.notify(scope, services.KindSuccess, "Call block started")
	return ToBlockStatusResponse(st), nil
}

func (f *DialerFlowImpl) EndBlock(ctx context.Context, scope string) (*dto.BlockSummaryResponse, error) {
	summary, err := f.blocks.Session(scope).End()
	if err != nil {
		return nil, err
	}
	blockCallsPerHour.Set(float64(summary.CallsPerHour))
	msg := fmt.Sprintf("Block ended: %d calls, %d calls/hour", summary.CallsLogged, summary.CallsPerHour)
	f.notify(scope, services.KindInfo, msg)
	return &dto.BlockSummaryResponse{
		CallsLogged:  summary.CallsLogged,
		ElapsedMs:    summary.ElapsedMs,
		Elapsed:      summary.Elapsed,
		CallsPerHour: summary.CallsPerHour,
		Message:      msg,
	}, nil
}

func (f *DialerFlowImpl) BlockStatus(ctx context.Context, scope string) (*dto.BlockStatusResponse, error) {
	return ToBlockStatusResponse(f.blocks.Session(scope).Status()), nil
}

// ActiveScopes lists the scopes whose queue is being kept up to date
func (f *DialerFlowImpl) ActiveScopes() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.engines))
	for scope := range f.engines {
		out = append(out, scope)
	}
	sort.Strings(out)
	return out
}

func (f *DialerFlowImpl) RunningBlocks() map[string]BlockStatus {
	return f.blocks.Running()
}

// Close ends every store subscription
func (f *DialerFlowImpl) Close() {
	f.cancel()
	f.mu.Lock()
	engines := f.engines
	f.engines = make(map[string]*QueueEngine)
	f.mu.Unlock()
	for _, e := range engines {
		e.Close()
	}
}
