package handlers

import (
	"github.com/amirphl/sdr-power-queue/app/dto"
	businessflow "github.com/amirphl/sdr-power-queue/business_flow"
	"github.com/gofiber/fiber/v3"
)

// QueueHandlerInterface defines the contract for the call queue handlers
type QueueHandlerInterface interface {
	Queue(c fiber.Ctx) error
	Next(c fiber.Ctx) error
	LogNext(c fiber.Ctx) error
	Reorder(c fiber.Ctx) error
	Move(c fiber.Ctx) error
}

// QueueHandler handles the prioritized call queue
type QueueHandler struct {
	baseHandler
	flow businessflow.DialerFlow
}

// NewQueueHandler creates a new queue handler
func NewQueueHandler(flow businessflow.DialerFlow) *QueueHandler {
	return &QueueHandler{
		baseHandler: newBaseHandler(),
		flow:        flow,
	}
}

func (h *QueueHandler) bindQueue(c fiber.Ctx, scope string) (*dto.QueueRequest, bool, error) {
	var req dto.QueueRequest
	if err := c.Bind().Query(&req); err != nil {
		return nil, false, h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid query parameters", "INVALID_REQUEST", err.Error())
	}
	if ok, err := h.validate(c, &req); !ok {
		return nil, false, err
	}
	req.Scope = scope
	return &req, true, nil
}

// Queue
// @Summary Call Queue
// @Description The operator's queue with call windows, scores and local times. Do-not-call contacts are hidden unless hide_dnc=false.
// @Tags Queue
// @Produce json
// @Security BearerAuth
// @Param q query string false "Search name, organization, title or phone"
// @Param region query string false "Two-letter region code"
// @Param hide_dnc query bool false "Hide do-not-call contacts (default true)"
// @Param in_window query bool false "Only contacts inside their call window"
// @Param sort query string false "score, name, lastCall or manual"
// @Param group_by query string false "none, organization or timezone"
// @Success 200 {object} dto.APIResponse{data=dto.QueueResponse}
// @Failure 400 {object} dto.APIResponse
// @Failure 503 {object} dto.APIResponse
// @Router /api/v1/queue [get]
func (h *QueueHandler) Queue(c fiber.Ctx) error {
	scope, ok := h.scope(c)
	if !ok {
		return nil
	}
	req, ok, err := h.bindQueue(c, scope)
	if !ok {
		return err
	}

	ctx, cancel := h.createRequestContext(c, scope, "/api/v1/queue")
	defer cancel()
	res, err := h.flow.Queue(ctx, req)
	if err != nil {
		return h.flowError(c, err, "QUEUE_FAILED", "Failed to build queue")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Queue retrieved successfully", res)
}

// Next
// @Summary Next Contact
// @Description The head of the queue for the given filters
// @Tags Queue
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.QueueItemDTO}
// @Failure 404 {object} dto.APIResponse "Queue is empty"
// @Router /api/v1/queue/next [get]
func (h *QueueHandler) Next(c fiber.Ctx) error {
	scope, ok := h.scope(c)
	if !ok {
		return nil
	}
	req, ok, err := h.bindQueue(c, scope)
	if !ok {
		return err
	}

	ctx, cancel := h.createRequestContext(c, scope, "/api/v1/queue/next")
	defer cancel()
	res, err := h.flow.Next(ctx, req)
	if err != nil {
		return h.flowError(c, err, "QUEUE_FAILED", "Failed to build queue")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Next contact retrieved successfully", res)
}

// LogNext
// @Summary Log Outcome For Next Contact
// @Description Record an outcome (value, label or shortcut 1-4) for the head of the queue
// @Tags Queue
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.LogNextCallRequest true "Outcome and queue filters"
// @Success 201 {object} dto.APIResponse{data=dto.LogCallResponse}
// @Failure 400 {object} dto.APIResponse
// @Failure 404 {object} dto.APIResponse
// @Router /api/v1/queue/next/calls [post]
func (h *QueueHandler) LogNext(c fiber.Ctx) error {
	scope, ok := h.scope(c)
	if !ok {
		return nil
	}

	var req dto.LogNextCallRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if ok, err := h.validate(c, &req); !ok {
		return err
	}

	ctx, cancel := h.createRequestContext(c, scope, "/api/v1/queue/next/calls")
	defer cancel()
	res, err := h.flow.LogNextOutcome(ctx, scope, &req)
	if err != nil {
		return h.flowError(c, err, "LOG_OUTCOME_FAILED", "Failed to record call outcome")
	}
	return h.SuccessResponse(c, fiber.StatusCreated, "Call logged", res)
}

// Reorder
// @Summary Reorder Contact
// @Description Place a contact between two neighbour keys of the manual order. Rejected while grouped.
// @Tags Queue
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.ReorderRequest true "Contact and neighbour keys"
// @Success 200 {object} dto.APIResponse{data=dto.ReorderResponse}
// @Failure 400 {object} dto.APIResponse
// @Failure 409 {object} dto.APIResponse "Queue is grouped"
// @Router /api/v1/queue/reorder [post]
func (h *QueueHandler) Reorder(c fiber.Ctx) error {
	scope, ok := h.scope(c)
	if !ok {
		return nil
	}

	var req dto.ReorderRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if ok, err := h.validate(c, &req); !ok {
		return err
	}
	req.Scope = scope

	ctx, cancel := h.createRequestContext(c, scope, "/api/v1/queue/reorder")
	defer cancel()
	res, err := h.flow.Reorder(ctx, &req)
	if err != nil {
		return h.flowError(c, err, "REORDER_FAILED", "Failed to save the new order")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Contact moved", res)
}

// Move
// @Summary Move Contact
// @Description Place a contact at a position of the manual order
// @Tags Queue
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.MoveRequest true "Contact and target index"
// @Success 200 {object} dto.APIResponse{data=dto.ReorderResponse}
// @Failure 400 {object} dto.APIResponse
// @Failure 409 {object} dto.APIResponse "Queue is grouped"
// @Router /api/v1/queue/move [post]
func (h *QueueHandler) Move(c fiber.Ctx) error {
	scope, ok := h.scope(c)
	if !ok {
		return nil
	}

	var req dto.MoveRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if ok, err := h.validate(c, &req); !ok {
		return err
	}
	req.Scope = scope

	ctx, cancel := h.createRequestContext(c, scope, "/api/v1/queue/move")
	defer cancel()
	res, err := h.flow.Move(ctx, &req)
	if err != nil {
		return h.flowError(c, err, "REORDER_FAILED", "Failed to save the new order")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Contact moved", res)
}
