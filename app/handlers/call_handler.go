package handlers

import (
	"github.com/amirphl/sdr-power-queue/app/dto"
	businessflow "github.com/amirphl/sdr-power-queue/business_flow"
	"github.com/gofiber/fiber/v3"
)

// CallHandlerInterface defines the contract for call logging, stats and call block handlers
type CallHandlerInterface interface {
	LogCall(c fiber.Ctx) error
	History(c fiber.Ctx) error
	Stats(c fiber.Ctx) error
	StartBlock(c fiber.Ctx) error
	EndBlock(c fiber.Ctx) error
	BlockStatus(c fiber.Ctx) error
}

// CallHandler handles call outcomes and call blocks
type CallHandler struct {
	baseHandler
	flow businessflow.DialerFlow
}

// NewCallHandler creates a new call handler
func NewCallHandler(flow businessflow.DialerFlow) *CallHandler {
	return &CallHandler{
		baseHandler: newBaseHandler(),
		flow:        flow,
	}
}

// LogCall
// @Summary Log Call Outcome
// @Description Record an outcome for a contact. A do-not-call outcome also flags the contact;
// @Description when flagging fails the entry is kept and flag_error is set.
// @Tags Calls
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Contact ID"
// @Param request body dto.LogCallRequest true "Outcome"
// @Success 201 {object} dto.APIResponse{data=dto.LogCallResponse}
// @Failure 400 {object} dto.APIResponse
// @Failure 404 {object} dto.APIResponse
// @Failure 500 {object} dto.APIResponse
// @Router /api/v1/contacts/{id}/calls [post]
func (h *CallHandler) LogCall(c fiber.Ctx) error {
	scope, ok := h.scope(c)
	if !ok {
		return nil
	}

	var req dto.LogCallRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if ok, err := h.validate(c, &req); !ok {
		return err
	}
	req.Scope = scope
	req.ContactID = c.Params("id")

	ctx, cancel := h.createRequestContext(c, scope, "/api/v1/contacts/:id/calls")
	defer cancel()
	res, err := h.flow.LogOutcome(ctx, &req)
	if err != nil {
		return h.flowError(c, err, "LOG_OUTCOME_FAILED", "Failed to record call outcome")
	}
	return h.SuccessResponse(c, fiber.StatusCreated, "Call logged", res)
}

// History
// @Summary Call History
// @Tags Calls
// @Produce json
// @Security BearerAuth
// @Param id path string true "Contact ID"
// @Success 200 {object} dto.APIResponse{data=[]dto.CallLogEntryDTO}
// @Failure 400 {object} dto.APIResponse
// @Router /api/v1/contacts/{id}/calls [get]
func (h *CallHandler) History(c fiber.Ctx) error {
	scope, ok := h.scope(c)
	if !ok {
		return nil
	}

	ctx, cancel := h.createRequestContext(c, scope, "/api/v1/contacts/:id/calls")
	defer cancel()
	res, err := h.flow.History(ctx, scope, c.Params("id"))
	if err != nil {
		return h.flowError(c, err, "HISTORY_FAILED", "Failed to load call history")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Call history retrieved successfully", res)
}

// Stats
// @Summary Call Stats
// @Description Outcome counts, per-outcome shares and conversation rate over the whole call log
// @Tags Calls
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.StatsResponse}
// @Router /api/v1/stats [get]
func (h *CallHandler) Stats(c fiber.Ctx) error {
	scope, ok := h.scope(c)
	if !ok {
		return nil
	}

	ctx, cancel := h.createRequestContext(c, scope, "/api/v1/stats")
	defer cancel()
	res, err := h.flow.Stats(ctx, scope)
	if err != nil {
		return h.flowError(c, err, "STATS_FAILED", "Failed to compute stats")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Stats retrieved successfully", res)
}

// StartBlock
// @Summary Start Call Block
// @Description Start a timed calling sprint; a running block is restarted
// @Tags Call Block
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.BlockStatusResponse}
// @Router /api/v1/block/start [post]
func (h *CallHandler) StartBlock(c fiber.Ctx) error {
	scope, ok := h.scope(c)
	if !ok {
		return nil
	}

	ctx, cancel := h.createRequestContext(c, scope, "/api/v1/block/start")
	defer cancel()
	res, err := h.flow.StartBlock(ctx, scope)
	if err != nil {
		return h.flowError(c, err, "START_BLOCK_FAILED", "Failed to start call block")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Call block started", res)
}

// EndBlock
// @Summary End Call Block
// @Tags Call Block
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.BlockSummaryResponse}
// @Failure 409 {object} dto.APIResponse "No block is running"
// @Router /api/v1/block/end [post]
func (h *CallHandler) EndBlock(c fiber.Ctx) error {
	scope, ok := h.scope(c)
	if !ok {
		return nil
	}

	ctx, cancel := h.createRequestContext(c, scope, "/api/v1/block/end")
	defer cancel()
	res, err := h.flow.EndBlock(ctx, scope)
	if err != nil {
		return h.flowError(c, err, "END_BLOCK_FAILED", "Failed to end call block")
	}
	return h.SuccessResponse(c, fiber.StatusOK, res.Message, res)
}

// BlockStatus
// @Summary Call Block Status
// @Tags Call Block
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.BlockStatusResponse}
// @Router /api/v1/block [get]
func (h *CallHandler) BlockStatus(c fiber.Ctx) error {
	scope, ok := h.scope(c)
	if !ok {
		return nil
	}

	ctx, cancel := h.createRequestContext(c, scope, "/api/v1/block")
	defer cancel()
	res, err := h.flow.BlockStatus(ctx, scope)
	if err != nil {
		return h.flowError(c, err, "BLOCK_STATUS_FAILED", "Failed to read call block")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Call block status", res)
}
