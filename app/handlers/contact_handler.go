package handlers

import (
	"github.com/amirphl/sdr-power-queue/app/dto"
	businessflow "github.com/amirphl/sdr-power-queue/business_flow"
	"github.com/gofiber/fiber/v3"
)

// ContactHandlerInterface defines the contract for the lead directory handlers
type ContactHandlerInterface interface {
	List(c fiber.Ctx) error
	Create(c fiber.Ctx) error
	Get(c fiber.Ctx) error
	Update(c fiber.Ctx) error
	UpdateNotes(c fiber.Ctx) error
	ToggleDNC(c fiber.Ctx) error
	Delete(c fiber.Ctx) error
	Dial(c fiber.Ctx) error
}

// ContactHandler handles lead directory requests
type ContactHandler struct {
	baseHandler
	flow businessflow.DialerFlow
}

// NewContactHandler creates a new contact handler
func NewContactHandler(flow businessflow.DialerFlow) *ContactHandler {
	return &ContactHandler{
		baseHandler: newBaseHandler(),
		flow:        flow,
	}
}

// List Contacts
// @Summary List Contacts
// @Description List the operator's contacts in manual order, optionally filtered and grouped
// @Tags Contacts
// @Produce json
// @Security BearerAuth
// @Param region query string false "Two-letter region code"
// @Param dnc query bool false "Filter on the do-not-call flag"
// @Param group_by query string false "none, organization or timezone"
// @Success 200 {object} dto.APIResponse{data=dto.ListContactsResponse}
// @Failure 400 {object} dto.APIResponse
// @Failure 401 {object} dto.APIResponse
// @Router /api/v1/contacts [get]
func (h *ContactHandler) List(c fiber.Ctx) error {
	scope, ok := h.scope(c)
	if !ok {
		return nil
	}

	var req dto.ListContactsRequest
	if err := c.Bind().Query(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid query parameters", "INVALID_REQUEST", err.Error())
	}
	if ok, err := h.validate(c, &req); !ok {
		return err
	}
	req.Scope = scope

	ctx, cancel := h.createRequestContext(c, scope, "/api/v1/contacts")
	defer cancel()
	res, err := h.flow.ListContacts(ctx, &req)
	if err != nil {
		return h.flowError(c, err, "LIST_CONTACTS_FAILED", "Failed to list contacts")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Contacts retrieved successfully", res)
}

// Create Contact
// @Summary Create Contact
// @Description Add a contact; the phone is normalized and the timezone derived from the region when omitted
// @Tags Contacts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateContactRequest true "Contact"
// @Success 201 {object} dto.APIResponse{data=dto.ContactDTO}
// @Failure 400 {object} dto.APIResponse
// @Failure 401 {object} dto.APIResponse
// @Failure 500 {object} dto.APIResponse
// @Router /api/v1/contacts [post]
func (h *ContactHandler) Create(c fiber.Ctx) error {
	scope, ok := h.scope(c)
	if !ok {
		return nil
	}

	var req dto.CreateContactRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if ok, err := h.validate(c, &req); !ok {
		return err
	}
	req.Scope = scope

	ctx, cancel := h.createRequestContext(c, scope, "/api/v1/contacts")
	defer cancel()
	res, err := h.flow.CreateContact(ctx, &req)
	if err != nil {
		return h.flowError(c, err, "CREATE_CONTACT_FAILED", "Failed to create contact")
	}
	return h.SuccessResponse(c, fiber.StatusCreated, "Contact created successfully", res)
}

// Get Contact
// @Summary Get Contact
// @Description A contact with its call history, newest first
// @Tags Contacts
// @Produce json
// @Security BearerAuth
// @Param id path string true "Contact ID"
// @Success 200 {object} dto.APIResponse{data=dto.ContactDetailResponse}
// @Failure 400 {object} dto.APIResponse
// @Failure 404 {object} dto.APIResponse
// @Router /api/v1/contacts/{id} [get]
func (h *ContactHandler) Get(c fiber.Ctx) error {
	scope, ok := h.scope(c)
	if !ok {
		return nil
	}

	ctx, cancel := h.createRequestContext(c, scope, "/api/v1/contacts/:id")
	defer cancel()
	res, err := h.flow.GetContact(ctx, scope, c.Params("id"))
	if err != nil {
		return h.flowError(c, err, "GET_CONTACT_FAILED", "Failed to load contact")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Contact retrieved successfully", res)
}

// Update Contact
// @Summary Update Contact
// @Description Patch contact fields; absent fields are left unchanged
// @Tags Contacts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Contact ID"
// @Param request body dto.UpdateContactRequest true "Fields to change"
// @Success 200 {object} dto.APIResponse{data=dto.ContactDTO}
// @Failure 400 {object} dto.APIResponse
// @Failure 404 {object} dto.APIResponse
// @Router /api/v1/contacts/{id} [patch]
func (h *ContactHandler) Update(c fiber.Ctx) error {
	scope, ok := h.scope(c)
	if !ok {
		return nil
	}

	var req dto.UpdateContactRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if ok, err := h.validate(c, &req); !ok {
		return err
	}
	req.Scope = scope
	req.ContactID = c.Params("id")

	ctx, cancel := h.createRequestContext(c, scope, "/api/v1/contacts/:id")
	defer cancel()
	res, err := h.flow.UpdateContact(ctx, &req)
	if err != nil {
		return h.flowError(c, err, "UPDATE_CONTACT_FAILED", "Failed to update contact")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Contact updated successfully", res)
}

// UpdateNotes
// @Summary Update Contact Notes
// @Tags Contacts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Contact ID"
// @Param request body dto.UpdateNotesRequest true "Notes"
// @Success 200 {object} dto.APIResponse{data=dto.ContactDTO}
// @Failure 400 {object} dto.APIResponse
// @Failure 404 {object} dto.APIResponse
// @Router /api/v1/contacts/{id}/notes [put]
func (h *ContactHandler) UpdateNotes(c fiber.Ctx) error {
	scope, ok := h.scope(c)
	if !ok {
		return nil
	}

	var req dto.UpdateNotesRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if ok, err := h.validate(c, &req); !ok {
		return err
	}

	ctx, cancel := h.createRequestContext(c, scope, "/api/v1/contacts/:id/notes")
	defer cancel()
	res, err := h.flow.UpdateNotes(ctx, scope, c.Params("id"), &req)
	if err != nil {
		return h.flowError(c, err, "UPDATE_NOTES_FAILED", "Failed to update notes")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Notes updated successfully", res)
}

// ToggleDNC
// @Summary Toggle Do-Not-Call
// @Description Flip the do-not-call flag of a contact
// @Tags Contacts
// @Produce json
// @Security BearerAuth
// @Param id path string true "Contact ID"
// @Success 200 {object} dto.APIResponse{data=dto.ContactDTO}
// @Failure 404 {object} dto.APIResponse
// @Router /api/v1/contacts/{id}/dnc [post]
func (h *ContactHandler) ToggleDNC(c fiber.Ctx) error {
	scope, ok := h.scope(c)
	if !ok {
		return nil
	}

	ctx, cancel := h.createRequestContext(c, scope, "/api/v1/contacts/:id/dnc")
	defer cancel()
	res, err := h.flow.ToggleDNC(ctx, scope, c.Params("id"))
	if err != nil {
		return h.flowError(c, err, "TOGGLE_DNC_FAILED", "Failed to update do-not-call flag")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Do-not-call flag updated", res)
}

// Delete Contact
// @Summary Delete Contact
// @Description Delete a contact and its call log
// @Tags Contacts
// @Produce json
// @Security BearerAuth
// @Param id path string true "Contact ID"
// @Success 200 {object} dto.APIResponse{data=dto.DeleteContactResponse}
// @Failure 400 {object} dto.APIResponse
// @Failure 500 {object} dto.APIResponse
// @Router /api/v1/contacts/{id} [delete]
func (h *ContactHandler) Delete(c fiber.Ctx) error {
	scope, ok := h.scope(c)
	if !ok {
		return nil
	}

	ctx, cancel := h.createRequestContext(c, scope, "/api/v1/contacts/:id")
	defer cancel()
	res, err := h.flow.DeleteContact(ctx, scope, c.Params("id"))
	if err != nil {
		return h.flowError(c, err, "DELETE_CONTACT_FAILED", "Failed to delete contact")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Contact deleted successfully", res)
}

// Dial
// @Summary Dial Contact
// @Description The tel: URI handed to the operating system dialer
// @Tags Contacts
// @Produce json
// @Security BearerAuth
// @Param id path string true "Contact ID"
// @Success 200 {object} dto.APIResponse{data=dto.DialResponse}
// @Failure 404 {object} dto.APIResponse
// @Router /api/v1/contacts/{id}/dial [get]
func (h *ContactHandler) Dial(c fiber.Ctx) error {
	scope, ok := h.scope(c)
	if !ok {
		return nil
	}

	ctx, cancel := h.createRequestContext(c, scope, "/api/v1/contacts/:id/dial")
	defer cancel()
	res, err := h.flow.Dial(ctx, scope, c.Params("id"))
	if err != nil {
		return h.flowError(c, err, "DIAL_FAILED", "Failed to prepare call")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Dial intent ready", res)
}
