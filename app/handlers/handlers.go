// Package handlers contains HTTP request handlers and presentation layer logic for the API endpoints
package handlers

import (
	"context"
	"fmt"
	"log"

	"github.com/amirphl/sdr-power-queue/app/dto"
	"github.com/amirphl/sdr-power-queue/app/middleware"
	businessflow "github.com/amirphl/sdr-power-queue/business_flow"
	"github.com/amirphl/sdr-power-queue/utils"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

// baseHandler carries what every dialer handler shares: the response envelope, request
// validation and the request context
type baseHandler struct {
	validator *validator.Validate
}

func newBaseHandler() baseHandler {
	return baseHandler{validator: validator.New()}
}

func (h *baseHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *baseHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// validate runs struct validation and writes a 400 on failure; ok is false when a response was written
func (h *baseHandler) validate(c fiber.Ctx, req any) (bool, error) {
	if err := h.validator.Struct(req); err != nil {
		var validationErrors []string
		if verrs, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range verrs {
				validationErrors = append(validationErrors, getValidationErrorMessage(fe))
			}
		} else {
			validationErrors = append(validationErrors, err.Error())
		}
		return false, h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors)
	}
	return true, nil
}

// scope returns the operator scope set by the auth middleware; ok is false when a 401 was written
func (h *baseHandler) scope(c fiber.Ctx) (string, bool) {
	return middleware.RequireScope(c)
}

// createRequestContext creates a context with request-scoped values for the flows
func (h *baseHandler) createRequestContext(c fiber.Ctx, scope, endpoint string) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(context.Background(), utils.RequestTimeout)
	ctx = context.WithValue(ctx, utils.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	ctx = context.WithValue(ctx, utils.ScopeKey, scope)
	return ctx, cancel
}

// flowError maps a business flow error onto a response
func (h *baseHandler) flowError(c fiber.Ctx, err error, fallbackCode, fallbackMessage string) error {
	switch {
	case businessflow.IsContactNotFound(err):
		return h.ErrorResponse(c, fiber.StatusNotFound, "Contact not found", "CONTACT_NOT_FOUND", nil)
	case businessflow.IsContactIDInvalid(err):
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid contact ID", "INVALID_CONTACT_ID", nil)
	case businessflow.IsEmptyPatch(err):
		return h.ErrorResponse(c, fiber.StatusBadRequest, "No fields to update", "EMPTY_PATCH", nil)
	case businessflow.IsInvalidOutcome(err):
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid call outcome", "INVALID_OUTCOME", err.Error())
	case businessflow.IsValidationError(err):
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", []string{err.Error()})
	case businessflow.IsQueueEmpty(err):
		return h.ErrorResponse(c, fiber.StatusNotFound, "Queue is empty", "QUEUE_EMPTY", nil)
	case businessflow.IsReorderWhileGrouped(err):
		return h.ErrorResponse(c, fiber.StatusConflict, "Manual reorder is only available when the queue is not grouped", "REORDER_WHILE_GROUPED", nil)
	case businessflow.IsInvalidMoveIndex(err):
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Move index is out of range", "INVALID_MOVE_INDEX", err.Error())
	case businessflow.IsBlockNotRunning(err):
		return h.ErrorResponse(c, fiber.StatusConflict, "No call block is running", "BLOCK_NOT_RUNNING", nil)
	case businessflow.IsStoreNotReady(err):
		return h.ErrorResponse(c, fiber.StatusServiceUnavailable, "Contacts are still loading, try again", "STORE_NOT_READY", nil)
	}

	if be, ok := err.(*businessflow.BusinessError); ok {
		log.Printf("%s: %v", be.Code, be)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, be.Message, be.Code, nil)
	}
	log.Printf("%s: %v", fallbackCode, err)
	return h.ErrorResponse(c, fiber.StatusInternalServerError, fallbackMessage, fallbackCode, nil)
}

func getValidationErrorMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return err.Field() + " is required"
	case "email":
		return "Invalid email format"
	case "min":
		return err.Field() + " must be at least " + err.Param()
	case "max":
		return err.Field() + " must be at most " + err.Param() + " characters"
	case "len":
		return err.Field() + " must be exactly " + err.Param() + " characters"
	case "alpha":
		return err.Field() + " must contain only letters"
	case "oneof":
		return err.Field() + " must be one of: " + err.Param()
	case "uuid":
		return err.Field() + " must be a valid UUID"
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", err.Field(), err.Param())
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", err.Field(), err.Param())
	default:
		return err.Field() + " is invalid"
	}
}
