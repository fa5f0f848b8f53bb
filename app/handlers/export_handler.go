package handlers

import (
	businessflow "github.com/amirphl/sdr-power-queue/business_flow"
	"github.com/gofiber/fiber/v3"
)

// ExportHandler serves downloadable copies of the operator's data
type ExportHandler struct {
	baseHandler
	flow businessflow.ExportFlow
}

// NewExportHandler creates a new export handler
func NewExportHandler(flow businessflow.ExportFlow) *ExportHandler {
	return &ExportHandler{
		baseHandler: newBaseHandler(),
		flow:        flow,
	}
}

// ContactsCSV
// @Summary Export Contacts (CSV)
// @Tags Export
// @Produce text/csv
// @Security BearerAuth
// @Success 200 {file} file
// @Router /api/v1/export/contacts.csv [get]
func (h *ExportHandler) ContactsCSV(c fiber.Ctx) error {
	scope, ok := h.scope(c)
	if !ok {
		return nil
	}

	ctx, cancel := h.createRequestContext(c, scope, "/api/v1/export/contacts.csv")
	defer cancel()
	filename, data, err := h.flow.ContactsCSV(ctx, scope)
	if err != nil {
		return h.flowError(c, err, "EXPORT_FAILED", "Failed to export contacts")
	}

	c.Set("Content-Type", "text/csv; charset=utf-8")
	c.Attachment(filename)
	return c.Status(fiber.StatusOK).Send(data)
}

// ContactsExcel
// @Summary Export Contacts (XLSX)
// @Description Workbook with a Contacts sheet and a Calls sheet
// @Tags Export
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Success 200 {file} file
// @Router /api/v1/export/contacts.xlsx [get]
func (h *ExportHandler) ContactsExcel(c fiber.Ctx) error {
	scope, ok := h.scope(c)
	if !ok {
		return nil
	}

	ctx, cancel := h.createRequestContext(c, scope, "/api/v1/export/contacts.xlsx")
	defer cancel()
	filename, data, err := h.flow.ContactsExcel(ctx, scope)
	if err != nil {
		return h.flowError(c, err, "EXPORT_FAILED", "Failed to export contacts")
	}

	c.Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Attachment(filename)
	return c.Status(fiber.StatusOK).Send(data)
}

// Backup
// @Summary Backup
// @Description Every contact and call log entry of the operator
// @Tags Export
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.BackupResponse}
// @Router /api/v1/export/backup.json [get]
func (h *ExportHandler) Backup(c fiber.Ctx) error {
	scope, ok := h.scope(c)
	if !ok {
		return nil
	}

	ctx, cancel := h.createRequestContext(c, scope, "/api/v1/export/backup.json")
	defer cancel()
	res, err := h.flow.Backup(ctx, scope)
	if err != nil {
		return h.flowError(c, err, "EXPORT_FAILED", "Failed to export backup")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Backup exported", res)
}
