package businessflow

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/amirphl/sdr-power-queue/app/dto"
	"github.com/amirphl/sdr-power-queue/models"
	"github.com/amirphl/sdr-power-queue/repository"
	"github.com/amirphl/sdr-power-queue/utils"
	"github.com/xuri/excelize/v2"
)

// ExportFlow produces downloadable copies of an operator's contacts and call log
type ExportFlow interface {
	ContactsCSV(ctx context.Context, scope string) (string, []byte, error)
	ContactsExcel(ctx context.Context, scope string) (string, []byte, error)
	Backup(ctx context.Context, scope string) (*dto.BackupResponse, error)
}

// ExportFlowImpl implements ExportFlow
type ExportFlowImpl struct {
	contactRepo repository.ContactRepository
	logRepo     repository.CallLogRepository
	clock       utils.Clock
}

func NewExportFlow(contactRepo repository.ContactRepository, logRepo repository.CallLogRepository, clock utils.Clock) ExportFlow {
	if clock == nil {
		clock = utils.SystemClock{}
	}
	return &ExportFlowImpl{contactRepo: contactRepo, logRepo: logRepo, clock: clock}
}

var contactExportHeader = []string{
	"id",
	"name",
	"phone",
	"display_phone",
	"email",
	"organization",
	"title",
	"region",
	"timezone",
	"do_not_call",
	"notes",
	"order_key",
	"created_at",
	"updated_at",
}

var callLogExportHeader = []string{"id", "contact_id", "outcome", "outcome_label", "timestamp"}

func contactRecord(c *models.Contact) []string {
	return []string{
		c.ID.String(),
		c.Name,
		c.Phone,
		utils.FormatDisplayPhone(c.Phone),
		c.Email,
		c.Organization,
		c.Title,
		c.Region,
		c.Timezone,
		strconv.FormatBool(c.DoNotCall),
		c.Notes,
		strconv.FormatFloat(c.OrderKey, 'f', -1, 64),
		c.CreatedAt.UTC().Format(time.RFC3339),
		c.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func callLogRecord(e *models.CallLogEntry) []string {
	return []string{
		e.ID.String(),
		e.ContactID.String(),
		e.Outcome.String(),
		e.Outcome.Label(),
		e.Timestamp.UTC().Format(time.RFC3339),
	}
}

func (f *ExportFlowImpl) load(ctx context.Context, scope string) ([]*models.Contact, []*models.CallLogEntry, error) {
	contacts, err := f.contactRepo.ByFilter(ctx, models.ContactFilter{UserID: &scope}, "", 0, 0)
	if err != nil {
		return nil, nil, NewBusinessError("FETCH_CONTACTS_FAILED", "Failed to fetch contacts", err)
	}
	entries, err := f.logRepo.ByFilter(ctx, models.CallLogEntryFilter{UserID: &scope}, "", 0, 0)
	if err != nil {
		return nil, nil, NewBusinessError("FETCH_CALL_LOG_FAILED", "Failed to fetch call log", err)
	}
	return contacts, entries, nil
}

func (f *ExportFlowImpl) ContactsCSV(ctx context.Context, scope string) (string, []byte, error) {
	contacts, err := f.contactRepo.ByFilter(ctx, models.ContactFilter{UserID: &scope}, "", 0, 0)
	if err != nil {
		return "", nil, NewBusinessError("FETCH_CONTACTS_FAILED", "Failed to fetch contacts", err)
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(contactExportHeader); err != nil {
		return "", nil, NewBusinessError("CSV_WRITE_ERROR", "Failed to write CSV header", err)
	}
	for _, c := range contacts {
		if err := w.Write(contactRecord(c)); err != nil {
			return "", nil, NewBusinessError("CSV_WRITE_ERROR", "Failed to write CSV row", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", nil, NewBusinessError("CSV_WRITE_ERROR", "Failed to flush CSV", err)
	}

	filename := fmt.Sprintf("contacts_%s.csv", f.clock.Now().UTC().Format("20060102"))
	return filename, buf.Bytes(), nil
}

// ContactsExcel writes a workbook with a Contacts sheet and a Calls sheet
func (f *ExportFlowImpl) ContactsExcel(ctx context.Context, scope string) (string, []byte, error) {
	contacts, entries, err := f.load(ctx, scope)
	if err != nil {
		return "", nil, err
	}

	xl := excelize.NewFile()
	defer func() { _ = xl.Close() }()

	if err := xl.SetSheetName(xl.GetSheetName(0), "Contacts"); err != nil {
		return "", nil, NewBusinessError("EXCEL_WRITE_ERROR", "Failed to prepare workbook", err)
	}
	if _, err := xl.NewSheet("Calls"); err != nil {
		return "", nil, NewBusinessError("EXCEL_WRITE_ERROR", "Failed to prepare workbook", err)
	}

	_ = xl.SetSheetRow("Contacts", "A1", &contactExportHeader)
	for i, c := range contacts {
		record := contactRecord(c)
		cellRef, _ := excelize.CoordinatesToCellName(1, i+2)
		_ = xl.SetSheetRow("Contacts", cellRef, &record)
	}

	_ = xl.SetSheetRow("Calls", "A1", &callLogExportHeader)
	for i, e := range entries {
		record := callLogRecord(e)
		cellRef, _ := excelize.CoordinatesToCellName(1, i+2)
		_ = xl.SetSheetRow("Calls", cellRef, &record)
	}

	buf, err := xl.WriteToBuffer()
	if err != nil {
		return "", nil, NewBusinessError("EXCEL_WRITE_ERROR", "Failed to write Excel file", err)
	}
	filename := fmt.Sprintf("contacts_%s.xlsx", f.clock.Now().UTC().Format("20060102"))
	return filename, buf.Bytes(), nil
}

func (f *ExportFlowImpl) Backup(ctx context.Context, scope string) (*dto.BackupResponse, error) {
	contacts, entries, err := f.load(ctx, scope)
	if err != nil {
		return nil, err
	}
	resp := &dto.BackupResponse{
		ExportedAt: f.clock.Now().UTC().Format(time.RFC3339),
		Contacts:   make([]dto.ContactDTO, 0, len(contacts)),
		CallLog:    make([]dto.CallLogEntryDTO, 0, len(entries)),
	}
	for _, c := range contacts {
		resp.Contacts = append(resp.Contacts, ToContactDTO(*c))
	}
	for _, e := range entries {
		resp.CallLog = append(resp.CallLog, ToCallLogEntryDTO(*e))
	}
	return resp, nil
}
