package businessflow

import (
	"context"
	"log"
	"strings"

	"github.com/amirphl/sdr-power-queue/app/dto"
	"github.com/amirphl/sdr-power-queue/models"
	"github.com/amirphl/sdr-power-queue/repository"
	"github.com/amirphl/sdr-power-queue/utils"
	"github.com/google/uuid"
)

// ContactFlow defines the lead directory operations
type ContactFlow interface {
	CreateContact(ctx context.Context, req *dto.CreateContactRequest) (*dto.ContactDTO, error)
	UpdateContact(ctx context.Context, req *dto.UpdateContactRequest) (*dto.ContactDTO, error)
	UpdateNotes(ctx context.Context, scope, contactID string, req *dto.UpdateNotesRequest) (*dto.ContactDTO, error)
	ToggleDNC(ctx context.Context, scope, contactID string) (*dto.ContactDTO, error)
	GetContact(ctx context.Context, scope, contactID string) (*dto.ContactDetailResponse, error)
	ListContacts(ctx context.Context, req *dto.ListContactsRequest) (*dto.ListContactsResponse, error)
	Dial(ctx context.Context, scope, contactID string) (*dto.DialResponse, error)
	EnsureSamples(ctx context.Context, scope string) (int, error)
}

// ContactFlowImpl implements ContactFlow
type ContactFlowImpl struct {
	contactRepo     repository.ContactRepository
	ledger          *CallLedger
	resolver        *WindowResolver
	defaultTimezone string
	seedSamples     bool
	logger          *log.Logger
}

// NewContactFlow creates a new contact flow
func NewContactFlow(contactRepo repository.ContactRepository, ledger *CallLedger, resolver *WindowResolver, defaultTimezone string, seedSamples bool, logger *log.Logger) ContactFlow {
	if logger == nil {
		logger = log.Default()
	}
	return &ContactFlowImpl{
		contactRepo:     contactRepo,
		ledger:          ledger,
		resolver:        resolver,
		defaultTimezone: defaultTimezone,
		seedSamples:     seedSamples,
		logger:          logger,
	}
}

// NewContactInput holds the add-form fields after trimming
type NewContactInput struct {
	Name         string
	Phone        string
	Email        string
	Organization string
	Title        string
	Region       string
	Timezone     string
	Notes        string
}

// BuildContact validates the input and applies the defaults of a new contact. Nothing is written.
func BuildContact(scope string, in NewContactInput, defaultTimezone string, clock utils.Clock) (*models.Contact, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, ErrContactNameRequired
	}
	phone := utils.NormalizePhone(in.Phone)
	if phone == "" {
		return nil, ErrContactPhoneRequired
	}
	org := strings.TrimSpace(in.Organization)
	if org == "" {
		return nil, ErrContactOrganizationRequired
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, ErrContactTitleRequired
	}
	if clock == nil {
		clock = utils.SystemClock{}
	}

	now := clock.Now().UTC()
	region := utils.NormalizeRegion(in.Region)
	return &models.Contact{
		ID:           uuid.New(),
		UserID:       scope,
		Name:         name,
		Phone:        phone,
		Email:        strings.TrimSpace(in.Email),
		Organization: org,
		Title:        title,
		Region:       region,
		Timezone:     utils.ResolveTimezone(in.Timezone, region, defaultTimezone),
		DoNotCall:    false,
		Notes:        in.Notes,
		OrderKey:     utils.UnixMilli(now),
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

func (f *ContactFlowImpl) CreateContact(ctx context.Context, req *dto.CreateContactRequest) (*dto.ContactDTO, error) {
	contact, err := BuildContact(req.Scope, NewContactInput{
		Name:         req.Name,
		Phone:        req.Phone,
		Email:        req.Email,
		Organization: req.Organization,
		Title:        req.Title,
		Region:       req.Region,
		Timezone:     req.Timezone,
		Notes:        req.Notes,
	}, f.defaultTimezone, f.resolver.Clock())
	if err != nil {
		return nil, err
	}

	if err := f.contactRepo.Save(ctx, contact); err != nil {
		return nil, NewBusinessError("CREATE_CONTACT_FAILED", "Failed to create contact", err)
	}

	out := ToContactDTO(*contact)
	return &out, nil
}

// patchFromRequest builds a store patch. Phone is re-normalized; a region change without an
// explicit zone re-derives the zone.
func (f *ContactFlowImpl) patchFromRequest(req *dto.UpdateContactRequest) (models.ContactPatch, error) {
	var patch models.ContactPatch
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return patch, ErrContactNameRequired
		}
		patch.Name = &name
	}
	if req.Phone != nil {
		phone := utils.NormalizePhone(*req.Phone)
		if phone == "" {
			return patch, ErrContactPhoneRequired
		}
		patch.Phone = &phone
	}
	if req.Organization != nil {
		org := strings.TrimSpace(*req.Organization)
		if org == "" {
			return patch, ErrContactOrganizationRequired
		}
		patch.Organization = &org
	}
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return patch, ErrContactTitleRequired
		}
		patch.Title = &title
	}
	if req.Email != nil {
		patch.Email = utils.ToPtr(strings.TrimSpace(*req.Email))
	}
	if req.Region != nil {
		region := utils.NormalizeRegion(*req.Region)
		patch.Region = &region
		if req.Timezone == nil {
			if tz := utils.TimezoneForRegion(region); tz != "" {
				patch.Timezone = &tz
			}
		}
	}
	if tz := utils.TrimPtr(req.Timezone); tz != nil && *tz != "" {
		patch.Timezone = tz
	}
	if req.Notes != nil {
		patch.Notes = req.Notes
	}
	if patch.IsEmpty() {
		return patch, ErrEmptyPatch
	}
	return patch, nil
}

func (f *ContactFlowImpl) UpdateContact(ctx context.Context, req *dto.UpdateContactRequest) (*dto.ContactDTO, error) {
	id, err := parseContactID(req.ContactID)
	if err != nil {
		return nil, err
	}
	patch, err := f.patchFromRequest(req)
	if err != nil {
		return nil, err
	}
	return f.applyPatch(ctx, req.Scope, id, patch, "UPDATE_CONTACT_FAILED")
}

func (f *ContactFlowImpl) UpdateNotes(ctx context.Context, scope, contactID string, req *dto.UpdateNotesRequest) (*dto.ContactDTO, error) {
	id, err := parseContactID(contactID)
	if err != nil {
		return nil, err
	}
	return f.applyPatch(ctx, scope, id, models.ContactPatch{Notes: &req.Notes}, "UPDATE_NOTES_FAILED")
}

func (f *ContactFlowImpl) ToggleDNC(ctx context.Context, scope, contactID string) (*dto.ContactDTO, error) {
	id, err := parseContactID(contactID)
	if err != nil {
		return nil, err
	}
	contact, err := f.getContact(ctx, scope, id)
	if err != nil {
		return nil, err
	}
	return f.applyPatch(ctx, scope, id, models.ContactPatch{DoNotCall: utils.ToPtr(!contact.DoNotCall)}, "TOGGLE_DNC_FAILED")
}

func (f *ContactFlowImpl) applyPatch(ctx context.Context, scope string, id uuid.UUID, patch models.ContactPatch, code string) (*dto.ContactDTO, error) {
	if err := f.contactRepo.Update(ctx, scope, id, patch); err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrContactNotFound
		}
		return nil, NewBusinessError(code, "Failed to update contact", err)
	}
	contact, err := f.getContact(ctx, scope, id)
	if err != nil {
		return nil, err
	}
	out := ToContactDTO(*contact)
	return &out, nil
}

func (f *ContactFlowImpl) getContact(ctx context.Context, scope string, id uuid.UUID) (*models.Contact, error) {
	contact, err := f.contactRepo.ByID(ctx, scope, id)
	if err != nil {
		return nil, NewBusinessError("GET_CONTACT_FAILED", "Failed to load contact", err)
	}
	if contact == nil {
		return nil, ErrContactNotFound
	}
	return contact, nil
}

func (f *ContactFlowImpl) GetContact(ctx context.Context, scope, contactID string) (*dto.ContactDetailResponse, error) {
	id, err := parseContactID(contactID)
	if err != nil {
		return nil, err
	}
	contact, err := f.getContact(ctx, scope, id)
	if err != nil {
		return nil, err
	}
	entries, err := f.ledger.History(ctx, scope, id)
	if err != nil {
		return nil, err
	}

	resp := &dto.ContactDetailResponse{
		Contact: ToContactDTO(*contact),
		History: make([]dto.CallLogEntryDTO, 0, len(entries)),
	}
	for _, e := range entries {
		resp.History = append(resp.History, ToCallLogEntryDTO(*e))
	}
	return resp, nil
}

func (f *ContactFlowImpl) ListContacts(ctx context.Context, req *dto.ListContactsRequest) (*dto.ListContactsResponse, error) {
	groupBy, err := ParseGroupBy(req.GroupBy)
	if err != nil {
		return nil, err
	}

	filter := models.ContactFilter{UserID: &req.Scope, DoNotCall: req.DoNotCall}
	if region := utils.NormalizeRegion(req.Region); region != "" {
		filter.Region = &region
	}
	contacts, err := f.contactRepo.ByFilter(ctx, filter, "", 0, 0)
	if err != nil {
		return nil, NewBusinessError("LIST_CONTACTS_FAILED", "Failed to list contacts", err)
	}

	resp := &dto.ListContactsResponse{
		Total:    len(contacts),
		GroupBy:  string(groupBy),
		Contacts: make([]dto.ContactDTO, 0, len(contacts)),
	}
	index := map[string]int{}
	for _, c := range contacts {
		d := ToContactDTO(*c)
		resp.Contacts = append(resp.Contacts, d)
		if groupBy == GroupByNone {
			continue
		}
		label := UnassignedGroup
		switch groupBy {
		case GroupByOrganization:
			if strings.TrimSpace(c.Organization) != "" {
				label = c.Organization
			}
		case GroupByTimezone:
			label = f.resolver.Bucket(c.Timezone)
		}
		i, ok := index[label]
		if !ok {
			i = len(resp.Groups)
			index[label] = i
			resp.Groups = append(resp.Groups, dto.ContactGroupDTO{Label: label})
		}
		resp.Groups[i].Contacts = append(resp.Groups[i].Contacts, d)
	}
	return resp, nil
}

func (f *ContactFlowImpl) Dial(ctx context.Context, scope, contactID string) (*dto.DialResponse, error) {
	id, err := parseContactID(contactID)
	if err != nil {
		return nil, err
	}
	contact, err := f.getContact(ctx, scope, id)
	if err != nil {
		return nil, err
	}
	return &dto.DialResponse{
		ContactID:    contact.ID.String(),
		Name:         contact.Name,
		URI:          utils.DialURI(contact.Phone),
		DisplayPhone: utils.FormatDisplayPhone(contact.Phone),
	}, nil
}

// sampleContacts seed an empty directory for demos
var sampleContacts = []NewContactInput{
	{Name: "John Smith", Phone: "+14155550101", Organization: "UC Berkeley", Title: "Distance Ed Director", Region: "CA", Timezone: "America/Los_Angeles"},
	{Name: "Sarah Johnson", Phone: "+12125550102", Organization: "NYU", Title: "LMS Administrator", Region: "NY", Timezone: "America/New_York"},
	{Name: "Mike Chen", Phone: "+13125550103", Organization: "Northwestern", Title: "ADA Coordinator", Region: "IL", Timezone: "America/Chicago"},
	{Name: "Emily Davis", Phone: "+17135550104", Organization: "Rice University", Title: "Testing Manager", Region: "TX", Timezone: "America/Chicago"},
	{Name: "Robert Wilson", Phone: "+13035550105", Organization: "CU Boulder", Title: "Instructional Designer", Region: "CO", Timezone: "America/Denver"},
}

// EnsureSamples seeds the sample contacts when enabled and the scope has none
func (f *ContactFlowImpl) EnsureSamples(ctx context.Context, scope string) (int, error) {
	if !f.seedSamples {
		return 0, nil
	}
	exists, err := f.contactRepo.Exists(ctx, models.ContactFilter{UserID: &scope})
	if err != nil {
		return 0, NewBusinessError("SEED_SAMPLES_FAILED", "Failed to check existing contacts", err)
	}
	if exists {
		return 0, nil
	}

	contacts := make([]*models.Contact, 0, len(sampleContacts))
	for i, in := range sampleContacts {
		c, err := BuildContact(scope, in, f.defaultTimezone, f.resolver.Clock())
		if err != nil {
			return 0, err
		}
		c.OrderKey += float64(i) * utils.OrderKeyStep
		contacts = append(contacts, c)
	}
	if err := f.contactRepo.SaveBatch(ctx, contacts); err != nil {
		return 0, NewBusinessError("SEED_SAMPLES_FAILED", "Failed to seed sample contacts", err)
	}
	f.logger.Printf("seeded %d sample contacts for scope %s", len(contacts), scope)
	return len(contacts), nil
}
