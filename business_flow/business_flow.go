package businessflow

import (
	"strings"
	"time"

	"github.com/amirphl/sdr-power-queue/app/dto"
	"github.com/amirphl/sdr-power-queue/models"
	"github.com/amirphl/sdr-power-queue/utils"
	"github.com/google/uuid"
)

// ToContactDTO converts a contact model to its wire form
func ToContactDTO(c models.Contact) dto.ContactDTO {
	return dto.ContactDTO{
		ID:           c.ID.String(),
		Name:         c.Name,
		Phone:        c.Phone,
		DisplayPhone: utils.FormatDisplayPhone(c.Phone),
		Email:        c.Email,
		Organization: c.Organization,
		Title:        c.Title,
		Region:       c.Region,
		Timezone:     c.Timezone,
		DoNotCall:    c.DoNotCall,
		Notes:        c.Notes,
		OrderKey:     c.OrderKey,
		CreatedAt:    c.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:    c.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func ToCallLogEntryDTO(e models.CallLogEntry) dto.CallLogEntryDTO {
	return dto.CallLogEntryDTO{
		ID:           e.ID.String(),
		ContactID:    e.ContactID.String(),
		Outcome:      e.Outcome.String(),
		OutcomeLabel: e.Outcome.Label(),
		Timestamp:    e.Timestamp.UTC().Format(time.RFC3339),
	}
}

func ToQueueItemDTO(item QueueItem) dto.QueueItemDTO {
	out := dto.QueueItemDTO{
		Contact:     ToContactDTO(item.Contact),
		WindowStart: item.Resolution.Window.Start,
		WindowEnd:   item.Resolution.Window.End,
		LocalHour:   item.Resolution.LocalHour,
		LocalTime:   item.Resolution.LocalTime,
		InWindow:    item.Resolution.InWindow,
		Score:       item.Score,
		Bucket:      item.Bucket,
	}
	if item.LastCallAt != nil {
		out.LastCallAt = utils.ToPtr(item.LastCallAt.UTC().Format(time.RFC3339))
	}
	return out
}

func ToQueueResponse(view QueueView) *dto.QueueResponse {
	resp := &dto.QueueResponse{
		Total:   len(view.Items),
		SortBy:  string(view.SortBy),
		GroupBy: string(view.GroupBy),
		Items:   make([]dto.QueueItemDTO, 0, len(view.Items)),
	}
	for _, item := range view.Items {
		resp.Items = append(resp.Items, ToQueueItemDTO(item))
	}
	for _, g := range view.Groups {
		group := dto.QueueGroupDTO{Label: g.Label, Items: make([]dto.QueueItemDTO, 0, len(g.Items))}
		for _, item := range g.Items {
			group.Items = append(group.Items, ToQueueItemDTO(item))
		}
		resp.Groups = append(resp.Groups, group)
	}
	return resp
}

func ToStatsResponse(s CallStats) *dto.StatsResponse {
	resp := &dto.StatsResponse{
		Total:                   s.Total,
		Conversations:           s.Conversation,
		Voicemails:              s.LeftVoicemail,
		NoAnswers:               s.NoAnswer,
		DoNotCall:               s.DoNotCall,
		ConversationRate:        s.ConversationRate,
		ConversationRatePercent: s.ConversationRatePercent,
		Breakdown:               make([]dto.OutcomeShareDTO, 0, len(s.Breakdown)),
	}
	for _, b := range s.Breakdown {
		resp.Breakdown = append(resp.Breakdown, dto.OutcomeShareDTO{
			Outcome: b.Outcome.String(),
			Label:   b.Outcome.Label(),
			Count:   b.Count,
			Percent: b.Percent,
		})
	}
	return resp
}

func ToBlockStatusResponse(s BlockStatus) *dto.BlockStatusResponse {
	resp := &dto.BlockStatusResponse{
		Running:      s.Running,
		CallsLogged:  s.CallsLogged,
		ElapsedMs:    s.ElapsedMs,
		Elapsed:      s.Elapsed,
		CallsPerHour: s.CallsPerHour,
	}
	if s.StartedAt != nil {
		resp.StartedAt = utils.ToPtr(s.StartedAt.UTC().Format(time.RFC3339))
	}
	return resp
}

// parseContactID validates an id coming from a path parameter or body
func parseContactID(id string) (uuid.UUID, error) {
	parsed, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil || parsed == uuid.Nil {
		return uuid.Nil, ErrContactIDInvalid
	}
	return parsed, nil
}
