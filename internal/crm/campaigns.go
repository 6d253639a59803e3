package crm

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"crm-gateway/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var campaignTypes = map[string]bool{
	models.ChannelWhatsApp: true,
	models.ChannelEmail:    true,
	models.ChannelSocial:   true,
}

var campaignStatuses = map[string]bool{
	models.CampaignDraft:     true,
	models.CampaignScheduled: true,
	models.CampaignActive:    true,
	models.CampaignCompleted: true,
	models.CampaignPaused:    true,
}

// CampaignService manages campaign definitions.
type CampaignService struct {
	db *gorm.DB
}

func NewCampaignService(db *gorm.DB) *CampaignService {
	return &CampaignService{db: db}
}

// AudienceInput selects the campaign's audience: an explicit list of lead
// ids, or criteria over status/source. The explicit list wins when both
// are given.
type AudienceInput struct {
	TargetLeads []string `json:"target_leads"`
	Status      []string `json:"status"`
	Source      []string `json:"source"`
}

type CreateCampaignInput struct {
	Name      string        `json:"name"`
	Type      string        `json:"type"`
	Body      string        `json:"body"`
	Subject   string        `json:"subject"`
	MediaURL  string        `json:"media_url"`
	StartDate *time.Time    `json:"start_date"`
	EndDate   *time.Time    `json:"end_date"`
	Frequency string        `json:"frequency"`
	Audience  AudienceInput `json:"audience"`
	CreatedBy string        `json:"created_by"`
}

func (s *CampaignService) Create(ctx context.Context, input CreateCampaignInput) (*models.Campaign, error) {
	if input.Name == "" {
		return nil, NewValidationError("name is required")
	}
	if !campaignTypes[input.Type] {
		return nil, NewValidationError("invalid campaign type: %s", input.Type)
	}
	if input.Body == "" {
		return nil, NewValidationError("body is required")
	}

	campaign := &models.Campaign{
		ID:             uuid.NewString(),
		Name:           input.Name,
		Type:           input.Type,
		Status:         models.CampaignDraft,
		Body:           input.Body,
		Subject:        input.Subject,
		MediaURL:       input.MediaURL,
		StartDate:      input.StartDate,
		EndDate:        input.EndDate,
		Frequency:      input.Frequency,
		TargetLeads:    marshalList(input.Audience.TargetLeads),
		CriteriaStatus: marshalList(input.Audience.Status),
		CriteriaSource: marshalList(input.Audience.Source),
		CreatedBy:      input.CreatedBy,
	}

	if err := s.db.WithContext(ctx).Create(campaign).Error; err != nil {
		return nil, err
	}
	return campaign, nil
}

func (s *CampaignService) Get(ctx context.Context, id string) (*models.Campaign, error) {
	var campaign models.Campaign
	err := s.db.WithContext(ctx).First(&campaign, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &NotFoundError{Entity: "campaign", ID: id}
	}
	if err != nil {
		return nil, err
	}
	return &campaign, nil
}

type CampaignFilter struct {
	Status string
	Type   string
}

func (s *CampaignService) List(ctx context.Context, filter CampaignFilter) ([]models.Campaign, error) {
	query := s.db.WithContext(ctx).Order("created_at DESC")
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}

	campaigns := []models.Campaign{}
	if err := query.Find(&campaigns).Error; err != nil {
		return nil, err
	}
	return campaigns, nil
}

type UpdateCampaignInput struct {
	Name      *string        `json:"name"`
	Status    *string        `json:"status"`
	Body      *string        `json:"body"`
	Subject   *string        `json:"subject"`
	MediaURL  *string        `json:"media_url"`
	StartDate *time.Time     `json:"start_date"`
	EndDate   *time.Time     `json:"end_date"`
	Frequency *string        `json:"frequency"`
	Audience  *AudienceInput `json:"audience"`
}

func (s *CampaignService) Update(ctx context.Context, id string, input UpdateCampaignInput) (*models.Campaign, error) {
	campaign, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Status != nil && !campaignStatuses[*input.Status] {
		return nil, NewValidationError("invalid campaign status: %s", *input.Status)
	}

	updates := map[string]interface{}{}
	if input.Name != nil {
		updates["name"] = *input.Name
	}
	if input.Status != nil {
		updates["status"] = *input.Status
	}
	if input.Body != nil {
		updates["body"] = *input.Body
	}
	if input.Subject != nil {
		updates["subject"] = *input.Subject
	}
	if input.MediaURL != nil {
		updates["media_url"] = *input.MediaURL
	}
	if input.StartDate != nil {
		updates["start_date"] = *input.StartDate
	}
	if input.EndDate != nil {
		updates["end_date"] = *input.EndDate
	}
	if input.Frequency != nil {
		updates["frequency"] = *input.Frequency
	}
	if input.Audience != nil {
		updates["target_leads"] = marshalList(input.Audience.TargetLeads)
		updates["criteria_status"] = marshalList(input.Audience.Status)
		updates["criteria_source"] = marshalList(input.Audience.Source)
	}

	if err := s.db.WithContext(ctx).Model(campaign).Updates(updates).Error; err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// marshalList serializes a string list into its text column form. An
// empty list stores "[]" rather than NULL.
func marshalList(items []string) string {
	if items == nil {
		items = []string{}
	}
	data, _ := json.Marshal(items)
	return string(data)
}

func unmarshalList(data string) []string {
	if data == "" {
		return nil
	}
	var items []string
	if err := json.Unmarshal([]byte(data), &items); err != nil {
		return nil
	}
	return items
}
