package crm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"crm-gateway/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var leadSources = map[string]bool{
	models.SourceWebsite:  true,
	models.SourceWhatsApp: true,
	models.SourceEmail:    true,
	models.SourceSocial:   true,
	models.SourceReferral: true,
	models.SourceOther:    true,
}

var leadStatuses = map[string]bool{
	models.StatusNew:         true,
	models.StatusContacted:   true,
	models.StatusQualified:   true,
	models.StatusProposal:    true,
	models.StatusNegotiation: true,
	models.StatusWon:         true,
	models.StatusLost:        true,
}

// LeadService is the lead directory: identity resolution for inbound
// channel events plus CRUD over lead records.
type LeadService struct {
	db *gorm.DB
}

func NewLeadService(db *gorm.DB) *LeadService {
	return &LeadService{db: db}
}

// CreateLeadInput carries the fields of an explicit lead creation.
type CreateLeadInput struct {
	Name           string  `json:"name"`
	Email          string  `json:"email"`
	Phone          string  `json:"phone"`
	WhatsAppNumber string  `json:"whatsapp_number"`
	SocialHandle   string  `json:"social_handle"`
	Source         string  `json:"source"`
	Status         string  `json:"status"`
	AssignedTo     *string `json:"assigned_to"`
}

func (s *LeadService) Create(ctx context.Context, input CreateLeadInput) (*models.Lead, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, NewValidationError("name is required")
	}
	if strings.TrimSpace(input.Email) == "" {
		return nil, NewValidationError("email is required")
	}
	if strings.TrimSpace(input.Phone) == "" {
		return nil, NewValidationError("phone is required")
	}
	if input.Source != "" && !leadSources[input.Source] {
		return nil, NewValidationError("invalid source: %s", input.Source)
	}
	if input.Status != "" && !leadStatuses[input.Status] {
		return nil, NewValidationError("invalid status: %s", input.Status)
	}

	lead := &models.Lead{
		ID:             uuid.NewString(),
		Name:           input.Name,
		Email:          input.Email,
		Phone:          input.Phone,
		WhatsAppNumber: input.WhatsAppNumber,
		SocialHandle:   input.SocialHandle,
		Source:         input.Source,
		Status:         input.Status,
		AssignedTo:     input.AssignedTo,
	}
	if lead.WhatsAppNumber == "" {
		lead.WhatsAppNumber = input.Phone
	}
	if lead.Source == "" {
		lead.Source = models.SourceOther
	}
	if lead.Status == "" {
		lead.Status = models.StatusNew
	}

	if err := s.db.WithContext(ctx).Create(lead).Error; err != nil {
		return nil, err
	}
	return lead, nil
}

// ResolveOrCreateByChannelAddress maps an inbound channel address onto an
// existing lead, or auto-provisions one with placeholder identity fields.
// Exactly one lead ever exists per channel address. The second return
// reports whether a lead was created.
func (s *LeadService) ResolveOrCreateByChannelAddress(ctx context.Context, channel, address string) (*models.Lead, bool, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return nil, false, NewValidationError("channel address is required")
	}

	column, err := channelAddressColumn(channel)
	if err != nil {
		return nil, false, err
	}

	var lead models.Lead
	err = s.db.WithContext(ctx).Where(column+" = ?", address).First(&lead).Error
	if err == nil {
		return &lead, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	lead = models.Lead{
		ID:     uuid.NewString(),
		Name:   fmt.Sprintf("%s lead %s", channel, address),
		Email:  placeholderEmail(channel, address),
		Phone:  address,
		Source: channel,
		Status: models.StatusNew,
	}
	switch column {
	case "whatsapp_number":
		lead.WhatsAppNumber = address
	case "email":
		lead.Email = address
		lead.Phone = "unknown"
	case "social_handle":
		lead.SocialHandle = address
		lead.Phone = "unknown"
	}

	if err := s.db.WithContext(ctx).Create(&lead).Error; err != nil {
		return nil, false, err
	}
	return &lead, true, nil
}

func (s *LeadService) Get(ctx context.Context, id string) (*models.Lead, error) {
	var lead models.Lead
	err := s.db.WithContext(ctx).
		Preload("Notes").
		Preload("Interactions").
		First(&lead, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &NotFoundError{Entity: "lead", ID: id}
	}
	if err != nil {
		return nil, err
	}
	return &lead, nil
}

// LeadFilter narrows List results. Zero values mean no constraint.
type LeadFilter struct {
	Status     string
	Source     string
	AssignedTo string
}

func (s *LeadService) List(ctx context.Context, filter LeadFilter) ([]models.Lead, error) {
	query := s.db.WithContext(ctx).Order("created_at DESC")
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Source != "" {
		query = query.Where("source = ?", filter.Source)
	}
	if filter.AssignedTo != "" {
		query = query.Where("assigned_to = ?", filter.AssignedTo)
	}

	leads := []models.Lead{}
	if err := query.Find(&leads).Error; err != nil {
		return nil, err
	}
	return leads, nil
}

// UpdateLeadInput is a partial update; nil fields are left untouched.
type UpdateLeadInput struct {
	Name           *string `json:"name"`
	Email          *string `json:"email"`
	Phone          *string `json:"phone"`
	WhatsAppNumber *string `json:"whatsapp_number"`
	SocialHandle   *string `json:"social_handle"`
	Source         *string `json:"source"`
	Status         *string `json:"status"`
	AssignedTo     *string `json:"assigned_to"`
}

func (s *LeadService) Update(ctx context.Context, id string, input UpdateLeadInput) (*models.Lead, error) {
	lead, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Source != nil && !leadSources[*input.Source] {
		return nil, NewValidationError("invalid source: %s", *input.Source)
	}
	if input.Status != nil && !leadStatuses[*input.Status] {
		return nil, NewValidationError("invalid status: %s", *input.Status)
	}

	updates := map[string]interface{}{}
	if input.Name != nil {
		updates["name"] = *input.Name
	}
	if input.Email != nil {
		updates["email"] = *input.Email
	}
	if input.Phone != nil {
		updates["phone"] = *input.Phone
	}
	if input.WhatsAppNumber != nil {
		updates["whatsapp_number"] = *input.WhatsAppNumber
	}
	if input.SocialHandle != nil {
		updates["social_handle"] = *input.SocialHandle
	}
	if input.Source != nil {
		updates["source"] = *input.Source
	}
	if input.Status != nil {
		updates["status"] = *input.Status
	}
	if input.AssignedTo != nil {
		updates["assigned_to"] = *input.AssignedTo
	}

	if err := s.db.WithContext(ctx).Model(lead).Updates(updates).Error; err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *LeadService) AddNote(ctx context.Context, id, authorID, content string) (*models.Lead, error) {
	if strings.TrimSpace(content) == "" {
		return nil, NewValidationError("note content is required")
	}
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}

	note := models.Note{LeadID: id, AuthorID: authorID, Content: content}
	if err := s.db.WithContext(ctx).Create(&note).Error; err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *LeadService) Delete(ctx context.Context, id string) error {
	result := s.db.WithContext(ctx).Select("Notes", "Interactions").Delete(&models.Lead{ID: id})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return &NotFoundError{Entity: "lead", ID: id}
	}
	return nil
}

// channelAddressColumn maps a channel onto the lead column holding its
// address.
func channelAddressColumn(channel string) (string, error) {
	switch channel {
	case models.ChannelWhatsApp:
		return "whatsapp_number", nil
	case models.ChannelEmail:
		return "email", nil
	case models.ChannelSocial:
		return "social_handle", nil
	default:
		return "", NewValidationError("unsupported channel: %s", channel)
	}
}

func placeholderEmail(channel, address string) string {
	sanitized := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		default:
			return '-'
		}
	}, address)
	return fmt.Sprintf("%s@%s.placeholder.invalid", sanitized, channel)
}
