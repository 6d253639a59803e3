package crm

import (
	"context"
	"time"

	"crm-gateway/internal/models"

	"gorm.io/gorm"
)

var interactionChannels = map[string]bool{
	models.ChannelWhatsApp: true,
	models.ChannelEmail:    true,
	models.ChannelCall:     true,
	models.ChannelMeeting:  true,
	models.ChannelSocial:   true,
	models.ChannelOther:    true,
}

// InteractionLog appends communication events to a lead's history.
// Entries are never updated or reordered after append.
type InteractionLog struct {
	db *gorm.DB
}

func NewInteractionLog(db *gorm.DB) *InteractionLog {
	return &InteractionLog{db: db}
}

// AppendInput describes one event. Timestamp is optional; when zero the
// server clock is used. Webhook events pass the vendor timestamp through.
type AppendInput struct {
	Channel   string    `json:"channel"`
	Content   string    `json:"content"`
	Direction string    `json:"direction"`
	Timestamp time.Time `json:"timestamp"`
}

func (l *InteractionLog) Append(ctx context.Context, leadID string, input AppendInput) error {
	if !interactionChannels[input.Channel] {
		return NewValidationError("invalid interaction channel: %s", input.Channel)
	}
	if input.Direction != models.DirectionInbound && input.Direction != models.DirectionOutbound {
		return NewValidationError("invalid interaction direction: %s", input.Direction)
	}

	var exists int64
	if err := l.db.WithContext(ctx).Model(&models.Lead{}).Where("id = ?", leadID).Count(&exists).Error; err != nil {
		return err
	}
	if exists == 0 {
		return &NotFoundError{Entity: "lead", ID: leadID}
	}

	ts := input.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	interaction := models.Interaction{
		LeadID:    leadID,
		Channel:   input.Channel,
		Content:   input.Content,
		Direction: input.Direction,
		Timestamp: ts,
	}
	return l.db.WithContext(ctx).Create(&interaction).Error
}

// History returns a lead's interactions in append order.
func (l *InteractionLog) History(ctx context.Context, leadID string) ([]models.Interaction, error) {
	var exists int64
	if err := l.db.WithContext(ctx).Model(&models.Lead{}).Where("id = ?", leadID).Count(&exists).Error; err != nil {
		return nil, err
	}
	if exists == 0 {
		return nil, &NotFoundError{Entity: "lead", ID: leadID}
	}

	interactions := []models.Interaction{}
	err := l.db.WithContext(ctx).
		Where("lead_id = ?", leadID).
		Order("id ASC").
		Find(&interactions).Error
	return interactions, err
}
