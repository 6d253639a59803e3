package models

import (
	"time"
)

// Lead source values
const (
	SourceWebsite  = "website"
	SourceWhatsApp = "whatsapp"
	SourceEmail    = "email"
	SourceSocial   = "social"
	SourceReferral = "referral"
	SourceOther    = "other"
)

// Lead pipeline status values
const (
	StatusNew         = "new"
	StatusContacted   = "contacted"
	StatusQualified   = "qualified"
	StatusProposal    = "proposal"
	StatusNegotiation = "negotiation"
	StatusWon         = "won"
	StatusLost        = "lost"
)

// Interaction channels
const (
	ChannelWhatsApp = "whatsapp"
	ChannelEmail    = "email"
	ChannelCall     = "call"
	ChannelMeeting  = "meeting"
	ChannelSocial   = "social"
	ChannelOther    = "other"
)

// Interaction directions
const (
	DirectionInbound  = "inbound"
	DirectionOutbound = "outbound"
)

// Campaign status values
const (
	CampaignDraft     = "draft"
	CampaignScheduled = "scheduled"
	CampaignActive    = "active"
	CampaignCompleted = "completed"
	CampaignPaused    = "paused"
)

// User represents an operator account. Referenced by leads and campaigns,
// never owned by them.
type User struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Name      string    `gorm:"type:varchar(255)" json:"name"`
	Email     string    `gorm:"type:varchar(255);uniqueIndex" json:"email"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (User) TableName() string {
	return "users"
}

// Lead represents a prospective or active customer contact
type Lead struct {
	ID             string        `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Name           string        `gorm:"type:varchar(255);not null" json:"name"`
	Email          string        `gorm:"type:varchar(255);not null;index" json:"email"`
	Phone          string        `gorm:"type:varchar(50);not null" json:"phone"`
	WhatsAppNumber string        `gorm:"column:whatsapp_number;type:varchar(50);index" json:"whatsapp_number"`
	SocialHandle   string        `gorm:"type:varchar(255);index" json:"social_handle"`
	Source         string        `gorm:"type:varchar(20);default:'other'" json:"source"`
	Status         string        `gorm:"type:varchar(20);default:'new';index" json:"status"`
	AssignedTo     *string       `gorm:"type:varchar(36)" json:"assigned_to"`
	Notes          []Note        `gorm:"foreignKey:LeadID;constraint:OnDelete:CASCADE;" json:"notes,omitempty"`
	Interactions   []Interaction `gorm:"foreignKey:LeadID;constraint:OnDelete:CASCADE;" json:"interactions,omitempty"`
	CreatedAt      time.Time     `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time     `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Lead) TableName() string {
	return "leads"
}

// Note is a free-text annotation on a lead
type Note struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	LeadID    string    `gorm:"type:varchar(36);not null;index" json:"lead_id"`
	AuthorID  string    `gorm:"type:varchar(36)" json:"author_id"`
	Content   string    `gorm:"type:text" json:"content"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Note) TableName() string {
	return "notes"
}

// Interaction is one logged communication event on a lead. Rows are
// append-only and never updated; ordering is by primary key.
type Interaction struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	LeadID    string    `gorm:"type:varchar(36);not null;index" json:"lead_id"`
	Channel   string    `gorm:"type:varchar(20);not null" json:"channel"`
	Content   string    `gorm:"type:text" json:"content"`
	Direction string    `gorm:"type:varchar(10);not null" json:"direction"`
	Timestamp time.Time `gorm:"not null" json:"timestamp"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Interaction) TableName() string {
	return "interactions"
}

// Campaign represents a bulk outbound send definition. TargetLeads,
// CriteriaStatus and CriteriaSource hold JSON arrays in text columns.
type Campaign struct {
	ID             string     `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Name           string     `gorm:"type:varchar(255);not null" json:"name"`
	Type           string     `gorm:"type:varchar(20);not null" json:"type"`
	Status         string     `gorm:"type:varchar(20);default:'draft';index" json:"status"`
	Body           string     `gorm:"type:text" json:"body"`
	Subject        string     `gorm:"type:varchar(255)" json:"subject"`
	MediaURL       string     `gorm:"type:text" json:"media_url"`
	StartDate      *time.Time `json:"start_date"`
	EndDate        *time.Time `json:"end_date"`
	Frequency      string     `gorm:"type:varchar(20)" json:"frequency"`
	TargetLeads    string     `gorm:"type:text" json:"target_leads"`
	CriteriaStatus string     `gorm:"type:text" json:"criteria_status"`
	CriteriaSource string     `gorm:"type:text" json:"criteria_source"`
	Sent           int        `gorm:"default:0" json:"sent"`
	Delivered      int        `gorm:"default:0" json:"delivered"`
	Opened         int        `gorm:"default:0" json:"opened"`
	Clicked        int        `gorm:"default:0" json:"clicked"`
	Responded      int        `gorm:"default:0" json:"responded"`
	CreatedBy      string     `gorm:"type:varchar(36)" json:"created_by"`
	CreatedAt      time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Campaign) TableName() string {
	return "campaigns"
}

// SendRecord is the durable per-lead send-outcome ledger. One row per
// (campaign, lead); re-dispatch consults it so leads that already received
// the campaign can be skipped.
type SendRecord struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	CampaignID   string    `gorm:"type:varchar(36);not null;uniqueIndex:idx_campaign_lead" json:"campaign_id"`
	LeadID       string    `gorm:"type:varchar(36);not null;uniqueIndex:idx_campaign_lead" json:"lead_id"`
	MessageID    string    `gorm:"type:varchar(255)" json:"message_id"`
	Success      bool      `json:"success"`
	ErrorMessage string    `gorm:"type:text" json:"error_message"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (SendRecord) TableName() string {
	return "send_records"
}
