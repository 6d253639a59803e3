package crm

import (
	"context"
	"errors"
	"log"
	"sync"

	"crm-gateway/internal/models"
	"crm-gateway/internal/transport"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DispatcherOptions tunes dispatch behavior. Concurrency bounds the
// worker pool (1 means strictly sequential sends). SkipAlreadySent
// controls whether leads with a successful ledger entry for the campaign
// are re-sent on a repeated dispatch.
type DispatcherOptions struct {
	Concurrency     int
	SkipAlreadySent bool
}

// SendOutcome is the per-lead result of one dispatch.
type SendOutcome struct {
	LeadID    string `json:"lead_id"`
	Success   bool   `json:"success"`
	Skipped   bool   `json:"skipped,omitempty"`
	MessageID string `json:"message_id,omitempty"`
	Error     string `json:"error,omitempty"`
}

// DispatchReport aggregates a dispatch run. Outcomes are ordered by
// audience resolution order regardless of worker concurrency.
type DispatchReport struct {
	CampaignID string        `json:"campaign_id"`
	Attempted  int           `json:"attempted"`
	Succeeded  int           `json:"succeeded"`
	Failed     int           `json:"failed"`
	Skipped    int           `json:"skipped"`
	Outcomes   []SendOutcome `json:"outcomes"`
}

// Dispatcher fans a campaign's content out over its resolved audience,
// one transport call per lead, tolerating individual failures.
type Dispatcher struct {
	db       *gorm.DB
	audience *AudienceResolver
	history  *InteractionLog
	opts     DispatcherOptions
}

func NewDispatcher(db *gorm.DB, audience *AudienceResolver, history *InteractionLog, opts DispatcherOptions) *Dispatcher {
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	return &Dispatcher{db: db, audience: audience, history: history, opts: opts}
}

// Dispatch sends the campaign to every resolved lead through the adapter.
// One lead's failure never aborts the batch; after all leads are
// processed the campaign is marked completed and its metrics persisted
// exactly once.
func (d *Dispatcher) Dispatch(ctx context.Context, campaign *models.Campaign, adapter transport.Adapter) (*DispatchReport, error) {
	if campaign.Type != adapter.Channel() {
		return nil, &TypeMismatchError{CampaignType: campaign.Type, Channel: adapter.Channel()}
	}

	audience, err := d.audience.Resolve(ctx, campaign)
	if err != nil {
		return nil, err
	}

	content := transport.Content{
		Body:     campaign.Body,
		Subject:  campaign.Subject,
		MediaURL: campaign.MediaURL,
	}

	var mu sync.Mutex
	sent := 0
	// Slots keep report order equal to resolution order; nil slots are
	// leads skipped silently (unknown id or missing channel address).
	slots := make([]*SendOutcome, len(audience))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.opts.Concurrency)

	for i, leadID := range audience {
		g.Go(func() error {
			var lead models.Lead
			err := d.db.WithContext(gctx).First(&lead, "id = ?", leadID).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			if err != nil {
				slots[i] = &SendOutcome{LeadID: leadID, Error: err.Error()}
				return nil
			}

			address := ChannelAddress(&lead, campaign.Type)
			if address == "" {
				return nil
			}

			if d.opts.SkipAlreadySent && d.alreadySent(gctx, campaign.ID, leadID) {
				slots[i] = &SendOutcome{LeadID: leadID, Skipped: true}
				return nil
			}

			result, err := adapter.Send(gctx, address, content)
			if err != nil {
				log.Printf("Failed to send campaign %s to lead %s: %v", campaign.ID, leadID, err)
				slots[i] = &SendOutcome{LeadID: leadID, Error: err.Error()}
				d.recordSend(gctx, campaign.ID, leadID, "", false, err.Error())
				return nil
			}

			if err := d.history.Append(gctx, leadID, AppendInput{
				Channel:   campaign.Type,
				Content:   campaign.Body,
				Direction: models.DirectionOutbound,
			}); err != nil {
				log.Printf("Failed to log interaction for lead %s: %v", leadID, err)
			}

			mu.Lock()
			sent++
			mu.Unlock()

			slots[i] = &SendOutcome{LeadID: leadID, Success: true, MessageID: result.MessageID}
			d.recordSend(gctx, campaign.ID, leadID, result.MessageID, true, "")
			return nil
		})
	}
	// workers always return nil; per-lead failures land in slots
	_ = g.Wait()

	report := &DispatchReport{CampaignID: campaign.ID, Outcomes: []SendOutcome{}}
	for _, outcome := range slots {
		if outcome == nil {
			continue
		}
		report.Outcomes = append(report.Outcomes, *outcome)
		switch {
		case outcome.Skipped:
			report.Skipped++
		case outcome.Success:
			report.Succeeded++
		default:
			report.Failed++
		}
	}
	report.Attempted = len(report.Outcomes)

	campaign.Sent += sent
	campaign.Status = models.CampaignCompleted
	if err := d.db.WithContext(ctx).Model(campaign).Updates(map[string]interface{}{
		"sent":   campaign.Sent,
		"status": campaign.Status,
	}).Error; err != nil {
		return report, err
	}

	return report, nil
}

func (d *Dispatcher) alreadySent(ctx context.Context, campaignID, leadID string) bool {
	var record models.SendRecord
	err := d.db.WithContext(ctx).
		Where("campaign_id = ? AND lead_id = ? AND success = ?", campaignID, leadID, true).
		First(&record).Error
	return err == nil
}

// recordSend upserts the ledger row for (campaign, lead). Ledger failures
// are logged, not propagated; the ledger is an idempotence aid, not part
// of the send contract.
func (d *Dispatcher) recordSend(ctx context.Context, campaignID, leadID, messageID string, success bool, errMsg string) {
	record := models.SendRecord{
		CampaignID:   campaignID,
		LeadID:       leadID,
		MessageID:    messageID,
		Success:      success,
		ErrorMessage: errMsg,
	}
	err := d.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "campaign_id"}, {Name: "lead_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"message_id", "success", "error_message"}),
	}).Create(&record).Error
	if err != nil {
		log.Printf("Failed to record send outcome for campaign %s lead %s: %v", campaignID, leadID, err)
	}
}

// ChannelAddress picks the lead field a channel delivers to.
func ChannelAddress(lead *models.Lead, channel string) string {
	switch channel {
	case models.ChannelWhatsApp:
		return lead.WhatsAppNumber
	case models.ChannelEmail:
		return lead.Email
	case models.ChannelSocial:
		return lead.SocialHandle
	default:
		return ""
	}
}
