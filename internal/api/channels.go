package api

import (
	"net/http"

	"crm-gateway/internal/crm"
	"crm-gateway/internal/metrics"
	"crm-gateway/internal/models"
	"crm-gateway/internal/transport"

	"github.com/gin-gonic/gin"
)

// ChannelHandler serves the per-channel send endpoints. The same handler
// backs /whatsapp, /email and /social; the channel is fixed per route and
// resolved to an adapter through the registry.
type ChannelHandler struct {
	Registry   *transport.Registry
	Leads      *crm.LeadService
	History    *crm.InteractionLog
	Campaigns  *crm.CampaignService
	Dispatcher *crm.Dispatcher
}

func NewChannelHandler(registry *transport.Registry, leads *crm.LeadService, history *crm.InteractionLog, campaigns *crm.CampaignService, dispatcher *crm.Dispatcher) *ChannelHandler {
	return &ChannelHandler{
		Registry:   registry,
		Leads:      leads,
		History:    history,
		Campaigns:  campaigns,
		Dispatcher: dispatcher,
	}
}

type SendMessageRequest struct {
	LeadID   string `json:"lead_id" binding:"required"`
	Body     string `json:"body" binding:"required"`
	Subject  string `json:"subject"`
	MediaURL string `json:"media_url"`
}

// SendMessage returns the single-send handler for one channel: lead
// lookup, transport call, outbound interaction append.
func (h *ChannelHandler) SendMessage(channel string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req SendMessageRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		adapter, ok := h.Registry.Get(channel)
		if !ok {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "channel not configured: " + channel})
			return
		}

		lead, err := h.Leads.Get(c.Request.Context(), req.LeadID)
		if err != nil {
			respondError(c, err)
			return
		}

		address := crm.ChannelAddress(lead, channel)
		if address == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "lead has no " + channel + " address"})
			return
		}

		result, err := adapter.Send(c.Request.Context(), address, transport.Content{
			Body:     req.Body,
			Subject:  req.Subject,
			MediaURL: req.MediaURL,
		})
		if err != nil {
			metrics.RecordSendFailure(channel)
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		metrics.RecordSend(channel)

		if err := h.History.Append(c.Request.Context(), lead.ID, crm.AppendInput{
			Channel:   channel,
			Content:   req.Body,
			Direction: models.DirectionOutbound,
		}); err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"status": "Message sent", "message_id": result.MessageID})
	}
}

// SendCampaign returns the campaign dispatch handler for one channel.
func (h *ChannelHandler) SendCampaign(channel string) gin.HandlerFunc {
	return func(c *gin.Context) {
		adapter, ok := h.Registry.Get(channel)
		if !ok {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "channel not configured: " + channel})
			return
		}

		campaign, err := h.Campaigns.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}

		report, err := h.Dispatcher.Dispatch(c.Request.Context(), campaign, adapter)
		if err != nil {
			respondError(c, err)
			return
		}

		metrics.AddSends(channel, report.Succeeded)
		metrics.AddSendFailures(channel, report.Failed)

		c.JSON(http.StatusOK, report)
	}
}
