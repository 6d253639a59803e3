package webhook

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"crm-gateway/internal/config"
	"crm-gateway/internal/crm"
	"crm-gateway/internal/metrics"
	"crm-gateway/internal/models"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	Config  *config.Config
	Leads   *crm.LeadService
	History *crm.InteractionLog
}

func NewHandler(cfg *config.Config, leads *crm.LeadService, history *crm.InteractionLog) *Handler {
	return &Handler{Config: cfg, Leads: leads, History: history}
}

// Verify answers the Meta webhook subscription handshake.
func (h *Handler) Verify(c *gin.Context) {
	mode := c.Query("hub.mode")
	token := c.Query("hub.verify_token")
	challenge := c.Query("hub.challenge")

	if mode != "" && token != "" {
		if mode == "subscribe" && token == h.Config.WhatsApp.VerifyToken {
			log.Println("Webhook verified successfully!")
			c.String(http.StatusOK, challenge)
		} else {
			c.Status(http.StatusForbidden)
		}
	} else {
		c.Status(http.StatusBadRequest)
	}
}

// HandleEvent processes inbound WhatsApp events: each message resolves
// its sender to a lead (creating one on first contact) and lands in that
// lead's interaction history. The vendor timestamp is kept.
func (h *Handler) HandleEvent(c *gin.Context) {
	var payload Payload
	if err := c.ShouldBindJSON(&payload); err != nil {
		log.Printf("Error binding JSON: %v", err)
		c.Status(http.StatusBadRequest)
		return
	}

	if len(payload.Entry) > 0 && len(payload.Entry[0].Changes) > 0 {
		value := payload.Entry[0].Changes[0].Value
		for _, message := range value.Messages {
			if err := h.processMessage(c, message); err != nil {
				log.Printf("Error processing inbound message %s: %v", message.ID, err)
			}
		}
	}

	c.Status(http.StatusOK)
}

func (h *Handler) processMessage(c *gin.Context, message InboundMessage) error {
	content := messageContent(message)
	log.Printf("Received %s message from %s", message.Type, message.From)

	lead, created, err := h.Leads.ResolveOrCreateByChannelAddress(c.Request.Context(), models.ChannelWhatsApp, message.From)
	if err != nil {
		return err
	}
	if created {
		metrics.RecordLeadCreated(models.SourceWhatsApp)
	}

	return h.History.Append(c.Request.Context(), lead.ID, crm.AppendInput{
		Channel:   models.ChannelWhatsApp,
		Content:   content,
		Direction: models.DirectionInbound,
		Timestamp: vendorTimestamp(message.Timestamp),
	})
}

func messageContent(message InboundMessage) string {
	switch message.Type {
	case "text":
		return message.Text.Body
	case "image":
		if message.Image != nil {
			content := "[image]:" + message.Image.ID
			if message.Image.Caption != "" {
				content += ":" + message.Image.Caption
			}
			return content
		}
	case "video":
		if message.Video != nil {
			content := "[video]:" + message.Video.ID
			if message.Video.Caption != "" {
				content += ":" + message.Video.Caption
			}
			return content
		}
	case "audio":
		if message.Audio != nil {
			return "[audio]:" + message.Audio.ID
		}
	case "document":
		if message.Document != nil {
			content := "[document]:" + message.Document.ID
			if message.Document.Filename != "" {
				content += ":" + message.Document.Filename
			}
			return content
		}
	}
	return "[" + message.Type + "]"
}

// vendorTimestamp parses the unix-seconds timestamp Meta sends; a missing
// or malformed value falls back to the server clock.
func vendorTimestamp(raw string) time.Time {
	if raw == "" {
		return time.Now()
	}
	secs, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return time.Now()
	}
	return time.Unix(secs, 0)
}
