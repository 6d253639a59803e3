package main

import (
	"log"

	"crm-gateway/internal/api"
	"crm-gateway/internal/config"
	"crm-gateway/internal/crm"
	"crm-gateway/internal/database"
	"crm-gateway/internal/metrics"
	"crm-gateway/internal/models"
	"crm-gateway/internal/transport"
	"crm-gateway/internal/transport/email"
	"crm-gateway/internal/transport/social"
	"crm-gateway/internal/transport/whatsapp"
	"crm-gateway/internal/webhook"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg := config.LoadConfig()
	db := database.InitGorm(cfg)

	registry := transport.NewRegistry()
	registry.MustRegister(whatsapp.NewClient(cfg.WhatsApp))
	registry.MustRegister(email.NewSender(cfg.Email))
	if len(cfg.Social) > 0 {
		poster, err := social.SelectPoster(cfg.Social, cfg.SocialPlatform)
		if err != nil {
			log.Fatalf("Failed to configure social transport: %v", err)
		}
		registry.MustRegister(poster)
	}

	leads := crm.NewLeadService(db)
	history := crm.NewInteractionLog(db)
	campaigns := crm.NewCampaignService(db)
	audience := crm.NewAudienceResolver(db)
	dispatcher := crm.NewDispatcher(db, audience, history, crm.DispatcherOptions{
		Concurrency:     cfg.DispatchConcurrency,
		SkipAlreadySent: cfg.DispatchSkipSent,
	})

	webhookHandler := webhook.NewHandler(cfg, leads, history)
	leadHandler := api.NewLeadHandler(leads, history)
	campaignHandler := api.NewCampaignHandler(campaigns)
	channelHandler := api.NewChannelHandler(registry, leads, history, campaigns, dispatcher)

	r := gin.Default()
	r.Use(api.CORSMiddleware())
	r.Use(metrics.HTTPMiddleware())

	// Webhook Routes (vendor-called, unauthenticated)
	r.GET("/webhook", webhookHandler.Verify)
	r.POST("/webhook", webhookHandler.HandleEvent)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	apiGroup := r.Group("/api")
	apiGroup.Use(api.AuthMiddleware(cfg.APIToken))
	{
		// Lead Routes
		apiGroup.POST("/leads", leadHandler.CreateLead)
		apiGroup.GET("/leads", leadHandler.GetLeads)
		apiGroup.GET("/leads/export", leadHandler.ExportLeads)
		apiGroup.GET("/leads/:id", leadHandler.GetLead)
		apiGroup.PUT("/leads/:id", leadHandler.UpdateLead)
		apiGroup.DELETE("/leads/:id", leadHandler.DeleteLead)
		apiGroup.POST("/leads/:id/notes", leadHandler.AddNote)
		apiGroup.GET("/leads/:id/interactions", leadHandler.GetInteractions)

		// Campaign Routes
		apiGroup.POST("/campaigns", campaignHandler.CreateCampaign)
		apiGroup.GET("/campaigns", campaignHandler.GetCampaigns)
		apiGroup.GET("/campaigns/:id", campaignHandler.GetCampaign)
		apiGroup.PUT("/campaigns/:id", campaignHandler.UpdateCampaign)

		// Channel Send Routes
		for _, channel := range []string{models.ChannelWhatsApp, models.ChannelEmail, models.ChannelSocial} {
			group := apiGroup.Group("/" + channel)
			group.POST("/send", channelHandler.SendMessage(channel))
			group.POST("/campaigns/:id/send", channelHandler.SendCampaign(channel))
		}
	}

	log.Printf("Server starting on port %s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to run server: %v", err)
	}
}
