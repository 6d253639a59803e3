package api

import (
	"net/http"

	"crm-gateway/internal/crm"

	"github.com/gin-gonic/gin"
)

type CampaignHandler struct {
	Campaigns *crm.CampaignService
}

func NewCampaignHandler(campaigns *crm.CampaignService) *CampaignHandler {
	return &CampaignHandler{Campaigns: campaigns}
}

func (h *CampaignHandler) CreateCampaign(c *gin.Context) {
	var input crm.CreateCampaignInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	campaign, err := h.Campaigns.Create(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, campaign)
}

func (h *CampaignHandler) GetCampaigns(c *gin.Context) {
	filter := crm.CampaignFilter{
		Status: c.Query("status"),
		Type:   c.Query("type"),
	}

	campaigns, err := h.Campaigns.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, campaigns)
}

func (h *CampaignHandler) GetCampaign(c *gin.Context) {
	campaign, err := h.Campaigns.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, campaign)
}

func (h *CampaignHandler) UpdateCampaign(c *gin.Context) {
	var input crm.UpdateCampaignInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	campaign, err := h.Campaigns.Update(c.Request.Context(), c.Param("id"), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, campaign)
}
