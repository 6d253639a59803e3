package api

import (
	"fmt"
	"net/http"

	"crm-gateway/internal/crm"
	"crm-gateway/internal/metrics"

	"github.com/gin-gonic/gin"
)

type LeadHandler struct {
	Leads   *crm.LeadService
	History *crm.InteractionLog
}

func NewLeadHandler(leads *crm.LeadService, history *crm.InteractionLog) *LeadHandler {
	return &LeadHandler{Leads: leads, History: history}
}

func (h *LeadHandler) CreateLead(c *gin.Context) {
	var input crm.CreateLeadInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	lead, err := h.Leads.Create(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}

	metrics.RecordLeadCreated(lead.Source)
	c.JSON(http.StatusCreated, lead)
}

func (h *LeadHandler) GetLeads(c *gin.Context) {
	filter := crm.LeadFilter{
		Status:     c.Query("status"),
		Source:     c.Query("source"),
		AssignedTo: c.Query("assigned_to"),
	}

	leads, err := h.Leads.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, leads)
}

func (h *LeadHandler) GetLead(c *gin.Context) {
	lead, err := h.Leads.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, lead)
}

func (h *LeadHandler) UpdateLead(c *gin.Context) {
	var input crm.UpdateLeadInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	lead, err := h.Leads.Update(c.Request.Context(), c.Param("id"), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, lead)
}

func (h *LeadHandler) DeleteLead(c *gin.Context) {
	if err := h.Leads.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "Lead deleted"})
}

type AddNoteRequest struct {
	AuthorID string `json:"author_id"`
	Content  string `json:"content" binding:"required"`
}

func (h *LeadHandler) AddNote(c *gin.Context) {
	var req AddNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	lead, err := h.Leads.AddNote(c.Request.Context(), c.Param("id"), req.AuthorID, req.Content)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, lead)
}

func (h *LeadHandler) GetInteractions(c *gin.Context) {
	interactions, err := h.History.History(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, interactions)
}

func (h *LeadHandler) ExportLeads(c *gin.Context) {
	leads, err := h.Leads.List(c.Request.Context(), crm.LeadFilter{})
	if err != nil {
		respondError(c, err)
		return
	}

	// Build CSV content
	csv := "ID,Name,Email,Phone,Source,Status,Created At\n"
	for _, lead := range leads {
		csv += fmt.Sprintf("%s,%s,%s,%s,%s,%s,%s\n",
			lead.ID, lead.Name, lead.Email, lead.Phone, lead.Source, lead.Status,
			lead.CreatedAt.Format("2006-01-02 15:04:05"))
	}

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", "attachment; filename=leads.csv")
	c.String(http.StatusOK, csv)
}
