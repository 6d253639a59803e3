package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"sync"
	"testing"

	"crm-gateway/internal/crm"
	"crm-gateway/internal/database"
	"crm-gateway/internal/models"
	"crm-gateway/internal/transport"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

type fakeAdapter struct {
	channel string
	fail    bool

	mu   sync.Mutex
	sent []string
}

func (f *fakeAdapter) Channel() string {
	return f.channel
}

func (f *fakeAdapter) Send(ctx context.Context, to string, content transport.Content) (transport.Result, error) {
	if f.fail {
		return transport.Result{}, transport.NewError(f.channel, "vendor down")
	}
	f.mu.Lock()
	f.sent = append(f.sent, to)
	f.mu.Unlock()
	return transport.Result{MessageID: "msg-" + to}, nil
}

type fixture struct {
	router    *gin.Engine
	leads     *crm.LeadService
	campaigns *crm.CampaignService
	history   *crm.InteractionLog
	adapter   *fakeAdapter
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.OpenSQLite("file::memory:")
	require.NoError(t, err)

	leads := crm.NewLeadService(db)
	history := crm.NewInteractionLog(db)
	campaigns := crm.NewCampaignService(db)
	audience := crm.NewAudienceResolver(db)
	dispatcher := crm.NewDispatcher(db, audience, history, crm.DispatcherOptions{SkipAlreadySent: true})

	adapter := &fakeAdapter{channel: models.ChannelWhatsApp}
	registry := transport.NewRegistry()
	registry.MustRegister(adapter)

	leadHandler := NewLeadHandler(leads, history)
	campaignHandler := NewCampaignHandler(campaigns)
	channelHandler := NewChannelHandler(registry, leads, history, campaigns, dispatcher)

	router := gin.New()
	apiGroup := router.Group("/api")
	apiGroup.POST("/leads", leadHandler.CreateLead)
	apiGroup.GET("/leads", leadHandler.GetLeads)
	apiGroup.GET("/leads/export", leadHandler.ExportLeads)
	apiGroup.GET("/leads/:id", leadHandler.GetLead)
	apiGroup.PUT("/leads/:id", leadHandler.UpdateLead)
	apiGroup.DELETE("/leads/:id", leadHandler.DeleteLead)
	apiGroup.POST("/leads/:id/notes", leadHandler.AddNote)
	apiGroup.GET("/leads/:id/interactions", leadHandler.GetInteractions)
	apiGroup.POST("/campaigns", campaignHandler.CreateCampaign)
	apiGroup.GET("/campaigns", campaignHandler.GetCampaigns)
	apiGroup.GET("/campaigns/:id", campaignHandler.GetCampaign)
	apiGroup.PUT("/campaigns/:id", campaignHandler.UpdateCampaign)
	apiGroup.POST("/whatsapp/send", channelHandler.SendMessage(models.ChannelWhatsApp))
	apiGroup.POST("/whatsapp/campaigns/:id/send", channelHandler.SendCampaign(models.ChannelWhatsApp))
	apiGroup.POST("/email/send", channelHandler.SendMessage(models.ChannelEmail))

	return &fixture{
		router:    router,
		leads:     leads,
		campaigns: campaigns,
		history:   history,
		adapter:   adapter,
	}
}

func (f *fixture) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}
