package crm

import (
	"context"
	"testing"

	"crm-gateway/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateCampaignValidation(t *testing.T) {
	svc := NewCampaignService(newTestDB(t))
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateCampaignInput{Type: models.ChannelEmail, Body: "hi"})
	assert.True(t, IsValidationError(err), "name required")

	_, err = svc.Create(ctx, CreateCampaignInput{Name: "X", Type: "radio", Body: "hi"})
	assert.True(t, IsValidationError(err), "type from closed set")

	_, err = svc.Create(ctx, CreateCampaignInput{Name: "X", Type: models.ChannelEmail})
	assert.True(t, IsValidationError(err), "body required")
}

func TestCreateCampaignDefaultsToDraft(t *testing.T) {
	svc := NewCampaignService(newTestDB(t))

	campaign, err := svc.Create(context.Background(), CreateCampaignInput{
		Name: "Welcome", Type: models.ChannelEmail, Body: "hello", Subject: "Hi there",
	})
	require.NoError(t, err)

	assert.Equal(t, models.CampaignDraft, campaign.Status)
	assert.Zero(t, campaign.Sent)
	assert.Equal(t, "[]", campaign.TargetLeads)
}

func TestUpdateCampaign(t *testing.T) {
	svc := NewCampaignService(newTestDB(t))
	ctx := context.Background()

	campaign, err := svc.Create(ctx, CreateCampaignInput{
		Name: "Before", Type: models.ChannelWhatsApp, Body: "old body",
	})
	require.NoError(t, err)

	status := models.CampaignPaused
	body := "new body"
	updated, err := svc.Update(ctx, campaign.ID, UpdateCampaignInput{Status: &status, Body: &body})
	require.NoError(t, err)
	assert.Equal(t, models.CampaignPaused, updated.Status)
	assert.Equal(t, "new body", updated.Body)
	assert.Equal(t, "Before", updated.Name)

	bad := "limbo"
	_, err = svc.Update(ctx, campaign.ID, UpdateCampaignInput{Status: &bad})
	assert.True(t, IsValidationError(err))

	_, err = svc.Update(ctx, "missing-id", UpdateCampaignInput{})
	assert.True(t, IsNotFoundError(err))
}

func TestListCampaignsFilter(t *testing.T) {
	svc := NewCampaignService(newTestDB(t))
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateCampaignInput{Name: "A", Type: models.ChannelEmail, Body: "x"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, CreateCampaignInput{Name: "B", Type: models.ChannelWhatsApp, Body: "x"})
	require.NoError(t, err)

	emailOnly, err := svc.List(ctx, CampaignFilter{Type: models.ChannelEmail})
	require.NoError(t, err)
	require.Len(t, emailOnly, 1)
	assert.Equal(t, "A", emailOnly[0].Name)
}
