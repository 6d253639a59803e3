package crm

import (
	"context"
	"sync"
	"testing"

	"crm-gateway/internal/models"
	"crm-gateway/internal/transport"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeAdapter struct {
	channel string
	failFor map[string]bool

	mu   sync.Mutex
	sent []string
}

func (f *fakeAdapter) Channel() string {
	return f.channel
}

func (f *fakeAdapter) Send(ctx context.Context, to string, content transport.Content) (transport.Result, error) {
	if f.failFor[to] {
		return transport.Result{}, transport.NewError(f.channel, "vendor rejected %s", to)
	}
	f.mu.Lock()
	f.sent = append(f.sent, to)
	f.mu.Unlock()
	return transport.Result{MessageID: "msg-" + to}, nil
}

type dispatchFixture struct {
	db        *gorm.DB
	leads     *LeadService
	history   *InteractionLog
	campaigns *CampaignService
	resolver  *AudienceResolver
}

func newDispatchFixture(t *testing.T) *dispatchFixture {
	db := newTestDB(t)
	return &dispatchFixture{
		db:        db,
		leads:     NewLeadService(db),
		history:   NewInteractionLog(db),
		campaigns: NewCampaignService(db),
		resolver:  NewAudienceResolver(db),
	}
}

func (f *dispatchFixture) dispatcher(opts DispatcherOptions) *Dispatcher {
	return NewDispatcher(f.db, f.resolver, f.history, opts)
}

func TestDispatchPartialFailure(t *testing.T) {
	f := newDispatchFixture(t)
	ctx := context.Background()

	a := mustCreateLead(t, f.leads, CreateLeadInput{Name: "A", Email: "a@x.com", Phone: "111"})
	b := mustCreateLead(t, f.leads, CreateLeadInput{Name: "B", Email: "b@x.com", Phone: "222"})
	c := mustCreateLead(t, f.leads, CreateLeadInput{Name: "C", Email: "c@x.com", Phone: "333"})

	campaign, err := f.campaigns.Create(ctx, CreateCampaignInput{
		Name: "Promo", Type: models.ChannelWhatsApp, Body: "big sale",
		Audience: AudienceInput{TargetLeads: []string{a.ID, b.ID, c.ID}},
	})
	require.NoError(t, err)

	adapter := &fakeAdapter{channel: models.ChannelWhatsApp, failFor: map[string]bool{"222": true}}
	report, err := f.dispatcher(DispatcherOptions{}).Dispatch(ctx, campaign, adapter)
	require.NoError(t, err)

	assert.Equal(t, 3, report.Attempted)
	assert.Equal(t, 2, report.Succeeded)
	assert.Equal(t, 1, report.Failed)
	require.Len(t, report.Outcomes, 3)

	assert.Equal(t, a.ID, report.Outcomes[0].LeadID)
	assert.True(t, report.Outcomes[0].Success)
	assert.Equal(t, "msg-111", report.Outcomes[0].MessageID)

	assert.Equal(t, b.ID, report.Outcomes[1].LeadID)
	assert.False(t, report.Outcomes[1].Success)
	assert.Contains(t, report.Outcomes[1].Error, "vendor rejected")

	assert.True(t, report.Outcomes[2].Success)

	// metrics and status persisted exactly once
	stored, err := f.campaigns.Get(ctx, campaign.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stored.Sent)
	assert.Equal(t, models.CampaignCompleted, stored.Status)

	// successful sends logged an outbound interaction, the failed one did not
	historyA, err := f.history.History(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, historyA, 1)
	assert.Equal(t, models.DirectionOutbound, historyA[0].Direction)
	assert.Equal(t, "big sale", historyA[0].Content)

	historyB, err := f.history.History(ctx, b.ID)
	require.NoError(t, err)
	assert.Empty(t, historyB)
}

func TestDispatchTypeMismatch(t *testing.T) {
	f := newDispatchFixture(t)
	ctx := context.Background()

	campaign, err := f.campaigns.Create(ctx, CreateCampaignInput{
		Name: "Mismatch", Type: models.ChannelEmail, Body: "hi",
	})
	require.NoError(t, err)

	adapter := &fakeAdapter{channel: models.ChannelWhatsApp}
	_, err = f.dispatcher(DispatcherOptions{}).Dispatch(ctx, campaign, adapter)
	assert.True(t, IsTypeMismatchError(err))
}

func TestDispatchSkipsLeadsWithoutAddress(t *testing.T) {
	f := newDispatchFixture(t)
	ctx := context.Background()

	withHandle := mustCreateLead(t, f.leads, CreateLeadInput{
		Name: "Social", Email: "s@x.com", Phone: "1", SocialHandle: "@social",
	})
	noHandle := mustCreateLead(t, f.leads, CreateLeadInput{
		Name: "Quiet", Email: "q@x.com", Phone: "2",
	})

	campaign, err := f.campaigns.Create(ctx, CreateCampaignInput{
		Name: "Handles", Type: models.ChannelSocial, Body: "hi",
		Audience: AudienceInput{TargetLeads: []string{withHandle.ID, noHandle.ID, "no-such-lead"}},
	})
	require.NoError(t, err)

	adapter := &fakeAdapter{channel: models.ChannelSocial}
	report, err := f.dispatcher(DispatcherOptions{}).Dispatch(ctx, campaign, adapter)
	require.NoError(t, err)

	// the address-less lead and the unknown id vanish silently
	assert.Equal(t, 1, report.Attempted)
	assert.Equal(t, 1, report.Succeeded)
	assert.Zero(t, report.Failed)
	require.Len(t, report.Outcomes, 1)
	assert.Equal(t, withHandle.ID, report.Outcomes[0].LeadID)
	assert.Equal(t, []string{"@social"}, adapter.sent)
}

func TestDispatchSkipAlreadySent(t *testing.T) {
	f := newDispatchFixture(t)
	ctx := context.Background()

	a := mustCreateLead(t, f.leads, CreateLeadInput{Name: "A", Email: "a@x.com", Phone: "111"})
	b := mustCreateLead(t, f.leads, CreateLeadInput{Name: "B", Email: "b@x.com", Phone: "222"})

	campaign, err := f.campaigns.Create(ctx, CreateCampaignInput{
		Name: "Retry", Type: models.ChannelWhatsApp, Body: "hi",
		Audience: AudienceInput{TargetLeads: []string{a.ID, b.ID}},
	})
	require.NoError(t, err)

	d := f.dispatcher(DispatcherOptions{SkipAlreadySent: true})

	// first run: b fails
	adapter := &fakeAdapter{channel: models.ChannelWhatsApp, failFor: map[string]bool{"222": true}}
	report, err := d.Dispatch(ctx, campaign, adapter)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Succeeded)
	assert.Equal(t, 1, report.Failed)

	// second run: a is skipped as already sent, b retried and succeeds
	adapter = &fakeAdapter{channel: models.ChannelWhatsApp}
	report, err = d.Dispatch(ctx, campaign, adapter)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Succeeded)
	assert.Equal(t, 1, report.Skipped)
	assert.Zero(t, report.Failed)
	assert.Equal(t, []string{"222"}, adapter.sent)

	require.Len(t, report.Outcomes, 2)
	assert.True(t, report.Outcomes[0].Skipped)
	assert.Equal(t, a.ID, report.Outcomes[0].LeadID)
}

func TestDispatchResendWhenPolicyOff(t *testing.T) {
	f := newDispatchFixture(t)
	ctx := context.Background()

	a := mustCreateLead(t, f.leads, CreateLeadInput{Name: "A", Email: "a@x.com", Phone: "111"})

	campaign, err := f.campaigns.Create(ctx, CreateCampaignInput{
		Name: "Again", Type: models.ChannelWhatsApp, Body: "hi",
		Audience: AudienceInput{TargetLeads: []string{a.ID}},
	})
	require.NoError(t, err)

	d := f.dispatcher(DispatcherOptions{SkipAlreadySent: false})
	adapter := &fakeAdapter{channel: models.ChannelWhatsApp}

	for i := 0; i < 2; i++ {
		report, err := d.Dispatch(ctx, campaign, adapter)
		require.NoError(t, err)
		assert.Equal(t, 1, report.Succeeded)
		assert.Zero(t, report.Skipped)
	}
	assert.Equal(t, []string{"111", "111"}, adapter.sent)

	stored, err := f.campaigns.Get(ctx, campaign.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stored.Sent)
}

func TestDispatchBoundedConcurrencyKeepsOrder(t *testing.T) {
	f := newDispatchFixture(t)
	ctx := context.Background()

	var ids []string
	for i := 0; i < 8; i++ {
		lead := mustCreateLead(t, f.leads, CreateLeadInput{
			Name:  "L",
			Email: "l" + string(rune('a'+i)) + "@x.com",
			Phone: string(rune('1' + i)),
		})
		ids = append(ids, lead.ID)
	}

	campaign, err := f.campaigns.Create(ctx, CreateCampaignInput{
		Name: "Parallel", Type: models.ChannelWhatsApp, Body: "hi",
		Audience: AudienceInput{TargetLeads: ids},
	})
	require.NoError(t, err)

	adapter := &fakeAdapter{channel: models.ChannelWhatsApp}
	report, err := f.dispatcher(DispatcherOptions{Concurrency: 4}).Dispatch(ctx, campaign, adapter)
	require.NoError(t, err)

	require.Len(t, report.Outcomes, 8)
	for i, outcome := range report.Outcomes {
		assert.Equal(t, ids[i], outcome.LeadID, "outcomes keep audience resolution order")
		assert.True(t, outcome.Success)
	}
	assert.Equal(t, 8, report.Succeeded)
}
