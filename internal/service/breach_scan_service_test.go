package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-sla/internal/config"
	"github.com/spec-kit/helpdesk-sla/internal/domain"
	"github.com/spec-kit/helpdesk-sla/internal/events"
	"github.com/spec-kit/helpdesk-sla/internal/observability"
	"github.com/spec-kit/helpdesk-sla/internal/sla"
)

var scanNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

type scanHarness struct {
	tickets    *fakeTicketRepo
	orgs       *fakeOrgRepo
	agents     *fakeAgentRepo
	notifier   *fakeNotifier
	state      *fakeScanState
	dispatcher *recordingDispatcher
	metrics    *observability.Metrics
	svc        *BreachScanService
}

func newScanHarness(cfg config.ScanConfig) *scanHarness {
	h := &scanHarness{
		tickets: newFakeTicketRepo(),
		orgs: newFakeOrgRepo(&domain.Organization{
			ID:       "org-1",
			Name:     "Acme Support",
			IsActive: true,
		}),
		agents: newFakeAgentRepo(&domain.Agent{
			ID:     "agent-1",
			OrgID:  "org-1",
			Name:   "Dana",
			Email:  "dana@acme.test",
			Role:   domain.AgentRoleAgent,
			Active: true,
		}),
		notifier:   &fakeNotifier{},
		state:      newFakeScanState(),
		dispatcher: &recordingDispatcher{},
		metrics:    observability.NewMetrics(),
	}
	h.svc = NewBreachScanService(BreachScanDependencies{
		TicketRepo:  h.tickets,
		OrgRepo:     h.orgs,
		AgentRepo:   h.agents,
		Notifier:    h.notifier,
		State:       h.state,
		Dispatcher:  h.dispatcher,
		Config:      cfg,
		LinkBaseURL: "https://desk.acme.test",
		Logger:      zap.NewNop(),
		Metrics:     h.metrics,
	})
	return h
}

func defaultScanConfig() config.ScanConfig {
	return config.ScanConfig{LookaheadMinutes: 60, Concurrency: 2}
}

func candidate(id string, assigneeID *string, resolutionDue time.Time) domain.Ticket {
	return domain.Ticket{
		ID:            id,
		ExternalKey:   "TCK-" + id,
		OrgID:         "org-1",
		RequesterID:   "user-7",
		AssigneeID:    assigneeID,
		Title:         "Something broke",
		Status:        domain.TicketStatusActive,
		Priority:      domain.TicketPriorityHigh,
		ResolutionDue: &resolutionDue,
	}
}

func TestBreachScanNotifiesAtRiskAndBreached(t *testing.T) {
	h := newScanHarness(defaultScanConfig())
	assignee := "agent-1"
	h.tickets.scan = []domain.Ticket{
		candidate("t-1", &assignee, scanNow.Add(2*time.Hour)),
		candidate("t-2", &assignee, scanNow.Add(30*time.Minute)),
		candidate("t-3", &assignee, scanNow.Add(-time.Hour)),
	}

	summary, err := h.svc.Run(context.Background(), scanNow)
	require.NoError(t, err)

	assert.Equal(t, 3, summary.Scanned)
	assert.ElementsMatch(t, []string{"t-2", "t-3"}, summary.Notified)
	assert.Zero(t, summary.Skipped)

	atRisk := h.notifier.byType(domain.NotificationSlaAtRisk)
	require.Len(t, atRisk, 1)
	assert.Equal(t, "agent-1", atRisk[0].RecipientID)
	assert.Equal(t, "Resolution SLA at risk", atRisk[0].Title)
	assert.Equal(t, "Ticket TCK-t-2 is due in 00:30:00", atRisk[0].Description)
	assert.Equal(t, "https://desk.acme.test/tickets/t-2", atRisk[0].Link)

	breached := h.notifier.byType(domain.NotificationSlaBreached)
	require.Len(t, breached, 1)
	assert.Equal(t, "Resolution SLA breached", breached[0].Title)
	assert.Equal(t, "Ticket TCK-t-3 is overdue by 01:00:00", breached[0].Description)

	assert.Len(t, h.dispatcher.byType(events.EventSlaAtRisk), 1)
	assert.Len(t, h.dispatcher.byType(events.EventSlaBreached), 1)

	runs, scanned, notified, skipped := h.metrics.ScanTotals()
	assert.Equal(t, int64(1), runs)
	assert.Equal(t, int64(3), scanned)
	assert.Equal(t, int64(2), notified)
	assert.Equal(t, int64(0), skipped)
}

func TestBreachScanCandidateListFailure(t *testing.T) {
	h := newScanHarness(defaultScanConfig())
	h.tickets.scanErr = errors.New("connection refused")

	_, err := h.svc.Run(context.Background(), scanNow)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "list scan candidates")
	assert.Empty(t, h.notifier.notifications)
}

func TestBreachScanSkipsUnassignedFlaggedTicket(t *testing.T) {
	h := newScanHarness(defaultScanConfig())
	h.tickets.scan = []domain.Ticket{
		candidate("t-1", nil, scanNow.Add(-time.Hour)),
		candidate("t-2", nil, scanNow.Add(2*time.Hour)),
	}

	summary, err := h.svc.Run(context.Background(), scanNow)
	require.NoError(t, err)

	// Only the flagged ticket needs an assignee; the on-track one passes through.
	assert.Equal(t, 2, summary.Scanned)
	assert.Equal(t, 1, summary.Skipped)
	assert.Empty(t, summary.Notified)
	assert.Empty(t, h.notifier.notifications)
}

func TestBreachScanSkipsOnAgentLookupFailure(t *testing.T) {
	h := newScanHarness(defaultScanConfig())
	known := "agent-1"
	unknown := "agent-ghost"
	h.tickets.scan = []domain.Ticket{
		candidate("t-1", &unknown, scanNow.Add(-time.Hour)),
		candidate("t-2", &known, scanNow.Add(-time.Hour)),
	}

	summary, err := h.svc.Run(context.Background(), scanNow)
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Scanned)
	assert.Equal(t, 1, summary.Skipped)
	assert.Equal(t, []string{"t-2"}, summary.Notified)
}

func TestBreachScanSkipsOnNotificationFailure(t *testing.T) {
	h := newScanHarness(defaultScanConfig())
	h.notifier.createErr = errors.New("insert failed")
	assignee := "agent-1"
	h.tickets.scan = []domain.Ticket{
		candidate("t-1", &assignee, scanNow.Add(-time.Hour)),
	}

	summary, err := h.svc.Run(context.Background(), scanNow)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Skipped)
	assert.Empty(t, summary.Notified)
}

func TestBreachScanReNotifiesEveryRunByDefault(t *testing.T) {
	h := newScanHarness(defaultScanConfig())
	assignee := "agent-1"
	h.tickets.scan = []domain.Ticket{
		candidate("t-1", &assignee, scanNow.Add(30*time.Minute)),
	}

	for i := 0; i < 2; i++ {
		summary, err := h.svc.Run(context.Background(), scanNow)
		require.NoError(t, err)
		assert.Equal(t, []string{"t-1"}, summary.Notified)
	}
	assert.Len(t, h.notifier.notifications, 2)
}

func TestBreachScanNotifyOncePerTransition(t *testing.T) {
	cfg := defaultScanConfig()
	cfg.NotifyOncePerTransition = true
	h := newScanHarness(cfg)
	assignee := "agent-1"
	h.tickets.scan = []domain.Ticket{
		candidate("t-1", &assignee, scanNow.Add(30*time.Minute)),
	}

	summary, err := h.svc.Run(context.Background(), scanNow)
	require.NoError(t, err)
	assert.Equal(t, []string{"t-1"}, summary.Notified)

	// Same status on the next run stays quiet.
	summary, err = h.svc.Run(context.Background(), scanNow.Add(5*time.Minute))
	require.NoError(t, err)
	assert.Empty(t, summary.Notified)
	assert.Zero(t, summary.Skipped)

	// Crossing into breached is a new transition and notifies again.
	summary, err = h.svc.Run(context.Background(), scanNow.Add(2*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, []string{"t-1"}, summary.Notified)

	assert.Len(t, h.notifier.notifications, 2)
}

func TestBreachScanStateFailureDegradesToReNotify(t *testing.T) {
	cfg := defaultScanConfig()
	cfg.NotifyOncePerTransition = true
	h := newScanHarness(cfg)
	h.state.getErr = errors.New("redis down")
	assignee := "agent-1"
	h.tickets.scan = []domain.Ticket{
		candidate("t-1", &assignee, scanNow.Add(30*time.Minute)),
	}

	for i := 0; i < 2; i++ {
		summary, err := h.svc.Run(context.Background(), scanNow)
		require.NoError(t, err)
		assert.Equal(t, []string{"t-1"}, summary.Notified)
	}
	assert.Len(t, h.notifier.notifications, 2)
}

func TestBreachScanResponseDimensionOptIn(t *testing.T) {
	assignee := "agent-1"
	responseDue := scanNow.Add(-10 * time.Minute)
	ticket := candidate("t-1", &assignee, scanNow.Add(3*time.Hour))
	ticket.FirstResponseDue = &responseDue

	t.Run("off by default", func(t *testing.T) {
		h := newScanHarness(defaultScanConfig())
		h.tickets.scan = []domain.Ticket{ticket}

		summary, err := h.svc.Run(context.Background(), scanNow)
		require.NoError(t, err)
		assert.Empty(t, summary.Notified)
		assert.Empty(t, h.notifier.notifications)
	})

	t.Run("enabled", func(t *testing.T) {
		cfg := defaultScanConfig()
		cfg.NotifyResponseBreach = true
		h := newScanHarness(cfg)
		h.tickets.scan = []domain.Ticket{ticket}

		summary, err := h.svc.Run(context.Background(), scanNow)
		require.NoError(t, err)
		assert.Equal(t, []string{"t-1"}, summary.Notified)

		breached := h.notifier.byType(domain.NotificationSlaBreached)
		require.Len(t, breached, 1)
		assert.Equal(t, "First response SLA breached", breached[0].Title)
	})
}

func TestBreachScanSendsEmailWhenTemplateConfigured(t *testing.T) {
	h := newScanHarness(defaultScanConfig())
	h.orgs.orgs["org-1"].EmailTemplates = map[string]string{
		domain.TemplateSlaBreached: "Ticket {{ticket_key}} blew its deadline",
	}
	assignee := "agent-1"
	h.tickets.scan = []domain.Ticket{
		candidate("t-1", &assignee, scanNow.Add(-time.Hour)),
		candidate("t-2", &assignee, scanNow.Add(30*time.Minute)),
	}

	summary, err := h.svc.Run(context.Background(), scanNow)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"t-1", "t-2"}, summary.Notified)

	// Only the breached template is configured, so the at-risk ticket gets
	// an in-app notification but no email.
	require.Len(t, h.notifier.emails, 1)
	email := h.notifier.emails[0]
	assert.Equal(t, "dana@acme.test", email.To)
	assert.Equal(t, domain.TemplateSlaBreached, email.TemplateKey)
	assert.Equal(t, "Resolution SLA breached", email.Subject)
	assert.Len(t, h.notifier.notifications, 2)
}

func TestBreachScanExcludedStatusesNeverNotify(t *testing.T) {
	h := newScanHarness(defaultScanConfig())
	assignee := "agent-1"
	closed := candidate("t-1", &assignee, scanNow.Add(-time.Hour))
	closed.Status = domain.TicketStatusClosed
	onHold := candidate("t-2", &assignee, scanNow.Add(-time.Hour))
	onHold.Status = domain.TicketStatusOnHold
	h.tickets.scan = []domain.Ticket{closed, onHold}

	summary, err := h.svc.Run(context.Background(), scanNow)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Scanned)
	assert.Empty(t, summary.Notified)
	assert.Zero(t, summary.Skipped)
	assert.Empty(t, h.notifier.notifications)
}

func TestBreachScanTransitionEventCarriesEvaluation(t *testing.T) {
	h := newScanHarness(defaultScanConfig())
	assignee := "agent-1"
	h.tickets.scan = []domain.Ticket{
		candidate("t-1", &assignee, scanNow.Add(-time.Hour)),
	}

	_, err := h.svc.Run(context.Background(), scanNow)
	require.NoError(t, err)

	published := h.dispatcher.byType(events.EventSlaBreached)
	require.Len(t, published, 1)
	payload, ok := published[0].Payload.(events.SlaTransitionPayload)
	require.True(t, ok)
	assert.Equal(t, sla.DimensionResolution, payload.Dimension)
	assert.Equal(t, sla.StatusBreached, payload.Status)
	assert.Equal(t, int64(-3600), payload.SecondsRemaining)
	require.NotNil(t, payload.AssigneeID)
	assert.Equal(t, "agent-1", *payload.AssigneeID)
}
