package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spec-kit/helpdesk-sla/internal/config"
	"github.com/spec-kit/helpdesk-sla/internal/domain"
	"github.com/spec-kit/helpdesk-sla/internal/events"
	"github.com/spec-kit/helpdesk-sla/internal/observability"
	"github.com/spec-kit/helpdesk-sla/internal/repository"
	"github.com/spec-kit/helpdesk-sla/internal/sla"
)

// Notifier is the outbound notification capability the scan depends on.
type Notifier interface {
	CreateNotification(ctx context.Context, notification *domain.Notification) error
	SendEmail(ctx context.Context, msg EmailMessage) error
}

// ScanStateStore remembers the last notified status per ticket dimension.
// Used only in notify-once-per-transition mode; a store failure degrades to
// re-notifying, never to dropping a notification.
type ScanStateStore interface {
	LastNotifiedStatus(ctx context.Context, ticketID string, dimension sla.Dimension) (sla.Status, bool, error)
	SetNotifiedStatus(ctx context.Context, ticketID string, dimension sla.Dimension, status sla.Status) error
}

// ScanSummary reports one breach scan invocation.
type ScanSummary struct {
	Scanned  int
	Notified []string
	Skipped  int
}

// BreachScanService sweeps open tickets approaching or past their resolution
// deadline and raises notifications. Safe to invoke from overlapping
// triggers; delivery is at-least-once.
type BreachScanService struct {
	tickets    repository.TicketRepository
	orgs       repository.OrganizationRepository
	agents     repository.AgentRepository
	notifier   Notifier
	state      ScanStateStore
	dispatcher events.Dispatcher
	cfg        config.ScanConfig
	linkBase   string
	logger     *zap.Logger
	metrics    *observability.Metrics
}

// BreachScanDependencies bundles collaborators for the scan driver.
type BreachScanDependencies struct {
	TicketRepo repository.TicketRepository
	OrgRepo    repository.OrganizationRepository
	AgentRepo  repository.AgentRepository
	Notifier   Notifier
	State      ScanStateStore
	Dispatcher events.Dispatcher
	Config     config.ScanConfig
	// LinkBaseURL prefixes notification links so they resolve in the web UI.
	LinkBaseURL string
	Logger      *zap.Logger
	Metrics     *observability.Metrics
}

// NewBreachScanService constructs the driver.
func NewBreachScanService(deps BreachScanDependencies) *BreachScanService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BreachScanService{
		tickets:    deps.TicketRepo,
		orgs:       deps.OrgRepo,
		agents:     deps.AgentRepo,
		notifier:   deps.Notifier,
		state:      deps.State,
		dispatcher: deps.Dispatcher,
		cfg:        deps.Config,
		linkBase:   deps.LinkBaseURL,
		logger:     logger,
		metrics:    deps.Metrics,
	}
}

// Run executes one scan at the given instant. Candidate tickets are open
// tickets whose resolution deadline is inside the lookahead window or already
// past. Per-ticket failures are logged and counted as skipped; only a failure
// to list candidates fails the scan itself.
func (s *BreachScanService) Run(ctx context.Context, now time.Time) (ScanSummary, error) {
	candidates, err := s.tickets.ListDueForScan(ctx, repository.ScanFilter{
		DueBefore: now.Add(s.cfg.Lookahead()),
	})
	if err != nil {
		return ScanSummary{}, fmt.Errorf("list scan candidates: %w", err)
	}

	summary := ScanSummary{Scanned: len(candidates)}

	var mu sync.Mutex
	var group errgroup.Group
	limit := s.cfg.Concurrency
	if limit <= 0 {
		limit = 1
	}
	group.SetLimit(limit)

	for i := range candidates {
		ticket := candidates[i]
		group.Go(func() error {
			notified, err := s.processCandidate(ctx, &ticket, now)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				s.logger.Warn("skipping ticket in breach scan",
					zap.String("ticket_id", ticket.ID),
					zap.Error(err))
				summary.Skipped++
				return nil
			}
			if notified {
				summary.Notified = append(summary.Notified, ticket.ID)
			}
			return nil
		})
	}
	_ = group.Wait()

	s.metrics.RecordScan(summary.Scanned, len(summary.Notified), summary.Skipped)
	s.logger.Info("breach scan complete",
		zap.Int("scanned", summary.Scanned),
		zap.Int("notified", len(summary.Notified)),
		zap.Int("skipped", summary.Skipped))
	return summary, nil
}

func (s *BreachScanService) processCandidate(ctx context.Context, ticket *domain.Ticket, now time.Time) (bool, error) {
	eval := sla.EvaluateTicket(ticket, now)

	flagged := make([]*sla.Evaluation, 0, 2)
	if e := eval.Resolution; e != nil && e.Status != sla.StatusOnTrack {
		flagged = append(flagged, e)
	}
	if s.cfg.NotifyResponseBreach {
		if e := eval.Response; e != nil && e.Status != sla.StatusOnTrack {
			flagged = append(flagged, e)
		}
	}
	if len(flagged) == 0 {
		return false, nil
	}

	if ticket.AssigneeID == nil {
		return false, errors.New("ticket has no assignee")
	}
	agent, err := s.agents.GetByID(ctx, *ticket.AssigneeID)
	if err != nil {
		return false, fmt.Errorf("fetch assignee %s: %w", *ticket.AssigneeID, err)
	}
	org, err := s.orgs.GetByID(ctx, ticket.OrgID)
	if err != nil {
		return false, fmt.Errorf("fetch organization %s: %w", ticket.OrgID, err)
	}

	notified := false
	var firstErr error
	for _, evaluation := range flagged {
		sent, err := s.notifyDimension(ctx, ticket, agent, org, evaluation)
		if err != nil && firstErr == nil {
			firstErr = err
		}
		notified = notified || sent
	}
	if !notified && firstErr != nil {
		return false, firstErr
	}
	return notified, nil
}

func (s *BreachScanService) notifyDimension(ctx context.Context, ticket *domain.Ticket, agent *domain.Agent, org *domain.Organization, evaluation *sla.Evaluation) (bool, error) {
	if s.cfg.NotifyOncePerTransition && s.state != nil {
		last, found, err := s.state.LastNotifiedStatus(ctx, ticket.ID, evaluation.Dimension)
		if err != nil {
			// degrade to re-notifying rather than dropping
			s.logger.Warn("scan state unavailable",
				zap.String("ticket_id", ticket.ID),
				zap.Error(err))
		} else if found && last == evaluation.Status {
			return false, nil
		}
	}

	notification := s.buildNotification(ticket, agent, evaluation)
	if err := s.notifier.CreateNotification(ctx, notification); err != nil {
		return false, fmt.Errorf("create notification: %w", err)
	}

	templateKey := domain.TemplateSlaAtRisk
	if evaluation.Status == sla.StatusBreached {
		templateKey = domain.TemplateSlaBreached
	}
	if template, ok := org.EmailTemplate(templateKey); ok {
		err := s.notifier.SendEmail(ctx, EmailMessage{
			To:          agent.Email,
			Subject:     notification.Title,
			TemplateKey: templateKey,
			Template:    template,
			Data: map[string]any{
				"ticket_key": ticket.ExternalKey,
				"title":      ticket.Title,
				"dimension":  evaluation.Dimension,
				"status":     evaluation.Status,
				"remaining":  sla.FormatRemaining(evaluation.SecondsRemaining),
				"link":       notification.Link,
			},
		})
		if err != nil {
			s.logger.Warn("email dispatch failed",
				zap.String("ticket_id", ticket.ID),
				zap.Error(err))
		}
	}

	if s.cfg.NotifyOncePerTransition && s.state != nil {
		if err := s.state.SetNotifiedStatus(ctx, ticket.ID, evaluation.Dimension, evaluation.Status); err != nil {
			s.logger.Warn("recording scan state failed",
				zap.String("ticket_id", ticket.ID),
				zap.Error(err))
		}
	}

	s.publishTransition(ctx, ticket, evaluation)
	return true, nil
}

func (s *BreachScanService) buildNotification(ticket *domain.Ticket, agent *domain.Agent, evaluation *sla.Evaluation) *domain.Notification {
	dimension := "Resolution"
	if evaluation.Dimension == sla.DimensionResponse {
		dimension = "First response"
	}
	remaining := sla.FormatRemaining(evaluation.SecondsRemaining)

	var title, description string
	notificationType := domain.NotificationSlaAtRisk
	if evaluation.Status == sla.StatusBreached {
		notificationType = domain.NotificationSlaBreached
		title = fmt.Sprintf("%s SLA breached", dimension)
		description = fmt.Sprintf("Ticket %s is overdue by %s", ticket.ExternalKey, remaining)
	} else {
		title = fmt.Sprintf("%s SLA at risk", dimension)
		description = fmt.Sprintf("Ticket %s is due in %s", ticket.ExternalKey, remaining)
	}

	return &domain.Notification{
		RecipientID: agent.ID,
		Type:        notificationType,
		Title:       title,
		Description: description,
		Link:        s.linkBase + ticketLink(ticket.ID),
		Metadata: map[string]any{
			"ticket_id":         ticket.ID,
			"dimension":         evaluation.Dimension,
			"status":            evaluation.Status,
			"seconds_remaining": evaluation.SecondsRemaining,
		},
	}
}

func ticketLink(ticketID string) string {
	return "/tickets/" + ticketID
}

func (s *BreachScanService) publishTransition(ctx context.Context, ticket *domain.Ticket, evaluation *sla.Evaluation) {
	if s.dispatcher == nil {
		return
	}
	eventType := events.EventSlaAtRisk
	if evaluation.Status == sla.StatusBreached {
		eventType = events.EventSlaBreached
	}
	event := events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		TicketID:  ticket.ID,
		OrgID:     ticket.OrgID,
		Timestamp: time.Now(),
		Payload: events.SlaTransitionPayload{
			Dimension:        evaluation.Dimension,
			Status:           evaluation.Status,
			SecondsRemaining: evaluation.SecondsRemaining,
			AssigneeID:       ticket.AssigneeID,
		},
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event handlers reported errors",
			zap.String("event_type", string(eventType)),
			zap.Error(err))
	}
}
