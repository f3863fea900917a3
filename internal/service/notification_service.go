package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-sla/internal/config"
	"github.com/spec-kit/helpdesk-sla/internal/domain"
	"github.com/spec-kit/helpdesk-sla/internal/events"
	"github.com/spec-kit/helpdesk-sla/internal/repository"
)

// EmailMessage describes an outbound email handed to the delivery stub.
type EmailMessage struct {
	To          string
	Subject     string
	TemplateKey string
	Template    string
	Data        map[string]any
}

// NotificationService persists in-app notifications and hands email/webhook
// payloads to the (stubbed) external delivery channels. It also subscribes to
// ticket lifecycle events for observability.
type NotificationService struct {
	notifications repository.NotificationRepository
	dispatcher    events.Dispatcher
	logger        *zap.Logger
	cfg           config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(notifications repository.NotificationRepository, dispatcher events.Dispatcher, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		notifications: notifications,
		dispatcher:    dispatcher,
		logger:        logger,
		cfg:           cfg,
	}
}

// CreateNotification writes an in-app notification row.
func (n *NotificationService) CreateNotification(ctx context.Context, notification *domain.Notification) error {
	if notification.ID == "" {
		notification.ID = uuid.NewString()
	}
	if err := n.notifications.Create(ctx, notification); err != nil {
		return err
	}
	n.logger.Info("notification created",
		zap.String("notification_id", notification.ID),
		zap.String("recipient_id", notification.RecipientID),
		zap.String("type", string(notification.Type)))
	return nil
}

// SendEmail hands the message to the external email channel. Delivery itself
// is an external collaborator; this logs the dispatch.
func (n *NotificationService) SendEmail(ctx context.Context, msg EmailMessage) error {
	if !n.cfg.EmailEnabled || strings.TrimSpace(n.cfg.EmailFrom) == "" {
		n.logger.Debug("email delivery disabled; dropping message",
			zap.String("to", msg.To),
			zap.String("template_key", msg.TemplateKey))
		return nil
	}
	n.logger.Info("dispatching email",
		zap.String("from", n.cfg.EmailFrom),
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.String("template_key", msg.TemplateKey))
	return nil
}

// ListForRecipient returns in-app notifications for an agent.
func (n *NotificationService) ListForRecipient(ctx context.Context, recipientID string, limit, offset int) ([]domain.Notification, error) {
	return n.notifications.ListByRecipient(ctx, recipientID, limit, offset)
}

// RegisterHandlers subscribes to ticket lifecycle events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventTicketCreated, n.handleEvent)
	n.dispatcher.Subscribe(events.EventTicketStatusChanged, n.handleEvent)
	n.dispatcher.Subscribe(events.EventTicketPriorityChanged, n.handleEvent)
	n.dispatcher.Subscribe(events.EventTicketFirstResponse, n.handleEvent)
	n.dispatcher.Subscribe(events.EventSlaAtRisk, n.handleEvent)
	n.dispatcher.Subscribe(events.EventSlaBreached, n.handleEvent)
}

func (n *NotificationService) handleEvent(ctx context.Context, event events.Event) error {
	n.logger.Info(string(event.Type),
		zap.String("ticket_id", event.TicketID),
		zap.Any("payload", event.Payload))
	n.sendWebhookStub(ctx, event)
	return nil
}

func (n *NotificationService) sendWebhookStub(ctx context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("sendWebhookStub",
		zap.String("url", n.cfg.WebhookURL),
		zap.String("ticket_id", event.TicketID),
		zap.String("event_type", string(event.Type)))
}
