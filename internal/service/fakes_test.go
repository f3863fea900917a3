package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/helpdesk-sla/internal/domain"
	"github.com/spec-kit/helpdesk-sla/internal/events"
	"github.com/spec-kit/helpdesk-sla/internal/repository"
	"github.com/spec-kit/helpdesk-sla/internal/sla"
)

type fakeTicketRepo struct {
	mu      sync.Mutex
	seq     int
	tickets map[string]domain.Ticket
	scan    []domain.Ticket
	scanErr error
	updates int
}

func newFakeTicketRepo() *fakeTicketRepo {
	return &fakeTicketRepo{tickets: make(map[string]domain.Ticket)}
}

func (f *fakeTicketRepo) Create(_ context.Context, ticket *domain.Ticket) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	ticket.ID = fmt.Sprintf("ticket-%d", f.seq)
	ticket.CreatedAt = time.Now()
	ticket.UpdatedAt = ticket.CreatedAt
	f.tickets[ticket.ID] = *ticket
	return nil
}

func (f *fakeTicketRepo) Update(_ context.Context, ticket *domain.Ticket) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.tickets[ticket.ID]; !ok {
		return pgx.ErrNoRows
	}
	f.updates++
	ticket.UpdatedAt = time.Now()
	f.tickets[ticket.ID] = *ticket
	return nil
}

func (f *fakeTicketRepo) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ticket, ok := f.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &ticket, nil
}

func (f *fakeTicketRepo) GetByExternalKey(_ context.Context, key string) (*domain.Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, ticket := range f.tickets {
		if ticket.ExternalKey == key {
			found := ticket
			return &found, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeTicketRepo) ListWithFilter(_ context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []domain.Ticket
	for _, ticket := range f.tickets {
		if filter.OrgID != nil && ticket.OrgID != *filter.OrgID {
			continue
		}
		result = append(result, ticket)
	}
	return result, nil
}

func (f *fakeTicketRepo) ListDueForScan(_ context.Context, _ repository.ScanFilter) ([]domain.Ticket, error) {
	if f.scanErr != nil {
		return nil, f.scanErr
	}
	return f.scan, nil
}

type fakeOrgRepo struct {
	mu      sync.Mutex
	orgs    map[string]*domain.Organization
	getErr  error
	updated map[string]domain.SlaPolicy
}

func newFakeOrgRepo(orgs ...*domain.Organization) *fakeOrgRepo {
	repo := &fakeOrgRepo{
		orgs:    make(map[string]*domain.Organization),
		updated: make(map[string]domain.SlaPolicy),
	}
	for _, org := range orgs {
		repo.orgs[org.ID] = org
	}
	return repo
}

func (f *fakeOrgRepo) GetByID(_ context.Context, id string) (*domain.Organization, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	org, ok := f.orgs[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return org, nil
}

func (f *fakeOrgRepo) UpdateSlaPolicy(_ context.Context, orgID string, policy domain.SlaPolicy) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	org, ok := f.orgs[orgID]
	if !ok {
		return pgx.ErrNoRows
	}
	org.SlaPolicy = policy
	f.updated[orgID] = policy
	return nil
}

type fakeAgentRepo struct {
	mu     sync.Mutex
	agents map[string]*domain.Agent
	errs   map[string]error
}

func newFakeAgentRepo(agents ...*domain.Agent) *fakeAgentRepo {
	repo := &fakeAgentRepo{
		agents: make(map[string]*domain.Agent),
		errs:   make(map[string]error),
	}
	for _, agent := range agents {
		repo.agents[agent.ID] = agent
	}
	return repo
}

func (f *fakeAgentRepo) GetByID(_ context.Context, id string) (*domain.Agent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.errs[id]; ok {
		return nil, err
	}
	agent, ok := f.agents[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return agent, nil
}

func (f *fakeAgentRepo) GetByEmail(_ context.Context, email string) (*domain.Agent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, agent := range f.agents {
		if agent.Email == email {
			return agent, nil
		}
	}
	return nil, pgx.ErrNoRows
}

type fakeNotifier struct {
	mu            sync.Mutex
	notifications []domain.Notification
	emails        []EmailMessage
	createErr     error
}

func (f *fakeNotifier) CreateNotification(_ context.Context, notification *domain.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	if notification.ID == "" {
		notification.ID = fmt.Sprintf("notification-%d", len(f.notifications)+1)
	}
	f.notifications = append(f.notifications, *notification)
	return nil
}

func (f *fakeNotifier) SendEmail(_ context.Context, msg EmailMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.emails = append(f.emails, msg)
	return nil
}

func (f *fakeNotifier) byType(t domain.NotificationType) []domain.Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []domain.Notification
	for _, n := range f.notifications {
		if n.Type == t {
			result = append(result, n)
		}
	}
	return result
}

type fakeScanState struct {
	mu     sync.Mutex
	states map[string]sla.Status
	getErr error
	setErr error
}

func newFakeScanState() *fakeScanState {
	return &fakeScanState{states: make(map[string]sla.Status)}
}

func (f *fakeScanState) LastNotifiedStatus(_ context.Context, ticketID string, dimension sla.Dimension) (sla.Status, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return "", false, f.getErr
	}
	status, ok := f.states[ticketID+"/"+string(dimension)]
	return status, ok, nil
}

func (f *fakeScanState) SetNotifiedStatus(_ context.Context, ticketID string, dimension sla.Dimension, status sla.Status) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.setErr != nil {
		return f.setErr
	}
	f.states[ticketID+"/"+string(dimension)] = status
	return nil
}

type recordingDispatcher struct {
	mu     sync.Mutex
	events []events.Event
}

func (d *recordingDispatcher) Publish(_ context.Context, event events.Event) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, event)
	return nil
}

func (d *recordingDispatcher) Subscribe(events.EventType, events.EventHandler) {}

func (d *recordingDispatcher) byType(t events.EventType) []events.Event {
	d.mu.Lock()
	defer d.mu.Unlock()
	var result []events.Event
	for _, event := range d.events {
		if event.Type == t {
			result = append(result, event)
		}
	}
	return result
}
