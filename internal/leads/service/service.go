// Package service contains the lead management business logic: CRUD, the
// reasoning turn orchestration and the manager summary generation.
package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"leadpilot_backend/internal/events"
	"leadpilot_backend/internal/leads/repository"
	"leadpilot_backend/internal/reasoning"
	"leadpilot_backend/platform/apperr"
	"leadpilot_backend/platform/logger"
	"leadpilot_backend/platform/phone"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Store is the persistence surface the service depends on.
type Store interface {
	Create(ctx context.Context, params repository.CreateLeadParams) (repository.Lead, error)
	GetByID(ctx context.Context, id uuid.UUID) (repository.Lead, error)
	GetByPhone(ctx context.Context, phone string) (repository.Lead, error)
	List(ctx context.Context) ([]repository.Lead, error)
	Update(ctx context.Context, id uuid.UUID, params repository.UpdateLeadParams) (repository.Lead, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ApplyQualification(ctx context.Context, id uuid.UUID, u repository.QualificationUpdate) (repository.Lead, error)
	CreateFromQualification(ctx context.Context, u repository.QualificationUpdate) (repository.Lead, error)
	SetManagerSummary(ctx context.Context, id uuid.UUID, summary string) error
	InsertReasoningLog(ctx context.Context, params repository.InsertReasoningLogParams) (repository.ReasoningLog, error)
	ListReasoningLogs(ctx context.Context, leadID uuid.UUID) ([]repository.ReasoningLog, error)
	ListCallsForLead(ctx context.Context, leadID uuid.UUID) ([]repository.CallRecord, error)
	ListAppointmentsForLead(ctx context.Context, leadID uuid.UUID) ([]repository.AppointmentRecord, error)
}

// Reasoner is the reasoning engine surface used by this service.
type Reasoner interface {
	Reason(ctx context.Context, userInput string, convCtx reasoning.Context) reasoning.Result
	SummarizeForManager(ctx context.Context, leadData, reasoningLogs, calls any) string
}

// FollowUpScheduler enqueues a delayed nurture follow-up. Nil is allowed:
// without a worker the nurture path simply skips scheduling.
type FollowUpScheduler interface {
	ScheduleFollowUp(ctx context.Context, leadID uuid.UUID, delay time.Duration) error
}

type Service struct {
	repo      Store
	reasoner  Reasoner
	bus       events.Bus
	scheduler FollowUpScheduler
	log       *logger.Logger
}

func New(repo Store, reasoner Reasoner, bus events.Bus, scheduler FollowUpScheduler, log *logger.Logger) *Service {
	return &Service{repo: repo, reasoner: reasoner, bus: bus, scheduler: scheduler, log: log}
}

type CreateInput struct {
	Name     string
	Phone    *string
	Email    *string
	LeadType string
}

func (s *Service) Create(ctx context.Context, input CreateInput) (repository.Lead, error) {
	if input.Name == "" {
		input.Name = "New Lead"
	}
	if input.LeadType == "" {
		input.LeadType = reasoning.LeadTypeBuyer
	}
	if input.Phone != nil {
		normalized := phone.NormalizeE164(*input.Phone)
		input.Phone = &normalized
	}

	lead, err := s.repo.Create(ctx, repository.CreateLeadParams{
		Name:     input.Name,
		Phone:    input.Phone,
		Email:    input.Email,
		LeadType: input.LeadType,
	})
	if err != nil {
		return repository.Lead{}, apperr.Wrap(apperr.KindInternal, "failed to create lead", err).WithOp("leads.Create")
	}

	s.bus.Publish(ctx, events.LeadCreated{
		BaseEvent: events.NewBaseEvent(),
		LeadID:    lead.ID,
		LeadType:  lead.LeadType,
		Source:    "api",
	})

	return lead, nil
}

func (s *Service) List(ctx context.Context) ([]repository.Lead, error) {
	leads, err := s.repo.List(ctx)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to list leads", err).WithOp("leads.List")
	}
	return leads, nil
}

// Detail is the full lead view: the lead plus its reasoning, call and
// appointment history.
type Detail struct {
	Lead          repository.Lead
	ReasoningLogs []repository.ReasoningLog
	Calls         []repository.CallRecord
	Appointments  []repository.AppointmentRecord
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (Detail, error) {
	lead, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return Detail{}, apperr.NotFound("lead not found")
		}
		return Detail{}, apperr.Wrap(apperr.KindInternal, "failed to load lead", err).WithOp("leads.Get")
	}

	detail := Detail{Lead: lead}

	// histories are independent reads, fetch them concurrently
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		detail.ReasoningLogs, err = s.repo.ListReasoningLogs(gctx, id)
		return err
	})
	g.Go(func() error {
		var err error
		detail.Calls, err = s.repo.ListCallsForLead(gctx, id)
		return err
	})
	g.Go(func() error {
		var err error
		detail.Appointments, err = s.repo.ListAppointmentsForLead(gctx, id)
		return err
	})
	if err := g.Wait(); err != nil {
		return Detail{}, apperr.Wrap(apperr.KindInternal, "failed to load lead", err).WithOp("leads.Get")
	}

	return detail, nil
}

type UpdateInput struct {
	Name     *string
	Phone    *string
	Email    *string
	LeadType *string
	Status   *string
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (repository.Lead, error) {
	if input.Phone != nil {
		normalized := phone.NormalizeE164(*input.Phone)
		input.Phone = &normalized
	}

	lead, err := s.repo.Update(ctx, id, repository.UpdateLeadParams{
		Name:     input.Name,
		Phone:    input.Phone,
		Email:    input.Email,
		LeadType: input.LeadType,
		Status:   input.Status,
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return repository.Lead{}, apperr.NotFound("lead not found")
		}
		return repository.Lead{}, apperr.Wrap(apperr.KindInternal, "failed to update lead", err).WithOp("leads.Update")
	}
	return lead, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("lead not found")
		}
		return apperr.Wrap(apperr.KindInternal, "failed to delete lead", err).WithOp("leads.Delete")
	}
	return nil
}

// TimelineEntry is one event in a lead's merged history, newest first.
type TimelineEntry struct {
	Kind       string    `json:"kind"`
	OccurredAt time.Time `json:"occurred_at"`
	Title      string    `json:"title"`
	Detail     *string   `json:"detail,omitempty"`
	RefID      uuid.UUID `json:"ref_id"`
}

// Timeline flattens the lead's reasoning turns, calls and appointments into
// one chronological view.
func (s *Service) Timeline(ctx context.Context, id uuid.UUID) ([]TimelineEntry, error) {
	detail, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	entries := make([]TimelineEntry, 0, len(detail.ReasoningLogs)+len(detail.Calls)+len(detail.Appointments)+1)
	entries = append(entries, TimelineEntry{
		Kind:       "lead",
		OccurredAt: detail.Lead.CreatedAt,
		Title:      "Lead created",
		RefID:      detail.Lead.ID,
	})
	for _, l := range detail.ReasoningLogs {
		reasoningText := l.Reasoning
		entries = append(entries, TimelineEntry{
			Kind:       "reasoning",
			OccurredAt: l.CreatedAt,
			Title:      "Reasoning turn: " + l.StrategyChosen,
			Detail:     &reasoningText,
			RefID:      l.ID,
		})
	}
	for _, call := range detail.Calls {
		entries = append(entries, TimelineEntry{
			Kind:       "call",
			OccurredAt: call.CreatedAt,
			Title:      fmt.Sprintf("%s call, %ds", call.Direction, call.DurationSeconds),
			Detail:     call.Summary,
			RefID:      call.ID,
		})
	}
	for _, appt := range detail.Appointments {
		entries = append(entries, TimelineEntry{
			Kind:       "appointment",
			OccurredAt: appt.CreatedAt,
			Title:      fmt.Sprintf("Showing %s at %s (%s)", appt.Date.Format("2006-01-02"), appt.TimeSlot, appt.Status),
			Detail:     appt.PropertyAddress,
			RefID:      appt.ID,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].OccurredAt.After(entries[j].OccurredAt)
	})
	return entries, nil
}

// FindByPhone locates a lead by phone number for webhook call attribution.
func (s *Service) FindByPhone(ctx context.Context, rawPhone string) (repository.Lead, error) {
	lead, err := s.repo.GetByPhone(ctx, phone.NormalizeE164(rawPhone))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return repository.Lead{}, apperr.NotFound("lead not found")
		}
		return repository.Lead{}, apperr.Wrap(apperr.KindInternal, "failed to look up lead", err).WithOp("leads.FindByPhone")
	}
	return lead, nil
}
