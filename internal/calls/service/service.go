// Package service contains the call lifecycle business logic: recording the
// end-of-call report, transcript analysis and recording archival.
package service

import (
	"context"
	"errors"
	"time"

	"leadpilot_backend/internal/calls/repository"
	"leadpilot_backend/internal/events"
	"leadpilot_backend/internal/reasoning"
	"leadpilot_backend/platform/apperr"
	"leadpilot_backend/platform/logger"

	"github.com/google/uuid"
)

// Store is the persistence surface the service depends on.
type Store interface {
	Create(ctx context.Context, params repository.CreateCallParams) (repository.Call, error)
	GetByID(ctx context.Context, id uuid.UUID) (repository.Call, error)
	GetByVapiCallID(ctx context.Context, vapiCallID string) (repository.Call, error)
	List(ctx context.Context) ([]repository.Call, error)
	ApplyReport(ctx context.Context, id uuid.UUID, params repository.ReportParams) (repository.Call, error)
	SetRecordingKey(ctx context.Context, id uuid.UUID, key string) error
}

// Summarizer analyzes a finished call transcript.
type Summarizer interface {
	SummarizeCall(ctx context.Context, transcript string, leadData any) reasoning.CallInsights
}

// RecordingArchiver stores provider-hosted recordings durably. Nil disables
// archival.
type RecordingArchiver interface {
	ArchiveRecording(ctx context.Context, callID uuid.UUID, recordingURL string) (string, error)
	DownloadURL(ctx context.Context, objectKey string) (string, time.Time, error)
}

type Service struct {
	repo       Store
	summarizer Summarizer
	recordings RecordingArchiver
	bus        events.Bus
	log        *logger.Logger
}

func New(repo Store, summarizer Summarizer, recordings RecordingArchiver, bus events.Bus, log *logger.Logger) *Service {
	return &Service{repo: repo, summarizer: summarizer, recordings: recordings, bus: bus, log: log}
}

// StartCall registers a call at the moment the voice provider reports it
// started, so reasoning turns during the call can reference it.
func (s *Service) StartCall(ctx context.Context, vapiCallID string, leadID *uuid.UUID) (repository.Call, error) {
	if existing, err := s.repo.GetByVapiCallID(ctx, vapiCallID); err == nil {
		return existing, nil
	}

	call, err := s.repo.Create(ctx, repository.CreateCallParams{
		LeadID:     leadID,
		VapiCallID: &vapiCallID,
	})
	if err != nil {
		return repository.Call{}, apperr.Wrap(apperr.KindInternal, "failed to register call", err).WithOp("calls.StartCall")
	}
	return call, nil
}

type EndOfCallInput struct {
	VapiCallID      string
	LeadID          *uuid.UUID
	Transcript      string
	DurationSeconds int
	RecordingURL    string
}

// RecordEndOfCall upserts the call row, runs transcript analysis and
// archives the recording. Analysis never fails (the engine degrades to a
// placeholder); only persistence can error.
func (s *Service) RecordEndOfCall(ctx context.Context, input EndOfCallInput) (repository.Call, error) {
	call, err := s.repo.GetByVapiCallID(ctx, input.VapiCallID)
	if errors.Is(err, repository.ErrNotFound) {
		call, err = s.repo.Create(ctx, repository.CreateCallParams{
			LeadID:     input.LeadID,
			VapiCallID: &input.VapiCallID,
		})
	}
	if err != nil {
		return repository.Call{}, apperr.Wrap(apperr.KindInternal, "failed to load call", err).WithOp("calls.RecordEndOfCall")
	}

	insights := s.summarizer.SummarizeCall(ctx, input.Transcript, map[string]any{
		"lead_id": input.LeadID,
	})

	call, err = s.repo.ApplyReport(ctx, call.ID, repository.ReportParams{
		Transcript:         input.Transcript,
		DurationSeconds:    input.DurationSeconds,
		Summary:            insights.Summary,
		Objections:         insights.Objections,
		CompetitorMentions: insights.CompetitorMentions,
		RiskFlags:          insights.RiskFlags,
		ActionItems:        insights.ActionItems,
		LeadID:             input.LeadID,
	})
	if err != nil {
		return repository.Call{}, apperr.Wrap(apperr.KindInternal, "failed to store call report", err).WithOp("calls.RecordEndOfCall")
	}

	if s.recordings != nil && input.RecordingURL != "" {
		s.archiveRecording(ctx, call.ID, input.RecordingURL)
	}

	s.bus.Publish(ctx, events.CallEnded{
		BaseEvent:       events.NewBaseEvent(),
		CallID:          call.ID,
		LeadID:          call.LeadID,
		DurationSeconds: call.DurationSeconds,
		RiskFlags:       call.RiskFlags,
	})

	return call, nil
}

// archiveRecording is best effort: the provider URL stays usable for a while
// and the call report must not fail because object storage hiccuped.
func (s *Service) archiveRecording(ctx context.Context, callID uuid.UUID, recordingURL string) {
	key, err := s.recordings.ArchiveRecording(ctx, callID, recordingURL)
	if err != nil {
		s.log.Error("failed to archive call recording", "error", err, "callId", callID)
		return
	}
	if err := s.repo.SetRecordingKey(ctx, callID, key); err != nil {
		s.log.DatabaseError("calls.archiveRecording", err)
	}
}

func (s *Service) List(ctx context.Context) ([]repository.Call, error) {
	calls, err := s.repo.List(ctx)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to list calls", err).WithOp("calls.List")
	}
	return calls, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (repository.Call, error) {
	call, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return repository.Call{}, apperr.NotFound("call not found")
		}
		return repository.Call{}, apperr.Wrap(apperr.KindInternal, "failed to load call", err).WithOp("calls.Get")
	}
	return call, nil
}

// RecordingURL returns a presigned link to the archived recording.
func (s *Service) RecordingURL(ctx context.Context, id uuid.UUID) (string, time.Time, error) {
	call, err := s.Get(ctx, id)
	if err != nil {
		return "", time.Time{}, err
	}
	if s.recordings == nil || call.RecordingKey == nil {
		return "", time.Time{}, apperr.NotFound("no recording archived for this call")
	}

	url, expiresAt, err := s.recordings.DownloadURL(ctx, *call.RecordingKey)
	if err != nil {
		return "", time.Time{}, apperr.Wrap(apperr.KindInternal, "failed to sign recording URL", err).WithOp("calls.RecordingURL")
	}
	return url, expiresAt, nil
}
