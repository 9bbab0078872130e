package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leadpilot_backend/internal/calls/repository"
	"leadpilot_backend/internal/events"
	"leadpilot_backend/internal/reasoning"
	"leadpilot_backend/platform/logger"
)

type fakeStore struct {
	calls map[uuid.UUID]repository.Call
}

func newFakeStore() *fakeStore {
	return &fakeStore{calls: map[uuid.UUID]repository.Call{}}
}

func (f *fakeStore) Create(_ context.Context, params repository.CreateCallParams) (repository.Call, error) {
	direction := params.Direction
	if direction == "" {
		direction = "inbound"
	}
	call := repository.Call{ID: uuid.New(), LeadID: params.LeadID, VapiCallID: params.VapiCallID, Direction: direction}
	f.calls[call.ID] = call
	return call, nil
}

func (f *fakeStore) GetByID(_ context.Context, id uuid.UUID) (repository.Call, error) {
	call, ok := f.calls[id]
	if !ok {
		return repository.Call{}, repository.ErrNotFound
	}
	return call, nil
}

func (f *fakeStore) GetByVapiCallID(_ context.Context, vapiCallID string) (repository.Call, error) {
	for _, call := range f.calls {
		if call.VapiCallID != nil && *call.VapiCallID == vapiCallID {
			return call, nil
		}
	}
	return repository.Call{}, repository.ErrNotFound
}

func (f *fakeStore) List(_ context.Context) ([]repository.Call, error) { return nil, nil }

func (f *fakeStore) ApplyReport(_ context.Context, id uuid.UUID, params repository.ReportParams) (repository.Call, error) {
	call, ok := f.calls[id]
	if !ok {
		return repository.Call{}, repository.ErrNotFound
	}
	call.Transcript = &params.Transcript
	call.DurationSeconds = params.DurationSeconds
	call.Summary = &params.Summary
	call.Objections = params.Objections
	call.CompetitorMentions = params.CompetitorMentions
	call.RiskFlags = params.RiskFlags
	call.ActionItems = params.ActionItems
	if params.LeadID != nil {
		call.LeadID = params.LeadID
	}
	f.calls[id] = call
	return call, nil
}

func (f *fakeStore) SetRecordingKey(_ context.Context, id uuid.UUID, key string) error {
	call, ok := f.calls[id]
	if !ok {
		return repository.ErrNotFound
	}
	call.RecordingKey = &key
	f.calls[id] = call
	return nil
}

type fakeSummarizer struct {
	insights reasoning.CallInsights
}

func (f *fakeSummarizer) SummarizeCall(_ context.Context, _ string, _ any) reasoning.CallInsights {
	return f.insights
}

type fakeArchiver struct {
	key string
	err error
}

func (f *fakeArchiver) ArchiveRecording(_ context.Context, _ uuid.UUID, _ string) (string, error) {
	return f.key, f.err
}

func (f *fakeArchiver) DownloadURL(_ context.Context, key string) (string, time.Time, error) {
	return "https://storage.example/" + key, time.Now().Add(time.Minute), nil
}

type fakeBus struct {
	published []events.Event
}

func (f *fakeBus) Publish(_ context.Context, e events.Event) { f.published = append(f.published, e) }
func (f *fakeBus) PublishSync(_ context.Context, e events.Event) error {
	f.published = append(f.published, e)
	return nil
}
func (f *fakeBus) Subscribe(string, events.Handler) {}

func insights() reasoning.CallInsights {
	return reasoning.CallInsights{
		Summary:            "Lead wants a condo downtown.",
		Objections:         []string{"price"},
		CompetitorMentions: []string{},
		RiskFlags:          []string{},
		ActionItems:        []string{"send listings"},
	}
}

func TestRecordEndOfCallCreatesWhenUnknown(t *testing.T) {
	store := newFakeStore()
	bus := &fakeBus{}
	svc := New(store, &fakeSummarizer{insights: insights()}, nil, bus, logger.New("development"))

	call, err := svc.RecordEndOfCall(context.Background(), EndOfCallInput{
		VapiCallID:      "vapi-123",
		Transcript:      "hello",
		DurationSeconds: 95,
	})
	require.NoError(t, err)

	assert.Equal(t, 95, call.DurationSeconds)
	require.NotNil(t, call.Summary)
	assert.Equal(t, "Lead wants a condo downtown.", *call.Summary)
	assert.Equal(t, []string{"price"}, call.Objections)

	require.Len(t, bus.published, 1)
	ended, ok := bus.published[0].(events.CallEnded)
	require.True(t, ok)
	assert.Equal(t, call.ID, ended.CallID)
	assert.Equal(t, 95, ended.DurationSeconds)
}

func TestRecordEndOfCallUpdatesExisting(t *testing.T) {
	store := newFakeStore()
	svc := New(store, &fakeSummarizer{insights: insights()}, nil, &fakeBus{}, logger.New("development"))

	started, err := svc.StartCall(context.Background(), "vapi-123", nil)
	require.NoError(t, err)

	leadID := uuid.New()
	ended, err := svc.RecordEndOfCall(context.Background(), EndOfCallInput{
		VapiCallID: "vapi-123",
		LeadID:     &leadID,
		Transcript: "hello again",
	})
	require.NoError(t, err)

	assert.Equal(t, started.ID, ended.ID, "the started call row is reused, not duplicated")
	require.NotNil(t, ended.LeadID)
	assert.Equal(t, leadID, *ended.LeadID)
	assert.Len(t, store.calls, 1)
}

func TestStartCallIsIdempotent(t *testing.T) {
	svc := New(newFakeStore(), &fakeSummarizer{}, nil, &fakeBus{}, logger.New("development"))

	first, err := svc.StartCall(context.Background(), "vapi-9", nil)
	require.NoError(t, err)
	second, err := svc.StartCall(context.Background(), "vapi-9", nil)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
}

func TestRecordEndOfCallArchivesRecording(t *testing.T) {
	store := newFakeStore()
	svc := New(store, &fakeSummarizer{insights: insights()}, &fakeArchiver{key: "calls/x/recording.wav"}, &fakeBus{}, logger.New("development"))

	call, err := svc.RecordEndOfCall(context.Background(), EndOfCallInput{
		VapiCallID:   "vapi-123",
		Transcript:   "hello",
		RecordingURL: "https://provider.example/rec.wav",
	})
	require.NoError(t, err)

	stored := store.calls[call.ID]
	require.NotNil(t, stored.RecordingKey)
	assert.Equal(t, "calls/x/recording.wav", *stored.RecordingKey)
}

func TestRecordEndOfCallSurvivesArchiveFailure(t *testing.T) {
	store := newFakeStore()
	svc := New(store, &fakeSummarizer{insights: insights()}, &fakeArchiver{err: errors.New("storage down")}, &fakeBus{}, logger.New("development"))

	call, err := svc.RecordEndOfCall(context.Background(), EndOfCallInput{
		VapiCallID:   "vapi-123",
		Transcript:   "hello",
		RecordingURL: "https://provider.example/rec.wav",
	})
	require.NoError(t, err)
	assert.Nil(t, store.calls[call.ID].RecordingKey)
}

func TestRecordingURLWithoutArchive(t *testing.T) {
	store := newFakeStore()
	svc := New(store, &fakeSummarizer{}, nil, &fakeBus{}, logger.New("development"))

	call, err := store.Create(context.Background(), repository.CreateCallParams{})
	require.NoError(t, err)

	_, _, err = svc.RecordingURL(context.Background(), call.ID)
	assert.Error(t, err)
}
