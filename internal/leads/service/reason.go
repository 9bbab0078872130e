package service

import (
	"context"
	"encoding/json"
	"math"
	"time"

	"leadpilot_backend/internal/events"
	"leadpilot_backend/internal/leads/repository"
	"leadpilot_backend/internal/reasoning"

	"github.com/google/uuid"
)

// minIntentConfidence gates lead persistence: below it the turn is logged but
// the lead record is left untouched, so noise never pollutes the pipeline.
const minIntentConfidence = 0.3

// followUpDelay is how long a nurtured lead rests before the worker surfaces
// it again.
const followUpDelay = 48 * time.Hour

type ReasonInput struct {
	UserInput string
	LeadID    *uuid.UUID
	CallID    *uuid.UUID
	History   []reasoning.Message
}

type ReasonOutput struct {
	Result         reasoning.Result
	LeadID         *uuid.UUID
	ReasoningLogID *uuid.UUID
}

// Reason runs one reasoning turn and persists its consequences: the audit
// log always, the lead record only when intent confidence clears the
// persistence gate. Like the engine itself it never fails: persistence
// problems are logged and the caller still receives the result, so the
// conversation keeps flowing.
func (s *Service) Reason(ctx context.Context, input ReasonInput) ReasonOutput {
	result := s.reasoner.Reason(ctx, input.UserInput, s.buildContext(ctx, input))

	out := ReasonOutput{Result: result, LeadID: input.LeadID}

	if logID := s.storeLog(ctx, input, result); logID != nil {
		out.ReasoningLogID = logID
	}

	if result.Extracted.Intent.Confidence > minIntentConfidence {
		if lead, ok := s.upsertLead(ctx, input.LeadID, result); ok {
			out.LeadID = &lead.ID
			s.publishOutcome(ctx, lead, result, input.UserInput)
			s.scheduleNurture(ctx, lead.ID, result.Strategy)
		}
	} else if result.Strategy == reasoning.StrategyHandoff {
		s.bus.Publish(ctx, events.HandoffRequested{
			BaseEvent: events.NewBaseEvent(),
			LeadID:    input.LeadID,
			Reasoning: result.Reasoning,
			UserInput: input.UserInput,
		})
	}

	return out
}

// buildContext assembles the conversation context, including the current
// lead snapshot when a lead is known. Snapshot fetch failures degrade to a
// context without the snapshot; the turn still runs.
func (s *Service) buildContext(ctx context.Context, input ReasonInput) reasoning.Context {
	convCtx := reasoning.Context{
		PreviousMessages: input.History,
	}
	if input.CallID != nil {
		convCtx.CallID = input.CallID.String()
	}
	if input.LeadID == nil {
		return convCtx
	}

	convCtx.LeadID = input.LeadID.String()
	lead, err := s.repo.GetByID(ctx, *input.LeadID)
	if err != nil {
		s.log.DatabaseError("leads.buildContext", err)
		return convCtx
	}

	snapshot := snapshotExtraction(lead)
	convCtx.CurrentLead = &snapshot
	return convCtx
}

// snapshotExtraction projects stored lead columns back into extraction shape
// so the engine sees what is already known. Stored 0-10 scores map back to
// confidences; free-text fields carry a neutral 0.5.
func snapshotExtraction(lead repository.Lead) reasoning.Extraction {
	urgency := reasoning.UrgencyMedium
	if lead.Urgency != nil && *lead.Urgency != "" {
		urgency = *lead.Urgency
	}
	e := reasoning.Extraction{
		Intent:   reasoning.NewField(intentFromLeadType(lead.LeadType), float64(lead.IntentScore)/10),
		Urgency:  reasoning.NewField(urgency, float64(lead.UrgencyScore)/10),
		LeadType: reasoning.NewField(lead.LeadType, 0.8),
	}
	if lead.BudgetRange != nil {
		e.Budget = reasoning.NewField(*lead.BudgetRange, 0.5)
	}
	if lead.Location != nil {
		e.Location = reasoning.NewField(*lead.Location, 0.5)
	}
	if lead.Timeline != nil {
		e.Timeline = reasoning.NewField(*lead.Timeline, 0.5)
	}
	if lead.Motivation != nil {
		e.Motivation = reasoning.NewField(*lead.Motivation, 0.5)
	}
	return e.Normalize()
}

// intentFromLeadType maps the stored lead_type vocabulary back onto the
// extraction's intent vocabulary.
func intentFromLeadType(leadType string) string {
	switch leadType {
	case reasoning.LeadTypeSeller:
		return reasoning.IntentSell
	case reasoning.LeadTypeInvestor:
		return reasoning.IntentInvest
	case reasoning.LeadTypeRenter:
		return reasoning.IntentRent
	default:
		return reasoning.IntentBuy
	}
}

func (s *Service) storeLog(ctx context.Context, input ReasonInput, result reasoning.Result) *uuid.UUID {
	extracted, err := json.Marshal(result.Extracted)
	if err != nil {
		extracted = []byte("{}")
	}
	alternatives, err := json.Marshal(result.AlternativesRejected)
	if err != nil {
		alternatives = []byte("[]")
	}

	action := result.NextAction
	entry, err := s.repo.InsertReasoningLog(ctx, repository.InsertReasoningLogParams{
		LeadID:               input.LeadID,
		CallID:               input.CallID,
		UserInput:            input.UserInput,
		ExtractedData:        extracted,
		Reasoning:            result.Reasoning,
		StrategyChosen:       string(result.Strategy),
		AlternativesRejected: alternatives,
		ReadinessScore:       result.ReadinessScore,
		Confidence:           result.Confidence,
		ActionTaken:          &action,
	})
	if err != nil {
		s.log.DatabaseError("leads.storeLog", err)
		return nil
	}
	return &entry.ID
}

func (s *Service) upsertLead(ctx context.Context, leadID *uuid.UUID, result reasoning.Result) (repository.Lead, bool) {
	update := qualificationFromResult(result)

	var (
		lead repository.Lead
		err  error
	)
	if leadID != nil {
		lead, err = s.repo.ApplyQualification(ctx, *leadID, update)
	} else {
		lead, err = s.repo.CreateFromQualification(ctx, update)
	}
	if err != nil {
		s.log.DatabaseError("leads.upsertLead", err)
		return repository.Lead{}, false
	}
	return lead, true
}

func qualificationFromResult(result reasoning.Result) repository.QualificationUpdate {
	leadType := reasoning.LeadTypeBuyer
	if result.Extracted.LeadType.HasValue() {
		leadType = result.Extracted.LeadType.Text()
	}

	update := repository.QualificationUpdate{
		LeadType:       leadType,
		IntentScore:    scoreOutOfTen(result.Extracted.Intent.Confidence),
		UrgencyScore:   scoreOutOfTen(result.Extracted.Urgency.Confidence),
		ReadinessScore: result.ReadinessScore,
		NextAction:     result.NextAction,
		Status:         statusFromStrategy(result.Strategy),
	}
	update.BudgetRange = result.Extracted.Budget.Value
	update.Location = result.Extracted.Location.Value
	update.Timeline = result.Extracted.Timeline.Value
	update.Motivation = result.Extracted.Motivation.Value
	if result.Extracted.Urgency.HasValue() {
		update.Urgency = result.Extracted.Urgency.Value
	}
	return update
}

func scoreOutOfTen(confidence float64) int {
	return int(math.Round(reasoning.ClampUnit(confidence) * 10))
}

// statusFromStrategy maps the turn's strategy onto the lead pipeline status.
func statusFromStrategy(strategy reasoning.Strategy) string {
	switch strategy {
	case reasoning.StrategyBookNow:
		return "appointment_set"
	case reasoning.StrategyQualify, reasoning.StrategyHandoff:
		return "qualified"
	case reasoning.StrategyClarify, reasoning.StrategyNurture, reasoning.StrategyProvideInfo:
		return "contacted"
	default:
		return "new"
	}
}

func (s *Service) publishOutcome(ctx context.Context, lead repository.Lead, result reasoning.Result, userInput string) {
	switch result.Strategy {
	case reasoning.StrategyQualify, reasoning.StrategyBookNow:
		s.bus.Publish(ctx, events.LeadQualified{
			BaseEvent:      events.NewBaseEvent(),
			LeadID:         lead.ID,
			Strategy:       string(result.Strategy),
			ReadinessScore: result.ReadinessScore,
			NextAction:     result.NextAction,
		})
	case reasoning.StrategyHandoff:
		s.bus.Publish(ctx, events.HandoffRequested{
			BaseEvent: events.NewBaseEvent(),
			LeadID:    &lead.ID,
			Reasoning: result.Reasoning,
			UserInput: userInput,
		})
	}
}

func (s *Service) scheduleNurture(ctx context.Context, leadID uuid.UUID, strategy reasoning.Strategy) {
	if s.scheduler == nil || strategy != reasoning.StrategyNurture {
		return
	}
	if err := s.scheduler.ScheduleFollowUp(ctx, leadID, followUpDelay); err != nil {
		s.log.Error("failed to schedule follow-up", "error", err, "leadId", leadID)
	}
}
