package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ReasoningLog is one stored reasoning turn: the full audit trail of what was
// extracted, which strategy won and which were rejected.
type ReasoningLog struct {
	ID                   uuid.UUID
	LeadID               *uuid.UUID
	CallID               *uuid.UUID
	UserInput            string
	ExtractedData        json.RawMessage
	Reasoning            string
	StrategyChosen       string
	AlternativesRejected json.RawMessage
	ReadinessScore       int
	Confidence           float64
	ActionTaken          *string
	CreatedAt            time.Time
}

type InsertReasoningLogParams struct {
	LeadID               *uuid.UUID
	CallID               *uuid.UUID
	UserInput            string
	ExtractedData        json.RawMessage
	Reasoning            string
	StrategyChosen       string
	AlternativesRejected json.RawMessage
	ReadinessScore       int
	Confidence           float64
	ActionTaken          *string
}

func (r *Repository) InsertReasoningLog(ctx context.Context, params InsertReasoningLogParams) (ReasoningLog, error) {
	var log ReasoningLog
	err := r.pool.QueryRow(ctx, `
		INSERT INTO reasoning_logs (
			lead_id, call_id, user_input, extracted_data, reasoning, strategy_chosen,
			alternatives_rejected, readiness_score, confidence, action_taken
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, lead_id, call_id, user_input, extracted_data, reasoning, strategy_chosen,
			alternatives_rejected, readiness_score, confidence, action_taken, created_at
	`, params.LeadID, params.CallID, params.UserInput, params.ExtractedData, params.Reasoning,
		params.StrategyChosen, params.AlternativesRejected, params.ReadinessScore, params.Confidence,
		params.ActionTaken).Scan(
		&log.ID, &log.LeadID, &log.CallID, &log.UserInput, &log.ExtractedData, &log.Reasoning,
		&log.StrategyChosen, &log.AlternativesRejected, &log.ReadinessScore, &log.Confidence,
		&log.ActionTaken, &log.CreatedAt,
	)
	if err != nil {
		return ReasoningLog{}, fmt.Errorf("insert reasoning log: %w", err)
	}
	return log, nil
}

func (r *Repository) ListReasoningLogs(ctx context.Context, leadID uuid.UUID) ([]ReasoningLog, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, lead_id, call_id, user_input, extracted_data, reasoning, strategy_chosen,
			alternatives_rejected, readiness_score, confidence, action_taken, created_at
		FROM reasoning_logs
		WHERE lead_id = $1
		ORDER BY created_at ASC
	`, leadID)
	if err != nil {
		return nil, fmt.Errorf("list reasoning logs: %w", err)
	}
	defer rows.Close()

	logs := make([]ReasoningLog, 0)
	for rows.Next() {
		var log ReasoningLog
		if err := rows.Scan(
			&log.ID, &log.LeadID, &log.CallID, &log.UserInput, &log.ExtractedData, &log.Reasoning,
			&log.StrategyChosen, &log.AlternativesRejected, &log.ReadinessScore, &log.Confidence,
			&log.ActionTaken, &log.CreatedAt,
		); err != nil {
			return nil, err
		}
		logs = append(logs, log)
	}
	return logs, rows.Err()
}
