package service

import (
	"context"
	"errors"

	"leadpilot_backend/internal/leads/repository"
	"leadpilot_backend/platform/apperr"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// GenerateManagerSummary builds a Markdown briefing from the full lead
// history and stores it on the lead. The generation itself never fails (the
// engine degrades to a placeholder); only the lead lookup can error.
func (s *Service) GenerateManagerSummary(ctx context.Context, id uuid.UUID) (string, error) {
	lead, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", apperr.NotFound("lead not found")
		}
		return "", apperr.Wrap(apperr.KindInternal, "failed to load lead", err).WithOp("leads.GenerateManagerSummary")
	}

	var (
		logs  []repository.ReasoningLog
		calls []repository.CallRecord
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		logs, err = s.repo.ListReasoningLogs(gctx, id)
		return err
	})
	g.Go(func() error {
		var err error
		calls, err = s.repo.ListCallsForLead(gctx, id)
		return err
	})
	if err := g.Wait(); err != nil {
		return "", apperr.Wrap(apperr.KindInternal, "failed to load lead history", err).WithOp("leads.GenerateManagerSummary")
	}

	summary := s.reasoner.SummarizeForManager(ctx, lead, logs, calls)

	if err := s.repo.SetManagerSummary(ctx, id, summary); err != nil {
		s.log.DatabaseError("leads.GenerateManagerSummary", err)
	}

	return summary, nil
}
