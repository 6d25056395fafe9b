package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"go.uber.org/multierr"
)

const outboxRetentionDays = 30

type OutboxRetentionJobParams struct {
	Logger      *logger.Logger
	Repository  outboxRetentionRepo
	Retention   int
	MaxAttempts int
}

type outboxRetentionRepo interface {
	DeletePublishedBefore(ctx context.Context, cutoff time.Time) (int64, error)
	CountPending(ctx context.Context, maxAttempts int) (int64, error)
}

func NewOutboxRetentionJob(params OutboxRetentionJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Repository == nil {
		return nil, fmt.Errorf("outbox repository required")
	}
	retention := params.Retention
	if retention <= 0 {
		retention = outboxRetentionDays
	}
	return &outboxRetentionJob{
		logg:        params.Logger,
		repo:        params.Repository,
		retention:   retention,
		maxAttempts: params.MaxAttempts,
		now:         time.Now,
	}, nil
}

type outboxRetentionJob struct {
	logg        *logger.Logger
	repo        outboxRetentionRepo
	retention   int
	maxAttempts int
	now         func() time.Time
}

func (j *outboxRetentionJob) Name() string { return "outbox-retention" }

// Run prunes delivered rows and reports the undelivered backlog. A failed
// prune does not skip the backlog report.
func (j *outboxRetentionJob) Run(ctx context.Context) error {
	var errs error
	if err := j.prune(ctx); err != nil {
		errs = multierr.Append(errs, err)
	}
	if err := j.reportBacklog(ctx); err != nil {
		errs = multierr.Append(errs, err)
	}
	return errs
}

func (j *outboxRetentionJob) prune(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-time.Duration(j.retention) * 24 * time.Hour)
	deleted, err := j.repo.DeletePublishedBefore(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("outbox retention: %w", err)
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"cutoff":         cutoff,
		"retention_days": j.retention,
		"rows_deleted":   deleted,
	})
	j.logg.Info(logCtx, "outbox retention cleanup complete")
	return nil
}

func (j *outboxRetentionJob) reportBacklog(ctx context.Context) error {
	pending, err := j.repo.CountPending(ctx, j.maxAttempts)
	if err != nil {
		return fmt.Errorf("outbox backlog: %w", err)
	}
	logCtx := j.logg.WithField(ctx, "pending", pending)
	if pending > 0 {
		j.logg.Warn(logCtx, "outbox backlog pending")
		return nil
	}
	j.logg.Info(logCtx, "outbox backlog empty")
	return nil
}
