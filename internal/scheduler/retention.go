package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-co-op/gocron/v2"
	"github.com/skillswap/skillswap/internal/config"
	"github.com/skillswap/skillswap/internal/database"
)

// AuditRetentionJobID identifies the audit log cleanup job.
const AuditRetentionJobID = "audit-retention"

// AuditRetention returns a job that deletes audit entries older than days.
func AuditRetention(db database.DB, days int, now func() time.Time) JobFunc {
	if now == nil {
		now = time.Now
	}
	return func(ctx context.Context) error {
		cutoff := now().AddDate(0, 0, -days)
		n, err := db.DeleteAuditLogsBefore(ctx, cutoff)
		if err != nil {
			return fmt.Errorf("failed to prune audit logs: %w", err)
		}
		log.Info("pruned audit logs", "deleted", n, "before", cutoff.Format(time.RFC3339))
		return nil
	}
}

// RegisterAuditRetention schedules the audit cleanup from cfg. A non-positive
// retention disables the job.
func (s *Scheduler) RegisterAuditRetention(db database.DB, cfg *config.AuditConfig) error {
	if cfg == nil || cfg.RetentionDays <= 0 {
		log.Info("audit retention disabled")
		return nil
	}
	return s.AddJob(
		AuditRetentionJobID,
		"Audit log retention",
		cfg.CleanupSchedule,
		gocron.CronJob(cfg.CleanupSchedule, false),
		AuditRetention(db, cfg.RetentionDays, nil),
		false,
	)
}
