package cmd

import (
	"fmt"
	"time"

	"github.com/mergestat/timediff"
	"github.com/skillswap/skillswap/internal/scheduler"
	"github.com/spf13/cobra"
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Inspect the audit log",
}

var auditListFlags struct {
	Limit  int
	Offset int
}

var auditListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent audit entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, db, err := openDatabase()
		if err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		defer db.Close() //nolint: errcheck

		entries, err := db.GetAuditLogs(cmd.Context(), auditListFlags.Limit, auditListFlags.Offset)
		if err != nil {
			return fmt.Errorf("failed to get audit logs: %w", err)
		}
		if len(entries) == 0 {
			fmt.Println("No audit entries.")
			return nil
		}

		for _, e := range entries {
			fmt.Printf("%-5d %-20s %-18s %-12s %-38s by %s (%s)\n",
				e.ID, e.CreatedAt.Format(time.DateTime), e.Action, e.TargetEntity, e.TargetID, e.ActorID, timediff.TimeDiff(e.CreatedAt))
		}
		return nil
	},
}

var auditPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete audit entries older than the configured retention",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, db, err := openDatabase()
		if err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		defer db.Close() //nolint: errcheck

		if cfg.Audit == nil || cfg.Audit.RetentionDays <= 0 {
			fmt.Println("Audit retention is disabled, nothing to prune.")
			return nil
		}
		return scheduler.AuditRetention(db, cfg.Audit.RetentionDays, nil)(cmd.Context())
	},
}

func init() {
	auditListCmd.Flags().IntVarP(&auditListFlags.Limit, "limit", "n", 20, "Number of entries to show")
	auditListCmd.Flags().IntVar(&auditListFlags.Offset, "offset", 0, "Number of entries to skip")

	auditCmd.AddCommand(auditListCmd, auditPruneCmd)
	rootCmd.AddCommand(auditCmd)
}
