package cmd

import (
	"fmt"
	"os"

	"github.com/ccoveille/go-safecast"
	"github.com/dustin/go-humanize"
	"github.com/skillswap/skillswap/internal/config"
	"github.com/spf13/cobra"
)

var dbStatsCmd = &cobra.Command{
	Use:   "db-stats",
	Short: "Show database statistics",
	Long:  `Display row counts for users, skills, workshops, accounts and audit entries.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, db, err := openDatabase()
		if err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		defer db.Close() //nolint: errcheck

		stats, err := db.GetStats(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to get database stats: %w", err)
		}

		fmt.Println("Database Statistics:")
		fmt.Printf("Users: %d\n", stats.Users)
		fmt.Printf("Skills: %d\n", stats.Skills)
		fmt.Printf("Workshops: %d\n", stats.Workshops)
		fmt.Printf("Local Accounts: %d\n", stats.LocalAccounts)
		fmt.Printf("Audit Entries: %d\n", stats.AuditLogs)

		if cfg.Database.Driver == config.DatabaseDriverSQLite || cfg.Database.Driver == "" {
			if fi, err := os.Stat(cfg.Database.Path); err == nil {
				size, err := safecast.Convert[uint64](fi.Size())
				if err == nil {
					fmt.Printf("Database Size: %s\n", humanize.Bytes(size))
				}
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(dbStatsCmd)
}
