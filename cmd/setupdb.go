package cmd

import (
	"github.com/spf13/cobra"

	"messenger/chat-service/internal/config"
	"messenger/chat-service/internal/store"
)

var setupDBCmd = &cobra.Command{
	Use:   "setup-db",
	Short: "Create the keyspace, tables, and counter cells",
	RunE:  runSetupDB,
}

func init() {
	rootCmd.AddCommand(setupDBCmd)
}

func runSetupDB(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := newLogger(cfg.Logging)

	return store.EnsureSchema(cfg.Cassandra, logger)
}
