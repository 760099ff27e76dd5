package cmd

import (
	"mysql-ops/internal/probe"

	"github.com/spf13/cobra"
)

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Connectivity smoke test",
	Long: `Opens a connection with the configured credentials, prints the server
version and the active database name, and closes the connection.
Connection errors are printed; the command always exits zero.`,
	Args: cobra.NoArgs,
	RunE: runPing,
}

func init() {
	rootCmd.AddCommand(pingCmd)
}

func runPing(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logger, err := newLogger("")
	if err != nil {
		return err
	}

	probe.NewProbe(cfg.Database, logger).Check()
	return nil
}
