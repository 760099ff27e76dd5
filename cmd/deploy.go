package cmd

import (
	"fmt"
	"os"

	"mysql-ops/internal/deploy"

	"github.com/spf13/cobra"
)

var deployCmd = &cobra.Command{
	Use:   "deploy <script.sql>",
	Short: "Run a SQL script against the target database",
	Long: `Reads the SQL script, splits it into statements on ';' and executes
them sequentially, committing after every statement. On the first
execution error the remaining statements are abandoned and the command
exits non-zero; no history entry is recorded for a failed attempt.

On full success one entry is appended to the deployment history
document (deployment_history.json).`,
	Args: cobra.ExactArgs(1),
	RunE: runDeploy,
}

func init() {
	rootCmd.AddCommand(deployCmd)
}

func runDeploy(cmd *cobra.Command, args []string) error {
	sqlFile := args[0]
	if _, err := os.Stat(sqlFile); err != nil {
		return fmt.Errorf("SQL file not found: %s", sqlFile)
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.DeployLogFile)
	if err != nil {
		return err
	}
	defer logger.Close()

	history := deploy.NewHistoryStore(cfg.HistoryFile)
	deployer, err := deploy.NewDeployer(cfg.Database, history, logger)
	if err != nil {
		return err
	}
	defer deployer.Disconnect()

	if err := deployer.ExecuteScript(sqlFile); err != nil {
		return fmt.Errorf("deployment failed: %w", err)
	}

	logger.Info("Deployment completed successfully")
	return nil
}
