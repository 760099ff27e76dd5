package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"mysql-ops/internal/deploy"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var historyFormat string

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show the deployment history",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().StringVar(&historyFormat, "format", "table", "output format (table, json, yaml)")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	store := deploy.NewHistoryStore(cfg.HistoryFile)
	if err := store.Ensure(); err != nil {
		return err
	}

	entries, err := store.Entries()
	if err != nil {
		return err
	}

	switch historyFormat {
	case "json":
		data, err := json.MarshalIndent(entries, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
	case "yaml":
		data, err := yaml.Marshal(entries)
		if err != nil {
			return err
		}
		fmt.Print(string(data))
	case "table":
		printHistoryTable(entries)
	default:
		return fmt.Errorf("invalid format %q, must be one of: table, json, yaml", historyFormat)
	}

	return nil
}

func printHistoryTable(entries []deploy.HistoryEntry) {
	if len(entries) == 0 {
		fmt.Println("No deployments recorded")
		return
	}

	header := color.New(color.Bold)
	success := color.New(color.FgGreen)
	if !colorEnabled() {
		color.NoColor = true
	}

	header.Fprintf(os.Stdout, "%-25s  %-40s  %s\n", "TIMESTAMP", "SQL FILE", "STATUS")
	for _, entry := range entries {
		fmt.Printf("%-25s  %-40s  ", entry.Timestamp, entry.SQLFile)
		if entry.Status == deploy.StatusSuccess {
			success.Fprintln(os.Stdout, entry.Status)
		} else {
			fmt.Println(entry.Status)
		}
	}
}
