package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/kb-assist/internal/db"
	"github.com/ziadkadry99/kb-assist/internal/qalog"
)

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Show answered questions and their cost",
	Long:  `Lists the questions answered by kbassist serve, newest first, with the model used and the estimated API cost.`,
	Args:  cobra.NoArgs,
	RunE:  runLog,
}

func init() {
	logCmd.Flags().Int("limit", 20, "maximum number of entries")
	logCmd.Flags().Duration("since", 0, "only show entries newer than this (e.g. 24h)")
	logCmd.Flags().Duration("prune", 0, "delete entries older than this instead of listing")
	logCmd.Flags().Bool("json", false, "output entries as JSON")
	rootCmd.AddCommand(logCmd)
}

func runLog(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	limit, _ := cmd.Flags().GetInt("limit")
	since, _ := cmd.Flags().GetDuration("since")
	prune, _ := cmd.Flags().GetDuration("prune")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	database, err := db.Open(cfg.DatabasePath())
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	store := qalog.NewStore(database, nil)

	if prune > 0 {
		n, err := store.DeleteBefore(ctx, time.Now().Add(-prune))
		if err != nil {
			return err
		}
		fmt.Printf("Deleted %d entries older than %s\n", n, prune)
		return nil
	}

	filter := qalog.ListFilter{Limit: limit}
	if since > 0 {
		cutoff := time.Now().Add(-since)
		filter.Since = &cutoff
	}
	entries, err := store.List(ctx, filter)
	if err != nil {
		return err
	}

	if jsonOutput {
		if entries == nil {
			entries = []qalog.Entry{}
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}

	if len(entries) == 0 {
		fmt.Println("No questions logged yet.")
		return nil
	}

	var total float64
	for _, e := range entries {
		total += e.CostUSD
		fmt.Printf("%s  %-16s $%.4f  %s\n", e.CreatedAt.Local().Format("2006-01-02 15:04:05"), e.Model, e.CostUSD, oneLine(e.Question, 60))
	}
	fmt.Println(strings.Repeat("-", 40))
	fmt.Printf("%d entries, total $%.4f\n", len(entries), total)
	return nil
}

func oneLine(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
