package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/telhawk-systems/tradelog/internal/config"
	"github.com/telhawk-systems/tradelog/internal/logstore"
)

var recentLines int

var recentCmd = &cobra.Command{
	Use:   "recent [date]",
	Short: "Print recent log entries",
	Long: `Prints the most recent entries from a daily log file.

The date argument is in YYYY-MM-DD form and defaults to today.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRecent,
}

func init() {
	recentCmd.Flags().IntVarP(&recentLines, "lines", "n", 20, "number of lines to print")
	rootCmd.AddCommand(recentCmd)
}

func runRecent(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	day := time.Now()
	if len(args) == 1 {
		day, err = time.Parse("2006-01-02", args[0])
		if err != nil {
			return fmt.Errorf("invalid date %q: expected YYYY-MM-DD", args[0])
		}
	}

	reader := logstore.NewReader(cfg.Logs.Dir)
	lines, err := reader.Recent(day, recentLines)
	if err != nil {
		return fmt.Errorf("read log: %w", err)
	}
	if len(lines) == 0 {
		fmt.Printf("No entries for %s\n", day.Format("2006-01-02"))
		return nil
	}
	for _, line := range lines {
		fmt.Println(line)
	}
	return nil
}
