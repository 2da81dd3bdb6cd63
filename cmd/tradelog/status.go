package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/telhawk-systems/tradelog/internal/config"
	"github.com/telhawk-systems/tradelog/internal/gitrepo"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show log repository status",
	Long:  `Prints the git status of the log repository and its last commit.`,
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	repo := gitrepo.New(gitrepo.Config{
		Dir:         cfg.Git.Dir,
		Branch:      cfg.Git.Branch,
		RemoteToken: cfg.Git.RemoteToken,
		OpTimeout:   cfg.Git.OpTimeout,
		PushTimeout: cfg.Git.PushTimeout,
	})

	clean, status, lastCommit, err := repo.Status(context.Background())
	if err != nil {
		return fmt.Errorf("git status: %w", err)
	}

	state := "dirty"
	if clean {
		state = "clean"
	}
	fmt.Printf("Repository:  %s\n", cfg.Git.Dir)
	fmt.Printf("State:       %s\n", state)
	fmt.Printf("Last commit: %s\n", lastCommit)
	if !clean {
		fmt.Printf("Changes:\n%s\n", status)
	}
	return nil
}
