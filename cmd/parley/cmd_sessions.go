package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/parley-dm/parley/internal/config"
)

// sessionsCmd manages stored sessions.
var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Manage stored dialogue sessions",
	RunE:  runSessionsList,
}

var sessionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored sessions",
	RunE:  runSessionsList,
}

var sessionsDeleteCmd = &cobra.Command{
	Use:   "delete <session-id>",
	Short: "Delete a stored session",
	Args:  cobra.ExactArgs(1),
	RunE:  runSessionsDelete,
}

var sessionsPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete sessions idle past the configured TTL",
	RunE:  runSessionsPrune,
}

func runSessionsList(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	st, cleanup, err := buildStore(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	infos, err := st.List(ctx)
	if err != nil {
		return fmt.Errorf("list sessions: %w", err)
	}
	if len(infos) == 0 {
		fmt.Println("No stored sessions.")
		return nil
	}
	for _, info := range infos {
		fmt.Printf("%s  agent=%s  updated=%s\n",
			info.ID, info.AgentID, info.UpdatedAt.Format(time.RFC3339))
	}
	return nil
}

func runSessionsDelete(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	st, cleanup, err := buildStore(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	if err := st.Delete(ctx, args[0]); err != nil {
		return fmt.Errorf("delete session %s: %w", args[0], err)
	}
	fmt.Printf("deleted %s\n", args[0])
	return nil
}

func runSessionsPrune(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	st, cleanup, err := buildStore(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	ttl := time.Duration(config.SessionTTLHours()) * time.Hour
	n, err := st.DeleteExpired(ctx, ttl)
	if err != nil {
		return fmt.Errorf("prune sessions: %w", err)
	}
	fmt.Printf("pruned %d sessions older than %s\n", n, ttl)
	return nil
}

func init() {
	sessionsCmd.AddCommand(sessionsListCmd)
	sessionsCmd.AddCommand(sessionsDeleteCmd)
	sessionsCmd.AddCommand(sessionsPruneCmd)
}
