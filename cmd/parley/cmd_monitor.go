package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/parley-dm/parley/internal/config"
	"github.com/parley-dm/parley/internal/monitor"
	"github.com/parley-dm/parley/internal/view"
)

var monitorDiffOnly bool

// monitorCmd watches a snapshot file and reports changes live.
var monitorCmd = &cobra.Command{
	Use:   "monitor <snapshot-file>",
	Short: "Watch a state snapshot and report changes",
	Long: `Watches a serialized state snapshot on disk and prints each change
as it happens. Useful alongside a running dialogue whose host writes
snapshots after every turn.`,
	Args: cobra.ExactArgs(1),
	RunE: runMonitor,
}

func runMonitor(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	handler := func(c monitor.Change) {
		fmt.Printf("── change at %s ──\n", c.At.Format(time.RFC3339))
		if c.Diff != "" {
			fmt.Println(c.Diff)
		}
		if !monitorDiffOnly {
			fmt.Println(view.Render(c.State))
		}
	}

	m := monitor.New(args[0], handler, logger,
		monitor.WithReloadLimit(config.MonitorRPS(), config.MonitorBurst()))
	if err := m.Start(ctx); err != nil {
		return err
	}
	defer m.Stop()

	fmt.Printf("watching %s (ctrl-c to stop)\n", args[0])
	<-sigCh
	return nil
}

func init() {
	monitorCmd.Flags().BoolVar(&monitorDiffOnly, "diff-only", false, "Print only the structural diff, not the full state")
}
