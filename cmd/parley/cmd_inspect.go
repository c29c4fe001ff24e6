package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/parley-dm/parley/internal/domain"
	"github.com/parley-dm/parley/internal/view"
)

var (
	inspectFile string
	inspectHTML string
)

// inspectCmd renders a stored session or a snapshot file.
var inspectCmd = &cobra.Command{
	Use:   "inspect [session-id]",
	Short: "Render an information state",
	Long: `Renders a session's information state for the terminal, or as a
standalone HTML page with --html.

With a session ID the state comes from the configured store; with
--file it is read from a snapshot on disk.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInspect,
}

func runInspect(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	var state *domain.InformationState
	switch {
	case inspectFile != "":
		data, err := os.ReadFile(inspectFile)
		if err != nil {
			return fmt.Errorf("read snapshot: %w", err)
		}
		state, err = domain.DecodeState(data)
		if err != nil {
			return fmt.Errorf("decode snapshot: %w", err)
		}
	case len(args) == 1:
		st, cleanup, err := buildStore(ctx)
		if err != nil {
			return err
		}
		defer cleanup()
		sess, err := st.Get(ctx, args[0])
		if err != nil {
			return fmt.Errorf("load session %s: %w", args[0], err)
		}
		state = sess.State
	default:
		return fmt.Errorf("need a session ID or --file")
	}

	if inspectHTML != "" {
		f, err := os.Create(inspectHTML)
		if err != nil {
			return fmt.Errorf("create html output: %w", err)
		}
		defer f.Close()
		if err := view.RenderHTML(f, state); err != nil {
			return fmt.Errorf("render html: %w", err)
		}
		fmt.Printf("wrote %s\n", inspectHTML)
		return nil
	}

	fmt.Println(view.Render(state))
	return nil
}

func init() {
	inspectCmd.Flags().StringVarP(&inspectFile, "file", "f", "", "Read the state from a snapshot file instead of the store")
	inspectCmd.Flags().StringVar(&inspectHTML, "html", "", "Write an HTML rendering to the given path")
}
