package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/parley-dm/parley/internal/view"
)

var (
	replSessionID string
	replShowState bool
	replSpeaker   string
)

// replCmd runs an interactive dialogue on stdin/stdout.
var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Run an interactive dialogue",
	Long: `Starts an interactive dialogue using the configured domain.

Type utterances at the prompt; the system answers in kind. Special
inputs:
  /state   print the current information state
  /quit    end the session`,
	RunE: runRepl,
}

func runRepl(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	mgr, dom, cleanup, err := buildManager(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	sessionID := replSessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	fmt.Printf("parley · domain with plans: %s\n", strings.Join(dom.PlanNames(), ", "))
	fmt.Printf("session %s · /state shows the state, /quit ends\n\n", sessionID)

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		switch line {
		case "/state":
			st, err := mgr.State(ctx, sessionID)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				continue
			}
			fmt.Println(view.Render(st))
			continue
		case "/quit":
			line = "goodbye"
		}

		reply, err := mgr.Turn(ctx, sessionID, replSpeaker, line)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			continue
		}
		for _, text := range reply.Texts {
			fmt.Println(text)
		}
		if replShowState {
			st, err := mgr.State(ctx, sessionID)
			if err == nil {
				fmt.Println(view.Render(st))
			}
		}
		if reply.Ended {
			return nil
		}
	}
	return scanner.Err()
}

func init() {
	replCmd.Flags().StringVarP(&replSessionID, "session", "s", "", "Session ID to resume (default: new session)")
	replCmd.Flags().BoolVar(&replShowState, "show-state", false, "Print the information state after every turn")
	replCmd.Flags().StringVar(&replSpeaker, "speaker", "user", "Speaker name for typed utterances")
}
