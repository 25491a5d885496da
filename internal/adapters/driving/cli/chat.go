package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"runtime/debug"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/houseplan-cli/internal/adapters/driving/tui"
	"github.com/custodia-labs/houseplan-cli/internal/core/domain"
)

var (
	chatRequest requestFlags
	chatPlain   bool
)

// isTerminal reports whether f is attached to a terminal.
var isTerminal = func(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Draft a proposal and refine it in a conversation",
	Long: `Drafts a proposal for the customer request, then opens a chat where
follow-up requests are answered with the proposal as context.

On a terminal the interactive UI is used:
  Enter    - Send message / open selected plan
  Tab      - Switch between message input and plan list
  ↑/k, ↓/j - Move through reference plans
  PgUp/Dn  - Scroll the conversation
  F1       - Toggle help
  Ctrl+C   - Quit

Otherwise, or with --plain, messages are read line by line from stdin.
In line mode, '/open N' prints a link to reference plan N and '/quit' exits.`,
	Args: cobra.NoArgs,
	RunE: runChat,
}

func init() {
	chatRequest.register(chatCmd)
	chatCmd.Flags().BoolVar(&chatPlain, "plain", false, "read messages line by line instead of starting the UI")
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, _ []string) error {
	if sessionService == nil {
		return errors.New("session service not configured")
	}

	req, err := chatRequest.build()
	if err != nil {
		return err
	}

	id := sessionService.NewSession()
	defer sessionService.CloseSession(id) //nolint:errcheck // session is discarded on exit

	if !chatPlain && isTerminal(os.Stdin) && isTerminal(os.Stdout) {
		return runChatUI(cmd.Context(), id, req)
	}
	return runChatLines(cmd, id, req)
}

func runChatUI(ctx context.Context, sessionID string, req domain.CustomerRequest) (err error) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
			err = fmt.Errorf("TUI panic: %v", r)
		}
	}()

	app, err := tui.NewApp(&tui.Ports{Session: sessionService}, sessionID, &req)
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}
	if err := app.WithContext(ctx).Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}

func runChatLines(cmd *cobra.Command, sessionID string, req domain.CustomerRequest) error {
	ctx := cmd.Context()

	snap, err := sessionService.SubmitRequest(ctx, sessionID, req)
	if err != nil {
		return fmt.Errorf("proposal failed: %w", err)
	}
	printProposal(cmd, snap.Proposal, snap.Plans)
	cmd.Println()
	cmd.Println("Type a message to refine the proposal. '/open N' opens a plan, '/quit' exits.")

	scanner := bufio.NewScanner(cmd.InOrStdin())
	for {
		cmd.Print("> ")
		if !scanner.Scan() {
			cmd.Println()
			return scanner.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
			continue
		case line == "/quit" || line == "/exit":
			return nil
		case strings.HasPrefix(line, "/open"):
			openPlanAt(cmd, sessionID, snap.Plans, strings.TrimSpace(strings.TrimPrefix(line, "/open")))
			continue
		}

		reply, err := sessionService.Chat(ctx, sessionID, line)
		if err != nil {
			cmd.PrintErrf("Error: %v\n", err)
			continue
		}
		cmd.Println(reply)
	}
}

// openPlanAt prints a signed link for the 1-based plan index arg.
func openPlanAt(cmd *cobra.Command, sessionID string, plans []domain.RetrievedPlan, arg string) {
	if len(plans) == 0 {
		cmd.PrintErrln("Error: the proposal has no reference plans")
		return
	}
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 || n > len(plans) {
		cmd.PrintErrf("Error: choose a plan between 1 and %d\n", len(plans))
		return
	}

	plan := plans[n-1]
	url, err := sessionService.OpenPlan(cmd.Context(), sessionID, plan.Key())
	if err != nil {
		cmd.PrintErrf("Error: %v\n", err)
		return
	}
	cmd.Printf("%s: %s\n", plan.Filename, url)
}
