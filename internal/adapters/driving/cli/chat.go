package cli

import (
	"errors"
	"fmt"
	"os"
	"runtime/debug"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/chatlore/chatlore/internal/adapters/driving/tui"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Interactive chat over your archive",
	Long: `Launch an interactive terminal session for asking questions about
your chat archive. Prior turns in the session are carried as context,
so follow-up questions work.

Controls:
  enter   - Ask the question
  ctrl+l  - Start a new session
  ctrl+s  - Toggle source lists
  esc     - Quit`,
	RunE: runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, _ []string) error {
	if askService == nil {
		return errors.New("ask service not configured")
	}

	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in chat: %v\n%s\n", r, debug.Stack())
		}
	}()

	app, err := tui.NewApp(&tui.Ports{
		Ask:      askService,
		Document: documentService,
	})
	if err != nil {
		return fmt.Errorf("creating chat interface: %w", err)
	}
	app.WithContext(cmd.Context())

	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("chat interface error: %w", err)
	}
	return nil
}
