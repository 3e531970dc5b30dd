package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// knownKeys are the settings the show command displays, in order.
var knownKeys = []string{
	"data.dir",
	"embedding.provider",
	"embedding.model",
	"embedding.base_url",
	"embedding.dimensions",
	"embedding.openai.api_key",
	"generation.provider",
	"generation.model",
	"generation.base_url",
	"generation.openai.api_key",
	"generation.anthropic.api_key",
	"search.top_k",
	"chunking.size",
	"chunking.overlap",
}

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage configuration",
	Long: `View and change configuration: data directory, embedding and
generation providers, chunking parameters.

API keys are read with echo disabled via 'settings set-key'.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE:  runSettingsShow,
}

var settingsGetCmd = &cobra.Command{
	Use:   "get [key]",
	Short: "Print one configuration value",
	Args:  cobra.ExactArgs(1),
	RunE:  runSettingsGet,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE:  runSettingsSet,
}

var settingsSetKeyCmd = &cobra.Command{
	Use:   "set-key [key]",
	Short: "Set a secret without echoing it",
	Long: `Prompts for a secret value with terminal echo disabled and stores
it under the given key.

Example:
  chatlore settings set-key generation.openai.api_key`,
	Args: cobra.ExactArgs(1),
	RunE: runSettingsSetKey,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsGetCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsSetKeyCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if configStore == nil {
		return errors.New("config store not configured")
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()
	for _, key := range knownKeys {
		value, ok := configStore.Get(key)
		if !ok {
			cmd.Printf("  %-30s (not set)\n", key)
			continue
		}
		cmd.Printf("  %-30s %s\n", key, displayValue(key, value))
	}
	cmd.Println()
	cmd.Printf("Config file: %s\n", configStore.Path())
	return nil
}

func runSettingsGet(cmd *cobra.Command, args []string) error {
	if configStore == nil {
		return errors.New("config store not configured")
	}

	value, ok := configStore.Get(args[0])
	if !ok {
		return fmt.Errorf("key %q is not set", args[0])
	}
	cmd.Println(displayValue(args[0], value))
	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if configStore == nil {
		return errors.New("config store not configured")
	}

	key, raw := args[0], args[1]
	if err := configStore.Set(key, parseValue(raw)); err != nil {
		return fmt.Errorf("setting %s: %w", key, err)
	}
	cmd.Printf("Set %s.\n", key)
	return nil
}

func runSettingsSetKey(cmd *cobra.Command, args []string) error {
	if configStore == nil {
		return errors.New("config store not configured")
	}

	cmd.Printf("Enter value for %s: ", args[0])
	secret := readSecret()
	cmd.Println()

	if secret == "" {
		return errors.New("empty value, nothing stored")
	}
	if err := configStore.Set(args[0], secret); err != nil {
		return fmt.Errorf("storing %s: %w", args[0], err)
	}
	cmd.Printf("Stored %s.\n", args[0])
	return nil
}

// readSecret reads a line without echo when stdin is a terminal.
func readSecret() string {
	if term.IsTerminal(int(os.Stdin.Fd())) {
		secret, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err == nil {
			return strings.TrimSpace(string(secret))
		}
	}
	reader := bufio.NewReader(os.Stdin)
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

// parseValue turns a CLI string into a typed config value.
func parseValue(raw string) any {
	if b, err := strconv.ParseBool(raw); err == nil {
		return b
	}
	if n, err := strconv.Atoi(raw); err == nil {
		return n
	}
	return raw
}

// displayValue masks secrets when printing.
func displayValue(key string, value any) string {
	s := fmt.Sprintf("%v", value)
	if strings.Contains(key, "api_key") {
		return maskSecret(s)
	}
	return s
}

func maskSecret(secret string) string {
	if len(secret) <= 8 {
		return "****"
	}
	return secret[:4] + "..." + secret[len(secret)-4:]
}
