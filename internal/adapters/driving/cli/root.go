// Package cli provides the command line interface driving adapter.
// Commands call the driving ports only; wiring the services behind
// them is the composition root's job.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chatlore/chatlore/internal/core/ports/driven"
	"github.com/chatlore/chatlore/internal/core/ports/driving"
	"github.com/chatlore/chatlore/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

// Services the commands dispatch to. Assigned by the initializer
// before any RunE executes.
var (
	ingestOrchestrator driving.IngestOrchestrator
	searchService      driving.SearchService
	askService         driving.AskService
	documentService    driving.DocumentService
	configStore        driven.ConfigStore
)

// InitOptions carries the parsed persistent flags into the initializer.
type InitOptions struct {
	// DataDir is the chat export directory (--data-dir).
	DataDir string

	// StoreDir is the store location override (--store-dir).
	StoreDir string
}

// Services bundles everything the commands need.
type Services struct {
	Ingest    driving.IngestOrchestrator
	Search    driving.SearchService
	Ask       driving.AskService
	Documents driving.DocumentService
	Config    driven.ConfigStore
}

// Initializer builds the services once the persistent flags are known.
type Initializer func(opts InitOptions) (*Services, error)

var initServices Initializer

// SetInitializer installs the service initializer. Must be called
// before Execute.
func SetInitializer(fn Initializer) {
	initServices = fn
}

// SetVersion overrides the reported version.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

var (
	flagVerbose  bool
	flagDataDir  string
	flagStoreDir string
)

var rootCmd = &cobra.Command{
	Use:   "chatlore",
	Short: "Semantic search over your own chat archive",
	Long: `Chatlore ingests exported chat conversations, indexes them with
vector embeddings, and answers questions about them. Everything runs
locally; nothing leaves your machine unless you configure a hosted
provider.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		logger.SetVerbose(flagVerbose)

		if cmd.Name() == "version" || initServices == nil {
			return nil
		}
		svcs, err := initServices(InitOptions{
			DataDir:  flagDataDir,
			StoreDir: flagStoreDir,
		})
		if err != nil {
			return fmt.Errorf("initialising services: %w", err)
		}
		ingestOrchestrator = svcs.Ingest
		searchService = svcs.Search
		askService = svcs.Ask
		documentService = svcs.Documents
		configStore = svcs.Config
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "chat export directory (default from config)")
	rootCmd.PersistentFlags().StringVar(&flagStoreDir, "store-dir", "", "store directory (default ~/.chatlore/data)")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// configuredTopK resolves the result count from config when the user
// did not pass --top-k explicitly.
func configuredTopK(fallback int) int {
	if configStore == nil {
		return fallback
	}
	if n := configStore.GetInt("search.top_k"); n > 0 {
		return n
	}
	return fallback
}
