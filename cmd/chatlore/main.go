// Command chatlore is the entry point for the chat archive search engine.
// It wires the adapters to the core services and hands control to the CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	configfile "github.com/chatlore/chatlore/internal/adapters/driven/config/file"
	embeddingollama "github.com/chatlore/chatlore/internal/adapters/driven/embedding/ollama"
	embeddingopenai "github.com/chatlore/chatlore/internal/adapters/driven/embedding/openai"
	llmanthropic "github.com/chatlore/chatlore/internal/adapters/driven/llm/anthropic"
	llmollama "github.com/chatlore/chatlore/internal/adapters/driven/llm/ollama"
	llmopenai "github.com/chatlore/chatlore/internal/adapters/driven/llm/openai"
	"github.com/chatlore/chatlore/internal/adapters/driven/storage/sqlite"
	"github.com/chatlore/chatlore/internal/adapters/driven/vectorindex/bruteforce"
	"github.com/chatlore/chatlore/internal/adapters/driving/cli"
	"github.com/chatlore/chatlore/internal/connectors/filesystem"
	"github.com/chatlore/chatlore/internal/core/domain"
	"github.com/chatlore/chatlore/internal/core/ports/driven"
	"github.com/chatlore/chatlore/internal/core/services"
	"github.com/chatlore/chatlore/internal/logger"
	"github.com/chatlore/chatlore/internal/normalisers"
	"github.com/chatlore/chatlore/internal/normalisers/whatsapp"
	"github.com/chatlore/chatlore/internal/postprocessors"
	"github.com/chatlore/chatlore/internal/postprocessors/chunker"
)

func main() {
	// A missing .env file is fine; environment variables still apply.
	_ = godotenv.Load()

	cli.SetInitializer(buildServices)

	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// buildServices is the composition root: it constructs every adapter
// from configuration and wires the core services.
func buildServices(opts cli.InitOptions) (*cli.Services, error) {
	config, err := configfile.NewConfigStore("")
	if err != nil {
		return nil, fmt.Errorf("opening config: %w", err)
	}

	prompts, err := configfile.NewPromptStore("")
	if err != nil {
		return nil, fmt.Errorf("opening prompts: %w", err)
	}

	docStore, err := sqlite.NewStore(opts.StoreDir)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}

	embedder := buildEmbedding(config)
	generator := buildGenerator(config)

	index := bruteforce.New()
	if err := rebuildIndex(docStore, index); err != nil {
		return nil, err
	}

	dataDir, err := resolveDataDir(opts.DataDir, config)
	if err != nil {
		return nil, err
	}
	source := filesystem.New(dataDir)

	registry := normalisers.NewRegistry()
	registry.Register(whatsapp.New())

	pipeline, err := buildPipeline(config)
	if err != nil {
		return nil, err
	}

	searchSvc := services.NewSearchService(docStore, index, embedder)
	askSvc := services.NewAskService(searchSvc, generator, prompts)
	ingestSvc := services.NewIngestOrchestrator(source, registry, pipeline, embedder, docStore, index)
	documentSvc := services.NewDocumentService(docStore)

	return &cli.Services{
		Ingest:    ingestSvc,
		Search:    searchSvc,
		Ask:       askSvc,
		Documents: documentSvc,
		Config:    config,
	}, nil
}

// buildEmbedding constructs the embedding gateway from configuration.
// Defaults to a local Ollama instance.
func buildEmbedding(config driven.ConfigStore) driven.EmbeddingService {
	provider := config.GetString("embedding.provider")

	switch provider {
	case "openai":
		svc, err := embeddingopenai.NewEmbeddingService(embeddingopenai.Config{
			APIKey:  configOrEnv(config, "embedding.openai.api_key", "OPENAI_API_KEY"),
			BaseURL: config.GetString("embedding.base_url"),
			Model:   config.GetString("embedding.model"),
		})
		if err != nil {
			logger.Warn("OpenAI embedding unavailable: %v", err)
			return nil
		}
		return svc
	default:
		return embeddingollama.NewEmbeddingService(embeddingollama.Config{
			BaseURL:    config.GetString("embedding.base_url"),
			Model:      config.GetString("embedding.model"),
			Dimensions: config.GetInt("embedding.dimensions"),
		})
	}
}

// buildGenerator constructs the optional generation gateway.
// Returns nil for provider "none"; ask then degrades to retrieval-only.
func buildGenerator(config driven.ConfigStore) driven.GeneratorService {
	provider := config.GetString("generation.provider")

	switch provider {
	case "none":
		return nil
	case "openai":
		svc, err := llmopenai.NewGeneratorService(llmopenai.Config{
			APIKey:  configOrEnv(config, "generation.openai.api_key", "OPENAI_API_KEY"),
			BaseURL: config.GetString("generation.base_url"),
			Model:   config.GetString("generation.model"),
		})
		if err != nil {
			logger.Warn("OpenAI generator unavailable, running retrieval-only: %v", err)
			return nil
		}
		return svc
	case "anthropic":
		svc, err := llmanthropic.NewGeneratorService(llmanthropic.Config{
			APIKey:  configOrEnv(config, "generation.anthropic.api_key", "ANTHROPIC_API_KEY"),
			BaseURL: config.GetString("generation.base_url"),
			Model:   config.GetString("generation.model"),
		})
		if err != nil {
			logger.Warn("Anthropic generator unavailable, running retrieval-only: %v", err)
			return nil
		}
		return svc
	default:
		return llmollama.NewGeneratorService(llmollama.Config{
			BaseURL: config.GetString("generation.base_url"),
			Model:   config.GetString("generation.model"),
		})
	}
}

// buildPipeline constructs the chunking pipeline from configuration.
func buildPipeline(config driven.ConfigStore) (driven.PostProcessorPipeline, error) {
	var opts []chunker.Option
	if size := config.GetInt("chunking.size"); size > 0 {
		opts = append(opts, chunker.WithChunkSize(size))
	}
	if overlap := config.GetInt("chunking.overlap"); overlap > 0 {
		opts = append(opts, chunker.WithOverlap(overlap))
	}

	proc, err := chunker.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("configuring chunker: %w", err)
	}
	return postprocessors.NewPipeline(proc), nil
}

// rebuildIndex loads every stored vector into the in-memory index.
// A corrupt store fails startup; searching a silently empty index
// would look like data loss.
func rebuildIndex(docStore driven.DocumentStore, index driven.VectorIndex) error {
	ctx := context.Background()
	err := docStore.ForEachChunk(ctx, func(chunk domain.Chunk) error {
		return index.Add(ctx, chunk.ID, chunk.Embedding)
	})
	if err != nil {
		return fmt.Errorf("rebuilding vector index: %w", err)
	}
	if size := index.Size(); size > 0 {
		logger.Debug("Rebuilt vector index with %d vectors", size)
	}
	return nil
}

// resolveDataDir picks the export directory: flag, then config, then
// the default under the home directory.
func resolveDataDir(flagValue string, config driven.ConfigStore) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	if configured := config.GetString("data.dir"); configured != "" {
		return configured, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(home, ".chatlore", "exports"), nil
}

// configOrEnv reads a config key with an environment fallback.
func configOrEnv(config driven.ConfigStore, key, envVar string) string {
	if v := config.GetString(key); v != "" {
		return v
	}
	return os.Getenv(envVar)
}
