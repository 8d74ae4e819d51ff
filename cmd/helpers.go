package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"docqa/internal/answer"
	"docqa/internal/catalog"
	"docqa/internal/config"
	"docqa/internal/db"
	"docqa/internal/embeddings"
	"docqa/internal/ingest"
	"docqa/internal/llm"
	"docqa/internal/vectorindex"
)

// loadConfig loads and validates the config, providing a user-friendly error.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `docqa init` to create a config file", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// createEmbedderFromConfig creates an embeddings.Embedder based on config.
func createEmbedderFromConfig(cfg *config.Config) (embeddings.Embedder, error) {
	provider := cfg.EmbeddingProvider
	if provider == "" {
		provider = cfg.Provider
	}
	model := cfg.EmbeddingModel
	if model == "" {
		model = config.GetPreset(provider).EmbeddingModel
	}

	switch provider {
	case config.ProviderOpenAI:
		apiKey := os.Getenv(config.APIKeyEnvVar(config.ProviderOpenAI))
		if apiKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY environment variable is required for OpenAI embeddings")
		}
		return embeddings.NewOpenAIEmbedder(apiKey, embeddings.OpenAIModel(model)), nil
	case config.ProviderOllama:
		return embeddings.NewOllamaEmbedder(model, 768, ""), nil
	default:
		return nil, fmt.Errorf("unknown embedding provider: %s", provider)
	}
}

// createLLMProviderFromConfig creates an LLM provider based on config settings.
func createLLMProviderFromConfig(cfg *config.Config) (llm.Provider, error) {
	return llm.NewProvider(string(cfg.Provider), cfg.Model)
}

// runtime bundles the stores and engine every command needs.
type runtime struct {
	cfg      *config.Config
	db       *db.DB
	catalog  *catalog.Store
	index    *vectorindex.Index
	embedder embeddings.Embedder
	provider llm.Provider
	engine   *answer.Engine
	ingestor *ingest.Ingestor
}

// openRuntime wires the full engine stack from config. Callers must
// Close the returned runtime.
func openRuntime() (*runtime, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	embedder, err := createEmbedderFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	provider, err := createLLMProviderFromConfig(cfg)
	if err != nil {
		return nil, err
	}

	database, err := db.Open(filepath.Join(cfg.DataDir, "docqa.db"))
	if err != nil {
		return nil, err
	}

	index, err := vectorindex.New(database, filepath.Join(cfg.DataDir, "vectors"), embedder)
	if err != nil {
		database.Close()
		return nil, err
	}

	store := catalog.NewStore(database)
	engine := answer.NewEngine(store, index, embedder, provider, cfg.Model, answer.Options{
		SearchWidth:     cfg.SearchWidth,
		TopK:            cfg.TopK,
		MaxContextChars: cfg.MaxContextChars,
		MaxConcurrency:  cfg.MaxConcurrency,
	})

	return &runtime{
		cfg:      cfg,
		db:       database,
		catalog:  store,
		index:    index,
		embedder: embedder,
		provider: provider,
		engine:   engine,
		ingestor: ingest.New(store, index, embedder, cfg.Chunk.Size, cfg.Chunk.Overlap),
	}, nil
}

func (rt *runtime) Close() error {
	return rt.db.Close()
}
