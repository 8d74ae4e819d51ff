package config

// ModelPreset describes the default models for a provider.
type ModelPreset struct {
	Model          string
	EmbeddingModel string
}

// providerPresets maps each provider to its default model choices.
// Embedding model and normalization must match between ingestion and
// query time, so presets pin both together.
var providerPresets = map[ProviderType]ModelPreset{
	ProviderOpenAI: {Model: "gpt-4o-mini", EmbeddingModel: "text-embedding-3-small"},
	ProviderOllama: {Model: "llama3", EmbeddingModel: "nomic-embed-text"},
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Provider:          ProviderOpenAI,
		Model:             "gpt-4o-mini",
		EmbeddingProvider: ProviderOpenAI,
		EmbeddingModel:    "text-embedding-3-small",
		DataDir:           "data",
		Port:              8080,
		SearchWidth:       3,
		TopK:              5,
		MaxContextChars:   6000,
		MaxConcurrency:    4,
		Chunk: ChunkConfig{
			Size:    800,
			Overlap: 150,
		},
	}
}

// GetPreset returns the model preset for the given provider, falling
// back to the OpenAI preset for unknown providers.
func GetPreset(provider ProviderType) ModelPreset {
	if preset, ok := providerPresets[provider]; ok {
		return preset
	}
	return providerPresets[ProviderOpenAI]
}
