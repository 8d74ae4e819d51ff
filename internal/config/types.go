package config

// ProviderType identifies an LLM or embedding provider.
type ProviderType string

const (
	ProviderOpenAI ProviderType = "openai"
	ProviderOllama ProviderType = "ollama"
)

// Config is the top-level docqa configuration, corresponding to .docqa.yml.
type Config struct {
	Provider          ProviderType `yaml:"provider" koanf:"provider"`
	Model             string       `yaml:"model" koanf:"model"`
	EmbeddingProvider ProviderType `yaml:"embedding_provider" koanf:"embedding_provider"`
	EmbeddingModel    string       `yaml:"embedding_model" koanf:"embedding_model"`
	DataDir           string       `yaml:"data_dir" koanf:"data_dir"`
	Port              int          `yaml:"port" koanf:"port"`

	// Retrieval tuning.
	SearchWidth     int `yaml:"search_width" koanf:"search_width"`           // chunks per document in collection mode
	TopK            int `yaml:"top_k" koanf:"top_k"`                         // chunks in single-document mode
	MaxContextChars int `yaml:"max_context_chars" koanf:"max_context_chars"` // context budget per extraction
	MaxConcurrency  int `yaml:"max_concurrency" koanf:"max_concurrency"`     // parallel per-document searches

	Chunk ChunkConfig `yaml:"chunk" koanf:"chunk"`
}

// ChunkConfig controls the ingestion chunker.
type ChunkConfig struct {
	Size    int `yaml:"size" koanf:"size"`
	Overlap int `yaml:"overlap" koanf:"overlap"`
}
