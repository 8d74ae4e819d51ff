package config

import (
	"fmt"
	"strconv"

	"github.com/manifoldco/promptui"
)

// RunWizard runs an interactive configuration wizard and returns the
// resulting Config. It also saves the config to .docqa.yml.
func RunWizard() (*Config, error) {
	fmt.Println("Welcome to docqa! Let's configure your workspace.")
	fmt.Println()

	cfg := DefaultConfig()

	// 1. Provider selection.
	providerPrompt := promptui.Select{
		Label: "Select LLM provider",
		Items: []string{"openai", "ollama"},
	}
	_, providerStr, err := providerPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("provider selection: %w", err)
	}
	provider := ProviderType(providerStr)

	preset := GetPreset(provider)
	cfg.Provider = provider
	cfg.Model = preset.Model
	cfg.EmbeddingProvider = provider
	cfg.EmbeddingModel = preset.EmbeddingModel

	// 2. Data directory.
	dirPrompt := promptui.Prompt{
		Label:   "Data directory",
		Default: cfg.DataDir,
	}
	dataDir, err := dirPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("data directory: %w", err)
	}
	cfg.DataDir = dataDir

	// 3. Server port.
	portPrompt := promptui.Prompt{
		Label:   "HTTP port",
		Default: strconv.Itoa(cfg.Port),
		Validate: func(s string) error {
			n, err := strconv.Atoi(s)
			if err != nil || n < 1 || n > 65535 {
				return fmt.Errorf("invalid port")
			}
			return nil
		},
	}
	portStr, err := portPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("port: %w", err)
	}
	cfg.Port, _ = strconv.Atoi(portStr)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if err := cfg.Save(".docqa.yml"); err != nil {
		return nil, err
	}

	fmt.Println()
	fmt.Printf("Configuration saved to .docqa.yml (provider=%s, model=%s)\n", cfg.Provider, cfg.Model)
	if envVar := APIKeyEnvVar(cfg.Provider); envVar != "" {
		fmt.Printf("Remember to set %s before running docqa.\n", envVar)
	}

	return cfg, nil
}
