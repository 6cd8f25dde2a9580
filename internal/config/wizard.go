package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/manifoldco/promptui"
)

// RunWizard runs an interactive configuration wizard, saves the result to
// path and returns it.
func RunWizard(path string) (*Config, error) {
	fmt.Println("Welcome to kbassist! Let's configure your knowledge base.")
	fmt.Println()

	cfg := DefaultConfig()

	// 1. Provider selection.
	providerPrompt := promptui.Select{
		Label: "Select LLM provider",
		Items: []string{string(ProviderOpenAI), string(ProviderOllama)},
	}
	_, providerStr, err := providerPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("provider selection: %w", err)
	}
	provider := ProviderType(providerStr)
	preset := GetPreset(provider)

	// 2. Chat model.
	modelPrompt := promptui.Prompt{
		Label:   "Chat model",
		Default: preset.Model,
	}
	model, err := modelPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("model: %w", err)
	}

	// 3. Document to index.
	docPrompt := promptui.Prompt{
		Label:   "SOP document path or glob",
		Default: cfg.DocumentPath,
		Validate: func(s string) error {
			if s == "" {
				return errors.New("a document path is required")
			}
			return nil
		},
	}
	docPath, err := docPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("document path: %w", err)
	}

	// 4. Port.
	portPrompt := promptui.Prompt{
		Label:    "Port for kbassist serve",
		Default:  strconv.Itoa(cfg.Port),
		Validate: validatePort,
	}
	portStr, err := portPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("port: %w", err)
	}
	port, _ := strconv.Atoi(portStr)

	// 5. Service URL used by the widget and CLI.
	urlPrompt := promptui.Prompt{
		Label:   "Question-answering service URL",
		Default: fmt.Sprintf("http://localhost:%d", port),
	}
	serviceURL, err := urlPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("service url: %w", err)
	}

	cfg.Provider = provider
	cfg.Model = model
	cfg.EmbeddingProvider = provider
	cfg.EmbeddingModel = preset.EmbeddingModel
	cfg.DocumentPath = docPath
	cfg.Port = port
	cfg.ServiceURL = serviceURL

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// Check for API key.
	if envVar := APIKeyEnvVar(provider); envVar != "" && os.Getenv(envVar) == "" {
		fmt.Printf("\nNote: Set %s in your environment before running kbassist index.\n", envVar)
	}

	if err := cfg.Save(path); err != nil {
		return nil, fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("\nConfiguration saved to %s\n", path)
	return cfg, nil
}

func validatePort(s string) error {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 || n > 65535 {
		return errors.New("port must be a number between 1 and 65535")
	}
	return nil
}
