package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ConfigError reports an invalid or unusable configuration.
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string {
	return e.Message
}

// WorkspaceConfig names one Notion workspace and the environment variable
// holding its integration token. Tokens never live in the config file.
type WorkspaceConfig struct {
	Name     string `yaml:"name"`
	TokenEnv string `yaml:"token_env"`
}

// Token resolves the workspace's integration token from the environment.
func (w *WorkspaceConfig) Token() (string, error) {
	token := os.Getenv(w.TokenEnv)
	if token == "" {
		return "", &ConfigError{Message: fmt.Sprintf("environment variable %s is not set for workspace %s", w.TokenEnv, w.Name)}
	}
	return token, nil
}

// NotificationConfig controls the optional Discord webhook notifier.
type NotificationConfig struct {
	DiscordWebhookURL string `yaml:"discord_webhook_url"`
	NotifyOn          string `yaml:"notify_on"`
}

// Config is the full application configuration loaded from YAML.
type Config struct {
	Schedule       string             `yaml:"schedule"`
	RetentionCount int                `yaml:"retention_count"`
	Workspaces     []WorkspaceConfig  `yaml:"workspaces"`
	Notifications  NotificationConfig `yaml:"notifications"`
}

// loadConfig reads and validates the YAML config at path.
func loadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &ConfigError{Message: fmt.Sprintf("config file not found: %s", path)}
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, &ConfigError{Message: fmt.Sprintf("invalid YAML in %s: %v", path, err)}
	}

	if config.Schedule == "" {
		return nil, &ConfigError{Message: "schedule must be set"}
	}
	if config.RetentionCount < 1 {
		return nil, &ConfigError{Message: "retention_count must be at least 1"}
	}
	if len(config.Workspaces) == 0 {
		return nil, &ConfigError{Message: "at least one workspace must be configured"}
	}
	for i, ws := range config.Workspaces {
		if ws.Name == "" {
			return nil, &ConfigError{Message: fmt.Sprintf("workspace %d is missing a name", i)}
		}
		if ws.TokenEnv == "" {
			return nil, &ConfigError{Message: fmt.Sprintf("workspace %s is missing token_env", ws.Name)}
		}
	}

	if config.Notifications.NotifyOn == "" {
		config.Notifications.NotifyOn = "error"
	}
	switch config.Notifications.NotifyOn {
	case "always", "error":
	default:
		return nil, &ConfigError{Message: fmt.Sprintf("notify_on must be \"always\" or \"error\", got %q", config.Notifications.NotifyOn)}
	}

	return &config, nil
}
