package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Load builds the effective configuration. Precedence, lowest first:
// defaults, YAML file, environment variables. File-referenced secrets
// are resolved last, and the result is validated.
//
// The configuration file is located by trying, in order:
//  1. the explicit path argument (if non-empty)
//  2. the AUSKUNFT_CONFIG environment variable
//  3. ./config.yaml
//  4. /etc/auskunft/config.yaml
func Load(configPath string) (*Config, error) {
	cfg := Defaults()

	path := discoverConfigFile(configPath)
	if path != "" {
		if err := loadYAMLFile(cfg, path); err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)

	if err := resolveFileReferences(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

// discoverConfigFile returns the first config file path that exists,
// or "" when none does. An explicitly given path is returned as-is so
// a missing file surfaces as a load error instead of being silently
// skipped.
func discoverConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if p := os.Getenv("AUSKUNFT_CONFIG"); p != "" {
		return p
	}
	for _, p := range []string{"config.yaml", "/etc/auskunft/config.yaml"} {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

func loadYAMLFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

// applyEnvOverrides layers environment variables over the loaded
// configuration. AUSKUNFT_API_KEY takes precedence over the plain
// OPENAI_API_KEY, which is honored so the service works with the
// standard variable and no config file at all.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("AUSKUNFT_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("AUSKUNFT_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("AUSKUNFT_API_KEY"); v != "" {
		cfg.OpenAI.APIKey = v
	} else if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.OpenAI.APIKey = v
	}
	if v := os.Getenv("AUSKUNFT_OPENAI_BASE_URL"); v != "" {
		cfg.OpenAI.BaseURL = v
	}
	if v := os.Getenv("AUSKUNFT_EMBED_MODEL"); v != "" {
		cfg.OpenAI.EmbedModel = v
	}
	if v := os.Getenv("AUSKUNFT_CHAT_MODEL"); v != "" {
		cfg.OpenAI.ChatModel = v
	}
	if v := os.Getenv("AUSKUNFT_TOP_K"); v != "" {
		if k, err := strconv.Atoi(v); err == nil {
			cfg.Retrieval.TopK = k
		}
	}
	if v := os.Getenv("AUSKUNFT_MCP_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.MCP.Enabled = b
		}
	}
	if v := os.Getenv("AUSKUNFT_METRICS_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Metrics.Enabled = b
		}
	}
	if v := os.Getenv("AUSKUNFT_DEBUG"); v != "" {
		cfg.Debug.Categories = splitList(v)
	}
}

// resolveFileReferences reads secrets referenced by *_file fields. An
// explicitly set value always wins over its file reference.
func resolveFileReferences(cfg *Config) error {
	if cfg.OpenAI.APIKey == "" && cfg.OpenAI.APIKeyFile != "" {
		key, err := readSecretFile(cfg.OpenAI.APIKeyFile)
		if err != nil {
			return fmt.Errorf("resolve openai.api_key_file: %w", err)
		}
		cfg.OpenAI.APIKey = key
	}
	return nil
}

func readSecretFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
