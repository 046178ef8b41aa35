// Package config resolves runtime configuration from the environment, with
// an optional YAML persona file for servers that want a different character
// or different scripted lines.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"nadja_ai/prompts"
)

// Config is everything main needs to assemble the server.
type Config struct {
	// APIKey is the Gemini API key. Empty means the server runs with the
	// unconfigured provider and answers only with canned lines.
	APIKey string

	// Secret is the shared secret every chat and reset request must carry.
	Secret string

	// Port the HTTP server listens on.
	Port string

	// Persona is the resolved character definition.
	Persona prompts.Persona

	// Models overrides the probe candidate order when set in the persona
	// file.
	Models []string
}

// personaFile is the YAML shape of an optional persona override file.
type personaFile struct {
	Persona prompts.Persona `yaml:"persona"`
	Models  []string        `yaml:"models"`
}

// Load reads the environment (after main has run godotenv) and the optional
// persona file named by NADJA_PERSONA.
func Load() (*Config, error) {
	cfg := &Config{
		APIKey:  os.Getenv("GEMINI_API_KEY"),
		Secret:  envOr("SECRET_KEY", "NADJAS_DOLL_SECRET_666"),
		Port:    envOr("PORT", "10000"),
		Persona: prompts.Default(),
	}

	if path := os.Getenv("NADJA_PERSONA"); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read persona file: %w", err)
		}
		var pf personaFile
		if err := yaml.Unmarshal(raw, &pf); err != nil {
			return nil, fmt.Errorf("parse persona file %s: %w", path, err)
		}
		cfg.Persona = cfg.Persona.Merge(pf.Persona)
		cfg.Models = pf.Models
	}
	return cfg, nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
