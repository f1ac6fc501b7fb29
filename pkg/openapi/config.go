package openapi

import "os"

// Config holds the metadata published in the generated API description.
type Config struct {
	Title       string `toml:"title"`
	Description string `toml:"description"`
}

// ConfigEnv names the environment variables that override Config.
type ConfigEnv struct {
	Title       string
	Description string
}

type field struct {
	dst *string
	env string
	def string
}

func (c *Config) fields(env *ConfigEnv) []field {
	if env == nil {
		env = &ConfigEnv{}
	}
	return []field{
		{&c.Title, env.Title, "Attest API"},
		{&c.Description, env.Description, "Client document storage and e-signature sessions."},
	}
}

// Finalize fills empty fields with defaults, then applies environment
// overrides. Metadata has no invalid values, so it never fails.
func (c *Config) Finalize(env *ConfigEnv) error {
	for _, f := range c.fields(env) {
		if *f.dst == "" {
			*f.dst = f.def
		}
		if f.env == "" {
			continue
		}
		if v := os.Getenv(f.env); v != "" {
			*f.dst = v
		}
	}
	return nil
}

// Merge overwrites fields that are set in overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.Title != "" {
		c.Title = overlay.Title
	}
	if overlay.Description != "" {
		c.Description = overlay.Description
	}
}
