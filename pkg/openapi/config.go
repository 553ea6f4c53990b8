package openapi

import "github.com/crobbins327/histocartography/pkg/envconf"

// Config is the document metadata shown by API browsers.
type Config struct {
	Title       string `toml:"title"`
	Description string `toml:"description"`
}

// ConfigEnv names the variables overriding each Config field.
type ConfigEnv struct {
	Title       string
	Description string
}

// Finalize fills defaults and applies env.
func (c *Config) Finalize(env *ConfigEnv) error {
	envconf.Default(&c.Title, "Histocartography API")
	envconf.Default(&c.Description, "Meta-explanation service for histopathology graph and image model explanations.")
	if env == nil {
		return nil
	}
	var o envconf.Overrides
	o.String(env.Title, &c.Title)
	o.String(env.Description, &c.Description)
	return o.Err()
}

// Merge applies the non-zero fields of overlay.
func (c *Config) Merge(overlay *Config) {
	envconf.Overlay(&c.Title, overlay.Title)
	envconf.Overlay(&c.Description, overlay.Description)
}
