package middleware

import "github.com/crobbins327/histocartography/pkg/envconf"

// CORSConfig holds the cross-origin policy of a module.
type CORSConfig struct {
	Enabled          bool     `toml:"enabled"`
	Origins          []string `toml:"origins"`
	AllowedMethods   []string `toml:"allowed_methods"`
	AllowedHeaders   []string `toml:"allowed_headers"`
	AllowCredentials bool     `toml:"allow_credentials"`
	MaxAge           int      `toml:"max_age"`
}

// CORSEnv names the environment variables that override CORSConfig fields.
// List variables are comma separated.
type CORSEnv struct {
	Enabled          string
	Origins          string
	AllowedMethods   string
	AllowedHeaders   string
	AllowCredentials string
	MaxAge           string
}

// Finalize applies defaults, then environment overrides.
func (c *CORSConfig) Finalize(env *CORSEnv) error {
	if len(c.AllowedMethods) == 0 {
		c.AllowedMethods = []string{"GET", "POST", "DELETE", "OPTIONS"}
	}
	if len(c.AllowedHeaders) == 0 {
		c.AllowedHeaders = []string{"Content-Type"}
	}
	envconf.Default(&c.MaxAge, 3600)

	if env == nil {
		return nil
	}
	var o envconf.Overrides
	o.Bool(env.Enabled, &c.Enabled)
	o.List(env.Origins, &c.Origins)
	o.List(env.AllowedMethods, &c.AllowedMethods)
	o.List(env.AllowedHeaders, &c.AllowedHeaders)
	o.Bool(env.AllowCredentials, &c.AllowCredentials)
	o.Int(env.MaxAge, &c.MaxAge)
	return o.Err()
}

// Merge applies the set fields of overlay. An overlay can switch Enabled
// and AllowCredentials on but not off; use the env variables for that.
func (c *CORSConfig) Merge(overlay *CORSConfig) {
	envconf.Overlay(&c.Enabled, overlay.Enabled)
	envconf.Overlay(&c.AllowCredentials, overlay.AllowCredentials)
	envconf.Overlay(&c.MaxAge, overlay.MaxAge)
	if overlay.Origins != nil {
		c.Origins = overlay.Origins
	}
	if overlay.AllowedMethods != nil {
		c.AllowedMethods = overlay.AllowedMethods
	}
	if overlay.AllowedHeaders != nil {
		c.AllowedHeaders = overlay.AllowedHeaders
	}
}
