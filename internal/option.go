package internal

import "github.com/bamboovfx/obsidian-image-manager/internal/organizer"

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config    *Config
	overrides []func(*organizer.Request)
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithOrganizeOverride applies a per-invocation tweak on top of the
// configured organize defaults (CLI flags use this).
func WithOrganizeOverride(fn func(*organizer.Request)) Option {
	return func(a *application) {
		a.overrides = append(a.overrides, fn)
	}
}

// organizeRequest builds the effective organize request.
func (a *application) organizeRequest() organizer.Request {
	req := a.config.Organize.Request()
	for _, fn := range a.overrides {
		fn(&req)
	}
	return req
}
