package geolocation

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/couchcryptid/background-geolocation/internal/native"
	"github.com/couchcryptid/background-geolocation/internal/observability"
)

// Settings tunes the Provider built by ForRoot.
type Settings struct {
	StreamBuffer int
}

// Params are the container dependencies of the Provider. All are optional:
// without a Binding the process-global one is used.
type Params struct {
	fx.In

	Binding  native.Binding         `optional:"true"`
	Logger   *slog.Logger           `optional:"true"`
	Metrics  *observability.Metrics `optional:"true"`
	Settings *Settings              `optional:"true"`
}

// ForRoot registers the Provider with the container. fx builds it once, so
// every consumer shares the same instance.
func ForRoot() fx.Option {
	return fx.Module("geolocation",
		fx.Provide(newFromParams),
	)
}

func newFromParams(p Params) *Provider {
	binding := p.Binding
	if binding == nil {
		binding = native.Global()
	}

	opts := []Option{WithLogger(p.Logger), WithMetrics(p.Metrics)}
	if p.Settings != nil && p.Settings.StreamBuffer > 0 {
		opts = append(opts, WithStreamBuffer(p.Settings.StreamBuffer))
	}
	return NewProvider(binding, opts...)
}
