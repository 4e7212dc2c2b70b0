package observability

import (
	"context"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/skillsenselab/eventhub/component"
)

// Component manages the meter and tracer providers as one lifecycle unit.
// When the config is disabled it starts nothing and stays healthy.
type Component struct {
	serviceName    string
	serviceVersion string
	environment    string
	cfg            Config

	mp *sdkmetric.MeterProvider
	tp *sdktrace.TracerProvider
}

// ensure Component satisfies component.Component.
var _ component.Component = (*Component)(nil)

// NewComponent creates an observability component.
func NewComponent(serviceName, serviceVersion, environment string, cfg Config) *Component {
	return &Component{
		serviceName:    serviceName,
		serviceVersion: serviceVersion,
		environment:    environment,
		cfg:            cfg,
	}
}

// Name returns the component name.
func (c *Component) Name() string { return "observability" }

// Start initializes the providers when enabled.
func (c *Component) Start(ctx context.Context) error {
	if !c.cfg.Enabled {
		return nil
	}

	mp, err := InitMeter(ctx, c.serviceName, c.serviceVersion, c.environment, c.cfg)
	if err != nil {
		return err
	}
	c.mp = mp

	tp, err := InitTracer(ctx, c.serviceName, c.serviceVersion, c.environment, c.cfg)
	if err != nil {
		return err
	}
	c.tp = tp
	return nil
}

// Stop flushes and shuts down the providers.
func (c *Component) Stop(ctx context.Context) error {
	var firstErr error
	if c.tp != nil {
		if err := c.tp.Shutdown(ctx); err != nil {
			firstErr = err
		}
		c.tp = nil
	}
	if c.mp != nil {
		if err := c.mp.Shutdown(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
		c.mp = nil
	}
	return firstErr
}

// Health reports whether export is active.
func (c *Component) Health(_ context.Context) component.Health {
	h := component.Health{Name: c.Name(), Status: component.StatusHealthy}
	if !c.cfg.Enabled {
		h.Message = "disabled"
	}
	return h
}
