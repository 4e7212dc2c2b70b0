package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/skillsenselab/eventhub/component"
	"github.com/skillsenselab/eventhub/config"
	"github.com/skillsenselab/eventhub/hub"
	"github.com/skillsenselab/eventhub/logger"
	"github.com/skillsenselab/eventhub/observability"
	"github.com/skillsenselab/eventhub/server"
	"github.com/skillsenselab/eventhub/version"
)

const serviceName = "eventhub"

// appConfig is the full service configuration. Fields are populated from
// config.yml and HUB_*-prefixed environment variables.
type appConfig struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`

	Server        server.Config        `yaml:"server" mapstructure:"server"`
	Hub           hub.Config           `yaml:"hub" mapstructure:"hub"`
	Observability observability.Config `yaml:"observability" mapstructure:"observability"`
}

func (c *appConfig) ApplyDefaults() {
	if c.Name == "" {
		c.Name = serviceName
	}
	if c.Version == "" {
		c.Version = version.Short()
	}
	c.ServiceConfig.ApplyDefaults()
	c.Server.ApplyDefaults()
	c.Hub.ApplyDefaults()
	c.Observability.ApplyDefaults()
}

func (c *appConfig) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return err
	}
	if err := c.Server.Validate(); err != nil {
		return err
	}
	if err := c.Hub.Validate(); err != nil {
		return err
	}
	return c.Observability.Validate()
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "eventhub: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := &appConfig{}
	if err := config.LoadConfig(serviceName, cfg); err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation: %w", err)
	}

	logger.Init(cfg.Logging)
	log := logger.GetGlobalLogger()
	log.Info("Starting application", map[string]interface{}{
		"name":        cfg.Name,
		"version":     cfg.Version,
		"environment": cfg.Environment,
	})

	registry := component.NewRegistry()

	obs := observability.NewComponent(cfg.Name, cfg.Version, cfg.Environment, cfg.Observability)
	hubComp := hub.NewComponent(cfg.Hub)
	srv := server.New(cfg.Server, log)

	// Startup order is shutdown order reversed: the server stops first so no
	// new subscribers arrive while the hub closes its connections.
	for _, c := range []component.Component{obs, hubComp, srv} {
		if err := registry.Register(c); err != nil {
			return fmt.Errorf("registering component: %w", err)
		}
	}

	srv.ApplyMiddleware()
	hub.NewHandler(hubComp.Hub()).RegisterRoutes(srv.GinEngine())
	srv.RegisterDefaultEndpoints(cfg.Name, registry.HealthAll)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := registry.StartAll(ctx); err != nil {
		return fmt.Errorf("starting components: %w", err)
	}

	// The meter provider is installed by the observability component; with
	// export disabled this binds no-op instruments.
	if err := hubComp.Hub().EnableMetrics(observability.Meter("hub")); err != nil {
		log.Warn("Hub metrics unavailable", map[string]interface{}{
			"error": err.Error(),
		})
	}

	log.Info("Application ready", map[string]interface{}{
		"addr": srv.Addr(),
	})
	<-ctx.Done()

	log.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return registry.StopAll(shutdownCtx)
}
