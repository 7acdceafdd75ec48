package bootstrap

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/go-badge/badge/internal/cache"
	"github.com/go-badge/badge/internal/config"
	"github.com/go-badge/badge/internal/metrics"
	"github.com/go-badge/badge/internal/provider"
	"github.com/go-badge/badge/internal/scheme"
)

// Application holds all initialized components
type Application struct {
	Config *config.Config

	// Core infrastructure
	MetricsRecorder metrics.Recorder
	Outcomes        cache.Cache[scheme.Outcome]

	// Authentication
	Provider *provider.Client
	Registry *scheme.Registry
	Active   scheme.Scheme

	// HTTP
	Router *gin.Engine
	Server *http.Server
}

// Run initializes and starts the application
func Run(cfg *config.Config) error {
	app := &Application{Config: cfg}

	// Phase 1: Validate configuration
	if err := cfg.Validate(); err != nil {
		return err
	}

	// Phase 2: Initialize infrastructure
	if err := app.initializeInfrastructure(); err != nil {
		return err
	}

	// Phase 3: Initialize authentication strategies
	if err := app.initializeSchemes(); err != nil {
		return err
	}

	// Phase 4: Initialize HTTP layer
	app.initializeHTTPLayer()

	// Phase 5: Start server with graceful shutdown
	app.startWithGracefulShutdown()

	return nil
}

// initializeInfrastructure sets up metrics and the outcome cache
func (app *Application) initializeInfrastructure() error {
	app.MetricsRecorder = initializeMetrics(app.Config)

	outcomes, err := initializeOutcomeCache(context.Background(), app.Config)
	if err != nil {
		return err
	}
	app.Outcomes = outcomes

	return nil
}

// initializeSchemes builds the provider client and registers the strategies
func (app *Application) initializeSchemes() error {
	client, err := createProviderClient(app.Config)
	if err != nil {
		return err
	}
	app.Provider = client

	registry, active, err := registerSchemes(app.Config, client, app.Outcomes, app.MetricsRecorder)
	if err != nil {
		return err
	}
	app.Registry = registry
	app.Active = active

	return nil
}

// initializeHTTPLayer sets up the router and server
func (app *Application) initializeHTTPLayer() {
	app.Router = setupRouter(app.Config, app.Outcomes, app.Active, app.MetricsRecorder)
	app.Server = createHTTPServer(app.Config, app.Router)
}
