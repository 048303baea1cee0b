package app

import (
	"context"

	"go.uber.org/zap"

	"voltshare/backend/services/cms-service/internal/clients"
	"voltshare/backend/services/cms-service/internal/config"
	httpserver "voltshare/backend/services/cms-service/internal/http"
	"voltshare/backend/services/cms-service/internal/http/handlers"
	"voltshare/backend/services/cms-service/internal/metering"
	"voltshare/backend/services/cms-service/internal/service"
)

// App wires cms-service dependencies.
type App struct {
	server *httpserver.Server
	meter  *metering.Meter
	logger *zap.Logger
}

// New constructs the application graph.
func New(cfg *config.Config, logger *zap.Logger) (*App, error) {
	counters := metering.NewCounterStore()
	meter := metering.NewMeter(counters, cfg.Meter.Interval, cfg.Meter.Delta, logger)

	bookingClient := clients.NewBookingClient(cfg.Authority.BaseURL, logger)
	controlService := service.NewControlService(counters, bookingClient, logger)
	controlHandler := handlers.NewControlHandler(controlService, logger)

	routes := httpserver.Routes{
		ControlBlock:   controlHandler.HandleBlock,
		ControlUnblock: controlHandler.HandleUnblock,
		ControlStop:    controlHandler.HandleStop,
		Health:         handlers.NewHealthHandler(),
	}

	router := httpserver.NewRouter(routes)
	server := httpserver.NewServer(cfg.HTTPAddress(), router, logger)

	return &App{
		server: server,
		meter:  meter,
		logger: logger,
	}, nil
}

// Run starts the meter loop and the HTTP server, stopping both together.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	meterDone := make(chan error, 1)
	go func() {
		meterDone <- a.meter.Run(ctx)
	}()

	err := a.server.Run(ctx)
	cancel()
	<-meterDone
	return err
}

// Close releases resources.
func (a *App) Close() {}
