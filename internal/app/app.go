package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"runtime"
	"time"

	"traffic-rollup/internal/aggregators"
	"traffic-rollup/internal/anomalies"
	internalhttp "traffic-rollup/internal/http"
	"traffic-rollup/internal/ingestors"
	"traffic-rollup/internal/models"
	"traffic-rollup/internal/pipeline"
	"traffic-rollup/internal/queries"
	"traffic-rollup/internal/shared/configs"
	"traffic-rollup/internal/shared/filestorages"
	"traffic-rollup/internal/shared/loggers"
	"traffic-rollup/internal/stores"
)

const (
	sinkFile   = "file"
	sinkSQLite = "sqlite"
)

// App holds all application dependencies and manages lifecycle.
type App struct {
	config    *configs.Config
	appLogger loggers.Logger
	server    *http.Server

	rootLock         *filestorages.RootLock
	sqliteStore      *stores.SQLiteSummaryStore
	ingestionService ingestors.IngestionService
}

// New creates and initializes a new App instance. It takes the storage-root lock, so a
// second App on the same root fails until Close is called.
func New(config *configs.Config) (*App, error) {
	appLogger, err := loggers.New(loggers.Options{
		Level:  config.Log.Level,
		Format: config.Log.Format,
		Output: config.Log.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	appLogger = appLogger.With().
		Str(loggers.FieldApp, "traffic-rollup").
		Logger()

	pipelineConfig, err := PipelineConfig(config)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize pipeline config: %w", err)
	}

	rootLock, err := filestorages.AcquireRootLock(config.FileStorage.RootDir)
	if err != nil {
		return nil, fmt.Errorf("failed to lock storage root: %w", err)
	}

	app := &App{
		config:    config,
		appLogger: appLogger,
		rootLock:  rootLock,
	}

	summaryStore, err := app.newSummaryStore()
	if err != nil {
		_ = app.Close()
		return nil, err
	}

	detector := anomalies.NewDetector(anomalies.Config{
		SigmaMultiplier:    config.Anomaly.SigmaMultiplier,
		MinBaselineWindows: config.Anomaly.MinBaselineWindows,
	})
	app.ingestionService = ingestors.NewIngestionService(ingestors.ServiceConfig{
		Pipeline:     pipelineConfig,
		MaxLineBytes: config.Aggregation.MaxLineBytes,
	}, detector, summaryStore)
	queryService := queries.NewRunQueryService(summaryStore)

	httpLogger := appLogger.With().Str(loggers.FieldComponent, "http").Logger()
	router := internalhttp.NewRouter(
		internalhttp.RouterConfig{MaxBodyBytes: config.Server.MaxBodyBytes},
		app.ingestionService,
		queryService,
		httpLogger,
	)

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", config.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: time.Duration(config.Server.ReadHeaderTimeout) * time.Second,
		ReadTimeout:       time.Duration(config.Server.ReadTimeout) * time.Second,
		WriteTimeout:      time.Duration(config.Server.WriteTimeout) * time.Second,
		IdleTimeout:       time.Duration(config.Server.IdleTimeout) * time.Second,
	}
	return app, nil
}

// PipelineConfig translates the aggregation and anomaly sections into a pipeline.Config.
func PipelineConfig(config *configs.Config) (pipeline.Config, error) {
	resolutions := make([]models.Resolution, 0, len(config.Aggregation.Resolutions))
	for _, name := range config.Aggregation.Resolutions {
		resolution, err := models.ParseResolution(name)
		if err != nil {
			return pipeline.Config{}, err
		}
		resolutions = append(resolutions, resolution)
	}

	shards := config.Aggregation.Shards
	if shards == 0 {
		shards = runtime.NumCPU()
	}

	return pipeline.Config{
		Resolutions:     resolutions,
		Shards:          shards,
		QueueBuffer:     config.Aggregation.QueueBuffer,
		MaxRequestSpan:  time.Duration(config.Aggregation.MaxRequestSpanSeconds) * time.Second,
		BaselineWindows: config.Anomaly.BaselineWindows,
		Seed:            config.Aggregation.Seed,
		Accumulator: aggregators.AccumulatorConfig{
			SlowThresholdSeconds: config.Aggregation.SlowThresholdSeconds,
			QuantileCompression:  config.Aggregation.QuantileCompression,
			HLLPrecision:         config.Aggregation.HLLPrecision,
			ReservoirCapacity:    config.Aggregation.ReservoirCapacity,
			MaxUserAgentFamilies: config.Aggregation.MaxUserAgentFamilies,
		},
	}, nil
}

func (app *App) newSummaryStore() (stores.SummaryStore, error) {
	switch app.config.Export.Sink {
	case sinkSQLite:
		sqliteStore, err := stores.NewSQLiteSummaryStore(context.Background(), app.config.Export.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize sqlite store: %w", err)
		}
		app.sqliteStore = sqliteStore
		return sqliteStore, nil
	case sinkFile, "":
		fileStorage, err := filestorages.NewFileStorage(app.config.FileStorage.RootDir)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize storage: %w", err)
		}
		return stores.NewFileSummaryStore(fileStorage), nil
	default:
		return nil, fmt.Errorf("unsupported export sink: %q", app.config.Export.Sink)
	}
}

// IngestionService is used by the batch command, which aggregates without starting the server.
func (app *App) IngestionService() ingestors.IngestionService {
	return app.ingestionService
}

func (app *App) Logger() loggers.Logger {
	return app.appLogger
}

// Start starts the HTTP server in a blocking manner.
func (app *App) Start() error {
	app.appLogger.Info().
		Msgf("Starting traffic-rollup service on port %d (log_level=%s, file_storage_root_dir=%s, export_sink=%s)",
			app.config.Server.Port,
			app.config.Log.Level,
			app.config.FileStorage.RootDir,
			app.config.Export.Sink)

	return app.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server, then releases the store and the storage root.
func (app *App) Shutdown(ctx context.Context) error {
	app.appLogger.Info().Msg("Shutting down server...")
	if err := app.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	app.appLogger.Info().Msg("Server stopped")

	return app.Close()
}

// Close releases the sqlite store and the storage-root lock.
func (app *App) Close() error {
	var errs []error
	if app.sqliteStore != nil {
		errs = append(errs, app.sqliteStore.Close())
		app.sqliteStore = nil
	}
	if app.rootLock != nil {
		errs = append(errs, app.rootLock.Release())
		app.rootLock = nil
	}
	return errors.Join(errs...)
}
