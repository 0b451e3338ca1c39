package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"aigen/core"
	"aigen/db"
	"aigen/device"
	"aigen/metrics"
	"aigen/shutdown"
	"aigen/webui"
	"aigen/webui/auth"
)

func newServeCmd(app *App) *cobra.Command {
	var host string
	var port int

	c := &cobra.Command{
		Use:   "serve",
		Short: "Run the web dashboard and HTTP API",
		Long: `serve starts the HTTP API and dashboard, records generation history to
SQLite, and shuts down cleanly on SIGINT/SIGTERM. Set DASHBOARD_PASSWORD
to require a login.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if host == "" {
				host = app.Config.WebHost
			}
			if port == 0 {
				port = app.Config.WebPort
			}
			return RunServe(cmd.Context(), app, host, port)
		},
	}
	c.Flags().StringVar(&host, "host", "", "interface to bind (default WEB_HOST)")
	c.Flags().IntVar(&port, "port", 0, "port to listen on (default WEB_PORT)")
	return c
}

// RunServe assembles and runs the full service: database, pipeline manager,
// metrics, websocket broadcaster, HTTP server, and shutdown coordination.
// It blocks until the server fails, a shutdown signal arrives, or ctx is
// cancelled. Exported so the service wrapper can drive the same path.
func RunServe(ctx context.Context, app *App, host string, port int) error {
	cfg := app.Config
	logger := app.Logger

	if err := db.MigrateUpEmbedded(cfg.DBPath); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}
	conn, err := db.NewSQLiteConnectionWithDefaults(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	history := db.NewHistory(conn)

	mgr, caps, err := app.buildManager()
	if err != nil {
		conn.Close()
		return err
	}

	store := metrics.NewStore(app.Version)
	wsCfg := webui.DefaultBroadcasterConfig()
	wsCfg.Logger = logger.Named("ws")
	broadcaster := webui.NewBroadcaster(wsCfg)

	var gpu *metrics.GPUCollector
	if caps.Accelerator == device.AcceleratorCUDA {
		reader := metrics.NewNVMLReader()
		gpu = metrics.NewGPUCollector(metrics.DefaultGPUCollectorConfig(), reader, func(m metrics.GPUMetrics) {
			store.UpdateGPUMetrics(m)
			memPercent := 0.0
			if m.MemoryTotal > 0 {
				memPercent = float64(m.MemoryUsed) / float64(m.MemoryTotal) * 100
			}
			broadcaster.BroadcastGPUUpdate(webui.GPUUpdateData{
				Utilization:   m.Utilization,
				Temperature:   m.Temperature,
				MemoryUsed:    m.MemoryUsed,
				MemoryTotal:   m.MemoryTotal,
				MemoryPercent: memPercent,
			})
		})
		gpu.Start()
	}

	sd := shutdown.NewManager(logger.Named("shutdown"))

	api := webui.NewAPI(webui.APIConfig{
		Generator:   mgr,
		History:     history,
		Store:       store,
		GPU:         gpu,
		Broadcaster: broadcaster,
		Limiter:     sd,
		OutputDir:   cfg.OutputDir,
		Logger:      logger.Named("api"),
	})

	var authProvider webui.AuthProvider
	if cfg.DashboardPassword != "" {
		mw, err := auth.NewMiddleware(cfg.DashboardPassword, logger.Named("auth"), auth.DefaultConfig())
		if err != nil {
			conn.Close()
			mgr.Close()
			return fmt.Errorf("configure authentication: %w", err)
		}
		mw.Sessions().StartCleanupTicker(sd.Context(), auth.DefaultSessionTTL/2)
		authProvider = mw
	}

	serverCfg := webui.DefaultServerConfig()
	serverCfg.Host = host
	serverCfg.Port = port
	serverCfg.OutputDir = cfg.OutputDir
	server := webui.NewServer(serverCfg, api, broadcaster, authProvider, logger.Named("http"))

	sd.Register("http server", 10, func(ctx context.Context) error {
		return server.Shutdown(ctx)
	})
	if gpu != nil {
		sd.Register("gpu collector", 20, func(ctx context.Context) error {
			gpu.Stop()
			return nil
		})
	}
	sd.Register("pipelines", 25, func(ctx context.Context) error {
		mgr.Close()
		return nil
	})
	sd.Register("database", 30, func(ctx context.Context) error {
		return conn.Close()
	})
	sd.Register("temp files", 40, func(ctx context.Context) error {
		shutdown.CleanupTempArtifacts(logger, cfg.TempDir)
		return nil
	})
	sd.Start()

	logger.Info("service starting",
		zap.String("addr", server.Addr()),
		zap.String("accelerator", caps.Accelerator.String()),
		zap.String("provider", cfg.ImageProvider),
		zap.Bool("auth", authProvider != nil))

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.Start(sd.Context())
	}()

	if ctx == nil {
		ctx = context.Background()
	}
	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			sd.Shutdown()
			return fmt.Errorf("server failed: %w", err)
		}
	case <-sd.Context().Done():
	case <-ctx.Done():
	}

	if err := sd.Shutdown(); err != nil {
		return err
	}
	return exitBySignal(sd)
}

// exitBySignal converts a signal-initiated shutdown into a SignalExitError
// so main can exit with the conventional 128+n code.
func exitBySignal(sd *shutdown.Manager) error {
	switch sd.Signal() {
	case syscall.SIGINT:
		return &SignalExitError{Code: core.ExitCodeSIGINT}
	case syscall.SIGTERM:
		return &SignalExitError{Code: core.ExitCodeSIGTERM}
	default:
		return nil
	}
}

// SignalExitError reports that the process should exit with a specific code
// after a clean, signal-initiated shutdown. It is not a failure.
type SignalExitError struct {
	Code int
}

func (e *SignalExitError) Error() string {
	return fmt.Sprintf("exit %d (%s)", e.Code, core.ExitCodeName(e.Code))
}
