package entrypoint

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/mrlokans/diary/internal/config"
	http_controllers "github.com/mrlokans/diary/internal/http"
	"github.com/mrlokans/diary/internal/scheduler"
	"github.com/mrlokans/diary/internal/server"
	"github.com/mrlokans/diary/internal/store"
	"github.com/mrlokans/diary/internal/tasks"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

// Serve runs router on addr until SIGINT or SIGTERM, then shuts down within
// timeout. onShutdown runs before the listener is closed.
func Serve(router *gin.Engine, addr string, timeout time.Duration, onShutdown ShutdownFunc) error {
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.WithField("addr", addr).Info("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	// kill -9 cannot be caught, so only SIGINT and SIGTERM are handled.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err, ok := <-serveErr:
		if ok {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-quit:
	}
	log.WithField("timeout", timeout).Info("Shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	log.Info("Server exiting")
	return nil
}

// Run starts the diary HTTP API together with the sync scheduler and the
// background task queue.
func Run(cfg *config.Config, version string) error {
	log.WithField("version", version).Info("Starting diary")

	app, err := Open(context.Background(), cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	mode := app.Service.Mode()
	log.WithFields(log.Fields{
		"server_mode": mode.ServerMode,
		"origin":      mode.Origin,
		"fallback":    mode.Fallback,
	}).Info("Diary store ready")

	syncScheduler := scheduler.NewSyncScheduler(app.Service, app.Settings, cfg.Tasks.TaskTimeout)
	schedCtx, schedCancel := context.WithCancel(context.Background())
	defer schedCancel()
	if err := syncScheduler.Start(schedCtx); err != nil {
		log.WithError(err).Warn("Sync scheduler not started")
	}

	var taskClient *tasks.Client
	var taskCtxCancel context.CancelFunc
	if cfg.Tasks.Enabled {
		taskCfg := tasks.Config{
			Workers:         cfg.Tasks.Workers,
			TaskTimeout:     cfg.Tasks.TaskTimeout,
			ReleaseAfter:    cfg.Tasks.ReleaseAfter,
			CleanupInterval: cfg.Tasks.CleanupInterval,
		}

		taskClient, err = tasks.NewClient(cfg.Database.Path, taskCfg)
		if err != nil {
			return fmt.Errorf("failed to initialize task queue: %w", err)
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				log.WithError(err).Error("Error closing task client")
			}
		}()

		taskClient.Register(tasks.NewSyncQueue(syncScheduler, cfg.Tasks.TaskTimeout))

		var taskCtx context.Context
		taskCtx, taskCtxCancel = context.WithCancel(context.Background())
		go taskClient.Start(taskCtx)
	}

	routerCfg := http_controllers.RouterConfig{
		Service:    app.Service,
		Database:   app.Database,
		Settings:   app.Settings,
		Scheduler:  syncScheduler,
		TaskClient: taskClient,
		Version:    version,
	}
	router := http_controllers.NewRouter(routerCfg)

	onShutdown := func(ctx context.Context) {
		syncScheduler.Stop()
		if taskClient != nil && taskCtxCancel != nil {
			taskClient.Stop(ctx)
			taskCtxCancel()
		}
	}

	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second
	return Serve(router, addr, timeout, onShutdown)
}

// RunRemote serves the reference remote API from a file-backed store.
func RunRemote(cfg *config.Config) error {
	st, err := store.Open(cfg.RemoteServer.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to open remote store: %w", err)
	}
	defer func() {
		if err := st.Close(); err != nil {
			log.WithError(err).Error("Error closing remote store")
		}
	}()

	log.WithField("path", st.Path()).Info("Starting reference remote")

	addr := fmt.Sprintf("%s:%d", cfg.RemoteServer.Host, cfg.RemoteServer.Port)
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second
	return Serve(server.New(st).NewRouter(), addr, timeout, nil)
}
