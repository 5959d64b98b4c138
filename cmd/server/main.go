package main

import (
	"context"
	"log"
	"time"

	"github.com/facebookgo/clock"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/fastygo/taskflow/api/handler"
	"github.com/fastygo/taskflow/internal/config"
	"github.com/fastygo/taskflow/internal/infrastructure/monitor"
	"github.com/fastygo/taskflow/internal/infrastructure/storage"
	"github.com/fastygo/taskflow/internal/middleware"
	"github.com/fastygo/taskflow/internal/router"
	"github.com/fastygo/taskflow/internal/security/token"
	"github.com/fastygo/taskflow/internal/seed"
	"github.com/fastygo/taskflow/internal/services"
	"github.com/fastygo/taskflow/internal/services/lifecycle"
	"github.com/fastygo/taskflow/pkg/httpcontext"
	"github.com/fastygo/taskflow/pkg/logger"
	authUC "github.com/fastygo/taskflow/usecase/auth"
	dashboardUC "github.com/fastygo/taskflow/usecase/dashboard"
	directoryUC "github.com/fastygo/taskflow/usecase/directory"
	taskUC "github.com/fastygo/taskflow/usecase/task"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{
		App:      cfg.AppName,
		Level:    cfg.Logger.Level,
		Encoding: cfg.Logger.Encoding,
	})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zapLogger.Sync()

	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	manager := lifecycle.New(cfg.Context.ShutdownTimeout, zapLogger)
	manager.Listen(cancel)

	backend, err := storage.Open(appCtx, cfg, zapLogger)
	if err != nil {
		zapLogger.Fatal("storage unavailable", zap.Error(err))
	}
	manager.Register("storage", backend.Close)

	clk := clock.New()

	mon := monitor.New(backend.Driver, backend.Slots, backend.Redis, 10*time.Second, clk, zapLogger)
	mon.Start()
	manager.Register("monitor", func(ctx context.Context) error {
		mon.Stop()
		return nil
	})

	tokens, err := token.NewManager(cfg.JWT.Secret, cfg.JWT.Issuer)
	if err != nil {
		zapLogger.Fatal("token manager", zap.Error(err))
	}

	directory := directoryUC.New(seed.DefaultDirectory(), clk, zapLogger)
	tasks := taskUC.New(backend.Slots, directory, clk, zapLogger, taskUC.Options{})
	sessions := authUC.New(backend.Slots, directory, seed.BuiltInAccounts(), tokens, clk, zapLogger)

	dashboard := dashboardUC.New(tasks, directory, sessions, zapLogger)
	if err := dashboard.Start(appCtx); err != nil {
		zapLogger.Fatal("dashboard start failed", zap.Error(err))
	}
	manager.Register("dashboard", func(ctx context.Context) error {
		dashboard.Close()
		return nil
	})

	if cfg.Report.Interval > 0 {
		reporter, err := services.NewReporter(tasks, cfg.Report.Interval, clk, zapLogger)
		if err != nil {
			zapLogger.Fatal("reporter", zap.Error(err))
		}
		reporter.Start()
		manager.Register("reporter", reporter.Stop)
	}

	if cfg.Redis.NotifyChannel != "" && backend.Redis != nil {
		bridge := services.NewNotifyBridge(backend.Redis, cfg.Redis.NotifyChannel, clk, zapLogger)
		bridge.Attach("tasks", tasks.Subscribe)
		bridge.Attach("directory", directory.Subscribe)
		bridge.Attach("auth", sessions.Subscribe)
		manager.Register("notify_bridge", bridge.Close)
	}

	ctxAdapter := httpcontext.NewAdapter(cfg.Context.RequestTimeout)

	handlers := router.Handlers{
		Auth:     apiHandler.NewAuthHandler(dashboard, sessions, ctxAdapter, zapLogger),
		Task:     apiHandler.NewTaskHandler(dashboard, ctxAdapter, zapLogger),
		Employee: apiHandler.NewEmployeeHandler(dashboard, directory, ctxAdapter, zapLogger),
		Health:   apiHandler.NewHealthHandler(mon, ctxAdapter, zapLogger),
	}

	authMiddleware := middleware.SessionAuth(tokens, sessions, ctxAdapter, zapLogger)
	r := router.New(handlers, authMiddleware)

	server := &fasthttp.Server{
		Handler:      r.Handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
		Concurrency:  cfg.HTTP.MaxConn,
		Name:         cfg.AppName,
	}

	go func() {
		zapLogger.Info("server started", zap.String("address", cfg.Address()), zap.String("storage", backend.Driver))
		if err := server.ListenAndServe(cfg.Address()); err != nil {
			zapLogger.Fatal("server crashed", zap.Error(err))
		}
	}()

	manager.Register("http_server", func(ctx context.Context) error {
		return server.ShutdownWithContext(ctx)
	})

	<-appCtx.Done()

	if err := manager.Shutdown(context.Background()); err != nil {
		zapLogger.Error("graceful shutdown error", zap.Error(err))
	}
}
