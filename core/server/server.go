package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"clubops/core/cache"
	"clubops/core/config"
	"clubops/core/constants"
	"clubops/core/database"
	"clubops/core/logger"
	"clubops/core/mailer"
	"clubops/core/middleware"
	"clubops/core/storage"
	"clubops/core/utils"
	"clubops/modules/auth"
	"clubops/modules/certificate"
	certservice "clubops/modules/certificate/service"
	"clubops/modules/event"

	"github.com/hibiken/asynq"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
)

// Run wires every dependency and serves until SIGINT/SIGTERM.
func Run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if err := logger.Init(cfg.Server.Environment); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync()

	utils.InitJWT(cfg.JWT.Secret)

	db, err := database.InitDB(cfg.Postgres)
	if err != nil {
		return fmt.Errorf("init database: %w", err)
	}
	defer db.Close()

	c, err := cache.NewCache(cfg.Redis)
	if err != nil {
		return fmt.Errorf("init cache: %w", err)
	}
	defer c.Close()

	blobs, err := storage.NewS3Store(context.Background(), cfg.S3)
	if err != nil {
		return fmt.Errorf("init blob store: %w", err)
	}

	mail := mailer.NewSMTPMailer(cfg.SMTP)

	redisOpt := asynq.RedisClientOpt{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}
	queue := asynq.NewClient(redisOpt)
	defer queue.Close()

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     []string{cfg.Frontend.URL},
		AllowCredentials: true,
	}))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	mw := middleware.New(c, auth.NewRoleChecker(db))

	auth.Init(e, db, c, mw, cfg)
	event.Init(e, db, mw, cfg)
	certificate.Init(e, db, mw, blobs, mail, queue)

	var worker *asynq.Server
	if cfg.Worker.Enabled {
		worker = asynq.NewServer(redisOpt, asynq.Config{
			Concurrency: cfg.Worker.Concurrency,
		})
		mux := asynq.NewServeMux()
		mux.Handle(constants.TaskGenerateCertificates,
			certservice.NewGenerateTaskHandler(certificate.NewWorkerService(db, blobs, mail)))

		if err := worker.Start(mux); err != nil {
			return fmt.Errorf("start worker: %w", err)
		}
		logger.Info("Server:WorkerStarted", "concurrency", cfg.Worker.Concurrency)
	}

	go func() {
		addr := ":" + cfg.Server.Port
		logger.Info("Server:Listening", "addr", addr)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Error("Server:Start", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Server:ShuttingDown")
	if worker != nil {
		worker.Shutdown()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(ctx)
}
