package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"livechat/infrastructure/websocket"
	"livechat/internal"
	"livechat/repositories"
	"livechat/runtime"
	"livechat/runtime/workers"
	"livechat/services"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mama165/sdk-go/database"
	"github.com/mama165/sdk-go/logs"
	"github.com/spf13/cobra"
)

const (
	inspectorPort     = 8081
	inspectorEndpoint = "/inspect"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the chat server",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return serve(cmd.Context())
	},
}

// serve wires every component, blocks until a signal or a server failure,
// then shuts down: clients first, then the engine, then the store.
func serve(parent context.Context) error {
	// 1. Configuration & Logger
	config, err := internal.LoadConfig()
	if err != nil {
		return err
	}
	location, err := config.Location()
	if err != nil {
		return err
	}
	logger := logs.GetLoggerFromString(config.LogLevel)

	if parent == nil {
		parent = context.Background()
	}
	// NotifyContext captures OS signals and cancels the context to trigger a shutdown
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Database (BadgerDB)
	db, err := openBadger(ctx, config, logger, false)
	if err != nil {
		return err
	}
	// Defer ensures the database lock is released and buffers are flushed before returning
	defer func() {
		logger.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	if logger.Enabled(ctx, slog.LevelDebug) {
		url := fmt.Sprintf("http://localhost:%d%s", inspectorPort, inspectorEndpoint)
		logger.Info("Debug Badger inspector available", "url", url)
		database.StartDebugServer(db, inspectorPort, inspectorEndpoint, MessageMapper)
	}

	// 3. Supervision & Orchestration
	supervisor := workers.NewSupervisor(logger, config.RestartInterval)
	registry := runtime.NewRegistry()
	messageRepository := repositories.NewMessageRepository(db, logger, config.LimitMessages)
	orchestrator := runtime.NewOrchestrator(logger, supervisor, registry, messageRepository, runtime.Options{
		BufferSize:           config.BufferSize,
		MetricInterval:       config.MetricInterval,
		LowCapacityThreshold: config.LowCapacityThreshold,
		Location:             location,
	})

	errChan := make(chan error, 1)
	engineDone := make(chan struct{})
	go func() {
		defer close(engineDone)
		// Detached from signals: the engine keeps serving until clients are closed, then Stop ends it
		orchestrator.Start(context.WithoutCancel(ctx))
	}()

	// 4. Websocket server
	chatService := services.NewChatService(orchestrator)
	wsServer := websocket.NewServer(logger, chatService, websocket.Options{
		AllowedOrigins:       config.Origins(),
		ConnectionBufferSize: config.ConnectionBufferSize,
		MaxMessageSize:       config.MaxMessageSize,
		Location:             location,
	})
	httpServer := websocket.CreateHTTPServer(config.Address(), wsServer.Router())

	go func() {
		logger.Info("Starting websocket server", "address", config.Address(), "at", time.Now().UTC())
		if err := httpServer.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("http server error: %w", err)
		}
	}()

	// 5. Wait for Stop or Error
	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	case runErr = <-errChan:
		logger.Error("Server failed", "error", runErr)
	}

	// 6. Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
	defer cancel()

	logger.Info("Shutting down gracefully...")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("HTTP server shutdown error", "error", err)
	}
	wsServer.CloseAll()
	if err := wsServer.Wait(shutdownCtx); err != nil {
		logger.Warn("Some clients did not close in time", "error", err)
	}
	// Stop returns once the loop has applied accepted commands and every write is done
	orchestrator.Stop()
	<-engineDone
	logger.Info("Program stopped cleanly")

	return runErr
}
