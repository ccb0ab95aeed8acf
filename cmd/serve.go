package cmd

import (
	"context"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"messenger/chat-service/internal/config"
	"messenger/chat-service/internal/counter"
	"messenger/chat-service/internal/httpapi"
	"messenger/chat-service/internal/repository"
	"messenger/chat-service/internal/service"
	"messenger/chat-service/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := newLogger(cfg.Logging)

	if err := store.EnsureSchema(cfg.Cassandra, logger); err != nil {
		logger.Fatalf("Failed to ensure Cassandra schema: %v", err)
	}

	session, err := store.NewSession(cfg.Cassandra)
	if err != nil {
		logger.Fatalf("Failed to connect to Cassandra: %v", err)
	}
	defer session.Close()

	logger.Info("Connected to Cassandra")

	repo := repository.NewCassandraRepository(session)
	ids := counter.NewAllocator(repo, logger)
	svc := service.NewMessengerService(repo, ids, logger)
	router := httpapi.NewRouter(svc, logger)

	address := net.JoinHostPort(cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:    address,
		Handler: router,
	}

	go func() {
		logger.Infof("Starting HTTP server on %s", address)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Failed to start HTTP server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down HTTP server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Infof("HTTP server shutdown timeout: %v", err)
	} else {
		logger.Info("HTTP server exited gracefully")
	}

	logger.Info("Server exited")
	return nil
}
