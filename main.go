package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/spf13/cobra"
)

func main() {
	logger := log.New(os.Stdout, "shortlink ", log.LstdFlags|log.Lmicroseconds)

	rootCmd := &cobra.Command{
		Use:   "shortlink",
		Short: "Short-link and shareable-record service",
		Long:  "shortlink mints collision-resistant slugs for URLs and tournament documents and serves them over HTTP, backed by Redis.",
	}

	var configPath string
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := LoadConfig(configPath)
			if err != nil {
				return err
			}
			FromEnv(&cfg)
			overlayFlags(cmd, &cfg)
			return serve(cfg, logger)
		},
	}
	serveCmd.Flags().StringVar(&configPath, "config", "", "path to JSON or YAML config file")
	serveCmd.Flags().String("http", "", "HTTP listen address")
	serveCmd.Flags().String("redis", "", "Redis address")
	serveCmd.Flags().String("base-url", "", "public base URL used in minted links")
	serveCmd.Flags().Int("slug-length", 0, "slug length in base-36 characters")
	serveCmd.Flags().Int("max-attempts", 0, "slug allocation attempts before giving up")
	rootCmd.AddCommand(serveCmd)

	if err := rootCmd.Execute(); err != nil {
		logger.Fatalf("%v", err)
	}
}

// overlayFlags applies explicitly set CLI flags on top of cfg.
func overlayFlags(cmd *cobra.Command, cfg *Config) {
	if v, _ := cmd.Flags().GetString("http"); v != "" {
		cfg.HTTPAddr = v
	}
	if v, _ := cmd.Flags().GetString("redis"); v != "" {
		cfg.RedisAddr = v
	}
	if v, _ := cmd.Flags().GetString("base-url"); v != "" {
		cfg.BaseURL = v
	}
	if v, _ := cmd.Flags().GetInt("slug-length"); v > 0 {
		cfg.SlugLength = v
	}
	if v, _ := cmd.Flags().GetInt("max-attempts"); v > 0 {
		cfg.MaxAttempts = v
	}
}

func serve(cfg Config, logger *log.Logger) error {
	ctx := context.Background()

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Fatalf("could not connect to redis (%s): %v", cfg.RedisAddr, err)
	}

	store := NewRedisStore(redisClient)
	alloc := NewAllocator(store, cfg.SlugLength, cfg.MaxAttempts)
	svc := NewService(store, alloc, logger)
	handler := NewHandler(svc, cfg, logger)

	mux := http.NewServeMux()
	handler.Routes(mux)

	wrapped := corsMiddleware(cfg.AllowOrigin)(mux)
	wrapped = loggingMiddleware(logger)(wrapped)
	wrapped = requestIDMiddleware(wrapped)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      wrapped,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Printf("server is listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("could not listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit
	logger.Println("server is shutting down")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctxShutdown); err != nil {
		logger.Fatalf("server forced to shutdown: %v", err)
	}

	logger.Println("server stopped")
	return nil
}
