package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-auth-gateway/internal/config"
	"github.com/go-auth-gateway/internal/events"
	"github.com/go-auth-gateway/internal/infrastructure/directory"
	jwtinfra "github.com/go-auth-gateway/internal/infrastructure/jwt"
	"github.com/go-auth-gateway/internal/infrastructure/secrets"
	snsinfra "github.com/go-auth-gateway/internal/infrastructure/sns"
	transporthttp "github.com/go-auth-gateway/internal/transport/http"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment")
	}

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	// Resolve the signing secret from the secret store when configured. Read
	// once; only a fresh process reloads it.
	if cfg.SSMSecretParam != "" {
		store, err := secrets.NewSSMStore(cfg)
		if err != nil {
			log.Fatalf("secret store: %v", err)
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		secret, err := store.Get(ctx, cfg.SSMSecretParam)
		cancel()
		if err != nil {
			log.Fatalf("read JWT secret from SSM: %v", err)
		}
		cfg.JWT.Secret = secret
		if err := cfg.ValidateSecret(); err != nil {
			log.Fatalf("invalid configuration: %v", err)
		}
	}

	jwtProvider, err := jwtinfra.NewProvider(cfg.JWT)
	if err != nil {
		log.Fatalf("jwt provider: %v", err)
	}

	directoryClient := directory.NewClient(cfg.DirectoryBaseURL, cfg.DirectoryTimeout, cfg.IsProduction())

	// Event publisher backend is selected once here and injected everywhere.
	var publisher events.Publisher
	switch cfg.EventBackend {
	case "sns":
		publisher, err = snsinfra.NewPublisher(cfg)
		if err != nil {
			log.Fatalf("sns publisher: %v", err)
		}
	default:
		publisher = events.NewLogPublisher(slog.Default())
	}
	emitter := events.NewEmitter(publisher, slog.Default())

	router := transporthttp.NewRouter(cfg, &transporthttp.Deps{
		Directory:   directoryClient,
		JWTProvider: jwtProvider,
		Emitter:     emitter,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on :%s (env=%s)", cfg.AppPort, cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}
	log.Println("Server stopped")
}
