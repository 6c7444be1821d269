package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	flag "github.com/spf13/pflag"

	"github.com/Hira-Iftikhar-123/preloved-backend/internal/config"
	"github.com/Hira-Iftikhar-123/preloved-backend/internal/database"
	"github.com/Hira-Iftikhar-123/preloved-backend/internal/repository/memory"
	"github.com/Hira-Iftikhar-123/preloved-backend/internal/repository/postgres"
	"github.com/Hira-Iftikhar-123/preloved-backend/internal/router"
	"github.com/Hira-Iftikhar-123/preloved-backend/internal/service"
	"github.com/Hira-Iftikhar-123/preloved-backend/internal/token"
	"github.com/Hira-Iftikhar-123/preloved-backend/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], nil); err != nil {
		boot := zerolog.New(os.Stderr).With().Timestamp().Logger()
		boot.Error().Err(err).Msg("api exited")
		stop()
		os.Exit(1)
	}
}

// run serves until ctx is done. When ready is non-nil it receives the
// bound listen address once the server accepts connections.
func run(ctx context.Context, args []string, ready chan<- string) error {
	fs := flag.NewFlagSet("api", flag.ContinueOnError)
	configFile := fs.String("config", "", "optional YAML config file")
	envFile := fs.String("env-file", "", "dotenv file to load (default: .env if present)")
	migrateOnly := fs.Bool("migrate", false, "apply the database schema and exit")
	seedEmail := fs.String("seed-admin-email", "", "create an admin account with this email on startup")
	seedPassword := fs.String("seed-admin-password", "", "password for --seed-admin-email")
	seedName := fs.String("seed-admin-name", "Admin", "display name for --seed-admin-email")
	if err := fs.Parse(args); err != nil {
		return err
	}

	// config + logger
	if err := config.LoadEnvFile(*envFile); err != nil {
		return fmt.Errorf("load env file: %w", err)
	}
	cfg, err := config.Load(*configFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	l := logger.New(cfg.Env)

	// store
	deps := router.Deps{Tokens: token.NewService(cfg.SessionSecret)}
	switch cfg.StoreDriver {
	case config.DriverMemory:
		store := memory.New()
		deps.Accounts, deps.Tickets = store.Accounts(), store.Tickets()
		l.Warn().Msg("using in-memory store, data is lost on restart")
	default:
		pool, err := database.Open(ctx, cfg)
		if err != nil {
			return fmt.Errorf("db connect: %w", err)
		}
		defer pool.Close()
		if cfg.AutoMigrate || *migrateOnly {
			if err := database.Migrate(ctx, pool); err != nil {
				return fmt.Errorf("db migrate: %w", err)
			}
			l.Info().Msg("schema applied")
		}
		if *migrateOnly {
			return nil
		}
		deps.Accounts, deps.Tickets = postgres.NewAccountRepo(pool), postgres.NewTicketRepo(pool)
		deps.Ping = pool.Ping
	}

	if *seedEmail != "" {
		auth := service.NewAuthService(deps.Accounts, deps.Tokens, cfg.TokenTTL, cfg.AdminTokenTTL)
		a, err := auth.SeedAdmin(ctx, service.RegisterInput{Email: *seedEmail, Name: *seedName, Password: *seedPassword})
		if err != nil {
			return fmt.Errorf("seed admin %s: %w", *seedEmail, err)
		}
		if !a.IsAdmin() {
			l.Warn().Str("email", a.Email).Msg("seed email belongs to a non-admin account, left unchanged")
		} else {
			l.Info().Str("id", a.ID).Str("email", a.Email).Msg("admin account ready")
		}
	}

	// http
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router.New(l, deps, cfg),
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}
	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	l.Info().Str("addr", ln.Addr().String()).Str("store", cfg.StoreDriver).Msg("api listening")
	if ready != nil {
		ready <- ln.Addr().String()
	}

	serveErr := make(chan error, 1)
	go func() { serveErr <- srv.Serve(ln) }()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	// graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	l.Info().Msg("shutdown complete")
	return nil
}
