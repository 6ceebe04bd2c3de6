package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"adboard/backend/internal/httpserver"
	"adboard/backend/internal/infrastructure/password"
	"adboard/backend/internal/infrastructure/postgres"
	advertusecase "adboard/backend/internal/usecase/advert"
	authusecase "adboard/backend/internal/usecase/auth"
	userusecase "adboard/backend/internal/usecase/user"

	"github.com/rs/zerolog/log"
	"github.com/samber/oops"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run migrations and start the HTTP API",
		RunE:  runServe,
	}
	cmd.Flags().String("http-port", "8080", "HTTP listen port or address")
	cmd.Flags().Duration("token-ttl", 24*time.Hour, "session token lifetime")
	cmd.Flags().Int("bcrypt-cost", password.DefaultCost, "bcrypt work factor")
	cmd.Flags().Bool("skip-migrations", false, "do not apply pending migrations on start")
	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := postgres.New(ctx, cfg.DatabaseURL, cfg.DBConnectRetries)
	if err != nil {
		return oops.Code("DB_CONNECT_FAILED").Wrap(err)
	}
	defer db.Close()

	if skip, _ := cmd.Flags().GetBool("skip-migrations"); !skip {
		if err := db.Migrate(ctx); err != nil {
			return oops.Code("MIGRATION_FAILED").Wrap(err)
		}
	}

	users := postgres.NewUserRepository(db.Pool)
	hasher := password.NewBcryptHasher(cfg.BcryptCost)
	tokens := authusecase.NewTokenStore(postgres.NewTokenRepository(db.Pool), cfg.TokenTTL)

	server := httpserver.NewServer(cfg, httpserver.Dependencies{
		Auth:     authusecase.NewService(users, tokens, hasher),
		Users:    userusecase.NewService(users, hasher),
		Adverts:  advertusecase.NewService(postgres.NewAdvertRepository(db.Pool), users),
		Sessions: db,
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", server.Addr()).Dur("token_ttl", tokens.TTL()).Msg("HTTP server listening")
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return oops.Code("HTTP_SERVE_FAILED").Wrap(err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
		return err
	}
	log.Info().Msg("graceful shutdown completed")
	return nil
}
