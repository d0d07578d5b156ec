package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"moviedb/internal/config"
	"moviedb/internal/database"
	"moviedb/internal/handler"
	"moviedb/internal/middleware"
	"moviedb/internal/repository"
	"moviedb/internal/seed"
	"moviedb/internal/service"
)

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

// setup loads config, installs the JSON logger and opens the store. The
// caller must close the returned DB.
func setup() (*config.Config, *sql.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Structured logging
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel})))

	db, err := database.Open(cfg.DB)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to %s: %w", cfg.DB.Driver, err)
	}
	return cfg, db, nil
}

func newServices(db *sql.DB) handler.Services {
	movies := repository.NewMovieRepository(db)
	directors := repository.NewDirectorRepository(db)
	genres := repository.NewGenreRepository(db)

	return handler.Services{
		Movies:    service.NewMovieService(movies, directors, genres),
		Directors: service.NewDirectorService(directors, movies),
		Genres:    service.NewGenreService(genres, movies),
	}
}

var rootCmd = &cobra.Command{
	Use:          "moviedb",
	Short:        "Movie, director and genre catalogue service",
	SilenceUsage: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, db, err := setup()
		if err != nil {
			return err
		}
		defer db.Close()

		// Redis only backs rate limiting; run without it if unavailable
		var rdb *redis.Client
		if cfg.Redis.Addr != "" {
			rdb, err = database.NewRedis(cmd.Context(), cfg.Redis)
			if err != nil {
				slog.Warn("Redis unavailable, running without rate limiting", "error", err)
			} else {
				defer rdb.Close()
			}
		}

		opts := handler.Options{
			RateLimiter: middleware.NewRateLimiter(rdb, cfg.RateLimit.Max, cfg.RateLimit.WindowSeconds),
			AccessLog:   true,
		}
		swaggerYAML, err := os.ReadFile("docs/swagger.yaml")
		if err != nil {
			slog.Warn("swagger.yaml not found, swagger UI will be unavailable", "error", err)
		} else {
			opts.SwaggerYAML = swaggerYAML
		}

		app := handler.NewApp(newServices(db), opts)

		// Graceful shutdown
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		errc := make(chan error, 1)
		go func() {
			addr := ":" + cfg.Port
			slog.Info("starting moviedb", "addr", addr, "driver", cfg.DB.Driver)
			errc <- app.Listen(addr)
		}()

		select {
		case err := <-errc:
			return fmt.Errorf("server error: %w", err)
		case <-ctx.Done():
		}

		slog.Info("shutting down moviedb...")
		if err := app.Shutdown(); err != nil {
			slog.Error("error shutting down HTTP server", "error", err)
		}
		return nil
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load directors, genres and movies from a TOML fixture",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("file")

		fixture, err := seed.LoadFile(path)
		if err != nil {
			return err
		}

		_, db, err := setup()
		if err != nil {
			return err
		}
		defer db.Close()

		svcs := newServices(db)
		res, err := fixture.Apply(cmd.Context(), seed.Targets{
			Movies:    svcs.Movies,
			Directors: svcs.Directors,
			Genres:    svcs.Genres,
		})
		if err != nil {
			return fmt.Errorf("seeding: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d directors, %d genres, %d movies\n", res.Directors, res.Genres, res.Movies)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(seedCmd)
	seedCmd.Flags().StringP("file", "f", "fixtures.toml", "Fixture file to load")
}
