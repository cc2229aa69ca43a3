package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/tmeadows/parliament-api/internal/data"
	"github.com/tmeadows/parliament-api/internal/live"
)

type application struct {
	logger     zerolog.Logger
	config     config
	pool       *pgxpool.Pool
	models     *data.Models
	dispatcher *live.Dispatcher
	validate   *validator.Validate
	startedAt  time.Time
}

type config struct {
	port   string
	dsn    string
	webURL string
	cors   struct {
		allowedOrigins []string
	}
	google struct {
		clientID     string
		clientSecret string
		redirectURL  string
	}
}

func main() {
	// A .env file is optional; real env vars win either way.
	_ = godotenv.Load()

	var cfg config
	parseFlags(&cfg)

	logger := zerolog.New(zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: time.RFC3339,
	}).With().Timestamp().Str("app", "parliament-api").Logger()

	pool, err := getPool(context.Background(), cfg.dsn)
	if err != nil {
		logger.Fatal().Err(err).Msg("database connection failed")
	}

	models := data.NewModels(pool)
	if err := models.Tokens.DeleteExpired(context.Background()); err != nil {
		logger.Warn().Err(err).Msg("pruning expired tokens failed")
	}

	subs := live.NewSubscriptions(logger)
	dispatcher := live.NewDispatcher(
		live.NewRegistry(),
		subs,
		&roomLoader{rooms: &models.Rooms},
		&messageStore{messages: &models.Messages},
		&motionStore{motions: &models.Motions},
		logger,
	)

	app := application{
		logger:     logger,
		config:     cfg,
		pool:       pool,
		models:     models,
		dispatcher: dispatcher,
		validate:   validator.New(validator.WithRequiredStructEnabled()),
		startedAt:  time.Now(),
	}

	server := &http.Server{
		Handler:      app.routes(),
		Addr:         fmt.Sprintf(":%s", cfg.port),
		WriteTimeout: 30 * time.Second,
		ReadTimeout:  10 * time.Second,
	}

	logger.Info().Str("port", cfg.port).Msg("server starting")
	err = server.ListenAndServe()
	logger.Fatal().Err(err).Msg("server stopped")
}

func getPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, err
	}

	err = pool.Ping(ctx)
	if err != nil {
		return nil, err
	}

	return pool, nil
}

func parseFlags(cfg *config) {
	flag.StringVar(&cfg.port, "port", "5000", "API server port")
	flag.StringVar(&cfg.dsn, "dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL DSN")
	flag.StringVar(&cfg.webURL, "web-url", "http://localhost:3000", "Frontend URL")

	flag.StringVar(&cfg.google.clientID, "google-client-id", os.Getenv("GOOGLE_CLIENT_ID"), "Google Client ID")
	flag.StringVar(&cfg.google.clientSecret, "google-client-secret", os.Getenv("GOOGLE_CLIENT_SECRET"), "Google Client Secret")
	flag.StringVar(&cfg.google.redirectURL, "google-redirect-url", os.Getenv("GOOGLE_REDIRECT_URL"), "Google Redirect URL")

	cfg.cors.allowedOrigins = []string{"http://localhost:3000"}
	flag.Func("allowed-origins", "A list of allowed origins", func(s string) error {
		cfg.cors.allowedOrigins = strings.Split(s, " ")
		return nil
	})

	flag.Parse()
}
