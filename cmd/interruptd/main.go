package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"bargein/interrupt/internal/config"
	"bargein/interrupt/internal/decisionlog"
	"bargein/interrupt/internal/engine"
	"bargein/interrupt/internal/history"
	"bargein/interrupt/internal/server"
)

func main() {
	// Load .env file if present (ignored if missing)
	_ = godotenv.Load()

	cfg := config.Load()

	log := newLogger(cfg.Server.LogLevel)
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	var sinks []engine.DecisionSink
	if cfg.Log.Enabled {
		dl, err := decisionlog.Open(cfg.Log.File, log)
		if err != nil {
			log.Fatal().Err(err).Msg("open decision log")
		}
		sinks = append(sinks, dl)
	}
	hist := history.NewStore(cfg.Log.HistorySize)
	sinks = append(sinks, hist)

	reg := server.NewRegistry()
	eng, err := engine.New(engine.Config{
		IgnoredWords:        cfg.Engine.IgnoredWords,
		CommandWords:        cfg.Engine.CommandWords,
		ConfidenceThreshold: cfg.Engine.ConfidenceThreshold,
	}, &server.StopNotifier{Reg: reg}, log, sinks...)
	if err != nil {
		log.Fatal().Err(err).Msg("build engine")
	}

	s := server.New(cfg, eng, hist, reg, log)
	mux := http.NewServeMux()
	mux.Handle("/", server.NewRouter(s))
	mux.Handle("/metrics", promhttp.Handler())

	addr := ":" + cfg.Server.Port
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	// Graceful shutdown on SIGINT/SIGTERM
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigc
		log.Info().Msg("shutdown signal received")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
		if err := eng.Shutdown(ctx); err != nil {
			log.Error().Err(err).Msg("engine shutdown")
		}
	}()

	log.Info().Str("addr", addr).Msg("interruptd starting")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("server error")
	}
}

func newLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(os.Stdout).Level(lvl).With().Timestamp().Logger()
}
