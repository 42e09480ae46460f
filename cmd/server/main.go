package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"carenova/internal/config"
	"carenova/internal/core"
	httpserver "carenova/internal/http"
	"carenova/internal/index"
	"carenova/internal/llm"
	"carenova/internal/retriever"
	"carenova/internal/session"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to configuration file")
	flag.Parse()

	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	log := newLogger(cfg.Server.LogLevel)

	llmClient := llm.NewOpenAIClient(cfg.LLM)
	if !llmClient.Ready() {
		log.Warn("no API key configured, analysis will use fallback reports", "env", cfg.LLM.APIKeyEnv)
	}

	store, err := index.Open(cfg.Index.Dir)
	if err != nil {
		log.Warn("vector index failed to load, retrieval disabled", "dir", cfg.Index.Dir, "error", err)
	} else if !store.Ready() {
		log.Warn("vector index not found, retrieval disabled", "dir", cfg.Index.Dir)
	} else {
		log.Info("vector index loaded", "dir", cfg.Index.Dir, "chunks", store.Len())
	}

	retr := retriever.New(llmClient, store, cfg.Index.K, cfg.Index.ScoreThreshold, log)

	var cache *core.Cache
	if cfg.Cache.Enabled {
		cache = core.NewCache(cfg.Cache.MaxEntries)
	}
	analyzer := core.NewAnalyzer(llmClient, retr, cache, cfg.LLM.MaxConcurrent, log)
	questions := core.NewQuestionGenerator(llmClient, cfg.Session.MaxFollowups, log)

	sessions := session.NewStore(cfg.Session.Timeout(), cfg.Session.SweepInterval(), log)
	defer sessions.Close()

	gateway := httpserver.NewServer(analyzer, questions, sessions, llmClient, retr, cfg.API, log)

	srv := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           gateway.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info("listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", "error", err)
	}
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
	slog.SetDefault(log)
	return log
}
