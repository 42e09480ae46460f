// Command ingest builds the vector index consumed by the server.  It is a
// batch job: run it whenever the knowledge base changes, then restart or
// redeploy the server against the fresh index directory.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"carenova/internal/config"
	"carenova/internal/ingest"
	"carenova/internal/llm"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to configuration file")
	srcDir := flag.String("src", "medical_knowledge", "directory of .txt/.md knowledge documents")
	sentences := flag.Int("sentences", 5, "sentences per chunk")
	overlap := flag.Int("overlap", 1, "sentence overlap between chunks")
	concurrency := flag.Int("concurrency", 4, "concurrent embedding requests")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	client := llm.NewOpenAIClient(cfg.LLM)
	if !client.Ready() {
		log.Error("embedding provider not configured", "env", cfg.LLM.APIKeyEnv)
		os.Exit(1)
	}

	n, err := ingest.Run(context.Background(), ingest.Options{
		SourceDir:         *srcDir,
		IndexDir:          cfg.Index.Dir,
		SentencesPerChunk: *sentences,
		OverlapSentences:  *overlap,
		Concurrency:       *concurrency,
	}, client, log)
	if err != nil {
		log.Error("ingest failed", "error", err)
		os.Exit(1)
	}
	log.Info("ingest complete", "chunks", n, "index", cfg.Index.Dir)
}
