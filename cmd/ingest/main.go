package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/porkytheblack/yuki/internal/config"
	"github.com/porkytheblack/yuki/internal/domain"
	"github.com/porkytheblack/yuki/internal/extract"
	"github.com/porkytheblack/yuki/internal/ingest"
	"github.com/porkytheblack/yuki/internal/llm"
	"github.com/porkytheblack/yuki/internal/logger"
	"github.com/porkytheblack/yuki/internal/store"
)

func main() {
	log := logger.New()

	configPath := flag.String("config", "", "path to config file (default: config.yaml in cwd)")
	file := flag.String("file", "", "path to the document to ingest")
	docType := flag.String("type", "statement", "document type: statement or receipt")
	flag.Parse()

	if *file == "" {
		log.Fatal().Msg("Error: --file is required")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	data, err := os.ReadFile(*file)
	if err != nil {
		log.Fatal().Err(err).Str("file", *file).Msg("Failed to read file")
	}

	st, err := store.Open(cfg.Database.Path, cfg.Database.LogMode)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.Database.Path).Msg("Failed to open database")
	}
	defer st.Close()

	provider, err := st.Provider()
	if err != nil {
		log.Fatal().Msg("No LLM provider configured; save one through the API first")
	}
	client, err := llm.New(*provider)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build provider client")
	}

	// Model calls can take a while, bound the whole run anyway
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	log.Info().Str("file", *file).Str("type", *docType).Msg("Starting ingestion")

	pipeline := ingest.NewPipeline(st, extract.New(client), cfg.DocumentsDir())
	result, err := pipeline.Process(ctx, ingest.Upload{
		Filename:     filepath.Base(*file),
		Data:         data,
		DocumentType: domain.DocumentType(*docType),
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Ingestion failed")
	}

	fmt.Printf("Ingested %s: %d ledger entries, %d items\n",
		result.Document.Filename, result.EntriesCreated, result.ItemsCreated)
}
