package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/porkytheblack/yuki/internal/api"
	"github.com/porkytheblack/yuki/internal/config"
	"github.com/porkytheblack/yuki/internal/domain"
	"github.com/porkytheblack/yuki/internal/extract"
	"github.com/porkytheblack/yuki/internal/ingest"
	"github.com/porkytheblack/yuki/internal/jobs"
	"github.com/porkytheblack/yuki/internal/jobs/inmemory"
	"github.com/porkytheblack/yuki/internal/llm"
	"github.com/porkytheblack/yuki/internal/logger"
	"github.com/porkytheblack/yuki/internal/store"
)

func main() {
	configPath := flag.String("config", "", "path to config file (default: config.yaml in cwd)")
	flag.Parse()

	log := logger.New()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	st, err := store.Open(cfg.Database.Path, cfg.Database.LogMode)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.Database.Path).Msg("Failed to open database")
	}
	defer st.Close()

	jobStore := inmemory.NewStore()
	jobQueue := inmemory.NewQueue(100, jobStore)

	workerCtx, cancelWorker := context.WithCancel(context.Background())
	defer cancelWorker()

	// Each job builds its pipeline from the provider configured at that
	// moment, so settings changes apply to the next upload.
	jobHandler := func(ctx context.Context, job *jobs.ProcessDocumentJob) error {
		jobLog := log.With().Str("job_id", job.JobID).Str("filename", job.Filename).Logger()
		jobLog.Info().Str("document_type", job.DocumentType).Msg("Processing document")

		provider, err := st.Provider()
		if err != nil {
			return err
		}
		client, err := llm.New(*provider)
		if err != nil {
			return err
		}

		pipeline := ingest.NewPipeline(st, extract.New(client), cfg.DocumentsDir())
		result, err := pipeline.Process(logger.WithContext(ctx, jobLog), ingest.Upload{
			Filename:     job.Filename,
			Data:         job.Data,
			DocumentType: domain.DocumentType(job.DocumentType),
		})
		if err != nil {
			jobLog.Error().Err(err).Msg("Document processing failed")
			return err
		}

		if result.Document != nil {
			job.DocumentID = result.Document.ID
		}
		job.EntriesCreated = result.EntriesCreated
		job.ItemsCreated = result.ItemsCreated
		job.ReceiptID = result.ReceiptID

		jobLog.Info().
			Int("entries", result.EntriesCreated).
			Int("items", result.ItemsCreated).
			Msg("Document processed")
		return nil
	}

	go func() {
		log.Info().Msg("Starting job worker")
		if err := jobQueue.Start(workerCtx, jobHandler); err != nil {
			log.Error().Err(err).Msg("Job worker stopped with error")
		}
	}()

	handler := api.NewRouter(api.Deps{
		Store:     st,
		JobStore:  jobStore,
		Publisher: jobQueue,
		Log:       log,
	})

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 5 * time.Minute, // chat answers wait on two model calls
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", cfg.Addr()).Msg("Starting API server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	cancelWorker()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	if err := jobQueue.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error stopping job queue")
	}

	log.Info().Msg("Server exited")
}
