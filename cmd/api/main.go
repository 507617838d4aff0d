package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taxpj/backend/internal/api/handlers"
	"github.com/taxpj/backend/internal/api/middleware"
	"github.com/taxpj/backend/internal/archive"
	"github.com/taxpj/backend/internal/config"
	"github.com/taxpj/backend/internal/jobs"
	"github.com/taxpj/backend/internal/jobs/inmemory"
	"github.com/taxpj/backend/internal/logger"
	"github.com/taxpj/backend/internal/pipeline"
	"github.com/taxpj/backend/internal/profiles"
	"github.com/taxpj/backend/internal/state"
)

func main() {
	var (
		configPath = flag.String("config", "", "path to YAML or JSON config file")
		port       = flag.String("port", "", "HTTP server port (overrides config)")
	)
	flag.Parse()

	log := logger.New()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	if *port != "" {
		cfg.Port = *port
	}

	if cfg.GeminiAPIKey == "" {
		log.Warn().Msg("no Gemini API key configured - PDF and image imports will fail")
	}
	if cfg.ArchiveBucket == "" {
		log.Warn().Msg("no archive bucket configured - statement archival disabled")
	}

	ctx := context.Background()

	// Profile store: Redis when configured, a local JSON file otherwise.
	var kv profiles.KV
	if cfg.RedisAddr != "" {
		kv = profiles.NewRedisKV(redis.NewClient(&redis.Options{Addr: cfg.RedisAddr}))
		log.Info().Str("addr", cfg.RedisAddr).Msg("using Redis profile store")
	} else {
		kv = profiles.NewFileKV(cfg.ProfileStorePath)
	}
	profileStore := profiles.NewStore(kv)

	txStore := state.NewTransactionStore()

	model := cfg.GeminiModel
	if model == "" {
		model = pipeline.DefaultModelName
	}
	importer := pipeline.NewImporter(pipeline.NewGeminiParser(model, cfg.GeminiAPIKey))

	var archiver archive.Archiver = archive.Noop{}
	if cfg.ArchiveBucket != "" {
		archiver = archive.NewGCSArchiver(cfg.ArchiveBucket, cfg.ArchiveCredentials)
	}

	// Job infrastructure for async imports.
	jobStore := inmemory.NewStore()
	jobQueue := inmemory.NewQueue(100, jobStore)

	workerCtx, cancelWorker := context.WithCancel(logger.WithContext(ctx, log))
	defer cancelWorker()

	jobHandler := func(ctx context.Context, job jobs.Job) error {
		importJob, ok := job.(*jobs.ImportStatementJob)
		if !ok {
			return fmt.Errorf("unexpected job type: %T", job)
		}

		log.Info().
			Str("job_id", importJob.JobID).
			Str("profile_id", importJob.ProfileID).
			Int("files", len(importJob.Files)).
			Msg("processing import job")

		profile, found := profileStore.Find(ctx, importJob.ProfileID)
		if !found {
			return fmt.Errorf("perfil não encontrado: %s", importJob.ProfileID)
		}

		docs := make([]pipeline.Document, 0, len(importJob.Files))
		for _, f := range importJob.Files {
			docs = append(docs, pipeline.Document{Name: f.Name, Data: f.Data})
		}

		txs, err := importer.ImportBatch(ctx, docs, profile)
		if err != nil {
			log.Error().Err(err).Str("job_id", importJob.JobID).Msg("import job failed")
			return err
		}

		txStore.Append(txs)
		importJob.ImportID = txs[0].ImportID
		importJob.TransactionCount = len(txs)

		for _, doc := range docs {
			uri, err := archiver.Archive(ctx, importJob.ImportID, doc.Name, doc.Data)
			if err != nil {
				log.Warn().Err(err).Str("file", doc.Name).Msg("failed to archive statement")
				continue
			}
			if uri != "" {
				importJob.ArchiveURIs = append(importJob.ArchiveURIs, uri)
			}
		}

		log.Info().
			Str("job_id", importJob.JobID).
			Str("import_id", importJob.ImportID).
			Int("transactions", len(txs)).
			Msg("import job completed")
		return nil
	}

	go func() {
		log.Info().Msg("starting import worker")
		if err := jobQueue.Start(workerCtx, jobHandler); err != nil {
			log.Error().Err(err).Msg("import worker stopped with error")
		}
	}()

	profilesHandler := handlers.NewProfilesHandler(profileStore, log)
	importsHandler := handlers.NewImportsHandler(importer, txStore, profileStore, jobQueue, archiver, log)
	transactionsHandler := handlers.NewTransactionsHandler(txStore, log)
	reportsHandler := handlers.NewReportsHandler(txStore, profileStore, log)
	jobsHandler := handlers.NewJobsHandler(jobStore, log)

	mux := http.NewServeMux()

	mux.HandleFunc("/api/profiles", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			profilesHandler.List(w, r)
		case http.MethodPost:
			profilesHandler.Save(w, r, "")
		case http.MethodDelete:
			profilesHandler.Clear(w, r)
		default:
			middleware.WriteError(w, http.StatusMethodNotAllowed, "método não permitido")
		}
	})

	mux.HandleFunc("/api/profiles/", func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimPrefix(r.URL.Path, "/api/profiles/")
		if id == "" {
			middleware.WriteError(w, http.StatusBadRequest, "id do perfil é obrigatório")
			return
		}
		switch r.Method {
		case http.MethodPut:
			profilesHandler.Save(w, r, id)
		case http.MethodDelete:
			profilesHandler.Delete(w, r, id)
		default:
			middleware.WriteError(w, http.StatusMethodNotAllowed, "método não permitido")
		}
	})

	mux.HandleFunc("/api/imports", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			importsHandler.Import(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "método não permitido")
		}
	})

	mux.HandleFunc("/api/imports/async", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			importsHandler.ImportAsync(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "método não permitido")
		}
	})

	mux.HandleFunc("/api/transactions", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			transactionsHandler.List(w, r)
		case http.MethodDelete:
			transactionsHandler.Clear(w, r)
		default:
			middleware.WriteError(w, http.StatusMethodNotAllowed, "método não permitido")
		}
	})

	mux.HandleFunc("/api/reports/monthly", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			reportsHandler.Monthly(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "método não permitido")
		}
	})

	mux.HandleFunc("/api/reports/ledger", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			reportsHandler.Ledger(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "método não permitido")
		}
	})

	mux.HandleFunc("/api/reports/export", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			reportsHandler.Export(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "método não permitido")
		}
	})

	mux.HandleFunc("/api/jobs", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			jobsHandler.List(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "método não permitido")
		}
	})

	mux.HandleFunc("/api/jobs/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "método não permitido")
			return
		}
		jobID := strings.TrimPrefix(r.URL.Path, "/api/jobs/")
		if jobID == "" {
			middleware.WriteError(w, http.StatusBadRequest, "id do job é obrigatório")
			return
		}
		jobsHandler.Get(w, r, jobID)
	})

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteJSON(w, http.StatusOK, map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	handler := middleware.Recovery(log)(
		middleware.Logger(log)(
			middleware.RequestID(
				middleware.CORS(mux),
			),
		),
	)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("starting API server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server...")

	cancelWorker()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	if err := jobQueue.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("error stopping job queue")
	}

	log.Info().Msg("server exited")
}
