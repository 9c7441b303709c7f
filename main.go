package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/nsqio/go-nsq"

	"github.com/bartolofj/starting-ragchatbot-codebase/internal/adapter/gemini"
	"github.com/bartolofj/starting-ragchatbot-codebase/internal/adapter/memory"
	"github.com/bartolofj/starting-ragchatbot-codebase/internal/app"
	"github.com/bartolofj/starting-ragchatbot-codebase/internal/config"
	"github.com/bartolofj/starting-ragchatbot-codebase/internal/logger"
	"github.com/bartolofj/starting-ragchatbot-codebase/internal/session"
)

func main() {
	base := slog.NewJSONHandler(os.Stdout, nil)
	slog.SetDefault(slog.New(logger.NewContextHandler(base)))

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	deps, err := app.Bootstrap(ctx, cfg)
	if err != nil {
		slog.Error("bootstrap failed", "error", err)
		os.Exit(1)
	}
	defer deps.DB.Close()

	embedder, err := gemini.NewEmbedder(ctx, cfg.GeminiAPIKey, cfg.EmbeddingModel)
	if err != nil {
		slog.Error("failed to create embedder", "error", err)
		os.Exit(1)
	}
	generator, err := gemini.NewGenerator(ctx, cfg.GeminiAPIKey, cfg.GenerationModel)
	if err != nil {
		slog.Error("failed to create generator", "error", err)
		os.Exit(1)
	}

	var vecStore app.VectorStore
	if cfg.VectorBackend == "memory" {
		vecStore = memory.NewStore()
	} else {
		vecStore = deps.VectorStore
	}

	var sessions session.Store = session.NewMemoryStore(cfg.MaxHistory)
	if cfg.SessionBackend == "postgres" {
		sessions = session.NewPostgresStore(deps.DB, cfg.MaxHistory)
	}

	var taskPub app.TaskPublisher
	if deps.NSQProducer != nil {
		taskPub = deps.NSQProducer
	}

	application, err := app.New(cfg, deps.DB, vecStore, taskPub, embedder, generator, sessions)
	if err != nil {
		slog.Error("failed to build app", "error", err)
		os.Exit(1)
	}

	// Load the course corpus before serving queries.
	stats, err := application.CourseService.IngestDirectory(ctx, cfg.DocsDir)
	if err != nil {
		slog.Error("startup ingestion failed", "error", err)
		os.Exit(1)
	}
	slog.Info("startup ingestion complete",
		"courses_added", stats.CoursesAdded,
		"courses_known", stats.CoursesKnown,
		"documents_skipped", stats.DocumentsBad,
		"chunks_written", stats.ChunksWritten)

	if cfg.EnableEmbedderWorker {
		consumer, err := nsq.NewConsumer(config.TopicIngestEmbed, "backend", nsq.NewConfig())
		if err != nil {
			slog.Error("failed to create NSQ consumer", "error", err)
			os.Exit(1)
		}
		consumer.AddHandler(nsq.HandlerFunc(func(m *nsq.Message) error {
			return application.EmbedderConsumer.HandleMessage(m)
		}))
		if err := consumer.ConnectToNSQLookupd(cfg.NSQLookupd); err != nil {
			slog.Error("failed to connect to NSQLookupd", "error", err)
			os.Exit(1)
		}
		defer consumer.Stop()
		slog.Info("embedder worker connected", "topic", config.TopicIngestEmbed)
	}

	if err := application.Run(ctx); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
