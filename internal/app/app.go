package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/bartolofj/starting-ragchatbot-codebase/features/chat"
	"github.com/bartolofj/starting-ragchatbot-codebase/features/course"
	"github.com/bartolofj/starting-ragchatbot-codebase/internal/config"
	"github.com/bartolofj/starting-ragchatbot-codebase/internal/middleware"
	"github.com/bartolofj/starting-ragchatbot-codebase/internal/orchestrator"
	"github.com/bartolofj/starting-ragchatbot-codebase/internal/retrieval"
	"github.com/bartolofj/starting-ragchatbot-codebase/internal/session"
	"github.com/bartolofj/starting-ragchatbot-codebase/internal/tools"
	"github.com/bartolofj/starting-ragchatbot-codebase/internal/worker"
)

// VectorStore is the full dual-index surface the app wires: identity
// resolution and content search on the read side, catalog and chunk writes on
// the ingestion side.
type VectorStore interface {
	retrieval.CatalogStore
	retrieval.ChunkStore
	AddCourse(ctx context.Context, meta retrieval.CourseMeta, vec []float32) error
	StoreChunk(ctx context.Context, chunk worker.Chunk) error
}

type Database interface {
	PingContext(ctx context.Context) error
}

type TaskPublisher interface {
	Publish(topic string, body []byte) error
}

type App struct {
	Handler          http.Handler
	CourseService    *course.Service
	EmbedderConsumer *worker.EmbedderConsumer

	addr string
}

func New(
	cfg *config.Config,
	db Database,
	vecStore VectorStore,
	taskPub TaskPublisher,
	embedder retrieval.Embedder,
	generator orchestrator.Generator,
	sessions session.Store,
) (*App, error) {
	// Repositories need the concrete handle; the interface in the signature
	// keeps the constructor mockable with sqlmock.
	sqlDB := db.(*sql.DB)

	// Feature: Course
	courseRepo := course.NewPostgresRepository(sqlDB)
	courseService := course.NewService(courseRepo, embedder, vecStore, vecStore, cfg.ChunkSize, cfg.ChunkOverlap)
	if cfg.EnableEmbedderWorker && taskPub != nil {
		courseService = courseService.WithPublisher(taskPub, config.TopicIngestEmbed)
	}
	courseHandler := course.NewHandler(courseRepo)

	// Retrieval
	queryLogger, err := retrieval.NewFileQueryLogger("data/logs/query.log")
	if err != nil {
		slog.Warn("failed to create query logger, falling back to stdout", "error", err)
		queryLogger = retrieval.NewQueryLogger(os.Stdout)
	}
	retrievalService := retrieval.NewService(embedder, vecStore, vecStore, queryLogger, cfg.MaxResults, cfg.ResolveMaxDistance)

	// Tools
	registry := tools.NewRegistry()
	if err := registry.Register(tools.NewSearchTool(retrievalService)); err != nil {
		return nil, fmt.Errorf("register search tool: %w", err)
	}
	if err := registry.Register(tools.NewOutlineTool(retrievalService)); err != nil {
		return nil, fmt.Errorf("register outline tool: %w", err)
	}

	// Feature: Chat
	orch := orchestrator.New(generator, registry, sessions, cfg.GenerationTimeoutDuration())
	chatHandler := chat.NewHandler(orch)

	// Middleware: CORS
	enableCORS := func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}
			next(w, r)
		}
	}

	// Routes
	mux := http.NewServeMux()
	mux.Handle("POST /api/query", middleware.CorrelationID(enableCORS(chatHandler.Query)))
	mux.Handle("GET /api/courses", middleware.CorrelationID(enableCORS(courseHandler.GetStats)))

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	return &App{
		Handler:          mux,
		CourseService:    courseService,
		EmbedderConsumer: worker.NewEmbedderConsumer(embedder, vecStore),
		addr:             fmt.Sprintf(":%d", cfg.ServerPort),
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    a.addr,
		Handler: a.Handler,
	}

	go func() {
		<-ctx.Done()
		slog.Info("shutting down server...")
		if err := srv.Shutdown(context.Background()); err != nil {
			slog.Error("server shutdown failed", "error", err)
		}
	}()

	slog.Info("server starting", "addr", a.addr)
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}
