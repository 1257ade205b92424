package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/mnemograph/mnemo/internal/api/handlers"
	mw "github.com/mnemograph/mnemo/internal/api/middleware"
	"github.com/mnemograph/mnemo/internal/config"
	"github.com/mnemograph/mnemo/internal/domain"
	"github.com/mnemograph/mnemo/internal/embedding"
	"github.com/mnemograph/mnemo/internal/llm"
	"github.com/mnemograph/mnemo/internal/metrics"
	"github.com/mnemograph/mnemo/internal/service"
	"github.com/mnemograph/mnemo/internal/store"
)

// App holds the router and the background queue for lifecycle management.
type App struct {
	Router *chi.Mux
	Queue  *service.TaskQueue
}

func NewApp(db *pgxpool.Pool, kv domain.KeyValueCache, sink *metrics.Sink, logger *zap.Logger) *App {
	// Stores
	graphStore := store.NewGraphStore(db)
	conflictStore := store.NewConflictStore(db)

	// External clients via provider factory
	llmProvider := config.LLMProvider()
	embeddingProvider := config.EmbeddingProvider()

	llmClient, err := llm.NewClient(llmProvider, config.LLMAPIKey())
	if err != nil {
		logger.Warn("LLM client initialization failed", zap.String("provider", llmProvider), zap.Error(err))
	} else {
		logger.Info("LLM client initialized", zap.String("provider", llmProvider))
	}

	embeddingClient, err := embedding.NewClient(embeddingProvider, config.EmbeddingAPIKey())
	if err != nil {
		logger.Warn("Embedding client initialization failed", zap.String("provider", embeddingProvider), zap.Error(err))
	} else {
		logger.Info("Embedding client initialized", zap.String("provider", embeddingProvider))
	}
	if embeddingClient != nil && kv != nil {
		embeddingClient = embedding.NewCachedClient(embeddingClient, kv)
	}

	// Retrieval paths
	semantic := service.NewSemanticRetriever(graphStore)
	keyword := service.NewContextRetriever(graphStore, logger)
	temporal := service.NewTemporalRetriever(graphStore)
	graph := service.NewGraphRetriever(graphStore, logger)

	// Services
	engine := service.NewRecallEngine(semantic, keyword, temporal, graph, sink, logger)
	ranker := service.NewFusionRanker()
	queryCache := service.NewQueryCache(kv, config.CacheTTL(), logger, sink)
	recallSvc := service.NewRecallService(engine, ranker, queryCache, embeddingClient, llmClient, logger, sink)
	recallSvc.LiteMode = config.LiteMode()
	recallSvc.DefaultTimeout = config.RecallTimeout()

	detector := service.NewContradictionDetector(graphStore, llmClient, logger)
	resolution := service.NewResolutionEngine(conflictStore, logger)
	contradictSvc := service.NewContradictService(detector, resolution, logger, sink)

	queue := service.NewTaskQueue(config.EnrichmentWorkers(), config.EnrichmentBuffer(), logger, sink)
	memorySvc := service.NewMemoryService(graphStore, embeddingClient, llmClient, contradictSvc, queue, logger)

	// Handlers
	memoryHandler := handlers.NewMemoryHandler(memorySvc, recallSvc, temporal)
	conflictHandler := handlers.NewConflictHandler(resolution)

	r := chi.NewRouter()
	app := &App{Router: r, Queue: queue}

	// Global middleware (order matters)
	r.Use(mw.RequestID)
	r.Use(middleware.RealIP)
	r.Use(mw.Metrics(sink))
	r.Use(mw.Logging(logger))
	r.Use(middleware.Recoverer)
	r.Use(mw.RateLimit(config.RateLimitRPS(), config.RateLimitBurst()))

	// Health and metrics (no auth)
	r.Get("/health", healthHandler(db))
	r.Method(http.MethodGet, "/metrics", sink.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Route("/memories", func(r chi.Router) {
			r.Post("/", memoryHandler.Create)
			r.Get("/range", memoryHandler.Range)
			r.Get("/{id}", memoryHandler.GetByID)
		})

		r.Post("/recall", memoryHandler.Recall)

		r.Route("/conflicts", func(r chi.Router) {
			r.Get("/", conflictHandler.List)
			r.Post("/{id}/resolve", conflictHandler.Resolve)
		})
	})

	return app
}

func healthHandler(db *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := db.Ping(r.Context()); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(map[string]string{"status": "error", "error": err.Error()})
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}
}

// Ensure stores and clients satisfy interfaces at compile time.
var (
	_ domain.GraphStore      = (*store.GraphStore)(nil)
	_ domain.ConflictStore   = (*store.ConflictStore)(nil)
	_ domain.EmbeddingClient = (*embedding.OpenAIClient)(nil)
	_ domain.EmbeddingClient = (*embedding.MockClient)(nil)
	_ domain.EmbeddingClient = (*embedding.CachedClient)(nil)
	_ domain.LLMClient       = (*llm.OpenAIClient)(nil)
	_ domain.LLMClient       = (*llm.AnthropicClient)(nil)
	_ domain.LLMClient       = (*llm.MockClient)(nil)
)
