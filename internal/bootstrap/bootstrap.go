package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/akulikov/research-assistant/internal/config"
	"github.com/akulikov/research-assistant/internal/core/usecase"
	"github.com/akulikov/research-assistant/internal/infrastructure/chunking"
	"github.com/akulikov/research-assistant/internal/infrastructure/embedding"
	"github.com/akulikov/research-assistant/internal/infrastructure/embedding/openai"
	"github.com/akulikov/research-assistant/internal/infrastructure/extractor"
	"github.com/akulikov/research-assistant/internal/infrastructure/llm/ollama"
	"github.com/akulikov/research-assistant/internal/infrastructure/normalize"
	natsqueue "github.com/akulikov/research-assistant/internal/infrastructure/queue/nats"
	"github.com/akulikov/research-assistant/internal/infrastructure/repository/postgres"
	"github.com/akulikov/research-assistant/internal/infrastructure/resilience"
	"github.com/akulikov/research-assistant/internal/infrastructure/storage/localfs"
	"github.com/akulikov/research-assistant/internal/infrastructure/vector/flat"
	"github.com/akulikov/research-assistant/internal/infrastructure/websearch"
	"github.com/akulikov/research-assistant/internal/observability/metrics"
)

// App holds the shared dependency graph for a process. Both the API and
// the MCP server build one; each keeps its own in-memory corpus behind
// its own gate.
type App struct {
	Config config.Config

	DB    *sql.DB
	Queue *natsqueue.Queue

	Documents     *postgres.DocumentRepository
	Conversations *postgres.ConversationRepository
	Ledger        *postgres.CostLedger

	Gate    *CorpusGate
	Ingest  *usecase.IngestService
	Agent   *usecase.AgentService
	Metrics *metrics.HTTPServerMetrics
}

// searchMetricsAdapter binds the process service name so the retrieval
// service stays free of prometheus label plumbing.
type searchMetricsAdapter struct {
	service string
	m       *metrics.HTTPServerMetrics
}

func (a searchMetricsAdapter) RecordSearch(resultCount int, empty bool, duration time.Duration, err error) {
	a.m.RecordSearch(a.service, resultCount, empty, duration, err)
}

type agentMetricsAdapter struct {
	service string
	m       *metrics.HTTPServerMetrics
}

func (a agentMetricsAdapter) RecordRun(route, status string) {
	a.m.RecordAgentRun(a.service, route, status)
}

func (a agentMetricsAdapter) RecordToolCall(tool, status string) {
	a.m.RecordAgentToolCall(a.service, tool, status)
}

func New(ctx context.Context, cfg config.Config, service string) (*App, error) {
	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	documents := postgres.NewDocumentRepository(db)
	if err := documents.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	conversations := postgres.NewConversationRepository(db)
	ledger := postgres.NewCostLedger(db)

	executor := resilience.NewExecutor(resilience.DefaultConfig())
	procMetrics := metrics.NewHTTPServerMetrics(service)

	queue, err := natsqueue.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, natsqueue.Options{
		ResilienceExecutor: executor,
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("connect nats: %w", err)
	}

	store, err := localfs.New(cfg.StoragePath)
	if err != nil {
		queue.Close()
		db.Close()
		return nil, fmt.Errorf("open object storage: %w", err)
	}

	embedClient, err := openai.New(openai.Config{
		BaseURL:               cfg.EmbeddingBaseURL,
		APIKey:                cfg.EmbeddingAPIKey,
		Model:                 cfg.EmbeddingModel,
		PricePerMillionTokens: cfg.EmbeddingPrice,
		Dimensions:            cfg.EmbeddingDimension,
		UsageHook: func(model string, tokens int) {
			procMetrics.RecordEmbeddingTokens(service, model, tokens)
		},
	}, ledger)
	if err != nil {
		queue.Close()
		db.Close()
		return nil, fmt.Errorf("configure embeddings: %w", err)
	}
	embedder := embedding.NewResilient(embedClient, executor)

	retrieval := usecase.NewRetrievalService(
		extractor.New(store),
		normalize.Text,
		chunking.NewSplitter(cfg.ChunkSize, cfg.ChunkOverlap),
		embedder,
		flat.New(),
		documents,
		usecase.RetrievalLimits{
			TopK:         cfg.SearchTopK,
			ExcerptChars: cfg.ExcerptChars,
		},
	)
	retrieval.SetMetrics(searchMetricsAdapter{service: service, m: procMetrics})
	reindex := usecase.NewReindexService(documents, retrieval)
	gate := NewCorpusGate(service, retrieval, reindex, metrics.NewReindexMetrics(service))

	ingest := usecase.NewIngestService(documents, store, queue, extractor.SupportedExtension)

	llmClient := ollama.New(cfg.OllamaURL, cfg.OllamaModel, executor, ledger)

	webTool, err := websearch.New(websearch.Config{
		Mode:   cfg.WebSearchMode,
		APIKey: cfg.WebSearchAPIKey,
	})
	if err != nil {
		queue.Close()
		db.Close()
		return nil, fmt.Errorf("configure web search: %w", err)
	}

	agent := usecase.NewAgentService(
		ollama.NewRouter(llmClient),
		ollama.NewGenerator(llmClient),
		conversations,
		usecase.NewDocumentsTool(gate, cfg.SearchTopK),
		webTool,
		usecase.AgentLimits{HistoryMessages: cfg.AgentHistoryMessages},
	)
	agent.SetMetrics(agentMetricsAdapter{service: service, m: procMetrics})

	return &App{
		Config:        cfg,
		DB:            db,
		Queue:         queue,
		Documents:     documents,
		Conversations: conversations,
		Ledger:        ledger,
		Gate:          gate,
		Ingest:        ingest,
		Agent:         agent,
		Metrics:       procMetrics,
	}, nil
}

func (a *App) Close() {
	if a.Queue != nil {
		a.Queue.Close()
	}
	if a.DB != nil {
		a.DB.Close()
	}
}
