package app

import (
	"context"
	"time"

	"github.com/askpdf-dev/askpdf/internal/config"
	"github.com/askpdf-dev/askpdf/internal/core"
	db "github.com/askpdf-dev/askpdf/internal/core/database"
	"github.com/askpdf-dev/askpdf/internal/core/extract"
	"github.com/askpdf-dev/askpdf/internal/core/ingestion_engine"
	"github.com/askpdf-dev/askpdf/internal/core/llm"
	objectclient "github.com/askpdf-dev/askpdf/internal/core/object-client"
	"github.com/askpdf-dev/askpdf/internal/core/vectorstore"
	"github.com/askpdf-dev/askpdf/internal/logger"
	"github.com/askpdf-dev/askpdf/internal/services"
)

// ingestWorkers is the size of the ingestion worker pool.
const ingestWorkers = 2

type App struct {
	DBClient core.DbClient
	Ingestor ingestion_engine.Ingestor
	Server   *Server
}

// NewApp wires the whole service: storage clients, AI providers, the
// ingestion pipeline, the services and the HTTP server. The vector backend
// follows VECTOR_BACKEND; "memory" needs no database and no AWS credentials,
// which is how the service runs in local development.
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	logger.Init(cfg.LogLevel)

	appCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	var (
		dbClient  core.DbClient
		index     core.VectorIndex
		objClient core.ObjectClient
	)
	if cfg.VectorBackend == "memory" {
		dbClient = db.NewMemClient()
		index = vectorstore.NewMemory()
		objClient = objectclient.NewMemory()
		logger.Info("using in-memory storage, object store and vector index")
	} else {
		client, err := db.NewDatabaseClient(appCtx, cfg)
		if err != nil {
			return nil, err
		}
		dbClient = client
		index = vectorstore.NewPgVector(client.(*db.DatabaseClient).DB(), cfg.EmbedDim)
		logger.Info("database initialized and bootstrapped")

		s3Client, err := objectclient.NewS3Client(appCtx, cfg)
		if err != nil {
			return nil, err
		}
		objClient = s3Client
		logger.Info("object storage client ready")
	}

	embedder := llm.NewGeminiEmbedder(cfg.AIAPIKey, cfg.EmbedModel, cfg.EmbedBatch)
	generator := llm.NewGeminiLLM(cfg.AIAPIKey, cfg.GenModel)

	ingestor := ingestion_engine.NewDocumentIngestor(
		dbClient,
		objClient,
		extract.Default(),
		embedder,
		index,
		&ingestion_engine.IngestConfig{
			ChunkSize:    cfg.ChunkSize,
			ChunkOverlap: cfg.ChunkOverlap,
		},
	)
	ingestor.Start(ctx, ingestWorkers)

	users := services.NewUserService(dbClient)
	docs := services.NewDocumentService(dbClient, objClient, index, ingestor, cfg)
	search := services.NewSearchService(dbClient, embedder, index)
	chat := services.NewChatService(dbClient, search, generator, cfg.TopK, cfg.MaxContextTokens)

	server := NewServer(cfg, users, docs, search, chat)

	return &App{DBClient: dbClient, Ingestor: ingestor, Server: server}, nil
}

func (a *App) Close() {
	if a.DBClient != nil {
		_ = a.DBClient.Close()
	}
	logger.Sync()
}
