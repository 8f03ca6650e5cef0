package ingestion_engine

// IngestConfig tunes the ingestion pipeline.
//
// ChunkSize:    characters per chunk.
// ChunkOverlap: characters shared between consecutive chunks.
// QueueSize:    bounded job queue length; Enqueue blocks when full.
type IngestConfig struct {
	ChunkSize    int
	ChunkOverlap int
	QueueSize    int
}
