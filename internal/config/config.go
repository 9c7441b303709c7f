package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

var ErrInvalid = errors.New("invalid configuration")

type Config struct {
	// Chunking
	ChunkSize    int `envconfig:"CHUNK_SIZE" default:"800"`
	ChunkOverlap int `envconfig:"CHUNK_OVERLAP" default:"100"`

	// Retrieval
	MaxResults         int     `envconfig:"MAX_RESULTS" default:"5"`
	ResolveMaxDistance float64 `envconfig:"RESOLVE_MAX_DISTANCE" default:"0"` // 0 disables the ceiling

	// Sessions
	MaxHistory     int    `envconfig:"MAX_HISTORY" default:"2"`
	SessionBackend string `envconfig:"SESSION_BACKEND" default:"memory"`

	// Model capability
	GeminiAPIKey      string `envconfig:"GEMINI_API_KEY"`
	EmbeddingModel    string `envconfig:"EMBEDDING_MODEL" default:"gemini-embedding-001"`
	GenerationModel   string `envconfig:"GENERATION_MODEL" default:"gemini-2.0-flash"`
	GenerationTimeout int    `envconfig:"GENERATION_TIMEOUT_SECONDS" default:"30"`

	// Vector store
	VectorBackend  string `envconfig:"VECTOR_BACKEND" default:"weaviate"`
	WeaviateHost   string `envconfig:"WEAVIATE_HOST" default:"localhost:8080"`
	WeaviateScheme string `envconfig:"WEAVIATE_SCHEME" default:"http"`

	// Database
	DBHost        string `envconfig:"DB_HOST" default:"postgres"`
	DBPort        int    `envconfig:"DB_PORT" default:"5432"`
	DBUser        string `envconfig:"DB_USER" default:"ragchat"`
	DBPass        string `envconfig:"DB_PASS" default:"password"`
	DBName        string `envconfig:"DB_NAME" default:"ragchat"`
	MigrationPath string `envconfig:"MIGRATION_PATH" default:"file://migrations"`

	// Ingestion
	DocsDir              string `envconfig:"DOCS_DIR" default:"./docs"`
	EnableEmbedderWorker bool   `envconfig:"ENABLE_EMBEDDER_WORKER" default:"false"`
	NSQLookupd           string `envconfig:"NSQ_LOOKUPD" default:"nsqlookupd:4161"`
	NSQDHost             string `envconfig:"NSQD_HOST" default:"nsqd:4150"`
	NSQDHTTP             string `envconfig:"NSQD_HTTP" default:"nsqd:4151"`

	// Server
	ServerPort int `envconfig:"SERVER_PORT" default:"8000"`

	// Resilience
	BootstrapRetryAttempts     int `envconfig:"BOOTSTRAP_RETRY_ATTEMPTS" default:"10"`
	BootstrapRetryDelaySeconds int `envconfig:"BOOTSTRAP_RETRY_DELAY_SECONDS" default:"2"`
}

func Load() (*Config, error) {
	// Env vars may be set in the shell instead; a missing .env is fine.
	_ = godotenv.Load(".env")

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) GenerationTimeoutDuration() time.Duration {
	return time.Duration(c.GenerationTimeout) * time.Second
}

func (c *Config) Validate() error {
	if c.ChunkSize <= 0 {
		return fmt.Errorf("%w: CHUNK_SIZE must be positive", ErrInvalid)
	}
	if c.ChunkOverlap < 0 || c.ChunkOverlap >= c.ChunkSize {
		return fmt.Errorf("%w: CHUNK_OVERLAP must be non-negative and smaller than CHUNK_SIZE", ErrInvalid)
	}
	if c.MaxResults <= 0 {
		return fmt.Errorf("%w: MAX_RESULTS must be positive", ErrInvalid)
	}
	if c.MaxHistory < 0 {
		return fmt.Errorf("%w: MAX_HISTORY must be non-negative", ErrInvalid)
	}
	switch c.SessionBackend {
	case "memory", "postgres":
	default:
		return fmt.Errorf("%w: SESSION_BACKEND must be memory or postgres", ErrInvalid)
	}
	switch c.VectorBackend {
	case "weaviate", "memory":
	default:
		return fmt.Errorf("%w: VECTOR_BACKEND must be weaviate or memory", ErrInvalid)
	}
	return nil
}
