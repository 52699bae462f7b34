package pgvector

import "fmt"

// Connection holds the settings needed to reach the Postgres server.
type Connection struct {
	Host     string `yaml:"host" envconfig:"PGVECTOR_HOST"`
	Port     string `yaml:"port" envconfig:"PGVECTOR_PORT"`
	User     string `yaml:"user" envconfig:"PGVECTOR_USER"`
	Password string `yaml:"password" envconfig:"PGVECTOR_PASSWORD"`
	DbName   string `yaml:"db_name" envconfig:"PGVECTOR_DB_NAME"`
	SSLMode  string `yaml:"ssl_mode" envconfig:"PGVECTOR_SSL_MODE"`
}

// Config holds connection and behavior settings for the pgvector store.
//
// Example (programmatic):
//
//	cfg := pgvector.DefaultConfig()
//	cfg.Connection.Host = "localhost"
//	cfg.Connection.Port = "5432"
//	cfg.Connection.User = "postgres"
//	cfg.Connection.Password = os.Getenv("PGVECTOR_PASSWORD")
//	cfg.Connection.DbName = "documents"
type Config struct {
	Connection Connection `yaml:"connection"`

	// DBSchema is the Postgres schema tables are created in. Defaults to
	// "public".
	DBSchema string `yaml:"db_schema" envconfig:"PGVECTOR_DB_SCHEMA"`

	// MaxConns caps the connection pool size. Zero leaves the pgx default.
	MaxConns int32 `yaml:"max_conns" envconfig:"PGVECTOR_MAX_CONNS"`

	// MaxRowsPerBatch is the chunk size for batch upserts. Defaults to 1000.
	MaxRowsPerBatch int `yaml:"max_rows_per_batch" envconfig:"PGVECTOR_MAX_ROWS_PER_BATCH"`

	// MaxConcurrentSearches caps the fan-out of multi-request searches.
	// Defaults to 10.
	MaxConcurrentSearches int `yaml:"max_concurrent_searches" envconfig:"PGVECTOR_MAX_CONCURRENT_SEARCHES"`
}

const (
	defaultDBSchema              = "public"
	defaultMaxRowsPerBatch       = 1000
	defaultMaxConcurrentSearches = 10
)

// DefaultConfig provides sensible defaults for most use cases.
func DefaultConfig() Config {
	return Config{
		Connection: Connection{
			Host:    "localhost",
			Port:    "5432",
			SSLMode: "disable",
		},
		DBSchema:              defaultDBSchema,
		MaxRowsPerBatch:       defaultMaxRowsPerBatch,
		MaxConcurrentSearches: defaultMaxConcurrentSearches,
	}
}

// withDefaults fills in the zero-valued tuning fields.
func (c Config) withDefaults() Config {
	if c.DBSchema == "" {
		c.DBSchema = defaultDBSchema
	}
	if c.MaxRowsPerBatch <= 0 {
		c.MaxRowsPerBatch = defaultMaxRowsPerBatch
	}
	if c.MaxConcurrentSearches <= 0 {
		c.MaxConcurrentSearches = defaultMaxConcurrentSearches
	}
	return c
}

// connString renders the config as a pgx connection string.
func (c Config) connString() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Connection.Host,
		c.Connection.Port,
		c.Connection.User,
		c.Connection.Password,
		c.Connection.DbName,
		c.Connection.SSLMode,
	)
}
