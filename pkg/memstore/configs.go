package memstore

import "time"

// Config holds the settings for the memory-record store: the database
// connection, pool tuning and the embedding dimensionality shared by all
// collections of the store.
type Config struct {
	Connection        Connection
	ConnectionDetails ConnectionDetails

	// DBSchema is the database schema the collection tables live in.
	// Defaults to "public".
	DBSchema string `yaml:"db_schema" envconfig:"MEMSTORE_DB_SCHEMA"`

	// Dimensions is the embedding dimensionality of every collection.
	// Defaults to 1536.
	Dimensions int `yaml:"dimensions" envconfig:"MEMSTORE_DIMENSIONS"`
}

type Connection struct {
	Host     string `yaml:"host" envconfig:"MEMSTORE_HOST"`
	Port     string `yaml:"port" envconfig:"MEMSTORE_PORT"`
	User     string `yaml:"user" envconfig:"MEMSTORE_USER"`
	Password string `yaml:"password" envconfig:"MEMSTORE_PASSWORD"`
	DbName   string `yaml:"db_name" envconfig:"MEMSTORE_DB_NAME"`
	SSLMode  string `yaml:"ssl_mode" envconfig:"MEMSTORE_SSL_MODE"`
}

type ConnectionDetails struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

const (
	defaultDBSchema        = "public"
	defaultDimensions      = 1536
	defaultMaxOpenConns    = 50
	defaultMaxIdleConns    = 25
	defaultConnMaxLifetime = 1 * time.Minute
)

// DefaultConfig provides sensible defaults for most use cases.
func DefaultConfig() Config {
	return Config{
		DBSchema:   defaultDBSchema,
		Dimensions: defaultDimensions,
		ConnectionDetails: ConnectionDetails{
			MaxOpenConns:    defaultMaxOpenConns,
			MaxIdleConns:    defaultMaxIdleConns,
			ConnMaxLifetime: defaultConnMaxLifetime,
		},
	}
}

// withDefaults fills in the zero-valued tuning fields.
func (c Config) withDefaults() Config {
	if c.DBSchema == "" {
		c.DBSchema = defaultDBSchema
	}
	if c.Dimensions <= 0 {
		c.Dimensions = defaultDimensions
	}
	if c.ConnectionDetails.MaxOpenConns <= 0 {
		c.ConnectionDetails.MaxOpenConns = defaultMaxOpenConns
	}
	if c.ConnectionDetails.MaxIdleConns <= 0 {
		c.ConnectionDetails.MaxIdleConns = defaultMaxIdleConns
	}
	if c.ConnectionDetails.ConnMaxLifetime <= 0 {
		c.ConnectionDetails.ConnMaxLifetime = defaultConnMaxLifetime
	}
	return c
}
