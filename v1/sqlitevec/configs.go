package sqlitevec

// Config holds the settings for the SQLite-backed store.
//
// Example (programmatic):
//
//	cfg := sqlitevec.DefaultConfig()
//	cfg.Path = "/var/lib/app/records.db"
type Config struct {
	// Path is the database file. ":memory:" opens an in-memory database.
	Path string `yaml:"path" envconfig:"SQLITEVEC_PATH"`

	// MaxRowsPerBatch is the chunk size for batch upserts. Defaults to 1000.
	MaxRowsPerBatch int `yaml:"max_rows_per_batch" envconfig:"SQLITEVEC_MAX_ROWS_PER_BATCH"`
}

const defaultMaxRowsPerBatch = 1000

// DefaultConfig provides sensible defaults for most use cases.
func DefaultConfig() Config {
	return Config{
		Path:            ":memory:",
		MaxRowsPerBatch: defaultMaxRowsPerBatch,
	}
}

// withDefaults fills in the zero-valued tuning fields.
func (c Config) withDefaults() Config {
	if c.Path == "" {
		c.Path = ":memory:"
	}
	if c.MaxRowsPerBatch <= 0 {
		c.MaxRowsPerBatch = defaultMaxRowsPerBatch
	}
	return c
}
