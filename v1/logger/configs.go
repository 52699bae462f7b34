package logger

// Level controls the minimum severity emitted by the logger.
type Level string

const (
	Debug   Level = "debug"
	Info    Level = "info"
	Warning Level = "warning"
	Error   Level = "error"
)

// Config holds the settings used to build a logger instance.
type Config struct {
	// Level is the minimum severity that will be written. Unknown values
	// fall back to Info.
	Level Level `yaml:"level" envconfig:"LOGGER_LEVEL"`

	// ServiceName is attached to every log entry as the "service" field.
	ServiceName string `yaml:"service_name" envconfig:"LOGGER_SERVICE_NAME"`

	// EnableTracing controls whether WithContext extracts OpenTelemetry
	// trace and span identifiers into log entries.
	EnableTracing bool `yaml:"enable_tracing" envconfig:"LOGGER_ENABLE_TRACING"`
}
