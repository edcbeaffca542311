package zxscan

// LogLevel represents the severity level of a log message.
type LogLevel int

const (
	// LevelDebug is for per-attempt decode details.
	LevelDebug LogLevel = iota
	// LevelInfo is for decode outcomes.
	LevelInfo
	// LevelWarn is for recoverable problems such as unreadable inputs.
	LevelWarn
	// LevelError is for problems that stop processing.
	LevelError
	// LevelQuiet suppresses all log output.
	LevelQuiet
)

// String returns the string representation of the log level.
func (l LogLevel) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	case LevelQuiet:
		return "quiet"
	default:
		return "unknown"
	}
}

// ParseLogLevel parses a string into a LogLevel, defaulting to LevelInfo.
func ParseLogLevel(s string) LogLevel {
	switch s {
	case "debug":
		return LevelDebug
	case "info":
		return LevelInfo
	case "warn":
		return LevelWarn
	case "error":
		return LevelError
	case "quiet":
		return LevelQuiet
	default:
		return LevelInfo
	}
}

// Logger abstracts logging. Messages are format strings; implementations may
// translate them before formatting.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})

	// WithComponent returns a Logger that prefixes messages with a component
	// name.
	WithComponent(component string) Logger
}

// NopLogger discards everything.
type NopLogger struct{}

func (NopLogger) Debug(string, ...interface{})  {}
func (NopLogger) Info(string, ...interface{})   {}
func (NopLogger) Warn(string, ...interface{})   {}
func (NopLogger) Error(string, ...interface{})  {}
func (n NopLogger) WithComponent(string) Logger { return n }
