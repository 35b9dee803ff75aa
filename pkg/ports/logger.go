package ports

// LogLevel represents the severity level of a log message.
type LogLevel int

const (
	// LevelDebug is for per-frame and codec-internal diagnostics.
	LevelDebug LogLevel = iota
	// LevelInfo is for session-level progress messages.
	LevelInfo
	// LevelWarn is for recoverable problems, such as a dropped frame.
	LevelWarn
	// LevelError is for problems that abort the current operation.
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

// ParseLogLevel parses a string into a LogLevel.
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

// Logger abstracts logging so that sessions can run inside CLIs, services
// or language bindings without caring about the output format.
type Logger interface {
	// Debug logs per-frame and codec-internal details.
	Debug(msg string, args ...interface{})

	// Info logs session-level progress.
	Info(msg string, args ...interface{})

	// Warn logs recoverable problems.
	Warn(msg string, args ...interface{})

	// Error logs problems that abort the current operation.
	Error(msg string, args ...interface{})

	// WithComponent returns a Logger that tags messages with the
	// component name.
	WithComponent(component string) Logger
}
