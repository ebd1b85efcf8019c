package vips

import "sync"

// LogLevel log level
type LogLevel int

// LogLevel enum, numbered as GLogLevelFlags
const (
	LogLevelError    LogLevel = 1 << 2
	LogLevelCritical LogLevel = 1 << 3
	LogLevelWarning  LogLevel = 1 << 4
	LogLevelMessage  LogLevel = 1 << 5
	LogLevelInfo     LogLevel = 1 << 6
	LogLevelDebug    LogLevel = 1 << 7
)

// logDomain GLib log domain of libvips
const logDomain = "VIPS"

// G_LOG_FLAG_RECURSION | G_LOG_FLAG_FATAL
const gLogFlags = 1<<0 | 1<<1

// LoggingHandlerFunction receives binding and libvips log messages at or above the verbosity
type LoggingHandlerFunction func(messageDomain string, messageLevel LogLevel, message string)

var logging = struct {
	sync.RWMutex
	handler   LoggingHandlerFunction
	verbosity LogLevel
}{handler: func(string, LogLevel, string) {}}

// SetLogging set logging handler and verbosity. A nil handler keeps the current one.
func SetLogging(handler LoggingHandlerFunction, verbosity LogLevel) {
	logging.Lock()
	defer logging.Unlock()
	if handler != nil {
		logging.handler = handler
	}
	logging.verbosity = verbosity
}

func log(domain string, level LogLevel, message string) {
	logging.RLock()
	handler, verbosity := logging.handler, logging.verbosity
	logging.RUnlock()
	if level <= verbosity {
		handler(domain, level, message)
	}
}

// handleGLog routes one GLib log record, dropping the fatal and recursion flags
func handleGLog(domain string, flags int, message string) {
	if domain == "" {
		domain = logDomain
	}
	log(domain, LogLevel(flags&^gLogFlags), message)
}
