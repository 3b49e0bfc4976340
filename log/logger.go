package log

import (
	"io"
	"os"

	"github.com/op/go-logging"
)

type Level logging.Level

// The levels that can be passed to the SetLevel function.
const (
	Debug Level = iota
	Info
	Notice
	Warning
	Error
	Critical
)

// The logger format
var format = logging.MustStringFormatter(
	`%{color}[%{time:15:04:05.000}] [%{module}] [%{level:.4s}]%{color:reset} %{message}`,
)

// The internal leveled logger backend
var leveledBackend logging.LeveledBackend

// The logger interface
type Logger interface {
	Debug(v ...interface{})
	Debugf(format string, v ...interface{})

	Notice(v ...interface{})
	Noticef(format string, v ...interface{})

	Info(v ...interface{})
	Infof(format string, v ...interface{})

	Warning(v ...interface{})
	Warningf(format string, v ...interface{})

	Error(v ...interface{})
	Errorf(format string, v ...interface{})

	Critical(v ...interface{})
	Criticalf(format string, v ...interface{})
}

// Create a new named logger.
func New(name string) Logger {
	return logging.MustGetLogger(name)
}

// Override the backend output sink. The current global level is preserved.
func SetSink(sink io.Writer) {
	level := logging.NOTICE
	if leveledBackend != nil {
		level = leveledBackend.GetLevel("")
	}

	backend := logging.NewLogBackend(sink, "", 0)
	backendWithFormatter := logging.NewBackendFormatter(backend, format)
	leveledBackend = logging.AddModuleLevel(backendWithFormatter)
	leveledBackend.SetLevel(level, "")
	logging.SetBackend(leveledBackend)
}

// Set logger verbosity for all modules.
func SetLevel(level Level) {
	leveledBackend.SetLevel(toLoggingLevel(level), "")
}

// Set logger verbosity for a single named logger.
func SetModuleLevel(name string, level Level) {
	leveledBackend.SetLevel(toLoggingLevel(level), name)
}

func toLoggingLevel(level Level) logging.Level {
	switch level {
	case Debug:
		return logging.DEBUG
	case Info:
		return logging.INFO
	case Warning:
		return logging.WARNING
	case Error:
		return logging.ERROR
	case Critical:
		return logging.CRITICAL
	}
	return logging.NOTICE
}

func init() {
	SetSink(os.Stdout)
	SetLevel(Notice)
}
