// Package dlogger builds the zap loggers used by strata, from the log levels
// accepted on the command line.
package dlogger

import (
	"strings"

	"github.com/oneconcern/strata/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	// LogLevelDebug sets the log level to debug
	LogLevelDebug = "debug"

	// LogLevelInfo sets the log level to info
	LogLevelInfo = "info"

	// LogLevelWarn sets the log level to warn
	LogLevelWarn = "warn"

	// LogLevelError sets the log level to error
	LogLevelError = "error"

	// LogLevelNone sets logger to no logging
	LogLevelNone = "none"
)

// ErrUnknownLevel is returned for a level outside of Levels()
var ErrUnknownLevel = errors.New("unknown log level")

var levels = map[string]zapcore.Level{
	LogLevelDebug: zapcore.DebugLevel,
	LogLevelInfo:  zapcore.InfoLevel,
	LogLevelWarn:  zapcore.WarnLevel,
	LogLevelError: zapcore.ErrorLevel,
}

// Levels lists the accepted log levels, most verbose first
func Levels() []string {
	return []string{LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError, LogLevelNone}
}

// Option configures a logger
type Option func(*options)

type options struct {
	name    string
	console bool
	outputs []string
}

// Name sets the name of the root logger. Defaults to "strata".
func Name(name string) Option {
	return func(o *options) {
		o.name = name
	}
}

// Console uses a human readable encoding rather than json.
func Console() Option {
	return func(o *options) {
		o.console = true
	}
}

// OutputPaths sets where log entries are written. Defaults to stderr.
func OutputPaths(paths ...string) Option {
	return func(o *options) {
		o.outputs = paths
	}
}

// ParseLevel validates a level name. Names are case insensitive, and the empty
// string stands for the error level.
func ParseLevel(level string) (string, error) {
	level = strings.ToLower(strings.TrimSpace(level))
	if level == "" {
		return LogLevelError, nil
	}
	if _, ok := levels[level]; ok || level == LogLevelNone {
		return level, nil
	}
	return "", ErrUnknownLevel.WrapMessage("%q, expected one of %s", level, strings.Join(Levels(), ", "))
}

// GetLogger returns a zap logger with the specified level
func GetLogger(logLevel string, opts ...Option) (*zap.Logger, error) {
	level, err := ParseLevel(logLevel)
	if err != nil {
		return nil, err
	}
	if level == LogLevelNone {
		return zap.NewNop(), nil
	}

	o := options{name: "strata", outputs: []string{"stderr"}}
	for _, apply := range opts {
		apply(&o)
	}

	zapConfig := zap.NewProductionConfig()
	if o.console {
		zapConfig.Encoding = "console"
		zapConfig.EncoderConfig = zap.NewDevelopmentEncoderConfig()
		zapConfig.DisableStacktrace = true
	}
	zapConfig.Level = zap.NewAtomicLevelAt(levels[level])
	zapConfig.Sampling = nil
	zapConfig.OutputPaths = o.outputs
	logger, err := zapConfig.Build()
	if err != nil {
		return nil, err
	}
	if o.name == "" {
		return logger, nil
	}
	return logger.Named(o.name), nil
}

// MustGetLogger returns a zap logger with the specified level or panics
func MustGetLogger(logLevel string, opts ...Option) *zap.Logger {
	l, err := GetLogger(logLevel, opts...)
	if err != nil {
		panic(err)
	}
	return l
}
