package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	ConsoleFormat = "console"
	JSONFormat    = "json"
)

// Config selects the level, encoding and destination of every logger
type Config struct {
	Level  string
	Format string
	Writer io.Writer
}

var (
	mutex sync.RWMutex
	root  zapcore.Core = zapcore.NewNopCore()
	level              = zap.NewAtomicLevelAt(zapcore.InfoLevel)
)

// Init replaces the core every logger writes through, including loggers
// obtained before the call
func Init(c Config) error {
	if err := SetLevel(c.Level); err != nil {
		return err
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.NameKey = "module"

	var encoder zapcore.Encoder
	switch strings.ToLower(c.Format) {
	case "", ConsoleFormat:
		encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	case JSONFormat:
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	default:
		return errors.Errorf("unknown log format %q", c.Format)
	}

	writer := c.Writer
	if writer == nil {
		writer = os.Stderr
	}

	mutex.Lock()
	defer mutex.Unlock()
	root = zapcore.NewCore(encoder, zapcore.Lock(zapcore.AddSync(writer)), level)
	return nil
}

// core forwards every entry to the root core current at write time
type core struct {
	fields []zapcore.Field
}

func (c *core) Enabled(lvl zapcore.Level) bool {
	return level.Enabled(lvl)
}

func (c *core) With(fields []zapcore.Field) zapcore.Core {
	combined := make([]zapcore.Field, 0, len(c.fields)+len(fields))
	combined = append(combined, c.fields...)
	return &core{fields: append(combined, fields...)}
}

func (c *core) Check(e zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(e.Level) {
		return ce.AddCore(e, c)
	}
	return ce
}

func (c *core) Write(e zapcore.Entry, fields []zapcore.Field) error {
	mutex.RLock()
	target := root
	mutex.RUnlock()
	if len(c.fields) > 0 {
		fields = append(append(make([]zapcore.Field, 0, len(c.fields)+len(fields)), c.fields...), fields...)
	}
	return target.Write(e, fields)
}

func (c *core) Sync() error {
	mutex.RLock()
	defer mutex.RUnlock()
	return root.Sync()
}

// SetLevel changes the level of every logger, including existing ones
func SetLevel(name string) error {
	if name == "" {
		name = "info"
	}
	var l zapcore.Level
	if err := l.UnmarshalText([]byte(strings.ToLower(name))); err != nil {
		return errors.Wrapf(err, "invalid log level %q", name)
	}
	level.SetLevel(l)
	return nil
}

// MustGetLogger returns a logger named after a module
func MustGetLogger(name string) *Logger {
	l := zap.New(&core{},
		zap.AddCaller(),
		zap.AddCallerSkip(1),
		zap.AddStacktrace(zapcore.ErrorLevel),
	)
	return &Logger{s: l.Named(name).Sugar()}
}

// Logger wraps a zap.SugaredLogger. Methods without a suffix join their
// arguments with spaces.
type Logger struct{ s *zap.SugaredLogger }

func (l *Logger) Debug(args ...interface{})                   { l.s.Debug(formatArgs(args)) }
func (l *Logger) Debugf(template string, args ...interface{}) { l.s.Debugf(template, args...) }
func (l *Logger) Debugw(msg string, kvPairs ...interface{})   { l.s.Debugw(msg, kvPairs...) }
func (l *Logger) Info(args ...interface{})                    { l.s.Info(formatArgs(args)) }
func (l *Logger) Infof(template string, args ...interface{})  { l.s.Infof(template, args...) }
func (l *Logger) Infow(msg string, kvPairs ...interface{})    { l.s.Infow(msg, kvPairs...) }
func (l *Logger) Warn(args ...interface{})                    { l.s.Warn(formatArgs(args)) }
func (l *Logger) Warnf(template string, args ...interface{})  { l.s.Warnf(template, args...) }
func (l *Logger) Warnw(msg string, kvPairs ...interface{})    { l.s.Warnw(msg, kvPairs...) }
func (l *Logger) Error(args ...interface{})                   { l.s.Error(formatArgs(args)) }
func (l *Logger) Errorf(template string, args ...interface{}) { l.s.Errorf(template, args...) }
func (l *Logger) Errorw(msg string, kvPairs ...interface{})   { l.s.Errorw(msg, kvPairs...) }

func (l *Logger) With(args ...interface{}) *Logger { return &Logger{s: l.s.With(args...)} }
func (l *Logger) Named(name string) *Logger        { return &Logger{s: l.s.Named(name)} }
func (l *Logger) Sync() error                      { return l.s.Sync() }
func (l *Logger) Zap() *zap.Logger                 { return l.s.Desugar() }

func (l *Logger) IsEnabledFor(lvl zapcore.Level) bool {
	return level.Enabled(lvl)
}

func formatArgs(args []interface{}) string { return strings.TrimSuffix(fmt.Sprintln(args...), "\n") }
