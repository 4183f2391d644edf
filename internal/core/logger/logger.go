package logger

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Logger interface {
	Info(msg string, fields ...zap.Field)
	Error(msg string, fields ...zap.Field)
	Debug(msg string, fields ...zap.Field)
	Warn(msg string, fields ...zap.Field)
}

type Field = zap.Field

// Config controls where log lines go. An empty Dir writes to stdout/stderr.
type Config struct {
	Dir   string
	Level string
}

func StringField(key, value string) Field { return zap.String(key, value) }

func ErrorField(key string, err error) Field { return zap.NamedError(key, err) }

func AnyField(key string, value interface{}) Field { return zap.Any(key, value) }

func Int64Field(key string, value int64) Field { return zap.Int64(key, value) }

func IntField(key string, value int) Field { return zap.Int(key, value) }

func NewLogger(cfg Config) (*zap.Logger, func(), error) {
	minLevel := zapcore.InfoLevel
	if cfg.Level != "" {
		if err := minLevel.Set(cfg.Level); err != nil {
			return nil, nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
		}
	}

	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "timestamp",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		MessageKey:     "message",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.SecondsDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	var infoSink, errorSink zapcore.WriteSyncer
	var files []*os.File

	if cfg.Dir == "" {
		infoSink = zapcore.Lock(os.Stdout)
		errorSink = zapcore.Lock(os.Stderr)
	} else {
		if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
			return nil, nil, fmt.Errorf("create log dir: %w", err)
		}
		infoFile, err := os.OpenFile(filepath.Join(cfg.Dir, "info.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o666)
		if err != nil {
			return nil, nil, fmt.Errorf("open info log file: %w", err)
		}
		errorFile, err := os.OpenFile(filepath.Join(cfg.Dir, "error.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o666)
		if err != nil {
			infoFile.Close()
			return nil, nil, fmt.Errorf("open error log file: %w", err)
		}
		files = append(files, infoFile, errorFile)
		infoSink = zapcore.AddSync(infoFile)
		errorSink = zapcore.AddSync(errorFile)
	}

	infoCore := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig),
		infoSink,
		zap.LevelEnablerFunc(func(lvl zapcore.Level) bool {
			return lvl >= minLevel && lvl <= zapcore.InfoLevel
		}),
	)

	errorCore := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig),
		errorSink,
		zap.LevelEnablerFunc(func(lvl zapcore.Level) bool {
			return lvl >= minLevel && lvl >= zapcore.WarnLevel
		}),
	)

	log := zap.New(zapcore.NewTee(infoCore, errorCore), zap.AddCaller())

	cleanup := func() {
		_ = log.Sync()
		for _, f := range files {
			f.Close()
		}
	}

	return log, cleanup, nil
}
