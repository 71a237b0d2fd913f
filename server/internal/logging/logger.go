package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/maasir554/fingertail/server/internal/config"
)

// Init builds the application logger: one rotating JSON file per level plus a
// colored console core.
func Init(projectRoot string, conf config.LoggingConfig) (*zap.Logger, error) {
	encoderConfig := zapcore.EncoderConfig{
		MessageKey:   "message",
		LevelKey:     "level",
		TimeKey:      "time",
		CallerKey:    "caller",
		EncodeLevel:  zapcore.CapitalLevelEncoder,
		EncodeTime:   zapcore.ISO8601TimeEncoder,
		EncodeCaller: zapcore.ShortCallerEncoder,
	}

	minLevel, err := zapcore.ParseLevel(conf.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", conf.Level, err)
	}

	logDir := conf.Directory
	if !filepath.IsAbs(logDir) {
		logDir = filepath.Join(projectRoot, logDir)
	}
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("could not create log directory: %w", err)
	}

	cores := make([]zapcore.Core, 0, 5)
	for _, level := range []zapcore.Level{zapcore.DebugLevel, zapcore.InfoLevel, zapcore.WarnLevel, zapcore.ErrorLevel} {
		if level < minLevel {
			continue
		}
		cores = append(cores, newFileCore(logDir, level, conf, encoderConfig))
	}
	cores = append(cores, newConsoleCore(minLevel))

	return zap.New(zapcore.NewTee(cores...), zap.AddCaller()), nil
}

// NewConsoleLogger is used before the configuration is loaded.
func NewConsoleLogger() *zap.Logger {
	return zap.New(newConsoleCore(zapcore.InfoLevel), zap.AddCaller())
}

// newFileCore creates a core that writes a specific log level to a rotating file.
func newFileCore(logDir string, level zapcore.Level, conf config.LoggingConfig, encoderConfig zapcore.EncoderConfig) zapcore.Core {
	// Named like '2025-07-30-info.log'
	fileName := filepath.Join(logDir, fmt.Sprintf("%s-%s.log", time.Now().Format("2006-01-02"), level.String()))

	writer := zapcore.AddSync(&lumberjack.Logger{
		Filename:   fileName,
		MaxSize:    conf.MaxSize, // megabytes
		MaxBackups: conf.MaxBackups,
		MaxAge:     conf.MaxAge, // days
		Compress:   conf.Compress,
	})

	// Only entries of exactly this level land in this file.
	levelEnabler := zap.LevelEnablerFunc(func(l zapcore.Level) bool {
		return l == level
	})

	return zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig),
		writer,
		levelEnabler,
	)
}

// newConsoleCore creates a core that writes to the console.
func newConsoleCore(minLevel zapcore.Level) zapcore.Core {
	levelEnabler := zap.LevelEnablerFunc(func(l zapcore.Level) bool {
		return l >= minLevel
	})

	consoleEncoderConfig := zap.NewDevelopmentEncoderConfig()
	consoleEncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder

	return zapcore.NewCore(
		zapcore.NewConsoleEncoder(consoleEncoderConfig),
		zapcore.AddSync(os.Stdout),
		levelEnabler,
	)
}
