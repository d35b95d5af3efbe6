// Package logging configures the shared logrus instance: a custom line
// format, debug-level switching, and optional rotating file output.
package logging

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/maguard-dev/maguard/internal/config"
	log "github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	setupOnce sync.Once
	writerMu  sync.Mutex
	logWriter *lumberjack.Logger
)

// LogFormatter renders a single log entry with timestamp, level, and source
// location.
// Format: [2026-08-28 20:14:04] [debug] [login.go:97] steamweb login: status=200
type LogFormatter struct{}

// logFieldOrder defines the display order for common log fields.
var logFieldOrder = []string{"account", "op", "status", "error"}

// Format implements logrus.Formatter.
func (m *LogFormatter) Format(entry *log.Entry) ([]byte, error) {
	var buffer *bytes.Buffer
	if entry.Buffer != nil {
		buffer = entry.Buffer
	} else {
		buffer = &bytes.Buffer{}
	}

	timestamp := entry.Time.Format("2006-01-02 15:04:05")
	message := strings.TrimRight(entry.Message, "\r\n")

	level := entry.Level.String()
	if level == "warning" {
		level = "warn"
	}
	levelStr := fmt.Sprintf("%-5s", level)

	var fieldsStr string
	if len(entry.Data) > 0 {
		var fields []string
		for _, k := range logFieldOrder {
			if v, ok := entry.Data[k]; ok {
				fields = append(fields, fmt.Sprintf("%s=%v", k, v))
			}
		}
		if len(fields) > 0 {
			fieldsStr = " " + strings.Join(fields, " ")
		}
	}

	var formatted string
	if entry.Caller != nil {
		formatted = fmt.Sprintf("[%s] [%s] [%s:%d] %s%s\n", timestamp, levelStr, filepath.Base(entry.Caller.File), entry.Caller.Line, message, fieldsStr)
	} else {
		formatted = fmt.Sprintf("[%s] [%s] %s%s\n", timestamp, levelStr, message, fieldsStr)
	}
	buffer.WriteString(formatted)

	return buffer.Bytes(), nil
}

// SetupBaseLogger configures the shared logrus instance. It is safe to call
// multiple times; initialization happens only once.
func SetupBaseLogger() {
	setupOnce.Do(func() {
		log.SetOutput(os.Stdout)
		log.SetReportCaller(true)
		log.SetFormatter(&LogFormatter{})
		log.RegisterExitHandler(closeLogOutput)
	})
}

// ConfigureLogOutput applies the configured log level and switches the global
// log destination between rotating files and stdout.
func ConfigureLogOutput(cfg *config.Config) error {
	SetupBaseLogger()

	if cfg.Debug {
		log.SetLevel(log.TraceLevel)
	} else {
		log.SetLevel(log.InfoLevel)
	}

	writerMu.Lock()
	defer writerMu.Unlock()

	if cfg.LoggingToFile {
		logDir := cfg.LogDir
		if logDir == "" {
			logDir = filepath.Join(cfg.AuthDir, "logs")
		}
		if err := os.MkdirAll(logDir, 0o755); err != nil {
			return fmt.Errorf("logging: create log directory failed: %w", err)
		}
		if logWriter != nil {
			_ = logWriter.Close()
		}
		logWriter = &lumberjack.Logger{
			Filename:   filepath.Join(logDir, "maguard.log"),
			MaxSize:    10,
			MaxBackups: 3,
		}
		log.SetOutput(logWriter)
	} else {
		if logWriter != nil {
			_ = logWriter.Close()
			logWriter = nil
		}
		log.SetOutput(os.Stdout)
	}
	return nil
}

func closeLogOutput() {
	writerMu.Lock()
	defer writerMu.Unlock()

	if logWriter != nil {
		_ = logWriter.Close()
		logWriter = nil
	}
}
