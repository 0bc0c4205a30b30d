package service

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/NUVersee/AdmissionOfficer-Chatbot/pkg/config"

	"go.uber.org/zap"
	"gopkg.in/natefinch/lumberjack.v2"
)

// resultRecord is the answer log schema, one JSON object per line.
type resultRecord struct {
	Query     string    `json:"query"`
	Answer    string    `json:"answer"`
	Sources   []string  `json:"sources"`
	Timestamp time.Time `json:"timestamp"`
}

// ResultLogger appends every answered question to a rotating JSONL file.
// Write failures are logged and swallowed; answering the student never
// depends on the audit trail.
type ResultLogger struct {
	mu     sync.Mutex
	sink   *lumberjack.Logger
	logger *zap.Logger
}

// NewResultLogger returns a disabled logger when cfg.File is empty.
func NewResultLogger(cfg *config.ResultsConfig, logger *zap.Logger) *ResultLogger {
	rl := &ResultLogger{logger: logger}
	if cfg.File == "" {
		return rl
	}

	rl.sink = &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   true,
	}
	return rl
}

// Save appends one record. It never returns an error.
func (l *ResultLogger) Save(query, answer string, sources []string, ts time.Time) {
	if l.sink == nil {
		return
	}

	if sources == nil {
		sources = []string{}
	}

	line, err := json.Marshal(resultRecord{
		Query:     query,
		Answer:    answer,
		Sources:   sources,
		Timestamp: ts,
	})
	if err != nil {
		l.logger.Error("failed to marshal result record", zap.Error(err))
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if _, err := l.sink.Write(append(line, '\n')); err != nil {
		l.logger.Error("failed to write result record", zap.Error(err))
	}
}

func (l *ResultLogger) Close() error {
	if l.sink == nil {
		return nil
	}
	return l.sink.Close()
}
