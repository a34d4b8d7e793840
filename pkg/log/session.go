package log

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// separatorLine marks a session boundary in the daily log file. Readers must
// filter it out; it is not a structured event.
const separatorLine = `{"separator":"---"}`

// Session writes structured JSON-lines events for one CLI invocation to a
// per-day log file. All events carry the session id so a day's file can be
// split back into invocations.
type Session struct {
	ID string

	mu      sync.Mutex
	file    *os.File
	logger  zerolog.Logger
	started time.Time
	counts  map[Level]int
}

// NewSession opens (or creates) today's log file under dir and starts a new
// session in it, writing the separator line first.
func NewSession(dir string) (*Session, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	name := fmt.Sprintf("deploy-%s.log", time.Now().Format("2006-01-02"))
	path := filepath.Join(dir, name)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	if _, err := f.WriteString(separatorLine + "\n"); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write session separator: %w", err)
	}

	id := uuid.New().String()
	return &Session{
		ID:      id,
		file:    f,
		logger:  zerolog.New(f).With().Timestamp().Str("session_id", id).Logger(),
		started: time.Now(),
		counts:  make(map[Level]int),
	}, nil
}

// Event writes one structured event to the session file.
func (s *Session) Event(level Level, eventType, msg string, fields map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counts[level]++

	var ev *zerolog.Event
	switch level {
	case DebugLevel:
		ev = s.logger.Debug()
	case WarnLevel:
		ev = s.logger.Warn()
	case ErrorLevel:
		ev = s.logger.Error()
	default:
		ev = s.logger.Info()
	}
	if eventType != "" {
		ev = ev.Str("event_type", eventType)
	}
	for k, v := range fields {
		ev = ev.Str(k, v)
	}
	ev.Msg(msg)
}

// Info writes an info-level session event.
func (s *Session) Info(eventType, msg string) {
	s.Event(InfoLevel, eventType, msg, nil)
}

// Error writes an error-level session event carrying the error text.
func (s *Session) Error(eventType, msg string, err error) {
	fields := map[string]string{}
	if err != nil {
		fields["error"] = err.Error()
	}
	s.Event(ErrorLevel, eventType, msg, fields)
}

// Close writes the session summary event and closes the file.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ev := s.logger.Info().
		Str("event_type", "session_summary").
		Dur("duration", time.Since(s.started))
	for level, n := range s.counts {
		ev = ev.Int(string(level)+"_count", n)
	}
	ev.Msg("session complete")

	return s.file.Close()
}

// ReadSessionLines reads a daily log file back as structured records,
// filtering out session separator lines.
func ReadSessionLines(path string) ([]map[string]interface{}, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	defer f.Close()

	var records []map[string]interface{}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var record map[string]interface{}
		if err := json.Unmarshal(line, &record); err != nil {
			return nil, fmt.Errorf("malformed log line: %w", err)
		}
		if _, ok := record["separator"]; ok {
			continue
		}
		records = append(records, record)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return records, nil
}
