// package session manages the per-run directory that holds log files.
package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/google/uuid"
)

const sessionMetaFile = "session.toml"

type sessionMeta struct {
	SessionID string    `toml:"session_id"`
	Timestamp time.Time `toml:"timestamp"`
	Assistant string    `toml:"assistant"`
}

type logHandler struct {
	f *os.File
	h slog.Handler
}

func newLogHandler(p string, opts *slog.HandlerOptions) (*logHandler, error) {
	f, err := os.OpenFile(p, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
	if err != nil {
		return nil, err
	}
	return &logHandler{
		f: f,
		h: slog.NewJSONHandler(f, opts),
	}, nil
}

func (h *logHandler) Close() error {
	return h.f.Close()
}

// Session is one run of the program. Transcripts are not stored here; only
// the logs of the run are.
type Session struct {
	meta        sessionMeta
	sessionPath string
	level       slog.Leveler

	handlers map[string]*logHandler
	files    map[string]*os.File
}

// New creates the run directory under the user cache dir, falling back to
// a temporary directory.
func New(assistant string, level slog.Leveler) (*Session, error) {
	sessionUUID, err := uuid.NewV7()
	if err != nil {
		return nil, err
	}
	s := &Session{
		meta: sessionMeta{
			SessionID: sessionUUID.String(),
			Timestamp: time.Now(),
			Assistant: assistant,
		},
		level:    level,
		handlers: map[string]*logHandler{},
		files:    map[string]*os.File{},
	}
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		log.Printf("Failed to obtain the user cache dir: %v", err)
		log.Printf("Falls back to the temporary directory...")
		tempDir, err := os.MkdirTemp("", "convo")
		if err != nil {
			return nil, err
		}
		s.sessionPath = tempDir
	} else {
		s.sessionPath = filepath.Join(cacheDir, "convo", "runs", s.meta.SessionID)
	}
	if err := s.init(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Session) init() error {
	if err := os.MkdirAll(s.logPath(), 0755); err != nil {
		return err
	}
	encodedMeta, err := toml.Marshal(s.meta)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(s.sessionPath, sessionMetaFile), encodedMeta, 0644)
}

func (s *Session) ID() string {
	return s.meta.SessionID
}

func (s *Session) Timestamp() time.Time {
	return s.meta.Timestamp
}

// Path returns the run directory.
func (s *Session) Path() string {
	return s.sessionPath
}

func (s *Session) logPath() string {
	return filepath.Join(s.sessionPath, "logs")
}

func validLogName(name string) error {
	if name == "" || strings.Contains(name, "/") || strings.Contains(name, string(filepath.Separator)) {
		return fmt.Errorf("malformed log name %q", name)
	}
	return nil
}

// NewLogHandler returns the JSON handler writing into <name>.jsonl.
func (s *Session) NewLogHandler(name string) (slog.Handler, error) {
	if h, ok := s.handlers[name]; ok {
		return h.h, nil
	}
	if err := validLogName(name); err != nil {
		return nil, err
	}
	pathName := name
	if !strings.Contains(name, ".") {
		pathName = name + ".jsonl"
	}
	h, err := newLogHandler(filepath.Join(s.logPath(), pathName), &slog.HandlerOptions{
		AddSource: true,
		Level:     s.level,
	})
	if err != nil {
		return nil, err
	}
	s.handlers[name] = h
	return h.h, nil
}

func (s *Session) GetLogger(name string) (*slog.Logger, error) {
	h, err := s.NewLogHandler(name)
	if err != nil {
		return nil, err
	}
	return slog.New(h), nil
}

// GetLogFile returns a raw log file, used for protocol traces.
func (s *Session) GetLogFile(name string) (*os.File, error) {
	if f, ok := s.files[name]; ok {
		return f, nil
	}
	if err := validLogName(name); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(filepath.Join(s.logPath(), name), os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
	if err != nil {
		return nil, err
	}
	s.files[name] = f
	return f, nil
}

func (s *Session) Close() error {
	var allerr error
	for name, h := range s.handlers {
		if err := h.Close(); err != nil {
			allerr = errors.Join(allerr, fmt.Errorf("failed to close %s: %w", name, err))
		}
	}
	for name, f := range s.files {
		if err := f.Close(); err != nil {
			allerr = errors.Join(allerr, fmt.Errorf("failed to close %s: %w", name, err))
		}
	}
	s.handlers = map[string]*logHandler{}
	s.files = map[string]*os.File{}
	return allerr
}

type sessionKey struct{}

func (s *Session) With(ctx context.Context) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

func FromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(sessionKey{}).(*Session)
	return s, ok
}

// LoggerFromContext returns the named logger of the session in ctx, or a
// logger discarding everything when ctx has no session.
func LoggerFromContext(ctx context.Context, name string) (*slog.Logger, error) {
	s, ok := FromContext(ctx)
	if !ok {
		return slog.New(slog.DiscardHandler), nil
	}
	return s.GetLogger(name)
}
