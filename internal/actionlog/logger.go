// Package actionlog records desktop mutations to a size-rotated file.
package actionlog

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// Level defines the logging verbosity.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// ActionType names a logged engine action.
type ActionType string

const (
	ActionEnumerate    ActionType = "ENUMERATE"
	ActionReposition   ActionType = "REPOSITION"
	ActionBatch        ActionType = "BATCH"
	ActionFlags        ActionType = "FLAGS"
	ActionSessionOpen  ActionType = "SESSION-OPEN"
	ActionSessionClose ActionType = "SESSION-CLOSE"
)

// actionLevel returns the level an action is logged at when it succeeds.
func actionLevel(action ActionType) Level {
	switch action {
	case ActionEnumerate:
		return LevelDebug
	default:
		return LevelInfo
	}
}

// Config holds configuration for the action logger.
type Config struct {
	Enabled   bool
	Level     Level
	FilePath  string
	MaxSizeMB int
	MaxFiles  int
}

// Logger appends one line per action and rotates by size.
// A nil *Logger discards everything.
type Logger struct {
	mu          sync.Mutex
	file        *os.File
	config      Config
	currentSize int64
	now         func() time.Time
}

// New opens (or creates) the log file. A disabled config yields a no-op logger.
func New(cfg Config) (*Logger, error) {
	l := &Logger{config: cfg, now: time.Now}
	if !cfg.Enabled {
		return l, nil
	}
	if strings.TrimSpace(cfg.FilePath) == "" {
		return nil, fmt.Errorf("action log enabled without a file path")
	}

	dir := filepath.Dir(cfg.FilePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory %s: %w", dir, err)
	}

	f, err := os.OpenFile(cfg.FilePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file %s: %w", cfg.FilePath, err)
	}
	stat, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to stat log file: %w", err)
	}

	l.file = f
	l.currentSize = stat.Size()
	return l, nil
}

// Log records an action for a session. A non-nil err raises the entry to
// warn level and is written as error=.
func (l *Logger) Log(action ActionType, session string, err error, details map[string]any) {
	if l == nil || !l.config.Enabled {
		return
	}

	level := actionLevel(action)
	if err != nil {
		level = LevelWarn
	}
	if level < l.config.Level {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file == nil {
		return
	}

	if maxBytes := int64(l.config.MaxSizeMB) * 1024 * 1024; maxBytes > 0 && l.currentSize >= maxBytes {
		if rerr := l.rotate(); rerr != nil {
			fmt.Fprintf(os.Stderr, "action log rotation failed: %v\n", rerr)
		}
		if l.file == nil {
			return
		}
	}

	n, werr := l.file.WriteString(formatEntry(l.now(), action, session, err, details))
	if werr != nil {
		fmt.Fprintf(os.Stderr, "failed to write action log entry: %v\n", werr)
		return
	}
	l.currentSize += int64(n)
}

func formatEntry(ts time.Time, action ActionType, session string, err error, details map[string]any) string {
	var sb strings.Builder
	sb.WriteString(ts.Format("2006-01-02 15:04:05"))
	sb.WriteString(" [")
	sb.WriteString(string(action))
	sb.WriteString("]")

	if session != "" {
		sb.WriteString(" session=")
		sb.WriteString(session)
	}

	keys := make([]string, 0, len(details))
	for k := range details {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		switch val := details[k].(type) {
		case string:
			fmt.Fprintf(&sb, " %s=%q", k, val)
		default:
			fmt.Fprintf(&sb, " %s=%v", k, val)
		}
	}
	if err != nil {
		fmt.Fprintf(&sb, " error=%q", err.Error())
	}

	sb.WriteString("\n")
	return sb.String()
}

// Close closes the log file.
func (l *Logger) Close() error {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}

// rotate shifts deskctl.log -> .1 -> .2 ... keeping MaxFiles rotated files.
func (l *Logger) rotate() error {
	if l.file != nil {
		l.file.Close()
		l.file = nil
	}

	base := l.config.FilePath
	for i := l.config.MaxFiles; i >= 1; i-- {
		older := fmt.Sprintf("%s.%d", base, i)
		if i == l.config.MaxFiles {
			os.Remove(older)
			continue
		}
		os.Rename(older, fmt.Sprintf("%s.%d", base, i+1))
	}

	if l.config.MaxFiles > 0 {
		if err := os.Rename(base, base+".1"); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to rotate log file: %w", err)
		}
	} else if err := os.Truncate(base, 0); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to truncate log file: %w", err)
	}

	f, err := os.OpenFile(base, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("failed to open new log file: %w", err)
	}
	l.file = f
	l.currentSize = 0
	return nil
}

// ParseLevel converts a string to Level, defaulting to info.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}
