// Package feedback appends user feedback on retrieved answers to a CSV log
// for later relevance analysis.
package feedback

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/supportkb/supportkb/internal/knowledge"
)

var header = []string{
	"timestamp", "query", "source_id", "category", "tags",
	"rank", "action", "rating", "comment",
}

// Entry is one feedback event about a single retrieved source.
type Entry struct {
	Query   string
	Source  knowledge.SearchResult
	Action  string
	Rating  *int
	Comment string
}

// Logger appends feedback rows to a CSV file, creating the file and its
// directory with a header row on first use. Safe for concurrent use within
// one process.
type Logger struct {
	mu   sync.Mutex
	path string
	now  func() time.Time
}

// NewLogger creates a feedback logger writing to path.
func NewLogger(path string) *Logger {
	return &Logger{path: path, now: time.Now}
}

// Log appends one feedback row.
func (l *Logger) Log(entry Entry) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.ensureFile(); err != nil {
		return err
	}

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening feedback log: %w", err)
	}
	defer f.Close()

	rating := ""
	if entry.Rating != nil {
		rating = strconv.Itoa(*entry.Rating)
	}

	w := csv.NewWriter(f)
	if err := w.Write([]string{
		l.now().UTC().Format(time.RFC3339),
		entry.Query,
		strconv.FormatInt(entry.Source.ID, 10),
		entry.Source.Category,
		strings.Join(entry.Source.Tags, ","),
		strconv.FormatFloat(entry.Source.Rank, 'f', 6, 64),
		entry.Action,
		rating,
		strings.TrimSpace(entry.Comment),
	}); err != nil {
		return fmt.Errorf("writing feedback row: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flushing feedback row: %w", err)
	}
	return nil
}

// ensureFile creates the log directory and writes the header row if the file
// does not exist yet.
func (l *Logger) ensureFile() error {
	if _, err := os.Stat(l.path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("checking feedback log: %w", err)
	}

	if dir := filepath.Dir(l.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating feedback log dir: %w", err)
		}
	}

	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return nil
		}
		return fmt.Errorf("creating feedback log: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("writing feedback header: %w", err)
	}
	w.Flush()
	return w.Error()
}
