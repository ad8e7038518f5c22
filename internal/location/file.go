package location

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/time/rate"

	"github.com/julianstephens/automute/internal/logger"
)

// FileSource watches a file the location provider rewrites with its latest
// fix. The last non-empty line is the current sample.
type FileSource struct {
	path    string
	limiter *rate.Limiter
}

func NewFileSource(path string, minInterval time.Duration) *FileSource {
	return &FileSource{path: filepath.Clean(path), limiter: newLimiter(minInterval)}
}

// Run watches the file's directory so atomic replacements are seen too.
func (s *FileSource) Run(ctx context.Context, h Handler) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(s.path)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(s.path), err)
	}
	logger.Debug("Watching location file", "path", s.path)

	if err := s.read(ctx, h); err != nil {
		return nil
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != s.path || !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if err := s.read(ctx, h); err != nil {
				return nil
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Location file watcher error", "error", err)
		}
	}
}

func (s *FileSource) read(ctx context.Context, h Handler) error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warn("Failed to read location file", "path", s.path, "error", err)
		}
		return nil
	}
	line := lastLine(data)
	if len(line) == 0 {
		return nil
	}
	return deliver(ctx, s.limiter, line, h)
}

func lastLine(data []byte) []byte {
	lines := bytes.Split(bytes.TrimSpace(data), []byte("\n"))
	for i := len(lines) - 1; i >= 0; i-- {
		if l := bytes.TrimSpace(lines[i]); len(l) > 0 {
			return l
		}
	}
	return nil
}
