package auth

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/julianstephens/habitual/internal/logger"
)

// FileSource reads the session token from a file written by an external
// sign-in flow and watches it for changes.
type FileSource struct {
	path string
	now  func() time.Time
}

func NewFileSource(path string) *FileSource {
	return &FileSource{path: filepath.Clean(path), now: time.Now}
}

// Path returns the watched token file.
func (f *FileSource) Path() string {
	return f.path
}

// Token returns the file's current contents. A missing file is ErrNotFound.
func (f *FileSource) Token() (string, error) {
	b, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("failed to read token file: %w", err)
	}
	tok := strings.TrimSpace(string(b))
	if tok == "" {
		return "", ErrNotFound
	}
	return tok, nil
}

func (f *FileSource) current() Event {
	tok, err := f.Token()
	if err != nil {
		return Event{}
	}
	return eventFor(tok, f.now())
}

// Watch emits the current identity, then a new event each time the token
// file changes identity. The channel closes when ctx is done.
func (f *FileSource) Watch(ctx context.Context) (<-chan Event, error) {
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("auth: ensure token dir: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("auth: create watcher: %w", err)
	}
	// Watch the directory so that atomic replace and delete+create are seen
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("auth: watch %s: %w", dir, err)
	}

	events := make(chan Event, 4)
	log := logger.Auth()

	go func() {
		defer close(events)
		defer watcher.Close()

		last := f.current()
		select {
		case events <- last:
		case <-ctx.Done():
			return
		}

		for {
			select {
			case <-ctx.Done():
				return
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Warn("token watcher error", "err", err)
			case evt, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(evt.Name) != f.path {
					continue
				}
				next := f.current()
				if next == last {
					continue
				}
				last = next
				log.Debug("token file changed", "op", evt.Op.String(), "signed_out", next.SignedOut())
				select {
				case events <- next:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return events, nil
}
