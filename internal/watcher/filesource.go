package watcher

import (
	"errors"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/goliatone/go-crossref/internal/logging"
	"github.com/goliatone/go-crossref/pkg/interfaces"
)

// FileFilter decides whether a changed path should trigger re-validation.
type FileFilter func(path string) bool

// MarkdownFilter accepts markdown sources.
func MarkdownFilter(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		return true
	}
	return false
}

// NoHiddenFilter rejects dotfiles and paths under hidden directories.
func NoHiddenFilter(path string) bool {
	for _, segment := range strings.Split(filepath.ToSlash(path), "/") {
		if strings.HasPrefix(segment, ".") && segment != "." && segment != ".." {
			return false
		}
	}
	return true
}

// FileSource bridges file-system change notifications into watcher triggers.
// Every accepted write or create event becomes a Trigger call on the target.
type FileSource struct {
	fsw     *fsnotify.Watcher
	target  *Watcher
	filters []FileFilter
	logger  interfaces.Logger
	stop    chan struct{}
	done    chan struct{}
}

// NewFileSource starts feeding file-system events into target. Close releases
// the underlying notifier.
func NewFileSource(target *Watcher, logger interfaces.Logger, filters ...FileFilter) (*FileSource, error) {
	if target == nil {
		return nil, errors.New("watcher: file source requires a target watcher")
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logging.NoOp()
	}

	source := &FileSource{
		fsw:     fsw,
		target:  target,
		filters: filters,
		logger:  logger,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	go source.loop()
	return source, nil
}

// Add watches a single file or directory.
func (s *FileSource) Add(path string) error {
	return s.fsw.Add(filepath.Clean(path))
}

// AddRecursive watches root and every directory below it.
func (s *FileSource) AddRecursive(root string) error {
	return filepath.WalkDir(filepath.Clean(root), func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			return s.fsw.Add(path)
		}
		return nil
	})
}

// Close stops the feed and releases the notifier.
func (s *FileSource) Close() error {
	close(s.stop)
	err := s.fsw.Close()
	<-s.done
	return err
}

func (s *FileSource) loop() {
	defer close(s.done)
	for {
		select {
		case <-s.stop:
			return
		case event, ok := <-s.fsw.Events:
			if !ok {
				return
			}
			s.handle(event)
		case err, ok := <-s.fsw.Errors:
			if !ok {
				return
			}
			s.logger.Warn("watcher.filesystem_error", "error", err)
		}
	}
}

func (s *FileSource) handle(event fsnotify.Event) {
	if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
		return
	}
	for _, filter := range s.filters {
		if !filter(event.Name) {
			return
		}
	}
	if err := s.target.Trigger(event.Name); err != nil {
		s.logger.Debug("watcher.trigger_skipped", "error", err)
	}
}
