package watcher

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/ritzau/codewarn/pkg/finder"
	"github.com/ritzau/codewarn/pkg/logging"
)

var log = logging.New("watcher")

// ChangeType represents the type of file change detected
type ChangeType int

const (
	ChangeTypeConfig ChangeType = iota
	ChangeTypeGraph
	ChangeTypeSource
)

func (t ChangeType) String() string {
	switch t {
	case ChangeTypeConfig:
		return "config"
	case ChangeTypeGraph:
		return "graph"
	case ChangeTypeSource:
		return "source"
	default:
		return fmt.Sprintf("ChangeType(%d)", int(t))
	}
}

// SourceExtensions are the files whose edits trigger a rescan.
var SourceExtensions = []string{
	".ts", ".tsx", ".mts", ".cts", ".js", ".jsx", ".mjs", ".cjs",
	".vue", ".svelte", ".astro",
}

// ChangeEvent represents file system changes of one type
type ChangeEvent struct {
	Type      ChangeType
	Paths     []string
	Timestamp time.Time
}

// Targets lists what a FileWatcher reports on.
type Targets struct {
	Project     string   // Watched recursively for source changes
	Graph       string   // The graph JSON, may live outside Project
	ConfigFiles []string // Config files by path
}

// FileWatcher watches a project for source, graph and config changes
type FileWatcher struct {
	watcher  *fsnotify.Watcher
	targets  Targets
	graph    string
	configs  map[string]bool
	isSource func(string) bool
	events   chan ChangeEvent
}

// NewFileWatcher creates a new file system watcher for a project
func NewFileWatcher(targets Targets) (*FileWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	fw := &FileWatcher{
		watcher:  watcher,
		targets:  targets,
		configs:  make(map[string]bool),
		isSource: finder.HasExtension(SourceExtensions...),
		events:   make(chan ChangeEvent, 100),
	}
	if targets.Graph != "" {
		fw.graph = absPath(targets.Graph)
	}
	for _, path := range targets.ConfigFiles {
		fw.configs[absPath(path)] = true
	}
	return fw, nil
}

func absPath(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}

// Start begins watching for file changes. The events channel is closed
// when ctx is done.
func (fw *FileWatcher) Start(ctx context.Context) error {
	count, err := fw.watchTree(fw.targets.Project)
	if err != nil {
		fw.watcher.Close()
		return err
	}

	// Files outside the project still need their directory watched
	extra := make(map[string]bool)
	if fw.graph != "" {
		extra[filepath.Dir(fw.graph)] = true
	}
	for path := range fw.configs {
		extra[filepath.Dir(path)] = true
	}
	for dir := range extra {
		if err := fw.watcher.Add(dir); err != nil {
			log.Warn("failed to watch directory", "path", dir, "error", err)
		}
	}

	log.Info("started watching project", "path", fw.targets.Project, "directories", count)

	go fw.processEvents(ctx)
	return nil
}

// watchTree adds root and every directory beneath it, skipping dependency
// and build output directories.
func (fw *FileWatcher) watchTree(root string) (int, error) {
	count := 0
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // Skip files we can't access
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && (finder.SkipDirs[d.Name()] || strings.HasPrefix(d.Name(), ".")) {
			return filepath.SkipDir
		}
		if err := fw.watcher.Add(path); err != nil {
			log.Warn("failed to watch directory", "path", path, "error", err)
			return nil
		}
		count++
		return nil
	})
	if err != nil {
		return count, fmt.Errorf("failed to walk project: %w", err)
	}
	return count, nil
}

// classify maps a path to its change type.
func (fw *FileWatcher) classify(path string) (ChangeType, bool) {
	abs := absPath(path)
	switch {
	case abs == fw.graph:
		return ChangeTypeGraph, true
	case fw.configs[abs]:
		return ChangeTypeConfig, true
	case fw.isSource(path):
		return ChangeTypeSource, true
	default:
		return 0, false
	}
}

// processEvents forwards relevant file system events
func (fw *FileWatcher) processEvents(ctx context.Context) {
	defer close(fw.events)
	defer fw.watcher.Close()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}

			if event.Has(fsnotify.Create) {
				fw.watchCreatedDir(event.Name)
			}
			if event.Op == fsnotify.Chmod {
				continue
			}

			changeType, ok := fw.classify(event.Name)
			if !ok {
				continue
			}
			log.Debug("file changed", "path", event.Name, "type", changeType.String(), "op", event.Op.String())

			select {
			case fw.events <- ChangeEvent{Type: changeType, Paths: []string{event.Name}, Timestamp: time.Now()}:
			case <-ctx.Done():
				return
			}

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			log.Error("watcher error", "error", err)
		}
	}
}

func (fw *FileWatcher) watchCreatedDir(path string) {
	rel, err := filepath.Rel(fw.targets.Project, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return
	}
	if info, err := os.Stat(path); err != nil || !info.IsDir() {
		return
	}
	if name := filepath.Base(path); finder.SkipDirs[name] || strings.HasPrefix(name, ".") {
		return
	}
	if _, err := fw.watchTree(path); err != nil {
		log.Warn("failed to watch new directory", "path", path, "error", err)
	}
}

// Events returns the channel of change events
func (fw *FileWatcher) Events() <-chan ChangeEvent {
	return fw.events
}
