// Package file provides a ports.TreeLoader backed by a YAML or JSON tree
// document on disk, with optional change notification for hot-reload.
package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/aretw0/canopy/internal/compiler"
	"github.com/aretw0/canopy/internal/validator"
	"github.com/aretw0/canopy/pkg/domain"
)

// Loader reads an option tree definition from a single document on disk.
type Loader struct {
	path   string
	parser *compiler.Parser
	mode   domain.SelectionMode
}

// NewLoader creates a loader for the given tree document path.
func NewLoader(path string) *Loader {
	return &Loader{
		path:   path,
		parser: compiler.NewParser(),
	}
}

// Load reads and parses the tree document, returning its root-level nodes.
// The document's tree-wide mode is retained and available via Mode.
func (l *Loader) Load(ctx context.Context) ([]domain.OptionNode, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read tree document %s: %w", l.path, err)
	}

	def, err := l.parser.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", l.path, err)
	}
	if err := validator.ValidateTree(def.Options); err != nil {
		return nil, fmt.Errorf("invalid tree in %s: %w", l.path, err)
	}

	l.mode = def.Mode
	return def.Options, nil
}

// Mode returns the tree-wide selection mode declared by the last loaded
// document. Empty until Load succeeds, and empty when the document declares
// no mode (the core then defaults to multiple).
func (l *Loader) Mode() domain.SelectionMode {
	return l.mode
}

// Watch implements ports.Watchable. It signals whenever the tree document
// changes on disk. The directory is watched rather than the file itself
// because editors typically replace files via rename, which drops a watch
// registered on the inode.
func (l *Loader) Watch(ctx context.Context) (<-chan struct{}, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	dir := filepath.Dir(l.path)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	target := filepath.Clean(l.path)
	out := make(chan struct{}, 1)

	go func() {
		defer watcher.Close()
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != target {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				// Coalesce bursts; a pending signal already implies a reload.
				select {
				case out <- struct{}{}:
				default:
				}
			case _, ok := <-watcher.Errors:
				if !ok {
					return
				}
			}
		}
	}()

	return out, nil
}
