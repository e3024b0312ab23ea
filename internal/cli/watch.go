package cli

import (
	"context"
	"fmt"

	"github.com/aretw0/canopy/pkg/adapters/file"
	"github.com/aretw0/canopy/pkg/domain"
)

// RunWatch validates the tree document and revalidates on every change.
// Intended for authoring: keep it running next to your editor.
func RunWatch(treePath string) error {
	sigCtx := NewSignalContext(context.Background())
	defer sigCtx.Cancel()

	loader := file.NewLoader(treePath)

	check := func() {
		nodes, err := loader.Load(sigCtx)
		if err != nil {
			printSystemMessage("Invalid: %v", err)
			return
		}
		total := 0
		domain.Walk(nodes, func(_ *domain.OptionNode, _ *domain.OptionNode, _ int) bool {
			total++
			return true
		})
		printSystemMessage("Valid: %d roots, %d nodes, mode=%s", len(nodes), total, displayMode(loader))
	}

	check()

	events, err := loader.Watch(sigCtx)
	if err != nil {
		return fmt.Errorf("failed to watch %s: %w", treePath, err)
	}

	printSystemMessage("Watching %s for changes (Ctrl+C to stop)...", treePath)
	for {
		select {
		case <-sigCtx.Done():
			return nil
		case _, ok := <-events:
			if !ok {
				return nil
			}
			check()
		}
	}
}

func displayMode(loader *file.Loader) string {
	if loader.Mode() == "" {
		return "multiple"
	}
	return string(loader.Mode())
}
