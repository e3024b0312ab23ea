package cli

import (
	"context"
	"fmt"

	canopy "github.com/aretw0/canopy"
	"github.com/aretw0/canopy/pkg/adapters/file"
	"github.com/aretw0/canopy/pkg/domain"
)

// EngineOptions controls how the CLI builds the selection engine.
type EngineOptions struct {
	TreePath string
	Mode     string // Overrides the document's tree-wide mode when set
	Summary  string // "join" or "count"
	Debug    bool
}

// BuildEngine loads the tree document and constructs the engine, resolving
// the selection mode (flag wins over document, document wins over default).
func BuildEngine(ctx context.Context, opts EngineOptions) (*canopy.Engine, error) {
	loader := file.NewLoader(opts.TreePath)

	// Prime the loader so the document's declared mode is known.
	if _, err := loader.Load(ctx); err != nil {
		return nil, err
	}

	mode := domain.SelectionMode(opts.Mode)
	if !mode.Valid() {
		return nil, fmt.Errorf("unknown selection mode %q", opts.Mode)
	}
	if mode == domain.ModeInherit {
		mode = loader.Mode()
	}

	logger := createLogger(opts.Debug)

	engineOpts := []canopy.Option{}
	if mode != domain.ModeInherit {
		engineOpts = append(engineOpts, canopy.WithMode(mode))
	}
	if opts.Summary == "count" {
		engineOpts = append(engineOpts, canopy.WithSummary(canopy.SummaryCount))
	}
	if opts.Debug {
		engineOpts = append(engineOpts, canopy.WithLogger(logger))
		engineOpts = append(engineOpts, canopy.WithLifecycleHooks(createDebugHooks(logger)))
	}

	eng, err := canopy.NewFromLoader(ctx, loader, engineOpts...)
	if err != nil {
		return nil, fmt.Errorf("error initializing canopy: %w", err)
	}
	return eng, nil
}
