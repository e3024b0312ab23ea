package cli

import (
	"context"
	"os"

	"golang.org/x/term"

	"github.com/aretw0/canopy/internal/presentation/tui"
	"github.com/aretw0/canopy/pkg/adapters/file"
	"github.com/aretw0/canopy/pkg/picker"
)

// PickOptions configures an interactive picker run.
type PickOptions struct {
	Engine    EngineOptions
	SessionID string
	StorePath string
	JSONMode  bool
}

// RunPick executes one interactive picker session and prints the result.
func RunPick(opts PickOptions) error {
	logger := createLogger(opts.Engine.Debug)
	interactive := !opts.JSONMode && term.IsTerminal(int(os.Stdout.Fd()))

	if interactive {
		tui.PrintBanner()
	}

	sigCtx := NewSignalContext(context.Background())
	defer sigCtx.Cancel()

	eng, err := BuildEngine(sigCtx, opts.Engine)
	if err != nil {
		return err
	}

	pickerOpts := []picker.Option{
		picker.WithLogger(logger),
	}
	if opts.JSONMode {
		pickerOpts = append(pickerOpts, picker.WithHandler(picker.NewJSONHandler(nil, nil)))
	}
	if opts.SessionID != "" {
		pickerOpts = append(pickerOpts,
			picker.WithStore(file.NewStore(opts.StorePath)),
			picker.WithSessionID(opts.SessionID),
		)
		logger.Info("Session active", "session_id", opts.SessionID)
	}
	if interactive {
		pickerOpts = append(pickerOpts, picker.WithRenderer(tui.NewRenderer()))
	}

	sel, err := picker.New(eng, pickerOpts...).Run(sigCtx)
	if err != nil {
		if sigCtx.Signal() != nil {
			printSystemMessage("Interrupted (%v), selection discarded.", sigCtx.Signal())
			return nil
		}
		return err
	}

	if opts.JSONMode {
		// Frames already carry the final state; keep stdout valid NDJSON.
		return nil
	}
	if sel.IsEmpty() {
		printSystemMessage("Nothing selected.")
		return nil
	}
	printSystemMessage("Selected: %s", eng.SelectedLabel(sel))
	printSystemMessage("IDs: %v", sel.IDs)
	return nil
}
