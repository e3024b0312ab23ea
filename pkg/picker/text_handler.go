package picker

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/muesli/termenv"
)

// TextHandler implements the standard text-based interface.
type TextHandler struct {
	Reader *bufio.Reader
	Writer io.Writer

	profile termenv.Profile
}

// NewTextHandler creates a handler for standard text IO.
func NewTextHandler(r io.Reader, w io.Writer) *TextHandler {
	if r == nil {
		r = os.Stdin
	}
	if w == nil {
		w = os.Stdout
	}
	return &TextHandler{
		Reader:  bufio.NewReader(r),
		Writer:  w,
		profile: termenv.ColorProfile(),
	}
}

// Output renders the tree frame: summary line, active search term and the
// indexed rows with their tri-state checkboxes.
func (h *TextHandler) Output(ctx context.Context, view View) error {
	fmt.Fprintln(h.Writer)
	if view.Summary != "" {
		fmt.Fprintf(h.Writer, "Selected: %s\n", view.Summary)
	} else {
		fmt.Fprintln(h.Writer, "Selected: (none)")
	}
	if view.Term != "" {
		fmt.Fprintf(h.Writer, "Filter: /%s\n", view.Term)
	}

	for _, row := range view.Rows {
		indent := strings.Repeat("  ", row.Depth)
		branch := " "
		if row.HasChildren {
			branch = "-"
			if row.Collapsed {
				branch = "+"
			}
		}
		fmt.Fprintf(h.Writer, "%3d. %s%s [%s] %s\n", row.Index, indent, branch, h.checkbox(row), row.Label)
	}
	return nil
}

// checkbox formats the tri-state marker. Colors degrade to plain ASCII on
// dumb terminals via termenv's profile detection.
func (h *TextHandler) checkbox(row Row) string {
	switch {
	case row.Status.Checked:
		return termenv.String("x").Foreground(h.profile.Color("#22c55e")).String()
	case row.Status.Indeterminate:
		return termenv.String("~").Foreground(h.profile.Color("#eab308")).String()
	default:
		return " "
	}
}

func (h *TextHandler) Input(ctx context.Context) (string, error) {
	// Prompt
	fmt.Fprint(h.Writer, "> ")

	text, err := h.Reader.ReadString('\n')
	if err != nil {
		if err == io.EOF && strings.TrimSpace(text) != "" {
			return strings.TrimSpace(text), nil
		}
		return "", err
	}
	return strings.TrimSpace(text), nil
}

func (h *TextHandler) SystemOutput(ctx context.Context, msg string) error {
	styled := termenv.String("! " + msg).Faint()
	_, err := fmt.Fprintln(h.Writer, styled)
	return err
}
