package picker

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"os"
	"strings"
)

// JSONHandler implements the IOHandler interface for structured JSON-Lines
// communication. Each frame goes out as one JSON object per line; commands
// come in one per line, either as a JSON string or raw text.
type JSONHandler struct {
	Reader  *bufio.Reader
	Writer  io.Writer
	Encoder *json.Encoder
}

// jsonRow is the wire shape of a tree row.
type jsonRow struct {
	Index       int    `json:"index"`
	ID          string `json:"id"`
	Label       string `json:"label"`
	Depth       int    `json:"depth"`
	Checked     bool   `json:"checked"`
	Mixed       bool   `json:"mixed"`
	HasChildren bool   `json:"has_children,omitempty"`
	Collapsed   bool   `json:"collapsed,omitempty"`
}

type jsonFrame struct {
	Type    string    `json:"type"`
	Summary string    `json:"summary,omitempty"`
	Term    string    `json:"term,omitempty"`
	Open    bool      `json:"open"`
	Rows    []jsonRow `json:"rows"`
}

type jsonMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// NewJSONHandler creates a handler for JSON IO.
func NewJSONHandler(r io.Reader, w io.Writer) *JSONHandler {
	if r == nil {
		r = os.Stdin
	}
	if w == nil {
		w = os.Stdout
	}
	return &JSONHandler{
		Reader:  bufio.NewReader(r),
		Writer:  w,
		Encoder: json.NewEncoder(w),
	}
}

func (h *JSONHandler) Output(ctx context.Context, view View) error {
	frame := jsonFrame{
		Type:    "view",
		Summary: view.Summary,
		Term:    view.Term,
		Open:    view.Open,
		Rows:    make([]jsonRow, 0, len(view.Rows)),
	}
	for _, row := range view.Rows {
		frame.Rows = append(frame.Rows, jsonRow{
			Index:       row.Index,
			ID:          row.ID,
			Label:       row.Label,
			Depth:       row.Depth,
			Checked:     row.Status.Checked,
			Mixed:       row.Status.Indeterminate,
			HasChildren: row.HasChildren,
			Collapsed:   row.Collapsed,
		})
	}
	return h.Encoder.Encode(frame)
}

func (h *JSONHandler) Input(ctx context.Context) (string, error) {
	text, err := h.Reader.ReadString('\n')
	if err != nil {
		return "", err
	}

	text = strings.TrimSpace(text)

	// Unquote if the host sent a JSON string
	var val string
	if err := json.Unmarshal([]byte(text), &val); err == nil {
		return val, nil
	}

	// Fallback: raw text
	return text, nil
}

func (h *JSONHandler) SystemOutput(ctx context.Context, msg string) error {
	return h.Encoder.Encode(jsonMessage{Type: "system", Message: msg})
}
