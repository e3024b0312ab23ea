package picker_test

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/canopy/pkg/picker"
)

func TestJSONHandler_FramesAreLineDelimited(t *testing.T) {
	in := strings.NewReader("\"1\"\ndone\n")
	var out bytes.Buffer

	sel, err := picker.New(newEngine(t), picker.WithHandler(picker.NewJSONHandler(in, &out))).
		Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2", "3"}, sel.IDs)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.NotEmpty(t, lines)

	var frame struct {
		Type string `json:"type"`
		Open bool   `json:"open"`
		Rows []struct {
			ID      string `json:"id"`
			Label   string `json:"label"`
			Checked bool   `json:"checked"`
			Mixed   bool   `json:"mixed"`
		} `json:"rows"`
	}
	// First frame: fresh view, nothing checked yet.
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &frame))
	assert.Equal(t, "view", frame.Type)
	assert.True(t, frame.Open)
	require.Len(t, frame.Rows, 4)
	assert.Equal(t, "Fruit", frame.Rows[0].Label)
	assert.False(t, frame.Rows[0].Checked)

	// Second frame: the subtree activation marks all three Fruit rows checked.
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &frame))
	assert.True(t, frame.Rows[0].Checked)
	assert.True(t, frame.Rows[1].Checked)
	assert.True(t, frame.Rows[2].Checked)
	assert.False(t, frame.Rows[3].Checked)
}

func TestJSONHandler_AcceptsRawAndQuotedInput(t *testing.T) {
	// One quoted JSON string, one raw command line.
	in := strings.NewReader("\"4\"\ndone\n")
	var out bytes.Buffer

	sel, err := picker.New(newEngine(t), picker.WithHandler(picker.NewJSONHandler(in, &out))).
		Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"4"}, sel.IDs)
}

func TestJSONHandler_SystemOutput(t *testing.T) {
	var out bytes.Buffer
	h := picker.NewJSONHandler(strings.NewReader(""), &out)

	require.NoError(t, h.SystemOutput(context.Background(), "saved"))

	var msg struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &msg))
	assert.Equal(t, "system", msg.Type)
	assert.Equal(t, "saved", msg.Message)
}
