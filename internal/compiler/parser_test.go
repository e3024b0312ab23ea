package compiler_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aretw0/canopy/internal/compiler"
	"github.com/aretw0/canopy/pkg/domain"
)

func TestParser_YAMLDocument(t *testing.T) {
	doc := []byte(`
mode: multiple
options:
  - id: fruit
    label: Fruit
    children:
      - id: apple
        label: Apple
      - id: banana
        label: Banana
  - id: dairy
    label: Dairy
    mode: single
`)

	def, err := compiler.NewParser().Parse(doc)
	assert.NoError(t, err)
	assert.Equal(t, domain.ModeMultiple, def.Mode)
	assert.Len(t, def.Options, 2)
	assert.Equal(t, "fruit", def.Options[0].ID)
	assert.Len(t, def.Options[0].Children, 2)
	assert.Equal(t, domain.ModeSingle, def.Options[1].Mode)
}

func TestParser_NumericIDsCoerceToStrings(t *testing.T) {
	doc := []byte(`
options:
  - id: 1
    label: Fruit
    children:
      - id: 2
        label: Apple
`)

	def, err := compiler.NewParser().Parse(doc)
	assert.NoError(t, err)
	assert.Equal(t, "1", def.Options[0].ID)
	assert.Equal(t, "2", def.Options[0].Children[0].ID)
	assert.Equal(t, domain.ModeInherit, def.Mode)
}

func TestParser_JSONDocument(t *testing.T) {
	doc := []byte(`{"mode": "single", "options": [{"id": "a", "label": "A"}]}`)

	def, err := compiler.NewParser().Parse(doc)
	assert.NoError(t, err)
	assert.Equal(t, domain.ModeSingle, def.Mode)
	assert.Equal(t, "a", def.Options[0].ID)
}

func TestParser_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"Empty Options", "mode: multiple"},
		{"Unknown Mode", "mode: quantum\noptions:\n  - id: a\n    label: A"},
		{"Not YAML", "{{nope"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := compiler.NewParser().Parse([]byte(tt.doc))
			assert.Error(t, err)
		})
	}
}
