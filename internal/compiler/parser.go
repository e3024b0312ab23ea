package compiler

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/aretw0/canopy/internal/dto"
	"github.com/aretw0/canopy/pkg/domain"
)

// TreeDefinition is the parsed form of a tree document.
type TreeDefinition struct {
	// Mode is the tree-wide default selection mode. Empty means multiple.
	Mode domain.SelectionMode

	// Options holds the root-level option nodes in document order.
	Options []domain.OptionNode
}

// Parser converts raw tree documents into domain option nodes.
type Parser struct{}

// NewParser creates a new parser instance.
func NewParser() *Parser {
	return &Parser{}
}

// document is the raw YAML envelope. Options stay generic here; the dto
// decoder normalizes loosely-typed member values (numeric ids, mode strings).
type document struct {
	Mode    string `yaml:"mode"`
	Options any    `yaml:"options"`
}

// Parse decodes a YAML (or JSON, which is a YAML subset) tree document.
func (p *Parser) Parse(data []byte) (*TreeDefinition, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse tree document: %w", err)
	}

	mode := domain.SelectionMode(doc.Mode)
	if !mode.Valid() {
		return nil, fmt.Errorf("unknown selection mode %q", doc.Mode)
	}

	nodes, err := dto.DecodeNodes(doc.Options)
	if err != nil {
		return nil, err
	}
	if len(nodes) == 0 {
		return nil, fmt.Errorf("tree document has no options")
	}

	return &TreeDefinition{Mode: mode, Options: nodes}, nil
}
