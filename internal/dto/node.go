package dto

import (
	"fmt"

	"github.com/mitchellh/mapstructure"

	"github.com/aretw0/canopy/pkg/domain"
)

// NodeDocument is the wire shape of one option node as supplied by hosts
// (YAML documents, JSON bodies, tool arguments). It uses "mapstructure" tags
// so generic map payloads decode regardless of the transport encoding.
type NodeDocument struct {
	ID       string            `json:"id" mapstructure:"id"`
	Label    string            `json:"label" mapstructure:"label"`
	Mode     string            `json:"mode" mapstructure:"mode"`
	Children []NodeDocument    `json:"children" mapstructure:"children"`
	Metadata map[string]string `json:"metadata" mapstructure:"metadata"`
}

// DecodeNodes converts a generic value (typically []any of maps, as produced
// by yaml or json unmarshaling) into domain option nodes. Decoding is weakly
// typed so numeric ids arrive as their string form, matching the opaque-id
// contract of the tree.
func DecodeNodes(raw any) ([]domain.OptionNode, error) {
	if raw == nil {
		return nil, nil
	}

	var docs []NodeDocument
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &docs,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build node decoder: %w", err)
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, fmt.Errorf("failed to decode option nodes: %w", err)
	}

	return toDomain(docs), nil
}

func toDomain(docs []NodeDocument) []domain.OptionNode {
	if len(docs) == 0 {
		return nil
	}
	nodes := make([]domain.OptionNode, 0, len(docs))
	for _, d := range docs {
		nodes = append(nodes, domain.OptionNode{
			ID:       d.ID,
			Label:    d.Label,
			Mode:     domain.SelectionMode(d.Mode),
			Children: toDomain(d.Children),
			Metadata: d.Metadata,
		})
	}
	return nodes
}
