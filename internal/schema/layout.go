package schema

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Block is one entry of a service page layout. Data is kept raw so the layout is
// stored exactly as submitted.
type Block struct {
	Type  string          `json:"type"`
	Order int             `json:"order,omitempty"`
	Data  json.RawMessage `json:"data"`
}

func (b Block) Kind() BlockType {
	return ParseBlockType(b.Type)
}

// Decode unmarshals the block payload into v.
func (b Block) Decode(v any) error {
	if len(b.Data) == 0 {
		return errors.New("block has no data")
	}

	return json.Unmarshal(b.Data, v)
}

// Payload decodes the block data as a JSON object.
func (b Block) Payload() (map[string]any, error) {
	payload := map[string]any{}
	if err := b.Decode(&payload); err != nil {
		return nil, fmt.Errorf("invalid block data: %w", err)
	}

	return payload, nil
}

type Layout []Block

// Find returns the first block of the given type.
func (l Layout) Find(blockType BlockType) (Block, bool) {
	for _, block := range l {
		if block.Kind() == blockType {
			return block, true
		}
	}

	return Block{}, false
}

// ParseLayout decodes a stored layout. An empty document is an empty layout.
func ParseLayout(raw []byte) (Layout, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return Layout{}, nil
	}

	var layout Layout
	if err := json.Unmarshal(raw, &layout); err != nil {
		return nil, fmt.Errorf("invalid layout: %w", err)
	}

	return layout, nil
}
