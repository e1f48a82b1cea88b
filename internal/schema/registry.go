package schema

import (
	_ "embed"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

//go:embed blocks.yaml
var blocksData []byte

var ErrSchemaNotFound = errors.New("schema not found")

type Registry struct {
	schemas map[BlockType]BlockSchema
	order   []BlockType
}

// New builds a registry from the given schemas, rejecting duplicate or unknown field kinds.
func New(schemas ...BlockSchema) (*Registry, error) {
	registry := &Registry{
		schemas: make(map[BlockType]BlockSchema, len(schemas)),
		order:   make([]BlockType, 0, len(schemas)),
	}

	for _, blockSchema := range schemas {
		if blockSchema.Type == "" {
			return nil, errors.New("block schema without type")
		}

		if _, ok := registry.schemas[blockSchema.Type]; ok {
			return nil, fmt.Errorf("duplicate block schema %q", blockSchema.Type)
		}

		if err := checkKinds(blockSchema.Fields); err != nil {
			return nil, fmt.Errorf("block schema %q: %w", blockSchema.Type, err)
		}

		registry.schemas[blockSchema.Type] = blockSchema
		registry.order = append(registry.order, blockSchema.Type)
	}

	return registry, nil
}

// Load parses the embedded block catalog.
func Load() (*Registry, error) {
	var catalog struct {
		Blocks []BlockSchema `yaml:"blocks"`
	}

	if err := yaml.Unmarshal(blocksData, &catalog); err != nil {
		return nil, fmt.Errorf("failed to decode block catalog: %w", err)
	}

	return New(catalog.Blocks...)
}

// NewRegistry loads the embedded catalog and stops the process if it is broken.
func NewRegistry() *Registry {
	registry, err := Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load block schemas")
	}

	log.Info().Int("blocks", len(registry.order)).Msg("Block schemas loaded")

	return registry
}

func (r *Registry) Schema(blockType BlockType) (BlockSchema, error) {
	blockSchema, ok := r.schemas[ParseBlockType(string(blockType))]
	if !ok {
		return BlockSchema{}, fmt.Errorf("%w: %q", ErrSchemaNotFound, blockType)
	}

	return blockSchema, nil
}

// Schemas lists every schema in catalog order.
func (r *Registry) Schemas() []BlockSchema {
	out := make([]BlockSchema, 0, len(r.order))
	for _, blockType := range r.order {
		out = append(out, r.schemas[blockType])
	}

	return out
}

// Validate checks data against the schema of blockType. A missing schema is returned
// as ErrSchemaNotFound alongside an invalid result.
func (r *Registry) Validate(blockType BlockType, data map[string]any) (Result, error) {
	blockSchema, err := r.Schema(blockType)
	if err != nil {
		return Result{Errors: []string{fmt.Sprintf("block type %q does not exist", blockType)}}, err
	}

	errs := []string{}
	for _, field := range blockSchema.Fields {
		errs = append(errs, checkField(field, data)...)
	}

	return Result{Valid: len(errs) == 0, Errors: errs}, nil
}

// ValidateLayout validates every block of a layout and prefixes each problem with
// the block position and type.
func (r *Registry) ValidateLayout(layout Layout) []string {
	errs := []string{}

	for idx, block := range layout {
		prefix := fmt.Sprintf("block %d (%s)", idx, block.Type)

		payload, err := block.Payload()
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", prefix, err))

			continue
		}

		result, err := r.Validate(block.Kind(), payload)
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s: unknown block type", prefix))

			continue
		}

		for _, msg := range result.Errors {
			errs = append(errs, fmt.Sprintf("%s: %s", prefix, msg))
		}
	}

	return errs
}
