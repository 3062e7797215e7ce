package model

import (
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/jacentio/arbor/internal/keys"
	"github.com/jacentio/arbor/kv"
)

// Property describes a declared property of a model.
type Property struct {
	// Unique enforces that no two objects of the model hold the same value
	// for this property.
	Unique bool

	// Default is stored when the property is absent from an instance at save
	// time. nil means "no default": the property is stored as null.
	Default any
}

// Config carries the per-model configuration consumed at Define time.
// None of its fields affect correctness semantics.
type Config struct {
	// StorageName overrides the name used in store keys.
	// Defaults to the declared model name.
	StorageName string

	// Resolver yields the store handle, once per engine operation. Required.
	Resolver kv.Resolver

	// Logger receives diagnostics. Defaults to a no-op logger, or to a
	// development logger when Debug is set.
	Logger *zap.Logger

	// Debug enables per-operation debug logging.
	Debug bool
}

// Model is an immutable declaration bound to a store resolver. All engine
// operations hang off it. Create with Define.
type Model struct {
	name    string
	storage string
	props   map[string]Property

	// uniqueNames is sorted so reservation order is deterministic.
	uniqueNames []string

	resolver kv.Resolver
	log      *zap.Logger
	debug    bool
}

// Define declares a model. The declaration is validated here, once; the
// returned Model never mutates.
func Define(name string, cfg Config, props map[string]Property) (*Model, error) {
	if !keys.ValidModelName(name) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidModelName, name)
	}
	storage := cfg.StorageName
	if storage == "" {
		storage = name
	}
	if !keys.ValidModelName(storage) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidModelName, storage)
	}
	if cfg.Resolver == nil {
		return nil, fmt.Errorf("%w (model %q)", ErrNoResolver, name)
	}

	declared := make(map[string]Property, len(props))
	var uniqueNames []string
	for p, desc := range props {
		if !keys.ValidPropertyName(p) {
			return nil, fmt.Errorf("%w: %s.%s", ErrInvalidProperty, name, p)
		}
		if desc.Default != nil && !storablePrimitive(desc.Default) {
			return nil, fmt.Errorf("%w: default of %s.%s", ErrInvalidValue, name, p)
		}
		declared[p] = desc
		if desc.Unique {
			uniqueNames = append(uniqueNames, p)
		}
	}
	sort.Strings(uniqueNames)

	logger := cfg.Logger
	if logger == nil {
		if cfg.Debug {
			logger = zap.Must(zap.NewDevelopment())
		} else {
			logger = zap.NewNop()
		}
	}

	return &Model{
		name:        name,
		storage:     storage,
		props:       declared,
		uniqueNames: uniqueNames,
		resolver:    cfg.Resolver,
		log:         logger,
		debug:       cfg.Debug,
	}, nil
}

// Name returns the declared model name.
func (m *Model) Name() string { return m.name }

// StorageName returns the name used in store keys.
func (m *Model) StorageName() string { return m.storage }

// Properties returns a copy of the declared property descriptors.
func (m *Model) Properties() map[string]Property {
	out := make(map[string]Property, len(m.props))
	for k, v := range m.props {
		out[k] = v
	}
	return out
}
