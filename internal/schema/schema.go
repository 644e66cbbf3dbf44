package schema

import (
	"fmt"

	"github.com/roach88/kvquery/internal/kv"
	"github.com/roach88/kvquery/internal/value"
)

// DefaultVersion is used when a definition omits its version.
const DefaultVersion = 1

// Database describes a versioned database and its object stores.
type Database struct {
	Name    string  `json:"name" yaml:"name"`
	Version int     `json:"version,omitempty" yaml:"version,omitempty"`
	Stores  []Store `json:"stores" yaml:"stores"`
}

// Store describes one object store.
type Store struct {
	Name          string  `json:"name" yaml:"name"`
	KeyPath       string  `json:"keyPath,omitempty" yaml:"keyPath,omitempty"`
	AutoIncrement bool    `json:"autoIncrement,omitempty" yaml:"autoIncrement,omitempty"`
	Indexes       []Index `json:"indexes,omitempty" yaml:"indexes,omitempty"`
	Data          []any   `json:"data,omitempty" yaml:"data,omitempty"`
}

// Index describes a secondary index on a record field.
type Index struct {
	Name    string `json:"name" yaml:"name"`
	KeyPath string `json:"keyPath" yaml:"keyPath"`
	Unique  bool   `json:"unique,omitempty" yaml:"unique,omitempty"`
}

// Store returns the definition of the named store.
func (d Database) Store(name string) (Store, bool) {
	for _, s := range d.Stores {
		if s.Name == name {
			return s, true
		}
	}
	return Store{}, false
}

// StoreSchema converts the definition to the form a kv.Backend creates.
func (s Store) StoreSchema() kv.StoreSchema {
	return kv.StoreSchema{
		Name:          s.Name,
		KeyPath:       s.KeyPath,
		AutoIncrement: s.AutoIncrement,
	}
}

// IndexSchemas converts the index definitions for kv.Backend.CreateIndex.
func (s Store) IndexSchemas() []kv.IndexSchema {
	out := make([]kv.IndexSchema, len(s.Indexes))
	for i, idx := range s.Indexes {
		out[i] = kv.IndexSchema{Name: idx.Name, KeyPath: idx.KeyPath, Unique: idx.Unique}
	}
	return out
}

// Seed returns the store's seed data as an Array value.
func (s Store) Seed() (value.Array, error) {
	out := make(value.Array, 0, len(s.Data))
	for i, raw := range s.Data {
		v, err := value.FromAny(normalizeYAML(raw))
		if err != nil {
			return nil, fmt.Errorf("store %q data[%d]: %w", s.Name, i, err)
		}
		out = append(out, v)
	}
	return out, nil
}

// normalizeYAML rewrites map[any]any nodes, which yaml.v3 produces for
// mappings with non-string keys, into map[string]any.
func normalizeYAML(v any) any {
	switch val := v.(type) {
	case map[any]any:
		out := make(map[string]any, len(val))
		for k, elem := range val {
			out[fmt.Sprint(k)] = normalizeYAML(elem)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, elem := range val {
			out[k] = normalizeYAML(elem)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, elem := range val {
			out[i] = normalizeYAML(elem)
		}
		return out
	default:
		return v
	}
}
