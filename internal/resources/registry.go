// Package resources loads the RON content tables (tiles, items,
// recipes, categories, researches, tags, translations, models) and
// bootstraps the process-wide Interner. The resource loader populates
// the interner and tile-definition registry before any scheduler is
// created; the core treats its output as read-only.
package resources

import (
	"fmt"

	"github.com/automancy/automancy/internal/data"
	"github.com/automancy/automancy/internal/ids"
)

// TileDefinition is the immutable template a placed tile is
// instantiated from: its default data, the model ids it renders with,
// and the script id that governs it (nil if the tile has no script).
type TileDefinition struct {
	ID       ids.TileId
	Name     string
	Models   []ids.ModelId
	Data     *data.DataMap
	ScriptID *ids.Id
}

// Registry is the read-only handle the scheduler and tile actors hold
// for looking up tile definitions and opaque content tables by id.
type Registry struct {
	Interner *ids.Interner

	tiles map[ids.TileId]*TileDefinition
	// items, recipes, categories, researches and tags are passed through
	// to the UI/render collaborators unchanged; the core only needs
	// them keyed by string id as opaque tables.
	items      map[string]Value
	recipes    map[string]Value
	categories map[string]Value
	researches map[string]Value
	tags       map[string]Value

	translations *Translator
}

// NewRegistry returns an empty registry bound to interner.
func NewRegistry(interner *ids.Interner) *Registry {
	return &Registry{
		Interner:   interner,
		tiles:      make(map[ids.TileId]*TileDefinition),
		items:      make(map[string]Value),
		recipes:    make(map[string]Value),
		categories: make(map[string]Value),
		researches: make(map[string]Value),
		tags:       make(map[string]Value),
	}
}

// RegisterTile interns namespacedID and installs def under it. Only
// namespacedID is interned here; def's model and script ids are stored
// as given. It is only ever called during resource load.
func (r *Registry) RegisterTile(namespacedID string, def TileDefinition) ids.TileId {
	id := ids.TileIdOf(r.Interner.Intern(namespacedID))
	def.ID = id
	r.tiles[id] = &def
	return id
}

// Tile looks up a tile definition by id.
func (r *Registry) Tile(id ids.TileId) (*TileDefinition, bool) {
	d, ok := r.tiles[id]
	return d, ok
}

// NoneTileID is the sentinel "core:none" tile id, interned on first
// call (placing it deletes a tile entry).
func (r *Registry) NoneTileID() ids.TileId {
	return ids.TileIdOf(r.Interner.Intern("core:none"))
}

// LoadOpaqueTable decodes a RON document of the form `{"id": <value>, ...}`
// into dst, keyed by the raw string id (items/recipes/categories/
// researches/tags all share this shape).
func LoadOpaqueTable(ron string, dst map[string]Value) error {
	v, err := Decode(ron)
	if err != nil {
		return fmt.Errorf("resources: decoding table: %w", err)
	}
	m, ok := v.(map[string]Value)
	if !ok {
		return fmt.Errorf("resources: table root is not a map (got %T)", v)
	}
	for k, val := range m {
		dst[k] = val
	}
	return nil
}

func (r *Registry) Items() map[string]Value { return r.items }
func (r *Registry) Recipes() map[string]Value { return r.recipes }
func (r *Registry) Categories() map[string]Value { return r.categories }
func (r *Registry) Researches() map[string]Value { return r.researches }
func (r *Registry) Tags() map[string]Value { return r.tags }
func (r *Registry) Translations() *Translator { return r.translations }
func (r *Registry) SetTranslations(t *Translator) { r.translations = t }

// DecodeTileDefaultData parses a tile's "data" RON block into a DataMap,
// resolving ids through interner. It is a thin adapter over
// data.FromStr for the subset of RON structs valueToDatumArgs accepts
// (Amount, Bool, Id and Coord).
func DecodeTileDefaultData(fields map[string]Value, interner *ids.Interner) (*data.DataMap, error) {
	entries := make([]data.StrEntry, 0, len(fields))
	for key, v := range fields {
		kind, value, err := valueToDatumArgs(v)
		if err != nil {
			return nil, fmt.Errorf("resources: field %q: %w", key, err)
		}
		entries = append(entries, data.StrEntry{Key: key, Kind: kind, Value: value})
	}
	return data.FromStr(entries, interner)
}

func valueToDatumArgs(v Value) (kind string, value any, err error) {
	switch val := v.(type) {
	case Struct:
		switch val.Name {
		case "Amount":
			n, err := floatField(val, 0)
			return "Amount", int32(n), err
		case "Bool":
			b, _ := boolField(val, 0)
			return "Bool", b, nil
		case "Id":
			s, err := stringField(val, 0)
			return "Id", s, err
		case "Coord":
			q, err := floatField(val, 0)
			if err != nil {
				return "", nil, err
			}
			r, err := floatField(val, 1)
			return "Coord", [2]int32{int32(q), int32(r)}, err
		default:
			return "", nil, fmt.Errorf("unsupported struct kind %q", val.Name)
		}
	default:
		return "", nil, fmt.Errorf("unsupported RON value %T for tile data field", v)
	}
}

func floatField(s Struct, idx int) (float64, error) {
	if idx < len(s.Tuple) {
		if f, ok := s.Tuple[idx].(float64); ok {
			return f, nil
		}
	}
	return 0, fmt.Errorf("expected numeric field at position %d", idx)
}

func boolField(s Struct, idx int) (bool, error) {
	if idx < len(s.Tuple) {
		if b, ok := s.Tuple[idx].(bool); ok {
			return b, nil
		}
	}
	return false, fmt.Errorf("expected bool field at position %d", idx)
}

func stringField(s Struct, idx int) (string, error) {
	if idx < len(s.Tuple) {
		if str, ok := s.Tuple[idx].(string); ok {
			return str, nil
		}
	}
	return "", fmt.Errorf("expected string field at position %d", idx)
}
