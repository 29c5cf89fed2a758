package memhost

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/erraggy/yw7tools/host"
	"github.com/pelletier/go-toml/v2"
	"go.yaml.in/yaml/v4"
)

// Format is a snapshot file format.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
	FormatJSON Format = "json"
)

// FormatForPath picks the snapshot format from the file extension.
func FormatForPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	case ".json":
		return FormatJSON, nil
	}
	return "", fmt.Errorf("memhost: unsupported snapshot extension %q (want .yaml, .yml, .toml or .json)", filepath.Ext(path))
}

type snapshot struct {
	Entities []Entity `yaml:"entities" toml:"entities" json:"entities"`
}

// Marshal encodes the project as a snapshot.
func (p *Project) Marshal(f Format) ([]byte, error) {
	snap := snapshot{Entities: p.Entities()}
	var (
		data []byte
		err  error
	)
	switch f {
	case FormatYAML:
		data, err = yaml.Marshal(snap)
	case FormatTOML:
		data, err = toml.Marshal(snap)
	case FormatJSON:
		data, err = json.MarshalIndent(snap, "", "  ")
		if err == nil {
			data = append(data, '\n')
		}
	default:
		return nil, fmt.Errorf("memhost: unknown snapshot format %q", f)
	}
	if err != nil {
		return nil, fmt.Errorf("memhost: marshaling %s snapshot: %w", f, err)
	}
	return data, nil
}

// Unmarshal decodes a snapshot. Entity kinds, IDs and field values are
// validated; numeric values are normalized to int.
func Unmarshal(data []byte, f Format) (*Project, error) {
	var snap snapshot
	var err error
	switch f {
	case FormatYAML:
		err = yaml.Unmarshal(data, &snap)
	case FormatTOML:
		err = toml.Unmarshal(data, &snap)
	case FormatJSON:
		err = json.Unmarshal(data, &snap)
	default:
		return nil, fmt.Errorf("memhost: unknown snapshot format %q", f)
	}
	if err != nil {
		return nil, fmt.Errorf("memhost: parsing %s snapshot: %w", f, err)
	}

	p := New()
	for i, e := range snap.Entities {
		if e.Kind == host.KindNovel {
			if e.ID != host.NovelID {
				return nil, fmt.Errorf("memhost: entity %d: novel must have ID %q", i, host.NovelID)
			}
		} else if err := p.Create(e.Kind, e.ID); err != nil {
			return nil, fmt.Errorf("entity %d: %w", i, err)
		}
		for _, f := range e.Fields {
			nv, err := normalizeValue(f.Value)
			if err != nil {
				return nil, fmt.Errorf("memhost: %s.%s: %w", e.ID, f.Name, err)
			}
			if err := p.SetField(e.ID, f.Name, nv); err != nil {
				return nil, err
			}
		}
		for rel, ids := range e.Refs {
			if err := p.SetReferences(e.ID, rel, ids); err != nil {
				return nil, err
			}
		}
	}
	return p, nil
}

func normalizeValue(v any) (any, error) {
	switch x := v.(type) {
	case string, bool, int:
		return x, nil
	case int64:
		return int(x), nil
	case uint64:
		if x > math.MaxInt {
			return nil, fmt.Errorf("%w: %d out of range", host.ErrInvalidValue, x)
		}
		return int(x), nil
	case float64:
		if x != math.Trunc(x) || math.Abs(x) > math.MaxInt32 {
			return nil, fmt.Errorf("%w: %v is not an integer", host.ErrInvalidValue, x)
		}
		return int(x), nil
	}
	return nil, fmt.Errorf("%w: unsupported type %T", host.ErrInvalidValue, v)
}

// Load reads a snapshot file; the format follows the extension.
func Load(path string) (*Project, error) {
	f, err := FormatForPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("memhost: reading snapshot: %w", err)
	}
	return Unmarshal(data, f)
}

// Save writes a snapshot file through a temporary file and a rename.
func (p *Project) Save(path string) error {
	f, err := FormatForPath(path)
	if err != nil {
		return err
	}
	data, err := p.Marshal(f)
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("memhost: writing snapshot: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("memhost: renaming snapshot: %w", err)
	}
	return nil
}
