// Package memhost provides an in-memory implementation of [host.Project].
//
// It backs the command line tool, the MCP server and the tests. Projects
// can be saved to and loaded from YAML, TOML or JSON snapshot files.
package memhost

import (
	"fmt"
	"slices"
	"sync"

	"github.com/erraggy/yw7tools/host"
)

// Entity is the snapshot form of one host entity.
type Entity struct {
	ID     string              `yaml:"id" toml:"id" json:"id"`
	Kind   host.Kind           `yaml:"kind" toml:"kind" json:"kind"`
	Fields []Field             `yaml:"fields,omitempty" toml:"fields,omitempty" json:"fields,omitempty"`
	Refs   map[string][]string `yaml:"refs,omitempty" toml:"refs,omitempty" json:"refs,omitempty"`
}

// Field is one named field value of an Entity.
type Field struct {
	Name  string `yaml:"name" toml:"name" json:"name"`
	Value any    `yaml:"value" toml:"value" json:"value"`
}

type entity struct {
	id     string
	kind   host.Kind
	names  []string
	fields map[string]any
	refs   map[string][]string
}

// Project is an in-memory host project. It is safe for concurrent use.
type Project struct {
	mu       sync.RWMutex
	entities []*entity
	byID     map[string]*entity
}

var _ host.Project = (*Project)(nil)

// New returns an empty project holding only the novel entity.
func New() *Project {
	novel := &entity{id: host.NovelID, kind: host.KindNovel}
	return &Project{
		entities: []*entity{novel},
		byID:     map[string]*entity{host.NovelID: novel},
	}
}

// Create adds an entity of the given kind.
func (p *Project) Create(kind host.Kind, id string) error {
	if !kind.Valid() {
		return fmt.Errorf("memhost: cannot create entity of kind %q", kind)
	}
	if id == "" {
		return fmt.Errorf("memhost: empty %s ID", kind)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.byID[id]; ok {
		return fmt.Errorf("memhost: %w: %s", host.ErrDuplicateEntity, id)
	}
	e := &entity{id: id, kind: kind}
	p.entities = append(p.entities, e)
	p.byID[id] = e
	return nil
}

// List returns the IDs of the given kind in creation order.
func (p *Project) List(kind host.Kind) []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	var ids []string
	for _, e := range p.entities {
		if e.kind == kind {
			ids = append(ids, e.id)
		}
	}
	return ids
}

// Kind returns the kind of the entity id.
func (p *Project) Kind(id string) (host.Kind, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	e, ok := p.byID[id]
	if !ok {
		return "", false
	}
	return e.kind, true
}

// Len returns the number of entities, the novel included.
func (p *Project) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.entities)
}

// Field returns a field value.
func (p *Project) Field(id, name string) (any, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	e, ok := p.byID[id]
	if !ok {
		return nil, false
	}
	v, ok := e.fields[name]
	return v, ok
}

// SetField sets a field value. The value must be a string, bool or int.
// A new field is appended after the existing ones.
func (p *Project) SetField(id, name string, value any) error {
	if !host.ValidValue(value) {
		return fmt.Errorf("memhost: %w: %s.%s has type %T", host.ErrInvalidValue, id, name, value)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	e, ok := p.byID[id]
	if !ok {
		return fmt.Errorf("memhost: %w: %s", host.ErrUnknownEntity, id)
	}
	if e.fields == nil {
		e.fields = make(map[string]any)
	}
	if _, exists := e.fields[name]; !exists {
		e.names = append(e.names, name)
	}
	e.fields[name] = value
	return nil
}

// FieldNames returns the names of the fields set on id in the order they
// were first set.
func (p *Project) FieldNames(id string) []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	e, ok := p.byID[id]
	if !ok {
		return nil
	}
	return slices.Clone(e.names)
}

// References returns a copy of the reference list rel of id.
func (p *Project) References(id, rel string) []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	e, ok := p.byID[id]
	if !ok {
		return nil
	}
	return slices.Clone(e.refs[rel])
}

// SetReferences replaces the reference list rel of id. Targets are not
// checked; readers resolve them.
func (p *Project) SetReferences(id, rel string, ids []string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	e, ok := p.byID[id]
	if !ok {
		return fmt.Errorf("memhost: %w: %s", host.ErrUnknownEntity, id)
	}
	if len(ids) == 0 {
		delete(e.refs, rel)
		return nil
	}
	if e.refs == nil {
		e.refs = make(map[string][]string)
	}
	e.refs[rel] = slices.Clone(ids)
	return nil
}

// Entities returns copies of all entities in order, the novel first.
func (p *Project) Entities() []Entity {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]Entity, len(p.entities))
	for i, e := range p.entities {
		c := Entity{ID: e.id, Kind: e.kind}
		for _, name := range e.names {
			c.Fields = append(c.Fields, Field{Name: name, Value: e.fields[name]})
		}
		if len(e.refs) > 0 {
			c.Refs = make(map[string][]string, len(e.refs))
			for k, v := range e.refs {
				c.Refs[k] = slices.Clone(v)
			}
		}
		out[i] = c
	}
	return out
}
