// Package mapper translates between the project model and a novx (format B)
// project reached through [host.Project].
//
// Model IDs are per-kind integers; host IDs are kind-prefixed unique
// strings. A Mapper call builds the bijection between the two for one
// conversion and returns it in [Result.HostIDs]; nothing is kept between
// calls.
package mapper

import (
	"strconv"
	"sync"

	"github.com/erraggy/yw7tools/host"
	"github.com/erraggy/yw7tools/internal/issues"
	"github.com/erraggy/yw7tools/model"
	"github.com/erraggy/yw7tools/yw7"
	"github.com/google/uuid"
)

// Ref names a model entity by kind and ID. Project notes are referenced by
// position (1-based) since nothing links to them.
type Ref struct {
	Kind host.Kind
	ID   int
}

// Result is the outcome of one mapping call.
type Result struct {
	// Project is the model built by FromHost, or the model given to ToHost.
	Project *model.Project
	// HostIDs maps each mapped model entity to its host ID.
	HostIDs map[Ref]string
	Issues  issues.List
}

// IDFunc allocates a fresh host ID for an entity of the given kind.
type IDFunc func(kind host.Kind) string

// UUIDs allocates IDs made of the kind prefix and a random UUID.
func UUIDs(kind host.Kind) string {
	return kind.Prefix() + uuid.NewString()
}

// SequentialIDs returns an IDFunc allocating prefix1, prefix2, … per kind.
// It is safe for concurrent use.
func SequentialIDs() IDFunc {
	var mu sync.Mutex
	next := map[host.Kind]int{}
	return func(kind host.Kind) string {
		mu.Lock()
		defer mu.Unlock()
		next[kind]++
		return kind.Prefix() + strconv.Itoa(next[kind])
	}
}

// Mapper converts between model and host projects.
type Mapper struct {
	// NewID allocates host IDs in ToHost. Defaults to UUIDs.
	NewID IDFunc
	// Logger receives diagnostics. Defaults to yw7.NopLogger.
	Logger yw7.Logger
}

// New returns a Mapper allocating UUID-based host IDs.
func New() *Mapper {
	return &Mapper{NewID: UUIDs, Logger: yw7.NopLogger{}}
}

// ToHost populates dst from p using a default Mapper.
func ToHost(p *model.Project, dst host.Project) (*Result, error) {
	return New().ToHost(p, dst)
}

// FromHost builds a model from src using a default Mapper.
func FromHost(src host.Project) (*Result, error) {
	return New().FromHost(src)
}

func (m *Mapper) logger() yw7.Logger {
	if m.Logger == nil {
		return yw7.NopLogger{}
	}
	return m.Logger
}

func (m *Mapper) newID() IDFunc {
	if m.NewID == nil {
		return UUIDs
	}
	return m.NewID
}
