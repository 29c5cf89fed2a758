// Package host defines the narrow capability interface through which the
// converter reads and populates a novx (format B) project.
//
// A host project is a flat set of entities addressed by globally unique,
// kind-prefixed string IDs. Each entity carries named scalar fields and
// named, ordered reference lists. Project-level fields live on the
// well-known entity [NovelID], which every host project provides.
//
// Field values are string, bool or int. Scene content is a string of novx
// XML markup.
package host

import "errors"

// Kind is the type of a host entity.
type Kind string

const (
	KindNovel       Kind = "novel"
	KindChapter     Kind = "chapter"
	KindSection     Kind = "section"
	KindCharacter   Kind = "character"
	KindLocation    Kind = "location"
	KindItem        Kind = "item"
	KindPlotLine    Kind = "plotline"
	KindPlotPoint   Kind = "plotpoint"
	KindProjectNote Kind = "projectnote"
)

// Kinds lists the entity kinds a host creates, in novx tree order.
var Kinds = []Kind{
	KindChapter, KindSection, KindCharacter, KindLocation,
	KindItem, KindPlotLine, KindPlotPoint, KindProjectNote,
}

// Valid reports whether k is a creatable entity kind.
func (k Kind) Valid() bool {
	for _, c := range Kinds {
		if c == k {
			return true
		}
	}
	return false
}

// Prefix returns the novx ID prefix of the kind.
func (k Kind) Prefix() string {
	switch k {
	case KindChapter:
		return "ch"
	case KindSection:
		return "sc"
	case KindCharacter:
		return "cr"
	case KindLocation:
		return "lc"
	case KindItem:
		return "it"
	case KindPlotLine:
		return "pl"
	case KindPlotPoint:
		return "pp"
	case KindProjectNote:
		return "pn"
	}
	return ""
}

// NovelID addresses the project-level entity.
const NovelID = "novel"

// Reference relation names.
const (
	// RelSections: chapter to its sections, plot line to its member sections.
	RelSections = "sections"
	// RelPoints: plot line to its plot points.
	RelPoints = "points"
	// RelCharacters: section to its characters, viewpoint first.
	RelCharacters = "characters"
	RelLocations  = "locations"
	RelItems      = "items"
	// RelAssoc: plot point to its associated section (at most one).
	RelAssoc = "assoc"
)

var (
	// ErrUnknownEntity is returned for operations on an ID the project does not hold.
	ErrUnknownEntity = errors.New("unknown entity")
	// ErrDuplicateEntity is returned by Create for an ID already in use.
	ErrDuplicateEntity = errors.New("duplicate entity")
	// ErrInvalidValue is returned by SetField for values that are not string, bool or int.
	ErrInvalidValue = errors.New("invalid field value")
)

// Project is the capability interface of a format-B project.
//
// List returns entities of one kind in project order; the converter
// relies on that order for chapters, sections and the other collections.
type Project interface {
	Create(kind Kind, id string) error
	List(kind Kind) []string
	Field(id, name string) (any, bool)
	SetField(id, name string, value any) error
	FieldNames(id string) []string
	References(id, rel string) []string
	SetReferences(id, rel string, ids []string) error
}

// ValidValue reports whether v is a value a host field can hold.
func ValidValue(v any) bool {
	switch v.(type) {
	case string, bool, int:
		return true
	}
	return false
}
