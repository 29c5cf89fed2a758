package yw7

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/erraggy/yw7tools/model"
)

// Structural fields carry model structure rather than custom data. The
// reader consumes them and the writer derives them; they never appear in a
// model.Fields bag.
const (
	fieldSceneType       = "Field_SceneType"
	fieldSceneArcs       = "Field_SceneArcs"
	fieldSceneAssoc      = "Field_SceneAssoc"
	fieldArcDefinition   = "Field_ArcDefinition"
	fieldArcDefinitionV1 = "Field_Arc_Definition"
	fieldCustomAR        = "Field_CustomAR"
	fieldLanguageCode    = "Field_LanguageCode"
	fieldCountryCode     = "Field_CountryCode"
	fieldSaveWordCount   = "Field_SaveWordCount"
)

var structuralFields = map[string]bool{
	fieldSceneType:       true,
	fieldSceneArcs:       true,
	fieldSceneAssoc:      true,
	fieldArcDefinition:   true,
	fieldArcDefinitionV1: true,
	fieldCustomAR:        true,
	fieldLanguageCode:    true,
	fieldCountryCode:     true,
}

// IsStructuralField reports whether name is a field the converter derives
// from model structure.
func IsStructuralField(name string) bool {
	return structuralFields[name]
}

// declaredFieldKinds lists the custom fields whose type yWriter and novelibre
// agree on.
var declaredFieldKinds = map[string]model.FieldKind{
	"Field_RenumberChapters":    model.FieldBool,
	"Field_RenumberParts":       model.FieldBool,
	"Field_RenumberWithinParts": model.FieldBool,
	"Field_RomanChapterNumbers": model.FieldBool,
	"Field_RomanPartNumbers":    model.FieldBool,
	fieldSaveWordCount:          model.FieldBool,
	"Field_IsTrash":             model.FieldBool,
	"Field_NoNumber":            model.FieldBool,
	"Field_WorkPhase":           model.FieldInt,
}

// Undeclared fields named like flags are booleans if their value allows it.
var boolFieldPrefixes = []string{
	"Field_Is", "Field_Has", "Field_No", "Field_Renumber",
	"Field_Roman", "Field_Save", "Field_Show", "Field_Use",
}

// DeclaredFieldKind returns the declared type of a custom field.
func DeclaredFieldKind(name string) (model.FieldKind, bool) {
	k, ok := declaredFieldKinds[name]
	return k, ok
}

func looksLikeFlag(name string) bool {
	for _, p := range boolFieldPrefixes {
		if rest, ok := strings.CutPrefix(name, p); ok && rest != "" {
			if unicode.IsUpper([]rune(rest)[0]) {
				return true
			}
		}
	}
	return false
}

// ParseBool parses a yWriter flag value: "1" and "-1" are true, "0" and ""
// are false.
func ParseBool(s string) (bool, bool) {
	switch strings.TrimSpace(s) {
	case "1", "-1":
		return true, true
	case "0", "":
		return false, true
	}
	return false, false
}

// DecodeField converts the text of a custom field to a typed value. ok is
// false when the text does not fit the field's declared type.
func DecodeField(name, raw string) (v model.FieldValue, ok bool) {
	if kind, declared := declaredFieldKinds[name]; declared {
		switch kind {
		case model.FieldBool:
			b, ok := ParseBool(raw)
			return model.BoolValue(b), ok
		case model.FieldInt:
			i, err := strconv.Atoi(strings.TrimSpace(raw))
			if err != nil {
				return model.FieldValue{}, false
			}
			return model.IntValue(i), true
		}
	}
	// The name of an undeclared field only suggests a flag. A value that is
	// not a flag ("5") is a string field that happens to be named like one.
	if looksLikeFlag(name) {
		if b, ok := ParseBool(raw); ok {
			return model.BoolValue(b), true
		}
	}
	return model.StringValue(raw), true
}

// EncodeField returns the text of a custom field and whether it is written
// as CDATA.
func EncodeField(v model.FieldValue) (string, bool) {
	switch v.Kind() {
	case model.FieldBool:
		if v.Bool() {
			return "1", false
		}
		return "0", false
	case model.FieldInt:
		return strconv.Itoa(v.Int()), false
	default:
		return v.Str(), true
	}
}
