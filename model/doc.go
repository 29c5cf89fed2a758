// Package model defines the in-memory project representation shared by both
// conversion directions.
//
// A [Project] owns ordered collections of chapters, scenes, characters,
// locations, items, plot lines and project notes. Entities reference each
// other by per-kind integer IDs, the numbering yWriter uses. The model is
// built fresh for each conversion and holds no state between conversions.
//
// Custom fields are kept in [Fields], an ordered list of typed values.
// Each value is a [FieldValue] whose type (string, bool or int) is decided
// once when the field is read and carried from then on.
//
// Scene text is a [Text]: paragraphs of styled runs. Adjacent runs with the
// same style are merged by [Text.Normalize], so two texts that render the
// same compare equal with [Text.Equal].
package model
