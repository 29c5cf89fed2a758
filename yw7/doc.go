// Package yw7 reads and writes yWriter 7 project documents.
//
// A .yw7 file is XML with a YWRITER7 root holding the project header,
// locations, items, characters, project variables, scenes and chapters.
// Scene text uses yWriter's shortcode markup:
//
//	[b]bold[/b] [i]italic[/i] [lang=de]Deutsch[/lang=de]
//	> a quotation paragraph
//	/* a comment */ /*@fn a footnote*/ /*@en an endnote*/
//
// [Reader] turns well-formed document text into a [model.Project]; run the
// bytes through the sanitizer and xmlfix packages first. [Writer] turns a
// project back into a document.
//
// Plot lines have no element of their own. They are stored as chapters
// carrying a Field_ArcDefinition custom field with the plot line's short
// name, and their plot points as scenes listed by such a chapter. Scenes
// name the plot lines they belong to in Field_SceneArcs.
//
// # Custom fields
//
// Fields whose type is known, such as Field_RenumberChapters or
// Field_WorkPhase, are decoded to bool or int values; see
// [DeclaredFieldKind]. Flags are written as "1" and "0" and read from "1",
// "-1", "0" or an empty value. A value that does not fit its declared type
// is dropped with an issue rather than guessed.
package yw7
