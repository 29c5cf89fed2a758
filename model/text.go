package model

import (
	"strings"
)

// Style is the inline formatting of a run.
type Style struct {
	Bold   bool
	Italic bool
	// Lang is the language code of a language span, empty for the project language.
	Lang string
}

// IsPlain reports whether the style carries no formatting.
func (s Style) IsPlain() bool {
	return s == Style{}
}

// NoteKind marks an annotation run.
type NoteKind int

const (
	// NoteNone marks ordinary text.
	NoteNone NoteKind = iota
	NoteComment
	NoteFootnote
	NoteEndnote
)

// String returns the lower-case note kind.
func (k NoteKind) String() string {
	switch k {
	case NoteComment:
		return "comment"
	case NoteFootnote:
		return "footnote"
	case NoteEndnote:
		return "endnote"
	default:
		return "none"
	}
}

// Run is a stretch of text with one style, or a single annotation.
//
// For annotation runs (Note != NoteNone) Text is the annotation body and
// Style is ignored.
type Run struct {
	Text  string
	Style Style
	Note  NoteKind
	// Starred marks a footnote cited with "*" instead of a number.
	Starred bool
}

// Paragraph is one line of scene text.
type Paragraph struct {
	// Quotation marks a block quotation paragraph.
	Quotation bool
	Runs      []Run
}

// Text is rich scene text.
type Text struct {
	Paragraphs []Paragraph
}

// PlainText builds unformatted text, one paragraph per line.
func PlainText(s string) Text {
	if s == "" {
		return Text{}
	}
	lines := strings.Split(s, "\n")
	t := Text{Paragraphs: make([]Paragraph, len(lines))}
	for i, line := range lines {
		if line != "" {
			t.Paragraphs[i].Runs = []Run{{Text: line}}
		}
	}
	return t
}

// IsEmpty reports whether the text has no paragraphs.
func (t Text) IsEmpty() bool {
	return len(t.Paragraphs) == 0
}

// String returns the text without formatting or annotations, paragraphs
// separated by newlines.
func (t Text) String() string {
	var sb strings.Builder
	for i, p := range t.Paragraphs {
		if i > 0 {
			sb.WriteByte('\n')
		}
		for _, r := range p.Runs {
			if r.Note == NoteNone {
				sb.WriteString(r.Text)
			}
		}
	}
	return sb.String()
}

// Normalize merges adjacent runs of identical style and drops empty text
// runs. Annotation runs are never merged. The result shares no slices with t.
func (t Text) Normalize() Text {
	if len(t.Paragraphs) == 0 {
		return Text{}
	}
	out := Text{Paragraphs: make([]Paragraph, len(t.Paragraphs))}
	for i, p := range t.Paragraphs {
		out.Paragraphs[i] = Paragraph{Quotation: p.Quotation, Runs: MergeRuns(p.Runs)}
	}
	return out
}

// MergeRuns returns runs with adjacent same-style text runs merged and empty
// text runs removed.
func MergeRuns(runs []Run) []Run {
	var merged []Run
	for _, r := range runs {
		if r.Note == NoteNone {
			if r.Text == "" {
				continue
			}
			r.Starred = false
			if n := len(merged); n > 0 && merged[n-1].Note == NoteNone && merged[n-1].Style == r.Style {
				merged[n-1].Text += r.Text
				continue
			}
		} else {
			r.Style = Style{}
		}
		merged = append(merged, r)
	}
	return merged
}

// Equal reports whether a and b carry the same text, styles and annotations
// after normalization.
func (t Text) Equal(o Text) bool {
	a, b := t.Normalize(), o.Normalize()
	if len(a.Paragraphs) != len(b.Paragraphs) {
		return false
	}
	for i := range a.Paragraphs {
		pa, pb := a.Paragraphs[i], b.Paragraphs[i]
		if pa.Quotation != pb.Quotation || len(pa.Runs) != len(pb.Runs) {
			return false
		}
		for j := range pa.Runs {
			if pa.Runs[j] != pb.Runs[j] {
				return false
			}
		}
	}
	return true
}

// Languages returns the language codes of language spans in order of first use.
func (t Text) Languages() []string {
	var langs []string
	seen := map[string]bool{}
	for _, p := range t.Paragraphs {
		for _, r := range p.Runs {
			if r.Note == NoteNone && r.Style.Lang != "" && !seen[r.Style.Lang] {
				seen[r.Style.Lang] = true
				langs = append(langs, r.Style.Lang)
			}
		}
	}
	return langs
}
