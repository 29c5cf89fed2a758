package yw7

import (
	"regexp"
	"strings"

	"github.com/erraggy/yw7tools/model"
)

const quotationPrefix = "> "

var (
	// Raw codes yWriter passes to its exporters. They have no rich text
	// equivalent and are removed on read.
	rawCodePatterns = []*regexp.Regexp{
		regexp.MustCompile(`<RTFBRK>`),
		regexp.MustCompile(`\[/?[hcrsu][0-9]*\]`),
		regexp.MustCompile(`<HTM .+?/HTM>`),
		regexp.MustCompile(`<TEX .+?/TEX>`),
		regexp.MustCompile(`<RTF .+?/RTF>`),
		regexp.MustCompile(`<epub .+?/epub>`),
		regexp.MustCompile(`<mobi .+?/mobi>`),
		regexp.MustCompile(`<rtfimg .+?/rtfimg>`),
	}

	langCode    = regexp.MustCompile(`^\[(/?)lang=([A-Za-z0-9_-]+)\]`)
	literalCode = regexp.MustCompile(`\[/?[bi]\]|\[/?lang=[A-Za-z0-9_-]+\]|/\*`)
	notePattern = regexp.MustCompile(`^ *@(fn\*?|en) (.*)$`)
)

// DecodeShortcodes parses yWriter scene text into rich text.
//
// Lines become paragraphs; a line starting with "> " is a quotation. [b], [i]
// and [lang=xx] spans may reach across lines. /* ... */ is a comment,
// /*@fn ...*/ a footnote (/*@fn* ...*/ cited with "*"), /*@en ...*/ an
// endnote. Raw formatting codes without a rich text equivalent are removed
// and returned in removed.
func DecodeShortcodes(s string) (text model.Text, removed []string) {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	for _, re := range rawCodePatterns {
		if found := re.FindAllString(s, -1); len(found) > 0 {
			removed = append(removed, found...)
			s = re.ReplaceAllString(s, "")
		}
	}
	if s == "" {
		return model.Text{}, removed
	}

	d := &shortcodeDecoder{}
	for _, line := range strings.Split(s, "\n") {
		text.Paragraphs = append(text.Paragraphs, d.paragraph(line))
	}
	return text, removed
}

// shortcodeDecoder carries the open styles from one line to the next.
type shortcodeDecoder struct {
	style model.Style
	runs  []model.Run
	buf   strings.Builder
}

func (d *shortcodeDecoder) flush() {
	if d.buf.Len() > 0 {
		d.runs = append(d.runs, model.Run{Text: d.buf.String(), Style: d.style})
		d.buf.Reset()
	}
}

func (d *shortcodeDecoder) setStyle(s model.Style) {
	if s != d.style {
		d.flush()
		d.style = s
	}
}

func (d *shortcodeDecoder) paragraph(line string) model.Paragraph {
	var p model.Paragraph
	if strings.HasPrefix(line, quotationPrefix) {
		p.Quotation = true
		line = line[len(quotationPrefix):]
	}
	d.runs = nil

	for i := 0; i < len(line); {
		rest := line[i:]
		if n, ok := d.code(rest); ok {
			i += n
			continue
		}
		if strings.HasPrefix(rest, "/*") {
			if end := strings.Index(rest[2:], "*/"); end >= 0 {
				d.flush()
				d.runs = append(d.runs, annotation(rest[2:2+end]))
				i += 2 + end + 2
				continue
			}
		}
		d.buf.WriteByte(line[i])
		i++
	}
	d.flush()
	p.Runs = model.MergeRuns(d.runs)
	return p
}

// code consumes a style shortcode at the start of s.
func (d *shortcodeDecoder) code(s string) (int, bool) {
	if !strings.HasPrefix(s, "[") {
		return 0, false
	}
	st := d.style
	switch {
	case strings.HasPrefix(s, "[b]"):
		st.Bold = true
		d.setStyle(st)
		return 3, true
	case strings.HasPrefix(s, "[/b]"):
		st.Bold = false
		d.setStyle(st)
		return 4, true
	case strings.HasPrefix(s, "[i]"):
		st.Italic = true
		d.setStyle(st)
		return 3, true
	case strings.HasPrefix(s, "[/i]"):
		st.Italic = false
		d.setStyle(st)
		return 4, true
	}
	if m := langCode.FindStringSubmatch(s); m != nil {
		if m[1] == "" {
			st.Lang = m[2]
		} else if st.Lang == m[2] {
			st.Lang = ""
		}
		d.setStyle(st)
		return len(m[0]), true
	}
	return 0, false
}

func annotation(body string) model.Run {
	m := notePattern.FindStringSubmatch(body)
	if m == nil {
		return model.Run{Text: body, Note: model.NoteComment}
	}
	switch m[1] {
	case "en":
		return model.Run{Text: m[2], Note: model.NoteEndnote}
	case "fn*":
		return model.Run{Text: m[2], Note: model.NoteFootnote, Starred: true}
	default:
		return model.Run{Text: m[2], Note: model.NoteFootnote}
	}
}

// LiteralCodes returns the shortcodes that occur as plain text in t.
// EncodeShortcodes writes them unchanged, so DecodeShortcodes reads them back
// as formatting, annotations, quotations or removed raw codes. Annotation
// bodies are not checked.
func LiteralCodes(t model.Text) []string {
	var found []string
	for _, p := range t.Paragraphs {
		for i, r := range p.Runs {
			if r.Note != model.NoteNone {
				continue
			}
			if i == 0 && !p.Quotation && r.Style.IsPlain() && strings.HasPrefix(r.Text, quotationPrefix) {
				found = append(found, quotationPrefix)
			}
			found = append(found, literalCode.FindAllString(r.Text, -1)...)
			for _, re := range rawCodePatterns {
				found = append(found, re.FindAllString(r.Text, -1)...)
			}
		}
	}
	return found
}

// EncodeShortcodes renders rich text as yWriter scene text.
//
// Adjacent runs of the same style are merged first, so equivalent texts
// always produce the same output. Spans nest language outside bold outside
// italic and are closed at the end of each paragraph.
func EncodeShortcodes(t model.Text) string {
	var sb strings.Builder
	for i, p := range t.Normalize().Paragraphs {
		if i > 0 {
			sb.WriteByte('\n')
		}
		if p.Quotation {
			sb.WriteString(quotationPrefix)
		}
		var cur model.Style
		for _, r := range p.Runs {
			if r.Note != model.NoteNone {
				writeAnnotation(&sb, r)
				continue
			}
			transition(&sb, cur, r.Style)
			sb.WriteString(r.Text)
			cur = r.Style
		}
		transition(&sb, cur, model.Style{})
	}
	return sb.String()
}

func writeAnnotation(sb *strings.Builder, r model.Run) {
	body := strings.ReplaceAll(r.Text, "*/", "* /")
	body = strings.ReplaceAll(body, "\n", " ")
	sb.WriteString("/*")
	switch {
	case r.Note == model.NoteEndnote:
		sb.WriteString("@en ")
	case r.Note == model.NoteFootnote && r.Starred:
		sb.WriteString("@fn* ")
	case r.Note == model.NoteFootnote:
		sb.WriteString("@fn ")
	}
	sb.WriteString(body)
	sb.WriteString("*/")
}

type marker struct {
	open, close string
}

// markers lists the spans of a style from outermost to innermost.
func markers(s model.Style) []marker {
	var ms []marker
	if s.Lang != "" {
		ms = append(ms, marker{"[lang=" + s.Lang + "]", "[/lang=" + s.Lang + "]"})
	}
	if s.Bold {
		ms = append(ms, marker{"[b]", "[/b]"})
	}
	if s.Italic {
		ms = append(ms, marker{"[i]", "[/i]"})
	}
	return ms
}

// transition closes the spans of from that to does not share, innermost
// first, then opens the spans of to that are not open yet.
func transition(sb *strings.Builder, from, to model.Style) {
	if from == to {
		return
	}
	a, b := markers(from), markers(to)
	common := 0
	for common < len(a) && common < len(b) && a[common] == b[common] {
		common++
	}
	for i := len(a) - 1; i >= common; i-- {
		sb.WriteString(a[i].close)
	}
	for i := common; i < len(b); i++ {
		sb.WriteString(b[i].open)
	}
}
