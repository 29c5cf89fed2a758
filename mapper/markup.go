package mapper

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/erraggy/yw7tools/model"
)

const quotationStyle = "quotations"

// RenderMarkup encodes rich text as novx paragraph markup.
//
// Runs are normalized first. Inline elements nest span, strong, em from
// outside in; annotation elements are placed inside whatever inline
// elements are open.
func RenderMarkup(t model.Text) string {
	t = t.Normalize()
	var sb strings.Builder
	for i, p := range t.Paragraphs {
		if i > 0 {
			sb.WriteByte('\n')
		}
		if p.Quotation {
			sb.WriteString(`<p style="` + quotationStyle + `">`)
		} else {
			sb.WriteString("<p>")
		}
		var open []inlineTag
		for _, r := range p.Runs {
			if r.Note != model.NoteNone {
				renderNote(&sb, r)
				continue
			}
			want := inlineTags(r.Style)
			keep := commonPrefix(open, want)
			for j := len(open) - 1; j >= keep; j-- {
				sb.WriteString("</" + open[j].name + ">")
			}
			for _, tag := range want[keep:] {
				sb.WriteString(tag.open())
			}
			open = want
			escape(&sb, r.Text)
		}
		for j := len(open) - 1; j >= 0; j-- {
			sb.WriteString("</" + open[j].name + ">")
		}
		sb.WriteString("</p>")
	}
	return sb.String()
}

type inlineTag struct {
	name string
	lang string
}

func (t inlineTag) open() string {
	if t.name == "span" {
		var sb strings.Builder
		sb.WriteString(`<span xml:lang="`)
		escape(&sb, t.lang)
		sb.WriteString(`">`)
		return sb.String()
	}
	return "<" + t.name + ">"
}

func inlineTags(s model.Style) []inlineTag {
	var tags []inlineTag
	if s.Lang != "" {
		tags = append(tags, inlineTag{name: "span", lang: s.Lang})
	}
	if s.Bold {
		tags = append(tags, inlineTag{name: "strong"})
	}
	if s.Italic {
		tags = append(tags, inlineTag{name: "em"})
	}
	return tags
}

func commonPrefix(a, b []inlineTag) int {
	n := 0
	for n < len(a) && n < len(b) && a[n] == b[n] {
		n++
	}
	return n
}

func renderNote(sb *strings.Builder, r model.Run) {
	var name string
	switch r.Note {
	case model.NoteComment:
		name = "comment"
		sb.WriteString("<comment>")
	case model.NoteEndnote:
		name = "note"
		sb.WriteString(`<note class="endnote">`)
	default:
		name = "note"
		if r.Starred {
			sb.WriteString(`<note class="footnote" label="*">`)
		} else {
			sb.WriteString(`<note class="footnote">`)
		}
	}
	for _, line := range strings.Split(r.Text, "\n") {
		sb.WriteString("<p>")
		escape(sb, line)
		sb.WriteString("</p>")
	}
	sb.WriteString("</" + name + ">")
}

func escape(sb *strings.Builder, s string) {
	// strings.Builder writes never fail.
	_ = xml.EscapeText(sb, []byte(s))
}

// ParseMarkup decodes novx paragraph markup into rich text.
//
// strong/b and em/i set emphasis, span with xml:lang sets the language,
// comment and note become annotation runs. The text of any other element
// is kept; the element names are returned as unsupported. Comment metadata
// (creator, date) is skipped.
func ParseMarkup(s string) (model.Text, []string, error) {
	if strings.TrimSpace(s) == "" {
		return model.Text{}, nil, nil
	}
	p := &markupParser{}
	dec := xml.NewDecoder(strings.NewReader("<content>" + s + "</content>"))
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return model.Text{}, nil, fmt.Errorf("invalid markup: %w", err)
		}
		switch tok := tok.(type) {
		case xml.StartElement:
			p.start(tok)
		case xml.EndElement:
			p.end()
		case xml.CharData:
			p.text(string(tok))
		}
	}
	return model.Text{Paragraphs: p.paragraphs}.Normalize(), p.unsupported, nil
}

type markupFrame struct {
	name  string
	style model.Style
}

type markupParser struct {
	paragraphs  []model.Paragraph
	cur         int
	inPara      bool
	stack       []markupFrame
	skip        int
	note        *model.Run
	noteParas   int
	noteBuf     strings.Builder
	unsupported []string
}

func (p *markupParser) style() model.Style {
	if len(p.stack) == 0 {
		return model.Style{}
	}
	return p.stack[len(p.stack)-1].style
}

func attr(se xml.StartElement, local string) (string, bool) {
	for _, a := range se.Attr {
		if a.Name.Local == local {
			return a.Value, true
		}
	}
	return "", false
}

func (p *markupParser) start(se xml.StartElement) {
	name := se.Name.Local
	st := p.style()
	if p.skip > 0 {
		p.skip++
		p.stack = append(p.stack, markupFrame{name: name, style: st})
		return
	}
	switch name {
	case "content":
	case "p":
		if p.note != nil {
			if p.noteParas > 0 {
				p.noteBuf.WriteByte('\n')
			}
			p.noteParas++
			break
		}
		style, _ := attr(se, "style")
		p.paragraphs = append(p.paragraphs, model.Paragraph{Quotation: style == quotationStyle})
		p.cur = len(p.paragraphs) - 1
		p.inPara = true
		st = model.Style{}
	case "strong", "b":
		st.Bold = true
	case "em", "i":
		st.Italic = true
	case "span":
		if lang, ok := attr(se, "lang"); ok {
			st.Lang = lang
		}
	case "comment":
		p.beginNote(model.Run{Note: model.NoteComment})
	case "note":
		run := model.Run{Note: model.NoteFootnote}
		if class, _ := attr(se, "class"); class == "endnote" {
			run.Note = model.NoteEndnote
		} else if label, _ := attr(se, "label"); label == "*" {
			run.Starred = true
		}
		p.beginNote(run)
	case "creator", "date", "note-citation":
		p.skip = 1
	default:
		p.unsupported = appendUnique(p.unsupported, name)
	}
	p.stack = append(p.stack, markupFrame{name: name, style: st})
}

func (p *markupParser) beginNote(r model.Run) {
	if p.note != nil {
		// Nested annotations are flattened into the outer one.
		return
	}
	p.note = &r
	p.noteParas = 0
	p.noteBuf.Reset()
}

func (p *markupParser) end() {
	if len(p.stack) == 0 {
		return
	}
	top := p.stack[len(p.stack)-1]
	p.stack = p.stack[:len(p.stack)-1]
	if p.skip > 0 {
		p.skip--
		return
	}
	switch top.name {
	case "p":
		if p.note == nil {
			p.inPara = false
		}
	case "comment", "note":
		if p.note != nil && !p.insideAnnotation() {
			r := *p.note
			r.Text = p.noteBuf.String()
			p.note = nil
			p.appendRun(r)
		}
	}
}

func (p *markupParser) insideAnnotation() bool {
	for _, f := range p.stack {
		if f.name == "comment" || f.name == "note" {
			return true
		}
	}
	return false
}

func (p *markupParser) text(s string) {
	if p.skip > 0 {
		return
	}
	if p.note != nil {
		p.noteBuf.WriteString(s)
		return
	}
	if !p.inPara && strings.TrimSpace(s) == "" {
		return
	}
	p.appendRun(model.Run{Text: s, Style: p.style()})
}

func (p *markupParser) appendRun(r model.Run) {
	if !p.inPara {
		p.paragraphs = append(p.paragraphs, model.Paragraph{})
		p.cur = len(p.paragraphs) - 1
	}
	p.paragraphs[p.cur].Runs = append(p.paragraphs[p.cur].Runs, r)
}

func appendUnique(list []string, s string) []string {
	for _, v := range list {
		if v == s {
			return list
		}
	}
	return append(list, s)
}
