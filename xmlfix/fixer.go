package xmlfix

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/erraggy/yw7tools/ywerrors"
)

// InlineElements are the emphasis elements the fixer re-nests when their
// tags interleave.
var InlineElements = map[string]bool{
	"b":      true,
	"i":      true,
	"em":     true,
	"strong": true,
	"u":      true,
	"s":      true,
}

// Repair describes one change made to the document.
type Repair struct {
	// Line is the 1-based line of the input where the repair applies.
	Line    int
	Message string
}

func newRepair(line int, format string, args ...any) Repair {
	return Repair{Line: line, Message: fmt.Sprintf(format, args...)}
}

// String returns "line N: message".
func (r Repair) String() string {
	return fmt.Sprintf("line %d: %s", r.Line, r.Message)
}

// Result is a repaired document.
type Result struct {
	// Text is well-formed XML.
	Text string
	// Repairs lists every change, in document order. Empty when the input
	// was already well-formed.
	Repairs []Repair
}

// Changed reports whether any repair was applied.
func (r *Result) Changed() bool {
	return len(r.Repairs) > 0
}

type openElement struct {
	name string
	raw  string
}

type piece struct {
	text    string
	startOf string // set for inline start tags, to drop empty pairs
}

// fixer rewrites a token stream into properly nested markup.
type fixer struct {
	stack   []openElement
	out     []piece
	repairs []Repair
}

// Fix repairs near-valid XML so that it parses.
//
// Illegal control characters are stripped, bare '&' and stray '<' are
// escaped, interleaved inline emphasis is re-nested, unterminated elements
// are closed at the end of their containing element and stray end tags are
// dropped. Every repair is idempotent: fixing the output again changes
// nothing.
//
// Fix returns [ywerrors.UnrepairableDocumentError] if the result still does
// not parse.
func Fix(text string) (*Result, error) {
	res := &Result{}
	if clean := StripIllegal(text); clean != text {
		res.Repairs = append(res.Repairs, Repair{Line: 1, Message: "stripped illegal control characters"})
		text = clean
	}

	toks, lexRepairs := tokenize(text)
	res.Repairs = append(res.Repairs, lexRepairs...)

	f := &fixer{}
	for _, tok := range toks {
		f.handle(tok)
	}
	f.closeAll(lineOf(toks))
	res.Repairs = append(res.Repairs, f.repairs...)

	var sb strings.Builder
	for _, p := range f.out {
		sb.WriteString(p.text)
	}
	res.Text = sb.String()

	if err := Validate(res.Text); err != nil {
		return nil, err
	}
	return res, nil
}

func lineOf(toks []token) int {
	if len(toks) == 0 {
		return 1
	}
	return toks[len(toks)-1].line
}

func (f *fixer) handle(tok token) {
	switch tok.kind {
	case tokStart:
		f.stack = append(f.stack, openElement{name: tok.name, raw: tok.raw})
		p := piece{text: tok.raw}
		if InlineElements[tok.name] {
			p.startOf = tok.name
		}
		f.out = append(f.out, p)
	case tokEnd:
		f.end(tok)
	default:
		f.out = append(f.out, piece{text: tok.raw})
	}
}

func (f *fixer) end(tok token) {
	n := len(f.stack)
	if n > 0 && f.stack[n-1].name == tok.name {
		f.pop(tok.line)
		return
	}

	if InlineElements[tok.name] {
		// Look for the element among the inline elements on top of the stack.
		for k := n - 1; k >= 0 && InlineElements[f.stack[k].name]; k-- {
			if f.stack[k].name != tok.name {
				continue
			}
			above := append([]openElement(nil), f.stack[k+1:]...)
			for range above {
				f.pop(tok.line)
			}
			f.pop(tok.line)
			for _, el := range above {
				f.stack = append(f.stack, el)
				f.out = append(f.out, piece{text: el.raw, startOf: el.name})
			}
			f.repairs = append(f.repairs, newRepair(tok.line, "re-nested </%s> across %s", tok.name, names(above)))
			return
		}
		f.repairs = append(f.repairs, newRepair(tok.line, "dropped stray </%s>", tok.name))
		return
	}

	for k := n - 1; k >= 0; k-- {
		if f.stack[k].name != tok.name {
			continue
		}
		for len(f.stack) > k+1 {
			name := f.stack[len(f.stack)-1].name
			f.pop(tok.line)
			f.repairs = append(f.repairs, newRepair(tok.line, "closed unterminated <%s> at end of <%s>", name, tok.name))
		}
		f.pop(tok.line)
		return
	}
	f.repairs = append(f.repairs, newRepair(tok.line, "dropped stray </%s>", tok.name))
}

// pop closes the element on top of the stack. An inline element closed right
// after its start tag is removed instead of being written empty.
func (f *fixer) pop(line int) {
	el := f.stack[len(f.stack)-1]
	f.stack = f.stack[:len(f.stack)-1]
	if last := len(f.out) - 1; last >= 0 && f.out[last].startOf == el.name && f.out[last].text == el.raw {
		f.out = f.out[:last]
		f.repairs = append(f.repairs, newRepair(line, "removed empty <%s>", el.name))
		return
	}
	f.out = append(f.out, piece{text: "</" + el.name + ">"})
}

func (f *fixer) closeAll(line int) {
	for len(f.stack) > 0 {
		name := f.stack[len(f.stack)-1].name
		f.pop(line)
		f.repairs = append(f.repairs, newRepair(line, "closed unterminated <%s> at end of document", name))
	}
}

func names(els []openElement) string {
	if len(els) == 0 {
		return "nothing"
	}
	parts := make([]string, len(els))
	for i, el := range els {
		parts[i] = "<" + el.name + ">"
	}
	return strings.Join(parts, ", ")
}

// Validate reports whether text is well-formed XML. The text is taken as
// already decoded, whatever its declaration names.
func Validate(text string) error {
	dec := xml.NewDecoder(strings.NewReader(text))
	dec.CharsetReader = func(_ string, r io.Reader) (io.Reader, error) { return r, nil }
	for {
		_, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			line := 0
			var synErr *xml.SyntaxError
			if errors.As(err, &synErr) {
				line = synErr.Line
			}
			return &ywerrors.UnrepairableDocumentError{
				Line:    line,
				Message: "document is not well-formed after repair",
				Cause:   err,
			}
		}
	}
}
