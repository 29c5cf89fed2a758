package xmlfix

import (
	"strings"
)

type tokenKind int

const (
	tokText tokenKind = iota
	tokStart
	tokEnd
	tokEmpty
	tokCDATA
	tokComment
	tokPI
	tokDoctype
)

// token is one lexical unit of a near-XML document. raw is the exact source
// text, already repaired where the lexer had to (escaped text, closed CDATA).
type token struct {
	kind tokenKind
	name string
	raw  string
	line int
}

// lexer splits text into tokens. It never fails: anything that does not
// form valid markup becomes escaped character data.
type lexer struct {
	src     string
	pos     int
	line    int
	repairs []Repair
}

func tokenize(src string) ([]token, []Repair) {
	lx := &lexer{src: src, line: 1}
	var toks []token
	for lx.pos < len(lx.src) {
		toks = append(toks, lx.next())
	}
	return toks, lx.repairs
}

func (lx *lexer) repair(format string, args ...any) {
	lx.repairs = append(lx.repairs, newRepair(lx.line, format, args...))
}

func (lx *lexer) advance(n int) string {
	s := lx.src[lx.pos : lx.pos+n]
	lx.pos += n
	lx.line += strings.Count(s, "\n")
	return s
}

func (lx *lexer) next() token {
	rest := lx.src[lx.pos:]
	line := lx.line
	if rest[0] != '<' {
		n := strings.IndexByte(rest, '<')
		if n < 0 {
			n = len(rest)
		}
		return token{kind: tokText, raw: lx.escapeText(lx.advance(n), line), line: line}
	}

	switch {
	case strings.HasPrefix(rest, "<!--"):
		end := strings.Index(rest[4:], "-->")
		if end < 0 {
			lx.repair("closed unterminated comment")
			return token{kind: tokComment, raw: lx.advance(len(rest)) + "-->", line: line}
		}
		return token{kind: tokComment, raw: lx.advance(4 + end + 3), line: line}

	case strings.HasPrefix(rest, "<![CDATA["):
		end := strings.Index(rest[9:], "]]>")
		if end < 0 {
			lx.repair("closed unterminated CDATA section")
			return token{kind: tokCDATA, raw: lx.advance(len(rest)) + "]]>", line: line}
		}
		return token{kind: tokCDATA, raw: lx.advance(9 + end + 3), line: line}

	case strings.HasPrefix(rest, "<?"):
		end := strings.Index(rest, "?>")
		if end < 0 {
			break
		}
		return token{kind: tokPI, raw: lx.advance(end + 2), line: line}

	case strings.HasPrefix(rest, "<!"):
		end := strings.IndexByte(rest, '>')
		if end < 0 {
			break
		}
		return token{kind: tokDoctype, raw: lx.advance(end + 1), line: line}

	case strings.HasPrefix(rest, "</"):
		name := scanName(rest[2:])
		if name == "" {
			break
		}
		i := 2 + len(name)
		for i < len(rest) && isSpace(rest[i]) {
			i++
		}
		if i < len(rest) && rest[i] == '>' {
			return token{kind: tokEnd, name: name, raw: lx.advance(i + 1), line: line}
		}

	default:
		name := scanName(rest[1:])
		if name == "" {
			break
		}
		if end, empty, ok := scanTagEnd(rest, 1+len(name)); ok {
			kind := tokStart
			if empty {
				kind = tokEmpty
			}
			raw := lx.advance(end)
			return token{kind: kind, name: name, raw: lx.fixAttributes(raw, line), line: line}
		}
	}

	// Not markup: a stray "<" in character data.
	lx.advance(1)
	lx.repair("escaped stray '<'")
	return token{kind: tokText, raw: "&lt;", line: line}
}

// scanName returns the XML name at the start of s, or "".
func scanName(s string) string {
	i := 0
	for i < len(s) {
		c := s[i]
		if isNameStart(c) || (i > 0 && (isDigit(c) || c == '-' || c == '.')) {
			i++
			continue
		}
		break
	}
	return s[:i]
}

// scanTagEnd finds the '>' closing a start tag whose attributes begin at
// s[from:], honoring quoted attribute values. It reports the length of the
// tag and whether it is self-closing. A '<' outside quotes means the tag is
// not well-formed markup.
func scanTagEnd(s string, from int) (int, bool, bool) {
	var quote byte
	for i := from; i < len(s); i++ {
		c := s[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == '<':
			return 0, false, false
		case c == '>':
			return i + 1, i > from && s[i-1] == '/', true
		}
	}
	return 0, false, false
}

// fixAttributes escapes bare '&' and '<' inside quoted attribute values.
func (lx *lexer) fixAttributes(raw string, line int) string {
	if !strings.ContainsAny(raw, "&") && strings.Count(raw, "<") == 1 {
		return raw
	}
	var sb strings.Builder
	var quote byte
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		switch {
		case quote != 0 && c == quote:
			quote = 0
		case quote == 0 && (c == '"' || c == '\''):
			quote = c
		case quote != 0 && c == '<':
			sb.WriteString("&lt;")
			lx.repairs = append(lx.repairs, newRepair(line, "escaped '<' in attribute value"))
			continue
		case c == '&':
			if fixed, n, changed := fixEntity(raw[i:]); changed {
				sb.WriteString(fixed)
				i += n - 1
				lx.repairs = append(lx.repairs, newRepair(line, "escaped bare '&'"))
				continue
			}
		}
		sb.WriteByte(c)
	}
	return sb.String()
}

// escapeText repairs character data: bare '&' and HTML-only entities.
func (lx *lexer) escapeText(s string, line int) string {
	if !strings.Contains(s, "&") {
		return s
	}
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] != '&' {
			sb.WriteByte(s[i])
			continue
		}
		fixed, n, changed := fixEntity(s[i:])
		if changed {
			lx.repairs = append(lx.repairs, newRepair(line, "repaired entity %q", s[i:i+n]))
		}
		sb.WriteString(fixed)
		i += n - 1
	}
	return sb.String()
}

func isNameStart(c byte) bool {
	return c == '_' || c == ':' || (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') || c >= 0x80
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isSpace(c byte) bool { return c == ' ' || c == '\t' || c == '\n' || c == '\r' }
