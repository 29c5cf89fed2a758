package sanitizer

import (
	"bytes"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/erraggy/yw7tools/ywerrors"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
)

// Source tells how the encoding of a document was determined.
type Source string

const (
	// SourceBOM means a byte-order mark named the encoding.
	SourceBOM Source = "bom"
	// SourceDeclared means the XML prologue (or its absence, for UTF-8) named it.
	SourceDeclared Source = "declared"
	// SourceFallback means the declared encoding failed and a fallback decoded the stream.
	SourceFallback Source = "fallback"
)

// DefaultFallbacks is the fallback order used when none is configured:
// 16-bit first (taken only when the NUL-byte pattern indicates it), then the
// single-byte Western encoding used by older yWriter versions.
var DefaultFallbacks = []string{"utf-16", "windows-1252"}

// Result is a decoded document.
type Result struct {
	// Text is the decoded document. Its XML declaration, if any, names utf-8.
	Text string
	// Encoding is the canonical name of the encoding that decoded the stream.
	Encoding string
	// Declared is the encoding named in the XML prologue, empty if none.
	Declared string
	// Source tells how Encoding was determined.
	Source Source
	// Tried lists the encodings attempted before Encoding succeeded.
	Tried []string
}

// Option configures Decode.
type Option func(*config) error

type config struct {
	path      string
	fallbacks []string
}

// WithFallbacks sets the fallback encodings tried, in order, when the
// declared encoding fails to decode the stream. "utf-16" is taken only when
// the stream's NUL-byte pattern indicates a 16-bit encoding; the pattern
// also decides its byte order.
func WithFallbacks(names ...string) Option {
	return func(c *config) error {
		for _, name := range names {
			if !Supported(name) {
				return &ywerrors.ConfigError{Option: "fallbacks", Value: name, Message: "unknown encoding"}
			}
		}
		c.fallbacks = append([]string(nil), names...)
		return nil
	}
}

// WithPath names the document in errors.
func WithPath(path string) Option {
	return func(c *config) error {
		c.path = path
		return nil
	}
}

// Supported reports whether name is an encoding Decode can use.
func Supported(name string) bool {
	if isUTF16Name(name) {
		return true
	}
	_, err := htmlindex.Get(name)
	return err == nil
}

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}

	declPattern = regexp.MustCompile(`^\s*<\?xml[^>]*?encoding\s*=\s*["']([A-Za-z0-9._:-]+)["']`)
	declRewrite = regexp.MustCompile(`^(\s*<\?xml[^>]*?encoding\s*=\s*["'])[A-Za-z0-9._:-]+(["'])`)
)

// Decode detects the real encoding of raw and decodes it.
//
// A byte-order mark is trusted first. Otherwise the encoding declared in the
// XML prologue is tried (UTF-8 when there is none). If decoding under it
// yields invalid sequences, the fallback encodings are tried in order.
// Decode fails with [ywerrors.EncodingError] only when no candidate decodes
// the whole stream.
func Decode(raw []byte, opts ...Option) (*Result, error) {
	cfg := &config{fallbacks: DefaultFallbacks}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	res := &Result{}
	order, has16 := nulPattern(raw)

	switch {
	case bytes.HasPrefix(raw, bomUTF8):
		if text, ok := decodeUTF8(raw[len(bomUTF8):]); ok {
			return finish(res, text, "utf-8", SourceBOM), nil
		}
		res.Tried = append(res.Tried, "utf-8")
	case bytes.HasPrefix(raw, bomUTF16LE):
		if text, ok := decodeUTF16(raw[len(bomUTF16LE):], unicode.LittleEndian); ok {
			return finish(res, text, "utf-16le", SourceBOM), nil
		}
		res.Tried = append(res.Tried, "utf-16le")
	case bytes.HasPrefix(raw, bomUTF16BE):
		if text, ok := decodeUTF16(raw[len(bomUTF16BE):], unicode.BigEndian); ok {
			return finish(res, text, "utf-16be", SourceBOM), nil
		}
		res.Tried = append(res.Tried, "utf-16be")
	}

	res.Declared = sniffDeclaration(raw)
	declared := res.Declared
	if declared == "" {
		declared = "utf-8"
	}
	if name, text, ok := tryEncoding(raw, declared, order, has16); ok {
		return finish(res, text, name, SourceDeclared), nil
	}
	res.Tried = append(res.Tried, strings.ToLower(declared))

	for _, fb := range cfg.fallbacks {
		if isGenericUTF16(fb) && !has16 {
			continue
		}
		name, text, ok := tryEncoding(raw, fb, order, has16)
		if ok {
			return finish(res, text, name, SourceFallback), nil
		}
		res.Tried = append(res.Tried, name)
	}

	return nil, &ywerrors.EncodingError{
		Path:     cfg.path,
		Declared: res.Declared,
		Tried:    res.Tried,
		Message:  "no candidate encoding decodes the byte stream",
	}
}

func finish(res *Result, text, name string, src Source) *Result {
	text = strings.TrimPrefix(text, "\ufeff")
	res.Text = declRewrite.ReplaceAllString(text, "${1}utf-8${2}")
	res.Encoding = name
	res.Source = src
	return res
}

// tryEncoding decodes raw under the named encoding and validates the result.
// It returns the canonical encoding name in every case.
func tryEncoding(raw []byte, name string, order unicode.Endianness, has16 bool) (string, string, bool) {
	if isUTF16Name(name) {
		switch strings.ToLower(name) {
		case "utf-16le":
			order = unicode.LittleEndian
		case "utf-16be":
			order = unicode.BigEndian
		}
		canon := "utf-16le"
		if order == unicode.BigEndian {
			canon = "utf-16be"
		}
		text, ok := decodeUTF16(raw, order)
		return canon, text, ok
	}

	enc, err := htmlindex.Get(name)
	if err != nil {
		return strings.ToLower(name), "", false
	}
	canon, err := htmlindex.Name(enc)
	if err != nil {
		canon = strings.ToLower(name)
	}
	if canon == "utf-8" {
		text, ok := decodeUTF8(raw)
		if ok && has16 && strings.ContainsRune(text, 0) {
			return canon, "", false
		}
		return canon, text, ok
	}
	text, ok := decodeSingleByte(raw, enc)
	if ok && has16 && strings.ContainsRune(text, 0) {
		return canon, "", false
	}
	return canon, text, ok
}

func decodeUTF8(raw []byte) (string, bool) {
	if !utf8.Valid(raw) {
		return "", false
	}
	return string(raw), true
}

func decodeUTF16(raw []byte, order unicode.Endianness) (string, bool) {
	if len(raw)%2 != 0 {
		return "", false
	}
	out, err := unicode.UTF16(order, unicode.IgnoreBOM).NewDecoder().Bytes(raw)
	if err != nil {
		return "", false
	}
	// The decoder substitutes U+FFFD for unpaired surrogates; any more
	// replacement characters than the stream encodes means invalid input.
	if countRune(out, utf8.RuneError) > countUnit(raw, 0xFFFD, order) {
		return "", false
	}
	return string(out), true
}

func decodeSingleByte(raw []byte, enc encoding.Encoding) (string, bool) {
	out, err := enc.NewDecoder().Bytes(raw)
	if err != nil {
		return "", false
	}
	if bytes.ContainsRune(out, utf8.RuneError) {
		return "", false
	}
	return string(out), true
}

// sniffDeclaration returns the encoding named in the XML prologue. NUL bytes
// are ignored so that the prologue of a 16-bit stream can still be read.
func sniffDeclaration(raw []byte) string {
	head := raw
	if len(head) > 1024 {
		head = head[:1024]
	}
	for _, bom := range [][]byte{bomUTF8, bomUTF16LE, bomUTF16BE} {
		if bytes.HasPrefix(head, bom) {
			head = head[len(bom):]
			break
		}
	}
	head = bytes.ReplaceAll(head, []byte{0}, nil)
	m := declPattern.FindSubmatch(head)
	if m == nil {
		return ""
	}
	return strings.ToLower(string(m[1]))
}

// nulPattern reports whether raw looks like a 16-bit stream: NUL bytes
// throughout either the even or the odd positions. It returns the byte
// order the pattern indicates.
func nulPattern(raw []byte) (unicode.Endianness, bool) {
	sample := raw
	if len(sample) > 64*1024 {
		sample = sample[:64*1024]
	}
	pairs := len(sample) / 2
	if pairs < 2 {
		return unicode.LittleEndian, false
	}
	even, odd := 0, 0
	for i := 0; i+1 < len(sample); i += 2 {
		if sample[i] == 0 {
			even++
		}
		if sample[i+1] == 0 {
			odd++
		}
	}
	switch {
	case odd*3 >= pairs && even*2 < odd:
		return unicode.LittleEndian, true
	case even*3 >= pairs && odd*2 < even:
		return unicode.BigEndian, true
	default:
		return unicode.LittleEndian, false
	}
}

func isUTF16Name(name string) bool {
	switch strings.ToLower(name) {
	case "utf-16", "utf16", "utf-16le", "utf-16be":
		return true
	}
	return false
}

func isGenericUTF16(name string) bool {
	n := strings.ToLower(name)
	return n == "utf-16" || n == "utf16"
}

func countRune(b []byte, r rune) int {
	return bytes.Count(b, []byte(string(r)))
}

func countUnit(raw []byte, unit uint16, order unicode.Endianness) int {
	hi, lo := byte(unit>>8), byte(unit)
	n := 0
	for i := 0; i+1 < len(raw); i += 2 {
		if order == unicode.LittleEndian && raw[i] == lo && raw[i+1] == hi {
			n++
		}
		if order == unicode.BigEndian && raw[i] == hi && raw[i+1] == lo {
			n++
		}
	}
	return n
}
