package xmlfix

import (
	"html"
	"regexp"
	"strconv"
	"strings"
)

var entityPattern = regexp.MustCompile(`^&(#[0-9]+|#x[0-9a-fA-F]+|[A-Za-z][A-Za-z0-9]*);`)

// fixEntity inspects the '&' at the start of s. It returns the replacement
// text, the number of bytes of s it stands for, and whether anything changed.
//
// XML's predefined entities and character references to legal characters
// are kept. HTML named entities are replaced by their character, references
// to illegal characters are dropped, and any other '&' is escaped.
func fixEntity(s string) (string, int, bool) {
	m := entityPattern.FindStringSubmatch(s)
	if m == nil {
		return "&amp;", 1, true
	}
	ref, body := m[0], m[1]
	switch body {
	case "amp", "lt", "gt", "apos", "quot":
		return ref, len(ref), false
	}
	if strings.HasPrefix(body, "#") {
		var cp uint64
		var err error
		if strings.HasPrefix(body, "#x") {
			cp, err = strconv.ParseUint(body[2:], 16, 32)
		} else {
			cp, err = strconv.ParseUint(body[1:], 10, 32)
		}
		if err != nil || !IsLegalChar(rune(cp)) {
			return "", len(ref), true
		}
		return ref, len(ref), false
	}
	if u := html.UnescapeString(ref); u != ref {
		return escapeChars(u), len(ref), true
	}
	return "&amp;", 1, true
}

func escapeChars(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	return r.Replace(s)
}

// IsLegalChar reports whether r may appear in XML 1.0 character data.
func IsLegalChar(r rune) bool {
	switch {
	case r == 0x9 || r == 0xA || r == 0xD:
		return true
	case r >= 0x20 && r <= 0xD7FF:
		return true
	case r >= 0xE000 && r <= 0xFFFD:
		return true
	case r >= 0x10000 && r <= 0x10FFFF:
		return true
	}
	return false
}

// StripIllegal removes characters that may not appear in an XML 1.0
// document. It returns s unchanged when there are none.
func StripIllegal(s string) string {
	clean := true
	for _, r := range s {
		if !IsLegalChar(r) {
			clean = false
			break
		}
	}
	if clean {
		return s
	}
	return strings.Map(func(r rune) rune {
		if IsLegalChar(r) {
			return r
		}
		return -1
	}, s)
}
