// Package sanitizer detects the real character encoding of a yw7 document
// and decodes it to UTF-8 text.
//
// yWriter versions disagree about encodings: some write UTF-8 without saying
// so, some write Windows-1252, and the iOS version wrote UTF-16 under a
// prologue that claims UTF-8. [Decode] trusts a byte-order mark first, then
// the declared encoding, and falls back to a configurable list of encodings
// when the declared one does not decode the stream cleanly.
//
// Encodings are resolved through the WHATWG index of golang.org/x/text, so
// any name a browser accepts ("latin1", "cp1252", "iso-8859-15", ...) works
// in [WithFallbacks].
//
//	res, err := sanitizer.Decode(raw, sanitizer.WithFallbacks("utf-16", "iso-8859-15"))
//	if err != nil {
//	    return err
//	}
//	fmt.Println(res.Encoding, res.Source)
package sanitizer
