// Package xmlfix repairs near-valid XML written by historical yWriter
// versions so that it parses.
//
// The fixer runs a lexer over the text that never fails: anything that does
// not form markup becomes escaped character data. A stack of open elements
// then rewrites the token stream. Interleaved inline emphasis such as
//
//	<b>A<i>B</b>C</i>
//
// is re-nested without changing which characters carry which style:
//
//	<b>A<i>B</i></b><i>C</i>
//
// Elements left open are closed at the end of their containing element, and
// end tags without a matching start tag are dropped. Each repair is reported
// in [Result.Repairs]. If the output still does not parse, [Fix] returns a
// [ywerrors.UnrepairableDocumentError].
package xmlfix
