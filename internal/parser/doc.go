// Package parser recognizes the declarative pipeline grammar inside the
// generic syntax tree and builds the typed model. It is deliberately
// error-tolerant: a malformed section or call is reported to the diagnostic
// collector and replaced with a default node so that sibling constructs
// still get parsed, and one run surfaces every independent problem. Only
// two conditions abort a parse outright: no pipeline entry point at the
// module root, and an entry point without a block.
package parser
