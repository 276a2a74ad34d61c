// Package model defines the typed pipeline tree the parser produces and the
// validator checks. Nodes are built once during parsing and never mutated
// afterwards; ownership is strictly tree-shaped.
//
// Every node carries an optional source span (an hcl.Range) set at
// construction. Spans are advisory metadata for diagnostics only: they take
// no part in equality or serialization, and StripSpans returns a copy of a
// tree with all of them cleared, for storage or comparison.
//
// Each node knows how to serialize itself to JSON (omitting empty children)
// and how to render itself back into canonical pipeline source text. A tree
// produced by the parser round-trips through its source rendering.
package model
