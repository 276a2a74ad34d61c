// Package validator checks a parsed pipeline model against the semantic
// rules: required sections, non-empty collections, unique sibling names,
// known symbols, parameter schemas and value types. Validation never
// mutates the tree; it only reads nodes and reports findings, continuing
// across siblings so one pass surfaces everything. Descriptor-dependent
// checks are skipped when the registry reports no data for them, which is
// what offline validation relies on.
package validator
