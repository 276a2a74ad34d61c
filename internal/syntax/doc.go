// Package syntax lexes and parses the Groovy-shaped scripting language that
// declarative pipelines are written in, producing a small general-purpose
// statement/expression tree. The tree is deliberately generic: it knows about
// method calls, closures, literals and assignments, but nothing about
// pipelines. Recognizing pipeline structure inside it is the job of the
// parser package.
//
// All positions are hcl.Range values so they can be attached directly to
// hcl.Diagnostic subjects.
package syntax
