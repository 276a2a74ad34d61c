package model

import (
	"fmt"
	"strings"
)

// printer renders canonical pipeline source with brace-driven indentation.
type printer struct {
	sb     strings.Builder
	indent int
}

func (pr *printer) linef(format string, args ...any) {
	pr.sb.WriteString(strings.Repeat("    ", pr.indent))
	fmt.Fprintf(&pr.sb, format, args...)
	pr.sb.WriteByte('\n')
}

// openf writes a block-opening line and indents.
func (pr *printer) openf(format string, args ...any) {
	pr.linef(format, args...)
	pr.indent++
}

// close dedents and writes the closing brace.
func (pr *printer) close() {
	pr.indent--
	pr.linef("}")
}

// verbatim writes captured script text untouched, so embedded code blocks
// survive a render/parse cycle byte for byte.
func (pr *printer) verbatim(s string) {
	pr.sb.WriteString(s)
	pr.sb.WriteByte('\n')
}

func (pr *printer) String() string { return pr.sb.String() }
