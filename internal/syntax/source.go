package syntax

import "github.com/hashicorp/hcl/v2"

// File pairs a parsed module with the raw source it came from, so callers
// can recover the exact text behind any range. Script and expression blocks
// are captured verbatim this way.
type File struct {
	Filename string
	Src      []byte
}

// Snippet returns the exact source substring covered by rng. Out-of-bounds
// ranges are clamped rather than panicking, since ranges on recovered error
// nodes can be approximate.
func (f *File) Snippet(rng hcl.Range) string {
	start := rng.Start.Byte
	end := rng.End.Byte
	if start < 0 {
		start = 0
	}
	if end > len(f.Src) {
		end = len(f.Src)
	}
	if start >= end {
		return ""
	}
	return string(f.Src[start:end])
}
