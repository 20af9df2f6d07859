package xliff

import (
	"fmt"
	"strings"
)

// ParseError reports malformed XLIFF input.
type ParseError struct {
	// Path is the file being parsed, empty when parsing raw bytes.
	Path string
	// Line is the input line the decoder had reached, 0 if unknown.
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	var b strings.Builder
	b.WriteString("xliff: ")
	if e.Path != "" {
		b.WriteString(e.Path)
		if e.Line > 0 {
			fmt.Fprintf(&b, ":%d", e.Line)
		}
		b.WriteString(": ")
	} else if e.Line > 0 {
		fmt.Fprintf(&b, "line %d: ", e.Line)
	}
	b.WriteString(e.Err.Error())
	return b.String()
}

func (e *ParseError) Unwrap() error { return e.Err }

// MissingResourceError reports that a document has no <file> resource with
// the requested name.
type MissingResourceError struct {
	Resource string
	// Available lists the resource names the document does contain.
	Available []string
}

func (e *MissingResourceError) Error() string {
	if len(e.Available) == 0 {
		return fmt.Sprintf("xliff: expected resource %q, document has no resources", e.Resource)
	}
	return fmt.Sprintf("xliff: expected resource %q, found %s", e.Resource, strings.Join(e.Available, ", "))
}
