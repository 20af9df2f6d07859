// Package xliff implements reading of XLIFF translation-exchange files as
// produced by the Angular i18n extractor.
//
// Both XLIFF 1.2 and XLIFF 2.0 are supported:
//
//	<xliff version="2.0" srcLang="en-US" trgLang="de-CH">
//	  <file id="ngi18n" original="ng.template">
//	    <unit id="GREETING">
//	      <segment>
//	        <source><ph id="0" equiv="ICU"/>Hello</source>
//	        <target><ph id="0" equiv="ICU"/>Hallo</target>
//	      </segment>
//	    </unit>
//	  </file>
//	</xliff>
//
// Each <file> element is a named resource (its id attribute in 2.0, its
// original attribute in 1.2). Units are kept in document order and inline
// markup is kept as a tree of Nodes; see Flatten for how it is turned into a
// display string.
package xliff

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
)

// ---------------------------------------------------------------------------
// Data model
// ---------------------------------------------------------------------------

// Document is a parsed XLIFF file.
type Document struct {
	// Version is the version attribute of the <xliff> root ("1.2", "2.0").
	Version string
	// Resources holds the <file> elements in document order.
	Resources []*Resource

	byName map[string]int
}

// Resource is one <file> element of a document.
type Resource struct {
	// Name is the id attribute (2.0) or the original attribute (1.2).
	Name string
	// SourceLanguage and TargetLanguage come from the <file> element (1.2)
	// or are inherited from the <xliff> root (2.0).
	SourceLanguage string
	TargetLanguage string
	// Units in document order. IDs are unique within a resource.
	Units []*Unit

	byID map[string]int
}

// Unit is a single translation unit (<unit> in 2.0, <trans-unit> in 1.2).
type Unit struct {
	ID     string
	Source Content
	Target Content
	// HasTarget is true when the unit carried a <target> element, even an
	// empty one.
	HasTarget bool
	// Notes holds translator notes (description, meaning, location).
	Notes []Note
}

// Note is a <note> attached to a unit.
type Note struct {
	// Category is the category attribute (2.0) or the from attribute (1.2).
	Category string
	Text     string
}

// Resource returns the resource with the given name.
func (d *Document) Resource(name string) (*Resource, error) {
	if idx, ok := d.byName[name]; ok {
		return d.Resources[idx], nil
	}
	available := make([]string, 0, len(d.Resources))
	for _, r := range d.Resources {
		available = append(available, r.Name)
	}
	return nil, &MissingResourceError{Resource: name, Available: available}
}

// Unit returns the unit with the given id.
func (r *Resource) Unit(id string) (*Unit, bool) {
	if idx, ok := r.byID[id]; ok {
		return r.Units[idx], true
	}
	return nil, false
}

// Note returns the text of the first note with the given category.
func (u *Unit) Note(category string) string {
	for _, n := range u.Notes {
		if n.Category == category {
			return n.Text
		}
	}
	return ""
}

// ---------------------------------------------------------------------------
// Parsing
// ---------------------------------------------------------------------------

// ParseFile reads and parses an XLIFF file.
func ParseFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	doc, err := Parse(data)
	if err != nil {
		var pe *ParseError
		if errors.As(err, &pe) {
			pe.Path = path
		}
		return nil, err
	}
	return doc, nil
}

// Parse parses XLIFF data. Any failure is returned as a *ParseError.
func Parse(data []byte) (*Document, error) {
	p := &parser{dec: xml.NewDecoder(bytes.NewReader(data))}
	doc, err := p.document()
	if err != nil {
		line, _ := p.dec.InputPos()
		return nil, &ParseError{Line: line, Err: err}
	}
	return doc, nil
}

type parser struct {
	dec *xml.Decoder
}

func (p *parser) document() (*Document, error) {
	doc := &Document{byName: make(map[string]int)}
	var (
		cur                    *Resource
		seenRoot               bool
		rootSource, rootTarget string
	)

	for {
		tok, err := p.dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "xliff":
				seenRoot = true
				doc.Version = attr(t, "version")
				rootSource = attr(t, "srcLang")
				rootTarget = attr(t, "trgLang")

			case "file":
				if !seenRoot {
					return nil, errors.New("<file> outside <xliff> root")
				}
				name := attr(t, "id")
				if name == "" {
					name = attr(t, "original")
				}
				cur = &Resource{
					Name:           name,
					SourceLanguage: firstNonEmpty(attr(t, "source-language"), rootSource),
					TargetLanguage: firstNonEmpty(attr(t, "target-language"), rootTarget),
					byID:           make(map[string]int),
				}
				if _, dup := doc.byName[name]; !dup {
					doc.byName[name] = len(doc.Resources)
				}
				doc.Resources = append(doc.Resources, cur)

			case "unit", "trans-unit":
				if cur == nil {
					return nil, fmt.Errorf("<%s> outside <file>", t.Name.Local)
				}
				u, err := p.unit(t)
				if err != nil {
					return nil, err
				}
				if _, dup := cur.byID[u.ID]; dup {
					return nil, fmt.Errorf("duplicate unit id %q in resource %q", u.ID, cur.Name)
				}
				cur.byID[u.ID] = len(cur.Units)
				cur.Units = append(cur.Units, u)
			}
			// Everything else (header, body, group, ...) is descended into.

		case xml.EndElement:
			if t.Name.Local == "file" {
				cur = nil
			}
		}
	}

	if !seenRoot {
		return nil, errors.New("missing <xliff> root element")
	}
	return doc, nil
}

// unit parses a <unit> or <trans-unit> element already opened.
func (p *parser) unit(start xml.StartElement) (*Unit, error) {
	u := &Unit{ID: attr(start, "id")}
	if u.ID == "" {
		return nil, fmt.Errorf("<%s> without id", start.Name.Local)
	}

	depth := 1
	for depth > 0 {
		tok, err := p.dec.Token()
		if err != nil {
			return nil, fmt.Errorf("reading unit %q: %w", u.ID, unexpectedEOF(err))
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "segment", "ignorable", "notes":
				depth++
			case "source":
				c, err := p.content()
				if err != nil {
					return nil, fmt.Errorf("reading source of unit %q: %w", u.ID, err)
				}
				u.Source = append(u.Source, c...)
			case "target":
				c, err := p.content()
				if err != nil {
					return nil, fmt.Errorf("reading target of unit %q: %w", u.ID, err)
				}
				u.Target = append(u.Target, c...)
				u.HasTarget = true
			case "note":
				text, err := p.text()
				if err != nil {
					return nil, fmt.Errorf("reading note of unit %q: %w", u.ID, err)
				}
				u.Notes = append(u.Notes, Note{
					Category: firstNonEmpty(attr(t, "category"), attr(t, "from")),
					Text:     text,
				})
			default:
				if err := p.dec.Skip(); err != nil {
					return nil, fmt.Errorf("reading unit %q: %w", u.ID, unexpectedEOF(err))
				}
			}
		case xml.EndElement:
			depth--
		}
	}
	return u, nil
}

// content reads the mixed content of an element already opened, up to and
// including its end tag.
func (p *parser) content() (Content, error) {
	var c Content
	for {
		tok, err := p.dec.Token()
		if err != nil {
			return nil, unexpectedEOF(err)
		}

		switch t := tok.(type) {
		case xml.CharData:
			c = c.appendText(string(t))
		case xml.StartElement:
			n, err := p.inline(t)
			if err != nil {
				return nil, err
			}
			c = append(c, n)
		case xml.EndElement:
			return c, nil
		}
	}
}

// inline parses one inline-markup element inside <source> or <target>.
func (p *parser) inline(start xml.StartElement) (Node, error) {
	local := start.Name.Local
	switch local {
	case "ph", "x":
		n := Node{
			Kind:    KindStandalone,
			Element: local,
			ID:      attr(start, "id"),
			Name:    firstNonEmpty(attr(start, "equiv"), attr(start, "id")),
			Display: firstNonEmpty(attr(start, "disp"), attr(start, "equiv-text")),
		}
		return n, unexpectedEOF(p.dec.Skip())

	case "pc", "g", "mrk":
		children, err := p.content()
		if err != nil {
			return Node{}, err
		}
		return Node{
			Kind:     KindSpan,
			Element:  local,
			ID:       attr(start, "id"),
			Name:     attr(start, "equivStart"),
			Children: children,
		}, nil

	default:
		n := Node{
			Kind:    KindMarker,
			Element: local,
			ID:      attr(start, "id"),
		}
		return n, unexpectedEOF(p.dec.Skip())
	}
}

// text reads the character data of an element already opened, ignoring any
// nested markup.
func (p *parser) text() (string, error) {
	var b bytes.Buffer
	depth := 1
	for depth > 0 {
		tok, err := p.dec.Token()
		if err != nil {
			return "", unexpectedEOF(err)
		}
		switch t := tok.(type) {
		case xml.CharData:
			b.Write(t)
		case xml.StartElement:
			depth++
		case xml.EndElement:
			depth--
		}
	}
	return b.String(), nil
}

func attr(el xml.StartElement, name string) string {
	for _, a := range el.Attr {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// unexpectedEOF converts io.EOF inside an element into io.ErrUnexpectedEOF.
func unexpectedEOF(err error) error {
	if err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	return err
}
