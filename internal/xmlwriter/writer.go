// =============================================================================
// XmlCreator40 - XML Writer Module
// =============================================================================
//
// This module renders a report document (an ordered tree of elements) as
// UTF-8 XML and writes it to disk.
//
// OUTPUT FORMAT:
//
//   <?xml version="1.0" encoding="utf-8"?>
//   <archivo xmlns="http://www.uif.shcp.gob.mx/recepcion/tcv" ...>
//     <informe>
//       <mes_reportado>3</mes_reportado>    <!-- text elements stay inline -->
//       <sujeto_obligado>                   <!-- parents indent by two spaces -->
//         <clave_sujeto_obligado>ABC123456789</clave_sujeto_obligado>
//       </sujeto_obligado>
//       <prioridad/>                        <!-- empty elements self-close -->
//     </informe>
//   </archivo>
//
// Rendering is deterministic: the same tree always yields the same bytes.
//
// =============================================================================

package xmlwriter

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrInvalidChar reports a value holding a character that XML 1.0 does not
// allow, such as a control character decoded from an Excel "_x0001_" escape.
var ErrInvalidChar = errors.New("character not allowed in XML")

// =============================================================================
// GENERATION OPTIONS
// =============================================================================

// GenerateOptions contains options for XML rendering.
type GenerateOptions struct {
	// Indent is the string used for one indentation level.
	// Default: "  " (two spaces)
	Indent string

	// IncludeXMLDeclaration determines whether to write the XML declaration.
	// Default: true
	IncludeXMLDeclaration bool

	// XMLVersion is the XML version for the declaration.
	// Default: "1.0"
	XMLVersion string

	// Encoding is the encoding for the declaration.
	// Default: "utf-8"
	Encoding string
}

// DefaultGenerateOptions returns the default rendering options.
func DefaultGenerateOptions() GenerateOptions {
	return GenerateOptions{
		Indent:                "  ",
		IncludeXMLDeclaration: true,
		XMLVersion:            "1.0",
		Encoding:              "utf-8",
	}
}

// =============================================================================
// DOCUMENT TREE
// =============================================================================

// Element is one node of the report document. An element carries either a
// text value or children, never both.
type Element struct {
	XMLName    xml.Name
	Attributes []xml.Attr
	Value      string
	Children   []*Element
}

// NewElement creates an element with the given tag name.
func NewElement(name string) *Element {
	return &Element{XMLName: xml.Name{Local: name}}
}

// Name returns the tag name.
func (e *Element) Name() string {
	return e.XMLName.Local
}

// SetAttr appends an attribute. Attributes render in insertion order.
func (e *Element) SetAttr(name, value string) *Element {
	e.Attributes = append(e.Attributes, xml.Attr{Name: xml.Name{Local: name}, Value: value})
	return e
}

// Add appends a new child element and returns it.
func (e *Element) Add(name string) *Element {
	child := NewElement(name)
	e.Children = append(e.Children, child)
	return child
}

// AddText appends a text child and returns the receiver, so leaf fields of
// one parent can be chained.
func (e *Element) AddText(name, value string) *Element {
	child := NewElement(name)
	child.Value = value
	e.Children = append(e.Children, child)
	return e
}

// Child returns the first direct child with the given name, or nil.
func (e *Element) Child(name string) *Element {
	for _, c := range e.Children {
		if c.XMLName.Local == name {
			return c
		}
	}
	return nil
}

// Find follows a slash separated path of child names from the receiver.
func (e *Element) Find(path string) *Element {
	current := e
	for _, part := range strings.Split(path, "/") {
		if current == nil {
			return nil
		}
		current = current.Child(part)
	}
	return current
}

// =============================================================================
// RENDERING
// =============================================================================

// Marshal renders root with the default options.
func Marshal(root *Element) ([]byte, error) {
	return MarshalWithOptions(root, DefaultGenerateOptions())
}

// MarshalWithOptions renders root as an indented XML document.
//
// RETURNS:
//   - The document bytes, ending in a newline.
//   - An error if the tree is nil or holds an element without a name.
func MarshalWithOptions(root *Element, options GenerateOptions) ([]byte, error) {
	if root == nil {
		return nil, fmt.Errorf("cannot marshal an empty document")
	}

	var buffer bytes.Buffer

	if options.IncludeXMLDeclaration {
		buffer.WriteString(fmt.Sprintf("<?xml version=\"%s\" encoding=\"%s\"?>\n",
			options.XMLVersion, options.Encoding))
	}

	if err := writeElement(&buffer, root, options.Indent, 0); err != nil {
		return nil, fmt.Errorf("failed to marshal XML: %w", err)
	}

	return buffer.Bytes(), nil
}

// writeElement writes an element and its subtree to the buffer.
func writeElement(buffer *bytes.Buffer, element *Element, indent string, level int) error {
	if element.XMLName.Local == "" {
		return fmt.Errorf("element at depth %d has no name", level)
	}

	writeIndent(buffer, indent, level)

	buffer.WriteString("<")
	buffer.WriteString(element.XMLName.Local)

	for _, attr := range element.Attributes {
		value, err := escapeXML(attr.Value)
		if err != nil {
			return fmt.Errorf("attribute %s of <%s>: %w", attr.Name.Local, element.XMLName.Local, err)
		}
		buffer.WriteString(fmt.Sprintf(" %s=\"%s\"", attr.Name.Local, value))
	}

	if len(element.Children) == 0 && element.Value == "" {
		buffer.WriteString("/>\n")
		return nil
	}

	buffer.WriteString(">")

	if len(element.Children) == 0 {
		value, err := escapeXML(element.Value)
		if err != nil {
			return fmt.Errorf("<%s>: %w", element.XMLName.Local, err)
		}
		buffer.WriteString(value)
	} else {
		buffer.WriteString("\n")
		for _, child := range element.Children {
			if err := writeElement(buffer, child, indent, level+1); err != nil {
				return err
			}
		}
		writeIndent(buffer, indent, level)
	}

	buffer.WriteString("</")
	buffer.WriteString(element.XMLName.Local)
	buffer.WriteString(">\n")
	return nil
}

func writeIndent(buffer *bytes.Buffer, indent string, level int) {
	for i := 0; i < level; i++ {
		buffer.WriteString(indent)
	}
}

// escapeXML escapes &, <, > and double quotes. Apostrophes are left as-is.
// Characters outside the XML 1.0 Char production cannot be escaped and are
// reported as an error.
func escapeXML(s string) (string, error) {
	var buffer bytes.Buffer

	for i, r := range s {
		if !isXMLChar(r) {
			return "", fmt.Errorf("%w: %U at offset %d", ErrInvalidChar, r, i)
		}
		switch r {
		case '&':
			buffer.WriteString("&amp;")
		case '<':
			buffer.WriteString("&lt;")
		case '>':
			buffer.WriteString("&gt;")
		case '"':
			buffer.WriteString("&quot;")
		default:
			buffer.WriteRune(r)
		}
	}

	return buffer.String(), nil
}

// isXMLChar reports whether r may appear in an XML 1.0 document.
func isXMLChar(r rune) bool {
	switch {
	case r == 0x09 || r == 0x0A || r == 0x0D:
		return true
	case r >= 0x20 && r <= 0xD7FF:
		return true
	case r >= 0xE000 && r <= 0xFFFD:
		return true
	case r >= 0x10000 && r <= 0x10FFFF:
		return true
	}
	return false
}

// =============================================================================
// FILE OUTPUT
// =============================================================================

// WriteFile writes data to path through a temporary file in the same
// directory, so path either holds the complete document or is untouched.
func WriteFile(path string, data []byte) error {
	dir := filepath.Dir(path)

	tmp, err := os.CreateTemp(dir, ".tmp-"+filepath.Base(path)+"-*")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to set permissions on %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to move %s into place: %w", path, err)
	}
	return nil
}
