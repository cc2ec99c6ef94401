package davxml

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
)

// Propfind is a parsed propfind request body.
type Propfind struct {
	AllProp  bool
	PropName bool
	Names    []xml.Name
	// Bindings holds prefix => uri for every xmlns declaration met in the document.
	Bindings map[string]string
}

// ParsePropfind reads a propfind body back, resolving names through the
// xmlns declarations in scope.
func ParsePropfind(raw []byte) (*Propfind, error) {
	dec := xml.NewDecoder(bytes.NewReader(raw))
	rs := &Propfind{Bindings: map[string]string{}}
	var stack []xml.Name
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w:%w", ErrMalformed, err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			for _, attr := range t.Attr {
				if attr.Name.Space == "xmlns" {
					rs.Bindings[attr.Name.Local] = attr.Value
				}
			}
			if err := rs.visit(stack, t.Name); err != nil {
				return nil, err
			}
			stack = append(stack, t.Name)
		case xml.EndElement:
			stack = stack[:len(stack)-1]
		}
	}
	if !rs.AllProp && !rs.PropName && len(rs.Names) == 0 {
		return nil, fmt.Errorf("propfind without prop, allprop or propname:%w", ErrMalformed)
	}
	return rs, nil
}

func (p *Propfind) visit(stack []xml.Name, name xml.Name) error {
	depth := len(stack)
	switch {
	case depth == 0:
		if name != (xml.Name{Space: NamespaceDAV, Local: "propfind"}) {
			return fmt.Errorf("unexpected root element, name:%s:%w", name.Local, ErrMalformed)
		}
	case depth == 1 && name.Space == NamespaceDAV && name.Local == "allprop":
		p.AllProp = true
	case depth == 1 && name.Space == NamespaceDAV && name.Local == "propname":
		p.PropName = true
	case depth == 2 && stack[1] == (xml.Name{Space: NamespaceDAV, Local: "prop"}):
		p.Names = append(p.Names, name)
	}
	return nil
}
