package davxml

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"
)

const (
	ContentType = `text/xml; charset="utf-8"`
	xmlHeader   = `<?xml version="1.0" encoding="utf-8"?>`
)

type LockScope string

const (
	LockScopeExclusive LockScope = "exclusive"
	LockScopeShared    LockScope = "shared"
)

type PatchKind int

const (
	PatchSet PatchKind = iota
	PatchRemove
)

// Property is a named value for a PROPPATCH set instruction. Value is written
// as escaped text, InnerXML (when not empty) is written verbatim instead.
type Property struct {
	Name     xml.Name
	Value    string
	InnerXML string
}

// PatchInstruction is one <set> or <remove> block. Blocks are applied by the
// server in document order.
type PatchInstruction struct {
	Kind  PatchKind
	Props []Property
}

func SetProps(props ...Property) PatchInstruction {
	return PatchInstruction{Kind: PatchSet, Props: props}
}

func RemoveProps(names ...xml.Name) PatchInstruction {
	props := make([]Property, 0, len(names))
	for _, n := range names {
		props = append(props, Property{Name: n})
	}
	return PatchInstruction{Kind: PatchRemove, Props: props}
}

// EncodePropfind renders a propfind body. No names means allprop.
func EncodePropfind(ns *Namespaces, names []xml.Name) []byte {
	sc := newScope(ns)
	buf := bytes.NewBufferString(xmlHeader)
	buf.WriteString(`<D:propfind xmlns:D="DAV:">`)
	if len(names) == 0 {
		buf.WriteString(`<D:allprop/>`)
	} else {
		buf.WriteString(`<D:prop`)
		buf.WriteString(sc.declarations(names))
		buf.WriteString(`>`)
		for _, name := range names {
			buf.WriteString(`<` + sc.qualified(name) + `/>`)
		}
		buf.WriteString(`</D:prop>`)
	}
	buf.WriteString(`</D:propfind>`)
	return buf.Bytes()
}

// EncodePropname renders a propfind body asking only for property names.
func EncodePropname() []byte {
	return []byte(xmlHeader + `<D:propfind xmlns:D="DAV:"><D:propname/></D:propfind>`)
}

func EncodeLockInfo(scope LockScope, owner string) ([]byte, error) {
	if scope != LockScopeExclusive && scope != LockScopeShared {
		return nil, fmt.Errorf("invalid lock scope:%s", scope)
	}
	buf := bytes.NewBufferString(xmlHeader)
	buf.WriteString(`<D:lockinfo xmlns:D="DAV:">`)
	buf.WriteString(`<D:lockscope><D:` + string(scope) + `/></D:lockscope>`)
	buf.WriteString(`<D:locktype><D:write/></D:locktype>`)
	if len(owner) > 0 {
		buf.WriteString(`<D:owner><D:href>`)
		buf.WriteString(escapeText(owner))
		buf.WriteString(`</D:href></D:owner>`)
	}
	buf.WriteString(`</D:lockinfo>`)
	return buf.Bytes(), nil
}

func EncodePropertyUpdate(ns *Namespaces, ins []PatchInstruction) ([]byte, error) {
	if len(ins) == 0 {
		return nil, fmt.Errorf("no patch instruction")
	}
	sc := newScope(ns)
	buf := bytes.NewBufferString(xmlHeader)
	buf.WriteString(`<D:propertyupdate xmlns:D="DAV:">`)
	for _, item := range ins {
		if len(item.Props) == 0 {
			return nil, fmt.Errorf("empty patch instruction")
		}
		tag := "D:set"
		if item.Kind == PatchRemove {
			tag = "D:remove"
		}
		names := make([]xml.Name, 0, len(item.Props))
		for _, p := range item.Props {
			if len(p.Name.Local) == 0 {
				return nil, fmt.Errorf("property without name")
			}
			names = append(names, p.Name)
		}
		buf.WriteString(`<` + tag + `><D:prop` + sc.declarations(names) + `>`)
		for _, p := range item.Props {
			q := sc.qualified(p.Name)
			if item.Kind == PatchRemove || (len(p.Value) == 0 && len(p.InnerXML) == 0) {
				buf.WriteString(`<` + q + `/>`)
				continue
			}
			buf.WriteString(`<` + q + `>`)
			if len(p.InnerXML) > 0 {
				buf.WriteString(p.InnerXML)
			} else {
				buf.WriteString(escapeText(p.Value))
			}
			buf.WriteString(`</` + q + `>`)
		}
		buf.WriteString(`</D:prop></` + tag + `>`)
	}
	buf.WriteString(`</D:propertyupdate>`)
	return buf.Bytes(), nil
}

func escapeText(s string) string {
	sb := &strings.Builder{}
	_ = xml.EscapeText(sb, []byte(s))
	return sb.String()
}

func escapeAttr(s string) string {
	return escapeText(s)
}
