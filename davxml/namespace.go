package davxml

import (
	"encoding/xml"
	"fmt"
	"strings"
)

const (
	NamespaceDAV = "DAV:"
	PrefixDAV    = "D"
)

// Namespaces maps namespace uris to the prefixes used when rendering request
// bodies. The DAV: namespace is always bound to "D".
type Namespaces struct {
	prefixes map[string]string
}

func NewNamespaces() *Namespaces {
	return &Namespaces{
		prefixes: map[string]string{NamespaceDAV: PrefixDAV},
	}
}

func (n *Namespaces) Register(uri string, prefix string) error {
	if len(uri) == 0 || len(prefix) == 0 {
		return fmt.Errorf("empty namespace binding, uri:%s, prefix:%s", uri, prefix)
	}
	if strings.ContainsAny(prefix, ": <>\"'") {
		return fmt.Errorf("invalid namespace prefix:%s", prefix)
	}
	if uri == NamespaceDAV && prefix != PrefixDAV {
		return fmt.Errorf("DAV: namespace is bound to prefix %s", PrefixDAV)
	}
	if owner, ok := n.uriOf(prefix); ok && owner != uri {
		return fmt.Errorf("prefix already bound, prefix:%s, uri:%s", prefix, owner)
	}
	n.prefixes[uri] = prefix
	return nil
}

func (n *Namespaces) Prefix(uri string) (string, bool) {
	p, ok := n.prefixes[uri]
	return p, ok
}

func (n *Namespaces) uriOf(prefix string) (string, bool) {
	for uri, p := range n.prefixes {
		if p == prefix {
			return uri, true
		}
	}
	return "", false
}

// Resolve turns "R:bigbox" into a namespaced name using the registered prefixes.
// An unprefixed name belongs to DAV:.
func (n *Namespaces) Resolve(qname string) (xml.Name, error) {
	prefix, local, ok := strings.Cut(qname, ":")
	if !ok {
		return xml.Name{Space: NamespaceDAV, Local: qname}, nil
	}
	if len(local) == 0 {
		return xml.Name{}, fmt.Errorf("empty local name, name:%s", qname)
	}
	uri, ok := n.uriOf(prefix)
	if !ok {
		return xml.Name{}, fmt.Errorf("unknown namespace prefix, name:%s", qname)
	}
	return xml.Name{Space: uri, Local: local}, nil
}

func (n *Namespaces) ResolveAll(qnames []string) ([]xml.Name, error) {
	rs := make([]xml.Name, 0, len(qnames))
	for _, q := range qnames {
		name, err := n.Resolve(q)
		if err != nil {
			return nil, err
		}
		rs = append(rs, name)
	}
	return rs, nil
}

// Bindings returns a copy of the registry, uri => prefix.
func (n *Namespaces) Bindings() map[string]string {
	rs := make(map[string]string, len(n.prefixes))
	for k, v := range n.prefixes {
		rs[k] = v
	}
	return rs
}

func (n *Namespaces) Clone() *Namespaces {
	return &Namespaces{prefixes: n.Bindings()}
}

// scope hands out prefixes while one document is written. Namespaces missing
// from the registry get generated "ns<N>" prefixes that live only in that document.
type scope struct {
	ns        *Namespaces
	generated map[string]string
	next      int
}

func newScope(ns *Namespaces) *scope {
	if ns == nil {
		ns = NewNamespaces()
	}
	return &scope{ns: ns, generated: map[string]string{}}
}

func (s *scope) prefix(uri string) string {
	if p, ok := s.ns.Prefix(uri); ok {
		return p
	}
	if p, ok := s.generated[uri]; ok {
		return p
	}
	for {
		s.next++
		p := fmt.Sprintf("ns%d", s.next)
		if _, taken := s.ns.uriOf(p); taken {
			continue
		}
		s.generated[uri] = p
		return p
	}
}

// declarations renders xmlns attributes for the non-DAV namespaces of names,
// in order of first appearance.
func (s *scope) declarations(names []xml.Name) string {
	seen := map[string]struct{}{}
	sb := strings.Builder{}
	for _, name := range names {
		if name.Space == NamespaceDAV || len(name.Space) == 0 {
			continue
		}
		if _, ok := seen[name.Space]; ok {
			continue
		}
		seen[name.Space] = struct{}{}
		sb.WriteString(` xmlns:`)
		sb.WriteString(s.prefix(name.Space))
		sb.WriteString(`="`)
		sb.WriteString(escapeAttr(name.Space))
		sb.WriteString(`"`)
	}
	return sb.String()
}

func (s *scope) qualified(name xml.Name) string {
	if name.Space == NamespaceDAV || len(name.Space) == 0 {
		return PrefixDAV + ":" + name.Local
	}
	return s.prefix(name.Space) + ":" + name.Local
}
