package multistatus

import (
	"encoding/xml"
	"fmt"
	"net/url"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/xxxsen/davc/davxml"
)

// Property is one property reported inside a propstat. A non-2xx Status marks
// a property-level error.
type Property struct {
	Name        xml.Name
	Value       string
	InnerXML    string
	Status      Status
	Description string
}

func (p Property) OK() bool {
	return p.Status.IsZero() || p.Status.OK()
}

type Entry struct {
	Href        string
	Status      Status
	Properties  map[xml.Name]Property
	Errors      []xml.Name
	Description string
	Location    string
	names       []xml.Name
}

// PropertyNames returns the property names in document order.
func (e Entry) PropertyNames() []xml.Name {
	rs := make([]xml.Name, len(e.names))
	copy(rs, e.names)
	return rs
}

func (e Entry) Property(name xml.Name) (Property, bool) {
	p, ok := e.Properties[name]
	return p, ok
}

// Succeeded reports whether the entry status and every property status are 2xx.
func (e Entry) Succeeded() bool {
	if !e.Status.IsZero() && !e.Status.OK() {
		return false
	}
	for _, p := range e.Properties {
		if !p.OK() {
			return false
		}
	}
	return true
}

// Err describes why the entry failed, nil when it succeeded.
func (e Entry) Err() error {
	if e.Succeeded() {
		return nil
	}
	if !e.Status.IsZero() && !e.Status.OK() {
		return fmt.Errorf("href:%s, status:%s%s", e.Href, e.Status.Line, e.detail())
	}
	failed := make([]string, 0, len(e.names))
	for _, name := range e.names {
		if p := e.Properties[name]; !p.OK() {
			failed = append(failed, fmt.Sprintf("%s%s(%d)", nsPrefix(name), name.Local, p.Status.Code))
		}
	}
	return fmt.Errorf("href:%s, failed props:[%s]%s", e.Href, strings.Join(failed, ","), e.detail())
}

func (e Entry) detail() string {
	if len(e.Errors) > 0 {
		return ", condition:" + e.Errors[0].Local
	}
	if len(e.Description) > 0 {
		return ", desc:" + e.Description
	}
	return ""
}

func nsPrefix(name xml.Name) string {
	if len(name.Space) == 0 || name.Space == davxml.NamespaceDAV {
		return ""
	}
	return "{" + name.Space + "}"
}

// MultiStatus is a decoded 207 body. Entries keep document order.
type MultiStatus struct {
	Entries     []Entry
	Description string
}

func Decode(body []byte) (*MultiStatus, error) {
	raw, err := davxml.DecodeMultistatus(body)
	if err != nil {
		return nil, err
	}
	return FromXML(raw)
}

// FromXML flattens the wire structure. A response holding several hrefs yields
// one entry per href sharing the same status.
func FromXML(raw *davxml.Multistatus) (*MultiStatus, error) {
	ms := &MultiStatus{Description: strings.TrimSpace(raw.Description)}
	for _, rsp := range raw.Responses {
		if len(rsp.Hrefs) == 0 {
			return nil, fmt.Errorf("response without href:%w", davxml.ErrMalformed)
		}
		st, err := ParseStatus(rsp.Status)
		if err != nil {
			return nil, err
		}
		tpl := Entry{
			Status:      st,
			Properties:  make(map[xml.Name]Property),
			Errors:      conditions(rsp.Error),
			Description: strings.TrimSpace(rsp.Description),
			Location:    rsp.Location.First(),
		}
		for _, ps := range rsp.Propstats {
			pst, err := ParseStatus(ps.Status)
			if err != nil {
				return nil, err
			}
			tpl.Errors = append(tpl.Errors, conditions(ps.Error)...)
			for _, v := range ps.Prop.Values {
				if _, ok := tpl.Properties[v.XMLName]; !ok {
					tpl.names = append(tpl.names, v.XMLName)
				}
				tpl.Properties[v.XMLName] = Property{
					Name:        v.XMLName,
					Value:       strings.TrimSpace(v.CharData),
					InnerXML:    v.InnerXML,
					Status:      pst,
					Description: strings.TrimSpace(ps.Description),
				}
			}
		}
		for _, href := range rsp.Hrefs {
			entry := tpl
			entry.Href = strings.TrimSpace(href)
			ms.Entries = append(ms.Entries, entry)
		}
	}
	return ms, nil
}

func conditions(e *davxml.Error) []xml.Name {
	if e == nil {
		return nil
	}
	rs := make([]xml.Name, 0, len(e.Conditions))
	for _, c := range e.Conditions {
		rs = append(rs, c.XMLName)
	}
	return rs
}

func (m *MultiStatus) Len() int {
	return len(m.Entries)
}

func (m *MultiStatus) AllSucceeded() bool {
	for _, e := range m.Entries {
		if !e.Succeeded() {
			return false
		}
	}
	return true
}

func (m *MultiStatus) Failed() []Entry {
	rs := make([]Entry, 0)
	for _, e := range m.Entries {
		if !e.Succeeded() {
			rs = append(rs, e)
		}
	}
	return rs
}

// Find looks an entry up by href. Absolute and path-only forms of the same
// resource match each other.
func (m *MultiStatus) Find(href string) (Entry, bool) {
	for _, e := range m.Entries {
		if e.Href == href {
			return e, true
		}
	}
	want := hrefPath(href)
	for _, e := range m.Entries {
		if hrefPath(e.Href) == want {
			return e, true
		}
	}
	return Entry{}, false
}

func hrefPath(href string) string {
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if len(u.Path) == 0 {
		return "/"
	}
	return u.Path
}

// Err aggregates the failed entries, nil when every entry succeeded.
func (m *MultiStatus) Err() error {
	var rs *multierror.Error
	for _, e := range m.Entries {
		if err := e.Err(); err != nil {
			rs = multierror.Append(rs, err)
		}
	}
	return rs.ErrorOrNil()
}
