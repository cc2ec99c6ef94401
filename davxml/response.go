package davxml

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/net/html/charset"
)

var ErrMalformed = errors.New("xml is not well-formed")

// Multistatus is the decoded <D:multistatus> element. Element names are matched
// by namespace, so servers may use any prefix.
type Multistatus struct {
	XMLName     xml.Name   `xml:"DAV: multistatus"`
	Responses   []Response `xml:"DAV: response"`
	Description string     `xml:"DAV: responsedescription"`
}

type Response struct {
	Hrefs       []string   `xml:"DAV: href"`
	Status      string     `xml:"DAV: status"`
	Propstats   []Propstat `xml:"DAV: propstat"`
	Error       *Error     `xml:"DAV: error"`
	Description string     `xml:"DAV: responsedescription"`
	Location    *Href      `xml:"DAV: location"`
}

type Propstat struct {
	Prop        Prop   `xml:"DAV: prop"`
	Status      string `xml:"DAV: status"`
	Error       *Error `xml:"DAV: error"`
	Description string `xml:"DAV: responsedescription"`
}

type Prop struct {
	Values []RawValue `xml:",any"`
}

// RawValue is one property element as found on the wire.
type RawValue struct {
	XMLName  xml.Name
	CharData string `xml:",chardata"`
	InnerXML string `xml:",innerxml"`
}

type Error struct {
	Conditions []Condition `xml:",any"`
}

type Condition struct {
	XMLName xml.Name
}

type Href struct {
	Hrefs []string `xml:"DAV: href"`
}

func (h *Href) First() string {
	if h == nil || len(h.Hrefs) == 0 {
		return ""
	}
	return strings.TrimSpace(h.Hrefs[0])
}

// ActiveLock is one <D:activelock>. Scope and type are element variants, so at
// most one of the pointers inside is expected to be set.
type ActiveLock struct {
	LockScope struct {
		Exclusive *struct{} `xml:"DAV: exclusive"`
		Shared    *struct{} `xml:"DAV: shared"`
	} `xml:"DAV: lockscope"`
	LockType struct {
		Write *struct{} `xml:"DAV: write"`
	} `xml:"DAV: locktype"`
	Depth     string `xml:"DAV: depth"`
	Owner     *Owner `xml:"DAV: owner"`
	Timeout   string `xml:"DAV: timeout"`
	LockToken *Href  `xml:"DAV: locktoken"`
	LockRoot  *Href  `xml:"DAV: lockroot"`
}

type Owner struct {
	Href     string `xml:"DAV: href"`
	CharData string `xml:",chardata"`
	InnerXML string `xml:",innerxml"`
}

// Value returns the href inside the owner, or its text when there is none.
func (o *Owner) Value() string {
	if o == nil {
		return ""
	}
	if v := strings.TrimSpace(o.Href); len(v) > 0 {
		return v
	}
	return strings.TrimSpace(o.CharData)
}

type LockDiscovery struct {
	ActiveLocks []ActiveLock `xml:"DAV: activelock"`
}

type lockDiscoveryProp struct {
	XMLName       xml.Name       `xml:"DAV: prop"`
	LockDiscovery *LockDiscovery `xml:"DAV: lockdiscovery"`
}

func DecodeMultistatus(raw []byte) (*Multistatus, error) {
	ms := &Multistatus{}
	if err := decode(raw, ms); err != nil {
		return nil, fmt.Errorf("decode multistatus:%w", err)
	}
	return ms, nil
}

// DecodeLockDiscovery reads a <D:prop><D:lockdiscovery> document, the body of a
// successful LOCK response.
func DecodeLockDiscovery(raw []byte) (*LockDiscovery, error) {
	p := &lockDiscoveryProp{}
	if err := decode(raw, p); err != nil {
		return nil, fmt.Errorf("decode lockdiscovery:%w", err)
	}
	if p.LockDiscovery == nil {
		return nil, fmt.Errorf("decode lockdiscovery: no lockdiscovery element:%w", ErrMalformed)
	}
	return p.LockDiscovery, nil
}

func decode(raw []byte, v interface{}) error {
	if len(bytes.TrimSpace(raw)) == 0 {
		return fmt.Errorf("empty body:%w", ErrMalformed)
	}
	dec := xml.NewDecoder(bytes.NewReader(raw))
	dec.CharsetReader = charset.NewReaderLabel
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w:%w", ErrMalformed, err)
	}
	return nil
}
