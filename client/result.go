package client

import (
	"net/http"
	"strings"
)

// Result is the outcome of one exchange. Value is only meaningful when
// Succeeded is true, except for multi-status values which are kept for
// inspection when some entries failed.
type Result[T any] struct {
	Succeeded bool
	Status    int
	Header    http.Header
	Value     T
}

// Capabilities is what an OPTIONS answer advertises.
type Capabilities struct {
	Classes []string
	Methods []string
}

func (c *Capabilities) Compliant(class string) bool {
	for _, item := range c.Classes {
		if item == class {
			return true
		}
	}
	return false
}

func (c *Capabilities) Supports(method string) bool {
	for _, item := range c.Methods {
		if strings.EqualFold(item, method) {
			return true
		}
	}
	return false
}

func parseCapabilities(h http.Header) *Capabilities {
	return &Capabilities{
		Classes: splitList(h.Values("DAV")),
		Methods: splitList(h.Values("Allow")),
	}
}

// splitList reads comma separated header values, possibly spread over several lines.
func splitList(values []string) []string {
	rs := make([]string, 0, len(values))
	for _, v := range values {
		for _, item := range strings.Split(v, ",") {
			item = strings.TrimSpace(item)
			if len(item) == 0 {
				continue
			}
			rs = append(rs, item)
		}
	}
	return rs
}
