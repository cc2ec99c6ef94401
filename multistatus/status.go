package multistatus

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xxxsen/davc/davxml"
)

// Status is a status line found inside a multistatus body, like "HTTP/1.1 423 Locked".
// The zero value means the element was absent.
type Status struct {
	Code int
	Line string
}

func ParseStatus(line string) (Status, error) {
	line = strings.TrimSpace(line)
	if len(line) == 0 {
		return Status{}, nil
	}
	fields := strings.Fields(line)
	if len(fields) < 2 || !strings.HasPrefix(fields[0], "HTTP/") {
		return Status{}, fmt.Errorf("invalid status line, line:%s:%w", line, davxml.ErrMalformed)
	}
	code, err := strconv.Atoi(fields[1])
	if err != nil || code < 100 || code > 999 {
		return Status{}, fmt.Errorf("invalid status code, line:%s:%w", line, davxml.ErrMalformed)
	}
	return Status{Code: code, Line: line}, nil
}

func (s Status) IsZero() bool {
	return s.Code == 0
}

func (s Status) OK() bool {
	return s.Code >= 200 && s.Code < 300
}

func (s Status) String() string {
	if s.IsZero() {
		return "<none>"
	}
	return s.Line
}
