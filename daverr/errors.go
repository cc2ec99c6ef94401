package daverr

import (
	"errors"
	"fmt"

	"github.com/xxxsen/davc/multistatus"
	"github.com/xxxsen/davc/transport"
)

// ProtocolError is a 4xx or 5xx answer. It keeps the exchange that produced it.
type ProtocolError struct {
	Method      string
	URL         string
	Status      int
	Description string
	Request     *transport.Request
	Response    *transport.Response
}

func NewProtocolError(req *transport.Request, rsp *transport.Response) *ProtocolError {
	_, desc, _ := Describe(req.Method, rsp.StatusCode)
	return &ProtocolError{
		Method:      req.Method,
		URL:         req.URL,
		Status:      rsp.StatusCode,
		Description: desc,
		Request:     req,
		Response:    rsp,
	}
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("%s error, method:%s, url:%s, status:%d, desc:%s", e.Class(), e.Method, e.URL, e.Status, e.Description)
}

func (e *ProtocolError) Class() Class {
	return ClassOf(e.Status)
}

func IsClientError(err error) bool {
	var perr *ProtocolError
	return errors.As(err, &perr) && perr.Class() == ClassClient
}

func IsServerError(err error) bool {
	var perr *ProtocolError
	return errors.As(err, &perr) && perr.Class() == ClassServer
}

// StatusOf returns the status carried by a ProtocolError in the chain of err.
func StatusOf(err error) (int, bool) {
	var perr *ProtocolError
	if !errors.As(err, &perr) {
		return 0, false
	}
	return perr.Status, true
}

// PartialFailure is a 207 answer holding at least one non-2xx entry.
type PartialFailure struct {
	Method      string
	URL         string
	MultiStatus *multistatus.MultiStatus
	Request     *transport.Request
	Response    *transport.Response
}

func (e *PartialFailure) Error() string {
	return fmt.Sprintf("multi-status partial failure, method:%s, url:%s, failed:%d/%d, err:%v",
		e.Method, e.URL, len(e.MultiStatus.Failed()), e.MultiStatus.Len(), e.MultiStatus.Err())
}

func (e *PartialFailure) Unwrap() error {
	return e.MultiStatus.Err()
}

// DecodeError is a body that could not be interpreted for the operation.
type DecodeError struct {
	Method string
	URL    string
	Status int
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode response failed, method:%s, url:%s, status:%d, err:%v", e.Method, e.URL, e.Status, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// AmbiguousLockError is a LOCK answer describing more than one granted lock.
// MultiStatus is set when the server answered with a 207.
type AmbiguousLockError struct {
	Path        string
	Count       int
	MultiStatus *multistatus.MultiStatus
}

func (e *AmbiguousLockError) Error() string {
	if e.MultiStatus != nil {
		return fmt.Sprintf("ambiguous lock response, path:%s, multi-status entries:%d", e.Path, e.MultiStatus.Len())
	}
	return fmt.Sprintf("ambiguous lock response, path:%s, active locks:%d", e.Path, e.Count)
}
