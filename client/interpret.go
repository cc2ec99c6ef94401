package client

import (
	"github.com/xxxsen/davc/daverr"
	"github.com/xxxsen/davc/multistatus"
	"github.com/xxxsen/davc/transport"
)

// verdict is the classification of a received response. failure holds a
// *daverr.ProtocolError or *daverr.PartialFailure and is subject to the error policy.
type verdict struct {
	succeeded bool
	ms        *multistatus.MultiStatus
	failure   error
}

type interpretMode int

const (
	// 207 succeeds only when every entry is 2xx.
	modeStrict interpretMode = iota
	// any well-formed 207 succeeds, failed entries stay inside the value.
	modeLenient
	// the body is never decoded.
	modeRaw
)

// classify sorts a response into success, policy-bound failure or neither.
// A 207 body that cannot be decoded gives a DecodeError, whatever the policy.
func classify(req *transport.Request, rsp *transport.Response, mode interpretMode) (*verdict, error) {
	code := rsp.StatusCode
	switch {
	case code == daverr.StatusMultiStatus && mode != modeRaw:
		ms, err := multistatus.Decode(rsp.Body)
		if err != nil {
			return nil, &daverr.DecodeError{Method: req.Method, URL: req.URL, Status: code, Err: err}
		}
		if mode == modeLenient || ms.AllSucceeded() {
			return &verdict{succeeded: true, ms: ms}, nil
		}
		return &verdict{ms: ms, failure: &daverr.PartialFailure{
			Method:      req.Method,
			URL:         req.URL,
			MultiStatus: ms,
			Request:     req,
			Response:    rsp,
		}}, nil
	case code >= 200 && code < 300:
		return &verdict{succeeded: true}, nil
	case daverr.ClassOf(code) != daverr.ClassNone:
		return &verdict{failure: daverr.NewProtocolError(req, rsp)}, nil
	}
	return &verdict{}, nil
}

func conclude[T any](policy ErrorPolicy, rsp *transport.Response, v *verdict, value T) (*Result[T], error) {
	if v.failure != nil && policy == PolicyRaise {
		return nil, v.failure
	}
	return &Result[T]{
		Succeeded: v.succeeded,
		Status:    rsp.StatusCode,
		Header:    rsp.Header,
		Value:     value,
	}, nil
}
