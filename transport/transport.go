package transport

import (
	"context"
	"fmt"
	"net/http"
)

// Request is a fully built wire request. Body may be nil.
type Request struct {
	Method string
	URL    string
	Header http.Header
	Body   []byte
}

// Response is the wire response with its body already read.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// ITransport performs one request/response exchange. An error means no response
// was received at all; any status code, including 4xx/5xx, is a response.
type ITransport interface {
	Send(ctx context.Context, req *Request) (*Response, error)
}

type SendFunc func(ctx context.Context, req *Request) (*Response, error)

func (f SendFunc) Send(ctx context.Context, req *Request) (*Response, error) {
	return f(ctx, req)
}

// Error wraps a failure that prevented the exchange from completing.
type Error struct {
	Method string
	URL    string
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("transport failed, method:%s, url:%s, err:%v", e.Method, e.URL, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func NewRequest(method string, url string) *Request {
	return &Request{
		Method: method,
		URL:    url,
		Header: make(http.Header),
	}
}
