package client

import (
	"encoding/xml"
	"fmt"
	"net/http"
	"net/url"

	"github.com/xxxsen/davc/davxml"
	"github.com/xxxsen/davc/lock"
	"github.com/xxxsen/davc/transport"
)

const (
	MethodPropfind  = "PROPFIND"
	MethodProppatch = "PROPPATCH"
	MethodMkcol     = "MKCOL"
	MethodCopy      = "COPY"
	MethodMove      = "MOVE"
	MethodLock      = "LOCK"
	MethodUnlock    = "UNLOCK"
)

// intent describes one operation before it becomes a wire request.
type intent struct {
	method      string
	path        string
	destination string
	depth       *lock.Depth
	overwrite   *bool
	tokens      []string
	unlockToken string
	timeout     *int64
	scope       lock.Scope
	owner       string
	contentType string
	header      http.Header
	body        []byte
}

// CallOption tunes a single operation.
type CallOption func(in *intent)

// WithLockTokens submits tokens through the If header, in the given order.
func WithLockTokens(tokens ...string) CallOption {
	return func(in *intent) {
		in.tokens = append(in.tokens, tokens...)
	}
}

// WithOverwrite controls the Overwrite header of COPY and MOVE, T by default.
func WithOverwrite(v bool) CallOption {
	return func(in *intent) {
		in.overwrite = &v
	}
}

// WithRecursive asks for Depth: Infinity on COPY and LOCK.
func WithRecursive(v bool) CallOption {
	return func(in *intent) {
		d := lock.DepthZero
		if v {
			d = lock.DepthInfinity
		}
		in.depth = &d
	}
}

func WithDepth(d lock.Depth) CallOption {
	return func(in *intent) {
		in.depth = &d
	}
}

// WithLockTimeout is the lock lifetime asked for, lock.TimeoutInfinite by default.
func WithLockTimeout(sec int64) CallOption {
	return func(in *intent) {
		in.timeout = &sec
	}
}

func WithLockScope(s lock.Scope) CallOption {
	return func(in *intent) {
		in.scope = s
	}
}

func WithLockOwner(owner string) CallOption {
	return func(in *intent) {
		in.owner = owner
	}
}

func WithContentType(ct string) CallOption {
	return func(in *intent) {
		in.contentType = ct
	}
}

func WithRequestHeader(k string, v string) CallOption {
	return func(in *intent) {
		in.header.Add(k, v)
	}
}

func newIntent(method string, path string, opts ...CallOption) *intent {
	in := &intent{
		method: method,
		path:   path,
		header: make(http.Header),
	}
	for _, opt := range opts {
		opt(in)
	}
	return in
}

func (in *intent) depthOr(d lock.Depth) lock.Depth {
	if in.depth == nil {
		return d
	}
	return *in.depth
}

func (in *intent) overwriteOr(v bool) bool {
	if in.overwrite == nil {
		return v
	}
	return *in.overwrite
}

func (in *intent) timeoutOr(sec int64) int64 {
	if in.timeout == nil {
		return sec
	}
	return *in.timeout
}

func putIntent(path string, body []byte, opts ...CallOption) *intent {
	in := newIntent(http.MethodPut, path, opts...)
	if in.body = body; in.body == nil {
		in.body = []byte{}
	}
	return in
}

func transferIntent(method string, src string, dst string, opts ...CallOption) *intent {
	in := newIntent(method, src, opts...)
	in.destination = dst
	if in.overwrite == nil {
		in.overwrite = boolPtr(true)
	}
	switch method {
	case MethodCopy:
		d := in.depthOr(lock.DepthZero)
		if d == lock.DepthOne {
			d = lock.DepthInfinity
		}
		in.depth = &d
	case MethodMove:
		// always deep, the header is left out
		in.depth = nil
	}
	return in
}

func propfindIntent(ns *davxml.Namespaces, path string, props []xml.Name, opts ...CallOption) *intent {
	in := newIntent(MethodPropfind, path, opts...)
	d := in.depthOr(lock.DepthZero)
	in.depth = &d
	in.contentType = davxml.ContentType
	in.body = davxml.EncodePropfind(ns, props)
	return in
}

func proppatchIntent(ns *davxml.Namespaces, path string, ins []davxml.PatchInstruction, opts ...CallOption) (*intent, error) {
	body, err := davxml.EncodePropertyUpdate(ns, ins)
	if err != nil {
		return nil, fmt.Errorf("encode propertyupdate:%w", err)
	}
	in := newIntent(MethodProppatch, path, opts...)
	in.contentType = davxml.ContentType
	in.body = body
	return in, nil
}

func lockIntent(path string, opts ...CallOption) (*intent, error) {
	in := newIntent(MethodLock, path, opts...)
	if len(in.scope) == 0 {
		in.scope = lock.ScopeExclusive
	}
	d := in.depthOr(lock.DepthZero)
	if d == lock.DepthOne {
		return nil, fmt.Errorf("lock depth must be 0 or infinity")
	}
	in.depth = &d
	t := in.timeoutOr(lock.TimeoutInfinite)
	in.timeout = &t
	body, err := davxml.EncodeLockInfo(davxml.LockScope(in.scope), in.owner)
	if err != nil {
		return nil, fmt.Errorf("encode lockinfo:%w", err)
	}
	in.contentType = davxml.ContentType
	in.body = body
	return in, nil
}

func refreshIntent(path string, token string, timeout int64) *intent {
	return newIntent(MethodLock, path, WithLockTokens(token), WithLockTimeout(timeout))
}

func unlockIntent(path string, token string) *intent {
	in := newIntent(MethodUnlock, path)
	in.unlockToken = token
	return in
}

// request renders the intent against base. Relative paths and destinations
// are resolved against base.
func (in *intent) request(base *url.URL) (*transport.Request, error) {
	target, err := resolve(base, in.path)
	if err != nil {
		return nil, err
	}
	req := transport.NewRequest(in.method, target)
	if len(in.destination) > 0 {
		dst, err := resolve(base, in.destination)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Destination", dst)
	}
	if in.overwrite != nil {
		req.Header.Set("Overwrite", overwriteHeader(*in.overwrite))
	}
	if in.depth != nil {
		req.Header.Set("Depth", in.depth.String())
	}
	if v := lock.IfHeader(in.tokens...); len(v) > 0 {
		req.Header.Set("If", v)
	}
	if len(in.unlockToken) > 0 {
		req.Header.Set("Lock-Token", lock.LockTokenHeader(in.unlockToken))
	}
	if in.timeout != nil {
		req.Header.Set("Timeout", lock.TimeoutHeader(*in.timeout))
	}
	if len(in.contentType) > 0 {
		req.Header.Set("Content-Type", in.contentType)
	}
	for k, vs := range in.header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Body = in.body
	return req, nil
}

func resolve(base *url.URL, p string) (string, error) {
	ref, err := url.Parse(p)
	if err != nil {
		return "", fmt.Errorf("parse path failed, path:%s, err:%w", p, err)
	}
	return base.ResolveReference(ref).String(), nil
}

func overwriteHeader(v bool) string {
	if v {
		return "T"
	}
	return "F"
}

func boolPtr(v bool) *bool {
	return &v
}
