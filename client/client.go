package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/xxxsen/common/logutil"
	"github.com/xxxsen/davc/daverr"
	"github.com/xxxsen/davc/davxml"
	"github.com/xxxsen/davc/lock"
	"github.com/xxxsen/davc/multistatus"
	"github.com/xxxsen/davc/transport"
	"go.uber.org/zap"
)

const defaultUserAgent = "davc/1.0"

// IClient issues WebDAV operations, one blocking exchange per call. Paths are
// resolved against the base url. Operations returning a multi-status carry a
// nil Value unless the server answered 207.
type IClient interface {
	Options(ctx context.Context, path string) (*Result[*Capabilities], error)
	ComplianceClasses(ctx context.Context) ([]string, error)
	SupportedMethods(ctx context.Context) ([]string, error)
	Exists(ctx context.Context, path string) (bool, error)
	Get(ctx context.Context, path string, opts ...CallOption) (*Result[[]byte], error)
	Put(ctx context.Context, path string, data []byte, opts ...CallOption) (*Result[*multistatus.MultiStatus], error)
	Delete(ctx context.Context, path string, opts ...CallOption) (*Result[*multistatus.MultiStatus], error)
	Mkcol(ctx context.Context, path string, opts ...CallOption) (*Result[*multistatus.MultiStatus], error)
	Copy(ctx context.Context, src string, dst string, opts ...CallOption) (*Result[*multistatus.MultiStatus], error)
	Move(ctx context.Context, src string, dst string, opts ...CallOption) (*Result[*multistatus.MultiStatus], error)
	// Propfind asks for props given as qualified names ("R:bigbox"), all
	// properties when props is empty.
	Propfind(ctx context.Context, path string, props []string, opts ...CallOption) (*Result[*multistatus.MultiStatus], error)
	Proppatch(ctx context.Context, path string, ins []davxml.PatchInstruction, opts ...CallOption) (*Result[*multistatus.MultiStatus], error)
	CreateLock(ctx context.Context, path string, opts ...CallOption) (*Result[*lock.Lock], error)
	RefreshLock(ctx context.Context, path string, token string, timeout int64) (*Result[*lock.Lock], error)
	ReleaseLock(ctx context.Context, path string, token string) (*Result[*multistatus.MultiStatus], error)
	// WithPolicy returns a client sharing everything but the error policy.
	WithPolicy(p ErrorPolicy) IClient
	// Namespaces is the live prefix registry used to render property names.
	Namespaces() *davxml.Namespaces
	BaseURL() string
}

type defaultClient struct {
	c    *config
	base *url.URL
	ns   *davxml.Namespaces
}

func New(baseURL string, opts ...Option) (IClient, error) {
	if len(baseURL) == 0 {
		return nil, fmt.Errorf("no base url found")
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url:%w", err)
	}
	if len(u.Scheme) == 0 || len(u.Host) == 0 {
		return nil, fmt.Errorf("base url should be absolute, url:%s", baseURL)
	}
	c := applyOpts(opts...)
	ns := davxml.NewNamespaces()
	for _, b := range c.namespaces {
		if err := ns.Register(b.uri, b.prefix); err != nil {
			return nil, fmt.Errorf("register namespace:%w", err)
		}
	}
	return &defaultClient{c: c, base: u, ns: ns}, nil
}

func (d *defaultClient) BaseURL() string {
	return d.base.String()
}

func (d *defaultClient) Namespaces() *davxml.Namespaces {
	return d.ns
}

func (d *defaultClient) WithPolicy(p ErrorPolicy) IClient {
	cp := *d.c
	cp.policy = p
	return &defaultClient{c: &cp, base: d.base, ns: d.ns}
}

func (d *defaultClient) applyDefaults(req *transport.Request) {
	if len(req.Header.Get("User-Agent")) == 0 && len(d.c.userAgent) > 0 {
		req.Header.Set("User-Agent", d.c.userAgent)
	}
	if len(req.Header.Get("Authorization")) == 0 && len(d.c.authorization) > 0 {
		req.Header.Set("Authorization", d.c.authorization)
	}
	for k, vs := range d.c.headers {
		if len(req.Header.Values(k)) > 0 {
			continue
		}
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
}

// exchange sends the intent. A transport error is returned as is.
func (d *defaultClient) exchange(ctx context.Context, in *intent) (*transport.Request, *transport.Response, error) {
	req, err := in.request(d.base)
	if err != nil {
		return nil, nil, err
	}
	d.applyDefaults(req)
	start := time.Now()
	rsp, err := d.c.tp.Send(ctx, req)
	if err != nil {
		logutil.GetLogger(ctx).Error("webdav exchange failed", zap.String("method", req.Method),
			zap.String("url", req.URL), zap.Error(err))
		return nil, nil, err
	}
	logutil.GetLogger(ctx).Debug("webdav exchange", zap.String("method", req.Method), zap.String("url", req.URL),
		zap.Int("status", rsp.StatusCode), zap.Int("body_size", len(rsp.Body)), zap.Duration("cost", time.Since(start)))
	return req, rsp, nil
}

func (d *defaultClient) decodeFailure(ctx context.Context, req *transport.Request, rsp *transport.Response, err error) error {
	logutil.GetLogger(ctx).Error("decode webdav response failed", zap.String("method", req.Method),
		zap.String("url", req.URL), zap.Int("status", rsp.StatusCode), zap.Error(err))
	return &daverr.DecodeError{Method: req.Method, URL: req.URL, Status: rsp.StatusCode, Err: err}
}

func (d *defaultClient) classify(ctx context.Context, req *transport.Request, rsp *transport.Response, mode interpretMode) (*verdict, error) {
	v, err := classify(req, rsp, mode)
	if err != nil {
		logutil.GetLogger(ctx).Error("decode multistatus failed", zap.String("method", req.Method),
			zap.String("url", req.URL), zap.Error(err))
		return nil, err
	}
	return v, nil
}

func (d *defaultClient) Options(ctx context.Context, path string) (*Result[*Capabilities], error) {
	req, rsp, err := d.exchange(ctx, newIntent(http.MethodOptions, path))
	if err != nil {
		return nil, err
	}
	v, err := classify(req, rsp, modeRaw)
	if err != nil {
		return nil, err
	}
	var caps *Capabilities
	if v.succeeded {
		caps = parseCapabilities(rsp.Header)
	}
	return conclude(d.c.policy, rsp, v, caps)
}

func (d *defaultClient) ComplianceClasses(ctx context.Context) ([]string, error) {
	rs, err := d.Options(ctx, "")
	if err != nil || !rs.Succeeded {
		return nil, err
	}
	return rs.Value.Classes, nil
}

func (d *defaultClient) SupportedMethods(ctx context.Context) ([]string, error) {
	rs, err := d.Options(ctx, "")
	if err != nil || !rs.Succeeded {
		return nil, err
	}
	return rs.Value.Methods, nil
}

func (d *defaultClient) Exists(ctx context.Context, path string) (bool, error) {
	req, rsp, err := d.exchange(ctx, newIntent(http.MethodHead, path))
	if err != nil {
		return false, err
	}
	if rsp.StatusCode == http.StatusNotFound {
		return false, nil
	}
	v, err := classify(req, rsp, modeRaw)
	if err != nil {
		return false, err
	}
	rs, err := conclude(d.c.policy, rsp, v, struct{}{})
	if err != nil {
		return false, err
	}
	return rs.Succeeded, nil
}

func (d *defaultClient) Get(ctx context.Context, path string, opts ...CallOption) (*Result[[]byte], error) {
	req, rsp, err := d.exchange(ctx, newIntent(http.MethodGet, path, opts...))
	if err != nil {
		return nil, err
	}
	v, err := classify(req, rsp, modeRaw)
	if err != nil {
		return nil, err
	}
	var body []byte
	if v.succeeded {
		body = rsp.Body
	}
	return conclude(d.c.policy, rsp, v, body)
}

// call runs an operation whose only value is the multi-status of a 207 answer.
func (d *defaultClient) call(ctx context.Context, in *intent, mode interpretMode) (*Result[*multistatus.MultiStatus], error) {
	req, rsp, err := d.exchange(ctx, in)
	if err != nil {
		return nil, err
	}
	v, err := d.classify(ctx, req, rsp, mode)
	if err != nil {
		return nil, err
	}
	return conclude(d.c.policy, rsp, v, v.ms)
}

func (d *defaultClient) Put(ctx context.Context, path string, data []byte, opts ...CallOption) (*Result[*multistatus.MultiStatus], error) {
	return d.call(ctx, putIntent(path, data, opts...), modeStrict)
}

func (d *defaultClient) Delete(ctx context.Context, path string, opts ...CallOption) (*Result[*multistatus.MultiStatus], error) {
	return d.call(ctx, newIntent(http.MethodDelete, path, opts...), modeStrict)
}

func (d *defaultClient) Mkcol(ctx context.Context, path string, opts ...CallOption) (*Result[*multistatus.MultiStatus], error) {
	return d.call(ctx, newIntent(MethodMkcol, path, opts...), modeStrict)
}

func (d *defaultClient) Copy(ctx context.Context, src string, dst string, opts ...CallOption) (*Result[*multistatus.MultiStatus], error) {
	return d.call(ctx, transferIntent(MethodCopy, src, dst, opts...), modeStrict)
}

func (d *defaultClient) Move(ctx context.Context, src string, dst string, opts ...CallOption) (*Result[*multistatus.MultiStatus], error) {
	return d.call(ctx, transferIntent(MethodMove, src, dst, opts...), modeStrict)
}

func (d *defaultClient) Proppatch(ctx context.Context, path string, ins []davxml.PatchInstruction, opts ...CallOption) (*Result[*multistatus.MultiStatus], error) {
	in, err := proppatchIntent(d.ns, path, ins, opts...)
	if err != nil {
		return nil, err
	}
	return d.call(ctx, in, modeStrict)
}

func (d *defaultClient) ReleaseLock(ctx context.Context, path string, token string) (*Result[*multistatus.MultiStatus], error) {
	return d.call(ctx, unlockIntent(path, token), modeStrict)
}

func (d *defaultClient) Propfind(ctx context.Context, path string, props []string, opts ...CallOption) (*Result[*multistatus.MultiStatus], error) {
	names, err := d.ns.ResolveAll(props)
	if err != nil {
		return nil, fmt.Errorf("resolve props:%w", err)
	}
	req, rsp, err := d.exchange(ctx, propfindIntent(d.ns, path, names, opts...))
	if err != nil {
		return nil, err
	}
	v, err := d.classify(ctx, req, rsp, modeLenient)
	if err != nil {
		return nil, err
	}
	if v.succeeded && v.ms == nil {
		// plain 2xx, the body still has to be a multistatus document
		ms, err := multistatus.Decode(rsp.Body)
		if err != nil {
			return nil, d.decodeFailure(ctx, req, rsp, err)
		}
		v.ms = ms
	}
	return conclude(d.c.policy, rsp, v, v.ms)
}

func (d *defaultClient) CreateLock(ctx context.Context, path string, opts ...CallOption) (*Result[*lock.Lock], error) {
	in, err := lockIntent(path, opts...)
	if err != nil {
		return nil, err
	}
	req, rsp, err := d.exchange(ctx, in)
	if err != nil {
		return nil, err
	}
	return d.readLock(ctx, req, rsp, "")
}

func (d *defaultClient) RefreshLock(ctx context.Context, path string, token string, timeout int64) (*Result[*lock.Lock], error) {
	req, rsp, err := d.exchange(ctx, refreshIntent(path, token, timeout))
	if err != nil {
		return nil, err
	}
	return d.readLock(ctx, req, rsp, token)
}

// readLock turns a LOCK answer into a Lock. The token falls back to the
// Lock-Token response header, then to knownToken.
func (d *defaultClient) readLock(ctx context.Context, req *transport.Request, rsp *transport.Response, knownToken string) (*Result[*lock.Lock], error) {
	lockPath := pathOf(req.URL)
	if rsp.StatusCode == daverr.StatusMultiStatus {
		ms, err := multistatus.Decode(rsp.Body)
		if err != nil {
			return nil, d.decodeFailure(ctx, req, rsp, err)
		}
		return nil, &daverr.AmbiguousLockError{Path: lockPath, Count: ms.Len(), MultiStatus: ms}
	}
	v, err := classify(req, rsp, modeRaw)
	if err != nil {
		return nil, err
	}
	if !v.succeeded {
		return conclude[*lock.Lock](d.c.policy, rsp, v, nil)
	}
	fallback := lock.ParseLockTokenHeader(rsp.Header.Get("Lock-Token"))
	if len(fallback) == 0 {
		fallback = knownToken
	}
	l, err := lock.Decode(rsp.Body, lockPath, fallback)
	if err != nil {
		var aerr *daverr.AmbiguousLockError
		if errors.As(err, &aerr) {
			return nil, err
		}
		return nil, d.decodeFailure(ctx, req, rsp, err)
	}
	return conclude(d.c.policy, rsp, v, l)
}

func pathOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	return u.Path
}
