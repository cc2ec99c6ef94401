package client

import (
	"encoding/base64"
	"net/http"

	"github.com/xxxsen/davc/transport"
)

// ErrorPolicy decides what a 4xx/5xx answer or a partially failed 207 turns into.
type ErrorPolicy int

const (
	// PolicyReturn reports the failure through Result.Succeeded and a nil error.
	PolicyReturn ErrorPolicy = iota
	// PolicyRaise returns a *daverr.ProtocolError or *daverr.PartialFailure.
	PolicyRaise
)

type nsBinding struct {
	uri    string
	prefix string
}

type config struct {
	userAgent     string
	authorization string
	headers       http.Header
	namespaces    []nsBinding
	policy        ErrorPolicy
	tp            transport.ITransport
}

type Option func(c *config)

func WithUserAgent(ua string) Option {
	return func(c *config) {
		c.userAgent = ua
	}
}

// WithBasicAuth renders user and password into the Authorization header.
func WithBasicAuth(user string, pass string) Option {
	return func(c *config) {
		c.authorization = "Basic " + base64.StdEncoding.EncodeToString([]byte(user+":"+pass))
	}
}

// WithAuthorization sets an already encoded Authorization header value.
func WithAuthorization(v string) Option {
	return func(c *config) {
		c.authorization = v
	}
}

func WithHeader(k string, v string) Option {
	return func(c *config) {
		c.headers.Add(k, v)
	}
}

func WithNamespace(uri string, prefix string) Option {
	return func(c *config) {
		c.namespaces = append(c.namespaces, nsBinding{uri: uri, prefix: prefix})
	}
}

func WithErrorPolicy(p ErrorPolicy) Option {
	return func(c *config) {
		c.policy = p
	}
}

func WithTransport(tp transport.ITransport) Option {
	return func(c *config) {
		c.tp = tp
	}
}

func applyOpts(opts ...Option) *config {
	c := &config{
		userAgent: defaultUserAgent,
		headers:   make(http.Header),
		policy:    PolicyReturn,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.tp == nil {
		c.tp = transport.NewHTTPTransport()
	}
	return c
}
