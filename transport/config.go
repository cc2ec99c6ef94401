package transport

import (
	"net/http"
	"time"
)

type config struct {
	client     *http.Client
	timeout    time.Duration
	maxBody    int64
	idleConns  int
	idleExpire time.Duration
}

type Option func(c *config)

// WithHTTPClient replaces the underlying client, all other transport options are ignored.
func WithHTTPClient(cli *http.Client) Option {
	return func(c *config) {
		c.client = cli
	}
}

func WithTimeout(t time.Duration) Option {
	return func(c *config) {
		c.timeout = t
	}
}

// WithMaxBodySize limits how many response bytes are read, 0 means unlimited.
func WithMaxBodySize(sz int64) Option {
	return func(c *config) {
		c.maxBody = sz
	}
}

func WithIdleConns(n int, expire time.Duration) Option {
	return func(c *config) {
		c.idleConns = n
		c.idleExpire = expire
	}
}

func applyOpts(opts ...Option) *config {
	c := &config{
		timeout:    30 * time.Second,
		idleConns:  5,
		idleExpire: 20 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}
