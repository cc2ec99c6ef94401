package transport

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
)

const maxRedirects = 10

type httpTransport struct {
	c      *config
	client *http.Client
}

// NewHTTPTransport returns an ITransport backed by net/http.
func NewHTTPTransport(opts ...Option) ITransport {
	c := applyOpts(opts...)
	cli := c.client
	if cli == nil {
		cli = &http.Client{
			Timeout:       c.timeout,
			CheckRedirect: checkRedirect,
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				IdleConnTimeout:     c.idleExpire,
				MaxIdleConns:        c.idleConns,
				MaxIdleConnsPerHost: c.idleConns,
			},
		}
	}
	return &httpTransport{c: c, client: cli}
}

// checkRedirect only follows redirects of GET and HEAD. net/http replays other
// methods as a GET, so their 3xx is handed back as the response instead.
func checkRedirect(req *http.Request, via []*http.Request) error {
	if len(via) == 0 {
		return nil
	}
	if m := via[0].Method; m != http.MethodGet && m != http.MethodHead {
		return http.ErrUseLastResponse
	}
	if len(via) >= maxRedirects {
		return fmt.Errorf("stopped after %d redirects", maxRedirects)
	}
	return nil
}

func (t *httpTransport) Send(ctx context.Context, req *Request) (*Response, error) {
	var body io.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}
	hreq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, body)
	if err != nil {
		return nil, &Error{Method: req.Method, URL: req.URL, Err: err}
	}
	for k, vs := range req.Header {
		for _, v := range vs {
			hreq.Header.Add(k, v)
		}
	}
	rsp, err := t.client.Do(hreq)
	if err != nil {
		return nil, &Error{Method: req.Method, URL: req.URL, Err: err}
	}
	defer rsp.Body.Close()
	var r io.Reader = rsp.Body
	if t.c.maxBody > 0 {
		r = io.LimitReader(rsp.Body, t.c.maxBody+1)
	}
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, &Error{Method: req.Method, URL: req.URL, Err: fmt.Errorf("read body:%w", err)}
	}
	if t.c.maxBody > 0 && int64(len(raw)) > t.c.maxBody {
		return nil, &Error{Method: req.Method, URL: req.URL, Err: fmt.Errorf("body exceeds limit, limit:%d", t.c.maxBody)}
	}
	return &Response{
		StatusCode: rsp.StatusCode,
		Header:     rsp.Header,
		Body:       raw,
	}, nil
}
