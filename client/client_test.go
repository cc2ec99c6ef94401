package client

import (
	"context"
	"encoding/xml"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xxxsen/davc/daverr"
	"github.com/xxxsen/davc/davtest"
	"github.com/xxxsen/davc/davxml"
	"github.com/xxxsen/davc/lock"
	"github.com/xxxsen/davc/transport"
)

type fakeTransport struct {
	reqs []*transport.Request
	rsp  *transport.Response
	err  error
}

func (f *fakeTransport) Send(ctx context.Context, req *transport.Request) (*transport.Response, error) {
	f.reqs = append(f.reqs, req)
	if f.err != nil {
		return nil, f.err
	}
	return f.rsp, nil
}

func (f *fakeTransport) last() *transport.Request {
	if len(f.reqs) == 0 {
		return nil
	}
	return f.reqs[len(f.reqs)-1]
}

func respond(status int, body []byte, kv ...string) *fakeTransport {
	h := make(http.Header)
	for i := 0; i+1 < len(kv); i += 2 {
		h.Add(kv[i], kv[i+1])
	}
	return &fakeTransport{rsp: &transport.Response{StatusCode: status, Header: h, Body: body}}
}

func fixture(t *testing.T, name string) []byte {
	raw, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	return raw
}

func newTestClient(t *testing.T, base string, tp transport.ITransport, opts ...Option) IClient {
	cli, err := New(base, append([]Option{WithTransport(tp)}, opts...)...)
	require.NoError(t, err)
	return cli
}

func TestNew(t *testing.T) {
	cli := newTestClient(t, "http://www.foo.bar", respond(200, nil))
	assert.Equal(t, "http://www.foo.bar", cli.BaseURL())

	_, err := New("")
	assert.Error(t, err)
	_, err = New("/relative")
	assert.Error(t, err)
	_, err = New("http://www.foo.bar", WithNamespace("urn:a", "X"), WithNamespace("urn:b", "X"))
	assert.Error(t, err)
}

func TestConfig(t *testing.T) {
	tp := respond(200, []byte("hello"))
	cli := newTestClient(t, "http://www.foo.bar", tp,
		WithBasicAuth("user", "pass"),
		WithUserAgent("my/custom/agent"),
		WithHeader("X-Extra", "yes"))
	rs, err := cli.Get(context.Background(), "http://www.foo.bar/resource")
	require.NoError(t, err)
	assert.True(t, rs.Succeeded)
	assert.Equal(t, []byte("hello"), rs.Value)
	req := tp.last()
	assert.Equal(t, "http://www.foo.bar/resource", req.URL)
	assert.Equal(t, "my/custom/agent", req.Header.Get("User-Agent"))
	assert.Equal(t, "Basic dXNlcjpwYXNz", req.Header.Get("Authorization"))
	assert.Equal(t, "yes", req.Header.Get("X-Extra"))

	tp = respond(200, nil)
	cli = newTestClient(t, "http://www.foo.bar", tp, WithAuthorization("Bearer abc"))
	_, err = cli.Get(context.Background(), "/r", WithRequestHeader("User-Agent", "override"))
	require.NoError(t, err)
	assert.Equal(t, "Bearer abc", tp.last().Header.Get("Authorization"))
	assert.Equal(t, "override", tp.last().Header.Get("User-Agent"))
}

func TestComplianceClassesAndMethods(t *testing.T) {
	tp := respond(200, nil, "DAV", "1, 2, <http://apache.org/dav/propset/fs/1>", "Allow", "GET, POST, MKCOL, PROPFIND")
	cli := newTestClient(t, "http://www.foo.bar", tp)
	classes, err := cli.ComplianceClasses(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2", "<http://apache.org/dav/propset/fs/1>"}, classes)
	assert.Equal(t, "OPTIONS", tp.last().Method)
	assert.Equal(t, "http://www.foo.bar", tp.last().URL)

	methods, err := cli.SupportedMethods(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"GET", "POST", "MKCOL", "PROPFIND"}, methods)

	rs, err := cli.Options(context.Background(), "/dir/")
	require.NoError(t, err)
	assert.True(t, rs.Value.Compliant("2"))
	assert.False(t, rs.Value.Compliant("3"))
	assert.True(t, rs.Value.Supports("mkcol"))
	assert.False(t, rs.Value.Supports("LOCK"))
}

func TestOptionsFailure(t *testing.T) {
	cli := newTestClient(t, "http://www.foo.bar", respond(500, nil))
	classes, err := cli.ComplianceClasses(context.Background())
	assert.NoError(t, err)
	assert.Nil(t, classes)

	_, err = cli.WithPolicy(PolicyRaise).SupportedMethods(context.Background())
	assert.True(t, daverr.IsServerError(err))
}

func TestExists(t *testing.T) {
	ctx := context.Background()
	tp := respond(200, nil)
	ok, err := newTestClient(t, "http://www.foo.bar", tp).Exists(ctx, "/resource")
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "HEAD", tp.last().Method)

	for _, policy := range []ErrorPolicy{PolicyReturn, PolicyRaise} {
		ok, err = newTestClient(t, "http://www.foo.bar", respond(404, nil), WithErrorPolicy(policy)).Exists(ctx, "/resource")
		assert.NoError(t, err)
		assert.False(t, ok)
	}

	ok, err = newTestClient(t, "http://www.foo.bar", respond(500, nil)).Exists(ctx, "/resource")
	assert.NoError(t, err)
	assert.False(t, ok)
	ok, err = newTestClient(t, "http://www.foo.bar", respond(500, nil), WithErrorPolicy(PolicyRaise)).Exists(ctx, "/resource")
	assert.True(t, daverr.IsServerError(err))
	assert.False(t, ok)
}

func TestPutWithLockToken(t *testing.T) {
	tp := respond(201, nil)
	cli := newTestClient(t, "http://www.example.com", tp)
	rs, err := cli.Put(context.Background(), "resource", []byte("Hello World"),
		WithLockTokens("opaquelocktoken:e71d4fae-5dec-22d6-fea5-00a0c91e6be4"),
		WithContentType("text/plain"))
	require.NoError(t, err)
	assert.True(t, rs.Succeeded)
	assert.Equal(t, 201, rs.Status)
	assert.Nil(t, rs.Value)
	req := tp.last()
	assert.Equal(t, "PUT", req.Method)
	assert.Equal(t, "http://www.example.com/resource", req.URL)
	assert.Equal(t, "(<opaquelocktoken:e71d4fae-5dec-22d6-fea5-00a0c91e6be4>)", req.Header.Get("If"))
	assert.Equal(t, "text/plain", req.Header.Get("Content-Type"))
	assert.Equal(t, []byte("Hello World"), req.Body)
}

func TestPutLocked(t *testing.T) {
	cli := newTestClient(t, "http://www.example.com", respond(423, nil))
	rs, err := cli.Put(context.Background(), "resource", []byte("data"))
	require.NoError(t, err)
	assert.False(t, rs.Succeeded)
	assert.Equal(t, 423, rs.Status)

	_, err = cli.WithPolicy(PolicyRaise).Put(context.Background(), "resource", []byte("data"))
	var perr *daverr.ProtocolError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, "the resource is locked", perr.Description)
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	rs, err := newTestClient(t, "http://www.example.com", respond(204, nil)).Delete(ctx, "/container/")
	require.NoError(t, err)
	assert.True(t, rs.Succeeded)
	assert.Equal(t, 204, rs.Status)

	cli := newTestClient(t, "http://www.foo.bar", respond(207, fixture(t, "delete-failed.xml")))
	rs, err = cli.Delete(ctx, "/container/")
	require.NoError(t, err)
	assert.False(t, rs.Succeeded)
	assert.Equal(t, 207, rs.Status)
	require.NotNil(t, rs.Value)
	require.Equal(t, 1, rs.Value.Len())
	entry := rs.Value.Entries[0]
	assert.Equal(t, "http://www.foo.bar/container/resource3", entry.Href)
	assert.Equal(t, 423, entry.Status.Code)
	assert.Equal(t, []xml.Name{{Space: "DAV:", Local: "lock-token-submitted"}}, entry.Errors)

	_, err = cli.WithPolicy(PolicyRaise).Delete(ctx, "/container/")
	var pf *daverr.PartialFailure
	require.True(t, errors.As(err, &pf))
	assert.Equal(t, "DELETE", pf.Method)
	assert.Equal(t, 1, pf.MultiStatus.Len())
	require.NotNil(t, pf.Request)
	require.NotNil(t, pf.Response)
	assert.Equal(t, "DELETE", pf.Request.Method)
	assert.Equal(t, 207, pf.Response.StatusCode)
}

func TestRedirectIsNotFollowedForDelete(t *testing.T) {
	s := davtest.New()
	defer s.Close()
	s.Script("DELETE", "/dir", davtest.Reply{Status: 301, Header: map[string]string{"Location": "/dir/"}})
	s.Script("GET", "/dir/", davtest.Reply{Status: 200, Header: map[string]string{"Content-Type": "text/html"}, Body: "<html/>"})
	cli, err := New(s.URL())
	require.NoError(t, err)

	rs, err := cli.WithPolicy(PolicyRaise).Delete(context.Background(), "/dir")
	require.NoError(t, err)
	assert.False(t, rs.Succeeded)
	assert.Equal(t, 301, rs.Status)
	assert.Equal(t, "/dir/", rs.Header.Get("Location"))
	require.Len(t, s.Records(), 1)
	assert.Equal(t, "DELETE", s.Last().Method)
}

func TestMkcol(t *testing.T) {
	tp := respond(201, nil)
	rs, err := newTestClient(t, "http://www.server.org", tp).Mkcol(context.Background(), "/webdisc/xfiles")
	require.NoError(t, err)
	assert.True(t, rs.Succeeded)
	assert.Equal(t, 201, rs.Status)
	assert.Equal(t, "MKCOL", tp.last().Method)
	assert.Equal(t, "http://www.server.org/webdisc/xfiles", tp.last().URL)
}

type badResponse struct {
	status int
	class  daverr.Class
	desc   string
}

func checkBadResponses(t *testing.T, tests []badResponse, run func(cli IClient) error) {
	for _, tst := range tests {
		cli := newTestClient(t, "http://www.foo.bar", respond(tst.status, nil), WithErrorPolicy(PolicyRaise))
		err := run(cli)
		var perr *daverr.ProtocolError
		require.True(t, errors.As(err, &perr), "status:%d", tst.status)
		assert.Equal(t, tst.status, perr.Status)
		assert.Equal(t, tst.class, perr.Class())
		assert.Equal(t, tst.desc, perr.Description)
		assert.Equal(t, tst.status, perr.Response.StatusCode)
		assert.NotNil(t, perr.Request)

		assert.NoError(t, run(cli.WithPolicy(PolicyReturn)), "status:%d", tst.status)
	}
}

func TestMkcolBadResponses(t *testing.T) {
	checkBadResponses(t, []badResponse{
		{403, daverr.ClassClient, "collections cannot be created at the requested location"},
		{405, daverr.ClassClient, "the resource already exists"},
		{409, daverr.ClassClient, "one or more intermediate collections are missing"},
		{415, daverr.ClassClient, "the server does not support the request body type"},
		{507, daverr.ClassServer, "the server does not have enough space to record the collection"},
	}, func(cli IClient) error {
		_, err := cli.Mkcol(context.Background(), "/resource")
		return err
	})
}

func TestMoveRegularFile(t *testing.T) {
	tp := respond(201, nil, "Location", "http://www.ics.uci.edu/users/f/fielding/index.html")
	cli := newTestClient(t, "http://www.ics.uci.edu", tp)
	rs, err := cli.Move(context.Background(), "/~fielding/index.html", "/users/f/fielding/index.html")
	require.NoError(t, err)
	assert.True(t, rs.Succeeded)
	assert.Equal(t, 201, rs.Status)
	assert.Equal(t, "http://www.ics.uci.edu/users/f/fielding/index.html", rs.Header.Get("Location"))
	req := tp.last()
	assert.Equal(t, "MOVE", req.Method)
	assert.Equal(t, "http://www.ics.uci.edu/~fielding/index.html", req.URL)
	assert.Equal(t, "http://www.ics.uci.edu/users/f/fielding/index.html", req.Header.Get("Destination"))
	assert.Equal(t, "T", req.Header.Get("Overwrite"))
	assert.Empty(t, req.Header.Values("Depth"))
}

func TestMoveLockedCollection(t *testing.T) {
	tp := respond(207, fixture(t, "move-locked-collection.xml"))
	cli := newTestClient(t, "http://www.foo.bar", tp)
	rs, err := cli.Move(context.Background(), "/container/", "/othercontainer/",
		WithRecursive(true),
		WithOverwrite(false),
		WithLockTokens("opaquelocktoken:fe184f2e-6eec-41d0-c765-01adc56e6bb4", "opaquelocktoken:e454f3f3-acdc-452a-56c7-00a5c91e4b77"))
	require.NoError(t, err)
	assert.False(t, rs.Succeeded)
	assert.Equal(t, 207, rs.Status)
	req := tp.last()
	assert.Equal(t, "http://www.foo.bar/container/", req.URL)
	assert.Equal(t, "F", req.Header.Get("Overwrite"))
	assert.Equal(t, "http://www.foo.bar/othercontainer/", req.Header.Get("Destination"))
	assert.Equal(t, "(<opaquelocktoken:fe184f2e-6eec-41d0-c765-01adc56e6bb4>) (<opaquelocktoken:e454f3f3-acdc-452a-56c7-00a5c91e4b77>)", req.Header.Get("If"))
}

func TestMoveBadResponses(t *testing.T) {
	checkBadResponses(t, []badResponse{
		{403, daverr.ClassClient, "the source and destination URIs are the same"},
		{409, daverr.ClassClient, "one or more parent collections are missing at the destination"},
		{412, daverr.ClassClient, "the destination resource already exists and overwrite is disabled"},
		{423, daverr.ClassClient, "the source or the destination resource was locked"},
		{502, daverr.ClassServer, "the destination server refused to accept the resource"},
	}, func(cli IClient) error {
		_, err := cli.Move(context.Background(), "/source", "/destination")
		return err
	})
}

func TestCopy(t *testing.T) {
	ctx := context.Background()
	tp := respond(204, nil)
	rs, err := newTestClient(t, "http://www.ics.uci.edu", tp).Copy(ctx, "/~fielding/index.html", "/users/f/fielding/index.html")
	require.NoError(t, err)
	assert.True(t, rs.Succeeded)
	assert.Equal(t, 204, rs.Status)
	assert.Equal(t, "COPY", tp.last().Method)
	assert.Equal(t, "http://www.ics.uci.edu/users/f/fielding/index.html", tp.last().Header.Get("Destination"))
	assert.Equal(t, "0", tp.last().Header.Get("Depth"))
	assert.Equal(t, "T", tp.last().Header.Get("Overwrite"))

	tp = respond(412, nil)
	rs, err = newTestClient(t, "http://www.ics.uci.edu", tp).Copy(ctx, "/~fielding/index.html", "/users/f/fielding/index.html", WithOverwrite(false))
	require.NoError(t, err)
	assert.False(t, rs.Succeeded)
	assert.Equal(t, 412, rs.Status)
	assert.Equal(t, "F", tp.last().Header.Get("Overwrite"))
	assert.Equal(t, "0", tp.last().Header.Get("Depth"))

	tp = respond(207, fixture(t, "copy-collection.xml"))
	rs, err = newTestClient(t, "http://www.example.com", tp).Copy(ctx, "/container/", "/othercontainer/", WithRecursive(true))
	require.NoError(t, err)
	assert.False(t, rs.Succeeded)
	assert.Equal(t, 207, rs.Status)
	assert.Equal(t, "Infinity", tp.last().Header.Get("Depth"))
	entry, ok := rs.Value.Find("/othercontainer/R2/")
	require.True(t, ok)
	assert.Equal(t, 423, entry.Status.Code)
}

func TestCopyBadResponses(t *testing.T) {
	checkBadResponses(t, []badResponse{
		{403, daverr.ClassClient, "the source and destination URIs are the same"},
		{409, daverr.ClassClient, "one or more parent collections are missing at the destination"},
		{412, daverr.ClassClient, "the destination resource already exists and overwrite is disabled"},
		{423, daverr.ClassClient, "the destination resource was locked"},
		{502, daverr.ClassServer, "the destination server refused to accept the resource"},
		{507, daverr.ClassServer, "the destination does not have enough space to record the resource"},
	}, func(cli IClient) error {
		_, err := cli.Copy(context.Background(), "/container", "/othercontainer")
		return err
	})
}

func TestPropfindNamedProperties(t *testing.T) {
	tp := respond(207, fixture(t, "propfind-named-props.xml"))
	cli := newTestClient(t, "http://www.foo.bar", tp)
	require.NoError(t, cli.Namespaces().Register("http://www.foo.bar/boxschema/", "R"))
	rs, err := cli.Propfind(context.Background(), "/file", []string{"R:bigbox", "R:author", "R:DingALing", "R:Random"})
	require.NoError(t, err)
	assert.True(t, rs.Succeeded)
	assert.Equal(t, 207, rs.Status)
	require.NotNil(t, rs.Value)

	req := tp.last()
	assert.Equal(t, "PROPFIND", req.Method)
	assert.Equal(t, "http://www.foo.bar/file", req.URL)
	assert.Equal(t, `text/xml; charset="utf-8"`, req.Header.Get("Content-Type"))
	assert.Equal(t, "0", req.Header.Get("Depth"))
	assert.Contains(t, string(req.Body), `<D:propfind xmlns:D="DAV:"><D:prop xmlns:R="http://www.foo.bar/boxschema/"><R:bigbox/><R:author/><R:DingALing/><R:Random/></D:prop></D:propfind>`)

	entry, ok := rs.Value.Find("/file")
	require.True(t, ok)
	assert.False(t, entry.Succeeded())
	denied, ok := entry.Property(xml.Name{Space: "http://www.foo.bar/boxschema/", Local: "DingALing"})
	require.True(t, ok)
	assert.Equal(t, 403, denied.Status.Code)
	assert.Equal(t, "The user does not have access to the DingALing property.", denied.Description)
	assert.Equal(t, "There has been an access violation error.", rs.Value.Description)
}

func TestPropfindAllprop(t *testing.T) {
	tp := respond(207, fixture(t, "propfind-allprop.xml"))
	cli := newTestClient(t, "http://www.foo.bar", tp)
	rs, err := cli.Propfind(context.Background(), "/container/", nil, WithDepth(lock.DepthOne))
	require.NoError(t, err)
	assert.True(t, rs.Succeeded)
	assert.Equal(t, 207, rs.Status)
	assert.Equal(t, 2, rs.Value.Len())
	req := tp.last()
	assert.Equal(t, "1", req.Header.Get("Depth"))
	assert.Contains(t, string(req.Body), `<D:propfind xmlns:D="DAV:"><D:allprop/></D:propfind>`)

	file, ok := rs.Value.Find("http://www.foo.bar/container/front.html")
	require.True(t, ok)
	etag, ok := file.Property(xml.Name{Space: "DAV:", Local: "getetag"})
	require.True(t, ok)
	assert.Equal(t, "zzyzx", etag.Value)
}

func TestPropfindDecodeError(t *testing.T) {
	for _, policy := range []ErrorPolicy{PolicyReturn, PolicyRaise} {
		for _, status := range []int{207, 200} {
			cli := newTestClient(t, "http://www.foo.bar", respond(status, []byte("<not-xml")), WithErrorPolicy(policy))
			_, err := cli.Propfind(context.Background(), "/file", nil)
			var derr *daverr.DecodeError
			require.True(t, errors.As(err, &derr), "status:%d", status)
			assert.Equal(t, status, derr.Status)
			assert.ErrorIs(t, err, davxml.ErrMalformed)
		}
	}
}

func TestPropfindPlainOK(t *testing.T) {
	cli := newTestClient(t, "http://www.foo.bar", respond(200, fixture(t, "propfind-allprop.xml")))
	rs, err := cli.Propfind(context.Background(), "/container/", nil)
	require.NoError(t, err)
	assert.True(t, rs.Succeeded)
	assert.Equal(t, 2, rs.Value.Len())
}

func TestPropfindUnknownPrefix(t *testing.T) {
	tp := respond(207, nil)
	cli := newTestClient(t, "http://www.foo.bar", tp)
	_, err := cli.Propfind(context.Background(), "/file", []string{"Q:bigbox"})
	assert.Error(t, err)
	assert.Len(t, tp.reqs, 0)
}

func TestPropfindForbidden(t *testing.T) {
	cli := newTestClient(t, "http://www.foo.bar", respond(403, nil), WithErrorPolicy(PolicyRaise))
	_, err := cli.Propfind(context.Background(), "/", nil, WithDepth(lock.DepthInfinity))
	var perr *daverr.ProtocolError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, "the server does not accept requests with depth infinity", perr.Description)
}

func TestProppatch(t *testing.T) {
	ctx := context.Background()
	authors := xml.Name{Space: "http://www.w3.com/standards/z39.50", Local: "Authors"}
	owner := xml.Name{Space: "http://www.w3.com/standards/z39.50", Local: "Copyright-Owner"}
	ins := []davxml.PatchInstruction{
		davxml.SetProps(davxml.Property{Name: authors, Value: "Jim Whitehead"}),
		davxml.RemoveProps(owner),
	}
	tp := respond(207, fixture(t, "proppatch-failed.xml"))
	cli := newTestClient(t, "http://www.foo.com", tp, WithNamespace("http://www.w3.com/standards/z39.50", "Z"))
	rs, err := cli.Proppatch(ctx, "/bar.html", ins)
	require.NoError(t, err)
	assert.False(t, rs.Succeeded)
	assert.Equal(t, 207, rs.Status)
	req := tp.last()
	assert.Equal(t, "PROPPATCH", req.Method)
	assert.Equal(t, `text/xml; charset="utf-8"`, req.Header.Get("Content-Type"))
	assert.Contains(t, string(req.Body), `<D:set><D:prop xmlns:Z="http://www.w3.com/standards/z39.50"><Z:Authors>Jim Whitehead</Z:Authors></D:prop></D:set>`)
	assert.Contains(t, string(req.Body), `<D:remove><D:prop xmlns:Z="http://www.w3.com/standards/z39.50"><Z:Copyright-Owner/></D:prop></D:remove>`)

	_, err = cli.WithPolicy(PolicyRaise).Proppatch(ctx, "/bar.html", ins)
	var pf *daverr.PartialFailure
	require.True(t, errors.As(err, &pf))
	assert.Contains(t, err.Error(), "Copyright-Owner")

	rs, err = newTestClient(t, "http://www.foo.com", respond(200, nil)).Proppatch(ctx, "/bar.html", ins, WithLockTokens("t1"))
	require.NoError(t, err)
	assert.True(t, rs.Succeeded)

	_, err = cli.Proppatch(ctx, "/bar.html", nil)
	assert.Error(t, err)
}

func TestSimpleLockRequest(t *testing.T) {
	tp := respond(200, fixture(t, "simple-lock.xml"))
	cli := newTestClient(t, "http://webdav.sb.aol.com", tp)
	rs, err := cli.CreateLock(context.Background(), "/workspace/webdav/proposal.doc",
		WithLockScope(lock.ScopeExclusive),
		WithLockOwner("http://www.ics.uci.edu/~ejw/contact.html"),
		WithLockTimeout(4100000000))
	require.NoError(t, err)
	require.True(t, rs.Succeeded)
	l := rs.Value
	require.NotNil(t, l)
	assert.True(t, l.IsExclusive())
	assert.Equal(t, "http://www.ics.uci.edu/~ejw/contact.html", l.Owner())
	assert.Equal(t, "opaquelocktoken:e71d4fae-5dec-22d6-fea5-00a0c91e6be4", l.Token())
	assert.Equal(t, int64(604800), l.Timeout())
	assert.True(t, l.IsDeep())
	assert.Equal(t, "/workspace/webdav/proposal.doc", l.Path())

	req := tp.last()
	assert.Equal(t, "LOCK", req.Method)
	assert.Equal(t, "http://webdav.sb.aol.com/workspace/webdav/proposal.doc", req.URL)
	assert.Equal(t, "0", req.Header.Get("Depth"))
	assert.Equal(t, "Second-4100000000", req.Header.Get("Timeout"))
	assert.Contains(t, string(req.Body), `<D:lockinfo xmlns:D="DAV:"><D:lockscope><D:exclusive/></D:lockscope><D:locktype><D:write/></D:locktype><D:owner><D:href>http://www.ics.uci.edu/~ejw/contact.html</D:href></D:owner></D:lockinfo>`)
}

func TestLockTokenFromHeader(t *testing.T) {
	body := fixture(t, "refreshing-write-lock.xml")
	cli := newTestClient(t, "http://webdav.sb.aol.com", respond(201, body, "Lock-Token", "<opaquelocktoken:from-header>"))
	rs, err := cli.CreateLock(context.Background(), "/new.doc")
	require.NoError(t, err)
	assert.Equal(t, "opaquelocktoken:from-header", rs.Value.Token())

	cli = newTestClient(t, "http://webdav.sb.aol.com", respond(200, body))
	_, err = cli.CreateLock(context.Background(), "/new.doc")
	var derr *daverr.DecodeError
	assert.True(t, errors.As(err, &derr))
}

func TestRefreshingWriteLock(t *testing.T) {
	tp := respond(200, fixture(t, "refreshing-write-lock.xml"))
	cli := newTestClient(t, "http://webdav.sb.aol.com", tp)
	rs, err := cli.RefreshLock(context.Background(), "/workspace/webdav/proposal.doc", "opaquelocktoken:e71d4fae-5dec-22d6-fea5-00a0c91e6be4", 4100000000)
	require.NoError(t, err)
	require.True(t, rs.Succeeded)
	assert.Equal(t, "opaquelocktoken:e71d4fae-5dec-22d6-fea5-00a0c91e6be4", rs.Value.Token())
	assert.Equal(t, int64(604800), rs.Value.Timeout())
	assert.True(t, rs.Value.IsDeep())

	req := tp.last()
	assert.Equal(t, "LOCK", req.Method)
	assert.Equal(t, "http://webdav.sb.aol.com/workspace/webdav/proposal.doc", req.URL)
	assert.Equal(t, "Second-4100000000", req.Header.Get("Timeout"))
	assert.Equal(t, "(<opaquelocktoken:e71d4fae-5dec-22d6-fea5-00a0c91e6be4>)", req.Header.Get("If"))
	assert.Nil(t, req.Body)
}

func TestMultiResourceLockRequest(t *testing.T) {
	for _, policy := range []ErrorPolicy{PolicyReturn, PolicyRaise} {
		cli := newTestClient(t, "http://webdav.sb.aol.com", respond(207, fixture(t, "multi-resource-lock.xml")), WithErrorPolicy(policy))
		rs, err := cli.CreateLock(context.Background(), "/webdav/",
			WithLockOwner("http://www.ics.uci.edu/~ejw/contact.html"),
			WithLockTimeout(4100000000))
		assert.Nil(t, rs)
		var aerr *daverr.AmbiguousLockError
		require.True(t, errors.As(err, &aerr))
		assert.Equal(t, "/webdav/", aerr.Path)
		assert.Equal(t, 2, aerr.MultiStatus.Len())
	}
}

func TestAmbiguousLockDiscovery(t *testing.T) {
	al := `<D:activelock><D:lockscope><D:shared/></D:lockscope><D:locktype><D:write/></D:locktype>` +
		`<D:locktoken><D:href>opaquelocktoken:x</D:href></D:locktoken></D:activelock>`
	body := `<D:prop xmlns:D="DAV:"><D:lockdiscovery>` + al + al + `</D:lockdiscovery></D:prop>`
	cli := newTestClient(t, "http://webdav.sb.aol.com", respond(200, []byte(body)))
	_, err := cli.CreateLock(context.Background(), "/doc", WithLockScope(lock.ScopeShared))
	var aerr *daverr.AmbiguousLockError
	require.True(t, errors.As(err, &aerr))
	assert.Equal(t, 2, aerr.Count)
}

func TestLockLockedResource(t *testing.T) {
	cli := newTestClient(t, "http://www.foo.bar", respond(423, nil))
	rs, err := cli.CreateLock(context.Background(), "/resource")
	require.NoError(t, err)
	assert.False(t, rs.Succeeded)
	assert.Nil(t, rs.Value)
	assert.Equal(t, 423, rs.Status)

	_, err = cli.WithPolicy(PolicyRaise).CreateLock(context.Background(), "/resource")
	assert.True(t, daverr.IsClientError(err))
	var perr *daverr.ProtocolError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, "the resource is already locked", perr.Description)
	assert.Equal(t, daverr.ClassClient, perr.Class())
}

func TestLockBadResponses(t *testing.T) {
	checkBadResponses(t, []badResponse{
		{412, daverr.ClassClient, "the lock token could not be enforced"},
		{423, daverr.ClassClient, "the resource is already locked"},
	}, func(cli IClient) error {
		_, err := cli.CreateLock(context.Background(), "/resource")
		return err
	})
}

func TestUnlock(t *testing.T) {
	tp := respond(204, nil)
	cli := newTestClient(t, "http://webdav.sb.aol.com", tp)
	rs, err := cli.ReleaseLock(context.Background(), "/workspace/webdav/info.doc", "opaquelocktoken:a515cfa4-5da4-22e1-f5b5-00a0451e6bf7")
	require.NoError(t, err)
	assert.True(t, rs.Succeeded)
	assert.Equal(t, 204, rs.Status)
	req := tp.last()
	assert.Equal(t, "UNLOCK", req.Method)
	assert.Equal(t, "http://webdav.sb.aol.com/workspace/webdav/info.doc", req.URL)
	assert.Equal(t, "<opaquelocktoken:a515cfa4-5da4-22e1-f5b5-00a0451e6bf7>", req.Header.Get("Lock-Token"))
}

func TestUnlockBadResponses(t *testing.T) {
	checkBadResponses(t, []badResponse{
		{400, daverr.ClassClient, "no lock token was provided"},
		{403, daverr.ClassClient, "the lock is not owned by the requester"},
		{409, daverr.ClassClient, "the resource is not locked by the submitted token"},
	}, func(cli IClient) error {
		_, err := cli.ReleaseLock(context.Background(), "/resource", "opaquelocktoken:x")
		return err
	})
}

func TestTransportFailurePropagates(t *testing.T) {
	cause := &transport.Error{Method: "GET", URL: "http://www.foo.bar/a", Err: errors.New("connection refused")}
	for _, policy := range []ErrorPolicy{PolicyReturn, PolicyRaise} {
		tp := &fakeTransport{err: cause}
		cli := newTestClient(t, "http://www.foo.bar", tp, WithErrorPolicy(policy))
		_, err := cli.Get(context.Background(), "/a")
		assert.Same(t, cause, err)
		_, err = cli.Exists(context.Background(), "/a")
		assert.Same(t, cause, err)
		_, err = cli.CreateLock(context.Background(), "/a")
		assert.Same(t, cause, err)
	}
}

func TestWithPolicyLeavesOriginal(t *testing.T) {
	cli := newTestClient(t, "http://www.foo.bar", respond(409, nil))
	raising := cli.WithPolicy(PolicyRaise)
	_, err := raising.Mkcol(context.Background(), "/a/b")
	assert.Error(t, err)
	rs, err := cli.Mkcol(context.Background(), "/a/b")
	assert.NoError(t, err)
	assert.False(t, rs.Succeeded)
	assert.Same(t, cli.Namespaces(), raising.Namespaces())
}

func TestNonErrorStatus(t *testing.T) {
	cli := newTestClient(t, "http://www.foo.bar", respond(302, nil, "Location", "/elsewhere"), WithErrorPolicy(PolicyRaise))
	rs, err := cli.Delete(context.Background(), "/a")
	require.NoError(t, err)
	assert.False(t, rs.Succeeded)
	assert.Equal(t, 302, rs.Status)
	assert.Equal(t, "/elsewhere", rs.Header.Get("Location"))
}
