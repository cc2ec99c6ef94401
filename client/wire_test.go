package client

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xxxsen/davc/daverr"
	"github.com/xxxsen/davc/davtest"
	"github.com/xxxsen/davc/lock"
)

func TestWireDefaultHeaders(t *testing.T) {
	s := davtest.New()
	defer s.Close()
	s.Script("PUT", "/root/a.txt", davtest.Reply{Status: 201})
	cli, err := New(s.URL()+"/root/", WithBasicAuth("Aladdin", "open sesame"), WithUserAgent("tester/1"), WithHeader("X-Trace", "abc"))
	require.NoError(t, err)
	rs, err := cli.Put(context.Background(), "a.txt", []byte("data"), WithContentType("text/plain"))
	require.NoError(t, err)
	assert.True(t, rs.Succeeded)
	assert.Equal(t, 201, rs.Status)

	last := s.Last()
	assert.Equal(t, "/root/a.txt", last.Path)
	assert.Equal(t, "Basic QWxhZGRpbjpvcGVuIHNlc2FtZQ==", last.Header.Get("Authorization"))
	assert.Equal(t, "tester/1", last.Header.Get("User-Agent"))
	assert.Equal(t, "abc", last.Header.Get("X-Trace"))
	assert.Equal(t, "text/plain", last.Header.Get("Content-Type"))
	assert.Equal(t, "data", string(last.Body))
}

func TestWireLockLifecycle(t *testing.T) {
	s := davtest.New()
	defer s.Close()
	cli, err := New(s.URL())
	require.NoError(t, err)
	ctx := context.Background()

	rs, err := cli.CreateLock(ctx, "/doc", WithLockOwner("http://example.org/~me"), WithLockTimeout(3600))
	require.NoError(t, err)
	require.True(t, rs.Succeeded)
	l := rs.Value
	id, ok := l.UUID()
	require.True(t, ok)
	assert.Equal(t, "opaquelocktoken:"+id.String(), l.Token())
	assert.Equal(t, "/doc", l.Path())
	assert.Equal(t, "http://example.org/~me", l.Owner())
	assert.Equal(t, int64(3600), l.Timeout())
	assert.Equal(t, lock.DepthZero, l.Depth())
	assert.Equal(t, "Second-3600", s.Last().Header.Get("Timeout"))

	_, err = cli.WithPolicy(PolicyRaise).CreateLock(ctx, "/doc")
	var perr *daverr.ProtocolError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, 423, perr.Status)

	rs, err = cli.RefreshLock(ctx, "/doc", l.Token(), 120)
	require.NoError(t, err)
	assert.Equal(t, l.Token(), rs.Value.Token())
	assert.Equal(t, int64(120), rs.Value.Timeout())

	un, err := cli.ReleaseLock(ctx, "/doc", l.Token())
	require.NoError(t, err)
	assert.True(t, un.Succeeded)
	assert.Equal(t, "<"+l.Token()+">", s.Last().Header.Get("Lock-Token"))
	assert.Empty(t, s.Locks())

	un, err = cli.ReleaseLock(ctx, "/doc", l.Token())
	require.NoError(t, err)
	assert.False(t, un.Succeeded)
	assert.Equal(t, 409, un.Status)
}

func TestWireOptions(t *testing.T) {
	s := davtest.New(davtest.WithClasses("1"), davtest.WithAllowMethods("OPTIONS", "PROPFIND"))
	defer s.Close()
	cli, err := New(s.URL())
	require.NoError(t, err)
	cls, err := cli.ComplianceClasses(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"1"}, cls)
	ms, err := cli.SupportedMethods(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"OPTIONS", "PROPFIND"}, ms)
}

func TestWireAuthAndPropfind(t *testing.T) {
	s := davtest.New(davtest.WithUser("alice", "secret"))
	defer s.Close()
	s.AddEntry(
		davtest.Entry{Path: "/", IsDir: true},
		davtest.Entry{Path: "/a.txt", Size: 3},
	)
	ctx := context.Background()

	anon, err := New(s.URL(), WithErrorPolicy(PolicyRaise))
	require.NoError(t, err)
	_, err = anon.Propfind(ctx, "/", nil)
	var perr *daverr.ProtocolError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, 401, perr.Status)
	assert.True(t, daverr.IsClientError(err))

	cli, err := New(s.URL(), WithBasicAuth("alice", "secret"))
	require.NoError(t, err)
	rs, err := cli.Propfind(ctx, "/", []string{"D:getcontentlength"}, WithDepth(lock.DepthOne))
	require.NoError(t, err)
	require.True(t, rs.Succeeded)
	require.Equal(t, 2, rs.Value.Len())
	e, ok := rs.Value.Find(s.URL() + "/a.txt")
	require.True(t, ok)
	assert.Equal(t, "/a.txt", e.Href)
	ok, err = cli.Exists(ctx, "/missing")
	require.NoError(t, err)
	assert.False(t, ok)
}
