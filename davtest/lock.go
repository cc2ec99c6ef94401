package davtest

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/xxxsen/common/logutil"
	"github.com/xxxsen/davc/davxml"
	"github.com/xxxsen/davc/lock"
	"go.uber.org/zap"
)

type grant struct {
	token   string
	path    string
	owner   string
	shared  bool
	depth   string
	timeout string
}

type lockInfo struct {
	XMLName   xml.Name `xml:"DAV: lockinfo"`
	LockScope struct {
		Exclusive *struct{} `xml:"DAV: exclusive"`
		Shared    *struct{} `xml:"DAV: shared"`
	} `xml:"DAV: lockscope"`
	Owner *davxml.Owner `xml:"DAV: owner"`
}

// Locks returns the tokens currently granted, keyed by token.
func (s *Server) Locks() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	rs := make(map[string]string, len(s.locks))
	for token, g := range s.locks {
		rs[token] = g.path
	}
	return rs
}

func (s *Server) handleLock(c *gin.Context, rec *Record) {
	ctx := c.Request.Context()
	if len(bytes.TrimSpace(rec.Body)) == 0 {
		s.handleRefresh(c, rec)
		return
	}
	info := &lockInfo{}
	if err := xml.Unmarshal(rec.Body, info); err != nil {
		logutil.GetLogger(ctx).Error("decode lockinfo failed", zap.Error(err))
		c.AbortWithStatus(http.StatusBadRequest)
		return
	}
	g := &grant{
		token:   lock.NewToken(),
		path:    rec.Path,
		owner:   info.Owner.Value(),
		shared:  info.LockScope.Shared != nil,
		depth:   headerOr(rec.Header, "Depth", "Infinity"),
		timeout: headerOr(rec.Header, "Timeout", "Infinite"),
	}
	s.mu.Lock()
	for _, held := range s.locks {
		if held.path == g.path && !(held.shared && g.shared) {
			s.mu.Unlock()
			c.AbortWithStatus(http.StatusLocked)
			return
		}
	}
	s.locks[g.token] = g
	body := g.discovery()
	s.mu.Unlock()
	logutil.GetLogger(ctx).Debug("lock granted", zap.String("path", g.path), zap.String("token", g.token))
	c.Writer.Header().Set("Lock-Token", lock.LockTokenHeader(g.token))
	c.Data(http.StatusOK, davxml.ContentType, body)
}

func (s *Server) handleRefresh(c *gin.Context, rec *Record) {
	token := ifToken(rec.Header.Get("If"))
	s.mu.Lock()
	var body []byte
	g, ok := s.locks[token]
	if ok {
		g.timeout = headerOr(rec.Header, "Timeout", g.timeout)
		body = g.discovery()
	}
	s.mu.Unlock()
	if !ok {
		c.AbortWithStatus(http.StatusPreconditionFailed)
		return
	}
	c.Data(http.StatusOK, davxml.ContentType, body)
}

func (s *Server) handleUnlock(c *gin.Context, rec *Record) {
	raw := rec.Header.Get("Lock-Token")
	if len(raw) == 0 {
		c.AbortWithStatus(http.StatusBadRequest)
		return
	}
	token := lock.ParseLockTokenHeader(raw)
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.locks[token]
	if !ok || g.path != rec.Path {
		c.AbortWithStatus(http.StatusConflict)
		return
	}
	delete(s.locks, token)
	c.Status(http.StatusNoContent)
}

func (g *grant) discovery() []byte {
	scope := "exclusive"
	if g.shared {
		scope = "shared"
	}
	buf := &bytes.Buffer{}
	buf.WriteString(`<?xml version="1.0" encoding="utf-8"?><D:prop xmlns:D="DAV:"><D:lockdiscovery><D:activelock>`)
	fmt.Fprintf(buf, `<D:locktype><D:write/></D:locktype><D:lockscope><D:%s/></D:lockscope>`, scope)
	fmt.Fprintf(buf, `<D:depth>%s</D:depth>`, escape(g.depth))
	if len(g.owner) > 0 {
		fmt.Fprintf(buf, `<D:owner><D:href>%s</D:href></D:owner>`, escape(g.owner))
	}
	fmt.Fprintf(buf, `<D:timeout>%s</D:timeout>`, escape(g.timeout))
	fmt.Fprintf(buf, `<D:locktoken><D:href>%s</D:href></D:locktoken>`, escape(g.token))
	fmt.Fprintf(buf, `<D:lockroot><D:href>%s</D:href></D:lockroot>`, escape(g.path))
	buf.WriteString(`</D:activelock></D:lockdiscovery></D:prop>`)
	return buf.Bytes()
}

// ifToken returns the first token of a "(<token>)" list.
func ifToken(v string) string {
	start := strings.Index(v, "<")
	end := strings.Index(v, ">")
	if start < 0 || end < start {
		return ""
	}
	return v[start+1 : end]
}

func headerOr(h http.Header, k string, def string) string {
	if v := h.Get(k); len(v) > 0 {
		return v
	}
	return def
}

func escape(s string) string {
	sb := &strings.Builder{}
	_ = xml.EscapeText(sb, []byte(s))
	return sb.String()
}
