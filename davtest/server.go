package davtest

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.ReleaseMode)
}

// Reply is a canned answer for one request.
type Reply struct {
	Status int
	Header map[string]string
	Body   string
}

// Record is a request as received by the server.
type Record struct {
	Method string
	Path   string
	Header http.Header
	Body   []byte
}

// Server is a WebDAV test double. Scripted replies are served first, in the
// order they were queued. Without a script OPTIONS, PROPFIND, LOCK and UNLOCK
// get a minimal built-in behavior and everything else gets 404.
type Server struct {
	c       *config
	srv     *httptest.Server
	mu      sync.Mutex
	replies map[string][]Reply
	records []*Record
	locks   map[string]*grant
	entries map[string]Entry
}

func New(opts ...Option) *Server {
	s := &Server{
		c:       applyOpts(opts...),
		replies: make(map[string][]Reply),
		locks:   make(map[string]*grant),
		entries: make(map[string]Entry),
	}
	engine := gin.New()
	engine.Use(s.authMiddleware())
	for _, m := range AllowMethods {
		engine.Handle(m, "/*path", s.handle)
	}
	engine.NoRoute(s.handle)
	s.srv = httptest.NewServer(engine)
	return s
}

func (s *Server) URL() string {
	return s.srv.URL
}

func (s *Server) Client() *http.Client {
	return s.srv.Client()
}

func (s *Server) Close() {
	s.srv.Close()
}

func replyKey(method string, path string) string {
	return strings.ToUpper(method) + " " + path
}

// Script queues replies for method on path.
func (s *Server) Script(method string, path string, replies ...Reply) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := replyKey(method, path)
	s.replies[key] = append(s.replies[key], replies...)
}

// Records returns the requests received so far.
func (s *Server) Records() []*Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	rs := make([]*Record, len(s.records))
	copy(rs, s.records)
	return rs
}

func (s *Server) Last() *Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.records) == 0 {
		return nil
	}
	return s.records[len(s.records)-1]
}

func (s *Server) next(method string, path string) (Reply, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := replyKey(method, path)
	queue := s.replies[key]
	if len(queue) == 0 {
		return Reply{}, false
	}
	s.replies[key] = queue[1:]
	return queue[0], true
}

func (s *Server) record(c *gin.Context) (*Record, error) {
	raw, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return nil, err
	}
	rec := &Record{
		Method: c.Request.Method,
		Path:   c.Request.URL.Path,
		Header: c.Request.Header.Clone(),
		Body:   raw,
	}
	s.mu.Lock()
	s.records = append(s.records, rec)
	s.mu.Unlock()
	return rec, nil
}

func (s *Server) handle(c *gin.Context) {
	ctx := c.Request.Context()
	rec, err := s.record(c)
	if err != nil {
		logutil.GetLogger(ctx).Error("read request body failed", zap.Error(err))
		c.AbortWithStatus(http.StatusBadRequest)
		return
	}
	if rp, ok := s.next(rec.Method, rec.Path); ok {
		writeReply(c, rp)
		return
	}
	switch rec.Method {
	case http.MethodOptions:
		s.handleOption(c)
	case "PROPFIND":
		s.handlePropfind(c, rec)
	case "LOCK":
		s.handleLock(c, rec)
	case "UNLOCK":
		s.handleUnlock(c, rec)
	default:
		logutil.GetLogger(ctx).Debug("no scripted reply", zap.String("method", rec.Method), zap.String("path", rec.Path))
		c.AbortWithStatus(http.StatusNotFound)
	}
}

func writeReply(c *gin.Context, rp Reply) {
	for k, v := range rp.Header {
		c.Writer.Header().Set(k, v)
	}
	status := rp.Status
	if status == 0 {
		status = http.StatusOK
	}
	if len(rp.Body) == 0 {
		c.Status(status)
		return
	}
	ct := c.Writer.Header().Get("Content-Type")
	if len(ct) == 0 {
		ct = `text/xml; charset="utf-8"`
	}
	c.Data(status, ct, []byte(rp.Body))
}
