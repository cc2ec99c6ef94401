package davtest

import (
	"encoding/xml"
	"net/http"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xxxsen/common/logutil"
	"github.com/xxxsen/davc/davxml"
	"go.uber.org/zap"
)

// Entry is a resource served by the built-in PROPFIND handler.
type Entry struct {
	Path        string
	Size        int64
	ModTime     time.Time
	IsDir       bool
	ContentType string
}

func cleanPath(p string) string {
	return path.Clean("/" + p)
}

// AddEntry registers resources answered by PROPFIND when no reply is scripted.
func (s *Server) AddEntry(ents ...Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ent := range ents {
		ent.Path = cleanPath(ent.Path)
		s.entries[ent.Path] = ent
	}
}

func (s *Server) lookup(p string, depth string) (Entry, []Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	base, ok := s.entries[cleanPath(p)]
	if !ok {
		return Entry{}, nil, false
	}
	if !base.IsDir || depth == "0" {
		return base, nil, true
	}
	rs := make([]Entry, 0, 8)
	for _, ent := range s.entries {
		if ent.Path != base.Path && path.Dir(ent.Path) == base.Path {
			rs = append(rs, ent)
		}
	}
	sort.Slice(rs, func(i, j int) bool {
		if rs[i].IsDir != rs[j].IsDir {
			return rs[i].IsDir
		}
		return rs[i].Path < rs[j].Path
	})
	return base, rs, true
}

func (s *Server) handlePropfind(c *gin.Context, rec *Record) {
	ctx := c.Request.Context()
	base, children, ok := s.lookup(rec.Path, rec.Header.Get("Depth"))
	if !ok {
		c.AbortWithStatus(http.StatusNotFound)
		return
	}
	ms := &multistatus{XMLNS: davxml.NamespaceDAV}
	ms.Responses = append(ms.Responses, toResponse(base))
	for _, item := range children {
		ms.Responses = append(ms.Responses, toResponse(item))
	}
	raw, err := xml.Marshal(ms)
	if err != nil {
		logutil.GetLogger(ctx).Error("encode multistatus failed", zap.Error(err))
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}
	c.Data(http.StatusMultiStatus, davxml.ContentType, append([]byte(xml.Header), raw...))
}

func toResponse(ent Entry) *response {
	href := ent.Path
	if ent.IsDir && !strings.HasSuffix(href, "/") {
		href += "/"
	}
	rsp := &response{
		Href: href,
		Propstat: propstat{
			Prop: prop{
				DisplayName:  path.Base(ent.Path),
				LastModified: ent.ModTime.UTC().Format(http.TimeFormat),
			},
			Status: "HTTP/1.1 200 OK",
		},
	}
	if ent.IsDir {
		rsp.Propstat.Prop.ResourceType.Collection = &struct{}{}
		return rsp
	}
	rsp.Propstat.Prop.ContentLength = ent.Size
	rsp.Propstat.Prop.ContentType = ent.ContentType
	return rsp
}
