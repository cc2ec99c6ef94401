package davtest

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

var AllowMethods = []string{
	http.MethodOptions,
	http.MethodGet,
	http.MethodHead,
	http.MethodPut,
	http.MethodDelete,
	"PROPFIND",
	"PROPPATCH",
	"MKCOL",
	"COPY",
	"MOVE",
	"LOCK",
	"UNLOCK",
}

func (s *Server) handleOption(c *gin.Context) {
	c.Writer.Header().Set("Allow", strings.Join(s.c.allow, ", "))
	c.Writer.Header().Set("DAV", strings.Join(s.c.classes, ", "))
	c.Status(http.StatusOK)
}
