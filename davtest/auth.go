package davtest

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) authMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if len(s.c.users) == 0 {
			return
		}
		user, pass, ok := c.Request.BasicAuth()
		if ok {
			if sk, exist := s.c.users[user]; exist && sk == pass {
				return
			}
		}
		c.Header("WWW-Authenticate", `Basic realm="Restricted Area"`)
		c.AbortWithStatus(http.StatusUnauthorized)
	}
}
