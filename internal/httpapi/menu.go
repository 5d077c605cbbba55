package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// getMenu returns the full catalog to any authenticated user; there is no
// per-item ownership.
func (s *Server) getMenu(c *gin.Context) {
	email := c.Query("email")
	if email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing required fields", "code": "INVALID_INPUT"})
		return
	}

	if err := s.users.VerifyToken(bearer(c), email); err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, s.menu.List())
}
