package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) createToken(c *gin.Context) {
	var input struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing required fields", "code": "INVALID_INPUT"})
		return
	}

	tok, err := s.users.IssueToken(input.Email, input.Password)
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, tok)
}

func (s *Server) getToken(c *gin.Context) {
	id := c.Query("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing required fields", "code": "INVALID_INPUT"})
		return
	}

	tok, err := s.users.GetToken(id, bearer(c))
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, tok)
}

func (s *Server) extendToken(c *gin.Context) {
	var input struct {
		ID     string `json:"id" binding:"required"`
		Extend bool   `json:"extend"`
	}
	if err := c.ShouldBindJSON(&input); err != nil || !input.Extend {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing required fields", "code": "INVALID_INPUT"})
		return
	}

	tok, err := s.users.ExtendToken(input.ID, bearer(c))
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, tok)
}

func (s *Server) revokeToken(c *gin.Context) {
	id := c.Query("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing required fields", "code": "INVALID_INPUT"})
		return
	}

	if err := s.users.RevokeToken(id, bearer(c)); err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "token revoked"})
}
