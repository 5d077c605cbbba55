package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pizzadelivery/internal/cart"
)

func (s *Server) createCart(c *gin.Context) {
	var input struct {
		Email string      `json:"email" binding:"required"`
		List  []cart.Line `json:"list" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing required fields", "code": "INVALID_INPUT"})
		return
	}

	if err := s.users.VerifyToken(bearer(c), input.Email); err != nil {
		s.fail(c, err)
		return
	}

	created, err := s.carts.Create(input.Email, input.List)
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, created)
}

// getCart verifies ownership against the cart's own stored email, not a
// caller-supplied one.
func (s *Server) getCart(c *gin.Context) {
	id := c.Query("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing required fields", "code": "INVALID_INPUT"})
		return
	}

	loaded, err := s.carts.Get(id)
	if err != nil {
		s.fail(c, err)
		return
	}

	if err := s.users.VerifyToken(bearer(c), loaded.Email); err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, loaded)
}

func (s *Server) updateCart(c *gin.Context) {
	var input struct {
		ID   string      `json:"id" binding:"required"`
		List []cart.Line `json:"list" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing required fields", "code": "INVALID_INPUT"})
		return
	}

	loaded, err := s.carts.Get(input.ID)
	if err != nil {
		s.fail(c, err)
		return
	}

	if err := s.users.VerifyToken(bearer(c), loaded.Email); err != nil {
		s.fail(c, err)
		return
	}

	updated, err := s.carts.Replace(input.ID, input.List)
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, updated)
}

func (s *Server) deleteCart(c *gin.Context) {
	id := c.Query("id")
	if id == "" {
		var input struct {
			ID string `json:"id"`
		}
		if err := c.ShouldBindJSON(&input); err == nil {
			id = input.ID
		}
	}
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing required fields", "code": "INVALID_INPUT"})
		return
	}

	loaded, err := s.carts.Get(id)
	if err != nil {
		s.fail(c, err)
		return
	}

	if err := s.users.VerifyToken(bearer(c), loaded.Email); err != nil {
		s.fail(c, err)
		return
	}

	if err := s.carts.Delete(id); err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "cart deleted"})
}
