package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) placeOrder(c *gin.Context) {
	var input struct {
		ID string `json:"id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing required fields", "code": "INVALID_INPUT"})
		return
	}

	placed, err := s.orders.Place(c.Request.Context(), input.ID, bearer(c))
	if err != nil {
		ordersPlaced.WithLabelValues("error").Inc()
		s.fail(c, err)
		return
	}
	ordersPlaced.WithLabelValues("ok").Inc()

	c.JSON(http.StatusOK, gin.H{
		"message": "Receipt sent to your email",
		"order":   placed,
	})
}

// getOrder verifies ownership against the stored order's email.
func (s *Server) getOrder(c *gin.Context) {
	id := c.Query("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing required fields", "code": "INVALID_INPUT"})
		return
	}

	loaded, err := s.orders.Get(id)
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
