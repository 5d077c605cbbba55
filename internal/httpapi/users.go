package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pizzadelivery/internal/identity"
)

// userResponse is a user record without the password hash; the hash never
// leaves the process.
type userResponse struct {
	Name   string   `json:"name"`
	Email  string   `json:"email"`
	Street string   `json:"street"`
	Orders []string `json:"orders,omitempty"`
	Carts  []string `json:"shopingCart,omitempty"`
}

func toUserResponse(u identity.User) userResponse {
	return userResponse{
		Name:   u.Name,
		Email:  u.Email,
		Street: u.Street,
		Orders: u.Orders,
		Carts:  u.Carts,
	}
}

func (s *Server) createUser(c *gin.Context) {
	var input struct {
		Name     string `json:"name" binding:"required"`
		Email    string `json:"email" binding:"required,email"`
		Street   string `json:"street" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing required fields", "code": "INVALID_INPUT"})
		return
	}

	u, err := s.users.Register(input.Name, input.Email, input.Street, input.Password)
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, toUserResponse(u))
}

func (s *Server) getUser(c *gin.Context) {
	email := c.Query("email")
	if email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing required fields", "code": "INVALID_INPUT"})
		return
	}

	if err := s.users.VerifyToken(bearer(c), email); err != nil {
		s.fail(c, err)
		return
	}

	u, err := s.users.Get(email)
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, toUserResponse(u))
}

func (s *Server) updateUser(c *gin.Context) {
	var input struct {
		Email    string `json:"email" binding:"required"`
		Name     string `json:"name"`
		Street   string `json:"street"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing required fields", "code": "INVALID_INPUT"})
		return
	}

	if err := s.users.VerifyToken(bearer(c), input.Email); err != nil {
		s.fail(c, err)
		return
	}

	u, err := s.users.UpdateProfile(input.Email, identity.ProfileUpdate{
		Name:     input.Name,
		Street:   input.Street,
		Password: input.Password,
	})
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, toUserResponse(u))
}

func (s *Server) deleteUser(c *gin.Context) {
	email := c.Query("email")
	if email == "" {
		// The original clients sent the email in the body on delete;
		// both spellings stay accepted.
		var input struct {
			Email string `json:"email"`
		}
		if err := c.ShouldBindJSON(&input); err == nil {
			email = input.Email
		}
	}
	if email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing required fields", "code": "INVALID_INPUT"})
		return
	}

	if err := s.users.VerifyToken(bearer(c), email); err != nil {
		s.fail(c, err)
		return
	}

	if err := s.users.Delete(email); err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "user deleted"})
}

func (s *Server) listUserOrders(c *gin.Context) {
	email := c.Query("email")
	if email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing required fields", "code": "INVALID_INPUT"})
		return
	}

	if err := s.users.VerifyToken(bearer(c), email); err != nil {
		s.fail(c, err)
		return
	}

	summaries, err := s.orders.History(c.Request.Context(), email)
	if err != nil {
		s.fail(c, err)
		return
	}

	if len(summaries) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "no orders yet", "code": "NOT_FOUND"})
		return
	}

	c.JSON(http.StatusOK, summaries)
}
