package server

import (
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	authdomain "github.com/smallbiznis/invoicedesk/internal/auth/domain"
	"github.com/smallbiznis/invoicedesk/internal/ratelimit"
	"go.uber.org/zap"
)

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type BootstrapRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

func (s *Server) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		AbortWithError(c, authdomain.ErrMissingCredentials)
		return
	}

	if err := s.allowLogin(c, email); err != nil {
		AbortWithError(c, err)
		return
	}

	result, err := s.authsvc.Login(c.Request.Context(), authdomain.LoginRequest{
		Email:     email,
		Password:  req.Password,
		UserAgent: c.Request.UserAgent(),
		IPAddress: c.ClientIP(),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "success",
		"token":     result.RawToken,
		"expiresAt": result.ExpiresAt,
		"data":      gin.H{"user": result.User},
	})
}

// allowLogin consumes one attempt for the client and email pair.
func (s *Server) allowLogin(c *gin.Context, email string) error {
	res, err := s.limiter.Allow(c.Request.Context(), c.ClientIP()+"|"+email)
	if err != nil {
		s.log.Warn("login rate limiter failed", zap.Error(err))
		if errors.Is(err, ratelimit.ErrUnavailable) {
			return ErrServiceUnavailable
		}
		return err
	}
	if !res.Allowed {
		c.Header("Retry-After", strconv.Itoa(int(math.Ceil(res.RetryAfter.Seconds()))))
		return ErrTooManyRequests
	}
	return nil
}

func (s *Server) Verify(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"data":   gin.H{"user": userFrom(c)},
	})
}

func (s *Server) Logout(c *gin.Context) {
	if err := s.authsvc.Logout(c.Request.Context(), c.GetString(contextTokenKey)); err != nil {
		AbortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Bootstrap creates the first admin account. It only succeeds while no user exists.
func (s *Server) Bootstrap(c *gin.Context) {
	var req BootstrapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	user, err := s.authsvc.Bootstrap(c.Request.Context(), authdomain.CreateUserRequest{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"status":  "success",
		"message": "Admin user created",
		"data":    gin.H{"user": user},
	})
}
