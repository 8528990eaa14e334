package server

import (
	"strings"

	"github.com/gin-gonic/gin"
	authdomain "github.com/smallbiznis/invoicedesk/internal/auth/domain"
	obscontext "github.com/smallbiznis/invoicedesk/internal/observability/context"
)

const (
	contextOwnerKey  = "owner_id"
	contextUserKey   = "user"
	contextTokenKey  = "session_token"
	contextSourceKey = "ledger_source"
)

// OwnerIdentity scopes billing calls. Without an Authorization header the
// placeholder owner is used; a header that does not verify is rejected.
func (s *Server) OwnerIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, present, ok := bearerToken(c)
		if !present {
			s.bindOwner(c, s.settings.Get().PlaceholderOwner)
			c.Next()
			return
		}
		if !ok {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		user, err := s.authsvc.Authenticate(c.Request.Context(), token)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		c.Set(contextUserKey, user)
		s.bindOwner(c, user.OwnerID())
		c.Next()
	}
}

// UserRequired rejects requests without a valid bearer token.
func (s *Server) UserRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _, ok := bearerToken(c)
		if !ok {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		user, err := s.authsvc.Authenticate(c.Request.Context(), token)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		c.Set(contextUserKey, user)
		c.Set(contextTokenKey, token)
		s.bindOwner(c, user.OwnerID())
		c.Next()
	}
}

func (s *Server) bindOwner(c *gin.Context, owner string) {
	c.Set(contextOwnerKey, owner)
	c.Request = c.Request.WithContext(obscontext.WithOwnerID(c.Request.Context(), owner))
}

func ownerFrom(c *gin.Context) string {
	return c.GetString(contextOwnerKey)
}

func userFrom(c *gin.Context) *authdomain.User {
	user, _ := c.Get(contextUserKey)
	u, _ := user.(*authdomain.User)
	return u
}

// bearerToken reports the token, whether an Authorization header was sent at
// all, and whether it carried a usable bearer token.
func bearerToken(c *gin.Context) (string, bool, bool) {
	header := strings.TrimSpace(c.GetHeader("Authorization"))
	if header == "" {
		return "", false, false
	}
	scheme, token, found := strings.Cut(header, " ")
	token = strings.TrimSpace(token)
	if !found || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return "", true, false
	}
	return token, true, true
}
