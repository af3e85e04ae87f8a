package server

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"

	"github.com/fiskora/fiskora/internal/companyctx"
)

// Identity is platform-owned; the gateway in front of this service
// resolves the session and forwards the result as headers.
const (
	HeaderCompany = "X-Company-ID"
	HeaderUser    = "X-User-ID"
	HeaderRole    = "X-Role"
)

// CompanyContext lifts the forwarded identity headers into the request
// context. The company header is validated lazily by companyID so that
// bootstrap routes (company creation) stay reachable without one.
func (s *Server) CompanyContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		if raw := strings.TrimSpace(c.GetHeader(HeaderCompany)); raw != "" {
			if id, err := snowflake.ParseString(raw); err == nil && id != 0 {
				ctx = companyctx.WithCompanyID(ctx, id)
			}
		}
		if userID := strings.TrimSpace(c.GetHeader(HeaderUser)); userID != "" {
			ctx = companyctx.WithUserID(ctx, userID)
		}
		if role := strings.TrimSpace(c.GetHeader(HeaderRole)); role != "" {
			ctx = companyctx.WithRole(ctx, role)
		}

		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func (s *Server) authorize(object string, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		companyID, err := s.companyID(c)
		if err != nil {
			AbortWithError(c, err)
			return
		}

		if err := s.authzSvc.Authorize(c.Request.Context(), s.actor(c), companyID.String(), object, action); err != nil {
			AbortWithError(c, err)
			return
		}
		c.Next()
	}
}

// actor is "user:<id>" when the gateway forwarded a user, otherwise
// "system" for trusted internal callers.
func (s *Server) actor(c *gin.Context) string {
	if userID := companyctx.UserIDFromContext(c.Request.Context()); userID != "" {
		return fmt.Sprintf("user:%s", userID)
	}
	return "system"
}

func (s *Server) companyID(c *gin.Context) (snowflake.ID, error) {
	id, ok := companyctx.CompanyIDFromContext(c.Request.Context())
	if !ok || id == 0 {
		return 0, newValidationError("company_id", "invalid_company", "missing or invalid "+HeaderCompany+" header")
	}
	return id, nil
}
