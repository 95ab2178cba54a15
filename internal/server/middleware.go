package server

import (
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/invopad/invopad/internal/accountctx"
)

// HeaderAccount selects the active account on every request.
const HeaderAccount = "X-Account-ID"

// AccountContext resolves the account from the request header and injects
// it into the request context. Falls back to the configured default
// account so a single-tenant deployment works without the header.
func (s *Server) AccountContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimSpace(c.GetHeader(HeaderAccount))

		var accountID int64
		if raw != "" {
			parsed, err := snowflake.ParseString(raw)
			if err != nil || parsed == 0 {
				AbortWithError(c, newValidationError("account", "invalid_account", "invalid account id"))
				return
			}
			accountID = int64(parsed)
		} else {
			accountID = s.cfg.DefaultAccountID
		}

		if accountID == 0 {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		ctx := accountctx.WithAccountID(c.Request.Context(), accountID)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
