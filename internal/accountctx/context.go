// Package accountctx carries the active account ID through request contexts.
package accountctx

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
)

// AccountContextKey is the request context key for the active account ID.
type AccountContextKey struct{}

// WithAccountID stores the account ID in the context.
func WithAccountID(ctx context.Context, accountID int64) context.Context {
	return context.WithValue(ctx, AccountContextKey{}, accountID)
}

// AccountIDFromContext returns the account ID from context, if set.
func AccountIDFromContext(ctx context.Context) (snowflake.ID, bool) {
	if ctx == nil {
		return 0, false
	}

	value := ctx.Value(AccountContextKey{})
	switch typed := value.(type) {
	case int64:
		return snowflake.ID(typed), true
	case snowflake.ID:
		return typed, true
	case string:
		parsed, err := snowflake.ParseString(strings.TrimSpace(typed))
		if err == nil {
			return parsed, true
		}
	}
	return 0, false
}
