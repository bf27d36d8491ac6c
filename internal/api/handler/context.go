package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/tripdesk/tripdesk/internal/api/middleware"
	"github.com/tripdesk/tripdesk/internal/auth"
)

// GetUserID retrieves the authenticated user ID from the context.
// This is a convenience wrapper around middleware.GetUserID.
func GetUserID(ctx context.Context) string {
	return middleware.GetUserID(ctx)
}

// GetSession retrieves the authenticated session from the context.
func GetSession(ctx context.Context) *auth.Session {
	return middleware.GetSession(ctx)
}

// queryInt reads an integer query parameter, falling back to def when
// the parameter is absent or malformed.
func queryInt(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return def
	}
	return n
}
