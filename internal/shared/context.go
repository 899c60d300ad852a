package shared

import (
	"context"
	"net/http"
	"strconv"

	"github.com/saralbooks/saralbooks/internal/platform/httpx"
)

type contextKey string

const firmContextKey contextKey = "firm"

// ContextWithFirm stores the firm scope on the context.
func ContextWithFirm(ctx context.Context, firmID int64) context.Context {
	return context.WithValue(ctx, firmContextKey, firmID)
}

// FirmFromContext returns the firm scope, or zero when unset.
func FirmFromContext(ctx context.Context) int64 {
	if id, ok := ctx.Value(firmContextKey).(int64); ok {
		return id
	}
	return 0
}

// FirmMiddleware resolves the firm scope from the X-Firm-ID header, placed
// there by the upstream auth layer. Requests without a firm are rejected.
func FirmMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := r.Header.Get("X-Firm-ID")
		firmID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || firmID <= 0 {
			httpx.Problem(w, http.StatusBadRequest, "Missing Firm", "a valid X-Firm-ID header is required")
			return
		}
		next.ServeHTTP(w, r.WithContext(ContextWithFirm(r.Context(), firmID)))
	})
}
