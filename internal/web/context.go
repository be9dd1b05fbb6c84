package web

import (
	"context"
	"net/http"

	"github.com/JonMunkholm/DataSweeper/internal/core"
	"github.com/JonMunkholm/DataSweeper/internal/web/middleware"
)

// withRequestMetadata adds the client IP and User-Agent to ctx for the
// activity history. RemoteAddr has already been rewritten by TrustedRealIP.
func withRequestMetadata(ctx context.Context, r *http.Request) context.Context {
	ctx = core.ContextWithIPAddress(ctx, middleware.ClientIP(r))
	return core.ContextWithUserAgent(ctx, r.UserAgent())
}
