package web

import (
	"context"
	"net"
	"net/http"

	"github.com/JonMunkholm/datasweeper/internal/core"
)

// withClient adds the client IP and User-Agent to the request context so
// processing logs can name who sent a file.
func withClient(r *http.Request) context.Context {
	ip := r.RemoteAddr // Already rewritten by TrustedRealIP
	if host, _, err := net.SplitHostPort(ip); err == nil {
		ip = host
	}
	return core.ContextWithClient(r.Context(), ip, r.UserAgent())
}
