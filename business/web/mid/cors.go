// Package mid contains the set of middleware functions.
package mid

import (
	"context"
	"net/http"
	"strings"

	"github.com/ardanlabs/memoledger/foundation/web"
)

// Cors answers browsers with the allowed origin so wallets served from
// another site can read the ledger and submit calls. An origin of "*"
// allows every site.
func Cors(origins []string) web.Middleware {

	// This is the actual middleware function to be executed.
	m := func(handler web.Handler) web.Handler {

		// Create the handler that will be attached in the middleware chain.
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			origin := r.Header.Get("Origin")

			switch {
			case allowsAny(origins):
				w.Header().Set("Access-Control-Allow-Origin", "*")

			case origin != "" && OriginAllowed(origins, origin):
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Add("Vary", "Origin")
			}

			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Origin, Accept, Content-Type, Content-Length, Accept-Encoding")

			// Call the next handler.
			return handler(ctx, w, r)
		}

		return h
	}

	return m
}

// OriginAllowed reports whether a request from the origin is accepted.
// Requests without an origin come from non-browser clients and are
// always accepted.
func OriginAllowed(origins []string, origin string) bool {
	if origin == "" || allowsAny(origins) {
		return true
	}

	for _, allowed := range origins {
		if strings.EqualFold(strings.TrimSpace(allowed), origin) {
			return true
		}
	}

	return false
}

func allowsAny(origins []string) bool {
	for _, allowed := range origins {
		if strings.TrimSpace(allowed) == "*" {
			return true
		}
	}
	return false
}
