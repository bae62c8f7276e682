package mid

import (
	"context"
	"net/http"

	"github.com/ardanlabs/poichain/foundation/web"
)

// Node routes only read with GET and submit with POST, and no route takes
// credentials.
const (
	corsMethods = "GET, POST, OPTIONS"
	corsHeaders = "Accept, Accept-Encoding, Content-Type, Content-Length"
	corsMaxAge  = "86400"
)

// Cors lets browser wallets and explorers served from origin call the
// public node API.
func Cors(origin string) web.Middleware {
	m := func(handler web.Handler) web.Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", corsMethods)
			w.Header().Set("Access-Control-Allow-Headers", corsHeaders)
			w.Header().Set("Access-Control-Max-Age", corsMaxAge)

			if origin != "*" {
				w.Header().Add("Vary", "Origin")
			}

			return handler(ctx, w, r)
		}

		return h
	}

	return m
}
