package security

import (
	"net/http"
	"strings"
)

const (
	corsAllowMethods = "GET, POST, PUT, DELETE, OPTIONS"
	corsAllowHeaders = "Content-Type, Authorization, X-Request-ID"
	corsMaxAge       = "600"
)

// CORS allows cross-origin calls from origin ("*" or a comma-separated list)
// and answers preflight requests with 204.
func CORS(origin string) func(http.Handler) http.Handler {
	allowed := parseOrigins(origin)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			headers := w.Header()
			if value := allowed.match(r.Header.Get("Origin")); value != "" {
				headers.Set("Access-Control-Allow-Origin", value)
				if value != "*" {
					headers.Add("Vary", "Origin")
				}
				headers.Set("Access-Control-Expose-Headers", "X-Request-ID, Retry-After")
			}

			if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
				headers.Set("Access-Control-Allow-Methods", corsAllowMethods)
				headers.Set("Access-Control-Allow-Headers", corsAllowHeaders)
				headers.Set("Access-Control-Max-Age", corsMaxAge)
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

type origins struct {
	any  bool
	list []string
}

func parseOrigins(raw string) origins {
	var o origins
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimRight(strings.TrimSpace(part), "/")
		switch part {
		case "":
		case "*":
			o.any = true
		default:
			o.list = append(o.list, part)
		}
	}
	if len(o.list) == 0 {
		o.any = true
	}
	return o
}

// match returns the Access-Control-Allow-Origin value for a request origin,
// or "" when the origin is not allowed.
func (o origins) match(requestOrigin string) string {
	if o.any {
		return "*"
	}
	for _, allowed := range o.list {
		if strings.EqualFold(allowed, requestOrigin) {
			return requestOrigin
		}
	}
	return ""
}
