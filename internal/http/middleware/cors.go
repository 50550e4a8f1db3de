package middleware

import (
	"net/http"
	"strings"
)

const (
	corsAllowedHeaders = "Content-Type, X-Request-ID"
	corsAllowedMethods = "GET, POST, PUT, DELETE, OPTIONS"
)

// CORS applies an origin allowlist for the public booking site. Entries may be
// exact origins, "*" for any origin, or a scheme plus "*." host wildcard such as
// "https://*.cuddlesandcut.com".
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	policy := newOriginPolicy(allowedOrigins)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := strings.TrimSpace(r.Header.Get("Origin"))
			if origin != "" && policy.allows(origin) {
				h := w.Header()
				h.Set("Access-Control-Allow-Origin", origin)
				h.Add("Vary", "Origin")
				h.Set("Access-Control-Allow-Headers", corsAllowedHeaders)
				h.Set("Access-Control-Allow-Methods", corsAllowedMethods)
				h.Set("Access-Control-Expose-Headers", "X-Request-ID")
				h.Set("Access-Control-Max-Age", "600")
			}

			// Preflight
			if r.Method == http.MethodOptions && origin != "" && r.Header.Get("Access-Control-Request-Method") != "" {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

type originPolicy struct {
	any      bool
	exact    map[string]struct{}
	suffixes []wildcardOrigin
}

type wildcardOrigin struct {
	scheme string
	suffix string
}

func newOriginPolicy(origins []string) originPolicy {
	p := originPolicy{exact: map[string]struct{}{}}
	for _, origin := range origins {
		origin = strings.TrimRight(strings.TrimSpace(origin), "/")
		switch {
		case origin == "":
		case origin == "*":
			p.any = true
		case strings.Contains(origin, "://*."):
			scheme, host, _ := strings.Cut(origin, "://*")
			p.suffixes = append(p.suffixes, wildcardOrigin{scheme: scheme + "://", suffix: host})
		default:
			p.exact[origin] = struct{}{}
		}
	}
	return p
}

func (p originPolicy) allows(origin string) bool {
	if p.any {
		return true
	}
	if _, ok := p.exact[origin]; ok {
		return true
	}
	for _, w := range p.suffixes {
		if strings.HasPrefix(origin, w.scheme) && strings.HasSuffix(origin, w.suffix) && len(origin) > len(w.scheme)+len(w.suffix) {
			return true
		}
	}
	return false
}

// AllowsOrigin reports whether origin passes the allowlist used by CORS.
func AllowsOrigin(allowedOrigins []string, origin string) bool {
	return newOriginPolicy(allowedOrigins).allows(origin)
}
