package auth

import (
	"net/http"
	"strings"

	"github.com/zenitmed/siteapi/internal/config"
)

// CookieName is the admin session cookie.
const CookieName = "admin-session"

// BypassHeader grants authentication unconditionally outside production.
// Used by local tooling against a dev server.
const BypassHeader = "X-Admin-Bypass"

// Result of resolving a request's credentials.
type Result struct {
	IsAuthenticated bool
	IsBypass        bool
}

// strategy inspects one credential source. It returns a definitive result
// and true, or false when the next source should be consulted.
type strategy func(r *http.Request) (Result, bool)

// Resolver decides whether a request is authenticated, checking credential
// sources in fixed priority order: bypass header, bearer token, session
// cookie. The bypass strategy is only installed when the resolver is built
// for a non-production environment, so no header value can reach it in
// production.
type Resolver struct {
	chain []strategy
}

// NewResolver builds the resolver chain for the given environment.
func NewResolver(codec *Codec, env config.Environment) *Resolver {
	r := &Resolver{}
	if env != config.EnvProduction {
		r.chain = append(r.chain, bypassStrategy)
	}
	r.chain = append(r.chain, bearerStrategy(codec), cookieStrategy(codec))
	return r
}

// Resolve runs the strategy chain and stops at the first definitive result.
func (rv *Resolver) Resolve(r *http.Request) Result {
	for _, s := range rv.chain {
		if res, ok := s(r); ok {
			return res
		}
	}
	return Result{}
}

func bypassStrategy(r *http.Request) (Result, bool) {
	if r.Header.Get(BypassHeader) == "true" {
		return Result{IsAuthenticated: true, IsBypass: true}, true
	}
	return Result{}, false
}

func bearerStrategy(codec *Codec) strategy {
	return func(r *http.Request) (Result, bool) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			return Result{}, false
		}
		token := strings.TrimPrefix(header, "Bearer ")
		// Browsers end up sending the literal strings "undefined" and
		// "null" when client-side storage is empty.
		if token == "" || token == "undefined" || token == "null" {
			return Result{}, false
		}
		if codec.Verify(token) {
			return Result{IsAuthenticated: true}, true
		}
		// Invalid bearer token falls through to the cookie.
		return Result{}, false
	}
}

func cookieStrategy(codec *Codec) strategy {
	return func(r *http.Request) (Result, bool) {
		cookie, err := r.Cookie(CookieName)
		if err != nil || cookie.Value == "" {
			return Result{}, false
		}
		if codec.Verify(cookie.Value) {
			return Result{IsAuthenticated: true}, true
		}
		return Result{}, false
	}
}
