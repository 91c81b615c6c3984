// Package web exposes a toolkit's message catalogs over HTTP: a locale
// negotiation middleware plus read-only export routes that editor front-ends
// fetch their message tables from.
package web

import (
	"context"
	"net/http"

	"github.com/dmitrymomot/phrasebook/locale"
)

type ctxKey int

const localeKey ctxKey = iota

// defaults for locale extraction.
const (
	DefaultCookieName = "lang"
	DefaultQueryParam = "lang"
)

// LocaleToContext returns a context carrying the negotiated locale.
func LocaleToContext(ctx context.Context, loc string) context.Context {
	return context.WithValue(ctx, localeKey, loc)
}

// LocaleFromContext extracts the negotiated locale from the context, or ""
// when no locale middleware ran.
func LocaleFromContext(ctx context.Context) string {
	loc, _ := ctx.Value(localeKey).(string)
	return loc
}

// MiddlewareOption configures LocaleMiddleware.
type MiddlewareOption func(*middlewareConfig)

type middlewareConfig struct {
	cookieName string
	queryParam string
}

// WithCookieName overrides the cookie checked for an explicit locale choice.
func WithCookieName(name string) MiddlewareOption {
	return func(cfg *middlewareConfig) {
		cfg.cookieName = name
	}
}

// WithQueryParam overrides the query parameter checked for a locale.
func WithQueryParam(name string) MiddlewareOption {
	return func(cfg *middlewareConfig) {
		cfg.queryParam = name
	}
}

// LocaleMiddleware resolves the request's locale and stores it in the
// context. Extraction order: cookie, query parameter, Accept-Language header
// matched against the registered locales, then the registry default.
func LocaleMiddleware(reg *locale.Registry, opts ...MiddlewareOption) func(http.Handler) http.Handler {
	cfg := &middlewareConfig{
		cookieName: DefaultCookieName,
		queryParam: DefaultQueryParam,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			loc := extractLocale(r, reg, cfg)
			next.ServeHTTP(w, r.WithContext(LocaleToContext(r.Context(), loc)))
		})
	}
}

func extractLocale(r *http.Request, reg *locale.Registry, cfg *middlewareConfig) string {
	if c, err := r.Cookie(cfg.cookieName); err == nil && c.Value != "" {
		return reg.Match(c.Value)
	}
	if q := r.URL.Query().Get(cfg.queryParam); q != "" {
		return reg.Match(q)
	}
	if header := r.Header.Get("Accept-Language"); header != "" {
		return reg.Match(header)
	}
	return reg.Default()
}
