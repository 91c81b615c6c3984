package web

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/phrasebook/locale"
)

// Router builds the catalog export routes for a registry, with locale
// negotiation applied to every request:
//
//	GET /locales         — registered locales and the default
//	GET /messages        — merged message table for the negotiated locale
//	GET /messages/{key}  — single message resolution
func Router(reg *locale.Registry, opts ...MiddlewareOption) chi.Router {
	r := chi.NewRouter()
	r.Use(LocaleMiddleware(reg, opts...))
	r.Get("/locales", listLocales(reg))
	r.Get("/messages", exportCatalog(reg))
	r.Get("/messages/{key}", getMessage(reg))
	return r
}

func listLocales(reg *locale.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"default": reg.Default(),
			"locales": reg.Locales(),
		})
	}
}

func exportCatalog(reg *locale.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		loc := LocaleFromContext(r.Context())
		writeJSON(w, http.StatusOK, map[string]any{
			"locale":   loc,
			"messages": reg.Catalog(loc),
		})
	}
}

func getMessage(reg *locale.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		loc := LocaleFromContext(r.Context())
		key := chi.URLParam(r, "key")

		msg, ok := reg.Translation(loc, key)
		if !ok {
			// A miss is a representable outcome, not a server fault.
			writeJSON(w, http.StatusNotFound, map[string]any{
				"error":  "message not found",
				"key":    key,
				"locale": loc,
			})
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"key":     key,
			"locale":  loc,
			"message": msg,
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
