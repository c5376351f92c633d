package middleware

import (
	"net/http"

	"github.com/kaanagas/kaanagas-backend/api/responses"
	pkgerrors "github.com/kaanagas/kaanagas-backend/pkg/errors"
	"github.com/kaanagas/kaanagas-backend/pkg/logger"
)

// VendorContext rejects requests whose token carries no vendor profile.
func VendorContext(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if VendorIDFromContext(r.Context()) == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "vendor context missing"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RiderContext rejects requests whose token carries no rider profile.
func RiderContext(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if RiderIDFromContext(r.Context()) == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "rider context missing"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
