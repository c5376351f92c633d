package webhooks

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"

	"github.com/kaanagas/kaanagas-backend/api/responses"
	"github.com/kaanagas/kaanagas-backend/internal/payments"
	"github.com/kaanagas/kaanagas-backend/pkg/config"
	"github.com/kaanagas/kaanagas-backend/pkg/db/models"
	pkgerrors "github.com/kaanagas/kaanagas-backend/pkg/errors"
	"github.com/kaanagas/kaanagas-backend/pkg/logger"
	"github.com/kaanagas/kaanagas-backend/pkg/mpesa"
)

// Mpesa receives Daraja STK push result callbacks. The endpoint is
// unauthenticated; when a callback secret is configured the gateway
// must echo it back as a query parameter.
//
// Replays and already-settled payments are acknowledged with 200 so
// Daraja stops retrying.
func Mpesa(svc payments.Service, cfg config.MpesaConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payment service unavailable"))
			return
		}

		if cfg.CallbackSecret != "" {
			given := r.URL.Query().Get("secret")
			if subtle.ConstantTimeCompare([]byte(given), []byte(cfg.CallbackSecret)) != 1 {
				logg.Warn(r.Context(), "mpesa callback rejected, bad secret")
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "invalid callback secret"))
				return
			}
		}

		var envelope mpesa.CallbackEnvelope
		if err := json.NewDecoder(r.Body).Decode(&envelope); err != nil {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.Wrap(pkgerrors.CodeValidation, err, "malformed callback payload"))
			return
		}

		outcome, err := svc.HandleCallback(r.Context(), envelope)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if outcome == models.CallbackOutcomeUnmatched {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeNotFound, "callback matched no payment"))
			return
		}
		responses.WriteSuccess(w, map[string]string{"outcome": outcome})
	}
}
