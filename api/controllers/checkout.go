package controllers

import (
	"net/http"

	"github.com/skillbazaar/marketplace-backend/api/middleware"
	"github.com/skillbazaar/marketplace-backend/api/responses"
	"github.com/skillbazaar/marketplace-backend/api/validators"
	checkoutsvc "github.com/skillbazaar/marketplace-backend/internal/checkout"
	pkgerrors "github.com/skillbazaar/marketplace-backend/pkg/errors"
	"github.com/skillbazaar/marketplace-backend/pkg/logger"
)

// Checkout converts the caller's active cart into an order and returns
// the monetary breakdown.
func Checkout(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		var payload checkoutRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		userID := middleware.UserIDFromContext(r.Context())
		breakdown, err := svc.Execute(r.Context(), userID, checkoutsvc.ExecuteInput{
			ReferralEmail:    payload.ReferralEmail,
			UseStoredCredits: payload.UseStoredCredits,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, breakdown)
	}
}

type checkoutRequest struct {
	ReferralEmail    string `json:"referral_email" validate:"omitempty,email"`
	UseStoredCredits bool   `json:"use_stored_credits"`
}
