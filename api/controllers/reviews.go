package controllers

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/skillbazaar/marketplace-backend/api/middleware"
	"github.com/skillbazaar/marketplace-backend/api/responses"
	"github.com/skillbazaar/marketplace-backend/api/validators"
	reviewsvc "github.com/skillbazaar/marketplace-backend/internal/reviews"
	"github.com/skillbazaar/marketplace-backend/pkg/db/models"
	pkgerrors "github.com/skillbazaar/marketplace-backend/pkg/errors"
	"github.com/skillbazaar/marketplace-backend/pkg/logger"
	"github.com/skillbazaar/marketplace-backend/pkg/pagination"
)

// ReviewCreate submits a review for one of the caller's completed
// orders and returns the refreshed rating aggregates.
func ReviewCreate(svc reviewsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "reviews service unavailable"))
			return
		}

		var payload createReviewRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		userID := middleware.UserIDFromContext(r.Context())
		result, err := svc.Create(r.Context(), userID, reviewsvc.CreateInput{
			OrderID: payload.OrderID,
			Rating:  payload.Rating,
			Comment: payload.Comment,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, reviewResultResponse{
			Review:         newReviewResponse(*result.Review),
			ServiceRating:  result.ServiceRating,
			ProviderRating: result.ProviderRating,
		})
	}
}

// ReviewUpdate edits the caller's own review and returns the refreshed
// rating aggregates.
func ReviewUpdate(svc reviewsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "reviews service unavailable"))
			return
		}

		reviewID, err := pathID(r, "reviewId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateReviewRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		userID := middleware.UserIDFromContext(r.Context())
		result, err := svc.Update(r.Context(), userID, reviewID, reviewsvc.UpdateInput{
			Rating:  payload.Rating,
			Comment: payload.Comment,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, reviewResultResponse{
			Review:         newReviewResponse(*result.Review),
			ServiceRating:  result.ServiceRating,
			ProviderRating: result.ProviderRating,
		})
	}
}

// ProfileReviews lists the active reviews for one service profile.
func ProfileReviews(svc reviewsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "reviews service unavailable"))
			return
		}

		profileID, err := pathID(r, "profileId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		records, meta, err := svc.ListByService(r.Context(), profileID, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items := make([]reviewResponse, 0, len(records))
		for _, record := range records {
			items = append(items, newReviewResponse(record))
		}
		responses.WriteSuccess(w, reviewListResponse{Items: items, Meta: meta})
	}
}

// AdminReviewDetail returns any review, active or not, for back-office
// inspection.
func AdminReviewDetail(svc reviewsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "reviews service unavailable"))
			return
		}

		reviewID, err := pathID(r, "reviewId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		record, err := svc.GetByID(r.Context(), reviewID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newReviewResponse(*record))
	}
}

// AdminOrderReview returns the review attached to an order.
func AdminOrderReview(svc reviewsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "reviews service unavailable"))
			return
		}

		orderID, err := pathID(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		record, err := svc.GetByOrderID(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newReviewResponse(*record))
	}
}

// AdminReviewDeactivate hides a review from public listings. The rating
// it contributed stays in the aggregates.
func AdminReviewDeactivate(svc reviewsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "reviews service unavailable"))
			return
		}

		reviewID, err := pathID(r, "reviewId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Deactivate(r.Context(), reviewID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "inactive"})
	}
}

type createReviewRequest struct {
	OrderID int64           `json:"order_id" validate:"required,gt=0"`
	Rating  decimal.Decimal `json:"rating" validate:"required"`
	Comment string          `json:"comment" validate:"required"`
}

type updateReviewRequest struct {
	Rating  decimal.Decimal `json:"rating" validate:"required"`
	Comment string          `json:"comment" validate:"required"`
}

type reviewResponse struct {
	ID         int64           `json:"id"`
	OrderID    int64           `json:"order_id"`
	UserID     int64           `json:"user_id"`
	ProviderID int64           `json:"provider_id"`
	ServiceID  int64           `json:"service_id"`
	Rating     decimal.Decimal `json:"rating"`
	Comment    string          `json:"comment"`
	Status     string          `json:"status"`
	CreatedAt  time.Time       `json:"created_at"`
}

type reviewResultResponse struct {
	Review         reviewResponse  `json:"review"`
	ServiceRating  decimal.Decimal `json:"service_rating"`
	ProviderRating decimal.Decimal `json:"provider_rating"`
}

type reviewListResponse struct {
	Items []reviewResponse `json:"items"`
	Meta  pagination.Meta  `json:"meta"`
}

func newReviewResponse(record models.Review) reviewResponse {
	return reviewResponse{
		ID:         record.ID,
		OrderID:    record.OrderID,
		UserID:     record.UserID,
		ProviderID: record.ProviderID,
		ServiceID:  record.ServiceID,
		Rating:     record.Rating,
		Comment:    record.Comment,
		Status:     string(record.Status),
		CreatedAt:  record.CreatedAt,
	}
}
