package controllers

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/skillbazaar/marketplace-backend/api/responses"
	"github.com/skillbazaar/marketplace-backend/api/validators"
	profilesvc "github.com/skillbazaar/marketplace-backend/internal/profiles"
	"github.com/skillbazaar/marketplace-backend/pkg/db/models"
	pkgerrors "github.com/skillbazaar/marketplace-backend/pkg/errors"
	"github.com/skillbazaar/marketplace-backend/pkg/logger"
	"github.com/skillbazaar/marketplace-backend/pkg/pagination"
)

// ProfileList returns the paginated service catalog.
func ProfileList(svc profilesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "profiles service unavailable"))
			return
		}

		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		records, meta, err := svc.List(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items := make([]profileResponse, 0, len(records))
		for _, record := range records {
			items = append(items, newProfileResponse(record))
		}
		responses.WriteSuccess(w, profileListResponse{Items: items, Meta: meta})
	}
}

// ProfileDetail returns a single service profile.
func ProfileDetail(svc profilesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "profiles service unavailable"))
			return
		}

		profileID, err := pathID(r, "profileId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		record, err := svc.Get(r.Context(), profileID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newProfileResponse(*record))
	}
}

// AdminProfileCreate publishes a new service profile.
func AdminProfileCreate(svc profilesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "profiles service unavailable"))
			return
		}

		var payload createProfileRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		record, err := svc.Create(r.Context(), profilesvc.CreateInput{
			Title:           payload.Title,
			Tagline:         payload.Tagline,
			ExperienceRange: payload.ExperienceRange,
			HourlyRate:      payload.HourlyRate,
			ProfileImage:    payload.ProfileImage,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, newProfileResponse(*record))
	}
}

// AdminProfileUpdate applies a partial update to a profile. Omitted
// fields keep their current values.
func AdminProfileUpdate(svc profilesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "profiles service unavailable"))
			return
		}

		profileID, err := pathID(r, "profileId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateProfileRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		record, err := svc.Update(r.Context(), profileID, profilesvc.UpdateInput{
			Title:           payload.Title,
			Tagline:         payload.Tagline,
			ExperienceRange: payload.ExperienceRange,
			HourlyRate:      payload.HourlyRate,
			ProfileImage:    payload.ProfileImage,
			IsActive:        payload.IsActive,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newProfileResponse(*record))
	}
}

type createProfileRequest struct {
	Title           string          `json:"title" validate:"required"`
	Tagline         string          `json:"tagline"`
	ExperienceRange string          `json:"experience_range"`
	HourlyRate      decimal.Decimal `json:"hourly_rate" validate:"required"`
	ProfileImage    *string         `json:"profile_image"`
}

type updateProfileRequest struct {
	Title           *string          `json:"title"`
	Tagline         *string          `json:"tagline"`
	ExperienceRange *string          `json:"experience_range"`
	HourlyRate      *decimal.Decimal `json:"hourly_rate"`
	ProfileImage    *string          `json:"profile_image"`
	IsActive        *bool            `json:"is_active"`
}

type profileResponse struct {
	ID              int64           `json:"id"`
	Title           string          `json:"title"`
	Tagline         string          `json:"tagline"`
	ExperienceRange string          `json:"experience_range"`
	HourlyRate      decimal.Decimal `json:"hourly_rate"`
	ProfileImage    *string         `json:"profile_image,omitempty"`
	IsActive        bool            `json:"is_active"`
	OverallRating   decimal.Decimal `json:"overall_rating"`
	RatingCount     int64           `json:"rating_count"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

type profileListResponse struct {
	Items []profileResponse `json:"items"`
	Meta  pagination.Meta   `json:"meta"`
}

func newProfileResponse(record models.ServiceProfile) profileResponse {
	return profileResponse{
		ID:              record.ID,
		Title:           record.Title,
		Tagline:         record.Tagline,
		ExperienceRange: record.ExperienceRange,
		HourlyRate:      record.HourlyRate,
		ProfileImage:    record.ProfileImage,
		IsActive:        record.IsActive,
		OverallRating:   record.OverallRating,
		RatingCount:     record.RatingCount,
		CreatedAt:       record.CreatedAt,
		UpdatedAt:       record.UpdatedAt,
	}
}
