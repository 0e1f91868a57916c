package controllers

import (
	"net/http"
	"time"

	"github.com/skillbazaar/marketplace-backend/api/middleware"
	"github.com/skillbazaar/marketplace-backend/api/responses"
	"github.com/skillbazaar/marketplace-backend/api/validators"
	notificationsvc "github.com/skillbazaar/marketplace-backend/internal/notifications"
	"github.com/skillbazaar/marketplace-backend/pkg/db/models"
	pkgerrors "github.com/skillbazaar/marketplace-backend/pkg/errors"
	"github.com/skillbazaar/marketplace-backend/pkg/logger"
	"github.com/skillbazaar/marketplace-backend/pkg/pagination"
)

// ListNotifications returns the caller's notifications, newest first.
func ListNotifications(svc notificationsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "notifications service unavailable"))
			return
		}

		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		userID := middleware.UserIDFromContext(r.Context())
		records, meta, err := svc.List(r.Context(), userID, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items := make([]notificationResponse, 0, len(records))
		for _, record := range records {
			items = append(items, newNotificationResponse(record))
		}
		responses.WriteSuccess(w, notificationListResponse{Items: items, Meta: meta})
	}
}

// MarkNotificationRead stamps one of the caller's notifications as read.
func MarkNotificationRead(svc notificationsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "notifications service unavailable"))
			return
		}

		notificationID, err := pathID(r, "notificationId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		userID := middleware.UserIDFromContext(r.Context())
		if err := svc.MarkRead(r.Context(), userID, notificationID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "read"})
	}
}

// MarkAllNotificationsRead stamps every unread notification for the
// caller and reports how many were touched.
func MarkAllNotificationsRead(svc notificationsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "notifications service unavailable"))
			return
		}

		userID := middleware.UserIDFromContext(r.Context())
		updated, err := svc.MarkAllRead(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]int64{"updated": updated})
	}
}

type notificationResponse struct {
	ID        int64      `json:"id"`
	Type      string     `json:"type"`
	Title     string     `json:"title"`
	Message   string     `json:"message"`
	ReadAt    *time.Time `json:"read_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

type notificationListResponse struct {
	Items []notificationResponse `json:"items"`
	Meta  pagination.Meta        `json:"meta"`
}

func newNotificationResponse(record models.Notification) notificationResponse {
	return notificationResponse{
		ID:        record.ID,
		Type:      string(record.Type),
		Title:     record.Title,
		Message:   record.Message,
		ReadAt:    record.ReadAt,
		CreatedAt: record.CreatedAt,
	}
}
