package notifications

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/skillbazaar/marketplace-backend/pkg/db/models"
	"github.com/skillbazaar/marketplace-backend/pkg/enums"
	pkgerrors "github.com/skillbazaar/marketplace-backend/pkg/errors"
	"github.com/skillbazaar/marketplace-backend/pkg/logger"
	"github.com/skillbazaar/marketplace-backend/pkg/pagination"
)

// Service exposes in-app notification operations plus the fan-out hook
// used by the order lifecycle.
type Service interface {
	Notify(ctx context.Context, tx *gorm.DB, input NotifyInput) (*models.Notification, error)
	List(ctx context.Context, userID int64, params pagination.Params) ([]models.Notification, pagination.Meta, error)
	MarkRead(ctx context.Context, userID, notificationID int64) error
	MarkAllRead(ctx context.Context, userID int64) (int64, error)
}

type service struct {
	repo   Repository
	sender Sender
	logg   *logger.Logger
	now    func() time.Time
}

// NewService wires notifications dependencies.
func NewService(repo Repository, sender Sender, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("notifications repository required")
	}
	if sender == nil {
		return nil, fmt.Errorf("notification sender required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, sender: sender, logg: logg, now: time.Now}, nil
}

// NotifyInput captures one notification fan-out.
type NotifyInput struct {
	UserID  int64
	Type    enums.NotificationType
	Title   string
	Message string
}

// Notify persists the in-app row, inside tx when one is provided, and
// then attempts external delivery. Delivery failures are logged and
// swallowed so the triggering operation never fails on fan-out.
func (s *service) Notify(ctx context.Context, tx *gorm.DB, input NotifyInput) (*models.Notification, error) {
	if input.UserID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if !input.Type.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid notification type")
	}
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "title is required")
	}

	notification := &models.Notification{
		UserID:  input.UserID,
		Type:    input.Type,
		Title:   title,
		Message: strings.TrimSpace(input.Message),
	}
	created, err := s.repo.WithTx(tx).Create(ctx, notification)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create notification")
	}

	if err := s.sender.Send(ctx, input.UserID, title, notification.Message); err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "notification_id", created.ID), "notification delivery failed")
	}
	return created, nil
}

// List returns a page of the user's notifications.
func (s *service) List(ctx context.Context, userID int64, params pagination.Params) ([]models.Notification, pagination.Meta, error) {
	if userID <= 0 {
		return nil, pagination.Meta{}, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	params = pagination.Normalize(params)

	total, err := s.repo.CountByUser(ctx, userID)
	if err != nil {
		return nil, pagination.Meta{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count notifications")
	}
	rows, err := s.repo.ListByUser(ctx, userID, params.Limit, params.Offset())
	if err != nil {
		return nil, pagination.Meta{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list notifications")
	}
	return rows, pagination.BuildMeta(params, total), nil
}

// MarkRead stamps one unread notification. Unknown or foreign ids are
// not-found.
func (s *service) MarkRead(ctx context.Context, userID, notificationID int64) error {
	if userID <= 0 || notificationID <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "user id and notification id are required")
	}
	affected, err := s.repo.MarkRead(ctx, userID, notificationID, s.now())
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark notification read")
	}
	if affected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "notification not found")
	}
	return nil
}

// MarkAllRead stamps every unread notification and reports the count.
func (s *service) MarkAllRead(ctx context.Context, userID int64) (int64, error) {
	if userID <= 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	affected, err := s.repo.MarkAllRead(ctx, userID, s.now())
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark notifications read")
	}
	return affected, nil
}
