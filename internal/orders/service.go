package orders

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/skillbazaar/marketplace-backend/internal/notifications"
	"github.com/skillbazaar/marketplace-backend/pkg/db/models"
	"github.com/skillbazaar/marketplace-backend/pkg/enums"
	pkgerrors "github.com/skillbazaar/marketplace-backend/pkg/errors"
	"github.com/skillbazaar/marketplace-backend/pkg/logger"
	"github.com/skillbazaar/marketplace-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type userLoader interface {
	FindByID(ctx context.Context, id int64) (*models.User, error)
}

type notifier interface {
	Notify(ctx context.Context, tx *gorm.DB, input notifications.NotifyInput) (*models.Notification, error)
}

// Service exposes the order lifecycle for customers and back-office
// staff.
type Service interface {
	UpdateStatus(ctx context.Context, input UpdateStatusInput) (*models.Order, error)
	GetForUser(ctx context.Context, userID, orderID int64) (*models.Order, error)
	ListByUser(ctx context.Context, userID int64, params pagination.Params) ([]models.Order, pagination.Meta, error)
	ListAll(ctx context.Context, params pagination.Params) ([]models.Order, pagination.Meta, error)
}

type service struct {
	repo     Repository
	tx       txRunner
	users    userLoader
	notifier notifier
	logg     *logger.Logger
}

// NewService wires the order lifecycle dependencies.
func NewService(repo Repository, tx txRunner, users userLoader, notif notifier, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if users == nil {
		return nil, fmt.Errorf("user loader required")
	}
	if notif == nil {
		return nil, fmt.Errorf("notifier required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, tx: tx, users: users, notifier: notif, logg: logg}, nil
}

// UpdateStatusInput drives one staff-side lifecycle move.
type UpdateStatusInput struct {
	OrderID    int64
	Status     enums.OrderStatus
	AssignedTo *int64
}

// UpdateStatus moves an order one step forward in its lifecycle.
// Moving to "assigned" requires an assignee; reaching "completed"
// triggers a best-effort notification to the customer after commit.
func (s *service) UpdateStatus(ctx context.Context, input UpdateStatusInput) (*models.Order, error) {
	if input.OrderID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	if !input.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid order status")
	}
	if input.Status == enums.OrderStatusReviewed {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "orders become reviewed only through review submission")
	}

	if input.Status == enums.OrderStatusAssigned {
		if input.AssignedTo == nil || *input.AssignedTo <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "assignee is required when assigning an order")
		}
		if _, err := s.users.FindByID(ctx, *input.AssignedTo); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeNotFound, "assignee not found")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load assignee")
		}
	}

	var updated *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		order, err := txRepo.FindByIDForUpdate(ctx, input.OrderID)
		if err != nil {
			return err
		}
		if !order.Status.CanTransitionTo(input.Status) {
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("cannot move order from %q to %q", order.Status, input.Status))
		}

		if err := txRepo.UpdateStatus(ctx, order.ID, input.Status, input.AssignedTo); err != nil {
			return err
		}

		order.Status = input.Status
		if input.AssignedTo != nil {
			order.AssignedTo = input.AssignedTo
			for i := range order.Items {
				order.Items[i].AssignedTo = input.AssignedTo
			}
		}
		for i := range order.Items {
			order.Items[i].Status = input.Status
		}
		updated = order
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		if typed := pkgerrors.As(err); typed != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
	}

	if updated.Status == enums.OrderStatusCompleted {
		s.notifyCompleted(ctx, updated)
	}
	return updated, nil
}

// notifyCompleted fans out the completion notice. Failures are logged
// and never surfaced; the lifecycle move has already committed.
func (s *service) notifyCompleted(ctx context.Context, order *models.Order) {
	_, err := s.notifier.Notify(ctx, nil, notifications.NotifyInput{
		UserID:  order.UserID,
		Type:    enums.NotificationTypeOrderCompleted,
		Title:   "Your order is complete",
		Message: fmt.Sprintf("Order #%d has been completed. You can now leave a review.", order.ID),
	})
	if err != nil {
		s.logg.Warn(s.logg.WithOrderID(ctx, order.ID), "order completion notification failed")
	}
}

// GetForUser returns an order restricted to its owner.
func (s *service) GetForUser(ctx context.Context, userID, orderID int64) (*models.Order, error) {
	if userID <= 0 || orderID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id and order id are required")
	}
	order, err := s.repo.FindByIDAndUser(ctx, orderID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}

// ListByUser returns a page of the user's orders.
func (s *service) ListByUser(ctx context.Context, userID int64, params pagination.Params) ([]models.Order, pagination.Meta, error) {
	if userID <= 0 {
		return nil, pagination.Meta{}, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	params = pagination.Normalize(params)

	total, err := s.repo.CountByUser(ctx, userID)
	if err != nil {
		return nil, pagination.Meta{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count orders")
	}
	rows, err := s.repo.ListByUser(ctx, userID, params.Limit, params.Offset())
	if err != nil {
		return nil, pagination.Meta{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return rows, pagination.BuildMeta(params, total), nil
}

// ListAll returns a page of all orders for the back office.
func (s *service) ListAll(ctx context.Context, params pagination.Params) ([]models.Order, pagination.Meta, error) {
	params = pagination.Normalize(params)

	total, err := s.repo.CountAll(ctx)
	if err != nil {
		return nil, pagination.Meta{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count orders")
	}
	rows, err := s.repo.ListAll(ctx, params.Limit, params.Offset())
	if err != nil {
		return nil, pagination.Meta{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return rows, pagination.BuildMeta(params, total), nil
}
