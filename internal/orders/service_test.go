package orders

import (
	"context"
	"testing"

	"gorm.io/gorm"

	"github.com/skillbazaar/marketplace-backend/internal/notifications"
	"github.com/skillbazaar/marketplace-backend/pkg/db/models"
	"github.com/skillbazaar/marketplace-backend/pkg/enums"
	pkgerrors "github.com/skillbazaar/marketplace-backend/pkg/errors"
	"github.com/skillbazaar/marketplace-backend/pkg/logger"
)

func int64Ptr(v int64) *int64 { return &v }

func TestUpdateStatusAssignsOrder(t *testing.T) {
	t.Parallel()

	repo := &stubOrdersRepo{
		order: &models.Order{ID: 10, UserID: 1, Status: enums.OrderStatusPlaced},
	}
	svc, _ := newTestService(t, repo, true)

	updated, err := svc.UpdateStatus(context.Background(), UpdateStatusInput{
		OrderID:    10,
		Status:     enums.OrderStatusAssigned,
		AssignedTo: int64Ptr(7),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Status != enums.OrderStatusAssigned {
		t.Fatalf("status = %s, want assigned", updated.Status)
	}
	if updated.AssignedTo == nil || *updated.AssignedTo != 7 {
		t.Fatalf("assignee not set: %+v", updated.AssignedTo)
	}
}

func TestUpdateStatusRejectsSkippingSteps(t *testing.T) {
	t.Parallel()

	repo := &stubOrdersRepo{
		order: &models.Order{ID: 10, UserID: 1, Status: enums.OrderStatusPlaced},
	}
	svc, _ := newTestService(t, repo, true)

	_, err := svc.UpdateStatus(context.Background(), UpdateStatusInput{
		OrderID: 10,
		Status:  enums.OrderStatusCompleted,
	})
	if !pkgerrors.HasCode(err, pkgerrors.CodeStateConflict) {
		t.Fatalf("expected state conflict, got %v", err)
	}
}

func TestUpdateStatusRejectsReviewed(t *testing.T) {
	t.Parallel()

	repo := &stubOrdersRepo{
		order: &models.Order{ID: 10, UserID: 1, Status: enums.OrderStatusCompleted},
	}
	svc, _ := newTestService(t, repo, true)

	_, err := svc.UpdateStatus(context.Background(), UpdateStatusInput{
		OrderID: 10,
		Status:  enums.OrderStatusReviewed,
	})
	if !pkgerrors.HasCode(err, pkgerrors.CodeStateConflict) {
		t.Fatalf("expected state conflict, got %v", err)
	}
}

func TestUpdateStatusAssignRequiresAssignee(t *testing.T) {
	t.Parallel()

	repo := &stubOrdersRepo{
		order: &models.Order{ID: 10, UserID: 1, Status: enums.OrderStatusPlaced},
	}
	svc, _ := newTestService(t, repo, true)

	_, err := svc.UpdateStatus(context.Background(), UpdateStatusInput{
		OrderID: 10,
		Status:  enums.OrderStatusAssigned,
	})
	if !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestUpdateStatusUnknownAssignee(t *testing.T) {
	t.Parallel()

	repo := &stubOrdersRepo{
		order: &models.Order{ID: 10, UserID: 1, Status: enums.OrderStatusPlaced},
	}
	svc, _ := newTestService(t, repo, false)

	_, err := svc.UpdateStatus(context.Background(), UpdateStatusInput{
		OrderID:    10,
		Status:     enums.OrderStatusAssigned,
		AssignedTo: int64Ptr(99),
	})
	if !pkgerrors.HasCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestUpdateStatusCompletedNotifies(t *testing.T) {
	t.Parallel()

	repo := &stubOrdersRepo{
		order: &models.Order{ID: 10, UserID: 1, Status: enums.OrderStatusInProgress, AssignedTo: int64Ptr(7)},
	}
	svc, notif := newTestService(t, repo, true)

	updated, err := svc.UpdateStatus(context.Background(), UpdateStatusInput{
		OrderID: 10,
		Status:  enums.OrderStatusCompleted,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Status != enums.OrderStatusCompleted {
		t.Fatalf("status = %s, want completed", updated.Status)
	}
	if len(notif.sent) != 1 {
		t.Fatalf("notifications sent = %d, want 1", len(notif.sent))
	}
	if notif.sent[0].Type != enums.NotificationTypeOrderCompleted {
		t.Fatalf("notification type = %s", notif.sent[0].Type)
	}
}

func TestUpdateStatusNotificationFailureDoesNotFail(t *testing.T) {
	t.Parallel()

	repo := &stubOrdersRepo{
		order: &models.Order{ID: 10, UserID: 1, Status: enums.OrderStatusInProgress},
	}
	svc, notif := newTestService(t, repo, true)
	notif.err = context.DeadlineExceeded

	_, err := svc.UpdateStatus(context.Background(), UpdateStatusInput{
		OrderID: 10,
		Status:  enums.OrderStatusCompleted,
	})
	if err != nil {
		t.Fatalf("notification failure must not fail the transition: %v", err)
	}
}

func TestUpdateStatusMissingOrder(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t, &stubOrdersRepo{}, true)

	_, err := svc.UpdateStatus(context.Background(), UpdateStatusInput{
		OrderID: 10,
		Status:  enums.OrderStatusInProgress,
	})
	if !pkgerrors.HasCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func newTestService(t *testing.T, repo Repository, userExists bool) (Service, *stubNotifier) {
	t.Helper()
	notif := &stubNotifier{}
	svc, err := NewService(repo, stubTxRunner{}, userLoaderFunc(func(ctx context.Context, id int64) (*models.User, error) {
		if !userExists {
			return nil, gorm.ErrRecordNotFound
		}
		return &models.User{ID: id}, nil
	}), notif, testLogger())
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc, notif
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "orders-test"})
}

type userLoaderFunc func(ctx context.Context, id int64) (*models.User, error)

func (f userLoaderFunc) FindByID(ctx context.Context, id int64) (*models.User, error) {
	return f(ctx, id)
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type stubNotifier struct {
	sent []notifications.NotifyInput
	err  error
}

func (s *stubNotifier) Notify(ctx context.Context, tx *gorm.DB, input notifications.NotifyInput) (*models.Notification, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.sent = append(s.sent, input)
	return &models.Notification{ID: int64(len(s.sent))}, nil
}

type stubOrdersRepo struct {
	order *models.Order
}

func (s *stubOrdersRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubOrdersRepo) Create(ctx context.Context, order *models.Order) (*models.Order, error) {
	return order, nil
}

func (s *stubOrdersRepo) CreateItems(ctx context.Context, items []models.OrderItem) error {
	return nil
}

func (s *stubOrdersRepo) FindByID(ctx context.Context, id int64) (*models.Order, error) {
	if s.order == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return s.order, nil
}

func (s *stubOrdersRepo) FindByIDForUpdate(ctx context.Context, id int64) (*models.Order, error) {
	return s.FindByID(ctx, id)
}

func (s *stubOrdersRepo) FindByIDAndUser(ctx context.Context, id, userID int64) (*models.Order, error) {
	if s.order == nil || s.order.UserID != userID {
		return nil, gorm.ErrRecordNotFound
	}
	return s.order, nil
}

func (s *stubOrdersRepo) ListByUser(ctx context.Context, userID int64, limit, offset int) ([]models.Order, error) {
	return nil, nil
}

func (s *stubOrdersRepo) CountByUser(ctx context.Context, userID int64) (int64, error) {
	return 0, nil
}

func (s *stubOrdersRepo) ListAll(ctx context.Context, limit, offset int) ([]models.Order, error) {
	return nil, nil
}

func (s *stubOrdersRepo) CountAll(ctx context.Context) (int64, error) { return 0, nil }

func (s *stubOrdersRepo) UpdateStatus(ctx context.Context, id int64, status enums.OrderStatus, assignedTo *int64) error {
	return nil
}

func (s *stubOrdersRepo) SetReviewed(ctx context.Context, id, reviewID int64) error { return nil }
