package cart

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/skillbazaar/marketplace-backend/pkg/db/models"
	pkgerrors "github.com/skillbazaar/marketplace-backend/pkg/errors"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestAddItemCreatesNewLine(t *testing.T) {
	t.Parallel()

	repo := &stubCartRepo{}
	svc := newTestService(t, repo, activeProfile())

	item, err := svc.AddItem(context.Background(), 1, AddItemInput{ProfileID: 9, UnitPrice: dec("250.00"), Quantity: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if item.Quantity != 2 {
		t.Fatalf("quantity = %d, want 2", item.Quantity)
	}
	if !item.LineTotal.Equal(dec("500.00")) {
		t.Fatalf("line total = %s, want 500.00", item.LineTotal)
	}
	if repo.created == nil {
		t.Fatal("expected Create to be called")
	}
}

func TestAddItemIncrementsExistingLine(t *testing.T) {
	t.Parallel()

	repo := &stubCartRepo{
		existing: &models.CartItem{ID: 5, UserID: 1, ProfileID: 9, Quantity: 1, UnitPrice: dec("250.00"), LineTotal: dec("250.00")},
	}
	svc := newTestService(t, repo, activeProfile())

	item, err := svc.AddItem(context.Background(), 1, AddItemInput{ProfileID: 9, UnitPrice: dec("250.00"), Quantity: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if item.Quantity != 3 {
		t.Fatalf("quantity = %d, want 3", item.Quantity)
	}
	if !item.LineTotal.Equal(dec("750.00")) {
		t.Fatalf("line total = %s, want 750.00", item.LineTotal)
	}
	if repo.created != nil {
		t.Fatal("expected Save, not Create")
	}
}

func TestAddItemDefaultsQuantityToOne(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, &stubCartRepo{}, activeProfile())

	item, err := svc.AddItem(context.Background(), 1, AddItemInput{ProfileID: 9, UnitPrice: dec("100")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if item.Quantity != 1 {
		t.Fatalf("quantity = %d, want 1", item.Quantity)
	}
}

func TestAddItemRejectsBadPrice(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, &stubCartRepo{}, activeProfile())

	for _, price := range []string{"0", "-10"} {
		_, err := svc.AddItem(context.Background(), 1, AddItemInput{ProfileID: 9, UnitPrice: dec(price)})
		if !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
			t.Fatalf("price %s: expected validation error, got %v", price, err)
		}
	}
}

func TestAddItemUnknownProfile(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, &stubCartRepo{}, nil)

	_, err := svc.AddItem(context.Background(), 1, AddItemInput{ProfileID: 9, UnitPrice: dec("100")})
	if !pkgerrors.HasCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestAddItemInactiveProfile(t *testing.T) {
	t.Parallel()

	profile := activeProfile()
	profile.IsActive = false
	svc := newTestService(t, &stubCartRepo{}, profile)

	_, err := svc.AddItem(context.Background(), 1, AddItemInput{ProfileID: 9, UnitPrice: dec("100")})
	if !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestUpdateQuantityRecomputesTotal(t *testing.T) {
	t.Parallel()

	repo := &stubCartRepo{
		existing: &models.CartItem{ID: 5, UserID: 1, ProfileID: 9, Quantity: 1, UnitPrice: dec("99.99"), LineTotal: dec("99.99")},
	}
	svc := newTestService(t, repo, activeProfile())

	item, err := svc.UpdateQuantity(context.Background(), 1, 5, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !item.LineTotal.Equal(dec("299.97")) {
		t.Fatalf("line total = %s, want 299.97", item.LineTotal)
	}
}

func TestUpdateQuantityRejectsBelowOne(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, &stubCartRepo{}, activeProfile())

	_, err := svc.UpdateQuantity(context.Background(), 1, 5, 0)
	if !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestUpdateQuantityMissingItem(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, &stubCartRepo{}, activeProfile())

	_, err := svc.UpdateQuantity(context.Background(), 1, 5, 3)
	if !pkgerrors.HasCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestRemoveItemIsIdempotent(t *testing.T) {
	t.Parallel()

	repo := &stubCartRepo{}
	svc := newTestService(t, repo, activeProfile())

	if err := svc.RemoveItem(context.Background(), 1, 9); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.RemoveItem(context.Background(), 1, 9); err != nil {
		t.Fatalf("second remove should be a no-op: %v", err)
	}
}

func activeProfile() *models.ServiceProfile {
	return &models.ServiceProfile{ID: 9, Title: "Backend Developer", IsActive: true, HourlyRate: dec("250.00")}
}

func newTestService(t *testing.T, repo Repository, profile *models.ServiceProfile) Service {
	t.Helper()
	svc, err := NewService(repo, stubTxRunner{}, profileLoaderFunc(func(ctx context.Context, id int64) (*models.ServiceProfile, error) {
		if profile == nil {
			return nil, gorm.ErrRecordNotFound
		}
		return profile, nil
	}))
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

type profileLoaderFunc func(ctx context.Context, id int64) (*models.ServiceProfile, error)

func (f profileLoaderFunc) FindByID(ctx context.Context, id int64) (*models.ServiceProfile, error) {
	return f(ctx, id)
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type stubCartRepo struct {
	existing *models.CartItem
	created  *models.CartItem
}

func (s *stubCartRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubCartRepo) Create(ctx context.Context, item *models.CartItem) (*models.CartItem, error) {
	s.created = item
	return item, nil
}

func (s *stubCartRepo) Save(ctx context.Context, item *models.CartItem) (*models.CartItem, error) {
	return item, nil
}

func (s *stubCartRepo) FindActiveByID(ctx context.Context, userID, cartItemID int64) (*models.CartItem, error) {
	if s.existing == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return s.existing, nil
}

func (s *stubCartRepo) FindActiveByProfile(ctx context.Context, userID, profileID int64) (*models.CartItem, error) {
	if s.existing == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return s.existing, nil
}

func (s *stubCartRepo) ListActive(ctx context.Context, userID int64) ([]models.CartItem, error) {
	return nil, nil
}

func (s *stubCartRepo) ListActiveForUpdate(ctx context.Context, userID int64) ([]models.CartItem, error) {
	return nil, nil
}

func (s *stubCartRepo) DeleteActiveByProfile(ctx context.Context, userID, profileID int64) error {
	return nil
}

func (s *stubCartRepo) MarkCheckedOut(ctx context.Context, userID int64, ids []int64) (int64, error) {
	return int64(len(ids)), nil
}
