package checkout

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/skillbazaar/marketplace-backend/internal/cart"
	"github.com/skillbazaar/marketplace-backend/internal/ledger"
	"github.com/skillbazaar/marketplace-backend/internal/notifications"
	"github.com/skillbazaar/marketplace-backend/internal/orders"
	"github.com/skillbazaar/marketplace-backend/internal/users"
	"github.com/skillbazaar/marketplace-backend/pkg/db/models"
	"github.com/skillbazaar/marketplace-backend/pkg/enums"
	pkgerrors "github.com/skillbazaar/marketplace-backend/pkg/errors"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// cartWorth100 is a two-line cart with line totals summing to 100.00.
func cartWorth100() []models.CartItem {
	return []models.CartItem{
		{ID: 1, UserID: 1, ProfileID: 9, Quantity: 2, UnitPrice: dec("20.00"), LineTotal: dec("40.00")},
		{ID: 2, UserID: 1, ProfileID: 12, Quantity: 3, UnitPrice: dec("20.00"), LineTotal: dec("60.00")},
	}
}

func TestExecuteKnownReferral(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.cartRepo.items = cartWorth100()
	env.usersRepo.byEmail["friend@example.com"] = &models.User{ID: 2, Email: "friend@example.com"}

	breakdown, err := env.svc.Execute(context.Background(), 1, ExecuteInput{ReferralEmail: "friend@example.com"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	assertAmount(t, "subtotal", breakdown.Subtotal, "100.00")
	assertAmount(t, "email credit", breakdown.EmailCredit, "5.00")
	assertAmount(t, "gst", breakdown.GST, "18.00")
	assertAmount(t, "final amount", breakdown.FinalAmount, "113.00")
	if breakdown.TotalHours != 5 {
		t.Fatalf("total hours = %d, want 5", breakdown.TotalHours)
	}

	// The referrer receives one pending credit of 5.00.
	if len(env.ledgerRepo.entries) != 1 {
		t.Fatalf("ledger entries = %d, want 1", len(env.ledgerRepo.entries))
	}
	credit := env.ledgerRepo.entries[0]
	if credit.UserID != 2 || credit.Type != enums.LedgerEntryTypeCredit {
		t.Fatalf("unexpected referral entry: %+v", credit)
	}
	if credit.Status != enums.LedgerEntryStatusPending {
		t.Fatalf("referral credit status = %s, want pending", credit.Status)
	}
	assertAmount(t, "referral credit amount", credit.Amount, "5.00")
}

func TestExecuteUnknownReferralIsSilentlyIgnored(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.cartRepo.items = cartWorth100()

	breakdown, err := env.svc.Execute(context.Background(), 1, ExecuteInput{ReferralEmail: "stranger@example.com"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	assertAmount(t, "email credit", breakdown.EmailCredit, "0")
	assertAmount(t, "final amount", breakdown.FinalAmount, "118.00")
	if len(env.ledgerRepo.entries) != 0 {
		t.Fatalf("no ledger entries expected, got %d", len(env.ledgerRepo.entries))
	}
}

func TestExecuteSelfReferralIsIgnored(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.cartRepo.items = cartWorth100()
	env.usersRepo.byEmail["me@example.com"] = &models.User{ID: 1, Email: "me@example.com"}

	breakdown, err := env.svc.Execute(context.Background(), 1, ExecuteInput{ReferralEmail: "me@example.com"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertAmount(t, "email credit", breakdown.EmailCredit, "0")
	assertAmount(t, "final amount", breakdown.FinalAmount, "118.00")
}

func TestExecuteStoredCreditsCoverTotal(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.cartRepo.items = cartWorth100()
	env.usersRepo.byEmail["friend@example.com"] = &models.User{ID: 2, Email: "friend@example.com"}
	env.ledgerRepo.balance = dec("200.00")

	breakdown, err := env.svc.Execute(context.Background(), 1, ExecuteInput{
		ReferralEmail:    "friend@example.com",
		UseStoredCredits: true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	assertAmount(t, "used credits", breakdown.UsedCredits, "113.00")
	assertAmount(t, "final amount", breakdown.FinalAmount, "0")
	if !env.usersRepo.lockedPurchaser {
		t.Fatal("expected purchaser row to be locked before reading balance")
	}

	// One settled debit of 113.00 for the purchaser plus the pending
	// referral credit.
	var debit *models.LedgerEntry
	for i := range env.ledgerRepo.entries {
		if env.ledgerRepo.entries[i].Type == enums.LedgerEntryTypeDebit {
			debit = env.ledgerRepo.entries[i]
		}
	}
	if debit == nil {
		t.Fatal("expected a debit ledger entry")
	}
	if debit.UserID != 1 || debit.Status != enums.LedgerEntryStatusSettled {
		t.Fatalf("unexpected debit entry: %+v", debit)
	}
	assertAmount(t, "debit amount", debit.Amount, "113.00")
}

func TestExecuteStoredCreditsPartial(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.cartRepo.items = cartWorth100()
	env.ledgerRepo.balance = dec("50.00")

	breakdown, err := env.svc.Execute(context.Background(), 1, ExecuteInput{UseStoredCredits: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertAmount(t, "used credits", breakdown.UsedCredits, "50.00")
	assertAmount(t, "final amount", breakdown.FinalAmount, "68.00")
}

func TestExecuteEmptyCart(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	_, err := env.svc.Execute(context.Background(), 1, ExecuteInput{})
	if !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if env.ordersRepo.order != nil {
		t.Fatal("no order may be created for an empty cart")
	}
}

func TestExecuteRacedCartItems(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.cartRepo.items = cartWorth100()
	env.cartRepo.flipShortfall = true

	_, err := env.svc.Execute(context.Background(), 1, ExecuteInput{})
	if !pkgerrors.HasCode(err, pkgerrors.CodeConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestExecuteSnapshotsCartLines(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.cartRepo.items = cartWorth100()

	breakdown, err := env.svc.Execute(context.Background(), 1, ExecuteInput{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(env.ordersRepo.items) != 2 {
		t.Fatalf("order items = %d, want 2", len(env.ordersRepo.items))
	}
	for i, item := range env.ordersRepo.items {
		if item.Status != enums.OrderStatusPlaced {
			t.Fatalf("item %d status = %s, want order placed", i, item.Status)
		}
		if item.OrderID != breakdown.OrderID {
			t.Fatalf("item %d not linked to order", i)
		}
	}
	if len(env.cartRepo.flippedIDs) != 2 {
		t.Fatalf("flipped cart items = %d, want 2", len(env.cartRepo.flippedIDs))
	}
	if len(env.notifRepo.created) != 1 {
		t.Fatalf("notifications = %d, want 1", len(env.notifRepo.created))
	}
	if env.notifRepo.created[0].Type != enums.NotificationTypeOrderPlaced {
		t.Fatalf("notification type = %s", env.notifRepo.created[0].Type)
	}
}

func assertAmount(t *testing.T, name string, got decimal.Decimal, want string) {
	t.Helper()
	if !got.Equal(dec(want)) {
		t.Fatalf("%s = %s, want %s", name, got, want)
	}
}

type testEnv struct {
	svc        Service
	cartRepo   *stubCartRepo
	ordersRepo *stubOrdersRepo
	ledgerRepo *stubLedgerRepo
	usersRepo  *stubUsersRepo
	notifRepo  *stubNotificationsRepo
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		cartRepo:   &stubCartRepo{},
		ordersRepo: &stubOrdersRepo{},
		ledgerRepo: &stubLedgerRepo{balance: decimal.Zero},
		usersRepo:  &stubUsersRepo{byEmail: map[string]*models.User{}},
		notifRepo:  &stubNotificationsRepo{},
	}
	svc, err := NewService(stubTxRunner{}, env.cartRepo, env.ordersRepo, env.ledgerRepo, env.usersRepo, env.notifRepo)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	env.svc = svc
	return env
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type stubCartRepo struct {
	items         []models.CartItem
	flippedIDs    []int64
	flipShortfall bool
}

func (s *stubCartRepo) WithTx(tx *gorm.DB) cart.Repository { return s }

func (s *stubCartRepo) Create(ctx context.Context, item *models.CartItem) (*models.CartItem, error) {
	return item, nil
}

func (s *stubCartRepo) Save(ctx context.Context, item *models.CartItem) (*models.CartItem, error) {
	return item, nil
}

func (s *stubCartRepo) FindActiveByID(ctx context.Context, userID, cartItemID int64) (*models.CartItem, error) {
	return nil, gorm.ErrRecordNotFound
}

func (s *stubCartRepo) FindActiveByProfile(ctx context.Context, userID, profileID int64) (*models.CartItem, error) {
	return nil, gorm.ErrRecordNotFound
}

func (s *stubCartRepo) ListActive(ctx context.Context, userID int64) ([]models.CartItem, error) {
	return s.items, nil
}

func (s *stubCartRepo) ListActiveForUpdate(ctx context.Context, userID int64) ([]models.CartItem, error) {
	return s.items, nil
}

func (s *stubCartRepo) DeleteActiveByProfile(ctx context.Context, userID, profileID int64) error {
	return nil
}

func (s *stubCartRepo) MarkCheckedOut(ctx context.Context, userID int64, ids []int64) (int64, error) {
	s.flippedIDs = ids
	if s.flipShortfall {
		return int64(len(ids)) - 1, nil
	}
	return int64(len(ids)), nil
}

type stubOrdersRepo struct {
	order *models.Order
	items []models.OrderItem
}

func (s *stubOrdersRepo) WithTx(tx *gorm.DB) orders.Repository { return s }

func (s *stubOrdersRepo) Create(ctx context.Context, order *models.Order) (*models.Order, error) {
	order.ID = 42
	order.CreatedAt = time.Now()
	s.order = order
	return order, nil
}

func (s *stubOrdersRepo) CreateItems(ctx context.Context, items []models.OrderItem) error {
	s.items = items
	return nil
}

func (s *stubOrdersRepo) FindByID(ctx context.Context, id int64) (*models.Order, error) {
	return nil, gorm.ErrRecordNotFound
}

func (s *stubOrdersRepo) FindByIDForUpdate(ctx context.Context, id int64) (*models.Order, error) {
	return nil, gorm.ErrRecordNotFound
}

func (s *stubOrdersRepo) FindByIDAndUser(ctx context.Context, id, userID int64) (*models.Order, error) {
	return nil, gorm.ErrRecordNotFound
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

type stubLedgerRepo struct {
	balance decimal.Decimal
	entries []*models.LedgerEntry
}

func (s *stubLedgerRepo) WithTx(tx *gorm.DB) ledger.Repository { return s }

func (s *stubLedgerRepo) Create(ctx context.Context, entry *models.LedgerEntry) (*models.LedgerEntry, error) {
	s.entries = append(s.entries, entry)
	return entry, nil
}

func (s *stubLedgerRepo) FindByID(ctx context.Context, id int64) (*models.LedgerEntry, error) {
	return nil, gorm.ErrRecordNotFound
}

func (s *stubLedgerRepo) ListByUser(ctx context.Context, userID int64, limit, offset int) ([]models.LedgerEntry, error) {
	return nil, nil
}

func (s *stubLedgerRepo) CountByUser(ctx context.Context, userID int64) (int64, error) {
	return 0, nil
}

func (s *stubLedgerRepo) AvailableBalance(ctx context.Context, userID int64) (decimal.Decimal, error) {
	return s.balance, nil
}

func (s *stubLedgerRepo) MarkSettled(ctx context.Context, id int64) error { return nil }

type stubUsersRepo struct {
	byEmail         map[string]*models.User
	lockedPurchaser bool
}

func (s *stubUsersRepo) WithTx(tx *gorm.DB) users.Repository { return s }

func (s *stubUsersRepo) FindByID(ctx context.Context, id int64) (*models.User, error) {
	return &models.User{ID: id}, nil
}

func (s *stubUsersRepo) FindByIDForUpdate(ctx context.Context, id int64) (*models.User, error) {
	s.lockedPurchaser = true
	return &models.User{ID: id}, nil
}

func (s *stubUsersRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if user, ok := s.byEmail[email]; ok {
		return user, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubUsersRepo) ApplyRating(ctx context.Context, id int64, rating decimal.Decimal) (*models.User, error) {
	return &models.User{ID: id}, nil
}

func (s *stubUsersRepo) ReplaceRating(ctx context.Context, id int64, oldRating, newRating decimal.Decimal) (*models.User, error) {
	return &models.User{ID: id}, nil
}

type stubNotificationsRepo struct {
	created []*models.Notification
}

func (s *stubNotificationsRepo) WithTx(tx *gorm.DB) notifications.Repository { return s }

func (s *stubNotificationsRepo) Create(ctx context.Context, notification *models.Notification) (*models.Notification, error) {
	s.created = append(s.created, notification)
	return notification, nil
}

func (s *stubNotificationsRepo) ListByUser(ctx context.Context, userID int64, limit, offset int) ([]models.Notification, error) {
	return nil, nil
}

func (s *stubNotificationsRepo) CountByUser(ctx context.Context, userID int64) (int64, error) {
	return 0, nil
}

func (s *stubNotificationsRepo) MarkRead(ctx context.Context, userID, notificationID int64, at time.Time) (int64, error) {
	return 0, nil
}

func (s *stubNotificationsRepo) MarkAllRead(ctx context.Context, userID int64, at time.Time) (int64, error) {
	return 0, nil
}
