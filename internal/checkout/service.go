package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"

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
	"github.com/skillbazaar/marketplace-backend/pkg/money"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service runs the checkout pipeline.
type Service interface {
	Execute(ctx context.Context, userID int64, input ExecuteInput) (*Breakdown, error)
}

type service struct {
	tx            txRunner
	cartRepo      cart.Repository
	ordersRepo    orders.Repository
	ledgerRepo    ledger.Repository
	usersRepo     users.Repository
	notifications notifications.Repository
}

// NewService wires the checkout pipeline dependencies.
func NewService(
	tx txRunner,
	cartRepo cart.Repository,
	ordersRepo orders.Repository,
	ledgerRepo ledger.Repository,
	usersRepo users.Repository,
	notificationsRepo notifications.Repository,
) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if cartRepo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if ordersRepo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if ledgerRepo == nil {
		return nil, fmt.Errorf("ledger repository required")
	}
	if usersRepo == nil {
		return nil, fmt.Errorf("users repository required")
	}
	if notificationsRepo == nil {
		return nil, fmt.Errorf("notifications repository required")
	}
	return &service{
		tx:            tx,
		cartRepo:      cartRepo,
		ordersRepo:    ordersRepo,
		ledgerRepo:    ledgerRepo,
		usersRepo:     usersRepo,
		notifications: notificationsRepo,
	}, nil
}

// ExecuteInput captures the optional checkout levers.
type ExecuteInput struct {
	ReferralEmail    string
	UseStoredCredits bool
}

// Breakdown is the monetary result of one checkout, returned to the
// client for display.
type Breakdown struct {
	OrderID     int64           `json:"order_id"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	GST         decimal.Decimal `json:"gst"`
	EmailCredit decimal.Decimal `json:"email_credit"`
	UsedCredits decimal.Decimal `json:"used_credits"`
	FinalAmount decimal.Decimal `json:"final_amount"`
	TotalHours  int             `json:"total_hours"`
}

// Execute converts the user's active cart into an order inside a single
// transaction. The cart rows are locked for the duration, so a
// concurrent second checkout on the same cart serializes behind this
// one and finds an empty cart. When stored credits are redeemed the
// purchaser's user row is locked as well, serializing balance reads
// against concurrent debits.
func (s *service) Execute(ctx context.Context, userID int64, input ExecuteInput) (*Breakdown, error) {
	if userID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	referralEmail := strings.ToLower(strings.TrimSpace(input.ReferralEmail))

	var breakdown *Breakdown
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		cartTx := s.cartRepo.WithTx(tx)
		usersTx := s.usersRepo.WithTx(tx)
		ledgerTx := s.ledgerRepo.WithTx(tx)
		ordersTx := s.ordersRepo.WithTx(tx)

		items, err := cartTx.ListActiveForUpdate(ctx, userID)
		if err != nil {
			return err
		}
		if len(items) == 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
		}

		subtotal := decimal.Zero
		totalHours := 0
		for _, item := range items {
			subtotal = subtotal.Add(money.Round2(item.LineTotal))
			totalHours += item.Quantity
		}
		subtotal = money.Round2(subtotal)

		// An unknown or self-referencing referral email is silently
		// ignored so the endpoint never leaks which emails exist.
		emailCredit := decimal.Zero
		var referrerID int64
		if referralEmail != "" {
			referrer, err := usersTx.FindByEmail(ctx, referralEmail)
			if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			if referrer != nil && referrer.ID != userID {
				emailCredit = money.Round2(subtotal.Mul(money.ReferralRate))
				referrerID = referrer.ID
			}
		}

		gst := money.Round2(subtotal.Mul(money.GSTRate))
		totalBeforeCredits := money.Round2(subtotal.Add(gst))
		afterEmailCredit := money.Round2(totalBeforeCredits.Sub(emailCredit))

		usedCredits := decimal.Zero
		if input.UseStoredCredits {
			if _, err := usersTx.FindByIDForUpdate(ctx, userID); err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
				}
				return err
			}
			available, err := ledgerTx.AvailableBalance(ctx, userID)
			if err != nil {
				return err
			}
			usedCredits = money.Round2(money.Min(available, afterEmailCredit))
		}

		finalAmount := money.Round2(afterEmailCredit.Sub(usedCredits))
		if finalAmount.IsNegative() {
			return pkgerrors.New(pkgerrors.CodeIntegrity, "applied credits exceed order total")
		}

		order := &models.Order{
			UserID:        userID,
			Subtotal:      subtotal,
			GSTAmount:     gst,
			CreditApplied: money.Round2(emailCredit.Add(usedCredits)),
			TotalAmount:   finalAmount,
			TotalHours:    totalHours,
			Status:        enums.OrderStatusPlaced,
		}
		if _, err := ordersTx.Create(ctx, order); err != nil {
			return err
		}

		orderItems := make([]models.OrderItem, 0, len(items))
		cartItemIDs := make([]int64, 0, len(items))
		for _, item := range items {
			orderItems = append(orderItems, models.OrderItem{
				OrderID:    order.ID,
				CartItemID: item.ID,
				ProfileID:  item.ProfileID,
				Quantity:   item.Quantity,
				UnitPrice:  item.UnitPrice,
				LineTotal:  money.Round2(item.LineTotal),
				Status:     enums.OrderStatusPlaced,
			})
			cartItemIDs = append(cartItemIDs, item.ID)
		}
		if err := ordersTx.CreateItems(ctx, orderItems); err != nil {
			return err
		}

		flipped, err := cartTx.MarkCheckedOut(ctx, userID, cartItemIDs)
		if err != nil {
			return err
		}
		if flipped != int64(len(cartItemIDs)) {
			return pkgerrors.New(pkgerrors.CodeConflict, "cart items already checked out")
		}

		if usedCredits.IsPositive() {
			debit, err := ledger.NewDebitEntry(userID, usedCredits, order.ID, "stored credits redeemed at checkout")
			if err != nil {
				return err
			}
			if _, err := ledgerTx.Create(ctx, debit); err != nil {
				return err
			}
		}

		if referrerID != 0 && emailCredit.IsPositive() {
			credit, err := ledger.NewCreditEntry(referrerID, emailCredit, &order.ID, enums.LedgerEntryStatusPending, "referral reward")
			if err != nil {
				return err
			}
			if _, err := ledgerTx.Create(ctx, credit); err != nil {
				return err
			}
		}

		if _, err := s.notifications.WithTx(tx).Create(ctx, &models.Notification{
			UserID:  userID,
			Type:    enums.NotificationTypeOrderPlaced,
			Title:   "Order placed",
			Message: fmt.Sprintf("Order #%d has been placed.", order.ID),
		}); err != nil {
			return err
		}

		breakdown = &Breakdown{
			OrderID:     order.ID,
			Subtotal:    subtotal,
			GST:         gst,
			EmailCredit: emailCredit,
			UsedCredits: usedCredits,
			FinalAmount: finalAmount,
			TotalHours:  totalHours,
		}
		return nil
	})
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute checkout")
	}
	return breakdown, nil
}
