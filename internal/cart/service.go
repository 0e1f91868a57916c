package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/skillbazaar/marketplace-backend/pkg/db/models"
	pkgerrors "github.com/skillbazaar/marketplace-backend/pkg/errors"
	"github.com/skillbazaar/marketplace-backend/pkg/money"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type profileLoader interface {
	FindByID(ctx context.Context, id int64) (*models.ServiceProfile, error)
}

// Service exposes cart operations for the authenticated customer.
type Service interface {
	AddItem(ctx context.Context, userID int64, input AddItemInput) (*models.CartItem, error)
	UpdateQuantity(ctx context.Context, userID, cartItemID int64, quantity int) (*models.CartItem, error)
	RemoveItem(ctx context.Context, userID, profileID int64) error
	ListActive(ctx context.Context, userID int64) ([]models.CartItem, error)
}

type service struct {
	repo     Repository
	tx       txRunner
	profiles profileLoader
}

// NewService builds a cart service backed by the provided stack.
func NewService(repo Repository, tx txRunner, profiles profileLoader) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if profiles == nil {
		return nil, fmt.Errorf("profile loader required")
	}
	return &service{repo: repo, tx: tx, profiles: profiles}, nil
}

// AddItemInput captures the payload for adding a service to the cart.
type AddItemInput struct {
	ProfileID int64
	UnitPrice decimal.Decimal
	Quantity  int
}

// AddItem upserts an active cart line for the profile: an existing line
// gains the requested quantity, otherwise a new line is created.
func (s *service) AddItem(ctx context.Context, userID int64, input AddItemInput) (*models.CartItem, error) {
	if userID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if input.ProfileID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "profile id is required")
	}
	if !input.UnitPrice.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unit price must be positive")
	}
	quantity := input.Quantity
	if quantity == 0 {
		quantity = 1
	}
	if quantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}

	profile, err := s.profiles.FindByID(ctx, input.ProfileID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "service profile not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load service profile")
	}
	if !profile.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "service profile is not available")
	}

	unitPrice := money.Round2(input.UnitPrice)

	var saved *models.CartItem
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		existing, err := txRepo.FindActiveByProfile(ctx, userID, input.ProfileID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		if existing != nil {
			existing.Quantity += quantity
			existing.UnitPrice = unitPrice
			existing.LineTotal = lineTotal(unitPrice, existing.Quantity)
			saved, err = txRepo.Save(ctx, existing)
			return err
		}

		item := &models.CartItem{
			UserID:    userID,
			ProfileID: input.ProfileID,
			Quantity:  quantity,
			UnitPrice: unitPrice,
			LineTotal: lineTotal(unitPrice, quantity),
		}
		saved, err = txRepo.Create(ctx, item)
		return err
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist cart item")
	}
	return saved, nil
}

// UpdateQuantity replaces the quantity of an active line and recomputes
// its total.
func (s *service) UpdateQuantity(ctx context.Context, userID, cartItemID int64, quantity int) (*models.CartItem, error) {
	if userID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if cartItemID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart item id is required")
	}
	if quantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}

	var saved *models.CartItem
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		item, err := txRepo.FindActiveByID(ctx, userID, cartItemID)
		if err != nil {
			return err
		}
		item.Quantity = quantity
		item.LineTotal = lineTotal(item.UnitPrice, quantity)
		saved, err = txRepo.Save(ctx, item)
		return err
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update cart item")
	}
	return saved, nil
}

// RemoveItem deletes the user's active line for the profile. Removing a
// line that does not exist is a no-op.
func (s *service) RemoveItem(ctx context.Context, userID, profileID int64) error {
	if userID <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if profileID <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "profile id is required")
	}
	if err := s.repo.DeleteActiveByProfile(ctx, userID, profileID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove cart item")
	}
	return nil
}

// ListActive returns the user's active cart with profile display data.
// An empty cart is an empty list, not an error.
func (s *service) ListActive(ctx context.Context, userID int64) ([]models.CartItem, error) {
	if userID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	rows, err := s.repo.ListActive(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list cart items")
	}
	return rows, nil
}

func lineTotal(unitPrice decimal.Decimal, quantity int) decimal.Decimal {
	return money.Round2(unitPrice.Mul(decimal.NewFromInt(int64(quantity))))
}
