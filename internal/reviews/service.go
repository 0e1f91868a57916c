package reviews

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/skillbazaar/marketplace-backend/internal/orders"
	"github.com/skillbazaar/marketplace-backend/internal/profiles"
	"github.com/skillbazaar/marketplace-backend/internal/users"
	"github.com/skillbazaar/marketplace-backend/pkg/db/models"
	"github.com/skillbazaar/marketplace-backend/pkg/enums"
	pkgerrors "github.com/skillbazaar/marketplace-backend/pkg/errors"
	"github.com/skillbazaar/marketplace-backend/pkg/pagination"
)

const maxCommentLength = 500

var (
	minRating = decimal.NewFromInt(1)
	maxRating = decimal.NewFromInt(5)
	ten       = decimal.NewFromInt(10)
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service exposes review submission and moderation.
type Service interface {
	Create(ctx context.Context, userID int64, input CreateInput) (*Result, error)
	Update(ctx context.Context, userID, reviewID int64, input UpdateInput) (*Result, error)
	GetByID(ctx context.Context, id int64) (*models.Review, error)
	GetByOrderID(ctx context.Context, orderID int64) (*models.Review, error)
	ListByService(ctx context.Context, serviceID int64, params pagination.Params) ([]models.Review, pagination.Meta, error)
	Deactivate(ctx context.Context, id int64) error
}

type service struct {
	repo      Repository
	orders    orders.Repository
	profiles  profiles.Repository
	providers users.Repository
	tx        txRunner
}

// NewService wires the review flow dependencies.
func NewService(repo Repository, ordersRepo orders.Repository, profilesRepo profiles.Repository, providersRepo users.Repository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("reviews repository required")
	}
	if ordersRepo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if profilesRepo == nil {
		return nil, fmt.Errorf("profiles repository required")
	}
	if providersRepo == nil {
		return nil, fmt.Errorf("users repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{
		repo:      repo,
		orders:    ordersRepo,
		profiles:  profilesRepo,
		providers: providersRepo,
		tx:        tx,
	}, nil
}

// CreateInput captures one review submission.
type CreateInput struct {
	OrderID int64
	Rating  decimal.Decimal
	Comment string
}

// Result carries a review together with the refreshed aggregates of
// both rated targets.
type Result struct {
	Review         *models.Review
	ServiceRating  decimal.Decimal
	ProviderRating decimal.Decimal
}

// Create submits a review for a completed order. One transaction
// creates the review, folds the rating into the service profile and the
// assigned provider, and flips the order to its terminal state.
func (s *service) Create(ctx context.Context, userID int64, input CreateInput) (*Result, error) {
	if userID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if input.OrderID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	if err := validateRating(input.Rating); err != nil {
		return nil, err
	}
	comment, err := validateComment(input.Comment)
	if err != nil {
		return nil, err
	}

	var result *Result
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		ordersTx := s.orders.WithTx(tx)

		order, err := ordersTx.FindByIDForUpdate(ctx, input.OrderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return err
		}
		if order.UserID != userID {
			return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		if order.Status == enums.OrderStatusReviewed || order.ReviewID != nil {
			return pkgerrors.New(pkgerrors.CodeConflict, "order has already been reviewed")
		}
		if order.Status != enums.OrderStatusCompleted {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "only completed orders can be reviewed")
		}
		if order.AssignedTo == nil {
			return pkgerrors.New(pkgerrors.CodeIntegrity, "completed order has no assignee")
		}
		if len(order.Items) == 0 {
			return pkgerrors.New(pkgerrors.CodeIntegrity, "order has no items")
		}
		serviceID := order.Items[0].ProfileID

		review := &models.Review{
			OrderID:    order.ID,
			UserID:     userID,
			ProviderID: *order.AssignedTo,
			ServiceID:  serviceID,
			Rating:     input.Rating,
			Comment:    comment,
		}
		created, err := s.repo.WithTx(tx).Create(ctx, review)
		if err != nil {
			if pkgerrors.IsUniqueViolation(err) {
				return pkgerrors.New(pkgerrors.CodeConflict, "order has already been reviewed")
			}
			return err
		}

		profile, err := s.profiles.WithTx(tx).ApplyRating(ctx, serviceID, input.Rating)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "service profile not found")
			}
			return err
		}
		provider, err := s.providers.WithTx(tx).ApplyRating(ctx, *order.AssignedTo, input.Rating)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "assigned provider not found")
			}
			return err
		}

		if err := ordersTx.SetReviewed(ctx, order.ID, created.ID); err != nil {
			return err
		}

		result = &Result{
			Review:         created,
			ServiceRating:  profile.OverallRating,
			ProviderRating: provider.OverallRating,
		}
		return nil
	})
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create review")
	}
	return result, nil
}

// UpdateInput carries an edit to an existing review.
type UpdateInput struct {
	Rating  decimal.Decimal
	Comment string
}

// Update rewrites the author's own review in place. The replaced rating
// is swapped out of both target aggregates in the same transaction, so
// the rating count never moves on an edit.
func (s *service) Update(ctx context.Context, userID, reviewID int64, input UpdateInput) (*Result, error) {
	if userID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if reviewID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "review id is required")
	}
	if err := validateRating(input.Rating); err != nil {
		return nil, err
	}
	comment, err := validateComment(input.Comment)
	if err != nil {
		return nil, err
	}

	var result *Result
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repoTx := s.repo.WithTx(tx)

		review, err := repoTx.FindByID(ctx, reviewID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "review not found")
			}
			return err
		}
		if review.UserID != userID {
			return pkgerrors.New(pkgerrors.CodeNotFound, "review not found")
		}
		if review.Status != enums.ReviewStatusActive {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "inactive reviews cannot be edited")
		}

		oldRating := review.Rating
		if err := repoTx.UpdateContent(ctx, review.ID, input.Rating, comment); err != nil {
			return err
		}

		profile, err := s.profiles.WithTx(tx).ReplaceRating(ctx, review.ServiceID, oldRating, input.Rating)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "service profile not found")
			}
			return err
		}
		provider, err := s.providers.WithTx(tx).ReplaceRating(ctx, review.ProviderID, oldRating, input.Rating)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "assigned provider not found")
			}
			return err
		}

		review.Rating = input.Rating
		review.Comment = comment
		result = &Result{
			Review:         review,
			ServiceRating:  profile.OverallRating,
			ProviderRating: provider.OverallRating,
		}
		return nil
	})
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update review")
	}
	return result, nil
}

// GetByID returns one review.
func (s *service) GetByID(ctx context.Context, id int64) (*models.Review, error) {
	if id <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "review id is required")
	}
	review, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "review not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load review")
	}
	return review, nil
}

// GetByOrderID returns the review attached to an order.
func (s *service) GetByOrderID(ctx context.Context, orderID int64) (*models.Review, error) {
	if orderID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	review, err := s.repo.FindByOrderID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "review not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load review")
	}
	return review, nil
}

// ListByService returns a page of active reviews for a service profile.
func (s *service) ListByService(ctx context.Context, serviceID int64, params pagination.Params) ([]models.Review, pagination.Meta, error) {
	if serviceID <= 0 {
		return nil, pagination.Meta{}, pkgerrors.New(pkgerrors.CodeValidation, "service id is required")
	}
	params = pagination.Normalize(params)

	total, err := s.repo.CountByService(ctx, serviceID)
	if err != nil {
		return nil, pagination.Meta{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count reviews")
	}
	rows, err := s.repo.ListByService(ctx, serviceID, params.Limit, params.Offset())
	if err != nil {
		return nil, pagination.Meta{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list reviews")
	}
	return rows, pagination.BuildMeta(params, total), nil
}

// Deactivate hides a review from public listings. The rating
// contribution is retained; this is moderation, not retraction.
func (s *service) Deactivate(ctx context.Context, id int64) error {
	if id <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "review id is required")
	}
	affected, err := s.repo.UpdateStatus(ctx, id, enums.ReviewStatusInactive)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deactivate review")
	}
	if affected == 0 {
		if _, err := s.GetByID(ctx, id); err != nil {
			return err
		}
		return pkgerrors.New(pkgerrors.CodeStateConflict, "review is already inactive")
	}
	return nil
}

func validateComment(comment string) (string, error) {
	comment = strings.TrimSpace(comment)
	if comment == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "comment is required")
	}
	if len(comment) > maxCommentLength {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "comment exceeds 500 characters")
	}
	return comment, nil
}

func validateRating(rating decimal.Decimal) error {
	if rating.LessThan(minRating) || rating.GreaterThan(maxRating) {
		return pkgerrors.New(pkgerrors.CodeValidation, "rating must be between 1 and 5")
	}
	// numeric(2,1) storage allows one decimal place.
	if !rating.Mul(ten).IsInteger() {
		return pkgerrors.New(pkgerrors.CodeValidation, "rating precision is limited to one decimal place")
	}
	return nil
}
