package profiles

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/skillbazaar/marketplace-backend/pkg/db/models"
	pkgerrors "github.com/skillbazaar/marketplace-backend/pkg/errors"
	"github.com/skillbazaar/marketplace-backend/pkg/money"
	"github.com/skillbazaar/marketplace-backend/pkg/pagination"
)

// Service exposes service-profile management for the back office and
// read access for the storefront.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.ServiceProfile, error)
	Update(ctx context.Context, id int64, input UpdateInput) (*models.ServiceProfile, error)
	Get(ctx context.Context, id int64) (*models.ServiceProfile, error)
	List(ctx context.Context, params pagination.Params) ([]models.ServiceProfile, pagination.Meta, error)
}

type service struct {
	repo Repository
}

// NewService builds a profiles service backed by the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("profiles repository required")
	}
	return &service{repo: repo}, nil
}

// CreateInput captures a new marketplace listing.
type CreateInput struct {
	Title           string
	Tagline         string
	ExperienceRange string
	HourlyRate      decimal.Decimal
	ProfileImage    *string
}

// UpdateInput carries partial updates; nil fields are left untouched.
type UpdateInput struct {
	Title           *string
	Tagline         *string
	ExperienceRange *string
	HourlyRate      *decimal.Decimal
	ProfileImage    *string
	IsActive        *bool
}

// Create validates and persists a new profile.
func (s *service) Create(ctx context.Context, input CreateInput) (*models.ServiceProfile, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "title is required")
	}
	if !input.HourlyRate.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "hourly rate must be positive")
	}

	profile := &models.ServiceProfile{
		Title:           title,
		Tagline:         strings.TrimSpace(input.Tagline),
		ExperienceRange: strings.TrimSpace(input.ExperienceRange),
		HourlyRate:      money.Round2(input.HourlyRate),
		ProfileImage:    input.ProfileImage,
		IsActive:        true,
	}
	created, err := s.repo.Create(ctx, profile)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create profile")
	}
	return created, nil
}

// Update applies the provided fields to an existing profile. Rating
// aggregates are never writable through this path.
func (s *service) Update(ctx context.Context, id int64, input UpdateInput) (*models.ServiceProfile, error) {
	profile, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "title cannot be empty")
		}
		profile.Title = title
	}
	if input.Tagline != nil {
		profile.Tagline = strings.TrimSpace(*input.Tagline)
	}
	if input.ExperienceRange != nil {
		profile.ExperienceRange = strings.TrimSpace(*input.ExperienceRange)
	}
	if input.HourlyRate != nil {
		if !input.HourlyRate.IsPositive() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "hourly rate must be positive")
		}
		profile.HourlyRate = money.Round2(*input.HourlyRate)
	}
	if input.ProfileImage != nil {
		profile.ProfileImage = input.ProfileImage
	}
	if input.IsActive != nil {
		profile.IsActive = *input.IsActive
	}

	saved, err := s.repo.Save(ctx, profile)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update profile")
	}
	return saved, nil
}

// Get returns one profile or not-found.
func (s *service) Get(ctx context.Context, id int64) (*models.ServiceProfile, error) {
	if id <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "profile id is required")
	}
	profile, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "service profile not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load profile")
	}
	return profile, nil
}

// List returns a page of profiles.
func (s *service) List(ctx context.Context, params pagination.Params) ([]models.ServiceProfile, pagination.Meta, error) {
	params = pagination.Normalize(params)

	total, err := s.repo.Count(ctx)
	if err != nil {
		return nil, pagination.Meta{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count profiles")
	}
	rows, err := s.repo.List(ctx, params.Limit, params.Offset())
	if err != nil {
		return nil, pagination.Meta{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list profiles")
	}
	return rows, pagination.BuildMeta(params, total), nil
}
