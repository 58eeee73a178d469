package service

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	"github.com/google/uuid"

	"github.com/mrsourodip/helloKirana/internal/domain"
	"github.com/mrsourodip/helloKirana/internal/repository"
	apperrors "github.com/mrsourodip/helloKirana/pkg/errors"
)

var pincodeRe = regexp.MustCompile(`^[0-9]{6}$`)

// AddressService implements the business logic for the address book.
type AddressService struct {
	repo   repository.AddressRepository
	logger *slog.Logger
}

// NewAddressService creates a new address service.
func NewAddressService(repo repository.AddressRepository, logger *slog.Logger) *AddressService {
	return &AddressService{
		repo:   repo,
		logger: logger,
	}
}

// CreateAddressInput holds the parameters for adding an address.
type CreateAddressInput struct {
	UserID     string
	Kind       string
	Street     string
	City       string
	Region     string
	PostalCode string
	IsDefault  bool
}

// ListAddresses returns the user's addresses, newest first.
func (s *AddressService) ListAddresses(ctx context.Context, userID string) ([]domain.Address, error) {
	addresses, err := s.repo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list addresses: %w", err)
	}
	return addresses, nil
}

// AddAddress validates and stores a new address. The repository enforces the
// single-default invariant (first address forced default, requested default
// clears the previous one).
func (s *AddressService) AddAddress(ctx context.Context, input CreateAddressInput) (*domain.Address, error) {
	if input.UserID == "" {
		return nil, apperrors.InvalidInput("user_id is required")
	}
	if !domain.IsValidAddressKind(input.Kind) {
		return nil, apperrors.InvalidInput("kind must be one of home, work, other")
	}
	if !pincodeRe.MatchString(input.PostalCode) {
		return nil, apperrors.InvalidInput("postal_code must be exactly 6 digits")
	}
	if input.Street == "" || input.City == "" {
		return nil, apperrors.InvalidInput("street and city are required")
	}

	address := &domain.Address{
		ID:         uuid.New().String(),
		UserID:     input.UserID,
		Kind:       input.Kind,
		Street:     input.Street,
		City:       input.City,
		Region:     input.Region,
		PostalCode: input.PostalCode,
		IsDefault:  input.IsDefault,
		CreatedAt:  time.Now().UTC(),
	}

	if err := s.repo.Create(ctx, address); err != nil {
		return nil, fmt.Errorf("create address: %w", err)
	}

	s.logger.InfoContext(ctx, "address added",
		slog.String("address_id", address.ID),
		slog.String("user_id", address.UserID),
		slog.Bool("is_default", address.IsDefault),
	)

	return address, nil
}

// RemoveAddress deletes one of the user's addresses. If the deleted address
// was the default, the repository promotes the most recently created
// remaining one.
func (s *AddressService) RemoveAddress(ctx context.Context, userID, addressID string) error {
	if err := s.repo.Delete(ctx, userID, addressID); err != nil {
		return fmt.Errorf("remove address: %w", err)
	}

	s.logger.InfoContext(ctx, "address removed",
		slog.String("address_id", addressID),
		slog.String("user_id", userID),
	)

	return nil
}

// SetDefaultAddress makes the given address the user's default and returns
// the updated address.
func (s *AddressService) SetDefaultAddress(ctx context.Context, userID, addressID string) (*domain.Address, error) {
	if err := s.repo.SetDefault(ctx, userID, addressID); err != nil {
		return nil, fmt.Errorf("set default address: %w", err)
	}

	address, err := s.repo.GetByID(ctx, userID, addressID)
	if err != nil {
		return nil, fmt.Errorf("reload default address: %w", err)
	}

	s.logger.InfoContext(ctx, "default address changed",
		slog.String("address_id", addressID),
		slog.String("user_id", userID),
	)

	return address, nil
}
