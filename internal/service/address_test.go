package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/mrsourodip/helloKirana/internal/domain"
	apperrors "github.com/mrsourodip/helloKirana/pkg/errors"
)

func newAddressService() (*AddressService, *mockAddressRepository) {
	repo := new(mockAddressRepository)
	return NewAddressService(repo, newTestLogger()), repo
}

func validAddressInput() CreateAddressInput {
	return CreateAddressInput{
		UserID:     "user-1",
		Kind:       domain.AddressKindHome,
		Street:     "14 MG Road",
		City:       "Bengaluru",
		Region:     "Karnataka",
		PostalCode: "560001",
	}
}

func TestAddAddress_Success(t *testing.T) {
	svc, repo := newAddressService()
	ctx := context.Background()

	repo.On("Create", ctx, mock.AnythingOfType("*domain.Address")).Return(nil)

	address, err := svc.AddAddress(ctx, validAddressInput())
	require.NoError(t, err)

	assert.NotEmpty(t, address.ID)
	assert.Equal(t, "user-1", address.UserID)
	assert.Equal(t, "560001", address.PostalCode)
	repo.AssertExpectations(t)
}

func TestAddAddress_InvalidKind(t *testing.T) {
	svc, repo := newAddressService()

	input := validAddressInput()
	input.Kind = "office"

	_, err := svc.AddAddress(context.Background(), input)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAddAddress_InvalidPincode(t *testing.T) {
	svc, _ := newAddressService()

	for _, pincode := range []string{"", "5600", "5600012", "56000a", "56 001"} {
		input := validAddressInput()
		input.PostalCode = pincode

		_, err := svc.AddAddress(context.Background(), input)
		assert.True(t, errors.Is(err, apperrors.ErrInvalidInput), "pincode %q should be rejected", pincode)
	}
}

func TestAddAddress_MissingStreet(t *testing.T) {
	svc, _ := newAddressService()

	input := validAddressInput()
	input.Street = ""

	_, err := svc.AddAddress(context.Background(), input)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
}

func TestSetDefaultAddress_ReturnsUpdatedAddress(t *testing.T) {
	svc, repo := newAddressService()
	ctx := context.Background()

	updated := testAddress()
	updated.IsDefault = true

	repo.On("SetDefault", ctx, "user-1", "addr-1").Return(nil)
	repo.On("GetByID", ctx, "user-1", "addr-1").Return(updated, nil)

	address, err := svc.SetDefaultAddress(ctx, "user-1", "addr-1")
	require.NoError(t, err)
	assert.True(t, address.IsDefault)
	repo.AssertExpectations(t)
}

func TestSetDefaultAddress_NotFound(t *testing.T) {
	svc, repo := newAddressService()
	ctx := context.Background()

	repo.On("SetDefault", ctx, "user-1", "addr-missing").Return(apperrors.NotFound("address", "addr-missing"))

	_, err := svc.SetDefaultAddress(ctx, "user-1", "addr-missing")
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestRemoveAddress_PropagatesNotFound(t *testing.T) {
	svc, repo := newAddressService()
	ctx := context.Background()

	repo.On("Delete", ctx, "user-1", "addr-missing").Return(apperrors.NotFound("address", "addr-missing"))

	err := svc.RemoveAddress(ctx, "user-1", "addr-missing")
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestListAddresses(t *testing.T) {
	svc, repo := newAddressService()
	ctx := context.Background()

	repo.On("ListByUserID", ctx, "user-1").Return([]domain.Address{*testAddress()}, nil)

	addresses, err := svc.ListAddresses(ctx, "user-1")
	require.NoError(t, err)
	assert.Len(t, addresses, 1)
}
