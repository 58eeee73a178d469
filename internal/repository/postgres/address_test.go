package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrsourodip/helloKirana/internal/domain"
	apperrors "github.com/mrsourodip/helloKirana/pkg/errors"
)

func newAddressTestFixture(t *testing.T) (*AddressRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	repo := NewAddressRepository(mock)
	return repo, mock
}

func sampleAddress() *domain.Address {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &domain.Address{
		ID:         "addr-1",
		UserID:     "u-1234",
		Kind:       domain.AddressKindHome,
		Street:     "14 MG Road",
		City:       "Bengaluru",
		Region:     "Karnataka",
		PostalCode: "560001",
		IsDefault:  false,
		CreatedAt:  now,
	}
}

func addressRow(a *domain.Address) *pgxmock.Rows {
	return pgxmock.NewRows([]string{
		"id", "user_id", "kind", "street", "city", "region",
		"postal_code", "is_default", "created_at",
	}).AddRow(
		a.ID, a.UserID, a.Kind, a.Street, a.City, a.Region,
		a.PostalCode, a.IsDefault, a.CreatedAt,
	)
}

// ---------------------------------------------------------------------------
// Create
// ---------------------------------------------------------------------------

func TestAddressRepository_Create_FirstAddressForcedDefault(t *testing.T) {
	repo, mock := newAddressTestFixture(t)
	defer mock.Close()

	a := sampleAddress()
	a.IsDefault = false

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM addresses").
		WithArgs(a.UserID).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectExec("INSERT INTO addresses").
		WithArgs(a.ID, a.UserID, a.Kind, a.Street, a.City, a.Region, a.PostalCode, true, a.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	err := repo.Create(context.Background(), a)
	require.NoError(t, err)
	assert.True(t, a.IsDefault, "first address must be promoted to default")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddressRepository_Create_RequestedDefaultClearsPrevious(t *testing.T) {
	repo, mock := newAddressTestFixture(t)
	defer mock.Close()

	a := sampleAddress()
	a.IsDefault = true

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM addresses").
		WithArgs(a.UserID).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectExec("UPDATE addresses SET is_default = false").
		WithArgs(a.UserID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec("INSERT INTO addresses").
		WithArgs(a.ID, a.UserID, a.Kind, a.Street, a.City, a.Region, a.PostalCode, true, a.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	err := repo.Create(context.Background(), a)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddressRepository_Create_NonDefaultSkipsClear(t *testing.T) {
	repo, mock := newAddressTestFixture(t)
	defer mock.Close()

	a := sampleAddress()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM addresses").
		WithArgs(a.UserID).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectExec("INSERT INTO addresses").
		WithArgs(a.ID, a.UserID, a.Kind, a.Street, a.City, a.Region, a.PostalCode, false, a.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	err := repo.Create(context.Background(), a)
	require.NoError(t, err)
	assert.False(t, a.IsDefault)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ---------------------------------------------------------------------------
// GetByID / ListByUserID
// ---------------------------------------------------------------------------

func TestAddressRepository_GetByID_Success(t *testing.T) {
	repo, mock := newAddressTestFixture(t)
	defer mock.Close()

	a := sampleAddress()

	mock.ExpectQuery("SELECT .+ FROM addresses").
		WithArgs(a.ID, a.UserID).
		WillReturnRows(addressRow(a))

	got, err := repo.GetByID(context.Background(), a.UserID, a.ID)
	require.NoError(t, err)
	assert.Equal(t, a.ID, got.ID)
	assert.Equal(t, a.PostalCode, got.PostalCode)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddressRepository_GetByID_WrongOwnerIsNotFound(t *testing.T) {
	repo, mock := newAddressTestFixture(t)
	defer mock.Close()

	mock.ExpectQuery("SELECT .+ FROM addresses").
		WithArgs("addr-1", "other-user").
		WillReturnError(pgx.ErrNoRows)

	got, err := repo.GetByID(context.Background(), "other-user", "addr-1")
	assert.Nil(t, got)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddressRepository_ListByUserID(t *testing.T) {
	repo, mock := newAddressTestFixture(t)
	defer mock.Close()

	a := sampleAddress()

	mock.ExpectQuery("SELECT .+ FROM addresses").
		WithArgs(a.UserID).
		WillReturnRows(addressRow(a))

	got, err := repo.ListByUserID(context.Background(), a.UserID)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, a.ID, got[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ---------------------------------------------------------------------------
// Delete
// ---------------------------------------------------------------------------

func TestAddressRepository_Delete_NonDefault(t *testing.T) {
	repo, mock := newAddressTestFixture(t)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectQuery("DELETE FROM addresses").
		WithArgs("addr-1", "u-1234").
		WillReturnRows(pgxmock.NewRows([]string{"is_default"}).AddRow(false))
	mock.ExpectCommit()

	err := repo.Delete(context.Background(), "u-1234", "addr-1")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddressRepository_Delete_DefaultPromotesMostRecent(t *testing.T) {
	repo, mock := newAddressTestFixture(t)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectQuery("DELETE FROM addresses").
		WithArgs("addr-1", "u-1234").
		WillReturnRows(pgxmock.NewRows([]string{"is_default"}).AddRow(true))
	mock.ExpectExec("UPDATE addresses SET is_default = true").
		WithArgs("u-1234").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	err := repo.Delete(context.Background(), "u-1234", "addr-1")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddressRepository_Delete_NotFound(t *testing.T) {
	repo, mock := newAddressTestFixture(t)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectQuery("DELETE FROM addresses").
		WithArgs("missing", "u-1234").
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectRollback()

	err := repo.Delete(context.Background(), "u-1234", "missing")
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ---------------------------------------------------------------------------
// SetDefault
// ---------------------------------------------------------------------------

func TestAddressRepository_SetDefault_Success(t *testing.T) {
	repo, mock := newAddressTestFixture(t)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE addresses SET is_default = false").
		WithArgs("u-1234").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec("UPDATE addresses SET is_default = true").
		WithArgs("addr-2", "u-1234").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	err := repo.SetDefault(context.Background(), "u-1234", "addr-2")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddressRepository_SetDefault_WrongOwnerIsNotFound(t *testing.T) {
	repo, mock := newAddressTestFixture(t)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE addresses SET is_default = false").
		WithArgs("u-1234").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec("UPDATE addresses SET is_default = true").
		WithArgs("addr-of-someone-else", "u-1234").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	mock.ExpectRollback()

	err := repo.SetDefault(context.Background(), "u-1234", "addr-of-someone-else")
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}
