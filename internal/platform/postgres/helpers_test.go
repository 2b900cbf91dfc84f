package postgres

import (
	"database/sql"
	"database/sql/driver"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/brianvoe/gofakeit/v6"
	"github.com/gmubooktrading/api/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// arrayConverter lets sqlmock accept []string arguments used for uuid[] parameters.
type arrayConverter struct{}

func (arrayConverter) ConvertValue(v any) (driver.Value, error) {
	if s, ok := v.([]string); ok {
		return s, nil
	}
	return driver.DefaultParameterConverter.ConvertValue(v)
}

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.ValueConverterOption(arrayConverter{}))
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return db, mock
}

var listingCols = []string{
	"id", "user_id", "book_id", "type", "price", "condition", "description",
	"rent_duration_value", "rent_duration_unit", "status", "created_at", "updated_at",
}

var requestCols = []string{
	"id", "user_id", "book_title", "author", "isbn", "desired_condition", "description",
	"status", "created_at", "updated_at",
}

var bookCols = []string{"id", "title", "author", "isbn", "is_active", "created_at"}

func fakeSaleListing() *domain.Listing {
	desc := gofakeit.Sentence(8)
	now := time.Now().UTC()
	return &domain.Listing{
		ID:          uuid.New(),
		UserID:      uuid.New(),
		Type:        domain.ListingTypeSale,
		Price:       gofakeit.Price(1, 200),
		Condition:   domain.ConditionGood,
		Description: &desc,
		Status:      domain.ListingStatusActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}
