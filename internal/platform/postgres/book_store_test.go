package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/brianvoe/gofakeit/v6"
	"github.com/gmubooktrading/api/internal/domain"
	"github.com/gmubooktrading/api/internal/store"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBookStore_Create(t *testing.T) {
	t.Parallel()
	db, mock := newMockDB(t)
	s := NewPostgresBookStore(db, nil)

	author := gofakeit.Name()
	book, err := domain.NewBook(gofakeit.BookTitle(), &author, nil)
	require.NoError(t, err)

	mock.ExpectExec("INSERT INTO books").
		WithArgs(book.ID, book.Title, author, nil, true, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, s.Create(context.Background(), book))
}

func TestBookStore_GetByID(t *testing.T) {
	t.Parallel()

	t.Run("found", func(t *testing.T) {
		t.Parallel()
		db, mock := newMockDB(t)
		s := NewPostgresBookStore(db, nil)
		id := uuid.New()

		mock.ExpectQuery(`SELECT (.+) FROM books WHERE id = \$1`).
			WithArgs(id).
			WillReturnRows(sqlmock.NewRows(bookCols).
				AddRow(id.String(), "Operating Systems", nil, "978-1", true, time.Now()))

		got, err := s.GetByID(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, "Operating Systems", got.Title)
		assert.Nil(t, got.Author)
		assert.Equal(t, "978-1", *got.ISBN)
	})

	t.Run("not found", func(t *testing.T) {
		t.Parallel()
		db, mock := newMockDB(t)
		s := NewPostgresBookStore(db, nil)

		mock.ExpectQuery("SELECT (.+) FROM books").WillReturnRows(sqlmock.NewRows(bookCols))

		_, err := s.GetByID(context.Background(), uuid.New())
		assert.ErrorIs(t, err, store.ErrBookNotFound)
	})
}

func TestBookStore_GetByIDs(t *testing.T) {
	t.Parallel()

	t.Run("batched lookup dedupes ids", func(t *testing.T) {
		t.Parallel()
		db, mock := newMockDB(t)
		s := NewPostgresBookStore(db, nil)
		a, b := uuid.New(), uuid.New()

		mock.ExpectQuery(`SELECT (.+) FROM books WHERE id = ANY\(\$1::uuid\[\]\)`).
			WithArgs([]string{a.String(), b.String()}).
			WillReturnRows(sqlmock.NewRows(bookCols).
				AddRow(a.String(), "A", nil, nil, true, time.Now()))

		got, err := s.GetByIDs(context.Background(), []uuid.UUID{a, b, a, uuid.Nil})
		require.NoError(t, err)
		assert.Len(t, got, 1)
		assert.Equal(t, "A", got[a].Title)
		_, ok := got[b]
		assert.False(t, ok)
	})

	t.Run("empty input skips the query", func(t *testing.T) {
		t.Parallel()
		db, _ := newMockDB(t)
		s := NewPostgresBookStore(db, nil)

		got, err := s.GetByIDs(context.Background(), nil)
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}

func TestBookStore_List(t *testing.T) {
	t.Parallel()
	db, mock := newMockDB(t)
	s := NewPostgresBookStore(db, nil)
	active := true

	mock.ExpectQuery(`SELECT (.+) FROM books WHERE is_active = \$1 AND isbn = \$2 ORDER BY created_at DESC LIMIT \$3 OFFSET \$4`).
		WithArgs(true, "978-0262033848", 10, 0).
		WillReturnRows(sqlmock.NewRows(bookCols).
			AddRow(uuid.New().String(), "Introduction to Algorithms", "Cormen", "978-0262033848", true, time.Now()))

	got, err := s.List(context.Background(), store.BookFilter{
		Active: &active,
		ISBN:   "978-0262033848",
		Page:   store.Page{Limit: 10},
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Cormen", *got[0].Author)
}
