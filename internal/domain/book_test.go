package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBook(t *testing.T) {
	t.Parallel()

	book, err := NewBook(" Linear Algebra ", strPtr("Strang"), strPtr("978-0-9802327-7-6"))
	require.NoError(t, err)
	assert.Equal(t, "Linear Algebra", book.Title)
	assert.True(t, book.IsActive)

	_, err = NewBook("", nil, nil)
	assert.ErrorIs(t, err, ErrEmptyBookTitle)

	_, err = NewBook(strings.Repeat("t", TitleMaxLength+1), nil, nil)
	assert.ErrorIs(t, err, ErrBookTitleLong)

	_, err = NewBook("Title", nil, strPtr("978 0 98"))
	assert.ErrorIs(t, err, ErrInvalidISBN)

	_, err = NewBook("Title", strPtr(strings.Repeat("a", AuthorMaxLength+1)), nil)
	assert.ErrorIs(t, err, ErrAuthorTooLong)
}

func TestTrimOptional(t *testing.T) {
	t.Parallel()
	assert.Nil(t, TrimOptional(nil))
	assert.Nil(t, TrimOptional(strPtr("   ")))
	assert.Equal(t, "x", *TrimOptional(strPtr(" x ")))
}
