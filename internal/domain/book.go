package domain

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Field bounds shared by books and requests.
const (
	TitleMaxLength       = 200
	AuthorMaxLength      = 100
	ISBNMaxLength        = 20
	DescriptionMaxLength = 2000
)

// Common validation errors for Book
var (
	ErrEmptyBookID    = errors.New("book ID cannot be empty")
	ErrEmptyBookTitle = errors.New("book title cannot be empty")
	ErrBookTitleLong  = errors.New("book title must be at most 200 characters long")
	ErrAuthorTooLong  = errors.New("author must be at most 100 characters long")
	ErrInvalidISBN    = errors.New("isbn may contain only digits, hyphens and X, up to 20 characters")
)

var isbnPattern = regexp.MustCompile(`^[0-9Xx-]{1,20}$`)

// Book is a catalog entry that listings may reference.
type Book struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	Author    *string   `json:"author"`
	ISBN      *string   `json:"isbn"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// NewBook creates an active Book with a fresh ID.
func NewBook(title string, author, isbn *string) (*Book, error) {
	book := &Book{
		ID:        uuid.New(),
		Title:     strings.TrimSpace(title),
		Author:    TrimOptional(author),
		ISBN:      TrimOptional(isbn),
		IsActive:  true,
		CreatedAt: time.Now().UTC(),
	}

	if err := book.Validate(); err != nil {
		return nil, err
	}
	return book, nil
}

// Validate checks if the Book has valid data.
func (b *Book) Validate() error {
	if b.ID == uuid.Nil {
		return ErrEmptyBookID
	}
	if err := ValidateTitle(b.Title); err != nil {
		return NewValidationError("title", err.Error(), err)
	}
	if err := ValidateAuthor(b.Author); err != nil {
		return NewValidationError("author", err.Error(), err)
	}
	if err := ValidateISBN(b.ISBN); err != nil {
		return NewValidationError("isbn", err.Error(), err)
	}
	return nil
}

// ValidateTitle checks a required title.
func ValidateTitle(title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return ErrEmptyBookTitle
	}
	if len([]rune(title)) > TitleMaxLength {
		return ErrBookTitleLong
	}
	return nil
}

// ValidateAuthor checks an optional author.
func ValidateAuthor(author *string) error {
	if author != nil && len([]rune(*author)) > AuthorMaxLength {
		return ErrAuthorTooLong
	}
	return nil
}

// ValidateISBN checks an optional ISBN.
func ValidateISBN(isbn *string) error {
	if isbn == nil {
		return nil
	}
	if !isbnPattern.MatchString(*isbn) {
		return ErrInvalidISBN
	}
	return nil
}

// TrimOptional trims s and maps blank strings to nil.
func TrimOptional(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
