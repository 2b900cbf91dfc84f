package api

import (
	"log/slog"
	"net/http"

	"github.com/gmubooktrading/api/internal/api/shared"
	"github.com/gmubooktrading/api/internal/domain"
	"github.com/gmubooktrading/api/internal/platform/logger"
	"github.com/gmubooktrading/api/internal/service"
)

// BookHandler serves the book catalog.
type BookHandler struct {
	books     service.BookService
	validator *Validator
	logger    *slog.Logger
}

// NewBookHandler creates a new BookHandler.
func NewBookHandler(books service.BookService, v *Validator, logger *slog.Logger) *BookHandler {
	if books == nil || v == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("book service and validator are required for BookHandler")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &BookHandler{
		books:     books,
		validator: v,
		logger:    logger.With(slog.String("component", "book_handler")),
	}
}

// ListBooks handles GET /api/books.
func (h *BookHandler) ListBooks(w http.ResponseWriter, r *http.Request) {
	var q BookListQuery
	if !decodeQueryAndCheck(w, r, h.validator, &q) {
		return
	}

	books, err := h.books.ListBooks(r.Context(), q.Filter())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to retrieve books")
		return
	}
	if books == nil {
		books = []*domain.Book{}
	}

	shared.RespondWithJSON(w, r, http.StatusOK, BookListResponse{Books: books, Count: len(books)})
}

// GetBook handles GET /api/books/{id}.
func (h *BookHandler) GetBook(w http.ResponseWriter, r *http.Request) {
	id, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	book, err := h.books.GetBook(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, book)
}

// CreateBook handles POST /api/books.
func (h *BookHandler) CreateBook(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	if _, ok := requireUserID(w, r, log); !ok {
		return
	}

	var req CreateBookRequest
	if !decodeAndCheck(w, r, h.validator, &req, log) {
		return
	}

	book, err := h.books.CreateBook(r.Context(), req.Title, req.Author, req.ISBN)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	log.Info("book created", slog.String("book_id", book.ID.String()))
	shared.RespondWithJSON(w, r, http.StatusCreated, book)
}
