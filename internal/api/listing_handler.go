package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gmubooktrading/api/internal/api/shared"
	"github.com/gmubooktrading/api/internal/domain"
	"github.com/gmubooktrading/api/internal/platform/logger"
	"github.com/gmubooktrading/api/internal/service"
	"github.com/google/uuid"
)

// ListingHandler serves sale and rent listings.
type ListingHandler struct {
	listings  service.ListingService
	validator *Validator
	logger    *slog.Logger
}

// NewListingHandler creates a new ListingHandler.
func NewListingHandler(listings service.ListingService, v *Validator, logger *slog.Logger) *ListingHandler {
	if listings == nil || v == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("listing service and validator are required for ListingHandler")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ListingHandler{
		listings:  listings,
		validator: v,
		logger:    logger.With(slog.String("component", "listing_handler")),
	}
}

// ListListings handles GET /api/listings.
func (h *ListingHandler) ListListings(w http.ResponseWriter, r *http.Request) {
	var q ListingListQuery
	if !decodeQueryAndCheck(w, r, h.validator, &q) {
		return
	}

	views, err := h.listings.ListListings(r.Context(), q.Filter())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to retrieve listings")
		return
	}

	caller := callerID(r)
	resp := ListingListResponse{Listings: make([]ListingResponse, 0, len(views)), Count: len(views)}
	for _, v := range views {
		resp.Listings = append(resp.Listings, listingToResponse(v, caller))
	}
	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}

// GetListing handles GET /api/listings/{id}.
func (h *ListingHandler) GetListing(w http.ResponseWriter, r *http.Request) {
	id, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	view, err := h.listings.GetListing(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, listingToResponse(*view, callerID(r)))
}

// CreateListing handles POST /api/listings.
func (h *ListingHandler) CreateListing(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	var req CreateListingRequest
	if !decodeAndCheck(w, r, h.validator, &req, log) {
		return
	}

	in := service.CreateListingInput{
		Title:             req.Title,
		Author:            req.Author,
		ISBN:              req.ISBN,
		Type:              domain.ListingType(req.Type),
		Price:             req.Price,
		Condition:         domain.Condition(req.Condition),
		Description:       sanitizeText(req.Description),
		RentDurationValue: req.RentDurationValue,
		RentDurationUnit:  req.RentDurationUnit,
		Images:            req.Images,
	}
	if req.BookID != nil {
		// Format was checked by the uuid tag.
		bookID := uuid.MustParse(*req.BookID)
		in.BookID = &bookID
	}

	view, err := h.listings.CreateListing(r.Context(), userID, in)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	log.Info("listing created",
		slog.String("listing_id", view.ID.String()),
		slog.String("type", string(view.Type)))
	shared.RespondWithJSON(w, r, http.StatusCreated, listingToResponse(*view, &userID))
}

// UpdateListing handles PUT /api/listings/{id}.
func (h *ListingHandler) UpdateListing(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, id, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	var req UpdateListingRequest
	if !decodeAndCheck(w, r, h.validator, &req, log) {
		return
	}

	in := service.UpdateListingInput{
		Price:             req.Price,
		RentDurationValue: req.RentDurationValue,
		RentDurationUnit:  req.RentDurationUnit,
	}
	if req.Type != nil {
		t := domain.ListingType(*req.Type)
		in.Type = &t
	}
	if req.Condition != nil {
		c := domain.Condition(*req.Condition)
		in.Condition = &c
	}
	if req.Status != nil {
		s := domain.ListingStatus(*req.Status)
		in.Status = &s
	}
	if req.Description != nil {
		// A present but blank description clears the field.
		cleared := ""
		in.Description = &cleared
		if clean := sanitizeText(req.Description); clean != nil {
			in.Description = clean
		}
	}

	view, err := h.listings.UpdateListing(r.Context(), userID, id, in)
	if err != nil {
		handleOwnedError(w, r, err, "You can only update your own listings")
		return
	}

	log.Debug("listing updated", slog.String("listing_id", id.String()))
	shared.RespondWithJSON(w, r, http.StatusOK, listingToResponse(*view, &userID))
}

// DeleteListing handles DELETE /api/listings/{id}.
func (h *ListingHandler) DeleteListing(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, id, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	if err := h.listings.DeleteListing(r.Context(), userID, id); err != nil {
		handleOwnedError(w, r, err, "You can only delete your own listings")
		return
	}

	log.Info("listing deleted", slog.String("listing_id", id.String()))
	w.WriteHeader(http.StatusNoContent)
}

// AddImages handles POST /api/listings/{id}/images.
func (h *ListingHandler) AddImages(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, id, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	var req AddImagesRequest
	if !decodeAndCheck(w, r, h.validator, &req, log) {
		return
	}

	count, err := h.listings.AddImages(r.Context(), userID, id, req.Images)
	if err != nil {
		handleOwnedError(w, r, err, "You can only add images to your own listings")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, AddImagesResponse{
		Message: "Images added successfully",
		Count:   count,
	})
}

// DeleteImage handles DELETE /api/listings/{id}/images/{image_id}.
func (h *ListingHandler) DeleteImage(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, id, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}
	imageID, err := getPathUUID(r, "image_id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	if err := h.listings.DeleteImage(r.Context(), userID, id, imageID); err != nil {
		handleOwnedError(w, r, err, "You can only delete images from your own listings")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleOwnedError reports err, using notOwnerMsg when the caller does not
// own the target row.
func handleOwnedError(w http.ResponseWriter, r *http.Request, err error, notOwnerMsg string) {
	if errors.Is(err, domain.ErrNotOwner) {
		HandleAPIError(w, r, err, notOwnerMsg)
		return
	}
	HandleAPIError(w, r, err, "")
}
