package api

import (
	"log/slog"
	"net/http"

	"github.com/gmubooktrading/api/internal/api/shared"
	"github.com/gmubooktrading/api/internal/domain"
	"github.com/gmubooktrading/api/internal/platform/logger"
	"github.com/gmubooktrading/api/internal/service"
)

// RequestHandler serves book requests (want-ads).
type RequestHandler struct {
	requests  service.RequestService
	validator *Validator
	logger    *slog.Logger
}

// NewRequestHandler creates a new RequestHandler.
func NewRequestHandler(requests service.RequestService, v *Validator, logger *slog.Logger) *RequestHandler {
	if requests == nil || v == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("request service and validator are required for RequestHandler")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RequestHandler{
		requests:  requests,
		validator: v,
		logger:    logger.With(slog.String("component", "request_handler")),
	}
}

// ListRequests handles GET /api/requests.
func (h *RequestHandler) ListRequests(w http.ResponseWriter, r *http.Request) {
	var q RequestListQuery
	if !decodeQueryAndCheck(w, r, h.validator, &q) {
		return
	}

	views, err := h.requests.ListRequests(r.Context(), q.Filter())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to retrieve requests")
		return
	}

	caller := callerID(r)
	resp := RequestListResponse{Requests: make([]RequestResponse, 0, len(views)), Count: len(views)}
	for _, v := range views {
		resp.Requests = append(resp.Requests, requestToResponse(v, caller))
	}
	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}

// GetRequest handles GET /api/requests/{id}.
func (h *RequestHandler) GetRequest(w http.ResponseWriter, r *http.Request) {
	id, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	view, err := h.requests.GetRequest(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, requestToResponse(*view, callerID(r)))
}

// CreateRequest handles POST /api/requests.
func (h *RequestHandler) CreateRequest(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	var req CreateBookRequestRequest
	if !decodeAndCheck(w, r, h.validator, &req, log) {
		return
	}

	in := service.CreateRequestInput{
		BookTitle:   req.BookTitle,
		Author:      req.Author,
		ISBN:        req.ISBN,
		Description: sanitizeText(req.Description),
	}
	if req.DesiredCondition != nil {
		c := domain.Condition(*req.DesiredCondition)
		in.DesiredCondition = &c
	}

	view, err := h.requests.CreateRequest(r.Context(), userID, in)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	log.Info("request created", slog.String("request_id", view.ID.String()))
	shared.RespondWithJSON(w, r, http.StatusCreated, requestToResponse(*view, &userID))
}

// UpdateRequest handles PUT /api/requests/{id}.
func (h *RequestHandler) UpdateRequest(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, id, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	var req UpdateBookRequestRequest
	if !decodeAndCheck(w, r, h.validator, &req, log) {
		return
	}

	in := service.UpdateRequestInput{
		BookTitle: req.BookTitle,
		Author:    req.Author,
		ISBN:      req.ISBN,
	}
	if req.DesiredCondition != nil {
		c := domain.Condition(*req.DesiredCondition)
		in.DesiredCondition = &c
	}
	if req.Status != nil {
		s := domain.RequestStatus(*req.Status)
		in.Status = &s
	}
	if req.Description != nil {
		cleared := ""
		in.Description = &cleared
		if clean := sanitizeText(req.Description); clean != nil {
			in.Description = clean
		}
	}

	view, err := h.requests.UpdateRequest(r.Context(), userID, id, in)
	if err != nil {
		handleOwnedError(w, r, err, "You can only update your own requests")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, requestToResponse(*view, &userID))
}

// DeleteRequest handles DELETE /api/requests/{id}.
func (h *RequestHandler) DeleteRequest(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, id, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	if err := h.requests.DeleteRequest(r.Context(), userID, id); err != nil {
		handleOwnedError(w, r, err, "You can only delete your own requests")
		return
	}

	log.Info("request deleted", slog.String("request_id", id.String()))
	w.WriteHeader(http.StatusNoContent)
}
