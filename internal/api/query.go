package api

import (
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/gmubooktrading/api/internal/api/shared"
	"github.com/gmubooktrading/api/internal/domain"
	"github.com/gmubooktrading/api/internal/store"
	"github.com/google/uuid"
)

// BookListQuery holds the query parameters of GET /api/books.
type BookListQuery struct {
	Active *bool  `json:"active"`
	ISBN   string `json:"isbn"   validate:"omitempty,max=20"`
	Limit  *int   `json:"limit"  validate:"omitempty,min=1,max=100"`
	Offset *int   `json:"offset" validate:"omitempty,min=0"`
}

// Filter converts a validated query into a store filter. Only active books
// are listed unless active=false is given.
func (q *BookListQuery) Filter() store.BookFilter {
	active := true
	if q.Active != nil {
		active = *q.Active
	}
	return store.BookFilter{Active: &active, ISBN: q.ISBN, Page: pageOf(q.Limit, q.Offset)}
}

// ListingListQuery holds the query parameters of GET /api/listings.
type ListingListQuery struct {
	Status string `json:"status"  validate:"omitempty,oneof=active sold rented inactive"`
	Type   string `json:"type"    validate:"omitempty,oneof=sale rent"`
	UserID string `json:"user_id" validate:"omitempty,uuid"`
	Limit  *int   `json:"limit"   validate:"omitempty,min=1,max=100"`
	Offset *int   `json:"offset"  validate:"omitempty,min=0"`
}

// Filter converts a validated query into a store filter. The status
// defaults to active.
func (q *ListingListQuery) Filter() store.ListingFilter {
	status := domain.ListingStatusActive
	if q.Status != "" {
		status = domain.ListingStatus(q.Status)
	}
	filter := store.ListingFilter{
		Status: &status,
		UserID: optionalUUID(q.UserID),
		Page:   pageOf(q.Limit, q.Offset),
	}
	if q.Type != "" {
		listingType := domain.ListingType(q.Type)
		filter.Type = &listingType
	}
	return filter
}

// RequestListQuery holds the query parameters of GET /api/requests.
type RequestListQuery struct {
	Status string `json:"status"  validate:"omitempty,oneof=open fulfilled cancelled"`
	UserID string `json:"user_id" validate:"omitempty,uuid"`
	Limit  *int   `json:"limit"   validate:"omitempty,min=1,max=100"`
	Offset *int   `json:"offset"  validate:"omitempty,min=0"`
}

// Filter converts a validated query into a store filter. The status
// defaults to open.
func (q *RequestListQuery) Filter() store.RequestFilter {
	status := domain.RequestStatusOpen
	if q.Status != "" {
		status = domain.RequestStatus(q.Status)
	}
	return store.RequestFilter{
		Status: &status,
		UserID: optionalUUID(q.UserID),
		Page:   pageOf(q.Limit, q.Offset),
	}
}

func pageOf(limit, offset *int) store.Page {
	page := store.Page{Limit: store.DefaultLimit}
	if limit != nil {
		page.Limit = *limit
	}
	if offset != nil {
		page.Offset = *offset
	}
	return page
}

func optionalUUID(s string) *uuid.UUID {
	if s == "" {
		return nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return nil
	}
	return &id
}

// decodeQuery copies the query parameters named by the json tags of dst's
// fields into dst, which must point to a struct. Fields may be string, *int
// or *bool. Blank parameters are treated as absent. Values that do not parse
// are reported and leave the field unset.
func decodeQuery(r *http.Request, dst any) []shared.FieldError {
	values := r.URL.Query()
	rv := reflect.ValueOf(dst).Elem()
	rt := rv.Type()

	var details []shared.FieldError
	for i := 0; i < rt.NumField(); i++ {
		name, _, _ := strings.Cut(rt.Field(i).Tag.Get("json"), ",")
		if name == "" || name == "-" {
			continue
		}
		raw := strings.TrimSpace(values.Get(name))
		if raw == "" {
			continue
		}

		field := rv.Field(i)
		switch field.Interface().(type) {
		case string:
			field.SetString(raw)
		case *int:
			n, err := strconv.Atoi(raw)
			if err != nil {
				details = append(details, shared.FieldError{Field: name, Message: "must be an integer"})
				continue
			}
			field.Set(reflect.ValueOf(&n))
		case *bool:
			b, err := strconv.ParseBool(raw)
			if err != nil {
				details = append(details, shared.FieldError{Field: name, Message: "must be true or false"})
				continue
			}
			field.Set(reflect.ValueOf(&b))
		}
	}
	return details
}

// decodeQueryAndCheck decodes the query into dst and validates it with v.
// Every bad parameter is reported in one 400 response, and false is returned
// when the handler must stop.
func decodeQueryAndCheck(w http.ResponseWriter, r *http.Request, v *Validator, dst any) bool {
	details := decodeQuery(r, dst)
	details = append(details, v.Check(dst)...)
	if len(details) > 0 {
		shared.RespondWithValidationErrors(w, r, details)
		return false
	}
	return true
}
