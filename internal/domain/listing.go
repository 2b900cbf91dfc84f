package domain

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"time"

	"github.com/google/uuid"
)

// ListingType distinguishes sale listings from rentals.
type ListingType string

// Possible listing types
const (
	ListingTypeSale ListingType = "sale"
	ListingTypeRent ListingType = "rent"
)

// Condition describes the physical state of a book.
type Condition string

// Possible book conditions
const (
	ConditionNew        Condition = "new"
	ConditionLikeNew    Condition = "like_new"
	ConditionGood       Condition = "good"
	ConditionAcceptable Condition = "acceptable"
)

// ListingStatus represents the lifecycle state of a listing.
type ListingStatus string

// Possible listing status values
const (
	ListingStatusActive   ListingStatus = "active"
	ListingStatusSold     ListingStatus = "sold"
	ListingStatusRented   ListingStatus = "rented"
	ListingStatusInactive ListingStatus = "inactive"
)

// Listing limits
const (
	MaxRentDurationValue = 365
	MaxListingImages     = 10

	// MaxPrice is the largest value a NUMERIC(10,2) price column holds.
	MaxPrice = 99999999.99
)

// Common validation errors for Listing
var (
	ErrEmptyListingID     = errors.New("listing ID cannot be empty")
	ErrEmptyListingUserID = errors.New("listing user ID cannot be empty")
	ErrInvalidListingType = errors.New("type must be one of: sale, rent")
	ErrInvalidCondition   = errors.New("condition must be one of: new, like_new, good, acceptable")
	ErrInvalidPrice       = errors.New("price must be greater than 0")
	ErrPriceTooHigh       = errors.New("price must be at most 99999999.99")
	ErrInvalidListingStat = errors.New("status must be one of: active, sold, rented, inactive")
	ErrDescriptionTooLong = errors.New("description must be at most 2000 characters long")
	ErrInvalidRentValue   = errors.New("rent_duration_value must be between 1 and 365")
	ErrInvalidRentUnit    = errors.New("rent_duration_unit must be day(s), week(s), month(s) or semester(s)")
	ErrInvalidImageURL    = errors.New("image_url must be an absolute http or https URL")
	ErrTooManyImages      = errors.New("a listing may have at most 10 images")
)

var rentUnitPattern = regexp.MustCompile(`^(day|week|month|semester)s?$`)

// Listing is an offer to sell or rent a book.
type Listing struct {
	ID                uuid.UUID     `json:"id"`
	UserID            uuid.UUID     `json:"user_id"`
	BookID            *uuid.UUID    `json:"book_id"`
	Type              ListingType   `json:"type"`
	Price             float64       `json:"price"`
	Condition         Condition     `json:"condition"`
	Description       *string       `json:"description"`
	RentDurationValue *int          `json:"rent_duration_value"`
	RentDurationUnit  *string       `json:"rent_duration_unit"`
	Status            ListingStatus `json:"status"`
	CreatedAt         time.Time     `json:"created_at"`
	UpdatedAt         time.Time     `json:"updated_at"`
}

// ListingImage is a URL attached to a listing.
type ListingImage struct {
	ID        uuid.UUID `json:"id"`
	ListingID uuid.UUID `json:"listing_id"`
	ImageURL  string    `json:"image_url"`
	CreatedAt time.Time `json:"created_at"`
}

// NewListing creates an active listing owned by userID. Rent duration fields
// are dropped for sale listings.
func NewListing(
	userID uuid.UUID,
	bookID *uuid.UUID,
	listingType ListingType,
	price float64,
	condition Condition,
	description *string,
	rentValue *int,
	rentUnit *string,
) (*Listing, error) {
	now := time.Now().UTC()
	listing := &Listing{
		ID:                uuid.New(),
		UserID:            userID,
		BookID:            bookID,
		Type:              listingType,
		Price:             price,
		Condition:         condition,
		Description:       description,
		RentDurationValue: rentValue,
		RentDurationUnit:  rentUnit,
		Status:            ListingStatusActive,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	listing.NormalizeRentDuration()

	if err := listing.Validate(); err != nil {
		return nil, err
	}
	return listing, nil
}

// NormalizeRentDuration clears the rent fields of sale listings.
func (l *Listing) NormalizeRentDuration() {
	if l.Type == ListingTypeSale {
		l.RentDurationValue = nil
		l.RentDurationUnit = nil
	}
}

// Validate checks if the Listing has valid data.
func (l *Listing) Validate() error {
	if l.ID == uuid.Nil {
		return ErrEmptyListingID
	}
	if l.UserID == uuid.Nil {
		return ErrEmptyListingUserID
	}
	if !l.Type.IsValid() {
		return NewValidationError("type", ErrInvalidListingType.Error(), ErrInvalidListingType)
	}
	if l.Price <= 0 {
		return NewValidationError("price", ErrInvalidPrice.Error(), ErrInvalidPrice)
	}
	if l.Price > MaxPrice {
		return NewValidationError("price", ErrPriceTooHigh.Error(), ErrPriceTooHigh)
	}
	if !l.Condition.IsValid() {
		return NewValidationError("condition", ErrInvalidCondition.Error(), ErrInvalidCondition)
	}
	if !l.Status.IsValid() {
		return NewValidationError("status", ErrInvalidListingStat.Error(), ErrInvalidListingStat)
	}
	if err := ValidateDescription(l.Description); err != nil {
		return NewValidationError("description", err.Error(), err)
	}
	return ValidateRentDuration(l.Type, l.RentDurationValue, l.RentDurationUnit)
}

// TransitionTo moves the listing to next. Setting the current status again is
// a no-op; rented applies only to rent listings and sold only to sales. An
// inactive listing can be put back on the market, sold and rented are final.
func (l *Listing) TransitionTo(next ListingStatus) error {
	if !next.IsValid() {
		return NewValidationError("status", ErrInvalidListingStat.Error(), ErrInvalidListingStat)
	}
	if next == l.Status {
		return nil
	}
	if l.Status == ListingStatusInactive && next == ListingStatusActive {
		l.Status = next
		l.UpdatedAt = time.Now().UTC()
		return nil
	}
	if l.Status != ListingStatusActive {
		return statusTransitionError(string(l.Status), string(next))
	}
	switch {
	case next == ListingStatusSold && l.Type != ListingTypeSale:
		return NewValidationError("status", "only sale listings can be marked sold", ErrInvalidStatusTransition)
	case next == ListingStatusRented && l.Type != ListingTypeRent:
		return NewValidationError("status", "only rent listings can be marked rented", ErrInvalidStatusTransition)
	case next == ListingStatusActive:
		return statusTransitionError(string(l.Status), string(next))
	}

	l.Status = next
	l.UpdatedAt = time.Now().UTC()
	return nil
}

// IsValid reports whether t is a known listing type.
func (t ListingType) IsValid() bool {
	return t == ListingTypeSale || t == ListingTypeRent
}

// IsValid reports whether c is a known condition.
func (c Condition) IsValid() bool {
	switch c {
	case ConditionNew, ConditionLikeNew, ConditionGood, ConditionAcceptable:
		return true
	default:
		return false
	}
}

// IsValid reports whether s is a known listing status.
func (s ListingStatus) IsValid() bool {
	switch s {
	case ListingStatusActive, ListingStatusSold, ListingStatusRented, ListingStatusInactive:
		return true
	default:
		return false
	}
}

// IsValidRentUnit reports whether unit matches day(s), week(s), month(s) or
// semester(s).
func IsValidRentUnit(unit string) bool {
	return rentUnitPattern.MatchString(unit)
}

// ValidateRentDuration enforces that rent listings carry both duration fields
// within bounds. Sale listings are not checked.
func ValidateRentDuration(t ListingType, value *int, unit *string) error {
	if t != ListingTypeRent {
		return nil
	}
	if value == nil || unit == nil {
		return NewValidationError("rent_duration", ErrRentDuration.Error(), ErrRentDuration)
	}
	if *value < 1 || *value > MaxRentDurationValue {
		return NewValidationError("rent_duration_value", ErrInvalidRentValue.Error(), ErrInvalidRentValue)
	}
	if !IsValidRentUnit(*unit) {
		return NewValidationError("rent_duration_unit", ErrInvalidRentUnit.Error(), ErrInvalidRentUnit)
	}
	return nil
}

// ValidateDescription checks an optional free-text description.
func ValidateDescription(description *string) error {
	if description != nil && len([]rune(*description)) > DescriptionMaxLength {
		return ErrDescriptionTooLong
	}
	return nil
}

// ValidateImageURL checks that raw is an absolute http(s) URL.
func ValidateImageURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return ErrInvalidImageURL
	}
	return nil
}

// NewListingImages builds image rows for listingID from urls.
func NewListingImages(listingID uuid.UUID, urls []string) ([]ListingImage, error) {
	if len(urls) > MaxListingImages {
		return nil, NewValidationError("images", ErrTooManyImages.Error(), ErrTooManyImages)
	}
	now := time.Now().UTC()
	images := make([]ListingImage, 0, len(urls))
	for i, raw := range urls {
		if err := ValidateImageURL(raw); err != nil {
			return nil, NewValidationError(fmt.Sprintf("images[%d]", i), err.Error(), err)
		}
		images = append(images, ListingImage{
			ID:        uuid.New(),
			ListingID: listingID,
			ImageURL:  raw,
			CreatedAt: now,
		})
	}
	return images, nil
}

func statusTransitionError(from, to string) error {
	return NewValidationError(
		"status",
		fmt.Sprintf("cannot change status from %s to %s", from, to),
		ErrInvalidStatusTransition,
	)
}
