package api

import (
	"strings"
	"time"

	"github.com/gmubooktrading/api/internal/domain"
	"github.com/gmubooktrading/api/internal/service"
	"github.com/google/uuid"
)

// Auth request bodies

// SignupRequest defines the payload for the signup endpoint.
type SignupRequest struct {
	Email    string `json:"email"     validate:"required,campus_email"`
	Password string `json:"password"  validate:"required,min=12,max=72"`
	FullName string `json:"full_name" validate:"max=100"`
}

// Normalize lower-cases the email and trims the display name.
func (r *SignupRequest) Normalize() {
	r.Email = domain.NormalizeEmail(r.Email)
	r.FullName = strings.TrimSpace(r.FullName)
}

// LoginRequest defines the payload for the login endpoint.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,campus_email"`
	Password string `json:"password" validate:"required"`
}

// Normalize lower-cases the email.
func (r *LoginRequest) Normalize() {
	r.Email = domain.NormalizeEmail(r.Email)
}

// EmailRequest is the payload for resending the verification email.
type EmailRequest struct {
	Email string `json:"email" validate:"required,campus_email"`
}

// Normalize lower-cases the email.
func (r *EmailRequest) Normalize() {
	r.Email = domain.NormalizeEmail(r.Email)
}

// VerifyEmailRequest carries the token from a verification email. Email is
// needed by providers that verify OTP codes per address.
type VerifyEmailRequest struct {
	Token string `json:"token" validate:"required"`
	Email string `json:"email" validate:"omitempty,campus_email"`
}

// Normalize trims the token and lower-cases the email.
func (r *VerifyEmailRequest) Normalize() {
	r.Token = strings.TrimSpace(r.Token)
	r.Email = domain.NormalizeEmail(r.Email)
}

// Auth responses

// UserResponse is the public view of an account.
type UserResponse struct {
	ID            uuid.UUID  `json:"id"`
	Email         string     `json:"email"`
	FullName      string     `json:"full_name,omitempty"`
	EmailVerified bool       `json:"email_verified"`
	VerifiedAt    *time.Time `json:"verified_at,omitempty"`
	CreatedAt     *time.Time `json:"created_at,omitempty"`
}

// SignupResponse is returned with 201 after signup.
type SignupResponse struct {
	Message               string       `json:"message"`
	User                  UserResponse `json:"user"`
	VerificationEmailSent bool         `json:"verification_email_sent"`
}

// LoginResponse carries the verified user and the provider session.
type LoginResponse struct {
	Message string         `json:"message"`
	User    UserResponse   `json:"user"`
	Session domain.Session `json:"session"`
}

// CurrentUserResponse wraps the caller's account.
type CurrentUserResponse struct {
	User UserResponse `json:"user"`
}

// MessageResponse is a plain acknowledgement.
type MessageResponse struct {
	Message string `json:"message"`
}

// ResendResponse acknowledges a resent verification email.
type ResendResponse struct {
	Message string `json:"message"`
	Email   string `json:"email"`
}

// VerifyEmailResponse is returned after a successful email verification.
type VerifyEmailResponse struct {
	Message string       `json:"message"`
	User    UserResponse `json:"user"`
}

func userToResponse(u domain.User) UserResponse {
	resp := UserResponse{
		ID:            u.ID,
		Email:         u.Email,
		FullName:      u.FullName,
		EmailVerified: u.EmailVerified,
		VerifiedAt:    u.VerifiedAt,
	}
	if !u.CreatedAt.IsZero() {
		created := u.CreatedAt
		resp.CreatedAt = &created
	}
	return resp
}

// Book requests and responses

// CreateBookRequest defines the payload for adding a catalog entry.
type CreateBookRequest struct {
	Title  string  `json:"title"  validate:"required,max=200"`
	Author *string `json:"author" validate:"omitempty,max=100"`
	ISBN   *string `json:"isbn"   validate:"omitempty,max=20"`
}

// Normalize trims the text fields.
func (r *CreateBookRequest) Normalize() {
	r.Title = strings.TrimSpace(r.Title)
	r.Author = domain.TrimOptional(r.Author)
	r.ISBN = domain.TrimOptional(r.ISBN)
}

// BookListResponse is a page of books.
type BookListResponse struct {
	Books []*domain.Book `json:"books"`
	Count int            `json:"count"`
}

// Listing requests and responses

// CreateListingRequest defines the payload for creating a listing. Either
// BookID or Title identifies the book.
type CreateListingRequest struct {
	BookID            *string  `json:"book_id"             validate:"omitempty,uuid"`
	Title             string   `json:"title"               validate:"required_without=BookID,max=200"`
	Author            *string  `json:"author"              validate:"omitempty,max=100"`
	ISBN              *string  `json:"isbn"                validate:"omitempty,max=20"`
	Type              string   `json:"type"                validate:"required,oneof=sale rent"`
	Price             float64  `json:"price"               validate:"required,gt=0,lte=99999999.99"`
	Condition         string   `json:"condition"           validate:"required,oneof=new like_new good acceptable"`
	Description       *string  `json:"description"         validate:"omitempty,max=2000"`
	RentDurationValue *int     `json:"rent_duration_value" validate:"required_if=Type rent,omitempty,min=1,max=365"`
	RentDurationUnit  *string  `json:"rent_duration_unit"  validate:"required_if=Type rent,omitempty,rent_unit"`
	Images            []string `json:"images"              validate:"max=10,dive,http_url"`
}

// Normalize trims text and drops the rent fields of sale listings.
func (r *CreateListingRequest) Normalize() {
	r.BookID = domain.TrimOptional(r.BookID)
	r.Title = strings.TrimSpace(r.Title)
	r.Author = domain.TrimOptional(r.Author)
	r.ISBN = domain.TrimOptional(r.ISBN)
	r.Type = strings.TrimSpace(r.Type)
	r.Condition = strings.TrimSpace(r.Condition)
	r.RentDurationUnit = domain.TrimOptional(r.RentDurationUnit)
	if r.Type == string(domain.ListingTypeSale) {
		r.RentDurationValue = nil
		r.RentDurationUnit = nil
	}
}

// UpdateListingRequest defines a partial listing update. Absent fields are
// left unchanged.
type UpdateListingRequest struct {
	Type              *string  `json:"type"                validate:"omitempty,oneof=sale rent"`
	Price             *float64 `json:"price"               validate:"omitempty,gt=0,lte=99999999.99"`
	Condition         *string  `json:"condition"           validate:"omitempty,oneof=new like_new good acceptable"`
	Description       *string  `json:"description"         validate:"omitempty,max=2000"`
	RentDurationValue *int     `json:"rent_duration_value" validate:"omitempty,min=1,max=365"`
	RentDurationUnit  *string  `json:"rent_duration_unit"  validate:"omitempty,rent_unit"`
	Status            *string  `json:"status"              validate:"omitempty,oneof=active sold rented inactive"`
}

// AddImagesRequest attaches image URLs to a listing.
type AddImagesRequest struct {
	Images []string `json:"images" validate:"required,min=1,max=10,dive,http_url"`
}

// ImageResponse is one stored listing image.
type ImageResponse struct {
	ID        uuid.UUID `json:"id"`
	ImageURL  string    `json:"image_url"`
	CreatedAt time.Time `json:"created_at"`
}

// ListingResponse is a listing joined with its book, seller and images.
// IsOwner is only present for authenticated callers.
type ListingResponse struct {
	ID                uuid.UUID            `json:"id"`
	UserID            uuid.UUID            `json:"user_id"`
	BookID            *uuid.UUID           `json:"book_id"`
	Type              domain.ListingType   `json:"type"`
	Price             float64              `json:"price"`
	Condition         domain.Condition     `json:"condition"`
	Description       *string              `json:"description"`
	RentDurationValue *int                 `json:"rent_duration_value"`
	RentDurationUnit  *string              `json:"rent_duration_unit"`
	Status            domain.ListingStatus `json:"status"`
	CreatedAt         time.Time            `json:"created_at"`
	UpdatedAt         time.Time            `json:"updated_at"`
	BookTitle         *string              `json:"book_title"`
	BookAuthor        *string              `json:"book_author"`
	BookISBN          *string              `json:"book_isbn"`
	UserDisplayName   *string              `json:"user_display_name"`
	Images            []string             `json:"images"`
	ImageDetails      []ImageResponse      `json:"image_details"`
	IsOwner           *bool                `json:"is_owner,omitempty"`
}

// ListingListResponse is a page of listings.
type ListingListResponse struct {
	Listings []ListingResponse `json:"listings"`
	Count    int               `json:"count"`
}

// AddImagesResponse acknowledges added images.
type AddImagesResponse struct {
	Message string `json:"message"`
	Count   int    `json:"count"`
}

func listingToResponse(v service.ListingView, caller *uuid.UUID) ListingResponse {
	resp := ListingResponse{
		ID:                v.ID,
		UserID:            v.UserID,
		BookID:            v.BookID,
		Type:              v.Type,
		Price:             v.Price,
		Condition:         v.Condition,
		Description:       v.Description,
		RentDurationValue: v.RentDurationValue,
		RentDurationUnit:  v.RentDurationUnit,
		Status:            v.Status,
		CreatedAt:         v.CreatedAt,
		UpdatedAt:         v.UpdatedAt,
		UserDisplayName:   v.SellerName,
		Images:            make([]string, 0, len(v.Images)),
		ImageDetails:      make([]ImageResponse, 0, len(v.Images)),
		IsOwner:           ownerFlag(v.UserID, caller),
	}
	if v.Book != nil {
		title := v.Book.Title
		resp.BookTitle = &title
		resp.BookAuthor = v.Book.Author
		resp.BookISBN = v.Book.ISBN
	}
	for _, img := range v.Images {
		resp.Images = append(resp.Images, img.ImageURL)
		resp.ImageDetails = append(resp.ImageDetails, ImageResponse{
			ID:        img.ID,
			ImageURL:  img.ImageURL,
			CreatedAt: img.CreatedAt,
		})
	}
	return resp
}

// Request (want-ad) requests and responses

// CreateBookRequestRequest defines the payload for posting a want-ad.
type CreateBookRequestRequest struct {
	BookTitle        string  `json:"book_title"        validate:"required,max=200"`
	Author           *string `json:"author"            validate:"omitempty,max=100"`
	ISBN             *string `json:"isbn"              validate:"omitempty,max=20"`
	DesiredCondition *string `json:"desired_condition" validate:"omitempty,oneof=new like_new good acceptable"`
	Description      *string `json:"description"       validate:"omitempty,max=2000"`
}

// Normalize trims the text fields.
func (r *CreateBookRequestRequest) Normalize() {
	r.BookTitle = strings.TrimSpace(r.BookTitle)
	r.Author = domain.TrimOptional(r.Author)
	r.ISBN = domain.TrimOptional(r.ISBN)
	r.DesiredCondition = domain.TrimOptional(r.DesiredCondition)
}

// UpdateBookRequestRequest defines a partial want-ad update.
type UpdateBookRequestRequest struct {
	BookTitle        *string `json:"book_title"        validate:"omitempty,max=200"`
	Author           *string `json:"author"            validate:"omitempty,max=100"`
	ISBN             *string `json:"isbn"              validate:"omitempty,max=20"`
	DesiredCondition *string `json:"desired_condition" validate:"omitempty,oneof=new like_new good acceptable"`
	Description      *string `json:"description"       validate:"omitempty,max=2000"`
	Status           *string `json:"status"            validate:"omitempty,oneof=open fulfilled cancelled"`
}

// RequestResponse is a want-ad joined with the requester's display name.
type RequestResponse struct {
	ID               uuid.UUID            `json:"id"`
	UserID           uuid.UUID            `json:"user_id"`
	BookTitle        string               `json:"book_title"`
	Author           *string              `json:"author"`
	ISBN             *string              `json:"isbn"`
	DesiredCondition *domain.Condition    `json:"desired_condition"`
	Description      *string              `json:"description"`
	Status           domain.RequestStatus `json:"status"`
	CreatedAt        time.Time            `json:"created_at"`
	UpdatedAt        time.Time            `json:"updated_at"`
	UserDisplayName  *string              `json:"user_display_name"`
	IsOwner          *bool                `json:"is_owner,omitempty"`
}

// RequestListResponse is a page of want-ads.
type RequestListResponse struct {
	Requests []RequestResponse `json:"requests"`
	Count    int               `json:"count"`
}

func requestToResponse(v service.RequestView, caller *uuid.UUID) RequestResponse {
	return RequestResponse{
		ID:               v.ID,
		UserID:           v.UserID,
		BookTitle:        v.BookTitle,
		Author:           v.Author,
		ISBN:             v.ISBN,
		DesiredCondition: v.DesiredCondition,
		Description:      v.Description,
		Status:           v.Status,
		CreatedAt:        v.CreatedAt,
		UpdatedAt:        v.UpdatedAt,
		UserDisplayName:  v.RequesterName,
		IsOwner:          ownerFlag(v.UserID, caller),
	}
}

func ownerFlag(owner uuid.UUID, caller *uuid.UUID) *bool {
	if caller == nil {
		return nil
	}
	isOwner := *caller == owner
	return &isOwner
}

// System responses

// HealthResponse reports liveness.
type HealthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// WelcomeResponse is served at the root path.
type WelcomeResponse struct {
	Message string `json:"message"`
	Health  string `json:"health"`
	Metrics string `json:"metrics"`
}
