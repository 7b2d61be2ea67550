package apiclient

import (
	"bytes"
	"encoding/json"
	"net/url"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dmitrymomot/memberportal/core/session"
)

// ID is a resource identifier. The API sends either strings or numbers.
type ID string

func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*id = ID(n.String())
	return nil
}

func (id ID) String() string { return string(id) }

// User is a user as returned by the auth endpoints.
type User struct {
	ID    ID     `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Role  string `json:"role"`
}

// SessionUser converts u to a session user. Roles other than admin map to member.
func (u User) SessionUser() *session.User {
	role := session.RoleMember
	if session.Role(u.Role) == session.RoleAdmin {
		role = session.RoleAdmin
	}
	return &session.User{ID: u.ID.String(), Name: u.Name, Email: u.Email, Role: role}
}

// PublicationStatus is the moderation state of a publication.
type PublicationStatus string

const (
	PublicationPending  PublicationStatus = "pending"
	PublicationApproved PublicationStatus = "approved"
	PublicationRejected PublicationStatus = "rejected"
)

func (s PublicationStatus) Valid() bool {
	switch s {
	case PublicationPending, PublicationApproved, PublicationRejected:
		return true
	}
	return false
}

type Publication struct {
	ID        ID                `json:"id"`
	Title     string            `json:"title"`
	Abstract  string            `json:"abstract,omitempty"`
	Content   string            `json:"content,omitempty"`
	Authors   string            `json:"authors,omitempty"`
	AuthorID  ID                `json:"authorId,omitempty"`
	Status    PublicationStatus `json:"status"`
	FileURL   string            `json:"fileUrl,omitempty"`
	CreatedAt time.Time         `json:"createdAt"`
}

type PublicationInput struct {
	Title    string `json:"title"`
	Abstract string `json:"abstract,omitempty"`
	Content  string `json:"content,omitempty"`
	Authors  string `json:"authors,omitempty"`
	FileURL  string `json:"fileUrl,omitempty"`
}

type News struct {
	ID          ID        `json:"id"`
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	ImageURL    string    `json:"imageUrl,omitempty"`
	PublishedAt time.Time `json:"publishedAt"`
}

type NewsInput struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	ImageURL string `json:"imageUrl,omitempty"`
}

type Event struct {
	ID          ID        `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Location    string    `json:"location,omitempty"`
	StartsAt    time.Time `json:"startsAt"`
	EndsAt      time.Time `json:"endsAt,omitzero"`
}

type EventInput struct {
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Location    string    `json:"location,omitempty"`
	StartsAt    time.Time `json:"startsAt"`
	EndsAt      time.Time `json:"endsAt,omitzero"`
}

type Member struct {
	ID             ID        `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Role           string    `json:"role"`
	Phone          string    `json:"phone,omitempty"`
	MembershipType string    `json:"membershipType,omitempty"`
	Active         bool      `json:"active"`
	JoinedAt       time.Time `json:"joinedAt,omitzero"`
}

// MemberUpdate carries the fields an update may change; nil fields are left alone.
type MemberUpdate struct {
	Name           *string `json:"name,omitempty"`
	Email          *string `json:"email,omitempty"`
	Role           *string `json:"role,omitempty"`
	Phone          *string `json:"phone,omitempty"`
	MembershipType *string `json:"membershipType,omitempty"`
	Active         *bool   `json:"active,omitempty"`
}

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
)

type Payment struct {
	ID        ID              `json:"id"`
	MemberID  ID              `json:"memberId"`
	Amount    decimal.Decimal `json:"amount"`
	Currency  string          `json:"currency"`
	Status    PaymentStatus   `json:"status"`
	Method    string          `json:"method,omitempty"`
	Reference string          `json:"reference,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
}

type PaymentInput struct {
	MemberID  ID              `json:"memberId,omitempty"`
	Amount    decimal.Decimal `json:"amount"`
	Currency  string          `json:"currency"`
	Method    string          `json:"method,omitempty"`
	Reference string          `json:"reference,omitempty"`
}

// ListParams filters list endpoints. Zero fields are omitted.
type ListParams struct {
	Page     int
	Limit    int
	Search   string
	Status   string
	MemberID ID
	AuthorID ID
}

func (p ListParams) values() url.Values {
	v := url.Values{}
	if p.Page > 0 {
		v.Set("page", strconv.Itoa(p.Page))
	}
	if p.Limit > 0 {
		v.Set("limit", strconv.Itoa(p.Limit))
	}
	if p.Search != "" {
		v.Set("search", p.Search)
	}
	if p.Status != "" {
		v.Set("status", p.Status)
	}
	if p.MemberID != "" {
		v.Set("memberId", p.MemberID.String())
	}
	if p.AuthorID != "" {
		v.Set("authorId", p.AuthorID.String())
	}
	return v
}

// CacheKey renders p for use in query cache keys.
func (p ListParams) CacheKey() string {
	return p.values().Encode()
}
