package apiclient

import (
	"context"
	"net/http"
)

// Resource is the CRUD surface shared by REST collections.
type Resource[T, In any] struct {
	c    *Client
	path string
}

func newResource[T, In any](c *Client, path string) Resource[T, In] {
	return Resource[T, In]{c: c, path: path}
}

func (r Resource[T, In]) item(id ID) string {
	return r.path + "/" + id.String()
}

// List returns the collection, accepting a bare array or a {"data": [...]} envelope.
func (r Resource[T, In]) List(ctx context.Context, params ListParams) ([]T, error) {
	var out []T
	if err := r.c.Do(ctx, http.MethodGet, r.path, params.values(), nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []T{}
	}
	return out, nil
}

func (r Resource[T, In]) Get(ctx context.Context, id ID) (T, error) {
	var out T
	if id == "" {
		return out, ErrMissingID
	}
	err := r.c.Do(ctx, http.MethodGet, r.item(id), nil, nil, &out)
	return out, err
}

func (r Resource[T, In]) Create(ctx context.Context, in In) (T, error) {
	var out T
	err := r.c.Do(ctx, http.MethodPost, r.path, nil, in, &out)
	return out, err
}

func (r Resource[T, In]) Update(ctx context.Context, id ID, in In) (T, error) {
	var out T
	if id == "" {
		return out, ErrMissingID
	}
	err := r.c.Do(ctx, http.MethodPut, r.item(id), nil, in, &out)
	return out, err
}

func (r Resource[T, In]) Delete(ctx context.Context, id ID) error {
	if id == "" {
		return ErrMissingID
	}
	return r.c.Do(ctx, http.MethodDelete, r.item(id), nil, nil, nil)
}

// PublicationService manages publications and their moderation status.
type PublicationService struct {
	Resource[Publication, PublicationInput]
}

// SetStatus moves a publication through the approval workflow.
func (s *PublicationService) SetStatus(ctx context.Context, id ID, status PublicationStatus) (Publication, error) {
	var out Publication
	if id == "" {
		return out, ErrMissingID
	}
	body := map[string]PublicationStatus{"status": status}
	err := s.c.Do(ctx, http.MethodPatch, s.item(id)+"/status", nil, body, &out)
	return out, err
}

type NewsService struct {
	Resource[News, NewsInput]
}

type EventService struct {
	Resource[Event, EventInput]
}

// MemberService exposes members; creation happens through Auth.Register.
type MemberService struct {
	r Resource[Member, MemberUpdate]
}

func (s *MemberService) List(ctx context.Context, params ListParams) ([]Member, error) {
	return s.r.List(ctx, params)
}

func (s *MemberService) Get(ctx context.Context, id ID) (Member, error) {
	return s.r.Get(ctx, id)
}

func (s *MemberService) Update(ctx context.Context, id ID, in MemberUpdate) (Member, error) {
	return s.r.Update(ctx, id, in)
}

func (s *MemberService) Delete(ctx context.Context, id ID) error {
	return s.r.Delete(ctx, id)
}

// PaymentService records payments; they are never edited or removed.
type PaymentService struct {
	r Resource[Payment, PaymentInput]
}

func (s *PaymentService) List(ctx context.Context, params ListParams) ([]Payment, error) {
	return s.r.List(ctx, params)
}

func (s *PaymentService) Get(ctx context.Context, id ID) (Payment, error) {
	return s.r.Get(ctx, id)
}

func (s *PaymentService) Create(ctx context.Context, in PaymentInput) (Payment, error) {
	return s.r.Create(ctx, in)
}
