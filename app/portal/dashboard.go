package portal

import (
	"net/http"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/memberportal/core/response"
	"github.com/dmitrymomot/memberportal/core/session"
	"github.com/dmitrymomot/memberportal/integration/apiclient"
)

func (app *App) dashboard(r *http.Request) response.Response {
	user, err := currentUser(r)
	if err != nil {
		return response.Error(err)
	}
	api := app.apiFor(r)
	ctx := r.Context()

	var (
		payments     []apiclient.Payment
		publications []apiclient.Publication
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		payments, err = api.Payments.List(gctx, apiclient.ListParams{MemberID: apiclient.ID(user.ID), Limit: 5})
		return err
	})
	g.Go(func() (err error) {
		publications, err = api.Publications.List(gctx, apiclient.ListParams{AuthorID: apiclient.ID(user.ID), Limit: 5})
		return err
	})
	if err := g.Wait(); err != nil {
		return response.Error(upstream(err))
	}

	return response.WithCache(response.JSON(map[string]any{
		"user":         user,
		"payments":     payments,
		"publications": publications,
	}), 0)
}

func (app *App) profile(r *http.Request) response.Response {
	user, err := currentUser(r)
	if err != nil {
		return response.Error(err)
	}
	member, err := app.apiFor(r).Members.Get(r.Context(), apiclient.ID(user.ID))
	if err != nil {
		return response.Error(upstream(err))
	}
	return response.WithCache(response.JSON(member), 0)
}

// profileUpdate is the subset of MemberUpdate a member may change on their own record.
type profileUpdate struct {
	Name           *string `json:"name"`
	Email          *string `json:"email"`
	Phone          *string `json:"phone"`
	MembershipType *string `json:"membershipType"`
}

func (app *App) updateProfile(r *http.Request) response.Response {
	user, err := currentUser(r)
	if err != nil {
		return response.Error(err)
	}
	var in profileUpdate
	if err := decodeJSON(r, &in); err != nil {
		return response.Error(err)
	}
	if in.Name != nil && strings.TrimSpace(*in.Name) == "" {
		return response.Error(response.ErrUnprocessableEntity.WithDetails(map[string]any{"name": "must not be empty"}))
	}

	member, err := app.apiFor(r).Members.Update(r.Context(), apiclient.ID(user.ID), apiclient.MemberUpdate{
		Name:           in.Name,
		Email:          in.Email,
		Phone:          in.Phone,
		MembershipType: in.MembershipType,
	})
	if err != nil {
		return response.Error(upstream(err))
	}

	holder, err := holderFor(r)
	if err != nil {
		return response.Error(err)
	}
	// Role stays as issued at login; only the admin area changes roles.
	holder.SetUser(r.Context(), &session.User{
		ID:    user.ID,
		Name:  member.Name,
		Email: member.Email,
		Role:  user.Role,
	})
	return response.JSON(member)
}

func (app *App) myPayments(r *http.Request) response.Response {
	user, err := currentUser(r)
	if err != nil {
		return response.Error(err)
	}
	params := listParams(r)
	params.MemberID = apiclient.ID(user.ID)
	payments, err := app.apiFor(r).Payments.List(r.Context(), params)
	if err != nil {
		return response.Error(upstream(err))
	}
	return response.WithCache(response.JSON(payments), 0)
}

func (app *App) createPayment(r *http.Request) response.Response {
	user, err := currentUser(r)
	if err != nil {
		return response.Error(err)
	}
	var in apiclient.PaymentInput
	if err := decodeJSON(r, &in); err != nil {
		return response.Error(err)
	}
	if !in.Amount.IsPositive() {
		return response.Error(response.ErrUnprocessableEntity.WithDetails(map[string]any{"amount": "must be positive"}))
	}
	if in.Currency == "" {
		in.Currency = "EUR"
	}
	in.MemberID = apiclient.ID(user.ID)

	payment, err := app.apiFor(r).Payments.Create(r.Context(), in)
	if err != nil {
		return response.Error(upstream(err))
	}
	return response.JSONWithStatus(payment, http.StatusCreated)
}

func (app *App) myPublications(r *http.Request) response.Response {
	user, err := currentUser(r)
	if err != nil {
		return response.Error(err)
	}
	params := listParams(r)
	params.AuthorID = apiclient.ID(user.ID)
	items, err := app.apiFor(r).Publications.List(r.Context(), params)
	if err != nil {
		return response.Error(upstream(err))
	}
	return response.WithCache(response.JSON(items), 0)
}

func (app *App) submitPublication(r *http.Request) response.Response {
	if _, err := currentUser(r); err != nil {
		return response.Error(err)
	}
	var in apiclient.PublicationInput
	if err := decodeJSON(r, &in); err != nil {
		return response.Error(err)
	}
	if strings.TrimSpace(in.Title) == "" {
		return response.Error(response.ErrUnprocessableEntity.WithDetails(map[string]any{"title": "required"}))
	}

	pub, err := app.apiFor(r).Publications.Create(r.Context(), in)
	if err != nil {
		return response.Error(upstream(err))
	}
	// New submissions are pending, but an approved listing may already be cached.
	app.queries.Invalidate(publicationsKey)
	return response.JSONWithStatus(pub, http.StatusCreated)
}
