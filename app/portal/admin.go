package portal

import (
	"net/http"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/memberportal/core/logger"
	"github.com/dmitrymomot/memberportal/core/response"
	"github.com/dmitrymomot/memberportal/integration/apiclient"
)

// The view guard only keeps members away from these pages; the API enforces
// the admin role on every call below.

func (app *App) adminOverview(r *http.Request) response.Response {
	api := app.apiFor(r)

	var (
		pending  []apiclient.Publication
		members  []apiclient.Member
		payments []apiclient.Payment
	)
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() (err error) {
		pending, err = api.Publications.List(ctx, apiclient.ListParams{Status: string(apiclient.PublicationPending)})
		return err
	})
	g.Go(func() (err error) {
		members, err = api.Members.List(ctx, apiclient.ListParams{})
		return err
	})
	g.Go(func() (err error) {
		payments, err = api.Payments.List(ctx, apiclient.ListParams{Limit: 10})
		return err
	})
	if err := g.Wait(); err != nil {
		return response.Error(upstream(err))
	}

	return response.WithCache(response.JSON(map[string]any{
		"pendingPublications": len(pending),
		"members":             len(members),
		"recentPayments":      payments,
	}), 0)
}

func (app *App) adminPublications(r *http.Request) response.Response {
	params := listParams(r)
	if status := apiclient.PublicationStatus(r.URL.Query().Get("status")); status.Valid() {
		params.Status = string(status)
	}
	items, err := app.apiFor(r).Publications.List(r.Context(), params)
	if err != nil {
		return response.Error(upstream(err))
	}
	return response.WithCache(response.JSON(items), 0)
}

func (app *App) adminSetPublicationStatus(r *http.Request) response.Response {
	var in struct {
		Status apiclient.PublicationStatus `json:"status"`
	}
	if err := decodeJSON(r, &in); err != nil {
		return response.Error(err)
	}
	if !in.Status.Valid() {
		return response.Error(response.ErrUnprocessableEntity.WithDetails(map[string]any{
			"status": "must be one of pending, approved, rejected",
		}))
	}

	pub, err := app.apiFor(r).Publications.SetStatus(r.Context(), pathID(r), in.Status)
	if err != nil {
		return response.Error(upstream(err))
	}
	app.queries.Invalidate(publicationsKey)
	return response.JSON(pub)
}

func (app *App) adminDeletePublication(r *http.Request) response.Response {
	if err := app.apiFor(r).Publications.Delete(r.Context(), pathID(r)); err != nil {
		return response.Error(upstream(err))
	}
	app.queries.Invalidate(publicationsKey)
	return response.NoContent()
}

func (app *App) adminCreateNews(r *http.Request) response.Response {
	in, err := decodeNews(r)
	if err != nil {
		return response.Error(err)
	}
	item, err := app.apiFor(r).News.Create(r.Context(), in)
	if err != nil {
		return response.Error(upstream(err))
	}
	app.queries.Invalidate(newsKey)
	return response.JSONWithStatus(item, http.StatusCreated)
}

func (app *App) adminUpdateNews(r *http.Request) response.Response {
	in, err := decodeNews(r)
	if err != nil {
		return response.Error(err)
	}
	item, err := app.apiFor(r).News.Update(r.Context(), pathID(r), in)
	if err != nil {
		return response.Error(upstream(err))
	}
	app.queries.Invalidate(newsKey)
	return response.JSON(item)
}

func (app *App) adminDeleteNews(r *http.Request) response.Response {
	if err := app.apiFor(r).News.Delete(r.Context(), pathID(r)); err != nil {
		return response.Error(upstream(err))
	}
	app.queries.Invalidate(newsKey)
	return response.NoContent()
}

func decodeNews(r *http.Request) (apiclient.NewsInput, error) {
	var in apiclient.NewsInput
	if err := decodeJSON(r, &in); err != nil {
		return in, err
	}
	details := map[string]any{}
	if strings.TrimSpace(in.Title) == "" {
		details["title"] = "required"
	}
	if strings.TrimSpace(in.Content) == "" {
		details["content"] = "required"
	}
	if len(details) > 0 {
		return in, response.ErrUnprocessableEntity.WithDetails(details)
	}
	return in, nil
}

func (app *App) adminCreateEvent(r *http.Request) response.Response {
	in, err := decodeEvent(r)
	if err != nil {
		return response.Error(err)
	}
	item, err := app.apiFor(r).Events.Create(r.Context(), in)
	if err != nil {
		return response.Error(upstream(err))
	}
	app.queries.Invalidate(eventsKey)
	return response.JSONWithStatus(item, http.StatusCreated)
}

func (app *App) adminUpdateEvent(r *http.Request) response.Response {
	in, err := decodeEvent(r)
	if err != nil {
		return response.Error(err)
	}
	item, err := app.apiFor(r).Events.Update(r.Context(), pathID(r), in)
	if err != nil {
		return response.Error(upstream(err))
	}
	app.queries.Invalidate(eventsKey)
	return response.JSON(item)
}

func (app *App) adminDeleteEvent(r *http.Request) response.Response {
	if err := app.apiFor(r).Events.Delete(r.Context(), pathID(r)); err != nil {
		return response.Error(upstream(err))
	}
	app.queries.Invalidate(eventsKey)
	return response.NoContent()
}

func decodeEvent(r *http.Request) (apiclient.EventInput, error) {
	var in apiclient.EventInput
	if err := decodeJSON(r, &in); err != nil {
		return in, err
	}
	details := map[string]any{}
	if strings.TrimSpace(in.Title) == "" {
		details["title"] = "required"
	}
	if in.StartsAt.IsZero() {
		details["startsAt"] = "required"
	}
	if !in.EndsAt.IsZero() && in.EndsAt.Before(in.StartsAt) {
		details["endsAt"] = "must not be before startsAt"
	}
	if len(details) > 0 {
		return in, response.ErrUnprocessableEntity.WithDetails(details)
	}
	return in, nil
}

func (app *App) adminMembers(r *http.Request) response.Response {
	members, err := app.apiFor(r).Members.List(r.Context(), listParams(r))
	if err != nil {
		return response.Error(upstream(err))
	}
	return response.WithCache(response.JSON(members), 0)
}

func (app *App) adminUpdateMember(r *http.Request) response.Response {
	var in apiclient.MemberUpdate
	if err := decodeJSON(r, &in); err != nil {
		return response.Error(err)
	}
	id := pathID(r)
	member, err := app.apiFor(r).Members.Update(r.Context(), id, in)
	if err != nil {
		return response.Error(upstream(err))
	}
	// Sessions carry the role issued at login, so a role or activation change
	// only takes effect once the member signs in again.
	if in.Role != nil || in.Active != nil {
		app.revokeSessions(r, id)
	}
	return response.JSON(member)
}

func (app *App) adminDeleteMember(r *http.Request) response.Response {
	id := pathID(r)
	if err := app.apiFor(r).Members.Delete(r.Context(), id); err != nil {
		return response.Error(upstream(err))
	}
	app.revokeSessions(r, id)
	return response.NoContent()
}

// revokeSessions drops the member's stored sessions. Cookie-only deployments
// have nothing to revoke; the API rejects the token on next use.
func (app *App) revokeSessions(r *http.Request, id apiclient.ID) {
	if app.credentials == nil {
		return
	}
	n, err := app.credentials.RemoveUser(r.Context(), id.String())
	if err != nil {
		app.logger.ErrorContext(r.Context(), "failed to revoke member sessions",
			logger.UserID(id.String()),
			logger.Error(err),
		)
		return
	}
	app.logger.InfoContext(r.Context(), "member sessions revoked",
		logger.UserID(id.String()),
		logger.Key("sessions", n),
	)
}

func (app *App) adminPayments(r *http.Request) response.Response {
	params := listParams(r)
	if status := r.URL.Query().Get("status"); status != "" {
		params.Status = status
	}
	if member := r.URL.Query().Get("memberId"); member != "" {
		params.MemberID = apiclient.ID(member)
	}
	payments, err := app.apiFor(r).Payments.List(r.Context(), params)
	if err != nil {
		return response.Error(upstream(err))
	}
	return response.WithCache(response.JSON(payments), 0)
}
