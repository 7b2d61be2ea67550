package portal

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/dmitrymomot/memberportal/core/query"
	"github.com/dmitrymomot/memberportal/core/response"
	"github.com/dmitrymomot/memberportal/integration/apiclient"
)

const (
	newsKey         = "news"
	eventsKey       = "events"
	publicationsKey = "publications"

	publicMaxAge = time.Minute
)

func (app *App) home(r *http.Request) response.Response {
	return response.JSON(map[string]any{
		"name":    app.content.Name,
		"tagline": app.content.Tagline,
		"session": currentSession(r),
	})
}

func (app *App) about(*http.Request) response.Response {
	return response.WithCache(response.JSON(app.content.About), publicMaxAge)
}

func (app *App) gallery(*http.Request) response.Response {
	return response.WithCache(response.JSON(app.content.Gallery), publicMaxAge)
}

func (app *App) membership(*http.Request) response.Response {
	return response.WithCache(response.JSON(app.content.Plans), publicMaxAge)
}

func (app *App) advertisement(*http.Request) response.Response {
	return response.WithCache(response.JSON(app.content.Advertisement), publicMaxAge)
}

// Public lists go through the anonymous client so cached entries never depend
// on who asked.

func (app *App) listNews(r *http.Request) response.Response {
	params := listParams(r)
	items, err := query.Fetch(r.Context(), app.queries, query.Key(newsKey, "list", params.CacheKey()),
		func(ctx context.Context) ([]apiclient.News, error) { return app.api.News.List(ctx, params) })
	if err != nil {
		return response.Error(upstream(err))
	}
	return response.JSON(items)
}

func (app *App) getNews(r *http.Request) response.Response {
	id := pathID(r)
	item, err := query.Fetch(r.Context(), app.queries, query.Key(newsKey, "item", id),
		func(ctx context.Context) (apiclient.News, error) { return app.api.News.Get(ctx, id) })
	if err != nil {
		return response.Error(upstream(err))
	}
	return response.JSON(item)
}

func (app *App) listEvents(r *http.Request) response.Response {
	params := listParams(r)
	items, err := query.Fetch(r.Context(), app.queries, query.Key(eventsKey, "list", params.CacheKey()),
		func(ctx context.Context) ([]apiclient.Event, error) { return app.api.Events.List(ctx, params) })
	if err != nil {
		return response.Error(upstream(err))
	}
	return response.JSON(items)
}

func (app *App) getEvent(r *http.Request) response.Response {
	id := pathID(r)
	item, err := query.Fetch(r.Context(), app.queries, query.Key(eventsKey, "item", id),
		func(ctx context.Context) (apiclient.Event, error) { return app.api.Events.Get(ctx, id) })
	if err != nil {
		return response.Error(upstream(err))
	}
	return response.JSON(item)
}

func (app *App) listPublications(r *http.Request) response.Response {
	params := listParams(r)
	params.Status = string(apiclient.PublicationApproved)
	items, err := query.Fetch(r.Context(), app.queries, query.Key(publicationsKey, "list", params.CacheKey()),
		func(ctx context.Context) ([]apiclient.Publication, error) { return app.api.Publications.List(ctx, params) })
	if err != nil {
		return response.Error(upstream(err))
	}
	return response.JSON(items)
}

func (app *App) getPublication(r *http.Request) response.Response {
	id := pathID(r)
	item, err := query.Fetch(r.Context(), app.queries, query.Key(publicationsKey, "item", id),
		func(ctx context.Context) (apiclient.Publication, error) { return app.api.Publications.Get(ctx, id) })
	if err != nil {
		return response.Error(upstream(err))
	}
	if item.Status != apiclient.PublicationApproved {
		return response.Error(response.ErrNotFound)
	}
	return response.JSON(item)
}

// listParams reads page, limit and search from the query string.
func listParams(r *http.Request) apiclient.ListParams {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))
	return apiclient.ListParams{
		Page:   max(page, 0),
		Limit:  min(max(limit, 0), 100),
		Search: q.Get("search"),
	}
}
