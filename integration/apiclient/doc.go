// Package apiclient is the HTTP client for the portal REST API.
//
// Every request is JSON and carries "Authorization: Bearer <token>" when the
// configured TokenSource returns a non-empty token. There are no retries:
// transport failures are returned wrapped, and non-2xx answers become *Error,
// which matches ErrUnauthorized, ErrForbidden and ErrNotFound through
// errors.Is.
//
//	holder := session.NewHolder(store)
//	api, err := apiclient.New("https://api.example.org",
//		apiclient.WithTokenSource(holder),
//		apiclient.WithUnauthorizedHandler(holder.Logout),
//	)
//
//	user, token, err := api.Auth.Login(ctx, email, password)
//	if err != nil {
//		return err
//	}
//	holder.Login(ctx, user, token)
//
//	news, err := api.News.List(ctx, apiclient.ListParams{Limit: 10})
//
// Use With to derive a per-request client that shares the transport but reads
// tokens from a different holder.
package apiclient
