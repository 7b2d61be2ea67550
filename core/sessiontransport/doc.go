// Package sessiontransport carries session state between the portal server
// and the browser.
//
// Two persisted-record stores implement session.Store for a single request:
//
//   - CookieStore keeps the whole record in an encrypted cookie.
//   - KeyedStore keeps a signed session id in a cookie and the record in a
//     Backend such as Redis.
//
// Credential is the separate bearer-token cookie that the server-side guard
// inspects. The login flow keeps it consistent with the persisted record,
// but they are distinct cookies.
//
//	factory := sessiontransport.CookieStores(cookies, cfg)
//	holder := session.NewHolder(factory(w, r))
//	holder.Hydrate(r.Context())
package sessiontransport
