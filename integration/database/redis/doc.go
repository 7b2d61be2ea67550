// Package redis connects to Redis and stores portal session records in it.
//
// Connect parses a redis:// or rediss:// URL, retries the initial ping and
// returns a ready client. Healthcheck wraps a ping for readiness endpoints.
//
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer client.Close()
//
// CredentialStore is a sessiontransport.Backend: each record is a JSON value
// under "<prefix>:session:<id>" with a sliding TTL, and every session id is
// indexed in a per-user set so all sessions of a user can be revoked at once.
//
//	creds := redis.NewCredentialStore(client, redis.WithTTL(7*24*time.Hour))
//	stores := sessiontransport.KeyedStores(cookies, creds, transportCfg)
//
//	// After an admin removes a member:
//	_ = creds.RemoveUser(ctx, memberID)
package redis
