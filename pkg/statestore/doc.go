// Package statestore provides oauth.StateStore implementations that make the
// OAuth "state" parameter single-use and verifiable across requests.
//
// Memory suits a single process. Redis works across instances and uses GETDEL
// so a state can be consumed only once:
//
//	client, err := statestore.DialRedis(ctx, os.Getenv("REDIS_URL"),
//		statestore.WithRetry(5, time.Second),
//	)
//	if err != nil {
//		return err
//	}
//	store := statestore.NewRedis(client, statestore.WithPrefix("myapp:oauth:"))
//
//	oauthClient, err := oauth.NewGoogleClient(cfg, oauth.WithStateStore(store, 10*time.Minute))
//
// Both stores expose Ping for readiness checks.
package statestore
