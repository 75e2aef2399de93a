// Package bootstrap wires casetracker together: configuration, logger,
// database, entity stores, services, rate limiter and the HTTP API.
//
// Usage:
//
//	app, err := bootstrap.NewApp(ctx, "")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer app.Shutdown()
//
//	if err := app.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
//	app.WaitForShutdown()
package bootstrap
