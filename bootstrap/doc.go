// Package bootstrap runs the lifecycle of a service that talks to an
// upstream over HTTP: logger and OpenTelemetry setup, the HTTP client
// component, and graceful shutdown.
//
// # Quick Start
//
//	var cfg bootstrap.Config
//	if err := config.LoadConfig("orders", &cfg); err != nil {
//	    log.Fatal(err)
//	}
//	app, err := bootstrap.NewApp(&cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	err = app.RunTask(ctx, func(ctx context.Context, client httpwrap.Client) error {
//	    body, err := client.GetString(ctx, "status")
//	    ...
//	})
package bootstrap
