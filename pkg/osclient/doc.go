// Package osclient provides the primary entry point for constructing a
// connection to an OpenShift broker that implements the openshift.Connection
// interface.
//
// The broker is navigated by links: every resource carries the catalog of
// operations it supports, and the client follows those links instead of
// building URLs itself. Child collections such as a domain's applications are
// fetched on first access and cached until the parent is refreshed.
//
// Quick start
//
//	import (
//	  "context"
//	  "log"
//	  "time"
//
//	  "github.com/fivetwenty-io/openshift-client/pkg/openshift"
//	  "github.com/fivetwenty-io/openshift-client/pkg/osclient"
//	)
//
//	func example() {
//	  ctx := context.Background()
//
//	  conn, err := osclient.NewWithPassword(ctx, "openshift.example.com", "user", "pass")
//	  if err != nil { log.Fatal(err) }
//
//	  domain, err := conn.CreateDomain(ctx, "foobar")
//	  if err != nil { log.Fatal(err) }
//
//	  app, err := domain.CreateApplication(ctx, "sample", "jbossas-7",
//	    openshift.WithScale(openshift.ScaleEnabled))
//	  if openshift.IsConflict(err) {
//	    app, err = domain.Application(ctx, "sample")
//	  }
//	  if err != nil { log.Fatal(err) }
//
//	  if !app.WaitForAccessible(ctx, 3*time.Minute) {
//	    log.Printf("%s did not come up", app.ApplicationURL())
//	  }
//	}
//
// # Errors
//
// Every operation fails with an *openshift.Error whose Kind tells invalid
// credentials, missing resources, timeouts, rejected requests and conflicts
// apart. Use errors.Is with the openshift sentinels or the Is* helpers.
//
// # Helpers
//
// The package also provides convenience constructors NewWithServer,
// NewWithPassword and NewWithToken that wrap New with the appropriate
// configuration.
package osclient
