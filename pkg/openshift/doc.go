// Package openshift provides types, interfaces, and helpers for working with
// the OpenShift broker REST API.
//
// # Overview
//
// The openshift package defines the resource interfaces (Connection, User,
// Domain, Application, EmbeddedCartridge, SSHKey), the link types the broker
// uses to describe its operations, and the error kinds every operation
// reports. The concrete implementation is created by the osclient package.
//
// # Links
//
// Every resource representation carries a Links catalog keyed by Relation.
// A Link names the HTTP method, the address, and the required and optional
// parameters of one operation. Validate checks a Parameters set against a
// link before it is sent:
//
//	params := openshift.NewParameters().
//	  Add("name", "sample").
//	  Add("cartridge", "php-5.3").
//	  AddOptional("gear_profile", profile)
//
//	if err := openshift.Validate(link, params, openshift.WithStrictOptions(true)); err != nil {
//	  // err wraps ErrMissingRequiredParameter, ErrEmptyRequiredParameter
//	  // or ErrInvalidParameterOption
//	}
//
// # Errors
//
// Failures are reported as *Error values with a Kind. Use the predicates or
// errors.Is with the sentinels to branch on them:
//
//	_, err := conn.CreateDomain(ctx, "foobar")
//	switch {
//	case openshift.IsConflict(err):
//	  // the domain exists already
//	case openshift.IsInvalidCredentials(err):
//	  // login rejected
//	}
//
// # Events
//
// A Notifier set in Config receives an Event for every successful create,
// update and destroy made through the client.
package openshift
