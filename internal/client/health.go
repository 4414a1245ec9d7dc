package client

import (
	"strings"
)

// runtimeKind groups cartridges that share a health check.
type runtimeKind int

const (
	runtimeDefault runtimeKind = iota
	runtimeJBoss
	runtimeJenkins
)

// healthCheck is the probe address and success predicate of a runtime kind.
type healthCheck struct {
	path      string
	isHealthy func(body string) bool
}

var healthChecks = map[runtimeKind]healthCheck{
	runtimeDefault: {path: "health", isHealthy: expectExactly("1")},
	runtimeJBoss:   {path: "health", isHealthy: expectExactly("1")},
	runtimeJenkins: {path: "login?from=%2F", isHealthy: expectContaining("<html>")},
}

// runtimeKindOf selects the runtime kind from a cartridge name such as "jbossas-7".
func runtimeKindOf(cartridge string) runtimeKind {
	switch {
	case strings.HasPrefix(cartridge, "jbossas"), strings.HasPrefix(cartridge, "jbosseap"):
		return runtimeJBoss
	case strings.HasPrefix(cartridge, "jenkins"):
		return runtimeJenkins
	default:
		return runtimeDefault
	}
}

// healthCheckFor returns the health check of cartridge.
func healthCheckFor(cartridge string) healthCheck {
	return healthChecks[runtimeKindOf(cartridge)]
}

// url joins the probe path to an application URL.
func (h healthCheck) url(applicationURL string) string {
	if applicationURL == "" {
		return ""
	}

	return strings.TrimSuffix(applicationURL, "/") + "/" + h.path
}

func expectExactly(token string) func(string) bool {
	return func(body string) bool {
		return strings.TrimSpace(body) == token
	}
}

func expectContaining(fragment string) func(string) bool {
	return func(body string) bool {
		return strings.Contains(body, fragment)
	}
}
