// Package auth provides the credential providers attached to outbound
// requests: a static API-key variant and a refreshable token variant with
// single-flight refresh per instance.
//
// The refresh guard is scoped to one credential instance. Callers that
// queue behind an in-flight refresh re-check staleness after acquiring the
// guard, so a burst of concurrent requests against an expired token
// produces exactly one token exchange.
package auth
