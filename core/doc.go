// Package core contains the shared domain model and service runtime for
// go-gateways: normalized payment/message statuses, the credential and
// webhook-verification contracts, the error envelope, and the config-driven
// provider registry.
//
// Webhook dispatch is keyed by a provider tag carried in configuration.
// Verifiers are registered per tag and never resolved by runtime type
// inspection.
package core
