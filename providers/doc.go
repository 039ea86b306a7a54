// Package providers contains the built-in payment and messaging provider
// integrations. Each subpackage pairs a webhook verifier with the event
// mapping for one provider.
package providers
