// Package inbound exposes the HTTP ingress for provider webhook
// deliveries. It converts requests into the flat key/value form the
// verifiers canonicalize and routes them to the processor registered for
// the provider tag.
package inbound
