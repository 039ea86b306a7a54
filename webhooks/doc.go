// Package webhooks implements inbound delivery authentication and the
// delivery pipeline: signature canonicalization schemes, verifier
// strategies, a dedupe ledger, and the verify/claim/handle processor.
package webhooks
