// Package api defines the wire types for the auskunft RAG gateway.
//
// This package provides the request and response types for the four
// pipeline operations (ingest, build, ask, reset), the structured
// error type shared by all endpoints, and request validation.
//
// The package has zero external dependencies (Go standard library only)
// and performs no I/O. All types serialize to the JSON shapes served
// under /v1, so clients in any language can consume them directly.
package api
