// Package transport provides the HTTP middleware chain and error
// serialization for the auskunft API.
//
// Middleware wraps plain http.Handler values, so a single chain covers
// the JSON API, the MCP endpoint, and the metrics endpoint alike.
// Built-in middleware provides panic recovery, request ID assignment
// (X-Request-ID), and structured logging via log/slog. Custom
// middleware can be added for application-specific concerns.
//
// Error responses use the wrapper format from pkg/api: an APIError
// serialized under a top-level "error" key, with the HTTP status code
// derived from the error type.
package transport
