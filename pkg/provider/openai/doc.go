// Package openai implements the provider contracts on top of the OpenAI
// API using the go-openai SDK. A custom base URL makes the client work
// against any OpenAI-compatible endpoint, including local gateways and
// test doubles.
package openai
