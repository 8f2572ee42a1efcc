// Package provider defines the model backend contracts for the auskunft
// pipeline. The pipeline depends only on the Embedder and Generator
// interfaces; each implementation (e.g., openai) handles its own backend
// protocol internally, keeping API details invisible to the core.
package provider
