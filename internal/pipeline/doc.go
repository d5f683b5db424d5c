// Package pipeline orchestrates batched chunk translation: resume via
// the state store, bounded retries behind a circuit breaker, duplicate
// expansion and systematic quality sampling of the resulting dataset.
package pipeline
