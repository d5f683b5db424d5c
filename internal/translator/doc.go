// Package translator defines the batch translation contract the
// orchestrator depends on and provides OpenAI-compatible and Gemini
// implementations of it.
package translator
