// Package models provides functionality for listing and categorizing
// models available through an OpenAI-compatible API. It helps users
// discover which translation models their API key can use.
package models
