// Package state persists per-stage pipeline progress so interrupted runs
// can resume where they left off. Two backends implement the same Store
// contract: a JSON file per stage (default) and a single SQLite database.
package state
