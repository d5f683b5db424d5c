// Package processor ties the pipeline stages together: it cleans the
// input text, chunks and deduplicates it, runs the batched translation
// and writes the final report. Stage completion is tracked in a state
// store so interrupted runs resume instead of redoing finished work.
package processor
