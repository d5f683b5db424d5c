// Package internal holds small helpers shared across the nicoforge
// packages.
package internal

// Version is the nicoforge release version.
const Version = "1.0.0"
