// Package chunker splits cleaned text into fixed-size word chunks,
// hashes them and links exact duplicates to their first occurrence.
package chunker
