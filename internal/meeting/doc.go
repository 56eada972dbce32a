// Package meeting defines the reference value identifying a single committee
// meeting recording. A Ref is the natural key the queue deduplicates on and
// the input every resolution strategy works from.
package meeting
