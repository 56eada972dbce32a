// Package main hosts the gavel CLI entrypoint and command graph.
//
// The Cobra-based command tree covers enqueueing meeting jobs, running the
// worker pool, one-off resolution debugging, queue maintenance, dependency
// checks, and configuration scaffolding. It centralizes configuration
// resolution and store access so subcommands stay declarative; pipeline
// behavior lives in the internal packages.
package main
