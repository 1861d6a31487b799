// Package main hosts the blockscan CLI entrypoint and command graph.
//
// The Cobra-based command tree translates terminal invocations into batch
// ingestion runs, pairwise comparison, findings persistence, and report
// export. It centralizes configuration resolution and structured logging
// setup so subcommands can focus on user experience instead of wiring.
package main
