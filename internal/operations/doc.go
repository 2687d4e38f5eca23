// Package operations orchestrates the curation pipeline: ingest, validate,
// assess, transform, export. Steps are registered in execution order and run
// sequentially; the first failure halts the run and the resulting error
// names the step that failed.
//
// Steps exchange data through the RunState context and append lineage events
// to its provenance log, so a completed run carries one event per executed
// step.
package operations
