// Package ui renders live progress for enrichment runs.
//
// [Model] is a bubbletea program with a single view: a spinner, the current
// lookup message, and running batch/failure counters fed by the engine's
// progress channel. It is the terminal analog of a progress bar for the
// long, rate-limited enrichment loop.
package ui
