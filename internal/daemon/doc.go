// Package daemon keeps a documentation version up to date without manual
// runs.
//
// A Runner serializes generation runs: two runs never overlap, and triggers
// that arrive while a run is in progress collapse into a single follow-up
// run. Triggers come from a Watcher (source tree changes, debounced), a
// Scheduler (cron expression or fixed interval) or the HTTP Server's
// POST /run endpoint.
package daemon
