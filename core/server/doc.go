// Package server holds the configuration of the HTTP surface started by the
// `start` command. The surface exposes "run sync" and "validate sync state" to
// dashboards and schedulers; in readonly mode it refuses mutating syncs.
package server
