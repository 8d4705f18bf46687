// Package metrics exposes Prometheus instruments for sync runs, remote calls
// and HTTP requests. Collectors are registered on the default registry at
// init; Handler serves them.
package metrics
