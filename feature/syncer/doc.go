// Package syncer runs catalog synchronization against the billing provider.
//
// A run collects the local catalog, checks the provider is reachable, then
// walks the catalog entry by entry: the reconciler decides an action, the
// action is applied, and the mapping store is written only after every remote
// call of that entry succeeded. A failing entry is recorded and the run moves
// on; an unreachable provider or rejected credentials abort the whole run with
// a GlobalSyncError.
//
// Remote calls go through a retrying client that backs off exponentially on
// transient failures (transport, rate limiting, provider 5xx) and never
// retries semantic errors.
//
// The package also exposes the run over HTTP (POST /sync) as a loader feature.
package syncer
