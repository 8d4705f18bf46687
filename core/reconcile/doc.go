// Package reconcile decides, per catalog entry, what the billing provider must
// do to match the local catalog, and applies that decision.
//
// # Decisions
//
// For one LocalProduct and its MappingRecord (if any) the Reconciler chooses:
//
//   - CREATE when there is no mapping or the mapped product is gone and no
//     managed product carrying the same local_id can be recovered.
//   - NOOP when the product matches and the stored amount equals the local one.
//   - UPDATE_METADATA when only name, description or metadata drifted.
//   - ROTATE_PRICE when the amount changed: a new price is created under the
//     same product and the old one is deactivated. Prices are never edited.
//
// With Options.Force the mapped price is fetched and compared against the
// local entry, so out-of-band edits on the provider are detected.
//
// # Recovery
//
// Every product and price created here carries the local_id in its metadata.
// RemoteIndex lists managed products once (cached with a TTL, builds are
// deduplicated with singleflight) so that a product created by an interrupted
// run is adopted instead of duplicated. Likewise an active price matching the
// target amount is reused instead of creating another one.
//
// # Usage Example
//
//	index := reconcile.NewRemoteIndex(client, 5*time.Minute)
//	r := reconcile.NewReconciler(client, index, logger)
//
//	action, err := r.Decide(ctx, local, rec, reconcile.Options{})
//	synced, err := r.Apply(ctx, action)
//	err = store.Upsert(ctx, r.Record(synced))
package reconcile
