// Package remote isolates all I/O against the billing provider.
//
// The Client interface is the capability set the sync engine depends on:
// products (create, retrieve, update name/description/metadata) and prices
// (create, retrieve, deactivate). Prices are immutable on the provider side; a
// changed amount is always a new price.
//
// Every method returns either a value or a *Error carrying a Kind, so callers
// decide per failure class (retry transient errors, self-heal on not_found,
// abort the run on transport or auth failures). The client never retries;
// retry policy belongs to the orchestrator.
//
// StripeClient is the production implementation on stripe-go. It is constructed
// once at process start and passed explicitly to the services that need it.
//
// Remote entities created by catalog-sync carry the catalog entry's local id in
// their metadata under MetadataLocalID, which lets a later run find them even if
// the mapping row was never written.
package remote
