// Package catalog collects the local product catalog from configuration
// documents and normalizes it into reconcile.LocalProduct entries.
//
// Documents are JSON or YAML (chosen by extension) and are read from local
// files and/or objects in the configured storage bucket. A document may
// declare plans, add-ons, role tiers and organizations; each declaration is
// expanded into one or more Source values, which are normalized into the flat
// product list consumed by the reconciler.
//
// Collect fails with a ConfigurationError when two sources produce the same
// local id or a definition is malformed. Such errors are raised before any
// remote call is made.
package catalog
