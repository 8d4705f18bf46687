// Package utils provides common conversion helpers for catalog-sync.
// Money amounts written in catalog documents are coerced to integer minor units
// here so that nothing downstream ever compares prices as floating point.
package utils
