// Package validate checks, without mutating anything, that every catalog entry
// has an active mapping whose remote product and price still exist.
package validate
