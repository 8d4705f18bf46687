package reconcile

import (
	"catalog-sync/core/mapping"
	"catalog-sync/core/remote"
)

// Billing is how often a catalog entry is charged.
type Billing string

const (
	BillingMonthly Billing = "monthly"
	BillingYearly  Billing = "yearly"
	BillingOneTime Billing = "one_time"
)

// Interval returns the recurring interval for b. One-time billing has none.
func (b Billing) Interval() remote.Interval {
	switch b {
	case BillingMonthly:
		return remote.IntervalMonth
	case BillingYearly:
		return remote.IntervalYear
	default:
		return remote.IntervalNone
	}
}

// IsValid reports whether b is a known billing mode.
func (b Billing) IsValid() bool {
	return b == BillingMonthly || b == BillingYearly || b == BillingOneTime
}

// LocalProduct is one sellable catalog entry as declared by configuration.
type LocalProduct struct {
	LocalID     string `json:"local_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	// Price is in minor currency units.
	Price    int64             `json:"price"`
	Currency string            `json:"currency"`
	Billing  Billing           `json:"billing"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// DesiredMetadata is the metadata the remote product must carry. The catalog
// keys are also listed under remote.MetadataManagedKeys.
func (p LocalProduct) DesiredMetadata() map[string]string {
	out := make(map[string]string, len(p.Metadata)+3)
	keys := make([]string, 0, len(p.Metadata))
	for k, v := range p.Metadata {
		out[k] = v
		keys = append(keys, k)
	}
	if len(keys) > 0 {
		out[remote.MetadataManagedKeys] = remote.JoinManagedKeys(keys)
	}
	out[remote.MetadataLocalID] = p.LocalID
	out[remote.MetadataManagedBy] = remote.ManagedByValue
	return out
}

// PriceMetadata is the metadata written on every price created for p.
func (p LocalProduct) PriceMetadata() map[string]string {
	return map[string]string{
		remote.MetadataLocalID:   p.LocalID,
		remote.MetadataManagedBy: remote.ManagedByValue,
	}
}

// ActionType is the reconciler's decision for one catalog entry.
type ActionType string

const (
	// ActionCreate creates a remote product and its first price.
	ActionCreate ActionType = "CREATE"
	// ActionUpdateMetadata updates name, description or metadata of the product.
	ActionUpdateMetadata ActionType = "UPDATE_METADATA"
	// ActionRotatePrice creates a new price and deactivates the old one.
	ActionRotatePrice ActionType = "ROTATE_PRICE"
	// ActionNoop leaves the remote side untouched.
	ActionNoop ActionType = "NOOP"
)

// Action is the planned work for one catalog entry.
type Action struct {
	Type    ActionType `json:"type"`
	LocalID string     `json:"local_id"`
	Reason  string     `json:"reason"`

	// ProductID is the live remote product, empty for ActionCreate.
	ProductID string `json:"product_id,omitempty"`
	// PriceID is the live price kept by the action, empty when a new one is needed.
	PriceID string `json:"price_id,omitempty"`
	// UpdateMetadata is set when the product's name, description or metadata drifted.
	UpdateMetadata bool `json:"update_metadata,omitempty"`
	// RemoveMetadata lists remote metadata keys no longer defined by the catalog.
	RemoveMetadata []string `json:"remove_metadata,omitempty"`
	// FirstSync is set when no mapping existed for the entry.
	FirstSync bool `json:"-"`
	// OldPriceIDs are deactivated once the new price exists.
	OldPriceIDs []string `json:"old_price_ids,omitempty"`
	// Adopted is set when ProductID was found through remote metadata rather than the mapping.
	Adopted bool `json:"adopted,omitempty"`
	// Persist is set when the mapping must be written even if nothing changes remotely.
	Persist bool `json:"-"`

	Product LocalProduct `json:"-"`
}

// Mutates reports whether applying a would call a mutating remote method.
func (a Action) Mutates() bool {
	return a.Type != ActionNoop
}

// NeedsWrite reports whether the mapping store must be written after a.
func (a Action) NeedsWrite() bool {
	return a.Type != ActionNoop || a.Persist
}

// Preview describes a without executing it. New remote ids are left empty.
func (a Action) Preview() SyncedProduct {
	return SyncedProduct{
		LocalID:         a.LocalID,
		LocalName:       a.Product.Name,
		RemoteProductID: a.ProductID,
		RemotePriceID:   a.PriceID,
		Price:           a.Product.Price,
		Status:          mapping.StatusSynced,
		Action:          a.Type,
	}
}

// SyncedProduct is the per-item outcome reported by a run.
type SyncedProduct struct {
	LocalID         string             `json:"local_id"`
	LocalName       string             `json:"local_name"`
	RemoteProductID string             `json:"remote_product_id"`
	RemotePriceID   string             `json:"remote_price_id"`
	Price           int64              `json:"price"`
	Status          mapping.SyncStatus `json:"status"`
	Action          ActionType         `json:"action,omitempty"`
	Error           string             `json:"error,omitempty"`
}

// Options controls a reconcile pass.
type Options struct {
	// Force re-verifies the mapped price against live remote state.
	Force bool
	// DryRun prevents execution of any mutations if true.
	DryRun bool
}
