package remote

import (
	"context"
	"sort"
	"strings"
)

// Interval is the recurring interval of a price. One-time prices have none.
type Interval string

const (
	IntervalMonth Interval = "month"
	IntervalYear  Interval = "year"
	IntervalNone  Interval = ""
)

// Metadata keys written on every remote product and price.
const (
	MetadataLocalID   = "local_id"
	MetadataManagedBy = "managed_by"
	ManagedByValue    = "catalog-sync"
	// MetadataManagedKeys lists the catalog-defined keys written on a product,
	// so keys later removed from the catalog can be unset.
	MetadataManagedKeys = "managed_keys"
)

// JoinManagedKeys encodes keys for MetadataManagedKeys, sorted and comma separated.
func JoinManagedKeys(keys []string) string {
	sorted := append([]string(nil), keys...)
	sort.Strings(sorted)
	return strings.Join(sorted, ",")
}

// ManagedKeys decodes the MetadataManagedKeys entry of md.
func ManagedKeys(md map[string]string) []string {
	raw := md[MetadataManagedKeys]
	if raw == "" {
		return nil
	}
	return strings.Split(raw, ",")
}

// Product is a provider-owned product.
type Product struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Metadata    map[string]string `json:"metadata"`
	Active      bool              `json:"active"`
}

// LocalID returns the catalog entry id recorded in the product metadata.
func (p Product) LocalID() string {
	return p.Metadata[MetadataLocalID]
}

// Price is a provider-owned price. UnitAmount never changes after creation.
type Price struct {
	ID         string            `json:"id"`
	ProductID  string            `json:"product_id"`
	Currency   string            `json:"currency"`
	UnitAmount int64             `json:"unit_amount"`
	Interval   Interval          `json:"recurring_interval"`
	Active     bool              `json:"active"`
	Metadata   map[string]string `json:"metadata"`
}

// ProductParams describes the mutable fields of a product.
type ProductParams struct {
	Name        string
	Description string
	// Metadata is merged into the product. An empty value unsets the key.
	Metadata map[string]string
	// IdempotencyKey makes a retried create safe. Empty means none.
	IdempotencyKey string
}

// PriceParams describes a new price.
type PriceParams struct {
	ProductID  string
	Currency   string
	UnitAmount int64
	Interval   Interval
	Metadata   map[string]string
	// IdempotencyKey makes a retried create safe. Empty means none.
	IdempotencyKey string
}

// Client is the capability set over the billing provider.
type Client interface {
	// Ping verifies the provider is reachable with the configured credentials.
	Ping(ctx context.Context) error

	CreateProduct(ctx context.Context, params ProductParams) (*Product, error)
	RetrieveProduct(ctx context.Context, id string) (*Product, error)
	// UpdateProduct changes name, description and metadata only.
	UpdateProduct(ctx context.Context, id string, params ProductParams) (*Product, error)

	CreatePrice(ctx context.Context, params PriceParams) (*Price, error)
	RetrievePrice(ctx context.Context, id string) (*Price, error)
	DeactivatePrice(ctx context.Context, id string) (*Price, error)

	// ListProducts returns all active products.
	ListProducts(ctx context.Context) ([]Product, error)
	// ListPrices returns the active prices of a product.
	ListPrices(ctx context.Context, productID string) ([]Price, error)
}
