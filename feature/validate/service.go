package validate

import (
	"context"
	"fmt"
	"time"

	"catalog-sync/core/mapping"
	"catalog-sync/core/reconcile"
	"catalog-sync/core/remote"

	"go.uber.org/zap"
)

// CatalogSource yields the local catalog.
type CatalogSource interface {
	Collect(ctx context.Context) ([]reconcile.LocalProduct, error)
}

// SchemaVerifier reports columns missing from the mapping table.
type SchemaVerifier interface {
	VerifySchema(ctx context.Context) ([]string, error)
}

// Options controls a validation.
type Options struct {
	// Schema also checks the mapping table columns.
	Schema bool
}

// Report is the outcome of a validation.
type Report struct {
	IsValid      bool     `json:"is_valid"`
	MissingSyncs []string `json:"missing_syncs"`
	InvalidSyncs []string `json:"invalid_syncs"`
	// Reasons explains each invalid entry, keyed by local id.
	Reasons map[string]string `json:"reasons,omitempty"`
	// MissingColumns is set when the schema check ran and found gaps.
	MissingColumns []string  `json:"missing_columns,omitempty"`
	CheckedAt      time.Time `json:"checked_at"`
}

// Service validates mappings against the catalog and the provider.
type Service struct {
	catalog CatalogSource
	store   mapping.Store
	client  remote.Client
	schema  SchemaVerifier
	logger  *zap.Logger
}

// NewService creates a validation service. schema may be nil.
func NewService(catalog CatalogSource, store mapping.Store, client remote.Client, schema SchemaVerifier, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{catalog: catalog, store: store, client: client, schema: schema, logger: logger}
}

// Validate checks every catalog entry. Provider outages and rejected
// credentials fail the validation instead of marking every entry invalid.
func (s *Service) Validate(ctx context.Context, opts Options) (*Report, error) {
	report := &Report{
		MissingSyncs: []string{},
		InvalidSyncs: []string{},
		Reasons:      map[string]string{},
	}

	if opts.Schema {
		if s.schema == nil {
			return nil, fmt.Errorf("schema check requested but no schema verifier configured")
		}
		missing, err := s.schema.VerifySchema(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to verify mapping schema: %w", err)
		}
		report.MissingColumns = missing
	}

	products, err := s.catalog.Collect(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.client.Ping(ctx); err != nil {
		return nil, fmt.Errorf("billing provider unreachable: %w", err)
	}

	for _, p := range products {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		rec, found, err := s.store.Get(ctx, p.LocalID)
		if err != nil {
			return nil, err
		}
		if !found || !rec.Active {
			report.MissingSyncs = append(report.MissingSyncs, p.LocalID)
			continue
		}

		reason, err := s.checkRemote(ctx, rec)
		if err != nil {
			return nil, err
		}
		if reason != "" {
			report.InvalidSyncs = append(report.InvalidSyncs, p.LocalID)
			report.Reasons[p.LocalID] = reason
			s.logger.Info("Invalid mapping", zap.String("local_id", p.LocalID), zap.String("reason", reason))
		}
	}

	report.IsValid = len(report.MissingSyncs) == 0 && len(report.InvalidSyncs) == 0 && len(report.MissingColumns) == 0
	report.CheckedAt = time.Now().UTC()
	return report, nil
}

// checkRemote returns why rec is unusable, or an empty string. Fatal remote errors are returned as errors.
func (s *Service) checkRemote(ctx context.Context, rec mapping.MappingRecord) (string, error) {
	product, err := s.client.RetrieveProduct(ctx, rec.RemoteProductID)
	if err != nil {
		if remote.IsFatal(err) {
			return "", err
		}
		return fmt.Sprintf("product %s: %v", rec.RemoteProductID, err), nil
	}
	if !product.Active {
		return fmt.Sprintf("product %s is archived", product.ID), nil
	}

	price, err := s.client.RetrievePrice(ctx, rec.RemotePriceID)
	if err != nil {
		if remote.IsFatal(err) {
			return "", err
		}
		return fmt.Sprintf("price %s: %v", rec.RemotePriceID, err), nil
	}
	if !price.Active {
		return fmt.Sprintf("price %s is inactive", price.ID), nil
	}
	if price.UnitAmount != rec.PriceAmount {
		return fmt.Sprintf("price %s amount %d differs from stored %d", price.ID, price.UnitAmount, rec.PriceAmount), nil
	}
	return "", nil
}
