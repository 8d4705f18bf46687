package catalog

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"

	"catalog-sync/core/reconcile"
	"catalog-sync/core/storage"

	"go.uber.org/zap"
)

// Collector reads the configured catalog documents.
type Collector struct {
	cfg    Config
	client storage.Client
	bucket string
	logger *zap.Logger
}

// NewCollector creates a collector. client may be nil when cfg only names local files.
func NewCollector(cfg Config, client storage.Client, bucket string, logger *zap.Logger) *Collector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Collector{cfg: cfg, client: client, bucket: bucket, logger: logger}
}

// Collect returns the catalog sorted by local id.
func (c *Collector) Collect(ctx context.Context) ([]reconcile.LocalProduct, error) {
	docs, err := c.loadDocuments(ctx)
	if err != nil {
		return nil, err
	}

	var sources []Source
	for _, d := range docs {
		s, err := d.doc.Sources(d.origin, c.cfg.DefaultCurrency)
		if err != nil {
			return nil, err
		}
		sources = append(sources, s...)
	}

	products, err := Normalize(sources)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("Catalog collected",
		zap.Int("documents", len(docs)),
		zap.Int("products", len(products)))
	return products, nil
}

// Normalize converts sources into products sorted by local id, rejecting duplicates.
func Normalize(sources []Source) ([]reconcile.LocalProduct, error) {
	seen := make(map[string]string, len(sources))
	products := make([]reconcile.LocalProduct, 0, len(sources))
	for _, s := range sources {
		p, err := s.Normalize()
		if err != nil {
			return nil, err
		}
		if first, dup := seen[p.LocalID]; dup {
			return nil, &DuplicateLocalIDError{LocalID: p.LocalID, First: first, Second: s.Origin()}
		}
		seen[p.LocalID] = s.Origin()
		products = append(products, p)
	}
	sort.Slice(products, func(i, j int) bool { return products[i].LocalID < products[j].LocalID })
	return products, nil
}

type loadedDocument struct {
	origin string
	doc    *Document
}

func (c *Collector) loadDocuments(ctx context.Context) ([]loadedDocument, error) {
	var docs []loadedDocument

	for _, file := range c.cfg.Files {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to read catalog file %s: %w", file, err)
		}
		doc, err := ParseDocument(file, data)
		if err != nil {
			return nil, err
		}
		docs = append(docs, loadedDocument{origin: file, doc: doc})
	}

	if !c.cfg.HasStorageSources() {
		if len(docs) == 0 {
			return nil, &InvalidDefinitionError{Origin: "catalog", Reason: "no catalog files or objects configured"}
		}
		return docs, nil
	}
	if c.client == nil {
		return nil, errors.New("catalog objects configured but no storage client available")
	}

	objects := append([]string(nil), c.cfg.Objects...)
	if c.cfg.ObjectPrefix != "" {
		names, err := storage.ListObjectNames(ctx, c.client, c.bucket, c.cfg.ObjectPrefix, ".json", ".yaml", ".yml")
		if err != nil {
			return nil, err
		}
		sort.Strings(names)
		objects = append(objects, names...)
	}

	loaded := make(map[string]struct{}, len(objects))
	for _, name := range objects {
		if _, ok := loaded[name]; ok {
			continue
		}
		loaded[name] = struct{}{}

		data, err := storage.ReadObject(ctx, c.client, c.bucket, name)
		if err != nil {
			return nil, err
		}
		origin := "s3://" + c.bucket + "/" + name
		doc, err := ParseDocument(origin, data)
		if err != nil {
			return nil, err
		}
		docs = append(docs, loadedDocument{origin: origin, doc: doc})
	}

	return docs, nil
}
