package syncer

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"catalog-sync/core/logger"
	"catalog-sync/core/mapping"
	"catalog-sync/core/metrics"
	"catalog-sync/core/reconcile"
	"catalog-sync/core/remote"
	"catalog-sync/core/storage"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CatalogSource yields the local catalog.
type CatalogSource interface {
	Collect(ctx context.Context) ([]reconcile.LocalProduct, error)
}

// Options controls a run.
type Options struct {
	// DryRun reports the planned actions without mutating remote state or the store.
	DryRun bool `json:"dry_run"`
	// Force re-verifies every mapped price against live remote state.
	Force bool `json:"force"`
	// DeactivateStale deactivates the price of mappings whose entry left the catalog.
	DeactivateStale bool `json:"deactivate_stale"`
}

// Result summarizes a run.
type Result struct {
	RunID      string    `json:"run_id"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	DryRun     bool      `json:"dry_run"`
	Force      bool      `json:"force"`

	Created int      `json:"created"`
	Updated int      `json:"updated"`
	Errors  []string `json:"errors"`

	SyncedProducts []reconcile.SyncedProduct `json:"synced_products"`
	Plan           reconcile.PlanSummary     `json:"plan"`

	// Stale lists active mappings whose local id is no longer in the catalog.
	Stale []string `json:"stale,omitempty"`
	// Deactivated lists stale mappings deactivated by this run.
	Deactivated []string `json:"deactivated,omitempty"`

	// Aborted holds the fatal error that stopped the run early, if any.
	Aborted string `json:"aborted,omitempty"`
	// ReportObject is the storage key the report was archived under.
	ReportObject string `json:"report_object,omitempty"`
}

// Service orchestrates sync runs. At most one run is active per Service.
type Service struct {
	catalog    CatalogSource
	store      mapping.Store
	client     remote.Client
	reconciler *reconcile.Reconciler
	storage    storage.Client
	bucket     string
	cfg        Config
	logger     *zap.Logger

	running  atomic.Bool
	now      func() time.Time
	newRunID func() string
}

// NewService creates a sync service. client should already retry transient
// failures (see NewRetryingClient). storageClient may be nil when no reports are archived.
func NewService(catalog CatalogSource, store mapping.Store, client remote.Client, storageClient storage.Client, bucket string, cfg Config, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	index := reconcile.NewRemoteIndex(client, cfg.IndexCacheTTL)
	return &Service{
		catalog:    catalog,
		store:      store,
		client:     client,
		reconciler: reconcile.NewReconciler(client, index, logger),
		storage:    storageClient,
		bucket:     bucket,
		cfg:        cfg,
		logger:     logger,
		now:        time.Now,
		newRunID:   uuid.NewString,
	}
}

// Run executes one sync run. A returned *Result is non-nil whenever the run
// started processing, including when it was aborted by a GlobalSyncError.
func (s *Service) Run(ctx context.Context, opts Options) (*Result, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, ErrRunInProgress
	}
	defer s.running.Store(false)

	res := &Result{
		RunID:     s.newRunID(),
		StartedAt: s.now().UTC(),
		DryRun:    opts.DryRun,
		Force:     opts.Force,
		Errors:    []string{},
	}
	l := logger.WithRun(s.logger, res.RunID)
	l.Info("Sync run started", zap.Bool("dry_run", opts.DryRun), zap.Bool("force", opts.Force))

	err := s.run(ctx, l, opts, res)

	res.FinishedAt = s.now().UTC()
	outcome := "ok"
	switch {
	case err != nil:
		outcome = "failed"
		res.Aborted = err.Error()
	case len(res.Errors) > 0:
		outcome = "partial"
	}
	metrics.RecordRun(opts.DryRun, outcome, res.FinishedAt.Sub(res.StartedAt))

	if res.SyncedProducts != nil || err == nil {
		s.archive(ctx, l, res)
	}

	if err != nil {
		l.Error("Sync run aborted", zap.Error(err))
		if res.SyncedProducts == nil {
			return nil, err
		}
		return res, err
	}

	l.Info("Sync run finished",
		zap.Int("created", res.Created),
		zap.Int("updated", res.Updated),
		zap.Int("errors", len(res.Errors)),
		zap.Int("stale", len(res.Stale)))
	return res, nil
}

func (s *Service) run(ctx context.Context, l *zap.Logger, opts Options, res *Result) error {
	products, err := s.catalog.Collect(ctx)
	if err != nil {
		return err
	}

	if err := s.client.Ping(ctx); err != nil {
		return &GlobalSyncError{Stage: "ping", Err: err}
	}

	res.SyncedProducts = make([]reconcile.SyncedProduct, 0, len(products))
	var plan reconcile.Plan
	defer func() { res.Plan = plan.Summary }()

	ropts := reconcile.Options{Force: opts.Force, DryRun: opts.DryRun}
	inCatalog := make(map[string]struct{}, len(products))

	for _, p := range products {
		inCatalog[p.LocalID] = struct{}{}

		if err := ctx.Err(); err != nil {
			return &GlobalSyncError{Stage: "canceled", Err: err}
		}

		synced, action, err := s.syncItem(ctx, p, ropts)
		if err != nil {
			if remote.IsFatal(err) {
				return &GlobalSyncError{Stage: p.LocalID, Err: err}
			}
			if action == nil {
				plan.Fail()
			}
			msg := err.Error()
			res.Errors = append(res.Errors, fmt.Sprintf("%s: %s", p.LocalID, msg))
			synced.Status = mapping.StatusError
			synced.Error = msg
			l.Warn("Item failed", zap.String("local_id", p.LocalID), zap.Error(err))
		}
		if action != nil {
			plan.Add(*action)
		}

		switch synced.Status {
		case mapping.StatusCreated:
			res.Created++
		case mapping.StatusUpdated:
			res.Updated++
		}
		res.SyncedProducts = append(res.SyncedProducts, synced)
		metrics.RecordItem(string(synced.Action), string(synced.Status))
	}

	return s.handleStale(ctx, l, opts, inCatalog, res)
}

// syncItem processes one entry. action is nil when no decision could be made.
func (s *Service) syncItem(ctx context.Context, p reconcile.LocalProduct, opts reconcile.Options) (reconcile.SyncedProduct, *reconcile.Action, error) {
	failed := reconcile.SyncedProduct{LocalID: p.LocalID, LocalName: p.Name, Price: p.Price}

	rec, found, err := s.store.Get(ctx, p.LocalID)
	if err != nil {
		return failed, nil, err
	}
	var current *mapping.MappingRecord
	if found {
		current = &rec
		failed.RemoteProductID = rec.RemoteProductID
		failed.RemotePriceID = rec.RemotePriceID
	}

	action, err := s.reconciler.Decide(ctx, p, current, opts)
	if err != nil {
		return failed, nil, err
	}
	failed.Action = action.Type

	if opts.DryRun {
		return action.Preview(), &action, nil
	}

	synced, err := s.reconciler.Apply(ctx, action)
	if err != nil {
		synced.Status = mapping.StatusError
		return synced, &action, err
	}

	if action.NeedsWrite() {
		if err := s.store.Upsert(ctx, s.reconciler.Record(synced)); err != nil {
			synced.Status = mapping.StatusError
			return synced, &action, err
		}
	}
	return synced, &action, nil
}

// handleStale reports active mappings absent from the catalog and optionally deactivates them.
func (s *Service) handleStale(ctx context.Context, l *zap.Logger, opts Options, inCatalog map[string]struct{}, res *Result) error {
	active, err := s.store.ListActive(ctx)
	if err != nil {
		res.Errors = append(res.Errors, "stale check: "+err.Error())
		return nil
	}

	for _, rec := range active {
		if _, ok := inCatalog[rec.LocalID]; ok {
			continue
		}
		res.Stale = append(res.Stale, rec.LocalID)
		if !opts.DeactivateStale || opts.DryRun {
			l.Info("Stale mapping", zap.String("local_id", rec.LocalID))
			continue
		}

		if rec.RemotePriceID != "" {
			if _, err := s.client.DeactivatePrice(ctx, rec.RemotePriceID); err != nil && !remote.IsNotFound(err) {
				if remote.IsFatal(err) {
					return &GlobalSyncError{Stage: rec.LocalID, Err: err}
				}
				res.Errors = append(res.Errors, fmt.Sprintf("%s: %s", rec.LocalID, err.Error()))
				continue
			}
		}
		rec.Active = false
		rec.LastSyncedAt = s.now().UTC()
		if err := s.store.Upsert(ctx, rec); err != nil {
			res.Errors = append(res.Errors, fmt.Sprintf("%s: %s", rec.LocalID, err.Error()))
			continue
		}
		res.Deactivated = append(res.Deactivated, rec.LocalID)
		l.Info("Stale mapping deactivated", zap.String("local_id", rec.LocalID), zap.String("price_id", rec.RemotePriceID))
	}
	return nil
}

// archive writes the run report to storage when a report prefix is configured.
func (s *Service) archive(ctx context.Context, l *zap.Logger, res *Result) {
	if s.cfg.ReportPrefix == "" || s.storage == nil {
		return
	}
	name := fmt.Sprintf("%s/%s_%s.json",
		strings.TrimSuffix(s.cfg.ReportPrefix, "/"),
		res.StartedAt.Format("20060102T150405Z"),
		res.RunID)

	res.ReportObject = name
	data, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		res.ReportObject = ""
		l.Warn("Failed to encode run report", zap.Error(err))
		return
	}
	if err := storage.WriteObject(context.WithoutCancel(ctx), s.storage, s.bucket, name, "application/json", data); err != nil {
		res.ReportObject = ""
		l.Warn("Failed to archive run report", zap.Error(err))
		return
	}
	l.Info("Run report archived", zap.String("object", name))
}
