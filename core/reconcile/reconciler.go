package reconcile

import (
	"context"
	"fmt"
	"sort"
	"time"

	"catalog-sync/core/mapping"
	"catalog-sync/core/remote"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Reconciler decides and applies the remote work for single catalog entries.
type Reconciler struct {
	client remote.Client
	index  *RemoteIndex
	logger *zap.Logger

	now    func() time.Time
	newKey func() string
}

// NewReconciler creates a reconciler. index may be nil, which disables recovery
// of products whose mapping was lost.
func NewReconciler(client remote.Client, index *RemoteIndex, logger *zap.Logger) *Reconciler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reconciler{
		client: client,
		index:  index,
		logger: logger,
		now:    time.Now,
		newKey: uuid.NewString,
	}
}

// Decide computes the action for local given its current mapping, if any.
// Decide only reads remote state.
func (r *Reconciler) Decide(ctx context.Context, local LocalProduct, rec *mapping.MappingRecord, opts Options) (Action, error) {
	action := Action{LocalID: local.LocalID, Product: local, FirstSync: rec == nil}

	product, err := r.mappedProduct(ctx, rec)
	if err != nil {
		return action, err
	}

	if product == nil {
		adopted, err := r.adopt(ctx, local.LocalID, rec)
		if err != nil {
			return action, err
		}
		if adopted == nil {
			action.Type = ActionCreate
			if rec == nil {
				action.Reason = "no mapping"
			} else {
				action.Reason = fmt.Sprintf("remote product %s not found", rec.RemoteProductID)
			}
			return action, nil
		}
		product = adopted
		action.Adopted = true
		action.Persist = true
	}

	action.ProductID = product.ID
	action.UpdateMetadata = !ProductMatches(*product, local)
	action.RemoveMetadata = StaleMetadataKeys(*product, local)

	mapped := rec != nil && rec.Active && rec.RemoteProductID == product.ID && rec.RemotePriceID != ""
	if !mapped {
		action.Persist = true
		if err := r.decideUnmappedPrice(ctx, &action, local); err != nil {
			return action, err
		}
		return action, nil
	}

	rotate, reason, err := r.priceDrift(ctx, local, rec, opts)
	if err != nil {
		return action, err
	}
	switch {
	case rotate:
		action.Type = ActionRotatePrice
		action.Reason = reason
		if err := r.prepareRotation(ctx, &action, local, rec.RemotePriceID); err != nil {
			return action, err
		}
	case action.UpdateMetadata:
		action.Type = ActionUpdateMetadata
		action.PriceID = rec.RemotePriceID
		action.Reason = "product details drifted"
	default:
		action.Type = ActionNoop
		action.PriceID = rec.RemotePriceID
		action.Reason = "in sync"
	}
	return action, nil
}

// mappedProduct retrieves the product a mapping points at. A missing or
// archived product yields nil.
func (r *Reconciler) mappedProduct(ctx context.Context, rec *mapping.MappingRecord) (*remote.Product, error) {
	if rec == nil || rec.RemoteProductID == "" {
		return nil, nil
	}
	p, err := r.client.RetrieveProduct(ctx, rec.RemoteProductID)
	if remote.IsNotFound(err) {
		r.logger.Info("Mapped product vanished",
			zap.String("local_id", rec.LocalID),
			zap.String("product_id", rec.RemoteProductID))
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if !p.Active {
		return nil, nil
	}
	return p, nil
}

// adopt finds a live managed product for localID that the mapping does not know about.
func (r *Reconciler) adopt(ctx context.Context, localID string, rec *mapping.MappingRecord) (*remote.Product, error) {
	if r.index == nil {
		return nil, nil
	}
	candidate, err := r.index.Lookup(ctx, localID)
	if err != nil || candidate == nil {
		return nil, err
	}
	if rec != nil && candidate.ID == rec.RemoteProductID {
		return nil, nil
	}
	live, err := r.client.RetrieveProduct(ctx, candidate.ID)
	if remote.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if !live.Active || live.LocalID() != localID {
		return nil, nil
	}
	r.logger.Info("Adopting remote product",
		zap.String("local_id", localID),
		zap.String("product_id", live.ID))
	return live, nil
}

// decideUnmappedPrice handles a live product whose current price is unknown to the store.
func (r *Reconciler) decideUnmappedPrice(ctx context.Context, action *Action, local LocalProduct) error {
	match, others, err := r.managedPrices(ctx, action.ProductID, local)
	if err != nil {
		return err
	}
	if match != nil {
		action.PriceID = match.ID
		action.OldPriceIDs = others
		switch {
		case len(others) > 0:
			action.Type = ActionRotatePrice
			action.Reason = "recovered price supersedes others"
		case action.UpdateMetadata:
			action.Type = ActionUpdateMetadata
			action.Reason = "recovered product with drifted details"
		default:
			action.Type = ActionNoop
			action.Reason = "recovered product and price"
		}
		return nil
	}
	action.Type = ActionRotatePrice
	action.Reason = "no active price matches"
	action.OldPriceIDs = others
	return nil
}

// priceDrift reports whether the mapped price must be rotated.
func (r *Reconciler) priceDrift(ctx context.Context, local LocalProduct, rec *mapping.MappingRecord, opts Options) (bool, string, error) {
	if !opts.Force {
		if rec.PriceAmount != local.Price {
			return true, fmt.Sprintf("amount changed: %d -> %d", rec.PriceAmount, local.Price), nil
		}
		return false, "", nil
	}

	price, err := r.client.RetrievePrice(ctx, rec.RemotePriceID)
	if remote.IsNotFound(err) {
		return true, fmt.Sprintf("price %s not found", rec.RemotePriceID), nil
	}
	if err != nil {
		return false, "", err
	}
	if reason := PriceMismatch(*price, rec.RemoteProductID, local); reason != "" {
		return true, reason, nil
	}
	if rec.PriceAmount != local.Price {
		return true, fmt.Sprintf("amount changed: %d -> %d", rec.PriceAmount, local.Price), nil
	}
	return false, "", nil
}

// prepareRotation looks for a matching price left by an interrupted run.
func (r *Reconciler) prepareRotation(ctx context.Context, action *Action, local LocalProduct, oldPriceID string) error {
	match, others, err := r.managedPrices(ctx, action.ProductID, local)
	if err != nil {
		return err
	}
	if match != nil {
		action.PriceID = match.ID
	}
	seen := map[string]struct{}{}
	if action.PriceID != "" {
		seen[action.PriceID] = struct{}{}
	}
	add := func(id string) {
		if id == "" {
			return
		}
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = struct{}{}
		action.OldPriceIDs = append(action.OldPriceIDs, id)
	}
	add(oldPriceID)
	for _, id := range others {
		add(id)
	}
	return nil
}

// managedPrices splits the active prices of productID carrying local's id into
// the one matching local and the rest.
func (r *Reconciler) managedPrices(ctx context.Context, productID string, local LocalProduct) (*remote.Price, []string, error) {
	prices, err := r.client.ListPrices(ctx, productID)
	if err != nil {
		return nil, nil, err
	}
	var (
		match  *remote.Price
		others []string
	)
	for i := range prices {
		p := prices[i]
		if !p.Active || p.Metadata[remote.MetadataLocalID] != local.LocalID {
			continue
		}
		if match == nil && PriceMismatch(p, productID, local) == "" {
			match = &prices[i]
			continue
		}
		others = append(others, p.ID)
	}
	return match, others, nil
}

// Apply executes action against the remote side. The returned product carries
// the ids the mapping must point at afterwards.
func (r *Reconciler) Apply(ctx context.Context, action Action) (SyncedProduct, error) {
	local := action.Product
	out := SyncedProduct{
		LocalID:         action.LocalID,
		LocalName:       local.Name,
		RemoteProductID: action.ProductID,
		RemotePriceID:   action.PriceID,
		Price:           local.Price,
		Action:          action.Type,
	}

	switch action.Type {
	case ActionNoop:
		out.Status = r.appliedStatus(action, mapping.StatusSynced)
		return out, nil

	case ActionCreate:
		product, err := r.client.CreateProduct(ctx, r.productParams(local))
		if err != nil {
			return out, err
		}
		out.RemoteProductID = product.ID
		if r.index != nil {
			r.index.Put(*product)
		}
		price, err := r.client.CreatePrice(ctx, r.priceParams(product.ID, local))
		if err != nil {
			return out, err
		}
		out.RemotePriceID = price.ID
		out.Status = mapping.StatusCreated
		return out, nil

	case ActionUpdateMetadata, ActionRotatePrice:
		if action.UpdateMetadata {
			if _, err := r.client.UpdateProduct(ctx, action.ProductID, r.updateParams(action)); err != nil {
				return out, err
			}
		}
		if out.RemotePriceID == "" {
			price, err := r.client.CreatePrice(ctx, r.priceParams(action.ProductID, local))
			if err != nil {
				return out, err
			}
			out.RemotePriceID = price.ID
		}
		for _, old := range action.OldPriceIDs {
			if old == out.RemotePriceID {
				continue
			}
			if _, err := r.client.DeactivatePrice(ctx, old); err != nil && !remote.IsNotFound(err) {
				return out, err
			}
		}
		out.Status = r.appliedStatus(action, mapping.StatusUpdated)
		return out, nil
	}

	return out, fmt.Errorf("unknown action type %q", action.Type)
}

// appliedStatus reports entries that had no mapping as created, whatever
// remote leftovers of an interrupted run they were completed from.
func (r *Reconciler) appliedStatus(action Action, status mapping.SyncStatus) mapping.SyncStatus {
	if action.FirstSync {
		return mapping.StatusCreated
	}
	return status
}

// Record builds the mapping row for a successfully applied item.
func (r *Reconciler) Record(p SyncedProduct) mapping.MappingRecord {
	return mapping.MappingRecord{
		LocalID:         p.LocalID,
		LocalName:       p.LocalName,
		RemoteProductID: p.RemoteProductID,
		RemotePriceID:   p.RemotePriceID,
		PriceAmount:     p.Price,
		SyncStatus:      p.Status,
		LastSyncedAt:    r.now().UTC(),
		Active:          true,
	}
}

func (r *Reconciler) productParams(local LocalProduct) remote.ProductParams {
	return remote.ProductParams{
		Name:           local.Name,
		Description:    local.Description,
		Metadata:       local.DesiredMetadata(),
		IdempotencyKey: r.newKey(),
	}
}

// updateParams is productParams plus an empty value for every key to unset.
func (r *Reconciler) updateParams(action Action) remote.ProductParams {
	params := r.productParams(action.Product)
	for _, k := range action.RemoveMetadata {
		params.Metadata[k] = ""
	}
	return params
}

func (r *Reconciler) priceParams(productID string, local LocalProduct) remote.PriceParams {
	return remote.PriceParams{
		ProductID:      productID,
		Currency:       local.Currency,
		UnitAmount:     local.Price,
		Interval:       local.Billing.Interval(),
		Metadata:       local.PriceMetadata(),
		IdempotencyKey: r.newKey(),
	}
}

// ProductMatches reports whether the remote product already carries local's
// name, description and metadata. Remote keys the engine never wrote are
// ignored; keys it wrote that the catalog dropped are a mismatch.
func ProductMatches(p remote.Product, local LocalProduct) bool {
	if p.Name != local.Name || p.Description != local.Description {
		return false
	}
	for k, v := range local.DesiredMetadata() {
		if got, ok := p.Metadata[k]; !ok || got != v {
			return false
		}
	}
	return len(StaleMetadataKeys(p, local)) == 0
}

// StaleMetadataKeys lists keys present on p that an earlier sync wrote from
// the catalog and local no longer defines, sorted.
func StaleMetadataKeys(p remote.Product, local LocalProduct) []string {
	desired := local.DesiredMetadata()
	candidates := append(remote.ManagedKeys(p.Metadata), remote.MetadataManagedKeys)

	var stale []string
	for _, k := range candidates {
		if _, keep := desired[k]; keep {
			continue
		}
		if _, present := p.Metadata[k]; present {
			stale = append(stale, k)
		}
	}
	sort.Strings(stale)
	return stale
}

// PriceMismatch describes why price cannot serve local under productID.
// An empty string means it can.
func PriceMismatch(price remote.Price, productID string, local LocalProduct) string {
	switch {
	case !price.Active:
		return fmt.Sprintf("price %s is inactive", price.ID)
	case price.ProductID != productID:
		return fmt.Sprintf("price %s belongs to product %s", price.ID, price.ProductID)
	case price.UnitAmount != local.Price:
		return fmt.Sprintf("amount differs: remote=%d local=%d", price.UnitAmount, local.Price)
	case price.Currency != local.Currency:
		return fmt.Sprintf("currency differs: remote=%s local=%s", price.Currency, local.Currency)
	case price.Interval != local.Billing.Interval():
		return fmt.Sprintf("interval differs: remote=%q local=%q", price.Interval, local.Billing.Interval())
	}
	return ""
}
