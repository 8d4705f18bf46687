package reconcile

import (
	"context"
	"testing"
	"time"

	"catalog-sync/core/mapping"
	"catalog-sync/core/remote"
	"catalog-sync/core/remote/mocks"
	"catalog-sync/core/remote/remotetest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func proMonthly(price int64) LocalProduct {
	return LocalProduct{
		LocalID:     "plan_pro_monthly",
		Name:        "Pro (monthly)",
		Description: "Pro plan",
		Price:       price,
		Currency:    "usd",
		Billing:     BillingMonthly,
		Metadata:    map[string]string{"plan_id": "pro"},
	}
}

func newTestReconciler(client remote.Client) *Reconciler {
	return NewReconciler(client, NewRemoteIndex(client, time.Minute), zap.NewNop())
}

// applyNew creates local on the fake and returns its mapping.
func applyNew(t *testing.T, r *Reconciler, local LocalProduct) mapping.MappingRecord {
	t.Helper()
	action, err := r.Decide(context.Background(), local, nil, Options{})
	require.NoError(t, err)
	require.Equal(t, ActionCreate, action.Type)
	synced, err := r.Apply(context.Background(), action)
	require.NoError(t, err)
	return r.Record(synced)
}

func TestDecide_NoMappingCreates(t *testing.T) {
	fake := remotetest.New()
	r := newTestReconciler(fake)

	action, err := r.Decide(context.Background(), proMonthly(4900), nil, Options{})
	require.NoError(t, err)
	assert.Equal(t, ActionCreate, action.Type)
	assert.Equal(t, "no mapping", action.Reason)
	assert.Empty(t, action.ProductID)
	assert.Equal(t, 0, fake.Mutations())
}

func TestApply_CreateWritesProductAndPrice(t *testing.T) {
	fake := remotetest.New()
	r := newTestReconciler(fake)

	rec := applyNew(t, r, proMonthly(4900))

	assert.Equal(t, mapping.StatusCreated, rec.SyncStatus)
	assert.Equal(t, int64(4900), rec.PriceAmount)
	assert.True(t, rec.Active)

	product, ok := fake.Product(rec.RemoteProductID)
	require.True(t, ok)
	assert.Equal(t, "plan_pro_monthly", product.LocalID())
	assert.Equal(t, remote.ManagedByValue, product.Metadata[remote.MetadataManagedBy])
	assert.Equal(t, "pro", product.Metadata["plan_id"])

	price, ok := fake.Price(rec.RemotePriceID)
	require.True(t, ok)
	assert.Equal(t, int64(4900), price.UnitAmount)
	assert.Equal(t, remote.IntervalMonth, price.Interval)
	assert.Equal(t, rec.RemoteProductID, price.ProductID)
}

func TestDecide_UnchangedIsNoop(t *testing.T) {
	fake := remotetest.New()
	r := newTestReconciler(fake)
	rec := applyNew(t, r, proMonthly(4900))
	fake.ResetCalls()

	action, err := r.Decide(context.Background(), proMonthly(4900), &rec, Options{})
	require.NoError(t, err)
	assert.Equal(t, ActionNoop, action.Type)
	assert.False(t, action.NeedsWrite())
	assert.Equal(t, rec.RemotePriceID, action.PriceID)
	assert.Equal(t, 0, fake.Mutations())
}

func TestDecide_DetailsDriftUpdatesMetadata(t *testing.T) {
	fake := remotetest.New()
	r := newTestReconciler(fake)
	rec := applyNew(t, r, proMonthly(4900))

	local := proMonthly(4900)
	local.Name = "Pro Plus (monthly)"
	action, err := r.Decide(context.Background(), local, &rec, Options{})
	require.NoError(t, err)
	assert.Equal(t, ActionUpdateMetadata, action.Type)

	synced, err := r.Apply(context.Background(), action)
	require.NoError(t, err)
	assert.Equal(t, mapping.StatusUpdated, synced.Status)
	assert.Equal(t, rec.RemotePriceID, synced.RemotePriceID)

	product, _ := fake.Product(rec.RemoteProductID)
	assert.Equal(t, "Pro Plus (monthly)", product.Name)
	assert.Equal(t, 1, fake.Calls(remotetest.OpCreatePrice), "only the initial price")
}

func TestDecide_ExtraRemoteMetadataIgnored(t *testing.T) {
	fake := remotetest.New()
	r := newTestReconciler(fake)
	rec := applyNew(t, r, proMonthly(4900))
	fake.EditProduct(rec.RemoteProductID, func(p *remote.Product) {
		p.Metadata["dashboard_note"] = "added by hand"
	})

	action, err := r.Decide(context.Background(), proMonthly(4900), &rec, Options{})
	require.NoError(t, err)
	assert.Equal(t, ActionNoop, action.Type)
}

func TestApply_RotatePriceKeepsProduct(t *testing.T) {
	fake := remotetest.New()
	r := newTestReconciler(fake)
	rec := applyNew(t, r, proMonthly(4900))

	action, err := r.Decide(context.Background(), proMonthly(5900), &rec, Options{})
	require.NoError(t, err)
	require.Equal(t, ActionRotatePrice, action.Type)
	assert.Equal(t, []string{rec.RemotePriceID}, action.OldPriceIDs)
	assert.False(t, action.UpdateMetadata)

	synced, err := r.Apply(context.Background(), action)
	require.NoError(t, err)
	assert.Equal(t, mapping.StatusUpdated, synced.Status)
	assert.Equal(t, rec.RemoteProductID, synced.RemoteProductID)
	assert.NotEqual(t, rec.RemotePriceID, synced.RemotePriceID)

	old, _ := fake.Price(rec.RemotePriceID)
	assert.False(t, old.Active)
	assert.Equal(t, int64(4900), old.UnitAmount)

	fresh, _ := fake.Price(synced.RemotePriceID)
	assert.True(t, fresh.Active)
	assert.Equal(t, int64(5900), fresh.UnitAmount)
	assert.Equal(t, 0, fake.Calls(remotetest.OpUpdateProduct))
}

func TestApply_RotateOneTimePrice(t *testing.T) {
	fake := remotetest.New()
	r := newTestReconciler(fake)
	setup := LocalProduct{LocalID: "org_acme_setup", Name: "Acme setup", Price: 10000, Currency: "usd", Billing: BillingOneTime}
	rec := applyNew(t, r, setup)

	setup.Price = 15000
	action, err := r.Decide(context.Background(), setup, &rec, Options{})
	require.NoError(t, err)
	require.Equal(t, ActionRotatePrice, action.Type)

	synced, err := r.Apply(context.Background(), action)
	require.NoError(t, err)

	fresh, _ := fake.Price(synced.RemotePriceID)
	assert.Equal(t, remote.IntervalNone, fresh.Interval)
	old, _ := fake.Price(rec.RemotePriceID)
	assert.False(t, old.Active)
}

func TestDecide_VanishedProductCreates(t *testing.T) {
	fake := remotetest.New()
	r := NewReconciler(fake, nil, zap.NewNop())
	rec := applyNew(t, r, proMonthly(4900))
	rec.RemoteProductID = "prod_missing"

	action, err := r.Decide(context.Background(), proMonthly(4900), &rec, Options{})
	require.NoError(t, err)
	assert.Equal(t, ActionCreate, action.Type)
	assert.Contains(t, action.Reason, "prod_missing")
}

func TestDecide_AdoptsProductFromInterruptedRun(t *testing.T) {
	fake := remotetest.New()
	r := newTestReconciler(fake)
	// A previous run created the remote side but never wrote the mapping.
	lost := applyNew(t, r, proMonthly(4900))
	r.index.Invalidate()
	fake.ResetCalls()

	action, err := r.Decide(context.Background(), proMonthly(4900), nil, Options{})
	require.NoError(t, err)
	assert.Equal(t, ActionNoop, action.Type)
	assert.True(t, action.Adopted)
	assert.True(t, action.NeedsWrite())
	assert.Equal(t, lost.RemoteProductID, action.ProductID)
	assert.Equal(t, lost.RemotePriceID, action.PriceID)

	synced, err := r.Apply(context.Background(), action)
	require.NoError(t, err)
	assert.Equal(t, mapping.StatusCreated, synced.Status, "an entry without mapping counts as created")
	assert.Equal(t, lost.RemotePriceID, synced.RemotePriceID)
	assert.Equal(t, 0, fake.Mutations())
}

func TestDecide_AdoptedProductWithoutPriceRotates(t *testing.T) {
	fake := remotetest.New()
	r := newTestReconciler(fake)
	fake.Failures[remotetest.OpCreatePrice] = remote.NewError("create_price", remote.KindInvalid, "bad currency")
	fake.FailOnce[remotetest.OpCreatePrice] = true

	action, err := r.Decide(context.Background(), proMonthly(4900), nil, Options{})
	require.NoError(t, err)
	_, err = r.Apply(context.Background(), action)
	require.Error(t, err)

	action, err = r.Decide(context.Background(), proMonthly(4900), nil, Options{})
	require.NoError(t, err)
	assert.True(t, action.Adopted)
	assert.Equal(t, ActionRotatePrice, action.Type)
	assert.Empty(t, action.PriceID)

	synced, err := r.Apply(context.Background(), action)
	require.NoError(t, err)
	assert.NotEmpty(t, synced.RemotePriceID)
	assert.Equal(t, mapping.StatusCreated, synced.Status)
	assert.Equal(t, 1, fake.Calls(remotetest.OpCreateProduct))
}

func TestDecide_RotationReusesMatchingPrice(t *testing.T) {
	fake := remotetest.New()
	r := newTestReconciler(fake)
	rec := applyNew(t, r, proMonthly(4900))

	// An interrupted rotation left the new price behind without deactivating the old one.
	leftover, err := fake.CreatePrice(context.Background(), remote.PriceParams{
		ProductID:  rec.RemoteProductID,
		Currency:   "usd",
		UnitAmount: 5900,
		Interval:   remote.IntervalMonth,
		Metadata:   proMonthly(5900).PriceMetadata(),
	})
	require.NoError(t, err)
	fake.ResetCalls()

	action, err := r.Decide(context.Background(), proMonthly(5900), &rec, Options{})
	require.NoError(t, err)
	assert.Equal(t, ActionRotatePrice, action.Type)
	assert.Equal(t, leftover.ID, action.PriceID)

	synced, err := r.Apply(context.Background(), action)
	require.NoError(t, err)
	assert.Equal(t, leftover.ID, synced.RemotePriceID)
	assert.Equal(t, 0, fake.Calls(remotetest.OpCreatePrice))
	assert.Equal(t, 1, fake.Calls(remotetest.OpDeactivatePrice))
}

func TestDecide_ForceDetectsOutOfBandPriceChange(t *testing.T) {
	fake := remotetest.New()
	r := newTestReconciler(fake)
	rec := applyNew(t, r, proMonthly(4900))
	fake.SetPriceActive(rec.RemotePriceID, false)

	action, err := r.Decide(context.Background(), proMonthly(4900), &rec, Options{})
	require.NoError(t, err)
	assert.Equal(t, ActionNoop, action.Type, "without force the stored amount is trusted")

	action, err = r.Decide(context.Background(), proMonthly(4900), &rec, Options{Force: true})
	require.NoError(t, err)
	assert.Equal(t, ActionRotatePrice, action.Type)
	assert.Contains(t, action.Reason, "inactive")
}

func TestDecide_ForceMissingPriceRotates(t *testing.T) {
	fake := remotetest.New()
	r := newTestReconciler(fake)
	rec := applyNew(t, r, proMonthly(4900))
	fake.DeletePrice(rec.RemotePriceID)

	action, err := r.Decide(context.Background(), proMonthly(4900), &rec, Options{Force: true})
	require.NoError(t, err)
	assert.Equal(t, ActionRotatePrice, action.Type)

	synced, err := r.Apply(context.Background(), action)
	require.NoError(t, err)
	assert.NotEqual(t, rec.RemotePriceID, synced.RemotePriceID)
}

func TestDecide_ForceInSyncIsNoop(t *testing.T) {
	fake := remotetest.New()
	r := newTestReconciler(fake)
	rec := applyNew(t, r, proMonthly(4900))

	action, err := r.Decide(context.Background(), proMonthly(4900), &rec, Options{Force: true})
	require.NoError(t, err)
	assert.Equal(t, ActionNoop, action.Type)
	assert.Equal(t, 1, fake.Calls("retrieve_price"))
}

func TestDecide_RetrieveErrorPropagates(t *testing.T) {
	client := new(mocks.Client)
	client.On("RetrieveProduct", mock.Anything, "prod_1").
		Return(nil, remote.NewError("retrieve_product", remote.KindAuth, "invalid api key"))

	r := NewReconciler(client, nil, nil)
	rec := mapping.MappingRecord{LocalID: "plan_pro_monthly", RemoteProductID: "prod_1", RemotePriceID: "price_1", PriceAmount: 4900, Active: true}

	_, err := r.Decide(context.Background(), proMonthly(4900), &rec, Options{})
	require.Error(t, err)
	assert.Equal(t, remote.KindAuth, remote.KindOf(err))
	client.AssertExpectations(t)
}

func TestApply_SendsIdempotencyKeys(t *testing.T) {
	client := new(mocks.Client)
	client.On("CreateProduct", mock.Anything, mock.MatchedBy(func(p remote.ProductParams) bool {
		return p.IdempotencyKey == "key-1" && p.Metadata[remote.MetadataLocalID] == "plan_pro_monthly"
	})).Return(&remote.Product{ID: "prod_9", Active: true}, nil)
	client.On("CreatePrice", mock.Anything, mock.MatchedBy(func(p remote.PriceParams) bool {
		return p.IdempotencyKey == "key-2" && p.ProductID == "prod_9" && p.UnitAmount == 4900
	})).Return(&remote.Price{ID: "price_9", Active: true}, nil)

	r := NewReconciler(client, nil, zap.NewNop())
	n := 0
	r.newKey = func() string {
		n++
		return "key-" + string(rune('0'+n))
	}

	synced, err := r.Apply(context.Background(), Action{Type: ActionCreate, LocalID: "plan_pro_monthly", Product: proMonthly(4900)})
	require.NoError(t, err)
	assert.Equal(t, "prod_9", synced.RemoteProductID)
	assert.Equal(t, "price_9", synced.RemotePriceID)
	client.AssertExpectations(t)
}

func TestRecord(t *testing.T) {
	r := NewReconciler(remotetest.New(), nil, nil)
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return fixed }

	rec := r.Record(SyncedProduct{LocalID: "addon_seats", LocalName: "Seats", RemoteProductID: "prod_1", RemotePriceID: "price_1", Price: 500, Status: mapping.StatusCreated})
	assert.Equal(t, "addon_seats", rec.LocalID)
	assert.Equal(t, int64(500), rec.PriceAmount)
	assert.Equal(t, fixed, rec.LastSyncedAt)
	assert.True(t, rec.Active)
}

func TestPriceMismatch(t *testing.T) {
	local := proMonthly(4900)
	good := remote.Price{ID: "price_1", ProductID: "prod_1", Currency: "usd", UnitAmount: 4900, Interval: remote.IntervalMonth, Active: true}
	assert.Empty(t, PriceMismatch(good, "prod_1", local))

	cases := map[string]func(p *remote.Price){
		"inactive": func(p *remote.Price) { p.Active = false },
		"belongs":  func(p *remote.Price) { p.ProductID = "prod_2" },
		"amount":   func(p *remote.Price) { p.UnitAmount = 4901 },
		"currency": func(p *remote.Price) { p.Currency = "eur" },
		"interval": func(p *remote.Price) { p.Interval = remote.IntervalYear },
	}
	for want, edit := range cases {
		p := good
		edit(&p)
		assert.Contains(t, PriceMismatch(p, "prod_1", local), want)
	}
}

func TestDecide_RemovedMetadataKeyIsUnset(t *testing.T) {
	for _, force := range []bool{false, true} {
		fake := remotetest.New()
		r := newTestReconciler(fake)

		gold := proMonthly(4900)
		gold.Metadata = map[string]string{"tier": "gold", "feature_sso": "true"}
		rec := applyNew(t, r, gold)

		product, _ := fake.Product(rec.RemoteProductID)
		assert.Equal(t, "feature_sso,tier", product.Metadata[remote.MetadataManagedKeys])

		gold.Metadata = map[string]string{"tier": "gold"}
		action, err := r.Decide(context.Background(), gold, &rec, Options{Force: force})
		require.NoError(t, err)
		assert.Equal(t, ActionUpdateMetadata, action.Type, "force=%t", force)
		assert.Equal(t, []string{"feature_sso"}, action.RemoveMetadata)

		_, err = r.Apply(context.Background(), action)
		require.NoError(t, err)

		product, _ = fake.Product(rec.RemoteProductID)
		assert.NotContains(t, product.Metadata, "feature_sso")
		assert.Equal(t, "gold", product.Metadata["tier"])
		assert.Equal(t, "tier", product.Metadata[remote.MetadataManagedKeys])

		fake.ResetCalls()
		action, err = r.Decide(context.Background(), gold, &rec, Options{Force: force})
		require.NoError(t, err)
		assert.Equal(t, ActionNoop, action.Type)
		assert.Equal(t, 0, fake.Mutations())
	}
}

func TestDecide_AllMetadataRemoved(t *testing.T) {
	fake := remotetest.New()
	r := newTestReconciler(fake)
	rec := applyNew(t, r, proMonthly(4900))

	bare := proMonthly(4900)
	bare.Metadata = nil
	action, err := r.Decide(context.Background(), bare, &rec, Options{})
	require.NoError(t, err)
	assert.Equal(t, ActionUpdateMetadata, action.Type)
	assert.Equal(t, []string{remote.MetadataManagedKeys, "plan_id"}, action.RemoveMetadata)

	_, err = r.Apply(context.Background(), action)
	require.NoError(t, err)

	product, _ := fake.Product(rec.RemoteProductID)
	assert.Equal(t, map[string]string{
		remote.MetadataLocalID:   "plan_pro_monthly",
		remote.MetadataManagedBy: remote.ManagedByValue,
	}, product.Metadata)

	action, err = r.Decide(context.Background(), bare, &rec, Options{})
	require.NoError(t, err)
	assert.Equal(t, ActionNoop, action.Type)
}

func TestStaleMetadataKeys_IgnoresForeignKeys(t *testing.T) {
	local := proMonthly(4900)
	p := remote.Product{
		Name:        local.Name,
		Description: local.Description,
		Metadata:    local.DesiredMetadata(),
	}
	// Keys added in the dashboard were never listed as managed.
	p.Metadata["crm_ref"] = "42"

	assert.Empty(t, StaleMetadataKeys(p, local))
	assert.True(t, ProductMatches(p, local))
}
