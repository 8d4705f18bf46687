package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"catalog-sync/core/config"
	"catalog-sync/core/database"
	"catalog-sync/core/mapping"
	"catalog-sync/core/reconcile"
	"catalog-sync/core/remote"
	"catalog-sync/core/storage"
	"catalog-sync/feature/catalog"
)

// debug_mapping prints everything known about one local id: the catalog
// entry, the stored mapping and the live provider state.
func main() {
	if len(os.Args) != 2 {
		fmt.Println("usage: debug_mapping <local_id>")
		os.Exit(2)
	}
	localID := os.Args[1]
	ctx := context.Background()

	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatal(err)
	}

	db, err := database.Connect(cfg.Database)
	if err != nil {
		log.Fatal(err)
	}
	store := mapping.NewGormStore(db)

	client, err := remote.NewStripeClient(cfg.Stripe)
	if err != nil {
		log.Fatal(err)
	}

	var objects storage.Client
	if cfg.Catalog.HasStorageSources() {
		if objects, err = storage.NewClient(cfg.Storage); err != nil {
			log.Fatal(err)
		}
	}

	fmt.Println("=== Catalog ===")
	products, err := catalog.NewCollector(cfg.Catalog, objects, cfg.Storage.Bucket, nil).Collect(ctx)
	if err != nil {
		log.Fatal(err)
	}
	var local *reconcile.LocalProduct
	for i := range products {
		if products[i].LocalID == localID {
			local = &products[i]
		}
	}
	if local == nil {
		fmt.Printf("NOT FOUND in catalog (%d entries loaded)\n", len(products))
	} else {
		fmt.Printf("name=%q price=%d %s billing=%s\n", local.Name, local.Price, local.Currency, local.Billing)
	}

	fmt.Println("\n=== Mapping ===")
	rec, ok, err := store.Get(ctx, localID)
	if err != nil {
		log.Fatal(err)
	}
	if !ok {
		fmt.Println("NOT FOUND in mapping table")
	} else {
		fmt.Printf("product=%s price=%s amount=%d status=%s active=%t synced=%s\n",
			rec.RemoteProductID, rec.RemotePriceID, rec.PriceAmount, rec.SyncStatus, rec.Active, rec.LastSyncedAt)
	}

	fmt.Println("\n=== Provider ===")
	product, err := reconcile.NewRemoteIndex(client, 0).Lookup(ctx, localID)
	if err != nil {
		log.Fatal(err)
	}
	if product == nil {
		fmt.Println("No managed product carries this local id")
		return
	}
	fmt.Printf("product=%s name=%q active=%t metadata=%v\n", product.ID, product.Name, product.Active, product.Metadata)
	if local != nil {
		fmt.Printf("metadata matches catalog: %t\n", reconcile.ProductMatches(*product, *local))
	}

	prices, err := client.ListPrices(ctx, product.ID)
	if err != nil {
		log.Fatal(err)
	}
	for _, p := range prices {
		line := fmt.Sprintf("price=%s amount=%d %s interval=%s", p.ID, p.UnitAmount, p.Currency, p.Interval)
		if local != nil {
			if reason := reconcile.PriceMismatch(p, product.ID, *local); reason != "" {
				line += " mismatch: " + reason
			}
		}
		fmt.Println(line)
	}
}
