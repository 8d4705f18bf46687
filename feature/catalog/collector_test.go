package catalog

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"catalog-sync/core/storage/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestCollector_LocalFiles(t *testing.T) {
	dir := t.TempDir()
	plans := writeFile(t, dir, "plans.yaml", "plans:\n  - id: pro\n    name: Pro\n    monthly_price: 49\n")
	addons := writeFile(t, dir, "addons.json", `{"currency":"eur","addons":[{"id":"seats","name":"Seat","price":"5"}]}`)

	c := NewCollector(Config{Files: []string{plans, addons}, DefaultCurrency: "usd"}, nil, "", nil)
	products, err := c.Collect(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 2)

	assert.Equal(t, "addon_seats", products[0].LocalID)
	assert.Equal(t, "eur", products[0].Currency)
	assert.Equal(t, int64(500), products[0].Price)
	assert.Equal(t, "plan_pro_monthly", products[1].LocalID)
	assert.Equal(t, "usd", products[1].Currency)
	assert.Equal(t, int64(4900), products[1].Price)
}

func TestCollector_DuplicateAcrossFiles(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.yaml", "addons:\n  - id: seats\n    price: 5\n")
	b := writeFile(t, dir, "b.yaml", "addons:\n  - id: seats\n    price: 6\n")

	c := NewCollector(Config{Files: []string{a, b}, DefaultCurrency: "usd"}, nil, "", nil)
	_, err := c.Collect(context.Background())

	var dup *DuplicateLocalIDError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, a, dup.First)
	assert.Equal(t, b, dup.Second)
}

func TestCollector_MissingFile(t *testing.T) {
	c := NewCollector(Config{Files: []string{filepath.Join(t.TempDir(), "nope.yaml")}}, nil, "", nil)
	_, err := c.Collect(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestCollector_NothingConfigured(t *testing.T) {
	c := NewCollector(Config{}, nil, "", nil)
	_, err := c.Collect(context.Background())
	assert.True(t, IsConfigurationError(err))
}

func TestCollector_StorageObjects(t *testing.T) {
	client := new(mocks.Client)
	client.OnListing("catalog", "catalog/", "catalog/orgs.yml", "catalog/README.md", "catalog/addons.json")
	client.OnDocument("catalog", "catalog/addons.json", `{"addons":[{"id":"seats","price":5}]}`)
	client.OnDocument("catalog", "catalog/orgs.yml", "organizations:\n  - id: acme\n    monthly_price: 199\n    setup_fee: 50\n")

	c := NewCollector(Config{ObjectPrefix: "catalog/", Objects: []string{"catalog/addons.json"}, DefaultCurrency: "usd"}, client, "catalog", nil)
	products, err := c.Collect(context.Background())
	require.NoError(t, err)

	ids := make([]string, 0, len(products))
	for _, p := range products {
		ids = append(ids, p.LocalID)
	}
	assert.Equal(t, []string{"addon_seats", "org_acme_monthly", "org_acme_setup"}, ids)
	client.AssertNumberOfCalls(t, "GetObject", 2)
}

func TestCollector_StorageReadError(t *testing.T) {
	client := new(mocks.Client)
	client.On("GetObject", mock.Anything, "catalog", "plans.json", mock.Anything).
		Return(nil, errors.New("access denied"))

	c := NewCollector(Config{Objects: []string{"plans.json"}}, client, "catalog", nil)
	_, err := c.Collect(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "access denied")
	assert.False(t, IsConfigurationError(err))
}

func TestCollector_ObjectsWithoutClient(t *testing.T) {
	c := NewCollector(Config{Objects: []string{"plans.json"}}, nil, "catalog", nil)
	_, err := c.Collect(context.Background())
	assert.Error(t, err)
}
