package catalog

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const yamlDoc = `
currency: USD
plans:
  - id: pro
    name: Pro
    description: For growing teams
    monthly_price: 49
    yearly_price: "490.00"
addons:
  - id: seats
    name: Extra seat
    price: 5.5
roles:
  - role: editor
    name: Editor
    tiers:
      - id: basic
        name: Basic
        price: 10
        billing: yearly
organizations:
  - id: acme
    name: Acme
    monthly_price: 199
    setup_fee: 1000
  - id: globex
    name: Globex
    monthly_price: 99
    setup_fee: 0
`

func TestParseDocument_YAML(t *testing.T) {
	doc, err := ParseDocument("catalog.yaml", []byte(yamlDoc))
	require.NoError(t, err)
	assert.Equal(t, "USD", doc.Currency)
	require.Len(t, doc.Plans, 1)
	assert.Equal(t, 49, doc.Plans[0].MonthlyPrice)
	assert.Equal(t, "490.00", doc.Plans[0].YearlyPrice)
	assert.Len(t, doc.Organizations, 2)
}

func TestParseDocument_JSON(t *testing.T) {
	doc, err := ParseDocument("catalog.json", []byte(`{"addons":[{"id":"seats","price":5.5}]}`))
	require.NoError(t, err)
	require.Len(t, doc.Addons, 1)
	assert.Equal(t, json.Number("5.5"), doc.Addons[0].Price)
}

func TestParseDocument_Errors(t *testing.T) {
	_, err := ParseDocument("catalog.toml", []byte(``))
	assert.True(t, IsConfigurationError(err))

	_, err = ParseDocument("catalog.json", []byte(`{"plans": [`))
	assert.True(t, IsConfigurationError(err))

	_, err = ParseDocument("catalog.yaml", []byte("plans:\n  - id: pro\n    monthly: 10\n"))
	assert.True(t, IsConfigurationError(err), "unknown fields are rejected")

	doc, err := ParseDocument("empty.yml", nil)
	require.NoError(t, err)
	assert.Empty(t, doc.Plans)
}

func TestIsDocumentName(t *testing.T) {
	assert.True(t, IsDocumentName("a/b/plans.JSON"))
	assert.True(t, IsDocumentName("plans.yml"))
	assert.False(t, IsDocumentName("plans.txt"))
}
