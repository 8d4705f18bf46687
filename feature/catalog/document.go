package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"gopkg.in/yaml.v3"
)

// Document is one catalog file.
type Document struct {
	Currency      string              `json:"currency" yaml:"currency"`
	Plans         []PlanEntry         `json:"plans" yaml:"plans"`
	Addons        []AddonEntry        `json:"addons" yaml:"addons"`
	Roles         []RoleEntry         `json:"roles" yaml:"roles"`
	Organizations []OrganizationEntry `json:"organizations" yaml:"organizations"`
}

// PlanEntry declares a subscription plan. Amounts are in major units.
type PlanEntry struct {
	ID           string            `json:"id" yaml:"id"`
	Name         string            `json:"name" yaml:"name"`
	Description  string            `json:"description" yaml:"description"`
	MonthlyPrice any               `json:"monthly_price" yaml:"monthly_price"`
	YearlyPrice  any               `json:"yearly_price" yaml:"yearly_price"`
	Currency     string            `json:"currency" yaml:"currency"`
	Metadata     map[string]string `json:"metadata" yaml:"metadata"`
}

// AddonEntry declares an add-on. Billing defaults to monthly.
type AddonEntry struct {
	ID          string            `json:"id" yaml:"id"`
	Name        string            `json:"name" yaml:"name"`
	Description string            `json:"description" yaml:"description"`
	Price       any               `json:"price" yaml:"price"`
	Billing     string            `json:"billing" yaml:"billing"`
	Currency    string            `json:"currency" yaml:"currency"`
	Metadata    map[string]string `json:"metadata" yaml:"metadata"`
}

// RoleEntry groups the paid tiers of a role.
type RoleEntry struct {
	Role  string          `json:"role" yaml:"role"`
	Name  string          `json:"name" yaml:"name"`
	Tiers []RoleTierEntry `json:"tiers" yaml:"tiers"`
}

// RoleTierEntry declares one tier of a role. Billing defaults to monthly.
type RoleTierEntry struct {
	ID          string            `json:"id" yaml:"id"`
	Name        string            `json:"name" yaml:"name"`
	Description string            `json:"description" yaml:"description"`
	Price       any               `json:"price" yaml:"price"`
	Billing     string            `json:"billing" yaml:"billing"`
	Currency    string            `json:"currency" yaml:"currency"`
	Metadata    map[string]string `json:"metadata" yaml:"metadata"`
}

// OrganizationEntry declares an organization plan with an optional one-time setup fee.
type OrganizationEntry struct {
	ID           string            `json:"id" yaml:"id"`
	Name         string            `json:"name" yaml:"name"`
	Description  string            `json:"description" yaml:"description"`
	MonthlyPrice any               `json:"monthly_price" yaml:"monthly_price"`
	SetupFee     any               `json:"setup_fee" yaml:"setup_fee"`
	Currency     string            `json:"currency" yaml:"currency"`
	Metadata     map[string]string `json:"metadata" yaml:"metadata"`
}

// IsDocumentName reports whether name has a supported catalog extension.
func IsDocumentName(name string) bool {
	switch strings.ToLower(path.Ext(name)) {
	case ".json", ".yaml", ".yml":
		return true
	}
	return false
}

// ParseDocument decodes data according to the extension of origin.
func ParseDocument(origin string, data []byte) (*Document, error) {
	var doc Document
	switch strings.ToLower(path.Ext(origin)) {
	case ".json":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		dec.DisallowUnknownFields()
		if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
			return nil, &InvalidDefinitionError{Origin: origin, Reason: "invalid JSON", Err: err}
		}
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
			return nil, &InvalidDefinitionError{Origin: origin, Reason: "invalid YAML", Err: err}
		}
	default:
		return nil, &InvalidDefinitionError{Origin: origin, Reason: fmt.Sprintf("unsupported extension %q", path.Ext(origin))}
	}
	return &doc, nil
}
