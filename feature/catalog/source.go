package catalog

import (
	"fmt"
	"regexp"
	"strings"

	"catalog-sync/core/reconcile"
	"catalog-sync/core/remote"
	"catalog-sync/core/utils"
)

// MetadataSource records which kind of declaration produced a product.
const MetadataSource = "source"

// Source is one declared catalog entry. The set of variants is closed:
// PlanSource, AddonSource, RoleTierSource, OrgPlanSource and OrgSetupFeeSource.
type Source interface {
	// LocalID is the stable identifier of the entry.
	LocalID() string
	// Origin names the document that declared the entry.
	Origin() string
	// Normalize converts the entry into a LocalProduct.
	Normalize() (reconcile.LocalProduct, error)

	isSource()
}

// common holds the fields every variant carries.
type common struct {
	origin      string
	Name        string
	Description string
	Amount      any
	Currency    string
	Metadata    map[string]string
}

func (c common) Origin() string { return c.origin }

func (c common) normalize(localID, kind string, billing reconcile.Billing, extra map[string]string) (reconcile.LocalProduct, error) {
	invalid := func(reason string, err error) error {
		return &InvalidDefinitionError{Origin: c.origin, Entry: localID, Reason: reason, Err: err}
	}

	if !localIDPattern.MatchString(localID) {
		return reconcile.LocalProduct{}, invalid("local_id must be lowercase letters, digits, '_' or '-'", nil)
	}
	if !billing.IsValid() {
		return reconcile.LocalProduct{}, invalid(fmt.Sprintf("unknown billing %q", billing), nil)
	}
	currency := strings.ToLower(strings.TrimSpace(c.Currency))
	if !currencyPattern.MatchString(currency) {
		return reconcile.LocalProduct{}, invalid(fmt.Sprintf("invalid currency %q", c.Currency), nil)
	}
	amount, err := utils.ToMinorUnits(c.Amount, currency)
	if err != nil {
		return reconcile.LocalProduct{}, invalid("invalid price", err)
	}

	name := strings.TrimSpace(c.Name)
	if name == "" {
		name = localID
	}

	metadata := make(map[string]string, len(c.Metadata)+len(extra)+1)
	for k, v := range c.Metadata {
		if reason := checkMetadata(k, v); reason != "" {
			return reconcile.LocalProduct{}, invalid(reason, nil)
		}
		metadata[k] = v
	}
	for k, v := range extra {
		metadata[k] = v
	}
	metadata[MetadataSource] = kind

	return reconcile.LocalProduct{
		LocalID:     localID,
		Name:        name,
		Description: strings.TrimSpace(c.Description),
		Price:       amount,
		Currency:    currency,
		Billing:     billing,
		Metadata:    metadata,
	}, nil
}

// checkMetadata rejects entries the provider would drop or that collide with
// keys the engine writes. Stripe treats an empty value as "unset".
func checkMetadata(key, value string) string {
	switch {
	case strings.TrimSpace(key) == "":
		return "metadata key is empty"
	case strings.ContainsAny(key, ",[]"):
		return fmt.Sprintf("metadata key %q contains ',', '[' or ']'", key)
	case value == "":
		return fmt.Sprintf("metadata %q has an empty value", key)
	}
	switch key {
	case remote.MetadataLocalID, remote.MetadataManagedBy, remote.MetadataManagedKeys, MetadataSource:
		return fmt.Sprintf("metadata key %q is reserved", key)
	}
	return ""
}

var (
	localIDPattern  = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)
	currencyPattern = regexp.MustCompile(`^[a-z]{3}$`)
)

// PlanSource is one billing interval of a subscription plan.
type PlanSource struct {
	common
	PlanID  string
	Billing reconcile.Billing
}

func (s PlanSource) isSource() {}

func (s PlanSource) LocalID() string {
	return fmt.Sprintf("plan_%s_%s", s.PlanID, s.Billing)
}

func (s PlanSource) Normalize() (reconcile.LocalProduct, error) {
	if s.Billing == reconcile.BillingOneTime {
		return reconcile.LocalProduct{}, &InvalidDefinitionError{Origin: s.origin, Entry: s.LocalID(), Reason: "plans must recur"}
	}
	return s.normalize(s.LocalID(), "plan", s.Billing, map[string]string{
		"plan_id": s.PlanID,
	})
}

// AddonSource is a purchasable add-on.
type AddonSource struct {
	common
	AddonID string
	Billing reconcile.Billing
}

func (s AddonSource) isSource() {}

func (s AddonSource) LocalID() string {
	return "addon_" + s.AddonID
}

func (s AddonSource) Normalize() (reconcile.LocalProduct, error) {
	return s.normalize(s.LocalID(), "addon", s.Billing, map[string]string{
		"addon_id": s.AddonID,
	})
}

// RoleTierSource is a paid tier of a role.
type RoleTierSource struct {
	common
	Role    string
	TierID  string
	Billing reconcile.Billing
}

func (s RoleTierSource) isSource() {}

func (s RoleTierSource) LocalID() string {
	return fmt.Sprintf("role_%s_%s", s.Role, s.TierID)
}

func (s RoleTierSource) Normalize() (reconcile.LocalProduct, error) {
	return s.normalize(s.LocalID(), "role_tier", s.Billing, map[string]string{
		"role":    s.Role,
		"tier_id": s.TierID,
	})
}

// OrgPlanSource is the monthly plan of an organization.
type OrgPlanSource struct {
	common
	OrgID string
}

func (s OrgPlanSource) isSource() {}

func (s OrgPlanSource) LocalID() string {
	return fmt.Sprintf("org_%s_monthly", s.OrgID)
}

func (s OrgPlanSource) Normalize() (reconcile.LocalProduct, error) {
	return s.normalize(s.LocalID(), "org_plan", reconcile.BillingMonthly, map[string]string{
		"org_id": s.OrgID,
	})
}

// OrgSetupFeeSource is the one-time setup fee of an organization.
type OrgSetupFeeSource struct {
	common
	OrgID string
}

func (s OrgSetupFeeSource) isSource() {}

func (s OrgSetupFeeSource) LocalID() string {
	return fmt.Sprintf("org_%s_setup", s.OrgID)
}

func (s OrgSetupFeeSource) Normalize() (reconcile.LocalProduct, error) {
	return s.normalize(s.LocalID(), "org_setup_fee", reconcile.BillingOneTime, map[string]string{
		"org_id": s.OrgID,
	})
}

// Sources expands the document into catalog entries. Currency falls back from
// entry to document to defaultCurrency.
func (d *Document) Sources(origin, defaultCurrency string) ([]Source, error) {
	docCurrency := firstNonEmpty(d.Currency, defaultCurrency)
	base := func(name, desc string, amount any, currency string, md map[string]string) common {
		return common{
			origin:      origin,
			Name:        name,
			Description: desc,
			Amount:      amount,
			Currency:    firstNonEmpty(currency, docCurrency),
			Metadata:    md,
		}
	}
	invalid := func(entry, reason string) error {
		return &InvalidDefinitionError{Origin: origin, Entry: entry, Reason: reason}
	}

	var out []Source

	for i, p := range d.Plans {
		if p.ID == "" {
			return nil, invalid(fmt.Sprintf("plans[%d]", i), "id is required")
		}
		if p.MonthlyPrice == nil && p.YearlyPrice == nil {
			return nil, invalid("plan "+p.ID, "monthly_price or yearly_price is required")
		}
		if p.MonthlyPrice != nil {
			out = append(out, PlanSource{
				common:  base(intervalName(p.Name, p.ID, "monthly"), p.Description, p.MonthlyPrice, p.Currency, p.Metadata),
				PlanID:  p.ID,
				Billing: reconcile.BillingMonthly,
			})
		}
		if p.YearlyPrice != nil {
			out = append(out, PlanSource{
				common:  base(intervalName(p.Name, p.ID, "yearly"), p.Description, p.YearlyPrice, p.Currency, p.Metadata),
				PlanID:  p.ID,
				Billing: reconcile.BillingYearly,
			})
		}
	}

	for i, a := range d.Addons {
		if a.ID == "" {
			return nil, invalid(fmt.Sprintf("addons[%d]", i), "id is required")
		}
		out = append(out, AddonSource{
			common:  base(a.Name, a.Description, a.Price, a.Currency, a.Metadata),
			AddonID: a.ID,
			Billing: billingOrMonthly(a.Billing),
		})
	}

	for i, r := range d.Roles {
		if r.Role == "" {
			return nil, invalid(fmt.Sprintf("roles[%d]", i), "role is required")
		}
		for j, t := range r.Tiers {
			if t.ID == "" {
				return nil, invalid(fmt.Sprintf("roles[%d].tiers[%d]", i, j), "id is required")
			}
			out = append(out, RoleTierSource{
				common:  base(tierName(r.Name, t.Name, r.Role, t.ID), t.Description, t.Price, t.Currency, t.Metadata),
				Role:    r.Role,
				TierID:  t.ID,
				Billing: billingOrMonthly(t.Billing),
			})
		}
	}

	for i, o := range d.Organizations {
		if o.ID == "" {
			return nil, invalid(fmt.Sprintf("organizations[%d]", i), "id is required")
		}
		if o.MonthlyPrice == nil {
			return nil, invalid("organization "+o.ID, "monthly_price is required")
		}
		out = append(out, OrgPlanSource{
			common: base(o.Name, o.Description, o.MonthlyPrice, o.Currency, o.Metadata),
			OrgID:  o.ID,
		})
		if hasSetupFee(o.SetupFee) {
			out = append(out, OrgSetupFeeSource{
				common: base(firstNonEmpty(o.Name, o.ID)+" setup fee", o.Description, o.SetupFee, o.Currency, o.Metadata),
				OrgID:  o.ID,
			})
		}
	}

	return out, nil
}

// hasSetupFee treats a missing or zero fee as none. Malformed values are kept
// so normalization reports them.
func hasSetupFee(v any) bool {
	if v == nil {
		return false
	}
	if amount, err := utils.ToMinorUnits(v, "usd"); err == nil && amount == 0 {
		return false
	}
	return true
}

func billingOrMonthly(b string) reconcile.Billing {
	if b == "" {
		return reconcile.BillingMonthly
	}
	return reconcile.Billing(strings.ToLower(b))
}

func intervalName(name, id, interval string) string {
	return fmt.Sprintf("%s (%s)", firstNonEmpty(name, id), interval)
}

func tierName(roleName, tierName, role, tierID string) string {
	return firstNonEmpty(roleName, role) + " - " + firstNonEmpty(tierName, tierID)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
