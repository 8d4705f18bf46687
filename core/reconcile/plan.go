package reconcile

// Plan collects the actions decided for a catalog.
type Plan struct {
	// Actions contains one decision per catalog entry, in catalog order.
	Actions []Action `json:"actions"`

	// Summary provides aggregate counts.
	Summary PlanSummary `json:"summary"`
}

// PlanSummary provides aggregate statistics for a plan.
type PlanSummary struct {
	// TotalItems is the number of catalog entries considered.
	TotalItems int `json:"total_items"`

	Create         int `json:"create"`
	UpdateMetadata int `json:"update_metadata"`
	RotatePrice    int `json:"rotate_price"`
	Noop           int `json:"noop"`

	// Adopted counts products recovered through remote metadata.
	Adopted int `json:"adopted"`

	// Failed counts entries whose decision could not be made.
	Failed int `json:"failed"`
}

// Add records a decided action.
func (p *Plan) Add(a Action) {
	p.Actions = append(p.Actions, a)
	p.Summary.TotalItems++
	if a.Adopted {
		p.Summary.Adopted++
	}
	switch a.Type {
	case ActionCreate:
		p.Summary.Create++
	case ActionUpdateMetadata:
		p.Summary.UpdateMetadata++
	case ActionRotatePrice:
		p.Summary.RotatePrice++
	case ActionNoop:
		p.Summary.Noop++
	}
}

// Fail records an entry whose decision failed.
func (p *Plan) Fail() {
	p.Summary.TotalItems++
	p.Summary.Failed++
}

// Mutations returns the number of actions that would change remote state.
func (p *Plan) Mutations() int {
	return p.Summary.Create + p.Summary.UpdateMetadata + p.Summary.RotatePrice
}
