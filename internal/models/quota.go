package models

// Quota evaluation states
const (
	QuotaStateNotApplicable = "not_applicable"
	QuotaStateMissing       = "missing"
	QuotaStateUnlimited     = "valid_unlimited"
	QuotaStateOK            = "ok"
	QuotaStateLow           = "low"
	QuotaStateExhausted     = "exhausted"
)

// Banner labels rendered 1:1 from the state by the mobile client.
var quotaStateLabels = map[string]string{
	QuotaStateNotApplicable: "no authorization needed",
	QuotaStateMissing:       "no transport authorization on file",
	QuotaStateUnlimited:     "open-ended series authorization",
	QuotaStateOK:            "authorization valid",
	QuotaStateLow:           "authorization almost exhausted",
	QuotaStateExhausted:     "authorization exhausted",
}

// QuotaStateLabel returns the human-readable banner text for a state.
func QuotaStateLabel(state string) string {
	return quotaStateLabels[state]
}

// QuotaEvaluation is the derived per-ride authorization status. It is never
// persisted; callers recompute it from fresh ride/document snapshots.
// Consumed, Max and Remaining are only set for the counted states (ok, low,
// exhausted); missing and valid_unlimited carry no counts.
type QuotaEvaluation struct {
	State     string   `json:"state"`
	Label     string   `json:"label"`
	Consumed  *float64 `json:"consumed,omitempty"`
	Max       *int     `json:"max,omitempty"`
	Remaining *float64 `json:"remaining,omitempty"`
}
