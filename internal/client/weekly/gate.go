// Package weekly interprets the time-gated recommendation policy and
// fetches the weekly pick together with its companion status resource.
package weekly

import (
	"context"
	"errors"

	"github.com/avetrov/filmweek/internal/client/api"
	"github.com/avetrov/filmweek/internal/models"
)

// ErrStatusContract means the service declared can_generate_new while a
// cool-down is still pending. The server stays authoritative: callers log
// the violation and display the declared values anyway.
var ErrStatusContract = errors.New("weekly status contract violated: can_generate_new with days_until_new > 0")

// InterpretStatus validates the server-declared gating fields. No local
// clock computation overrides days_until_new or can_generate_new.
func InterpretStatus(raw models.WeeklyStatus) (models.WeeklyStatus, error) {
	st := raw
	if st.DaysUntilNew < 0 {
		st.DaysUntilNew = 0
	}
	if !st.HasRecommendation {
		st.LastGenerated = ""
	}
	if st.CanGenerateNew && st.DaysUntilNew != 0 {
		return st, ErrStatusContract
	}
	return st, nil
}

// Gate fetches the weekly pick and its status as two independent requests.
type Gate struct {
	api *api.Client
}

// NewGate returns a Gate over the given API client.
func NewGate(client *api.Client) *Gate {
	return &Gate{api: client}
}

// FetchOutcome holds both classified results. The recommendation and the
// status are separate resources that can disagree; no reconciliation is
// attempted here.
type FetchOutcome struct {
	// Recommendation is nil when no pick exists yet for the period.
	// That is the "none yet" state, not an error.
	Recommendation *models.WeeklyRecommendation
	Streaming      models.StreamingData
	Status         models.WeeklyStatus
	// StatusErr is non-nil when the declared status violates the gating
	// contract (see ErrStatusContract).
	StatusErr error

	WeeklyResult api.Result
	StatusResult api.Result
}

// Fetch requests the weekly pick for userID, optionally forcing
// regeneration, plus an always-fresh status. forceNew should only be sent
// when the last known status declared can_generate_new; the service owns
// the behavior otherwise.
func (g *Gate) Fetch(ctx context.Context, userID int, forceNew bool) FetchOutcome {
	var out FetchOutcome

	wk, wkRes := g.api.Weekly(ctx, userID, forceNew)
	out.WeeklyResult = wkRes
	if wkRes.OK() {
		out.Recommendation = wk.Recommendation
		out.Streaming = wk.StreamingData
	}

	st, stRes := g.api.WeeklyStatus(ctx, userID)
	out.StatusResult = stRes
	if stRes.OK() {
		out.Status, out.StatusErr = InterpretStatus(st)
	}

	return out
}
