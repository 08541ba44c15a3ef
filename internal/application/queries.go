package application

import "github.com/bnema/exchange-dash/internal/domain"

// State is what a dashboard view renders. Err is independent of Snapshot: a
// cached snapshot together with a failed refresh means the data is still
// usable but could not be updated.
type State struct {
	Scope    domain.ScopeKey
	Snapshot *domain.Snapshot
	Phase    Phase
	Loading  bool
	Err      error
}

func (s State) HasData() bool {
	return s.Snapshot != nil
}

type SyncResult struct {
	Receipt domain.SyncReceipt
	State   State
}
