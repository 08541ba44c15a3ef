package domain

import (
	"fmt"
	"strings"
	"time"
)

type Role string

const (
	RoleAdmin       Role = "admin"
	RoleCoordinator Role = "coordinator"
	RoleClient      Role = "client"
	RoleThirdParty  Role = "third_party"
	RoleAgency      Role = "agency"
)

func (r Role) Normalize() Role {
	return Role(strings.ToLower(strings.TrimSpace(string(r))))
}

// Viewer identifies who is looking at a dashboard.
type Viewer struct {
	Role   Role
	UserID string
}

// Scope is the full request context of a dashboard view. Two scopes with
// the same Key share one cache entry and one in-flight resolution.
type Scope struct {
	Viewer          Viewer
	AutoRefresh     bool
	RefreshInterval time.Duration
}

type ScopeKey string

func (s Scope) Validate() error {
	if s.Viewer.Role.Normalize() == "" {
		return fmt.Errorf("%w: role is required", ErrInvalidScope)
	}
	if s.AutoRefresh && s.RefreshInterval <= 0 {
		return fmt.Errorf("%w: refresh interval must be positive when auto refresh is enabled", ErrInvalidScope)
	}

	return nil
}

func (s Scope) Key() ScopeKey {
	return ScopeKey(fmt.Sprintf("%s|%s|%t|%s",
		s.Viewer.Role.Normalize(),
		strings.TrimSpace(s.Viewer.UserID),
		s.AutoRefresh,
		s.RefreshInterval,
	))
}
