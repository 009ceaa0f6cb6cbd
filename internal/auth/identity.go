package auth

import (
	"context"

	"realestate-hub/internal/models"
)

// Identity is the signed-in user as resolved for a single request
type Identity struct {
	UserID   string          `json:"user_id"`
	Email    string          `json:"email"`
	FullName string          `json:"full_name"`
	Role     models.UserRole `json:"role"`
	// AgentID is the agent profile id; empty when the user has no agent record.
	AgentID   string `json:"agent_id,omitempty"`
	SessionID string `json:"-"`
}

// IsAgent reports whether the user has the agent role and an agent profile
func (i *Identity) IsAgent() bool {
	return i != nil && i.Role == models.RoleAgent && i.AgentID != ""
}

func (i *Identity) IsAdmin() bool {
	return i != nil && i.Role == models.RoleAdmin
}

// CanManageProperty reports whether the user may edit a listing owned by agentUserID
func (i *Identity) CanManageProperty(agentUserID string) bool {
	if i == nil {
		return false
	}
	return i.IsAdmin() || (i.IsAgent() && i.UserID == agentUserID)
}

type identityKey struct{}

// WithIdentity returns a context carrying id
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// FromContext returns the identity stored in ctx, or nil for anonymous requests
func FromContext(ctx context.Context) *Identity {
	id, _ := ctx.Value(identityKey{}).(*Identity)
	return id
}
