package domain

import "context"

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleLeader   Role = "leader"
	RoleEmployee Role = "employee"
)

// ReviewerRoles may approve or reject bookings.
var ReviewerRoles = []Role{RoleAdmin, RoleLeader}

func (r Role) IsReviewer() bool {
	for _, rr := range ReviewerRoles {
		if r == rr {
			return true
		}
	}
	return false
}

// Actor is the authenticated user a request runs on behalf of.
type Actor struct {
	ID   string
	Role Role
}

type actorKey struct{}

func ContextWithActor(ctx context.Context, a Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, a)
}

func ActorFromContext(ctx context.Context) (Actor, bool) {
	a, ok := ctx.Value(actorKey{}).(Actor)
	if !ok || a.ID == "" {
		return Actor{}, false
	}
	return a, true
}

// UserRole is one row of the externally managed role table.
type UserRole struct {
	ID     string `json:"id"`
	UserID string `json:"user_id"`
	Role   Role   `json:"role"`
}
