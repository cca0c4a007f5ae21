// Package ctxkeys defines typed context keys shared between middleware and handlers.
// Both import this package so neither has to import the other.
package ctxkeys

import "context"

// Key is a typed string used as context key to prevent collisions.
type Key string

const (
	UserEmail Key = "userEmail"
	UserName  Key = "userName"
	UserRole  Key = "userRole"
)

// Roles, lowest first.
const (
	RoleViewer  = "viewer"
	RoleAnalyst = "analyst"
	RoleAdmin   = "admin"
)

// ValidRoles lists all valid role strings.
var ValidRoles = map[string]bool{
	RoleViewer:  true,
	RoleAnalyst: true,
	RoleAdmin:   true,
}

// RoleLevel maps role names to permission levels.
var RoleLevel = map[string]int{
	RoleViewer:  1,
	RoleAnalyst: 2,
	RoleAdmin:   3,
}

// Email returns the signed-in analyst's email, or "".
func Email(ctx context.Context) string {
	v, _ := ctx.Value(UserEmail).(string)
	return v
}

// Name returns the signed-in analyst's display name, or "".
func Name(ctx context.Context) string {
	v, _ := ctx.Value(UserName).(string)
	return v
}

// Role returns the signed-in analyst's role, or "".
func Role(ctx context.Context) string {
	v, _ := ctx.Value(UserRole).(string)
	return v
}

// Can reports whether the request's role is at least minRole.
func Can(ctx context.Context, minRole string) bool {
	return RoleLevel[Role(ctx)] >= RoleLevel[minRole] && RoleLevel[minRole] > 0
}

// WithUser returns ctx carrying the given identity.
func WithUser(ctx context.Context, email, name, role string) context.Context {
	ctx = context.WithValue(ctx, UserEmail, email)
	ctx = context.WithValue(ctx, UserName, name)
	return context.WithValue(ctx, UserRole, role)
}
