package logics

import (
	"contaula-server/internal/auth"
	"contaula-server/internal/models"
)

// View categories the front-end can render.
const (
	ViewTheory   = "theory"
	ViewPractice = "practice"
	ViewChat     = "chat"
	ViewAdmin    = "admin"
)

// AuthzService decides which top-level views a role may reach. The view list
// is advisory for rendering; the role check repeats at every admin action
// boundary, a missing menu entry is not a security boundary.
type AuthzService struct{}

func NewAuthzService() *AuthzService {
	return &AuthzService{}
}

// VisibleViews returns the view categories for a role. Admin is included
// only for the admin role.
func (s *AuthzService) VisibleViews(role string) []string {
	views := []string{ViewTheory, ViewPractice, ViewChat}
	if role == models.RoleAdmin {
		views = append(views, ViewAdmin)
	}
	return views
}

// RequireAdmin rejects any role other than admin.
func (s *AuthzService) RequireAdmin(role string) error {
	if role != models.RoleAdmin {
		return auth.NewAuthError(auth.ErrAuthFailed, "admin role required")
	}
	return nil
}

// CheckDelete rejects an admin deleting their own account before any
// database call is made.
func (s *AuthzService) CheckDelete(currentUsername, targetUsername string) error {
	if models.NormalizeUsername(targetUsername) == models.NormalizeUsername(currentUsername) {
		return auth.NewAuthError(auth.ErrSelfDeleteForbidden, "cannot delete the logged-in user")
	}
	return nil
}
