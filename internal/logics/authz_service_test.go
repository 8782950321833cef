package logics_test

import (
	"testing"

	"contaula-server/internal/auth"
	"contaula-server/internal/logics"
	"contaula-server/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestAuthzService_VisibleViews(t *testing.T) {
	svc := logics.NewAuthzService()

	t.Run("regular user never sees admin", func(t *testing.T) {
		views := svc.VisibleViews(models.RoleUser)
		assert.Equal(t, []string{logics.ViewTheory, logics.ViewPractice, logics.ViewChat}, views)
	})

	t.Run("admin sees everything", func(t *testing.T) {
		views := svc.VisibleViews(models.RoleAdmin)
		assert.Contains(t, views, logics.ViewAdmin)
		assert.Len(t, views, 4)
	})

	t.Run("unknown role treated like user", func(t *testing.T) {
		assert.NotContains(t, svc.VisibleViews(""), logics.ViewAdmin)
		assert.NotContains(t, svc.VisibleViews("superadmin"), logics.ViewAdmin)
	})
}

func TestAuthzService_RequireAdmin(t *testing.T) {
	svc := logics.NewAuthzService()

	assert.NoError(t, svc.RequireAdmin(models.RoleAdmin))
	assert.True(t, auth.IsAuthError(svc.RequireAdmin(models.RoleUser), auth.ErrAuthFailed))
	assert.True(t, auth.IsAuthError(svc.RequireAdmin(""), auth.ErrAuthFailed))
}

func TestAuthzService_CheckDelete(t *testing.T) {
	svc := logics.NewAuthzService()

	t.Run("deleting another user is allowed", func(t *testing.T) {
		assert.NoError(t, svc.CheckDelete("admin", "alice"))
	})

	t.Run("self-delete is rejected before any store call", func(t *testing.T) {
		err := svc.CheckDelete("admin", "admin")
		assert.True(t, auth.IsAuthError(err, auth.ErrSelfDeleteForbidden))
	})

	t.Run("comparison is normalized", func(t *testing.T) {
		err := svc.CheckDelete("admin", "  ADMIN ")
		assert.True(t, auth.IsAuthError(err, auth.ErrSelfDeleteForbidden))
	})
}
