package session_test

import (
	"testing"

	session "github.com/planora/go-session"
	"github.com/stretchr/testify/assert"
)

func TestParseRole(t *testing.T) {
	role, ok := session.ParseRole("ORG_ADMIN")
	assert.True(t, ok)
	assert.Equal(t, session.RoleOrgAdmin, role)

	_, ok = session.ParseRole("SUPERUSER")
	assert.False(t, ok)

	_, ok = session.ParseRole("")
	assert.False(t, ok)

	// Roles are case sensitive
	_, ok = session.ParseRole("member")
	assert.False(t, ok)
}

func TestRoleHierarchy(t *testing.T) {
	assert.True(t, session.RoleIsAtLeast(session.RoleOrgAdmin, session.RoleMember))
	assert.True(t, session.RoleIsAtLeast(session.RoleOrgAdmin, session.RoleProjectManager))
	assert.True(t, session.RoleIsAtLeast(session.RoleProjectManager, session.RoleMember))
	assert.True(t, session.RoleIsAtLeast(session.RoleMember, session.RoleMember))

	assert.False(t, session.RoleIsAtLeast(session.RoleMember, session.RoleProjectManager))
	assert.False(t, session.RoleIsAtLeast(session.RoleProjectManager, session.RoleOrgAdmin))
	assert.False(t, session.RoleIsAtLeast("UNKNOWN", session.RoleMember))
	assert.False(t, session.RoleIsAtLeast(session.RoleOrgAdmin, "UNKNOWN"))
}

func TestRolePredicates(t *testing.T) {
	assert.True(t, session.RoleIsAdmin(session.RoleOrgAdmin))
	assert.False(t, session.RoleIsAdmin(session.RoleProjectManager))
	assert.False(t, session.RoleIsAdmin(session.RoleMember))

	assert.True(t, session.RoleIsManager(session.RoleOrgAdmin))
	assert.True(t, session.RoleIsManager(session.RoleProjectManager))
	assert.False(t, session.RoleIsManager(session.RoleMember))
}

func TestGetAllRoles(t *testing.T) {
	roles := session.GetAllRoles()
	assert.Equal(t, []session.UserRole{
		session.RoleMember,
		session.RoleProjectManager,
		session.RoleOrgAdmin,
	}, roles)

	for _, role := range roles {
		assert.True(t, session.IsValidRole(role))
	}
}
