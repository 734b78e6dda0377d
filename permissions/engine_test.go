package permissions_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linesmerrill/justice-case-api/models"
	"github.com/linesmerrill/justice-case-api/permissions"
)

func newEngine(t *testing.T, opts ...permissions.Option) *permissions.Engine {
	t.Helper()
	e, err := permissions.NewEngine(permissions.DefaultPolicy(), opts...)
	require.NoError(t, err)
	return e
}

func principal(roles ...string) models.Principal {
	p := models.Principal{ActorID: "u1", Name: "Test User"}
	if len(roles) > 0 {
		p.PrimaryRole = roles[0]
		p.Roles = roles[1:]
	}
	return p
}

func TestIsAllowed_DenyByDefault(t *testing.T) {
	e := newEngine(t)

	tests := []struct {
		name   string
		p      models.Principal
		module string
		action string
	}{
		{"empty role set", principal(), "cases", "view"},
		{"blank roles only", models.Principal{PrimaryRole: " ", Roles: []string{""}}, "cases", "view"},
		{"unknown role", principal("janitor"), "cases", "view"},
		{"unknown module", principal("administrator"), "spaceships", "view"},
		{"unknown action", principal("administrator"), "cases", "launch"},
		{"extension on wrong module", principal("administrator"), "warrants", "preside_trials"},
		{"not granted", principal("marshal"), "cases", "edit"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.False(t, e.IsAllowed(tt.p, tt.module, tt.action))
		})
	}
}

func TestIsAllowed_GrantUnion(t *testing.T) {
	e := newEngine(t)

	assert.False(t, e.IsAllowed(principal("clerk"), "indictments", "create"))
	assert.False(t, e.IsAllowed(principal("marshal"), "indictments", "create"))
	assert.True(t, e.IsAllowed(principal("prosecutor"), "indictments", "create"))
	assert.True(t, e.IsAllowed(principal("clerk", "prosecutor"), "indictments", "create"))
	assert.True(t, e.IsAllowed(principal("marshal", "clerk"), "civil_cases", "create"))
	assert.True(t, e.IsAllowed(principal("marshal", "clerk"), "warrants", "edit"))
}

func TestIsAllowed_ConflictingRoleTypesUnion(t *testing.T) {
	e := newEngine(t)
	p := principal("prosecutor", "judge")

	assert.True(t, e.IsAllowed(p, "indictments", "create"))
	assert.True(t, e.IsAllowed(p, "hearings", "create"))
	assert.True(t, e.IsAllowed(p, "cases", "preside_trials"))
}

func TestIsAllowed_FullAccess(t *testing.T) {
	e := newEngine(t)

	for _, role := range []string{"admin", "Administrator", " ADMIN "} {
		assert.True(t, e.IsAllowed(principal(role), "cases", "delete"), role)
		assert.True(t, e.IsAllowed(principal(role), "users", "force_logout"), role)
	}
}

func TestIsAllowed_NormalizesRolesAndActions(t *testing.T) {
	e := newEngine(t)

	assert.True(t, e.IsAllowed(principal("Senior Prosecutor"), "cases", "update"))
	assert.True(t, e.IsAllowed(principal("Oberster Richter"), "CASES", "list"))
	assert.True(t, e.IsAllowed(principal("clerk"), "cases", "show"))
	assert.True(t, e.IsAllowed(principal("admin"), "cases", "destroy"))
}

func TestRequirePermission_DeleteOnlyForAdministrator(t *testing.T) {
	e := newEngine(t)

	err := e.RequirePermission(principal("prosecutor"), "cases", "delete")
	var denied *models.PermissionDeniedError
	require.ErrorAs(t, err, &denied)
	assert.Equal(t, "cases", denied.Module)
	assert.Equal(t, "delete", denied.Action)
	assert.ErrorIs(t, err, models.ErrPermissionDenied)

	assert.NoError(t, e.RequirePermission(principal("prosecutor", "administrator"), "cases", "delete"))
}

func TestHasRoleType(t *testing.T) {
	e := newEngine(t)

	assert.True(t, e.HasRoleType(principal("Chief Justice"), permissions.RoleTypeJudge))
	assert.True(t, e.HasRoleType(principal("chief_justice"), permissions.RoleTypeLeadership))
	assert.False(t, e.HasRoleType(principal("prosecutor"), permissions.RoleTypeJudge, permissions.RoleTypeLeadership))
	assert.True(t, e.HasRoleType(principal("clerk", "District Attorney"), permissions.RoleTypeLeadership))
	assert.True(t, e.HasRoleType(principal("admin"), permissions.RoleTypeMarshal))
	assert.False(t, e.HasRoleType(principal(), permissions.RoleTypeJudge))

	err := e.RequireRoleType(principal("marshal"), "cases", "schedule_trial", permissions.RoleTypeJudge)
	assert.ErrorIs(t, err, models.ErrPermissionDenied)
}

func TestRoleTypesOf(t *testing.T) {
	e := newEngine(t)

	assert.Equal(t,
		[]permissions.RoleType{permissions.RoleTypeLeadership, permissions.RoleTypeProsecutor},
		e.RoleTypesOf(principal("attorney general")))
	assert.Empty(t, e.RoleTypesOf(principal("clerk")))
	assert.Len(t, e.RoleTypesOf(principal("admin")), len(permissions.RoleTypes))
}

func TestAccessibleModules(t *testing.T) {
	e := newEngine(t)

	assert.Equal(t, []string{"calendar", "cases", "civil_cases", "templates"}, e.AccessibleModules(principal("clerk")))
	assert.Empty(t, e.AccessibleModules(principal()))
}

func TestWithDecisionHook(t *testing.T) {
	var decisions []bool
	e := newEngine(t, permissions.WithDecisionHook(func(module, action string, allowed bool) {
		assert.Equal(t, "cases", module)
		assert.Equal(t, "view", action)
		decisions = append(decisions, allowed)
	}))

	e.IsAllowed(principal("clerk"), "Cases", "read")
	e.IsAllowed(principal(), "cases", "view")

	assert.Equal(t, []bool{true, false}, decisions)
}

func TestWithDecisionHook_UnknownPairsShareOneLabel(t *testing.T) {
	var labels []string
	e := newEngine(t, permissions.WithDecisionHook(func(module, action string, allowed bool) {
		labels = append(labels, module+"."+action)
	}))

	assert.False(t, e.IsAllowed(principal("administrator"), "x9f3", "view"))
	assert.False(t, e.IsAllowed(principal("clerk"), "cases", "launch"))
	assert.True(t, e.IsAllowed(principal("clerk"), "cases", "view"))

	assert.Equal(t, []string{"unknown.unknown", "unknown.unknown", "cases.view"}, labels)
}

func TestPermitsSkipsDecisionHooks(t *testing.T) {
	calls := 0
	e := newEngine(t, permissions.WithDecisionHook(func(string, string, bool) { calls++ }))

	assert.True(t, e.Permits(principal("clerk"), "Cases", "read"))
	assert.False(t, e.Permits(principal(), "cases", "view"))
	assert.False(t, e.Permits(principal("administrator"), "x9f3", "view"))
	assert.Equal(t, 0, calls)
}
